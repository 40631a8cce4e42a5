package numutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLocaleNumber(t *testing.T) {
	testCases := []struct {
		in       string
		expected float64
		ok       bool
	}{
		{"172,34", 172.34, true},
		{"34,650", 34650, true},
		{"1,234,567", 1234567, true},
		{"1,2", 1.2, true},
		{"216.5625", 216.5625, true},
		{"-42", -42, true},
		{"+7", 7, true},
		{" 3 100 ", 3100, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"--", 0, false},
	}
	for _, test := range testCases {
		v, ok := ParseLocaleNumber(test.in)
		require.Equal(t, test.ok, ok, "input %q", test.in)
		if ok {
			require.InDelta(t, test.expected, v, 1e-9, "input %q", test.in)
		}
	}
}

func TestStripOrdinal(t *testing.T) {
	suffixes := map[int]string{1: "st", 2: "nd", 3: "rd"}
	for n := 1; n <= 99; n++ {
		suffix, ok := suffixes[n%10]
		if !ok || (n%100 >= 11 && n%100 <= 13) {
			suffix = "th"
		}
		token := fmt.Sprintf("%d%s", n, suffix)
		require.Equal(t, fmt.Sprintf("%d", n), StripOrdinal(token))
	}

	// non-ordinals pass through untouched
	for _, token := range []string{"first", "3rdish", "th", "12", ""} {
		require.Equal(t, token, StripOrdinal(token))
	}

	require.Equal(t, "3", StripOrdinal("3RD"))
}

func TestParseInt(t *testing.T) {
	v, ok := ParseInt(" 16 ")
	require.True(t, ok)
	require.Equal(t, 16, v)

	_, ok = ParseInt("12/200")
	require.False(t, ok)
	_, ok = ParseInt("")
	require.False(t, ok)
	_, ok = ParseInt("1.5")
	require.False(t, ok)

	v, ok = ParseInt("-3")
	require.True(t, ok)
	require.Equal(t, -3, v)
}

func TestFirstIntAndFloat(t *testing.T) {
	v, ok := FirstInt("→ 34,650 medals")
	require.True(t, ok)
	require.Equal(t, 34650, v)

	f, ok := FirstFloat("avg 216.56 per deck")
	require.True(t, ok)
	require.InDelta(t, 216.56, f, 1e-9)

	_, ok = FirstInt("none")
	require.False(t, ok)
}

func TestIsNumberLike(t *testing.T) {
	require.True(t, IsNumberLike("1,234"))
	require.True(t, IsNumberLike("-5"))
	require.True(t, IsNumberLike("3.14"))
	require.False(t, IsNumberLike("12/200"))
	require.False(t, IsNumberLike(""))
	require.False(t, IsNumberLike("abc"))
}

func TestClamp(t *testing.T) {
	// attacks left stays in [0,4] even for nonsense decks-used inputs
	for decksUsed, expected := range map[int]int{-3: 4, 0: 4, 2: 2, 4: 0, 9: 0} {
		require.Equal(t, expected, Clamp(4-decksUsed, 0, 4), "decks used %d", decksUsed)
	}
}
