// Package numutil coerces the loosely formatted numeric tokens found on
// fan-stat pages into typed values. Every function here is total: malformed
// input yields an explicit "absent" result, never an error or a panic.
package numutil

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	signedInt    = regexp.MustCompile(`^-?\d+$`)
	numberLike   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	firstIntRe   = regexp.MustCompile(`-?\d+`)
	firstFloatRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
	ordinalRe    = regexp.MustCompile(`(?i)^(\d+)(st|nd|rd|th)$`)
)

// ParseLocaleNumber parses a token that may use either decimal convention.
// A comma immediately followed by one or two trailing digits, with no point
// in the token, is a decimal separator ("172,34" -> 172.34); every other
// comma is thousands grouping and is stripped ("34,650" -> 34650).
func ParseLocaleNumber(token string) (float64, bool) {
	t := strings.ReplaceAll(strings.TrimSpace(token), " ", "")
	if !strings.ContainsAny(t, "0123456789") {
		return 0, false
	}

	if !strings.Contains(t, ".") {
		if i := strings.LastIndex(t, ","); i >= 0 {
			frac := t[i+1:]
			if len(frac) >= 1 && len(frac) <= 2 && digitsOnly.MatchString(frac) {
				t = strings.ReplaceAll(t[:i], ",", "") + "." + frac
			} else {
				t = strings.ReplaceAll(t, ",", "")
			}
		}
	} else {
		t = strings.ReplaceAll(t, ",", "")
	}

	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// StripOrdinal removes an English ordinal suffix ("3rd" -> "3").
// Tokens that are not ordinals come back unchanged.
func StripOrdinal(token string) string {
	m := ordinalRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return token
	}
	return m[1]
}

// IsOrdinal reports whether the token is digits plus an English
// ordinal suffix.
func IsOrdinal(token string) bool {
	return ordinalRe.MatchString(strings.TrimSpace(token))
}

// ParseInt accepts only a bare optionally-signed integer cell.
// Anything else, empty cells included, is absent.
func ParseInt(cell string) (int, bool) {
	c := strings.TrimSpace(cell)
	if !signedInt.MatchString(c) {
		return 0, false
	}
	v, err := strconv.Atoi(c)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FirstInt extracts the first integer embedded anywhere in the text,
// ignoring grouping commas.
func FirstInt(text string) (int, bool) {
	m := firstIntRe.FindString(strings.ReplaceAll(text, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FirstFloat extracts the first unsigned decimal embedded anywhere in
// the text.
func FirstFloat(text string) (float64, bool) {
	m := firstFloatRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsDigits reports whether the token is one or more ASCII digits and
// nothing else.
func IsDigits(token string) bool {
	return digitsOnly.MatchString(strings.TrimSpace(token))
}

// IsNumberLike reports whether a table cell reads as a plain number once
// grouping commas are removed. Slash-separated pairs ("12/200") do not
// count; they are progress displays, not numbers.
func IsNumberLike(cell string) bool {
	c := strings.TrimSpace(cell)
	if c == "" || strings.Contains(c, "/") {
		return false
	}
	return numberLike.MatchString(strings.ReplaceAll(c, ",", ""))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
