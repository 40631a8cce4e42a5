package cwrace

import (
	"strings"
	"testing"

	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/cwstats"

	"github.com/stretchr/testify/require"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func TestRenderRaceRowsTopFive(t *testing.T) {
	rows := []cwstats.RaceRow{
		{Rank: 1, Name: "Alpha", Trophy: 5100, Fame: 34650},
		{Rank: 2, Name: "Brabant Royale", Trophy: 5000, Fame: 34496},
		{Rank: 3, Name: "Gamma", Trophy: 4900, Fame: 30000},
		{Rank: 4, Name: "Delta", Trophy: 4800, Fame: 29000},
		{Rank: 5, Name: "Epsilon", Trophy: 4700, Fame: 28000},
		{Rank: 6, Name: "Overflow", Trophy: 4600, Fame: 27000},
	}

	text := renderRaceRows(rows)
	require.True(t, strings.HasPrefix(text, "Race standings (top 5):"))
	require.Contains(t, text, "1. 🏆 Alpha - Fame: 34650 | Trophy: 5100")
	require.Contains(t, text, "5. 🏆 Epsilon - Fame: 28000 | Trophy: 4700")
	require.NotContains(t, text, "Overflow")
	// (34650+34496+30000+29000+28000)/5 = 31229.20
	require.Contains(t, text, "Avg fame (top 5): 31.229,20")
}

func TestRenderClanStats(t *testing.T) {
	stats := &cwstats.ClanStats{
		Avg:                 floatp(172.34),
		BattlesLeft:         intp(37),
		DuelsLeft:           intp(5),
		ProjectedFinish:     intp(34496),
		ProjectedFinishRank: "2nd",
		BestPossibleFinish:  intp(36000),
		BestPossibleRank:    "1st",
	}

	text := renderClanStats(stats)
	require.Contains(t, text, "📊 avg 172,34")
	require.Contains(t, text, "⚔️ Battles left: 37")
	require.Contains(t, text, "🤝 Duels left: 5")
	require.Contains(t, text, "🎯 Projected Finish 34.496 (2nd)")
	require.Contains(t, text, "🏁 Best Possible Finish 36.000 (1st)")
	require.Contains(t, text, "💀 Worst Possible Finish ? (?)")
}

func TestRenderClanStatsMissing(t *testing.T) {
	require.Equal(t, "Clan Stats:\nNo data found.", renderClanStats(nil))
}

func TestRenderBattlesLeft(t *testing.T) {
	buckets := map[int][]string{
		4: {"Alice", "Bob"},
		3: {},
		2: {"Carol"},
		1: {"Dave"},
	}

	text := renderBattlesLeft(buckets)
	require.Contains(t, text, "🟥 4 attacks left:\n- Alice\n- Bob")
	require.Contains(t, text, "🟨 2 attacks left:\n- Carol")
	require.Contains(t, text, "🟩 1 attack left:\n- Dave")
	require.NotContains(t, text, "3 attacks left")
}

func TestRenderBattlesLeftMissingTable(t *testing.T) {
	require.Equal(t,
		"Battles left (today):\nNo table found for 'Decks Used Today'.",
		renderBattlesLeft(nil))
}

func TestCopyAllTextSkipsEmpty(t *testing.T) {
	got := copyAllText("first block", "", "  ", "last block")
	require.Equal(t, "first block\n\nlast block", got)
}

func TestEuroFormatting(t *testing.T) {
	require.Equal(t, "172,34", euroFloat(172.34))
	require.Equal(t, "1.234.567", euroInt(1234567))
	require.Equal(t, "34.496", euroIntPtr(intp(34496)))
	require.Equal(t, "?", euroIntPtr(nil))
	require.Equal(t, "?", euroFloatPtr(nil))
	// Rounding carries into the integer part.
	require.Equal(t, "172,00", euroFloat(171.999))
}
