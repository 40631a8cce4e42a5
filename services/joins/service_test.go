package joins

import (
	"testing"

	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"

	"github.com/stretchr/testify/require"
)

func TestRenderText(t *testing.T) {
	report := &Report{
		OK:         true,
		ClanTag:    "9YP8UY",
		HistoryURL: "https://royaleapi.com/clan/9YP8UY/history/join-leave",
		Joins: []royale.JoinEvent{
			{Name: "Alice", Tag: "AAA111", Ago: "2h", AccountLevel: "45",
				URL: "https://royaleapi.com/player/AAA111"},
			{Name: "Bob", Tag: "BBB222", Ago: "1d",
				URL: "https://royaleapi.com/player/BBB222"},
		},
	}

	text := report.RenderText()
	require.Contains(t, text, "Last joins (with account level + link):")
	require.Contains(t, text, "Alice")
	require.Contains(t, text, "AAA111")
	require.Contains(t, text, "45")
	// Missing account level renders as the placeholder.
	require.Contains(t, text, "-")
	require.Contains(t, text, "Source: https://royaleapi.com/clan/9YP8UY/history/join-leave")
}

func TestRenderTextEmpty(t *testing.T) {
	report := &Report{OK: true, Joins: []royale.JoinEvent{}}
	require.Contains(t, report.RenderText(), "No recent joins found.")
}
