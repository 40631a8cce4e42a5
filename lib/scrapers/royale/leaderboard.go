package royale

import (
	"context"
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/numutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"

	"github.com/PuerkitoBio/goquery"
)

// LeaderboardEntry is the clan's position on the national war
// leaderboard.
type LeaderboardEntry struct {
	Rank     *int `json:"rank,omitempty"`
	Trophies *int `json:"trophies,omitempty"`
}

// ParseLeaderboardRow finds the clan's row by tag or lowercased name.
// The rank is the first all-digit cell; trophies the last number-like
// cell scanning backwards, skipping progress displays with a slash.
func ParseLeaderboardRow(doc *goquery.Document, clanTag, clanName string) *LeaderboardEntry {
	normalizedTag := clans.NormalizeTag(clanTag)
	nameClean := strings.ToLower(htmlutil.NormalizeSpace(clanName))

	var entry *LeaderboardEntry
	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Find("td, th")
		if cells.Length() == 0 {
			return true
		}
		rowText := htmlutil.FlatText(tr)
		tagHit := normalizedTag != "" &&
			strings.Contains(strings.ToUpper(strings.ReplaceAll(rowText, "#", "")), normalizedTag)
		nameHit := nameClean != "" && strings.Contains(strings.ToLower(rowText), nameClean)
		if !tagHit && !nameHit {
			return true
		}

		texts := cellTexts(cells)
		found := &LeaderboardEntry{}
		for _, cell := range texts {
			if numutil.IsDigits(cell) {
				found.Rank = parsedIntPtr(cell)
				break
			}
		}
		for i := len(texts) - 1; i >= 0; i-- {
			if !numutil.IsNumberLike(texts[i]) {
				continue
			}
			if v, ok := numutil.FirstInt(texts[i]); ok {
				found.Trophies = intPtr(v)
				break
			}
		}
		entry = found
		return false
	})
	return entry
}

// FetchLeaderboardRow downloads the national leaderboard and locates
// the clan's row. Nil entry with nil error means the clan was not on
// the page.
func FetchLeaderboardRow(ctx context.Context, client *fetch.Client, leaderboardURL, clanTag, clanName string) (*LeaderboardEntry, error) {
	ctx, span := tracer.Start(ctx, "royale.FetchLeaderboardRow")
	defer span.End()

	doc, err := client.Document(ctx, leaderboardURL)
	if err != nil {
		return nil, err
	}
	return ParseLeaderboardRow(doc, clanTag, clanName), nil
}
