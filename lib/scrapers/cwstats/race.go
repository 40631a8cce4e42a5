package cwstats

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/htmlregion"
	"github.com/Delaurensbot/BrabantRoyale/lib/numutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"

	"github.com/PuerkitoBio/goquery"
)

// RaceRow is one clan's standing in the race overview.
type RaceRow struct {
	Rank   int     `json:"rank"`
	Name   string  `json:"name"`
	Trophy int     `json:"trophy"`
	Fame   float64 `json:"fame"`
}

// raceHrefRe matches the per-clan race links that carry the standings
// rows. Full match only; longer paths are breadcrumbs.
var raceHrefRe = regexp.MustCompile(`^/clan/[A-Z0-9]+/race$`)

// raceRowRe splits a flattened row into rank, name and the four
// trailing counters. The before-last counters are ignored; only rank,
// name, trophy and fame feed the standings.
var raceRowRe = regexp.MustCompile(`^\s*(\d+)\s+(.*?)\s+(\d+)\s+(\d+)\s+(\d+)\s+([\d.,]+)\s*$`)

// ParseRaceRows collects standings rows from the clan race anchors.
// Rows are deduped on the full (rank, name, trophy, fame) tuple since
// the page repeats the list for different viewports, then sorted by
// rank.
func ParseRaceRows(doc *goquery.Document) []RaceRow {
	type rowKey struct {
		rank   int
		name   string
		trophy int
		fame   float64
	}
	seen := map[rowKey]bool{}

	var rows []RaceRow
	for _, anchor := range htmlregion.AnchorsByHref(doc, raceHrefRe) {
		text := anchor.Text
		if text == "" || !numutil.IsDigits(text[:1]) {
			continue
		}

		m := raceRowRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		rank, _ := numutil.ParseInt(m[1])
		trophy, _ := numutil.ParseInt(m[3])
		fame, ok := numutil.ParseLocaleNumber(m[6])
		if !ok {
			continue
		}

		row := RaceRow{
			Rank:   rank,
			Name:   strings.TrimSpace(m[2]),
			Trophy: trophy,
			Fame:   fame,
		}
		key := rowKey{row.Rank, row.Name, row.Trophy, row.Fame}
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
	return rows
}

// RacePage bundles one fetch of the CWStats race page.
type RacePage struct {
	Rows    []RaceRow
	Stats   *ClanStats
	Battles map[int][]string
}

func FetchRacePage(ctx context.Context, client *fetch.Client, raceURL string) (*RacePage, error) {
	ctx, span := tracer.Start(ctx, "cwstats.FetchRacePage")
	defer span.End()

	doc, err := client.Document(ctx, raceURL)
	if err != nil {
		return nil, err
	}
	return &RacePage{
		Rows:    ParseRaceRows(doc),
		Stats:   ParseClanStats(doc),
		Battles: ParseBattlesLeft(doc),
	}, nil
}
