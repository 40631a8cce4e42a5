package royale

import (
	"regexp"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlregion"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/numutil"

	"github.com/PuerkitoBio/goquery"
)

// PlayerRow is one participant row of the war race table. Numeric
// fields are nil when the page did not yield a parseable value; absent
// is not the same as zero.
type PlayerRow struct {
	Rank           int    `json:"rank"`
	Name           string `json:"name"`
	Tag            string `json:"tag,omitempty"`
	Role           Role   `json:"role,omitempty"`
	DecksUsedToday *int   `json:"decks_used_today,omitempty"`
	DecksUsedTotal *int   `json:"decks_used_total,omitempty"`
	BoatAttacks    *int   `json:"boat_attacks,omitempty"`
	Fame           *int   `json:"fame,omitempty"`
}

var playerTableKeywords = []string{"role", "fame", "deck", "decks", "today"}

// rowTextRe matches a flattened player row: name, role or the "--"
// placeholder, then the four counters in page order (decks today, decks
// total, boat attacks, fame). Anchored at the end so trailing junk
// never half-matches.
var rowTextRe = regexp.MustCompile(
	`(.+?)\s+(Leader|Co-leader|Elder|Member|--)\s+(\d+)\s+(\d+)\s+(\d+)\s+(\d+)\s*$`)

var allIntsRe = regexp.MustCompile(`\d+`)

// ParsePlayerRows locates the participant table by score and extracts a
// row per player. Rows without a numeric rank in the first cell are
// spacer or header noise and are skipped. Counter extraction tries the
// anchored row regex first and falls back to the last four integers of
// the row text.
func ParsePlayerRows(doc *goquery.Document) []PlayerRow {
	table := htmlregion.BestTable(doc, playerTableKeywords)
	if !table.Found() {
		return nil
	}

	var rows []PlayerRow
	table.Sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		rankText := htmlutil.FlatText(cells.First())
		rank, ok := numutil.ParseInt(rankText)
		if !ok {
			return
		}
		rows = append(rows, parsePlayerRow(tr, rank))
	})
	return rows
}

func parsePlayerRow(tr *goquery.Selection, rank int) PlayerRow {
	row := PlayerRow{Rank: rank}

	tr.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if tag := clans.TagFromHref(href); tag != "" {
			row.Tag = tag
			row.Name = htmlutil.FlatText(a)
			return false
		}
		return true
	})

	rowText := htmlutil.FlatText(tr)

	if m := rowTextRe.FindStringSubmatch(rowText); m != nil {
		if row.Name == "" {
			row.Name = m[1]
		}
		if m[2] != "--" {
			row.Role = ParseRole(m[2])
		}
		row.DecksUsedToday = parsedIntPtr(m[3])
		row.DecksUsedTotal = parsedIntPtr(m[4])
		row.BoatAttacks = parsedIntPtr(m[5])
		row.Fame = parsedIntPtr(m[6])
		return row
	}

	// Degraded layout: take the trailing integers in page order and
	// scan for a free-standing role token.
	ints := allIntsRe.FindAllString(rowText, -1)
	if len(ints) >= 4 {
		tail := ints[len(ints)-4:]
		row.DecksUsedToday = parsedIntPtr(tail[0])
		row.DecksUsedTotal = parsedIntPtr(tail[1])
		row.BoatAttacks = parsedIntPtr(tail[2])
		row.Fame = parsedIntPtr(tail[3])
	}
	row.Role = ParseRole(rowText)
	if row.Name == "" {
		row.Name = rowText
	}
	return row
}

func parsedIntPtr(s string) *int {
	if v, ok := numutil.ParseInt(s); ok {
		return intPtr(v)
	}
	return nil
}

// AttacksLeftToday derives how many of today's four decks a player
// still has open. Nil when decks used today is unknown.
func (r PlayerRow) AttacksLeftToday() *int {
	if r.DecksUsedToday == nil {
		return nil
	}
	return intPtr(numutil.Clamp(4-*r.DecksUsedToday, 0, 4))
}

// DedupeRows keeps the first occurrence per player, keyed by tag when
// present and display name otherwise. Rows with neither are dropped.
func DedupeRows(rows []PlayerRow) []PlayerRow {
	seen := map[string]bool{}
	var out []PlayerRow
	for _, r := range rows {
		key := r.Tag
		if key == "" {
			key = r.Name
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
