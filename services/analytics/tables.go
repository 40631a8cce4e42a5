package analytics

import (
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlregion"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"

	"github.com/PuerkitoBio/goquery"
)

// Table is the {headers, rows} shape the report exposes.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// alignedRow is one analytics table row with the identity extracted
// from its player cell kept alongside the cell texts, so membership
// filtering never loses track of which row belonged to which player.
type alignedRow struct {
	cells   []string
	tag     string
	nameKey string
}

// parseAlignedTable reads every data row of an analytics table. The
// player tag comes from the first cell's profile link when present;
// the cleaned name key always comes from the first cell's text.
func parseAlignedTable(table htmlregion.Match) (headers []string, rows []alignedRow) {
	headers = []string{}
	for _, h := range htmlregion.Headers(table.Sel) {
		headers = append(headers, htmlutil.NormalizeSpace(h))
	}

	rowSel := table.Sel.Find("tbody tr")
	skipFirst := false
	if rowSel.Length() == 0 {
		rowSel = table.Sel.Find("tr")
		skipFirst = true
	}

	rowSel.Each(func(i int, tr *goquery.Selection) {
		if skipFirst && i == 0 {
			return
		}
		cells := tr.Find("td, th")
		if cells.Length() == 0 {
			return
		}

		row := alignedRow{}
		empty := true
		cells.Each(func(_ int, cell *goquery.Selection) {
			text := htmlutil.FlatText(cell)
			if text != "" {
				empty = false
			}
			row.cells = append(row.cells, text)
		})
		if empty {
			return
		}

		cells.First().Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if tag := clans.TagFromHref(a.AttrOr("href", "")); tag != "" {
				row.tag = tag
				return false
			}
			return true
		})
		row.nameKey = htmlutil.CleanNameKey(row.cells[0])

		rows = append(rows, row)
	})
	return headers, rows
}

// filterCurrent keeps rows belonging to a current member, matched by
// tag or cleaned name. Either signal suffices.
func filterCurrent(rows []alignedRow, roster *royale.Roster) []alignedRow {
	tags := roster.TagSet()
	byName := roster.ByNameKey()

	var out []alignedRow
	for _, r := range rows {
		_, nameHit := byName[r.nameKey]
		if (r.tag != "" && tags[r.tag]) || (r.nameKey != "" && nameHit) {
			out = append(out, r)
		}
	}
	return out
}

// insertRoleColumn adds a Role column after the player column, resolved
// through the roster by tag first and cleaned name second.
func insertRoleColumn(headers []string, rows []alignedRow, roster *royale.Roster) Table {
	out := Table{Headers: []string{}, Rows: [][]string{}}

	if len(headers) > 0 && strings.EqualFold(headers[0], "player") {
		out.Headers = append(out.Headers, headers[0], "Role")
		out.Headers = append(out.Headers, headers[1:]...)
	} else {
		out.Headers = append(out.Headers, "Player", "Role")
		if len(headers) > 1 {
			out.Headers = append(out.Headers, headers[1:]...)
		}
	}

	roleByTag := roster.RoleByTag()
	byName := roster.ByNameKey()

	for _, r := range rows {
		tag := r.tag
		if tag == "" {
			tag = byName[r.nameKey].Tag
		}
		role := ""
		if got, ok := roleByTag[tag]; ok {
			role = royale.DisplayRole(got)
		}

		row := make([]string, 0, len(r.cells)+1)
		row = append(row, r.cells[0], role)
		row = append(row, r.cells[1:]...)
		out.Rows = append(out.Rows, row)
	}
	return out
}
