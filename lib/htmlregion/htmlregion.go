// Package htmlregion locates the DOM region backing a named logical section
// of a scraped page. The pages carry no machine-readable contract, so every
// locator is a heuristic: it returns a Match that may be empty, and callers
// chain strategies in a fixed fallback order, first non-empty result wins.
package htmlregion

import (
	"regexp"
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/numutil"

	"github.com/PuerkitoBio/goquery"
)

// Match is the typed "maybe found a region" result every strategy returns.
type Match struct {
	Sel   *goquery.Selection
	Score int
}

// Found reports whether the strategy located a region.
func (m Match) Found() bool {
	return m.Sel != nil && len(m.Sel.Nodes) > 0
}

// Headers returns the header cell texts of a table-like selection: the
// thead th cells when present, otherwise the cells of the first row.
func Headers(table *goquery.Selection) []string {
	var headers []string
	thead := table.Find("thead").First()
	if thead.Length() > 0 {
		thead.Find("th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, htmlutil.FlatText(th))
		})
		if len(headers) > 0 {
			return headers
		}
	}
	table.Find("tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, htmlutil.FlatText(cell))
	})
	return headers
}

// HeaderIndex maps lowercased header names to their column positions.
// The first occurrence of a repeated header wins.
func HeaderIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(htmlutil.NormalizeSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	return index
}

// DataRows returns every tr of the table that carries td cells,
// i.e. the rows that hold data rather than headers.
func DataRows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Find("td").Length() > 0
	})
}

// TableByHeaders finds the first table whose header set contains every
// required name, compared case-insensitively and exactly per cell.
func TableByHeaders(doc *goquery.Document, mustHave ...string) Match {
	required := make([]string, len(mustHave))
	for i, h := range mustHave {
		required[i] = strings.ToLower(h)
	}

	var match Match
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		have := map[string]bool{}
		for _, h := range Headers(table) {
			have[strings.ToLower(htmlutil.NormalizeSpace(h))] = true
		}
		for _, want := range required {
			if !have[want] {
				return true
			}
		}
		match = Match{Sel: table, Score: DataRows(table).Length()}
		return false
	})
	return match
}

// minTableRows is the row-count floor below which a table cannot win
// BestTable; small tables are navigation chrome, not standings.
const minTableRows = 10

// ScoreTable rates how likely a table is to be the standings table the
// keywords describe. Size is the base score, keyword hits in the header
// row add 25 each, and a purely numeric first cell in the first data row
// adds 50. Tables under the row floor score -1.
func ScoreTable(table *goquery.Selection, keywords []string) int {
	rows := DataRows(table)
	if rows.Length() < minTableRows {
		return -1
	}

	score := rows.Length()

	joined := strings.ToLower(strings.Join(Headers(table), " "))
	for _, kw := range keywords {
		if strings.Contains(joined, strings.ToLower(kw)) {
			score += 25
		}
	}

	firstCell := htmlutil.FlatText(rows.First().Find("td").First())
	if numutil.IsDigits(firstCell) {
		score += 50
	}

	return score
}

// BestTable finds the highest-scoring table in the document. Ties keep
// the table seen first in document order.
func BestTable(doc *goquery.Document, keywords []string) Match {
	var best Match
	bestScore := -1
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		s := ScoreTable(table, keywords)
		if s > bestScore {
			best = Match{Sel: table, Score: s}
			bestScore = s
		}
	})
	if bestScore < 0 {
		return Match{}
	}
	return best
}

// LabeledContainer locates the panel identified by a visible label. It
// finds the first element whose own text matches the label, then walks up
// at most maxLevels ancestors and returns the first one whose flattened
// text contains every required keyword (case-insensitive). No qualifying
// ancestor within the walk means no match.
func LabeledContainer(doc *goquery.Document, label *regexp.Regexp, required []string, maxLevels int) Match {
	var start *goquery.Selection
	doc.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Children().Length() > 0 {
			return true
		}
		if label.MatchString(htmlutil.FlatText(el)) {
			start = el
			return false
		}
		return true
	})
	if start == nil {
		return Match{}
	}

	cur := start.Parent()
	for level := 0; level < maxLevels && cur.Length() > 0; level++ {
		text := strings.ToLower(htmlutil.FlatText(cur))
		all := true
		for _, kw := range required {
			if !strings.Contains(text, strings.ToLower(kw)) {
				all = false
				break
			}
		}
		if all {
			return Match{Sel: cur, Score: level}
		}
		cur = cur.Parent()
	}
	return Match{}
}

// Anchor pairs a link's flattened text with its href.
type Anchor struct {
	Text string
	Href string
	Sel  *goquery.Selection
}

// AnchorsByHref returns every anchor whose href matches the pattern,
// in document order, with whitespace-normalized rendered text.
func AnchorsByHref(doc *goquery.Document, href *regexp.Regexp) []Anchor {
	var anchors []Anchor
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		h := strings.TrimSpace(a.AttrOr("href", ""))
		if !href.MatchString(h) {
			return
		}
		anchors = append(anchors, Anchor{
			Text: strings.Join(htmlutil.Tokens(a), " "),
			Href: h,
			Sel:  a,
		})
	})
	return anchors
}

// LargestByText picks the element of the selection with the longest
// flattened text. Equal lengths keep the earlier element, so the choice
// is deterministic for equally-scored candidates.
func LargestByText(sel *goquery.Selection) *goquery.Selection {
	var largest *goquery.Selection
	max := -1
	sel.Each(func(_ int, el *goquery.Selection) {
		l := len(htmlutil.FlatText(el))
		if l > max {
			largest = el
			max = l
		}
	})
	return largest
}
