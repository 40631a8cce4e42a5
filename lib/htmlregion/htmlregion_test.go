package htmlregion

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func playerTable(rows int) string {
	b := strings.Builder{}
	b.WriteString("<table><tr><th>#</th><th>Player</th><th>Role</th><th>Decks Today</th><th>Fame</th></tr>")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>Player %d</td><td>Member</td><td>2</td><td>900</td></tr>", i, i)
	}
	b.WriteString("</table>")
	return b.String()
}

func TestTableByHeaders(t *testing.T) {
	doc := parseDoc(t, `
		<table><tr><th>Week</th><th>Rank</th></tr><tr><td>W1</td><td>3</td></tr></table>
		<table><thead><tr><th>Player</th><th>M</th><th>P</th><th>C</th></tr></thead>
			<tbody><tr><td>Bob</td><td>1</td><td>2</td><td>3</td></tr></tbody></table>`)

	m := TableByHeaders(doc, "Player", "M", "P", "C")
	require.True(t, m.Found())
	require.Equal(t, []string{"Player", "M", "P", "C"}, Headers(m.Sel))

	m = TableByHeaders(doc, "Player", "M", "P", "D")
	require.False(t, m.Found())
}

func genericTable(rows int) string {
	b := strings.Builder{}
	b.WriteString("<table><tr><th>Item</th><th>Description</th></tr>")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, "<tr><td>thing %d</td><td>text</td></tr>", i)
	}
	b.WriteString("</table>")
	return b.String()
}

func TestBestTableScoring(t *testing.T) {
	// a small nav table, a big keyword-less table and the real standings table
	doc := parseDoc(t, `
		<table><tr><td>nav</td></tr></table>`+
		genericTable(20)+
		playerTable(12))

	m := BestTable(doc, []string{"role", "fame", "deck", "decks", "today"})
	require.True(t, m.Found())
	require.Contains(t, strings.Join(Headers(m.Sel), " "), "Role")
	// 12 rows + 4 keyword hits (role/fame/deck/today; "decks" hits via "Decks Today" too) + numeric first cell
	require.Greater(t, m.Score, 100)
}

func TestBestTableRowFloor(t *testing.T) {
	doc := parseDoc(t, playerTable(9))
	m := BestTable(doc, []string{"role"})
	require.False(t, m.Found())
}

func TestLabeledContainer(t *testing.T) {
	doc := parseDoc(t, `
		<body><div id="panel">
			<span>Clan Stats</span>
			<div>Battles Left <b>37</b></div>
			<div>Duels Left <b>5</b></div>
			<div>Projected Finish <b>34,650</b></div>
		</div></body>`)

	label := regexp.MustCompile(`(?i)\bClan\s+Stats\b`)
	m := LabeledContainer(doc, label, []string{"battles left", "duels left", "projected finish"}, 10)
	require.True(t, m.Found())
	id, _ := m.Sel.Attr("id")
	require.Equal(t, "panel", id)
}

func TestLabeledContainerDepthLimit(t *testing.T) {
	// the label exists but no ancestor carries the keyword set
	doc := parseDoc(t, `<div><span>Clan Stats</span></div>`)
	label := regexp.MustCompile(`(?i)\bClan\s+Stats\b`)
	m := LabeledContainer(doc, label, []string{"battles left"}, 10)
	require.False(t, m.Found())
}

func TestAnchorsByHref(t *testing.T) {
	doc := parseDoc(t, `
		<a href="/clan/ABC123/race">1 Alpha 2800 12 100 172,34</a>
		<a href="/player/XYZ">Bob</a>
		<a href="/clan/DEF456/race">2 Beta 2700 11 90 150,00</a>`)

	anchors := AnchorsByHref(doc, regexp.MustCompile(`^/clan/[A-Z0-9]+/race$`))
	require.Len(t, anchors, 2)
	require.Equal(t, "1 Alpha 2800 12 100 172,34", anchors[0].Text)
	require.Equal(t, "/clan/DEF456/race", anchors[1].Href)
}

func TestLargestByText(t *testing.T) {
	doc := parseDoc(t, `
		<div class="standings">tiny</div>
		<div class="standings">a much longer standings body with rows</div>`)
	largest := LargestByText(doc.Find("div.standings"))
	require.NotNil(t, largest)
	require.Contains(t, largest.Text(), "much longer")
}
