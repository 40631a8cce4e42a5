package royale

import (
	"regexp"
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/htmlregion"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/numutil"

	"github.com/PuerkitoBio/goquery"
)

// ClanOverview is the per-clan standings summary on the war race page.
// Every numeric field is optional; the three layout strategies yield
// different subsets and the zero value never stands in for "missing".
type ClanOverview struct {
	Name             string   `json:"name"`
	DecksUsedToday   *int     `json:"decks_used_today,omitempty"`
	DecksTotalToday  *int     `json:"decks_total_today,omitempty"`
	AvgMedalsPerDeck *float64 `json:"avg_medals_per_deck,omitempty"`
	ProjectedMedals  *int     `json:"projected_medals,omitempty"`
	BoatPoints       *int     `json:"boat_points,omitempty"`
	CurrentMedals    *int     `json:"current_medals,omitempty"`
	Trophies         *int     `json:"trophies,omitempty"`
}

var (
	usedTotalRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
	projectedRe = regexp.MustCompile(`(?:\x{2192}|->)\s*([0-9]+)`)
	arrowOnlyRe = regexp.MustCompile(`^(?:\x{2192}|->)$`)
	floatRe     = regexp.MustCompile(`\d+\.\d+`)
	letterRe    = regexp.MustCompile(`\p{L}`)
)

func extractUsedTotal(text string) (used, total *int) {
	m := usedTotalRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	return parsedIntPtr(m[1]), parsedIntPtr(m[2])
}

func extractProjected(text string) *int {
	if m := projectedRe.FindStringSubmatch(text); m != nil {
		return parsedIntPtr(m[1])
	}
	return nil
}

// recomputeAvg prefers medals divided by decks used over whatever the
// page printed, since the printed average lags behind live counters.
func recomputeAvg(currentMedals, decksUsedToday *int, fallback *float64) *float64 {
	if currentMedals != nil && decksUsedToday != nil && *decksUsedToday != 0 {
		return floatPtr(float64(*currentMedals) / float64(*decksUsedToday))
	}
	return fallback
}

// ParseClanOverviews tries the structured standings layout first, then
// the table layout, then raw token scanning. The first strategy that
// yields any clan wins.
func ParseClanOverviews(doc *goquery.Document) []ClanOverview {
	if clans := OverviewsFromDivs(doc); len(clans) > 0 {
		return clans
	}
	if clans := OverviewsFromTables(doc); len(clans) > 0 {
		return clans
	}
	return OverviewsFromText(doc)
}

// OverviewsFromDivs reads the structured standings layout: the largest
// "standings" container, one clan anchor per row, counters in item
// value divs.
func OverviewsFromDivs(doc *goquery.Document) []ClanOverview {
	standings := htmlregion.LargestByText(doc.Find("div.standings"))
	if standings == nil {
		return nil
	}

	var clans []ClanOverview
	standings.Find("a.clan.row[href]").Each(func(_ int, a *goquery.Selection) {
		name := overviewName(a)
		if name == "" {
			return
		}
		clan := ClanOverview{Name: name}

		outline := a.Find("div").FilterFunction(func(_ int, d *goquery.Selection) bool {
			cls, _ := d.Attr("class")
			return strings.Contains(cls, "standing_outline")
		}).First()

		if outline.Length() > 0 {
			if decks := outline.Find("div.decks_used_today").First(); decks.Length() > 0 {
				clan.DecksUsedToday, clan.DecksTotalToday = extractUsedTotal(htmlutil.FlatText(decks))
			}
			if avg := outline.Find("div.medal_avg").First(); avg.Length() > 0 {
				if v, ok := numutil.FirstFloat(htmlutil.FlatText(avg)); ok {
					clan.AvgMedalsPerDeck = floatPtr(v)
				}
			}
			clan.ProjectedMedals = extractProjected(htmlutil.FlatText(outline))
		} else {
			rowText := htmlutil.FlatText(a)
			clan.DecksUsedToday, clan.DecksTotalToday = extractUsedTotal(rowText)
			clan.ProjectedMedals = extractProjected(rowText)
		}

		// The standalone counters sit in "item value" divs outside the
		// outline, in page order: boat points, current medals, trophies.
		var digits []int
		a.Find("div.item.value").Each(func(_ int, d *goquery.Selection) {
			if outline.Length() > 0 && outline.Find("div.item.value").IsSelection(d) {
				return
			}
			txt := htmlutil.FlatText(d)
			if v, ok := numutil.ParseInt(txt); ok && numutil.IsDigits(txt) {
				digits = append(digits, v)
			}
		})
		if len(digits) >= 3 {
			clan.BoatPoints = intPtr(digits[0])
			clan.CurrentMedals = intPtr(digits[1])
			clan.Trophies = intPtr(digits[2])
		}

		clan.AvgMedalsPerDeck = recomputeAvg(clan.CurrentMedals, clan.DecksUsedToday, clan.AvgMedalsPerDeck)
		clans = append(clans, clan)
	})

	return dedupeOverviews(clans)
}

var numericOnlyLineRe = regexp.MustCompile(`^[0-9\s/.\-\x{2192}>]+$`)

func overviewName(a *goquery.Selection) string {
	if summary := a.Find("div.summary").First(); summary.Length() > 0 {
		for _, line := range htmlutil.Tokens(summary) {
			return line
		}
	}
	for _, line := range htmlutil.Tokens(a) {
		if !numericOnlyLineRe.MatchString(line) {
			return line
		}
	}
	return ""
}

// OverviewsFromTables reads the table layout: any row with at least
// four cells and a decks "used/total" marker in its text.
func OverviewsFromTables(doc *goquery.Document) []ClanOverview {
	var clans []ClanOverview
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 4 {
			return
		}

		rowText := htmlutil.FlatText(tr)
		used, total := extractUsedTotal(rowText)
		if used == nil || total == nil {
			return
		}

		clan := ClanOverview{
			DecksUsedToday:  used,
			DecksTotalToday: total,
			ProjectedMedals: extractProjected(rowText),
		}

		first := cells.Eq(0)
		for _, line := range htmlutil.Tokens(first) {
			clan.Name = line
			break
		}
		if f := floatRe.FindString(htmlutil.FlatText(first)); f != "" {
			if v, ok := numutil.FirstFloat(f); ok {
				clan.AvgMedalsPerDeck = floatPtr(v)
			}
		}

		clan.BoatPoints = firstIntPtr(htmlutil.FlatText(cells.Eq(1)))
		clan.CurrentMedals = firstIntPtr(htmlutil.FlatText(cells.Eq(2)))
		clan.Trophies = firstIntPtr(htmlutil.FlatText(cells.Eq(3)))
		clan.AvgMedalsPerDeck = recomputeAvg(clan.CurrentMedals, clan.DecksUsedToday, clan.AvgMedalsPerDeck)

		clans = append(clans, clan)
	})
	return dedupeOverviews(clans)
}

var headerTokens = map[string]bool{"clan": true, "boat": true, "medal": true, "trophy": true}

// OverviewsFromText is the last resort when the page has lost all
// structure: walk the flat token stream, treat the first lettered token
// as a clan name and collect the three counters plus any decks, average
// and projected markers from the following window.
func OverviewsFromText(doc *goquery.Document) []ClanOverview {
	tokens := htmlutil.Tokens(doc.Selection)
	if len(tokens) == 0 {
		return nil
	}

	start := 0
	for i := 0; i+3 < len(tokens); i++ {
		if strings.EqualFold(tokens[i], "clan") &&
			strings.EqualFold(tokens[i+1], "boat") &&
			strings.EqualFold(tokens[i+2], "medal") &&
			strings.EqualFold(tokens[i+3], "trophy") {
			start = i + 4
			break
		}
	}

	var clans []ClanOverview
	for i := start; i < len(tokens); i++ {
		name := tokens[i]
		if headerTokens[strings.ToLower(name)] ||
			usedTotalFull(name) ||
			floatFull(name) ||
			arrowOnlyRe.MatchString(name) ||
			numutil.IsDigits(name) ||
			!letterRe.MatchString(name) ||
			len(strings.TrimSpace(name)) < 2 {
			continue
		}

		clan := ClanOverview{Name: name}

		var ints []int
		for j := i + 1; j < len(tokens) && len(ints) < 3; j++ {
			if numutil.IsDigits(tokens[j]) {
				if v, ok := numutil.ParseInt(tokens[j]); ok {
					ints = append(ints, v)
				}
			}
		}
		if len(ints) < 3 {
			continue
		}
		clan.BoatPoints = intPtr(ints[0])
		clan.CurrentMedals = intPtr(ints[1])
		clan.Trophies = intPtr(ints[2])

		end := i + 20
		if end > len(tokens) {
			end = len(tokens)
		}
		for k := i + 1; k < end; k++ {
			tk := tokens[k]
			if m := usedTotalRe.FindStringSubmatch(tk); m != nil && usedTotalFull(tk) {
				clan.DecksUsedToday = parsedIntPtr(m[1])
				clan.DecksTotalToday = parsedIntPtr(m[2])
			}
			if clan.AvgMedalsPerDeck == nil && floatFull(tk) {
				if v, ok := numutil.FirstFloat(tk); ok {
					clan.AvgMedalsPerDeck = floatPtr(v)
				}
			}
			if p := extractProjected(tk); p != nil {
				clan.ProjectedMedals = p
			} else if arrowOnlyRe.MatchString(tk) && k+1 < len(tokens) && numutil.IsDigits(tokens[k+1]) {
				clan.ProjectedMedals = parsedIntPtr(tokens[k+1])
			}
			if clan.DecksUsedToday != nil && clan.AvgMedalsPerDeck != nil && clan.ProjectedMedals != nil {
				break
			}
		}

		if clan.DecksUsedToday == nil && clan.AvgMedalsPerDeck == nil && clan.ProjectedMedals == nil {
			continue
		}
		clans = append(clans, clan)
	}

	return dedupeOverviews(clans)
}

func usedTotalFull(s string) bool {
	m := usedTotalRe.FindString(s)
	return m != "" && m == strings.TrimSpace(s)
}

func floatFull(s string) bool {
	return floatRe.FindString(s) == s
}

func firstIntPtr(s string) *int {
	if v, ok := numutil.FirstInt(s); ok {
		return intPtr(v)
	}
	return nil
}

// dedupeOverviews keeps the first occurrence per lowercased clan name.
func dedupeOverviews(clans []ClanOverview) []ClanOverview {
	seen := map[string]bool{}
	var out []ClanOverview
	for _, c := range clans {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// OverlayOverviews fills gaps in the primary overviews from a secondary
// source, matched by lowercased name. The average copies in only when
// absent; boat points and current medals also copy in when exactly
// zero, since degraded layouts render missing counters as 0. A real
// zero gets overwritten too; that trade is deliberate.
func OverlayOverviews(primary, secondary []ClanOverview) {
	byName := map[string]ClanOverview{}
	for _, c := range secondary {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if _, taken := byName[key]; !taken {
			byName[key] = c
		}
	}

	for i := range primary {
		sec, ok := byName[strings.ToLower(strings.TrimSpace(primary[i].Name))]
		if !ok {
			continue
		}
		p := &primary[i]
		if p.AvgMedalsPerDeck == nil && sec.AvgMedalsPerDeck != nil {
			p.AvgMedalsPerDeck = sec.AvgMedalsPerDeck
		}
		if (p.BoatPoints == nil || *p.BoatPoints == 0) && sec.BoatPoints != nil {
			p.BoatPoints = sec.BoatPoints
		}
		if (p.CurrentMedals == nil || *p.CurrentMedals == 0) && sec.CurrentMedals != nil {
			p.CurrentMedals = sec.CurrentMedals
		}
	}
}

// FillProjected backfills missing projected medals from the average per
// deck times the 200 decks a clan plays per day.
func FillProjected(clans []ClanOverview) {
	for i := range clans {
		if clans[i].ProjectedMedals == nil && clans[i].AvgMedalsPerDeck != nil {
			clans[i].ProjectedMedals = intPtr(int(*clans[i].AvgMedalsPerDeck * 200))
		}
	}
}

var dayLabelRe = regexp.MustCompile(`\bDay\s+(\d+)\b`)

// ParseDayLabel pulls the "Day N" marker out of the page text.
func ParseDayLabel(doc *goquery.Document) string {
	return dayLabelRe.FindString(htmlutil.FlatText(doc.Selection))
}

// ParseDayNumber returns the war day number, nil when the page shows no
// day marker (training days, between wars).
func ParseDayNumber(doc *goquery.Document) *int {
	m := dayLabelRe.FindStringSubmatch(htmlutil.FlatText(doc.Selection))
	if m == nil {
		return nil
	}
	return parsedIntPtr(m[1])
}
