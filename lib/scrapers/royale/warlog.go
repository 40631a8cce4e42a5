package royale

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlregion"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/numutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"

	"github.com/PuerkitoBio/goquery"
)

// WeekResult is one row of the war log's week summary table.
type WeekResult struct {
	Week          *int `json:"week,omitempty"`
	Rank          *int `json:"rank,omitempty"`
	BoatPoints    *int `json:"boat_points,omitempty"`
	TrophyChange  *int `json:"trophy_change,omitempty"`
	TrophiesAfter *int `json:"trophies_after,omitempty"`
}

// Participant is one player row of the war log's participants table.
type Participant struct {
	Name    string `json:"name"`
	Tag     string `json:"tag,omitempty"`
	Attacks int    `json:"attacks"`
	Points  int    `json:"points"`
}

// WarLog is everything the war log page yields for one clan: the most
// recent week summary, the clan's own result row and the per-player
// participant rows.
type WarLog struct {
	LatestWeek   *WeekResult   `json:"latest_week,omitempty"`
	ClanResult   *WeekResult   `json:"clan_result,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
}

// trophyChangeRe matches the combined "+12 3456" trophy cell: signed
// delta followed by the resulting total.
var trophyChangeRe = regexp.MustCompile(`([+-]\d+)\s*(\d+)`)

// ParseWarLog scans the page's tables for a week summary (headers with
// "week" and "rank"), the clan's own row (matched by tag or lowercased
// name) and a participants table (headers with "attack" and "point").
// Nil when none of the three turn up.
func ParseWarLog(doc *goquery.Document, clanTag, clanName string) *WarLog {
	log := &WarLog{
		LatestWeek:   latestWeekResult(doc),
		ClanResult:   clanResultRow(doc, clanTag, clanName),
		Participants: parseParticipants(doc),
	}
	if log.LatestWeek == nil && log.ClanResult == nil && len(log.Participants) == 0 {
		return nil
	}
	return log
}

func latestWeekResult(doc *goquery.Document) *WeekResult {
	var latest *WeekResult
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		headers := htmlregion.Headers(table)
		if _, hasWeek := htmlregion.HeaderIndex(headers)["week"]; !hasWeek || !anyHeaderContains(headers, "rank") {
			return
		}
		for _, row := range parseWeekRows(table, headers) {
			if latest == nil || intOrZero(row.Week) > intOrZero(latest.Week) {
				r := row
				latest = &r
			}
		}
	})
	return latest
}

func parseWeekRows(table *goquery.Selection, headers []string) []WeekResult {
	var rows []WeekResult
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		texts := cellTexts(cells)
		// Week cells read like "W12"; anything else is not a summary row.
		if !strings.HasPrefix(strings.ToLower(texts[0]), "w") {
			return
		}

		var row WeekResult
		row.Week = firstIntPtr(texts[0])
		for idx, header := range headers {
			if idx >= len(texts) {
				break
			}
			h := strings.ToLower(header)
			switch {
			case strings.Contains(h, "rank"):
				row.Rank = firstIntPtr(texts[idx])
			case strings.Contains(h, "boat"):
				row.BoatPoints = firstIntPtr(texts[idx])
			case strings.Contains(h, "trophy"):
				if m := trophyChangeRe.FindStringSubmatch(texts[idx]); m != nil {
					row.TrophyChange = signedIntPtr(m[1])
					row.TrophiesAfter = parsedIntPtr(m[2])
				}
			}
		}
		rows = append(rows, row)
	})
	return rows
}

func clanResultRow(doc *goquery.Document, clanTag, clanName string) *WeekResult {
	normalizedTag := clans.NormalizeTag(clanTag)
	nameClean := strings.ToLower(htmlutil.NormalizeSpace(clanName))

	var result *WeekResult
	doc.Find("table tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		rowText := htmlutil.FlatText(tr)
		if rowText == "" {
			return true
		}
		tagHit := normalizedTag != "" &&
			strings.Contains(strings.ToUpper(strings.ReplaceAll(rowText, "#", "")), normalizedTag)
		nameHit := nameClean != "" && strings.Contains(strings.ToLower(rowText), nameClean)
		if !tagHit && !nameHit {
			return true
		}

		texts := cellTexts(tr.Find("td, th"))
		row := WeekResult{}
		for _, cell := range texts {
			if row.Rank == nil && numutil.IsDigits(cell) {
				row.Rank = parsedIntPtr(cell)
			}
		}
		for _, cell := range texts {
			if strings.ContainsAny(cell, "+-") {
				if m := trophyChangeRe.FindStringSubmatch(cell); m != nil {
					row.TrophyChange = signedIntPtr(m[1])
					row.TrophiesAfter = parsedIntPtr(m[2])
				}
			}
		}
		for _, cell := range texts {
			if row.BoatPoints == nil && numutil.IsDigits(cell) {
				row.BoatPoints = parsedIntPtr(cell)
			}
		}
		result = &row
		return false
	})
	return result
}

func parseParticipants(doc *goquery.Document) []Participant {
	var participants []Participant
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		headers := htmlregion.Headers(table)
		if !anyHeaderContains(headers, "attack") || !anyHeaderContains(headers, "point") {
			return true
		}

		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			texts := cellTexts(cells)
			p := Participant{Name: texts[0]}
			tr.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				href, _ := a.Attr("href")
				if tag := clans.TagFromHref(href); tag != "" {
					p.Tag = tag
					return false
				}
				return true
			})
			for idx, header := range headers {
				if idx >= len(texts) {
					break
				}
				h := strings.ToLower(header)
				if strings.Contains(h, "attack") {
					if v, ok := numutil.FirstInt(texts[idx]); ok {
						p.Attacks = v
					}
				}
				if strings.Contains(h, "point") || strings.Contains(h, "fame") {
					if v, ok := numutil.FirstInt(texts[idx]); ok {
						p.Points = v
					}
				}
			}
			participants = append(participants, p)
		})
		return len(participants) == 0
	})
	return participants
}

func cellTexts(cells *goquery.Selection) []string {
	texts := make([]string, cells.Length())
	cells.Each(func(i int, c *goquery.Selection) {
		texts[i] = htmlutil.FlatText(c)
	})
	return texts
}

func anyHeaderContains(headers []string, fragment string) bool {
	for _, h := range headers {
		if strings.Contains(strings.ToLower(h), fragment) {
			return true
		}
	}
	return false
}

// signedIntPtr parses integers that may carry an explicit plus sign,
// which the trophy delta cells do.
func signedIntPtr(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return intPtr(v)
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// FetchWarLog downloads and parses the clan's war log page.
func FetchWarLog(ctx context.Context, client *fetch.Client, warLogURL, clanTag, clanName string) (*WarLog, error) {
	ctx, span := tracer.Start(ctx, "royale.FetchWarLog")
	defer span.End()

	doc, err := client.Document(ctx, warLogURL)
	if err != nil {
		return nil, err
	}
	return ParseWarLog(doc, clanTag, clanName), nil
}
