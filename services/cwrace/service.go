// Package cwrace builds the CWStats race report: the standings top 5,
// the Clan Stats panel and the battles-left buckets, each as a
// paste-ready text block plus the structured data behind it.
package cwrace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/cwstats"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/cwrace")

// updateIntervalSeconds is the refresh hint the dashboard polls at.
const updateIntervalSeconds = 300

type Service struct {
	client   *fetch.Client
	registry clans.Registry
}

func NewService(client *fetch.Client, registry clans.Registry) Service {
	return Service{client: client, registry: registry}
}

type Section struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type Sections struct {
	Race        Section `json:"race"`
	ClanStats   Section `json:"clan_stats"`
	BattlesLeft Section `json:"battles_left"`
}

type Report struct {
	OK                    bool   `json:"ok"`
	GeneratedAt           string `json:"generated_at"`
	UpdateIntervalSeconds int    `json:"update_interval_seconds"`

	RaceText        string `json:"race_text"`
	ClanStatsText   string `json:"clan_stats_text"`
	BattlesLeftText string `json:"battles_left_text"`

	Sections    Sections `json:"sections"`
	CopyAllText string   `json:"copy_all_text"`

	Rows      []cwstats.RaceRow  `json:"rows"`
	ClanStats *cwstats.ClanStats `json:"clan_stats,omitempty"`
}

// Collect fetches the CWStats race page once and renders all three
// sections from it. A page without standings rows is a hard failure;
// a missing stats panel or battles table degrades to a placeholder
// line in that one section.
func (s Service) Collect(ctx context.Context, clanTag string) (*Report, error) {
	ctx, span := tracer.Start(ctx, "Collect")
	defer span.End()

	cfg := s.registry.Resolve(clanTag)

	page, err := cwstats.FetchRacePage(ctx, s.client, cfg.StatsRaceURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(page.Rows) == 0 {
		err := errors.New("no race rows found; the page structure may have changed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	raceText := renderRaceRows(page.Rows)
	statsText := renderClanStats(page.Stats)
	battlesText := renderBattlesLeft(page.Battles)

	return &Report{
		OK:                    true,
		GeneratedAt:           time.Now().UTC().Format(time.RFC3339),
		UpdateIntervalSeconds: updateIntervalSeconds,
		RaceText:              raceText,
		ClanStatsText:         statsText,
		BattlesLeftText:       battlesText,
		Sections: Sections{
			Race:        Section{Title: "Race", Text: raceText},
			ClanStats:   Section{Title: "Clan Stats", Text: statsText},
			BattlesLeft: Section{Title: "Battles left (today)", Text: battlesText},
		},
		CopyAllText: copyAllText(raceText, statsText, battlesText),
		Rows:        page.Rows,
		ClanStats:   page.Stats,
	}, nil
}

func renderRaceRows(rows []cwstats.RaceRow) string {
	top := rows
	if len(top) > 5 {
		top = top[:5]
	}

	var b strings.Builder
	b.WriteString("Race standings (top 5):")
	for i, row := range top {
		fmt.Fprintf(&b, "\n%d. 🏆 %s - Fame: %.0f | Trophy: %d", i+1, row.Name, row.Fame, row.Trophy)
	}
	if len(top) > 0 {
		sum := 0.0
		for _, row := range top {
			sum += row.Fame
		}
		fmt.Fprintf(&b, "\nAvg fame (top 5): %s", euroFloat(sum/float64(len(top))))
	}
	return b.String()
}

func renderClanStats(stats *cwstats.ClanStats) string {
	if stats == nil {
		return "Clan Stats:\nNo data found."
	}

	rank := func(r string) string {
		if r == "" {
			return "?"
		}
		return r
	}

	lines := []string{
		"Clan Stats:",
		fmt.Sprintf("📊 avg %s    ⚔️ Battles left: %s    🤝 Duels left: %s    🎯 Projected Finish %s (%s)",
			euroFloatPtr(stats.Avg), euroIntPtr(stats.BattlesLeft), euroIntPtr(stats.DuelsLeft),
			euroIntPtr(stats.ProjectedFinish), rank(stats.ProjectedFinishRank)),
		fmt.Sprintf("🏁 Best Possible Finish %s (%s)    💀 Worst Possible Finish %s (%s)",
			euroIntPtr(stats.BestPossibleFinish), rank(stats.BestPossibleRank),
			euroIntPtr(stats.WorstPossibleFinish), rank(stats.WorstPossibleRank)),
	}
	return strings.Join(lines, "\n")
}

func renderBattlesLeft(buckets map[int][]string) string {
	if buckets == nil {
		return "Battles left (today):\nNo table found for 'Decks Used Today'."
	}

	labels := map[int]string{
		4: "🟥 4 attacks left:",
		3: "🟧 3 attacks left:",
		2: "🟨 2 attacks left:",
		1: "🟩 1 attack left:",
	}

	parts := []string{"Battles left (today):"}
	for _, k := range []int{4, 3, 2, 1} {
		players := buckets[k]
		if len(players) == 0 {
			continue
		}
		lines := []string{labels[k]}
		for _, p := range players {
			lines = append(lines, "- "+p)
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func copyAllText(sections ...string) string {
	var parts []string
	for _, s := range sections {
		if t := strings.TrimSpace(s); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// euroFloat renders 1234.5 as "1.234,50", the decimal style the
// dashboard's audience reads.
func euroFloat(v float64) string {
	whole, frac, _ := strings.Cut(fmt.Sprintf("%.2f", v), ".")
	return groupThousands(whole) + "," + frac
}

func euroInt(v int) string {
	return groupThousands(fmt.Sprintf("%d", v))
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "." + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}

func euroFloatPtr(v *float64) string {
	if v == nil {
		return "?"
	}
	return euroFloat(*v)
}

func euroIntPtr(v *int) string {
	if v == nil {
		return "?"
	}
	return euroInt(*v)
}
