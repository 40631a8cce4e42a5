// Package race builds the war race report for one clan: the RoyaleAPI
// race page reconciled against the clan's member list, with derived
// clan totals and the rendered text blocks the clan leadership pastes
// into chat.
package race

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/race")

type Service struct {
	client   *fetch.Client
	registry clans.Registry
}

func NewService(client *fetch.Client, registry clans.Registry) Service {
	return Service{client: client, registry: registry}
}

type Options struct {
	// Top limits the player list to the first N rows; 0 keeps all.
	Top int
	// StoryMax caps the short story length in runes.
	StoryMax int
}

const defaultStoryMax = 220

type Report struct {
	OK          bool   `json:"ok"`
	GeneratedAt string `json:"generated_at"`
	ClanTag     string `json:"clan_tag"`
	ClanName    string `json:"clan_name"`
	RaceURL     string `json:"race_url"`
	ClanURL     string `json:"clan_url"`

	Day      *int                  `json:"day,omitempty"`
	DayLabel string                `json:"day_label,omitempty"`
	Clans    []royale.ClanOverview `json:"clans"`
	Players  []royale.PlayerRow    `json:"players"`

	OverviewText     string `json:"overview_text"`
	InsightsText     string `json:"insights_text"`
	ClanStatsText    string `json:"clan_stats_text"`
	PlayersText      string `json:"players_text"`
	BattlesLeftText  string `json:"battles_left_text"`
	RiskText         string `json:"risk_text"`
	Day1Text         string `json:"day1_text,omitempty"`
	Day4Text         string `json:"day4_text,omitempty"`
	Day4HighFameText string `json:"day4_high_fame_text,omitempty"`
	StoryText        string `json:"story_text"`
}

// Collect scrapes the member list and the race page, keeps only rows
// belonging to current members and assembles the full report.
func (s Service) Collect(ctx context.Context, clanTag string, opts Options) (*Report, error) {
	ctx, span := tracer.Start(ctx, "Collect")
	defer span.End()

	cfg := s.registry.Resolve(clanTag)

	roster, err := royale.FetchRoster(ctx, s.client, cfg.ClanURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if roster.Empty() {
		err := errors.New("no members found on clan page")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := s.client.Document(ctx, cfg.RaceURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	overviews := reconcileOverviews(doc)
	royale.FillProjected(overviews)

	players := filterMembers(royale.ParsePlayerRows(doc), roster)
	sort.SliceStable(players, func(i, j int) bool { return players[i].Rank < players[j].Rank })
	players = royale.DedupeRows(players)
	if opts.Top > 0 && len(players) > opts.Top {
		players = players[:opts.Top]
	}

	day := royale.ParseDayNumber(doc)
	our := findOurClan(overviews, cfg.Name)

	storyMax := opts.StoryMax
	if storyMax <= 0 {
		storyMax = defaultStoryMax
	}

	report := &Report{
		OK:          true,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		ClanTag:     cfg.Tag,
		ClanName:    cfg.Name,
		RaceURL:     cfg.RaceURL,
		ClanURL:     cfg.ClanURL,
		Day:         day,
		DayLabel:    royale.ParseDayLabel(doc),
		Clans:       overviews,
		Players:     players,

		OverviewText:     renderOverviewTable(overviews),
		InsightsText:     renderInsights(overviews, our),
		ClanStatsText:    renderClanStats(day, overviews, our, players),
		PlayersText:      renderPlayersTable(players),
		BattlesLeftText:  renderBattlesLeft(players),
		RiskText:         renderRisk(players),
		Day1Text:         renderDay1HighFame(day, players),
		Day4Text:         renderDay4LastChance(day, players),
		Day4HighFameText: renderDay4HighFame(day, players),
		StoryText:        buildShortStory(day, overviews, our, storyMax),
	}
	return report, nil
}

// reconcileOverviews prefers the structured layout and overlays the
// degraded layouts onto it, so counters the primary rendered as zero
// can be rescued from a secondary read of the same page. When the
// structured layout is absent entirely the degraded layouts are used
// on their own.
func reconcileOverviews(doc *goquery.Document) []royale.ClanOverview {
	primary := royale.OverviewsFromDivs(doc)
	if len(primary) == 0 {
		return royale.ParseClanOverviews(doc)
	}

	secondary := royale.OverviewsFromTables(doc)
	if len(secondary) == 0 {
		secondary = royale.OverviewsFromText(doc)
	}
	royale.OverlayOverviews(primary, secondary)
	return primary
}

// filterMembers keeps rows whose tag is on the roster or whose raw
// display name is; either signal suffices since tag extraction can fail
// while the name still matches, and vice versa.
func filterMembers(rows []royale.PlayerRow, roster *royale.Roster) []royale.PlayerRow {
	tags := roster.TagSet()
	names := roster.RawNameSet()

	var out []royale.PlayerRow
	for _, r := range rows {
		tagHit := r.Tag != "" && tags[clans.NormalizeTag(r.Tag)]
		nameHit := r.Name != "" && names[r.Name]
		if tagHit || nameHit {
			out = append(out, r)
		}
	}
	return out
}
