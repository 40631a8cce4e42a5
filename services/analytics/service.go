// Package analytics builds the long-horizon war report from the
// analytics page: per-week contribution and decks-used tables reduced
// to MVP leaderboards, reliability scores and promotion candidates for
// the current clan members.
package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlregion"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/analytics")

type Service struct {
	client   *fetch.Client
	registry clans.Registry
}

func NewService(client *fetch.Client, registry clans.Registry) Service {
	return Service{client: client, registry: registry}
}

type Options struct {
	// Top bounds the MVP leaderboards; 0 means the default of 10.
	Top int
}

const defaultTop = 10

type Report struct {
	OK          bool   `json:"ok"`
	GeneratedAt string `json:"generated_at"`
	ClanTag     string `json:"clan_tag"`

	CurrentSeason  *int `json:"current_season,omitempty"`
	PreviousSeason *int `json:"previous_season,omitempty"`

	MVPCurrent          []MVPEntry           `json:"mvp_current"`
	MVPPrevious         []MVPEntry           `json:"mvp_previous"`
	RatioScores         []ReliabilityScore   `json:"ratio_scores"`
	PromotionCandidates []PromotionCandidate `json:"promotion_candidates"`

	ContributionTable Table `json:"contribution_table"`
	DecksUsedTable    Table `json:"decks_used_table"`
}

// Collect scrapes the member list and the analytics page, filters both
// per-week tables down to current members and computes every derived
// metric.
func (s Service) Collect(ctx context.Context, clanTag string, opts Options) (*Report, error) {
	ctx, span := tracer.Start(ctx, "Collect")
	defer span.End()

	fail := func(err error) (*Report, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	cfg := s.registry.Resolve(clanTag)

	roster, err := royale.FetchRoster(ctx, s.client, cfg.ClanURL)
	if err != nil {
		return fail(err)
	}
	if roster.Empty() {
		return fail(errors.New("no members found on clan page"))
	}

	doc, err := s.client.Document(ctx, cfg.AnalyticsURL)
	if err != nil {
		return fail(err)
	}

	contribTable := htmlregion.TableByHeaders(doc, "Player", "M", "P", "C")
	decksTable := htmlregion.TableByHeaders(doc, "Player", "M", "P", "D")
	if !contribTable.Found() || !decksTable.Found() {
		return fail(errors.New("required tables not found on analytics page"))
	}

	contribHeaders, contribRows := parseAlignedTable(contribTable)
	contrib := insertRoleColumn(contribHeaders, filterCurrent(contribRows, roster), roster)

	decksHeaders, decksRows := parseAlignedTable(decksTable)
	decks := insertRoleColumn(decksHeaders, filterCurrent(decksRows, roster), roster)

	maps, err := buildMaps(contrib, decks)
	if err != nil {
		return fail(err)
	}

	top := opts.Top
	if top <= 0 {
		top = defaultTop
	}

	current, previous := detectSeasons(maps.weekHeaders)

	report := &Report{
		OK:             true,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		ClanTag:        cfg.Tag,
		CurrentSeason:  current,
		PreviousSeason: previous,

		MVPCurrent:          []MVPEntry{},
		MVPPrevious:         []MVPEntry{},
		RatioScores:         computeReliability(maps),
		PromotionCandidates: computePromotions(maps),

		ContributionTable: contrib,
		DecksUsedTable:    decks,
	}

	if current != nil {
		report.MVPCurrent = computeMVP(maps, seasonWeeks(maps.weekHeaders, *current), top, false)
	}
	if previous != nil {
		report.MVPPrevious = computeMVP(maps, seasonWeeks(maps.weekHeaders, *previous), top, true)
	}
	return report, nil
}
