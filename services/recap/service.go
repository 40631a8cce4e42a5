// Package recap tracks how the clan's war ended: its rank and trophies
// on the national leaderboard with movement against the previous
// snapshot, and the end-war breakdown of the latest war log entry.
// Every sub-source degrades independently; a failed fetch lands in the
// report's error list instead of taking the whole report down.
package recap

import (
	"context"
	"fmt"
	"time"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"
	"github.com/Delaurensbot/BrabantRoyale/lib/snapshotstore"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/recap")

// apiBases are the endpoints tried, in order, when an API token is
// configured. Scraping remains the fallback either way.
var apiBases = []string{
	"https://api.royaleapi.com",
	"https://royaleapi.com/api",
}

type Service struct {
	client   *fetch.Client
	registry clans.Registry
	store    *snapshotstore.Store
	apiToken string
}

func NewService(client *fetch.Client, registry clans.Registry, store *snapshotstore.Store, apiToken string) Service {
	return Service{client: client, registry: registry, store: store, apiToken: apiToken}
}

type Report struct {
	OK          bool   `json:"ok"`
	GeneratedAt string `json:"generated_at"`
	ClanTag     string `json:"clan_tag"`

	RankNow     *int                    `json:"rank_now"`
	RankPrev    *int                    `json:"rank_prev"`
	TrophiesNow *int                    `json:"trophies_now"`
	Movement    string                  `json:"movement"`
	Snapshot    *snapshotstore.Snapshot `json:"snapshot,omitempty"`

	Source string   `json:"source"`
	Errors []string `json:"errors"`
}

// Collect resolves the clan's current leaderboard position, compares it
// against the stored snapshot and appends a new snapshot when both rank
// and trophies resolved.
func (s Service) Collect(ctx context.Context, clanTag string) (*Report, error) {
	ctx, span := tracer.Start(ctx, "Collect")
	defer span.End()

	cfg := s.registry.Resolve(clanTag)
	report := &Report{
		OK:          true,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		ClanTag:     cfg.Tag,
		Source:      "scrape",
		Errors:      []string{},
	}

	var entry *royale.LeaderboardEntry
	if s.apiToken != "" {
		data, errs := s.fetchAPI(ctx, "/clans/war/nl")
		report.Errors = append(report.Errors, errs...)
		if data != nil {
			entry = royale.ParseLeaderboardJSON(data, cfg.Tag)
			if entry != nil {
				report.Source = "api"
			} else {
				report.Errors = append(report.Errors, "api parsing mismatch for leaderboard")
			}
		}
	}
	if entry == nil {
		scraped, err := royale.FetchLeaderboardRow(ctx, s.client, cfg.LeaderboardURL, cfg.Tag, cfg.Name)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
		} else if scraped == nil {
			report.Errors = append(report.Errors, "html parsing mismatch for leaderboard")
		} else {
			entry = scraped
		}
	}

	if entry != nil {
		report.RankNow = entry.Rank
		report.TrophiesNow = entry.Trophies
	}

	if prev, ok, err := s.store.Latest(cfg.Tag); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("snapshot read failed: %v", err))
	} else if ok {
		report.RankPrev = &prev.Rank
	}

	report.Movement = movement(report.RankNow, report.RankPrev)

	if report.RankNow != nil && report.TrophiesNow != nil {
		snap, err := s.store.Append(cfg.Tag, *report.RankNow, *report.TrophiesNow, time.Now())
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("snapshot write failed: %v", err))
		} else {
			report.Snapshot = &snap
		}
	}

	return report, nil
}

func movement(now, prev *int) string {
	if now == nil || prev == nil {
		return "unknown"
	}
	switch {
	case *now < *prev:
		return "improved"
	case *now > *prev:
		return "worsened"
	default:
		return "unchanged"
	}
}

// fetchAPI tries each API base in order and returns the first JSON
// body, with one error message per base that failed.
func (s Service) fetchAPI(ctx context.Context, path string) (map[string]any, []string) {
	var errs []string
	for _, base := range apiBases {
		var out map[string]any
		if err := s.client.GetJSON(ctx, base+path, s.apiToken, &out); err != nil {
			errs = append(errs, fmt.Sprintf("api error at %s%s: %v", base, path, err))
			continue
		}
		return out, errs
	}
	return nil, errs
}
