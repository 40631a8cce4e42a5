// Package joins reports the clan's most recent joins, enriched with
// each player's account level from their profile page. The per-player
// profile fetches are the dominant latency cost of this report.
package joins

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/joins")

type Service struct {
	client   *fetch.Client
	registry clans.Registry
}

func NewService(client *fetch.Client, registry clans.Registry) Service {
	return Service{client: client, registry: registry}
}

const defaultLimit = 10

type Report struct {
	OK          bool   `json:"ok"`
	GeneratedAt string `json:"generated_at"`
	ClanTag     string `json:"clan_tag"`
	HistoryURL  string `json:"history_url"`

	Joins []royale.JoinEvent `json:"joins"`
}

// Collect fetches the join history and enriches every join with the
// player's account level. A limit of 0 keeps the default of 10.
func (s Service) Collect(ctx context.Context, clanTag string, limit int) (*Report, error) {
	ctx, span := tracer.Start(ctx, "Collect")
	defer span.End()

	if limit <= 0 {
		limit = defaultLimit
	}
	cfg := s.registry.Resolve(clanTag)

	events, err := royale.FetchJoins(ctx, s.client, cfg.JoinHistoryURL, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	royale.EnrichAccountLevels(ctx, s.client, events)

	if events == nil {
		events = []royale.JoinEvent{}
	}
	return &Report{
		OK:          true,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		ClanTag:     cfg.Tag,
		HistoryURL:  cfg.JoinHistoryURL,
		Joins:       events,
	}, nil
}

// RenderText formats the joins as the terminal table the leadership
// checks after each war weekend.
func (r *Report) RenderText() string {
	var b strings.Builder
	b.WriteString("Last joins (with account level + link):\n")
	if len(r.Joins) == 0 {
		b.WriteString("No recent joins found.")
		return b.String()
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Name", "Player ID", "Ago", "AccLvl", "Link"})
	for i, j := range r.Joins {
		level := j.AccountLevel
		if level == "" {
			level = "-"
		}
		t.AppendRow(table.Row{i + 1, j.Name, j.Tag, j.Ago, level, j.URL})
	}
	b.WriteString(t.Render())

	fmt.Fprintf(&b, "\nSource: %s", r.HistoryURL)
	return b.String()
}
