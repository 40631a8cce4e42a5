package recap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"
)

// Misser is a participant who started the war but did not finish all
// 16 attacks.
type Misser struct {
	Name    string `json:"name"`
	Attacks int    `json:"attacks"`
	Missed  int    `json:"missed"`
	Points  int    `json:"points"`
	Tag     string `json:"-"`
}

type EndWarReport struct {
	OK          bool   `json:"ok"`
	GeneratedAt string `json:"generated_at"`
	ClanTag     string `json:"clan_tag"`
	ClanName    string `json:"clan_name"`

	Rank          *int `json:"rank"`
	BoatPoints    *int `json:"boat_points"`
	TrophyChange  *int `json:"trophy_change"`
	TrophiesAfter *int `json:"trophies_after"`

	TopPlayer          *royale.Participant `json:"top_player,omitempty"`
	Count16            int                 `json:"count16"`
	SumPoints16        int                 `json:"sum_points_16"`
	MissedAttacksTotal int                 `json:"missed_attacks_total"`

	Missers             []Misser `json:"missers"`
	MemberFilterApplied bool     `json:"member_filter_applied"`

	Source string   `json:"source"`
	Errors []string `json:"errors"`
}

// CollectEndWar summarizes the most recent finished war: the clan's
// result row, the top scorer, the full-attack group and everyone who
// left attacks on the table. The missers list is narrowed to current
// members when the roster fetch succeeds; the missed-attack total is
// always computed over the unfiltered list.
func (s Service) CollectEndWar(ctx context.Context, clanTag string) (*EndWarReport, error) {
	ctx, span := tracer.Start(ctx, "CollectEndWar")
	defer span.End()

	cfg := s.registry.Resolve(clanTag)
	report := &EndWarReport{
		OK:          true,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		ClanTag:     cfg.Tag,
		ClanName:    cfg.Name,
		Missers:     []Misser{},
		Source:      "scrape",
		Errors:      []string{},
	}

	var log *royale.WarLog
	if s.apiToken != "" {
		data, errs := s.fetchAPI(ctx, "/clan/"+cfg.Tag+"/warlog")
		report.Errors = append(report.Errors, errs...)
		if data != nil {
			log = royale.ParseWarLogJSON(data, cfg.Tag)
			if log != nil {
				report.Source = "api"
			} else {
				report.Errors = append(report.Errors, "api parsing mismatch for war log")
			}
		}
	}
	if log == nil {
		scraped, err := royale.FetchWarLog(ctx, s.client, cfg.WarLogURL, cfg.Tag, cfg.Name)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
		} else if scraped == nil {
			report.Errors = append(report.Errors, "html parsing mismatch for war log")
		} else {
			log = scraped
		}
	}
	if log == nil {
		return report, nil
	}

	result := log.ClanResult
	if result == nil {
		result = log.LatestWeek
	}
	if result != nil {
		report.Rank = result.Rank
		report.BoatPoints = result.BoatPoints
		report.TrophyChange = result.TrophyChange
		report.TrophiesAfter = result.TrophiesAfter
	}

	summarizeParticipants(report, log.Participants)
	s.filterMissers(ctx, report, cfg.ClanURL)

	return report, nil
}

func summarizeParticipants(report *EndWarReport, participants []royale.Participant) {
	var top *royale.Participant
	var missers []Misser

	for i := range participants {
		p := participants[i]
		if top == nil || p.Points > top.Points {
			top = &participants[i]
		}
		switch {
		case p.Attacks == 16:
			report.Count16++
			report.SumPoints16 += p.Points
		case p.Attacks > 0 && p.Attacks < 16:
			missed := 16 - p.Attacks
			report.MissedAttacksTotal += missed
			missers = append(missers, Misser{
				Name:    p.Name,
				Attacks: p.Attacks,
				Missed:  missed,
				Points:  p.Points,
				Tag:     p.Tag,
			})
		}
	}

	report.TopPlayer = top
	if missers != nil {
		report.Missers = missers
	}
}

// filterMissers narrows the missers list to current clan members. A
// failed roster fetch is recorded and leaves the list unfiltered.
func (s Service) filterMissers(ctx context.Context, report *EndWarReport, clanURL string) {
	roster, err := royale.FetchRoster(ctx, s.client, clanURL)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("clan member filter failed: %v", err))
		return
	}
	if roster.Empty() {
		return
	}

	tags := roster.TagSet()
	names := map[string]bool{}
	for _, m := range roster.Members {
		names[strings.ToLower(htmlutil.NormalizeSpace(m.RawName))] = true
	}

	report.MemberFilterApplied = true

	// Misser rows from HTML scraping often carry no tag, so names do
	// the matching there; API rows carry both.
	filtered := []Misser{}
	for _, m := range report.Missers {
		tagHit := m.Tag != "" && tags[m.Tag]
		nameHit := names[strings.ToLower(htmlutil.NormalizeSpace(m.Name))]
		if tagHit || nameHit {
			filtered = append(filtered, m)
		}
	}
	report.Missers = filtered
}
