package analytics

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderText formats the report for the terminal: the two MVP
// leaderboards, the reliability ranking, promotion suggestions and the
// raw per-week tables.
func (r *Report) RenderText() string {
	var b strings.Builder

	if r.PreviousSeason != nil {
		title := fmt.Sprintf("Previous season MVP (Season %d)", *r.PreviousSeason)
		if len(r.MVPPrevious) == 0 {
			fmt.Fprintf(&b, "%s\nNo players were perfect (C>0 and D=16 every week).\n\n", title)
		} else {
			b.WriteString(renderMVPTable(title, r.MVPPrevious))
		}
	}

	if r.CurrentSeason != nil {
		title := fmt.Sprintf("Current season perfect leaderboard (Season %d)", *r.CurrentSeason)
		if len(r.MVPCurrent) == 0 {
			fmt.Fprintf(&b, "%s\nNo perfect players found (played weeks need D=16).\n\n", title)
		} else {
			b.WriteString(renderMVPTable(title, r.MVPCurrent))
		}
	}

	b.WriteString(renderReliabilityTable(r.RatioScores))
	b.WriteString(renderPromotions(r.PromotionCandidates))
	b.WriteString(renderRawTable("Contribution (current members only)", r.ContributionTable))
	b.WriteString(renderRawTable("Decks Used (current members only)", r.DecksUsedTable))

	return strings.TrimRight(b.String(), "\n")
}

func renderMVPTable(title string, entries []MVPEntry) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Player", "Score"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Player, e.Score})
	}
	return title + "\n" + t.Render() + "\n\n"
}

func renderReliabilityTable(scores []ReliabilityScore) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Player", "Role", "Weeks", "Done", "Missed", "Penalty", "Avg", "Score"})
	for _, s := range scores {
		t.AppendRow(table.Row{
			s.Player, s.Role, s.WeeksPlayed, s.AttacksDone, s.MissedAttacks,
			s.PenaltyPoints, fmt.Sprintf("%.2f", s.AvgPoints), fmt.Sprintf("%.2f", s.ReliabilityScore),
		})
	}
	return "Reliability (worst first)\n" + t.Render() + "\n\n"
}

func renderPromotions(candidates []PromotionCandidate) string {
	var b strings.Builder
	b.WriteString("Promotion candidates (Member -> Elder)\n")
	if len(candidates) == 0 {
		b.WriteString("No candidates right now.\n\n")
		return b.String()
	}
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s: %d perfect weeks, avg contribution %.2f\n",
			c.Player, c.StreakWeeks, c.AverageContribution)
	}
	b.WriteString("\n")
	return b.String()
}

func renderRawTable(title string, tbl Table) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, len(tbl.Headers))
	for i, h := range tbl.Headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, row := range tbl.Rows {
		out := make(table.Row, len(tbl.Headers))
		for i := range out {
			if i < len(row) {
				out[i] = row[i]
			} else {
				out[i] = ""
			}
		}
		t.AppendRow(out)
	}
	return title + "\n" + t.Render() + "\n\n"
}
