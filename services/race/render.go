package race

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

func orBlank(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func orBlankFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func renderOverviewTable(overviews []royale.ClanOverview) string {
	if len(overviews) == 0 {
		return "Clan overview: (not found on this page)"
	}

	sorted := make([]royale.ClanOverview, len(overviews))
	copy(sorted, overviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi, mj := -1, -1
		if sorted[i].CurrentMedals != nil {
			mi = *sorted[i].CurrentMedals
		}
		if sorted[j].CurrentMedals != nil {
			mj = *sorted[j].CurrentMedals
		}
		if mi != mj {
			return mi > mj
		}
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	t := newTable()
	t.AppendHeader(table.Row{"Clan", "Decks", "Avg/deck", "Projected", "Boat", "Medals"})
	for _, c := range sorted {
		decks := fmt.Sprintf("%s/%s", orBlank(c.DecksUsedToday), orBlank(c.DecksTotalToday))
		t.AppendRow(table.Row{
			c.Name, decks, orBlankFloat(c.AvgMedalsPerDeck),
			orBlank(c.ProjectedMedals), orBlank(c.BoatPoints), orBlank(c.CurrentMedals),
		})
	}
	return "Clan overview:\n" + t.Render()
}

func renderInsights(overviews []royale.ClanOverview, our *royale.ClanOverview) string {
	if len(overviews) == 0 {
		return "Insights: (no clan overview available)"
	}

	var b strings.Builder
	b.WriteString("Insights:\n")

	b.WriteString("\nClans finished (all decks used today):\n")
	finished := false
	for _, c := range overviews {
		if c.DecksUsedToday != nil && c.DecksTotalToday != nil && *c.DecksUsedToday >= *c.DecksTotalToday {
			fmt.Fprintf(&b, "- %s\n", c.Name)
			finished = true
		}
	}
	if !finished {
		b.WriteString("- (nobody yet)\n")
	}

	ranked := projectedRanking(overviews)
	b.WriteString("\nProjected ranking (high to low):\n")
	if len(ranked) == 0 {
		b.WriteString("(projected medals not found)\n")
	}
	for i, c := range ranked {
		fmt.Fprintf(&b, "%2d. %s -> %d\n", i+1, c.Name, *c.ProjectedMedals)
	}

	if our != nil && our.CurrentMedals != nil && our.DecksUsedToday != nil && our.DecksTotalToday != nil {
		remaining := *our.DecksTotalToday - *our.DecksUsedToday
		if remaining < 0 {
			remaining = 0
		}

		fmt.Fprintf(&b, "\nOur clan: %s\n", our.Name)
		fmt.Fprintf(&b, "- Current medals: %d\n", *our.CurrentMedals)
		fmt.Fprintf(&b, "- Decks used today: %d/%d\n", *our.DecksUsedToday, *our.DecksTotalToday)
		fmt.Fprintf(&b, "- Decks remaining today: %d\n", remaining)

		if remaining > 0 && our.ProjectedMedals != nil {
			target, needed := neededPerDeck(overviews, our)
			if target != nil {
				b.WriteString("\nTo beat the closest clan above us (by projected medals):\n")
				fmt.Fprintf(&b, "- Target: %s projected %d\n", target.Name, *target.ProjectedMedals)
				fmt.Fprintf(&b, "- Needed average medals per remaining deck: %.2f\n", *needed)
			} else {
				b.WriteString("\nWe are not behind anyone on projected medals (or projected missing).\n")
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderClanStats(day *int, overviews []royale.ClanOverview, our *royale.ClanOverview, players []royale.PlayerRow) string {
	var b strings.Builder
	b.WriteString("Clan Stats:\n")

	if day != nil {
		fmt.Fprintf(&b, "- Day %d\n", *day)
	}
	if our != nil && our.AvgMedalsPerDeck != nil {
		fmt.Fprintf(&b, "- Avg medals/deck: %.2f\n", *our.AvgMedalsPerDeck)
	}

	fmt.Fprintf(&b, "- Battles left: %d\n", battlesLeft(players))
	fmt.Fprintf(&b, "- Duels left: %d\n", duelsLeft(players))
	fmt.Fprintf(&b, "- Total players participated: %d\n", playersParticipated(players))

	ranked := projectedRanking(overviews)
	if our != nil && our.ProjectedMedals != nil && len(ranked) > 0 {
		pos := 1
		for i, c := range ranked {
			if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(our.Name)) {
				pos = i + 1
				break
			}
		}
		fmt.Fprintf(&b, "- Projected: %d (place %d)\n", *our.ProjectedMedals, pos)
	}

	if our != nil && our.CurrentMedals != nil && our.DecksUsedToday != nil && our.DecksTotalToday != nil {
		remaining := *our.DecksTotalToday - *our.DecksUsedToday
		if remaining < 0 {
			remaining = 0
		}
		fmt.Fprintf(&b, "- Decks: %d/%d (open %d)\n", *our.DecksUsedToday, *our.DecksTotalToday, remaining)
		fmt.Fprintf(&b, "- Current medals: %d\n", *our.CurrentMedals)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderPlayersTable(players []royale.PlayerRow) string {
	t := newTable()
	t.AppendHeader(table.Row{"#", "Name", "Role", "Today/Total", "Boat", "Fame"})
	for _, p := range players {
		decks := fmt.Sprintf("%s/%s", orBlank(p.DecksUsedToday), orBlank(p.DecksUsedTotal))
		t.AppendRow(table.Row{
			p.Rank, p.Name, royale.DisplayRole(p.Role), decks,
			orBlank(p.BoatAttacks), orBlank(p.Fame),
		})
	}
	return "Players (only current clan members):\n" + t.Render()
}

func attackWord(n int) string {
	if n == 1 {
		return "attack"
	}
	return "attacks"
}

func renderBattlesLeft(players []royale.PlayerRow) string {
	buckets := bucketOpenPlayers(players)

	var b strings.Builder
	b.WriteString("Battles left (today):")

	any := false
	for _, k := range []int{4, 3, 2, 1} {
		names := buckets[k]
		if len(names) == 0 {
			continue
		}
		any = true
		fmt.Fprintf(&b, "\n\n%d %s left:", k, attackWord(k))
		for _, n := range names {
			fmt.Fprintf(&b, "\n- %s", n)
		}
	}

	if !any {
		b.WriteString("\n\nEveryone is done for today.")
	}
	return b.String()
}

// renderRisk lists players with one to three open attacks: the group
// that started but may not finish the day.
func renderRisk(players []royale.PlayerRow) string {
	buckets := bucketOpenPlayers(players)

	var b strings.Builder
	b.WriteString("Players with loose attacks left:")

	any := false
	for _, k := range []int{3, 2, 1} {
		names := buckets[k]
		if len(names) == 0 {
			continue
		}
		any = true
		fmt.Fprintf(&b, "\n\n%d %s left:", k, attackWord(k))
		for _, n := range names {
			fmt.Fprintf(&b, "\n- %s", n)
		}
	}

	if !any {
		b.WriteString("\n\nNo risk players found (nobody with 1-3 open).")
	}
	return b.String()
}

type fameEntry struct {
	name string
	fame int
}

func highFamers(players []royale.PlayerRow, threshold int) []fameEntry {
	var out []fameEntry
	for _, p := range players {
		if p.Fame == nil || strings.TrimSpace(p.Name) == "" {
			continue
		}
		if *p.Fame >= threshold {
			out = append(out, fameEntry{name: p.Name, fame: *p.Fame})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].fame > out[j].fame })
	return out
}

const day1FameThreshold = 800

// renderDay1HighFame is only emitted on war day 1, celebrating a fast
// start. Empty on every other day and when nobody qualifies.
func renderDay1HighFame(day *int, players []royale.PlayerRow) string {
	if day == nil || *day != 1 {
		return ""
	}
	famers := highFamers(players, day1FameThreshold)
	if len(famers) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Players 800+:\n")
	fmt.Fprintf(&b, "- Count: %d\n", len(famers))
	for _, f := range famers {
		fmt.Fprintf(&b, "\n- %s: %d", f.name, f.fame)
	}
	return b.String()
}

const (
	day4LastChanceFame = 2100
	day4HighFame       = 3000
)

// renderDay4LastChance is only emitted on war day 4: players who still
// have all four attacks and enough fame to reach the 3000 mark.
func renderDay4LastChance(day *int, players []royale.PlayerRow) string {
	if day == nil || *day != 4 {
		return ""
	}

	var candidates []fameEntry
	for _, p := range players {
		left := p.AttacksLeftToday()
		if p.Fame == nil || left == nil || *left != 4 || strings.TrimSpace(p.Name) == "" {
			continue
		}
		if *p.Fame >= day4LastChanceFame {
			candidates = append(candidates, fameEntry{name: p.Name, fame: *p.Fame})
		}
	}

	var b strings.Builder
	b.WriteString("Players who can still reach 3k:")
	if len(candidates) == 0 {
		b.WriteString("\n- Nobody found with 0/4 used and 2100+ points.")
		return b.String()
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].fame > candidates[j].fame })
	for _, c := range candidates {
		fmt.Fprintf(&b, "\n- %s: %d", c.name, c.fame)
	}
	return b.String()
}

// renderDay4HighFame lists everyone already past the 3000 mark on the
// final war day.
func renderDay4HighFame(day *int, players []royale.PlayerRow) string {
	if day == nil || *day != 4 {
		return ""
	}
	famers := highFamers(players, day4HighFame)

	var b strings.Builder
	b.WriteString("Players 3000+:")
	if len(famers) == 0 {
		b.WriteString("\n- No players above 3000 fame.")
		return b.String()
	}

	fmt.Fprintf(&b, "\n- Count: %d\n", len(famers))
	for _, f := range famers {
		fmt.Fprintf(&b, "\n- %s: %d", f.name, f.fame)
	}
	return b.String()
}

// buildShortStory condenses the day into a paste-ready snippet bounded
// by maxRunes.
func buildShortStory(day *int, overviews []royale.ClanOverview, our *royale.ClanOverview, maxRunes int) string {
	title := "Day update"
	if day != nil {
		title = fmt.Sprintf("Day %d update", *day)
	}

	lines := []string{title + ":"}

	if our != nil && our.DecksUsedToday != nil && our.DecksTotalToday != nil {
		lines = append(lines, fmt.Sprintf("%d/%d attacks", *our.DecksUsedToday, *our.DecksTotalToday))
	}

	ranked := projectedRanking(overviews)
	if our != nil && our.ProjectedMedals != nil {
		for i, c := range ranked {
			if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(our.Name)) {
				lines = append(lines, fmt.Sprintf("projected outcome: place %d", i+1))
				break
			}
		}
	}

	if our != nil && our.AvgMedalsPerDeck != nil {
		lines = append(lines, fmt.Sprintf("Avg %.2f", *our.AvgMedalsPerDeck))

		avgSorted := make([]royale.ClanOverview, 0, len(overviews))
		for _, c := range overviews {
			if c.AvgMedalsPerDeck != nil {
				avgSorted = append(avgSorted, c)
			}
		}
		sort.SliceStable(avgSorted, func(i, j int) bool {
			return *avgSorted[i].AvgMedalsPerDeck > *avgSorted[j].AvgMedalsPerDeck
		})

		ourIdx := -1
		for i, c := range avgSorted {
			if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(our.Name)) {
				ourIdx = i
				break
			}
		}
		if ourIdx == 0 && len(avgSorted) > 1 {
			lead := *our.AvgMedalsPerDeck - *avgSorted[1].AvgMedalsPerDeck
			lines = append(lines, fmt.Sprintf("lead over 2nd place: %.2f", lead))
		} else if ourIdx > 0 {
			deficit := *avgSorted[0].AvgMedalsPerDeck - *our.AvgMedalsPerDeck
			lines = append(lines, fmt.Sprintf("behind 1st place: %.2f", deficit))
		}
	}

	story := strings.TrimSpace(strings.Join(lines, "\n"))
	runes := []rune(story)
	if len(runes) <= maxRunes {
		return story
	}
	if maxRunes <= 1 {
		return ""
	}
	return string(runes[:maxRunes-1]) + "…"
}
