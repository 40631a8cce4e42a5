package race

import (
	"sort"
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"

	"github.com/antzucaro/matchr"
)

// Derived clan totals over the filtered player rows. Players whose
// decks-used-today never parsed are excluded from sums rather than
// counted as four open attacks.

func battlesLeft(players []royale.PlayerRow) int {
	total := 0
	for _, p := range players {
		if left := p.AttacksLeftToday(); left != nil {
			total += *left
		}
	}
	return total
}

// duelsLeft counts players who can still open a duel. A duel can cost
// up to three of the four daily attempts, hence the >= 3 bar.
func duelsLeft(players []royale.PlayerRow) int {
	count := 0
	for _, p := range players {
		if left := p.AttacksLeftToday(); left != nil && *left >= 3 {
			count++
		}
	}
	return count
}

func playersParticipated(players []royale.PlayerRow) int {
	count := 0
	for _, p := range players {
		if p.DecksUsedToday != nil && *p.DecksUsedToday >= 1 {
			count++
		}
	}
	return count
}

// bucketOpenPlayers groups player names by attacks still open today,
// 0 through 4.
func bucketOpenPlayers(players []royale.PlayerRow) map[int][]string {
	buckets := map[int][]string{4: {}, 3: {}, 2: {}, 1: {}, 0: {}}
	for _, p := range players {
		left := p.AttacksLeftToday()
		if left == nil || strings.TrimSpace(p.Name) == "" {
			continue
		}
		buckets[*left] = append(buckets[*left], p.Name)
	}
	return buckets
}

// projectedRanking returns the overviews that carry a projection,
// highest first.
func projectedRanking(overviews []royale.ClanOverview) []royale.ClanOverview {
	var ranked []royale.ClanOverview
	for _, c := range overviews {
		if c.ProjectedMedals != nil {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].ProjectedMedals > *ranked[j].ProjectedMedals
	})
	return ranked
}

const fuzzyNameFloor = 0.85

// findOurClan matches the home clan in the overview list by normalized
// name, falling back to a Jaro-Winkler comparison because the overview
// name occasionally carries decorations the config name lacks.
func findOurClan(overviews []royale.ClanOverview, name string) *royale.ClanOverview {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return nil
	}
	for i := range overviews {
		if strings.ToLower(strings.TrimSpace(overviews[i].Name)) == want {
			return &overviews[i]
		}
	}

	bestScore := fuzzyNameFloor
	var best *royale.ClanOverview
	for i := range overviews {
		got := strings.ToLower(strings.TrimSpace(overviews[i].Name))
		score := matchr.JaroWinkler(want, got, true)
		if score > bestScore {
			bestScore = score
			best = &overviews[i]
		}
	}
	return best
}

// neededPerDeck computes the average medals per remaining deck the home
// clan needs to overtake the nearest clan projected above it. Nil when
// there is no such clan, no projection, or no decks left.
func neededPerDeck(overviews []royale.ClanOverview, our *royale.ClanOverview) (target *royale.ClanOverview, needed *float64) {
	if our == nil || our.ProjectedMedals == nil || our.CurrentMedals == nil ||
		our.DecksUsedToday == nil || our.DecksTotalToday == nil {
		return nil, nil
	}
	remaining := *our.DecksTotalToday - *our.DecksUsedToday
	if remaining <= 0 {
		return nil, nil
	}

	ranked := projectedRanking(overviews)
	for i := len(ranked) - 1; i >= 0; i-- {
		if *ranked[i].ProjectedMedals > *our.ProjectedMedals {
			t := ranked[i]
			v := float64(*t.ProjectedMedals+1-*our.CurrentMedals) / float64(remaining)
			return &t, &v
		}
	}
	return nil, nil
}
