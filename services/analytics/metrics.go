package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type MVPEntry struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// computeMVP ranks players by their summed contribution over the given
// season weeks. A played week (contribution > 0) must have all 16
// decks used or the player is out. With requireAllWeeks every week of
// the season must be played; without it unplayed weeks are skipped.
// The asymmetry between the two modes is deliberate: the previous
// season is judged complete, the running season is judged so far.
func computeMVP(m *weekMaps, weeks []string, topN int, requireAllWeeks bool) []MVPEntry {
	results := []MVPEntry{}

	for _, key := range m.keys {
		perWeek := m.contrib[key]
		total := 0
		eligible := true

		for _, wh := range weeks {
			c := perWeek[wh]
			if c <= 0 {
				if requireAllWeeks {
					eligible = false
				}
				continue
			}
			if m.decks[key][wh] != 16 {
				eligible = false
				break
			}
			total += c
		}

		if eligible && total > 0 {
			results = append(results, MVPEntry{Player: m.printNames[key], Score: total})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results
}

// penaltyTable prices missed attacks within a played week; misses
// beyond three cost 4 points each.
var penaltyTable = map[int]int{0: 0, 1: 2, 2: 4, 3: 12}

func penaltyFor(missing int) int {
	if p, ok := penaltyTable[missing]; ok {
		return p
	}
	return missing * 4
}

type ReliabilityScore struct {
	Player           string  `json:"player"`
	Role             string  `json:"role"`
	WeeksPlayed      int     `json:"weeks_played"`
	AttacksDone      int     `json:"attacks_done"`
	MissedAttacks    int     `json:"missed_attacks"`
	PenaltyPoints    int     `json:"penalty_points"`
	AvgPoints        float64 `json:"avg_points"`
	ReliabilityScore float64 `json:"reliability_score"`
}

// computeReliability scores every player over their played weeks only.
// Sorted ascending by (score, missed attacks) so the least reliable
// players lead the list.
func computeReliability(m *weekMaps) []ReliabilityScore {
	results := []ReliabilityScore{}

	for _, key := range m.keys {
		r := ReliabilityScore{Player: m.printNames[key], Role: m.roles[key]}
		totalPoints := 0

		for wh, c := range m.contrib[key] {
			if c <= 0 {
				continue
			}
			r.WeeksPlayed++
			totalPoints += c

			done := m.decks[key][wh]
			r.AttacksDone += done
			missing := 16 - done
			if missing < 0 {
				missing = 0
			}
			r.MissedAttacks += missing
			r.PenaltyPoints += penaltyFor(missing)
		}

		if r.WeeksPlayed > 0 {
			r.ReliabilityScore = round2(float64(r.AttacksDone) / float64(r.WeeksPlayed*16) * 100)
			r.AvgPoints = round2(float64(totalPoints) / float64(r.WeeksPlayed))
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ReliabilityScore != results[j].ReliabilityScore {
			return results[i].ReliabilityScore < results[j].ReliabilityScore
		}
		return results[i].MissedAttacks < results[j].MissedAttacks
	})
	return results
}

const (
	promotionStreakWeeks = 6
	promotionMinAvg      = 2500
)

type PromotionCandidate struct {
	Player              string  `json:"player"`
	StreakWeeks         int     `json:"streak_weeks"`
	AverageContribution float64 `json:"average_contribution"`
	Reason              string  `json:"reason"`
}

// perfectStreak counts the trailing run of chronological weeks with
// all 16 decks used.
func perfectStreak(decksByWeek map[string]int) int {
	ordered := sortedWeeks(decksByWeek)
	streak := 0
	for i := len(ordered) - 1; i >= 0; i-- {
		if ordered[i].decks != 16 {
			break
		}
		streak++
	}
	return streak
}

func averageContribution(perWeek map[string]int) float64 {
	sum, played := 0, 0
	for _, c := range perWeek {
		if c > 0 {
			sum += c
			played++
		}
	}
	if played == 0 {
		return 0
	}
	return round2(float64(sum) / float64(played))
}

// computePromotions lists Members who earned an Elder promotion: a
// trailing perfect streak of at least six weeks and an average
// contribution over played weeks of at least 2500.
func computePromotions(m *weekMaps) []PromotionCandidate {
	results := []PromotionCandidate{}

	for _, key := range m.decksKeys {
		if !strings.EqualFold(strings.TrimSpace(m.roles[key]), "member") {
			continue
		}

		streak := perfectStreak(m.decks[key])
		if streak < promotionStreakWeeks {
			continue
		}
		avg := averageContribution(m.contrib[key])
		if avg < promotionMinAvg {
			continue
		}

		results = append(results, PromotionCandidate{
			Player:              m.printNames[key],
			StreakWeeks:         streak,
			AverageContribution: avg,
			Reason: fmt.Sprintf(
				"Perfect attacks (D=16) for the last %d weeks as Member with avg C >= %d.",
				promotionStreakWeeks, promotionMinAvg),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].StreakWeeks != results[j].StreakWeeks {
			return results[i].StreakWeeks > results[j].StreakWeeks
		}
		return results[i].AverageContribution > results[j].AverageContribution
	})
	return results
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
