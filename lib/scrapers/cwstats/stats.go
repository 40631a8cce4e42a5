package cwstats

import (
	"regexp"
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/htmlregion"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/numutil"

	"github.com/PuerkitoBio/goquery"
)

// ClanStats is the summary panel next to the race standings. Finish
// ranks come with their page wording ("2nd") since they are display
// strings, not positions to compute with.
type ClanStats struct {
	Avg                 *float64 `json:"avg,omitempty"`
	BattlesLeft         *int     `json:"battles_left,omitempty"`
	DuelsLeft           *int     `json:"duels_left,omitempty"`
	ProjectedFinish     *int     `json:"projected_finish,omitempty"`
	ProjectedFinishRank string   `json:"projected_finish_rank,omitempty"`
	BestPossibleFinish  *int     `json:"best_possible_finish,omitempty"`
	BestPossibleRank    string   `json:"best_possible_rank,omitempty"`
	WorstPossibleFinish *int     `json:"worst_possible_finish,omitempty"`
	WorstPossibleRank   string   `json:"worst_possible_rank,omitempty"`
}

var (
	clanStatsLabelRe = regexp.MustCompile(`(?i)\bClan\s+Stats\b`)
	numericTokenRe   = regexp.MustCompile(`^[\d,\.]+$`)
	intTokenRe       = regexp.MustCompile(`^[\d,]+$`)
)

var clanStatsKeywords = []string{"battles left", "duels left", "projected finish"}

// ParseClanStats locates the panel labeled "Clan Stats" whose ancestor
// carries all three stat phrases, then reads the values out of the
// token stream. Nil when no such panel exists.
func ParseClanStats(doc *goquery.Document) *ClanStats {
	container := htmlregion.LabeledContainer(doc, clanStatsLabelRe, clanStatsKeywords, 10)
	if !container.Found() {
		return nil
	}

	tokens := htmlutil.Tokens(container.Sel)
	lower := make([]string, len(tokens))
	for i, t := range tokens {
		lower[i] = strings.ToLower(t)
	}

	stats := &ClanStats{}
	stats.Avg = parseFloatToken(firstOf(
		valueAfter(tokens, lower, "avg"),
		valueAfter(tokens, lower, "average")))
	stats.BattlesLeft = parseIntToken(firstOf(
		valueAfter(tokens, lower, "battles"),
		valueAfter(tokens, lower, "battles left")))
	stats.DuelsLeft = parseIntToken(firstOf(
		valueAfter(tokens, lower, "duels"),
		valueAfter(tokens, lower, "duels left")))

	stats.ProjectedFinishRank, stats.ProjectedFinish = rankAndValue(tokens, lower, "projected finish")
	stats.BestPossibleRank, stats.BestPossibleFinish = rankAndValue(tokens, lower, "best possible finish")
	stats.WorstPossibleRank, stats.WorstPossibleFinish = rankAndValue(tokens, lower, "worst possible finish")

	return stats
}

// valueAfter returns the first numeric token within the five tokens
// following an exact label token.
func valueAfter(tokens, lower []string, label string) string {
	ll := strings.ToLower(label)
	for i, tok := range lower {
		if tok != ll {
			continue
		}
		end := i + 6
		if end > len(tokens) {
			end = len(tokens)
		}
		for j := i + 1; j < end; j++ {
			if numericTokenRe.MatchString(tokens[j]) {
				return tokens[j]
			}
		}
	}
	return ""
}

// rankAndValue reads a finish stat: the ordinal directly before the
// label is the rank, the first integer token after it the value.
func rankAndValue(tokens, lower []string, label string) (string, *int) {
	ll := strings.ToLower(label)
	for i, tok := range lower {
		if tok != ll {
			continue
		}

		rank := ""
		if i > 0 && numutil.IsOrdinal(lower[i-1]) {
			rank = tokens[i-1]
		}

		end := i + 6
		if end > len(tokens) {
			end = len(tokens)
		}
		for j := i + 1; j < end; j++ {
			if intTokenRe.MatchString(tokens[j]) {
				return rank, parseIntToken(tokens[j])
			}
		}
		return rank, nil
	}
	return "", nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseIntToken(token string) *int {
	if token == "" {
		return nil
	}
	if v, ok := numutil.FirstInt(token); ok {
		return intPtr(v)
	}
	return nil
}

func parseFloatToken(token string) *float64 {
	if token == "" {
		return nil
	}
	if v, ok := numutil.ParseLocaleNumber(token); ok {
		return floatPtr(v)
	}
	return nil
}
