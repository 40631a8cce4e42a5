package analytics

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/numutil"
)

// weekMaps indexes the two analytics tables by cleaned player name.
// keys preserves the contribution table's row order so every consumer
// iterates deterministically; decksKeys does the same for players that
// only appear in the decks table.
type weekMaps struct {
	weekHeaders []string
	contrib     map[string]map[string]int
	decks       map[string]map[string]int
	roles       map[string]string
	printNames  map[string]string
	keys        []string
	decksKeys   []string
}

// buildMaps turns the filtered contribution and decks tables into
// per-player week maps. The week columns are everything after the C
// respectively D column; cells that do not parse as integers are left
// out of the map entirely. Decks values are clamped to 0..16.
func buildMaps(contrib, decks Table) (*weekMaps, error) {
	cIdx := headerPosition(contrib.Headers, "c")
	dIdx := headerPosition(decks.Headers, "d")
	if cIdx < 0 || dIdx < 0 {
		return nil, errors.New("analytics tables are missing the C or D column")
	}

	m := &weekMaps{
		weekHeaders: contrib.Headers[cIdx+1:],
		contrib:     map[string]map[string]int{},
		decks:       map[string]map[string]int{},
		roles:       map[string]string{},
		printNames:  map[string]string{},
	}
	decksWeekHeaders := decks.Headers[dIdx+1:]

	for _, row := range contrib.Rows {
		if len(row) == 0 {
			continue
		}
		key := htmlutil.CleanNameKey(row[0])
		m.printNames[key] = row[0]
		if len(row) > 1 {
			m.roles[key] = row[1]
		}
		m.contrib[key] = weekValues(m.weekHeaders, row, cIdx+1, false)
		m.keys = append(m.keys, key)
	}

	for _, row := range decks.Rows {
		if len(row) == 0 {
			continue
		}
		key := htmlutil.CleanNameKey(row[0])
		if _, seen := m.printNames[key]; !seen {
			m.printNames[key] = row[0]
		}
		m.decks[key] = weekValues(decksWeekHeaders, row, dIdx+1, true)
		m.decksKeys = append(m.decksKeys, key)
	}

	return m, nil
}

func headerPosition(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func weekValues(weekHeaders []string, row []string, offset int, clampDecks bool) map[string]int {
	values := map[string]int{}
	for i, wh := range weekHeaders {
		cell := offset + i
		if cell >= len(row) {
			break
		}
		v, ok := numutil.ParseInt(row[cell])
		if !ok {
			continue
		}
		if clampDecks {
			v = numutil.Clamp(v, 0, 16)
		}
		values[wh] = v
	}
	return values
}

var weekHeaderRe = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)

// parseWeekKey splits a "<season>-<week>" column header into its
// numeric pair. Malformed headers report ok=false and are excluded
// from ordering, never treated as zero.
func parseWeekKey(header string) (season, week int, ok bool) {
	m := weekHeaderRe.FindStringSubmatch(header)
	if m == nil {
		return 0, 0, false
	}
	season, _ = numutil.ParseInt(m[1])
	week, _ = numutil.ParseInt(m[2])
	return season, week, true
}

func seasonOfWeek(header string) (int, bool) {
	season, _, ok := parseWeekKey(header)
	return season, ok
}

// detectSeasons returns the current (highest) and previous (second
// highest) season numbers seen across the week headers.
func detectSeasons(weekHeaders []string) (current, previous *int) {
	seen := map[int]bool{}
	var seasons []int
	for _, wh := range weekHeaders {
		s, ok := seasonOfWeek(wh)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		seasons = append(seasons, s)
	}
	if len(seasons) == 0 {
		return nil, nil
	}
	sort.Ints(seasons)

	current = &seasons[len(seasons)-1]
	if len(seasons) >= 2 {
		previous = &seasons[len(seasons)-2]
	}
	return current, previous
}

func seasonWeeks(weekHeaders []string, season int) []string {
	var out []string
	for _, wh := range weekHeaders {
		if s, ok := seasonOfWeek(wh); ok && s == season {
			out = append(out, wh)
		}
	}
	return out
}

// orderedWeek is one parseable week column, carried with its numeric
// sort key.
type orderedWeek struct {
	season int
	week   int
	header string
	decks  int
}

// sortedWeeks returns a player's parseable weeks in chronological
// order.
func sortedWeeks(decksByWeek map[string]int) []orderedWeek {
	var out []orderedWeek
	for wh, d := range decksByWeek {
		season, week, ok := parseWeekKey(wh)
		if !ok {
			continue
		}
		out = append(out, orderedWeek{season: season, week: week, header: wh, decks: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].season != out[j].season {
			return out[i].season < out[j].season
		}
		if out[i].week != out[j].week {
			return out[i].week < out[j].week
		}
		return out[i].header < out[j].header
	})
	return out
}
