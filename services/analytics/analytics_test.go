package analytics

import (
	"strings"
	"testing"

	"github.com/Delaurensbot/BrabantRoyale/lib/htmlregion"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func testRoster() *royale.Roster {
	return &royale.Roster{Members: []royale.Member{
		{Tag: "AAA111", RawName: "Alice", NameKey: "alice", Role: royale.RoleLeader},
		{Tag: "BBB222", RawName: "Bob", NameKey: "bob", Role: royale.RoleMember},
		{Tag: "CCC333", RawName: "Carol", NameKey: "carol", Role: royale.RoleElder},
	}}
}

const contribTableHTML = `<html><body><table>
<thead><tr><th>Player</th><th>M</th><th>P</th><th>C</th><th>115-1</th><th>115-2</th><th>116-1</th><th>116-2</th></tr></thead>
<tbody>
<tr><td><a href="/player/AAA111">Alice</a></td><td>12</td><td>12</td><td>3000</td><td>3100</td><td>3200</td><td>3000</td><td>2900</td></tr>
<tr><td><a href="/player/BBB222">Bob</a></td><td>12</td><td>11</td><td>2600</td><td>2700</td><td>2800</td><td>2600</td><td>2500</td></tr>
<tr><td>Mallory</td><td>5</td><td>3</td><td>100</td><td>200</td><td>0</td><td>0</td><td>0</td></tr>
<tr><td>Carol</td><td>10</td><td>8</td><td>2000</td><td>0</td><td>2100</td><td>1900</td><td>1800</td></tr>
</tbody></table></body></html>`

const decksTableHTML = `<html><body><table>
<thead><tr><th>Player</th><th>M</th><th>P</th><th>D</th><th>115-1</th><th>115-2</th><th>116-1</th><th>116-2</th></tr></thead>
<tbody>
<tr><td><a href="/player/AAA111">Alice</a></td><td>12</td><td>12</td><td>16</td><td>16</td><td>16</td><td>16</td><td>16</td></tr>
<tr><td><a href="/player/BBB222">Bob</a></td><td>12</td><td>11</td><td>16</td><td>16</td><td>16</td><td>16</td><td>16</td></tr>
<tr><td>Carol</td><td>10</td><td>8</td><td>14</td><td>0</td><td>16</td><td>12</td><td>16</td></tr>
</tbody></table></body></html>`

func parseFixtureTables(t *testing.T) (Table, Table) {
	t.Helper()
	roster := testRoster()

	cDoc := mustDoc(t, contribTableHTML)
	cMatch := htmlregion.TableByHeaders(cDoc, "Player", "M", "P", "C")
	require.True(t, cMatch.Found())
	cHeaders, cRows := parseAlignedTable(cMatch)
	contrib := insertRoleColumn(cHeaders, filterCurrent(cRows, roster), roster)

	dDoc := mustDoc(t, decksTableHTML)
	dMatch := htmlregion.TableByHeaders(dDoc, "Player", "M", "P", "D")
	require.True(t, dMatch.Found())
	dHeaders, dRows := parseAlignedTable(dMatch)
	decks := insertRoleColumn(dHeaders, filterCurrent(dRows, roster), roster)

	return contrib, decks
}

func TestParseAndFilterTables(t *testing.T) {
	contrib, decks := parseFixtureTables(t)

	// Mallory is not a member and is filtered out.
	require.Len(t, contrib.Rows, 3)
	require.Len(t, decks.Rows, 3)

	require.Equal(t, []string{"Player", "Role", "M", "P", "C", "115-1", "115-2", "116-1", "116-2"}, contrib.Headers)
	require.Equal(t, "Alice", contrib.Rows[0][0])
	// Leader displays as Owner.
	require.Equal(t, "Owner", contrib.Rows[0][1])
	require.Equal(t, "Member", contrib.Rows[1][1])
	// Carol has no profile link; her role resolves through the name key.
	require.Equal(t, "Elder", contrib.Rows[2][1])
}

func TestBuildMaps(t *testing.T) {
	contrib, decks := parseFixtureTables(t)
	m, err := buildMaps(contrib, decks)
	require.NoError(t, err)

	require.Equal(t, []string{"115-1", "115-2", "116-1", "116-2"}, m.weekHeaders)
	require.Equal(t, 3100, m.contrib["alice"]["115-1"])
	require.Equal(t, 16, m.decks["bob"]["116-2"])
	// Carol's zero-contribution week is still present; zero parses fine.
	require.Equal(t, 0, m.contrib["carol"]["115-1"])
	require.Equal(t, []string{"alice", "bob", "carol"}, m.keys)
}

func TestBuildMapsMissingColumn(t *testing.T) {
	_, err := buildMaps(Table{Headers: []string{"Player", "Role"}}, Table{Headers: []string{"Player", "Role", "D"}})
	require.Error(t, err)
}

func TestDetectSeasons(t *testing.T) {
	current, previous := detectSeasons([]string{"115-1", "115-2", "116-1", "junk", "114-4"})
	require.NotNil(t, current)
	require.NotNil(t, previous)
	require.Equal(t, 116, *current)
	require.Equal(t, 115, *previous)

	current, previous = detectSeasons([]string{"116-1", "116-2"})
	require.Equal(t, 116, *current)
	require.Nil(t, previous)

	current, previous = detectSeasons([]string{"junk"})
	require.Nil(t, current)
	require.Nil(t, previous)
}

func TestComputeMVPCurrentSeason(t *testing.T) {
	contrib, decks := parseFixtureTables(t)
	m, err := buildMaps(contrib, decks)
	require.NoError(t, err)

	// Season 116: Alice and Bob perfect on both weeks; Carol used only
	// 12 decks on 116-1, a played week, so she is out.
	got := computeMVP(m, seasonWeeks(m.weekHeaders, 116), 10, false)
	require.Equal(t, []MVPEntry{
		{Player: "Alice", Score: 5900},
		{Player: "Bob", Score: 5100},
	}, got)
}

func TestComputeMVPPreviousSeasonRequiresEveryWeek(t *testing.T) {
	contrib, decks := parseFixtureTables(t)
	m, err := buildMaps(contrib, decks)
	require.NoError(t, err)

	// Season 115: Carol skipped 115-1 (contribution 0), which the
	// stricter previous-season rule disqualifies even though her played
	// week was perfect.
	got := computeMVP(m, seasonWeeks(m.weekHeaders, 115), 10, true)
	require.Equal(t, []MVPEntry{
		{Player: "Alice", Score: 6300},
		{Player: "Bob", Score: 5500},
	}, got)

	// The lenient mode lets her in with only the played week counted.
	lenient := computeMVP(m, seasonWeeks(m.weekHeaders, 115), 10, false)
	require.Len(t, lenient, 3)
	require.Equal(t, MVPEntry{Player: "Carol", Score: 2100}, lenient[2])
}

func TestComputeReliability(t *testing.T) {
	contrib, decks := parseFixtureTables(t)
	m, err := buildMaps(contrib, decks)
	require.NoError(t, err)

	got := computeReliability(m)
	require.Len(t, got, 3)

	// Carol played 3 weeks (115-2, 116-1, 116-2) with 16+12+16 decks:
	// 44/48 = 91.67, 4 missed, penalty 4*4 = 16.
	require.Equal(t, "Carol", got[0].Player)
	require.Equal(t, 3, got[0].WeeksPlayed)
	require.Equal(t, 44, got[0].AttacksDone)
	require.Equal(t, 4, got[0].MissedAttacks)
	require.Equal(t, 16, got[0].PenaltyPoints)
	require.InDelta(t, 91.67, got[0].ReliabilityScore, 0.001)

	// Alice and Bob are both perfect; ties keep insertion order.
	require.Equal(t, "Alice", got[1].Player)
	require.Equal(t, "Bob", got[2].Player)
	require.InDelta(t, 100.0, got[1].ReliabilityScore, 0.001)
}

func TestPerfectStreak(t *testing.T) {
	decks := map[string]int{
		"115-1": 16, "115-2": 12, "116-1": 16, "116-2": 16,
	}
	require.Equal(t, 2, perfectStreak(decks))

	require.Equal(t, 0, perfectStreak(map[string]int{"116-2": 15}))
	require.Equal(t, 0, perfectStreak(map[string]int{"junk": 16}))
}

func TestComputePromotions(t *testing.T) {
	m := &weekMaps{
		decks: map[string]map[string]int{
			"bob": {"115-1": 16, "115-2": 16, "116-1": 16, "116-2": 16, "116-3": 16, "116-4": 16},
		},
		contrib: map[string]map[string]int{
			"bob": {"115-1": 2600, "115-2": 2600, "116-1": 2600, "116-2": 2600, "116-3": 2600, "116-4": 2600},
		},
		roles:      map[string]string{"bob": "Member"},
		printNames: map[string]string{"bob": "Bob"},
		decksKeys:  []string{"bob"},
	}

	got := computePromotions(m)
	require.Len(t, got, 1)
	require.Equal(t, "Bob", got[0].Player)
	require.Equal(t, 6, got[0].StreakWeeks)
	require.InDelta(t, 2600, got[0].AverageContribution, 0.001)

	// One imperfect week breaks the trailing streak.
	m.decks["bob"]["116-4"] = 15
	require.Empty(t, computePromotions(m))
	m.decks["bob"]["116-4"] = 16

	// Below the contribution bar.
	for wh := range m.contrib["bob"] {
		m.contrib["bob"][wh] = 2400
	}
	require.Empty(t, computePromotions(m))

	// Already an Elder.
	for wh := range m.contrib["bob"] {
		m.contrib["bob"][wh] = 2600
	}
	m.roles["bob"] = "Elder"
	require.Empty(t, computePromotions(m))
}

func TestPenaltyFor(t *testing.T) {
	require.Equal(t, 0, penaltyFor(0))
	require.Equal(t, 2, penaltyFor(1))
	require.Equal(t, 4, penaltyFor(2))
	require.Equal(t, 12, penaltyFor(3))
	require.Equal(t, 16, penaltyFor(4))
	require.Equal(t, 40, penaltyFor(10))
}

func TestRenderText(t *testing.T) {
	contrib, decks := parseFixtureTables(t)
	m, err := buildMaps(contrib, decks)
	require.NoError(t, err)

	current, previous := detectSeasons(m.weekHeaders)
	report := &Report{
		OK:                  true,
		CurrentSeason:       current,
		PreviousSeason:      previous,
		MVPCurrent:          computeMVP(m, seasonWeeks(m.weekHeaders, *current), 10, false),
		MVPPrevious:         computeMVP(m, seasonWeeks(m.weekHeaders, *previous), 10, true),
		RatioScores:         computeReliability(m),
		PromotionCandidates: computePromotions(m),
		ContributionTable:   contrib,
		DecksUsedTable:      decks,
	}

	text := report.RenderText()
	require.Contains(t, text, "Previous season MVP (Season 115)")
	require.Contains(t, text, "Current season perfect leaderboard (Season 116)")
	require.Contains(t, text, "Reliability (worst first)")
	require.Contains(t, text, "Contribution (current members only)")
	require.Contains(t, text, "Alice")
}
