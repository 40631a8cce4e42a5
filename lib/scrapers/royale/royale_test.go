package royale_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func playerTableHTML(extraRows string) string {
	var b strings.Builder
	b.WriteString(`<table><thead><tr><th>#</th><th>Player</th><th>Role</th>` +
		`<th>Decks Used Today</th><th>Decks Used</th><th>Boat Attacks</th><th>Fame</th></tr></thead><tbody>`)
	names := []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Frank", "Grace", "Heidi", "Ivan", "Judy"}
	roles := []string{"Leader", "Co-leader", "Elder", "Member", "Member", "Member", "Member", "Member", "Member", "Member"}
	for i, name := range names {
		fmt.Fprintf(&b,
			`<tr><td>%d</td><td><a href="/player/TAG%d">%s</a></td><td>%s</td>`+
				`<td>%d</td><td>%d</td><td>0</td><td>%d</td></tr>`,
			i+1, i, name, roles[i], i%5, 12+i%5, 3200-i*100)
	}
	b.WriteString(extraRows)
	b.WriteString(`</tbody></table>`)
	return b.String()
}

func TestParsePlayerRows(t *testing.T) {
	doc := docFromHTML(t, "<html><body>"+playerTableHTML(
		`<tr><td>11</td><td>Mallory -- 4 16 0 2100</td></tr>`+
			`<tr><td>spacer</td></tr>`)+"</body></html>")

	rows := royale.ParsePlayerRows(doc)
	require.Len(t, rows, 11)

	first := rows[0]
	require.Equal(t, 1, first.Rank)
	require.Equal(t, "Alice", first.Name)
	require.Equal(t, "TAG0", first.Tag)
	require.Equal(t, royale.RoleLeader, first.Role)
	require.NotNil(t, first.DecksUsedToday)
	require.Equal(t, 0, *first.DecksUsedToday)
	require.NotNil(t, first.Fame)
	require.Equal(t, 3200, *first.Fame)

	// No profile link, role placeholder "--": regex path takes the name
	// from the row text, leading rank included.
	last := rows[10]
	require.Equal(t, 11, last.Rank)
	require.Equal(t, "11 Mallory", last.Name)
	require.Empty(t, last.Tag)
	require.Equal(t, royale.RoleUnknown, last.Role)
	require.Equal(t, 4, *last.DecksUsedToday)
	require.Equal(t, 16, *last.DecksUsedTotal)
	require.Equal(t, 0, *last.BoatAttacks)
	require.Equal(t, 2100, *last.Fame)
}

func TestAttacksLeftToday(t *testing.T) {
	used := func(v int) royale.PlayerRow {
		return royale.PlayerRow{DecksUsedToday: &v}
	}
	for decksUsed, want := range map[int]int{0: 4, 1: 3, 4: 0, 9: 0} {
		left := used(decksUsed).AttacksLeftToday()
		require.NotNil(t, left)
		require.Equal(t, want, *left, "decks used %d", decksUsed)
	}
	require.Nil(t, royale.PlayerRow{}.AttacksLeftToday())
}

func TestDedupeRows(t *testing.T) {
	rows := []royale.PlayerRow{
		{Rank: 1, Name: "Alice", Tag: "AAA"},
		{Rank: 2, Name: "Alice again", Tag: "AAA"},
		{Rank: 3, Name: "Bob"},
		{Rank: 4, Name: "Bob"},
		{Rank: 5, Name: ""},
	}
	out := royale.DedupeRows(rows)
	require.Len(t, out, 2)
	require.Equal(t, 1, out[0].Rank)
	require.Equal(t, 3, out[1].Rank)
}

const standingsHTML = `
<div class="banner">Day 4 of 4</div>
<div class="standings">
  <a class="clan row" href="/clan/9YP8UY">
    <div class="summary">Brabant Royale</div>
    <div class="cw2_standing_outline">
      <div class="decks_used_today">178 / 200</div>
      <div class="medal_avg">150.00</div>
      <div>&#8594; 34496</div>
    </div>
    <div class="item value">120</div>
    <div class="item value">30672</div>
    <div class="item value">3456</div>
  </a>
  <a class="clan row" href="/clan/ABC123">
    <div class="summary">Rival Clan</div>
    <div class="cw2_standing_outline">
      <div class="decks_used_today">200 / 200</div>
      <div class="medal_avg">160.00</div>
    </div>
    <div class="item value">90</div>
    <div class="item value">32000</div>
    <div class="item value">3300</div>
  </a>
  <a class="clan row" href="/clan/9YP8UY">
    <div class="summary">Brabant Royale</div>
    <div class="cw2_standing_outline">
      <div class="decks_used_today">1 / 200</div>
    </div>
  </a>
</div>`

func TestParseClanOverviewsFromDivs(t *testing.T) {
	doc := docFromHTML(t, "<html><body>"+standingsHTML+"</body></html>")

	clans := royale.ParseClanOverviews(doc)
	require.Len(t, clans, 2, "duplicate clan entries collapse on name")

	our := clans[0]
	require.Equal(t, "Brabant Royale", our.Name)
	require.Equal(t, 178, *our.DecksUsedToday)
	require.Equal(t, 200, *our.DecksTotalToday)
	require.Equal(t, 34496, *our.ProjectedMedals)
	require.Equal(t, 120, *our.BoatPoints)
	require.Equal(t, 30672, *our.CurrentMedals)
	require.Equal(t, 3456, *our.Trophies)
	// Live medals over decks beats the printed average.
	require.InDelta(t, 30672.0/178.0, *our.AvgMedalsPerDeck, 0.001)

	require.Equal(t, "Rival Clan", clans[1].Name)
	require.Equal(t, 32000, *clans[1].CurrentMedals)

	day := royale.ParseDayNumber(doc)
	require.NotNil(t, day)
	require.Equal(t, 4, *day)
}

func TestParseClanOverviewsFromTable(t *testing.T) {
	html := `<html><body><table><tr>
	  <td><div>Brabant Royale</div><div>150.00</div></td>
	  <td>120</td><td>30672</td><td>3456</td>
	  <td>178 / 200 &#8594; 34496</td>
	</tr></table></body></html>`
	doc := docFromHTML(t, html)

	clans := royale.ParseClanOverviews(doc)
	require.Len(t, clans, 1)
	c := clans[0]
	require.Equal(t, "Brabant Royale", c.Name)
	require.Equal(t, 178, *c.DecksUsedToday)
	require.Equal(t, 120, *c.BoatPoints)
	require.Equal(t, 30672, *c.CurrentMedals)
	require.Equal(t, 3456, *c.Trophies)
	require.Equal(t, 34496, *c.ProjectedMedals)
	require.InDelta(t, 30672.0/178.0, *c.AvgMedalsPerDeck, 0.001)
}

func TestParseClanOverviewsFromText(t *testing.T) {
	html := `<html><body>
	  <span>Clan</span><span>Boat</span><span>Medal</span><span>Trophy</span>
	  <span>Brabant Royale</span>
	  <span>120</span><span>30672</span><span>3456</span>
	  <span>178 / 200</span><span>150.00</span><span>&#8594;</span><span>34496</span>
	</body></html>`
	doc := docFromHTML(t, html)

	clans := royale.ParseClanOverviews(doc)
	require.Len(t, clans, 1)
	c := clans[0]
	require.Equal(t, "Brabant Royale", c.Name)
	require.Equal(t, 120, *c.BoatPoints)
	require.Equal(t, 30672, *c.CurrentMedals)
	require.Equal(t, 3456, *c.Trophies)
	require.Equal(t, 178, *c.DecksUsedToday)
	require.Equal(t, 200, *c.DecksTotalToday)
	require.Equal(t, 150.0, *c.AvgMedalsPerDeck)
	require.Equal(t, 34496, *c.ProjectedMedals)
}

func TestOverlayOverviews(t *testing.T) {
	zero := 0
	avg := 150.0
	boat := 120
	medals := 30672
	primary := []royale.ClanOverview{
		{Name: " Brabant Royale ", BoatPoints: &zero, CurrentMedals: &zero},
		{Name: "Rival Clan", AvgMedalsPerDeck: &avg},
	}
	secondary := []royale.ClanOverview{
		{Name: "brabant royale", AvgMedalsPerDeck: &avg, BoatPoints: &boat, CurrentMedals: &medals},
		{Name: "Rival Clan", AvgMedalsPerDeck: floatp(99.0), BoatPoints: &boat},
	}

	royale.OverlayOverviews(primary, secondary)

	require.Equal(t, 150.0, *primary[0].AvgMedalsPerDeck)
	require.Equal(t, 120, *primary[0].BoatPoints, "zero counts as missing for boat points")
	require.Equal(t, 30672, *primary[0].CurrentMedals)

	require.Equal(t, 150.0, *primary[1].AvgMedalsPerDeck, "present average is not overwritten")
	require.Equal(t, 120, *primary[1].BoatPoints, "absent boat points copy in")
}

func floatp(v float64) *float64 { return &v }

func TestFillProjected(t *testing.T) {
	avg := 150.0
	have := 9000
	clans := []royale.ClanOverview{
		{Name: "A", AvgMedalsPerDeck: &avg},
		{Name: "B", AvgMedalsPerDeck: &avg, ProjectedMedals: &have},
		{Name: "C"},
	}
	royale.FillProjected(clans)
	require.Equal(t, 30000, *clans[0].ProjectedMedals)
	require.Equal(t, 9000, *clans[1].ProjectedMedals)
	require.Nil(t, clans[2].ProjectedMedals)
}

func TestParseRoster(t *testing.T) {
	html := `<html><body><table>
	  <tr><td>1</td><td><a href="/player/AAA111">Alice</a></td><td>Leader</td></tr>
	  <tr><td>2</td><td><a href="/player/%23BBB222">bob&lt;3</a></td><td>Co-leader</td></tr>
	  <tr><td>3</td><td><a href="/player/AAA111">Alice dupe</a></td><td>Member</td></tr>
	</table>
	<a href="/player/CCC333">Carol</a>
	</body></html>`
	doc := docFromHTML(t, html)

	roster := royale.ParseRoster(doc)
	require.Len(t, roster.Members, 3)

	require.True(t, roster.TagSet()["AAA111"])
	require.True(t, roster.TagSet()["CCC333"])

	byKey := roster.ByNameKey()
	require.Equal(t, "AAA111", byKey["alice"].Tag)
	require.Equal(t, royale.RoleCoLeader, roster.RoleByTag()["BBB222"])
	// Row-less anchor has no role.
	_, hasRole := roster.RoleByTag()["CCC333"]
	require.False(t, hasRole)
}

func TestDisplayRole(t *testing.T) {
	require.Equal(t, "Owner", royale.DisplayRole(royale.RoleLeader))
	require.Equal(t, "Elder", royale.DisplayRole(royale.RoleElder))
	require.Equal(t, "Unknown", royale.DisplayRole(royale.RoleUnknown))
}

func TestParseJoins(t *testing.T) {
	html := `<html><body>
	<a href="/player/AAA111"><div class="ui attached icon positive message">
	  <div class="header">NewGuy</div>
	  <div class="ago i18n_duration_short">2d</div>
	  <div class="utc">2026-08-28 10:00</div>
	</div></a>
	<a href="/player/BBB222"><div class="ui attached icon negative message">
	  <div class="header">Leaver</div>
	</div></a>
	<a href="/player/CCC333"><div class="ui attached icon positive message">
	  <div class="header">Returning</div>
	</div></a>
	</body></html>`
	doc := docFromHTML(t, html)

	joins := royale.ParseJoins(doc, 10)
	require.Len(t, joins, 2, "leave blocks are ignored")
	require.Equal(t, "NewGuy", joins[0].Name)
	require.Equal(t, "AAA111", joins[0].Tag)
	require.Equal(t, "2d", joins[0].Ago)
	require.Contains(t, joins[0].URL, "AAA111")

	require.Len(t, royale.ParseJoins(doc, 1), 1)
}

func TestParseExperienceLevel(t *testing.T) {
	doc := docFromHTML(t, `<html><body><div>Experience Level 63</div></body></html>`)
	require.Equal(t, "63", royale.ParseExperienceLevel(doc))

	doc = docFromHTML(t, `<html><body><div>no level here</div></body></html>`)
	require.Empty(t, royale.ParseExperienceLevel(doc))
}

func TestParseWarLog(t *testing.T) {
	html := `<html><body>
	<table><thead><tr><th>Week</th><th>Rank</th><th>Boat</th><th>Trophy</th></tr></thead>
	  <tr><td>W11</td><td>2</td><td>120</td><td>+10 3440</td></tr>
	  <tr><td>W12</td><td>1</td><td>130</td><td>+16 3456</td></tr>
	</table>
	<table>
	  <tr><td>1</td><td>Brabant Royale #9YP8UY</td><td>45000</td><td>+16 3456</td></tr>
	</table>
	<table><thead><tr><th>Player</th><th>Attacks</th><th>Points</th></tr></thead>
	  <tr><td><a href="/player/AAA111">Alice</a></td><td>16</td><td>3200</td></tr>
	  <tr><td>Bob</td><td>12</td><td>2100</td></tr>
	</table>
	</body></html>`
	doc := docFromHTML(t, html)

	log := royale.ParseWarLog(doc, "9YP8UY", "Brabant Royale")
	require.NotNil(t, log)

	require.NotNil(t, log.LatestWeek)
	require.Equal(t, 12, *log.LatestWeek.Week)
	require.Equal(t, 1, *log.LatestWeek.Rank)
	require.Equal(t, 130, *log.LatestWeek.BoatPoints)
	require.Equal(t, 16, *log.LatestWeek.TrophyChange)
	require.Equal(t, 3456, *log.LatestWeek.TrophiesAfter)

	require.NotNil(t, log.ClanResult)
	require.Equal(t, 16, *log.ClanResult.TrophyChange)
	require.Equal(t, 3456, *log.ClanResult.TrophiesAfter)

	require.Len(t, log.Participants, 2)
	require.Equal(t, "Alice", log.Participants[0].Name)
	require.Equal(t, "AAA111", log.Participants[0].Tag)
	require.Equal(t, 16, log.Participants[0].Attacks)
	require.Equal(t, 3200, log.Participants[0].Points)
	require.Equal(t, 12, log.Participants[1].Attacks)

	require.Nil(t, royale.ParseWarLog(docFromHTML(t, "<html><body></body></html>"), "9YP8UY", "Brabant Royale"))
}

func TestParseLeaderboardRow(t *testing.T) {
	html := `<html><body><table>
	  <tr><td>11</td><td>Some Clan #OTHER</td><td>34,700</td></tr>
	  <tr><td>12</td><td>Brabant Royale #9YP8UY</td><td>178/200</td><td>34,650</td></tr>
	</table></body></html>`
	doc := docFromHTML(t, html)

	entry := royale.ParseLeaderboardRow(doc, "9YP8UY", "Brabant Royale")
	require.NotNil(t, entry)
	require.Equal(t, 12, *entry.Rank)
	require.Equal(t, 34650, *entry.Trophies)

	require.Nil(t, royale.ParseLeaderboardRow(doc, "MISSING", "No Such Clan"))
}

func TestParseLeaderboardJSON(t *testing.T) {
	data := map[string]any{
		"items": []any{
			map[string]any{"tag": "#OTHER", "rank": float64(3), "trophies": float64(35000)},
			map[string]any{"tag": "#9YP8UY", "rank": float64(12), "warTrophies": float64(34650)},
		},
	}
	entry := royale.ParseLeaderboardJSON(data, "9YP8UY")
	require.NotNil(t, entry)
	require.Equal(t, 12, *entry.Rank)
	require.Equal(t, 34650, *entry.Trophies)

	require.Nil(t, royale.ParseLeaderboardJSON(data, "MISSING"))
}

func TestParseWarLogJSON(t *testing.T) {
	data := map[string]any{
		"items": []any{
			map[string]any{
				"seasonId": float64(117),
				"week":     float64(2),
				"standings": []any{
					map[string]any{"tag": "#9YP8UY", "rank": float64(2), "trophyChange": float64(10)},
				},
			},
			map[string]any{
				"seasonId": float64(117),
				"week":     float64(3),
				"standings": []any{
					map[string]any{"tag": "#9YP8UY", "rank": float64(1), "trophyChange": float64(16), "trophies": float64(3456)},
				},
				"participants": []any{
					map[string]any{"name": "Alice", "tag": "#AAA111", "attacks": float64(16), "fame": float64(3200)},
				},
			},
		},
	}
	log := royale.ParseWarLogJSON(data, "9YP8UY")
	require.NotNil(t, log)
	require.NotNil(t, log.ClanResult)
	require.Equal(t, 1, *log.ClanResult.Rank, "latest week entry wins")
	require.Equal(t, 3456, *log.ClanResult.TrophiesAfter)
	require.Len(t, log.Participants, 1)
	require.Equal(t, "AAA111", log.Participants[0].Tag)
	require.Equal(t, 3200, log.Participants[0].Points)
}
