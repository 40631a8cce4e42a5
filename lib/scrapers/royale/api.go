package royale

import (
	"fmt"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/numutil"
)

// The official API mirrors the scraped pages but shuffles field and
// list names between versions, so everything here probes a few known
// spellings before giving up.

func looseInt(value any) *int {
	switch v := value.(type) {
	case nil:
		return nil
	case int:
		return intPtr(v)
	case float64:
		return intPtr(int(v))
	case string:
		if n, ok := numutil.FirstInt(htmlutil.NormalizeSpace(v)); ok {
			return intPtr(n)
		}
		return nil
	default:
		if n, ok := numutil.FirstInt(fmt.Sprintf("%v", v)); ok {
			return intPtr(n)
		}
		return nil
	}
}

func entryList(data map[string]any, keys ...string) []any {
	for _, key := range keys {
		if list, ok := data[key].([]any); ok {
			return list
		}
	}
	if nested, ok := data["items"].(map[string]any); ok {
		if list, ok := nested["items"].([]any); ok {
			return list
		}
	}
	return nil
}

func entryTag(entry map[string]any) string {
	if tag, ok := entry["tag"].(string); ok {
		return tag
	}
	if clan, ok := entry["clan"].(map[string]any); ok {
		if tag, ok := clan["tag"].(string); ok {
			return tag
		}
	}
	return ""
}

func firstNonNil(entry map[string]any, keys ...string) *int {
	for _, key := range keys {
		if v := looseInt(entry[key]); v != nil {
			return v
		}
	}
	return nil
}

// ParseLeaderboardJSON finds the clan's leaderboard entry in an API
// response. Nil when the clan is not listed.
func ParseLeaderboardJSON(data map[string]any, clanTag string) *LeaderboardEntry {
	normalized := clans.NormalizeTag(clanTag)
	for _, raw := range entryList(data, "items", "clans", "data", "entries") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		tag := entryTag(entry)
		if tag == "" || clans.NormalizeTag(tag) != normalized {
			continue
		}
		return &LeaderboardEntry{
			Rank:     firstNonNil(entry, "rank", "position"),
			Trophies: firstNonNil(entry, "trophies", "warTrophies", "trophiesAfter"),
		}
	}
	return nil
}

// ParseWarLogJSON extracts the latest war log entry from an API
// response: the clan's own standing plus participant rows.
func ParseWarLogJSON(data map[string]any, clanTag string) *WarLog {
	entries := entryList(data, "items", "warlog", "data", "itemsList")
	entry := latestAPIEntry(entries)
	if entry == nil {
		return nil
	}

	log := &WarLog{}

	normalized := clans.NormalizeTag(clanTag)
	for _, raw := range entryList(entry, "standings", "clans", "results", "items") {
		standing, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		tag := entryTag(standing)
		if tag == "" || clans.NormalizeTag(tag) != normalized {
			continue
		}
		log.ClanResult = &WeekResult{
			Rank:          firstNonNil(standing, "rank", "position"),
			BoatPoints:    firstNonNil(standing, "boatPoints", "boat_points", "fame"),
			TrophyChange:  firstNonNil(standing, "trophyChange", "trophy_change"),
			TrophiesAfter: firstNonNil(standing, "trophies", "trophies_after", "clanScore"),
		}
		break
	}

	for _, raw := range entryList(entry, "participants", "members", "playerResults", "players") {
		p, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		participant := Participant{}
		for _, key := range []string{"name", "player", "playerName"} {
			if s, ok := p[key].(string); ok && s != "" {
				participant.Name = s
				break
			}
		}
		for _, key := range []string{"tag", "playerTag", "id"} {
			if s, ok := p[key].(string); ok && s != "" {
				participant.Tag = clans.NormalizeTag(s)
				break
			}
		}
		if v := firstNonNil(p, "attacks", "decksUsed"); v != nil {
			participant.Attacks = *v
		}
		if v := firstNonNil(p, "points", "fame", "score"); v != nil {
			participant.Points = *v
		}
		log.Participants = append(log.Participants, participant)
	}

	if log.ClanResult == nil && len(log.Participants) == 0 {
		return nil
	}
	return log
}

// latestAPIEntry picks the war log entry with the highest season and
// week, whatever the API happens to call those fields.
func latestAPIEntry(entries []any) map[string]any {
	var best map[string]any
	bestSeason, bestWeek := -1, -1
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		season := intOrZero(firstNonNil(entry, "seasonId", "season", "season_id", "seasonNumber"))
		week := intOrZero(firstNonNil(entry, "week", "weekNumber", "sectionIndex", "section_index"))
		if best == nil || season > bestSeason || (season == bestSeason && week > bestWeek) {
			best, bestSeason, bestWeek = entry, season, week
		}
	}
	return best
}
