// Package clans holds the per-clan configuration passed explicitly into
// every collection routine, plus the clan-tag normalization shared by all
// scrapers.
package clans

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	DefaultTag = "9YP8UY"

	royaleBase  = "https://royaleapi.com"
	cwstatsBase = "https://cwstats.com"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// NormalizeTag strips the leading '#' (raw or percent-encoded) and every
// non-alphanumeric rune, then uppercases. An unresolvable tag collapses
// to the empty string.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.ReplaceAll(tag, "%23", "")
	tag = strings.ReplaceAll(tag, "#", "")
	return strings.ToUpper(nonAlnum.ReplaceAllString(tag, ""))
}

var playerHrefRe = regexp.MustCompile(`(?i)/player/#?([A-Z0-9]+)`)

// TagFromHref extracts a normalized player tag from a profile link href,
// or "" when the href does not point at a player page.
func TagFromHref(href string) string {
	if href == "" {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	m := playerHrefRe.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return NormalizeTag(m[1])
}

// Config identifies one clan and the pages its reports are scraped from.
type Config struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`

	// Overrides; empty fields fall back to the canonical fan-site URLs.
	RaceURL        string `json:"race_url"`
	ClanURL        string `json:"clan_url"`
	AnalyticsURL   string `json:"analytics_url"`
	JoinHistoryURL string `json:"join_history_url"`
	WarLogURL      string `json:"war_log_url"`
	LeaderboardURL string `json:"leaderboard_url"`
	StatsRaceURL   string `json:"stats_race_url"`
}

// Registry maps normalized clan tags to their configured names and URL
// overrides. Lookups for unknown tags fall back to the default clan.
type Registry struct {
	Default string            `json:"default"`
	Clans   map[string]Config `json:"clans"`
}

// DefaultRegistry returns the registry used when no configuration file
// provides one.
func DefaultRegistry() Registry {
	return Registry{
		Default: DefaultTag,
		Clans: map[string]Config{
			DefaultTag: {Tag: DefaultTag, Name: "Brabant Royale"},
			"GPCLVLPP": {Tag: "GPCLVLPP", Name: "Brabant Royale 2"},
		},
	}
}

// Resolve returns the full config for a clan tag, falling back to the
// default clan when the tag is empty or unknown.
func (r Registry) Resolve(tag string) Config {
	normalized := NormalizeTag(tag)
	if normalized == "" {
		normalized = NormalizeTag(r.Default)
	}
	cfg, ok := r.Clans[normalized]
	if !ok {
		cfg = r.Clans[NormalizeTag(r.Default)]
	}
	cfg.Tag = normalized
	cfg.fillDefaults()
	return cfg
}

func (c *Config) fillDefaults() {
	if c.RaceURL == "" {
		c.RaceURL = fmt.Sprintf("%s/clan/%s/war/race", royaleBase, c.Tag)
	}
	if c.ClanURL == "" {
		c.ClanURL = fmt.Sprintf("%s/clan/%s", royaleBase, c.Tag)
	}
	if c.AnalyticsURL == "" {
		c.AnalyticsURL = fmt.Sprintf("%s/clan/%s/war/analytics", royaleBase, c.Tag)
	}
	if c.JoinHistoryURL == "" {
		c.JoinHistoryURL = fmt.Sprintf("%s/clan/%s/history/join-leave", royaleBase, c.Tag)
	}
	if c.WarLogURL == "" {
		c.WarLogURL = fmt.Sprintf("%s/clan/%s/war/log", royaleBase, c.Tag)
	}
	if c.LeaderboardURL == "" {
		c.LeaderboardURL = royaleBase + "/clans/war/nl"
	}
	if c.StatsRaceURL == "" {
		c.StatsRaceURL = fmt.Sprintf("%s/clan/%s/race", cwstatsBase, c.Tag)
	}
}

// PlayerURL builds the profile page link for a player tag.
func PlayerURL(tag string) string {
	return fmt.Sprintf("%s/player/%s", royaleBase, NormalizeTag(tag))
}
