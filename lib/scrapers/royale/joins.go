package royale

import (
	"context"
	"regexp"
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"

	"github.com/PuerkitoBio/goquery"
)

// JoinEvent is one "player joined" entry on the clan's join/leave
// history page. AccountLevel stays empty until enriched from the player
// profile page.
type JoinEvent struct {
	Name         string `json:"name"`
	Tag          string `json:"tag"`
	Ago          string `json:"ago,omitempty"`
	UTC          string `json:"utc,omitempty"`
	URL          string `json:"url"`
	AccountLevel string `json:"account_level,omitempty"`
}

var playerPathRe = regexp.MustCompile(`^/player/`)

// ParseJoins extracts up to limit join events. Joins are the positive
// message blocks (green plus icon); leaves use a different message
// class and are ignored. Blocks without a resolvable player link are
// dropped.
func ParseJoins(doc *goquery.Document, limit int) []JoinEvent {
	var joins []JoinEvent

	doc.Find("div.ui.attached.icon.positive.message").EachWithBreak(func(_ int, blk *goquery.Selection) bool {
		name := htmlutil.FlatText(blk.Find("div.header").First())

		tag := ""
		if a := blk.Closest("a[href]"); a.Length() > 0 {
			href, _ := a.Attr("href")
			if playerPathRe.MatchString(href) {
				tag = clans.TagFromHref(href)
			}
		}
		if name == "" || tag == "" {
			return true
		}

		joins = append(joins, JoinEvent{
			Name: name,
			Tag:  tag,
			Ago:  htmlutil.FlatText(blk.Find("div.ago.i18n_duration_short").First()),
			UTC:  htmlutil.FlatText(blk.Find("div.utc").First()),
			URL:  clans.PlayerURL(tag),
		})
		return len(joins) < limit
	})

	return joins
}

var experienceLevelRe = regexp.MustCompile(`(?i)\bExperience\s+Level\s+(\d+)\b`)

// ParseExperienceLevel finds the account level on a player profile
// page. Empty when the page does not show one.
func ParseExperienceLevel(doc *goquery.Document) string {
	text := strings.Join(htmlutil.Tokens(doc.Selection), "\n")
	if m := experienceLevelRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// EnrichAccountLevels fills AccountLevel for each join by fetching the
// player profile. Lookups are cached per run so a player appearing in
// multiple events costs one fetch. Failures (including challenge
// pages) set the placeholder "-" rather than aborting the run.
func EnrichAccountLevels(ctx context.Context, client *fetch.Client, joins []JoinEvent) {
	ctx, span := tracer.Start(ctx, "royale.EnrichAccountLevels")
	defer span.End()

	cache := map[string]string{}
	for i := range joins {
		joins[i].AccountLevel = accountLevel(ctx, client, joins[i].Tag, cache)
	}
}

func accountLevel(ctx context.Context, client *fetch.Client, tag string, cache map[string]string) string {
	if level, hit := cache[tag]; hit {
		return level
	}

	level := "-"
	if doc, err := client.Document(ctx, clans.PlayerURL(tag)); err == nil {
		if parsed := ParseExperienceLevel(doc); parsed != "" {
			level = parsed
		}
	}

	cache[tag] = level
	return level
}

// FetchJoins downloads the join/leave history page and parses the most
// recent joins.
func FetchJoins(ctx context.Context, client *fetch.Client, historyURL string, limit int) ([]JoinEvent, error) {
	ctx, span := tracer.Start(ctx, "royale.FetchJoins")
	defer span.End()

	doc, err := client.Document(ctx, historyURL)
	if err != nil {
		return nil, err
	}
	return ParseJoins(doc, limit), nil
}
