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

// Role is a clan role as printed on the site.
type Role string

const (
	RoleLeader   Role = "Leader"
	RoleCoLeader Role = "Co-leader"
	RoleElder    Role = "Elder"
	RoleMember   Role = "Member"
	RoleUnknown  Role = ""
)

var roleTokenRe = regexp.MustCompile(`(?i)\b(Co-leader|Leader|Elder|Member)\b`)

// ParseRole picks the first role token out of a chunk of row text.
// "Co-leader" is matched before "Leader" so the prefix never shadows it.
func ParseRole(text string) Role {
	m := roleTokenRe.FindString(text)
	if m == "" {
		return RoleUnknown
	}
	switch strings.ToLower(m) {
	case "leader":
		return RoleLeader
	case "co-leader":
		return RoleCoLeader
	case "elder":
		return RoleElder
	case "member":
		return RoleMember
	}
	return RoleUnknown
}

// DisplayRole maps the site's wording to the wording the reports use.
func DisplayRole(r Role) string {
	switch r {
	case RoleLeader:
		return "Owner"
	case RoleUnknown:
		return "Unknown"
	default:
		return string(r)
	}
}

// Member is one row of the clan roster.
type Member struct {
	Tag     string `json:"tag"`
	RawName string `json:"name"`
	NameKey string `json:"-"`
	Role    Role   `json:"role,omitempty"`
}

// Roster indexes the clan page's member list three ways: by tag, by raw
// display name and by cleaned name key. The race page filter needs raw
// names, the analytics reconciliation needs cleaned keys.
type Roster struct {
	Members []Member
}

func (r *Roster) Empty() bool { return len(r.Members) == 0 }

func (r *Roster) TagSet() map[string]bool {
	set := make(map[string]bool, len(r.Members))
	for _, m := range r.Members {
		set[m.Tag] = true
	}
	return set
}

func (r *Roster) RawNameSet() map[string]bool {
	set := make(map[string]bool, len(r.Members))
	for _, m := range r.Members {
		if m.RawName != "" {
			set[m.RawName] = true
		}
	}
	return set
}

func (r *Roster) ByNameKey() map[string]Member {
	out := make(map[string]Member, len(r.Members))
	for _, m := range r.Members {
		if m.NameKey == "" {
			continue
		}
		if _, taken := out[m.NameKey]; !taken {
			out[m.NameKey] = m
		}
	}
	return out
}

func (r *Roster) RoleByTag() map[string]Role {
	out := make(map[string]Role, len(r.Members))
	for _, m := range r.Members {
		if m.Role != RoleUnknown {
			out[m.Tag] = m.Role
		}
	}
	return out
}

// ParseRoster walks every player profile link on the clan page. When the
// link sits inside a table row the row's text is scanned for a role
// token; links outside tables still contribute tag and name.
func ParseRoster(doc *goquery.Document) *Roster {
	roster := &Roster{}
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		tag := clans.TagFromHref(href)
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true

		raw := htmlutil.FlatText(a)
		member := Member{
			Tag:     tag,
			RawName: raw,
			NameKey: htmlutil.CleanNameKey(raw),
		}
		if row := a.Closest("tr"); row.Length() > 0 {
			member.Role = ParseRole(htmlutil.FlatText(row))
		}
		roster.Members = append(roster.Members, member)
	})

	return roster
}

// FetchRoster downloads and parses the clan page for one clan.
func FetchRoster(ctx context.Context, client *fetch.Client, clanURL string) (*Roster, error) {
	ctx, span := tracer.Start(ctx, "royale.FetchRoster")
	defer span.End()

	doc, err := client.Document(ctx, clanURL)
	if err != nil {
		return nil, err
	}
	return ParseRoster(doc), nil
}
