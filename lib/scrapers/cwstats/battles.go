package cwstats

import (
	"strings"

	"github.com/Delaurensbot/BrabantRoyale/lib/htmlregion"
	"github.com/Delaurensbot/BrabantRoyale/lib/htmlutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/numutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseBattlesLeft reads the per-player deck usage table and buckets
// players by attacks still open today (4 down to 1; players with zero
// left are done and not listed). Nil when the page has no such table,
// which is different from an empty bucket map.
func ParseBattlesLeft(doc *goquery.Document) map[int][]string {
	table := htmlregion.TableByHeaders(doc, "Player", "Decks Used Today")
	if !table.Found() {
		return nil
	}

	headers := htmlregion.HeaderIndex(htmlregion.Headers(table.Sel))
	idxPlayer, okPlayer := headers["player"]
	idxToday, okToday := headers["decks used today"]
	if !okPlayer || !okToday {
		return nil
	}

	buckets := map[int][]string{4: {}, 3: {}, 2: {}, 1: {}}
	table.Sel.Find("tr").Each(func(i int, tr *goquery.Selection) {
		// Row 0 is the header even when the table has no thead.
		if i == 0 {
			return
		}
		cells := tr.Find("td, th")
		if cells.Length() <= idxPlayer || cells.Length() <= idxToday {
			return
		}

		player := htmlutil.FlatText(cells.Eq(idxPlayer))
		if strings.TrimSpace(player) == "" {
			return
		}

		decksToday := 0
		if v, ok := numutil.FirstInt(htmlutil.FlatText(cells.Eq(idxToday))); ok {
			decksToday = v
		}

		remaining := 4 - decksToday
		if _, tracked := buckets[remaining]; tracked {
			buckets[remaining] = append(buckets[remaining], player)
		}
	})

	return buckets
}
