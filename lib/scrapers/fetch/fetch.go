// Package fetch owns the HTTP side of scraping: a resty client with fixed
// browser-like headers, a per-request timeout, and detection of served
// anti-bot challenge pages. The fan sites offer no API contract, so a
// fetch either yields a parseable document or a transport-level error;
// everything softer than that is the parsers' problem.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Delaurensbot/BrabantRoyale/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// ErrBlocked marks a fetch that technically succeeded but returned an
// anti-bot challenge page instead of content. Operators want to tell
// "site down" apart from "site is challenging us".
var ErrBlocked = errors.New("blocked by anti-bot challenge")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

type Client struct {
	Http *resty.Client
}

func NewClient(timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "nl,en-US;q=0.9,en;q=0.8")
	client.SetHeader("Cache-Control", "no-cache")
	client.SetHeader("Pragma", "no-cache")

	telemetry.InstrumentResty(client, "scrapers/fetch")

	return &Client{Http: client}
}

// Document fetches a page and parses it into a DOM tree. Script, style
// and noscript subtrees are dropped up front so text flattening never
// picks up code.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() >= 400 {
		return nil, fmt.Errorf("http %d while fetching %s", res.StatusCode(), url)
	}

	body := res.String()
	if LooksBlocked(body) {
		return nil, fmt.Errorf("%w at %s", ErrBlocked, url)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(body))
	if err != nil {
		return nil, err
	}
	doc.Find("script, style, noscript").Remove()
	return doc, nil
}

// GetJSON fetches an authenticated API endpoint into out. Used only for
// the optional JSON sources; scraping never needs a token.
func (c *Client) GetJSON(ctx context.Context, url, bearerToken string, out any) error {
	req := c.Http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(out)
	if bearerToken != "" {
		req.SetHeader("Authorization", "Bearer "+bearerToken)
	}

	res, err := req.Get(url)
	if err != nil {
		return err
	}
	if res.StatusCode() != 200 {
		return fmt.Errorf("api http %d at %s", res.StatusCode(), url)
	}
	return nil
}

// LooksBlocked heuristically recognizes challenge pages by the phrases
// they reliably contain.
func LooksBlocked(body string) bool {
	t := strings.ToLower(body)
	return (strings.Contains(t, "cloudflare") && strings.Contains(t, "attention required")) ||
		(strings.Contains(t, "just a moment") && strings.Contains(t, "cloudflare")) ||
		strings.Contains(t, "cf-chl") ||
		strings.Contains(t, "please enable javascript") ||
		strings.Contains(t, "captcha")
}
