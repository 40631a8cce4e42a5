package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText returns the concatenated text content of a node,
// including all of its descendants.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeSpace collapses all whitespace runs, non-breaking spaces
// included, into single ASCII spaces and trims both ends.
func NormalizeSpace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// FlatText renders a selection the way a reader would see it: text
// content with whitespace collapsed to single spaces.
func FlatText(sel *goquery.Selection) string {
	return NormalizeSpace(sel.Text())
}

// NodeText is FlatText for a bare html node.
func NodeText(node *html.Node) string {
	return NormalizeSpace(GetText(node))
}

var tagFragment = regexp.MustCompile(`<[^>]+>`)

// CleanNameKey produces the case-insensitive identity key used to match
// player and clan names across pages. Stray markup fragments that survive
// text extraction are stripped first.
func CleanNameKey(s string) string {
	s = NormalizeSpace(s)
	s = tagFragment.ReplaceAllString(s, "")
	return strings.ToLower(NormalizeSpace(s))
}

// Tokens returns every non-empty normalized text token of the selection
// in document order, skipping script/style/noscript content.
func Tokens(sel *goquery.Selection) []string {
	var tokens []string
	for _, n := range sel.Nodes {
		collectTokens(n, &tokens)
	}
	return tokens
}

func collectTokens(node *html.Node, out *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		if t := NormalizeSpace(node.Data); t != "" {
			*out = append(*out, t)
		}
		return
	}
	if node.Type == html.ElementNode {
		switch node.Data {
		case "script", "style", "noscript":
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectTokens(child, out)
	}
}

// RemoveNonPrintable drops control and other non-printable runes, which
// some pages embed inside player names.
func RemoveNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// HasClass reports whether the node carries the given token in its
// class attribute.
func HasClass(node *html.Node, token string) bool {
	for _, a := range node.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == token {
				return true
			}
		}
	}
	return false
}
