package extractor

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func parseHTML(content []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(content))
}

// cellTexts returns the whitespace-collapsed text of every td/th under tr.
func cellTexts(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("td, th").Each(func(_ int, c *goquery.Selection) {
		cells = append(cells, collapse(c.Text()))
	})
	return cells
}

// joinedText joins the text nodes under sel with single spaces.
func joinedText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		walkText(n, func(s string) bool {
			parts = append(parts, s)
			return true
		})
	}
	return strings.Join(parts, " ")
}

// walkText visits trimmed, non-empty text nodes in document order, skipping
// script and style bodies. Returning false from fn stops the walk.
func walkText(n *html.Node, fn func(string) bool) bool {
	if n == nil {
		return true
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return true
	}
	if n.Type == html.TextNode {
		if s := collapse(n.Data); s != "" {
			return fn(s)
		}
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkText(c, fn) {
			return false
		}
	}
	return true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
