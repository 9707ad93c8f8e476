package normalize

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/harukimoto/driftwatch/internal/model"
)

// HTMLText extracts the visible text of an HTML page, one trimmed line per
// text node, for changelog pages that ship no machine-readable feed.
type HTMLText struct{}

func (HTMLText) Kind() model.DocumentKind { return model.KindHTML }

// Elements whose text content is noise for change detection.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
}

func (HTMLText) Normalize(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(lines, "\n")
}
