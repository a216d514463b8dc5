package snapshot

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// keptAttrs lists the attributes CleanHTML preserves per element.
var keptAttrs = map[string][]string{
	"a":   {"href", "title"},
	"img": {"src", "alt", "title"},
}

// CleanHTML removes scripts, styles, form controls and most attributes so the
// remaining markup describes only visible content.
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, canvas, template").Remove()

	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		node := s.Get(0)
		if node == nil {
			return
		}
		node.Attr = filterAttrs(node, keptAttrs[node.Data])
	})

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func filterAttrs(node *html.Node, keep []string) []html.Attribute {
	var attrs []html.Attribute
	for _, a := range node.Attr {
		for _, k := range keep {
			if a.Key == k {
				attrs = append(attrs, a)
				break
			}
		}
	}
	return attrs
}
