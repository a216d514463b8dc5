// Package snapshot inspects and serializes the DOM of a verified page.
package snapshot

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/octans/frontcheck/internal/browser"
)

// nonRendered holds elements whose text is never shown to the user.
const nonRendered = "script, style, noscript, template, [hidden]"

// Summary is what Inspect learns about a rendered page.
type Summary struct {
	Title   string
	Matches int
}

// Inspect parses html and counts the elements satisfying cond. goquery
// matches nothing for selectors it cannot compile.
func Inspect(html string, cond browser.Condition) Summary {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Summary{}
	}
	s := Summary{Title: strings.TrimSpace(doc.Find("title").First().Text())}
	if cond.Kind == browser.KindText {
		s.Matches = countText(doc, cond.Value)
	} else {
		s.Matches = doc.Find(cond.Value).Length()
	}
	return s
}

// countText counts the innermost shown body elements whose text contains
// needle, so a label split across child nodes counts once and text in
// <head> or hidden subtrees not at all. CSS visibility is not evaluated.
func countText(doc *goquery.Document, needle string) int {
	shown := func(s *goquery.Selection) bool {
		return !s.Is(nonRendered) && s.ParentsFiltered(nonRendered).Length() == 0
	}
	contains := func(_ int, s *goquery.Selection) bool {
		return shown(s) && strings.Contains(visibleText(s), needle)
	}

	n := 0
	doc.Find("body *").FilterFunction(contains).Each(func(_ int, s *goquery.Selection) {
		if s.Children().FilterFunction(contains).Length() == 0 {
			n++
		}
	})
	return n
}

// visibleText is s's text without the contents of non-rendered descendants.
func visibleText(s *goquery.Selection) string {
	c := s.Clone()
	c.Find(nonRendered).Remove()
	return c.Text()
}
