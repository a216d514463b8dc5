package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/octans/frontcheck/internal/utils/url"
)

// PathFor returns the snapshot path that accompanies a screenshot file.
func PathFor(screenshot string) string {
	return strings.TrimSuffix(screenshot, filepath.Ext(screenshot)) + ".md"
}

// Markdown converts the page to GitHub flavored Markdown with links resolved
// against pageURL.
func Markdown(htmlContent, pageURL string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}

			resolved := urlutil.ResolveURL(pageURL, href)
			str := fmt.Sprintf("[%s](%s)", strings.TrimSpace(selec.Text()), resolved)
			return &str
		},
	})

	cleaned, err := CleanHTML(htmlContent)
	if err != nil {
		return "", err
	}
	return converter.ConvertString(cleaned)
}

// SaveMarkdown writes the Markdown rendition of the page to path, replacing
// any existing file. The parent directory must exist.
func SaveMarkdown(htmlContent, pageURL, path string) error {
	text, err := Markdown(htmlContent, pageURL)
	if err != nil {
		return fmt.Errorf("convert %s: %w", pageURL, err)
	}
	return os.WriteFile(path, []byte(text+"\n"), 0644)
}
