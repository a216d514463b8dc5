package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/octans/frontcheck/internal/browser"
)

const galleryHTML = `<!DOCTYPE html>
<html>
<head>
	<title> Octans Gallery </title>
	<style>.x{}</style>
	<script>window.boot()</script>
</head>
<body>
	<nav><a href="/import" class="nav-link">Import</a></nav>
	<div class="gallery-container" data-count="2">
		<img src="/thumb/1.png" alt="one" class="thumb">
		<img src="/thumb/2.png" alt="two" class="thumb">
	</div>
	<label>Auto Archive</label>
</body>
</html>`

func TestInspect(t *testing.T) {
	s := Inspect(galleryHTML, browser.CSS(".gallery-container"))
	if s.Title != "Octans Gallery" {
		t.Errorf("Expected trimmed title, got %q", s.Title)
	}
	if s.Matches != 1 {
		t.Errorf("Expected 1 match, got %d", s.Matches)
	}

	if got := Inspect(galleryHTML, browser.Text("Auto Archive")).Matches; got != 1 {
		t.Errorf("Expected text condition to match the label, got %d", got)
	}
	if got := Inspect(galleryHTML, browser.CSS(".missing")).Matches; got != 0 {
		t.Errorf("Expected no matches, got %d", got)
	}
}

func TestInspect_TextCountsShownElementsOnly(t *testing.T) {
	cases := map[string]struct {
		html string
		want int
	}{
		"title and hidden duplicate": {
			html: `<html><head><title>Import - Auto Archive</title></head><body>
<div class="settings"><label>Auto Archive</label></div>
<span hidden>Auto Archive help</span>
<script>var label = "Auto Archive";</script></body></html>`,
			want: 1,
		},
		"split across child nodes": {
			html: `<html><body><label>Auto <b>Archive</b></label></body></html>`,
			want: 1,
		},
		"only hidden": {
			html: `<html><head><title>Auto Archive</title></head><body>
<div hidden><label>Auto Archive</label></div><template><p>Auto Archive</p></template></body></html>`,
			want: 0,
		},
	}
	for name, c := range cases {
		if got := Inspect(c.html, browser.Text("Auto Archive")).Matches; got != c.want {
			t.Errorf("%s: expected %d matches, got %d", name, c.want, got)
		}
	}
}

func TestInspect_InvalidSelector(t *testing.T) {
	s := Inspect(galleryHTML, browser.CSS("div[["))
	if s.Matches != 0 {
		t.Errorf("Expected 0 matches for invalid selector, got %d", s.Matches)
	}
	if s.Title != "Octans Gallery" {
		t.Errorf("Expected title despite bad selector, got %q", s.Title)
	}
}

func TestCleanHTML(t *testing.T) {
	out, err := CleanHTML(galleryHTML)
	if err != nil {
		t.Fatalf("CleanHTML failed: %v", err)
	}
	for _, gone := range []string{"<script", "<style", "class=", "data-count"} {
		if strings.Contains(out, gone) {
			t.Errorf("Expected %q to be removed, got %s", gone, out)
		}
	}
	for _, kept := range []string{`href="/import"`, `src="/thumb/1.png"`, `alt="one"`} {
		if !strings.Contains(out, kept) {
			t.Errorf("Expected %q to be kept, got %s", kept, out)
		}
	}
}

func TestSaveMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery_initial.md")
	if err := SaveMarkdown(galleryHTML, "http://localhost:5229/gallery", path); err != nil {
		t.Fatalf("SaveMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "[Import](http://localhost:5229/import)") {
		t.Errorf("Expected resolved link, got:\n%s", text)
	}
	if !strings.Contains(text, "Auto Archive") {
		t.Errorf("Expected visible text, got:\n%s", text)
	}
	if strings.Contains(text, "window.boot") {
		t.Errorf("Expected scripts stripped, got:\n%s", text)
	}
}

func TestSaveMarkdown_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "page.md")
	if err := SaveMarkdown(galleryHTML, "http://localhost:5229/", path); err == nil {
		t.Fatal("Expected error when parent directory is missing")
	}
}

func TestPathFor(t *testing.T) {
	if got := PathFor("/out/gallery_initial.png"); got != "/out/gallery_initial.md" {
		t.Errorf("unexpected snapshot path %s", got)
	}
}
