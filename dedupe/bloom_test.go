package dedupe

import (
	"testing"

	"dalatbot/types"
)

func hashOf(url, title string) string {
	return IdentityHash(types.ScrapedArticle{SourceURL: url, Title: title})
}

func TestIdentityHashNormalization(t *testing.T) {
	base := hashOf("https://example.vn/news/festival.html", "Flower Festival Opens")

	same := []struct {
		name  string
		url   string
		title string
	}{
		{"tracking params stripped", "https://example.vn/news/festival.html?utm_source=fb&fbclid=abc", "Flower Festival Opens"},
		{"gclid stripped", "https://example.vn/news/festival.html?gclid=xyz", "Flower Festival Opens"},
		{"fragment stripped", "https://example.vn/news/festival.html#comments", "Flower Festival Opens"},
		{"host case folded", "https://EXAMPLE.VN/news/festival.html", "Flower Festival Opens"},
		{"trailing slash trimmed", "https://example.vn/news/festival.html/", "Flower Festival Opens"},
		{"title case folded", "https://example.vn/news/festival.html", "FLOWER FESTIVAL OPENS"},
		{"title whitespace collapsed", "https://example.vn/news/festival.html", "  Flower   Festival\tOpens "},
	}
	for _, tt := range same {
		t.Run(tt.name, func(t *testing.T) {
			if got := hashOf(tt.url, tt.title); got != base {
				t.Errorf("hash differs from canonical form")
			}
		})
	}

	if hashOf("https://example.vn/news/other.html", "Flower Festival Opens") == base {
		t.Error("different URLs must hash differently")
	}
	if hashOf("https://example.vn/news/festival.html", "A Different Title") == base {
		t.Error("different titles must hash differently")
	}
	if hashOf("https://example.vn/news/festival.html?page=2", "Flower Festival Opens") == base {
		t.Error("meaningful query params must change the hash")
	}
}

func TestIdentityHashMalformedURL(t *testing.T) {
	// A URL that fails parsing still yields a stable hash.
	a := hashOf("http://exa mple.vn/x", "Title")
	b := hashOf("http://exa mple.vn/x", "Title")
	if a != b || a == "" {
		t.Errorf("malformed URL hash unstable: %q vs %q", a, b)
	}
}
