package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dalatbot/config"
	"dalatbot/types"
)

func testSource(baseURL string) config.Source {
	return config.Source{
		ID:             "test",
		Name:           "Test Source",
		BaseURL:        baseURL,
		DiscoveryURL:   baseURL + "/du-lich/",
		ArticlePattern: `/news/[a-z0-9-]+\.html$`,
		MaxArticles:    3,
	}
}

func articleHTML(title, body string) string {
	return fmt.Sprintf(`<html><head>
		<meta property="article:published_time" content="2025-08-15T09:00:00+07:00">
		<meta property="og:image" content="https://cdn.example.vn/cover.jpg">
	</head><body>
		<h1 class="article-title">%s</h1>
		<div class="detail-content"><p>%s</p></div>
	</body></html>`, title, body)
}

func relevantBody() string {
	return strings.Repeat("Da Lat hosts the flower festival with new venues and night markets. ", 5)
}

func TestAcceptLink(t *testing.T) {
	s := NewHTMLScraper(testSource("https://example.vn"))
	tests := []struct {
		link string
		want bool
	}{
		{"https://example.vn/news/festival-opens.html", true},
		{"https://example.vn/tag/festival.html", false},
		{"https://example.vn/chuyen-muc/du-lich.html", false},
		{"https://example.vn/news/festival-opens", false},
		{"https://other.vn/news/festival-opens.html", true}, // pattern governs, not host
	}
	for _, tt := range tests {
		if got := s.acceptLink(tt.link); got != tt.want {
			t.Errorf("acceptLink(%q) = %v, want %v", tt.link, got, tt.want)
		}
	}
}

func TestAcceptLinkWithoutPatternFallsBackToBaseURL(t *testing.T) {
	src := testSource("https://example.vn")
	src.ArticlePattern = ""
	s := NewHTMLScraper(src)

	if !s.acceptLink("https://example.vn/any/path") {
		t.Error("same-host link rejected")
	}
	if s.acceptLink("https://other.vn/any/path") {
		t.Error("foreign-host link accepted")
	}
}

func TestBuildArticle(t *testing.T) {
	src := testSource("https://example.vn")
	link := "https://example.vn/news/festival.html"

	t.Run("success", func(t *testing.T) {
		article, reason := buildArticle(src, link, articleHTML("Festival opens", relevantBody()))
		if reason != "" {
			t.Fatalf("unexpected reason %q", reason)
		}
		if article.Title != "Festival opens" {
			t.Errorf("title = %q", article.Title)
		}
		if article.SourceID != "test" || article.SourceName != "Test Source" || article.SourceURL != link {
			t.Errorf("source fields = %+v", article)
		}
		if article.PublishedAt == nil {
			t.Error("published time not extracted")
		}
		if len(article.ImageURLs) == 0 {
			t.Error("images not extracted")
		}
	})

	t.Run("no title", func(t *testing.T) {
		html := `<div class="detail-content">` + relevantBody() + `</div>`
		if _, reason := buildArticle(src, link, html); reason != "no title" {
			t.Errorf("reason = %q", reason)
		}
	})

	t.Run("content too short", func(t *testing.T) {
		html := articleHTML("Festival", "Da Lat news. "+strings.Repeat("x", 100))
		if _, reason := buildArticle(src, link, html); reason != "content too short" {
			t.Errorf("reason = %q", reason)
		}
	})

	t.Run("not locally relevant", func(t *testing.T) {
		body := strings.Repeat("A story about Hanoi traffic with no local connection at all. ", 5)
		if _, reason := buildArticle(src, link, articleHTML("Hanoi traffic", body)); reason != "not locally relevant" {
			t.Errorf("reason = %q", reason)
		}
	})
}

func TestHTMLScraperEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/du-lich/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="/news/story-one.html">One</a>
			<a href="/news/story-two.html">Two</a>
			<a href="/news/story-one.html">One again</a>
			<a href="/tag/festival.html">Tag page</a>
			<a href="/news/story-three.html">Three</a>
			<a href="/news/story-four.html">Four, over the cap</a>
		</body></html>`)
	})
	for _, name := range []string{"story-one", "story-two", "story-three", "story-four"} {
		title := "Title " + name
		mux.HandleFunc("/news/"+name+".html", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, articleHTML(title, relevantBody()))
		})
	}

	s := NewHTMLScraper(testSource(srv.URL))
	articles, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(articles) != 3 {
		t.Fatalf("got %d articles, want 3 (MaxArticles cap, duplicate and tag link dropped)", len(articles))
	}
	if articles[0].Title != "Title story-one" || articles[1].Title != "Title story-two" {
		t.Errorf("unexpected order: %q, %q", articles[0].Title, articles[1].Title)
	}
}

func TestHTMLScraperUnreachableDiscoveryPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	src := testSource(srv.URL)
	srv.Close()

	s := NewHTMLScraper(src)
	articles, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("fetch failures must not error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("got %d articles, want 0", len(articles))
	}
}

type panicScraper struct{ src config.Source }

func (p *panicScraper) Source() config.Source { return p.src }
func (p *panicScraper) Scrape(ctx context.Context) ([]types.ScrapedArticle, error) {
	panic("boom")
}

type staticScraper struct {
	src      config.Source
	articles []types.ScrapedArticle
	err      error
}

func (s *staticScraper) Source() config.Source { return s.src }
func (s *staticScraper) Scrape(ctx context.Context) ([]types.ScrapedArticle, error) {
	return s.articles, s.err
}

func TestRunAllIsolatesFailures(t *testing.T) {
	good := &staticScraper{
		src:      config.Source{ID: "good"},
		articles: []types.ScrapedArticle{{SourceID: "good", Title: "t"}},
	}
	bad := &staticScraper{src: config.Source{ID: "bad"}, err: errors.New("down")}
	panicky := &panicScraper{src: config.Source{ID: "panicky"}}

	articles, counts := RunAll(context.Background(), []Scraper{bad, panicky, good})

	if len(articles) != 1 || articles[0].SourceID != "good" {
		t.Errorf("articles = %+v", articles)
	}
	if counts["good"] != 1 || counts["bad"] != 0 || counts["panicky"] != 0 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestForSource(t *testing.T) {
	src := testSource("https://example.vn")
	if _, ok := ForSource(src).(*HTMLScraper); !ok {
		t.Error("source without feed should get the HTML scraper")
	}
	src.FeedURL = "https://example.vn/rss"
	if _, ok := ForSource(src).(*RSSScraper); !ok {
		t.Error("source with feed should get the RSS scraper")
	}
}
