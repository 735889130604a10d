package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dalatbot/cluster"
	"dalatbot/config"
	"dalatbot/linker"
	"dalatbot/synthesis"
	"dalatbot/types"
)

// fakeGen serves both prompt kinds: keyword analysis responses are keyed by
// the article title in the user prompt, synthesis gets one canned story.
type fakeGen struct {
	keywords  map[string]string
	synthesis string
}

func (f *fakeGen) Generate(ctx context.Context, system, user string) (string, error) {
	if strings.Contains(system, "editor") {
		return f.synthesis, nil
	}
	for key, resp := range f.keywords {
		if strings.Contains(user, key) {
			return resp, nil
		}
	}
	return "", fmt.Errorf("no canned response")
}

type recordingPublisher struct {
	stories []types.PublishedStory
}

func (r *recordingPublisher) Publish(ctx context.Context, story types.PublishedStory) error {
	r.stories = append(r.stories, story)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func storyText() string {
	return "## Festival expands\n\n**Da Lat** will host a bigger flower festival. " +
		"According to organizers, the program adds a night market by Xuan Huong Lake. " +
		"City officials said road closures start early, and locals expect record crowds.\n\n" +
		strings.Repeat("The program details continue with stages, parades and garden tours. ", 4)
}

func synthesisJSON() string {
	return fmt.Sprintf(`{
		"title": "Flower Festival Expands",
		"story_content": %q,
		"technical_content": "Dates: 10-12 Oct.",
		"meta_description": "The festival grows.",
		"seo_keywords": ["da lat", "festival"],
		"suggested_slug": "flower-festival-expands",
		"news_tags": ["festival"],
		"news_topic": "flower festival",
		"image_descriptions": [],
		"internal_links": []
	}`, storyText())
}

func keywordJSON(relevance float64) string {
	return fmt.Sprintf(`{"keywords":["festival","flowers","da lat"],"topic":"flower festival","dalat_relevance":%g,"newsworthiness":0.8}`, relevance)
}

func articlePage(title string) string {
	body := strings.Repeat("Da Lat prepares for the flower festival with new venues and markets. ", 5)
	return fmt.Sprintf(`<html><head>
		<meta property="article:published_time" content="2025-08-15T09:00:00+07:00">
		<meta property="og:image" content="https://cdn.example.vn/cover.jpg">
	</head><body><h1 class="title">%s</h1><div class="detail-content"><p>%s</p></div></body></html>`, title, body)
}

func TestPipelineEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/listing/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/news/festival-a.html">a</a>
			<a href="/news/festival-b.html">b</a>
			<a href="/news/festival-c.html">c</a>
		</body></html>`)
	})
	for _, name := range []string{"festival-a", "festival-b", "festival-c"} {
		title := "Story " + name
		mux.HandleFunc("/news/"+name+".html", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, articlePage(title))
		})
	}

	registry, err := config.NewRegistry([]config.Source{{
		ID:             "test",
		Name:           "Test Source",
		BaseURL:        srv.URL,
		DiscoveryURL:   srv.URL + "/listing/",
		ArticlePattern: `/news/[a-z0-9-]+\.html$`,
		MaxArticles:    5,
	}})
	if err != nil {
		t.Fatal(err)
	}

	gen := &fakeGen{
		keywords: map[string]string{
			"festival-a": keywordJSON(0.9),
			"festival-b": keywordJSON(0.8),
			"festival-c": keywordJSON(0.85),
		},
		synthesis: synthesisJSON(),
	}
	pub := &recordingPublisher{}

	p := &Pipeline{
		Registry:  registry,
		Clusterer: &cluster.Clusterer{Gen: gen, Threshold: 0.4},
		Processor: synthesis.NewProcessor(gen),
		Linker:    linker.New(linker.NewCachedDictionary(nil, nil, "", 0)),
		Publisher: pub,
	}

	report := p.Run(context.Background())

	if report.Scraped != 3 {
		t.Fatalf("scraped %d, want 3", report.Scraped)
	}
	if report.Clusters != 1 {
		t.Fatalf("clusters %d, want 1 (identical keywords)", report.Clusters)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("errors: %v", report.Errors)
	}
	if len(report.Stories) != 1 {
		t.Fatalf("stories %d, want 1", len(report.Stories))
	}

	story := report.Stories[0]
	if story.SuggestedStatus != types.StatusPublished {
		t.Errorf("status %q, want published (score %v)", story.SuggestedStatus, story.Score)
	}
	if !story.Published {
		t.Error("story not marked published")
	}
	if story.Slug != "flower-festival-expands" {
		t.Errorf("slug %q", story.Slug)
	}
	if story.SourceCount != 3 {
		t.Errorf("source count %d, want 3", story.SourceCount)
	}

	if len(pub.stories) != 1 {
		t.Fatalf("published %d stories, want 1", len(pub.stories))
	}
	published := pub.stories[0]
	if published.RunID != report.RunID {
		t.Errorf("run id mismatch: %q vs %q", published.RunID, report.RunID)
	}
	if !strings.Contains(published.LinkedContent, "[Xuan Huong Lake](/locations/xuan-huong-lake)") {
		t.Errorf("landmark not linked in:\n%s", published.LinkedContent)
	}
	if len(published.Content.SourceURLs) != 3 {
		t.Errorf("attributions %d, want 3", len(published.Content.SourceURLs))
	}
}

func TestPipelineDraftStoriesAreNotPublished(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/listing/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a href="/news/minor.html">x</a>`)
	})
	mux.HandleFunc("/news/minor.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage("Minor story"))
	})

	registry, err := config.NewRegistry([]config.Source{{
		ID:             "test",
		Name:           "Test Source",
		BaseURL:        srv.URL,
		DiscoveryURL:   srv.URL + "/listing/",
		ArticlePattern: `/news/[a-z0-9-]+\.html$`,
		MaxArticles:    5,
	}})
	if err != nil {
		t.Fatal(err)
	}

	// A thin single-source story with a weak synthesis scores below the
	// experimental threshold.
	gen := &fakeGen{
		keywords:  map[string]string{"Minor": `{"keywords":["minor"],"topic":"minor","dalat_relevance":0.35,"newsworthiness":0.1}`},
		synthesis: `{"title":"Minor","story_content":"Short note.","suggested_slug":"minor"}`,
	}
	pub := &recordingPublisher{}

	p := &Pipeline{
		Registry:  registry,
		Clusterer: &cluster.Clusterer{Gen: gen, Threshold: 0.4},
		Processor: synthesis.NewProcessor(gen),
		Publisher: pub,
	}

	report := p.Run(context.Background())

	if len(report.Stories) != 1 {
		t.Fatalf("stories %d, want 1", len(report.Stories))
	}
	if report.Stories[0].SuggestedStatus != types.StatusDraft {
		t.Errorf("status %q, want draft", report.Stories[0].SuggestedStatus)
	}
	if report.Stories[0].Published || len(pub.stories) != 0 {
		t.Error("draft story must not be published")
	}
}
