package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validSource() Source {
	return Source{
		ID:             "test",
		Name:           "Test Source",
		BaseURL:        "https://example.vn",
		DiscoveryURL:   "https://example.vn/tin-tuc/",
		ArticlePattern: `example\.vn/[a-z-]+\.html$`,
		MaxArticles:    5,
		RequestDelayMs: 100,
	}
}

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Source)
		wantErr error
	}{
		{"missing id", func(s *Source) { s.ID = "" }, ErrSourceMissingID},
		{"missing name", func(s *Source) { s.Name = "" }, ErrSourceMissingName},
		{"missing base url", func(s *Source) { s.BaseURL = "" }, ErrSourceMissingBaseURL},
		{"missing discovery and feed", func(s *Source) { s.DiscoveryURL = "" }, ErrSourceMissingDiscover},
		{"zero max articles", func(s *Source) { s.MaxArticles = 0 }, ErrInvalidMaxArticles},
		{"negative delay", func(s *Source) { s.RequestDelayMs = -1 }, ErrInvalidRequestDelay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := validSource()
			tt.mutate(&src)
			_, err := NewRegistry([]Source{src})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRegistryNoSources(t *testing.T) {
	if _, err := NewRegistry(nil); !errors.Is(err, ErrNoSources) {
		t.Errorf("got %v, want ErrNoSources", err)
	}
}

func TestNewRegistryDuplicateID(t *testing.T) {
	a, b := validSource(), validSource()
	if _, err := NewRegistry([]Source{a, b}); !errors.Is(err, ErrDuplicateSourceID) {
		t.Errorf("got %v, want ErrDuplicateSourceID", err)
	}
}

func TestNewRegistryInvalidPattern(t *testing.T) {
	src := validSource()
	src.ArticlePattern = "(["
	if _, err := NewRegistry([]Source{src}); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestNewRegistryFeedOnlySourceIsValid(t *testing.T) {
	src := validSource()
	src.DiscoveryURL = ""
	src.FeedURL = "https://example.vn/rss"
	if _, err := NewRegistry([]Source{src}); err != nil {
		t.Errorf("feed-only source rejected: %v", err)
	}
}

func TestLoadRegistryFallsBackToDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		reg, err := LoadRegistry(path)
		if err != nil {
			t.Fatalf("LoadRegistry(%q): %v", path, err)
		}
		if len(reg.Sources) != len(DefaultSources) {
			t.Errorf("got %d sources, want %d defaults", len(reg.Sources), len(DefaultSources))
		}
	}
}

func TestLoadRegistryFromYAML(t *testing.T) {
	yaml := `sources:
  - id: custom
    name: Custom Source
    base_url: https://example.vn
    discovery_url: https://example.vn/news/
    article_pattern: 'example\.vn/.*\.html$'
    max_articles: 3
    request_delay_ms: 500
`
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reg.Sources) != 1 {
		t.Fatalf("got %d sources", len(reg.Sources))
	}
	src, ok := reg.SourceByID("custom")
	if !ok {
		t.Fatal("custom source not indexed")
	}
	if src.MaxArticles != 3 || src.RequestDelayMs != 500 {
		t.Errorf("got %+v", src)
	}
}

func TestLoadRegistryRejectsInvalidYAMLSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte("sources:\n  - id: only-id\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestDefaultSourcesAreValid(t *testing.T) {
	if _, err := NewRegistry(DefaultSources); err != nil {
		t.Errorf("compiled-in defaults invalid: %v", err)
	}
}

func TestMustSourcePanicsOnUnknownID(t *testing.T) {
	reg, err := NewRegistry([]Source{validSource()})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	reg.MustSource("nope")
}
