// Package config holds the source registry and pipeline tuning constants.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Registry validation errors.
var (
	ErrNoSources             = errors.New("at least one source is required")
	ErrSourceMissingID       = errors.New("source id is required")
	ErrSourceMissingName     = errors.New("source name is required")
	ErrSourceMissingBaseURL  = errors.New("source base_url is required")
	ErrSourceMissingDiscover = errors.New("source discovery_url or feed_url is required")
	ErrInvalidMaxArticles    = errors.New("source max_articles must be at least 1")
	ErrInvalidRequestDelay   = errors.New("source request_delay_ms must be non-negative")
	ErrDuplicateSourceID     = errors.New("duplicate source id")
)

// Source describes one configured news source. Immutable after load.
type Source struct {
	ID             string `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	BaseURL        string `yaml:"base_url" json:"base_url"`
	DiscoveryURL   string `yaml:"discovery_url" json:"discovery_url"`
	FeedURL        string `yaml:"feed_url,omitempty" json:"feed_url,omitempty"`
	ArticlePattern string `yaml:"article_pattern" json:"article_pattern"`
	MaxArticles    int    `yaml:"max_articles" json:"max_articles"`
	RequestDelayMs int    `yaml:"request_delay_ms" json:"request_delay_ms"`
}

// RequestDelay returns the politeness delay between requests to this source.
func (s Source) RequestDelay() time.Duration {
	return time.Duration(s.RequestDelayMs) * time.Millisecond
}

// Registry is the fixed, hand-configured list of news sources.
type Registry struct {
	Sources []Source `yaml:"sources"`

	byID map[string]Source
}

// DefaultSources is the compiled-in registry used when no sources file is
// configured. Patterns match each site's article URL shape and exclude
// tag/category listings.
var DefaultSources = []Source{
	{
		ID:             "baolamdong",
		Name:           "Báo Lâm Đồng",
		BaseURL:        "https://baolamdong.vn",
		DiscoveryURL:   "https://baolamdong.vn/du-lich/",
		ArticlePattern: `baolamdong\.vn/[a-z0-9-]+/\d{6}/[a-z0-9-]+/?$`,
		MaxArticles:    8,
		RequestDelayMs: 1500,
	},
	{
		ID:             "vnexpress-dalat",
		Name:           "VnExpress",
		BaseURL:        "https://vnexpress.net",
		DiscoveryURL:   "https://vnexpress.net/topic/da-lat-22939",
		ArticlePattern: `vnexpress\.net/[a-z0-9-]+-\d{7,}\.html$`,
		MaxArticles:    10,
		RequestDelayMs: 2000,
	},
	{
		ID:             "tuoitre-dalat",
		Name:           "Tuổi Trẻ",
		BaseURL:        "https://tuoitre.vn",
		DiscoveryURL:   "https://tuoitre.vn/da-lat.html",
		ArticlePattern: `tuoitre\.vn/[a-z0-9-]+-\d{14,}\.htm$`,
		MaxArticles:    10,
		RequestDelayMs: 2000,
	},
	{
		ID:             "thanhnien-dalat",
		Name:           "Thanh Niên",
		BaseURL:        "https://thanhnien.vn",
		DiscoveryURL:   "https://thanhnien.vn/da-lat.html",
		ArticlePattern: `thanhnien\.vn/[a-z0-9-]+-\d{15,}\.htm$`,
		MaxArticles:    8,
		RequestDelayMs: 2500,
	},
}

// LoadRegistry reads a YAML sources file, falling back to the compiled-in
// defaults when path is empty or the file does not exist.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(DefaultSources)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRegistry(DefaultSources)
		}
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse sources YAML: %w", err)
	}

	return NewRegistry(reg.Sources)
}

// NewRegistry validates the source list and builds the id index.
func NewRegistry(sources []Source) (*Registry, error) {
	reg := &Registry{Sources: sources}
	if err := reg.validate(); err != nil {
		return nil, err
	}

	reg.byID = make(map[string]Source, len(sources))
	for _, src := range sources {
		reg.byID[src.ID] = src
	}
	return reg, nil
}

func (r *Registry) validate() error {
	if len(r.Sources) == 0 {
		return ErrNoSources
	}

	seen := make(map[string]bool, len(r.Sources))
	for i, src := range r.Sources {
		if src.ID == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingID, i)
		}
		if seen[src.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateSourceID, src.ID)
		}
		seen[src.ID] = true

		if src.Name == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingName, i)
		}
		if src.BaseURL == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingBaseURL, i)
		}
		if src.DiscoveryURL == "" && src.FeedURL == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingDiscover, i)
		}
		if src.MaxArticles < 1 {
			return fmt.Errorf("%w: source[%d]", ErrInvalidMaxArticles, i)
		}
		if src.RequestDelayMs < 0 {
			return fmt.Errorf("%w: source[%d]", ErrInvalidRequestDelay, i)
		}
		if src.ArticlePattern != "" {
			if _, err := regexp.Compile(src.ArticlePattern); err != nil {
				return fmt.Errorf("source[%d] article_pattern is invalid regex: %w", i, err)
			}
		}
	}
	return nil
}

// SourceByID looks a source up at runtime.
func (r *Registry) SourceByID(id string) (Source, bool) {
	src, ok := r.byID[id]
	return src, ok
}

// MustSource returns the source or panics. A missing source referenced at
// startup is a deployment defect, not a runtime condition.
func (r *Registry) MustSource(id string) Source {
	src, ok := r.byID[id]
	if !ok {
		panic(fmt.Sprintf("config: unknown source %q", id))
	}
	return src
}
