package types

import "time"

// SourceAttribution records one source article backing a synthesized story.
type SourceAttribution struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Publisher   string     `json:"publisher"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// InternalLink is a hyperlink into the platform, either suggested by the
// text-generation service or derived from the entity dictionary.
type InternalLink struct {
	Text string `json:"text"`
	URL  string `json:"url"`
	Type string `json:"type"` // "event", "venue" or "location"
}

// QualityFactors are the raw signals the scorer consumes. DalatRelevance is
// populated by the scorer from clustering output, not by the processor.
type QualityFactors struct {
	SourceCount     int     `json:"source_count"`
	HasDates        bool    `json:"has_dates"`
	HasNamedSources bool    `json:"has_named_sources"`
	HasImages       bool    `json:"has_images"`
	ContentLength   int     `json:"content_length"`
	DalatRelevance  float64 `json:"dalat_relevance"`
}

// NewsContent is the synthesized output for one article cluster. It is
// immutable after synthesis; the internal linker produces a new content
// string rather than rewriting StoryContent in place.
type NewsContent struct {
	Title             string              `json:"title"`
	StoryContent      string              `json:"story_content"`
	TechnicalContent  string              `json:"technical_content"`
	MetaDescription   string              `json:"meta_description"`
	SEOKeywords       []string            `json:"seo_keywords"`
	SuggestedSlug     string              `json:"suggested_slug"`
	NewsTags          []string            `json:"news_tags"`
	NewsTopic         string              `json:"news_topic"`
	ImageDescriptions []string            `json:"image_descriptions"`
	SourceURLs        []SourceAttribution `json:"source_urls"`
	InternalLinks     []InternalLink      `json:"internal_links"`
	QualityFactors    QualityFactors      `json:"quality_factors"`
}

// Publication statuses suggested by the quality scorer. These are the
// contract boundary with downstream editorial review.
const (
	StatusPublished    = "published"
	StatusExperimental = "experimental"
	StatusDraft        = "draft"
)

// QualityScore is the scorer's verdict for one NewsContent.
type QualityScore struct {
	Total           float64            `json:"total"`
	Breakdown       map[string]float64 `json:"breakdown"`
	SuggestedStatus string             `json:"suggested_status"`
}

// PublishedStory is the unit handed to the output boundary: synthesized
// content, its score, and the linker-rewritten body.
type PublishedStory struct {
	RunID         string       `json:"run_id"`
	Content       NewsContent  `json:"content"`
	Score         QualityScore `json:"score"`
	LinkedContent string       `json:"linked_content"`
	PublishedAt   time.Time    `json:"published_at"`
}
