package config

import "time"

// Scraping constants
const (
	// FetchTimeout is the hard cap on a single article fetch.
	FetchTimeout = 15 * time.Second

	// UserAgent identifies the aggregator to origin servers.
	UserAgent = "DalatBot/1.0 (+https://dalat.events/bot; news aggregation)"

	// MinContentLength is the minimum extracted plain-text length for an
	// article to be kept by a scraper.
	MinContentLength = 200

	// MinContainerContentLength is the minimum length a located content
	// container must yield before the extractor falls through to the next
	// step of the fallback chain.
	MinContainerContentLength = 100
)

// Clustering constants
const (
	// SimilarityThreshold is the keyword-set Jaccard similarity required to
	// join a forming cluster's seed article.
	SimilarityThreshold = 0.4

	// MinDalatRelevance excludes articles below this relevance from
	// clustering entirely.
	MinDalatRelevance = 0.3

	// KeywordCallDelay is the fixed pause between per-article AI calls,
	// independent of retry backoff.
	KeywordCallDelay = 500 * time.Millisecond
)

// Retry constants
const (
	// MaxAIAttempts bounds retries for a single AI call.
	MaxAIAttempts = 3

	// KeywordRetryBaseDelay is the initial backoff for keyword extraction.
	KeywordRetryBaseDelay = 2 * time.Second

	// SynthesisRetryBaseDelay is the initial backoff for synthesis calls,
	// longer because a failed synthesis is the expensive case.
	SynthesisRetryBaseDelay = 5 * time.Second
)

// Synthesis constants
const (
	// PromptContentBudget is the per-article character budget when building
	// the synthesis prompt.
	PromptContentBudget = 1500
)

// Quality score thresholds. Policy constants shared with editorial review;
// changing them changes what auto-publishes.
const (
	PublishThreshold      = 0.75
	ExperimentalThreshold = 0.50
)

// Linker constants
const (
	// EventWindowPast bounds how far back "recent" events reach when the
	// entity dictionary is built.
	EventWindowPast = 90 * 24 * time.Hour

	// DictionaryTTL is the default lifetime of a cached entity dictionary.
	DictionaryTTL = 10 * time.Minute
)

// Dedupe constants
const (
	// SeenTTL is the sliding window during which a previously processed
	// article is suppressed.
	SeenTTL = 72 * time.Hour
)
