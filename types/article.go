package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ScrapedArticle is a normalized article record produced by a source scraper.
// It is never mutated after the scraper returns it.
type ScrapedArticle struct {
	SourceID    string     `json:"source_id"`
	SourceURL   string     `json:"source_url"`
	SourceName  string     `json:"source_name"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	ImageURLs   []string   `json:"image_urls,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ArticleCluster groups scraped articles believed to describe the same story.
// Keywords is the union of all members' keyword sets and TopicFingerprint is
// recomputed from that union once the cluster is closed.
type ArticleCluster struct {
	ClusterID        string           `json:"cluster_id"`
	TopicFingerprint string           `json:"topic_fingerprint"`
	Keywords         []string         `json:"keywords"`
	Topic            string           `json:"topic,omitempty"`
	Newsworthiness   float64          `json:"newsworthiness"`
	DalatRelevance   float64          `json:"dalat_relevance"`
	Articles         []ScrapedArticle `json:"articles"`
}

// GenerateID creates a short, stable ID by hashing the provided string input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
