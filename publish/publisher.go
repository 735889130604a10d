// Package publish delivers finished stories to the platform boundaries:
// the Kafka topic the site consumes, and the S3 archive.
package publish

import (
	"context"
	"fmt"
	"log"
	"strings"

	"dalatbot/types"
)

// Publisher delivers one story to one boundary.
type Publisher interface {
	Publish(ctx context.Context, story types.PublishedStory) error
	Close() error
}

// storyKey is the stable identity of a story at the output boundary. The
// suggested slug may be empty when the model omitted it; fall back to a slug
// derived from the title so the story is still addressable.
func storyKey(story types.PublishedStory) string {
	if slug := strings.TrimSpace(story.Content.SuggestedSlug); slug != "" {
		return slug
	}
	return Slugify(story.Content.Title)
}

// Slugify lowercases and kebab-cases a title into a URL-safe slug.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Multi fans one story out to several publishers. A failing boundary is
// logged and does not block the others; the first error is returned so the
// run report can record it.
type Multi struct {
	publishers []Publisher
}

func NewMulti(publishers ...Publisher) *Multi {
	return &Multi{publishers: publishers}
}

func (m *Multi) Publish(ctx context.Context, story types.PublishedStory) error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, story); err != nil {
			log.Printf("Warning: publish failed for %q: %v", storyKey(story), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *Multi) Close() error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("publish: close: %w", err)
		}
	}
	return firstErr
}
