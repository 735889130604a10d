// Package linker rewrites mentions of known entities in synthesized content
// into internal hyperlinks without corrupting existing links.
package linker

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Entity is one linkable platform page.
type Entity struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// EntityProvider supplies the external entity data the dictionary is built
// from: published events starting within the rolling window, and all venues.
type EntityProvider interface {
	UpcomingEvents(ctx context.Context) ([]Entity, error)
	Venues(ctx context.Context) ([]Entity, error)
}

// Entry is one dictionary mapping applied during injection, in order.
type Entry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// landmarks are well-known places that always resolve, regardless of what
// the events/venues tables hold.
var landmarks = []Entry{
	{Name: "Xuan Huong Lake", URL: "/locations/xuan-huong-lake", Type: "location"},
	{Name: "Hồ Xuân Hương", URL: "/locations/xuan-huong-lake", Type: "location"},
	{Name: "Langbiang Mountain", URL: "/locations/langbiang-mountain", Type: "location"},
	{Name: "Da Lat Market", URL: "/locations/da-lat-market", Type: "location"},
	{Name: "Chợ Đà Lạt", URL: "/locations/da-lat-market", Type: "location"},
	{Name: "Valley of Love", URL: "/locations/valley-of-love", Type: "location"},
	{Name: "Tuyen Lam Lake", URL: "/locations/tuyen-lam-lake", Type: "location"},
	{Name: "Da Lat Railway Station", URL: "/locations/da-lat-railway-station", Type: "location"},
	{Name: "Crazy House", URL: "/locations/crazy-house", Type: "location"},
}

// BuildDictionary queries the provider fresh and assembles the ordered entry
// list: events, venues, then the fixed landmarks. Names are kept as-is;
// matching is case-insensitive at injection time.
func BuildDictionary(ctx context.Context, provider EntityProvider) ([]Entry, error) {
	var entries []Entry

	if provider == nil {
		return dedupeEntries(append(entries, landmarks...)), nil
	}

	events, err := provider.UpcomingEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("linker: fetch events: %w", err)
	}
	for _, e := range events {
		if e.Name == "" || e.Slug == "" {
			continue
		}
		entries = append(entries, Entry{Name: e.Name, URL: "/events/" + e.Slug, Type: "event"})
	}

	venues, err := provider.Venues(ctx)
	if err != nil {
		return nil, fmt.Errorf("linker: fetch venues: %w", err)
	}
	for _, v := range venues {
		if v.Name == "" || v.Slug == "" {
			continue
		}
		entries = append(entries, Entry{Name: v.Name, URL: "/venues/" + v.Slug, Type: "venue"})
	}

	entries = append(entries, landmarks...)
	log.Printf("entity dictionary built: %d entr(ies)", len(entries))
	return dedupeEntries(entries), nil
}

// dedupeEntries keeps the first entry per lowercased name so an event and a
// venue sharing a name do not fight over the same mention.
func dedupeEntries(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
