package linker

import (
	"context"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"dalatbot/scrape"
	"dalatbot/types"
)

// urlLookBehind bounds how far back the in-URL check scans for "](", so
// pathological content cannot make injection quadratic.
const urlLookBehind = 512

// Linker applies AI-suggested links first (higher contextual confidence),
// then dictionary entries. It never fails hard: an entity that cannot be
// safely linked stays plain text.
type Linker struct {
	Dict *CachedDictionary
}

func New(dict *CachedDictionary) *Linker {
	return &Linker{Dict: dict}
}

// Rewrite returns a new content string with internal links injected. The
// input NewsContent is not mutated.
func (l *Linker) Rewrite(ctx context.Context, content types.NewsContent) string {
	var entries []Entry
	if l.Dict != nil {
		var err error
		entries, err = l.Dict.Get(ctx)
		if err != nil {
			log.Printf("Warning: entity dictionary unavailable, applying AI links only: %v", err)
		}
	}
	return InjectLinks(content.StoryContent, content.InternalLinks, entries)
}

// InjectLinks rewrites the first safe mention of each entity into a markdown
// link. Each entity text is linked at most once per document, and a match
// inside an existing link's label or URL is rejected.
func InjectLinks(content string, aiLinks []types.InternalLink, dict []Entry) string {
	linked := make(map[string]bool)

	for _, l := range aiLinks {
		text := strings.TrimSpace(l.Text)
		if text == "" || l.URL == "" {
			continue
		}
		key := strings.ToLower(text)
		if linked[key] {
			continue
		}
		var ok bool
		content, ok = linkOnce(content, text, l.URL)
		if ok {
			linked[key] = true
		}
	}

	for _, entry := range dict {
		key := strings.ToLower(entry.Name)
		if linked[key] {
			continue
		}

		var ok bool
		content, ok = linkOnce(content, entry.Name, entry.URL)
		if !ok {
			// Diacritic-stripped variant: "Hồ Xuân Hương" also matches
			// "Ho Xuan Huong" in English copy.
			folded := scrape.StripDiacritics(entry.Name)
			if folded != entry.Name && !linked[strings.ToLower(folded)] {
				content, ok = linkOnce(content, folded, entry.URL)
				if ok {
					linked[strings.ToLower(folded)] = true
				}
			}
		}
		if ok {
			linked[key] = true
		}
	}
	return content
}

// linkOnce wraps the first safe, word-bounded, case-insensitive occurrence
// of text in a markdown link. Returns the (possibly unchanged) content and
// whether a link was inserted.
func linkOnce(content, text, url string) (string, bool) {
	n := len(text)
	if n == 0 || n > len(content) {
		return content, false
	}

	for i := 0; i+n <= len(content); i++ {
		if !strings.EqualFold(content[i:i+n], text) {
			continue
		}
		if !wordBounded(content, i, i+n) {
			continue
		}
		if insideLinkLabel(content, i) || insideLinkURL(content, i) {
			continue
		}
		return content[:i] + "[" + content[i:i+n] + "](" + url + ")" + content[i+n:], true
	}
	return content, false
}

func wordBounded(content string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(content[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(content) {
		r, _ := utf8.DecodeRuneInString(content[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// insideLinkLabel reports whether position idx sits inside the [...] label
// of a markdown link: scanning backward, an unmatched '[' before any
// newline means we are inside a label.
func insideLinkLabel(content string, idx int) bool {
	depth := 0
	for i := idx - 1; i >= 0; i-- {
		switch content[i] {
		case '\n':
			return false
		case ']':
			depth++
		case '[':
			if depth == 0 {
				return true
			}
			depth--
		}
	}
	return false
}

// insideLinkURL reports whether position idx sits inside the (...) URL part
// of a markdown link: a "](" within the bounded look-behind with no ')'
// in between, and a closing ')' somewhere ahead on the same line.
func insideLinkURL(content string, idx int) bool {
	low := idx - urlLookBehind
	if low < 0 {
		low = 0
	}

	opener := -1
	for i := idx - 1; i >= low; i-- {
		c := content[i]
		if c == '\n' || c == ')' {
			break
		}
		if c == '(' && i > 0 && content[i-1] == ']' {
			opener = i
			break
		}
	}
	if opener == -1 {
		return false
	}

	for i := idx; i < len(content); i++ {
		switch content[i] {
		case ')':
			return true
		case '\n':
			return false
		}
	}
	return false
}
