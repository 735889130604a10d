package scrape

import (
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"dalatbot/config"

	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"
)

var (
	reScript     = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	reStyle      = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	reTag        = regexp.MustCompile(`(?s)<[^>]*>`)
	reWhitespace = regexp.MustCompile(`\s+`)

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)

	reTitledH1 = regexp.MustCompile(`(?is)<h1[^>]*class=["'][^"']*(?:title|headline)[^"']*["'][^>]*>(.*?)</h1>`)
	reAnyH1    = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	reDocTitle = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

	reImgTag  = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	reImgAttr = regexp.MustCompile(`(?i)(?:\bsrc|\bdata-src|\bdata-original)\s*=\s*["']([^"']+)["']`)

	// DD/MM/YYYY with optional HH:MM, the date shape the covered
	// Vietnamese sites print in article bylines.
	reLocalDate = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})(?:\D{0,3}(\d{1,2}):(\d{2}))?`)
)

// Class names tried in order when locating an article's content container.
var contentContainerClasses = []string{
	"fck_detail",
	"detail-content",
	"article-content",
	"article-body",
	"content-detail",
	"post-content",
	"entry-content",
	"maincontent",
	"content",
}

// indochinaZone is the fixed offset used when a source prints local dates
// without zone information.
var indochinaZone = time.FixedZone("+07", 7*60*60)

// StripHTML converts an HTML fragment to plain text: script/style blocks are
// dropped, remaining tags stripped, the common entities decoded and
// whitespace collapsed.
func StripHTML(html string) string {
	text := reScript.ReplaceAllString(html, " ")
	text = reStyle.ReplaceAllString(text, " ")
	text = reTag.ReplaceAllString(text, " ")
	text = entityReplacer.Replace(text)
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// metaContent returns the content attribute of a <meta> whose property or
// name matches, trying both attribute orders.
func metaContent(html, property string) string {
	quoted := regexp.QuoteMeta(property)
	patterns := []string{
		`(?is)<meta[^>]+(?:property|name)\s*=\s*["']` + quoted + `["'][^>]*\bcontent\s*=\s*["']([^"']*)["']`,
		`(?is)<meta[^>]+\bcontent\s*=\s*["']([^"']*)["'][^>]*(?:property|name)\s*=\s*["']` + quoted + `["']`,
	}
	for _, p := range patterns {
		if m := regexp.MustCompile(p).FindStringSubmatch(html); m != nil {
			if v := strings.TrimSpace(entityReplacer.Replace(m[1])); v != "" {
				return v
			}
		}
	}
	return ""
}

// ExtractTitle walks the title fallback chain: an <h1> carrying a
// title/headline class, any <h1>, og:title, then <title>.
func ExtractTitle(html string) string {
	if m := reTitledH1.FindStringSubmatch(html); m != nil {
		if t := StripHTML(m[1]); t != "" {
			return t
		}
	}
	if m := reAnyH1.FindStringSubmatch(html); m != nil {
		if t := StripHTML(m[1]); t != "" {
			return t
		}
	}
	if t := metaContent(html, "og:title"); t != "" {
		return t
	}
	if m := reDocTitle.FindStringSubmatch(html); m != nil {
		return StripHTML(m[1])
	}
	return ""
}

// ExtractContent locates an article body and returns it as plain text. The
// chain is: a known content container bounded by tag depth counting, the
// readability extractor over the whole document, then og:description. A
// container match shorter than the minimum falls through.
func ExtractContent(html, pageURL string) string {
	for _, class := range contentContainerClasses {
		inner := extractContainer(html, class)
		if inner == "" {
			continue
		}
		if text := StripHTML(inner); len(text) >= config.MinContainerContentLength {
			return text
		}
	}

	if text := readabilityContent(html, pageURL); len(text) >= config.MinContainerContentLength {
		return text
	}

	return metaContent(html, "og:description")
}

func readabilityContent(html, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = nil
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		log.Printf("readability fallback failed for %s: %v", pageURL, err)
		return ""
	}
	return strings.TrimSpace(reWhitespace.ReplaceAllString(article.TextContent, " "))
}

// extractContainer returns the inner HTML of the first element whose class
// attribute contains the given class name, bounded by counting open/close
// tags of the same name so nested same-tag elements do not truncate it.
func extractContainer(html, class string) string {
	lower := strings.ToLower(html)
	open := regexp.MustCompile(`<(div|article|section)[^>]*class\s*=\s*["'][^"']*\b` + regexp.QuoteMeta(class) + `\b[^"']*["'][^>]*>`)
	loc := open.FindStringIndex(lower)
	if loc == nil {
		return ""
	}

	m := open.FindStringSubmatch(lower[loc[0]:loc[1]])
	tag := m[1]
	openTok := "<" + tag
	closeTok := "</" + tag

	depth := 1
	pos := loc[1]
	for pos < len(lower) {
		nextOpen := indexTagToken(lower, openTok, pos)
		nextClose := indexTagToken(lower, closeTok, pos)
		if nextClose == -1 {
			return ""
		}
		if nextOpen != -1 && nextOpen < nextClose {
			depth++
			pos = nextOpen + len(openTok)
			continue
		}
		depth--
		if depth == 0 {
			return html[loc[1]:nextClose]
		}
		pos = nextClose + len(closeTok)
	}
	return ""
}

// indexTagToken finds the next occurrence of "<tag" or "</tag" that is a
// whole tag name (followed by whitespace, '>' or '/').
func indexTagToken(lower, token string, from int) int {
	for {
		idx := strings.Index(lower[from:], token)
		if idx == -1 {
			return -1
		}
		abs := from + idx
		end := abs + len(token)
		if end >= len(lower) {
			return -1
		}
		switch lower[end] {
		case ' ', '\t', '\n', '\r', '>', '/':
			return abs
		}
		from = abs + 1
	}
}

// ExtractImages collects the og:image plus every <img> src/data-src/
// data-original, drops data URIs and obvious non-content images, resolves
// relative URLs against the page, and deduplicates preserving order.
func ExtractImages(html, pageURL string) []string {
	var candidates []string
	if og := metaContent(html, "og:image"); og != "" {
		candidates = append(candidates, og)
	}
	for _, tag := range reImgTag.FindAllString(html, -1) {
		for _, attr := range reImgAttr.FindAllStringSubmatch(tag, -1) {
			candidates = append(candidates, strings.TrimSpace(attr[1]))
		}
	}

	base, _ := url.Parse(pageURL)
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, c := range candidates {
		if c == "" || isJunkImage(c) {
			continue
		}
		resolved := resolveURL(base, c)
		if resolved == "" || seen[resolved] {
			continue
		}
		seen[resolved] = true
		out = append(out, resolved)
	}
	return out
}

var junkImageMarkers = []string{"pixel", "icon", "logo", "avatar", "1x1"}

func isJunkImage(raw string) bool {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "data:") {
		return true
	}
	if strings.HasSuffix(strings.Split(lower, "?")[0], ".gif") {
		return true
	}
	for _, marker := range junkImageMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func resolveURL(base *url.URL, raw string) string {
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// ExtractPublishedAt tries article:published_time, then the DD/MM/YYYY[ HH:MM]
// byline shape with the fixed +07:00 offset. Returns nil when neither parses.
func ExtractPublishedAt(html string) *time.Time {
	if meta := metaContent(html, "article:published_time"); meta != "" {
		if t, err := dateparse.ParseAny(meta); err == nil {
			return &t
		}
		log.Printf("unparseable article:published_time %q", meta)
	}

	if m := reLocalDate.FindStringSubmatch(html); m != nil {
		day := atoi(m[1])
		month := atoi(m[2])
		year := atoi(m[3])
		hour, minute := 0, 0
		if m[4] != "" {
			hour = atoi(m[4])
			minute = atoi(m[5])
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, indochinaZone)
			return &t
		}
	}
	return nil
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
