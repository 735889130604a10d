package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnmarshalResponse decodes a model response into out. The raw text may wrap
// the JSON in markdown code fences or surrounding prose; when a direct parse
// fails, the first balanced JSON object or array is extracted and retried.
func UnmarshalResponse(raw string, out any) error {
	cleaned := stripFences(raw)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	payload := ExtractJSON(cleaned)
	if payload == "" {
		return fmt.Errorf("ai: response contains no JSON payload")
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("ai: response decode: %w", err)
	}
	return nil
}

// stripFences removes a leading/trailing markdown code fence, with or
// without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 {
		// Drop the language tag line ("json", "JSON", or empty).
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 8 {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ExtractJSON returns the first balanced {...} or [...] block in s, tracking
// string literals and escapes so braces inside values do not break matching.
// Returns "" when no balanced block exists.
func ExtractJSON(s string) string {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			start, open, close = i, '{', '}'
			break
		}
		if s[i] == '[' {
			start, open, close = i, '[', ']'
			break
		}
	}
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
