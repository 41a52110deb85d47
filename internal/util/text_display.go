package util

import (
	"strings"
	"unicode"
)

// DisplaySnippet cleans extracted text for API previews: sanitized,
// whitespace-normalized and truncated to maxRunes.
func DisplaySnippet(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 420
	}
	s = SanitizeText(s)
	s = restoreWordBoundaries(s)
	s = strings.Join(strings.Fields(s), " ")

	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !unicode.IsPrint(r) {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || unicode.IsPunct(r) {
			out = append(out, r)
		}
	}
	trimmed := strings.TrimSpace(string(out))
	runes := []rune(trimmed)
	if len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes])) + "..."
	}
	return trimmed
}

// restoreWordBoundaries re-inserts spaces that PDF extraction tends to
// swallow between glued words and digits.
func restoreWordBoundaries(s string) string {
	if s == "" {
		return s
	}
	in := []rune(s)
	out := make([]rune, 0, len(in)+len(in)/8)
	for i, r := range in {
		if i > 0 && needBoundary(in[i-1], r) {
			last := out[len(out)-1]
			if !unicode.IsSpace(last) {
				out = append(out, ' ')
			}
		}
		out = append(out, r)
	}
	return string(out)
}

func needBoundary(a, b rune) bool {
	if unicode.IsLower(a) && unicode.IsUpper(b) {
		return true
	}
	if unicode.IsLetter(a) && unicode.IsDigit(b) {
		return true
	}
	if unicode.IsDigit(a) && unicode.IsLetter(b) {
		return true
	}
	return false
}
