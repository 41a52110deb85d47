// Package segment splits raw paper text into the two representations the
// recommender compares on: a focused excerpt (abstract + introduction) and
// a cleaned full excerpt (everything before the trailing bibliography).
package segment

import "strings"

const (
	// Minimum whitespace-delimited tokens for a focused excerpt to count
	// as a real section match rather than extraction noise.
	minFocusedTokens = 100

	abstractFallbackTokens = 500
	introFallbackTokens    = 1000
)

// Excerpts holds the two text representations of one document. An empty
// field means that representation could not be located.
type Excerpts struct {
	Focused string
	Full    string
}

// Segment derives both excerpts from raw extracted text. It never fails;
// a section that cannot be located is simply absent.
func Segment(raw string) Excerpts {
	if strings.TrimSpace(raw) == "" {
		return Excerpts{}
	}
	lower := foldASCII(raw)
	return Excerpts{
		Focused: focusedExcerpt(raw, lower),
		Full:    fullExcerpt(raw, lower),
	}
}

// foldASCII lowercases ASCII letters only, keeping byte offsets aligned
// with the input so marker positions can index into the original text.
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

// fullExcerpt cuts the text at the last line-initial "references" or
// "bibliography" heading. Bibliographies sit near the end, so searching
// from the end leaves an earlier mid-sentence mention untouched.
func fullExcerpt(raw, lower string) string {
	pos := lastLineMarker(lower, "references", "bibliography")
	if pos < 0 {
		return raw
	}
	return raw[:pos]
}

// focusedExcerpt concatenates an abstract sub-excerpt and an introduction
// sub-excerpt, each found independently, separated by a line break. If the
// result is shorter than minFocusedTokens it is discarded as a spurious
// match.
func focusedExcerpt(raw, lower string) string {
	parts := make([]string, 0, 2)

	if start := abstractStart(lower); start >= 0 {
		rest := lower[start:]
		end := firstMarker(rest, "introduction", "keywords", "\n1.")
		if end >= 0 {
			parts = append(parts, raw[start:start+end])
		} else {
			parts = append(parts, firstTokens(raw[start:], abstractFallbackTokens))
		}
	}

	if start := strings.Index(lower, "introduction"); start >= 0 {
		rest := lower[start:]
		end := firstMarker(rest, "methods", "related work", "background", "\n2.")
		if end >= 0 {
			parts = append(parts, raw[start:start+end])
		} else {
			parts = append(parts, firstTokens(raw[start:], introFallbackTokens))
		}
	}

	focused := strings.Join(parts, "\n")
	if len(strings.Fields(focused)) < minFocusedTokens {
		return ""
	}
	return focused
}

// abstractStart returns the index of the first occurrence of "abstract"
// that is not immediately preceded by "in " (which rejects phrases like
// "stated in abstract terms"), or -1.
func abstractStart(lower string) int {
	from := 0
	for {
		i := strings.Index(lower[from:], "abstract")
		if i < 0 {
			return -1
		}
		pos := from + i
		if pos < 3 || lower[pos-3:pos] != "in " {
			return pos
		}
		from = pos + 1
	}
}

// firstMarker returns the index of the earliest occurrence of any marker
// in s, or -1. Markers beginning with '\n' only match at a line boundary;
// the returned index points at the newline so truncation excludes the
// marker's line.
func firstMarker(s string, markers ...string) int {
	best := -1
	for _, m := range markers {
		if i := strings.Index(s, m); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

// lastMarker is firstMarker's counterpart searching from the end.
func lastMarker(s string, markers ...string) int {
	best := -1
	for _, m := range markers {
		if i := strings.LastIndex(s, m); i > best {
			best = i
		}
	}
	return best
}

// lastLineMarker finds the last occurrence of any marker appearing at the
// start of a line and returns the index of the preceding newline, so that
// truncating there drops the heading itself. Returns -1 when no marker is
// line-initial.
func lastLineMarker(s string, markers ...string) int {
	prefixed := make([]string, len(markers))
	for i, m := range markers {
		prefixed[i] = "\n" + m
	}
	return lastMarker(s, prefixed...)
}

// firstTokens returns the first n whitespace-delimited tokens of s joined
// by single spaces.
func firstTokens(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
