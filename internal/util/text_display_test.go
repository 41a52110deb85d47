package util

import (
	"strings"
	"testing"
)

func TestDisplaySnippet(t *testing.T) {
	in := "Hello\x00   world \n\t C\\u0001"
	out := DisplaySnippet(in, 100)
	if out == "" {
		t.Fatalf("expected non-empty snippet")
	}
}

func TestDisplaySnippetTruncates(t *testing.T) {
	in := strings.Repeat("abstract text ", 100)
	out := DisplaySnippet(in, 40)
	if !strings.HasSuffix(out, "...") {
		t.Fatalf("expected truncated snippet to end with ellipsis, got: %q", out)
	}
}
