package segment

import (
	"strings"
	"testing"
)

func words(n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = "term"
	}
	return strings.Join(out, " ")
}

func TestSegmentEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   \n\t  "} {
		ex := Segment(raw)
		if ex.Focused != "" || ex.Full != "" {
			t.Fatalf("expected both excerpts absent for %q, got %+v", raw, ex)
		}
	}
}

func TestFullExcerptCutsTrailingReferences(t *testing.T) {
	body := "Title\nSome body content about retrieval.\nMore body text.\n"
	raw := body + "References\n[1] A. Author. Some cited paper. 2019.\n"
	ex := Segment(raw)
	if ex.Full != strings.TrimSuffix(body, "\n") {
		t.Fatalf("unexpected full excerpt: %q", ex.Full)
	}
	if !strings.HasPrefix(raw, ex.Full) {
		t.Fatalf("full excerpt must be a prefix of the input")
	}
}

func TestFullExcerptCutsBibliographyHeading(t *testing.T) {
	raw := "Body text here.\nBibliography\n[1] Something.\n"
	ex := Segment(raw)
	if strings.Contains(ex.Full, "Bibliography") {
		t.Fatalf("bibliography not removed: %q", ex.Full)
	}
}

func TestFullExcerptUsesLastHeading(t *testing.T) {
	raw := "Early mention.\nReferences\nto prior work appear here.\nMore body.\nReferences\n[1] Cited.\n"
	ex := Segment(raw)
	if !strings.Contains(ex.Full, "to prior work appear here") {
		t.Fatalf("cut at the first heading instead of the last: %q", ex.Full)
	}
	if strings.Contains(ex.Full, "[1] Cited") {
		t.Fatalf("trailing bibliography not removed: %q", ex.Full)
	}
}

func TestFullExcerptIgnoresMidSentenceMention(t *testing.T) {
	raw := "This work references several baselines in its comparison section.\nFinal line.\n"
	ex := Segment(raw)
	if ex.Full != raw {
		t.Fatalf("mid-sentence mention must not truncate, got %q", ex.Full)
	}
}

func TestFocusedAbsentWithoutMarkers(t *testing.T) {
	raw := "A plain document. " + words(300)
	ex := Segment(raw)
	if ex.Focused != "" {
		t.Fatalf("expected absent focused excerpt, got %q", ex.Focused)
	}
	if ex.Full == "" {
		t.Fatalf("full excerpt should still be present")
	}
}

func TestFocusedTokenBoundary(t *testing.T) {
	// The matched "Abstract" token itself counts, so n body tokens give
	// an excerpt of n+1 tokens.
	cases := []struct {
		bodyTokens int
		present    bool
	}{
		{98, false}, // 99 tokens total
		{99, true},  // exactly 100
	}
	for _, tc := range cases {
		raw := "Title line\nAbstract " + words(tc.bodyTokens) + "\nKeywords: retrieval\n"
		ex := Segment(raw)
		got := ex.Focused != ""
		if got != tc.present {
			t.Fatalf("body tokens %d: present=%v, want %v", tc.bodyTokens, got, tc.present)
		}
	}
}

func TestFocusedSkipsInAbstractPhrase(t *testing.T) {
	raw := "These ideas are stated in abstract terms early on.\nAbstract\n" +
		words(150) + "\nKeywords: ranking\n"
	ex := Segment(raw)
	if !strings.HasPrefix(ex.Focused, "Abstract\n") {
		t.Fatalf("focused excerpt should start at the standalone heading, got %q", firstChars(ex.Focused, 60))
	}
}

func TestFocusedCombinesAbstractAndIntroduction(t *testing.T) {
	raw := "Title\nAbstract\n" + words(120) + "\nIntroduction\n" + words(150) + "\nBackground\n" + words(40)
	ex := Segment(raw)
	if ex.Focused == "" {
		t.Fatalf("expected focused excerpt")
	}
	if !strings.Contains(ex.Focused, "Introduction") {
		t.Fatalf("introduction section missing from focused excerpt")
	}
	if strings.Contains(ex.Focused, "Background") {
		t.Fatalf("focused excerpt must stop before the background section")
	}
}

func TestFocusedFallbackTokenCaps(t *testing.T) {
	// No terminators anywhere: abstract takes 500 tokens, intro 1000.
	raw := "Abstract " + words(2000)
	ex := Segment(raw)
	if ex.Focused == "" {
		t.Fatalf("expected focused excerpt from fallback")
	}
	n := len(strings.Fields(ex.Focused))
	if n != 500 {
		t.Fatalf("expected 500 fallback tokens, got %d", n)
	}
}

func TestFocusedIntroWithoutAbstract(t *testing.T) {
	raw := "Title only\nIntroduction\n" + words(200) + "\nRelated Work\n" + words(30)
	ex := Segment(raw)
	if ex.Focused == "" {
		t.Fatalf("expected focused excerpt from introduction alone")
	}
	if strings.Contains(ex.Focused, "Related Work") {
		t.Fatalf("focused excerpt must stop before related work")
	}
}

func firstChars(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
