package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kollab_agentic/backend/internal/models"
)

func entriesForTest(n int) []models.FeedbackEntry {
	out := make([]models.FeedbackEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.FeedbackEntry{Text: "feedback entry number with some padding text"})
	}
	return out
}

func TestRenderContextDeterministic(t *testing.T) {
	entries := []models.FeedbackEntry{
		{Text: "app crashes", User: "alice", Location: "Berlin"},
		{Text: "billing wrong"},
	}
	meta := models.FeedbackMetadata{RecordCount: 2, AverageTextLength: 12}
	a := RenderContext(entries, meta, 4000)
	b := RenderContext(entries, meta, 4000)
	if a != b {
		t.Fatalf("render is not deterministic")
	}
	if !strings.Contains(a, "1. app crashes (user: alice, location: Berlin)") {
		t.Fatalf("attributed entry missing:\n%s", a)
	}
	if !strings.Contains(a, "2. billing wrong") {
		t.Fatalf("second entry missing:\n%s", a)
	}
	if strings.Contains(a, "omitted") {
		t.Fatalf("nothing should be omitted under a large budget:\n%s", a)
	}
}

func TestRenderContextTailTruncation(t *testing.T) {
	entries := entriesForTest(50)
	meta := models.FeedbackMetadata{RecordCount: 50, AverageTextLength: 40}
	out := RenderContext(entries, meta, 500)

	if !strings.Contains(out, "1. ") {
		t.Fatalf("first entry must always be present:\n%s", out)
	}
	if !strings.Contains(out, "entries omitted") {
		t.Fatalf("expected omission trailer under tight budget:\n%s", out)
	}
	if strings.Contains(out, "50. ") {
		t.Fatalf("tail entries should be dropped wholesale:\n%s", out)
	}
}

func TestScoutPromptMentionsQueryAndContext(t *testing.T) {
	p := Scout("CONTEXT-MARKER", "find issues")
	if !strings.Contains(p, "find issues") || !strings.Contains(p, "CONTEXT-MARKER") {
		t.Fatalf("prompt missing query or context")
	}
	if !strings.Contains(p, `"issue_types"`) {
		t.Fatalf("prompt missing response schema")
	}
}

func TestScoutDigestBounded(t *testing.T) {
	issues := make([]any, 0, 30)
	for i := 0; i < 30; i++ {
		issues = append(issues, map[string]any{
			"type":     "technical",
			"priority": "High",
			"examples": []any{strings.Repeat("x", 1000)},
		})
	}
	digest := ScoutDigest(map[string]any{
		"issue_types": issues,
		"summary":     strings.Repeat("s", 2000),
	})
	if len(digest) > 10000 {
		t.Fatalf("digest not bounded: %d chars", len(digest))
	}
	if !strings.Contains(digest, "1. Type: technical") {
		t.Fatalf("digest missing issue rendering:\n%s", digest)
	}
}

func TestScoutDigestClipKeepsUTF8Intact(t *testing.T) {
	digest := ScoutDigest(map[string]any{
		"issue_types": []any{map[string]any{
			"type":     "technical",
			"priority": "High",
			"examples": []any{strings.Repeat("\u00e5\u00f8\u00e6", 200)},
		}},
		"common_themes": []any{strings.Repeat("\u6f0f\u6d1e", 100)},
		"summary":       strings.Repeat("p\u00e5litelighet ", 60),
	})
	if !utf8.ValidString(digest) {
		t.Fatalf("digest contains invalid UTF-8 after clipping")
	}
}
