package normalize

import (
	"testing"

	"github.com/kollab_agentic/backend/internal/models"
)

func TestNormalizeEmptyInput(t *testing.T) {
	_, _, err := Normalize(nil)
	if err != ErrEmptyInput {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestNormalizeFieldPriority(t *testing.T) {
	records := []models.FeedbackRecord{
		{"text": "app crashes", "message": "ignored"},
		{"message": "billing is wrong"},
		{"feedback": "slow search"},
	}
	entries, _, err := Normalize(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Text != "app crashes" {
		t.Fatalf("text field should win over message, got %q", entries[0].Text)
	}
	if entries[1].Text != "billing is wrong" {
		t.Fatalf("unexpected entry: %q", entries[1].Text)
	}
}

func TestNormalizeFallbackConcatenatesValues(t *testing.T) {
	records := []models.FeedbackRecord{
		{"col_a": "first", "col_b": "second", "col_c": ""},
	}
	entries, _, err := Normalize(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].Text != "first second" {
		t.Fatalf("expected concatenated fallback, got %q", entries[0].Text)
	}
}

func TestNormalizeDropsEmptyTextRecords(t *testing.T) {
	records := []models.FeedbackRecord{
		{"text": "real feedback"},
		{"text": "   \n\t  "},
		{"other": ""},
	}
	entries, meta, err := Normalize(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected whitespace-only records dropped, got %d entries", len(entries))
	}
	if meta.RecordCount != 3 {
		t.Fatalf("record count should cover all input records, got %d", meta.RecordCount)
	}
}

func TestNormalizeAttribution(t *testing.T) {
	records := []models.FeedbackRecord{
		{"text": "cannot log in", "user": "alice", "city": "Berlin"},
	}
	entries, _, err := Normalize(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].User != "alice" || entries[0].Location != "Berlin" {
		t.Fatalf("attribution not resolved: %+v", entries[0])
	}
}

func TestCleanText(t *testing.T) {
	in := "Check https://example.com/x  <b>now</b>\r\nplease   fix"
	got := CleanText(in)
	if got != "Check now please fix" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestSuggestTags(t *testing.T) {
	entries := []models.FeedbackEntry{
		{Text: "the app crashes with an error every time"},
		{Text: "billing charged me twice, need a refund"},
		{Text: "another crash on export"},
	}
	tags := SuggestTags(entries)
	if len(tags) == 0 {
		t.Fatalf("expected suggested tags")
	}
	if tags[0] != "bug" {
		t.Fatalf("expected bug to rank first, got %v", tags)
	}
	found := false
	for _, tag := range tags {
		if tag == "billing" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected billing tag, got %v", tags)
	}
}

func TestMetadataAggregates(t *testing.T) {
	records := []models.FeedbackRecord{
		{"text": "aaaa", "city": "Oslo"},
		{"text": "bbbbbbbb", "city": "Oslo", "user": "bob"},
		{"text": "cc", "city": "Lima"},
	}
	_, meta, err := Normalize(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.RecordCount != 3 {
		t.Fatalf("record count = %d", meta.RecordCount)
	}
	if meta.AverageTextLength <= 0 {
		t.Fatalf("average length should be positive, got %f", meta.AverageTextLength)
	}
	if !meta.StructuredData {
		t.Fatalf("expected structured flag with 3 distinct fields")
	}
	if len(meta.TopLocations) == 0 || meta.TopLocations[0] != "Oslo" {
		t.Fatalf("expected Oslo as top location, got %v", meta.TopLocations)
	}
	if len(meta.TopFields) == 0 || meta.TopFields[0] != "city" && meta.TopFields[0] != "text" {
		t.Fatalf("unexpected top fields: %v", meta.TopFields)
	}
}
