package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kollab_agentic/backend/internal/models"
)

// ErrEmptyInput is returned when a batch contains no records at all. The
// caller must surface it as a terminal input error, never retry.
var ErrEmptyInput = errors.New("no records provided for analysis")

// Candidate field names checked in order when resolving the feedback text of
// a record. Records matching none of them fall back to concatenating all
// non-empty values.
var textFields = []string{"text", "message", "feedback", "content", "description", "comment", "comments", "issue", "complaint"}

var userFields = []string{"user", "username", "user_name", "customer", "author", "email", "reporter", "name"}

var locationFields = []string{"location", "city", "region", "country", "office", "branch"}

var (
	urlRe  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlRe = regexp.MustCompile(`<[^>]*>`)
	wsRe   = regexp.MustCompile(`\s+`)
)

// Normalize turns a heterogeneous record batch into a uniform feedback list
// plus batch metadata. Records whose resolved text is empty after cleaning are
// dropped. Pure: the input is never mutated.
func Normalize(records []models.FeedbackRecord) ([]models.FeedbackEntry, models.FeedbackMetadata, error) {
	if len(records) == 0 {
		return nil, models.FeedbackMetadata{}, ErrEmptyInput
	}

	entries := make([]models.FeedbackEntry, 0, len(records))
	for _, rec := range records {
		text := CleanText(resolveText(rec))
		if text == "" {
			continue
		}
		entries = append(entries, models.FeedbackEntry{
			Text:     text,
			User:     strings.TrimSpace(resolveField(rec, userFields)),
			Location: strings.TrimSpace(resolveField(rec, locationFields)),
		})
	}

	meta := buildMetadata(records, entries)
	return entries, meta, nil
}

// CleanText strips URLs and HTML tags, normalizes line breaks, collapses
// whitespace runs and trims the result.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = urlRe.ReplaceAllString(text, "")
	text = htmlRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = wsRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func resolveText(rec models.FeedbackRecord) string {
	if v := resolveField(rec, textFields); v != "" {
		return v
	}
	// No recognizable text field: concatenate every non-empty value. Field
	// names are sorted so the fallback is deterministic across runs.
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		if s := stringify(rec[k]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func resolveField(rec models.FeedbackRecord, candidates []string) string {
	for _, field := range candidates {
		if v, ok := rec[field]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
