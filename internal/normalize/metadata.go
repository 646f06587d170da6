package normalize

import (
	"sort"
	"strings"

	"github.com/kollab_agentic/backend/internal/models"
)

const (
	maxTopFields    = 5
	maxTags         = 5
	maxTopLocations = 3
)

// tagKeywords maps a suggested tag to the lower-case substrings that vote for
// it when found in feedback text.
var tagKeywords = map[string][]string{
	"bug":         {"bug", "error", "crash", "not working", "broken"},
	"billing":     {"billing", "charge", "charged", "payment", "invoice", "refund"},
	"performance": {"slow", "lag", "performance", "timeout", "freezes"},
	"ux":          {"confusing", "design", "layout", "hard to find", "unintuitive"},
	"support":     {"support", "agent", "response time", "waiting", "no reply"},
	"feature":     {"feature", "request", "wish", "would be nice", "missing"},
	"account":     {"login", "password", "account", "sign in", "locked out"},
}

func buildMetadata(records []models.FeedbackRecord, entries []models.FeedbackEntry) models.FeedbackMetadata {
	fieldCounts := map[string]int{}
	for _, rec := range records {
		for field := range rec {
			fieldCounts[field]++
		}
	}

	totalLen := 0
	locationCounts := map[string]int{}
	for _, e := range entries {
		totalLen += len(e.Text)
		if e.Location != "" {
			locationCounts[e.Location]++
		}
	}
	avgLen := 0.0
	if len(entries) > 0 {
		avgLen = float64(totalLen) / float64(len(entries))
	}

	return models.FeedbackMetadata{
		RecordCount:       len(records),
		AverageTextLength: avgLen,
		TopFields:         topByCount(fieldCounts, maxTopFields),
		StructuredData:    len(fieldCounts) > 2,
		SuggestedTags:     SuggestTags(entries),
		TopLocations:      topByCount(locationCounts, maxTopLocations),
	}
}

// SuggestTags scans lower-cased feedback text against the tag keyword table
// and returns the tags with the highest keyword hit counts, at most five.
func SuggestTags(entries []models.FeedbackEntry) []string {
	tagCounts := map[string]int{}
	for _, e := range entries {
		lower := strings.ToLower(e.Text)
		for tag, keywords := range tagKeywords {
			for _, kw := range keywords {
				tagCounts[tag] += strings.Count(lower, kw)
			}
		}
	}
	for tag, n := range tagCounts {
		if n == 0 {
			delete(tagCounts, tag)
		}
	}
	return topByCount(tagCounts, maxTags)
}

// topByCount orders keys by descending count, breaking ties alphabetically so
// the result is stable, and keeps at most limit of them.
func topByCount(counts map[string]int, limit int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}
