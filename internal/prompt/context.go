// Package prompt renders the bounded textual contexts and stage prompts the
// analysis pipeline sends to the generation backend. Everything here is
// deterministic; no backend calls happen in this package.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kollab_agentic/backend/internal/models"
)

// RenderContext concatenates numbered feedback entries in original order,
// stopping before the running size would exceed charBudget. Truncation is
// tail-only: earlier feedback is always fully represented, later entries are
// dropped wholesale and reported in a trailing line.
func RenderContext(entries []models.FeedbackEntry, meta models.FeedbackMetadata, charBudget int) string {
	var b strings.Builder

	header := fmt.Sprintf("Feedback batch: %d records, avg length %.0f chars", meta.RecordCount, meta.AverageTextLength)
	if len(meta.SuggestedTags) > 0 {
		header += ", suggested tags: " + strings.Join(meta.SuggestedTags, ", ")
	}
	if len(meta.TopLocations) > 0 {
		header += ", top locations: " + strings.Join(meta.TopLocations, ", ")
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	included := 0
	for i, e := range entries {
		line := fmt.Sprintf("%d. %s", i+1, e.Text)
		var notes []string
		if e.User != "" {
			notes = append(notes, "user: "+e.User)
		}
		if e.Location != "" {
			notes = append(notes, "location: "+e.Location)
		}
		if len(notes) > 0 {
			line += " (" + strings.Join(notes, ", ") + ")"
		}
		line += "\n"
		if b.Len()+len(line) > charBudget {
			break
		}
		b.WriteString(line)
		included++
	}

	if omitted := len(entries) - included; omitted > 0 {
		b.WriteString(fmt.Sprintf("... %d more entries omitted to fit the context budget\n", omitted))
	}
	return b.String()
}
