// Package extract salvages the structured payload embedded in a generation
// backend response. Backends routinely wrap the requested JSON in preamble or
// postamble prose, so this is a best-effort salvage, not a strict parser.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/kollab_agentic/backend/internal/models"
)

const (
	// ErrNoPayload is reported when the response contains no brace-delimited span.
	ErrNoPayload = "no structured payload found"
	// ErrMalformed is reported when the span exists but is not well-formed JSON.
	ErrMalformed = "malformed payload"
)

// Payload locates the span between the first '{' and the last '}' in raw and
// parses it as a JSON object. Known failure modes of the outermost-brace
// heuristic: a second independent payload in the same response corrupts the
// span, and prose containing a stray brace widens it. All failures are encoded
// in the returned StageResult; Payload never returns a Go error.
func Payload(raw string) models.StageResult {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 || end < start {
		return models.StageResult{Err: ErrNoPayload}
	}

	span := raw[start : end+1]
	var data map[string]any
	if err := json.Unmarshal([]byte(span), &data); err != nil {
		return models.StageResult{Err: ErrMalformed}
	}
	return models.StageResult{OK: true, Data: data}
}
