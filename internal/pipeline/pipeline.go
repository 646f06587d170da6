// Package pipeline drives the three-stage feedback analysis protocol:
// normalize the batch, have the backend scout issue types, have it assign
// teams and actions, then synthesize the final report.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kollab_agentic/backend/internal/extract"
	"github.com/kollab_agentic/backend/internal/llm"
	"github.com/kollab_agentic/backend/internal/models"
	"github.com/kollab_agentic/backend/internal/normalize"
	"github.com/kollab_agentic/backend/internal/prompt"
)

// Stage names, in execution order. FAILED is absorbing; no stage retries.
const (
	StageIntake      = "intake"
	StageScout       = "scout"
	StageAnalyst     = "analyst"
	StageOrchestrate = "orchestrate"
	StageDone        = "done"
	StageFailed      = "failed"
)

// Failure reasons surfaced to callers. This fixed taxonomy plus the process id
// is the only externally visible error shape; payload fragments never leak.
const (
	ReasonNoContent             = "no_content"
	ReasonScoutParseError       = "scout_parse_error"
	ReasonAnalystParseError     = "analyst_parse_error"
	ReasonOrchestrateParseError = "orchestrate_parse_error"
)

const defaultContextBudget = 8000

// Observer receives fire-and-forget progress notifications per stage
// transition. Implementations must not block; a no-op is valid.
type Observer interface {
	Notify(stage string, message string)
}

// NopObserver discards notifications.
type NopObserver struct{}

func (NopObserver) Notify(string, string) {}

// LogObserver forwards progress to a zerolog logger.
type LogObserver struct {
	Logger zerolog.Logger
}

func (o LogObserver) Notify(stage, message string) {
	o.Logger.Info().Str("stage", stage).Msg(message)
}

// RunError is the terminal failure shape of a pipeline run.
type RunError struct {
	Reason    string `json:"error"`
	ProcessID string `json:"process_id"`
}

func (e *RunError) Error() string {
	return fmt.Sprintf("pipeline failed: %s (process %s)", e.Reason, e.ProcessID)
}

// Pipeline holds the collaborators of one analysis run. It is cheap to
// construct; build one per request rather than sharing mutable state.
type Pipeline struct {
	Completer     llm.Completer
	Observer      Observer
	Logger        zerolog.Logger
	ContextBudget int
}

// Result carries the synthesized report plus the batch metadata it was
// computed from.
type Result struct {
	Report   models.FinalReport
	Metadata models.FeedbackMetadata
}

// Run executes INTAKE -> SCOUT -> ANALYST -> ORCHESTRATE strictly in order.
// Each LLM stage makes exactly one backend call; a backend failure or an
// unparseable response is terminal for the run. On failure the returned
// *RunError carries only the reason and process id.
func (p *Pipeline) Run(ctx context.Context, records []models.FeedbackRecord, query, companyID, processID string) (*Result, *RunError) {
	obs := p.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	budget := p.ContextBudget
	if budget <= 0 {
		budget = defaultContextBudget
	}
	logger := p.Logger.With().Str("process_id", processID).Str("company_id", companyID).Logger()

	obs.Notify(StageIntake, fmt.Sprintf("Normalizing %d records", len(records)))
	entries, meta, err := normalize.Normalize(records)
	if err != nil || len(entries) == 0 {
		obs.Notify(StageFailed, "No usable content in the input records")
		return nil, &RunError{Reason: ReasonNoContent, ProcessID: processID}
	}

	obs.Notify(StageScout, fmt.Sprintf("Scout analyzing %d feedback entries", len(entries)))
	contextText := prompt.RenderContext(entries, meta, budget)
	scoutRes := p.invoke(ctx, prompt.Scout(contextText, query))
	if !scoutRes.OK {
		logger.Warn().Str("stage", StageScout).Str("parse_error", scoutRes.Err).Msg("stage failed")
		obs.Notify(StageFailed, "Scout stage produced no usable result")
		return nil, &RunError{Reason: ReasonScoutParseError, ProcessID: processID}
	}

	obs.Notify(StageAnalyst, "Analyst assigning teams and actions")
	digest := prompt.ScoutDigest(scoutRes.Data)
	analystRes := p.invoke(ctx, prompt.Analyst(digest, query))
	if !analystRes.OK {
		logger.Warn().Str("stage", StageAnalyst).Str("parse_error", analystRes.Err).Msg("stage failed")
		obs.Notify(StageFailed, "Analyst stage produced no usable result")
		return nil, &RunError{Reason: ReasonAnalystParseError, ProcessID: processID}
	}

	obs.Notify(StageOrchestrate, "Synthesizing final report")
	report, ok := Synthesize(scoutRes.Data, analystRes.Data)
	if !ok {
		logger.Warn().Str("stage", StageOrchestrate).Msg("no issues could be synthesized")
		obs.Notify(StageFailed, "Synthesis produced no issues")
		return nil, &RunError{Reason: ReasonOrchestrateParseError, ProcessID: processID}
	}

	obs.Notify(StageDone, fmt.Sprintf("Analysis complete: %d issues", len(report.Issues)))
	logger.Info().Int("issues", len(report.Issues)).Msg("pipeline done")
	return &Result{Report: report, Metadata: meta}, nil
}

// invoke performs one backend round-trip and reduces the response to a
// StageResult. Backend errors and parse errors are indistinguishable to the
// caller.
func (p *Pipeline) invoke(ctx context.Context, promptText string) models.StageResult {
	raw, err := p.Completer.Complete(ctx, promptText)
	if err != nil {
		return models.StageResult{Err: err.Error()}
	}
	return extract.Payload(raw)
}
