// Package llm wraps the opaque text-completion capability the analysis
// pipeline depends on: given a prompt, return a response string. Nothing in
// here inspects or guarantees the response shape.
package llm

import "context"

// Completer is the generation backend contract. Implementations must honor
// ctx cancellation and deadlines rather than hanging.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
