package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kollab_agentic/backend/internal/utils"
)

// MockCompleter fabricates stage-appropriate JSON payloads without a backend.
// Selection is deterministic per prompt via an fnv hash, so repeated runs over
// the same input produce identical reports. Used when no completion backend is
// configured and in tests.
type MockCompleter struct {
	ModelVersion string
}

var mockIssuePool = []struct {
	Type        string
	Team        string
	Criticality string
	Tags        []string
}{
	{"technical", "engineering", "High", []string{"bug", "crash"}},
	{"billing", "billing", "Critical", []string{"billing", "charge"}},
	{"support", "support", "Medium", []string{"support", "response-time"}},
	{"usability", "product", "Low", []string{"ux", "design"}},
}

func (m MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := utils.HashStringToUint64(prompt)

	switch {
	case strings.Contains(prompt, `"team_assignments"`):
		return m.analystResponse(h, prompt), nil
	default:
		return m.scoutResponse(h), nil
	}
}

func (m MockCompleter) scoutResponse(h uint64) string {
	n := 2 + int(h%2)
	issues := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		pick := mockIssuePool[(int(h)+i)%len(mockIssuePool)]
		issues = append(issues, map[string]any{
			"type":        pick.Type,
			"description": fmt.Sprintf("Recurring %s complaints reported by users", pick.Type),
			"priority":    pick.Criticality,
			"examples":    []string{fmt.Sprintf("Sample %s feedback %d", pick.Type, i+1)},
			"tags":        pick.Tags,
		})
	}
	payload := map[string]any{
		"issue_types":   issues,
		"common_themes": []string{"reliability", "communication"},
		"summary":       fmt.Sprintf("Identified %d issue types across the feedback batch (%s)", n, m.ModelVersion),
	}
	b, _ := json.Marshal(payload)
	return "Here is the requested analysis:\n" + string(b)
}

func (m MockCompleter) analystResponse(h uint64, prompt string) string {
	// Echo the issue types present in the digest so the two stages agree,
	// the way a real backend would.
	types := digestIssueTypes(prompt)
	if len(types) == 0 {
		pick := mockIssuePool[int(h)%len(mockIssuePool)]
		types = []string{pick.Type}
	}
	assignments := make([]map[string]any, 0, len(types))
	for _, typ := range types {
		pick := mockIssuePool[0]
		for _, p := range mockIssuePool {
			if p.Type == typ {
				pick = p
				break
			}
		}
		assignments = append(assignments, map[string]any{
			"issue_type":       typ,
			"responsible_team": pick.Team,
			"criticality":      pick.Criticality,
			"recommended_actions": []string{
				fmt.Sprintf("Triage open %s reports", typ),
				fmt.Sprintf("Publish a fix plan for %s issues", typ),
			},
			"resolution_strategy": fmt.Sprintf("Route %s issues to the %s team and track weekly", typ, pick.Team),
		})
	}
	payload := map[string]any{
		"team_assignments":           assignments,
		"cross_team_recommendations": []string{"Share feedback digests across teams"},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func digestIssueTypes(prompt string) []string {
	var types []string
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if idx := strings.Index(line, "Type: "); idx >= 0 && !strings.HasPrefix(line, "\"") {
			if t := strings.TrimSpace(line[idx+len("Type: "):]); t != "" {
				types = append(types, t)
			}
		}
	}
	return types
}
