package pipeline

import (
	"fmt"
	"strings"

	"github.com/kollab_agentic/backend/internal/models"
)

// Synthesize merges the scout and analyst payloads into the final report
// without a third backend call: issue identity, examples and tags come from
// the scout payload; team, criticality, actions and strategy from the matching
// analyst assignment. Timeline derives from criticality, and each issue's
// first recommended action lands in its timeline bucket of the implementation
// plan, in issue order. Returns ok=false when the scout payload yields no
// issue types at all.
func Synthesize(scout, analyst map[string]any) (models.FinalReport, bool) {
	assignments := indexAssignments(analyst)

	var issues []models.Issue
	for _, raw := range anySlice(scout, "issue_types") {
		src, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		issueType := firstNonEmpty(str(src, "type"), str(src, "issue_type"))
		if issueType == "" {
			continue
		}

		issue := models.Issue{
			IssueType:   issueType,
			Description: str(src, "description"),
			Criticality: parseCriticality(str(src, "priority")),
			Sources:     strSlice(src, "examples"),
			Tags:        strSlice(src, "tags"),
			Status:      models.StatusNew,
		}
		if issue.Description == "" {
			issue.Description = str(src, "key_details")
		}

		if a, ok := assignments[normalizeType(issueType)]; ok {
			issue.ResponsibleTeam = str(a, "responsible_team")
			issue.RecommendedActions = strSlice(a, "recommended_actions")
			issue.ResolutionStrategy = str(a, "resolution_strategy")
			if c := parseCriticality(str(a, "criticality")); c != "" {
				// The analyst's criticality call wins over the scout's priority.
				issue.Criticality = c
			}
		}
		if issue.ResponsibleTeam == "" {
			issue.ResponsibleTeam = "support"
		}
		if issue.Criticality == "" {
			issue.Criticality = models.CriticalityMedium
		}
		issue.Timeline = models.DeriveTimeline(issue.Criticality)
		issues = append(issues, issue)
	}
	if len(issues) == 0 {
		return models.FinalReport{}, false
	}

	report := models.FinalReport{
		ExecutiveSummary:     buildSummary(scout, issues),
		Issues:               issues,
		CrossTeamInitiatives: buildInitiatives(analyst),
		ImplementationPlan:   buildPlan(issues),
	}
	return report, true
}

func buildPlan(issues []models.Issue) models.ImplementationPlan {
	plan := models.ImplementationPlan{
		ImmediateActions: []string{},
		ShortTermActions: []string{},
		LongTermActions:  []string{},
	}
	for _, issue := range issues {
		if len(issue.RecommendedActions) == 0 {
			continue
		}
		action := issue.RecommendedActions[0]
		switch issue.Timeline {
		case models.TimelineImmediate:
			plan.ImmediateActions = append(plan.ImmediateActions, action)
		case models.TimelineShortTerm:
			plan.ShortTermActions = append(plan.ShortTermActions, action)
		default:
			plan.LongTermActions = append(plan.LongTermActions, action)
		}
	}
	return plan
}

func buildSummary(scout map[string]any, issues []models.Issue) string {
	critical := 0
	teams := map[string]bool{}
	for _, issue := range issues {
		if issue.Criticality == models.CriticalityCritical || issue.Criticality == models.CriticalityHigh {
			critical++
		}
		teams[issue.ResponsibleTeam] = true
	}
	summary := fmt.Sprintf("%d issue types identified across the feedback, %d requiring immediate attention, assigned to %d team(s).", len(issues), critical, len(teams))
	if s := str(scout, "summary"); s != "" {
		summary += " " + s
	}
	return summary
}

func buildInitiatives(analyst map[string]any) []models.Initiative {
	initiatives := []models.Initiative{}
	for i, rec := range strSlice(analyst, "cross_team_recommendations") {
		initiatives = append(initiatives, models.Initiative{
			Name:        fmt.Sprintf("Cross-team initiative %d", i+1),
			Description: rec,
		})
	}
	// Some backends return structured initiatives instead of plain strings.
	for _, raw := range anySlice(analyst, "cross_team_initiatives") {
		src, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		initiatives = append(initiatives, models.Initiative{
			Name:            str(src, "name"),
			Description:     str(src, "description"),
			TeamsInvolved:   strSlice(src, "teams_involved"),
			ExpectedOutcome: str(src, "expected_outcome"),
		})
	}
	return initiatives
}

func indexAssignments(analyst map[string]any) map[string]map[string]any {
	out := map[string]map[string]any{}
	for _, raw := range anySlice(analyst, "team_assignments") {
		a, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if typ := normalizeType(str(a, "issue_type")); typ != "" {
			out[typ] = a
		}
	}
	return out
}

func parseCriticality(s string) models.Criticality {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return models.CriticalityCritical
	case "high":
		return models.CriticalityHigh
	case "medium":
		return models.CriticalityMedium
	case "low":
		return models.CriticalityLow
	default:
		return ""
	}
}

func normalizeType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func anySlice(m map[string]any, key string) []any {
	if v, ok := m[key].([]any); ok {
		return v
	}
	return nil
}

func strSlice(m map[string]any, key string) []string {
	var out []string
	for _, v := range anySlice(m, key) {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
