package pipeline

import (
	"testing"

	"github.com/kollab_agentic/backend/internal/models"
)

func TestSynthesizeDefaultsWithoutAssignment(t *testing.T) {
	scout := map[string]any{
		"issue_types": []any{
			map[string]any{"type": "usability", "priority": "Low", "examples": []any{"hard to find settings"}},
		},
	}
	report, ok := Synthesize(scout, map[string]any{})
	if !ok {
		t.Fatalf("expected synthesis to succeed")
	}
	issue := report.Issues[0]
	if issue.ResponsibleTeam != "support" {
		t.Fatalf("unassigned issues default to support, got %q", issue.ResponsibleTeam)
	}
	if issue.Timeline != models.TimelineLongTerm {
		t.Fatalf("Low must map to long-term, got %s", issue.Timeline)
	}
}

func TestSynthesizeUnknownCriticalityDefaults(t *testing.T) {
	scout := map[string]any{
		"issue_types": []any{map[string]any{"type": "misc", "priority": "Whatever"}},
	}
	report, ok := Synthesize(scout, map[string]any{})
	if !ok {
		t.Fatalf("expected synthesis to succeed")
	}
	if report.Issues[0].Criticality != models.CriticalityMedium {
		t.Fatalf("unknown criticality should default to Medium, got %s", report.Issues[0].Criticality)
	}
	if report.Issues[0].Timeline != models.TimelineShortTerm {
		t.Fatalf("defaulted criticality should map to short-term, got %s", report.Issues[0].Timeline)
	}
}

func TestSynthesizeMatchesAssignmentsCaseInsensitively(t *testing.T) {
	scout := map[string]any{
		"issue_types": []any{map[string]any{"type": "Billing", "priority": "High"}},
	}
	analyst := map[string]any{
		"team_assignments": []any{
			map[string]any{"issue_type": "billing", "responsible_team": "billing", "recommended_actions": []any{"audit"}},
		},
	}
	report, ok := Synthesize(scout, analyst)
	if !ok {
		t.Fatalf("expected synthesis to succeed")
	}
	if report.Issues[0].ResponsibleTeam != "billing" {
		t.Fatalf("case difference must not break matching: %+v", report.Issues[0])
	}
}

func TestSynthesizeOrderPreserved(t *testing.T) {
	scout := map[string]any{
		"issue_types": []any{
			map[string]any{"type": "a", "priority": "Low"},
			map[string]any{"type": "b", "priority": "Low"},
			map[string]any{"type": "c", "priority": "Low"},
		},
	}
	report, ok := Synthesize(scout, map[string]any{})
	if !ok {
		t.Fatalf("expected synthesis to succeed")
	}
	got := []string{report.Issues[0].IssueType, report.Issues[1].IssueType, report.Issues[2].IssueType}
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("issue order must match scout order: %v", got)
	}
}

func TestSynthesizeNoIssues(t *testing.T) {
	if _, ok := Synthesize(map[string]any{}, map[string]any{}); ok {
		t.Fatalf("expected failure on empty scout payload")
	}
}
