package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Scout builds the first-stage prompt: identify issue types, priorities,
// examples, attributed sources and tags from the rendered feedback context.
func Scout(context, query string) string {
	return fmt.Sprintf(`Analyze the following user feedback to identify key patterns and insights.

User Query: %q

Feedback Data:
%s

Your task is to:
1. Identify the main types of issues present in the feedback
2. Determine the priority of each issue type (Critical, High, Medium or Low)
3. Quote example feedback entries for each issue type, keeping any user or location attribution
4. Suggest short tags for each issue type
5. Note common themes across the feedback

Respond with a single JSON object of this exact structure and nothing else:
{
  "issue_types": [
    {
      "type": "Type of issue (e.g. billing, technical, support)",
      "description": "What is going wrong",
      "priority": "Critical/High/Medium/Low",
      "examples": ["Example feedback 1", "Example feedback 2"],
      "tags": ["tag1", "tag2"]
    }
  ],
  "common_themes": ["Theme 1", "Theme 2"],
  "summary": "Overall summary of the findings"
}`, query, context)
}

// Analyst builds the second-stage prompt from a compact digest of the scout
// payload: assign responsible teams, criticality, actions and strategy.
func Analyst(scoutDigest, query string) string {
	return fmt.Sprintf(`Based on the following feedback analysis, determine which internal teams should handle each issue, recommend specific actions, and propose resolution strategies.

User Query: %q

Scout Analysis:
%s

Your task is to:
1. For each issue type, name the internal team (support, technical, billing, product, etc.) responsible for addressing it
2. Recommend specific actions that team should take
3. Confirm or adjust the criticality of each issue (Critical, High, Medium or Low)
4. Propose a resolution strategy per issue
5. Suggest cross-team recommendations where issues span teams

Respond with a single JSON object of this exact structure and nothing else:
{
  "team_assignments": [
    {
      "issue_type": "Type of issue from the analysis",
      "responsible_team": "Primary team responsible",
      "criticality": "Critical/High/Medium/Low",
      "recommended_actions": ["Specific action 1", "Specific action 2"],
      "resolution_strategy": "Approach to resolving this issue"
    }
  ],
  "cross_team_recommendations": ["Recommendation 1", "Recommendation 2"]
}`, query, scoutDigest)
}

// maxDigestItems bounds how many entries of any list the digest renders so a
// large scout payload cannot blow the next stage's context budget.
const maxDigestItems = 10

// ScoutDigest re-renders a scout payload as a compact plain-text digest for
// the analyst prompt.
func ScoutDigest(data map[string]any) string {
	var b strings.Builder

	if issues, ok := data["issue_types"].([]any); ok && len(issues) > 0 {
		b.WriteString("ISSUE TYPES:\n")
		for i, raw := range issues {
			if i >= maxDigestItems {
				break
			}
			issue, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %d. Type: %s\n", i+1, str(issue, "type"))
			if p := str(issue, "priority"); p != "" {
				fmt.Fprintf(&b, "     Priority: %s\n", p)
			}
			if d := str(issue, "description"); d != "" {
				fmt.Fprintf(&b, "     Details: %s\n", clip(d, 200))
			}
			if examples := strSlice(issue, "examples"); len(examples) > 0 {
				fmt.Fprintf(&b, "     Example: %s\n", clip(examples[0], 200))
			}
		}
	}

	if themes := strSlice(data, "common_themes"); len(themes) > 0 {
		b.WriteString("COMMON THEMES:\n")
		for i, theme := range themes {
			if i >= maxDigestItems {
				break
			}
			fmt.Fprintf(&b, "  - %s\n", clip(theme, 120))
		}
	}

	if s := str(data, "summary"); s != "" {
		fmt.Fprintf(&b, "SUMMARY: %s\n", clip(s, 400))
	}
	return b.String()
}

func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func strSlice(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// clip truncates to at most limit bytes without splitting a rune.
func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
