package models

// FeedbackRecord is one raw input record from a file or connector. There is no
// fixed schema; readers hand over whatever fields the source carried.
type FeedbackRecord map[string]any

// FeedbackEntry is one normalized piece of feedback text with optional
// attribution resolved by the normalizer.
type FeedbackEntry struct {
	Text     string `json:"text"`
	User     string `json:"user,omitempty"`
	Location string `json:"location,omitempty"`
}

// FeedbackMetadata aggregates over a full batch of input records. Computed once
// per analysis run and read-only afterward.
type FeedbackMetadata struct {
	RecordCount       int      `json:"record_count"`
	AverageTextLength float64  `json:"average_text_length"`
	TopFields         []string `json:"top_fields"`
	StructuredData    bool     `json:"structured_data"`
	SuggestedTags     []string `json:"suggested_tags"`
	TopLocations      []string `json:"top_locations"`
}

// StageResult is the parsed-or-failed outcome of one pipeline stage's backend
// response. When OK is false, Err carries the only information the caller gets.
type StageResult struct {
	OK   bool           `json:"ok"`
	Data map[string]any `json:"data,omitempty"`
	Err  string         `json:"error,omitempty"`
}

type Status string

const (
	StatusNew        Status = "new"
	StatusProcessing Status = "processing"
	StatusResolved   Status = "resolved"
)

// ValidStatus reports whether s is one of the three issue statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusProcessing, StatusResolved:
		return true
	}
	return false
}

type Criticality string

const (
	CriticalityCritical Criticality = "Critical"
	CriticalityHigh     Criticality = "High"
	CriticalityMedium   Criticality = "Medium"
	CriticalityLow      Criticality = "Low"
)

type Timeline string

const (
	TimelineImmediate Timeline = "immediate"
	TimelineShortTerm Timeline = "short-term"
	TimelineLongTerm  Timeline = "long-term"
)

// DeriveTimeline maps issue criticality to a resolution timeline. Unknown or
// missing criticality defaults to short-term.
func DeriveTimeline(c Criticality) Timeline {
	switch c {
	case CriticalityCritical, CriticalityHigh:
		return TimelineImmediate
	case CriticalityMedium:
		return TimelineShortTerm
	case CriticalityLow:
		return TimelineLongTerm
	default:
		return TimelineShortTerm
	}
}

// Issue is one actionable finding in a final report.
type Issue struct {
	IssueType          string      `json:"issue_type"`
	Description        string      `json:"description"`
	ResponsibleTeam    string      `json:"responsible_team"`
	Criticality        Criticality `json:"criticality"`
	RecommendedActions []string    `json:"recommended_actions"`
	ResolutionStrategy string      `json:"resolution_strategy"`
	Sources            []string    `json:"sources"`
	Tags               []string    `json:"tags"`
	Status             Status      `json:"status"`
	Timeline           Timeline    `json:"timeline"`
}

// Initiative is a cross-team effort recommended alongside per-issue actions.
type Initiative struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	TeamsInvolved   []string `json:"teams_involved,omitempty"`
	ExpectedOutcome string   `json:"expected_outcome,omitempty"`
}

// ImplementationPlan buckets recommended actions by timeline.
type ImplementationPlan struct {
	ImmediateActions []string `json:"immediate_actions"`
	ShortTermActions []string `json:"short_term_actions"`
	LongTermActions  []string `json:"long_term_actions"`
}

// FinalReport is the synthesized output of a full pipeline run.
type FinalReport struct {
	ExecutiveSummary     string             `json:"executive_summary"`
	Issues               []Issue            `json:"issues"`
	CrossTeamInitiatives []Initiative       `json:"cross_team_initiatives"`
	ImplementationPlan   ImplementationPlan `json:"implementation_plan"`
}

// TicketMetadata carries batch statistics and storage timestamps.
type TicketMetadata struct {
	RecordCount       int     `json:"record_count"`
	AverageTextLength float64 `json:"average_text_length"`
	SavedAt           int64   `json:"saved_at"`
	UpdatedAt         int64   `json:"updated_at,omitempty"`
}

// Ticket is one persisted analysis run, unique per (company_id, ticket_id).
type Ticket struct {
	TicketID  string         `json:"ticket_id"`
	CompanyID string         `json:"company_id"`
	CreatedAt int64          `json:"created_at"`
	Query     string         `json:"query"`
	Report    FinalReport    `json:"final_report"`
	Status    Status         `json:"status"`
	Metadata  TicketMetadata `json:"metadata"`
}

// TicketSummary is the listing shape for a company's tickets.
type TicketSummary struct {
	TicketID     string         `json:"ticket_id"`
	CreatedAt    int64          `json:"created_at"`
	Status       Status         `json:"status"`
	StatusCounts map[Status]int `json:"task_status_counts"`
	Query        string         `json:"query"`
	Summary      string         `json:"summary"`
	IssueCount   int            `json:"issue_count"`
}

// OverallStatus aggregates per-issue statuses into the ticket status:
// resolved iff every issue is resolved, new iff every issue is new,
// processing otherwise. An empty issue list counts as new.
func OverallStatus(issues []Issue) Status {
	if len(issues) == 0 {
		return StatusNew
	}
	resolved, fresh := 0, 0
	for _, is := range issues {
		switch is.Status {
		case StatusResolved:
			resolved++
		case StatusNew, "":
			fresh++
		}
	}
	switch {
	case resolved == len(issues):
		return StatusResolved
	case fresh == len(issues):
		return StatusNew
	default:
		return StatusProcessing
	}
}

// StatusCounts tallies issues per status, treating an unset status as new.
func StatusCounts(issues []Issue) map[Status]int {
	counts := map[Status]int{StatusNew: 0, StatusProcessing: 0, StatusResolved: 0}
	for _, is := range issues {
		s := is.Status
		if s == "" {
			s = StatusNew
		}
		if _, ok := counts[s]; ok {
			counts[s]++
		}
	}
	return counts
}
