package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kollab_agentic/backend/internal/models"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewWithPool(mock), mock
}

func threeIssueReport(statuses ...models.Status) models.FinalReport {
	issues := make([]models.Issue, 0, 3)
	types := []string{"technical", "billing", "support"}
	for i := 0; i < 3; i++ {
		st := models.StatusNew
		if i < len(statuses) {
			st = statuses[i]
		}
		issues = append(issues, models.Issue{
			IssueType:       types[i],
			ResponsibleTeam: "engineering",
			Criticality:     models.CriticalityHigh,
			Status:          st,
			Timeline:        models.TimelineImmediate,
		})
	}
	return models.FinalReport{ExecutiveSummary: "summary", Issues: issues}
}

func ticketRowColumns() []string {
	return []string{"company_id", "ticket_id", "created_at", "query", "status", "report", "record_count", "avg_text_length", "saved_at", "updated_at"}
}

func TestSaveGeneratesTicketID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO tickets`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "saved_at", "updated_at"}).
			AddRow(int64(1700000000), int64(1700000000), int64(0)))

	ticket, err := s.Save(context.Background(), threeIssueReport(), "acme", "", "find issues", models.FeedbackMetadata{RecordCount: 2})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^acme_\d+$`), ticket.TicketID)
	assert.Equal(t, models.StatusNew, ticket.Status)
	for _, issue := range ticket.Report.Issues {
		assert.Equal(t, models.StatusNew, issue.Status)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveKeepsSuppliedTicketID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO tickets`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "saved_at", "updated_at"}).
			AddRow(int64(1700000000), int64(1700000000), int64(0)))

	ticket, err := s.Save(context.Background(), threeIssueReport(), "acme", "acme_123", "q", models.FeedbackMetadata{})
	require.NoError(t, err)
	assert.Equal(t, "acme_123", ticket.TicketID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUpsertKeepsOriginalTimestamps(t *testing.T) {
	s, mock := newMockStore(t)

	// The row already exists; the upsert preserves created_at and saved_at
	// and only moves updated_at. The returned ticket must reflect the row.
	mock.ExpectQuery(`INSERT INTO tickets`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "saved_at", "updated_at"}).
			AddRow(int64(100), int64(100), int64(900)))

	ticket, err := s.Save(context.Background(), threeIssueReport(), "acme", "acme_123", "q", models.FeedbackMetadata{})
	require.NoError(t, err)
	assert.Equal(t, int64(100), ticket.CreatedAt)
	assert.Equal(t, int64(100), ticket.Metadata.SavedAt)
	assert.Equal(t, int64(900), ticket.Metadata.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoundTrip(t *testing.T) {
	s, mock := newMockStore(t)

	report := threeIssueReport()
	reportJSON, err := json.Marshal(report)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT company_id, ticket_id, .+ FROM tickets WHERE company_id = \$1 AND ticket_id = \$2`).
		WithArgs("acme", "acme_123").
		WillReturnRows(pgxmock.NewRows(ticketRowColumns()).
			AddRow("acme", "acme_123", int64(1700000000), "find issues", "new", reportJSON, 2, 21.5, int64(1700000000), int64(0)))

	ticket, err := s.Get(context.Background(), "acme", "acme_123")
	require.NoError(t, err)
	assert.Equal(t, report.Issues, ticket.Report.Issues)
	assert.Equal(t, "find issues", ticket.Query)
	assert.Equal(t, models.StatusNew, ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT company_id, ticket_id, .+ FROM tickets`).
		WithArgs("acme", "missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.Get(context.Background(), "acme", "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSummaries(t *testing.T) {
	s, mock := newMockStore(t)

	newer, err := json.Marshal(threeIssueReport(models.StatusResolved, models.StatusNew, models.StatusNew))
	require.NoError(t, err)
	older, err := json.Marshal(threeIssueReport(models.StatusResolved, models.StatusResolved, models.StatusResolved))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT company_id, ticket_id, .+ FROM tickets WHERE company_id = \$1 ORDER BY created_at DESC`).
		WithArgs("acme").
		WillReturnRows(pgxmock.NewRows(ticketRowColumns()).
			AddRow("acme", "acme_2", int64(200), "q2", "processing", newer, 3, 10.0, int64(200), int64(0)).
			AddRow("acme", "acme_1", int64(100), "q1", "resolved", older, 3, 10.0, int64(100), int64(0)))

	summaries, err := s.List(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "acme_2", summaries[0].TicketID)
	assert.Equal(t, models.StatusProcessing, summaries[0].Status)
	assert.Equal(t, 1, summaries[0].StatusCounts[models.StatusResolved])
	assert.Equal(t, 2, summaries[0].StatusCounts[models.StatusNew])
	assert.Equal(t, 3, summaries[0].IssueCount)

	assert.Equal(t, models.StatusResolved, summaries[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectStatusUpdate(t *testing.T, mock pgxmock.PgxPoolIface, current models.FinalReport) {
	t.Helper()
	reportJSON, err := json.Marshal(current)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT report FROM tickets\s+WHERE company_id = \$1 AND ticket_id = \$2\s+FOR UPDATE`).
		WithArgs("acme", "acme_123").
		WillReturnRows(pgxmock.NewRows([]string{"report"}).AddRow(reportJSON))
	mock.ExpectExec(`UPDATE tickets SET report = \$1, status = \$2, updated_at = \$3`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
}

func TestUpdateIssueStatusProgression(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	// 3 issues all new; resolving them one by one walks new -> processing -> resolved.
	expectStatusUpdate(t, mock, threeIssueReport())
	overall, counts, err := s.UpdateIssueStatus(ctx, "acme", "acme_123", 0, models.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, overall)
	assert.Equal(t, 1, counts[models.StatusResolved])

	expectStatusUpdate(t, mock, threeIssueReport(models.StatusResolved))
	overall, _, err = s.UpdateIssueStatus(ctx, "acme", "acme_123", 1, models.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, overall)

	expectStatusUpdate(t, mock, threeIssueReport(models.StatusResolved, models.StatusResolved))
	overall, counts, err = s.UpdateIssueStatus(ctx, "acme", "acme_123", 2, models.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, overall)
	assert.Equal(t, 3, counts[models.StatusResolved])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateIssueStatusIndexOutOfRange(t *testing.T) {
	s, mock := newMockStore(t)

	reportJSON, err := json.Marshal(threeIssueReport())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT report FROM tickets`).
		WithArgs("acme", "acme_123").
		WillReturnRows(pgxmock.NewRows([]string{"report"}).AddRow(reportJSON))
	mock.ExpectRollback()

	_, _, err = s.UpdateIssueStatus(context.Background(), "acme", "acme_123", 5, models.StatusResolved)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateIssueStatusNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT report FROM tickets`).
		WithArgs("acme", "missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := s.UpdateIssueStatus(context.Background(), "acme", "missing", 0, models.StatusResolved)
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
