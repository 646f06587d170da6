// Package store persists completed analyses as tickets keyed by
// (company_id, ticket_id). A ticket row carries the full report as JSONB;
// issue status updates rewrite the document under a row lock so concurrent
// read-modify-writes against the same ticket serialize.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kollab_agentic/backend/internal/models"
)

var (
	// ErrNotFound marks a missing ticket.
	ErrNotFound = errors.New("ticket not found")
	// ErrIndexOutOfRange marks an issue index outside the ticket's issue list.
	ErrIndexOutOfRange = errors.New("issue index out of range")
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type Store struct {
	pool Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
	company_id      TEXT   NOT NULL,
	ticket_id       TEXT   NOT NULL,
	created_at      BIGINT NOT NULL,
	query           TEXT   NOT NULL DEFAULT '',
	status          TEXT   NOT NULL DEFAULT 'new',
	report          JSONB  NOT NULL,
	record_count    INT    NOT NULL DEFAULT 0,
	avg_text_length DOUBLE PRECISION NOT NULL DEFAULT 0,
	saved_at        BIGINT NOT NULL,
	updated_at      BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (company_id, ticket_id)
)`

// New connects a pool and ensures the schema exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{pool: pool}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// NewWithPool wraps an existing pool. Used by tests.
func NewWithPool(pool Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Save upserts a completed analysis. A missing ticketID gets the generated
// form {company_id}_{unix_timestamp}; issue statuses default to new; the
// ticket status is recomputed from the issues. Returns the persisted ticket.
func (s *Store) Save(ctx context.Context, report models.FinalReport, companyID, ticketID, query string, meta models.FeedbackMetadata) (*models.Ticket, error) {
	now := time.Now().Unix()
	if ticketID == "" {
		ticketID = fmt.Sprintf("%s_%d", companyID, now)
	}

	for i := range report.Issues {
		if report.Issues[i].Status == "" {
			report.Issues[i].Status = models.StatusNew
		}
	}
	status := models.OverallStatus(report.Issues)

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	// Upserting an existing ticket rewrites the full issue list, so it takes
	// the same row-level serialization as status updates. The upsert keeps
	// the original created_at/saved_at, so the returned ticket reads them
	// back from the row instead of assuming now.
	var createdAt, savedAt, updatedAt int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO tickets (company_id, ticket_id, created_at, query, status, report, record_count, avg_text_length, saved_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0)
		ON CONFLICT (company_id, ticket_id) DO UPDATE
		SET query = EXCLUDED.query,
			status = EXCLUDED.status,
			report = EXCLUDED.report,
			record_count = EXCLUDED.record_count,
			avg_text_length = EXCLUDED.avg_text_length,
			updated_at = EXCLUDED.saved_at
		RETURNING created_at, saved_at, updated_at`,
		companyID, ticketID, now, query, string(status), reportJSON, meta.RecordCount, meta.AverageTextLength, now).
		Scan(&createdAt, &savedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return &models.Ticket{
		TicketID:  ticketID,
		CompanyID: companyID,
		CreatedAt: createdAt,
		Query:     query,
		Report:    report,
		Status:    status,
		Metadata: models.TicketMetadata{
			RecordCount:       meta.RecordCount,
			AverageTextLength: meta.AverageTextLength,
			SavedAt:           savedAt,
			UpdatedAt:         updatedAt,
		},
	}, nil
}

// Get returns one ticket or ErrNotFound.
func (s *Store) Get(ctx context.Context, companyID, ticketID string) (*models.Ticket, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT company_id, ticket_id, created_at, query, status, report, record_count, avg_text_length, saved_at, updated_at
		FROM tickets WHERE company_id = $1 AND ticket_id = $2`,
		companyID, ticketID)
	return scanTicket(row)
}

// List returns summaries of a company's tickets, newest first.
func (s *Store) List(ctx context.Context, companyID string) ([]models.TicketSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT company_id, ticket_id, created_at, query, status, report, record_count, avg_text_length, saved_at, updated_at
		FROM tickets WHERE company_id = $1 ORDER BY created_at DESC`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TicketSummary{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, models.TicketSummary{
			TicketID:     t.TicketID,
			CreatedAt:    t.CreatedAt,
			Status:       models.OverallStatus(t.Report.Issues),
			StatusCounts: models.StatusCounts(t.Report.Issues),
			Query:        t.Query,
			Summary:      t.Report.ExecutiveSummary,
			IssueCount:   len(t.Report.Issues),
		})
	}
	return out, rows.Err()
}

// UpdateIssueStatus mutates exactly one issue's status and recomputes the
// ticket's overall status, atomically with respect to concurrent updates to
// the same ticket: the row is locked for the whole read-modify-write.
func (s *Store) UpdateIssueStatus(ctx context.Context, companyID, ticketID string, issueIndex int, newStatus models.Status) (models.Status, map[models.Status]int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var reportJSON []byte
	err = tx.QueryRow(ctx, `
		SELECT report FROM tickets
		WHERE company_id = $1 AND ticket_id = $2
		FOR UPDATE`,
		companyID, ticketID).Scan(&reportJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrNotFound
		}
		return "", nil, err
	}

	var report models.FinalReport
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return "", nil, fmt.Errorf("decode report: %w", err)
	}
	if issueIndex < 0 || issueIndex >= len(report.Issues) {
		return "", nil, ErrIndexOutOfRange
	}

	report.Issues[issueIndex].Status = newStatus
	overall := models.OverallStatus(report.Issues)
	counts := models.StatusCounts(report.Issues)

	updated, err := json.Marshal(report)
	if err != nil {
		return "", nil, fmt.Errorf("encode report: %w", err)
	}
	_, err = tx.Exec(ctx, `
		UPDATE tickets SET report = $1, status = $2, updated_at = $3
		WHERE company_id = $4 AND ticket_id = $5`,
		updated, string(overall), time.Now().Unix(), companyID, ticketID)
	if err != nil {
		return "", nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", nil, err
	}
	return overall, counts, nil
}

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var (
		t          models.Ticket
		status     string
		reportJSON []byte
	)
	err := row.Scan(&t.CompanyID, &t.TicketID, &t.CreatedAt, &t.Query, &status, &reportJSON,
		&t.Metadata.RecordCount, &t.Metadata.AverageTextLength, &t.Metadata.SavedAt, &t.Metadata.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(reportJSON, &t.Report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	t.Status = models.Status(status)
	return &t, nil
}
