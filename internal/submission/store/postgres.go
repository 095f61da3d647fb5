package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"willforge/internal/submission/models"
	"willforge/pkg/domain"
)

// Postgres is a PostgreSQL-backed submission store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const submissionColumns = `
	id, created_at, generation_timestamp, ip_address, user_agent,
	payload_json, plan_json, pdf, pdf_sha256, checklist, checklist_sha256,
	status, error_message, is_locked, locked_at, locked_reason,
	parent_id, version, email_sent, email_sent_at, email_recipient, email_error
`

func (p *Postgres) Create(ctx context.Context, sub *models.Submission) error {
	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	_, err := p.db.ExecContext(ctx, query, insertArgs(sub)...)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, sub *models.Submission) error {
	query := `
		UPDATE submissions SET
			payload_json = $2, plan_json = $3,
			pdf = $4, pdf_sha256 = $5, checklist = $6, checklist_sha256 = $7,
			status = $8, error_message = $9,
			is_locked = $10, locked_at = $11, locked_reason = $12,
			email_sent = $13, email_sent_at = $14, email_recipient = $15, email_error = $16
		WHERE id = $1
	`
	res, err := p.db.ExecContext(ctx, query,
		uuid.UUID(sub.ID),
		sub.PayloadJSON,
		sub.PlanJSON,
		sub.PDF,
		sub.PDFSHA256,
		sub.Checklist,
		sub.ChecklistSHA256,
		string(sub.Status),
		sub.ErrorMessage,
		sub.IsLocked,
		sub.LockedAt,
		sub.LockedReason,
		sub.EmailSent,
		sub.EmailSentAt,
		sub.EmailRecipient,
		sub.EmailError,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) FindByID(ctx context.Context, id domain.SubmissionID) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	sub, err := scanSubmission(p.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return sub, nil
}

func (p *Postgres) List(ctx context.Context, filter ListFilter) ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	return scanSubmissions(rows)
}

func (p *Postgres) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan submission count: %w", err)
		}
		counts[models.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission counts: %w", err)
	}
	return counts, nil
}

// ListCreatedBefore returns up to limit submissions created strictly before
// the cutoff, oldest first. Used by the retention sweep.
func (p *Postgres) ListCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM submissions
		WHERE created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`
	rows, err := p.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired submissions: %w", err)
	}
	defer rows.Close()

	return scanSubmissions(rows)
}

func insertArgs(sub *models.Submission) []any {
	var parentID *uuid.UUID
	if !sub.ParentID.IsNil() {
		pid := uuid.UUID(sub.ParentID)
		parentID = &pid
	}
	return []any{
		uuid.UUID(sub.ID),
		sub.CreatedAt,
		sub.GenerationTimestamp,
		sub.IPAddress,
		sub.UserAgent,
		sub.PayloadJSON,
		sub.PlanJSON,
		sub.PDF,
		sub.PDFSHA256,
		sub.Checklist,
		sub.ChecklistSHA256,
		string(sub.Status),
		sub.ErrorMessage,
		sub.IsLocked,
		sub.LockedAt,
		sub.LockedReason,
		parentID,
		sub.Version,
		sub.EmailSent,
		sub.EmailSentAt,
		sub.EmailRecipient,
		sub.EmailError,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub      models.Submission
		id       uuid.UUID
		status   string
		parentID *uuid.UUID
	)
	err := row.Scan(
		&id,
		&sub.CreatedAt,
		&sub.GenerationTimestamp,
		&sub.IPAddress,
		&sub.UserAgent,
		&sub.PayloadJSON,
		&sub.PlanJSON,
		&sub.PDF,
		&sub.PDFSHA256,
		&sub.Checklist,
		&sub.ChecklistSHA256,
		&status,
		&sub.ErrorMessage,
		&sub.IsLocked,
		&sub.LockedAt,
		&sub.LockedReason,
		&parentID,
		&sub.Version,
		&sub.EmailSent,
		&sub.EmailSentAt,
		&sub.EmailRecipient,
		&sub.EmailError,
	)
	if err != nil {
		return nil, err
	}
	sub.ID = domain.SubmissionID(id)
	sub.Status = models.Status(status)
	if parentID != nil {
		sub.ParentID = domain.SubmissionID(*parentID)
	}
	return &sub, nil
}

func scanSubmissions(rows *sql.Rows) ([]*models.Submission, error) {
	var subs []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}
