package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"willforge/pkg/domain"
	txcontext "willforge/pkg/platform/tx"
)

// PostgresStore implements Store using the transactional outbox pattern.
// Append writes the event to the audit_events table for querying and to the
// outbox table in the same transaction; the relay worker publishes outbox
// rows to Kafka.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append writes the event and its outbox entry. Idempotent on event ID so a
// retried write cannot duplicate trail entries.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var detailsJSON []byte
	if len(event.Details) > 0 {
		b, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		detailsJSON = b
	}

	var submissionID *uuid.UUID
	if !event.SubmissionID.IsNil() {
		sid := uuid.UUID(event.SubmissionID)
		submissionID = &sid
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, actor_type, actor_id, action,
			submission_id, resource_type, resource_id, details,
			success, error_message, ip, user_agent, request_id, integrity_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(event.ID),
		string(event.Category()),
		event.Timestamp,
		string(event.ActorType),
		event.ActorID,
		string(event.Action),
		submissionID,
		event.ResourceType,
		event.ResourceID,
		detailsJSON,
		event.Success,
		event.ErrorMessage,
		event.IP,
		event.UserAgent,
		event.RequestID,
		event.IntegrityHash,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	return s.appendOutbox(ctx, event)
}

func (s *PostgresStore) appendOutbox(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	aggregateType := "audit"
	aggregateID := event.ID.String()
	if !event.SubmissionID.IsNil() {
		aggregateType = "submission"
		aggregateID = event.SubmissionID.String()
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		aggregateType,
		aggregateID,
		string(event.Action),
		payload,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubmission(ctx context.Context, submissionID domain.SubmissionID) ([]Event, error) {
	query := selectEvents + `
		WHERE submission_id = $1
		ORDER BY timestamp DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(submissionID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit, offset int) ([]Event, error) {
	query := selectEvents + `
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

const selectEvents = `
	SELECT id, timestamp, actor_type, actor_id, action,
		   submission_id, resource_type, resource_id, details,
		   success, error_message, ip, user_agent, request_id, integrity_hash
	FROM audit_events
`

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			event        Event
			eventID      uuid.UUID
			actorType    string
			action       string
			submissionID *uuid.UUID
			detailsJSON  []byte
		)
		err := rows.Scan(
			&eventID,
			&event.Timestamp,
			&actorType,
			&event.ActorID,
			&action,
			&submissionID,
			&event.ResourceType,
			&event.ResourceID,
			&detailsJSON,
			&event.Success,
			&event.ErrorMessage,
			&event.IP,
			&event.UserAgent,
			&event.RequestID,
			&event.IntegrityHash,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.ID = domain.AuditEventID(eventID)
		event.ActorType = ActorType(actorType)
		event.Action = Action(action)
		if submissionID != nil {
			event.SubmissionID = domain.SubmissionID(*submissionID)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &event.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// OutboxRow is one unpublished outbox entry awaiting relay to Kafka.
type OutboxRow struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
}

// FetchUnpublished returns up to limit outbox rows that have not yet been
// relayed, oldest first so ordering on the topic follows write order.
func (s *PostgresStore) FetchUnpublished(ctx context.Context, limit int) ([]OutboxRow, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.AggregateID, &row.EventType, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return out, nil
}

// MarkPublished records that the given outbox rows reached the broker.
func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE outbox
		SET published_at = $1
		WHERE id = ANY($2)
	`
	if _, err := s.db.ExecContext(ctx, query, time.Now(), pq.Array(ids)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
