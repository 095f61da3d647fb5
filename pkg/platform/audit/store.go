package audit

import (
	"context"
	"errors"

	"willforge/pkg/domain"
)

// ErrNotFound is returned when no audit events match a lookup.
var ErrNotFound = errors.New("audit event not found")

// Store persists audit events. Implementations must treat the trail as
// append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubmission(ctx context.Context, submissionID domain.SubmissionID) ([]Event, error)
	ListRecent(ctx context.Context, limit, offset int) ([]Event, error)
}
