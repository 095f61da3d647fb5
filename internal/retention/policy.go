// Package retention removes expired document artifacts while preserving the
// records wills are legally anchored to. Audit events are never deleted.
package retention

import (
	"time"

	"willforge/internal/submission/models"
)

// Policy controls what the sweep removes and when.
type Policy struct {
	// RetentionDays is the age past which artifacts become removable.
	RetentionDays int
	// AutoDeleteEnabled gates destructive sweeps. Dry runs always work.
	AutoDeleteEnabled bool
	// DeletePDFs removes the generated will and checklist documents.
	DeletePDFs bool
	// DeletePayloads blanks the stored answers. Off by default since the
	// payload may be needed to prove what the will was generated from.
	DeletePayloads bool
}

// DefaultPolicy keeps records for seven years, the conventional period for
// estate documents, and never deletes on its own.
func DefaultPolicy() Policy {
	return Policy{
		RetentionDays:     2555,
		AutoDeleteEnabled: false,
		DeletePDFs:        true,
		DeletePayloads:    false,
	}
}

// Cutoff returns the creation time before which submissions fall out of
// retention.
func (p Policy) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.RetentionDays)
}

// Eligible reports whether a submission's artifacts may be removed. Only
// finished submissions qualify, and duplicated versions are kept so the
// lineage of a regenerated will stays intact.
func Eligible(sub *models.Submission, cutoff time.Time) bool {
	if !sub.CreatedAt.Before(cutoff) {
		return false
	}
	if sub.Status != models.StatusCompleted && sub.Status != models.StatusLocked {
		return false
	}
	return sub.ParentID.IsNil()
}
