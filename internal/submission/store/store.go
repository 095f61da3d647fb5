// Package store provides submission persistence backends.
package store

import (
	"errors"

	"willforge/internal/submission/models"
)

// ErrNotFound is returned when no submission matches the given ID.
var ErrNotFound = errors.New("submission not found")

// ListFilter narrows and pages admin listings. A zero Status matches all
// lifecycle states.
type ListFilter struct {
	Status models.Status
	Limit  int
	Offset int
}
