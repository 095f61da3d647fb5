package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"willforge/internal/submission/models"
	"willforge/pkg/domain"
)

// Memory is an in-memory submission store for tests and local development.
type Memory struct {
	mu   sync.RWMutex
	subs map[domain.SubmissionID]*models.Submission
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[domain.SubmissionID]*models.Submission)}
}

func (m *Memory) Create(_ context.Context, sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ID] = clone(sub)
	return nil
}

func (m *Memory) Update(_ context.Context, sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[sub.ID]; !ok {
		return ErrNotFound
	}
	m.subs[sub.ID] = clone(sub)
	return nil
}

func (m *Memory) FindByID(_ context.Context, id domain.SubmissionID) (*models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(sub), nil
}

// List returns submissions newest first.
func (m *Memory) List(_ context.Context, filter ListFilter) ([]*models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*models.Submission
	for _, sub := range m.subs {
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		all = append(all, clone(sub))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			return nil, nil
		}
		all = all[filter.Offset:]
	}
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (m *Memory) CountByStatus(_ context.Context) (map[models.Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[models.Status]int)
	for _, sub := range m.subs {
		counts[sub.Status]++
	}
	return counts, nil
}

// ListCreatedBefore returns up to limit submissions created strictly before
// the cutoff, oldest first. Used by the retention sweep.
func (m *Memory) ListCreatedBefore(_ context.Context, cutoff time.Time, limit int) ([]*models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Submission
	for _, sub := range m.subs {
		if sub.CreatedAt.Before(cutoff) {
			out = append(out, clone(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func clone(sub *models.Submission) *models.Submission {
	c := *sub
	c.PayloadJSON = append([]byte(nil), sub.PayloadJSON...)
	c.PlanJSON = append([]byte(nil), sub.PlanJSON...)
	c.PDF = append([]byte(nil), sub.PDF...)
	c.Checklist = append([]byte(nil), sub.Checklist...)
	if sub.LockedAt != nil {
		t := *sub.LockedAt
		c.LockedAt = &t
	}
	if sub.EmailSentAt != nil {
		t := *sub.EmailSentAt
		c.EmailSentAt = &t
	}
	return &c
}
