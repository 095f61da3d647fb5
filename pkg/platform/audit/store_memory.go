package audit

import (
	"context"
	"sync"

	"willforge/pkg/domain"
)

// MemoryStore keeps audit events in memory. Used in tests and single-process
// deployments where durability is not required.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListBySubmission(_ context.Context, submissionID domain.SubmissionID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].SubmissionID == submissionID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// ListRecent returns events newest first.
func (s *MemoryStore) ListRecent(_ context.Context, limit, offset int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	skipped := 0
	for i := len(s.events) - 1; i >= 0; i-- {
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, s.events[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Len reports the number of stored events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
