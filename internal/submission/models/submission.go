// Package models defines the submission aggregate: one will-generation
// request, its compiled artifacts, and its lifecycle state.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"willforge/pkg/domain"
)

// Status is the submission lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusValidating Status = "validating"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"

	// StatusLocked is the final state. Locked submissions are immutable;
	// regeneration happens through a duplicate, never in place.
	StatusLocked Status = "locked"
)

// KnownStatus reports whether s is one of the lifecycle states. Used to
// reject bad status filters on admin queries.
func KnownStatus(s Status) bool {
	switch s {
	case StatusPending, StatusValidating, StatusGenerating, StatusCompleted, StatusError, StatusLocked:
		return true
	}
	return false
}

// LockReasonGenerationComplete is the standard lock reason applied after a
// successful generation run.
const LockReasonGenerationComplete = "generation_complete"

// Submission is one will-generation request. GenerationTimestamp is fixed at
// creation and used for all rendering, so regenerating the same submission
// yields byte-identical documents.
type Submission struct {
	ID domain.SubmissionID

	CreatedAt           time.Time
	GenerationTimestamp time.Time
	IPAddress           string
	UserAgent           string

	// PayloadJSON is the canonical serialization (sorted keys, two-space
	// indent) of the submitted payload.
	PayloadJSON []byte

	// PlanJSON is the serialized render plan of the compiled will.
	PlanJSON []byte

	PDF             []byte
	PDFSHA256       string
	Checklist       []byte
	ChecklistSHA256 string

	Status       Status
	ErrorMessage string

	IsLocked     bool
	LockedAt     *time.Time
	LockedReason string

	// ParentID is the submission this one was duplicated from; zero for
	// first versions.
	ParentID domain.SubmissionID
	Version  int

	EmailSent      bool
	EmailSentAt    *time.Time
	EmailRecipient string
	EmailError     string
}

// New creates a pending version-1 submission with its generation timestamp
// pinned to now.
func New(payload map[string]any, clientIP, userAgent string, now time.Time) (*Submission, error) {
	canonical, err := CanonicalPayload(payload)
	if err != nil {
		return nil, err
	}
	return &Submission{
		ID:                  domain.NewSubmissionID(),
		CreatedAt:           now,
		GenerationTimestamp: now,
		IPAddress:           clientIP,
		UserAgent:           userAgent,
		PayloadJSON:         canonical,
		Status:              StatusPending,
		Version:             1,
	}, nil
}

// CanonicalPayload serializes a payload with stable key ordering so equal
// payloads always produce equal bytes.
func CanonicalPayload(payload map[string]any) ([]byte, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize payload: %w", err)
	}
	return b, nil
}

// Payload deserializes the stored payload.
func (s *Submission) Payload() (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(s.PayloadJSON, &payload); err != nil {
		return nil, fmt.Errorf("deserialize payload: %w", err)
	}
	return payload, nil
}

// Lock makes the submission immutable.
func (s *Submission) Lock(reason string, now time.Time) {
	s.IsLocked = true
	s.LockedAt = &now
	s.LockedReason = reason
	s.Status = StatusLocked
}

// HasDocuments reports whether both compiled artifacts are present.
func (s *Submission) HasDocuments() bool {
	return len(s.PDF) > 0 && len(s.Checklist) > 0
}

// CanRegenerate reports whether a new version can be produced from this
// submission. Only finished submissions holding a compiled will qualify.
func (s *Submission) CanRegenerate() bool {
	return (s.Status == StatusCompleted || s.Status == StatusLocked) && len(s.PDF) > 0
}

// Duplicate creates a fresh pending version of a locked submission carrying
// the same payload and client metadata. The duplicate gets its own generation
// timestamp, so its documents are reproducible against the new instant.
func (s *Submission) Duplicate(now time.Time) (*Submission, error) {
	if !s.IsLocked {
		return nil, fmt.Errorf("cannot duplicate unlocked submission %s", s.ID)
	}
	return &Submission{
		ID:                  domain.NewSubmissionID(),
		CreatedAt:           now,
		GenerationTimestamp: now,
		IPAddress:           s.IPAddress,
		UserAgent:           s.UserAgent,
		PayloadJSON:         append([]byte(nil), s.PayloadJSON...),
		Status:              StatusPending,
		ParentID:            s.ID,
		Version:             s.Version + 1,
	}, nil
}

// ToMap shapes the submission for API responses. Artifact bytes are never
// included; only their hashes and presence flags.
func (s *Submission) ToMap() map[string]any {
	m := map[string]any{
		"id":                   s.ID.String(),
		"version_number":       s.Version,
		"parent_submission_id": nil,
		"generation_timestamp": s.GenerationTimestamp.UTC().Format(time.RFC3339),
		"created_at":           s.CreatedAt.UTC().Format(time.RFC3339),
		"ip_address":           s.IPAddress,
		"status":               string(s.Status),
		"is_locked":            s.IsLocked,
		"locked_at":            nil,
		"pdf_sha256":           s.PDFSHA256,
		"checklist_pdf_sha256": s.ChecklistSHA256,
		"has_pdf":              len(s.PDF) > 0,
		"has_checklist":        len(s.Checklist) > 0,
		"email_sent":           s.EmailSent,
		"email_sent_at":        nil,
		"error_message":        s.ErrorMessage,
	}
	if !s.ParentID.IsNil() {
		m["parent_submission_id"] = s.ParentID.String()
	}
	if s.LockedAt != nil {
		m["locked_at"] = s.LockedAt.UTC().Format(time.RFC3339)
	}
	if s.EmailSentAt != nil {
		m["email_sent_at"] = s.EmailSentAt.UTC().Format(time.RFC3339)
	}
	return m
}
