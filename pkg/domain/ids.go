// Package domain provides typed identifiers shared across modules.
//
// IDs are distinct types over uuid.UUID so the compiler rejects accidental
// cross-assignment (a SubmissionID can never be passed where an AuditEventID
// is expected). Parsing enforces the invariant that IDs are valid, non-nil
// UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "willforge/pkg/domain-errors"
)

// SubmissionID identifies one will-generation submission.
type SubmissionID uuid.UUID

// AuditEventID identifies one audit trail entry.
type AuditEventID uuid.UUID

// NewSubmissionID returns a fresh random submission ID.
func NewSubmissionID() SubmissionID {
	return SubmissionID(uuid.New())
}

// ParseSubmissionID parses and validates a submission ID from its string form.
func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SubmissionID{}, err
	}
	return SubmissionID(u), nil
}

func (id SubmissionID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id SubmissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the ID in canonical UUID form for JSON and text codecs.
func (id SubmissionID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

// UnmarshalText parses the ID, enforcing the same rules as ParseSubmissionID.
func (id *SubmissionID) UnmarshalText(text []byte) error {
	parsed, err := ParseSubmissionID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewAuditEventID returns a fresh random audit event ID.
func NewAuditEventID() AuditEventID {
	return AuditEventID(uuid.New())
}

func (id AuditEventID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id AuditEventID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the ID in canonical UUID form for JSON and text codecs.
func (id AuditEventID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

// UnmarshalText parses the ID from its string form.
func (id *AuditEventID) UnmarshalText(text []byte) error {
	u, err := parseUUID(string(text))
	if err != nil {
		return err
	}
	*id = AuditEventID(u)
	return nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
