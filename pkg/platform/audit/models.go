package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"willforge/pkg/domain"
)

// Category classifies audit events by their primary purpose. This enables
// different retention policies, storage backends, and routing.
type Category string

const (
	// CategoryCompliance covers events with legal significance. These
	// require tamper-evident storage and long retention.
	CategoryCompliance Category = "compliance"

	// CategorySecurity covers events relevant to security monitoring,
	// such as failed logins and rate limit trips.
	CategorySecurity Category = "security"

	// CategoryOperations covers events useful for debugging and
	// operational visibility. These can be sampled.
	CategoryOperations Category = "operations"
)

// ActorType identifies who performed an audited action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorAdmin  ActorType = "admin"
	ActorSystem ActorType = "system"
)

// Action names an audited operation.
type Action string

const (
	ActionSubmissionCreated    Action = "submission_created"
	ActionSubmissionLocked     Action = "submission_locked"
	ActionSubmissionDuplicated Action = "submission_duplicated"
	ActionValidationFailed     Action = "validation_failed"
	ActionWillGenerated        Action = "will_generated"
	ActionChecklistGenerated   Action = "checklist_generated"
	ActionGenerationFailed     Action = "generation_failed"
	ActionPDFDownloaded        Action = "pdf_downloaded"
	ActionChecklistDownloaded  Action = "checklist_downloaded"
	ActionIntegrityCheckFailed Action = "integrity_check_failed"
	ActionEmailSent            Action = "email_sent"
	ActionEmailFailed          Action = "email_failed"
	ActionAdminLogin           Action = "admin_login"
	ActionAdminLoginFailed     Action = "admin_login_failed"
	ActionAdminLogout          Action = "admin_logout"
	ActionRateLimitExceeded    Action = "rate_limit_exceeded"
	ActionRetentionDeletion    Action = "data_retention_deletion"
	ActionRetentionSweep       Action = "retention_sweep_completed"
)

// actionCategories maps each action to its category. Actions absent from the
// map are operational.
var actionCategories = map[Action]Category{
	ActionSubmissionCreated:    CategoryCompliance,
	ActionSubmissionLocked:     CategoryCompliance,
	ActionSubmissionDuplicated: CategoryCompliance,
	ActionWillGenerated:        CategoryCompliance,
	ActionChecklistGenerated:   CategoryCompliance,
	ActionEmailSent:            CategoryCompliance,

	ActionAdminLoginFailed:     CategorySecurity,
	ActionRateLimitExceeded:    CategorySecurity,
	ActionIntegrityCheckFailed: CategorySecurity,
}

// Category returns the category an action belongs to.
func (a Action) Category() Category {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is one entry in the append-only audit trail. Records are never
// modified or deleted once written.
type Event struct {
	ID           domain.AuditEventID `json:"id"`
	Timestamp    time.Time           `json:"timestamp"`
	ActorType    ActorType           `json:"actor_type"`
	ActorID      string              `json:"actor_id,omitempty"`
	Action       Action              `json:"action"`
	SubmissionID domain.SubmissionID `json:"submission_id,omitempty"`
	ResourceType string              `json:"resource_type"`
	ResourceID   string              `json:"resource_id,omitempty"`
	Details      map[string]any      `json:"details,omitempty"`
	Success      bool                `json:"success"`
	ErrorMessage string              `json:"error_message,omitempty"`
	IP           string              `json:"ip,omitempty"`
	UserAgent    string              `json:"user_agent,omitempty"`
	RequestID    string              `json:"request_id,omitempty"`

	// IntegrityHash is computed over the canonical fields when the event
	// is sealed. Any later change to those fields is detectable.
	IntegrityHash string `json:"integrity_hash"`
}

// Category returns the category of the event's action.
func (e Event) Category() Category { return e.Action.Category() }

// ComputeIntegrityHash hashes the canonical fields of the event. Details are
// serialized as JSON, whose map key ordering is stable, so the hash is
// deterministic for a given event.
func (e Event) ComputeIntegrityHash() string {
	var details string
	if len(e.Details) > 0 {
		if b, err := json.Marshal(e.Details); err == nil {
			details = string(b)
		}
	}
	content := e.Timestamp.UTC().Format(time.RFC3339Nano) +
		string(e.ActorType) + e.ActorID +
		string(e.Action) +
		e.ResourceType + e.ResourceID +
		details
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Seal stamps the integrity hash. Must be called after all other fields are
// final and before the event is persisted.
func (e *Event) Seal() {
	e.IntegrityHash = e.ComputeIntegrityHash()
}

// VerifyIntegrity reports whether the stored hash still matches the event's
// content.
func (e Event) VerifyIntegrity() bool {
	return e.IntegrityHash == e.ComputeIntegrityHash()
}
