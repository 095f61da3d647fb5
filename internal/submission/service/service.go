// Package service orchestrates the submission lifecycle: validation,
// deterministic document generation, artifact download, regeneration, and
// email delivery.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"willforge/internal/pdf"
	"willforge/internal/plan"
	"willforge/internal/submission/metrics"
	"willforge/internal/submission/models"
	"willforge/internal/submission/store"
	"willforge/internal/validation"
	"willforge/internal/will"
	"willforge/pkg/domain"
	dErrors "willforge/pkg/domain-errors"
	"willforge/pkg/platform/audit"
	"willforge/pkg/requestcontext"
)

type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	Update(ctx context.Context, sub *models.Submission) error
	FindByID(ctx context.Context, id domain.SubmissionID) (*models.Submission, error)
	List(ctx context.Context, filter store.ListFilter) ([]*models.Submission, error)
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Mailer delivers the generated documents to a recipient.
type Mailer interface {
	SendWillPackage(ctx context.Context, recipient string, sub *models.Submission) error
}

// Service orchestrates submission creation and document generation.
type Service struct {
	subs           SubmissionStore
	compiler       *pdf.Compiler
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	mailer         Mailer
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithMailer(mailer Mailer) Option {
	return func(s *Service) {
		s.mailer = mailer
	}
}

func WithCompiler(compiler *pdf.Compiler) Option {
	return func(s *Service) {
		s.compiler = compiler
	}
}

// New constructs a Service.
func New(subs SubmissionStore, opts ...Option) *Service {
	s := &Service{
		subs:     subs,
		compiler: pdf.NewCompiler(),
		logger:   slog.Default(),
		tracer:   otel.Tracer("willforge/internal/submission"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate creates a submission from the payload and runs the full pipeline:
// validate, build context, render plan, compile will and checklist, lock.
// The submission is persisted in every outcome, including validation and
// compile failures, so the trail of attempts survives.
func (s *Service) Generate(ctx context.Context, payload map[string]any) (*models.Submission, error) {
	now := requestcontext.Now(ctx)
	sub, err := models.New(payload, requestcontext.ClientIP(ctx), requestcontext.UserAgent(ctx), now)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInvalidInput, "payload is not serializable", err)
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "create submission", err)
	}
	s.emit(ctx, audit.Event{
		Action:       audit.ActionSubmissionCreated,
		SubmissionID: sub.ID,
		ResourceType: "submission",
		ResourceID:   sub.ID.String(),
		Details:      map[string]any{"version": sub.Version},
		Success:      true,
	})

	if err := s.run(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Regenerate produces a new version of a locked submission. The duplicate
// carries the same payload but its own generation timestamp, so the new
// documents are reproducible against the new instant.
func (s *Service) Regenerate(ctx context.Context, id domain.SubmissionID) (*models.Submission, error) {
	parent, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !parent.CanRegenerate() {
		return nil, dErrors.New(dErrors.CodeConflict, "submission cannot be regenerated")
	}

	now := requestcontext.Now(ctx)
	dup, err := parent.Duplicate(now)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeConflict, "submission is not locked", err)
	}
	if err := s.subs.Create(ctx, dup); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "create submission version", err)
	}
	s.emit(ctx, audit.Event{
		Action:       audit.ActionSubmissionDuplicated,
		SubmissionID: parent.ID,
		ResourceType: "submission",
		ResourceID:   parent.ID.String(),
		Details:      map[string]any{"new_submission_id": dup.ID.String(), "version": dup.Version},
		Success:      true,
	})

	if err := s.run(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// run executes the generation pipeline against the submission's stored
// canonical payload.
func (s *Service) run(ctx context.Context, sub *models.Submission) error {
	ctx, span := s.tracer.Start(ctx, "submission.generate",
		trace.WithAttributes(
			attribute.String("submission.id", sub.ID.String()),
			attribute.Int("submission.version", sub.Version),
		))
	defer span.End()
	start := time.Now()

	payload, err := sub.Payload()
	if err != nil {
		return s.fail(ctx, span, sub, "stored payload is unreadable", err)
	}

	sub.Status = models.StatusValidating
	if err := s.subs.Update(ctx, sub); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "update submission", err)
	}

	result := validation.Validate(payload)
	if !result.Valid() {
		sub.Status = models.StatusError
		sub.ErrorMessage = "payload validation failed"
		if err := s.subs.Update(ctx, sub); err != nil {
			s.logger.ErrorContext(ctx, "record validation failure", "submission_id", sub.ID.String(), "error", err)
		}
		s.emit(ctx, audit.Event{
			Action:       audit.ActionValidationFailed,
			SubmissionID: sub.ID,
			ResourceType: "submission",
			ResourceID:   sub.ID.String(),
			Details:      map[string]any{"error_count": len(result.Errors)},
			Success:      false,
			ErrorMessage: "payload validation failed",
		})
		s.countGeneration("validation_failed")
		vErr := result.Err()
		span.RecordError(vErr)
		return vErr
	}

	sub.Status = models.StatusGenerating
	if err := s.subs.Update(ctx, sub); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "update submission", err)
	}

	willCtx := will.Build(payload)
	items := plan.Render(willCtx)

	planJSON, err := json.Marshal(plan.ToMaps(items))
	if err != nil {
		return s.fail(ctx, span, sub, "serialize render plan", err)
	}

	willPDF, willHash, err := s.compiler.Compile(items, sub.GenerationTimestamp)
	if err != nil {
		return s.fail(ctx, span, sub, "compile will document", err)
	}
	checklistPDF, checklistHash, err := s.compiler.Checklist(willCtx, willHash, sub.GenerationTimestamp)
	if err != nil {
		return s.fail(ctx, span, sub, "compile execution checklist", err)
	}

	now := requestcontext.Now(ctx)
	sub.PlanJSON = planJSON
	sub.PDF = willPDF
	sub.PDFSHA256 = willHash
	sub.Checklist = checklistPDF
	sub.ChecklistSHA256 = checklistHash
	sub.ErrorMessage = ""
	sub.Status = models.StatusCompleted
	sub.Lock(models.LockReasonGenerationComplete, now)
	if err := s.subs.Update(ctx, sub); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "persist generated documents", err)
	}

	s.emit(ctx, audit.Event{
		Action:       audit.ActionWillGenerated,
		SubmissionID: sub.ID,
		ResourceType: "pdf",
		ResourceID:   willHash,
		Details: map[string]any{
			"pdf_sha256":           willHash,
			"checklist_pdf_sha256": checklistHash,
			"version":              sub.Version,
			"clause_count":         len(items),
		},
		Success: true,
	})
	s.countGeneration("completed")
	if s.metrics != nil {
		s.metrics.ObserveCompile(start)
	}
	s.logger.InfoContext(ctx, "submission generated",
		"submission_id", sub.ID.String(),
		"version", sub.Version,
		"pdf_sha256", willHash)
	return nil
}

// fail records a pipeline failure on the submission and returns a coded error.
func (s *Service) fail(ctx context.Context, span trace.Span, sub *models.Submission, message string, cause error) error {
	sub.Status = models.StatusError
	sub.ErrorMessage = message
	if err := s.subs.Update(ctx, sub); err != nil {
		s.logger.ErrorContext(ctx, "record generation failure", "submission_id", sub.ID.String(), "error", err)
	}
	s.emit(ctx, audit.Event{
		Action:       audit.ActionGenerationFailed,
		SubmissionID: sub.ID,
		ResourceType: "submission",
		ResourceID:   sub.ID.String(),
		Success:      false,
		ErrorMessage: message,
	})
	s.countGeneration("error")
	span.RecordError(cause)
	s.logger.ErrorContext(ctx, "generation failed",
		"submission_id", sub.ID.String(),
		"stage", message,
		"error", cause)
	return dErrors.Wrap(dErrors.CodeRenderFailed, message, cause)
}

// Get returns a submission by ID.
func (s *Service) Get(ctx context.Context, id domain.SubmissionID) (*models.Submission, error) {
	return s.find(ctx, id)
}

// Download returns the compiled will after verifying its stored hash still
// matches the bytes. A mismatch means the stored artifact was altered and is
// never served.
func (s *Service) Download(ctx context.Context, id domain.SubmissionID) ([]byte, string, error) {
	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if len(sub.PDF) == 0 {
		return nil, "", dErrors.New(dErrors.CodeNotFound, "no will document has been generated")
	}
	if err := s.verifyArtifact(ctx, sub, sub.PDF, sub.PDFSHA256, "pdf"); err != nil {
		return nil, "", err
	}
	s.emit(ctx, audit.Event{
		Action:       audit.ActionPDFDownloaded,
		SubmissionID: sub.ID,
		ResourceType: "pdf",
		ResourceID:   sub.PDFSHA256,
		Success:      true,
	})
	if s.metrics != nil {
		s.metrics.IncrementDownload("will")
	}
	return sub.PDF, sub.PDFSHA256, nil
}

// DownloadChecklist returns the execution checklist after hash verification.
func (s *Service) DownloadChecklist(ctx context.Context, id domain.SubmissionID) ([]byte, string, error) {
	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if len(sub.Checklist) == 0 {
		return nil, "", dErrors.New(dErrors.CodeNotFound, "no checklist has been generated")
	}
	if err := s.verifyArtifact(ctx, sub, sub.Checklist, sub.ChecklistSHA256, "checklist"); err != nil {
		return nil, "", err
	}
	s.emit(ctx, audit.Event{
		Action:       audit.ActionChecklistDownloaded,
		SubmissionID: sub.ID,
		ResourceType: "pdf",
		ResourceID:   sub.ChecklistSHA256,
		Success:      true,
	})
	if s.metrics != nil {
		s.metrics.IncrementDownload("checklist")
	}
	return sub.Checklist, sub.ChecklistSHA256, nil
}

func (s *Service) verifyArtifact(ctx context.Context, sub *models.Submission, artifact []byte, storedHash, kind string) error {
	current := hashHex(artifact)
	if current == storedHash {
		return nil
	}
	s.emit(ctx, audit.Event{
		Action:       audit.ActionIntegrityCheckFailed,
		SubmissionID: sub.ID,
		ResourceType: kind,
		ResourceID:   storedHash,
		Details:      map[string]any{"current_hash": current},
		Success:      false,
		ErrorMessage: "stored document hash mismatch",
	})
	s.logger.ErrorContext(ctx, "document integrity check failed",
		"submission_id", sub.ID.String(),
		"kind", kind,
		"stored_hash", storedHash,
		"current_hash", current)
	return dErrors.New(dErrors.CodeIntegrity, "stored document failed integrity verification")
}

// VerifyResult reports whether a stored will document still matches its
// recorded hash.
type VerifyResult struct {
	IsValid     bool   `json:"is_valid"`
	StoredHash  string `json:"stored_hash"`
	CurrentHash string `json:"current_hash"`
}

// Verify recomputes the stored will's hash and compares it to the recorded one.
func (s *Service) Verify(ctx context.Context, id domain.SubmissionID) (VerifyResult, error) {
	sub, err := s.find(ctx, id)
	if err != nil {
		return VerifyResult{}, err
	}
	if len(sub.PDF) == 0 {
		return VerifyResult{}, dErrors.New(dErrors.CodeNotFound, "no will document has been generated")
	}
	current := hashHex(sub.PDF)
	return VerifyResult{
		IsValid:     current == sub.PDFSHA256,
		StoredHash:  sub.PDFSHA256,
		CurrentHash: current,
	}, nil
}

// Email delivers the generated documents. The recipient argument overrides
// any previously stored recipient; with neither present the call fails.
// Delivery outcome is recorded on the submission either way.
func (s *Service) Email(ctx context.Context, id domain.SubmissionID, recipient string) error {
	sub, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !sub.HasDocuments() {
		return dErrors.New(dErrors.CodeConflict, "submission has no generated documents")
	}
	if recipient == "" {
		recipient = sub.EmailRecipient
	}
	if recipient == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "recipient email address required")
	}
	if s.mailer == nil {
		return dErrors.New(dErrors.CodeEmailDelivery, "email delivery is not configured")
	}

	now := requestcontext.Now(ctx)
	sub.EmailRecipient = recipient
	if err := s.mailer.SendWillPackage(ctx, recipient, sub); err != nil {
		sub.EmailError = err.Error()
		if uErr := s.subs.Update(ctx, sub); uErr != nil {
			s.logger.ErrorContext(ctx, "record email failure", "submission_id", sub.ID.String(), "error", uErr)
		}
		s.emit(ctx, audit.Event{
			Action:       audit.ActionEmailFailed,
			SubmissionID: sub.ID,
			ResourceType: "email",
			ResourceID:   recipient,
			Success:      false,
			ErrorMessage: err.Error(),
		})
		s.countEmail("failed")
		return dErrors.Wrap(dErrors.CodeEmailDelivery, "email delivery failed", err)
	}

	sub.EmailSent = true
	sub.EmailSentAt = &now
	sub.EmailError = ""

	// The store update and the compliance audit record are independent
	// writes; run them concurrently and require both.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.subs.Update(gctx, sub)
	})
	if s.auditPublisher != nil {
		event := s.enrich(ctx, audit.Event{
			Action:       audit.ActionEmailSent,
			SubmissionID: sub.ID,
			ResourceType: "email",
			ResourceID:   recipient,
			Success:      true,
		})
		g.Go(func() error {
			return s.auditPublisher.Emit(gctx, event)
		})
	}
	if err := g.Wait(); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "record email delivery", err)
	}
	s.countEmail("sent")
	return nil
}

// List returns submissions for admin review, newest first.
func (s *Service) List(ctx context.Context, filter store.ListFilter) ([]*models.Submission, error) {
	if filter.Status != "" && !models.KnownStatus(filter.Status) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown status filter")
	}
	subs, err := s.subs.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list submissions", err)
	}
	return subs, nil
}

// Stats returns submission counts by lifecycle state.
func (s *Service) Stats(ctx context.Context) (map[string]any, error) {
	counts, err := s.subs.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "count submissions", err)
	}
	total := 0
	byStatus := make(map[string]int, len(counts))
	for status, n := range counts {
		byStatus[string(status)] = n
		total += n
	}
	return map[string]any{
		"total":     total,
		"by_status": byStatus,
	}, nil
}

func (s *Service) find(ctx context.Context, id domain.SubmissionID) (*models.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "find submission", err)
	}
	return sub, nil
}

// emit sends an audit event, filling actor and request metadata from context.
// Audit failures are logged, never surfaced to the caller.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event = s.enrich(ctx, event)
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", string(event.Action), "error", err)
	}
}

func (s *Service) enrich(ctx context.Context, event audit.Event) audit.Event {
	if event.IP == "" {
		event.IP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorType == "" {
		event.ActorType = audit.ActorUser
		event.ActorID = event.IP
	}
	return event
}

func (s *Service) countGeneration(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementGeneration(outcome)
	}
}

func (s *Service) countEmail(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementEmail(outcome)
	}
}

func hashHex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
