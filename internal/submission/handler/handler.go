// Package handler wires the public will API endpoints to the submission
// service. Handlers stay thin; the pipeline, locking, and audit live in the
// service.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"willforge/internal/explain"
	"willforge/internal/submission/models"
	"willforge/internal/submission/service"
	"willforge/internal/validation"
	"willforge/internal/will"
	"willforge/pkg/domain"
	dErrors "willforge/pkg/domain-errors"
	"willforge/pkg/platform/httputil"
	"willforge/pkg/requestcontext"
)

// Service is the submission surface the handler needs.
type Service interface {
	Generate(ctx context.Context, payload map[string]any) (*models.Submission, error)
	Regenerate(ctx context.Context, id domain.SubmissionID) (*models.Submission, error)
	Get(ctx context.Context, id domain.SubmissionID) (*models.Submission, error)
	Download(ctx context.Context, id domain.SubmissionID) ([]byte, string, error)
	DownloadChecklist(ctx context.Context, id domain.SubmissionID) ([]byte, string, error)
	Verify(ctx context.Context, id domain.SubmissionID) (service.VerifyResult, error)
	Email(ctx context.Context, id domain.SubmissionID, recipient string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleValidate checks a payload without persisting anything. Invalid
// payloads still return 200; the verdict is in the body.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := httputil.Decode(w, r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result := validation.Validate(payload)
	httputil.WriteJSON(w, http.StatusOK, result.ToMap())
}

// HandleGenerate runs the full generation pipeline. The response format
// follows the Accept header: JSON metadata or the PDF itself.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload map[string]any
	if err := httputil.Decode(w, r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.service.Generate(ctx, payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "generation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err)
		httputil.WriteError(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		httputil.WriteJSON(w, http.StatusCreated, generateResponse(sub, "Will generated successfully"))
		return
	}
	writePDF(w, sub.PDF, "Last_Will_and_Testament.pdf")
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	sub, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sub.ToMap())
}

func (h *Handler) HandleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	pdf, _, err := h.service.Download(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writePDF(w, pdf, fmt.Sprintf("Last_Will_and_Testament_%s.pdf", id))
}

func (h *Handler) HandleDownloadChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	pdf, _, err := h.service.DownloadChecklist(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writePDF(w, pdf, fmt.Sprintf("Will_Execution_Checklist_%s.pdf", id))
}

// HandleExplain renders a plain-English projection of the stored payload:
// what the will does, why each clause is there, and how to execute it. The
// payload is re-validated so the response can flag problems, but validation
// failures do not block the explanation.
func (h *Handler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	id, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	sub, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	payload, err := sub.Payload()
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "read stored payload", err))
		return
	}

	result := validation.Validate(payload)
	willCtx := will.Build(payload)
	summary := explain.Summarize(willCtx)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"summary":    summary.ToMap(),
		"clauses":    explain.ExplainClauses(willCtx),
		"execution":  explain.SummarizeExecution(willCtx),
		"validation": result.ToMap(),
	})
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	id, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Verify(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	message := "PDF integrity verified"
	if !result.IsValid {
		message = "PDF has been modified"
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"submission_id": id.String(),
		"is_valid":      result.IsValid,
		"stored_hash":   result.StoredHash,
		"current_hash":  result.CurrentHash,
		"message":       message,
	})
}

func (h *Handler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	sub, err := h.service.Regenerate(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "regeneration failed",
			"request_id", requestcontext.RequestID(ctx),
			"submission_id", id.String(),
			"error", err)
		httputil.WriteError(w, err)
		return
	}

	resp := generateResponse(sub, "Will regenerated successfully")
	resp["parent_submission_id"] = sub.ParentID.String()
	resp["version_number"] = sub.Version
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) HandleEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	// An empty body is fine; the stored recipient is used then.
	var req emailRequest
	if r.ContentLength != 0 {
		if err := httputil.Decode(w, r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	if err := h.service.Email(ctx, id, req.Email); err != nil {
		h.logger.ErrorContext(ctx, "email dispatch failed",
			"request_id", requestcontext.RequestID(ctx),
			"submission_id", id.String(),
			"error", err)
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"message":   fmt.Sprintf("Will emailed successfully to %s", sub.EmailRecipient),
		"recipient": sub.EmailRecipient,
	})
}

func (h *Handler) submissionID(w http.ResponseWriter, r *http.Request) (domain.SubmissionID, bool) {
	id, err := domain.ParseSubmissionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid submission id"))
		return domain.SubmissionID{}, false
	}
	return id, true
}

func generateResponse(sub *models.Submission, message string) map[string]any {
	return map[string]any{
		"ok":            true,
		"submission_id": sub.ID.String(),
		"download_url":  fmt.Sprintf("/submissions/%s/pdf", sub.ID),
		"checklist_url": fmt.Sprintf("/submissions/%s/checklist", sub.ID),
		"pdf_hash":      sub.PDFSHA256,
		"message":       message,
	}
}

func writePDF(w http.ResponseWriter, pdf []byte, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
