package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"willforge/internal/retention"
	"willforge/internal/submission/models"
	"willforge/internal/submission/store"
	"willforge/pkg/domain"
	dErrors "willforge/pkg/domain-errors"
	"willforge/pkg/platform/audit"
	"willforge/pkg/platform/httputil"
	"willforge/pkg/requestcontext"
)

const maxPageSize = 100

// SubmissionReader is the review surface over submissions.
type SubmissionReader interface {
	Get(ctx context.Context, id domain.SubmissionID) (*models.Submission, error)
	List(ctx context.Context, filter store.ListFilter) ([]*models.Submission, error)
	Stats(ctx context.Context) (map[string]any, error)
}

// AuditReader exposes the audit trail for review.
type AuditReader interface {
	ListBySubmission(ctx context.Context, id domain.SubmissionID) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit, offset int) ([]audit.Event, error)
}

// RetentionRunner triggers retention sweeps on demand.
type RetentionRunner interface {
	Sweep(ctx context.Context, dryRun bool) (*retention.Report, error)
}

// Handler serves the admin review endpoints.
type Handler struct {
	sessions    *Service
	submissions SubmissionReader
	auditTrail  AuditReader
	sweeper     RetentionRunner
	logger      *slog.Logger
}

func NewHandler(sessions *Service, submissions SubmissionReader, auditTrail AuditReader, sweeper RetentionRunner, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:    sessions,
		submissions: submissions,
		auditTrail:  auditTrail,
		sweeper:     sweeper,
		logger:      logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := httputil.Decode(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.sessions.Login(ctx, req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.sessions.Logout(ctx, requestcontext.AdminUser(ctx))
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := store.ListFilter{
		Status: models.Status(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit", 20),
		Offset: queryInt(r, "offset", 0),
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	subs, err := h.submissions.List(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items := make([]map[string]any, len(subs))
	for i, sub := range subs {
		items[i] = sub.ToMap()
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"submissions": items,
		"count":       len(items),
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})
}

// HandleGetSubmission returns one submission together with its audit trail.
func (h *Handler) HandleGetSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseSubmissionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid submission id"))
		return
	}

	sub, err := h.submissions.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.auditTrail.ListBySubmission(ctx, id)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "load audit trail", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"submission":  sub.ToMap(),
		"audit_trail": events,
	})
}

func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := queryInt(r, "limit", 50)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := queryInt(r, "offset", 0)

	events, err := h.auditTrail.ListRecent(ctx, limit, offset)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "load audit trail", err))
		return
	}

	// Surface tampering rather than silently serving a modified trail.
	tampered := 0
	for i := range events {
		if !events[i].VerifyIntegrity() {
			tampered++
		}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"events":   events,
		"count":    len(events),
		"tampered": tampered,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.submissions.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"stats": stats,
	})
}

// HandleRetentionSweep runs a retention pass. With ?dry_run=true it only
// reports what would be removed.
func (h *Handler) HandleRetentionSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	report, err := h.sweeper.Sweep(ctx, dryRun)
	if err != nil {
		h.logger.ErrorContext(ctx, "retention sweep failed",
			"admin", requestcontext.AdminUser(ctx),
			"error", err)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "retention sweep failed", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"report": report,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
