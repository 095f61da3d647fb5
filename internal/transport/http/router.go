// Package httptransport assembles the HTTP surface: middleware chain, public
// will API, admin review API, health, and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"willforge/internal/admin"
	"willforge/internal/ratelimit"
	subhandler "willforge/internal/submission/handler"
	"willforge/pkg/platform/httputil"
	"willforge/pkg/platform/middleware/metadata"
	"willforge/pkg/platform/middleware/requestid"
	"willforge/pkg/platform/middleware/requesttime"
	"willforge/pkg/platform/middleware/security"
)

// Config carries the wired handlers and cross-cutting middleware.
type Config struct {
	Submissions *subhandler.Handler
	Admin       *admin.Handler
	Sessions    *admin.Service
	RateLimit   *ratelimit.Middleware
	Logger      *slog.Logger

	// Health reports readiness of downstream dependencies. Nil means the
	// process being up is the whole story.
	Health func(ctx context.Context) error
}

// NewRouter builds the full route table.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestid.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(security.Headers)

	r.Get("/healthz", healthHandler(cfg.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	limit := cfg.RateLimit.Limit

	r.With(limit(ratelimit.ScopeValidate)).
		Post("/validate", cfg.Submissions.HandleValidate)

	r.Route("/submissions", func(r chi.Router) {
		r.With(limit(ratelimit.ScopeGenerate)).
			Post("/", cfg.Submissions.HandleGenerate)
		r.Get("/{id}", cfg.Submissions.HandleGet)
		r.Get("/{id}/pdf", cfg.Submissions.HandleDownloadPDF)
		r.Get("/{id}/checklist", cfg.Submissions.HandleDownloadChecklist)
		r.Get("/{id}/explain", cfg.Submissions.HandleExplain)
		r.Get("/{id}/verify", cfg.Submissions.HandleVerify)
		r.With(limit(ratelimit.ScopeGenerate)).
			Post("/{id}/regenerate", cfg.Submissions.HandleRegenerate)
		r.With(limit(ratelimit.ScopeGenerate)).
			Post("/{id}/email", cfg.Submissions.HandleEmail)
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(limit(ratelimit.ScopeAdminLogin)).
			Post("/login", cfg.Admin.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Sessions.Require)
			r.Use(limit(ratelimit.ScopeAdminAction))

			r.Post("/logout", cfg.Admin.HandleLogout)
			r.Get("/submissions", cfg.Admin.HandleListSubmissions)
			r.Get("/submissions/{id}", cfg.Admin.HandleGetSubmission)
			r.Get("/audit", cfg.Admin.HandleListAudit)
			r.Get("/stats", cfg.Admin.HandleStats)
			r.Post("/retention/sweep", cfg.Admin.HandleRetentionSweep)
		})
	})

	return r
}

func healthHandler(health func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
					"status": "degraded",
					"error":  err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}
