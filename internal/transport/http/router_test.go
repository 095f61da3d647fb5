package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"willforge/internal/admin"
	"willforge/internal/ratelimit"
	"willforge/internal/retention"
	subhandler "willforge/internal/submission/handler"
	"willforge/internal/submission/service"
	"willforge/internal/submission/store"
	httptransport "willforge/internal/transport/http"
	"willforge/pkg/platform/audit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAddress(street string) map[string]any {
	return map[string]any{
		"street":   street,
		"suburb":   "Brisbane",
		"state":    "QLD",
		"postcode": "4000",
	}
}

func validPayload() map[string]any {
	return map[string]any{
		"eligibility": map[string]any{
			"confirm_age_over_18":      true,
			"confirm_qld":              true,
			"confirm_not_legal_advice": true,
		},
		"will_maker": map[string]any{
			"full_name":           "John Doe",
			"dob":                 "1980-01-01",
			"occupation":          "Engineer",
			"address":             testAddress("123 Test St"),
			"email":               "john@example.com",
			"phone":               "0400 000 000",
			"relationship_status": "single",
		},
		"has_children": false,
		"dependants": map[string]any{
			"has_other_dependants": false,
		},
		"executors": map[string]any{
			"mode": "one",
			"primary": []any{
				map[string]any{
					"full_name":    "Jane Doe",
					"relationship": "Sister",
					"address":      testAddress("456 Test Ave"),
				},
			},
			"backup": map[string]any{"mode": "none"},
		},
		"distribution": map[string]any{"scheme": "percentages_named"},
		"beneficiaries": []any{
			map[string]any{
				"type":         "individual",
				"full_name":    "Jane Doe",
				"relationship": "Sister",
				"address":      testAddress("456 Test Ave"),
				"gift_role":    "percentage_only",
				"percentage":   100,
			},
		},
		"survivorship": map[string]any{"days": 30},
		"substitution": map[string]any{"rule": "to_their_children"},
		"declarations": map[string]any{
			"confirm_reviewed":        true,
			"confirm_complex_advice":  true,
			"confirm_super_and_joint": true,
			"confirm_signing_witness": true,
		},
	}
}

type app struct {
	router     http.Handler
	subs       *store.Memory
	auditStore *audit.MemoryStore
}

func newApp(t *testing.T, health func(ctx context.Context) error) *app {
	t.Helper()
	logger := discardLogger()

	subs := store.NewMemory()
	auditStore := audit.NewMemoryStore()
	publisher := audit.NewPublisher(auditStore, audit.WithPublisherLogger(logger))

	svc := service.New(subs,
		service.WithLogger(logger),
		service.WithAuditPublisher(publisher),
	)

	sessions := admin.NewService(admin.Config{
		Username:     "admin",
		PasswordHash: admin.HashPassword("swordfish"),
		SigningKey:   "router-test-key",
		SessionTTL:   time.Hour,
	}, admin.WithLogger(logger), admin.WithAuditPublisher(publisher))

	sweeper := retention.NewSweeper(subs, retention.Policy{
		RetentionDays:     2555,
		AutoDeleteEnabled: true,
		DeletePDFs:        true,
	}, retention.WithLogger(logger), retention.WithAuditPublisher(publisher))

	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(),
		ratelimit.WithLogger(logger),
		ratelimit.WithAuditPublisher(publisher))

	router := httptransport.NewRouter(httptransport.Config{
		Submissions: subhandler.New(svc, logger),
		Admin:       admin.NewHandler(sessions, svc, auditStore, sweeper, logger),
		Sessions:    sessions,
		RateLimit:   ratelimit.NewMiddleware(limiter, logger),
		Logger:      logger,
		Health:      health,
	})
	return &app{router: router, subs: subs, auditStore: auditStore}
}

func (a *app) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	r := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		a := newApp(t, nil)
		w := a.do(t, http.MethodGet, "/healthz", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decodeJSON(t, w)["status"])
	})

	t.Run("degraded dependency", func(t *testing.T) {
		a := newApp(t, func(context.Context) error { return errors.New("db unreachable") })
		w := a.do(t, http.MethodGet, "/healthz", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "degraded", decodeJSON(t, w)["status"])
	})
}

func TestCommonResponseHeaders(t *testing.T) {
	a := newApp(t, nil)
	w := a.do(t, http.MethodGet, "/healthz", nil, nil)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestValidateEndpoint(t *testing.T) {
	a := newApp(t, nil)

	t.Run("valid payload", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/validate", validPayload(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeJSON(t, w)
		assert.Equal(t, true, body["ok"])
		assert.Empty(t, body["errors"])
	})

	t.Run("invalid payload still returns the verdict", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/validate", map[string]any{}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeJSON(t, w)
		assert.Equal(t, false, body["ok"])
		assert.NotEmpty(t, body["errors"])
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader("{nope"))
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGenerationFlow(t *testing.T) {
	a := newApp(t, nil)

	w := a.do(t, http.MethodPost, "/submissions", validPayload(),
		map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeJSON(t, w)
	assert.Equal(t, true, created["ok"])
	submissionID, _ := created["submission_id"].(string)
	require.NotEmpty(t, submissionID)
	pdfHash, _ := created["pdf_hash"].(string)
	assert.Len(t, pdfHash, 64)

	t.Run("metadata", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/submissions/"+submissionID, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeJSON(t, w)
		assert.Equal(t, "locked", body["status"])
		assert.Equal(t, true, body["is_locked"])
		assert.Equal(t, true, body["has_pdf"])
	})

	t.Run("pdf download", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/submissions/"+submissionID+"/pdf", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "Last_Will_and_Testament")
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("checklist download", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/submissions/"+submissionID+"/checklist", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("verify", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/submissions/"+submissionID+"/verify", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeJSON(t, w)
		assert.Equal(t, true, body["is_valid"])
		assert.Equal(t, pdfHash, body["stored_hash"])
	})

	t.Run("explain", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/submissions/"+submissionID+"/explain", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeJSON(t, w)
		assert.Equal(t, true, body["ok"])
		assert.Contains(t, body, "summary")
		assert.Contains(t, body, "clauses")
		assert.Contains(t, body, "execution")
	})

	t.Run("regenerate bumps the version", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/submissions/"+submissionID+"/regenerate", nil, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decodeJSON(t, w)
		assert.Equal(t, submissionID, body["parent_submission_id"])
		assert.Equal(t, float64(2), body["version_number"])
	})

	t.Run("unknown submission", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/submissions/2c8bf01e-10cd-4cbb-8a42-77398cbbe7a8", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad submission id", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/submissions/not-a-uuid", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGenerateReturnsPDFByDefault(t *testing.T) {
	a := newApp(t, nil)

	w := a.do(t, http.MethodPost, "/submissions", validPayload(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestGenerateRejectsInvalidPayload(t *testing.T) {
	a := newApp(t, nil)

	w := a.do(t, http.MethodPost, "/submissions", map[string]any{"has_children": false},
		map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, "validation_failed", body["error"])
}

func TestAdminFlow(t *testing.T) {
	a := newApp(t, nil)

	w := a.do(t, http.MethodPost, "/submissions", validPayload(),
		map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("login required", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/admin/submissions", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/admin/login",
			map[string]any{"username": "admin", "password": "nope"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	w = a.do(t, http.MethodPost, "/admin/login",
		map[string]any{"username": "admin", "password": "swordfish"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decodeJSON(t, w)["token"].(string)
	require.NotEmpty(t, token)
	authed := map[string]string{"Authorization": "Bearer " + token}

	t.Run("list submissions", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/admin/submissions", nil, authed)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeJSON(t, w)
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("filter by status", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/admin/submissions?status=error", nil, authed)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(0), decodeJSON(t, w)["count"])
	})

	t.Run("audit trail", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/admin/audit", nil, authed)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeJSON(t, w)
		assert.NotEmpty(t, body["events"])
		assert.Equal(t, float64(0), body["tampered"])
	})

	t.Run("stats", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/admin/stats", nil, authed)
		require.Equal(t, http.StatusOK, w.Code)
		stats, ok := decodeJSON(t, w)["stats"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(1), stats["total"])
	})

	t.Run("retention dry run", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/admin/retention/sweep?dry_run=true", nil, authed)
		require.Equal(t, http.StatusOK, w.Code)
		report, ok := decodeJSON(t, w)["report"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, report["dry_run"])
	})

	t.Run("logout", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/admin/logout", nil, authed)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminLoginRateLimit(t *testing.T) {
	a := newApp(t, nil)
	creds := map[string]any{"username": "admin", "password": "nope"}

	for i := 0; i < 5; i++ {
		w := a.do(t, http.MethodPost, "/admin/login", creds, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}

	w := a.do(t, http.MethodPost, "/admin/login", creds, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
