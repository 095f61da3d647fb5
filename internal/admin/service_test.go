package admin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "willforge/pkg/domain-errors"
	"willforge/pkg/platform/audit"
	"willforge/pkg/requestcontext"
)

func testConfig() Config {
	return Config{
		Username:     "admin",
		PasswordHash: HashPassword("correct horse battery staple"),
		SigningKey:   "test-signing-key",
		SessionTTL:   time.Hour,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, cfg Config) (*Service, *audit.MemoryStore) {
	t.Helper()
	store := audit.NewMemoryStore()
	publisher := audit.NewPublisher(store, audit.WithPublisherLogger(discardLogger()))
	svc := NewService(cfg,
		WithLogger(discardLogger()),
		WithAuditPublisher(publisher),
	)
	return svc, store
}

func TestLogin(t *testing.T) {
	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.9", "test-agent")

	t.Run("valid credentials issue a session", func(t *testing.T) {
		svc, store := newTestService(t, testConfig())

		session, err := svc.Login(ctx, "admin", "correct horse battery staple")
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, "admin", session.Username)
		assert.True(t, session.ExpiresAt.After(time.Now()))

		events, err := store.ListRecent(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionAdminLogin, events[0].Action)
		assert.Equal(t, audit.ActorAdmin, events[0].ActorType)
		assert.Equal(t, "203.0.113.9", events[0].IP)
		assert.True(t, events[0].Success)
	})

	t.Run("wrong password is rejected and audited", func(t *testing.T) {
		svc, store := newTestService(t, testConfig())

		_, err := svc.Login(ctx, "admin", "wrong")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

		events, err := store.ListRecent(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionAdminLoginFailed, events[0].Action)
		assert.Equal(t, audit.CategorySecurity, events[0].Action.Category())
		assert.False(t, events[0].Success)
	})

	t.Run("wrong username is rejected", func(t *testing.T) {
		svc, _ := newTestService(t, testConfig())
		_, err := svc.Login(ctx, "root", "correct horse battery staple")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unconfigured deployment refuses logins", func(t *testing.T) {
		svc, store := newTestService(t, Config{})
		_, err := svc.Login(ctx, "admin", "anything")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
		assert.Equal(t, 0, store.Len())
	})
}

func TestVerifyToken(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		svc, _ := newTestService(t, testConfig())
		session, err := svc.Login(ctx, "admin", "correct horse battery staple")
		require.NoError(t, err)

		username, err := svc.VerifyToken(session.Token)
		require.NoError(t, err)
		assert.Equal(t, "admin", username)
	})

	t.Run("expired token", func(t *testing.T) {
		store := audit.NewMemoryStore()
		publisher := audit.NewPublisher(store, audit.WithPublisherLogger(discardLogger()))
		clock := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		svc := NewService(testConfig(),
			WithLogger(discardLogger()),
			WithAuditPublisher(publisher),
			WithClock(func() time.Time { return clock }),
		)

		session, err := svc.Login(ctx, "admin", "correct horse battery staple")
		require.NoError(t, err)

		clock = clock.Add(2 * time.Hour)
		_, err = svc.VerifyToken(session.Token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		issuer, _ := newTestService(t, testConfig())
		session, err := issuer.Login(ctx, "admin", "correct horse battery staple")
		require.NoError(t, err)

		other := testConfig()
		other.SigningKey = "another-key"
		verifier, _ := newTestService(t, other)

		_, err = verifier.VerifyToken(session.Token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _ := newTestService(t, testConfig())
		_, err := svc.VerifyToken("not-a-jwt")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestLogout(t *testing.T) {
	svc, store := newTestService(t, testConfig())
	svc.Logout(context.Background(), "admin")

	events, err := store.ListRecent(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionAdminLogout, events[0].Action)
}

func TestRequire(t *testing.T) {
	svc, _ := newTestService(t, testConfig())

	var seenAdmin string
	protected := svc.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAdmin = requestcontext.AdminUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid bearer token passes", func(t *testing.T) {
		session, err := svc.Login(context.Background(), "admin", "correct horse battery staple")
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/admin/submissions", nil)
		r.Header.Set("Authorization", "Bearer "+session.Token)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin", seenAdmin)
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/admin/submissions", nil)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/admin/submissions", nil)
		r.Header.Set("Authorization", "Bearer bogus")
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHashPassword(t *testing.T) {
	// Stable digest format so operators can provision the hash with
	// standard tooling.
	assert.Equal(t,
		"2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae",
		HashPassword("foo"))
}
