package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"willforge/pkg/platform/audit"
	"willforge/pkg/requestcontext"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultLimits(t *testing.T) {
	limits := DefaultLimits()
	assert.Equal(t, Limit{Requests: 10, Window: time.Hour}, limits[ScopeGenerate])
	assert.Equal(t, Limit{Requests: 60, Window: time.Hour}, limits[ScopeValidate])
	assert.Equal(t, Limit{Requests: 5, Window: time.Minute}, limits[ScopeAdminLogin])
	assert.Equal(t, Limit{Requests: 30, Window: time.Minute}, limits[ScopeAdminAction])
}

func TestMemoryStore_Take(t *testing.T) {
	ctx := context.Background()
	limit := Limit{Requests: 3, Window: time.Minute}

	t.Run("allows up to the budget then denies", func(t *testing.T) {
		clock := newFakeClock()
		store := NewMemoryStore(WithClock(clock.Now))

		for i := 0; i < 3; i++ {
			result, err := store.Take(ctx, "k", limit)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d should be allowed", i+1)
			assert.Equal(t, 3, result.Limit)
			assert.Equal(t, 2-i, result.Remaining)
		}

		result, err := store.Take(ctx, "k", limit)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, 0, result.Remaining)
		assert.Greater(t, result.RetryAfter, 0)
	})

	t.Run("refills over time", func(t *testing.T) {
		clock := newFakeClock()
		store := NewMemoryStore(WithClock(clock.Now))

		for i := 0; i < 3; i++ {
			_, err := store.Take(ctx, "k", limit)
			require.NoError(t, err)
		}
		result, err := store.Take(ctx, "k", limit)
		require.NoError(t, err)
		require.False(t, result.Allowed)

		// One token refills every 20s at 3 per minute.
		clock.Advance(21 * time.Second)
		result, err = store.Take(ctx, "k", limit)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("never exceeds capacity after a long idle period", func(t *testing.T) {
		clock := newFakeClock()
		store := NewMemoryStore(WithClock(clock.Now))

		_, err := store.Take(ctx, "k", limit)
		require.NoError(t, err)

		clock.Advance(24 * time.Hour)
		result, err := store.Take(ctx, "k", limit)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		clock := newFakeClock()
		store := NewMemoryStore(WithClock(clock.Now))

		for i := 0; i < 3; i++ {
			_, err := store.Take(ctx, "a", limit)
			require.NoError(t, err)
		}
		result, err := store.Take(ctx, "b", limit)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("reset restores the full budget", func(t *testing.T) {
		clock := newFakeClock()
		store := NewMemoryStore(WithClock(clock.Now))

		for i := 0; i < 3; i++ {
			_, err := store.Take(ctx, "k", limit)
			require.NoError(t, err)
		}
		require.NoError(t, store.Reset(ctx, "k"))

		result, err := store.Take(ctx, "k", limit)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 2, result.Remaining)
	})
}

func TestLimiter_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown scope errors", func(t *testing.T) {
		limiter := NewLimiter(NewMemoryStore(), WithLogger(discardLogger()))
		_, err := limiter.Check(ctx, Scope("bogus"), "203.0.113.9")
		require.Error(t, err)
	})

	t.Run("override replaces the default budget", func(t *testing.T) {
		limiter := NewLimiter(NewMemoryStore(),
			WithLogger(discardLogger()),
			WithLimits(map[Scope]Limit{ScopeGenerate: {Requests: 1, Window: time.Hour}}))

		first, err := limiter.Check(ctx, ScopeGenerate, "203.0.113.9")
		require.NoError(t, err)
		assert.True(t, first.Allowed)

		second, err := limiter.Check(ctx, ScopeGenerate, "203.0.113.9")
		require.NoError(t, err)
		assert.False(t, second.Allowed)
	})

	t.Run("records exceeded limits on the audit trail", func(t *testing.T) {
		auditStore := audit.NewMemoryStore()
		publisher := audit.NewPublisher(auditStore, audit.WithPublisherLogger(discardLogger()))
		limiter := NewLimiter(NewMemoryStore(),
			WithLogger(discardLogger()),
			WithAuditPublisher(publisher),
			WithLimits(map[Scope]Limit{ScopeGenerate: {Requests: 1, Window: time.Hour}}))

		reqCtx := requestcontext.WithRequestID(ctx, "req-42")

		_, err := limiter.Check(reqCtx, ScopeGenerate, "203.0.113.9")
		require.NoError(t, err)
		assert.Equal(t, 0, auditStore.Len())

		_, err = limiter.Check(reqCtx, ScopeGenerate, "203.0.113.9")
		require.NoError(t, err)

		events, err := auditStore.ListRecent(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		event := events[0]
		assert.Equal(t, audit.ActionRateLimitExceeded, event.Action)
		assert.Equal(t, audit.CategorySecurity, event.Action.Category())
		assert.Equal(t, "203.0.113.9", event.IP)
		assert.Equal(t, "generate", event.ResourceID)
		assert.Equal(t, "req-42", event.RequestID)
		assert.False(t, event.Success)
		assert.True(t, event.VerifyIntegrity())
	})
}

type erroringStore struct{}

func (erroringStore) Take(context.Context, string, Limit) (*Result, error) {
	return nil, errors.New("store down")
}

func (erroringStore) Reset(context.Context, string) error { return nil }

func TestMiddleware_Limit(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(t *testing.T, handler http.Handler, ip string) *httptest.ResponseRecorder {
		t.Helper()
		r := httptest.NewRequest(http.MethodPost, "/submissions", nil)
		r = r.WithContext(requestcontext.WithClientMetadata(r.Context(), ip, "agent"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	t.Run("throttles after the budget is spent", func(t *testing.T) {
		limiter := NewLimiter(NewMemoryStore(),
			WithLogger(discardLogger()),
			WithLimits(map[Scope]Limit{ScopeGenerate: {Requests: 2, Window: time.Hour}}))
		mw := NewMiddleware(limiter, discardLogger())
		handler := mw.Limit(ScopeGenerate)(okHandler)

		for i := 0; i < 2; i++ {
			w := serve(t, handler, "203.0.113.9")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		}

		w := serve(t, handler, "203.0.113.9")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "rate_limited")
	})

	t.Run("limits are per client", func(t *testing.T) {
		limiter := NewLimiter(NewMemoryStore(),
			WithLogger(discardLogger()),
			WithLimits(map[Scope]Limit{ScopeGenerate: {Requests: 1, Window: time.Hour}}))
		mw := NewMiddleware(limiter, discardLogger())
		handler := mw.Limit(ScopeGenerate)(okHandler)

		assert.Equal(t, http.StatusOK, serve(t, handler, "203.0.113.9").Code)
		assert.Equal(t, http.StatusTooManyRequests, serve(t, handler, "203.0.113.9").Code)
		assert.Equal(t, http.StatusOK, serve(t, handler, "198.51.100.7").Code)
	})

	t.Run("falls back to the socket address without client metadata", func(t *testing.T) {
		limiter := NewLimiter(NewMemoryStore(),
			WithLogger(discardLogger()),
			WithLimits(map[Scope]Limit{ScopeGenerate: {Requests: 1, Window: time.Hour}}))
		mw := NewMiddleware(limiter, discardLogger())
		handler := mw.Limit(ScopeGenerate)(okHandler)

		r := httptest.NewRequest(http.MethodPost, "/submissions", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("fails open when the store errors", func(t *testing.T) {
		limiter := NewLimiter(erroringStore{}, WithLogger(discardLogger()))
		mw := NewMiddleware(limiter, discardLogger())
		handler := mw.Limit(ScopeGenerate)(okHandler)

		w := serve(t, handler, "203.0.113.9")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disabled passes everything through", func(t *testing.T) {
		limiter := NewLimiter(NewMemoryStore(),
			WithLogger(discardLogger()),
			WithLimits(map[Scope]Limit{ScopeGenerate: {Requests: 1, Window: time.Hour}}))
		mw := NewMiddleware(limiter, discardLogger(), WithDisabled(true))
		handler := mw.Limit(ScopeGenerate)(okHandler)

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, serve(t, handler, "203.0.113.9").Code)
		}
	})
}
