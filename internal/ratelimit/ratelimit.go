// Package ratelimit throttles request rates per client IP using a token
// bucket. Buckets live in memory for single-node deployments or in redis when
// several instances share limits.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"willforge/pkg/platform/audit"
	"willforge/pkg/requestcontext"
)

// Scope identifies a class of endpoint with its own budget.
type Scope string

const (
	ScopeGenerate    Scope = "generate"
	ScopeValidate    Scope = "validate"
	ScopeAdminLogin  Scope = "admin_login"
	ScopeAdminAction Scope = "admin_actions"
)

// Limit is a request budget over a rolling window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Rate returns the refill rate in tokens per second.
func (l Limit) Rate() float64 {
	if l.Window <= 0 {
		return 0
	}
	return float64(l.Requests) / l.Window.Seconds()
}

// DefaultLimits returns the per-scope budgets. Generation is expensive and
// tightly capped; validation is a cheap preview call and gets more headroom.
func DefaultLimits() map[Scope]Limit {
	return map[Scope]Limit{
		ScopeGenerate:    {Requests: 10, Window: time.Hour},
		ScopeValidate:    {Requests: 60, Window: time.Hour},
		ScopeAdminLogin:  {Requests: 5, Window: time.Minute},
		ScopeAdminAction: {Requests: 30, Window: time.Minute},
	}
}

// Result reports the outcome of a bucket take.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// Store holds the token buckets. Take consumes one token from the bucket for
// key, creating a full bucket on first sight.
type Store interface {
	Take(ctx context.Context, key string, limit Limit) (*Result, error)
	Reset(ctx context.Context, key string) error
}

// AuditPublisher records throttling events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Limiter checks per-IP budgets and records exceeded limits on the audit
// trail.
type Limiter struct {
	store   Store
	limits  map[Scope]Limit
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *Metrics
}

type LimiterOption func(*Limiter)

func WithLogger(logger *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) LimiterOption {
	return func(l *Limiter) {
		l.auditor = publisher
	}
}

func WithMetrics(m *Metrics) LimiterOption {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithLimits overrides individual scope budgets, e.g. from configuration.
func WithLimits(overrides map[Scope]Limit) LimiterOption {
	return func(l *Limiter) {
		for scope, limit := range overrides {
			l.limits[scope] = limit
		}
	}
}

func NewLimiter(store Store, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		store:  store,
		limits: DefaultLimits(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check consumes one token from the bucket for ip under the given scope.
func (l *Limiter) Check(ctx context.Context, scope Scope, ip string) (*Result, error) {
	limit, ok := l.limits[scope]
	if !ok {
		return nil, fmt.Errorf("no limit configured for scope %q", scope)
	}

	result, err := l.store.Take(ctx, bucketKey(scope, ip), limit)
	if err != nil {
		return nil, fmt.Errorf("take token for %s: %w", scope, err)
	}

	if l.metrics != nil {
		l.metrics.IncrementCheck(string(scope), result.Allowed)
	}
	if !result.Allowed {
		l.logger.WarnContext(ctx, "rate limit exceeded",
			"scope", string(scope),
			"ip", ip,
			"retry_after", result.RetryAfter)
		l.recordExceeded(ctx, scope, ip, limit, result)
	}
	return result, nil
}

func (l *Limiter) recordExceeded(ctx context.Context, scope Scope, ip string, limit Limit, result *Result) {
	if l.auditor == nil {
		return
	}
	event := audit.Event{
		ActorType:    audit.ActorUser,
		ActorID:      ip,
		Action:       audit.ActionRateLimitExceeded,
		ResourceType: "endpoint",
		ResourceID:   string(scope),
		Details: map[string]any{
			"limit":          limit.Requests,
			"window_seconds": int(limit.Window.Seconds()),
			"retry_after":    result.RetryAfter,
		},
		Success:      false,
		IP:           ip,
		UserAgent:    requestcontext.UserAgent(ctx),
		RequestID:    requestcontext.RequestID(ctx),
		ErrorMessage: "rate limit exceeded",
	}
	if err := l.auditor.Emit(ctx, event); err != nil {
		l.logger.ErrorContext(ctx, "failed to record rate limit event", "error", err)
	}
}

func bucketKey(scope Scope, ip string) string {
	return "ratelimit:" + string(scope) + ":" + ip
}
