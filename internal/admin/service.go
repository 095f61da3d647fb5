// Package admin authenticates the operations user and guards the review
// endpoints. Sessions are stateless HS256 JWTs with a fixed lifetime.
package admin

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "willforge/pkg/domain-errors"
	"willforge/pkg/platform/audit"
	"willforge/pkg/requestcontext"
)

const (
	tokenIssuer       = "willforge"
	defaultSessionTTL = time.Hour
)

// Config holds the admin credentials and signing material, typically loaded
// from the environment. PasswordHash is the hex SHA-256 digest of the
// password.
type Config struct {
	Username     string
	PasswordHash string
	SigningKey   string
	SessionTTL   time.Duration
}

// Configured reports whether admin access is set up at all. An unconfigured
// deployment simply has no admin surface.
func (c Config) Configured() bool {
	return c.Username != "" && c.PasswordHash != "" && c.SigningKey != ""
}

// Claims is the JWT payload for an admin session.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuditPublisher records login attempts and logouts.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

type Service struct {
	cfg     Config
	logger  *slog.Logger
	auditor AuditPublisher
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(cfg Config, opts ...Option) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	s := &Service{
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the credentials and issues a session token. Failed attempts
// land on the audit trail with the attempted username.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if !s.cfg.Configured() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "admin access is not configured")
	}

	if username != s.cfg.Username || !verifyPassword(password, s.cfg.PasswordHash) {
		s.emitLogin(ctx, audit.ActionAdminLoginFailed, username, false, "invalid credentials")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.SessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString([]byte(s.cfg.SigningKey))
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "sign session token", err)
	}

	s.emitLogin(ctx, audit.ActionAdminLogin, username, true, "")
	s.logger.InfoContext(ctx, "admin logged in", "username", username)
	return &Session{Token: signed, Username: username, ExpiresAt: expiresAt}, nil
}

// VerifyToken validates a session token and returns the admin username.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	if !s.cfg.Configured() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "admin access is not configured")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(s.cfg.SigningKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "session has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Username == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	return claims.Username, nil
}

// Logout records the end of a session. Tokens are stateless, so this is an
// audit record rather than a revocation.
func (s *Service) Logout(ctx context.Context, username string) {
	s.emitLogin(ctx, audit.ActionAdminLogout, username, true, "")
	s.logger.InfoContext(ctx, "admin logged out", "username", username)
}

func (s *Service) emitLogin(ctx context.Context, action audit.Action, username string, success bool, errorMessage string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		ActorType:    audit.ActorAdmin,
		ActorID:      username,
		Action:       action,
		ResourceType: "admin_session",
		Success:      success,
		ErrorMessage: errorMessage,
		IP:           requestcontext.ClientIP(ctx),
		UserAgent:    requestcontext.UserAgent(ctx),
		RequestID:    requestcontext.RequestID(ctx),
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to record admin session event",
			"error", err, "action", string(action))
	}
}

func verifyPassword(password, passwordHash string) bool {
	digest := sha256.Sum256([]byte(password))
	hashed := hex.EncodeToString(digest[:])
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(passwordHash)) == 1
}

// HashPassword produces the digest format expected in Config.PasswordHash.
// Exposed for provisioning tooling.
func HashPassword(password string) string {
	digest := sha256.Sum256([]byte(password))
	return hex.EncodeToString(digest[:])
}
