package admin

import (
	"net/http"
	"strings"

	dErrors "willforge/pkg/domain-errors"
	"willforge/pkg/platform/httputil"
	"willforge/pkg/requestcontext"
)

// Require guards admin endpoints. The verified username is placed on the
// request context so downstream audit events carry the admin actor.
func (s *Service) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing session token"))
			return
		}

		username, err := s.VerifyToken(token)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		ctx := requestcontext.WithAdminUser(r.Context(), username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
