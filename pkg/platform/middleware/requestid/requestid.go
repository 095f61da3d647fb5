// Package requestid tags every request with an identifier for log and audit
// correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"willforge/pkg/requestcontext"
)

const Header = "X-Request-ID"

// Middleware honors an incoming request ID from a trusted proxy or mints a
// fresh one, stores it on the context, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
