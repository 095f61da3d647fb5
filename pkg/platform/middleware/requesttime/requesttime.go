// Package requesttime pins a single "now" per HTTP request. Every timestamp
// taken during the request, from submission creation to audit events, reads
// this value, which is what makes generation reproducible for a submission.
package requesttime

import (
	"net/http"
	"time"

	"willforge/pkg/requestcontext"
)

// Middleware captures the arrival time and stores it on the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
