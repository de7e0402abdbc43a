// Package requesttime pins one "now" per HTTP request so deadline checks,
// domain timestamps and audit events agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"secretsanta/pkg/requestcontext"
)

// Middleware stamps each request with the wall clock in UTC.
var Middleware = New(time.Now)

// New returns middleware that reads the clock once per request.
func New(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
