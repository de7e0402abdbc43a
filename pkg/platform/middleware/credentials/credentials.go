// Package credentials lifts the capability keys presented with a request into
// the request context. Possession of a key is the only proof of access; the
// services decide what each key may do.
package credentials

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "secretsanta/pkg/domain-errors"
	"secretsanta/pkg/platform/httputil"
	"secretsanta/pkg/requestcontext"
)

const (
	HeaderAdminKey       = "X-Admin-Key"
	HeaderParticipantKey = "X-Participant-Key"
	// QueryParticipantKey carries the participant credential on shareable links.
	QueryParticipantKey = "key"
)

// Extract copies the admin and participant keys, when present, into the
// request context.
func Extract(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if key := strings.TrimSpace(r.Header.Get(HeaderAdminKey)); key != "" {
			ctx = requestcontext.WithAdminKey(ctx, key)
		}
		if key := participantKey(r); key != "" {
			ctx = requestcontext.WithParticipantKey(ctx, key)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func participantKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(HeaderParticipantKey)); key != "" {
		return key
	}
	return strings.TrimSpace(r.URL.Query().Get(QueryParticipantKey))
}

// RequireAdminKey rejects requests that carry no admin key. Whether the key
// matches the addressed activity is checked by the service.
func RequireAdminKey(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.AdminKey(ctx) == "" {
				logger.WarnContext(ctx, "admin key missing",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin key required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireParticipantKey rejects requests that carry no participant key.
func RequireParticipantKey(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.ParticipantKey(ctx) == "" {
				logger.WarnContext(ctx, "participant key missing",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "participant key required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
