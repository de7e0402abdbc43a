package testutil

import (
	"net/http"

	"secretsanta/pkg/platform/middleware/credentials"
)

// WithAdminKey sets the organizer credential header on req.
func WithAdminKey(req *http.Request, key string) *http.Request {
	req.Header.Set(credentials.HeaderAdminKey, key)
	return req
}

// WithParticipantKey sets the participant credential header on req.
func WithParticipantKey(req *http.Request, key string) *http.Request {
	req.Header.Set(credentials.HeaderParticipantKey, key)
	return req
}
