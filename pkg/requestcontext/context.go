// Package requestcontext carries request-scoped values without importing
// net/http, so services read them the same way handlers do.
//
// Middleware writes the values:
//
//	ctx = requestcontext.WithAdminKey(ctx, r.Header.Get("X-Admin-Key"))
//
// Tests pin the clock:
//
//	ctx = requestcontext.WithTime(ctx, fixed)
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	adminKey key = iota
	participantKey
	clientIP
	device
	requestID
	requestTime
)

// lookup returns the value stored under k, or the zero value when it is
// missing or of another type.
func lookup[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// AdminKey is the organizer secret presented with the request, or "".
func AdminKey(ctx context.Context) string { return lookup[string](ctx, adminKey) }

func WithAdminKey(ctx context.Context, k string) context.Context {
	return context.WithValue(ctx, adminKey, k)
}

// ParticipantKey is the raw participant credential. It is not parsed here;
// an unparsable key surfaces later as a lookup miss.
func ParticipantKey(ctx context.Context) string { return lookup[string](ctx, participantKey) }

func WithParticipantKey(ctx context.Context, k string) context.Context {
	return context.WithValue(ctx, participantKey, k)
}

func ClientIP(ctx context.Context) string { return lookup[string](ctx, clientIP) }

// Device is a coarse description of the caller's client, such as
// "Firefox 120 on Linux". It is never the raw User-Agent.
func Device(ctx context.Context) string { return lookup[string](ctx, device) }

// WithClientMetadata records the caller's address and device for audit events.
func WithClientMetadata(ctx context.Context, ip, dev string) context.Context {
	return context.WithValue(context.WithValue(ctx, clientIP, ip), device, dev)
}

func RequestID(ctx context.Context) string { return lookup[string](ctx, requestID) }

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestID, id)
}

// Now is the time the request was accepted. Outside a request it is time.Now.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTime, t)
}
