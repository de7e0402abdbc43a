package matchlock

import (
	"context"
	"log/slog"
	"time"

	"secretsanta/pkg/platform/circuit"
)

// Locker is the lock contract shared by Redis, Memory and Fallback.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

// Fallback prefers primary and switches to a local lock once primary keeps
// failing. Primary is still tried on every call so the breaker can close
// again when it recovers.
type Fallback struct {
	primary Locker
	local   Locker
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewFallback(primary, local Locker, breaker *circuit.Breaker, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, local: local, breaker: breaker, logger: logger}
}

func (f *Fallback) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	unlock, ok, err := f.primary.TryLock(ctx, key, ttl)
	if err == nil {
		if _, change := f.breaker.RecordSuccess(); change.Closed {
			f.logger.InfoContext(ctx, "lock backend recovered", "breaker", f.breaker.Name())
		}
		return unlock, ok, nil
	}

	useFallback, change := f.breaker.RecordFailure()
	if change.Opened {
		f.logger.WarnContext(ctx, "lock backend failing, using local locks",
			"breaker", f.breaker.Name(),
			"error", err,
		)
	}
	if !useFallback {
		return nil, false, err
	}
	return f.local.TryLock(ctx, key, ttl)
}
