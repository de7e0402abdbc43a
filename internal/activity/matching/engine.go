// Package matching assigns every participant of an activity a gift target and
// commits the assignment together with the OPEN → MATCHED transition.
package matching

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
	"secretsanta/pkg/platform/sentinel"
)

// Store is what the engine needs from persistence.
type Store interface {
	FindActivity(ctx context.Context, activityID id.ActivityID) (*models.Activity, error)
	CountParticipants(ctx context.Context, activityID id.ActivityID) (int, error)
	ports.StoreTx
}

// Locker guards an activity across service instances while matching runs.
// It only lets concurrent callers fail fast; the transaction decides.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

// MatchResult describes a committed matching.
type MatchResult struct {
	ActivityID  id.ActivityID
	Assignments []models.Assignment
	MatchedAt   time.Time
}

// Engine runs matchings. It is safe for concurrent use.
type Engine struct {
	store   Store
	logger  *slog.Logger
	tracer  trace.Tracer
	locker  Locker
	lockTTL time.Duration
	now     func() time.Time

	rngMu sync.Mutex
	rng   Rand
}

type Option func(*Engine)

func WithRand(rng Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithLocker enables the cross-instance guard. A nil locker disables it.
func WithLocker(locker Locker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New builds an engine over store. Without WithRand it draws from a
// crypto-seeded ChaCha8 generator.
func New(store Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:   store,
		logger:  slog.Default(),
		tracer:  otel.Tracer("secretsanta/matching"),
		lockTTL: 30 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		rng, err := NewSecureRand()
		if err != nil {
			return nil, err
		}
		e.rng = rng
	}
	return e, nil
}

// RunMatching assigns targets for an OPEN activity with at least two
// participants and moves it to MATCHED, all in one transaction.
//
// The preconditions are checked twice: once up front so common failures skip
// the transaction, and again under the activity lock so concurrent calls
// cannot both commit. A failed run leaves the activity OPEN without targets.
func (e *Engine) RunMatching(ctx context.Context, activityID id.ActivityID) (*MatchResult, error) {
	ctx, span := e.tracer.Start(ctx, "matching.RunMatching",
		trace.WithAttributes(attribute.String("activity.id", activityID.String())))
	defer span.End()

	result, err := e.runMatching(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return nil, err
	}
	span.SetAttributes(attribute.Int("matching.participants", len(result.Assignments)))
	return result, nil
}

func (e *Engine) runMatching(ctx context.Context, activityID id.ActivityID) (*MatchResult, error) {
	activity, err := e.store.FindActivity(ctx, activityID)
	if err != nil {
		return nil, mapStoreError(err, "failed to load activity")
	}
	count, err := e.store.CountParticipants(ctx, activityID)
	if err != nil {
		return nil, mapStoreError(err, "failed to count participants")
	}
	if err := activity.CanMatch(count); err != nil {
		return nil, err
	}

	if e.locker != nil {
		unlock, acquired, err := e.locker.TryLock(ctx, "match:"+activityID.String(), e.lockTTL)
		switch {
		case err != nil:
			e.logger.WarnContext(ctx, "match lock unavailable, relying on transaction",
				"activity_id", activityID,
				"error", err,
			)
		case !acquired:
			return nil, dErrors.New(dErrors.CodeInvalidState, "matching already in progress")
		default:
			defer func() {
				// the caller's context may be done; release on a fresh one
				releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
				defer cancel()
				if err := unlock(releaseCtx); err != nil {
					e.logger.WarnContext(ctx, "failed to release match lock",
						"activity_id", activityID,
						"error", err,
					)
				}
			}()
		}
	}

	var result *MatchResult
	err = e.store.RunInTx(ctx, func(tx ports.TxStore) error {
		_, span := e.tracer.Start(ctx, "matching.commit")
		defer span.End()

		locked, err := tx.LockActivity(ctx, activityID)
		if err != nil {
			return err
		}
		if !locked.IsOpen() {
			return dErrors.New(dErrors.CodeInvalidState, "activity has already been matched")
		}
		ids, err := tx.ListParticipantIDs(ctx, activityID)
		if err != nil {
			return err
		}
		if err := locked.CanMatch(len(ids)); err != nil {
			return err
		}

		assignments, err := e.derange(ids)
		if err != nil {
			return err
		}
		if err := Validate(assignments, ids); err != nil {
			return err
		}

		now := e.now().UTC()
		if err := tx.SetTargets(ctx, activityID, assignments); err != nil {
			return err
		}
		if err := tx.TransitionStatus(ctx, activityID, models.StatusOpen, models.StatusMatched, now); err != nil {
			return err
		}
		result = &MatchResult{ActivityID: activityID, Assignments: assignments, MatchedAt: now}
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err, "failed to commit matching")
	}

	e.logger.InfoContext(ctx, "activity matched",
		"activity_id", activityID,
		"participants", len(result.Assignments),
	)
	return result, nil
}

func (e *Engine) derange(ids []id.ParticipantID) ([]models.Assignment, error) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return Derange(ids, e.rng)
}

// mapStoreError passes domain errors through and translates store facts.
// Anything else is a persistence failure.
func mapStoreError(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "activity not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidState, "activity has already been matched")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "matching timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodePersistence, msg)
	}
}
