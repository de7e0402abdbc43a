package service

import (
	"context"
	"errors"
	"log/slog"

	"secretsanta/internal/activity/matching"
	"secretsanta/internal/activity/metrics"
	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
	"secretsanta/internal/activity/secrets"
	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
	audit "secretsanta/pkg/platform/audit"
	"secretsanta/pkg/platform/sentinel"
	"secretsanta/pkg/requestcontext"
)

// Matcher runs the OPEN → MATCHED transition. *matching.Engine implements it.
type Matcher interface {
	RunMatching(ctx context.Context, activityID id.ActivityID) (*matching.MatchResult, error)
}

// KeyDigester turns admin keys into the digests stores index by.
type KeyDigester interface {
	Digest(secret string) string
	Verify(secret, digest string) bool
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates activity administration, signups and reveals.
type Service struct {
	store          ports.Store
	cipher         ports.FieldCipher
	digester       KeyDigester
	matcher        Matcher
	generateKey    func() (string, error)
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithKeyGenerator replaces secrets.Generate for admin keys.
func WithKeyGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.generateKey = fn
	}
}

// New constructs a Service.
func New(store ports.Store, cipher ports.FieldCipher, digester KeyDigester, matcher Matcher, opts ...Option) *Service {
	s := &Service{
		store:       store,
		cipher:      cipher,
		digester:    digester,
		matcher:     matcher,
		generateKey: secrets.Generate,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadForAdmin fetches the activity and checks adminKey against it.
func (s *Service) loadForAdmin(ctx context.Context, activityID id.ActivityID, adminKey string) (*models.Activity, error) {
	if adminKey == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "admin key required")
	}
	activity, err := s.store.FindActivity(ctx, activityID)
	if err != nil {
		return nil, translateStoreErr(err, "activity not found", "failed to load activity")
	}
	if err := s.checkAdmin(ctx, activity, adminKey); err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *Service) checkAdmin(ctx context.Context, activity *models.Activity, adminKey string) error {
	if adminKey == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "admin key required")
	}
	if !s.digester.Verify(adminKey, activity.AdminKeyDigest) {
		s.logAudit(ctx, audit.EventAdminKeyRejected, activity.ID, nil, "admin", "denied", "admin key mismatch")
		return dErrors.New(dErrors.CodeForbidden, "admin key does not match this activity")
	}
	return nil
}

// translateStoreErr maps store sentinels onto domain codes. Domain errors
// raised inside a transaction pass through untouched.
func translateStoreErr(err error, notFoundMsg, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "conflicting write")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidState, "activity changed state concurrently")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodePersistence, msg)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, activityID id.ActivityID, participantID *id.ParticipantID, role, decision, reason string) {
	requestID := requestcontext.RequestID(ctx)
	args := []any{
		"event", string(event),
		"log_type", "audit",
		"activity_id", activityID.String(),
	}
	e := audit.Event{
		Action:     string(event),
		ActivityID: activityID.String(),
		ActorRole:  role,
		Decision:   decision,
		Reason:     reason,
		RequestID:  requestID,
		ClientIP:   requestcontext.ClientIP(ctx),
		Device:     requestcontext.Device(ctx),
	}
	if participantID != nil {
		e.ParticipantID = participantID.String()
		args = append(args, "participant_id", e.ParticipantID)
	}
	if requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, e); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
		)
	}
}
