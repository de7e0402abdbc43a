package service

import (
	"context"
	"time"

	"secretsanta/internal/activity/matching"
	"secretsanta/internal/activity/metrics"
	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
	audit "secretsanta/pkg/platform/audit"
	"secretsanta/pkg/requestcontext"
)

// RunMatching checks the admin key and hands the activity to the matcher.
func (s *Service) RunMatching(ctx context.Context, activityID id.ActivityID, adminKey string) (*matching.MatchResult, error) {
	if _, err := s.loadForAdmin(ctx, activityID, adminKey); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.matcher.RunMatching(ctx, activityID)
	if err != nil {
		s.metrics.ObserveMatching(string(dErrors.CodeOf(err)), 0, time.Since(start))
		if dErrors.HasCode(err, dErrors.CodePersistence) || dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			s.logger.ErrorContext(ctx, "matching failed",
				"activity_id", activityID,
				"error", err,
			)
		}
		return nil, err
	}
	s.metrics.ObserveMatching(metrics.OutcomeMatched, len(result.Assignments), time.Since(start))
	s.logAudit(ctx, audit.EventActivityMatched, activityID, nil, "admin", "", "")
	return result, nil
}

// RevealSenders moves a MATCHED activity to REVEALED so participants can see
// who gives to them.
func (s *Service) RevealSenders(ctx context.Context, activityID id.ActivityID, adminKey string) (*models.Activity, error) {
	if adminKey == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "admin key required")
	}

	var revealed *models.Activity
	err := s.store.RunInTx(ctx, func(tx ports.TxStore) error {
		activity, err := tx.LockActivity(ctx, activityID)
		if err != nil {
			return err
		}
		if err := s.checkAdmin(ctx, activity, adminKey); err != nil {
			return err
		}
		if err := activity.CanRevealSenders(); err != nil {
			return err
		}
		now := requestcontext.Now(ctx).UTC()
		if err := tx.TransitionStatus(ctx, activityID, models.StatusMatched, models.StatusRevealed, now); err != nil {
			return err
		}
		activity.ApplyRevealed(now)
		revealed = activity
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err, "activity not found", "failed to reveal senders")
	}

	s.metrics.IncReveal()
	s.logAudit(ctx, audit.EventSendersRevealed, activityID, nil, "admin", "", "")
	return revealed, nil
}
