package service

import (
	"context"
	"errors"
	"time"

	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
	audit "secretsanta/pkg/platform/audit"
	"secretsanta/pkg/platform/sentinel"
	"secretsanta/pkg/requestcontext"
)

type CreateActivityInput struct {
	Name        string
	Description string
	Deadline    time.Time
}

// CreatedActivity carries the cleartext admin key. It is only available at
// creation time.
type CreatedActivity struct {
	Activity *models.Activity
	AdminKey string
}

// ActivitySummary is the public view of an activity for its join page.
type ActivitySummary struct {
	Activity         *models.Activity
	ParticipantCount int
}

// Dashboard is the organizer's view.
type Dashboard struct {
	Activity     *models.Activity
	Participants []*models.Participant
}

func (s *Service) CreateActivity(ctx context.Context, in CreateActivityInput) (*CreatedActivity, error) {
	adminKey, err := s.generateKey()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate admin key")
	}

	activity, err := models.NewActivity(id.NewActivityID(), s.digester.Digest(adminKey), in.Name, in.Description, in.Deadline, requestcontext.Now(ctx).UTC())
	if err != nil {
		return nil, err
	}

	if err := s.store.RunInTx(ctx, func(tx ports.TxStore) error {
		return tx.CreateActivity(ctx, activity)
	}); err != nil {
		return nil, translateStoreErr(err, "activity not found", "failed to create activity")
	}

	s.logAudit(ctx, audit.EventActivityCreated, activity.ID, nil, "admin", "", "")
	s.metrics.IncActivityCreated()
	return &CreatedActivity{Activity: activity, AdminKey: adminKey}, nil
}

// GetActivity returns public metadata. Anyone holding the invite id may read it.
func (s *Service) GetActivity(ctx context.Context, activityID id.ActivityID) (*ActivitySummary, error) {
	activity, err := s.store.FindActivity(ctx, activityID)
	if err != nil {
		return nil, translateStoreErr(err, "activity not found", "failed to load activity")
	}
	count, err := s.store.CountParticipants(ctx, activityID)
	if err != nil {
		return nil, translateStoreErr(err, "activity not found", "failed to count participants")
	}
	return &ActivitySummary{Activity: activity, ParticipantCount: count}, nil
}

// GetDashboard resolves the activity from the admin key alone.
func (s *Service) GetDashboard(ctx context.Context, adminKey string) (*Dashboard, error) {
	if adminKey == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "admin key required")
	}
	activity, err := s.store.FindActivityByAdminDigest(ctx, s.digester.Digest(adminKey))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "admin key does not match any activity")
		}
		return nil, translateStoreErr(err, "activity not found", "failed to load activity")
	}
	participants, err := s.store.ListParticipants(ctx, activity.ID)
	if err != nil {
		return nil, translateStoreErr(err, "activity not found", "failed to list participants")
	}
	return &Dashboard{Activity: activity, Participants: participants}, nil
}

// UpdateActivity edits name, description or deadline while the activity is OPEN.
func (s *Service) UpdateActivity(ctx context.Context, activityID id.ActivityID, adminKey string, edit models.Edit) (*models.Activity, error) {
	if adminKey == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "admin key required")
	}
	if edit.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "nothing to update")
	}

	var updated *models.Activity
	err := s.store.RunInTx(ctx, func(tx ports.TxStore) error {
		activity, err := tx.LockActivity(ctx, activityID)
		if err != nil {
			return err
		}
		if err := s.checkAdmin(ctx, activity, adminKey); err != nil {
			return err
		}
		if err := activity.CanEdit(); err != nil {
			return err
		}
		if err := activity.ApplyEdit(edit, requestcontext.Now(ctx).UTC()); err != nil {
			return err
		}
		if err := tx.UpdateActivity(ctx, activity); err != nil {
			return err
		}
		updated = activity
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err, "activity not found", "failed to update activity")
	}

	s.logAudit(ctx, audit.EventActivityUpdated, activityID, nil, "admin", "", "")
	return updated, nil
}
