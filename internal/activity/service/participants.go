package service

import (
	"context"
	"errors"

	"secretsanta/internal/activity/metrics"
	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
	audit "secretsanta/pkg/platform/audit"
	"secretsanta/pkg/platform/sentinel"
	"secretsanta/pkg/requestcontext"
)

type SignupInput struct {
	Nickname      string
	SocialAccount string
	NoteToSanta   string
	NoteToTarget  string
	Shipping      models.Shipping
}

// SignupResult carries the new participant; its ID is the participant's key.
type SignupResult struct {
	Participant  *models.Participant
	ActivityName string
}

// Signup adds a participant to an OPEN activity before its deadline.
// Shipping data is encrypted before it reaches the store.
func (s *Service) Signup(ctx context.Context, activityID id.ActivityID, in SignupInput) (*SignupResult, error) {
	result, err := s.signup(ctx, activityID, in)
	if err != nil {
		s.metrics.IncSignup(string(dErrors.CodeOf(err)))
		return nil, err
	}
	s.metrics.IncSignup(metrics.OutcomeJoined)
	pid := result.Participant.ID
	s.logAudit(ctx, audit.EventParticipantJoined, activityID, &pid, "participant", "", "")
	return result, nil
}

func (s *Service) signup(ctx context.Context, activityID id.ActivityID, in SignupInput) (*SignupResult, error) {
	if err := in.Shipping.Validate(); err != nil {
		return nil, err
	}
	sealed, err := s.cipher.EncryptShipping(in.Shipping)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to protect shipping details")
	}
	now := requestcontext.Now(ctx).UTC()
	participant, err := models.NewParticipant(id.NewParticipantID(), activityID, in.Nickname, in.SocialAccount, in.NoteToSanta, in.NoteToTarget, sealed, now)
	if err != nil {
		return nil, err
	}

	var activityName string
	err = s.store.RunInTx(ctx, func(tx ports.TxStore) error {
		activity, err := tx.LockActivity(ctx, activityID)
		if err != nil {
			return err
		}
		if err := activity.CanAcceptSignup(now); err != nil {
			return err
		}
		if err := tx.CreateParticipant(ctx, participant); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "nickname is already taken in this activity")
			}
			return err
		}
		activityName = activity.Name
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err, "activity not found", "failed to sign up")
	}
	return &SignupResult{Participant: participant, ActivityName: activityName}, nil
}

// RemoveParticipant lets the organizer drop a participant while OPEN.
func (s *Service) RemoveParticipant(ctx context.Context, activityID id.ActivityID, adminKey string, participantID id.ParticipantID) error {
	if adminKey == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "admin key required")
	}
	err := s.store.RunInTx(ctx, func(tx ports.TxStore) error {
		activity, err := tx.LockActivity(ctx, activityID)
		if err != nil {
			return err
		}
		if err := s.checkAdmin(ctx, activity, adminKey); err != nil {
			return err
		}
		if err := activity.CanRemoveParticipant(); err != nil {
			return err
		}
		if err := tx.DeleteParticipant(ctx, activityID, participantID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "participant not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return translateStoreErr(err, "activity not found", "failed to remove participant")
	}

	s.metrics.IncParticipantRemoved("admin")
	s.logAudit(ctx, audit.EventParticipantRemoved, activityID, &participantID, "admin", "", "")
	return nil
}

// Withdraw removes the caller's own signup while the activity is OPEN.
func (s *Service) Withdraw(ctx context.Context, participantID id.ParticipantID) error {
	participant, err := s.store.FindParticipant(ctx, participantID)
	if err != nil {
		return translateStoreErr(err, "participant not found", "failed to load participant")
	}
	activityID := participant.ActivityID

	err = s.store.RunInTx(ctx, func(tx ports.TxStore) error {
		activity, err := tx.LockActivity(ctx, activityID)
		if err != nil {
			return err
		}
		if err := activity.CanRemoveParticipant(); err != nil {
			return err
		}
		return tx.DeleteParticipant(ctx, activityID, participantID)
	})
	if err != nil {
		return translateStoreErr(err, "participant not found", "failed to withdraw")
	}

	s.metrics.IncParticipantRemoved("self")
	s.logAudit(ctx, audit.EventParticipantRemoved, activityID, &participantID, "participant", "", "withdrawn")
	return nil
}
