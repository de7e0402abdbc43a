package service

import (
	"context"

	"secretsanta/internal/activity/models"
	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
	audit "secretsanta/pkg/platform/audit"
)

// GetRevealView builds what participantID may see. The target is disclosed
// from MATCHED on, the sender only once REVEALED.
func (s *Service) GetRevealView(ctx context.Context, participantID id.ParticipantID) (*models.RevealView, error) {
	participant, err := s.store.FindParticipant(ctx, participantID)
	if err != nil {
		return nil, translateStoreErr(err, "participant not found", "failed to load participant")
	}
	activity, err := s.store.FindActivity(ctx, participant.ActivityID)
	if err != nil {
		return nil, translateStoreErr(err, "activity not found", "failed to load activity")
	}

	view := &models.RevealView{
		Participant: models.RevealSelf{
			ID:            participant.ID,
			Nickname:      participant.Nickname,
			SocialAccount: participant.SocialAccount,
		},
		Activity: models.RevealActivity{
			ID:       activity.ID,
			Name:     activity.Name,
			Status:   activity.Status,
			Deadline: activity.Deadline,
		},
	}

	if activity.Status == models.StatusOpen {
		s.metrics.IncRevealView(activity.Status.String())
		return view, nil
	}

	if !participant.HasTarget() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "matched participant has no target")
	}
	target, err := s.store.FindParticipant(ctx, *participant.TargetID)
	if err != nil {
		return nil, translateStoreErr(err, "target not found", "failed to load target")
	}
	shipping, err := s.cipher.DecryptShipping(target.Shipping)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to decrypt target shipping details",
			"activity_id", activity.ID,
			"participant_id", target.ID,
			"error", err,
		)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to read target details")
	}
	view.Target = &models.RevealTarget{
		Nickname:      target.Nickname,
		SocialAccount: target.SocialAccount,
		NoteToSanta:   target.NoteToSanta,
		Shipping:      shipping,
	}

	if activity.Status == models.StatusRevealed {
		sender, err := s.store.FindSender(ctx, participant.ID)
		if err != nil {
			return nil, translateStoreErr(err, "sender not found", "failed to load sender")
		}
		view.Sender = &models.RevealSender{
			Nickname:      sender.Nickname,
			SocialAccount: sender.SocialAccount,
			NoteToTarget:  sender.NoteToTarget,
			NoteToSanta:   sender.NoteToSanta,
		}
	}

	s.metrics.IncRevealView(activity.Status.String())
	s.logAudit(ctx, audit.EventRevealViewed, activity.ID, &participant.ID, "participant", activity.Status.String(), "")
	return view, nil
}
