// Package storetest holds the behavior every activity store must share. Each
// backend runs Suite against a fresh instance.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stretchr/testify/suite"

	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
	id "secretsanta/pkg/domain"
	"secretsanta/pkg/platform/sentinel"
)

var errAbort = errors.New("abort transaction")

// Suite exercises a ports.Store. NewStore is called before every test.
type Suite struct {
	suite.Suite
	NewStore func() ports.Store

	store ports.Store
	ctx   context.Context
	now   time.Time
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStore, "NewStore must be set")
	s.store = s.NewStore()
	s.ctx = context.Background()
	// stores may keep millisecond precision only
	s.now = time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) createActivity(name string) *models.Activity {
	activity, err := models.NewActivity(id.NewActivityID(), "digest-"+name, name, "exchange", s.now.Add(30*24*time.Hour), s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
		return tx.CreateActivity(s.ctx, activity)
	}))
	return activity
}

func (s *Suite) signup(activityID id.ActivityID, nickname string, offset time.Duration) *models.Participant {
	p, err := models.NewParticipant(id.NewParticipantID(), activityID, nickname, "@"+nickname, "socks", "", models.EncryptedShipping{
		RealName: "sealed-name",
		Phone:    "sealed-phone",
		Address:  "sealed-address",
	}, s.now.Add(offset))
	s.Require().NoError(err)
	s.Require().NoError(s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
		return tx.CreateParticipant(s.ctx, p)
	}))
	return p
}

func (s *Suite) signupMany(activityID id.ActivityID, n int) []*models.Participant {
	out := make([]*models.Participant, n)
	for i := range n {
		out[i] = s.signup(activityID, fmt.Sprintf("elf-%d", i), time.Duration(i)*time.Second)
	}
	return out
}

func (s *Suite) TestActivityLookups() {
	activity := s.createActivity("office")

	s.Run("finds by id", func() {
		found, err := s.store.FindActivity(s.ctx, activity.ID)
		s.Require().NoError(err)
		s.Equal(activity.Name, found.Name)
		s.Equal(models.StatusOpen, found.Status)
		s.True(activity.Deadline.Equal(found.Deadline))
		s.Nil(found.MatchedAt)
	})

	s.Run("finds by admin digest", func() {
		found, err := s.store.FindActivityByAdminDigest(s.ctx, activity.AdminKeyDigest)
		s.Require().NoError(err)
		s.Equal(activity.ID, found.ID)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.store.FindActivity(s.ctx, id.NewActivityID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown admin digest is not found", func() {
		_, err := s.store.FindActivityByAdminDigest(s.ctx, "nope")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *Suite) TestUpdateActivity() {
	activity := s.createActivity("family")
	name := "Family 2026"
	desc := "budget 20"
	deadline := s.now.Add(48 * time.Hour)
	s.Require().NoError(activity.ApplyEdit(models.Edit{Name: &name, Description: &desc, Deadline: &deadline}, s.now.Add(time.Hour)))

	s.Require().NoError(s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
		return tx.UpdateActivity(s.ctx, activity)
	}))

	found, err := s.store.FindActivity(s.ctx, activity.ID)
	s.Require().NoError(err)
	s.Equal(name, found.Name)
	s.Equal(desc, found.Description)
	s.True(deadline.Equal(found.Deadline))
	s.Equal(models.StatusOpen, found.Status)
}

func (s *Suite) TestParticipants() {
	activity := s.createActivity("team")
	first := s.signup(activity.ID, "rudolph", 0)
	second := s.signup(activity.ID, "dasher", time.Second)

	s.Run("lists in signup order", func() {
		list, err := s.store.ListParticipants(s.ctx, activity.ID)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(first.ID, list[0].ID)
		s.Equal(second.ID, list[1].ID)
		s.Equal(first.Shipping, list[0].Shipping)
		s.Equal("socks", list[0].NoteToSanta)
	})

	s.Run("counts", func() {
		n, err := s.store.CountParticipants(s.ctx, activity.ID)
		s.Require().NoError(err)
		s.Equal(2, n)
	})

	s.Run("finds by id", func() {
		found, err := s.store.FindParticipant(s.ctx, second.ID)
		s.Require().NoError(err)
		s.Equal("dasher", found.Nickname)
		s.Equal(activity.ID, found.ActivityID)
		s.False(found.HasTarget())
	})

	s.Run("duplicate nickname conflicts", func() {
		dup, err := models.NewParticipant(id.NewParticipantID(), activity.ID, "rudolph", "", "coal", "", first.Shipping, s.now)
		s.Require().NoError(err)
		err = s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
			return tx.CreateParticipant(s.ctx, dup)
		})
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("same nickname in another activity is fine", func() {
		other := s.createActivity("other")
		s.signup(other.ID, "rudolph", 0)
	})

	s.Run("delete removes participant", func() {
		s.Require().NoError(s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
			return tx.DeleteParticipant(s.ctx, activity.ID, first.ID)
		}))
		_, err := s.store.FindParticipant(s.ctx, first.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		n, err := s.store.CountParticipants(s.ctx, activity.ID)
		s.Require().NoError(err)
		s.Equal(1, n)
	})

	s.Run("delete of unknown participant is not found", func() {
		err := s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
			return tx.DeleteParticipant(s.ctx, activity.ID, id.NewParticipantID())
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("delete scoped to activity", func() {
		err := s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
			return tx.DeleteParticipant(s.ctx, id.NewActivityID(), second.ID)
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *Suite) TestTargetsAndTransition() {
	activity := s.createActivity("club")
	ps := s.signupMany(activity.ID, 3)
	assignments := []models.Assignment{
		{Giver: ps[0].ID, Target: ps[1].ID},
		{Giver: ps[1].ID, Target: ps[2].ID},
		{Giver: ps[2].ID, Target: ps[0].ID},
	}
	matchedAt := s.now.Add(time.Hour)

	s.Require().NoError(s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
		locked, err := tx.LockActivity(s.ctx, activity.ID)
		if err != nil {
			return err
		}
		s.Equal(models.StatusOpen, locked.Status)
		ids, err := tx.ListParticipantIDs(s.ctx, activity.ID)
		if err != nil {
			return err
		}
		s.Equal([]id.ParticipantID{ps[0].ID, ps[1].ID, ps[2].ID}, ids)
		if err := tx.SetTargets(s.ctx, activity.ID, assignments); err != nil {
			return err
		}
		return tx.TransitionStatus(s.ctx, activity.ID, models.StatusOpen, models.StatusMatched, matchedAt)
	}))

	s.Run("targets are stored", func() {
		for _, a := range assignments {
			p, err := s.store.FindParticipant(s.ctx, a.Giver)
			s.Require().NoError(err)
			s.Require().NotNil(p.TargetID)
			s.Equal(a.Target, *p.TargetID)
		}
	})

	s.Run("status and matched time are stored", func() {
		found, err := s.store.FindActivity(s.ctx, activity.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusMatched, found.Status)
		s.Require().NotNil(found.MatchedAt)
		s.True(matchedAt.Equal(*found.MatchedAt))
		s.Nil(found.RevealedAt)
	})

	s.Run("finds sender of a target", func() {
		sender, err := s.store.FindSender(s.ctx, ps[0].ID)
		s.Require().NoError(err)
		s.Equal(ps[2].ID, sender.ID)
	})

	s.Run("transition from a stale status is rejected", func() {
		err := s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
			return tx.TransitionStatus(s.ctx, activity.ID, models.StatusOpen, models.StatusMatched, s.now)
		})
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("reveal stamps revealed time", func() {
		revealedAt := s.now.Add(2 * time.Hour)
		s.Require().NoError(s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
			return tx.TransitionStatus(s.ctx, activity.ID, models.StatusMatched, models.StatusRevealed, revealedAt)
		}))
		found, err := s.store.FindActivity(s.ctx, activity.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusRevealed, found.Status)
		s.Require().NotNil(found.RevealedAt)
		s.True(revealedAt.Equal(*found.RevealedAt))
	})
}

func (s *Suite) TestFindSenderWithoutMatching() {
	activity := s.createActivity("quiet")
	p := s.signup(activity.ID, "comet", 0)

	_, err := s.store.FindSender(s.ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestRollback checks that a failing transaction leaves nothing behind, even
// after targets were written.
func (s *Suite) TestRollback() {
	activity := s.createActivity("atomic")
	ps := s.signupMany(activity.ID, 2)

	err := s.store.RunInTx(s.ctx, func(tx ports.TxStore) error {
		if err := tx.SetTargets(s.ctx, activity.ID, []models.Assignment{
			{Giver: ps[0].ID, Target: ps[1].ID},
			{Giver: ps[1].ID, Target: ps[0].ID},
		}); err != nil {
			return err
		}
		if err := tx.TransitionStatus(s.ctx, activity.ID, models.StatusOpen, models.StatusMatched, s.now); err != nil {
			return err
		}
		return errAbort
	})
	s.Require().ErrorIs(err, errAbort)

	found, err := s.store.FindActivity(s.ctx, activity.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, found.Status)
	s.Nil(found.MatchedAt)
	for _, p := range ps {
		got, err := s.store.FindParticipant(s.ctx, p.ID)
		s.Require().NoError(err)
		s.False(got.HasTarget())
	}
}

func (s *Suite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	called := false
	err := s.store.RunInTx(ctx, func(ports.TxStore) error {
		called = true
		return nil
	})
	s.Error(err)
	s.False(called)
}
