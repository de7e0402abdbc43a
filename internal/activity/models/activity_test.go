package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
)

type ActivitySuite struct {
	suite.Suite
	now time.Time
}

func TestActivitySuite(t *testing.T) {
	suite.Run(t, new(ActivitySuite))
}

func (s *ActivitySuite) SetupTest() {
	s.now = time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ActivitySuite) newOpen() *Activity {
	a, err := NewActivity(id.NewActivityID(), "admin-key", "Office party", "bring snacks", s.now.Add(14*24*time.Hour), s.now)
	s.Require().NoError(err)
	return a
}

func (s *ActivitySuite) TestNewActivity() {
	s.Run("starts open", func() {
		a := s.newOpen()
		s.Equal(StatusOpen, a.Status)
		s.Equal(s.now, a.CreatedAt)
		s.Nil(a.MatchedAt)
	})

	s.Run("requires name", func() {
		_, err := NewActivity(id.NewActivityID(), "k", "   ", "", s.now.Add(time.Hour), s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects long name", func() {
		_, err := NewActivity(id.NewActivityID(), "k", strings.Repeat("x", 129), "", s.now.Add(time.Hour), s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("requires deadline", func() {
		_, err := NewActivity(id.NewActivityID(), "k", "Party", "", time.Time{}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("requires admin key", func() {
		_, err := NewActivity(id.NewActivityID(), "", "Party", "", s.now.Add(time.Hour), s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *ActivitySuite) TestEditOnlyWhileOpen() {
	a := s.newOpen()
	s.NoError(a.CanEdit())

	desc := "new description"
	s.NoError(a.ApplyEdit(Edit{Description: &desc}, s.now.Add(time.Minute)))
	s.Equal(desc, a.Description)
	s.Equal(s.now.Add(time.Minute), a.UpdatedAt)

	a.ApplyMatched(s.now)
	err := a.CanEdit()
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ActivitySuite) TestApplyEditValidates() {
	a := s.newOpen()
	blank := " "
	s.True(dErrors.HasCode(a.ApplyEdit(Edit{Name: &blank}, s.now), dErrors.CodeValidation))

	var zero time.Time
	s.True(dErrors.HasCode(a.ApplyEdit(Edit{Deadline: &zero}, s.now), dErrors.CodeValidation))
	s.True(Edit{}.IsEmpty())
}

func (s *ActivitySuite) TestCanAcceptSignup() {
	a := s.newOpen()
	s.NoError(a.CanAcceptSignup(s.now))

	err := a.CanAcceptSignup(a.Deadline)
	s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed), "deadline instant is already closed")

	a.ApplyMatched(s.now)
	err = a.CanAcceptSignup(s.now)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ActivitySuite) TestCanRemoveParticipant() {
	a := s.newOpen()
	s.NoError(a.CanRemoveParticipant())

	a.ApplyMatched(s.now)
	s.True(dErrors.HasCode(a.CanRemoveParticipant(), dErrors.CodeInvalidState))
}

func (s *ActivitySuite) TestCanMatch() {
	a := s.newOpen()
	s.True(dErrors.HasCode(a.CanMatch(0), dErrors.CodePreconditionFailed))
	s.True(dErrors.HasCode(a.CanMatch(1), dErrors.CodePreconditionFailed))
	s.NoError(a.CanMatch(2))

	a.ApplyMatched(s.now)
	s.Equal(StatusMatched, a.Status)
	s.Require().NotNil(a.MatchedAt)
	s.True(dErrors.HasCode(a.CanMatch(10), dErrors.CodeInvalidState))
}

func (s *ActivitySuite) TestRevealSenders() {
	a := s.newOpen()
	s.True(dErrors.HasCode(a.CanRevealSenders(), dErrors.CodeInvalidState), "cannot reveal from OPEN")

	a.ApplyMatched(s.now)
	s.NoError(a.CanRevealSenders())
	a.ApplyRevealed(s.now.Add(time.Hour))
	s.Equal(StatusRevealed, a.Status)
	s.Require().NotNil(a.RevealedAt)

	s.True(dErrors.HasCode(a.CanRevealSenders(), dErrors.CodeInvalidState), "cannot reveal twice")
	s.True(dErrors.HasCode(a.CanMatch(5), dErrors.CodeInvalidState), "cannot go back")
}
