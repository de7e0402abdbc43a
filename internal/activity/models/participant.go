package models

import (
	"strings"
	"time"

	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
)

const MaxNicknameLength = 64

// Shipping is the plaintext personal data a giver needs to send a gift.
// It only exists in memory; stores hold EncryptedShipping.
type Shipping struct {
	RealName string
	Phone    string
	Address  string
}

func (s Shipping) Validate() error {
	switch {
	case strings.TrimSpace(s.RealName) == "":
		return dErrors.New(dErrors.CodeValidation, "real_name is required")
	case strings.TrimSpace(s.Phone) == "":
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	case strings.TrimSpace(s.Address) == "":
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	return nil
}

// EncryptedShipping holds each Shipping field as sealed cipher text.
type EncryptedShipping struct {
	RealName string
	Phone    string
	Address  string
}

// Participant is one member of an activity. Its ID doubles as the
// participant's access credential.
type Participant struct {
	ID            id.ParticipantID
	ActivityID    id.ActivityID
	Nickname      string
	SocialAccount string
	Shipping      EncryptedShipping
	// NoteToSanta is read by whoever gives to this participant.
	NoteToSanta string
	// NoteToTarget is read by this participant's target once senders are revealed.
	NoteToTarget string
	TargetID     *id.ParticipantID
	CreatedAt    time.Time
}

// NewParticipant validates the public fields of a signup. Shipping must
// already be encrypted.
func NewParticipant(participantID id.ParticipantID, activityID id.ActivityID, nickname, socialAccount, noteToSanta, noteToTarget string, shipping EncryptedShipping, now time.Time) (*Participant, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "nickname is required")
	}
	if len([]rune(nickname)) > MaxNicknameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "nickname must be 64 characters or less")
	}
	if strings.TrimSpace(noteToSanta) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "note_to_santa is required")
	}
	if shipping.RealName == "" || shipping.Phone == "" || shipping.Address == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "shipping fields must be encrypted before storage")
	}
	return &Participant{
		ID:            participantID,
		ActivityID:    activityID,
		Nickname:      nickname,
		SocialAccount: strings.TrimSpace(socialAccount),
		Shipping:      shipping,
		NoteToSanta:   noteToSanta,
		NoteToTarget:  noteToTarget,
		CreatedAt:     now,
	}, nil
}

func (p *Participant) HasTarget() bool { return p.TargetID != nil }

// Assignment is one giver → target edge of the gift cycle.
type Assignment struct {
	Giver  id.ParticipantID
	Target id.ParticipantID
}
