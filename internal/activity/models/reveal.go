package models

import (
	"time"

	id "secretsanta/pkg/domain"
)

// RevealView is what a participant may see about an activity. Target is set
// from MATCHED on, Sender only once REVEALED.
type RevealView struct {
	Participant RevealSelf
	Activity    RevealActivity
	Target      *RevealTarget
	Sender      *RevealSender
}

type RevealSelf struct {
	ID            id.ParticipantID
	Nickname      string
	SocialAccount string
}

type RevealActivity struct {
	ID       id.ActivityID
	Name     string
	Status   Status
	Deadline time.Time
}

// RevealTarget is the person the viewer gives to, with decrypted shipping data.
type RevealTarget struct {
	Nickname      string
	SocialAccount string
	NoteToSanta   string
	Shipping      Shipping
}

// RevealSender is the person who gives to the viewer.
type RevealSender struct {
	Nickname      string
	SocialAccount string
	NoteToTarget  string
	NoteToSanta   string
}
