// Package domain holds the typed identifiers shared across modules. Activity and
// participant ids are opaque UUIDs; a participant id is also that participant's
// access credential, and an activity id is the public invite token.
package domain

import (
	"github.com/google/uuid"

	dErrors "secretsanta/pkg/domain-errors"
)

type (
	ActivityID    uuid.UUID
	ParticipantID uuid.UUID
)

func NewActivityID() ActivityID       { return ActivityID(uuid.New()) }
func NewParticipantID() ParticipantID { return ParticipantID(uuid.New()) }

func (id ActivityID) String() string    { return uuid.UUID(id).String() }
func (id ParticipantID) String() string { return uuid.UUID(id).String() }

func (id ActivityID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ParticipantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseActivityID parses an invite token or path segment into an ActivityID.
func ParseActivityID(s string) (ActivityID, error) {
	u, err := parseUUID(s, "activity id")
	if err != nil {
		return ActivityID{}, err
	}
	return ActivityID(u), nil
}

// ParseParticipantID parses a participant key into a ParticipantID.
func ParseParticipantID(s string) (ParticipantID, error) {
	u, err := parseUUID(s, "participant id")
	if err != nil {
		return ParticipantID{}, err
	}
	return ParticipantID(u), nil
}

// canonicalLen is the length of the hyphenated form. uuid.Parse also accepts
// urn and braced spellings; those are rejected so a key has one spelling.
const canonicalLen = 36

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil || len(s) != canonicalLen {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
