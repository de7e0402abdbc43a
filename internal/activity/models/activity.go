package models

import (
	"strings"
	"time"

	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
)

const (
	MaxNameLength        = 128
	MaxDescriptionLength = 2000
)

// MinParticipantsToMatch is the smallest set that admits a derangement.
const MinParticipantsToMatch = 2

// Activity is the aggregate root for one gift exchange.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Status only moves forward (see Status)
//   - Name, Description and Deadline change only while OPEN
//   - MatchedAt is set exactly when Status left OPEN; RevealedAt when REVEALED
//
// The admin key is a bearer capability. Anyone holding it may administer the
// activity. Only its keyed digest is kept, so a leaked row does not grant
// admin access.
type Activity struct {
	ID             id.ActivityID
	AdminKeyDigest string
	Name           string
	Description    string
	Status         Status
	Deadline       time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	MatchedAt      *time.Time
	RevealedAt     *time.Time
}

// NewActivity builds an OPEN activity.
func NewActivity(activityID id.ActivityID, adminKeyDigest, name, description string, deadline, now time.Time) (*Activity, error) {
	if adminKeyDigest == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "admin key digest cannot be empty")
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if len(description) > MaxDescriptionLength {
		return nil, dErrors.New(dErrors.CodeValidation, "description must be 2000 characters or less")
	}
	if deadline.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "deadline is required")
	}
	return &Activity{
		ID:             activityID,
		AdminKeyDigest: adminKeyDigest,
		Name:           name,
		Description:    description,
		Status:         StatusOpen,
		Deadline:       deadline.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func validateName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be 128 characters or less")
	}
	return nil
}

func (a *Activity) IsOpen() bool { return a.Status == StatusOpen }

// DeadlinePassed reports whether signups are closed by time at now.
func (a *Activity) DeadlinePassed(now time.Time) bool {
	return !now.Before(a.Deadline)
}

// CanEdit checks that name, description and deadline may still change.
func (a *Activity) CanEdit() error {
	if !a.IsOpen() {
		return dErrors.New(dErrors.CodeInvalidState, "activity can only be edited while open")
	}
	return nil
}

// Edit holds the optional fields of an administrative update.
type Edit struct {
	Name        *string
	Description *string
	Deadline    *time.Time
}

func (e Edit) IsEmpty() bool {
	return e.Name == nil && e.Description == nil && e.Deadline == nil
}

// ApplyEdit validates and applies e. Call CanEdit first.
func (a *Activity) ApplyEdit(e Edit, now time.Time) error {
	if e.Name != nil {
		name := strings.TrimSpace(*e.Name)
		if err := validateName(name); err != nil {
			return err
		}
		a.Name = name
	}
	if e.Description != nil {
		if len(*e.Description) > MaxDescriptionLength {
			return dErrors.New(dErrors.CodeValidation, "description must be 2000 characters or less")
		}
		a.Description = *e.Description
	}
	if e.Deadline != nil {
		if e.Deadline.IsZero() {
			return dErrors.New(dErrors.CodeValidation, "deadline cannot be cleared")
		}
		a.Deadline = e.Deadline.UTC()
	}
	a.UpdatedAt = now
	return nil
}

// CanAcceptSignup checks that a new participant may join at now.
func (a *Activity) CanAcceptSignup(now time.Time) error {
	if !a.IsOpen() {
		return dErrors.New(dErrors.CodeInvalidState, "activity is no longer accepting signups")
	}
	if a.DeadlinePassed(now) {
		return dErrors.New(dErrors.CodePreconditionFailed, "signup deadline has passed")
	}
	return nil
}

// CanRemoveParticipant checks that the participant set may still shrink.
// Removing someone after matching would break the assignment cycle.
func (a *Activity) CanRemoveParticipant() error {
	if !a.IsOpen() {
		return dErrors.New(dErrors.CodeInvalidState, "participants can only be removed while the activity is open")
	}
	return nil
}

// CanMatch checks the OPEN → MATCHED preconditions for count participants.
func (a *Activity) CanMatch(count int) error {
	if !a.Status.CanTransitionTo(StatusMatched) {
		return dErrors.New(dErrors.CodeInvalidState, "activity has already been matched")
	}
	if count < MinParticipantsToMatch {
		return dErrors.New(dErrors.CodePreconditionFailed, "at least 2 participants are required to run matching")
	}
	return nil
}

// ApplyMatched records the OPEN → MATCHED transition. Call CanMatch first.
func (a *Activity) ApplyMatched(now time.Time) {
	a.Status = StatusMatched
	a.MatchedAt = &now
	a.UpdatedAt = now
}

// CanRevealSenders checks the MATCHED → REVEALED precondition.
func (a *Activity) CanRevealSenders() error {
	if !a.Status.CanTransitionTo(StatusRevealed) {
		if a.Status == StatusRevealed {
			return dErrors.New(dErrors.CodeInvalidState, "senders have already been revealed")
		}
		return dErrors.New(dErrors.CodeInvalidState, "senders can only be revealed after matching")
	}
	return nil
}

// ApplyRevealed records the MATCHED → REVEALED transition.
// Call CanRevealSenders first.
func (a *Activity) ApplyRevealed(now time.Time) {
	a.Status = StatusRevealed
	a.RevealedAt = &now
	a.UpdatedAt = now
}
