// Package ports declares the persistence and cipher boundaries shared by the
// activity service and the matching engine, so one concrete store satisfies
// both.
//
// Store methods report facts with pkg/platform/sentinel errors
// (ErrNotFound, ErrConflict, ErrInvalidState); callers translate them into
// domain error codes.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

import (
	"context"
	"time"

	"secretsanta/internal/activity/models"
	id "secretsanta/pkg/domain"
)

// Reader serves single-statement reads outside any transaction.
type Reader interface {
	FindActivity(ctx context.Context, activityID id.ActivityID) (*models.Activity, error)
	// FindActivityByAdminDigest looks an activity up by its admin key digest.
	FindActivityByAdminDigest(ctx context.Context, digest string) (*models.Activity, error)
	FindParticipant(ctx context.Context, participantID id.ParticipantID) (*models.Participant, error)
	// FindSender returns the participant whose target is targetID.
	FindSender(ctx context.Context, targetID id.ParticipantID) (*models.Participant, error)
	// ListParticipants returns participants in signup order.
	ListParticipants(ctx context.Context, activityID id.ActivityID) ([]*models.Participant, error)
	CountParticipants(ctx context.Context, activityID id.ActivityID) (int, error)
}

// TxStore is the store as seen from inside RunInTx. Nothing it writes is
// visible to others until the transaction commits.
type TxStore interface {
	// LockActivity loads the activity and holds it against concurrent
	// transactions until commit or rollback.
	LockActivity(ctx context.Context, activityID id.ActivityID) (*models.Activity, error)
	// ListParticipantIDs returns ids in signup order.
	ListParticipantIDs(ctx context.Context, activityID id.ActivityID) ([]id.ParticipantID, error)
	CreateActivity(ctx context.Context, activity *models.Activity) error
	// UpdateActivity persists the editable fields: name, description, deadline.
	UpdateActivity(ctx context.Context, activity *models.Activity) error
	// CreateParticipant returns sentinel.ErrConflict when the nickname is taken.
	CreateParticipant(ctx context.Context, participant *models.Participant) error
	DeleteParticipant(ctx context.Context, activityID id.ActivityID, participantID id.ParticipantID) error
	// SetTargets writes every assignment in one batch.
	SetTargets(ctx context.Context, activityID id.ActivityID, assignments []models.Assignment) error
	// TransitionStatus moves the activity from one status to the next and
	// stamps at. It returns sentinel.ErrInvalidState when the activity is no
	// longer in from.
	TransitionStatus(ctx context.Context, activityID id.ActivityID, from, to models.Status, at time.Time) error
}

// StoreTx runs fn atomically. A non-nil error from fn rolls everything back.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(store TxStore) error) error
}

// Store is implemented by every backend.
type Store interface {
	Reader
	StoreTx
}

// FieldCipher protects shipping data at rest.
type FieldCipher interface {
	EncryptShipping(plain models.Shipping) (models.EncryptedShipping, error)
	DecryptShipping(sealed models.EncryptedShipping) (models.Shipping, error)
}
