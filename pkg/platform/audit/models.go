package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers events that change who may see whose personal data.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers credential use worth alerting on.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine lifecycle activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// ActivityID scopes the event; every event belongs to one activity.
	ActivityID    string `json:"activity_id"`
	ParticipantID string `json:"participant_id,omitempty"`
	// ActorRole is "admin" or "participant", never the key itself.
	ActorRole string `json:"actor_role,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	Device    string `json:"device,omitempty"`
}

// Store persists events. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can read events back.
type Lister interface {
	ListByActivity(ctx context.Context, activityID string) ([]Event, error)
}

type AuditEvent string

const (
	EventActivityCreated    AuditEvent = "activity_created"
	EventActivityUpdated    AuditEvent = "activity_updated"
	EventParticipantJoined  AuditEvent = "participant_joined"
	EventParticipantRemoved AuditEvent = "participant_removed"
	EventActivityMatched    AuditEvent = "activity_matched"
	EventSendersRevealed    AuditEvent = "senders_revealed"
	EventRevealViewed       AuditEvent = "reveal_viewed"
	EventAdminKeyRejected   AuditEvent = "admin_key_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventParticipantJoined:  CategoryCompliance,
	EventParticipantRemoved: CategoryCompliance,
	EventActivityMatched:    CategoryCompliance,
	EventSendersRevealed:    CategoryCompliance,

	EventAdminKeyRejected: CategorySecurity,

	EventActivityCreated: CategoryOperations,
	EventActivityUpdated: CategoryOperations,
	EventRevealViewed:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
