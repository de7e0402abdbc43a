// Package memory is an in-process activity store for development and tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
	id "secretsanta/pkg/domain"
	"secretsanta/pkg/platform/sentinel"
)

// Error Contract:
//   - ErrNotFound when the activity or participant does not exist
//   - ErrConflict when a nickname is already taken in the activity
//   - ErrInvalidState when TransitionStatus finds a different current status
//
// Transactions are serialized and run against a private copy of the state,
// which replaces the live state only when fn succeeds. Readers never observe
// a half-applied transaction.
type InMemoryStore struct {
	txMu sync.Mutex

	mu    sync.RWMutex
	state *state
}

type state struct {
	activities   map[id.ActivityID]*models.Activity
	adminDigests map[string]id.ActivityID
	participants map[id.ParticipantID]*models.Participant
	// order keeps participant ids per activity in signup order.
	order map[id.ActivityID][]id.ParticipantID
}

func newState() *state {
	return &state{
		activities:   make(map[id.ActivityID]*models.Activity),
		adminDigests: make(map[string]id.ActivityID),
		participants: make(map[id.ParticipantID]*models.Participant),
		order:        make(map[id.ActivityID][]id.ParticipantID),
	}
}

// clone deep-copies the maps. Records are copied on write, so sharing the
// pointers between the two states is safe.
func (st *state) clone() *state {
	order := make(map[id.ActivityID][]id.ParticipantID, len(st.order))
	for k, v := range st.order {
		order[k] = slices.Clone(v)
	}
	return &state{
		activities:   maps.Clone(st.activities),
		adminDigests: maps.Clone(st.adminDigests),
		participants: maps.Clone(st.participants),
		order:        order,
	}
}

func New() *InMemoryStore {
	return &InMemoryStore{state: newState()}
}

var _ ports.Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *InMemoryStore) FindActivity(_ context.Context, activityID id.ActivityID) (*models.Activity, error) {
	return s.snapshot().activity(activityID)
}

func (s *InMemoryStore) FindActivityByAdminDigest(_ context.Context, digest string) (*models.Activity, error) {
	st := s.snapshot()
	activityID, ok := st.adminDigests[digest]
	if !ok {
		return nil, fmt.Errorf("activity not found: %w", sentinel.ErrNotFound)
	}
	return st.activity(activityID)
}

func (s *InMemoryStore) FindParticipant(_ context.Context, participantID id.ParticipantID) (*models.Participant, error) {
	return s.snapshot().participant(participantID)
}

func (s *InMemoryStore) FindSender(_ context.Context, targetID id.ParticipantID) (*models.Participant, error) {
	st := s.snapshot()
	target, ok := st.participants[targetID]
	if !ok {
		return nil, fmt.Errorf("participant not found: %w", sentinel.ErrNotFound)
	}
	for _, pid := range st.order[target.ActivityID] {
		p := st.participants[pid]
		if p.TargetID != nil && *p.TargetID == targetID {
			return cloneParticipant(p), nil
		}
	}
	return nil, fmt.Errorf("sender not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListParticipants(_ context.Context, activityID id.ActivityID) ([]*models.Participant, error) {
	st := s.snapshot()
	ids := st.order[activityID]
	out := make([]*models.Participant, 0, len(ids))
	for _, pid := range ids {
		out = append(out, cloneParticipant(st.participants[pid]))
	}
	return out, nil
}

func (s *InMemoryStore) CountParticipants(_ context.Context, activityID id.ActivityID) (int, error) {
	return len(s.snapshot().order[activityID]), nil
}

// RunInTx applies fn atomically. Only one transaction runs at a time, which
// is what LockActivity promises.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(store ports.TxStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	work := s.snapshot().clone()
	if err := fn(&txStore{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

type txStore struct {
	st *state
}

func (t *txStore) LockActivity(_ context.Context, activityID id.ActivityID) (*models.Activity, error) {
	return t.st.activity(activityID)
}

func (t *txStore) ListParticipantIDs(_ context.Context, activityID id.ActivityID) ([]id.ParticipantID, error) {
	return slices.Clone(t.st.order[activityID]), nil
}

func (t *txStore) CreateActivity(_ context.Context, activity *models.Activity) error {
	if _, exists := t.st.activities[activity.ID]; exists {
		return fmt.Errorf("activity %s: %w", activity.ID, sentinel.ErrConflict)
	}
	if _, exists := t.st.adminDigests[activity.AdminKeyDigest]; exists {
		return fmt.Errorf("admin key digest already issued: %w", sentinel.ErrConflict)
	}
	t.st.activities[activity.ID] = cloneActivity(activity)
	t.st.adminDigests[activity.AdminKeyDigest] = activity.ID
	return nil
}

func (t *txStore) UpdateActivity(_ context.Context, activity *models.Activity) error {
	current, ok := t.st.activities[activity.ID]
	if !ok {
		return fmt.Errorf("activity not found: %w", sentinel.ErrNotFound)
	}
	updated := cloneActivity(current)
	updated.Name = activity.Name
	updated.Description = activity.Description
	updated.Deadline = activity.Deadline
	updated.UpdatedAt = activity.UpdatedAt
	t.st.activities[activity.ID] = updated
	return nil
}

func (t *txStore) CreateParticipant(_ context.Context, participant *models.Participant) error {
	if _, ok := t.st.activities[participant.ActivityID]; !ok {
		return fmt.Errorf("activity not found: %w", sentinel.ErrNotFound)
	}
	if _, exists := t.st.participants[participant.ID]; exists {
		return fmt.Errorf("participant %s: %w", participant.ID, sentinel.ErrConflict)
	}
	for _, pid := range t.st.order[participant.ActivityID] {
		if t.st.participants[pid].Nickname == participant.Nickname {
			return fmt.Errorf("nickname %q taken: %w", participant.Nickname, sentinel.ErrConflict)
		}
	}
	t.st.participants[participant.ID] = cloneParticipant(participant)
	t.st.order[participant.ActivityID] = append(t.st.order[participant.ActivityID], participant.ID)
	return nil
}

func (t *txStore) DeleteParticipant(_ context.Context, activityID id.ActivityID, participantID id.ParticipantID) error {
	p, ok := t.st.participants[participantID]
	if !ok || p.ActivityID != activityID {
		return fmt.Errorf("participant not found: %w", sentinel.ErrNotFound)
	}
	delete(t.st.participants, participantID)
	t.st.order[activityID] = slices.DeleteFunc(t.st.order[activityID], func(pid id.ParticipantID) bool {
		return pid == participantID
	})
	return nil
}

func (t *txStore) SetTargets(_ context.Context, activityID id.ActivityID, assignments []models.Assignment) error {
	for _, a := range assignments {
		p, ok := t.st.participants[a.Giver]
		if !ok || p.ActivityID != activityID {
			return fmt.Errorf("giver %s: %w", a.Giver, sentinel.ErrNotFound)
		}
		updated := cloneParticipant(p)
		target := a.Target
		updated.TargetID = &target
		t.st.participants[a.Giver] = updated
	}
	return nil
}

func (t *txStore) TransitionStatus(_ context.Context, activityID id.ActivityID, from, to models.Status, at time.Time) error {
	current, ok := t.st.activities[activityID]
	if !ok {
		return fmt.Errorf("activity not found: %w", sentinel.ErrNotFound)
	}
	if current.Status != from {
		return fmt.Errorf("activity is %s, not %s: %w", current.Status, from, sentinel.ErrInvalidState)
	}
	updated := cloneActivity(current)
	switch to {
	case models.StatusMatched:
		updated.ApplyMatched(at)
	case models.StatusRevealed:
		updated.ApplyRevealed(at)
	default:
		return fmt.Errorf("cannot transition to %s: %w", to, sentinel.ErrInvalidState)
	}
	t.st.activities[activityID] = updated
	return nil
}

func (st *state) activity(activityID id.ActivityID) (*models.Activity, error) {
	a, ok := st.activities[activityID]
	if !ok {
		return nil, fmt.Errorf("activity not found: %w", sentinel.ErrNotFound)
	}
	return cloneActivity(a), nil
}

func (st *state) participant(participantID id.ParticipantID) (*models.Participant, error) {
	p, ok := st.participants[participantID]
	if !ok {
		return nil, fmt.Errorf("participant not found: %w", sentinel.ErrNotFound)
	}
	return cloneParticipant(p), nil
}

func cloneActivity(a *models.Activity) *models.Activity {
	c := *a
	if a.MatchedAt != nil {
		t := *a.MatchedAt
		c.MatchedAt = &t
	}
	if a.RevealedAt != nil {
		t := *a.RevealedAt
		c.RevealedAt = &t
	}
	return &c
}

func cloneParticipant(p *models.Participant) *models.Participant {
	c := *p
	if p.TargetID != nil {
		t := *p.TargetID
		c.TargetID = &t
	}
	return &c
}
