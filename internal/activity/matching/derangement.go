package matching

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"

	"secretsanta/internal/activity/models"
	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
)

// Rand is the source of uniform integers the shuffle draws from.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	// IntN returns a uniform value in [0, n).
	IntN(n int) int
}

// NewSecureRand returns a ChaCha8 generator seeded from crypto/rand. The
// result is not safe for concurrent use.
func NewSecureRand() (*rand.Rand, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("seed matching rng: %w", err)
	}
	return rand.New(rand.NewChaCha8(seed)), nil
}

// NewSeededRand returns a deterministic PCG generator for tests and replays.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Derange shuffles ids with Fisher–Yates and links each position to the next,
// wrapping around. The result is one cycle through every participant, so no
// one is assigned to themselves. ids is not modified.
//
// This deliberately samples single n-cycles only, not every derangement.
func Derange(ids []id.ParticipantID, rng Rand) ([]models.Assignment, error) {
	n := len(ids)
	if n < models.MinParticipantsToMatch {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "at least 2 participants are required to run matching")
	}

	order := make([]id.ParticipantID, n)
	copy(order, ids)
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	assignments := make([]models.Assignment, n)
	for i, giver := range order {
		assignments[i] = models.Assignment{Giver: giver, Target: order[(i+1)%n]}
	}
	return assignments, nil
}

// Validate checks that assignments is a derangement of ids: every id gives
// exactly once, receives exactly once, and never to itself.
func Validate(assignments []models.Assignment, ids []id.ParticipantID) error {
	if len(assignments) != len(ids) {
		return invariant("expected %d assignments, got %d", len(ids), len(assignments))
	}
	members := make(map[id.ParticipantID]struct{}, len(ids))
	for _, pid := range ids {
		if _, dup := members[pid]; dup {
			return invariant("participant %s listed twice", pid)
		}
		members[pid] = struct{}{}
	}

	gives := make(map[id.ParticipantID]struct{}, len(ids))
	receives := make(map[id.ParticipantID]struct{}, len(ids))
	for _, a := range assignments {
		if a.Giver == a.Target {
			return invariant("participant %s is assigned to themselves", a.Giver)
		}
		if _, ok := members[a.Giver]; !ok {
			return invariant("giver %s is not a participant", a.Giver)
		}
		if _, ok := members[a.Target]; !ok {
			return invariant("target %s is not a participant", a.Target)
		}
		if _, dup := gives[a.Giver]; dup {
			return invariant("participant %s gives more than once", a.Giver)
		}
		if _, dup := receives[a.Target]; dup {
			return invariant("participant %s receives more than once", a.Target)
		}
		gives[a.Giver] = struct{}{}
		receives[a.Target] = struct{}{}
	}
	return nil
}

// IsSingleCycle reports whether following targets from any giver visits every
// participant before returning to the start.
func IsSingleCycle(assignments []models.Assignment) bool {
	if len(assignments) == 0 {
		return false
	}
	next := make(map[id.ParticipantID]id.ParticipantID, len(assignments))
	for _, a := range assignments {
		next[a.Giver] = a.Target
	}
	start := assignments[0].Giver
	cur := start
	for steps := 1; steps <= len(assignments); steps++ {
		nxt, ok := next[cur]
		if !ok {
			return false
		}
		cur = nxt
		if cur == start {
			return steps == len(assignments)
		}
	}
	return false
}

func invariant(format string, args ...any) error {
	return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf(format, args...))
}
