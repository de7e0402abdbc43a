package matching

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsanta/internal/activity/models"
	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
)

func newIDs(n int) []id.ParticipantID {
	ids := make([]id.ParticipantID, n)
	for i := range ids {
		ids[i] = id.NewParticipantID()
	}
	return ids
}

// fixedRand always draws the same index, clamped into range.
type fixedRand int

func (f fixedRand) IntN(n int) int { return min(int(f), n-1) }

func TestDerange(t *testing.T) {
	t.Run("rejects fewer than two participants", func(t *testing.T) {
		for _, n := range []int{0, 1} {
			_, err := Derange(newIDs(n), NewSeededRand(1))
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodePreconditionFailed))
		}
	})

	t.Run("two participants swap", func(t *testing.T) {
		ids := newIDs(2)
		got, err := Derange(ids, NewSeededRand(7))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, got[0].Giver, got[1].Target)
		assert.Equal(t, got[1].Giver, got[0].Target)
	})

	t.Run("identity shuffle pairs neighbours", func(t *testing.T) {
		// j == i on every step leaves the order untouched
		ids := newIDs(4)
		got, err := Derange(ids, identityRand{})
		require.NoError(t, err)
		assert.Equal(t, []models.Assignment{
			{Giver: ids[0], Target: ids[1]},
			{Giver: ids[1], Target: ids[2]},
			{Giver: ids[2], Target: ids[3]},
			{Giver: ids[3], Target: ids[0]},
		}, got)
	})

	t.Run("does not modify input", func(t *testing.T) {
		ids := newIDs(6)
		before := append([]id.ParticipantID(nil), ids...)
		_, err := Derange(ids, fixedRand(0))
		require.NoError(t, err)
		assert.Equal(t, before, ids)
	})

	t.Run("same seed same result", func(t *testing.T) {
		ids := newIDs(10)
		a, err := Derange(ids, NewSeededRand(42))
		require.NoError(t, err)
		b, err := Derange(ids, NewSeededRand(42))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("valid single cycle across sizes and seeds", func(t *testing.T) {
		for n := 2; n <= 40; n++ {
			ids := newIDs(n)
			for seed := range uint64(25) {
				got, err := Derange(ids, NewSeededRand(seed))
				require.NoError(t, err)
				require.NoError(t, Validate(got, ids), "n=%d seed=%d", n, seed)
				require.True(t, IsSingleCycle(got), "n=%d seed=%d", n, seed)
			}
		}
	})

	t.Run("secure rand produces valid assignments", func(t *testing.T) {
		rng, err := NewSecureRand()
		require.NoError(t, err)
		ids := newIDs(12)
		got, err := Derange(ids, rng)
		require.NoError(t, err)
		assert.NoError(t, Validate(got, ids))
	})
}

// identityRand returns the largest index, so each swap is a no-op.
type identityRand struct{}

func (identityRand) IntN(n int) int { return n - 1 }

func TestDerangeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every participant gives once, receives once, never to themselves", prop.ForAll(
		func(n int, seed uint64) bool {
			ids := newIDs(n)
			got, err := Derange(ids, NewSeededRand(seed))
			if err != nil {
				return false
			}
			return Validate(got, ids) == nil
		},
		gen.IntRange(2, 64),
		gen.UInt64(),
	))

	properties.Property("assignments form one cycle", prop.ForAll(
		func(n int, seed uint64) bool {
			got, err := Derange(newIDs(n), NewSeededRand(seed))
			return err == nil && IsSingleCycle(got)
		},
		gen.IntRange(2, 64),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestValidate(t *testing.T) {
	ids := newIDs(3)
	a, b, c := ids[0], ids[1], ids[2]
	stranger := id.NewParticipantID()

	tests := []struct {
		name        string
		assignments []models.Assignment
		ids         []id.ParticipantID
		wantErr     bool
	}{
		{
			name:        "valid cycle",
			assignments: []models.Assignment{{Giver: a, Target: b}, {Giver: b, Target: c}, {Giver: c, Target: a}},
			ids:         ids,
		},
		{
			name:        "self assignment",
			assignments: []models.Assignment{{Giver: a, Target: a}, {Giver: b, Target: c}, {Giver: c, Target: b}},
			ids:         ids,
			wantErr:     true,
		},
		{
			name:        "missing assignment",
			assignments: []models.Assignment{{Giver: a, Target: b}, {Giver: b, Target: a}},
			ids:         ids,
			wantErr:     true,
		},
		{
			name:        "target receives twice",
			assignments: []models.Assignment{{Giver: a, Target: b}, {Giver: b, Target: c}, {Giver: c, Target: b}},
			ids:         ids,
			wantErr:     true,
		},
		{
			name:        "giver gives twice",
			assignments: []models.Assignment{{Giver: a, Target: b}, {Giver: a, Target: c}, {Giver: c, Target: a}},
			ids:         ids,
			wantErr:     true,
		},
		{
			name:        "target outside activity",
			assignments: []models.Assignment{{Giver: a, Target: b}, {Giver: b, Target: stranger}, {Giver: c, Target: a}},
			ids:         ids,
			wantErr:     true,
		},
		{
			name:        "duplicate id in participant list",
			assignments: []models.Assignment{{Giver: a, Target: b}, {Giver: b, Target: a}},
			ids:         []id.ParticipantID{a, a},
			wantErr:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.assignments, tt.ids)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestIsSingleCycle(t *testing.T) {
	ids := newIDs(4)
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	assert.True(t, IsSingleCycle([]models.Assignment{{Giver: a, Target: b}, {Giver: b, Target: c}, {Giver: c, Target: d}, {Giver: d, Target: a}}))
	// two disjoint swaps are a valid derangement but not one cycle
	assert.False(t, IsSingleCycle([]models.Assignment{{Giver: a, Target: b}, {Giver: b, Target: a}, {Giver: c, Target: d}, {Giver: d, Target: c}}))
	assert.False(t, IsSingleCycle(nil))
}
