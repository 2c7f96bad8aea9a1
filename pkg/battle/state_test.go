package battle

import (
	"math/rand"
	"testing"
	"time"

	"battle-display/pkg/roster"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pikachu = roster.Creature{Name: "Pikachu", File: "25.png"}
	eevee   = roster.Creature{Name: "Eevee", File: "133.png"}
)

func freshState(first Side) *State {
	s := &State{}
	s.Reset(pikachu, eevee, first)
	return s
}

func TestResetStartsActiveBattle(t *testing.T) {
	s := &State{}
	s.ProcessingEnd = true
	s.EndedAt = time.Now()
	s.Reset(pikachu, eevee, Back)

	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, "Pikachu", s.Slot(Front).Name)
	assert.Equal(t, "Eevee", s.Slot(Back).Name)
	assert.Equal(t, eevee, s.Slot(Back).Data)
	assert.Equal(t, 1.0, s.Slot(Front).Health)
	assert.Equal(t, 1.0, s.Slot(Back).Health)
	assert.Equal(t, Back, s.Turn)
	assert.True(t, s.Active)
	assert.False(t, s.ProcessingEnd)
	assert.True(t, s.EndedAt.IsZero())
}

func TestApplyDamageHitsOpponentAndClamps(t *testing.T) {
	s := freshState(Front)

	got := s.ApplyDamage(Front, 0.25)
	assert.InDelta(t, 0.75, got, 1e-9)
	assert.Equal(t, 1.0, s.Slot(Front).Health)

	s.Slot(Front).Health = 0.05
	assert.Equal(t, 0.0, s.ApplyDamage(Back, 0.3))
}

func TestApplyDamageStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := freshState(Front)
	for i := 0; i < 1000; i++ {
		h := rng.Float64()
		d := rng.Float64() * 0.3
		s.Slot(Back).Health = h
		got := s.ApplyDamage(Front, d)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 1.0)
	}
}

func TestCheckEnd(t *testing.T) {
	cases := []struct {
		name        string
		front, back float64
		want        Outcome
	}{
		{"front fainted", 0, 0.4, Outcome{Kind: Won, Winner: Back}},
		{"back fainted", 0.1, 0, Outcome{Kind: Won, Winner: Front}},
		{"double knockout", 0, 0, Outcome{Kind: BothFainted}},
		{"both standing", 0.2, 0.9, Outcome{Kind: Ongoing}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := freshState(Front)
			s.Slot(Front).Health = tc.front
			s.Slot(Back).Health = tc.back
			assert.Equal(t, tc.want, s.CheckEnd())
		})
	}
}

func TestTurnAlternationParity(t *testing.T) {
	for _, start := range []Side{Front, Back} {
		for n := 0; n < 9; n++ {
			s := freshState(start)
			for i := 0; i < n; i++ {
				s.AdvanceTurn()
			}
			if n%2 == 0 {
				assert.Equal(t, start, s.Turn, "n=%d", n)
			} else {
				assert.Equal(t, start.Opponent(), s.Turn, "n=%d", n)
			}
		}
	}
}

func TestEnd(t *testing.T) {
	now := time.Unix(1000, 0)

	s := freshState(Front)
	s.Slot(Front).Health = 0
	w := s.End(now, s.CheckEnd())
	require.NotNil(t, w)
	assert.Equal(t, Back, w.Side)
	assert.Equal(t, eevee, w.Creature)
	assert.False(t, s.Active)
	assert.True(t, s.ProcessingEnd)
	assert.Equal(t, now, s.EndedAt)

	s = freshState(Front)
	s.Slot(Front).Health = 0
	s.Slot(Back).Health = 0
	assert.Nil(t, s.End(now, s.CheckEnd()))
	assert.True(t, s.ProcessingEnd)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ongoing", Outcome{}.String())
	assert.Equal(t, "both fainted", Outcome{Kind: BothFainted}.String())
	assert.Equal(t, "back won", Outcome{Kind: Won, Winner: Back}.String())
	assert.False(t, Outcome{}.Ended())
}
