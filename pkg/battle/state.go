package battle

import (
	"image"
	"time"

	"battle-display/pkg/roster"

	"github.com/google/uuid"
)

// Side is a slot position, not a creature
type Side int

const (
	Front Side = iota
	Back
)

func (s Side) Opponent() Side { return 1 - s }

func (s Side) String() string {
	if s == Front {
		return "front"
	}
	return "back"
}

// Slot is one combatant position
type Slot struct {
	Name   string
	Health float64
	Sprite image.Image
	Data   roster.Creature
}

// Winner is the creature carried into the next battle
type Winner struct {
	Creature roster.Creature
	Side     Side
}

type OutcomeKind int

const (
	Ongoing OutcomeKind = iota
	BothFainted
	Won
)

type Outcome struct {
	Kind   OutcomeKind
	Winner Side // valid when Kind == Won
}

func (o Outcome) Ended() bool { return o.Kind != Ongoing }

func (o Outcome) String() string {
	switch o.Kind {
	case BothFainted:
		return "both fainted"
	case Won:
		return o.Winner.String() + " won"
	}
	return "ongoing"
}

// State is the battle currently on screen
type State struct {
	ID            uuid.UUID
	Slots         [2]Slot
	Turn          Side
	Active        bool
	ProcessingEnd bool
	EndedAt       time.Time
}

func (s *State) Slot(side Side) *Slot { return &s.Slots[side] }

// Reset starts a fresh battle. Sprites are left alone; the caller decides
// which slots keep theirs.
func (s *State) Reset(front, back roster.Creature, first Side) {
	s.ID = uuid.New()
	for side, c := range [2]roster.Creature{front, back} {
		slot := &s.Slots[side]
		slot.Data = c
		slot.Name = c.Name
		slot.Health = 1
	}
	s.Turn = first
	s.Active = true
	s.ProcessingEnd = false
	s.EndedAt = time.Time{}
}

// ApplyDamage hits the attacker's opponent and returns its new health
func (s *State) ApplyDamage(attacker Side, amount float64) float64 {
	def := s.Slot(attacker.Opponent())
	def.Health = Clamp01(def.Health - amount)
	return def.Health
}

// CheckEnd reports the outcome implied by the two health values
func (s *State) CheckEnd() Outcome {
	front, back := s.Slots[Front].Health, s.Slots[Back].Health
	switch {
	case front <= 0 && back <= 0:
		return Outcome{Kind: BothFainted}
	case front <= 0:
		return Outcome{Kind: Won, Winner: Back}
	case back <= 0:
		return Outcome{Kind: Won, Winner: Front}
	}
	return Outcome{Kind: Ongoing}
}

func (s *State) AdvanceTurn() { s.Turn = s.Turn.Opponent() }

// End closes the battle in one step so no later tick sees it active.
// It returns the winner record, nil on a double knockout.
func (s *State) End(now time.Time, o Outcome) *Winner {
	s.Active = false
	s.ProcessingEnd = true
	s.EndedAt = now

	if o.Kind != Won {
		return nil
	}
	return &Winner{Creature: s.Slots[o.Winner].Data, Side: o.Winner}
}

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
