package arena

import (
	"time"

	"battle-display/pkg/battle"
)

type EventType string

const (
	EvtBattleStarted EventType = "battle_started"
	EvtTurn          EventType = "turn"
	EvtHit           EventType = "hit"
	EvtBattleEnded   EventType = "battle_ended"
	EvtSpriteLoaded  EventType = "sprite_loaded"
	EvtSpriteFailed  EventType = "sprite_failed"
)

// Event is published to listeners as the arena moves
type Event struct {
	Type     EventType `json:"type"`
	BattleID string    `json:"battleId"`
	Side     string    `json:"side,omitempty"`
	Name     string    `json:"name,omitempty"`
	Damage   float64   `json:"damage,omitempty"`
	Health   float64   `json:"health,omitempty"`
	Outcome  string    `json:"outcome,omitempty"`
	At       time.Time `json:"at"`
}

type SlotView struct {
	Name      string  `json:"name"`
	Health    float64 `json:"health"`
	HasSprite bool    `json:"hasSprite"`
	Visible   bool    `json:"visible"`
	Phase     string  `json:"phase"`
}

// Snapshot is a read-only view of the arena for the HTTP surface
type Snapshot struct {
	BattleID      string    `json:"battleId"`
	Mode          Mode      `json:"mode"`
	Active        bool      `json:"active"`
	ProcessingEnd bool      `json:"processingEnd"`
	Turn          string    `json:"turn"`
	Front         SlotView  `json:"front"`
	Back          SlotView  `json:"back"`
	Winner        string    `json:"winner,omitempty"`
	Attacking     string    `json:"attacking,omitempty"`
	Flashing      string    `json:"flashing,omitempty"`
	LastTurn      time.Time `json:"lastTurn"`
	NextTurn      time.Time `json:"nextTurn"`
	Generation    uint64    `json:"generation"`
	RosterSize    int       `json:"rosterSize"`
	At            time.Time `json:"at"`
}

func (o *Orchestrator) Snapshot() Snapshot {
	s := Snapshot{
		BattleID:      o.state.ID.String(),
		Mode:          o.cfg.Mode,
		Active:        o.state.Active,
		ProcessingEnd: o.state.ProcessingEnd,
		Turn:          o.state.Turn.String(),
		Front:         o.slotView(battle.Front),
		Back:          o.slotView(battle.Back),
		LastTurn:      o.gate.LastTurn(),
		NextTurn:      o.gate.NextTurn(),
		Generation:    o.generation,
		RosterSize:    len(o.roster),
		At:            o.clock.Now(),
	}
	if o.replay.active {
		s.Winner = o.replay.name
	}
	if o.anim.Attack.Active() {
		s.Attacking = o.anim.Attack.Attacker().String()
	}
	if o.anim.Hit.Active() {
		s.Flashing = o.anim.Hit.Defender().String()
	}
	return s
}

func (o *Orchestrator) slotView(side battle.Side) SlotView {
	slot := o.state.Slot(side)
	return SlotView{
		Name:      slot.Name,
		Health:    slot.Health,
		HasSprite: slot.Sprite != nil,
		Visible:   o.pose.Show(side),
		Phase:     o.anim.Slide(side).Phase().String(),
	}
}
