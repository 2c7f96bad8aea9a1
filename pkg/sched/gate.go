package sched

import (
	"time"

	"battle-display/pkg/battle"
)

// Gate decides when a turn may run
type Gate struct {
	Interval time.Duration
	Guard    time.Duration

	lastTurn time.Time
}

func NewGate(interval, guard time.Duration) *Gate {
	return &Gate{Interval: interval, Guard: guard}
}

// Allowed is the guard shared by automatic and manual turns
func (g *Gate) Allowed(now time.Time, st *battle.State) bool {
	if !st.Active || st.ProcessingEnd {
		return false
	}
	return st.EndedAt.IsZero() || now.Sub(st.EndedAt) > g.Guard
}

// Due reports whether the automatic turn should fire
func (g *Gate) Due(now time.Time, st *battle.State) bool {
	return g.Allowed(now, st) && now.Sub(g.lastTurn) > g.Interval
}

// Mark restarts the interval from now
func (g *Gate) Mark(now time.Time) { g.lastTurn = now }

func (g *Gate) LastTurn() time.Time { return g.lastTurn }

// NextTurn is when the automatic turn becomes due
func (g *Gate) NextTurn() time.Time { return g.lastTurn.Add(g.Interval) }
