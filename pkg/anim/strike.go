package anim

import (
	"math"
	"time"

	"battle-display/pkg/battle"
)

// Attack is the attacker's out-and-back lunge. It fires the hit once per
// attack, on the first update at or past HitAt progress.
type Attack struct {
	Duration  time.Duration
	MaxOffset float64
	HitAt     float64

	active       bool
	start        time.Time
	attacker     battle.Side
	hitTriggered bool
}

func (a *Attack) Start(now time.Time, attacker battle.Side) {
	a.active = true
	a.start = now
	a.attacker = attacker
	a.hitTriggered = false
}

func (a *Attack) Reset() {
	a.active = false
	a.hitTriggered = false
}

func (a *Attack) Active() bool          { return a.active }
func (a *Attack) Attacker() battle.Side { return a.attacker }

// Update returns the lunge offset for now and whether the hit should start
// on this update. A tick that lands after the attack has finished still
// fires a hit that was never fired.
func (a *Attack) Update(now time.Time) (offset float64, hit bool) {
	if !a.active {
		return 0, false
	}

	elapsed := now.Sub(a.start)
	if elapsed >= a.Duration {
		hit = !a.hitTriggered
		a.active = false
		a.hitTriggered = false
		return 0, hit
	}

	progress := float64(elapsed) / float64(a.Duration)
	if progress < 0 {
		progress = 0
	}
	offset = math.Sin(progress*math.Pi) * a.MaxOffset

	if !a.hitTriggered && progress >= a.HitAt {
		a.hitTriggered = true
		hit = true
	}
	return offset, hit
}

// Hit is the defender's flash: visible for FlashInterval, hidden for
// FlashInterval, until Duration runs out.
type Hit struct {
	Duration      time.Duration
	FlashInterval time.Duration

	active   bool
	start    time.Time
	defender battle.Side
}

func (h *Hit) Start(now time.Time, defender battle.Side) {
	h.active = true
	h.start = now
	h.defender = defender
}

func (h *Hit) Reset()                { h.active = false }
func (h *Hit) Active() bool          { return h.active }
func (h *Hit) Defender() battle.Side { return h.defender }

// Update ends the flash once Duration has passed
func (h *Hit) Update(now time.Time) {
	if h.active && now.Sub(h.start) >= h.Duration {
		h.active = false
	}
}

// Visible reports whether side should be drawn at now
func (h *Hit) Visible(side battle.Side, now time.Time) bool {
	if !h.active || side != h.defender {
		return true
	}
	elapsed := now.Sub(h.start)
	if elapsed >= h.Duration || h.FlashInterval <= 0 {
		return true
	}
	return elapsed%(2*h.FlashInterval) < h.FlashInterval
}
