package anim

import (
	"time"

	"battle-display/pkg/battle"
)

// Timing holds every duration and distance the engine animates with
type Timing struct {
	Slide         time.Duration
	Attack        time.Duration
	Hit           time.Duration
	FlashInterval time.Duration
	LungeOffset   float64
	HitAt         float64
	HideMargin    float64
}

func DefaultTiming() Timing {
	return Timing{
		Slide:         500 * time.Millisecond,
		Attack:        300 * time.Millisecond,
		Hit:           400 * time.Millisecond,
		FlashInterval: 100 * time.Millisecond,
		LungeOffset:   10,
		HitAt:         0.4,
		HideMargin:    5,
	}
}

// Sprite home and off-screen positions in the 160x144 scene
const (
	FrontX         = 111.0
	FrontHomeY     = 5.0
	FrontOffY      = -50.0
	BackHomeX      = 10.0
	BackOffX       = -50.0
	BackY          = 43.0
	FrontSpriteDim = 40.0
	BackSpriteDim  = 50.0
)

// Pose is where each slot goes this frame
type Pose struct {
	FrontX, FrontY float64
	BackX, BackY   float64
	ShowFront      bool
	ShowBack       bool
	// HitStarted is set on the update that started a hit flash
	HitStarted bool
}

func (p Pose) Show(side battle.Side) bool {
	if side == battle.Front {
		return p.ShowFront
	}
	return p.ShowBack
}

// Engine drives the four animations: two slides, the lunge and the flash
type Engine struct {
	Timing Timing
	Slides [2]*Slide
	Attack Attack
	Hit    Hit
}

func NewEngine(t Timing) *Engine {
	return &Engine{
		Timing: t,
		Slides: [2]*Slide{
			battle.Front: NewSlide(FrontHomeY, FrontOffY, t.Slide),
			battle.Back:  NewSlide(BackHomeX, BackOffX, t.Slide),
		},
		Attack: Attack{Duration: t.Attack, MaxOffset: t.LungeOffset, HitAt: t.HitAt},
		Hit:    Hit{Duration: t.Hit, FlashInterval: t.FlashInterval},
	}
}

func (e *Engine) Slide(side battle.Side) *Slide { return e.Slides[side] }

// Strike starts an attack by attacker. The flash on the defender follows
// from Update once the lunge reaches its impact point.
func (e *Engine) Strike(now time.Time, attacker battle.Side) {
	e.Hit.Reset()
	e.Attack.Start(now, attacker)
}

// Reset clears the lunge and flash. Slides are left to the caller.
func (e *Engine) Reset() {
	e.Attack.Reset()
	e.Hit.Reset()
}

// Update advances every animation to now and returns the frame pose.
// hasSprite says which slots have something to draw.
func (e *Engine) Update(now time.Time, hasSprite [2]bool) Pose {
	attacker := e.Attack.Attacker()
	lunge, hit := e.Attack.Update(now)
	if hit {
		e.Hit.Start(now, attacker.Opponent())
	}
	e.Hit.Update(now)

	p := Pose{
		FrontX:     FrontX,
		FrontY:     e.Slides[battle.Front].Update(now),
		BackX:      e.Slides[battle.Back].Update(now),
		BackY:      BackY,
		HitStarted: hit,
	}
	if lunge != 0 {
		if attacker == battle.Front {
			p.FrontX -= lunge
		} else {
			p.BackX += lunge
		}
	}

	margin := e.Timing.HideMargin
	p.ShowFront = hasSprite[battle.Front] && !e.Slides[battle.Front].Hidden(margin) && e.Hit.Visible(battle.Front, now)
	p.ShowBack = hasSprite[battle.Back] && !e.Slides[battle.Back].Hidden(margin) && e.Hit.Visible(battle.Back, now)
	return p
}
