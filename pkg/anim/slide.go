package anim

import "time"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseExiting
	PhaseEntering
)

func (p Phase) String() string {
	switch p {
	case PhaseExiting:
		return "exiting"
	case PhaseEntering:
		return "entering"
	}
	return "idle"
}

// Slide moves one slot's sprite along a single axis between its home
// position and a fixed off-screen position.
type Slide struct {
	Home      float64
	OffScreen float64
	Duration  time.Duration

	phase  Phase
	start  time.Time
	offset float64
}

func NewSlide(home, offScreen float64, d time.Duration) *Slide {
	return &Slide{Home: home, OffScreen: offScreen, Duration: d, offset: home}
}

func (s *Slide) Phase() Phase       { return s.phase }
func (s *Slide) Offset() float64    { return s.offset }
func (s *Slide) Started() time.Time { return s.start }

// Exit starts sliding out from home
func (s *Slide) Exit(now time.Time) {
	s.phase = PhaseExiting
	s.start = now
	s.offset = s.Home
}

// Enter starts sliding back in from off-screen
func (s *Slide) Enter(now time.Time) {
	s.phase = PhaseEntering
	s.start = now
	s.offset = s.OffScreen
}

// Settle parks the sprite at home with no animation
func (s *Slide) Settle() {
	s.phase = PhaseIdle
	s.offset = s.Home
}

// Update derives the offset for now. An exit holds off-screen once done;
// an entry snaps home and goes idle.
func (s *Slide) Update(now time.Time) float64 {
	switch s.phase {
	case PhaseExiting:
		s.offset = s.at(now, s.Home, s.OffScreen)
	case PhaseEntering:
		if now.Sub(s.start) >= s.Duration {
			s.Settle()
		} else {
			s.offset = s.at(now, s.OffScreen, s.Home)
		}
	default:
		s.offset = s.Home
	}
	return s.offset
}

func (s *Slide) at(now time.Time, from, to float64) float64 {
	elapsed := now.Sub(s.start)
	if elapsed >= s.Duration || s.Duration <= 0 {
		return to
	}
	if elapsed < 0 {
		return from
	}
	return Lerp(from, to, float64(elapsed)/float64(s.Duration))
}

// Hidden reports whether the sprite is more than margin past the
// off-screen position, in the direction it exits.
func (s *Slide) Hidden(margin float64) bool {
	if s.OffScreen < s.Home {
		return s.offset < s.OffScreen-margin
	}
	return s.offset > s.OffScreen+margin
}

func Lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
