package arena

import (
	"time"

	"battle-display/pkg/anim"
)

type Mode string

const (
	// ModeBattle simulates turns, damage and victories
	ModeBattle Mode = "battle"
	// ModeSwap replaces both combatants on a fixed interval, no damage
	ModeSwap Mode = "swap"
)

type Config struct {
	Mode Mode

	// Animate enables slides, lunges and hit flashes
	Animate bool
	// Damage enables turns. Without it the arena swaps on SwapInterval.
	Damage bool

	TurnInterval  time.Duration
	SwapInterval  time.Duration
	GuardWindow   time.Duration
	WinnerDisplay time.Duration
	// RestartDelay is measured from the battle end, not from the end of
	// the winner display.
	RestartDelay time.Duration

	MinDamage float64
	MaxDamage float64

	Timing anim.Timing
}

func DefaultConfig() Config {
	return Config{
		Mode:          ModeBattle,
		Animate:       true,
		Damage:        true,
		TurnInterval:  5 * time.Minute,
		SwapInterval:  5 * time.Minute,
		GuardWindow:   50 * time.Millisecond,
		WinnerDisplay: 2 * time.Second,
		RestartDelay:  3 * time.Second,
		MinDamage:     0.10,
		MaxDamage:     0.30,
		Timing:        anim.DefaultTiming(),
	}
}

// SwapConfig is the plain auto-swap display: no transitions, no damage
func SwapConfig() Config {
	cfg := DefaultConfig()
	cfg.Mode = ModeSwap
	cfg.Animate = false
	cfg.Damage = false
	return cfg
}

// ForMode returns the defaults for mode
func ForMode(m Mode) Config {
	if m == ModeSwap {
		return SwapConfig()
	}
	return DefaultConfig()
}

func (c Config) interval() time.Duration {
	if c.Damage {
		return c.TurnInterval
	}
	return c.SwapInterval
}
