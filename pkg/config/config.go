package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"battle-display/pkg/arena"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidMode = errors.New("invalid mode")
	ErrInvalid     = errors.New("invalid config")
)

// Colors are "#rrggbb" / "#rrggbbaa" strings
type Colors struct {
	Background string `yaml:"background"`
	Text       string `yaml:"text"`
	HPTrack    string `yaml:"hp_track"`
	HPHigh     string `yaml:"hp_high"`
	HPMid      string `yaml:"hp_mid"`
	HPLow      string `yaml:"hp_low"`
}

type Config struct {
	Port       string `yaml:"port"`
	AssetsDir  string `yaml:"assets_dir"`
	RosterPath string `yaml:"roster_path"`
	RosterURL  string `yaml:"roster_url"`
	Background string `yaml:"background"`
	FontPath   string `yaml:"font_path"`

	Mode  string `yaml:"mode"`
	Scale int    `yaml:"scale"`
	FPS   int    `yaml:"fps"`

	LogLevel string `yaml:"log_level"`
	LogDev   bool   `yaml:"log_dev"`

	TurnInterval  time.Duration `yaml:"turn_interval"`
	SwapInterval  time.Duration `yaml:"swap_interval"`
	GuardWindow   time.Duration `yaml:"guard_window"`
	WinnerDisplay time.Duration `yaml:"winner_display"`
	RestartDelay  time.Duration `yaml:"restart_delay"`
	MinDamage     float64       `yaml:"min_damage"`
	MaxDamage     float64       `yaml:"max_damage"`

	Colors Colors `yaml:"colors"`
}

func Default() Config {
	a := arena.DefaultConfig()
	return Config{
		Port:       "8080",
		AssetsDir:  "assets",
		RosterPath: "assets/pokemon.json",
		Background: "background.png",

		Mode:  string(arena.ModeBattle),
		Scale: 4,
		FPS:   30,

		LogLevel: "info",

		TurnInterval:  a.TurnInterval,
		SwapInterval:  a.SwapInterval,
		GuardWindow:   a.GuardWindow,
		WinnerDisplay: a.WinnerDisplay,
		RestartDelay:  a.RestartDelay,
		MinDamage:     a.MinDamage,
		MaxDamage:     a.MaxDamage,

		Colors: Colors{
			Background: "#f8f8f8",
			Text:       "#181818",
			HPTrack:    "#505050",
			HPHigh:     "#30c060",
			HPMid:      "#e0c020",
			HPLow:      "#e03030",
		},
	}
}

// Load builds the config: defaults, then the YAML file (path, or CONFIG_FILE
// when path is empty), then the environment. A .env file in the working
// directory is loaded into the environment first; existing variables win.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"PORT":        &c.Port,
		"ASSETS_DIR":  &c.AssetsDir,
		"ROSTER_PATH": &c.RosterPath,
		"ROSTER_URL":  &c.RosterURL,
		"MODE":        &c.Mode,
		"LOG_LEVEL":   &c.LogLevel,
		"FONT_PATH":   &c.FontPath,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SCALE": &c.Scale,
		"FPS":   &c.FPS,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv("LOG_DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: LOG_DEV=%q", ErrInvalid, v)
		}
		c.LogDev = b
	}
	return nil
}

// Validate rejects unknown modes and non-positive timings
func (c Config) Validate() error {
	switch arena.Mode(c.Mode) {
	case arena.ModeBattle, arena.ModeSwap:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"turn_interval", c.TurnInterval},
		{"swap_interval", c.SwapInterval},
		{"guard_window", c.GuardWindow},
		{"winner_display", c.WinnerDisplay},
		{"restart_delay", c.RestartDelay},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, d.name, d.d)
		}
	}

	if c.MinDamage < 0 || c.MaxDamage > 1 || c.MinDamage > c.MaxDamage {
		return fmt.Errorf("%w: damage range [%g, %g]", ErrInvalid, c.MinDamage, c.MaxDamage)
	}
	if c.Scale <= 0 || c.FPS <= 0 {
		return fmt.Errorf("%w: scale and fps must be positive", ErrInvalid)
	}
	return nil
}

// Arena maps the file/env config onto the orchestrator config for its mode
func (c Config) Arena() arena.Config {
	a := arena.ForMode(arena.Mode(c.Mode))
	a.TurnInterval = c.TurnInterval
	a.SwapInterval = c.SwapInterval
	a.GuardWindow = c.GuardWindow
	a.WinnerDisplay = c.WinnerDisplay
	a.RestartDelay = c.RestartDelay
	a.MinDamage = c.MinDamage
	a.MaxDamage = c.MaxDamage
	return a
}

// FrameInterval is the driver's tick period
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}
