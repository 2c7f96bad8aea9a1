package arena

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"time"

	"battle-display/pkg/roster"

	"go.uber.org/zap"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

var (
	pikachu    = roster.Creature{Name: "Pikachu", File: "25.png"}
	eevee      = roster.Creature{Name: "Eevee", File: "133.png"}
	jigglypuff = roster.Creature{Name: "Jigglypuff", File: "39.png"}
)

func threeCreatures() []roster.Creature {
	return []roster.Creature{pikachu, eevee, jigglypuff}
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Set(d time.Duration)     { c.now = t0.Add(d) }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// scriptRand replays fixed values, then falls back to a counter
type scriptRand struct {
	floats []float64
	ints   []int
	n      int
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptRand) Intn(n int) int {
	if len(r.ints) == 0 {
		r.n++
		return r.n % n
	}
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

// fakeLoader answers synchronously, or holds callbacks when deferred
type fakeLoader struct {
	missing  map[string]bool
	deferred bool
	calls    []string
	held     []func()
	images   map[string]image.Image
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{missing: map[string]bool{}, images: map[string]image.Image{}}
}

func (l *fakeLoader) image(path string) image.Image {
	if img, ok := l.images[path]; ok {
		return img
	}
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	l.images[path] = img
	return img
}

func (l *fakeLoader) Load(path string, done func(image.Image, error)) {
	l.calls = append(l.calls, path)
	answer := func() {
		if l.missing[path] {
			done(nil, errors.New("missing "+path))
			return
		}
		done(l.image(path), nil)
	}
	if l.deferred {
		l.held = append(l.held, answer)
		return
	}
	answer()
}

func (l *fakeLoader) release() {
	held := l.held
	l.held = nil
	for _, fn := range held {
		fn()
	}
}

func front(c roster.Creature) string { return filepath.Join("front", c.File) }
func back(c roster.Creature) string  { return filepath.Join("back", c.File) }

type harness struct {
	o      *Orchestrator
	clock  *fakeClock
	rng    *scriptRand
	loader *fakeLoader
	events []Event
}

func newHarness(cfg Config, creatures []roster.Creature, rng *scriptRand) *harness {
	h := &harness{clock: &fakeClock{now: t0}, rng: rng, loader: newFakeLoader()}
	h.o = New(cfg, creatures, h.loader, h.clock, h.rng, zap.NewNop())
	h.o.OnEvent(func(ev Event) { h.events = append(h.events, ev) })
	return h
}

// tickAt moves the clock to t0+d and ticks
func (h *harness) tickAt(d time.Duration) {
	h.clock.Set(d)
	h.o.Tick()
}

func (h *harness) eventTypes() []EventType {
	var out []EventType
	for _, ev := range h.events {
		out = append(out, ev.Type)
	}
	return out
}

// recordRenderer logs draw calls. Every rune is 4 units wide.
type recordRenderer struct {
	ops []string
}

func (r *recordRenderer) Clear()          { r.ops = append(r.ops, "clear") }
func (r *recordRenderer) DrawBackground() { r.ops = append(r.ops, "background") }

func (r *recordRenderer) DrawImage(img image.Image, x, y, w, h float64) {
	r.ops = append(r.ops, fmt.Sprintf("image %.0f,%.0f %.0fx%.0f", x, y, w, h))
}

func (r *recordRenderer) DrawImageTinted(img image.Image, x, y, w, h float64, tint color.RGBA) {
	r.ops = append(r.ops, fmt.Sprintf("tinted %.0f,%.0f %.0fx%.0f", x, y, w, h))
}

func (r *recordRenderer) DrawText(s string, x, y, size float64, align Align) {
	r.ops = append(r.ops, fmt.Sprintf("text %q %.0f,%.0f", s, x, y))
}

func (r *recordRenderer) MeasureTextWidth(s string, size float64) float64 {
	return float64(len([]rune(s))) * 4
}

func (r *recordRenderer) DrawHPBar(x, y, w, h, pct float64) {
	r.ops = append(r.ops, fmt.Sprintf("hp %.0f,%.0f %.2f", x, y, pct))
}
