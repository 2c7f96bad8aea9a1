package display

import (
	"context"
	"sync"
	"time"

	"battle-display/pkg/arena"

	"go.uber.org/zap"
)

// Canvas is a Renderer whose frame can be encoded for the HTTP surface
type Canvas interface {
	arena.Renderer
	PNG() ([]byte, error)
}

type turnRequest struct {
	reply chan bool
}

// Driver owns the orchestrator. Its Run goroutine is the only caller of
// Tick, Draw and ForceTurn; everyone else reads the published frame and
// snapshot or goes through the inbox.
type Driver struct {
	arena    *arena.Orchestrator
	canvas   Canvas
	interval time.Duration
	log      *zap.Logger

	turns chan turnRequest

	mu    sync.RWMutex
	frame []byte
	snap  arena.Snapshot
}

func NewDriver(o *arena.Orchestrator, canvas Canvas, interval time.Duration, log *zap.Logger) *Driver {
	return &Driver{
		arena:    o,
		canvas:   canvas,
		interval: interval,
		log:      log.Named("driver"),
		turns:    make(chan turnRequest),
	}
}

// Run starts the first battle and ticks until ctx is done
func (d *Driver) Run(ctx context.Context) error {
	if !d.arena.StartNewBattle() {
		d.log.Warn("display running without a battle")
	}
	d.step()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Info("driver started", zap.Duration("interval", d.interval))
	for {
		select {
		case <-ctx.Done():
			d.log.Info("driver stopped")
			return ctx.Err()

		case <-ticker.C:
			d.step()

		case req := <-d.turns:
			ok := d.arena.ForceTurn()
			d.publish()
			req.reply <- ok
		}
	}
}

func (d *Driver) step() {
	d.arena.Tick()
	d.arena.Draw(d.canvas)
	d.publish()
}

func (d *Driver) publish() {
	frame, err := d.canvas.PNG()
	if err != nil {
		d.log.Error("encode frame", zap.Error(err))
	}
	snap := d.arena.Snapshot()

	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		d.frame = frame
	}
	d.snap = snap
}

// ForceTurn asks the driver goroutine for a manual turn. It reports whether
// the turn ran; false means a guard refused it.
func (d *Driver) ForceTurn(ctx context.Context) (bool, error) {
	req := turnRequest{reply: make(chan bool, 1)}
	select {
	case d.turns <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Frame is the last encoded PNG, nil before the first tick
func (d *Driver) Frame() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frame
}

func (d *Driver) Snapshot() arena.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}
