package arena

import (
	"image"
	"time"

	"battle-display/pkg/anim"
	"battle-display/pkg/battle"
	"battle-display/pkg/roster"
	"battle-display/pkg/sched"

	"go.uber.org/zap"
)

// replay re-fills the winner's HP bar during the victory display
type replay struct {
	active bool
	side   battle.Side
	name   string
	from   float64
	start  time.Time
}

// Orchestrator runs the battle loop. It is not safe for concurrent use:
// one goroutine calls Tick, Draw, ForceTurn and StartNewBattle.
type Orchestrator struct {
	cfg    Config
	roster []roster.Creature
	loader Loader
	clock  Clock
	rng    Random
	log    *zap.Logger

	state  battle.State
	anim   *anim.Engine
	queue  *sched.Queue
	gate   *sched.Gate
	winner *battle.Winner
	replay replay
	pose   anim.Pose

	generation uint64
	listeners  []func(Event)
}

func New(cfg Config, creatures []roster.Creature, loader Loader, clock Clock, rng Random, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		roster: creatures,
		loader: loader,
		clock:  clock,
		rng:    rng,
		log:    log.Named("arena"),
		anim:   anim.NewEngine(cfg.Timing),
		queue:  sched.NewQueue(),
		gate:   sched.NewGate(cfg.interval(), cfg.GuardWindow),
	}
}

// OnEvent registers fn for every event. Listeners run on the tick goroutine.
func (o *Orchestrator) OnEvent(fn func(Event)) {
	o.listeners = append(o.listeners, fn)
}

func (o *Orchestrator) emit(ev Event) {
	ev.BattleID = o.state.ID.String()
	for _, fn := range o.listeners {
		fn(ev)
	}
}

func (o *Orchestrator) State() *battle.State      { return &o.state }
func (o *Orchestrator) Engine() *anim.Engine      { return o.anim }
func (o *Orchestrator) Queue() *sched.Queue       { return o.queue }
func (o *Orchestrator) Gate() *sched.Gate         { return o.gate }
func (o *Orchestrator) Winner() *battle.Winner    { return o.winner }
func (o *Orchestrator) Pose() anim.Pose           { return o.pose }
func (o *Orchestrator) Generation() uint64        { return o.generation }
func (o *Orchestrator) Config() Config            { return o.cfg }
func (o *Orchestrator) Roster() []roster.Creature { return o.roster }

// StartNewBattle picks the next pair and starts their transitions.
// It returns false when the roster cannot supply two combatants.
func (o *Orchestrator) StartNewBattle() bool {
	return o.startNewBattle(o.clock.Now())
}

// Tick advances the arena to the clock's now. Call once per frame.
func (o *Orchestrator) Tick() anim.Pose {
	now := o.clock.Now()

	o.queue.Drain(now)

	o.pose = o.anim.Update(now, o.hasSprites())
	if o.pose.HitStarted {
		def := o.anim.Hit.Defender()
		o.emit(Event{Type: EvtHit, Side: def.String(), Name: o.state.Slot(def).Name, At: now})
	}

	o.updateReplay(now)

	if o.gate.Due(now, &o.state) {
		o.advance(now)
		o.gate.Mark(now)
	}
	return o.pose
}

// ForceTurn runs a turn now (a swap in swap mode) if the guards allow it
func (o *Orchestrator) ForceTurn() bool {
	now := o.clock.Now()
	if !o.gate.Allowed(now, &o.state) {
		o.log.Debug("forced turn ignored",
			zap.Bool("active", o.state.Active),
			zap.Bool("processingEnd", o.state.ProcessingEnd))
		return false
	}
	o.advance(now)
	o.gate.Mark(now)
	return true
}

func (o *Orchestrator) advance(now time.Time) {
	if o.cfg.Damage {
		o.takeTurn(now)
		return
	}
	o.winner = nil
	o.startNewBattle(now)
}

func (o *Orchestrator) hasSprites() [2]bool {
	return [2]bool{
		o.state.Slots[battle.Front].Sprite != nil,
		o.state.Slots[battle.Back].Sprite != nil,
	}
}

func (o *Orchestrator) takeTurn(now time.Time) {
	if !o.state.Active || o.state.ProcessingEnd {
		return
	}

	attacker := o.state.Turn
	defender := attacker.Opponent()
	if o.cfg.Animate {
		o.anim.Strike(now, attacker)
	}

	dmg := o.cfg.MinDamage + o.rng.Float64()*(o.cfg.MaxDamage-o.cfg.MinDamage)
	hp := o.state.ApplyDamage(attacker, dmg)

	o.log.Info("attack",
		zap.String("battle", o.state.ID.String()),
		zap.String("attacker", o.state.Slot(attacker).Name),
		zap.String("defender", o.state.Slot(defender).Name),
		zap.Float64("damage", dmg),
		zap.Int("hpPct", int(hp*100+0.5)))
	o.emit(Event{
		Type:   EvtTurn,
		Side:   attacker.String(),
		Name:   o.state.Slot(attacker).Name,
		Damage: dmg,
		Health: hp,
		At:     now,
	})

	outcome := o.state.CheckEnd()
	if !outcome.Ended() {
		o.state.AdvanceTurn()
		return
	}
	o.endBattle(now, outcome)
}

func (o *Orchestrator) endBattle(now time.Time, outcome battle.Outcome) {
	o.winner = o.state.End(now, outcome)

	ev := Event{Type: EvtBattleEnded, Outcome: outcome.String(), At: now}
	if w := o.winner; w != nil {
		slot := o.state.Slot(w.Side)
		o.replay = replay{active: true, side: w.Side, name: slot.Name, from: slot.Health, start: now}
		ev.Side = w.Side.String()
		ev.Name = slot.Name
		o.log.Info("battle won", zap.String("battle", o.state.ID.String()), zap.String("winner", slot.Name))
	} else {
		o.replay = replay{}
		o.log.Info("both fainted", zap.String("battle", o.state.ID.String()))
	}

	gen := o.generation
	o.queue.After(now, o.cfg.RestartDelay, gen, "restart", func(now time.Time) {
		if gen != o.generation || !o.state.ProcessingEnd {
			return
		}
		o.startNewBattle(now)
	})
	o.emit(ev)
}

func (o *Orchestrator) updateReplay(now time.Time) {
	if !o.replay.active {
		return
	}
	slot := o.state.Slot(o.replay.side)
	elapsed := now.Sub(o.replay.start)
	if elapsed >= o.cfg.WinnerDisplay || o.cfg.WinnerDisplay <= 0 {
		slot.Health = 1
		o.replay.active = false
		return
	}
	t := float64(elapsed) / float64(o.cfg.WinnerDisplay)
	slot.Health = battle.Clamp01(anim.Lerp(o.replay.from, 1, t))
}

// WinnerCaption is the victory text while the display window is open
func (o *Orchestrator) WinnerCaption() (string, bool) {
	if !o.replay.active {
		return "", false
	}
	return o.replay.name + " Wins!", true
}

func (o *Orchestrator) startNewBattle(now time.Time) bool {
	if len(o.roster) < 2 {
		o.log.Warn("not enough creatures to start a battle", zap.Int("roster", len(o.roster)))
		return false
	}

	front, back, replaced := o.pickNext()

	o.generation++
	o.queue.Cancel(o.generation)

	o.state.Reset(front, back, battle.Side(o.rng.Intn(2)))
	o.gate.Mark(now)
	o.anim.Reset()
	o.replay = replay{}

	o.log.Info("battle started",
		zap.String("battle", o.state.ID.String()),
		zap.String("front", front.Name),
		zap.String("back", back.Name),
		zap.Stringer("firstTurn", o.state.Turn))

	for _, side := range []battle.Side{battle.Front, battle.Back} {
		o.prepareSprite(now, side, replaced[side])
	}

	o.emit(Event{Type: EvtBattleStarted, Side: o.state.Turn.String(), At: now})
	return true
}

// pickNext consumes the winner record. The winner keeps its slot; without
// one both slots get fresh creatures.
func (o *Orchestrator) pickNext() (front, back roster.Creature, replaced [2]bool) {
	w := o.winner
	o.winner = nil

	if w != nil {
		stay := w.Creature
		other := o.pickDistinct(stay.Name)
		if w.Side == battle.Front {
			return stay, other, [2]bool{false, true}
		}
		return other, stay, [2]bool{true, false}
	}

	n := len(o.roster)
	i := o.rng.Intn(n)
	j := o.rng.Intn(n)
	for j == i {
		j = o.rng.Intn(n)
	}
	return o.roster[i], o.roster[j], [2]bool{true, true}
}

// pickDistinct draws until the name differs from name
func (o *Orchestrator) pickDistinct(name string) roster.Creature {
	n := len(o.roster)
	if !o.hasOtherThan(name) {
		o.log.Warn("roster has no creature distinct from the winner", zap.String("winner", name))
		return o.roster[o.rng.Intn(n)]
	}
	for {
		c := o.roster[o.rng.Intn(n)]
		if c.Name != name {
			return c
		}
	}
}

func (o *Orchestrator) hasOtherThan(name string) bool {
	for _, c := range o.roster {
		if c.Name != name {
			return true
		}
	}
	return false
}

func spritePath(side battle.Side, c roster.Creature) string {
	if side == battle.Front {
		return c.FrontSprite()
	}
	return c.BackSprite()
}

func (o *Orchestrator) prepareSprite(now time.Time, side battle.Side, replaced bool) {
	path := spritePath(side, o.state.Slot(side).Data)
	gen := o.generation

	if replaced && o.cfg.Animate {
		o.anim.Slide(side).Exit(now)
		o.queue.After(now, o.cfg.Timing.Slide, gen, side.String()+" slide-in", func(time.Time) {
			o.loadSprite(gen, side, path, true)
		})
		return
	}
	o.loadSprite(gen, side, path, replaced)
}

// loadSprite starts the async load. The result is applied on a later tick,
// and only if the battle that asked for it is still current. A failed
// refresh of a carried slot keeps the sprite it already has.
func (o *Orchestrator) loadSprite(gen uint64, side battle.Side, path string, replaced bool) {
	enter := replaced && o.cfg.Animate
	o.loader.Load(path, func(img image.Image, err error) {
		o.queue.Post(gen, side.String()+" sprite", func(now time.Time) {
			if gen != o.generation {
				return
			}
			slot := o.state.Slot(side)
			if err != nil {
				if replaced {
					slot.Sprite = nil
				}
				o.log.Warn("sprite unavailable",
					zap.String("side", side.String()),
					zap.String("path", path),
					zap.Error(err))
				o.emit(Event{Type: EvtSpriteFailed, Side: side.String(), Name: slot.Name, At: now})
				return
			}

			slot.Sprite = img
			if enter {
				o.anim.Slide(side).Enter(now)
			} else {
				o.anim.Slide(side).Settle()
			}
			o.emit(Event{Type: EvtSpriteLoaded, Side: side.String(), Name: slot.Name, At: now})
		})
	})
}
