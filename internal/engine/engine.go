// Package engine implements the companion's behavior state machine. The
// Engine is a plain owned value: it is driven by a single goroutine and never
// blocks. Geometry lookups that need the windowing system are queued as
// Requests and their results fed back through CompleteSleepTarget and
// CompleteRoamBand.
package engine

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/sprite"
)

// Window receives the engine's outbound effects.
type Window interface {
	// Place moves the companion so its center is at p.
	Place(p geometry.Point)
	// Show draws a sprite frame.
	Show(f sprite.Frame)
	// Restyle applies a new appearance.
	Restyle(a Appearance)
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand replaces the random source used for idle selection and roaming.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithClock replaces the wall clock used for the drag settle timer.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithAppearance sets the initial appearance.
func WithAppearance(a Appearance) Option {
	return func(e *Engine) { e.state.Appearance = a }
}

// WithMode sets the initial mode.
func WithMode(m Mode) Option {
	return func(e *Engine) { e.initialMode = m }
}

type dragState struct {
	start  geometry.Point
	origin geometry.Point
}

// Engine is the behavior state machine.
type Engine struct {
	state       State
	initialMode Mode

	topo       geometry.Topology
	generation int

	pointer    geometry.Point
	hasPointer bool

	window Window
	rng    *rand.Rand
	now    func() time.Time

	drag     dragState
	settleAt time.Time

	sleepReq      requestState
	roamReq       requestState
	sleepResolved bool
	outbox        []Request
}

// New creates an engine on the given topology. The companion starts near the
// top-left corner of the primary display in Follow mode unless WithMode says
// otherwise.
func New(topo geometry.Topology, w Window, opts ...Option) *Engine {
	e := &Engine{
		topo:        topo,
		window:      w,
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6f6e656b6f)),
		now:         time.Now,
		initialMode: ModeFollow,
		state: State{
			Mode:         ModeFollow,
			LastNonSleep: ModeFollow,
			Settled:      true,
			Appearance:   Appearance{Variant: sprite.DefaultVariant},
			Shown:        sprite.Frame{Name: sprite.Idle},
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	b := topo.PrimaryBounds()
	start := geometry.Point{X: float64(b.X + StartInset), Y: float64(b.Y + StartInset)}
	e.state.Position = start
	e.state.Target = start
	return e
}

// Start pushes the initial appearance, sprite and position to the window and
// applies the initial mode.
func (e *Engine) Start() {
	e.window.Restyle(e.state.Appearance)
	e.place()
	e.show(sprite.Idle, 0)
	if e.initialMode != ModeFollow {
		e.SetMode(e.initialMode)
	}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	return e.state.clone()
}

// Topology returns the topology the engine currently clamps against.
func (e *Engine) Topology() geometry.Topology {
	return e.topo
}

// Tick advances the state machine by one frame.
func (e *Engine) Tick() {
	st := &e.state
	st.FrameCount++
	e.checkSettle()

	switch st.Mode {
	case ModeTaskbarRoam:
		if st.Roam == nil {
			e.requestRoam()
		}
		if st.RoamTarget != nil {
			st.Target = *st.RoamTarget
		} else {
			st.Target = st.Position
		}
	case ModeSleep:
		if !e.sleepResolved {
			e.requestSleep()
		}
	}

	if st.Grabbing {
		if st.Settled {
			e.show(sprite.Alert, 0)
		}
		return
	}

	diff := st.Position.Sub(st.Target)
	distance := diff.Len()

	if st.Mode == ModeSleep {
		if math.Abs(diff.X) < Speed && math.Abs(diff.Y) < Speed {
			st.Position = st.Target
			e.place()
			e.idle()
			return
		}
	} else if distance < e.closeThreshold() {
		if st.Mode == ModeTaskbarRoam && st.RoamTarget != nil && distance < RoamNearDistance {
			e.dwell()
		}
		e.idle()
		return
	}

	e.resetIdleAnimation()

	if st.IdleTime > 1 {
		e.show(sprite.Alert, 0)
		st.IdleTime = min(st.IdleTime, WakeIdleCap) - 1
		return
	}
	st.IdleTime = 0

	e.show(heading(diff, distance), st.FrameCount)
	st.Position.X -= diff.X / distance * Speed
	st.Position.Y -= diff.Y / distance * Speed
	e.place()
}

func (e *Engine) closeThreshold() float64 {
	idle := FollowIdleDistance
	if e.state.Mode == ModeTaskbarRoam && e.state.RoamTarget != nil {
		idle = RoamIdleDistance
	}
	return math.Max(Speed, idle)
}

// heading picks the directional sprite for a move along -diff.
func heading(diff geometry.Point, distance float64) sprite.Name {
	var name string
	if diff.Y/distance > 0.5 {
		name = "N"
	}
	if diff.Y/distance < -0.5 {
		name = "S"
	}
	if diff.X/distance > 0.5 {
		name += "W"
	}
	if diff.X/distance < -0.5 {
		name += "E"
	}
	return sprite.Name(name)
}

func (e *Engine) dwell() {
	st := &e.state
	if st.RoamDwell <= 0 {
		st.RoamDwell = RoamDwellMin + e.rng.IntN(RoamDwellSpread)
		return
	}
	st.RoamDwell--
	if st.RoamDwell == 0 {
		e.pickRoamTarget()
	}
}

func (e *Engine) pickRoamTarget() {
	st := &e.state
	if st.Roam == nil {
		return
	}
	span := math.Max(st.Roam.Max-st.Roam.Min, 1)
	target := st.Roam.PointAt(st.Roam.Min + e.rng.Float64()*span)
	st.RoamTarget = &target
	st.Target = target
	st.RoamDwell = 0
}

func (e *Engine) place() {
	e.state.Position = geometry.ClampToDesktop(e.topo, e.state.Position)
	e.window.Place(e.state.Position)
}

func (e *Engine) show(name sprite.Name, index int) {
	f := sprite.Frame{Name: name, Index: index}
	e.state.Shown = f
	e.window.Show(f)
}

func (e *Engine) checkSettle() {
	if e.settleAt.IsZero() || e.now().Before(e.settleAt) {
		return
	}
	e.settleAt = time.Time{}
	e.state.Settled = true
	e.state.Nudge = false
}
