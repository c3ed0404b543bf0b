// Package daemon runs the companion: a single goroutine owns the behavior
// engine and applies every inbound event in order, while helper goroutines
// sample the pointer, reconcile display topology and watch the settings
// file.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/1broseidon/oneko/internal/engine"
	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/ipc"
	"github.com/1broseidon/oneko/internal/platform"
	"github.com/1broseidon/oneko/internal/settings"
	"github.com/1broseidon/oneko/internal/sprite"
)

// ErrStopped is returned by calls made after the runner has exited.
var ErrStopped = errors.New("daemon is not running")

// RunnerConfig holds configuration for the runner.
type RunnerConfig struct {
	TickInterval    time.Duration
	PointerInterval time.Duration
	Logger          *slog.Logger
	Rand            *rand.Rand
	Clock           func() time.Time
}

// Runner owns the engine. All state changes happen on the goroutine running
// Run; other goroutines hand work over through the events channel.
type Runner struct {
	backend platform.Backend
	store   *settings.Store
	logger  *slog.Logger
	cfg     RunnerConfig

	eng      *engine.Engine
	settings settings.Settings
	started  time.Time

	events  chan func()
	pointer chan geometry.Point
	done    chan struct{}
}

var (
	_ ipc.Controller     = (*Runner)(nil)
	_ platform.EventSink = (*Runner)(nil)
)

// NewRunner loads the persisted settings, takes an initial topology snapshot
// and builds the engine. It fails only when no usable topology is available.
func NewRunner(cfg RunnerConfig, backend platform.Backend, store *settings.Store) (*Runner, error) {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = engine.TickInterval
	}
	if cfg.PointerInterval <= 0 {
		cfg.PointerInterval = engine.TickInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	topo, err := backend.Topology()
	if err != nil {
		return nil, fmt.Errorf("failed to read display topology: %w", err)
	}
	if topo.Empty() {
		return nil, fmt.Errorf("no displays found")
	}

	r := &Runner{
		backend:  backend,
		store:    store,
		logger:   cfg.Logger,
		cfg:      cfg,
		settings: store.Load(),
		events:   make(chan func(), 64),
		pointer:  make(chan geometry.Point, 1),
		done:     make(chan struct{}),
	}

	opts := []engine.Option{
		engine.WithMode(r.settings.Mode),
		engine.WithAppearance(r.settings.Appearance()),
	}
	if cfg.Rand != nil {
		opts = append(opts, engine.WithRand(cfg.Rand))
	}
	if cfg.Clock != nil {
		opts = append(opts, engine.WithClock(cfg.Clock))
	}

	window := &spriteWindow{backend: backend, logger: cfg.Logger}
	r.eng = engine.New(topo, window, opts...)
	return r, nil
}

// Run drives the engine until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	r.started = time.Now()
	r.eng.Start()
	r.dispatch()

	go r.samplePointer(ctx)

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	r.logger.Info("runner started",
		"mode", r.settings.Mode,
		"variant", r.settings.Variant,
		"displays", len(r.eng.Topology().Displays))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner stopped")
			return
		case <-ticker.C:
			r.eng.Tick()
		case p := <-r.pointer:
			r.eng.SetPointer(p)
		case fn := <-r.events:
			fn()
		}
		r.dispatch()
	}
}

// dispatch starts a host query for every request the engine queued.
func (r *Runner) dispatch() {
	for _, req := range r.eng.TakeRequests() {
		go r.resolve(req)
	}
}

func (r *Runner) resolve(req engine.Request) {
	switch req.Kind {
	case engine.RequestSleepTarget:
		target, err := r.backend.SleepTarget(req.From)
		if err != nil {
			r.logger.Warn("sleep target query failed", "error", err)
		}
		r.post(func() { r.eng.CompleteSleepTarget(req, target, err) })
	case engine.RequestRoamBand:
		band, err := r.backend.TaskbarRoamBand(req.From)
		if err != nil {
			r.logger.Warn("roam band query failed", "error", err)
		}
		r.post(func() { r.eng.CompleteRoamBand(req, band, err) })
	}
}

// samplePointer feeds pointer positions to the runner. Only the newest
// sample is kept.
func (r *Runner) samplePointer(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.PointerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p, err := r.backend.Pointer()
			if err != nil {
				continue
			}
			select {
			case r.pointer <- p:
			default:
				select {
				case <-r.pointer:
				default:
				}
				select {
				case r.pointer <- p:
				default:
				}
			}
		}
	}
}

// post queues fn for the runner goroutine. It reports false once the runner
// has exited.
func (r *Runner) post(fn func()) bool {
	select {
	case r.events <- fn:
		return true
	case <-r.done:
		return false
	}
}

// do runs fn on the runner goroutine and waits for it.
func (r *Runner) do(fn func()) error {
	finished := make(chan struct{})
	if !r.post(func() { fn(); close(finished) }) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

// persist merges p into the settings and saves them. Failures are logged.
func (r *Runner) persist(p settings.Patch) {
	r.settings = r.settings.Apply(p)
	if err := r.store.Save(r.settings); err != nil {
		r.logger.Warn("failed to save settings", "path", r.store.Path(), "error", err)
	}
}

func (r *Runner) setMode(m engine.Mode) {
	r.eng.SetMode(m)
	r.persist(settings.Patch{Mode: &m})
}

func (r *Runner) toggleSleep() {
	m := r.eng.ToggleSleep()
	r.persist(settings.Patch{Mode: &m})
}

func (r *Runner) toggleInverted() {
	on := r.eng.ToggleInverted()
	r.persist(settings.Patch{KuroNeko: &on})
}

// mirror applies settings that changed elsewhere without saving them again.
func (r *Runner) mirror(s settings.Settings) {
	snap := r.eng.Snapshot()
	if s.Mode != snap.Mode {
		r.logger.Info("mode changed externally", "mode", s.Mode)
		r.eng.SetMode(s.Mode)
	}
	if s.Variant != snap.Appearance.Variant {
		r.eng.SetVariant(s.Variant)
	}
	if s.KuroNeko != snap.Appearance.Inverted {
		r.eng.SetInverted(s.KuroNeko)
	}
	r.settings = s
}

func (r *Runner) applyTopology(t geometry.Topology) {
	if t.Empty() {
		r.logger.Warn("ignoring empty display topology")
		return
	}
	if t.Equal(r.eng.Topology()) {
		return
	}
	r.eng.SetTopology(t)
	r.logger.Info("display topology changed", "displays", len(t.Displays), "primary", t.PrimaryID)
}

// ApplyTopology hands a topology snapshot to the engine.
func (r *Runner) ApplyTopology(t geometry.Topology) {
	r.post(func() { r.applyTopology(t) })
}

// MirrorSettings hands externally changed settings to the engine.
func (r *Runner) MirrorSettings(s settings.Settings) {
	r.post(func() { r.mirror(s) })
}

// CycleMode advances follow -> taskbar -> sleep -> follow.
func (r *Runner) CycleMode() (ipc.StatusData, error) {
	var status ipc.StatusData
	err := r.do(func() {
		r.setMode(r.eng.Snapshot().Mode.Next())
		status = r.status()
	})
	return status, err
}

func (r *Runner) refreshTopology() {
	t, err := r.backend.Topology()
	if err != nil {
		r.logger.Warn("failed to read display topology", "error", err)
		return
	}
	r.ApplyTopology(t)
}

func (r *Runner) status() ipc.StatusData {
	snap := r.eng.Snapshot()
	topo := r.eng.Topology()

	status := ipc.StatusData{
		Mode:         string(snap.Mode),
		LastNonSleep: string(snap.LastNonSleep),
		Variant:      string(snap.Appearance.Variant),
		Inverted:     snap.Appearance.Inverted,
		Position:     snap.Position,
		Target:       snap.Target,
		Animation:    snap.IdleAnimation.String(),
		Sprite:       string(snap.Shown.Name),
		Grabbing:     snap.Grabbing,
	}
	if snap.Roam != nil {
		status.RoamEdge = string(snap.Roam.Edge)
	}
	if d, ok := geometry.DisplayContaining(topo, snap.Position); ok {
		status.DisplayID = d.ID
	}
	if !r.started.IsZero() {
		status.UptimeSeconds = int64(time.Since(r.started).Seconds())
	}
	return status
}

func (r *Runner) displays() ipc.DisplaysData {
	topo := r.eng.Topology()
	primary, _ := topo.Primary()

	data := ipc.DisplaysData{Displays: make([]ipc.DisplayInfo, 0, len(topo.Displays))}
	for _, d := range topo.Displays {
		data.Displays = append(data.Displays, ipc.DisplayInfo{
			ID:          d.ID,
			Name:        d.Name,
			Primary:     d.ID == primary.ID,
			Bounds:      d.Bounds,
			WorkArea:    d.WorkArea,
			TaskbarEdge: string(geometry.TaskbarEdgeOf(d).Edge),
			SleepTarget: geometry.SleepTarget(d),
		})
	}
	return data
}

// Status implements ipc.Controller.
func (r *Runner) Status() (ipc.StatusData, error) {
	var status ipc.StatusData
	err := r.do(func() { status = r.status() })
	return status, err
}

// Displays implements ipc.Controller.
func (r *Runner) Displays() (ipc.DisplaysData, error) {
	var data ipc.DisplaysData
	err := r.do(func() { data = r.displays() })
	return data, err
}

// SetMode implements ipc.Controller.
func (r *Runner) SetMode(mode string) (ipc.StatusData, error) {
	m, err := engine.ParseMode(mode)
	if err != nil {
		return ipc.StatusData{}, err
	}
	var status ipc.StatusData
	err = r.do(func() {
		r.setMode(m)
		status = r.status()
	})
	return status, err
}

// SetVariant implements ipc.Controller.
func (r *Runner) SetVariant(variant string) (ipc.StatusData, error) {
	v, err := sprite.ParseVariant(variant)
	if err != nil {
		return ipc.StatusData{}, err
	}
	var status ipc.StatusData
	err = r.do(func() {
		r.eng.SetVariant(v)
		r.persist(settings.Patch{Variant: &v})
		status = r.status()
	})
	return status, err
}

// SetInverted implements ipc.Controller. A nil value toggles.
func (r *Runner) SetInverted(inverted *bool) (ipc.StatusData, error) {
	var status ipc.StatusData
	err := r.do(func() {
		if inverted == nil {
			r.toggleInverted()
		} else {
			on := *inverted
			r.eng.SetInverted(on)
			r.persist(settings.Patch{KuroNeko: &on})
		}
		status = r.status()
	})
	return status, err
}

// ToggleSleep implements ipc.Controller.
func (r *Runner) ToggleSleep() (ipc.StatusData, error) {
	var status ipc.StatusData
	err := r.do(func() {
		r.toggleSleep()
		status = r.status()
	})
	return status, err
}

// Reload re-reads the settings file and the display topology.
func (r *Runner) Reload() error {
	s := r.store.Load()
	if err := r.do(func() { r.mirror(s) }); err != nil {
		return err
	}
	go r.refreshTopology()
	return nil
}

// TopologyChanged implements platform.EventSink.
func (r *Runner) TopologyChanged() {
	go r.refreshTopology()
}

// DragStart implements platform.EventSink.
func (r *Runner) DragStart(p geometry.Point) {
	r.post(func() { r.eng.DragStart(p) })
}

// DragMotion implements platform.EventSink.
func (r *Runner) DragMotion(p geometry.Point) {
	r.post(func() { r.eng.DragMotion(p) })
}

// DragEnd implements platform.EventSink.
func (r *Runner) DragEnd() {
	r.post(func() { r.eng.DragEnd() })
}

// DoubleClick implements platform.EventSink.
func (r *Runner) DoubleClick() {
	r.post(r.toggleSleep)
}

// SecondaryClick implements platform.EventSink.
func (r *Runner) SecondaryClick() {
	r.post(r.toggleInverted)
}
