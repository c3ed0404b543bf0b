package engine

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/sprite"
)

type recordWindow struct {
	places []geometry.Point
	shown  []sprite.Frame
	styles []Appearance
}

func (w *recordWindow) Place(p geometry.Point)    { w.places = append(w.places, p) }
func (w *recordWindow) Show(f sprite.Frame)       { w.shown = append(w.shown, f) }
func (w *recordWindow) Restyle(a Appearance)      { w.styles = append(w.styles, a) }
func (w *recordWindow) last() sprite.Frame        { return w.shown[len(w.shown)-1] }
func (w *recordWindow) lastPlace() geometry.Point { return w.places[len(w.places)-1] }

var errTest = errors.New("lookup failed")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// fixedSource makes every IntN roll for a non power of two return 0.
type fixedSource uint64

func (s fixedSource) Uint64() uint64 { return uint64(s) }

func singleDisplay() geometry.Topology {
	return geometry.Topology{
		Displays: []geometry.Display{{
			ID:       1,
			Name:     "DP-1",
			Bounds:   geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			WorkArea: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1040},
		}},
		PrimaryID: 1,
	}
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *recordWindow, *fakeClock) {
	t.Helper()
	w := &recordWindow{}
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	opts = append([]Option{
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(clock.now),
	}, opts...)
	e := New(singleDisplay(), w, opts...)
	e.Start()
	return e, w, clock
}

func TestStartPlacesNearPrimaryCorner(t *testing.T) {
	e, w, _ := newTestEngine(t)
	want := geometry.Point{X: 32, Y: 32}
	if got := e.Snapshot().Position; got != want {
		t.Fatalf("start position = %+v, want %+v", got, want)
	}
	if w.lastPlace() != want {
		t.Fatalf("window placed at %+v, want %+v", w.lastPlace(), want)
	}
	if len(w.styles) != 1 || w.styles[0].Variant != sprite.VariantClassic {
		t.Fatalf("expected initial classic restyle, got %+v", w.styles)
	}
}

func TestTickMovesEastTowardPointer(t *testing.T) {
	e, w, _ := newTestEngine(t)
	e.state.Position = geometry.Point{X: 100, Y: 100}
	e.SetPointer(geometry.Point{X: 300, Y: 100})

	e.Tick()

	st := e.Snapshot()
	if st.Position != (geometry.Point{X: 110, Y: 100}) {
		t.Fatalf("position = %+v, want (110,100)", st.Position)
	}
	if got := w.last().Name; got != sprite.E {
		t.Fatalf("sprite = %q, want E", got)
	}
	if st.IdleTime != 0 {
		t.Fatalf("idle time = %d, want 0", st.IdleTime)
	}
}

var directional = map[sprite.Name]bool{
	sprite.N: true, sprite.NE: true, sprite.E: true, sprite.SE: true,
	sprite.S: true, sprite.SW: true, sprite.W: true, sprite.NW: true,
}

func TestTickAtRestDoesNotMove(t *testing.T) {
	e, w, _ := newTestEngine(t)
	start := e.Snapshot().Position
	e.SetPointer(start)

	for i := 0; i < 50; i++ {
		e.Tick()
		if got := e.Snapshot().Position; got != start {
			t.Fatalf("tick %d moved companion to %+v", i, got)
		}
		if name := w.last().Name; directional[name] {
			t.Fatalf("tick %d shows directional sprite %q at rest", i, name)
		}
	}
	if e.Snapshot().IdleTime != 50 {
		t.Fatalf("idle time = %d, want 50", e.Snapshot().IdleTime)
	}
}

func TestHeading(t *testing.T) {
	tests := []struct {
		diff geometry.Point
		want sprite.Name
	}{
		{geometry.Point{X: 0, Y: 10}, sprite.N},
		{geometry.Point{X: 0, Y: -10}, sprite.S},
		{geometry.Point{X: 10, Y: 0}, sprite.W},
		{geometry.Point{X: -10, Y: 0}, sprite.E},
		{geometry.Point{X: -10, Y: 10}, sprite.NE},
		{geometry.Point{X: 10, Y: 10}, sprite.NW},
		{geometry.Point{X: -10, Y: -10}, sprite.SE},
		{geometry.Point{X: 10, Y: -10}, sprite.SW},
	}
	for _, tt := range tests {
		if got := heading(tt.diff, tt.diff.Len()); got != tt.want {
			t.Errorf("heading(%+v) = %q, want %q", tt.diff, got, tt.want)
		}
	}
}

func TestWakingPlaysAlertBeforeMoving(t *testing.T) {
	e, w, _ := newTestEngine(t)
	start := e.Snapshot().Position
	e.SetPointer(start)
	for i := 0; i < 5; i++ {
		e.Tick()
	}

	e.SetPointer(geometry.Point{X: 900, Y: 500})
	alerts := 0
	for i := 0; i < 10 && e.Snapshot().Position == start; i++ {
		e.Tick()
		if w.last().Name == sprite.Alert {
			alerts++
		}
	}
	if alerts != 4 {
		t.Fatalf("alert frames = %d, want 4", alerts)
	}
	if e.Snapshot().Position == start {
		t.Fatal("companion never started moving")
	}
}

func TestSleepWalksToTargetThenDozes(t *testing.T) {
	e, w, _ := newTestEngine(t)
	e.SetMode(ModeSleep)

	reqs := e.TakeRequests()
	if len(reqs) != 1 || reqs[0].Kind != RequestSleepTarget {
		t.Fatalf("requests = %+v, want one sleep target request", reqs)
	}
	target, err := geometry.SleepTargetNear(e.Topology(), reqs[0].From)
	if err != nil {
		t.Fatalf("SleepTargetNear: %v", err)
	}
	if target != (geometry.Point{X: 1904, Y: 1027}) {
		t.Fatalf("sleep target = %+v", target)
	}
	e.CompleteSleepTarget(reqs[0], target, nil)

	arrived := false
	for i := 0; i < 400; i++ {
		e.Tick()
		if w.last().Name == sprite.Tired {
			arrived = true
			break
		}
	}
	if !arrived {
		t.Fatal("companion never reached the sleep target")
	}
	if got := e.Snapshot().Position; got != target {
		t.Fatalf("position = %+v, want exactly %+v", got, target)
	}

	for i := 0; i < TiredFrames-1; i++ {
		e.Tick()
		if w.last().Name != sprite.Tired {
			t.Fatalf("frame %d shows %q, want tired", i+1, w.last().Name)
		}
	}
	e.Tick()
	if got := w.last(); got.Name != sprite.Sleeping || got.Index != TiredFrames/SleepFrameDivisor {
		t.Fatalf("after tired frames got %+v, want sleeping", got)
	}
	if e.Snapshot().IdleAnimation != AnimSleeping {
		t.Fatalf("idle animation = %v", e.Snapshot().IdleAnimation)
	}
}

func TestSleepHoldsPositionUntilTargetResolves(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.state.Position = geometry.Point{X: 500, Y: 500}
	e.SetMode(ModeSleep)
	req := e.TakeRequests()[0]

	e.Tick()
	if got := e.Snapshot().Position; got != (geometry.Point{X: 500, Y: 500}) {
		t.Fatalf("moved before target resolved: %+v", got)
	}

	e.CompleteSleepTarget(req, geometry.Point{}, errTest)
	e.Tick()
	if reqs := e.TakeRequests(); len(reqs) != 1 {
		t.Fatalf("failed request was not retried: %+v", reqs)
	}
}

func TestToggleSleepReturnsToLastMode(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetMode(ModeTaskbarRoam)
	if got := e.ToggleSleep(); got != ModeSleep {
		t.Fatalf("ToggleSleep = %q, want sleep", got)
	}
	if got := e.ToggleSleep(); got != ModeTaskbarRoam {
		t.Fatalf("ToggleSleep = %q, want taskbar", got)
	}
}

func TestRoamRequestsAreNotDuplicated(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetMode(ModeTaskbarRoam)
	for i := 0; i < 5; i++ {
		e.Tick()
	}
	reqs := e.TakeRequests()
	if len(reqs) != 1 || reqs[0].Kind != RequestRoamBand {
		t.Fatalf("requests = %+v, want a single roam band request", reqs)
	}
	if !e.Pending(RequestRoamBand) {
		t.Fatal("roam request should be in flight")
	}

	band := geometry.RoamBandOf(singleDisplay().Displays[0])
	e.CompleteRoamBand(reqs[0], band, nil)

	st := e.Snapshot()
	if st.Roam == nil || st.RoamTarget == nil {
		t.Fatalf("roam not applied: %+v", st)
	}
	if st.RoamTarget.Y != band.Fixed || st.RoamTarget.X < band.Min || st.RoamTarget.X > band.Max {
		t.Fatalf("roam target %+v outside band %+v", *st.RoamTarget, band)
	}
	if e.Pending(RequestRoamBand) {
		t.Fatal("roam request still in flight after completion")
	}
}

func TestRoamResultDiscardedAfterModeChange(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetMode(ModeTaskbarRoam)
	req := e.TakeRequests()[0]
	e.SetMode(ModeFollow)

	e.CompleteRoamBand(req, geometry.RoamBandOf(singleDisplay().Displays[0]), nil)
	if st := e.Snapshot(); st.Roam != nil || st.RoamTarget != nil {
		t.Fatalf("stale roam result applied: %+v", st)
	}
}

func TestRoamResultFromOldTopologyIsRefreshed(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetMode(ModeTaskbarRoam)
	req := e.TakeRequests()[0]

	topo := singleDisplay()
	topo.Displays[0].WorkArea = geometry.Rect{X: 0, Y: 40, Width: 1920, Height: 1040}
	if !e.SetTopology(topo) {
		t.Fatal("topology rejected")
	}
	if reqs := e.TakeRequests(); len(reqs) != 0 {
		t.Fatalf("request issued while one is in flight: %+v", reqs)
	}

	e.CompleteRoamBand(req, geometry.RoamBandOf(singleDisplay().Displays[0]), nil)
	reqs := e.TakeRequests()
	if len(reqs) != 1 || reqs[0].Generation != req.Generation+1 {
		t.Fatalf("expected refresh against new topology, got %+v", reqs)
	}
}

func TestRoamDwellPicksNewTarget(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetMode(ModeTaskbarRoam)
	req := e.TakeRequests()[0]
	e.CompleteRoamBand(req, geometry.RoamBandOf(singleDisplay().Displays[0]), nil)

	first := *e.Snapshot().RoamTarget
	e.state.Position = first

	changed := false
	for i := 0; i < RoamDwellMin+RoamDwellSpread+2; i++ {
		e.Tick()
		if rt := e.Snapshot().RoamTarget; rt != nil && *rt != first {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("roam target never changed after dwelling")
	}
}

func TestEmptyTopologyIgnored(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if e.SetTopology(geometry.Topology{}) {
		t.Fatal("empty topology applied")
	}
	if !e.Topology().Equal(singleDisplay()) {
		t.Fatalf("topology replaced: %+v", e.Topology())
	}
}

func TestDragSettleAndNudge(t *testing.T) {
	e, w, clock := newTestEngine(t)
	origin := e.Snapshot().Position

	e.DragStart(geometry.Point{X: 500, Y: 500})
	e.DragMotion(geometry.Point{X: 540, Y: 505})

	st := e.Snapshot()
	if st.Position != (geometry.Point{X: origin.X + 40, Y: origin.Y + 5}) {
		t.Fatalf("drag position = %+v", st.Position)
	}
	if st.Settled {
		t.Fatal("drag should be unsettled while moving")
	}
	if w.last().Name != sprite.ScratchWallW {
		t.Fatalf("drag sprite = %q, want scratchWallW", w.last().Name)
	}

	clock.advance(100 * time.Millisecond)
	e.Tick()
	if w.last().Name == sprite.Alert {
		t.Fatal("alert shown before the drag settled")
	}

	clock.advance(100 * time.Millisecond)
	e.Tick()
	if w.last().Name != sprite.Alert {
		t.Fatalf("settled drag shows %q, want alert", w.last().Name)
	}

	e.DragEnd()
	st = e.Snapshot()
	if st.Grabbing || !st.Nudge || st.IdleAnimation != AnimNone {
		t.Fatalf("after release: %+v", st)
	}
}

func TestDragVerticalSprites(t *testing.T) {
	e, w, _ := newTestEngine(t)
	e.DragStart(geometry.Point{X: 500, Y: 500})
	e.DragMotion(geometry.Point{X: 502, Y: 530})
	if w.last().Name != sprite.ScratchWallN {
		t.Fatalf("downward drag sprite = %q", w.last().Name)
	}
	e.DragMotion(geometry.Point{X: 502, Y: 470})
	if w.last().Name != sprite.ScratchWallS {
		t.Fatalf("upward drag sprite = %q", w.last().Name)
	}
}

func TestNudgeHoldsIdleWhileAsleep(t *testing.T) {
	e, w, _ := newTestEngine(t)
	e.SetMode(ModeSleep)
	req := e.TakeRequests()[0]
	here := e.Snapshot().Position
	e.CompleteSleepTarget(req, here, nil)
	e.Tick()

	e.DragStart(geometry.Point{X: 10, Y: 10})
	e.DragEnd()

	for i := 0; i < NudgeHoldFrames; i++ {
		e.Tick()
		if w.last().Name != sprite.Idle {
			t.Fatalf("nudge frame %d shows %q, want idle", i, w.last().Name)
		}
	}
	e.Tick()
	if w.last().Name != sprite.Tired {
		t.Fatalf("after nudge got %q, want tired", w.last().Name)
	}
	if e.Snapshot().Nudge {
		t.Fatal("nudge not consumed")
	}
}

func TestIdlePoolIncludesNearbyWalls(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.state.Position = geometry.Point{X: 20, Y: 20}

	pool := e.idlePool()
	has := map[Animation]bool{}
	for _, a := range pool {
		has[a] = true
	}
	for _, want := range []Animation{AnimSleeping, AnimScratchSelf, AnimScratchWallW, AnimScratchWallN} {
		if !has[want] {
			t.Errorf("pool %v missing %v", pool, want)
		}
	}
	if has[AnimScratchWallE] || has[AnimScratchWallS] || has[AnimTired] {
		t.Errorf("pool %v has unexpected entries", pool)
	}
}

func TestIdlePoolInTaskbarRoam(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.state.Position = geometry.Point{X: 960, Y: 540}
	e.SetMode(ModeTaskbarRoam)
	e.CompleteRoamBand(e.TakeRequests()[0], geometry.RoamBandOf(singleDisplay().Displays[0]), nil)

	has := map[Animation]bool{}
	for _, a := range e.idlePool() {
		has[a] = true
	}
	for _, want := range []Animation{AnimTired, AnimAlert, AnimScratchWallS} {
		if !has[want] {
			t.Errorf("roam pool missing %v", want)
		}
	}
}

func TestIdleAnimationsExpireOutsideSleep(t *testing.T) {
	if budget, _ := FrameBudget(AnimSleeping); budget != 192 {
		t.Fatalf("sleeping budget = %d, want 192", budget)
	}

	for _, a := range []Animation{
		AnimSleeping, AnimScratchSelf, AnimScratchWallN, AnimScratchWallS,
		AnimScratchWallE, AnimScratchWallW, AnimTired, AnimAlert,
	} {
		t.Run(a.String(), func(t *testing.T) {
			e, w, _ := newTestEngine(t)
			e.SetPointer(e.Snapshot().Position)
			e.startIdleAnimation(a)

			budget, ok := FrameBudget(a)
			if !ok {
				t.Fatalf("%v has no frame budget", a)
			}
			for i := 0; i < budget; i++ {
				e.Tick()
				if got := e.Snapshot().IdleAnimation; got != a {
					t.Fatalf("frame %d: animation = %v, want %v", i, got, a)
				}
				if a != AnimSleeping && w.last().Name != a.Sprite() {
					t.Fatalf("frame %d shows %q", i, w.last().Name)
				}
			}
			e.Tick()
			if got := e.Snapshot().IdleAnimation; got != AnimNone {
				t.Fatalf("animation %v did not expire after %d frames", got, budget)
			}
		})
	}
}

func TestSleepingNeverExpiresInSleepMode(t *testing.T) {
	e, w, _ := newTestEngine(t)
	e.SetMode(ModeSleep)
	e.CompleteSleepTarget(e.TakeRequests()[0], e.Snapshot().Position, nil)

	budget, _ := FrameBudget(AnimSleeping)
	for i := 0; i < budget+20; i++ {
		e.Tick()
	}
	if got := e.Snapshot().IdleAnimation; got != AnimSleeping {
		t.Fatalf("animation = %v, want sleeping", got)
	}
	if w.last().Name != sprite.Sleeping {
		t.Fatalf("sprite = %q, want sleeping", w.last().Name)
	}
}

func TestCloseThreshold(t *testing.T) {
	from := geometry.Point{X: 500, Y: 500}
	tests := []struct {
		name       string
		roam       bool
		roamTarget bool
		distance   float64
		threshold  float64
		wantMove   bool
	}{
		{name: "follow inside radius", distance: 40, threshold: FollowIdleDistance},
		{name: "follow outside radius", distance: 60, threshold: FollowIdleDistance, wantMove: true},
		{name: "roam without target", roam: true, distance: 0, threshold: FollowIdleDistance},
		{name: "roam target inside radius", roam: true, roamTarget: true, distance: 8, threshold: RoamIdleDistance},
		{name: "roam target outside radius", roam: true, roamTarget: true, distance: 20, threshold: RoamIdleDistance, wantMove: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t)
			e.state.Position = from
			target := geometry.Point{X: from.X + tt.distance, Y: from.Y}
			if tt.roam {
				e.SetMode(ModeTaskbarRoam)
				if tt.roamTarget {
					e.CompleteRoamBand(e.TakeRequests()[0], geometry.RoamBandOf(singleDisplay().Displays[0]), nil)
					e.state.RoamTarget = &target
				}
			} else {
				e.SetPointer(target)
			}

			if got := e.closeThreshold(); got != tt.threshold {
				t.Fatalf("closeThreshold = %v, want %v", got, tt.threshold)
			}
			e.Tick()
			moved := e.Snapshot().Position != from
			if moved != tt.wantMove {
				t.Fatalf("moved = %v, want %v (position %+v)", moved, tt.wantMove, e.Snapshot().Position)
			}
		})
	}
}

func TestMovementClampedToDesktop(t *testing.T) {
	tests := []struct {
		name    string
		from    geometry.Point
		pointer geometry.Point
		want    geometry.Point
	}{
		{"east", geometry.Point{X: 1900, Y: 500}, geometry.Point{X: 2500, Y: 500}, geometry.Point{X: 1904, Y: 500}},
		{"west", geometry.Point{X: 20, Y: 500}, geometry.Point{X: -500, Y: 500}, geometry.Point{X: 16, Y: 500}},
		{"north", geometry.Point{X: 500, Y: 20}, geometry.Point{X: 500, Y: -500}, geometry.Point{X: 500, Y: 16}},
		{"south", geometry.Point{X: 500, Y: 1060}, geometry.Point{X: 500, Y: 1600}, geometry.Point{X: 500, Y: 1064}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, w, _ := newTestEngine(t)
			e.state.Position = tt.from
			e.SetPointer(tt.pointer)

			e.Tick()
			if got := e.Snapshot().Position; got != tt.want {
				t.Fatalf("position = %+v, want %+v", got, tt.want)
			}
			if w.lastPlace() != tt.want {
				t.Fatalf("window placed at %+v, want %+v", w.lastPlace(), tt.want)
			}
		})
	}
}

func TestIdleRollWaitsForMinTicks(t *testing.T) {
	tests := []struct {
		name     string
		roam     bool
		minTicks int
	}{
		{"follow", false, IdleMinTicks},
		{"taskbar", true, RoamIdleMinTicks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t, WithRand(rand.New(fixedSource(1))))
			here := geometry.Point{X: 500, Y: 500}
			e.state.Position = here
			if tt.roam {
				e.SetMode(ModeTaskbarRoam)
				e.CompleteRoamBand(e.TakeRequests()[0], geometry.RoamBandOf(singleDisplay().Displays[0]), nil)
				e.state.RoamTarget = &here
			} else {
				e.SetPointer(here)
			}

			for i := 1; i <= tt.minTicks; i++ {
				e.Tick()
				if got := e.Snapshot().IdleAnimation; got != AnimNone {
					t.Fatalf("tick %d started %v before the idle minimum", i, got)
				}
			}
			e.Tick()
			if got := e.Snapshot().IdleAnimation; got == AnimNone {
				t.Fatalf("no idle animation after %d ticks", tt.minTicks+1)
			}
		})
	}
}

func TestDoubleClickIntoSleepStartsTired(t *testing.T) {
	e, w, _ := newTestEngine(t)
	grab := geometry.Point{X: 32, Y: 32}

	// press, release, press, release, then the double click
	e.DragStart(grab)
	e.DragEnd()
	e.DragStart(grab)
	e.DragEnd()
	if e.ToggleSleep() != ModeSleep {
		t.Fatal("double click did not enter sleep")
	}
	if e.Snapshot().Nudge {
		t.Fatal("entering sleep left the nudge set")
	}

	req := e.TakeRequests()[0]
	target, err := geometry.SleepTargetNear(e.Topology(), req.From)
	if err != nil {
		t.Fatalf("SleepTargetNear: %v", err)
	}
	e.CompleteSleepTarget(req, target, nil)

	for i := 0; i < 400; i++ {
		e.Tick()
		if e.Snapshot().Position == target {
			if got := w.last().Name; got != sprite.Tired {
				t.Fatalf("first frame at sleep target = %q, want tired", got)
			}
			return
		}
	}
	t.Fatal("companion never reached the sleep target")
}

func TestAppearanceChangesRestyle(t *testing.T) {
	e, w, _ := newTestEngine(t)
	e.SetVariant(sprite.VariantTora)
	if !e.ToggleInverted() {
		t.Fatal("ToggleInverted should report true")
	}
	got := w.styles[len(w.styles)-1]
	if got.Variant != sprite.VariantTora || !got.Inverted {
		t.Fatalf("appearance = %+v", got)
	}
	before := e.Snapshot().Position
	e.Tick()
	if e.Snapshot().Position != before {
		t.Fatal("appearance change moved the companion")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		if got, err := ParseMode(string(m)); err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMode("zoom"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if ModeFollow.Next() != ModeTaskbarRoam || ModeTaskbarRoam.Next() != ModeSleep || ModeSleep.Next() != ModeFollow {
		t.Fatal("mode cycle out of order")
	}
}
