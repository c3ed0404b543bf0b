package engine

import (
	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/sprite"
)

// SetMode switches behavior. Entering TaskbarRoam requests a fresh band,
// entering Sleep requests a sleep target and holds position until it
// resolves.
func (e *Engine) SetMode(m Mode) {
	st := &e.state
	st.Mode = m
	if m != ModeSleep {
		st.LastNonSleep = m
	}

	if m == ModeTaskbarRoam {
		e.requestRoam()
	} else {
		st.Roam = nil
		st.RoamTarget = nil
		st.RoamDwell = 0
	}

	switch m {
	case ModeSleep:
		st.Nudge = false
		st.Target = st.Position
		e.sleepResolved = false
		e.requestSleep()
	case ModeFollow:
		if e.hasPointer {
			st.Target = e.pointer
		}
		e.resetIdleAnimation()
	default:
		e.resetIdleAnimation()
	}
}

// ToggleSleep enters Sleep, or returns to the last non-sleep mode when
// already asleep. It returns the new mode.
func (e *Engine) ToggleSleep() Mode {
	next := ModeSleep
	if e.state.Mode == ModeSleep {
		next = e.state.LastNonSleep
	}
	e.SetMode(next)
	return next
}

// SetPointer records the latest pointer position. Only Follow mode chases it.
func (e *Engine) SetPointer(p geometry.Point) {
	e.pointer = p
	e.hasPointer = true
	if e.state.Mode == ModeFollow {
		e.state.Target = p
	}
}

// SetTopology replaces the display topology. An empty topology is ignored and
// the previous one kept. It reports whether the topology was applied.
func (e *Engine) SetTopology(t geometry.Topology) bool {
	if t.Empty() {
		return false
	}
	e.topo = t
	e.generation++
	if e.state.Mode == ModeTaskbarRoam {
		e.requestRoam()
	}
	if e.state.Mode == ModeSleep {
		e.sleepResolved = false
		e.requestSleep()
	}
	return true
}

// SetVariant changes the sprite sheet skin.
func (e *Engine) SetVariant(v sprite.Variant) {
	e.state.Appearance.Variant = v
	e.window.Restyle(e.state.Appearance)
}

// SetInverted turns color inversion on or off.
func (e *Engine) SetInverted(on bool) {
	e.state.Appearance.Inverted = on
	e.window.Restyle(e.state.Appearance)
}

// ToggleInverted flips color inversion and returns the new value.
func (e *Engine) ToggleInverted() bool {
	e.SetInverted(!e.state.Appearance.Inverted)
	return e.state.Appearance.Inverted
}
