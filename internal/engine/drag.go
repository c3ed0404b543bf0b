package engine

import (
	"math"

	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/sprite"
)

// DragStart begins a drag with the pointer at the given screen position.
func (e *Engine) DragStart(pointer geometry.Point) {
	e.state.Grabbing = true
	e.drag = dragState{start: pointer, origin: e.state.Position}
}

// DragMotion moves the companion with the pointer. Moves past the drag
// threshold show a scratch-wall sprite and restart the settle timer.
func (e *Engine) DragMotion(pointer geometry.Point) {
	st := &e.state
	if !st.Grabbing {
		return
	}
	e.checkSettle()

	delta := pointer.Sub(e.drag.start)
	ax, ay := math.Abs(delta.X), math.Abs(delta.Y)
	switch {
	case ax > ay && ax > DragThreshold:
		if delta.X > 0 {
			e.show(sprite.ScratchWallW, st.FrameCount)
		} else {
			e.show(sprite.ScratchWallE, st.FrameCount)
		}
	case ay > ax && ay > DragThreshold:
		if delta.Y > 0 {
			e.show(sprite.ScratchWallN, st.FrameCount)
		} else {
			e.show(sprite.ScratchWallS, st.FrameCount)
		}
	}

	if st.Settled || ax > DragThreshold || ay > DragThreshold || delta.Len() > DragThreshold {
		st.Settled = false
		e.settleAt = e.now().Add(SettleDelay)
	}

	st.Position = geometry.Point{X: e.drag.origin.X + delta.X, Y: e.drag.origin.Y + delta.Y}
	e.place()
}

// DragEnd releases the companion where it is.
func (e *Engine) DragEnd() {
	st := &e.state
	if !st.Grabbing {
		return
	}
	st.Grabbing = false
	st.Nudge = true
	e.resetIdleAnimation()
	if st.Mode == ModeTaskbarRoam {
		e.requestRoam()
	}
}
