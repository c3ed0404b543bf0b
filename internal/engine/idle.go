package engine

import (
	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/sprite"
)

// idle runs one frame of the resting state: it may start a new idle
// animation and then plays the current one.
func (e *Engine) idle() {
	st := &e.state
	st.IdleTime++

	roll, minTicks := IdleRoll, IdleMinTicks
	if st.Mode == ModeTaskbarRoam {
		roll, minTicks = RoamIdleRoll, RoamIdleMinTicks
	}
	if st.IdleTime > minTicks && st.IdleAnimation == AnimNone && e.rng.IntN(roll) == 0 {
		pool := e.idlePool()
		e.startIdleAnimation(pool[e.rng.IntN(len(pool))])
	}

	if st.Mode == ModeSleep && st.IdleAnimation != AnimSleeping {
		e.startIdleAnimation(AnimSleeping)
	}

	switch st.IdleAnimation {
	case AnimNone:
		e.show(sprite.Idle, 0)
		return
	case AnimSleeping:
		if st.Nudge {
			if st.Mode == ModeSleep && st.IdleFrame < NudgeHoldFrames {
				e.show(sprite.Idle, 0)
				st.IdleFrame++
				return
			}
			st.Nudge = false
			st.IdleFrame = 0
		}
		if st.IdleFrame < TiredFrames {
			e.show(sprite.Tired, 0)
		} else {
			e.show(sprite.Sleeping, st.IdleFrame/SleepFrameDivisor)
		}
		if st.Mode == ModeSleep {
			st.IdleFrame++
			return
		}
	default:
		e.show(st.IdleAnimation.Sprite(), st.IdleFrame)
	}

	if budget, ok := frameBudgets[st.IdleAnimation]; ok && st.IdleFrame >= budget {
		e.resetIdleAnimation()
		return
	}
	st.IdleFrame++
}

// idlePool returns the idle animations available at the current position.
func (e *Engine) idlePool() []Animation {
	st := &e.state
	pool := []Animation{AnimSleeping, AnimScratchSelf}
	if st.Mode == ModeTaskbarRoam {
		pool = append(pool, AnimTired, AnimAlert)
	}

	b := e.activeBounds()
	p := st.Position
	if p.X < float64(b.X)+WallProximity {
		pool = append(pool, AnimScratchWallW)
	}
	if p.Y < float64(b.Y)+WallProximity {
		pool = append(pool, AnimScratchWallN)
	}
	if p.X > float64(b.Right())-WallProximity {
		pool = append(pool, AnimScratchWallE)
	}
	if p.Y > float64(b.Bottom())-WallProximity {
		pool = append(pool, AnimScratchWallS)
	}

	if st.Mode == ModeTaskbarRoam && st.Roam != nil {
		if a := wallScratch(st.Roam.Edge); a != AnimNone {
			pool = append(pool, a)
		}
	}
	return pool
}

// activeBounds returns the bounds of the display under the companion, or the
// primary display when it sits in a gap.
func (e *Engine) activeBounds() geometry.Rect {
	if d, ok := geometry.DisplayContaining(e.topo, e.state.Position); ok {
		return d.Bounds
	}
	return e.topo.PrimaryBounds()
}

func (e *Engine) startIdleAnimation(a Animation) {
	e.state.IdleAnimation = a
	e.state.IdleFrame = 0
}

func (e *Engine) resetIdleAnimation() {
	e.state.IdleAnimation = AnimNone
	e.state.IdleFrame = 0
}
