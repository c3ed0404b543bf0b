package engine

import "time"

// TickInterval is the fixed period of the behavior engine.
const TickInterval = 100 * time.Millisecond

// Movement.
const (
	// Speed is how far the companion moves per tick, in pixels.
	Speed = 10.0
	// FollowIdleDistance is the close-enough radius around the pointer.
	FollowIdleDistance = 48.0
	// RoamIdleDistance is the close-enough radius around a roam target.
	RoamIdleDistance = 12.0
	// RoamNearDistance starts the dwell countdown at a roam target.
	RoamNearDistance = 24.0
	// StartInset places the companion inside the primary display on startup.
	StartInset = 32
)

// Idle selection.
const (
	IdleRoll         = 200
	RoamIdleRoll     = 40
	IdleMinTicks     = 10
	RoamIdleMinTicks = 3

	// WallProximity is how close to a display edge counts as touching a wall.
	WallProximity = 32.0

	// TiredFrames is how long Sleeping shows the tired sprite first.
	TiredFrames = 8
	// NudgeHoldFrames is how long Sleeping holds the idle sprite after a drag.
	NudgeHoldFrames = 8
	// SleepFrameDivisor slows the sleeping sprite to a quarter of the tick rate.
	SleepFrameDivisor = 4
	// WakeIdleCap bounds how many waking ticks are played after a long idle.
	WakeIdleCap = 7

	RoamDwellMin    = 20
	RoamDwellSpread = 60
)

// Dragging.
const (
	// DragThreshold is the cumulative delta after which a drag shows a
	// scratch-wall sprite and counts as motion.
	DragThreshold = 10.0
	// SettleDelay is how long a drag must be still before it reads as settled.
	SettleDelay = 150 * time.Millisecond
)
