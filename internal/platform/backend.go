// Package platform abstracts the windowing system behind the operations the
// companion needs: display topology, pointer sampling, taskbar geometry and
// the sprite window.
package platform

import (
	"math"

	"github.com/1broseidon/oneko/internal/engine"
	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/sprite"
)

// EventSink receives notifications raised by the windowing system. Calls may
// arrive on any goroutine.
type EventSink interface {
	TopologyChanged()
	DragStart(p geometry.Point)
	DragMotion(p geometry.Point)
	DragEnd()
	DoubleClick()
	SecondaryClick()
}

// Backend abstracts window-system operations.
type Backend interface {
	// Topology returns a snapshot of every display and its work area.
	Topology() (geometry.Topology, error)
	// Pointer returns the global pointer position.
	Pointer() (geometry.Point, error)
	// SleepTarget returns the sleep spot on the display nearest p.
	SleepTarget(p geometry.Point) (geometry.Point, error)
	// TaskbarRoamBand returns the roam band on the display nearest p.
	TaskbarRoamBand(p geometry.Point) (geometry.RoamBand, error)
	// SetWindowPosition moves the sprite window's top-left corner.
	SetWindowPosition(x, y int) error
	// ShowSprite paints a frame with the given appearance.
	ShowSprite(f sprite.Frame, a engine.Appearance) error
	// Bind starts delivering notifications to sink.
	Bind(sink EventSink) error
	// EventLoop dispatches window-system events until Quit.
	EventLoop()
	Quit()
	Disconnect()
}

// WindowOrigin converts a sprite center into the top-left corner of the
// sprite window.
func WindowOrigin(center geometry.Point) (x, y int) {
	half := sprite.CellSize / 2
	return int(math.Round(center.X)) - half, int(math.Round(center.Y)) - half
}
