package geometry

import "fmt"

const (
	// ClampMargin keeps the sprite center this far inside display edges.
	ClampMargin = 16
	// TaskbarEdgeOffset is the distance from the taskbar edge at which the
	// sprite sits while sleeping or roaming.
	TaskbarEdgeOffset = 13
)

// Edge names a side of a display.
type Edge string

const (
	EdgeBottom Edge = "bottom"
	EdgeTop    Edge = "top"
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
)

// Axis names the free axis of a roam band.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// TaskbarInfo is the taskbar edge of a display together with the rects it
// was derived from.
type TaskbarInfo struct {
	Edge     Edge `json:"edge"`
	Bounds   Rect `json:"bounds"`
	WorkArea Rect `json:"work_area"`
}

// RoamBand is a one-dimensional segment along a taskbar edge. Targets are
// drawn on Axis within [Min, Max]; the other coordinate is held at Fixed.
type RoamBand struct {
	Edge  Edge    `json:"edge"`
	Axis  Axis    `json:"axis"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Fixed float64 `json:"fixed"`
}

// PointAt returns the point at offset along the free axis.
func (b RoamBand) PointAt(offset float64) Point {
	if b.Axis == AxisX {
		return Point{X: offset, Y: b.Fixed}
	}
	return Point{X: b.Fixed, Y: offset}
}

// Insets reports how far the work area is inset from the bounds on each side.
type Insets struct {
	Left, Top, Right, Bottom int
}

// InsetsOf computes the work-area insets of d.
func InsetsOf(d Display) Insets {
	b, wa := d.Bounds, d.WorkArea
	left := wa.X - b.X
	top := wa.Y - b.Y
	return Insets{
		Left:   left,
		Top:    top,
		Right:  b.Width - wa.Width - left,
		Bottom: b.Height - wa.Height - top,
	}
}

// TaskbarEdgeOf returns the edge of d holding the taskbar. Insets are checked
// in fixed priority order (bottom, top, left, right) and the first positive
// one wins; with no positive inset the edge is bottom.
func TaskbarEdgeOf(d Display) TaskbarInfo {
	in := InsetsOf(d)

	edge := EdgeBottom
	switch {
	case in.Bottom > 0:
		edge = EdgeBottom
	case in.Top > 0:
		edge = EdgeTop
	case in.Left > 0:
		edge = EdgeLeft
	case in.Right > 0:
		edge = EdgeRight
	}

	return TaskbarInfo{Edge: edge, Bounds: d.Bounds, WorkArea: d.WorkArea}
}

// SleepTarget returns the point next to the taskbar where the sprite curls up.
// The result always lies within the display bounds inset by ClampMargin.
func SleepTarget(d Display) Point {
	info := TaskbarEdgeOf(d)
	wa := info.WorkArea

	x := wa.Right() - ClampMargin
	y := wa.Bottom() - TaskbarEdgeOffset

	switch info.Edge {
	case EdgeTop:
		y = wa.Y + TaskbarEdgeOffset
	case EdgeLeft:
		x = wa.X + TaskbarEdgeOffset
	case EdgeRight:
		x = wa.Right() - TaskbarEdgeOffset
	}

	return info.Bounds.Inset(ClampMargin).Clamp(Point{X: float64(x), Y: float64(y)})
}

// RoamBandOf returns the roam band along the taskbar edge of d.
func RoamBandOf(d Display) RoamBand {
	info := TaskbarEdgeOf(d)
	wa := info.WorkArea

	if info.Edge == EdgeLeft || info.Edge == EdgeRight {
		fixed := wa.X + TaskbarEdgeOffset
		if info.Edge == EdgeRight {
			fixed = wa.Right() - TaskbarEdgeOffset
		}
		return RoamBand{
			Edge:  info.Edge,
			Axis:  AxisY,
			Min:   float64(wa.Y + ClampMargin),
			Max:   float64(wa.Bottom() - ClampMargin),
			Fixed: float64(fixed),
		}
	}

	fixed := wa.Bottom() - TaskbarEdgeOffset
	if info.Edge == EdgeTop {
		fixed = wa.Y + TaskbarEdgeOffset
	}
	return RoamBand{
		Edge:  info.Edge,
		Axis:  AxisX,
		Min:   float64(wa.X + ClampMargin),
		Max:   float64(wa.Right() - ClampMargin),
		Fixed: float64(fixed),
	}
}

// SleepTargetNear resolves the sleep target on the display nearest p.
func SleepTargetNear(t Topology, p Point) (Point, error) {
	d, ok := DisplayContaining(t, p)
	if !ok {
		return Point{}, fmt.Errorf("no displays in topology")
	}
	return SleepTarget(d), nil
}

// RoamBandNear resolves the roam band on the display nearest p.
func RoamBandNear(t Topology, p Point) (RoamBand, error) {
	d, ok := DisplayContaining(t, p)
	if !ok {
		return RoamBand{}, fmt.Errorf("no displays in topology")
	}
	return RoamBandOf(d), nil
}
