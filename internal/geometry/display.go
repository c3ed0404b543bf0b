package geometry

// Display describes a physical display and its usable work area.
type Display struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	Bounds   Rect   `json:"bounds"`
	WorkArea Rect   `json:"work_area"`
}

// Topology is a snapshot of every display known to the host.
type Topology struct {
	Displays  []Display `json:"displays"`
	PrimaryID int       `json:"primary_id"`
}

// fallbackBounds is used while no topology has been applied yet.
var fallbackBounds = Rect{X: 0, Y: 0, Width: 800, Height: 600}

// Empty reports whether the topology has no displays.
func (t Topology) Empty() bool { return len(t.Displays) == 0 }

// Primary returns the primary display, falling back to the first display.
func (t Topology) Primary() (Display, bool) {
	for _, d := range t.Displays {
		if d.ID == t.PrimaryID {
			return d, true
		}
	}
	if len(t.Displays) > 0 {
		return t.Displays[0], true
	}
	return Display{}, false
}

// PrimaryBounds returns the bounds of the primary display, or a fixed
// 800x600 rect when the topology is empty.
func (t Topology) PrimaryBounds() Rect {
	if d, ok := t.Primary(); ok {
		return d.Bounds
	}
	return fallbackBounds
}

// Equal reports whether two snapshots describe the same layout.
func (t Topology) Equal(o Topology) bool {
	if t.PrimaryID != o.PrimaryID || len(t.Displays) != len(o.Displays) {
		return false
	}
	for i := range t.Displays {
		if t.Displays[i] != o.Displays[i] {
			return false
		}
	}
	return true
}

// VirtualBounds returns the bounding rect covering every display.
func VirtualBounds(t Topology) Rect {
	rects := make([]Rect, 0, len(t.Displays))
	for _, d := range t.Displays {
		rects = append(rects, d.Bounds)
	}
	if u, ok := Union(rects); ok {
		return u
	}
	return fallbackBounds
}

// DisplayContaining returns the display whose bounds contain p. When no
// display contains p it returns the display with the smallest squared
// distance to p; ties keep the earlier display.
func DisplayContaining(t Topology, p Point) (Display, bool) {
	if len(t.Displays) == 0 {
		return Display{}, false
	}

	for _, d := range t.Displays {
		if d.Bounds.Contains(p) {
			return d, true
		}
	}

	best := t.Displays[0]
	bestDistance := best.Bounds.DistanceSquared(p)
	for _, d := range t.Displays[1:] {
		if dist := d.Bounds.DistanceSquared(p); dist < bestDistance {
			best = d
			bestDistance = dist
		}
	}
	return best, true
}

// ContainsAny reports whether any display's bounds contain p.
func ContainsAny(t Topology, p Point) bool {
	for _, d := range t.Displays {
		if d.Bounds.Contains(p) {
			return true
		}
	}
	return false
}

// ClampToDesktop keeps p inside the virtual desktop minus ClampMargin. If the
// clamped point still falls outside every display (a gap in an L-shaped
// layout), it is clamped again to the nearest display.
func ClampToDesktop(t Topology, p Point) Point {
	p = VirtualBounds(t).Inset(ClampMargin).Clamp(p)

	if len(t.Displays) == 0 || ContainsAny(t, p) {
		return p
	}

	d, _ := DisplayContaining(t, p)
	return d.Bounds.Inset(ClampMargin).Clamp(p)
}
