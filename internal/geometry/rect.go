package geometry

import "math"

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether p lies inside r. Edges are inclusive on both
// sides so a point on the shared border of two displays matches the first.
func (r Rect) Contains(p Point) bool {
	return p.X >= float64(r.X) && p.X <= float64(r.Right()) &&
		p.Y >= float64(r.Y) && p.Y <= float64(r.Bottom())
}

// Inset shrinks r by margin on every side.
func (r Rect) Inset(margin int) Rect {
	return Rect{
		X:      r.X + margin,
		Y:      r.Y + margin,
		Width:  r.Width - 2*margin,
		Height: r.Height - 2*margin,
	}
}

// Clamp pulls p inside r.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: clamp(p.X, float64(r.X), float64(r.Right())),
		Y: clamp(p.Y, float64(r.Y), float64(r.Bottom())),
	}
}

// DistanceSquared returns the squared distance from p to the nearest point of r.
// Points inside r are at distance zero.
func (r Rect) DistanceSquared(p Point) float64 {
	dx := math.Max(math.Max(float64(r.X)-p.X, 0), p.X-float64(r.Right()))
	dy := math.Max(math.Max(float64(r.Y)-p.Y, 0), p.Y-float64(r.Bottom()))
	return dx*dx + dy*dy
}

// Union returns the smallest rect covering every rect in rects.
func Union(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}

	minX := rects[0].X
	minY := rects[0].Y
	maxX := rects[0].Right()
	maxY := rects[0].Bottom()

	for _, rect := range rects[1:] {
		minX = min(minX, rect.X)
		minY = min(minY, rect.Y)
		maxX = max(maxX, rect.Right())
		maxY = max(maxY, rect.Bottom())
	}

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}, true
}

// Intersect returns the overlap of a and b, and false when they do not overlap.
func Intersect(a, b Rect) (Rect, bool) {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.Right(), b.Right())
	y2 := min(a.Bottom(), b.Bottom())

	if x2 <= x1 || y2 <= y1 {
		return Rect{}, false
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// Point is a position in global screen coordinates. Movement advances in
// fractional steps so coordinates are kept as floats.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Len returns the Euclidean length of p treated as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
