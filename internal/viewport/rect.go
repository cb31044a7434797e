package viewport

import "math"

// Rect is an axis-aligned rectangle. In logical space Left/Right are times
// and Top/Bottom are row units; Top <= Bottom once normalized.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectFromPoints returns the normalized rectangle spanned by two corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		Left:   math.Min(a.X, b.X),
		Right:  math.Max(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Bottom: math.Max(a.Y, b.Y),
	}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Inset grows r by dx on both horizontal sides and dy on both vertical sides.
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{Left: r.Left - dx, Right: r.Right + dx, Top: r.Top - dy, Bottom: r.Bottom + dy}
}

// RectToScreen converts a logical rectangle to screen space.
func (m *Mapper) RectToScreen(r Rect) Rect {
	return RectFromPoints(m.ToScreen(Point{X: r.Left, Y: r.Top}), m.ToScreen(Point{X: r.Right, Y: r.Bottom}))
}

// RectToLogical converts a screen rectangle to logical space.
func (m *Mapper) RectToLogical(r Rect) Rect {
	return RectFromPoints(m.ToLogical(Point{X: r.Left, Y: r.Top}), m.ToLogical(Point{X: r.Right, Y: r.Bottom}))
}
