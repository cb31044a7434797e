// Package viewport maps between logical dope sheet coordinates (time on the
// horizontal axis, row units on the vertical axis) and screen coordinates.
//
// Both spaces are Y-down: row units grow toward the bottom of the view exactly
// like screen y, so a rectangle's Top is always numerically smaller than its
// Bottom on either side of the transform.
package viewport

import "math"

// Scale limits for the time axis.
const (
	MinScale = 1e-4
	MaxScale = 1e4
)

// Axis is one independent linear transform: screen = (logical - Origin) * Scale.
type Axis struct {
	Origin float64
	Scale  float64
}

// ToScreen converts a logical value to screen units.
func (a Axis) ToScreen(v float64) float64 { return (v - a.Origin) * a.Scale }

// ToLogical converts a screen value to logical units.
func (a Axis) ToLogical(s float64) float64 { return s/a.Scale + a.Origin }

// Point is a 2D position in either space.
type Point struct {
	X, Y float64
}

// Mapper owns the zoom/pan state of the dope sheet.
type Mapper struct {
	x, y          Axis
	width, height float64
}

// New returns a mapper with unit scale on both axes.
func New(width, height float64) *Mapper {
	return &Mapper{
		x:      Axis{Scale: 1},
		y:      Axis{Scale: 1},
		width:  width,
		height: height,
	}
}

// SetSize records the screen size of the view.
func (m *Mapper) SetSize(width, height float64) {
	m.width, m.height = width, height
}

// Size returns the screen size of the view.
func (m *Mapper) Size() (width, height float64) { return m.width, m.height }

// Horizontal returns the time axis transform.
func (m *Mapper) Horizontal() Axis { return m.x }

// Vertical returns the row axis transform.
func (m *Mapper) Vertical() Axis { return m.y }

// SetHorizontal replaces the time axis transform, clamping its scale.
func (m *Mapper) SetHorizontal(a Axis) {
	a.Scale = clampScale(a.Scale)
	m.x = a
}

// SetVertical replaces the row axis transform.
func (m *Mapper) SetVertical(a Axis) {
	if a.Scale <= 0 {
		return
	}
	m.y = a
}

func (m *Mapper) ToScreenX(t float64) float64 { return m.x.ToScreen(t) }
func (m *Mapper) ToTime(x float64) float64 { return m.x.ToLogical(x) }
func (m *Mapper) ToScreenY(row float64) float64 { return m.y.ToScreen(row) }
func (m *Mapper) ToRow(y float64) float64 { return m.y.ToLogical(y) }

// ToScreen converts a logical (time, row) point to screen coordinates.
func (m *Mapper) ToScreen(p Point) Point {
	return Point{X: m.x.ToScreen(p.X), Y: m.y.ToScreen(p.Y)}
}

// ToLogical converts a screen point to logical (time, row) coordinates.
func (m *Mapper) ToLogical(p Point) Point {
	return Point{X: m.x.ToLogical(p.X), Y: m.y.ToLogical(p.Y)}
}

// PixelsToTime converts a horizontal screen distance to a time distance.
func (m *Mapper) PixelsToTime(px float64) float64 { return px / m.x.Scale }

// PixelsToRows converts a vertical screen distance to row units.
func (m *Mapper) PixelsToRows(px float64) float64 { return px / m.y.Scale }

// Left is the time at the left edge of the view.
func (m *Mapper) Left() float64 { return m.x.ToLogical(0) }

// Right is the time at the right edge of the view.
func (m *Mapper) Right() float64 { return m.x.ToLogical(m.width) }

// PanTime shifts the visible time range by dt.
func (m *Mapper) PanTime(dt float64) { m.x.Origin += dt }

// PanPixels drags the content horizontally by dx screen units.
func (m *Mapper) PanPixels(dx float64) { m.x.Origin -= dx / m.x.Scale }

// ScrollRows shifts the visible row range by dr row units.
func (m *Mapper) ScrollRows(dr float64) { m.y.Origin += dr }

// ZoomX scales the time axis around the logical time center. The resulting
// scale is clamped to [MinScale, MaxScale]; the applied factor is returned.
func (m *Mapper) ZoomX(center, factor float64) float64 {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return 1
	}
	next := clampScale(m.x.Scale * factor)
	applied := next / m.x.Scale
	m.x.Origin = center - (center-m.x.Origin)/applied
	m.x.Scale = next
	return applied
}

// Fit makes the horizontal range span exactly [start, end]. The vertical
// transform is left untouched. Degenerate intervals and an unsized view are
// ignored. When the required scale is out of bounds the interval is centered
// at the clamped scale instead.
func (m *Mapper) Fit(start, end float64) bool {
	if !(end > start) || m.width <= 0 {
		return false
	}
	want := m.width / (end - start)
	scale := clampScale(want)
	if scale == want {
		m.x = Axis{Origin: start, Scale: scale}
		return true
	}
	mid := (start + end) / 2
	m.x = Axis{Origin: mid - m.width/(2*scale), Scale: scale}
	return true
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) || s <= MinScale {
		return MinScale
	}
	if s >= MaxScale {
		return MaxScale
	}
	return s
}
