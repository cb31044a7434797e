package viewport

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRoundTrip(t *testing.T) {
	m := New(800, 600)
	m.SetHorizontal(Axis{Origin: 10, Scale: 4})
	m.SetVertical(Axis{Origin: 2, Scale: 20})

	for _, p := range []Point{{0, 0}, {12.5, 3}, {-40, 7.25}} {
		s := m.ToScreen(p)
		back := m.ToLogical(s)
		if !almostEqual(back.X, p.X) || !almostEqual(back.Y, p.Y) {
			t.Fatalf("round trip %v -> %v -> %v", p, s, back)
		}
	}
	if got := m.ToScreenX(10); got != 0 {
		t.Fatalf("origin should map to 0, got %v", got)
	}
	if got := m.ToScreenY(3); got != 20 {
		t.Fatalf("row 3 should map to 20, got %v", got)
	}
}

func TestZoomClampsScale(t *testing.T) {
	tests := []struct {
		name   string
		start  float64
		factor float64
		want   float64
	}{
		{"within", 1, 2, 2},
		{"too large", 5000, 10, MaxScale},
		{"too small", 0.001, 0.001, MinScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(100, 100)
			m.SetHorizontal(Axis{Scale: tt.start})
			m.ZoomX(0, tt.factor)
			if got := m.Horizontal().Scale; !almostEqual(got, tt.want) {
				t.Fatalf("scale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZoomKeepsCenterFixed(t *testing.T) {
	m := New(200, 100)
	m.SetHorizontal(Axis{Origin: 0, Scale: 2})
	center := 30.0
	before := m.ToScreenX(center)
	m.ZoomX(center, 1.5)
	if after := m.ToScreenX(center); !almostEqual(before, after) {
		t.Fatalf("zoom center moved on screen: %v -> %v", before, after)
	}
}

func TestZoomIgnoresVertical(t *testing.T) {
	m := New(200, 100)
	m.SetVertical(Axis{Origin: 1, Scale: 20})
	m.ZoomX(10, 3)
	if v := m.Vertical(); v.Origin != 1 || v.Scale != 20 {
		t.Fatalf("vertical transform changed: %+v", v)
	}
}

func TestFit(t *testing.T) {
	m := New(500, 300)
	m.SetVertical(Axis{Origin: 4, Scale: 18})
	if !m.Fit(10, 60) {
		t.Fatalf("Fit returned false")
	}
	if !almostEqual(m.Left(), 10) || !almostEqual(m.Right(), 60) {
		t.Fatalf("range = [%v, %v], want [10, 60]", m.Left(), m.Right())
	}
	if v := m.Vertical(); v.Origin != 4 || v.Scale != 18 {
		t.Fatalf("Fit must not touch the vertical transform: %+v", v)
	}
	if m.Fit(5, 5) {
		t.Fatalf("degenerate interval should be ignored")
	}
}

func TestPanPixels(t *testing.T) {
	m := New(100, 100)
	m.SetHorizontal(Axis{Origin: 0, Scale: 2})
	m.PanPixels(20)
	if !almostEqual(m.Left(), -10) {
		t.Fatalf("Left = %v, want -10", m.Left())
	}
	if !almostEqual(m.PixelsToTime(7), 3.5) {
		t.Fatalf("PixelsToTime(7) = %v", m.PixelsToTime(7))
	}
}

func TestRectFromPointsNormalizes(t *testing.T) {
	r := RectFromPoints(Point{X: 10, Y: 5}, Point{X: 2, Y: 1})
	if r.Left != 2 || r.Right != 10 || r.Top != 1 || r.Bottom != 5 {
		t.Fatalf("unexpected rect %+v", r)
	}
	if !r.Contains(Point{X: 2, Y: 5}) {
		t.Fatalf("edges should be contained")
	}
	if r.Contains(Point{X: 11, Y: 3}) {
		t.Fatalf("point outside reported as contained")
	}
}
