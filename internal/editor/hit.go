package editor

import (
	"math"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/hierarchy"
	"github.com/VoxDroid/dopesheet/internal/selection"
	"github.com/VoxDroid/dopesheet/internal/viewport"
)

// RowKeys returns the keyframes drawn on a row. A node row carries every
// key of the node's own parameters, a parameter row every dimension of the
// parameter and a dimension row that dimension only.
func (e *Editor) RowKeys(ref hierarchy.RowRef) []selection.SelectedKey {
	var out []selection.SelectedKey
	for _, p := range e.index.Params(ref.Node) {
		if ref.Kind != hierarchy.RowNode && p.ID != ref.Param {
			continue
		}
		for d := 0; d < p.Dimensions; d++ {
			if ref.Kind == hierarchy.RowDim && d != ref.Dim {
				continue
			}
			for _, kf := range e.graph.Keyframes(p.ID, d) {
				out = append(out, selection.NewKey(ref.Node, p.ID, d, kf))
			}
		}
	}
	return out
}

func (e *Editor) nodeKeys(id anim.NodeID) []selection.SelectedKey {
	return e.RowKeys(hierarchy.NodeRef(id))
}

// ClipRect returns the screen rectangle of a node's range, drawn on its
// node row. ok is false when the node has no range or its row is not
// displayed.
func (e *Editor) ClipRect(id anim.NodeID) (viewport.Rect, bool) {
	r, ok := e.ranges.Get(id)
	if !ok || r.IsEmpty() {
		return viewport.Rect{}, false
	}
	row, ok := e.index.Row(hierarchy.NodeRef(id))
	if !ok {
		return viewport.Rect{}, false
	}
	return e.mapper.RectToScreen(viewport.Rect{Left: r.Start, Top: row.Top, Right: r.End, Bottom: row.Bottom()}), true
}

// nearIndicator reports whether p is on the triangular handle of the time
// indicator, whose base lies on the bottom edge of the view.
func (e *Editor) nearIndicator(p viewport.Point) bool {
	_, h := e.mapper.Size()
	apex := h - e.opts.IndicatorHeight
	if p.Y < apex || p.Y > h {
		return false
	}
	x := e.mapper.ToScreenX(e.host.CurrentTime())
	half := e.opts.IndicatorHalfWidth * (p.Y - apex) / e.opts.IndicatorHeight
	return math.Abs(p.X-x) <= half
}

// keysNear returns the keys of the row under p whose marker is within the
// click distance of p.
func (e *Editor) keysNear(p viewport.Point) []selection.SelectedKey {
	ref, ok := e.index.HitTest(e.mapper.ToRow(p.Y))
	if !ok {
		return nil
	}
	var out []selection.SelectedKey
	for _, k := range e.RowKeys(ref) {
		if math.Abs(e.mapper.ToScreenX(k.Time)-p.X) < e.opts.ClickDistance {
			out = append(out, k)
		}
	}
	return out
}

// keysInRect returns the keys drawn on displayed rows whose centre lies in
// the logical rectangle r and whose time is within its horizontal span.
func (e *Editor) keysInRect(r viewport.Rect) []selection.SelectedKey {
	seen := map[selection.KeyID]bool{}
	var out []selection.SelectedKey
	for _, row := range e.index.Rows() {
		if c := row.Center(); c < r.Top || c > r.Bottom {
			continue
		}
		for _, k := range e.RowKeys(row.Ref) {
			if k.Time < r.Left || k.Time > r.Right || seen[k.ID()] {
				continue
			}
			seen[k.ID()] = true
			out = append(out, k)
		}
	}
	return out
}
