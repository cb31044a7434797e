// Package selection holds the set of selected keyframes and its bounding box.
//
// Selected keys are value snapshots, not live references into the curves:
// they stay valid after the curves change until Revalidate reconciles them.
package selection

import (
	"math"
	"sort"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/hierarchy"
	"github.com/VoxDroid/dopesheet/internal/viewport"
)

// KeyID is the uniqueness key of a selected keyframe.
type KeyID struct {
	Param anim.ParamID
	Dim   int
	Time  float64
}

// SelectedKey is a snapshot of a selected keyframe.
type SelectedKey struct {
	anim.KeyRef
	Key anim.Keyframe
}

// ID returns the uniqueness key of k.
func (k SelectedKey) ID() KeyID { return KeyID{Param: k.Param, Dim: k.Dim, Time: k.Time} }

// NewKey builds a snapshot of kf owned by node/param/dim.
func NewKey(node anim.NodeID, param anim.ParamID, dim int, kf anim.Keyframe) SelectedKey {
	return SelectedKey{KeyRef: anim.KeyRef{Node: node, Param: param, Dim: dim, Time: kf.Time}, Key: kf}
}

// RowResolver locates the displayed row a keyframe is drawn on.
type RowResolver interface {
	ResolveKeyRow(node anim.NodeID, param anim.ParamID, dim int) (hierarchy.Row, bool)
}

// BoxOptions are the screen-space paddings of the bounding box, in pixels.
type BoxOptions struct {
	MarkerWidth     float64
	VerticalPadding float64
}

// Model is the selection. It is not safe for concurrent use.
type Model struct {
	rows   RowResolver
	mapper *viewport.Mapper
	opts   BoxOptions

	keys map[KeyID]SelectedKey

	box      viewport.Rect
	boxOK    bool
	boxDirty bool
}

// New returns an empty selection.
func New(rows RowResolver, mapper *viewport.Mapper, opts BoxOptions) *Model {
	return &Model{rows: rows, mapper: mapper, opts: opts, keys: map[KeyID]SelectedKey{}, boxDirty: true}
}

// Select applies candidates. Without additive the selection is replaced by
// the candidates; with additive each candidate is toggled.
func (m *Model) Select(candidates []SelectedKey, additive bool) {
	if !additive {
		m.keys = make(map[KeyID]SelectedKey, len(candidates))
		for _, c := range candidates {
			m.keys[c.ID()] = c
		}
		m.Invalidate()
		return
	}
	for _, c := range candidates {
		id := c.ID()
		if _, ok := m.keys[id]; ok {
			delete(m.keys, id)
		} else {
			m.keys[id] = c
		}
	}
	m.Invalidate()
}

// Clear empties the selection.
func (m *Model) Clear() {
	if len(m.keys) == 0 {
		return
	}
	m.keys = map[KeyID]SelectedKey{}
	m.Invalidate()
}

// Len returns the number of selected keys.
func (m *Model) Len() int { return len(m.keys) }

// Contains reports whether the key is selected.
func (m *Model) Contains(id KeyID) bool {
	_, ok := m.keys[id]
	return ok
}

// Keys returns the selected keys ordered by node, param, dim and time.
func (m *Model) Keys() []SelectedKey {
	out := make([]SelectedKey, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Node != b.Node {
			return a.Node < b.Node
		}
		if a.Param != b.Param {
			return a.Param < b.Param
		}
		if a.Dim != b.Dim {
			return a.Dim < b.Dim
		}
		return a.Time < b.Time
	})
	return out
}

// Snapshot returns the current selection for a later Restore.
func (m *Model) Snapshot() []SelectedKey { return m.Keys() }

// Restore replaces the selection with a snapshot.
func (m *Model) Restore(keys []SelectedKey) { m.Select(keys, false) }

// Shift moves the snapshots matched by filter by delta. A nil filter matches
// every key.
func (m *Model) Shift(delta float64, filter func(SelectedKey) bool) {
	next := make(map[KeyID]SelectedKey, len(m.keys))
	var moved []SelectedKey
	for id, k := range m.keys {
		if filter != nil && !filter(k) {
			next[id] = k
			continue
		}
		k.Time += delta
		k.Key.Time = k.Time
		moved = append(moved, k)
	}
	for _, k := range moved {
		next[k.ID()] = k
	}
	m.keys = next
	m.Invalidate()
}

// DropNode deselects every key owned by node.
func (m *Model) DropNode(id anim.NodeID) {
	for kid, k := range m.keys {
		if k.Node == id {
			delete(m.keys, kid)
		}
	}
	m.Invalidate()
}

// Revalidate drops keys that no longer exist at their exact time and
// refreshes the value snapshots of the rest. It returns the number dropped.
func (m *Model) Revalidate(g anim.Graph) int {
	dropped := 0
	for id, k := range m.keys {
		kf, ok := anim.FindKey(g, k.Param, k.Dim, k.Time)
		if !ok {
			delete(m.keys, id)
			dropped++
			continue
		}
		k.Key = kf
		m.keys[id] = k
	}
	m.Invalidate()
	return dropped
}

// Invalidate marks the bounding box stale.
func (m *Model) Invalidate() { m.boxDirty = true }

// BoundingBox returns the logical rectangle framing the selection. It is
// undefined for fewer than two keys. The horizontal extent spans the selected
// times padded by half a marker width; the vertical extent spans the rows the
// keys resolve to, padded by VerticalPadding.
func (m *Model) BoundingBox() (viewport.Rect, bool) {
	if !m.boxDirty {
		return m.box, m.boxOK
	}
	m.box, m.boxOK = m.computeBox()
	m.boxDirty = false
	return m.box, m.boxOK
}

func (m *Model) computeBox() (viewport.Rect, bool) {
	if len(m.keys) < 2 {
		return viewport.Rect{}, false
	}
	r := viewport.Rect{Left: math.Inf(1), Right: math.Inf(-1), Top: math.Inf(1), Bottom: math.Inf(-1)}
	n := 0
	for _, k := range m.keys {
		row, ok := m.rows.ResolveKeyRow(k.Node, k.Param, k.Dim)
		if !ok {
			continue
		}
		n++
		r.Left = math.Min(r.Left, k.Time)
		r.Right = math.Max(r.Right, k.Time)
		r.Top = math.Min(r.Top, row.Top)
		r.Bottom = math.Max(r.Bottom, row.Bottom())
	}
	if n < 2 {
		return viewport.Rect{}, false
	}
	dx := m.mapper.PixelsToTime(m.opts.MarkerWidth / 2)
	dy := m.mapper.PixelsToRows(m.opts.VerticalPadding)
	return r.Inset(dx, dy), true
}
