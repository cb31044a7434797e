// Package editor is the interaction engine of the dope sheet. It turns
// pointer and keyboard input into selection changes, view changes and edit
// commands, and keeps the row index, range cache and selection in step with
// the graph it observes.
//
// The editor never mutates curves: every edit leaves as a command.Command
// pushed to the dispatcher. It is not safe for concurrent use; all calls are
// expected on the host's event thread.
package editor

import (
	"math"

	"go.uber.org/zap"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/command"
	"github.com/VoxDroid/dopesheet/internal/config"
	"github.com/VoxDroid/dopesheet/internal/hierarchy"
	"github.com/VoxDroid/dopesheet/internal/ranges"
	"github.com/VoxDroid/dopesheet/internal/selection"
	"github.com/VoxDroid/dopesheet/internal/viewport"
)

// Editor owns the dope sheet interaction state.
type Editor struct {
	graph    anim.Graph
	dispatch command.Dispatcher
	host     Host
	log      *zap.Logger
	opts     config.Engine

	mapper *viewport.Mapper
	index  *hierarchy.Index
	ranges *ranges.Computer
	sel    *selection.Model

	state State
	drag  drag
}

// drag is the bookkeeping of the gesture in progress.
type drag struct {
	press     viewport.Point
	last      viewport.Point
	pressTime float64
	// emitted is the whole-unit displacement already pushed as commands.
	emitted  float64
	subject  anim.NodeID
	offset   float64
	base     []selection.SelectedKey
	rect     viewport.Rect
	modifier bool
}

// New returns an editor over g. Commands go to d. A nil host or logger is
// replaced by a no-op.
func New(g anim.Graph, d command.Dispatcher, host Host, opts config.Engine, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	if host == nil {
		host = &nopHost{}
	}
	e := &Editor{
		graph:    g,
		dispatch: d,
		host:     host,
		log:      log,
		opts:     opts,
		mapper:   viewport.New(0, 0),
	}
	e.index = hierarchy.New(g, log.Named("hierarchy"), hierarchy.Options{RowHeight: opts.RowHeight, ClipRowHeight: opts.ClipRowHeight})
	e.ranges = ranges.New(g, e.index, log.Named("ranges"))
	e.sel = selection.New(e.index, e.mapper, selection.BoxOptions{MarkerWidth: opts.MarkerWidth, VerticalPadding: opts.BoxPadding})
	e.index.Subscribe(func(hierarchy.Event) { e.sel.Invalidate() })
	return e
}

// State returns the current interaction state.
func (e *Editor) State() State { return e.state }

// Mapper exposes the view transform.
func (e *Editor) Mapper() *viewport.Mapper { return e.mapper }

// Index exposes the row index.
func (e *Editor) Index() *hierarchy.Index { return e.index }

// Selection returns the selected keys.
func (e *Editor) Selection() []selection.SelectedKey { return e.sel.Keys() }

// IsSelected reports whether the key is selected.
func (e *Editor) IsSelected(id selection.KeyID) bool { return e.sel.Contains(id) }

// BoundingBox returns the selection bounding box in screen coordinates.
func (e *Editor) BoundingBox() (viewport.Rect, bool) {
	box, ok := e.sel.BoundingBox()
	if !ok {
		return viewport.Rect{}, false
	}
	return e.mapper.RectToScreen(box), true
}

// SelectionRect returns the rubber band in screen coordinates while
// selecting by rectangle.
func (e *Editor) SelectionRect() (viewport.Rect, bool) {
	if e.state != SelectingByRect {
		return viewport.Rect{}, false
	}
	return e.drag.rect, true
}

// Range returns the temporal range of a clip-like node.
func (e *Editor) Range(id anim.NodeID) (ranges.Range, bool) { return e.ranges.Get(id) }

// Resize records the view size.
func (e *Editor) Resize(width, height float64) {
	e.mapper.SetSize(width, height)
	e.sel.Invalidate()
	e.viewChanged()
}

func (e *Editor) viewChanged() {
	e.host.ViewRangeChanged(e.mapper.Left(), e.mapper.Right())
	e.host.RequestRedraw()
}

// NodeAdded indexes a node that appeared in the graph.
func (e *Editor) NodeAdded(id anim.NodeID) {
	if e.index.Insert(id) {
		e.ranges.Invalidate(id)
		e.ranges.PanelChanged(id)
		e.host.RequestRedraw()
	}
}

// AddNodes indexes nodes already present in the graph.
func (e *Editor) AddNodes(ids ...anim.NodeID) {
	for _, id := range ids {
		e.NodeAdded(id)
	}
}

// NodeRemoved drops a node and everything derived from it. A drag whose
// subject is the node is cancelled without a command.
func (e *Editor) NodeRemoved(id anim.NodeID) {
	if e.dragDependsOn(id) {
		e.log.Debug("drag subject removed", zap.String("node", string(id)), zap.Stringer("state", e.state))
		e.Cancel()
	}
	e.index.Remove(id)
	e.ranges.Forget(id)
	e.ranges.InvalidateAll()
	e.sel.DropNode(id)
	e.drag.base = dropNode(e.drag.base, id)
	e.host.RequestRedraw()
}

func (e *Editor) dragDependsOn(id anim.NodeID) bool {
	switch e.state {
	case TrimLeft, TrimRight, RepositionClip, RepositionGroup:
		return e.drag.subject == id
	case MovingKeySelection:
		for _, k := range e.sel.Keys() {
			if k.Node == id {
				return true
			}
		}
	}
	return false
}

func dropNode(keys []selection.SelectedKey, id anim.NodeID) []selection.SelectedKey {
	out := keys[:0]
	for _, k := range keys {
		if k.Node != id {
			out = append(out, k)
		}
	}
	return out
}

// KeyframesChanged refreshes visibility, group ranges and the selection
// snapshots after the curves of node changed.
func (e *Editor) KeyframesChanged(id anim.NodeID) {
	e.index.RefreshVisibility(id)
	e.ranges.KeyframesChanged(id)
	if n := e.sel.Revalidate(e.graph); n > 0 {
		e.log.Debug("selection revalidated", zap.Int("dropped", n))
	}
	e.host.RequestRedraw()
}

// ValueChanged invalidates ranges depending on a named value.
func (e *Editor) ValueChanged(id anim.NodeID, name string) {
	e.ranges.ValueChanged(id, name)
	e.host.RequestRedraw()
}

// PanelChanged re-derives visibility and ranges after a settings panel
// opened or closed.
func (e *Editor) PanelChanged(id anim.NodeID) {
	e.index.PanelChanged(id)
	e.ranges.PanelChanged(id)
	e.host.RequestRedraw()
}

// SetExpanded collapses or expands a row and recomputes the ranges of the
// rows below it.
func (e *Editor) SetExpanded(ref hierarchy.RowRef, expanded bool) bool {
	if !e.index.SetExpanded(ref, expanded) {
		return false
	}
	e.ranges.ComputeBelow(ref.Node)
	e.host.RequestRedraw()
	return true
}

// Wheel zooms the time axis around the pointer. Positive notches zoom in.
func (e *Editor) Wheel(x, _ float64, notches float64) {
	factor := math.Pow(e.opts.ZoomStep, notches)
	e.mapper.ZoomX(e.mapper.ToTime(x), factor)
	e.sel.Invalidate()
	e.viewChanged()
}

// Pan scrolls the view horizontally by dx screen units.
func (e *Editor) Pan(dx float64) {
	e.mapper.PanPixels(dx)
	e.viewChanged()
}

// Scroll moves the rows vertically by dr row units.
func (e *Editor) Scroll(dr float64) {
	e.mapper.ScrollRows(dr)
	e.sel.Invalidate()
	e.host.RequestRedraw()
}

// SelectAll selects every keyframe of every indexed node.
func (e *Editor) SelectAll() {
	var all []selection.SelectedKey
	for _, id := range e.index.Nodes() {
		all = append(all, e.RowKeys(hierarchy.NodeRef(id))...)
	}
	e.sel.Select(all, false)
	e.host.RequestRedraw()
}

// ClearSelection deselects everything.
func (e *Editor) ClearSelection() {
	e.sel.Clear()
	e.host.RequestRedraw()
}

// DeleteSelected pushes a command removing the selected keys that still
// exist.
func (e *Editor) DeleteSelected() bool {
	c := command.New(command.RemoveKeys)
	for _, k := range e.sel.Keys() {
		kf, ok := anim.FindKey(e.graph, k.Param, k.Dim, k.Time)
		if !ok {
			continue
		}
		c.Keys = append(c.Keys, command.KeyChange{Node: k.Node, Param: k.Param, Dim: k.Dim, Before: kf})
	}
	e.sel.Clear()
	return e.push(c)
}

// SetInterpolation pushes a command changing the interpolation of the
// selected keys.
func (e *Editor) SetInterpolation(interp anim.Interpolation) bool {
	c := command.New(command.SetInterpolation)
	for _, k := range e.sel.Keys() {
		kf, ok := anim.FindKey(e.graph, k.Param, k.Dim, k.Time)
		if !ok || kf.Interp == interp {
			continue
		}
		after := kf
		after.Interp = interp
		c.Keys = append(c.Keys, command.KeyChange{Node: k.Node, Param: k.Param, Dim: k.Dim, Before: kf, After: after})
	}
	return e.push(c)
}

// Frame fits the view to the selected keys, or to every key and reader clip
// when nothing is selected. A single selected key or an empty extent leaves
// the view untouched.
func (e *Editor) Frame() bool {
	lo, hi := math.Inf(1), math.Inf(-1)
	extend := func(t float64) {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	switch n := e.sel.Len(); {
	case n == 1:
		return false
	case n > 1:
		for _, k := range e.sel.Keys() {
			extend(k.Time)
		}
	default:
		for _, id := range e.index.Nodes() {
			for _, k := range e.RowKeys(hierarchy.NodeRef(id)) {
				extend(k.Time)
			}
			if kind, _ := e.index.Kind(id); kind == anim.KindReader {
				if r, ok := e.ranges.Get(id); ok && !r.IsEmpty() {
					extend(r.Start)
					extend(r.End)
				}
			}
		}
	}
	if math.IsInf(lo, 1) || (lo == 0 && hi == 0) {
		return false
	}
	if !e.mapper.Fit(lo, hi) {
		return false
	}
	e.sel.Invalidate()
	e.viewChanged()
	return true
}

// Cancel abandons the gesture in progress without pushing a command. A
// rectangle selection reverts to the selection it started from.
func (e *Editor) Cancel() {
	if e.state == SelectingByRect {
		e.sel.Restore(e.drag.base)
	}
	e.state = Idle
	e.drag = drag{}
	e.host.RequestRedraw()
}

func (e *Editor) push(c command.Command) bool {
	if len(c.Keys) == 0 && (c.Kind == command.MoveKeys || c.Kind == command.MoveGroup ||
		c.Kind == command.RemoveKeys || c.Kind == command.SetInterpolation) {
		return false
	}
	e.log.Debug("command pushed", zap.String("id", c.ID), zap.String("command", c.Describe()))
	e.dispatch.Push(c)
	e.host.RequestRedraw()
	return true
}
