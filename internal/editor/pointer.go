package editor

import (
	"math"

	"go.uber.org/zap"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/command"
	"github.com/VoxDroid/dopesheet/internal/hierarchy"
	"github.com/VoxDroid/dopesheet/internal/selection"
	"github.com/VoxDroid/dopesheet/internal/viewport"
)

// PointerDown starts a gesture. The first matching rule wins: the time
// indicator handle, the selection bounding box, a clip rectangle, a keyframe
// marker, and finally the background, which starts a rectangle selection.
// The middle button always pans.
func (e *Editor) PointerDown(ev PointerEvent) State {
	p := viewport.Point{X: ev.X, Y: ev.Y}
	e.drag = drag{press: p, last: p, pressTime: e.mapper.ToTime(ev.X), modifier: ev.Modifier}

	switch ev.Button {
	case ButtonMiddle:
		e.state = DraggingView
		return e.state
	case ButtonLeft:
	default:
		return e.state
	}

	switch {
	case e.nearIndicator(p):
		e.state = MovingTimeIndicator
	case e.inBoundingBox(p):
		e.state = MovingKeySelection
	default:
		if s, ok := e.pressClip(p); ok {
			e.state = s
			break
		}
		if keys := e.keysNear(p); len(keys) > 0 {
			e.sel.Select(keys, ev.Modifier)
			e.state = MovingKeySelection
			break
		}
		if !ev.Modifier {
			e.sel.Clear()
		}
		e.drag.base = e.sel.Snapshot()
		e.drag.rect = viewport.RectFromPoints(p, p)
		e.state = SelectingByRect
	}
	e.log.Debug("pointer down", zap.Stringer("state", e.state), zap.Float64("time", e.drag.pressTime))
	e.host.RequestRedraw()
	return e.state
}

func (e *Editor) inBoundingBox(p viewport.Point) bool {
	box, ok := e.BoundingBox()
	return ok && box.Contains(p)
}

// pressClip starts a clip or group gesture when p is on a range rectangle.
func (e *Editor) pressClip(p viewport.Point) (State, bool) {
	ref, ok := e.index.HitTest(e.mapper.ToRow(p.Y))
	if !ok || ref.Kind != hierarchy.RowNode {
		return Idle, false
	}
	rect, ok := e.ClipRect(ref.Node)
	if !ok || !rect.Contains(p) {
		return Idle, false
	}
	kind, _ := e.index.Kind(ref.Node)
	e.drag.subject = ref.Node
	if kind == anim.KindGroup {
		return RepositionGroup, true
	}
	e.drag.offset, _ = e.graph.Value(ref.Node, anim.ValueTimeOffset)
	switch {
	case math.Abs(p.X-rect.Left) <= e.opts.TrimDistance:
		return TrimLeft, true
	case math.Abs(p.X-rect.Right) <= e.opts.TrimDistance:
		return TrimRight, true
	}
	return RepositionClip, true
}

// PointerMove advances the gesture in progress.
func (e *Editor) PointerMove(ev PointerEvent) {
	p := viewport.Point{X: ev.X, Y: ev.Y}
	t := e.mapper.ToTime(ev.X)
	switch e.state {
	case Idle:
		return
	case DraggingView:
		e.mapper.PanPixels(p.X - e.drag.last.X)
		e.sel.Invalidate()
		e.viewChanged()
	case MovingTimeIndicator:
		e.host.Seek(t)
		e.host.RequestRedraw()
	case MovingKeySelection:
		if dt := e.snapStep(t); dt != 0 {
			e.moveSelection(dt)
		}
	case RepositionGroup:
		if dt := e.snapStep(t); dt != 0 {
			e.moveGroup(dt)
		}
	case TrimLeft, TrimRight:
		e.trim(t)
	case RepositionClip:
		e.moveClip(t)
	case SelectingByRect:
		e.drag.rect = viewport.RectFromPoints(e.drag.press, p)
		e.drag.modifier = ev.Modifier
		e.sel.Restore(e.drag.base)
		e.sel.Select(e.keysInRect(e.mapper.RectToLogical(e.drag.rect)), ev.Modifier)
		e.host.RequestRedraw()
	}
	e.drag.last = p
}

// PointerUp ends the gesture. The editor is Idle afterwards.
func (e *Editor) PointerUp(PointerEvent) {
	if e.state == Idle {
		return
	}
	e.log.Debug("pointer up", zap.Stringer("state", e.state))
	e.state = Idle
	e.drag = drag{}
	e.sel.Invalidate()
	e.host.RequestRedraw()
}

// snapStep returns the whole-unit step not yet emitted for a drag that has
// reached time t. The cumulative displacement is truncated toward zero so
// that a step is only taken once the pointer has travelled a full unit.
func (e *Editor) snapStep(t float64) float64 {
	total := math.Trunc(t - e.drag.pressTime)
	dt := total - e.drag.emitted
	if math.Abs(dt) < 1 {
		return 0
	}
	e.drag.emitted = total
	return dt
}

func (e *Editor) moveSelection(dt float64) {
	c := command.New(command.MoveKeys)
	c.Delta = dt
	moved := map[selection.KeyID]bool{}
	for _, k := range e.sel.Keys() {
		kf, ok := anim.FindKey(e.graph, k.Param, k.Dim, k.Time)
		if !ok {
			continue
		}
		after := kf
		after.Time += dt
		c.Keys = append(c.Keys, command.KeyChange{Node: k.Node, Param: k.Param, Dim: k.Dim, Before: kf, After: after})
		moved[k.ID()] = true
	}
	if len(c.Keys) == 0 {
		return
	}
	e.sel.Shift(dt, func(k selection.SelectedKey) bool { return moved[k.ID()] })
	e.push(c)
}

func (e *Editor) moveGroup(dt float64) {
	c := command.New(command.MoveGroup)
	c.Node = e.drag.subject
	c.Delta = dt
	params := map[anim.ParamID]bool{}
	for _, m := range e.groupMembers(e.drag.subject) {
		for _, k := range e.nodeKeys(m) {
			after := k.Key
			after.Time += dt
			c.Keys = append(c.Keys, command.KeyChange{Node: k.Node, Param: k.Param, Dim: k.Dim, Before: k.Key, After: after})
			params[k.Param] = true
		}
	}
	if len(c.Keys) == 0 {
		return
	}
	e.sel.Shift(dt, func(k selection.SelectedKey) bool { return params[k.Param] })
	e.ranges.Invalidate(e.drag.subject)
	e.push(c)
}

// groupMembers returns the members contributing to the range of a group:
// nested groups are walked, and only members with an open panel count.
func (e *Editor) groupMembers(group anim.NodeID) []anim.NodeID {
	var out []anim.NodeID
	seen := map[anim.NodeID]bool{group: true}
	var visit func(g anim.NodeID)
	visit = func(g anim.NodeID) {
		for _, m := range e.graph.Members(g) {
			if seen[m] {
				continue
			}
			seen[m] = true
			if k, ok := e.graph.Kind(m); ok && k == anim.KindGroup {
				visit(m)
			}
			if e.graph.PanelOpen(m) {
				out = append(out, m)
			}
		}
	}
	visit(group)
	return out
}

func (e *Editor) trim(t float64) {
	id := e.drag.subject
	first, _ := e.graph.Value(id, anim.ValueFirstFrame)
	last, _ := e.graph.Value(id, anim.ValueLastFrame)
	offset, _ := e.graph.Value(id, anim.ValueTimeOffset)
	edge := math.Trunc(t - offset)

	var c command.Command
	if e.state == TrimLeft {
		edge = math.Min(edge, last)
		if edge == first {
			return
		}
		c = command.New(command.TrimLeft)
		c.Field, c.Before, c.After, c.Anchor = anim.ValueFirstFrame, first, edge, last
	} else {
		edge = math.Max(edge, first)
		if edge == last {
			return
		}
		c = command.New(command.TrimRight)
		c.Field, c.Before, c.After, c.Anchor = anim.ValueLastFrame, last, edge, first
	}
	c.Node = id
	e.push(c)
}

func (e *Editor) moveClip(t float64) {
	id := e.drag.subject
	cur, _ := e.graph.Value(id, anim.ValueTimeOffset)
	// The grab point is kept as a whole number of units from the clip offset.
	grab := math.Floor(e.drag.pressTime - e.drag.offset)
	next := math.Floor(t - grab)
	if next == cur {
		return
	}
	c := command.New(command.MoveClip)
	c.Node = id
	c.Field, c.Before, c.After, c.Delta = anim.ValueTimeOffset, cur, next, next-cur
	e.push(c)
}

// CursorAt returns the pointer shape for a hover at (x, y), or the shape of
// the gesture in progress.
func (e *Editor) CursorAt(x, y float64) Cursor {
	if e.state != Idle {
		return cursorFor(e.state)
	}
	p := viewport.Point{X: x, Y: y}
	switch {
	case e.inBoundingBox(p):
		return cursorFor(MovingKeySelection)
	case e.nearIndicator(p):
		return cursorFor(MovingTimeIndicator)
	}
	if ref, ok := e.index.HitTest(e.mapper.ToRow(y)); ok && ref.Kind == hierarchy.RowNode {
		if rect, ok := e.ClipRect(ref.Node); ok && rect.Contains(p) {
			kind, _ := e.index.Kind(ref.Node)
			switch {
			case kind == anim.KindGroup:
				return cursorFor(RepositionGroup)
			case math.Abs(x-rect.Left) <= e.opts.TrimDistance:
				return cursorFor(TrimLeft)
			case math.Abs(x-rect.Right) <= e.opts.TrimDistance:
				return cursorFor(TrimRight)
			}
			return cursorFor(RepositionClip)
		}
	}
	if len(e.keysNear(p)) > 0 {
		return CursorCross
	}
	return CursorArrow
}
