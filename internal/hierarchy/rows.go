package hierarchy

import (
	"fmt"
	"sort"

	"github.com/VoxDroid/dopesheet/internal/anim"
)

// RowKind tells node, parameter and dimension rows apart.
type RowKind int

const (
	RowNode RowKind = iota
	RowParam
	RowDim
)

func (k RowKind) String() string {
	switch k {
	case RowNode:
		return "node"
	case RowParam:
		return "param"
	case RowDim:
		return "dim"
	}
	return fmt.Sprintf("rowkind(%d)", int(k))
}

// RowRef identifies the entity shown by a row.
type RowRef struct {
	Kind  RowKind
	Node  anim.NodeID
	Param anim.ParamID
	Dim   int
}

// NodeRef addresses the row of a node.
func NodeRef(id anim.NodeID) RowRef { return RowRef{Kind: RowNode, Node: id} }

// ParamRef addresses the aggregate row of a parameter.
func ParamRef(node anim.NodeID, param anim.ParamID) RowRef {
	return RowRef{Kind: RowParam, Node: node, Param: param}
}

// DimRef addresses one dimension row of a multi-dimensional parameter.
func DimRef(node anim.NodeID, param anim.ParamID, dim int) RowRef {
	return RowRef{Kind: RowDim, Node: node, Param: param, Dim: dim}
}

// Row is a displayed row. Top and Height are in row units.
type Row struct {
	Ref      RowRef
	Top      float64
	Height   float64
	Depth    int
	Expanded bool
}

// Bottom is the lower edge of the row.
func (r Row) Bottom() float64 { return r.Top + r.Height }

// Center is the vertical middle of the row.
func (r Row) Center() float64 { return r.Top + r.Height/2 }

func (x *Index) layout() {
	if !x.dirty {
		return
	}
	x.rows = x.rows[:0]
	x.byRef = make(map[RowRef]int, len(x.byRef))
	y := 0.0
	add := func(r Row) {
		r.Top = y
		y += r.Height
		x.byRef[r.Ref] = len(x.rows)
		x.rows = append(x.rows, r)
	}
	var walk func(id anim.NodeID, depth int)
	walk = func(id anim.NodeID, depth int) {
		e := x.nodes[id]
		if e.hidden {
			return
		}
		h := x.opts.RowHeight
		if e.kind.IsClipLike() {
			h = x.opts.ClipRowHeight
		}
		add(Row{Ref: NodeRef(id), Height: h, Depth: depth, Expanded: e.expanded})
		if !e.expanded {
			return
		}
		for _, c := range e.children {
			walk(c, depth+1)
		}
		for _, pe := range e.params {
			if !pe.visible() {
				continue
			}
			add(Row{Ref: ParamRef(id, pe.info.ID), Height: x.opts.RowHeight, Depth: depth + 1, Expanded: pe.expanded})
			if !pe.info.MultiDim() || !pe.expanded {
				continue
			}
			for d, keyed := range pe.keyed {
				if keyed {
					add(Row{Ref: DimRef(id, pe.info.ID, d), Height: x.opts.RowHeight, Depth: depth + 2})
				}
			}
		}
	}
	for _, id := range x.top {
		walk(id, 0)
	}
	x.dirty = false
}

// Rows returns the displayed rows in screen order.
func (x *Index) Rows() []Row {
	x.layout()
	return append([]Row(nil), x.rows...)
}

// Height is the total height of the displayed rows.
func (x *Index) Height() float64 {
	x.layout()
	if len(x.rows) == 0 {
		return 0
	}
	return x.rows[len(x.rows)-1].Bottom()
}

// Row returns the displayed row for ref.
func (x *Index) Row(ref RowRef) (Row, bool) {
	x.layout()
	i, ok := x.byRef[ref]
	if !ok {
		return Row{}, false
	}
	return x.rows[i], true
}

// Position returns the screen-order index of ref's displayed row.
func (x *Index) Position(ref RowRef) (int, bool) {
	x.layout()
	i, ok := x.byRef[ref]
	return i, ok
}

// HitTest returns the row under the vertical position y (row units).
func (x *Index) HitTest(y float64) (RowRef, bool) {
	x.layout()
	i := sort.Search(len(x.rows), func(i int) bool { return x.rows[i].Bottom() > y })
	if i == len(x.rows) || y < x.rows[i].Top {
		return RowRef{}, false
	}
	return x.rows[i].Ref, true
}

// Resolve returns the displayed row standing in for ref: the row itself when
// displayed, otherwise the nearest displayed ancestor (parameter row, node
// row, then enclosing node rows). Rows hidden under a collapsed ancestor thus
// contribute the ancestor's position.
func (x *Index) Resolve(ref RowRef) (Row, bool) {
	x.layout()
	if _, ok := x.nodes[ref.Node]; !ok {
		return Row{}, false
	}
	candidates := make([]RowRef, 0, 3)
	switch ref.Kind {
	case RowDim:
		candidates = append(candidates, ref, ParamRef(ref.Node, ref.Param), NodeRef(ref.Node))
	case RowParam:
		candidates = append(candidates, ref, NodeRef(ref.Node))
	default:
		candidates = append(candidates, NodeRef(ref.Node))
	}
	for _, c := range candidates {
		if i, ok := x.byRef[c]; ok {
			return x.rows[i], true
		}
	}
	for cur := x.nodes[ref.Node].parent; cur != ""; cur = x.nodes[cur].parent {
		if i, ok := x.byRef[NodeRef(cur)]; ok {
			return x.rows[i], true
		}
	}
	return Row{}, false
}

// ResolveKeyRow returns the displayed row a keyframe of node/param/dim is
// drawn on.
func (x *Index) ResolveKeyRow(node anim.NodeID, param anim.ParamID, dim int) (Row, bool) {
	e, ok := x.nodes[node]
	if !ok {
		return Row{}, false
	}
	if pe := e.param(param); pe != nil && !pe.info.MultiDim() {
		return x.Resolve(ParamRef(node, param))
	}
	return x.Resolve(DimRef(node, param, dim))
}
