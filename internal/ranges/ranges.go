// Package ranges derives the temporal extent of clip-like nodes: readers from
// their frame values, groups from the keyframes of their members.
//
// Ranges are cached per node and flagged dirty when a dependency changes;
// Get recomputes a dirty entry before returning it.
package ranges

import (
	"math"

	"go.uber.org/zap"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/hierarchy"
)

// Range is a closed time interval. The zero Range means "no range".
type Range struct {
	Start, End float64
}

// IsEmpty reports whether r is the [0,0] sentinel.
func (r Range) IsEmpty() bool { return r.Start == 0 && r.End == 0 }

// Contains reports whether t lies within r. The sentinel contains nothing.
func (r Range) Contains(t float64) bool {
	return !r.IsEmpty() && t >= r.Start && t <= r.End
}

// HasRange reports whether nodes of kind k carry a range.
func HasRange(k anim.NodeKind) bool {
	return k == anim.KindReader || k == anim.KindGroup
}

// Computer caches ranges of indexed nodes.
type Computer struct {
	graph anim.Graph
	index *hierarchy.Index
	log   *zap.Logger

	cache map[anim.NodeID]Range
	dirty map[anim.NodeID]bool
}

// New returns a Computer for nodes of index.
func New(g anim.Graph, index *hierarchy.Index, log *zap.Logger) *Computer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Computer{
		graph: g,
		index: index,
		log:   log,
		cache: map[anim.NodeID]Range{},
		dirty: map[anim.NodeID]bool{},
	}
}

// Get returns the range of node, recomputing it first when stale. ok is false
// for nodes that are not indexed or carry no range.
func (c *Computer) Get(id anim.NodeID) (Range, bool) {
	if r, ok := c.cache[id]; ok && !c.dirty[id] && c.index.Has(id) {
		return r, true
	}
	return c.Compute(id)
}

// Compute recomputes and caches the range of node. Nodes absent from the
// index are skipped.
func (c *Computer) Compute(id anim.NodeID) (Range, bool) {
	kind, ok := c.index.Kind(id)
	if !ok || !HasRange(kind) {
		return Range{}, false
	}
	var r Range
	switch kind {
	case anim.KindReader:
		r = c.readerRange(id)
	case anim.KindGroup:
		r = c.groupRange(id)
	}
	c.cache[id] = r
	delete(c.dirty, id)
	c.log.Debug("range computed", zap.String("node", string(id)), zap.Float64("start", r.Start), zap.Float64("end", r.End))
	return r, true
}

func (c *Computer) readerRange(id anim.NodeID) Range {
	start, _ := c.graph.Value(id, anim.ValueStartingTime)
	first, _ := c.graph.Value(id, anim.ValueFirstFrame)
	last, _ := c.graph.Value(id, anim.ValueLastFrame)
	return Range{Start: start, End: start + (last - first)}
}

func (c *Computer) groupRange(id anim.NodeID) Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	seen := map[anim.NodeID]bool{id: true}
	var visit func(group anim.NodeID)
	visit = func(group anim.NodeID) {
		for _, m := range c.graph.Members(group) {
			if seen[m] {
				continue
			}
			seen[m] = true
			if k, ok := c.graph.Kind(m); ok && k == anim.KindGroup {
				visit(m)
			}
			if !c.graph.PanelOpen(m) {
				continue
			}
			for _, p := range c.graph.Params(m) {
				for d := 0; d < p.Dimensions; d++ {
					first, last, ok := anim.Extent(c.graph.Keyframes(p.ID, d))
					if !ok {
						continue
					}
					lo = math.Min(lo, first)
					hi = math.Max(hi, last)
				}
			}
		}
	}
	visit(id)
	if math.IsInf(lo, 1) {
		return Range{}
	}
	return Range{Start: lo, End: hi}
}

// ComputeBelow recomputes every indexed node whose row sits at or below the
// row of node in the current screen order. Rows hidden under a collapsed
// ancestor count at that ancestor's position.
func (c *Computer) ComputeBelow(id anim.NodeID) {
	from, ok := c.position(id)
	if !ok {
		return
	}
	for _, n := range c.index.Nodes() {
		if pos, ok := c.position(n); ok && pos >= from {
			c.Compute(n)
		}
	}
}

func (c *Computer) position(id anim.NodeID) (int, bool) {
	row, ok := c.index.Resolve(hierarchy.NodeRef(id))
	if !ok {
		return 0, false
	}
	return c.index.Position(row.Ref)
}

// Invalidate flags the range of node stale.
func (c *Computer) Invalidate(id anim.NodeID) { c.dirty[id] = true }

// InvalidateAll flags every cached range stale.
func (c *Computer) InvalidateAll() {
	for id := range c.cache {
		c.dirty[id] = true
	}
}

// Forget drops node from the cache.
func (c *Computer) Forget(id anim.NodeID) {
	delete(c.cache, id)
	delete(c.dirty, id)
}

// ValueChanged invalidates a reader whose frame values changed.
func (c *Computer) ValueChanged(id anim.NodeID, name string) {
	switch name {
	case anim.ValueFirstFrame, anim.ValueLastFrame, anim.ValueStartingTime, anim.ValueTimeOffset:
		c.Invalidate(id)
	}
}

// KeyframesChanged invalidates the groups owning node.
func (c *Computer) KeyframesChanged(id anim.NodeID) { c.invalidateGroups(id) }

// PanelChanged invalidates node itself and the groups owning it, since only
// members with an open panel contribute to a group range.
func (c *Computer) PanelChanged(id anim.NodeID) {
	c.Invalidate(id)
	c.invalidateGroups(id)
}

func (c *Computer) invalidateGroups(id anim.NodeID) {
	seen := map[anim.NodeID]bool{id: true}
	for cur := id; ; {
		g, ok := c.graph.GroupOf(cur)
		if !ok || seen[g] {
			return
		}
		seen[g] = true
		c.Invalidate(g)
		cur = g
	}
}
