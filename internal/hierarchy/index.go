// Package hierarchy maintains the ordered forest of dope sheet rows: one row
// per indexed node, nested parameter rows and, for multi-dimensional
// parameters, per-dimension rows.
//
// Nodes are kept in an explicit forest keyed by node id. Each entry owns an
// ordered list of child ids and a single parent id; there are no pointers
// between entries. Row geometry is derived lazily from the forest and cached
// behind a dirty flag that every structural or visibility change sets.
package hierarchy

import (
	"sort"

	"go.uber.org/zap"

	"github.com/VoxDroid/dopesheet/internal/anim"
)

// EventKind identifies what changed in the index.
type EventKind int

const (
	EventInserted EventKind = iota
	EventRemoved
	EventMoved
	EventVisibility
	EventExpanded
)

// Event is delivered to subscribers after the index changed.
type Event struct {
	Kind EventKind
	Node anim.NodeID
	Ref  RowRef
}

// Options tune the row geometry, in row units.
type Options struct {
	RowHeight     float64
	ClipRowHeight float64
}

// DefaultOptions gives every row a height of one row unit.
func DefaultOptions() Options { return Options{RowHeight: 1, ClipRowHeight: 1} }

type paramEntry struct {
	info     anim.ParamInfo
	keyed    []bool
	expanded bool
}

func (p *paramEntry) visible() bool {
	for _, k := range p.keyed {
		if k {
			return true
		}
	}
	return false
}

type entry struct {
	id       anim.NodeID
	kind     anim.NodeKind
	parent   anim.NodeID
	children []anim.NodeID
	hidden   bool
	expanded bool
	params   []*paramEntry
}

// Index is the row forest. It is not safe for concurrent use.
type Index struct {
	graph anim.Graph
	log   *zap.Logger
	opts  Options

	nodes map[anim.NodeID]*entry
	top   []anim.NodeID

	rows  []Row
	byRef map[RowRef]int
	dirty bool

	observers map[int]func(Event)
	nextObs   int
}

// New returns an empty index reading structure from g.
func New(g anim.Graph, log *zap.Logger, opts Options) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = 1
	}
	if opts.ClipRowHeight <= 0 {
		opts.ClipRowHeight = opts.RowHeight
	}
	return &Index{
		graph:     g,
		log:       log,
		opts:      opts,
		nodes:     map[anim.NodeID]*entry{},
		byRef:     map[RowRef]int{},
		observers: map[int]func(Event){},
	}
}

// Subscribe registers fn for index events and returns a func removing it.
func (x *Index) Subscribe(fn func(Event)) func() {
	id := x.nextObs
	x.nextObs++
	x.observers[id] = fn
	return func() { delete(x.observers, id) }
}

func (x *Index) emit(ev Event) {
	ids := make([]int, 0, len(x.observers))
	for id := range x.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		x.observers[id](ev)
	}
}

// Insert indexes node and places its row. Nodes consumed by an indexed
// time-altering node are nested as that consumer's first child. A clip-like
// node additionally adopts the rows of its indexed inputs whose nearest
// time-altering consumer it now is. It returns false when the node is already
// indexed or unknown to the graph.
func (x *Index) Insert(id anim.NodeID) bool {
	if _, ok := x.nodes[id]; ok {
		return false
	}
	kind, ok := x.graph.Kind(id)
	if !ok {
		return false
	}
	e := &entry{id: id, kind: kind, expanded: true}
	x.nodes[id] = e
	x.loadParams(e)

	if c, ok := x.nearestConsumer(id); ok {
		x.attach(id, c, 0)
		x.log.Debug("row nested under consumer", zap.String("node", string(id)), zap.String("consumer", string(c)))
	} else {
		x.attach(id, "", len(x.top))
	}
	if kind.IsClipLike() {
		x.adoptInputs(e)
	}
	x.refresh(e)
	x.dirty = true
	x.emit(Event{Kind: EventInserted, Node: id, Ref: NodeRef(id)})
	return true
}

func (x *Index) adoptInputs(e *entry) {
	for _, in := range x.graph.Inputs(e.id) {
		ie, ok := x.nodes[in]
		if !ok {
			continue
		}
		c, ok := x.nearestConsumer(in)
		if !ok || ie.parent == c {
			continue
		}
		x.detach(in)
		x.attach(in, c, 0)
		x.log.Debug("row relocated under consumer", zap.String("node", string(in)), zap.String("consumer", string(c)))
		x.emit(Event{Kind: EventMoved, Node: in, Ref: NodeRef(in)})
	}
}

// nearestConsumer walks downstream breadth-first and returns the first indexed
// node that nests its inputs. Candidates inside id's own subtree are skipped.
func (x *Index) nearestConsumer(id anim.NodeID) (anim.NodeID, bool) {
	seen := map[anim.NodeID]bool{id: true}
	queue := append([]anim.NodeID(nil), x.graph.Outputs(id)...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if e, ok := x.nodes[cur]; ok && policyOf(e.kind).nestsInputs && !x.isAncestor(id, cur) {
			return cur, true
		}
		queue = append(queue, x.graph.Outputs(cur)...)
	}
	return "", false
}

// isAncestor reports whether a is a strict ancestor of b in the row forest.
func (x *Index) isAncestor(a, b anim.NodeID) bool {
	for cur := b; ; {
		e, ok := x.nodes[cur]
		if !ok || e.parent == "" {
			return false
		}
		if e.parent == a {
			return true
		}
		cur = e.parent
	}
}

func (x *Index) siblings(parent anim.NodeID) *[]anim.NodeID {
	if parent == "" {
		return &x.top
	}
	return &x.nodes[parent].children
}

func (x *Index) attach(id, parent anim.NodeID, pos int) {
	x.nodes[id].parent = parent
	list := x.siblings(parent)
	*list = insertAt(*list, pos, id)
}

func (x *Index) detach(id anim.NodeID) (anim.NodeID, int) {
	parent := x.nodes[id].parent
	list := x.siblings(parent)
	for i, c := range *list {
		if c == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return parent, i
		}
	}
	return parent, len(*list)
}

func insertAt(list []anim.NodeID, pos int, ids ...anim.NodeID) []anim.NodeID {
	if pos < 0 || pos > len(list) {
		pos = len(list)
	}
	out := make([]anim.NodeID, 0, len(list)+len(ids))
	out = append(out, list[:pos]...)
	out = append(out, ids...)
	return append(out, list[pos:]...)
}

// Remove drops node from the index. Its child rows take its place in the
// parent's list, so the children of a top-level row become top-level rows.
// It returns false when the node was never indexed.
func (x *Index) Remove(id anim.NodeID) bool {
	e, ok := x.nodes[id]
	if !ok {
		return false
	}
	parent, pos := x.detach(id)
	for _, c := range e.children {
		x.nodes[c].parent = parent
	}
	list := x.siblings(parent)
	*list = insertAt(*list, pos, e.children...)
	delete(x.nodes, id)
	x.refreshGroups()
	x.dirty = true
	x.log.Debug("row removed", zap.String("node", string(id)), zap.Int("promoted", len(e.children)))
	x.emit(Event{Kind: EventRemoved, Node: id, Ref: NodeRef(id)})
	return true
}

// RefreshVisibility re-reads the parameters and keyframe presence of node and
// recomputes its row visibility, then that of its owning groups.
func (x *Index) RefreshVisibility(id anim.NodeID) {
	e, ok := x.nodes[id]
	if !ok {
		return
	}
	x.loadParams(e)
	x.refresh(e)
	x.emit(Event{Kind: EventVisibility, Node: id, Ref: NodeRef(id)})
}

// PanelChanged is called when the settings panel of node opened or closed.
func (x *Index) PanelChanged(id anim.NodeID) { x.RefreshVisibility(id) }

func (x *Index) loadParams(e *entry) {
	prev := map[anim.ParamID]bool{}
	for _, p := range e.params {
		prev[p.info.ID] = p.expanded
	}
	infos := x.graph.Params(e.id)
	e.params = e.params[:0]
	for _, info := range infos {
		if info.Dimensions < 1 {
			info.Dimensions = 1
		}
		pe := &paramEntry{info: info, keyed: make([]bool, info.Dimensions), expanded: prev[info.ID]}
		for d := range pe.keyed {
			pe.keyed[d] = len(x.graph.Keyframes(info.ID, d)) > 0
		}
		e.params = append(e.params, pe)
	}
	x.dirty = true
}

func (x *Index) refresh(e *entry) {
	x.updateHidden(e)
	seen := map[anim.NodeID]bool{e.id: true}
	for cur := e.id; ; {
		g, ok := x.graph.GroupOf(cur)
		if !ok || seen[g] {
			break
		}
		seen[g] = true
		if ge, ok := x.nodes[g]; ok {
			x.updateHidden(ge)
		}
		cur = g
	}
	x.dirty = true
}

func (x *Index) refreshGroups() {
	for changed, n := true, 0; changed && n <= len(x.nodes); n++ {
		changed = false
		for _, e := range x.nodes {
			if policyOf(e.kind).group && x.updateHidden(e) {
				changed = true
			}
		}
	}
}

// updateHidden recomputes e.hidden and reports whether it changed.
func (x *Index) updateHidden(e *entry) bool {
	p := policyOf(e.kind)
	var hidden bool
	switch {
	case p.alwaysVisible:
		hidden = false
	case p.group:
		hidden = !x.graph.PanelOpen(e.id) || !x.anyMemberVisible(e.id)
	default:
		hidden = true
		for _, pe := range e.params {
			if pe.visible() {
				hidden = false
				break
			}
		}
	}
	if hidden == e.hidden {
		return false
	}
	e.hidden = hidden
	x.dirty = true
	return true
}

func (x *Index) anyMemberVisible(group anim.NodeID) bool {
	for _, m := range x.graph.Members(group) {
		if me, ok := x.nodes[m]; ok && !me.hidden {
			return true
		}
	}
	return false
}

// SetExpanded collapses or expands a node or parameter row.
func (x *Index) SetExpanded(ref RowRef, expanded bool) bool {
	e, ok := x.nodes[ref.Node]
	if !ok {
		return false
	}
	switch ref.Kind {
	case RowNode:
		if e.expanded == expanded {
			return true
		}
		e.expanded = expanded
	case RowParam:
		pe := e.param(ref.Param)
		if pe == nil {
			return false
		}
		if pe.expanded == expanded {
			return true
		}
		pe.expanded = expanded
	default:
		return false
	}
	x.dirty = true
	x.emit(Event{Kind: EventExpanded, Node: ref.Node, Ref: ref})
	return true
}

func (e *entry) param(id anim.ParamID) *paramEntry {
	for _, p := range e.params {
		if p.info.ID == id {
			return p
		}
	}
	return nil
}

// Has reports whether node is indexed.
func (x *Index) Has(id anim.NodeID) bool {
	_, ok := x.nodes[id]
	return ok
}

// Kind returns the kind recorded for node at insertion.
func (x *Index) Kind(id anim.NodeID) (anim.NodeKind, bool) {
	e, ok := x.nodes[id]
	if !ok {
		return anim.KindGeneric, false
	}
	return e.kind, true
}

// Parent returns the node whose row contains node's row.
func (x *Index) Parent(id anim.NodeID) (anim.NodeID, bool) {
	e, ok := x.nodes[id]
	if !ok || e.parent == "" {
		return "", false
	}
	return e.parent, true
}

// Children returns the nested node rows of node in display order.
func (x *Index) Children(id anim.NodeID) []anim.NodeID {
	e, ok := x.nodes[id]
	if !ok {
		return nil
	}
	return append([]anim.NodeID(nil), e.children...)
}

// TopLevel returns the top-level node rows in display order.
func (x *Index) TopLevel() []anim.NodeID { return append([]anim.NodeID(nil), x.top...) }

// Nodes returns every indexed node, sorted by id.
func (x *Index) Nodes() []anim.NodeID {
	out := make([]anim.NodeID, 0, len(x.nodes))
	for id := range x.nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Params returns the parameters indexed for node.
func (x *Index) Params(id anim.NodeID) []anim.ParamInfo {
	e, ok := x.nodes[id]
	if !ok {
		return nil
	}
	out := make([]anim.ParamInfo, 0, len(e.params))
	for _, p := range e.params {
		out = append(out, p.info)
	}
	return out
}

// Hidden reports whether the node row is hidden by the visibility rules.
func (x *Index) Hidden(id anim.NodeID) bool {
	e, ok := x.nodes[id]
	return !ok || e.hidden
}

// OwnerOf returns the node owning param.
func (x *Index) OwnerOf(param anim.ParamID) (anim.NodeID, bool) {
	for id, e := range x.nodes {
		if e.param(param) != nil {
			return id, true
		}
	}
	return "", false
}
