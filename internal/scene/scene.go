// Package scene is the in-memory compositing graph driven by the dope sheet
// host: nodes, their named values and their animation curves. It implements
// anim.Graph for the editor and applies the commands the editor emits.
//
// A Scene is safe for concurrent use. Readers get copies; listeners are
// notified after the lock is released.
package scene

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/VoxDroid/dopesheet/internal/anim"
)

// ErrNotFound is returned when a node or parameter does not exist.
var ErrNotFound = errors.New("not found")

// ErrExists is returned when adding a node whose id is taken.
var ErrExists = errors.New("already exists")

// Listener observes scene changes.
type Listener interface {
	NodeAdded(id anim.NodeID)
	NodeRemoved(id anim.NodeID)
	KeyframesChanged(id anim.NodeID)
	ValueChanged(id anim.NodeID, name string)
	PanelChanged(id anim.NodeID)
}

type param struct {
	info   anim.ParamInfo
	node   anim.NodeID
	curves [][]anim.Keyframe
}

type node struct {
	id     anim.NodeID
	kind   anim.NodeKind
	label  string
	inputs []anim.NodeID
	group  anim.NodeID
	panel  bool
	values map[string]float64
	params []*param
}

// Scene holds the graph and its curves.
type Scene struct {
	mu     sync.RWMutex
	log    *zap.Logger
	name   string
	order  []anim.NodeID
	nodes  map[anim.NodeID]*node
	params map[anim.ParamID]*param

	lmu       sync.Mutex
	listeners []Listener
}

type notice func(Listener)

// New returns an empty scene.
func New(log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		log:    log,
		nodes:  map[anim.NodeID]*node{},
		params: map[anim.ParamID]*param{},
	}
}

// FromFile builds a scene from a validated description.
func FromFile(f *File, log *zap.Logger) (*Scene, error) {
	s := New(log)
	s.name = f.Name
	for _, n := range f.Nodes {
		if err := s.AddNode(n); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Name is the scene name from its file.
func (s *Scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Subscribe registers l for change notifications.
func (s *Scene) Subscribe(l Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Unsubscribe removes l.
func (s *Scene) Unsubscribe(l Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	for i, cur := range s.listeners {
		if cur == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Scene) notify(ns []notice) {
	if len(ns) == 0 {
		return
	}
	s.lmu.Lock()
	ls := append([]Listener(nil), s.listeners...)
	s.lmu.Unlock()
	for _, n := range ns {
		for _, l := range ls {
			n(l)
		}
	}
}

func paramID(node anim.NodeID, name string) anim.ParamID {
	return anim.ParamID(string(node) + "." + name)
}

// AddNode inserts a node described by spec.
func (s *Scene) AddNode(spec NodeSpec) error {
	kind, err := anim.ParseNodeKind(spec.Kind)
	if err != nil {
		return err
	}
	n := &node{
		id:     anim.NodeID(spec.ID),
		kind:   kind,
		label:  spec.Label,
		group:  anim.NodeID(spec.Group),
		panel:  spec.Panel,
		values: map[string]float64{},
	}
	if n.label == "" {
		n.label = spec.ID
	}
	for _, in := range spec.Inputs {
		n.inputs = append(n.inputs, anim.NodeID(in))
	}
	values := spec.Values
	if kind == anim.KindReader {
		if values, err = readerValues(values); err != nil {
			return fmt.Errorf("node %q: %w", spec.ID, err)
		}
	}
	for k, v := range values {
		n.values[k] = v
	}
	for _, ps := range spec.Params {
		p := &param{
			info: anim.ParamInfo{ID: paramID(n.id, ps.Name), Name: ps.Name, Dimensions: dims(ps)},
			node: n.id,
		}
		p.curves = make([][]anim.Keyframe, p.info.Dimensions)
		for _, c := range ps.Curves {
			for _, ks := range c.Keys {
				kf, err := ks.keyframe()
				if err != nil {
					return fmt.Errorf("node %q param %q: %w", spec.ID, ps.Name, err)
				}
				p.curves[c.Dim] = upsert(p.curves[c.Dim], kf)
			}
		}
		n.params = append(n.params, p)
	}

	s.mu.Lock()
	if _, ok := s.nodes[n.id]; ok {
		s.mu.Unlock()
		return fmt.Errorf("node %q: %w", n.id, ErrExists)
	}
	s.nodes[n.id] = n
	s.order = append(s.order, n.id)
	for _, p := range n.params {
		s.params[p.info.ID] = p
	}
	s.mu.Unlock()

	s.log.Debug("node added", zap.String("node", spec.ID), zap.String("kind", kind.String()))
	s.notify([]notice{func(l Listener) { l.NodeAdded(n.id) }})
	return nil
}

// RemoveNode deletes a node and its curves.
func (s *Scene) RemoveNode(id anim.NodeID) error {
	s.mu.Lock()
	n, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("node %q: %w", id, ErrNotFound)
	}
	delete(s.nodes, id)
	for _, p := range n.params {
		delete(s.params, p.info.ID)
	}
	for i, cur := range s.order {
		if cur == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.log.Debug("node removed", zap.String("node", string(id)))
	s.notify([]notice{func(l Listener) { l.NodeRemoved(id) }})
	return nil
}

// SetValue sets a named scalar value of a node. Setting the starting time of
// a reader moves its time offset.
func (s *Scene) SetValue(id anim.NodeID, name string, v float64) error {
	s.mu.Lock()
	n, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("node %q: %w", id, ErrNotFound)
	}
	if n.kind == anim.KindReader && name == anim.ValueStartingTime {
		name, v = anim.ValueTimeOffset, v-n.values[anim.ValueFirstFrame]
	}
	n.values[name] = v
	s.mu.Unlock()
	s.notify(valueNotices(n.kind, id, name))
	return nil
}

// valueNotices includes the derived starting time of readers.
func valueNotices(kind anim.NodeKind, id anim.NodeID, name string) []notice {
	ns := []notice{func(l Listener) { l.ValueChanged(id, name) }}
	if kind == anim.KindReader && (name == anim.ValueFirstFrame || name == anim.ValueTimeOffset) {
		ns = append(ns, func(l Listener) { l.ValueChanged(id, anim.ValueStartingTime) })
	}
	return ns
}

// SetPanelOpen opens or closes the settings panel of a node.
func (s *Scene) SetPanelOpen(id anim.NodeID, open bool) error {
	s.mu.Lock()
	n, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("node %q: %w", id, ErrNotFound)
	}
	changed := n.panel != open
	n.panel = open
	s.mu.Unlock()
	if changed {
		s.notify([]notice{func(l Listener) { l.PanelChanged(id) }})
	}
	return nil
}

// SetKeyframe inserts or replaces the key of param/dim at kf.Time.
func (s *Scene) SetKeyframe(pid anim.ParamID, dim int, kf anim.Keyframe) error {
	s.mu.Lock()
	p, err := s.curve(pid, dim)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	p.curves[dim] = upsert(p.curves[dim], kf)
	owner := p.node
	s.mu.Unlock()
	s.notify([]notice{func(l Listener) { l.KeyframesChanged(owner) }})
	return nil
}

// RemoveKeyframe deletes the key of param/dim at exactly t.
func (s *Scene) RemoveKeyframe(pid anim.ParamID, dim int, t float64) error {
	s.mu.Lock()
	p, err := s.curve(pid, dim)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	var removed bool
	p.curves[dim], removed = remove(p.curves[dim], t)
	owner := p.node
	s.mu.Unlock()
	if !removed {
		return fmt.Errorf("key %s[%d]@%g: %w", pid, dim, t, ErrNotFound)
	}
	s.notify([]notice{func(l Listener) { l.KeyframesChanged(owner) }})
	return nil
}

func (s *Scene) curve(pid anim.ParamID, dim int) (*param, error) {
	p, ok := s.params[pid]
	if !ok {
		return nil, fmt.Errorf("param %q: %w", pid, ErrNotFound)
	}
	if dim < 0 || dim >= len(p.curves) {
		return nil, fmt.Errorf("param %q dim %d: %w", pid, dim, ErrNotFound)
	}
	return p, nil
}

func upsert(keys []anim.Keyframe, kf anim.Keyframe) []anim.Keyframe {
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time >= kf.Time })
	if i < len(keys) && keys[i].Time == kf.Time {
		keys[i] = kf
		return keys
	}
	keys = append(keys, anim.Keyframe{})
	copy(keys[i+1:], keys[i:])
	keys[i] = kf
	return keys
}

func remove(keys []anim.Keyframe, t float64) ([]anim.Keyframe, bool) {
	for i, k := range keys {
		if k.Time == t {
			return append(keys[:i], keys[i+1:]...), true
		}
	}
	return keys, false
}

// Nodes returns node ids in insertion order.
func (s *Scene) Nodes() []anim.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]anim.NodeID(nil), s.order...)
}

// Kind implements anim.Graph.
func (s *Scene) Kind(id anim.NodeID) (anim.NodeKind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return anim.KindGeneric, false
	}
	return n.kind, true
}

// Label implements anim.Graph.
func (s *Scene) Label(id anim.NodeID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.nodes[id]; ok {
		return n.label
	}
	return string(id)
}

// Inputs implements anim.Graph. Inputs that no longer exist are omitted.
func (s *Scene) Inputs(id anim.NodeID) []anim.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	out := make([]anim.NodeID, 0, len(n.inputs))
	for _, in := range n.inputs {
		if _, ok := s.nodes[in]; ok {
			out = append(out, in)
		}
	}
	return out
}

// Outputs implements anim.Graph, in insertion order of the consumers.
func (s *Scene) Outputs(id anim.NodeID) []anim.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []anim.NodeID
	for _, cid := range s.order {
		for _, in := range s.nodes[cid].inputs {
			if in == id {
				out = append(out, cid)
				break
			}
		}
	}
	return out
}

// Params implements anim.Graph.
func (s *Scene) Params(id anim.NodeID) []anim.ParamInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	out := make([]anim.ParamInfo, 0, len(n.params))
	for _, p := range n.params {
		out = append(out, p.info)
	}
	return out
}

// Keyframes implements anim.Graph and returns a copy.
func (s *Scene) Keyframes(pid anim.ParamID, dim int) []anim.Keyframe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, err := s.curve(pid, dim)
	if err != nil {
		return nil
	}
	return append([]anim.Keyframe(nil), p.curves[dim]...)
}

// Value implements anim.Graph. The starting time of a reader is derived from
// its first frame and time offset.
func (s *Scene) Value(id anim.NodeID, name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return 0, false
	}
	if n.kind == anim.KindReader && name == anim.ValueStartingTime {
		first, ok := n.values[anim.ValueFirstFrame]
		if !ok {
			return 0, false
		}
		return first + n.values[anim.ValueTimeOffset], true
	}
	v, ok := n.values[name]
	if !ok && n.kind == anim.KindReader && name == anim.ValueTimeOffset {
		return 0, true
	}
	return v, ok
}

// GroupOf implements anim.Graph.
func (s *Scene) GroupOf(id anim.NodeID) (anim.NodeID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok || n.group == "" {
		return "", false
	}
	if _, ok := s.nodes[n.group]; !ok {
		return "", false
	}
	return n.group, true
}

// Members implements anim.Graph.
func (s *Scene) Members(group anim.NodeID) []anim.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if group == "" {
		return nil
	}
	var out []anim.NodeID
	for _, id := range s.order {
		if s.nodes[id].group == group {
			out = append(out, id)
		}
	}
	return out
}

// PanelOpen implements anim.Graph.
func (s *Scene) PanelOpen(id anim.NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return ok && n.panel
}

var _ anim.Graph = (*Scene)(nil)
