package scene

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/VoxDroid/dopesheet/internal/anim"
)

// File returns a description of the current scene state.
func (s *Scene) File() *File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := &File{Name: s.name}
	for _, id := range s.order {
		f.Nodes = append(f.Nodes, s.nodes[id].spec())
	}
	return f
}

func (n *node) spec() NodeSpec {
	ns := NodeSpec{
		ID:    string(n.id),
		Kind:  n.kind.String(),
		Label: n.label,
		Group: string(n.group),
		Panel: n.panel,
	}
	for _, in := range n.inputs {
		ns.Inputs = append(ns.Inputs, string(in))
	}
	if len(n.values) > 0 {
		ns.Values = make(map[string]float64, len(n.values))
		for k, v := range n.values {
			ns.Values[k] = v
		}
	}
	for _, p := range n.params {
		ps := ParamSpec{Name: p.info.Name, Dimensions: p.info.Dimensions}
		for d, keys := range p.curves {
			if len(keys) == 0 {
				continue
			}
			cs := CurveSpec{Dim: d}
			for _, k := range keys {
				cs.Keys = append(cs.Keys, KeySpec{Time: k.Time, Value: k.Value, Interp: k.Interp.String()})
			}
			ps.Curves = append(ps.Curves, cs)
		}
		ns.Params = append(ns.Params, ps)
	}
	return ns
}

// Save writes the current scene state to path.
func (s *Scene) Save(path string) error {
	data, err := s.File().Marshal()
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

// Sync brings the scene in line with f. Nodes missing from f are removed,
// new nodes are added and changed nodes are replaced. A node whose only
// change is its panel state keeps its identity.
func (s *Scene) Sync(f *File) error {
	want := map[anim.NodeID]NodeSpec{}
	for _, n := range f.Nodes {
		want[anim.NodeID(n.ID)] = n
	}
	for _, id := range s.Nodes() {
		if _, ok := want[id]; !ok {
			if err := s.RemoveNode(id); err != nil {
				return err
			}
		}
	}
	current := map[anim.NodeID]NodeSpec{}
	for _, n := range s.File().Nodes {
		current[anim.NodeID(n.ID)] = n
	}
	for _, spec := range f.Nodes {
		id := anim.NodeID(spec.ID)
		cur, ok := current[id]
		if !ok {
			if err := s.AddNode(spec); err != nil {
				return err
			}
			continue
		}
		a, b := normalize(cur), normalize(spec)
		if reflect.DeepEqual(a, b) {
			continue
		}
		a.Panel = b.Panel
		if reflect.DeepEqual(a, b) {
			if err := s.SetPanelOpen(id, spec.Panel); err != nil {
				return err
			}
			continue
		}
		if err := s.RemoveNode(id); err != nil {
			return err
		}
		if err := s.AddNode(spec); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.name = f.Name
	s.mu.Unlock()
	return nil
}

func normalize(n NodeSpec) NodeSpec {
	kind, err := anim.ParseNodeKind(n.Kind)
	if err == nil {
		n.Kind = kind.String()
	}
	if n.Label == "" {
		n.Label = n.ID
	}
	if len(n.Inputs) == 0 {
		n.Inputs = nil
	}
	if len(n.Values) == 0 {
		n.Values = nil
	}
	params := make([]ParamSpec, 0, len(n.Params))
	for _, p := range n.Params {
		p.Dimensions = dims(p)
		curves := make([]CurveSpec, 0, len(p.Curves))
		for _, c := range p.Curves {
			if len(c.Keys) == 0 {
				continue
			}
			keys := make([]KeySpec, 0, len(c.Keys))
			for _, k := range c.Keys {
				if kf, err := k.keyframe(); err == nil {
					k.Interp = kf.Interp.String()
				}
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
			c.Keys = keys
			curves = append(curves, c)
		}
		sort.Slice(curves, func(i, j int) bool { return curves[i].Dim < curves[j].Dim })
		p.Curves = curves
		params = append(params, p)
	}
	n.Params = params
	return n
}
