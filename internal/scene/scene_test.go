package scene

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/command"
)

const sample = `
name: shot010
nodes:
  - id: read1
    kind: reader
    values: {firstFrame: 1, lastFrame: 100, timeOffset: 49}
  - id: blur
    inputs: [read1]
    params:
      - name: size
        dimensions: 2
        curves:
          - dim: 0
            keys:
              - {time: 10, value: 1}
              - {time: 11, value: 2, interp: linear}
              - {time: 20, value: 3}
  - id: grp
    kind: group
    panel: true
`

type recorder struct {
	added, removed, keys, panels []anim.NodeID
	values                       []string
}

func (r *recorder) NodeAdded(id anim.NodeID) { r.added = append(r.added, id) }
func (r *recorder) NodeRemoved(id anim.NodeID) { r.removed = append(r.removed, id) }
func (r *recorder) KeyframesChanged(id anim.NodeID) { r.keys = append(r.keys, id) }
func (r *recorder) PanelChanged(id anim.NodeID) { r.panels = append(r.panels, id) }
func (r *recorder) ValueChanged(id anim.NodeID, name string) {
	r.values = append(r.values, string(id)+"."+name)
}

func load(t *testing.T, src string) *Scene {
	t.Helper()
	f, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := FromFile(f, nil)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	return s
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"missing id":    "nodes:\n  - kind: reader\n",
		"bad kind":      "nodes:\n  - id: a\n    kind: blur\n",
		"duplicate":     "nodes:\n  - id: a\n  - id: a\n",
		"unknown input": "nodes:\n  - id: a\n    inputs: [b]\n",
		"dim range":     "nodes:\n  - id: a\n    params:\n      - name: p\n        curves:\n          - dim: 1\n",
		"bad interp":    "nodes:\n  - id: a\n    params:\n      - name: p\n        curves:\n          - keys: [{time: 1, interp: wobble}]\n",
		"start clash":   "nodes:\n  - id: a\n    kind: reader\n    values: {firstFrame: 1, startingTime: 50, timeOffset: 3}\n",
		"start alone":   "nodes:\n  - id: a\n    kind: reader\n    values: {startingTime: 50}\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestGraphQueries(t *testing.T) {
	s := load(t, sample)
	if k, ok := s.Kind("read1"); !ok || k != anim.KindReader {
		t.Fatalf("Kind(read1) = %v %v", k, ok)
	}
	if got := s.Outputs("read1"); len(got) != 1 || got[0] != "blur" {
		t.Fatalf("Outputs(read1) = %v", got)
	}
	if v, ok := s.Value("read1", anim.ValueStartingTime); !ok || v != 50 {
		t.Fatalf("startingTime = %v %v, want 50", v, ok)
	}
	params := s.Params("blur")
	if len(params) != 1 || params[0].ID != "blur.size" || params[0].Dimensions != 2 {
		t.Fatalf("Params(blur) = %+v", params)
	}
	keys := s.Keyframes("blur.size", 0)
	if len(keys) != 3 || keys[1].Interp != anim.InterpLinear || keys[0].Interp != anim.InterpSmooth {
		t.Fatalf("Keyframes = %+v", keys)
	}
	keys[0].Time = 999
	if s.Keyframes("blur.size", 0)[0].Time != 10 {
		t.Fatalf("Keyframes must return a copy")
	}
	if !s.PanelOpen("grp") || s.PanelOpen("blur") {
		t.Fatalf("panel state mismatch")
	}
}

func TestApplyMoveKeysDoesNotCollide(t *testing.T) {
	s := load(t, sample)
	rec := &recorder{}
	s.Subscribe(rec)

	c := command.New(command.MoveKeys)
	c.Delta = 1
	for _, tm := range []float64{10, 11} {
		kf, _ := anim.FindKey(s, "blur.size", 0, tm)
		after := kf
		after.Time++
		c.Keys = append(c.Keys, command.KeyChange{Node: "blur", Param: "blur.size", Before: kf, After: after})
	}
	if err := s.Apply(c, false); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	keys := s.Keyframes("blur.size", 0)
	if len(keys) != 3 || keys[0].Time != 11 || keys[0].Value != 1 || keys[1].Time != 12 || keys[1].Value != 2 {
		t.Fatalf("after move: %+v", keys)
	}
	if len(rec.keys) != 1 || rec.keys[0] != "blur" {
		t.Fatalf("notifications = %v", rec.keys)
	}

	if err := s.Apply(c, true); err != nil {
		t.Fatalf("undo: %v", err)
	}
	keys = s.Keyframes("blur.size", 0)
	if keys[0].Time != 10 || keys[1].Time != 11 {
		t.Fatalf("after undo: %+v", keys)
	}
}

func TestApplySkipsMissingKeys(t *testing.T) {
	s := load(t, sample)
	c := command.New(command.RemoveKeys)
	c.Keys = []command.KeyChange{
		{Node: "blur", Param: "blur.size", Before: anim.Keyframe{Time: 10}},
		{Node: "blur", Param: "blur.size", Before: anim.Keyframe{Time: 42}},
		{Node: "gone", Param: "gone.p", Before: anim.Keyframe{Time: 1}},
	}
	if err := s.Apply(c, false); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n := len(s.Keyframes("blur.size", 0)); n != 2 {
		t.Fatalf("expected 2 keys left, got %d", n)
	}
	if err := s.Apply(c, true); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, ok := anim.FindKey(s, "blur.size", 0, 10); !ok {
		t.Fatalf("undo should restore the removed key")
	}
}

func TestReaderStartingTimeBecomesOffset(t *testing.T) {
	f, err := Parse([]byte("nodes:\n  - id: read1\n    kind: reader\n    values: {firstFrame: 1, lastFrame: 100, startingTime: 50}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := f.Nodes[0].Values[anim.ValueStartingTime]; ok {
		t.Fatalf("startingTime should be folded into timeOffset: %v", f.Nodes[0].Values)
	}
	if v := f.Nodes[0].Values[anim.ValueTimeOffset]; v != 49 {
		t.Fatalf("timeOffset = %v, want 49", v)
	}
	s, err := FromFile(f, nil)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if v, _ := s.Value("read1", anim.ValueStartingTime); v != 50 {
		t.Fatalf("startingTime = %v, want 50", v)
	}

	if err := s.SetValue("read1", anim.ValueStartingTime, 60); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if v, _ := s.Value("read1", anim.ValueTimeOffset); v != 59 {
		t.Fatalf("timeOffset = %v, want 59", v)
	}
	if v, _ := s.Value("read1", anim.ValueStartingTime); v != 60 {
		t.Fatalf("startingTime = %v, want 60", v)
	}
}

func TestApplyValueOnRemovedNodeIsSkipped(t *testing.T) {
	s := load(t, sample)
	c := command.New(command.MoveClip)
	c.Node, c.Field, c.Before, c.After = "read1", anim.ValueTimeOffset, 49, 52
	if err := s.RemoveNode("read1"); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if err := s.Apply(c, true); err != nil {
		t.Fatalf("Apply on removed node: %v", err)
	}
}

func TestApplyTrimUpdatesStartingTime(t *testing.T) {
	s := load(t, sample)
	rec := &recorder{}
	s.Subscribe(rec)
	c := command.New(command.TrimLeft)
	c.Node, c.Field, c.Before, c.After, c.Anchor = "read1", anim.ValueFirstFrame, 1, 11, 100
	if err := s.Apply(c, false); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v, _ := s.Value("read1", anim.ValueStartingTime); v != 60 {
		t.Fatalf("startingTime = %v, want 60", v)
	}
	want := []string{"read1.firstFrame", "read1.startingTime"}
	if len(rec.values) != 2 || rec.values[0] != want[0] || rec.values[1] != want[1] {
		t.Fatalf("value notifications = %v", rec.values)
	}
	if err := s.Apply(c, true); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if v, _ := s.Value("read1", anim.ValueFirstFrame); v != 1 {
		t.Fatalf("firstFrame after undo = %v", v)
	}
}

func TestSync(t *testing.T) {
	s := load(t, sample)
	rec := &recorder{}
	s.Subscribe(rec)

	f := s.File()
	if err := s.Sync(f); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(rec.added)+len(rec.removed)+len(rec.panels) != 0 {
		t.Fatalf("identical sync should be silent: %+v", rec)
	}

	f.Nodes[2].Panel = false
	f.Nodes = f.Nodes[1:]
	if err := s.Sync(f); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(rec.removed) != 1 || rec.removed[0] != "read1" {
		t.Fatalf("removed = %v", rec.removed)
	}
	if len(rec.panels) != 1 || rec.panels[0] != "grp" {
		t.Fatalf("panels = %v", rec.panels)
	}
	if len(rec.added) != 0 {
		t.Fatalf("panel change must not re-add: %v", rec.added)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := load(t, sample)
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Name != "shot010" || len(f.Nodes) != 3 {
		t.Fatalf("unexpected file %+v", f)
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	got := make(chan *File, 4)
	w, err := NewWatcher(path, nil, func(f *File) { got <- f }, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	w.SetDebounce(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if err := os.WriteFile(path, []byte("name: changed\nnodes:\n  - id: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case f := <-got:
		if f.Name != "changed" {
			t.Fatalf("reloaded name = %q", f.Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for reload")
	}
}
