package undo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/command"
	"github.com/VoxDroid/dopesheet/internal/journal"
	"github.com/VoxDroid/dopesheet/internal/scene"
)

const undoScene = `
nodes:
  - id: read1
    kind: reader
    values: {firstFrame: 1, lastFrame: 50}
  - id: blur
    params:
      - name: size
        curves:
          - keys: [{time: 10}, {time: 20}]
`

type entry struct {
	scene string
	id    string
	op    journal.Operation
}

type fakeSink struct {
	entries []entry
	err     error
}

func (f *fakeSink) Record(scene string, c command.Command, op journal.Operation) error {
	f.entries = append(f.entries, entry{scene, c.ID, op})
	return f.err
}

type failingApplier struct{}

func (failingApplier) Apply(command.Command, bool) error { return errors.New("boom") }

// flakyApplier applies through a scene but fails commands of one kind.
type flakyApplier struct {
	*scene.Scene
	fail command.Kind
	on   bool
}

func (f *flakyApplier) Apply(c command.Command, reverse bool) error {
	if f.on && c.Kind == f.fail {
		return errors.New("boom")
	}
	return f.Scene.Apply(c, reverse)
}

func newScene(t *testing.T) *scene.Scene {
	t.Helper()
	f, err := scene.Parse([]byte(undoScene))
	require.NoError(t, err)
	s, err := scene.FromFile(f, nil)
	require.NoError(t, err)
	return s
}

func moveKey(from, to float64) command.Command {
	c := command.New(command.MoveKeys)
	c.Delta = to - from
	c.Keys = []command.KeyChange{{Node: "blur", Param: "blur.size", Before: anim.Keyframe{Time: from}, After: anim.Keyframe{Time: to}}}
	return c
}

func times(s *scene.Scene) []float64 {
	var out []float64
	for _, k := range s.Keyframes("blur.size", 0) {
		out = append(out, k.Time)
	}
	return out
}

func TestPushUndoRedo(t *testing.T) {
	s := newScene(t)
	sink := &fakeSink{}
	st := New(s, nil)
	st.SetSink(sink, "shot010")

	c := moveKey(10, 12)
	st.Push(c)
	require.Equal(t, []float64{12, 20}, times(s))
	require.True(t, st.CanUndo())

	undone, err := st.Undo()
	require.NoError(t, err)
	require.Len(t, undone, 1)
	require.Equal(t, []float64{10, 20}, times(s))
	require.True(t, st.CanRedo())

	_, err = st.Redo()
	require.NoError(t, err)
	require.Equal(t, []float64{12, 20}, times(s))

	require.Equal(t, []entry{
		{"shot010", c.ID, journal.OpDo},
		{"shot010", c.ID, journal.OpUndo},
		{"shot010", c.ID, journal.OpRedo},
	}, sink.entries)
}

func TestGroupUndoesAsOneStep(t *testing.T) {
	s := newScene(t)
	st := New(s, nil)
	st.Begin()
	st.Push(moveKey(10, 12))
	st.Push(moveKey(12, 13))
	trim := command.New(command.TrimLeft)
	trim.Node, trim.Field, trim.Before, trim.After = "read1", anim.ValueFirstFrame, 1, 4
	st.Push(trim)
	require.Equal(t, 1, st.Len())
	st.End()

	undone, err := st.Undo()
	require.NoError(t, err)
	require.Len(t, undone, 3)
	require.Equal(t, command.TrimLeft, undone[0].Kind, "reverted newest first")
	require.Equal(t, []float64{10, 20}, times(s))
	v, _ := s.Value("read1", anim.ValueFirstFrame)
	require.Equal(t, 1.0, v)

	_, err = st.Undo()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestPushClearsRedo(t *testing.T) {
	s := newScene(t)
	st := New(s, nil)
	st.Push(moveKey(10, 12))
	_, err := st.Undo()
	require.NoError(t, err)
	st.Push(moveKey(20, 25))
	require.False(t, st.CanRedo())
	_, err = st.Redo()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestLimit(t *testing.T) {
	s := newScene(t)
	st := New(s, nil)
	st.SetLimit(2)
	st.Push(moveKey(10, 11))
	st.Push(moveKey(11, 12))
	st.Push(moveKey(12, 13))
	require.Equal(t, 2, st.Len())
}

func TestFailedPushIsNotRecorded(t *testing.T) {
	sink := &fakeSink{}
	st := New(failingApplier{}, nil)
	st.SetSink(sink, "")
	st.Push(command.New(command.MoveClip))
	require.Error(t, st.Err())
	require.False(t, st.CanUndo())
	require.Empty(t, sink.entries)
}

func TestSinkErrorsDoNotBlockEdits(t *testing.T) {
	s := newScene(t)
	st := New(s, nil)
	st.SetSink(&fakeSink{err: errors.New("disk full")}, "")
	st.Push(moveKey(10, 12))
	require.NoError(t, st.Err())
	require.True(t, st.CanUndo())
}

func TestUndoAfterNodeRemovedKeepsHistory(t *testing.T) {
	s := newScene(t)
	st := New(s, nil)
	st.Begin()
	st.Push(moveKey(10, 15))
	trim := command.New(command.TrimLeft)
	trim.Node, trim.Field, trim.Before, trim.After = "read1", anim.ValueFirstFrame, 1, 4
	st.Push(trim)
	st.End()
	require.NoError(t, s.RemoveNode("read1"))

	undone, err := st.Undo()
	require.NoError(t, err)
	require.Len(t, undone, 2)
	require.Equal(t, []float64{10, 20}, times(s))
	require.True(t, st.CanRedo())

	_, err = st.Redo()
	require.NoError(t, err)
	require.Equal(t, []float64{15, 20}, times(s))
	require.True(t, st.CanUndo())
}

func TestFailingCommandDoesNotLoseStep(t *testing.T) {
	s := newScene(t)
	fa := &flakyApplier{Scene: s, fail: command.MoveClip}
	st := New(fa, nil)
	st.Begin()
	st.Push(moveKey(10, 15))
	mc := command.New(command.MoveClip)
	mc.Node, mc.Field, mc.Before, mc.After = "read1", anim.ValueTimeOffset, 0, 3
	st.Push(mc)
	st.End()

	fa.on = true
	undone, err := st.Undo()
	require.Error(t, err)
	require.Len(t, undone, 1)
	require.Equal(t, command.MoveKeys, undone[0].Kind)
	require.Equal(t, []float64{10, 20}, times(s))
	require.False(t, st.CanUndo())
	require.True(t, st.CanRedo())

	fa.on = false
	redone, err := st.Redo()
	require.NoError(t, err)
	require.Len(t, redone, 2)
	require.Equal(t, []float64{15, 20}, times(s))
	require.True(t, st.CanUndo())
}
