// Package undo keeps the done and undone command history of an editing
// session. A Stack is the command.Dispatcher handed to the dope sheet editor.
package undo

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/VoxDroid/dopesheet/internal/command"
	"github.com/VoxDroid/dopesheet/internal/journal"
)

// ErrEmpty is returned when there is nothing to undo or redo.
var ErrEmpty = errors.New("history is empty")

// Applier executes commands against the document.
type Applier interface {
	Apply(c command.Command, reverse bool) error
}

// Sink receives every executed command, typically the journal.
type Sink interface {
	Record(scene string, c command.Command, op journal.Operation) error
}

// step is one undoable unit: every command pushed between Begin and End, or
// a single command pushed outside a group.
type step []command.Command

// Stack is an undo/redo history.
type Stack struct {
	mu    sync.Mutex
	apply Applier
	log   *zap.Logger
	sink  Sink
	scene string
	limit int

	done, undone []step
	open         step
	grouping     bool
	lastErr      error
}

// New returns an empty stack executing commands with a.
func New(a Applier, log *zap.Logger) *Stack {
	if log == nil {
		log = zap.NewNop()
	}
	return &Stack{apply: a, log: log}
}

// SetSink records every executed command to sink under the scene name.
func (s *Stack) SetSink(sink Sink, scene string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink, s.scene = sink, scene
}

// SetLimit bounds the number of undo steps kept. Zero keeps everything.
func (s *Stack) SetLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = n
	s.trim()
}

// Begin opens a group: commands pushed until End undo as one step.
func (s *Stack) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeGroup()
	s.grouping = true
}

// End closes the group opened by Begin.
func (s *Stack) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeGroup()
}

func (s *Stack) closeGroup() {
	if len(s.open) > 0 {
		s.done = append(s.done, s.open)
		s.trim()
	}
	s.open = nil
	s.grouping = false
}

func (s *Stack) trim() {
	if s.limit > 0 && len(s.done) > s.limit {
		s.done = append([]step(nil), s.done[len(s.done)-s.limit:]...)
	}
}

// Push implements command.Dispatcher. The command is applied immediately; a
// command that fails to apply is logged and not recorded.
func (s *Stack) Push(c command.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.apply.Apply(c, false); err != nil {
		s.lastErr = fmt.Errorf("apply %s: %w", c.Kind, err)
		s.log.Warn("command failed", zap.String("id", c.ID), zap.Error(err))
		return
	}
	s.lastErr = nil
	s.undone = nil
	if s.grouping {
		s.open = append(s.open, c)
	} else {
		s.done = append(s.done, step{c})
		s.trim()
	}
	s.record(c, journal.OpDo)
}

func (s *Stack) record(c command.Command, op journal.Operation) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Record(s.scene, c, op); err != nil {
		s.log.Warn("journal write failed", zap.String("id", c.ID), zap.Error(err))
	}
}

// Undo reverts the most recent step and returns its commands in the order
// they were reverted. A command that fails is skipped and the rest of the
// step is still reverted; the step moves to the redo stack either way and
// the failures are returned together.
func (s *Stack) Undo() ([]command.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeGroup()
	if len(s.done) == 0 {
		return nil, ErrEmpty
	}
	st := s.done[len(s.done)-1]
	s.done = s.done[:len(s.done)-1]
	out := make([]command.Command, 0, len(st))
	var errs []error
	for i := len(st) - 1; i >= 0; i-- {
		if err := s.apply.Apply(st[i], true); err != nil {
			s.log.Warn("undo failed", zap.String("id", st[i].ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("undo %s: %w", st[i].Kind, err))
			continue
		}
		s.record(st[i], journal.OpUndo)
		out = append(out, st[i])
	}
	s.undone = append(s.undone, st)
	s.log.Debug("undo", zap.Int("commands", len(st)), zap.Int("failed", len(errs)))
	return out, errors.Join(errs...)
}

// Redo re-applies the most recently undone step, skipping commands that fail
// in the same way as Undo.
func (s *Stack) Redo() ([]command.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeGroup()
	if len(s.undone) == 0 {
		return nil, ErrEmpty
	}
	st := s.undone[len(s.undone)-1]
	s.undone = s.undone[:len(s.undone)-1]
	out := make([]command.Command, 0, len(st))
	var errs []error
	for _, c := range st {
		if err := s.apply.Apply(c, false); err != nil {
			s.log.Warn("redo failed", zap.String("id", c.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("redo %s: %w", c.Kind, err))
			continue
		}
		s.record(c, journal.OpRedo)
		out = append(out, c)
	}
	s.done = append(s.done, st)
	s.log.Debug("redo", zap.Int("commands", len(st)), zap.Int("failed", len(errs)))
	return out, errors.Join(errs...)
}

// CanUndo reports whether a step is available to undo.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.done) > 0 || len(s.open) > 0
}

// CanRedo reports whether a step is available to redo.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undone) > 0
}

// Len returns the number of undo steps, counting an open group.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.done)
	if len(s.open) > 0 {
		n++
	}
	return n
}

// Err returns the error of the last failed Push, if the latest push failed.
func (s *Stack) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
