// Package model provides a framework-agnostic editing session built on top
// of adapter interfaces so the TUI code can remain presentation-focused.
//
// A Session owns the scene, the dope sheet editor and the undo stack, and
// acts as the editor's host: it keeps the playback time and the visible time
// range and records redraw requests for the presentation layer to collect.
package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/VoxDroid/dopesheet/internal/command"
	"github.com/VoxDroid/dopesheet/internal/config"
	"github.com/VoxDroid/dopesheet/internal/editor"
	"github.com/VoxDroid/dopesheet/internal/scene"
	"github.com/VoxDroid/dopesheet/internal/tui/adapters"
	"github.com/VoxDroid/dopesheet/internal/undo"
)

// ErrNoJournal is returned by history queries when no journal is configured.
var ErrNoJournal = errors.New("journal adapter not configured")

// Session is one open scene and its editing state.
type Session struct {
	store   adapters.SceneStore
	journal adapters.JournalAdapter
	log     *zap.Logger

	path  string
	scene *scene.Scene
	ed    *editor.Editor
	undo  *undo.Stack

	now         float64
	left, right float64
	redraw      bool
	dirty       bool
}

// Open loads the scene at path and builds the editor over it. journal may
// be nil.
func Open(ctx context.Context, path string, store adapters.SceneStore, journal adapters.JournalAdapter, opts config.Engine, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := store.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	sc, err := scene.FromFile(f, log.Named("scene"))
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	s := &Session{store: store, journal: journal, log: log, path: path, scene: sc}
	s.undo = undo.New(sc, log.Named("undo"))
	if journal != nil {
		s.undo.SetSink(journal, s.Name())
	}
	d := command.DispatcherFunc(func(c command.Command) {
		s.undo.Push(c)
		if s.undo.Err() == nil {
			s.dirty = true
		}
	})
	s.ed = editor.New(sc, d, s, opts, log.Named("editor"))
	sc.Subscribe(s.ed)
	s.ed.AddNodes(sc.Nodes()...)
	return s, nil
}

// Name is the scene name, or the file name without extension.
func (s *Session) Name() string {
	if n := s.scene.Name(); n != "" {
		return n
	}
	base := filepath.Base(s.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Path returns the scene file location.
func (s *Session) Path() string { return s.path }

// Scene returns the document being edited.
func (s *Session) Scene() *scene.Scene { return s.scene }

// Editor returns the dope sheet editor.
func (s *Session) Editor() *editor.Editor { return s.ed }

// Dirty reports whether the scene changed since it was loaded or saved.
func (s *Session) Dirty() bool { return s.dirty }

// RequestRedraw implements editor.Host.
func (s *Session) RequestRedraw() { s.redraw = true }

// CurrentTime implements editor.Host.
func (s *Session) CurrentTime() float64 { return s.now }

// Seek implements editor.Host.
func (s *Session) Seek(t float64) {
	s.now = t
	s.redraw = true
}

// ViewRangeChanged implements editor.Host.
func (s *Session) ViewRangeChanged(left, right float64) { s.left, s.right = left, right }

// ViewRange returns the last visible time range reported by the editor.
func (s *Session) ViewRange() (left, right float64) { return s.left, s.right }

// TakeRedraw reports whether a redraw was requested since the last call.
func (s *Session) TakeRedraw() bool {
	r := s.redraw
	s.redraw = false
	return r
}

// PointerDown forwards a press to the editor and opens an undo group so the
// whole gesture undoes in one step.
func (s *Session) PointerDown(ev editor.PointerEvent) editor.State {
	s.undo.Begin()
	return s.ed.PointerDown(ev)
}

// PointerMove forwards pointer motion to the editor.
func (s *Session) PointerMove(ev editor.PointerEvent) { s.ed.PointerMove(ev) }

// PointerUp ends the gesture and closes its undo group.
func (s *Session) PointerUp(ev editor.PointerEvent) {
	s.ed.PointerUp(ev)
	s.undo.End()
}

// Undo reverts the last step and returns a summary of it.
func (s *Session) Undo() (string, error) {
	cmds, err := s.undo.Undo()
	if len(cmds) > 0 {
		s.dirty = true
	}
	if err != nil {
		return "", err
	}
	return summarize(cmds), nil
}

// Redo re-applies the last undone step and returns a summary of it.
func (s *Session) Redo() (string, error) {
	cmds, err := s.undo.Redo()
	if len(cmds) > 0 {
		s.dirty = true
	}
	if err != nil {
		return "", err
	}
	return summarize(cmds), nil
}

func summarize(cmds []command.Command) string {
	switch len(cmds) {
	case 0:
		return ""
	case 1:
		return cmds[0].Describe()
	}
	return fmt.Sprintf("%s (+%d more)", cmds[0].Describe(), len(cmds)-1)
}

// Save writes the scene back to its file.
func (s *Session) Save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.path, s.scene.File()); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Reload brings the scene in line with f, typically after the file changed
// on disk. The gesture in progress is abandoned.
func (s *Session) Reload(f *scene.File) error {
	s.ed.Cancel()
	if err := s.scene.Sync(f); err != nil {
		return err
	}
	s.redraw = true
	return nil
}

// History returns the newest journal entries.
func (s *Session) History(ctx context.Context, limit int) ([]adapters.HistoryEntry, error) {
	if s.journal == nil {
		return nil, ErrNoJournal
	}
	return s.journal.History(ctx, limit)
}

// Close cleans up any resources held by the session (e.g., DB connections).
func (s *Session) Close() error {
	s.scene.Unsubscribe(s.ed)
	if s.journal == nil {
		return nil
	}
	if c, ok := s.journal.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
