package ui

import (
	"context"

	"github.com/VoxDroid/dopesheet/internal/editor"
	"github.com/VoxDroid/dopesheet/internal/scene"
	"github.com/VoxDroid/dopesheet/internal/tui/adapters"
)

// Model defines the subset of the editing session the TUI depends on. This
// decouples presentation code from the concrete implementation and makes
// unit testing easier.
type Model interface {
	Name() string
	Dirty() bool
	Editor() *editor.Editor
	Scene() *scene.Scene

	CurrentTime() float64
	Seek(t float64)
	TakeRedraw() bool

	PointerDown(ev editor.PointerEvent) editor.State
	PointerMove(ev editor.PointerEvent)
	PointerUp(ev editor.PointerEvent)

	Undo() (string, error)
	Redo() (string, error)
	Save(ctx context.Context) error
	Reload(f *scene.File) error
	History(ctx context.Context, limit int) ([]adapters.HistoryEntry, error)
	// Close cleans up any resources held by the session (e.g., DB connections).
	Close() error
}
