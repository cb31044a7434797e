// Package adapters provides adapter interfaces and lightweight types used by
// the TUI to decouple it from the internal storage packages.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/VoxDroid/dopesheet/internal/command"
	"github.com/VoxDroid/dopesheet/internal/journal"
	"github.com/VoxDroid/dopesheet/internal/scene"
)

// ErrNotFound is used when a requested scene file does not exist.
var ErrNotFound = errors.New("not found")

// HistoryEntry is a journal row as rendered by the TUI history panel.
type HistoryEntry struct {
	Scene     string
	Summary   string
	Operation string
	CreatedAt time.Time
}

// SceneStore loads and saves scene documents.
type SceneStore interface {
	Load(ctx context.Context, path string) (*scene.File, error)
	Save(ctx context.Context, path string, f *scene.File) error
}

// JournalAdapter records executed commands and lists them back. Record has
// the signature the undo stack expects of its sink.
type JournalAdapter interface {
	Record(scene string, c command.Command, op journal.Operation) error
	History(ctx context.Context, limit int) ([]HistoryEntry, error)
	Clear(ctx context.Context) error
}
