package adapters

import (
	"context"
	"fmt"

	"github.com/VoxDroid/dopesheet/internal/command"
	"github.com/VoxDroid/dopesheet/internal/journal"
)

// JournalAdapterImpl adapts internal/journal.Repository to the UI JournalAdapter interface.
type JournalAdapterImpl struct{ repo *journal.Repository }

// NewJournalAdapter returns an adapter that wraps an internal journal.Repository.
func NewJournalAdapter(repo *journal.Repository) *JournalAdapterImpl {
	return &JournalAdapterImpl{repo: repo}
}

// Record appends a command to the journal.
func (j *JournalAdapterImpl) Record(scene string, c command.Command, op journal.Operation) error {
	return j.repo.Record(scene, c, op)
}

// History returns the newest entries first.
func (j *JournalAdapterImpl) History(_ context.Context, limit int) ([]HistoryEntry, error) {
	entries, err := j.repo.List(limit)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntry{
			Scene:     e.Scene.String,
			Summary:   e.Summary,
			Operation: string(e.Operation),
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}

// Clear deletes every journal entry.
func (j *JournalAdapterImpl) Clear(_ context.Context) error {
	_, err := j.repo.Clear()
	return err
}

// Close closes the underlying journal database.
func (j *JournalAdapterImpl) Close() error { return j.repo.Close() }
