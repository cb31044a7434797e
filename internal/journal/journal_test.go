package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/command"
	"github.com/VoxDroid/dopesheet/internal/db"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	dbConn, err := db.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	r := NewRepository(dbConn)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRecordAndList(t *testing.T) {
	r := newRepo(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	move := command.New(command.MoveKeys)
	move.Delta = 2
	move.Keys = []command.KeyChange{{Node: "blur", Param: "blur.size", Before: anim.Keyframe{Time: 10}, After: anim.Keyframe{Time: 12}}}
	trim := command.New(command.TrimLeft)
	trim.Node, trim.Field, trim.Before, trim.After = "read1", anim.ValueFirstFrame, 1, 5

	if err := r.Record("shot010", move, OpDo); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := r.Record("shot010", trim, OpDo); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := r.Record("", trim, OpUndo); err != nil {
		t.Fatalf("Record: %v", err)
	}

	all, err := r.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].Operation != OpUndo || all[0].Scene.Valid {
		t.Fatalf("newest entry should be the unscoped undo, got %+v", all[0])
	}
	last := all[2]
	if last.Command.ID != move.ID || last.Command.Kind != command.MoveKeys || len(last.Command.Keys) != 1 {
		t.Fatalf("payload did not survive: %+v", last.Command)
	}
	if last.Summary != "move 1 key by +2" {
		t.Fatalf("unexpected summary %q", last.Summary)
	}
	if !last.CreatedAt.Equal(base.Add(time.Second)) {
		t.Fatalf("unexpected time %v", last.CreatedAt)
	}

	limited, err := r.List(1)
	if err != nil {
		t.Fatalf("List(1): %v", err)
	}
	if len(limited) != 1 || limited[0].ID != all[0].ID {
		t.Fatalf("limit should keep the newest entry")
	}
}

func TestClear(t *testing.T) {
	r := newRepo(t)
	if err := r.Record("s", command.New(command.MoveClip), OpDo); err != nil {
		t.Fatalf("Record: %v", err)
	}
	n, err := r.Clear()
	if err != nil || n != 1 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	all, err := r.List(0)
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty journal, got %d (%v)", len(all), err)
	}
}
