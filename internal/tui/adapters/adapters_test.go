package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/VoxDroid/dopesheet/internal/command"
	"github.com/VoxDroid/dopesheet/internal/db"
	"github.com/VoxDroid/dopesheet/internal/journal"
	"github.com/VoxDroid/dopesheet/internal/scene"
)

func TestFileSceneStore_MissingFile(t *testing.T) {
	_, err := NewFileSceneStore().Load(context.Background(), filepath.Join(t.TempDir(), "none.yaml"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileSceneStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "shot.yaml")
	in := &scene.File{Name: "shot", Nodes: []scene.NodeSpec{{ID: "read1", Kind: "reader", Values: map[string]float64{"firstFrame": 1, "lastFrame": 10}}}}
	st := NewFileSceneStore()
	if err := st.Save(ctx, p, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := st.Load(ctx, p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Name != "shot" || len(out.Nodes) != 1 || out.Nodes[0].Values["lastFrame"] != 10 {
		t.Fatalf("unexpected scene %+v", out)
	}
}

func TestJournalAdapter_History(t *testing.T) {
	dbConn, err := db.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ad := NewJournalAdapter(journal.NewRepository(dbConn))
	defer func() { _ = ad.Close() }()

	c := command.New(command.MoveClip)
	c.Node, c.Before, c.After = "read1", 0, 12
	if err := ad.Record("shot", c, journal.OpDo); err != nil {
		t.Fatalf("Record: %v", err)
	}
	h, err := ad.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 1 || h[0].Summary != "move clip read1 0 -> 12" || h[0].Operation != "do" || h[0].Scene != "shot" {
		t.Fatalf("unexpected history %+v", h)
	}
	if err := ad.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	h, _ = ad.History(context.Background(), 10)
	if len(h) != 0 {
		t.Fatalf("expected empty history after Clear")
	}
}
