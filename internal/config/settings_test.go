package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Engine != DefaultEngine() || s.Terminal != TerminalEngine() || s.Log.Level != "info" {
		t.Fatalf("unexpected defaults %+v", s)
	}
}

func TestLoadKeepsDefaultsForAbsentFields(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("engine:\n  click_distance: 8\nlog:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Engine.ClickDistance != 8 || s.Engine.MarkerWidth != 14 || s.Log.Level != "debug" || s.Terminal.ClickDistance != 1 {
		t.Fatalf("unexpected settings %+v", s)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"zoom step":  "engine:\n  zoom_step: 0.5\n",
		"log level":  "log:\n  level: loud\n",
		"row height": "engine:\n  row_height: 0\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(p); !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Default()
	want.Engine.TrimDistance = 3
	if err := want.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Engine != want.Engine {
		t.Fatalf("got %+v want %+v", got.Engine, want.Engine)
	}
}
