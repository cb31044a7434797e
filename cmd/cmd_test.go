package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/VoxDroid/dopesheet/internal/command"
	"github.com/VoxDroid/dopesheet/internal/config"
	"github.com/VoxDroid/dopesheet/internal/db"
	"github.com/VoxDroid/dopesheet/internal/journal"
	"github.com/VoxDroid/dopesheet/internal/version"
)

const cliScene = `
name: shot010
nodes:
  - id: read1
    kind: reader
    values: {firstFrame: 1, lastFrame: 50}
  - id: retime
    kind: retime
    inputs: [read1]
  - id: blur
    label: Soft Blur
    params:
      - name: size
        curves:
          - keys: [{time: 10}, {time: 20}]
`

// setupHome points the data directory at a fresh temp dir.
func setupHome(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv(config.EnvHome, tmp)
	t.Setenv(config.EnvJournal, "")
	cfgFile, logLevel = "", "error"
	t.Cleanup(func() { cfgFile, logLevel = "", "" })
	return tmp
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeScene(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "shot010.yaml")
	if err := os.WriteFile(p, []byte(cliScene), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	return p
}

func TestRootPrintsHint(t *testing.T) {
	setupHome(t)
	out, err := execute(t)
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}
	if !strings.Contains(out, "dopesheet --help") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	setupHome(t)
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "dopesheet "+version.Version+"\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestInspectPrintsRowForest(t *testing.T) {
	dir := setupHome(t)
	p := writeScene(t, dir)
	out, err := execute(t, "inspect", p)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	want := "retime (retime)\n  read1 (reader) [1, 50]\nblur \"Soft Blur\" (generic)\n  size: 2 keys\n"
	if out != want {
		t.Fatalf("unexpected rows:\n%s\nwant:\n%s", out, want)
	}
}

func TestInspectFuzzyFilter(t *testing.T) {
	dir := setupHome(t)
	p := writeScene(t, dir)
	t.Cleanup(func() { _ = inspectCmd.Flags().Set("filter", "") })

	out, err := execute(t, "inspect", p, "--filter", "blsz")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(out, "blur/size\tsize: 2 keys") || strings.Contains(out, "read1") {
		t.Fatalf("unexpected filtered rows: %q", out)
	}

	out, err = execute(t, "inspect", p, "--filter", "zzz")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(out, `no rows match "zzz"`) {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestInspectMissingScene(t *testing.T) {
	dir := setupHome(t)
	if _, err := execute(t, "inspect", filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing scene")
	}
}

func TestHistoryListAndClear(t *testing.T) {
	setupHome(t)
	t.Cleanup(func() { _ = historyCmd.Flags().Set("clear", "false") })

	conn, err := db.InitDB()
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	c := command.New(command.MoveKeys)
	c.Delta = 2
	c.Keys = []command.KeyChange{{Node: "blur", Param: "blur.size", Dim: 0}}
	if err := journal.NewRepository(conn).Record("shot010", c, journal.OpDo); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = conn.Close()

	out, err := execute(t, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "\tdo\tshot010\tmove 1 key by +2") {
		t.Fatalf("unexpected history: %q", out)
	}

	out, err = execute(t, "history", "--clear")
	if err != nil {
		t.Fatalf("history --clear failed: %v", err)
	}
	if out != "cleared 1 entries\n" {
		t.Fatalf("unexpected output: %q", out)
	}
	_ = historyCmd.Flags().Set("clear", "false")

	out, err = execute(t, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if out != "no history\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := setupHome(t)
	t.Cleanup(func() { _ = configInitCmd.Flags().Set("force", "false") })

	out, err := execute(t, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, filepath.Join(dir, "config.yaml")) {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := execute(t, "config", "init"); err == nil {
		t.Fatalf("expected error when the file exists")
	}
	if _, err := execute(t, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force failed: %v", err)
	}

	out, err = execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"click_distance: 5", "terminal:", "level: error"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestInvalidSettingsFileFails(t *testing.T) {
	dir := setupHome(t)
	p := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(p, []byte("engine:\n  zoom_step: 0.5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := execute(t, "--config", p, "version"); err == nil {
		t.Fatalf("expected invalid settings to fail")
	}
}
