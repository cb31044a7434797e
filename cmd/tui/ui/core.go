package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/VoxDroid/dopesheet/internal/editor"
	"github.com/VoxDroid/dopesheet/internal/scene"
	"github.com/VoxDroid/dopesheet/internal/tui/adapters"
)

// Layout of the screen, in cells.
const (
	labelWidth   = 24
	historyWidth = 42
	// header and ruler above the grid, help and status bar below it.
	gridTop    = 2
	chromeRows = 4

	historyLimit = 50
)

// TuiModel is the Bubble Tea model used by cmd/tui.
type TuiModel struct {
	uiModel Model
	keys    keyMap
	help    help.Model
	history viewport.Model

	width  int
	height int

	// framed is set once the view was fitted to the scene content.
	framed      bool
	showHistory bool
	entries     []adapters.HistoryEntry
	status      string
	cursor      editor.Cursor
	pressed     bool
	// accessibility / theme
	themeHighContrast bool

	// canvas caches the rendered grid until the session asks for a redraw.
	canvas []string
	stale  bool
}

// Messages

// SceneChangedMsg carries a scene file re-read after it changed on disk.
type SceneChangedMsg struct{ File *scene.File }

// WatchErrorMsg reports a failure of the file watcher.
type WatchErrorMsg struct{ Err error }

type historyMsg struct {
	entries []adapters.HistoryEntry
	err     error
}

// NewModel constructs the Bubble Tea TUI model used by cmd/tui. It accepts
// any implementation of Model (usually the editing session) so tests can
// provide fakes.
func NewModel(ui Model) *TuiModel {
	return &TuiModel{
		uiModel: ui,
		keys:    defaultKeys(),
		help:    help.New(),
		history: viewport.New(0, 0),
		stale:   true,
	}
}

// NewProgram constructs the tea.Program for the TUI. Hover feedback needs
// motion events without a pressed button, hence all-motion mouse tracking.
func NewProgram(ui Model) *tea.Program {
	m := NewModel(ui)
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
}

// Init sets the terminal title.
func (m *TuiModel) Init() tea.Cmd {
	return tea.SetWindowTitle("dopesheet: " + m.uiModel.Name())
}

// loadHistory fetches the journal for the side panel when it is shown.
func (m *TuiModel) loadHistory() tea.Cmd {
	if !m.showHistory {
		return nil
	}
	ui := m.uiModel
	return func() tea.Msg {
		entries, err := ui.History(context.Background(), historyLimit)
		return historyMsg{entries: entries, err: err}
	}
}

// gridSize returns the size of the dope sheet area in cells.
func (m *TuiModel) gridSize() (w, h int) {
	w = m.width - labelWidth
	if m.showHistory {
		w -= historyWidth
	}
	h = m.height - chromeRows
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func (m *TuiModel) resize() {
	w, h := m.gridSize()
	m.uiModel.Editor().Resize(float64(w), float64(h))
	m.history.Width = historyWidth - 2
	m.history.Height = h + 1
	m.help.Width = m.width
	m.stale = true
}
