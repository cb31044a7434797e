package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/VoxDroid/dopesheet/internal/editor"
	"github.com/VoxDroid/dopesheet/internal/undo"
)

// Update handles window, keyboard, mouse and watcher messages.
func (m *TuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		if !m.framed {
			m.uiModel.Editor().Frame()
			m.framed = true
		}
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	case tea.MouseMsg:
		cmd = m.handleMouse(msg)
	case SceneChangedMsg:
		if err := m.uiModel.Reload(msg.File); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = "scene reloaded from disk"
		}
		m.pressed = false
		m.stale = true
	case WatchErrorMsg:
		m.status = fmt.Sprintf("watch: %v", msg.Err)
	case historyMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("history: %v", msg.err)
			break
		}
		m.entries = msg.entries
		m.history.SetContent(formatHistory(msg.entries, historyWidth-2))
	}
	if m.uiModel.TakeRedraw() {
		m.stale = true
	}
	return m, cmd
}

func (m *TuiModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	ed := m.uiModel.Editor()
	m.stale = true
	w, _ := m.gridSize()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Undo):
		m.status = m.report("undo", m.uiModel.Undo)
		return m.loadHistory()
	case key.Matches(msg, m.keys.Redo):
		m.status = m.report("redo", m.uiModel.Redo)
		return m.loadHistory()
	case key.Matches(msg, m.keys.Save):
		if err := m.uiModel.Save(context.Background()); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
		} else {
			m.status = "saved " + m.uiModel.Name()
		}
	case key.Matches(msg, m.keys.SelectAll):
		ed.SelectAll()
		m.status = fmt.Sprintf("%d keys selected", len(ed.Selection()))
	case key.Matches(msg, m.keys.Delete):
		n := len(ed.Selection())
		if !ed.DeleteSelected() {
			m.status = "no keys to delete"
			return nil
		}
		m.status = fmt.Sprintf("deleted %d keys", n)
		return m.loadHistory()
	case key.Matches(msg, m.keys.Frame):
		if !ed.Frame() {
			m.status = "nothing to frame"
		}
	case key.Matches(msg, m.keys.ZoomIn):
		ed.Wheel(float64(w)/2, 0, 1)
	case key.Matches(msg, m.keys.ZoomOut):
		ed.Wheel(float64(w)/2, 0, -1)
	case key.Matches(msg, m.keys.PanLeft):
		ed.Pan(float64(w) / 4)
	case key.Matches(msg, m.keys.PanRight):
		ed.Pan(-float64(w) / 4)
	case key.Matches(msg, m.keys.ScrollUp):
		ed.Scroll(-1)
	case key.Matches(msg, m.keys.ScrollDown):
		ed.Scroll(1)
	case key.Matches(msg, m.keys.StepBack):
		m.uiModel.Seek(m.uiModel.CurrentTime() - 1)
	case key.Matches(msg, m.keys.StepForward):
		m.uiModel.Seek(m.uiModel.CurrentTime() + 1)
	case key.Matches(msg, m.keys.Cancel):
		if ed.State() != editor.Idle {
			ed.Cancel()
			m.pressed = false
		} else {
			ed.ClearSelection()
		}
	case key.Matches(msg, m.keys.Interpolation):
		interp, _ := interpolationFor(msg.String())
		if ed.SetInterpolation(interp) {
			m.status = "interpolation set to " + interp.String()
			return m.loadHistory()
		}
		m.status = "no keys changed"
	case key.Matches(msg, m.keys.History):
		m.showHistory = !m.showHistory
		m.resize()
		return m.loadHistory()
	case key.Matches(msg, m.keys.Theme):
		m.themeHighContrast = !m.themeHighContrast
		m.stale = true
	}
	return nil
}

// report runs an undo or redo and turns its outcome into a status line.
func (m *TuiModel) report(verb string, fn func() (string, error)) string {
	summary, err := fn()
	switch {
	case errors.Is(err, undo.ErrEmpty):
		return "nothing to " + verb
	case err != nil:
		return fmt.Sprintf("%s failed: %v", verb, err)
	}
	return verb + ": " + summary
}

// pointerEvent converts a terminal cell into dope sheet screen units, one
// unit per cell, aimed at the centre of the cell.
func pointerEvent(msg tea.MouseMsg) editor.PointerEvent {
	ev := editor.PointerEvent{
		X:        float64(msg.X-labelWidth) + 0.5,
		Y:        float64(msg.Y-gridTop) + 0.5,
		Modifier: msg.Shift || msg.Ctrl,
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		ev.Button = editor.ButtonLeft
	case tea.MouseButtonMiddle:
		ev.Button = editor.ButtonMiddle
	case tea.MouseButtonRight:
		ev.Button = editor.ButtonRight
	}
	return ev
}

func (m *TuiModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	ed := m.uiModel.Editor()
	ev := pointerEvent(msg)
	w, h := m.gridSize()
	inGrid := ev.X >= 0 && ev.X < float64(w) && ev.Y >= 0 && ev.Y < float64(h)
	inLabels := ev.X < 0 && ev.Y >= 0 && ev.Y < float64(h)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			notches := 1.0
			if msg.Button == tea.MouseButtonWheelDown {
				notches = -1
			}
			switch {
			case inGrid && !msg.Shift:
				ed.Wheel(ev.X, ev.Y, notches)
			case inGrid || inLabels:
				ed.Scroll(-notches)
			}
			return nil
		case tea.MouseButtonLeft:
			if inLabels {
				m.toggleRow(ev.Y)
				return nil
			}
		case tea.MouseButtonMiddle:
		default:
			return nil
		}
		if !inGrid || m.pressed {
			return nil
		}
		m.pressed = true
		st := m.uiModel.PointerDown(ev)
		m.cursor = ed.CursorAt(ev.X, ev.Y)
		if st == editor.Idle {
			m.uiModel.PointerUp(ev)
			m.pressed = false
		}
	case tea.MouseActionMotion:
		if m.pressed {
			m.uiModel.PointerMove(ev)
			return nil
		}
		if inGrid {
			m.cursor = ed.CursorAt(ev.X, ev.Y)
		} else {
			m.cursor = editor.CursorArrow
		}
	case tea.MouseActionRelease:
		if !m.pressed {
			return nil
		}
		m.pressed = false
		m.uiModel.PointerUp(ev)
		if inGrid {
			m.cursor = ed.CursorAt(ev.X, ev.Y)
		}
		return m.loadHistory()
	}
	return nil
}

// toggleRow expands or collapses the row drawn on screen line y.
func (m *TuiModel) toggleRow(y float64) {
	ed := m.uiModel.Editor()
	ref, ok := ed.Index().HitTest(ed.Mapper().ToRow(y))
	if !ok {
		return
	}
	row, ok := ed.Index().Row(ref)
	if !ok {
		return
	}
	ed.SetExpanded(ref, !row.Expanded)
}
