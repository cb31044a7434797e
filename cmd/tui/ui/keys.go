package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/VoxDroid/dopesheet/internal/anim"
)

type keyMap struct {
	Quit          key.Binding
	Undo          key.Binding
	Redo          key.Binding
	Save          key.Binding
	SelectAll     key.Binding
	Delete        key.Binding
	Frame         key.Binding
	ZoomIn        key.Binding
	ZoomOut       key.Binding
	PanLeft       key.Binding
	PanRight      key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	StepBack      key.Binding
	StepForward   key.Binding
	Cancel        key.Binding
	Interpolation key.Binding
	History       key.Binding
	Theme         key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Undo:          key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
		Redo:          key.NewBinding(key.WithKeys("U", "ctrl+r", "ctrl+y"), key.WithHelp("U", "redo")),
		Save:          key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
		SelectAll:     key.NewBinding(key.WithKeys("a", "ctrl+a"), key.WithHelp("a", "select all")),
		Delete:        key.NewBinding(key.WithKeys("x", "delete", "backspace"), key.WithHelp("x", "delete keys")),
		Frame:         key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "frame")),
		ZoomIn:        key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:       key.NewBinding(key.WithKeys("-")),
		PanLeft:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "pan")),
		PanRight:      key.NewBinding(key.WithKeys("right")),
		ScrollUp:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "scroll")),
		ScrollDown:    key.NewBinding(key.WithKeys("down", "j")),
		StepBack:      key.NewBinding(key.WithKeys(","), key.WithHelp(",/.", "step time")),
		StepForward:   key.NewBinding(key.WithKeys(".")),
		Cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Interpolation: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "interpolation")),
		History:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Theme:         key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SelectAll, k.Delete, k.Frame, k.ZoomIn, k.PanLeft, k.Interpolation, k.Undo, k.Redo, k.Save, k.History, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SelectAll, k.Delete, k.Interpolation, k.Cancel},
		{k.Frame, k.ZoomIn, k.PanLeft, k.ScrollUp, k.StepBack},
		{k.Undo, k.Redo, k.Save, k.History, k.Theme, k.Quit},
	}
}

// interpolationFor maps the digit keys onto interpolation kinds in their
// declaration order.
func interpolationFor(s string) (anim.Interpolation, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '7' {
		return 0, false
	}
	return anim.Interpolation(s[0] - '1'), true
}
