package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/hierarchy"
	"github.com/VoxDroid/dopesheet/internal/tui/adapters"
	"github.com/VoxDroid/dopesheet/internal/tui/sanitize"
	"github.com/VoxDroid/dopesheet/internal/viewport"
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellBox
	cellBand
	cellClip
	cellClipEdge
	cellGroup
	cellIndicator
	cellKey
	cellKeySelected
)

type cell struct {
	r    rune
	kind cellKind
}

type theme struct {
	title  lipgloss.Style
	label  lipgloss.Style
	ruler  lipgloss.Style
	status lipgloss.Style
	footer lipgloss.Style
	panel  lipgloss.Style
	cells  map[cellKind]lipgloss.Style
}

func newTheme(highContrast bool) theme {
	accent, dim, bg, fg := "#0ea5a4", "#94a3b8", "#0b1226", "#e2e8f0"
	clip, group, sel, band := "#334155", "#3b2f5c", "#f59e0b", "#1e293b"
	if highContrast {
		accent, dim, bg, fg = "#ffff00", "#ffffff", "#000000", "#ffffff"
		clip, group, sel, band = "#0000aa", "#550055", "#ff0000", "#333333"
	}
	return theme{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accent)).Background(lipgloss.Color(bg)),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Width(labelWidth).MaxWidth(labelWidth),
		ruler:  lipgloss.NewStyle().Foreground(lipgloss.Color(dim)),
		status: lipgloss.NewStyle().Background(lipgloss.Color(bg)).Foreground(lipgloss.Color(fg)).Padding(0, 1),
		footer: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(dim)),
		panel:  lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(lipgloss.Color(accent)).PaddingLeft(1),
		cells: map[cellKind]lipgloss.Style{
			cellEmpty:       lipgloss.NewStyle(),
			cellBox:         lipgloss.NewStyle().Background(lipgloss.Color(band)),
			cellBand:        lipgloss.NewStyle().Background(lipgloss.Color(band)).Foreground(lipgloss.Color(accent)),
			cellClip:        lipgloss.NewStyle().Background(lipgloss.Color(clip)).Foreground(lipgloss.Color(fg)),
			cellClipEdge:    lipgloss.NewStyle().Background(lipgloss.Color(clip)).Foreground(lipgloss.Color(accent)).Bold(true),
			cellGroup:       lipgloss.NewStyle().Background(lipgloss.Color(group)).Foreground(lipgloss.Color(fg)),
			cellIndicator:   lipgloss.NewStyle().Foreground(lipgloss.Color(accent)),
			cellKey:         lipgloss.NewStyle().Foreground(lipgloss.Color(fg)),
			cellKeySelected: lipgloss.NewStyle().Foreground(lipgloss.Color(sel)).Bold(true),
		},
	}
}

// View renders the header, time ruler, dope sheet grid, optional history
// panel, key help and status bar.
func (m *TuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}
	th := newTheme(m.themeHighContrast)
	w, h := m.gridSize()

	if m.stale || len(m.canvas) != h {
		m.canvas = m.renderGrid(th, w, h)
		m.stale = false
	}
	labels := m.renderLabels(th, h)
	lines := make([]string, h)
	for i := range lines {
		lines[i] = labels[i] + m.canvas[i]
	}
	ruler := strings.Repeat(" ", labelWidth) + th.ruler.Render(m.renderRuler(w))
	body := lipgloss.JoinVertical(lipgloss.Left, ruler, strings.Join(lines, "\n"))
	if m.showHistory {
		panel := th.panel.Width(historyWidth - 2).Height(h + 1).Render(m.history.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(th),
		body,
		th.footer.Render(m.help.View(m.keys)),
		th.status.Width(m.width).Render(m.statusText()),
	)
}

func (m *TuiModel) renderHeader(th theme) string {
	name := sanitize.Label(m.uiModel.Name(), 40)
	if m.uiModel.Dirty() {
		name += " *"
	}
	ed := m.uiModel.Editor()
	left := th.title.Render(" dopesheet · " + name + " ")
	right := fmt.Sprintf(" t=%s  %s  %s ", formatTime(m.uiModel.CurrentTime()), ed.State(), m.cursor)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + th.ruler.Render(right)
}

func (m *TuiModel) statusText() string {
	if m.status != "" {
		return m.status
	}
	n := len(m.uiModel.Editor().Selection())
	if n == 0 {
		return "no selection"
	}
	return fmt.Sprintf("%d keys selected", n)
}

// renderRuler labels whole frames along the time axis, spaced so that the
// labels never touch.
func (m *TuiModel) renderRuler(w int) string {
	mp := m.uiModel.Editor().Mapper()
	out := []rune(strings.Repeat(" ", w))
	step := rulerStep(mp.Horizontal().Scale)
	for t := math.Ceil(mp.Left()/step) * step; t <= mp.Right(); t += step {
		x := int(math.Floor(mp.ToScreenX(t)))
		label := []rune(formatTime(t))
		if x < 0 || x+len(label) > w {
			continue
		}
		copy(out[x:], label)
	}
	return string(out)
}

// rulerStep returns the smallest of 1, 2, 5, 10, 20, 50... frames that
// leaves eight cells between labels.
func rulerStep(scale float64) float64 {
	for step := 1.0; ; step *= 10 {
		for _, f := range []float64{1, 2, 5} {
			if f*step*scale >= 8 {
				return f * step
			}
		}
		if step > 1e9 {
			return step
		}
	}
}

func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// renderLabels draws the row names left of the grid, indented by depth.
func (m *TuiModel) renderLabels(th theme, h int) []string {
	ed := m.uiModel.Editor()
	idx, mp := ed.Index(), ed.Mapper()
	g := m.uiModel.Scene()
	out := make([]string, h)
	for i := range out {
		out[i] = th.label.Render("")
	}
	for _, row := range idx.Rows() {
		y := int(math.Floor(mp.ToScreenY(row.Top)))
		if y < 0 || y >= h {
			continue
		}
		var name, marker string
		switch row.Ref.Kind {
		case hierarchy.RowNode:
			name = g.Label(row.Ref.Node)
			if name == "" {
				name = string(row.Ref.Node)
			}
			marker = expandMarker(row.Expanded)
		case hierarchy.RowParam:
			p, _ := paramInfo(idx, row.Ref)
			name = p.Name
			if p.MultiDim() {
				marker = expandMarker(row.Expanded)
			} else {
				marker = "  "
			}
		case hierarchy.RowDim:
			name = dimName(row.Ref.Dim)
			marker = "  "
		}
		text := strings.Repeat("  ", row.Depth) + marker + sanitize.Label(name, labelWidth-1-2*row.Depth-2)
		out[y] = th.label.Render(text)
	}
	return out
}

func expandMarker(expanded bool) string {
	if expanded {
		return "▾ "
	}
	return "▸ "
}

func paramInfo(idx *hierarchy.Index, ref hierarchy.RowRef) (anim.ParamInfo, bool) {
	for _, p := range idx.Params(ref.Node) {
		if p.ID == ref.Param {
			return p, true
		}
	}
	return anim.ParamInfo{}, false
}

var dimNames = []string{"x", "y", "z", "w"}

func dimName(d int) string {
	if d >= 0 && d < len(dimNames) {
		return dimNames[d]
	}
	return "[" + strconv.Itoa(d) + "]"
}

// renderGrid paints the dope sheet area. Later layers win: bounding box,
// rubber band, clips, time indicator and finally keyframe markers.
func (m *TuiModel) renderGrid(th theme, w, h int) []string {
	ed := m.uiModel.Editor()
	mp := ed.Mapper()
	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{' ', cellEmpty}
		}
	}
	fill := func(r viewport.Rect, c cell) {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if r.Contains(viewport.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}) {
					grid[y][x] = c
				}
			}
		}
	}
	if box, ok := ed.BoundingBox(); ok {
		fill(box, cell{' ', cellBox})
	}
	if band, ok := ed.SelectionRect(); ok {
		fill(band, cell{'░', cellBand})
	}

	rows := ed.Index().Rows()
	for _, row := range rows {
		if row.Ref.Kind != hierarchy.RowNode {
			continue
		}
		rect, ok := ed.ClipRect(row.Ref.Node)
		if !ok {
			continue
		}
		kind, _ := ed.Index().Kind(row.Ref.Node)
		body, edge := cell{'━', cellClip}, cell{'┃', cellClipEdge}
		if kind == anim.KindGroup {
			body, edge = cell{'═', cellGroup}, cell{'║', cellGroup}
		}
		fill(rect, body)
		y := int(math.Floor(mp.ToScreenY(row.Center())))
		for _, ex := range []float64{rect.Left, rect.Right} {
			if x := int(math.Floor(ex)); y >= 0 && y < h && x >= 0 && x < w {
				grid[y][x] = edge
			}
		}
	}

	if x := int(math.Floor(mp.ToScreenX(m.uiModel.CurrentTime()))); x >= 0 && x < w {
		for y := 0; y < h-1; y++ {
			if grid[y][x].kind == cellEmpty || grid[y][x].kind == cellBox {
				grid[y][x] = cell{'│', cellIndicator}
			}
		}
		grid[h-1][x] = cell{'▲', cellIndicator}
	}

	for _, row := range rows {
		y := int(math.Floor(mp.ToScreenY(row.Center())))
		if y < 0 || y >= h {
			continue
		}
		for _, k := range ed.RowKeys(row.Ref) {
			x := int(math.Floor(mp.ToScreenX(k.Time)))
			if x < 0 || x >= w {
				continue
			}
			if ed.IsSelected(k.ID()) {
				grid[y][x] = cell{'◆', cellKeySelected}
			} else if grid[y][x].kind != cellKeySelected {
				grid[y][x] = cell{'◇', cellKey}
			}
		}
	}

	out := make([]string, h)
	for y := range grid {
		out[y] = renderLine(th, grid[y])
	}
	return out
}

// renderLine styles runs of equal cell kinds in one go.
func renderLine(th theme, line []cell) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(line); i++ {
		if i < len(line) && line[i].kind == line[start].kind {
			continue
		}
		run := make([]rune, 0, i-start)
		for _, c := range line[start:i] {
			run = append(run, c.r)
		}
		b.WriteString(th.cells[line[start].kind].Render(string(run)))
		start = i
	}
	return b.String()
}

// formatHistory lists journal entries, newest first, for the side panel.
func formatHistory(entries []adapters.HistoryEntry, width int) string {
	if len(entries) == 0 {
		return "no history yet"
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%-4s %s\n", e.Operation, sanitize.Label(e.Summary, width-5))
		fmt.Fprintf(&b, "     %s\n", humanize.Time(e.CreatedAt))
	}
	return strings.TrimRight(b.String(), "\n")
}
