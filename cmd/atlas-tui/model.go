package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/codeatlas/codeatlas/pkg/model"
	"github.com/codeatlas/codeatlas/pkg/session"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	canvasStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1).
			MarginLeft(2)

	highlightGlyphStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFF00"))

	dimGlyphStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#333333"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type keyMap struct {
	Tab      key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Focus    key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	PanUp    key.Binding
	PanDown  key.Binding
	PanLeft  key.Binding
	PanRight key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	Up:       key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "hover up")),
	Down:     key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "hover down")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Focus:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "focus mode")),
	ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	PanUp:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "pan up")),
	PanDown:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "pan down")),
	PanLeft:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "pan left")),
	PanRight: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "pan right")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Focus, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Up, k.Down, k.Enter},
		{k.Focus, k.ZoomIn, k.ZoomOut},
		{k.PanUp, k.PanDown, k.PanLeft, k.PanRight},
		{k.Quit},
	}
}

var views = []session.View{session.ViewFlow, session.ViewModules, session.ViewClasses}

type uiModel struct {
	sess      *session.Session
	viewIdx   int
	nodeTable table.Model
	nodeIDs   []string
	help      help.Model
	keys      keyMap
	width     int
	height    int
	message   string
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func initialModel(sess *session.Session) uiModel {
	columns := []table.Column{
		{Title: "Kind", Width: 10},
		{Title: "Name", Width: 24},
		{Title: "Path", Width: 28},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	m := uiModel{
		sess:      sess,
		nodeTable: t,
		help:      help.New(),
		keys:      keys,
	}
	m.reloadRows()
	return m
}

// reloadRows fills the table with the active view's nodes.
func (m *uiModel) reloadRows() {
	g := m.sess.Graph()
	var nodes []*model.Node
	switch views[m.viewIdx] {
	case session.ViewClasses:
		nodes = g.NodesByKind(model.KindClass)
	case session.ViewModules:
		nodes = g.NodesByKind(model.KindFile)
	default:
		nodes = g.Nodes()
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

	rows := make([]table.Row, 0, len(nodes))
	m.nodeIDs = m.nodeIDs[:0]
	for _, n := range nodes {
		rows = append(rows, table.Row{string(n.Kind), n.Name, n.Path})
		m.nodeIDs = append(m.nodeIDs, n.ID)
	}
	m.nodeTable.SetRows(rows)
	m.nodeTable.SetCursor(0)
	m.hoverCursor()
}

// hoverCursor mirrors the table cursor into the interaction state.
func (m *uiModel) hoverCursor() {
	if cursor := m.nodeTable.Cursor(); cursor >= 0 && cursor < len(m.nodeIDs) {
		m.sess.PointerEnter(m.nodeIDs[cursor])
	} else {
		m.sess.PointerLeave()
	}
}

func (m uiModel) Init() tea.Cmd {
	return tickCmd()
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.viewIdx = (m.viewIdx + 1) % len(views)
			if err := m.sess.SetView(views[m.viewIdx]); err != nil {
				m.message = err.Error()
				return m, nil
			}
			m.sess.Settle(context.Background())
			m.reloadRows()
			m.message = "view: " + string(views[m.viewIdx])
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			var cmd tea.Cmd
			m.nodeTable, cmd = m.nodeTable.Update(msg)
			m.hoverCursor()
			return m, cmd

		case key.Matches(msg, m.keys.Enter):
			if cursor := m.nodeTable.Cursor(); cursor >= 0 && cursor < len(m.nodeIDs) {
				m.sess.Click(m.nodeIDs[cursor])
			}
			return m, nil

		case key.Matches(msg, m.keys.Focus):
			m.sess.SetFocusMode(!m.sess.Snapshot().FocusMode)
			return m, nil

		case key.Matches(msg, m.keys.ZoomIn):
			m.sess.Zoom(1.2, 0, 0)
			return m, nil
		case key.Matches(msg, m.keys.ZoomOut):
			m.sess.Zoom(1/1.2, 0, 0)
			return m, nil

		case key.Matches(msg, m.keys.PanUp):
			m.sess.Pan(0, 40)
			return m, nil
		case key.Matches(msg, m.keys.PanDown):
			m.sess.Pan(0, -40)
			return m, nil
		case key.Matches(msg, m.keys.PanLeft):
			m.sess.Pan(40, 0)
			return m, nil
		case key.Matches(msg, m.keys.PanRight):
			m.sess.Pan(-40, 0)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.nodeTable, cmd = m.nodeTable.Update(msg)
	return m, cmd
}

func (m uiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Code Atlas"))
	b.WriteString("\n")

	tabs := make([]string, len(views))
	for i, v := range views {
		if i == m.viewIdx {
			tabs[i] = activeTabStyle.Render(string(v))
		} else {
			tabs[i] = inactiveTabStyle.Render(string(v))
		}
	}
	b.WriteString("  " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	canvas := canvasStyle.Render(m.renderCanvas(64, 18))
	side := m.nodeTable.View() + "\n" + m.renderStatus()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, canvas, "  ", side))
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(statusStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m uiModel) renderStatus() string {
	snap := m.sess.Snapshot()
	g := m.sess.Graph()
	lines := []string{
		fmt.Sprintf("nodes: %d  edges: %d", g.NodeCount(), g.EdgeCount()),
		fmt.Sprintf("state: %s", snap.State),
		fmt.Sprintf("focus: %v  zoom: %.2f", snap.FocusMode, snap.Transform.Scale),
	}
	if snap.SelectedID != "" {
		if n, ok := g.Node(snap.SelectedID); ok {
			lines = append(lines, fmt.Sprintf("selected: %s (%s)", n.Name, n.Kind))
		}
	}
	return statusStyle.Render(strings.Join(lines, "\n"))
}

var kindGlyphs = map[model.Kind]rune{
	model.KindFile:     '■',
	model.KindModule:   '▣',
	model.KindFunction: '●',
	model.KindClass:    '◆',
	model.KindExternal: '○',
	model.KindVirtual:  '·',
}

// renderCanvas scatter-plots the current positions onto a character grid,
// applying the pan/zoom transform and focus dimming.
func (m uiModel) renderCanvas(cols, rows int) string {
	positions := m.sess.Positions()
	if len(positions) == 0 {
		return "no positions"
	}
	snap := m.sess.Snapshot()
	g := m.sess.Graph()

	var minX, minY, maxX, maxY float64
	first := true
	for _, p := range positions {
		x, y := snap.Transform.Apply(p.X, p.Y)
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
			continue
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}

	for id, p := range positions {
		x, y := snap.Transform.Apply(p.X, p.Y)
		col := int((x - minX) / spanX * float64(cols-1))
		row := int((y - minY) / spanY * float64(rows-1))

		glyph := kindGlyphs[model.KindVirtual]
		if n, ok := g.Node(id); ok {
			glyph = kindGlyphs[n.Kind]
		}
		cell := string(glyph)
		if _, hl := snap.HighlightedNodeIDs[id]; hl {
			cell = highlightGlyphStyle.Render(cell)
		} else if snap.FocusMode && len(snap.HighlightedNodeIDs) > 0 {
			cell = dimGlyphStyle.Render(cell)
		}
		grid[row][col] = cell
	}

	lines := make([]string, rows)
	for r := range grid {
		lines[r] = strings.Join(grid[r], "")
	}
	return strings.Join(lines, "\n")
}
