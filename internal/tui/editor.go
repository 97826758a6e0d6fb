// Package tui is the interactive board editor: a keyboard-driven
// bubbletea program over a session and its canvas controller.
package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/canvas"
	"mulberry/canvas/internal/config"
	"mulberry/canvas/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("84"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
)

// Model is the editor state for one open board.
type Model struct {
	s   *session.Session
	c   *canvas.Controller
	cfg *config.Config

	width  int
	height int
	cursor int
	status string
}

// New builds an editor over an already-open session.
func New(s *session.Session, cfg *config.Config) Model {
	c := canvas.New(s, canvas.SystemClipboard{})
	c.SetSnapThreshold(cfg.SnapThreshold)
	return Model{s: s, c: c, cfg: cfg}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// ordered returns the board's nodes sorted by z-index, the order the
// list view shows them in.
func (m Model) ordered() []board.Node {
	nodes := m.s.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].ZIndex < nodes[j].ZIndex })
	return nodes
}

func (m Model) focused() *board.Node {
	nodes := m.ordered()
	if len(nodes) == 0 {
		return nil
	}
	if m.cursor >= len(nodes) {
		return &nodes[len(nodes)-1]
	}
	return &nodes[m.cursor]
}

func (m *Model) clampCursor() {
	n := len(m.s.Nodes())
	if n == 0 {
		m.cursor = 0
	} else if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		if n := len(m.s.Nodes()); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case "shift+tab":
		if n := len(m.s.Nodes()); n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}

	case " ":
		if f := m.focused(); f != nil {
			sel := m.s.SelectedNodes()
			if m.s.IsSelected(f.ID) {
				var keep []string
				for _, id := range sel {
					if id != f.ID {
						keep = append(keep, id)
					}
				}
				m.s.SetSelection(keep, nil)
			} else {
				m.s.SetSelection(append(sel, f.ID), nil)
			}
		}

	case "enter":
		if f := m.focused(); f != nil {
			m.s.SetSelection([]string{f.ID}, nil)
		}

	case "up":
		m.nudge(0, -m.cfg.NudgeStep)
	case "down":
		m.nudge(0, m.cfg.NudgeStep)
	case "left":
		m.nudge(-m.cfg.NudgeStep, 0)
	case "right":
		m.nudge(m.cfg.NudgeStep, 0)
	case "shift+up":
		m.nudge(0, -m.cfg.NudgeStepLarge)
	case "shift+down":
		m.nudge(0, m.cfg.NudgeStepLarge)
	case "shift+left":
		m.nudge(-m.cfg.NudgeStepLarge, 0)
	case "shift+right":
		m.nudge(m.cfg.NudgeStepLarge, 0)

	case "n":
		m.addNode(board.NodeShape, board.ShapePayload{Label: "Node", Color: m.cfg.ShapeColor})
	case "t":
		m.addNode(board.NodeText, board.TextPayload{Label: "Text"})
	case "e":
		m.connectSelection()

	case "d":
		if !m.c.ViewOnly() {
			if copies, err := m.s.Duplicate(m.s.SelectedNodes()); err == nil && len(copies) > 0 {
				ids := make([]string, len(copies))
				for i := range copies {
					ids[i] = copies[i].ID
				}
				m.s.SetSelection(ids, nil)
				m.status = fmt.Sprintf("duplicated %d node(s)", len(copies))
			}
		}
	case "x", "delete", "backspace":
		if err := m.c.DeleteSelection(); err == nil {
			m.clampCursor()
		}

	case "g":
		sel := m.s.SelectedNodes()
		if len(sel) >= 2 {
			if err := m.s.Group(sel); err == nil {
				m.status = fmt.Sprintf("grouped %d nodes", len(sel))
			}
		} else {
			m.status = "select at least 2 nodes to group"
		}
	case "G":
		if f := m.focused(); f != nil && f.GroupID != "" {
			if err := m.s.UngroupAll(f.GroupID); err == nil {
				m.status = "ungrouped"
			}
		}

	case "f":
		if f := m.focused(); f != nil && !m.c.ViewOnly() {
			m.s.BringToFront(f.ID)
		}
	case "b":
		if f := m.focused(); f != nil && !m.c.ViewOnly() {
			m.s.SendToBack(f.ID)
		}
	case "w":
		if !m.c.ViewOnly() {
			if lane, err := m.s.WrapSelectionInSwimlane("Lane"); err == nil && lane != nil {
				m.status = "wrapped selection in swimlane"
			}
		}

	case "u", "ctrl+z":
		m.c.Undo()
		m.clampCursor()
	case "r", "ctrl+y":
		m.c.Redo()

	case "y":
		if err := m.c.Copy(); err == nil && len(m.s.SelectedNodes()) > 0 {
			m.status = "copied"
		}
	case "p":
		m.c.Paste()
	case "X":
		m.c.Cut()
		m.clampCursor()

	case "a":
		m.c.SelectAll()
	case "esc":
		m.c.Escape()

	case "L":
		m.c.SetViewOnly(!m.c.ViewOnly())
	}
	return m, nil
}

func (m *Model) nudge(dx, dy float64) {
	if len(m.s.SelectedNodes()) == 0 {
		if f := m.focused(); f != nil {
			m.s.SetSelection([]string{f.ID}, nil)
		}
	}
	m.c.Nudge(dx, dy)
}

func (m *Model) addNode(typ board.NodeType, p board.Payload) {
	if m.c.ViewOnly() {
		return
	}
	x, y := 100.0, 100.0
	if f := m.focused(); f != nil {
		x = f.X + m.cfg.DuplicateOffset
		y = f.Y + m.cfg.DuplicateOffset
	}
	if n, err := m.s.AddNode(typ, x, y, 0, 0, p); err == nil && n != nil {
		m.s.SetSelection([]string{n.ID}, nil)
		m.cursor = len(m.s.Nodes()) - 1
	}
}

// connectSelection adds an edge between the first two selected nodes.
func (m *Model) connectSelection() {
	if m.c.ViewOnly() {
		return
	}
	sel := m.s.SelectedNodes()
	if len(sel) != 2 {
		m.status = "select exactly 2 nodes to connect"
		return
	}
	if _, err := m.s.AddEdge(sel[0], sel[1], "", "", board.EdgeDefault, board.EdgeStyle{}); err == nil {
		m.status = "connected"
	}
}

func (m Model) View() string {
	var b strings.Builder

	name := "(no board)"
	if bd := m.s.Board(); bd != nil {
		name = bd.Name
	}
	header := titleStyle.Render("canvas: " + name)
	if m.c.ViewOnly() {
		header += "  " + lockedStyle.Render("[view only]")
	}
	b.WriteString(header + "\n\n")

	if errMsg := m.s.Err(); errMsg != "" {
		b.WriteString(errorStyle.Render("✗ "+errMsg) + "\n\n")
	}

	nodes := m.ordered()
	if len(nodes) == 0 {
		b.WriteString(dimStyle.Render("  empty board — press n to add a node") + "\n")
	}
	for i, n := range nodes {
		marker := "  "
		if i == m.cursor {
			marker = focusedStyle.Render("> ")
		}
		sel := " "
		if m.s.IsSelected(n.ID) {
			sel = selectedStyle.Render("*")
		}
		w, h := n.Size()
		line := fmt.Sprintf("%s%s %-8s (%.0f,%.0f) %gx%g z=%d", marker, sel, n.Type, n.X, n.Y, w, h, n.ZIndex)
		if label := board.Label(n.Payload); label != "" {
			line += " " + label
		}
		if n.GroupID != "" {
			line += dimStyle.Render(" [grp " + shortTag(n.GroupID) + "]")
		}
		if m.s.NodeLocked(&nodes[i]) {
			line += lockedStyle.Render(" [locked]")
		}
		if !m.s.NodeVisible(&nodes[i]) {
			line = dimStyle.Render(line + " [hidden]")
		}
		b.WriteString(line + "\n")
	}

	edges := m.s.Edges()
	if len(edges) > 0 {
		b.WriteString("\n")
		for _, e := range edges {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %s -> %s (%s)", shortTag(e.Source), shortTag(e.Target), e.Type)) + "\n")
		}
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(statusStyle.Render(helpLine(m.c.ViewOnly())) + "\n")
	return b.String()
}

func helpLine(viewOnly bool) string {
	if viewOnly {
		return "tab: focus  space: select  L: unlock  q: quit"
	}
	return "tab: focus  space: select  arrows: nudge  n/t: add  e: connect  d: dup  g/G: group  u/r: undo  y/p: copy/paste  w: swimlane  L: lock  q: quit"
}

func shortTag(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
