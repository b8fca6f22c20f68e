// Package tui is a terminal front end for a panel: it draws the layout
// as character graphics at a steady cadence and maps keys to model
// mutations, so the reconciler can be watched live without a browser.
package tui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/graphpane/graphpane/graph"
	"github.com/graphpane/graphpane/ingest"
	"github.com/graphpane/graphpane/physics"
	"github.com/graphpane/graphpane/render"
	"github.com/graphpane/graphpane/view"
)

const (
	frameEvery = 100 * time.Millisecond

	// Panel units per character cell. Cells are roughly twice as tall
	// as they are wide, so the vertical scale doubles.
	cellWidth  = 10.0
	cellHeight = 20.0

	minColumns = 20
	minRows    = 10
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4285F4"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34A853"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EA4335")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type keyMap struct {
	AddVertex key.Binding
	AddEdge   key.Binding
	DelVertex key.Binding
	DelEdge   key.Binding
	Layout    key.Binding
	Step      key.Binding
	Strategy  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	AddVertex: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add vertex"),
	),
	AddEdge: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "add edge"),
	),
	DelVertex: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete vertex"),
	),
	DelEdge: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "delete edge"),
	),
	Layout: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "toggle layout"),
	),
	Step: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "single step"),
	),
	Strategy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cycle strategy"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddVertex, k.AddEdge, k.DelVertex, k.Layout, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.AddVertex, k.AddEdge, k.DelVertex, k.DelEdge},
		{k.Layout, k.Step, k.Strategy},
		{k.Help, k.Quit},
	}
}

// Model is the bubbletea model wrapping one panel and its graph.
type Model struct {
	model *graph.Graph
	panel *view.Panel

	keys keyMap
	help help.Model

	// handles tracks live vertices for random pick on mutation keys.
	handles []*graph.Vertex
	counter int

	width, height int
	cols, rows    int

	message    string
	messageErr bool
}

// New wraps an initialized panel and its model for terminal display.
func New(model *graph.Graph, panel *view.Panel) Model {
	return Model{
		model:   model,
		panel:   panel,
		keys:    keys,
		help:    help.New(),
		handles: model.Vertices(),
	}
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(frameEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizePanel()

	case tickMsg:
		// The view pulls a fresh snapshot on every render; the tick just
		// keeps renders coming.
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) resizePanel() {
	m.cols = max(m.width-4, minColumns)
	m.rows = max(m.height-7, minRows)
	if err := m.panel.Resize(float64(m.cols)*cellWidth, float64(m.rows)*cellHeight); err != nil {
		m.fail(err.Error())
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.AddVertex):
		m.counter++
		label := fmt.Sprintf("v%d", m.counter)
		v := m.model.AddVertex(&ingest.Node{ID: label, Label: label})
		m.handles = append(m.handles, v)
		m.nudge()
		m.note("added " + label)

	case key.Matches(msg, m.keys.AddEdge):
		if len(m.handles) < 2 {
			m.fail("need at least two vertices")
			break
		}
		a := m.handles[rand.Intn(len(m.handles))]
		b := m.handles[rand.Intn(len(m.handles))]
		if _, err := m.model.AddEdge(a, b, nil); err != nil {
			m.fail(err.Error())
			break
		}
		m.nudge()
		m.note(fmt.Sprintf("connected %s and %s", vertexName(a), vertexName(b)))

	case key.Matches(msg, m.keys.DelVertex):
		if len(m.handles) == 0 {
			m.fail("nothing to delete")
			break
		}
		i := rand.Intn(len(m.handles))
		v := m.handles[i]
		if err := m.model.RemoveVertex(v); err != nil {
			m.fail(err.Error())
			break
		}
		m.handles = append(m.handles[:i], m.handles[i+1:]...)
		m.nudge()
		m.note("removed " + vertexName(v))

	case key.Matches(msg, m.keys.DelEdge):
		edges := m.model.Edges()
		if len(edges) == 0 {
			m.fail("no edges to delete")
			break
		}
		e := edges[rand.Intn(len(edges))]
		if err := m.model.RemoveEdge(e); err != nil {
			m.fail(err.Error())
			break
		}
		m.nudge()
		m.note("removed an edge")

	case key.Matches(msg, m.keys.Layout):
		running := !m.panel.AutomaticLayout()
		m.panel.SetAutomaticLayout(running)
		if running {
			m.note("layout running")
		} else {
			m.note("layout paused")
		}

	case key.Matches(msg, m.keys.Step):
		if err := m.panel.Step(); err != nil {
			m.fail(err.Error())
			break
		}
		m.note("stepped once")

	case key.Matches(msg, m.keys.Strategy):
		s, err := physics.ByName(m.nextStrategy())
		if err != nil {
			m.fail(err.Error())
			break
		}
		if err := m.panel.SetLayoutStrategy(s); err != nil {
			m.fail(err.Error())
			break
		}
		m.note("strategy " + s.Name())
	}
	return m, nil
}

var strategyCycle = []string{"spring", "spring-gravity", "noise-drift"}

func (m Model) nextStrategy() string {
	current := m.panel.Strategy().Name()
	for i, name := range strategyCycle {
		if current == name || strings.HasPrefix(current, name+"(") {
			return strategyCycle[(i+1)%len(strategyCycle)]
		}
	}
	return strategyCycle[0]
}

// nudge asks the panel to reconcile without blocking the event loop.
func (m *Model) nudge() {
	if err := m.panel.Update(); err != nil {
		m.fail(err.Error())
	}
}

func (m *Model) note(msg string) {
	m.message = msg
	m.messageErr = false
}

func (m *Model) fail(msg string) {
	m.message = msg
	m.messageErr = true
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "starting..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("graphpane"))
	s.WriteString("  ")

	layout := "layout running"
	if !m.panel.AutomaticLayout() {
		layout = "layout paused"
	}
	s.WriteString(infoStyle.Render(fmt.Sprintf("%d vertices, %d edges, %s, %s",
		m.model.Order(), m.model.Size(), m.panel.Strategy().Name(), layout)))
	s.WriteString("\n")

	opts := render.NewDefaultOptions()
	opts.Columns = m.cols
	opts.Rows = m.rows
	out, err := (&render.ASCIIRenderer{}).Render(m.panel.Snapshot(), opts)
	if err != nil {
		s.WriteString(errorStyle.Render(err.Error()))
	} else {
		s.Write(out)
	}

	if m.message != "" {
		if m.messageErr {
			s.WriteString(errorStyle.Render(m.message))
		} else {
			s.WriteString(statusStyle.Render(m.message))
		}
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return s.String()
}

func vertexName(v *graph.Vertex) string {
	if n, ok := v.Value.(*ingest.Node); ok {
		return n.String()
	}
	return v.ID()
}
