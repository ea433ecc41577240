package ui

import (
	"fmt"
	"strings"

	"github.com/Mshel/waypoint/internal/demo"
	"github.com/Mshel/waypoint/internal/history"
	"github.com/Mshel/waypoint/internal/search"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	mapViewStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 0)

	statusPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("8")).
				Padding(1, 2)

	panelHeaderStyle = lipgloss.NewStyle().Bold(true)
)

const (
	mapViewPercentage  = 0.70
	statusPanelPadding = 4
	borderSize         = 2
)

type searchKeyMap struct {
	Pause  key.Binding
	Step   key.Binding
	Skip   key.Binding
	Faster key.Binding
	Slower key.Binding
	Back   key.Binding
	Help   key.Binding
}

func (k searchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Skip, k.Back, k.Help}
}

func (k searchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Step, k.Skip},
		{k.Faster, k.Slower},
		{k.Back, k.Help},
	}
}

var searchKeys = searchKeyMap{
	Pause:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
	Step:   key.NewBinding(key.WithKeys("s", "."), key.WithHelp("s", "step when paused")),
	Skip:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next puzzle")),
	Faster: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
	Slower: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
}

// updatesClosedMsg reports that the manager loop has returned.
type updatesClosedMsg struct{}

// searchUpdateMsg tags a message read from a manager's UpdateChannel, so that
// updates still in flight from a stopped search are dropped.
type searchUpdateMsg struct {
	manager *demo.Manager
	msg     tea.Msg
}

// SearchModel renders the puzzles of one Manager as they are solved.
type SearchModel struct {
	ScreenWidth  int
	ScreenHeight int

	manager  *demo.Manager
	keys     searchKeyMap
	help     help.Model
	puzzle   *demo.Puzzle
	total    int
	snapshot search.Snapshot
	lastRun  *history.Run
	solved   int
	failed   int
	status   demo.StatusMsg
	finished bool
	err      error
}

func NewSearchModel(manager *demo.Manager, screenWidth int, screenHeight int) SearchModel {
	return SearchModel{
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
		manager:      manager,
		keys:         searchKeys,
		help:         help.New(),
		status:       demo.StatusMsg{Interval: manager.Interval()},
	}
}

func (m SearchModel) Init() tea.Cmd {
	return m.listenForUpdates()
}

func (m SearchModel) listenForUpdates() tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		msg, ok := <-manager.UpdateChannel
		if !ok {
			return searchUpdateMsg{manager: manager, msg: updatesClosedMsg{}}
		}
		return searchUpdateMsg{manager: manager, msg: msg}
	}
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchUpdateMsg:
		if msg.manager != m.manager {
			return m, nil
		}
		return m.Update(msg.msg)

	case tea.WindowSizeMsg:
		m.ScreenWidth = msg.Width
		m.ScreenHeight = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Pause):
			m.manager.Command(demo.TogglePause)
		case key.Matches(msg, m.keys.Step):
			m.manager.Command(demo.StepOnce)
		case key.Matches(msg, m.keys.Skip):
			m.manager.Command(demo.Skip)
		case key.Matches(msg, m.keys.Faster):
			m.manager.Command(demo.Faster)
		case key.Matches(msg, m.keys.Slower):
			m.manager.Command(demo.Slower)
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackToIntroMsg{} }
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case demo.PuzzleMsg:
		puzzle := msg.Puzzle
		m.puzzle = &puzzle
		m.total = msg.Total
		m.snapshot = search.Snapshot{}
		m.lastRun = nil
		return m, m.listenForUpdates()

	case demo.StepMsg:
		m.snapshot = msg.Snapshot
		return m, m.listenForUpdates()

	case demo.SolvedMsg:
		run := msg.Run
		m.snapshot = msg.Snapshot
		m.lastRun = &run
		if run.Found {
			m.solved++
		} else {
			m.failed++
		}
		return m, m.listenForUpdates()

	case demo.StatusMsg:
		m.status = msg
		return m, m.listenForUpdates()

	case demo.ErrorMsg:
		m.err = msg.Err
		return m, m.listenForUpdates()

	case demo.FinishedMsg:
		m.finished = true
		return m, m.listenForUpdates()

	case updatesClosedMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}

func (m SearchModel) View() string {
	if m.puzzle == nil {
		if m.err != nil {
			return lipgloss.Place(m.ScreenWidth, m.ScreenHeight, lipgloss.Center, lipgloss.Center, errorStyle.Render(m.err.Error()))
		}
		return lipgloss.Place(m.ScreenWidth, m.ScreenHeight, lipgloss.Center, lipgloss.Center, "Generating puzzle...")
	}

	mapWidth := int(float64(m.ScreenWidth) * mapViewPercentage)
	statusPanelWidth := max(0, m.ScreenWidth-mapWidth-statusPanelPadding)
	innerHeight := max(0, m.ScreenHeight-borderSize)

	mapContent := renderGrid(m.puzzle.Grid, m.puzzle.Start, m.puzzle.Goal, m.snapshot, mapWidth-borderSize, innerHeight)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		mapViewStyle.Width(mapWidth).Height(innerHeight).Render(mapContent),
		statusPanelStyle.Width(statusPanelWidth).Render(m.renderStatusPanel()),
	)
}

func (m SearchModel) renderStatusPanel() string {
	var sb strings.Builder
	g := m.puzzle.Grid

	sb.WriteString(panelHeaderStyle.Render("--- Puzzle ---") + "\n")
	if m.total > 0 {
		sb.WriteString(fmt.Sprintf("Puzzle: %d / %d\n", m.puzzle.Number+1, m.total))
	} else {
		sb.WriteString(fmt.Sprintf("Puzzle: %d\n", m.puzzle.Number+1))
	}
	sb.WriteString(fmt.Sprintf("Grid: %dx%d (%d walls)\n", g.Cols(), g.Rows(), len(g.Obstacles())))
	sb.WriteString(fmt.Sprintf("Moves: %s\n", movesLabel(g.Diagonal())))
	sb.WriteString(fmt.Sprintf("Seed: %d\n", m.puzzle.Seed))
	sb.WriteString(fmt.Sprintf("Start %v  Goal %v\n", m.puzzle.Start, m.puzzle.Goal))

	sb.WriteString("\n" + panelHeaderStyle.Render("--- Search ---") + "\n")
	state := "searching"
	if m.snapshot.Steps > 0 && m.snapshot.Outcome != search.Continue {
		state = m.snapshot.Outcome.String()
	}
	if m.status.Paused {
		state += " (paused)"
	}
	sb.WriteString(fmt.Sprintf("State: %s\n", state))
	sb.WriteString(fmt.Sprintf("Steps: %d\n", m.snapshot.Steps))
	sb.WriteString(fmt.Sprintf("Frontier: %d  Visited: %d\n", len(m.snapshot.Frontier), len(m.snapshot.Visited)))
	sb.WriteString(fmt.Sprintf("Path: %d cells, cost %.2f\n", len(m.snapshot.Path), m.snapshot.Cost))
	sb.WriteString(fmt.Sprintf("Step interval: %v\n", m.status.Interval))

	sb.WriteString("\n" + panelHeaderStyle.Render("--- Session ---") + "\n")
	sb.WriteString(fmt.Sprintf("Solved: %d  No path: %d\n", m.solved, m.failed))
	if m.lastRun != nil && m.lastRun.ID != "" {
		sb.WriteString(lipgloss.NewStyle().Faint(true).Render("Recorded "+m.lastRun.ID[:min(8, len(m.lastRun.ID))]) + "\n")
	}
	if m.finished {
		sb.WriteString(focusedStyle.Render("All puzzles done.") + "\n")
	}
	if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}

	sb.WriteString("\n" + legend())
	sb.WriteString("\n" + m.help.View(m.keys))
	return sb.String()
}

func movesLabel(diagonal bool) string {
	if diagonal {
		return "8-way"
	}
	return "4-way"
}
