package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type IntroChoice int

const (
	InteractiveChoice IntroChoice = iota
	DemoChoice
	HistoryChoice
)

var introLabels = []string{"Interactive", "Demo", "Run History"}

// IntroModel holds the state for the main menu.
type IntroModel struct {
	selected IntroChoice
	width    int
	height   int
}

func NewIntroModel(w, h int) IntroModel {
	return IntroModel{selected: InteractiveChoice, width: w, height: h}
}

func (m IntroModel) Init() tea.Cmd { return nil }

func (m IntroModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		count := IntroChoice(len(introLabels))
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.selected = (m.selected - 1 + count) % count
		case "right", "l", "tab":
			m.selected = (m.selected + 1) % count
		case "enter":
			selected := m.selected
			return m, func() tea.Msg { return IntroSubmitMsg(selected) }
		}
	}
	return m, nil
}

var waypointAscii = `
 S . . # . . . . . . # . . . . . . . . .
 * * * # . # # # # . # . # # # # # # . .
 . . * * * * * * # . # . . . . . . # . .
 . . # # # # # * # . # # # # # # . # . .
 . . . . . . # * * * * * * * * # . # . .
 # # # # # . # # # # # # # # * # . # # .
 . . . . # . . . . . . . . # * * * * * G
`

var (
	asciiStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("87"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(1, 0)

	introButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Padding(0, 3).
				Margin(1, 2).
				Border(lipgloss.RoundedBorder())

	introSelectedButtonStyle = introButtonStyle.
					Background(lipgloss.Color("87")).
					Foreground(lipgloss.Color("0"))
)

func (m IntroModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("W A Y P O I N T"))
	sb.WriteString("\n")
	sb.WriteString(asciiStyle.Render(waypointAscii))
	sb.WriteString("\n")

	buttons := make([]string, len(introLabels))
	for i, label := range introLabels {
		if IntroChoice(i) == m.selected {
			buttons[i] = introSelectedButtonStyle.Render(label)
		} else {
			buttons[i] = introButtonStyle.Render(label)
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		sb.String(),
		lipgloss.JoinHorizontal(lipgloss.Center, buttons...),
		helpStyle.Render("(left/right to choose, enter to confirm, q to quit)"),
	)

	// Center the entire view within the terminal
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}
