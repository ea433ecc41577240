package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Mshel/waypoint/internal/demo"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Define styles
var (
	focusedColor = lipgloss.Color("205") // Bright Pink/Purple
	blurredColor = lipgloss.Color("240")
	focusedStyle = lipgloss.NewStyle().Foreground(focusedColor)
	blurredStyle = lipgloss.NewStyle().Foreground(blurredColor)
	helpStyle    = blurredStyle
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	labelStyle   = lipgloss.NewStyle().Width(14)

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder())

	submitButtonStyle = buttonStyle.
				BorderForeground(focusedColor).
				Padding(0, 1)

	blurredButtonStyle = buttonStyle.
				BorderForeground(blurredColor).
				Padding(0, 1)
)

const (
	colsField = iota
	rowsField
	wallsField
	seedField
	diagonalField
	submitField
	fieldCount
)

var fieldLabels = []string{"Columns", "Rows", "Wall fraction", "Seed"}

// SetupModel is the form for one interactive puzzle.
type SetupModel struct {
	inputs     []textinput.Model
	diagonal   bool
	focusIndex int
	err        error
	base       demo.Config
	width      int
	height     int
}

func NewSetupModel(base demo.Config, w, h int) SetupModel {
	values := []string{
		strconv.Itoa(base.Cols),
		strconv.Itoa(base.Rows),
		strconv.FormatFloat(base.WallFraction, 'f', -1, 64),
		strconv.FormatInt(base.Seed, 10),
	}

	inputs := make([]textinput.Model, len(values))
	for i, value := range values {
		ti := textinput.New()
		ti.CharLimit = 12
		ti.Placeholder = value
		ti.SetValue(value)
		ti.PromptStyle = blurredStyle
		ti.TextStyle = blurredStyle
		inputs[i] = ti
	}

	m := SetupModel{
		inputs:   inputs,
		diagonal: base.Diagonal,
		base:     base,
		width:    w,
		height:   h,
	}
	m.focus(colsField)
	return m
}

// Init sends a command to start the cursor blinking
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *SetupModel) focus(index int) {
	m.focusIndex = (index + fieldCount) % fieldCount
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle
		} else {
			m.inputs[i].Blur()
			m.inputs[i].PromptStyle = blurredStyle
			m.inputs[i].TextStyle = blurredStyle
		}
	}
}

// Config reads the form into a validated configuration.
func (m SetupModel) Config() (demo.Config, error) {
	cfg := m.base

	value := func(field int) string { return strings.TrimSpace(m.inputs[field].Value()) }

	var err error
	if cfg.Cols, err = strconv.Atoi(value(colsField)); err != nil {
		return cfg, fmt.Errorf("%w: columns must be a whole number", demo.ErrInvalidConfig)
	}
	if cfg.Rows, err = strconv.Atoi(value(rowsField)); err != nil {
		return cfg, fmt.Errorf("%w: rows must be a whole number", demo.ErrInvalidConfig)
	}
	if cfg.WallFraction, err = strconv.ParseFloat(value(wallsField), 64); err != nil {
		return cfg, fmt.Errorf("%w: wall fraction must be a number", demo.ErrInvalidConfig)
	}
	if cfg.Seed, err = strconv.ParseInt(value(seedField), 10, 64); err != nil {
		return cfg, fmt.Errorf("%w: seed must be a whole number", demo.ErrInvalidConfig)
	}
	cfg.Diagonal = m.diagonal

	return cfg, cfg.Validate()
}

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch s := msg.String(); s {
		case "esc":
			return m, func() tea.Msg { return BackToIntroMsg{} }
		case "tab", "down":
			m.focus(m.focusIndex + 1)
			return m, nil
		case "shift+tab", "up":
			m.focus(m.focusIndex - 1)
			return m, nil
		case "enter":
			if m.focusIndex != submitField {
				m.focus(m.focusIndex + 1)
				return m, nil
			}
			cfg, err := m.Config()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			return m, func() tea.Msg { return SetupSubmitMsg{Config: cfg} }
		case " ", "left", "right":
			if m.focusIndex == diagonalField {
				m.diagonal = !m.diagonal
				return m, nil
			}
		}

		if m.focusIndex < len(m.inputs) {
			var cmd tea.Cmd
			m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) View() string {
	var b strings.Builder

	for i, input := range m.inputs {
		label := labelStyle.Render(fieldLabels[i])
		if i == m.focusIndex {
			label = focusedStyle.Render(label)
		}
		b.WriteString(label + input.View() + "\n")
	}

	mark := "[ ]"
	if m.diagonal {
		mark = "[x]"
	}
	diagonal := labelStyle.Render("Diagonal") + mark
	if m.focusIndex == diagonalField {
		diagonal = focusedStyle.Render(diagonal)
	} else {
		diagonal = blurredStyle.Render(diagonal)
	}
	b.WriteString("\n" + diagonal + "\n\n")

	submitText := "Start Search"
	if m.focusIndex == submitField {
		b.WriteString(submitButtonStyle.Render(submitText))
	} else {
		b.WriteString(blurredButtonStyle.Render(submitText))
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n\n")
	}

	b.WriteString(helpStyle.Render("(tab/shift+tab to navigate, space to toggle, enter to confirm, esc to go back)"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}
