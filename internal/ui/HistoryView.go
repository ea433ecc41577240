package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Mshel/waypoint/internal/history"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	historyPageSize    = 10
	historyLoadTimeout = 5 * time.Second
)

// HistoryReader is the read side of the run history. *history.Store
// satisfies it.
type HistoryReader interface {
	List(ctx context.Context, limit, offset int) ([]history.Run, error)
	Count(ctx context.Context) (int, error)
	Stats(ctx context.Context) (history.Stats, error)
}

type historyLoadedMsg struct {
	page  int
	runs  []history.Run
	total int
	stats history.Stats
	err   error
}

// Styles for the history table
var (
	historyHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("236")).
				Padding(0, 1).
				Align(lipgloss.Center)

	historyRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	historyBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("8"))

	foundStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	noPathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	historyWidth = []int{22, 9, 8, 10, 9, 10}
)

// HistoryModel pages through stored runs, newest first.
type HistoryModel struct {
	reader  HistoryReader
	page    int
	runs    []history.Run
	total   int
	stats   history.Stats
	loading bool
	err     error
	width   int
	height  int
}

func NewHistoryModel(reader HistoryReader, w, h int) HistoryModel {
	return HistoryModel{reader: reader, loading: reader != nil, width: w, height: h}
}

func (m HistoryModel) Init() tea.Cmd {
	return m.load(0)
}

func (m HistoryModel) load(page int) tea.Cmd {
	if m.reader == nil {
		return nil
	}
	reader := m.reader
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyLoadTimeout)
		defer cancel()

		msg := historyLoadedMsg{page: page}
		if msg.total, msg.err = reader.Count(ctx); msg.err != nil {
			return msg
		}
		if msg.stats, msg.err = reader.Stats(ctx); msg.err != nil {
			return msg
		}
		msg.runs, msg.err = reader.List(ctx, historyPageSize, page*historyPageSize)
		return msg
	}
}

func (m HistoryModel) pageCount() int {
	return max(1, (m.total+historyPageSize-1)/historyPageSize)
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case historyLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.page = msg.page
			m.runs = msg.runs
			m.total = msg.total
			m.stats = msg.stats
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "enter":
			return m, func() tea.Msg { return BackToIntroMsg{} }
		case "left", "h":
			if m.page > 0 && !m.loading {
				m.loading = true
				return m, m.load(m.page - 1)
			}
		case "right", "l":
			if m.page+1 < m.pageCount() && !m.loading {
				m.loading = true
				return m, m.load(m.page + 1)
			}
		case "r":
			if !m.loading && m.reader != nil {
				m.loading = true
				return m, m.load(m.page)
			}
		}
	}
	return m, nil
}

func (m HistoryModel) View() string {
	var content string
	switch {
	case m.reader == nil:
		content = "Run history is disabled for this session."
	case m.err != nil:
		content = errorStyle.Render("Could not load run history: " + m.err.Error())
	case m.loading && m.runs == nil:
		content = "Loading run history..."
	default:
		content = m.renderTable()
	}

	title := lipgloss.NewStyle().Bold(true).Padding(1, 0).Render("RUN HISTORY")
	instruction := lipgloss.NewStyle().Faint(true).Margin(1, 0).Render("left/right to page, r to refresh, esc to return")

	finalContent := lipgloss.JoinVertical(lipgloss.Center, title, content, instruction)

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Render(finalContent),
	)
}

func (m HistoryModel) renderTable() string {
	var tableContent strings.Builder

	solvedShare := 0.0
	if m.stats.Runs > 0 {
		solvedShare = float64(m.stats.Solved) * 100 / float64(m.stats.Runs)
	}
	tableContent.WriteString(fmt.Sprintf("%d runs, %.1f%% solved, avg cost %.2f, avg expanded %.1f\n\n",
		m.stats.Runs, solvedShare, m.stats.AvgCost, m.stats.AvgExpanded))

	if len(m.runs) == 0 {
		tableContent.WriteString("No runs recorded yet.\n")
		return tableContent.String()
	}

	headers := []string{"When", "Grid", "Moves", "Result", "Cost", "Expanded"}
	cells := make([]string, len(headers))
	for i, header := range headers {
		cells[i] = historyHeaderStyle.Width(historyWidth[i]).Render(header)
	}
	tableContent.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n")

	for _, run := range m.runs {
		result := foundStyle.Render("found")
		cost := strconv.FormatFloat(run.Cost, 'f', 2, 64)
		if !run.Found {
			result = noPathStyle.Render("no path")
			cost = "-"
		}

		values := []string{
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%dx%d", run.Cols, run.Rows),
			movesLabel(run.Diagonal),
			result,
			cost,
			strconv.Itoa(run.Expanded),
		}
		for i, value := range values {
			cells[i] = historyRowStyle.Width(historyWidth[i]).Render(value)
		}
		tableContent.WriteString(historyBorderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...)) + "\n")
	}

	tableContent.WriteString(fmt.Sprintf("\nPage %d / %d", m.page+1, m.pageCount()))
	return tableContent.String()
}
