package ui

import (
	"strings"

	"github.com/Mshel/waypoint/internal/grid"
	"github.com/Mshel/waypoint/internal/search"
	"github.com/charmbracelet/lipgloss"
)

type tileKind int

const (
	emptyTile tileKind = iota
	wallTile
	visitedTile
	frontierTile
	pathTile
	currentTile
	startTile
	goalTile
	tileKindCount
)

var (
	tileGlyphs = [tileKindCount]string{
		emptyTile:    "·",
		wallTile:     "█",
		visitedTile:  "•",
		frontierTile: "○",
		pathTile:     "●",
		currentTile:  "@",
		startTile:    "S",
		goalTile:     "G",
	}

	tileStyles = [tileKindCount]lipgloss.Style{
		emptyTile:    lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
		wallTile:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		visitedTile:  lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		frontierTile: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		pathTile:     lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		currentTile:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		startTile:    lipgloss.NewStyle().Foreground(lipgloss.Color("87")),
		goalTile:     lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
	}
)

// classify assigns every cell the kind it is drawn as. Later marks win, so
// the path is drawn over visited cells and the endpoints over everything.
func classify(g *grid.Grid, start, goal grid.Coord, snapshot search.Snapshot) []tileKind {
	kinds := make([]tileKind, g.Len())
	for idx := range kinds {
		if g.IsObstacle(g.CoordOf(idx)) {
			kinds[idx] = wallTile
		}
	}

	mark := func(kind tileKind, coords ...grid.Coord) {
		for _, c := range coords {
			if idx, ok := g.Index(c); ok {
				kinds[idx] = kind
			}
		}
	}
	mark(visitedTile, snapshot.Visited...)
	mark(frontierTile, snapshot.Frontier...)
	mark(pathTile, snapshot.Path...)
	if snapshot.Steps > 0 && snapshot.Outcome == search.Continue {
		mark(currentTile, snapshot.Current)
	}
	mark(startTile, start)
	mark(goalTile, goal)
	return kinds
}

// viewport returns the [start, end) window of length size over [0, limit)
// that keeps center in the middle where possible.
func viewport(center, size, limit int) (int, int) {
	size = max(0, min(limit, size))
	start := max(0, center-size/2)
	if start+size > limit {
		start = max(0, limit-size)
	}
	return start, min(limit, start+size)
}

// renderGrid draws the part of the grid that fits in width x height,
// following the cell being expanded.
func renderGrid(g *grid.Grid, start, goal grid.Coord, snapshot search.Snapshot, width, height int) string {
	kinds := classify(g, start, goal, snapshot)

	center := start
	if snapshot.Steps > 0 {
		center = snapshot.Current
	}
	startCol, endCol := viewport(center.I, width, g.Cols())
	startRow, endRow := viewport(center.J, height, g.Rows())

	var sb strings.Builder
	for j := startRow; j < endRow; j++ {
		// consecutive cells of one kind share a single styled run
		runStart := startCol
		for i := startCol; i <= endCol; i++ {
			if i < endCol && kinds[j*g.Cols()+i] == kinds[j*g.Cols()+runStart] {
				continue
			}
			kind := kinds[j*g.Cols()+runStart]
			sb.WriteString(tileStyles[kind].Render(strings.Repeat(tileGlyphs[kind], i-runStart)))
			runStart = i
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// legend lists the glyphs in drawing order.
func legend() string {
	names := [tileKindCount]string{"empty", "wall", "visited", "frontier", "path", "current", "start", "goal"}
	var sb strings.Builder
	for kind := range tileKindCount {
		sb.WriteString(tileStyles[kind].Render(tileGlyphs[kind]) + " " + names[kind] + "\n")
	}
	return sb.String()
}
