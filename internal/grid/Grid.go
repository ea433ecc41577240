package grid

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")
	ErrInvalidCoordinate = errors.New("coordinate outside grid bounds")
)

// ObstaclePredicate reports whether the cell at (i, j) is impassable.
type ObstaclePredicate func(i, j int) bool

type Options struct {
	Diagonal bool
	Start    *Coord
	Goal     *Coord
}

type Option func(*Options)

// WithDiagonal enables 8-directional movement.
func WithDiagonal(diagonal bool) Option {
	return func(options *Options) { options.Diagonal = diagonal }
}

// WithEndpoints forces start and goal passable regardless of the predicate.
func WithEndpoints(start, goal Coord) Option {
	return func(options *Options) {
		options.Start = &start
		options.Goal = &goal
	}
}

// Grid is an arena of cells indexed by j*cols + i. It is immutable once New
// returns and may be read from several goroutines.
type Grid struct {
	cols     int
	rows     int
	diagonal bool
	cells    []Cell
}

func New(cols, rows int, isObstacle ObstaclePredicate, options ...Option) (*Grid, error) {
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cols, rows)
	}

	gridOptions := Options{}
	for _, option := range options {
		option(&gridOptions)
	}

	g := &Grid{
		cols:     cols,
		rows:     rows,
		diagonal: gridOptions.Diagonal,
		cells:    make([]Cell, cols*rows),
	}

	for _, endpoint := range []*Coord{gridOptions.Start, gridOptions.Goal} {
		if endpoint != nil && !g.InBounds(*endpoint) {
			return nil, fmt.Errorf("%w: %v in %dx%d", ErrInvalidCoordinate, *endpoint, cols, rows)
		}
	}

	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			cell := newCell(i, j)
			if isObstacle != nil {
				cell.IsObstacle = isObstacle(i, j)
			}
			g.cells[g.index(i, j)] = cell
		}
	}

	for _, endpoint := range []*Coord{gridOptions.Start, gridOptions.Goal} {
		if endpoint != nil {
			g.cells[g.index(endpoint.I, endpoint.J)].IsObstacle = false
		}
	}

	g.buildAdjacency()
	return g, nil
}

// buildAdjacency must run after every obstacle flag is final.
func (g *Grid) buildAdjacency() {
	for idx := range g.cells {
		cell := &g.cells[idx]
		cell.Neighbors = nil
		if cell.IsObstacle {
			continue
		}

		for _, d := range Orthogonal {
			next := cell.Coord.Add(d)
			if g.passable(next) {
				cell.Neighbors = append(cell.Neighbors, g.index(next.I, next.J))
			}
		}

		if !g.diagonal {
			continue
		}

		// no squeezing between two obstacles that touch at a corner
		for _, d := range Diagonal {
			next := cell.Coord.Add(d)
			horizontal := Coord{I: cell.I + d.I, J: cell.J}
			vertical := Coord{I: cell.I, J: cell.J + d.J}
			if g.passable(next) && g.passable(horizontal) && g.passable(vertical) {
				cell.Neighbors = append(cell.Neighbors, g.index(next.I, next.J))
			}
		}
	}
}

func (g *Grid) index(i, j int) int {
	return j*g.cols + i
}

func (g *Grid) passable(c Coord) bool {
	return g.InBounds(c) && !g.cells[g.index(c.I, c.J)].IsObstacle
}

func (g *Grid) Cols() int      { return g.cols }
func (g *Grid) Rows() int      { return g.rows }
func (g *Grid) Len() int       { return len(g.cells) }
func (g *Grid) Diagonal() bool { return g.diagonal }

func (g *Grid) InBounds(c Coord) bool {
	return c.I >= 0 && c.I < g.cols && c.J >= 0 && c.J < g.rows
}

// Index maps a coordinate to its arena index.
func (g *Grid) Index(c Coord) (int, bool) {
	if !g.InBounds(c) {
		return 0, false
	}
	return g.index(c.I, c.J), true
}

// CoordOf is the inverse of Index. It panics on an out-of-range index.
func (g *Grid) CoordOf(idx int) Coord {
	return g.cells[idx].Coord
}

// Cell returns a copy of the cell at idx.
func (g *Grid) Cell(idx int) Cell {
	return g.cells[idx].clone()
}

// Neighbors returns the adjacency list of idx. Callers must not modify it.
func (g *Grid) Neighbors(idx int) []int {
	return g.cells[idx].Neighbors
}

func (g *Grid) IsObstacle(c Coord) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.cells[g.index(c.I, c.J)].IsObstacle
}

// Obstacles lists obstacle coordinates in row-major order.
func (g *Grid) Obstacles() []Coord {
	var obstacles []Coord
	for _, cell := range g.cells {
		if cell.IsObstacle {
			obstacles = append(obstacles, cell.Coord)
		}
	}
	return obstacles
}

// Adjacency returns a deep copy of every neighbor list.
func (g *Grid) Adjacency() [][]int {
	adjacency := make([][]int, len(g.cells))
	for idx, cell := range g.cells {
		adjacency[idx] = slices.Clone(cell.Neighbors)
	}
	return adjacency
}
