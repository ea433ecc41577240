package grid

import (
	"fmt"
	"slices"
)

// Coord is a (column, row) position on the grid.
type Coord struct {
	I int
	J int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.I, c.J)
}

// Add returns the coordinate offset by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{I: c.I + d.I, J: c.J + d.J}
}

// Cell is a node of the grid. Neighbors holds arena indices, not coordinates.
type Cell struct {
	Coord
	IsObstacle bool
	Neighbors  []int
}

func newCell(i, j int) Cell {
	return Cell{
		Coord:      Coord{I: i, J: j},
		IsObstacle: false,
		Neighbors:  nil,
	}
}

func (c Cell) clone() Cell {
	c.Neighbors = slices.Clone(c.Neighbors)
	return c
}

// Orthogonal and Diagonal are the move tables used by adjacency construction.
// Order matters: it fixes neighbor order and therefore tie-breaking.
var Orthogonal = []Coord{
	{I: 1, J: 0},
	{I: 0, J: 1},
	{I: -1, J: 0},
	{I: 0, J: -1},
}

var Diagonal = []Coord{
	{I: -1, J: -1},
	{I: 1, J: -1},
	{I: -1, J: 1},
	{I: 1, J: 1},
}
