package terrain

import (
	"math/rand"

	"github.com/Mshel/waypoint/internal/grid"
)

// Set marks exactly the given coordinates as obstacles.
func Set(coords ...grid.Coord) grid.ObstaclePredicate {
	obstacles := make(map[grid.Coord]struct{}, len(coords))
	for _, c := range coords {
		obstacles[c] = struct{}{}
	}
	return func(i, j int) bool {
		_, ok := obstacles[grid.Coord{I: i, J: j}]
		return ok
	}
}

// Random draws an obstacle field where each cell is blocked with probability
// fraction. The field is drawn column by column up front, so the result only
// depends on the rng state and not on the order the predicate is queried in.
func Random(cols, rows int, fraction float64, rng *rand.Rand) grid.ObstaclePredicate {
	field := make([]bool, cols*rows)
	for i := 0; i < cols; i++ {
		for j := 0; j < rows; j++ {
			field[j*cols+i] = rng.Float64() < fraction
		}
	}
	return func(i, j int) bool {
		if i < 0 || i >= cols || j < 0 || j >= rows {
			return false
		}
		return field[j*cols+i]
	}
}

// Union blocks a cell when any of the predicates blocks it.
func Union(predicates ...grid.ObstaclePredicate) grid.ObstaclePredicate {
	return func(i, j int) bool {
		for _, predicate := range predicates {
			if predicate != nil && predicate(i, j) {
				return true
			}
		}
		return false
	}
}
