package heuristic

import (
	"math"

	"github.com/Mshel/waypoint/internal/grid"
)

// Func estimates the remaining cost between two cells. Implementations must be
// consistent so that a cell's cost is final the first time it is expanded.
type Func func(a, b grid.Coord) float64

// Taxicab is admissible for 4-directional movement.
func Taxicab(a, b grid.Coord) float64 {
	dx := math.Abs(float64(a.I - b.I))
	dy := math.Abs(float64(a.J - b.J))
	return dx + dy
}

// Euclidean is admissible for 8-directional movement with a √2 diagonal step.
func Euclidean(a, b grid.Coord) float64 {
	dx := float64(a.I - b.I)
	dy := float64(a.J - b.J)
	return math.Sqrt(dx*dx + dy*dy)
}

func For(diagonal bool) Func {
	if diagonal {
		return Euclidean
	}
	return Taxicab
}
