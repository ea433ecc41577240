package search

import (
	"errors"
	"fmt"
	"slices"
)

var ErrPredecessorCycle = errors.New("predecessor chain does not terminate")

// reconstruct walks parent links back from `from` and returns the chain
// ordered start first. A chain longer than limit can only be a cycle.
func reconstruct(parent func(int) int, from int, limit int) ([]int, error) {
	path := []int{from}
	for current := parent(from); current != noParent; current = parent(current) {
		if len(path) >= limit {
			return nil, fmt.Errorf("%w: exceeded %d cells from %d", ErrPredecessorCycle, limit, from)
		}
		path = append(path, current)
	}
	slices.Reverse(path)
	return path, nil
}
