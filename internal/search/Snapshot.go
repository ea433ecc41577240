package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mshel/waypoint/internal/grid"
)

var ErrNoPath = errors.New("no path between start and goal")

// Snapshot is a detached copy of the engine state, safe to hand to another
// goroutine while the engine keeps stepping.
type Snapshot struct {
	Frontier []grid.Coord
	Visited  []grid.Coord
	Path     []grid.Coord
	Current  grid.Coord
	Outcome  Outcome
	Cost     float64
	Steps    int
}

// Snapshot copies the current state. last is the most recent step result and
// supplies the path, outcome and cost.
func (e *Engine) Snapshot(last StepResult) Snapshot {
	path := make([]grid.Coord, len(last.Path))
	copy(path, last.Path)
	return Snapshot{
		Frontier: e.Frontier(),
		Visited:  e.Visited(),
		Path:     path,
		Current:  last.Current,
		Outcome:  last.Outcome,
		Cost:     last.Cost,
		Steps:    e.steps,
	}
}

// Result summarises a finished search.
type Result struct {
	Path     []grid.Coord
	Cost     float64
	Expanded int
	Steps    int
	Found    bool
}

// Solve runs a search to completion. When no path exists the returned error
// wraps ErrNoPath and the Result still carries the expansion counts.
func Solve(ctx context.Context, g *grid.Grid, start, goal grid.Coord, options ...Option) (Result, error) {
	engine, err := NewEngine(g, start, goal, options...)
	if err != nil {
		return Result{}, err
	}

	final, err := engine.Run(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Path:     final.Path,
		Cost:     final.Cost,
		Expanded: engine.Expanded(),
		Steps:    engine.StepCount(),
		Found:    final.Outcome == Found,
	}
	if !result.Found {
		return result, fmt.Errorf("%v -> %v: %w", start, goal, ErrNoPath)
	}
	return result, nil
}
