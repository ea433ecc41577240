package demo

import (
	"fmt"
	"math/rand"

	"github.com/Mshel/waypoint/internal/grid"
	"github.com/Mshel/waypoint/internal/history"
	"github.com/Mshel/waypoint/internal/search"
	"github.com/Mshel/waypoint/internal/terrain"
)

type Puzzle struct {
	Number int
	Seed   int64
	Grid   *grid.Grid
	Start  grid.Coord
	Goal   grid.Coord
}

// PuzzleSeed derives the seed of puzzle number n so that any puzzle of a
// series can be rebuilt on its own.
func PuzzleSeed(cfg Config, n int) int64 {
	return cfg.Seed + int64(n)
}

// NewPuzzle builds puzzle number n: endpoints first, then the obstacle field,
// with the endpoints forced passable.
func NewPuzzle(cfg Config, n int) (Puzzle, error) {
	if err := cfg.Validate(); err != nil {
		return Puzzle{}, err
	}

	seed := PuzzleSeed(cfg, n)
	rng := rand.New(rand.NewSource(seed))

	start := randomCoord(cfg, rng)
	if cfg.Start != nil {
		start = *cfg.Start
	}
	goal := start
	if cfg.Goal != nil {
		goal = *cfg.Goal
	} else if cfg.Cols*cfg.Rows > 1 {
		for goal == start {
			goal = randomCoord(cfg, rng)
		}
	}

	obstacles := cfg.Obstacles
	if obstacles == nil {
		obstacles = terrain.Random(cfg.Cols, cfg.Rows, cfg.WallFraction, rng)
	}

	g, err := grid.New(cfg.Cols, cfg.Rows, obstacles, grid.WithDiagonal(cfg.Diagonal), grid.WithEndpoints(start, goal))
	if err != nil {
		return Puzzle{}, fmt.Errorf("puzzle %d: %w", n, err)
	}

	return Puzzle{Number: n, Seed: seed, Grid: g, Start: start, Goal: goal}, nil
}

func randomCoord(cfg Config, rng *rand.Rand) grid.Coord {
	return grid.Coord{I: rng.Intn(cfg.Cols), J: rng.Intn(cfg.Rows)}
}

// Summarize turns a terminal step into a history record.
func Summarize(p Puzzle, engine *search.Engine, final search.StepResult) history.Run {
	return history.Run{
		Cols:     p.Grid.Cols(),
		Rows:     p.Grid.Rows(),
		Diagonal: p.Grid.Diagonal(),
		Seed:     p.Seed,
		StartI:   p.Start.I,
		StartJ:   p.Start.J,
		GoalI:    p.Goal.I,
		GoalJ:    p.Goal.J,
		Found:    final.Outcome == search.Found,
		Cost:     final.Cost,
		PathLen:  len(final.Path),
		Expanded: engine.Expanded(),
		Steps:    engine.StepCount(),
	}
}
