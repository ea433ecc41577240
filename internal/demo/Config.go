package demo

import (
	"errors"
	"fmt"
	"time"

	"github.com/Mshel/waypoint/internal/grid"
)

const (
	DefaultCols         = 50
	DefaultRows         = 50
	DefaultWallFraction = 0.3
	DefaultSeed         = 14
	DefaultStepInterval = 15 * time.Millisecond

	DemoCols    = 80
	DemoRows    = 50
	DemoSeed    = 0
	DemoPuzzles = 100
	DemoPause   = 2 * time.Second

	MinStepInterval = time.Millisecond
	MaxStepInterval = 2 * time.Second
	MaxCols         = 400
	MaxRows         = 400
	batchWorkers    = 8
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Cols         int
	Rows         int
	WallFraction float64
	Diagonal     bool
	Seed         int64
	// StepInterval paces one engine step per tick.
	StepInterval time.Duration
	// Pause is how long a finished puzzle stays on screen.
	Pause time.Duration
	// Puzzles is the number of puzzles to run; 0 runs until stopped.
	Puzzles int
	// ShowProcess publishes every step; otherwise only the final state.
	ShowProcess bool

	// Optional overrides. Nil Start/Goal are drawn at random per puzzle and a
	// nil Obstacles predicate draws a random field with WallFraction.
	Start     *grid.Coord
	Goal      *grid.Coord
	Obstacles grid.ObstaclePredicate
}

// DefaultConfig is the single interactive puzzle.
func DefaultConfig() Config {
	return Config{
		Cols:         DefaultCols,
		Rows:         DefaultRows,
		WallFraction: DefaultWallFraction,
		Diagonal:     false,
		Seed:         DefaultSeed,
		StepInterval: DefaultStepInterval,
		Pause:        0,
		Puzzles:      1,
		ShowProcess:  true,
	}
}

// DemoConfig cycles through a series of random puzzles.
func DemoConfig() Config {
	return Config{
		Cols:         DemoCols,
		Rows:         DemoRows,
		WallFraction: DefaultWallFraction,
		Diagonal:     false,
		Seed:         DemoSeed,
		StepInterval: DefaultStepInterval,
		Pause:        DemoPause,
		Puzzles:      DemoPuzzles,
		ShowProcess:  true,
	}
}

func (c Config) Validate() error {
	if c.Cols < 1 || c.Rows < 1 || c.Cols > MaxCols || c.Rows > MaxRows {
		return fmt.Errorf("%w: grid %dx%d outside 1x1..%dx%d", ErrInvalidConfig, c.Cols, c.Rows, MaxCols, MaxRows)
	}
	if c.WallFraction < 0 || c.WallFraction > 1 {
		return fmt.Errorf("%w: wall fraction %.2f outside [0, 1]", ErrInvalidConfig, c.WallFraction)
	}
	if c.StepInterval < 0 || c.Pause < 0 || c.Puzzles < 0 {
		return fmt.Errorf("%w: negative interval, pause or puzzle count", ErrInvalidConfig)
	}
	for _, endpoint := range []*grid.Coord{c.Start, c.Goal} {
		if endpoint != nil && (endpoint.I < 0 || endpoint.I >= c.Cols || endpoint.J < 0 || endpoint.J >= c.Rows) {
			return fmt.Errorf("%w: endpoint %v: %w", ErrInvalidConfig, *endpoint, grid.ErrInvalidCoordinate)
		}
	}
	return nil
}

func clampInterval(d time.Duration) time.Duration {
	return min(max(d, MinStepInterval), MaxStepInterval)
}
