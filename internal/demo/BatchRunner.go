package demo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mshel/waypoint/internal/history"
	"github.com/Mshel/waypoint/internal/search"
	"github.com/charmbracelet/log"
)

// BatchRunner solves Config.Puzzles puzzles concurrently, one engine per
// goroutine, without pacing or animation.
type BatchRunner struct {
	Config  Config
	Workers int

	recorder Recorder
	logger   *log.Logger
}

func NewBatchRunner(cfg Config, workers int, recorder Recorder, logger *log.Logger) (*BatchRunner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Puzzles < 1 {
		return nil, fmt.Errorf("%w: batch needs at least one puzzle", ErrInvalidConfig)
	}
	if workers < 1 {
		workers = batchWorkers
	}
	if logger == nil {
		logger = log.Default()
	}
	return &BatchRunner{Config: cfg, Workers: workers, recorder: recorder, logger: logger}, nil
}

// Run returns one summary per puzzle, in puzzle order. Runs are recorded
// after every worker is done so that the recorder sees a single writer.
func (b *BatchRunner) Run(ctx context.Context) ([]history.Run, error) {
	runs := make([]history.Run, b.Config.Puzzles)
	errs := make([]error, b.Config.Puzzles)
	semaphore := make(chan struct{}, b.Workers)

	var wg sync.WaitGroup
	for n := range b.Config.Puzzles {
		semaphore <- struct{}{}
		wg.Add(1)

		go func(n int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			runs[n], errs[n] = b.solve(ctx, n)
		}(n)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	solved := 0
	for n, run := range runs {
		if run.Found {
			solved++
		}
		if b.recorder == nil {
			continue
		}
		saved, err := b.recorder.Save(ctx, run)
		if err != nil {
			return nil, fmt.Errorf("record puzzle %d: %w", n, err)
		}
		runs[n] = saved
	}

	b.logger.Info("Batch finished", "puzzles", len(runs), "solved", solved, "workers", b.Workers)
	return runs, nil
}

func (b *BatchRunner) solve(ctx context.Context, n int) (history.Run, error) {
	puzzle, err := NewPuzzle(b.Config, n)
	if err != nil {
		return history.Run{}, err
	}
	engine, err := search.NewEngine(puzzle.Grid, puzzle.Start, puzzle.Goal, search.WithLogger(b.logger))
	if err != nil {
		return history.Run{}, fmt.Errorf("puzzle %d: %w", n, err)
	}
	final, err := engine.Run(ctx)
	if err != nil {
		return history.Run{}, fmt.Errorf("puzzle %d: %w", n, err)
	}
	return Summarize(puzzle, engine, final), nil
}
