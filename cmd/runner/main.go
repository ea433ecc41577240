package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mshel/waypoint/internal/demo"
	"github.com/Mshel/waypoint/internal/history"
	"github.com/Mshel/waypoint/internal/search"
	"github.com/Mshel/waypoint/internal/terrain"
	"github.com/Mshel/waypoint/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, os.Stdout); err != nil {
		log.Error("waypoint failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, stdout io.Writer) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: o.logLevel, ReportTimestamp: true})
	if o.tui {
		// the alt screen owns the terminal
		logger.SetOutput(io.Discard)
	}
	log.SetDefault(logger)

	var store *history.Store
	if o.dbPath != "" {
		var err error
		store, err = history.Open(o.dbPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	switch {
	case o.tui:
		return runTUI(ctx, store, logger)
	case o.batch > 0:
		return runBatch(ctx, o, store, logger, stdout)
	default:
		return runSingle(ctx, o, store, logger, stdout)
	}
}

func runTUI(ctx context.Context, store *history.Store, logger *log.Logger) error {
	options := ui.Options{Logger: logger}
	if store != nil {
		options.Recorder = store
		options.History = store
	}

	p := tea.NewProgram(ui.NewControllerModel(ctx, options, 0, 0), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runSingle(ctx context.Context, o options, store *history.Store, logger *log.Logger, stdout io.Writer) error {
	cfg, script, err := o.config()
	if err != nil {
		return err
	}
	if script != nil {
		defer script.Close()
	}

	puzzle, err := demo.NewPuzzle(cfg, 0)
	if err != nil {
		return err
	}
	if script != nil {
		if err := script.Err(); err != nil {
			return err
		}
	}

	engine, err := search.NewEngine(puzzle.Grid, puzzle.Start, puzzle.Goal, search.WithLogger(logger))
	if err != nil {
		return err
	}
	final, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	summary := demo.Summarize(puzzle, engine, final)
	if store != nil {
		if summary, err = store.Save(ctx, summary); err != nil {
			return err
		}
	}

	if !o.quiet {
		fmt.Fprint(stdout, terrain.FormatASCII(puzzle.Grid, puzzle.Start, puzzle.Goal, final.Path))
	}
	fmt.Fprintf(stdout, "%v -> %v: %s, cost %.4f, path %d cells, expanded %d, steps %d\n",
		puzzle.Start, puzzle.Goal, final.Outcome, final.Cost, len(final.Path), summary.Expanded, summary.Steps)

	logger.Debug("Solved", "id", summary.ID, "seed", puzzle.Seed, "found", summary.Found)
	return nil
}

func runBatch(ctx context.Context, o options, store *history.Store, logger *log.Logger, stdout io.Writer) error {
	cfg, script, err := o.config()
	if err != nil {
		return err
	}
	if script != nil {
		// a Lua state cannot be shared between workers
		script.Close()
		return errors.New("-lua cannot be used with -batch")
	}
	cfg.Puzzles = o.batch

	var recorder demo.Recorder
	if store != nil {
		recorder = store
	}
	runner, err := demo.NewBatchRunner(cfg, o.workers, recorder, logger)
	if err != nil {
		return err
	}
	runs, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	solved, totalCost, totalExpanded := 0, 0.0, 0
	for n, summary := range runs {
		outcome := search.Failed
		if summary.Found {
			outcome = search.Found
			solved++
			totalCost += summary.Cost
		}
		totalExpanded += summary.Expanded
		fmt.Fprintf(stdout, "%4d  seed %-6d (%d,%d) -> (%d,%d)  %-7s cost %8.3f  expanded %5d\n",
			n, summary.Seed, summary.StartI, summary.StartJ, summary.GoalI, summary.GoalJ, outcome, summary.Cost, summary.Expanded)
	}

	avgCost := 0.0
	if solved > 0 {
		avgCost = totalCost / float64(solved)
	}
	fmt.Fprintf(stdout, "%d puzzles, %d solved, avg cost %.3f, avg expanded %.1f\n",
		len(runs), solved, avgCost, float64(totalExpanded)/float64(len(runs)))
	return nil
}
