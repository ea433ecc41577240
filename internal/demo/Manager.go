package demo

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/Mshel/waypoint/internal/history"
	"github.com/Mshel/waypoint/internal/search"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

type Command int

const (
	TogglePause Command = iota
	StepOnce
	Skip
	Faster
	Slower
)

// PuzzleMsg announces a fresh puzzle before its first step.
type PuzzleMsg struct {
	Puzzle Puzzle
	Total  int
}

type StepMsg struct {
	Number   int
	Snapshot search.Snapshot
}

// SolvedMsg carries the terminal state of a puzzle, found or not.
type SolvedMsg struct {
	Number   int
	Run      history.Run
	Snapshot search.Snapshot
}

type StatusMsg struct {
	Paused   bool
	Interval time.Duration
}

type FinishedMsg struct {
	Solved int
	Failed int
}

type ErrorMsg struct {
	Err error
}

// Recorder persists finished runs. *history.Store satisfies it.
type Recorder interface {
	Save(ctx context.Context, run history.Run) (history.Run, error)
}

var errSkipped = errors.New("puzzle skipped")

// Manager drives a series of puzzles, one engine step per tick, and
// publishes progress on UpdateChannel. UpdateChannel is closed when the
// loop returns.
type Manager struct {
	Config         Config
	UpdateChannel  chan tea.Msg
	CommandChannel chan Command

	recorder Recorder
	logger   *log.Logger
	running  atomic.Bool

	// owned by the loop goroutine
	interval time.Duration
	paused   bool
}

func NewManager(cfg Config, recorder Recorder, logger *log.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Manager{
		Config:         cfg,
		UpdateChannel:  make(chan tea.Msg),
		CommandChannel: make(chan Command, 10),
		recorder:       recorder,
		logger:         logger,
		interval:       clampInterval(cfg.StepInterval),
	}, nil
}

func (m *Manager) Running() bool {
	return m.running.Load()
}

// Interval is the step interval the loop starts with.
func (m *Manager) Interval() time.Duration {
	return m.interval
}

// Command queues cmd for the loop. It never blocks and reports whether the
// command was accepted.
func (m *Manager) Command(cmd Command) bool {
	select {
	case m.CommandChannel <- cmd:
		return true
	default:
		return false
	}
}

// StartLoop blocks until every puzzle is done or ctx is cancelled. A second
// call while the loop runs returns immediately.
func (m *Manager) StartLoop(ctx context.Context) {
	if !m.running.CompareAndSwap(false, true) {
		return
	}
	defer m.running.Store(false)
	defer close(m.UpdateChannel)

	m.logger.Info("Search loop started.", "puzzles", m.Config.Puzzles, "cols", m.Config.Cols, "rows", m.Config.Rows)

	solved, failed := 0, 0
	for n := 0; m.Config.Puzzles == 0 || n < m.Config.Puzzles; n++ {
		run, err := m.solvePuzzle(ctx, n)
		switch {
		case errors.Is(err, errSkipped):
			m.logger.Debug("Puzzle skipped", "puzzle", n)
		case err != nil:
			if ctx.Err() == nil {
				m.logger.Error("Puzzle failed", "puzzle", n, "error", err)
				m.send(ctx, ErrorMsg{Err: err})
			}
			m.logger.Info("Search loop stopped.", "solved", solved, "failed", failed)
			return
		case run.Found:
			solved++
		default:
			failed++
		}

		lastPuzzle := m.Config.Puzzles != 0 && n == m.Config.Puzzles-1
		if !lastPuzzle && !m.wait(ctx, m.Config.Pause) {
			break
		}
	}

	m.send(ctx, FinishedMsg{Solved: solved, Failed: failed})
	m.logger.Info("Search loop stopped.", "solved", solved, "failed", failed)
}

func (m *Manager) solvePuzzle(ctx context.Context, n int) (history.Run, error) {
	puzzle, err := NewPuzzle(m.Config, n)
	if err != nil {
		return history.Run{}, err
	}
	engine, err := search.NewEngine(puzzle.Grid, puzzle.Start, puzzle.Goal, search.WithLogger(m.logger))
	if err != nil {
		return history.Run{}, err
	}

	if !m.send(ctx, PuzzleMsg{Puzzle: puzzle, Total: m.Config.Puzzles}) {
		return history.Run{}, ctx.Err()
	}

	var final search.StepResult
	if m.Config.ShowProcess {
		final, err = m.animate(ctx, n, engine)
	} else {
		final, err = engine.Run(ctx)
	}
	if err != nil {
		return history.Run{}, err
	}

	run := Summarize(puzzle, engine, final)
	if m.recorder != nil {
		saved, err := m.recorder.Save(ctx, run)
		if err != nil {
			m.logger.Warn("Failed to record run", "puzzle", n, "error", err)
		} else {
			run = saved
		}
	}
	m.logger.Debug("Puzzle finished", "puzzle", n, "outcome", final.Outcome, "cost", final.Cost, "expanded", run.Expanded)

	if !m.send(ctx, SolvedMsg{Number: n, Run: run, Snapshot: engine.Snapshot(final)}) {
		return history.Run{}, ctx.Err()
	}
	return run, nil
}

// animate steps the engine once per tick and publishes every intermediate
// state.
func (m *Manager) animate(ctx context.Context, n int, engine *search.Engine) (search.StepResult, error) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	step := func() (search.StepResult, bool, error) {
		result, err := engine.Step()
		if err != nil {
			return result, true, err
		}
		if result.Outcome != search.Continue {
			return result, true, nil
		}
		if !m.send(ctx, StepMsg{Number: n, Snapshot: engine.Snapshot(result)}) {
			return result, true, ctx.Err()
		}
		return result, false, nil
	}

	for {
		select {
		case <-ctx.Done():
			return search.StepResult{}, ctx.Err()
		case cmd := <-m.CommandChannel:
			if cmd == Skip {
				return search.StepResult{}, errSkipped
			}
			if cmd == StepOnce && m.paused {
				if result, done, err := step(); done {
					return result, err
				}
				continue
			}
			m.apply(ctx, cmd, ticker)
		case <-ticker.C:
			if m.paused {
				continue
			}
			if result, done, err := step(); done {
				return result, err
			}
		}
	}
}

// wait holds a finished puzzle on screen for d. Skip cuts it short and a
// pause holds it past d until resumed.
func (m *Manager) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	expired := false
	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			if !m.paused {
				return true
			}
			expired = true
		case cmd := <-m.CommandChannel:
			if cmd == Skip {
				return true
			}
			m.apply(ctx, cmd, nil)
			if expired && !m.paused {
				return true
			}
		}
	}
}

func (m *Manager) apply(ctx context.Context, cmd Command, ticker *time.Ticker) {
	switch cmd {
	case TogglePause:
		m.paused = !m.paused
	case Faster:
		m.interval = clampInterval(m.interval / 2)
	case Slower:
		m.interval = clampInterval(m.interval * 2)
	default:
		return
	}
	if ticker != nil {
		ticker.Reset(m.interval)
	}
	m.send(ctx, StatusMsg{Paused: m.paused, Interval: m.interval})
}

func (m *Manager) send(ctx context.Context, msg tea.Msg) bool {
	select {
	case m.UpdateChannel <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}
