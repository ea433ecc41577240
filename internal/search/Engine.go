package search

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/Mshel/waypoint/internal/grid"
	"github.com/Mshel/waypoint/internal/heuristic"
	"github.com/charmbracelet/log"
)

var ErrBlockedEndpoint = errors.New("start or goal is an obstacle")

type Outcome int

const (
	Continue Outcome = iota
	Found
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Found:
		return "found"
	case Failed:
		return "no path"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// StepResult is what one call to Step observed. Path is the best known path
// from start to Current, or the final path once Outcome is Found.
type StepResult struct {
	Outcome Outcome
	Current grid.Coord
	Path    []grid.Coord
	Cost    float64
	Step    int
}

type Options struct {
	Heuristic heuristic.Func
	Logger    *log.Logger
}

type Option func(*Options)

// WithHeuristic replaces the heuristic implied by the grid's movement mode.
// It is also used as the step cost between adjacent cells.
func WithHeuristic(h heuristic.Func) Option {
	return func(options *Options) { options.Heuristic = h }
}

func WithLogger(logger *log.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

// Engine runs A* over a grid one expansion at a time. It is not safe for
// concurrent use; renderers should read Snapshot values between steps.
//
// Cells are closed exactly once and never re-opened, even if a cheaper route
// to a closed cell shows up later. With a consistent heuristic and the fixed
// per-mode edge costs used here that cannot happen.
type Engine struct {
	grid      *grid.Grid
	start     int
	goal      int
	heuristic heuristic.Func
	logger    *log.Logger

	nodes    []node
	frontier frontier
	visited  []int
	nextSeq  uint64
	steps    int
	current  int
	terminal *StepResult
}

func NewEngine(g *grid.Grid, start, goal grid.Coord, options ...Option) (*Engine, error) {
	engineOptions := Options{
		Heuristic: heuristic.For(g.Diagonal()),
		Logger:    log.Default(),
	}
	for _, option := range options {
		option(&engineOptions)
	}

	startIdx, ok := g.Index(start)
	if !ok {
		return nil, fmt.Errorf("start %v: %w", start, grid.ErrInvalidCoordinate)
	}
	goalIdx, ok := g.Index(goal)
	if !ok {
		return nil, fmt.Errorf("goal %v: %w", goal, grid.ErrInvalidCoordinate)
	}
	if g.IsObstacle(start) || g.IsObstacle(goal) {
		return nil, fmt.Errorf("%w: start %v goal %v", ErrBlockedEndpoint, start, goal)
	}

	e := &Engine{
		grid:      g,
		start:     startIdx,
		goal:      goalIdx,
		heuristic: engineOptions.Heuristic,
		logger:    engineOptions.Logger,
		nodes:     make([]node, g.Len()),
		current:   startIdx,
	}
	for idx := range e.nodes {
		e.nodes[idx].parent = noParent
		e.nodes[idx].heapIndex = -1
	}
	e.frontier.nodes = e.nodes

	startNode := &e.nodes[startIdx]
	startNode.g = 0
	startNode.h = e.heuristic(start, goal)
	startNode.f = startNode.h
	e.discover(startIdx)

	return e, nil
}

func (e *Engine) discover(idx int) {
	n := &e.nodes[idx]
	n.state = open
	n.seq = e.nextSeq
	e.nextSeq++
	heap.Push(&e.frontier, idx)
}

// Step performs one iteration: pick the best frontier cell, stop if it is the
// goal, otherwise close it and relax its neighbors. Once a terminal outcome
// has been reported every later call reports it again.
func (e *Engine) Step() (StepResult, error) {
	if e.terminal != nil {
		result := *e.terminal
		result.Path = slices.Clone(result.Path)
		return result, nil
	}

	if e.frontier.Len() == 0 {
		e.logger.Debug("frontier exhausted", "visited", len(e.visited), "steps", e.steps)
		e.terminal = &StepResult{Outcome: Failed, Current: e.grid.CoordOf(e.current), Step: e.steps}
		return *e.terminal, nil
	}

	e.steps++
	current := e.frontier.peek()
	e.current = current
	currentNode := &e.nodes[current]
	currentCoord := e.grid.CoordOf(current)

	if current == e.goal {
		path, err := e.pathTo(current)
		if err != nil {
			return StepResult{}, err
		}
		e.logger.Debug("goal reached", "cost", currentNode.g, "length", len(path), "visited", len(e.visited), "steps", e.steps)
		e.terminal = &StepResult{
			Outcome: Found,
			Current: currentCoord,
			Path:    path,
			Cost:    currentNode.g,
			Step:    e.steps,
		}
		result := *e.terminal
		result.Path = slices.Clone(path)
		return result, nil
	}

	heap.Pop(&e.frontier)
	currentNode.state = closed
	e.visited = append(e.visited, current)

	goalCoord := e.grid.CoordOf(e.goal)
	for _, neighbor := range e.grid.Neighbors(current) {
		n := &e.nodes[neighbor]
		if n.state == closed {
			continue
		}

		neighborCoord := e.grid.CoordOf(neighbor)
		tentativeG := currentNode.g + e.heuristic(currentCoord, neighborCoord)
		n.h = e.heuristic(neighborCoord, goalCoord)

		switch n.state {
		case unseen:
			n.g = tentativeG
			n.f = n.g + n.h
			n.parent = current
			e.discover(neighbor)
		case open:
			if tentativeG < n.g {
				n.g = tentativeG
				n.f = n.g + n.h
				n.parent = current
				heap.Fix(&e.frontier, n.heapIndex)
			}
		}
	}

	path, err := e.pathTo(current)
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{
		Outcome: Continue,
		Current: currentCoord,
		Path:    path,
		Cost:    currentNode.g,
		Step:    e.steps,
	}, nil
}

// Steps yields every step up to and including the terminal one.
func (e *Engine) Steps() iter.Seq2[StepResult, error] {
	return func(yield func(StepResult, error) bool) {
		for {
			result, err := e.Step()
			if !yield(result, err) || err != nil || result.Outcome != Continue {
				return
			}
		}
	}
}

// Run steps until the search terminates or ctx is done. Cancellation is only
// observed between steps.
func (e *Engine) Run(ctx context.Context) (StepResult, error) {
	for {
		if err := ctx.Err(); err != nil {
			return StepResult{}, err
		}
		result, err := e.Step()
		if err != nil {
			return result, err
		}
		if result.Outcome != Continue {
			return result, nil
		}
	}
}

func (e *Engine) parentOf(idx int) int {
	return e.nodes[idx].parent
}

func (e *Engine) pathTo(idx int) ([]grid.Coord, error) {
	indices, err := reconstruct(e.parentOf, idx, e.grid.Len())
	if err != nil {
		return nil, err
	}
	path := make([]grid.Coord, len(indices))
	for k, cell := range indices {
		path[k] = e.grid.CoordOf(cell)
	}
	return path, nil
}

// PartialPath returns the best known path from start to c, or nil when c has
// not been discovered yet.
func (e *Engine) PartialPath(c grid.Coord) ([]grid.Coord, error) {
	idx, ok := e.grid.Index(c)
	if !ok {
		return nil, fmt.Errorf("%v: %w", c, grid.ErrInvalidCoordinate)
	}
	if e.nodes[idx].state == unseen {
		return nil, nil
	}
	return e.pathTo(idx)
}

// Frontier lists open cells in the order they would be expanded.
func (e *Engine) Frontier() []grid.Coord {
	items := slices.Clone(e.frontier.items)
	slices.SortFunc(items, func(a, b int) int {
		na, nb := &e.nodes[a], &e.nodes[b]
		switch {
		case na.f < nb.f:
			return -1
		case na.f > nb.f:
			return 1
		case na.seq < nb.seq:
			return -1
		case na.seq > nb.seq:
			return 1
		}
		return 0
	})
	coords := make([]grid.Coord, len(items))
	for k, idx := range items {
		coords[k] = e.grid.CoordOf(idx)
	}
	return coords
}

// Visited lists closed cells in the order they were closed.
func (e *Engine) Visited() []grid.Coord {
	coords := make([]grid.Coord, len(e.visited))
	for k, idx := range e.visited {
		coords[k] = e.grid.CoordOf(idx)
	}
	return coords
}

// Scores reports g, h and f for a discovered cell.
func (e *Engine) Scores(c grid.Coord) (g, h, f float64, ok bool) {
	idx, inBounds := e.grid.Index(c)
	if !inBounds || e.nodes[idx].state == unseen {
		return 0, 0, 0, false
	}
	n := e.nodes[idx]
	return n.g, n.h, n.f, true
}

func (e *Engine) Done() bool          { return e.terminal != nil }
func (e *Engine) Expanded() int       { return len(e.visited) }
func (e *Engine) StepCount() int      { return e.steps }
func (e *Engine) Grid() *grid.Grid    { return e.grid }
func (e *Engine) Start() grid.Coord   { return e.grid.CoordOf(e.start) }
func (e *Engine) Goal() grid.Coord    { return e.grid.CoordOf(e.goal) }
func (e *Engine) Current() grid.Coord { return e.grid.CoordOf(e.current) }
