package search

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/Mshel/waypoint/internal/grid"
	"github.com/Mshel/waypoint/internal/heuristic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func c(i, j int) grid.Coord { return grid.Coord{I: i, J: j} }

func obstacles(coords ...grid.Coord) grid.ObstaclePredicate {
	set := make(map[grid.Coord]bool, len(coords))
	for _, coord := range coords {
		set[coord] = true
	}
	return func(i, j int) bool { return set[c(i, j)] }
}

func newEngine(t *testing.T, cols, rows int, diagonal bool, blocked grid.ObstaclePredicate, start, goal grid.Coord) *Engine {
	t.Helper()
	g, err := grid.New(cols, rows, blocked, grid.WithDiagonal(diagonal), grid.WithEndpoints(start, goal))
	require.NoError(t, err)
	engine, err := NewEngine(g, start, goal)
	require.NoError(t, err)
	return engine
}

func run(t *testing.T, engine *Engine) StepResult {
	t.Helper()
	result, err := engine.Run(context.Background())
	require.NoError(t, err)
	return result
}

// dijkstra is an exhaustive oracle over the grid's own adjacency.
func dijkstra(g *grid.Grid, start, goal grid.Coord) (float64, bool) {
	cost := heuristic.For(g.Diagonal())
	dist := make([]float64, g.Len())
	done := make([]bool, g.Len())
	for idx := range dist {
		dist[idx] = math.Inf(1)
	}
	startIdx, _ := g.Index(start)
	goalIdx, _ := g.Index(goal)
	dist[startIdx] = 0

	for {
		best := -1
		for idx := range dist {
			if !done[idx] && !math.IsInf(dist[idx], 1) && (best == -1 || dist[idx] < dist[best]) {
				best = idx
			}
		}
		if best == -1 {
			return 0, false
		}
		if best == goalIdx {
			return dist[best], true
		}
		done[best] = true
		for _, n := range g.Neighbors(best) {
			if d := dist[best] + cost(g.CoordOf(best), g.CoordOf(n)); d < dist[n] {
				dist[n] = d
			}
		}
	}
}

func TestOpenGridOrthogonal(t *testing.T) {
	engine := newEngine(t, 5, 5, false, nil, c(0, 0), c(4, 4))
	result := run(t, engine)

	assert.Equal(t, Found, result.Outcome)
	assert.Len(t, result.Path, 9)
	assert.Equal(t, 8.0, result.Cost)
	assert.Equal(t, c(0, 0), result.Path[0])
	assert.Equal(t, c(4, 4), result.Path[len(result.Path)-1])
}

func TestOpenGridDiagonal(t *testing.T) {
	engine := newEngine(t, 5, 5, true, nil, c(0, 0), c(4, 4))
	result := run(t, engine)

	assert.Equal(t, Found, result.Outcome)
	assert.Equal(t, []grid.Coord{c(0, 0), c(1, 1), c(2, 2), c(3, 3), c(4, 4)}, result.Path)
	assert.InDelta(t, 4*math.Sqrt2, result.Cost, 1e-9)
}

func TestWallMeansNoPath(t *testing.T) {
	engine := newEngine(t, 3, 3, false, obstacles(c(1, 0), c(1, 1), c(1, 2)), c(0, 1), c(2, 1))
	result := run(t, engine)

	assert.Equal(t, Failed, result.Outcome)
	assert.Nil(t, result.Path)
	assert.ElementsMatch(t, []grid.Coord{c(0, 0), c(0, 1), c(0, 2)}, engine.Visited())
	assert.Empty(t, engine.Frontier())
}

func TestStartIsGoal(t *testing.T) {
	engine := newEngine(t, 4, 4, false, nil, c(2, 2), c(2, 2))

	result, err := engine.Step()
	require.NoError(t, err)
	assert.Equal(t, Found, result.Outcome)
	assert.Equal(t, []grid.Coord{c(2, 2)}, result.Path)
	assert.Equal(t, 0.0, result.Cost)
	assert.Equal(t, 1, result.Step)
	assert.Zero(t, engine.Expanded())
}

func TestTieBreakFirstFound(t *testing.T) {
	// both routes around the square cost 2; (1,0) is discovered before (0,1)
	engine := newEngine(t, 2, 2, false, nil, c(0, 0), c(1, 1))
	result := run(t, engine)

	assert.Equal(t, []grid.Coord{c(0, 0), c(1, 0), c(1, 1)}, result.Path)
	assert.Equal(t, []grid.Coord{c(0, 0), c(1, 0), c(0, 1)}, engine.Visited())
}

func TestDeterministicAcrossRuns(t *testing.T) {
	blocked := obstacles(c(2, 1), c(2, 2), c(2, 3), c(4, 0), c(4, 1))
	first := run(t, newEngine(t, 7, 5, false, blocked, c(0, 2), c(6, 2)))
	for range 10 {
		again := run(t, newEngine(t, 7, 5, false, blocked, c(0, 2), c(6, 2)))
		assert.Equal(t, first.Path, again.Path)
		assert.Equal(t, first.Cost, again.Cost)
	}
}

func TestTerminalResultRepeats(t *testing.T) {
	engine := newEngine(t, 3, 1, false, nil, c(0, 0), c(2, 0))
	final := run(t, engine)
	require.True(t, engine.Done())

	again, err := engine.Step()
	require.NoError(t, err)
	assert.Equal(t, final, again)

	again.Path[0] = c(9, 9)
	third, err := engine.Step()
	require.NoError(t, err)
	assert.Equal(t, c(0, 0), third.Path[0])
}

func TestStepsIterator(t *testing.T) {
	engine := newEngine(t, 4, 1, false, nil, c(0, 0), c(3, 0))

	var outcomes []Outcome
	for result, err := range engine.Steps() {
		require.NoError(t, err)
		outcomes = append(outcomes, result.Outcome)
		if result.Outcome == Continue {
			assert.Equal(t, result.Current, result.Path[len(result.Path)-1])
		}
	}
	assert.Equal(t, []Outcome{Continue, Continue, Continue, Found}, outcomes)
}

func TestStepsIteratorStopsEarly(t *testing.T) {
	engine := newEngine(t, 10, 1, false, nil, c(0, 0), c(9, 0))

	count := 0
	for range engine.Steps() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
	assert.False(t, engine.Done())
	assert.Equal(t, 2, engine.StepCount())
}

func TestRunHonoursCancellation(t *testing.T) {
	engine := newEngine(t, 10, 10, false, nil, c(0, 0), c(9, 9))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, engine.StepCount())
}

func TestEndpointValidation(t *testing.T) {
	g, err := grid.New(3, 3, obstacles(c(1, 1)))
	require.NoError(t, err)

	_, err = NewEngine(g, c(0, 0), c(3, 3))
	assert.ErrorIs(t, err, grid.ErrInvalidCoordinate)

	_, err = NewEngine(g, c(-1, 0), c(2, 2))
	assert.ErrorIs(t, err, grid.ErrInvalidCoordinate)

	_, err = NewEngine(g, c(0, 0), c(1, 1))
	assert.ErrorIs(t, err, ErrBlockedEndpoint)
}

func TestFrontierAndVisitedAreDetached(t *testing.T) {
	engine := newEngine(t, 5, 5, false, nil, c(0, 0), c(4, 4))
	for range 4 {
		_, err := engine.Step()
		require.NoError(t, err)
	}

	frontier := engine.Frontier()
	visited := engine.Visited()
	require.NotEmpty(t, frontier)
	require.NotEmpty(t, visited)

	seen := make(map[grid.Coord]bool)
	for _, coord := range visited {
		seen[coord] = true
	}
	for _, coord := range frontier {
		assert.False(t, seen[coord], "%v is both open and closed", coord)
	}

	frontier[0] = c(99, 99)
	visited[0] = c(99, 99)
	assert.NotEqual(t, c(99, 99), engine.Frontier()[0])
	assert.Equal(t, c(0, 0), engine.Visited()[0])
}

func TestFrontierOrderedByScore(t *testing.T) {
	engine := newEngine(t, 6, 6, true, obstacles(c(2, 2), c(3, 2)), c(0, 0), c(5, 5))
	for range 5 {
		_, err := engine.Step()
		require.NoError(t, err)
	}

	var last float64
	for k, coord := range engine.Frontier() {
		_, _, f, ok := engine.Scores(coord)
		require.True(t, ok)
		if k > 0 {
			assert.GreaterOrEqual(t, f, last)
		}
		last = f
	}
}

func TestPartialPath(t *testing.T) {
	engine := newEngine(t, 5, 1, false, nil, c(0, 0), c(4, 0))
	_, err := engine.Step()
	require.NoError(t, err)

	path, err := engine.PartialPath(c(1, 0))
	require.NoError(t, err)
	assert.Equal(t, []grid.Coord{c(0, 0), c(1, 0)}, path)

	path, err = engine.PartialPath(c(3, 0))
	require.NoError(t, err)
	assert.Nil(t, path)

	_, err = engine.PartialPath(c(7, 0))
	assert.ErrorIs(t, err, grid.ErrInvalidCoordinate)
}

func TestSnapshotCopies(t *testing.T) {
	engine := newEngine(t, 4, 4, false, nil, c(0, 0), c(3, 3))
	last, err := engine.Step()
	require.NoError(t, err)

	snapshot := engine.Snapshot(last)
	assert.Equal(t, Continue, snapshot.Outcome)
	assert.Equal(t, engine.Visited(), snapshot.Visited)
	assert.Equal(t, engine.Frontier(), snapshot.Frontier)

	snapshot.Path[0] = c(8, 8)
	assert.Equal(t, c(0, 0), last.Path[0])
}

func TestSolve(t *testing.T) {
	g, err := grid.New(5, 5, nil)
	require.NoError(t, err)

	result, err := Solve(context.Background(), g, c(0, 0), c(4, 0))
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, 4.0, result.Cost)

	walled, err := grid.New(3, 3, obstacles(c(1, 0), c(1, 1), c(1, 2)))
	require.NoError(t, err)
	result, err = Solve(context.Background(), walled, c(0, 1), c(2, 1))
	assert.ErrorIs(t, err, ErrNoPath)
	assert.False(t, result.Found)
	assert.Equal(t, 3, result.Expanded)
}

func TestCustomHeuristic(t *testing.T) {
	g, err := grid.New(5, 5, nil)
	require.NoError(t, err)

	// estimates nothing beyond one step, so the search degrades to uniform cost
	uniform := func(a, b grid.Coord) float64 {
		if heuristic.Taxicab(a, b) == 1 {
			return 1
		}
		return 0
	}
	engine, err := NewEngine(g, c(0, 0), c(4, 4), WithHeuristic(uniform))
	require.NoError(t, err)
	result := run(t, engine)
	assert.Equal(t, 8.0, result.Cost)
	assert.Greater(t, engine.Expanded(), 9)
}

func assertValidPath(t *testing.T, g *grid.Grid, path []grid.Coord) {
	t.Helper()
	for k := 1; k < len(path); k++ {
		prev, next := path[k-1], path[k]
		di, dj := next.I-prev.I, next.J-prev.J
		require.True(t, di >= -1 && di <= 1 && dj >= -1 && dj <= 1 && (di != 0 || dj != 0), "%v -> %v is not a move", prev, next)
		assert.False(t, g.IsObstacle(next))
		if di != 0 && dj != 0 {
			require.True(t, g.Diagonal())
			assert.False(t, g.IsObstacle(c(prev.I+di, prev.J)), "diagonal %v -> %v cuts a corner", prev, next)
			assert.False(t, g.IsObstacle(c(prev.I, prev.J+dj)), "diagonal %v -> %v cuts a corner", prev, next)
		}
	}
}

func TestOptimalAgainstExhaustiveSearch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := range 300 {
		cols, rows := 3+rng.Intn(12), 3+rng.Intn(12)
		diagonal := trial%2 == 1
		start := c(rng.Intn(cols), rng.Intn(rows))
		goal := c(rng.Intn(cols), rng.Intn(rows))
		blocked := make(map[grid.Coord]bool)
		for j := 0; j < rows; j++ {
			for i := 0; i < cols; i++ {
				if rng.Float64() < 0.3 {
					blocked[c(i, j)] = true
				}
			}
		}
		predicate := func(i, j int) bool { return blocked[c(i, j)] }

		g, err := grid.New(cols, rows, predicate, grid.WithDiagonal(diagonal), grid.WithEndpoints(start, goal))
		require.NoError(t, err)
		engine, err := NewEngine(g, start, goal)
		require.NoError(t, err)

		result := run(t, engine)
		want, reachable := dijkstra(g, start, goal)

		assert.LessOrEqual(t, engine.Expanded(), cols*rows)
		if !reachable {
			assert.Equal(t, Failed, result.Outcome, "trial %d", trial)
			continue
		}
		require.Equal(t, Found, result.Outcome, "trial %d", trial)
		assert.InDelta(t, want, result.Cost, 1e-9, "trial %d", trial)
		assert.Equal(t, start, result.Path[0])
		assert.Equal(t, goal, result.Path[len(result.Path)-1])
		assertValidPath(t, g, result.Path)

		h := heuristic.For(diagonal)
		assert.LessOrEqual(t, h(start, goal), want+1e-9, "heuristic overestimates in trial %d", trial)
	}
}

func TestVisitedAtMostOnce(t *testing.T) {
	engine := newEngine(t, 20, 20, true, obstacles(c(5, 5), c(5, 6), c(6, 5), c(10, 3)), c(0, 0), c(19, 19))
	run(t, engine)

	seen := make(map[grid.Coord]bool)
	for _, coord := range engine.Visited() {
		assert.False(t, seen[coord], "%v closed twice", coord)
		seen[coord] = true
	}
	assert.LessOrEqual(t, len(seen), 400)
}
