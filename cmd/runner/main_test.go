package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mshel/waypoint/internal/demo"
	"github.com/Mshel/waypoint/internal/grid"
	"github.com/Mshel/waypoint/internal/history"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCoordFlag(t *testing.T) {
	var f coordFlag
	assert.Equal(t, "", f.String())

	require.NoError(t, f.Set("3, 4"))
	assert.Equal(t, grid.Coord{I: 3, J: 4}, *f.coord)
	assert.Equal(t, "3,4", f.String())

	assert.Error(t, f.Set("3"))
	assert.Error(t, f.Set("a,1"))
	assert.Error(t, f.Set("1,b"))
}

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-cols", "12", "-diagonal", "-start", "0,0", "-log-level", "debug"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 12, o.cols)
	assert.Equal(t, demo.DefaultRows, o.rows)
	assert.True(t, o.diagonal)
	assert.Equal(t, log.DebugLevel, o.logLevel)
	assert.Nil(t, o.goal.coord)

	_, err = parseFlags([]string{"-map", "a.txt", "-lua", "b.lua"}, io.Discard)
	assert.ErrorIs(t, err, errConflictingSources)

	_, err = parseFlags([]string{"-log-level", "chatty"}, io.Discard)
	assert.Error(t, err)

	_, err = parseFlags([]string{"stray"}, io.Discard)
	assert.Error(t, err)
}

func TestConfigFromMap(t *testing.T) {
	path := writeFile(t, "maze.txt", "S.#..\n..#..\n....G\n")
	o, err := parseFlags([]string{"-map", path}, io.Discard)
	require.NoError(t, err)

	cfg, script, err := o.config()
	require.NoError(t, err)
	assert.Nil(t, script)
	assert.Equal(t, 5, cfg.Cols)
	assert.Equal(t, 3, cfg.Rows)
	assert.Equal(t, grid.Coord{I: 0, J: 0}, *cfg.Start)
	assert.Equal(t, grid.Coord{I: 4, J: 2}, *cfg.Goal)
	assert.True(t, cfg.Obstacles(2, 1))
}

func TestConfigFromLua(t *testing.T) {
	path := writeFile(t, "walls.lua", "function isObstacle(i, j) return i == 1 end\n")
	o, err := parseFlags([]string{"-lua", path, "-cols", "3", "-rows", "2"}, io.Discard)
	require.NoError(t, err)

	cfg, script, err := o.config()
	require.NoError(t, err)
	require.NotNil(t, script)
	defer script.Close()
	assert.True(t, cfg.Obstacles(1, 0))
	assert.False(t, cfg.Obstacles(0, 0))
}

func TestRunSingleFromMap(t *testing.T) {
	path := writeFile(t, "maze.txt", "S.#..\n..#..\n....G\n")
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	o, err := parseFlags([]string{"-map", path, "-db", dbPath}, io.Discard)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, &out))

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "S*#..", lines[0])
	assert.Equal(t, ".*#..", lines[1])
	assert.Equal(t, ".***G", lines[2])
	assert.Contains(t, lines[3], "found, cost 6.0000, path 7 cells")

	store, err := history.Open(dbPath, log.New(io.Discard))
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Found)
	assert.Equal(t, 6.0, runs[0].Cost)
}

func TestRunSingleNoPath(t *testing.T) {
	path := writeFile(t, "walled.txt", "S#.\n##.\n..G\n")
	o, err := parseFlags([]string{"-map", path, "-quiet"}, io.Discard)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, &out))
	assert.Equal(t, "(0,0) -> (2,2): no path, cost 0.0000, path 0 cells, expanded 1, steps 1\n", out.String())
}

func TestRunBatch(t *testing.T) {
	o, err := parseFlags([]string{"-batch", "5", "-cols", "15", "-rows", "10", "-workers", "2"}, io.Discard)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[5], "5 puzzles"))

	o.luaPath = writeFile(t, "walls.lua", "function isObstacle(i, j) return false end\n")
	assert.Error(t, run(context.Background(), o, &out))
}
