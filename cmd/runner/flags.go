package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Mshel/waypoint/internal/demo"
	"github.com/Mshel/waypoint/internal/grid"
	"github.com/Mshel/waypoint/internal/terrain"
	"github.com/charmbracelet/log"
)

var errConflictingSources = errors.New("-map and -lua cannot be combined")

// coordFlag reads a cell as "i,j".
type coordFlag struct {
	coord *grid.Coord
}

func (f *coordFlag) String() string {
	if f.coord == nil {
		return ""
	}
	return fmt.Sprintf("%d,%d", f.coord.I, f.coord.J)
}

func (f *coordFlag) Set(value string) error {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return fmt.Errorf("want i,j, got %q", value)
	}
	i, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("column %q: %w", parts[0], err)
	}
	j, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("row %q: %w", parts[1], err)
	}
	f.coord = &grid.Coord{I: i, J: j}
	return nil
}

type options struct {
	mapPath  string
	luaPath  string
	cols     int
	rows     int
	walls    float64
	seed     int64
	diagonal bool
	start    coordFlag
	goal     coordFlag
	batch    int
	workers  int
	tui      bool
	quiet    bool
	dbPath   string
	logLevel log.Level
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var o options
	var logLevel string

	fs := flag.NewFlagSet("waypoint", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&o.mapPath, "map", "", "ASCII map file ('.' free, '#' wall, 'S' start, 'G' goal)")
	fs.StringVar(&o.luaPath, "lua", "", "Lua script defining isObstacle(i, j)")
	fs.IntVar(&o.cols, "cols", demo.DefaultCols, "grid columns")
	fs.IntVar(&o.rows, "rows", demo.DefaultRows, "grid rows")
	fs.Float64Var(&o.walls, "walls", demo.DefaultWallFraction, "fraction of random walls")
	fs.Int64Var(&o.seed, "seed", demo.DefaultSeed, "random seed")
	fs.BoolVar(&o.diagonal, "diagonal", false, "allow diagonal moves")
	fs.Var(&o.start, "start", "start cell as i,j (random when unset)")
	fs.Var(&o.goal, "goal", "goal cell as i,j (random when unset)")
	fs.IntVar(&o.batch, "batch", 0, "solve this many random puzzles concurrently and print a summary")
	fs.IntVar(&o.workers, "workers", 0, "batch workers (0 picks a default)")
	fs.BoolVar(&o.tui, "tui", false, "open the interactive terminal UI")
	fs.BoolVar(&o.quiet, "quiet", false, "do not print the solved map")
	fs.StringVar(&o.dbPath, "db", "", "sqlite file to record runs in (empty disables recording)")
	fs.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.mapPath != "" && o.luaPath != "" {
		return o, errConflictingSources
	}

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return o, err
	}
	o.logLevel = level
	return o, nil
}

// config turns the flags into a puzzle configuration. When -lua is set the
// script backing cfg.Obstacles is returned as well and must be closed.
func (o options) config() (demo.Config, *terrain.LuaScript, error) {
	cfg := demo.DefaultConfig()
	cfg.Cols, cfg.Rows = o.cols, o.rows
	cfg.WallFraction = o.walls
	cfg.Seed = o.seed
	cfg.Diagonal = o.diagonal
	cfg.Start, cfg.Goal = o.start.coord, o.goal.coord

	switch {
	case o.mapPath != "":
		file, err := os.Open(o.mapPath)
		if err != nil {
			return cfg, nil, err
		}
		defer file.Close()

		m, err := terrain.ParseASCII(file)
		if err != nil {
			return cfg, nil, fmt.Errorf("%s: %w", o.mapPath, err)
		}
		cfg.Cols, cfg.Rows = m.Cols, m.Rows
		cfg.Obstacles = m.Predicate()
		if cfg.Start == nil {
			cfg.Start = m.Start
		}
		if cfg.Goal == nil {
			cfg.Goal = m.Goal
		}

	case o.luaPath != "":
		source, err := os.ReadFile(o.luaPath)
		if err != nil {
			return cfg, nil, err
		}
		script, err := terrain.NewLuaScript(string(source), cfg.Cols, cfg.Rows)
		if err != nil {
			return cfg, nil, fmt.Errorf("%s: %w", o.luaPath, err)
		}
		if err := cfg.Validate(); err != nil {
			script.Close()
			return cfg, nil, err
		}
		cfg.Obstacles = script.Predicate()
		return cfg, script, nil
	}

	return cfg, nil, cfg.Validate()
}
