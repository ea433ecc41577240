package terrain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Mshel/waypoint/internal/grid"
)

var (
	ErrRaggedMap   = errors.New("map rows have different lengths")
	ErrEmptyMap    = errors.New("map has no cells")
	ErrUnknownTile = errors.New("unknown map tile")
)

const (
	TileFree     = '.'
	TileObstacle = '#'
	TileStart    = 'S'
	TileGoal     = 'G'
	TilePath     = '*'
)

// Map is a parsed text map. Start and Goal are nil when the map does not
// mark them.
type Map struct {
	Cols      int
	Rows      int
	Obstacles []grid.Coord
	Start     *grid.Coord
	Goal      *grid.Coord
}

func (m Map) Predicate() grid.ObstaclePredicate {
	return Set(m.Obstacles...)
}

// ParseASCII reads one grid row per line. Blank lines and lines starting with
// ';' are skipped. Path tiles read as free cells, so solved maps parse back.
func ParseASCII(r io.Reader) (Map, error) {
	var m Map
	scanner := bufio.NewScanner(r)

	row := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		if m.Cols == 0 {
			m.Cols = len(line)
		} else if len(line) != m.Cols {
			return Map{}, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrRaggedMap, row, len(line), m.Cols)
		}

		for col, tile := range []byte(line) {
			here := grid.Coord{I: col, J: row}
			switch tile {
			case TileFree, TilePath:
			case TileObstacle:
				m.Obstacles = append(m.Obstacles, here)
			case TileStart:
				m.Start = &here
			case TileGoal:
				m.Goal = &here
			default:
				return Map{}, fmt.Errorf("%w %q at %v", ErrUnknownTile, tile, here)
			}
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return Map{}, fmt.Errorf("failed to read map: %w", err)
	}
	if row == 0 || m.Cols == 0 {
		return Map{}, ErrEmptyMap
	}

	m.Rows = row
	return m, nil
}

// FormatASCII renders g in the same notation ParseASCII reads, overlaying
// path with '*'.
func FormatASCII(g *grid.Grid, start, goal grid.Coord, path []grid.Coord) string {
	onPath := make(map[grid.Coord]bool, len(path))
	for _, c := range path {
		onPath[c] = true
	}

	var sb strings.Builder
	for j := 0; j < g.Rows(); j++ {
		for i := 0; i < g.Cols(); i++ {
			here := grid.Coord{I: i, J: j}
			switch {
			case here == start:
				sb.WriteByte(TileStart)
			case here == goal:
				sb.WriteByte(TileGoal)
			case g.IsObstacle(here):
				sb.WriteByte(TileObstacle)
			case onPath[here]:
				sb.WriteByte(TilePath)
			default:
				sb.WriteByte(TileFree)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
