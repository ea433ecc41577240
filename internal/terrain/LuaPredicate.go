package terrain

import (
	"errors"
	"fmt"

	"github.com/Mshel/waypoint/internal/grid"
	lua "github.com/yuin/gopher-lua"
)

var ErrLuaScript = errors.New("obstacle script failed")

const luaPredicateName = "isObstacle"

// LuaScript evaluates an obstacle field written in Lua. The script must
// define isObstacle(i, j) returning a boolean; the globals cols and rows hold
// the grid size. A LuaScript is not safe for concurrent use.
type LuaScript struct {
	state *lua.LState
	err   error
}

func NewLuaScript(source string, cols, rows int) (*LuaScript, error) {
	luaState := lua.NewState()
	luaState.SetGlobal("cols", lua.LNumber(cols))
	luaState.SetGlobal("rows", lua.LNumber(rows))

	if err := luaState.DoString(source); err != nil {
		luaState.Close()
		return nil, fmt.Errorf("%w: could not parse script: %v", ErrLuaScript, err)
	}

	if fn := luaState.GetGlobal(luaPredicateName); fn.Type() != lua.LTFunction {
		luaState.Close()
		return nil, fmt.Errorf("%w: %s is %s, expected function", ErrLuaScript, luaPredicateName, fn.Type().String())
	}

	return &LuaScript{state: luaState}, nil
}

// Evaluate calls isObstacle(i, j).
func (s *LuaScript) Evaluate(i, j int) (bool, error) {
	s.state.Push(s.state.GetGlobal(luaPredicateName))
	s.state.Push(lua.LNumber(i))
	s.state.Push(lua.LNumber(j))
	if err := s.state.PCall(2, 1, nil); err != nil {
		return false, fmt.Errorf("%w: isObstacle(%d, %d): %v", ErrLuaScript, i, j, err)
	}

	ret := s.state.Get(-1)
	s.state.Pop(1)

	switch value := ret.(type) {
	case lua.LBool:
		return bool(value), nil
	case lua.LNumber:
		return value != 0, nil
	default:
		if ret == lua.LNil {
			return false, nil
		}
		return false, fmt.Errorf("%w: isObstacle(%d, %d) returned %s", ErrLuaScript, i, j, ret.Type().String())
	}
}

// Predicate adapts the script to grid.New. The first evaluation error is kept
// and reported by Err; the failing cell is treated as passable.
func (s *LuaScript) Predicate() grid.ObstaclePredicate {
	return func(i, j int) bool {
		blocked, err := s.Evaluate(i, j)
		if err != nil && s.err == nil {
			s.err = err
		}
		return blocked
	}
}

func (s *LuaScript) Err() error {
	return s.err
}

func (s *LuaScript) Close() {
	s.state.Close()
}
