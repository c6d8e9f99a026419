package flags

import (
	"errors"
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

var ErrScriptResult = errors.New("flags: script must define a `result` variable")

// DefaultScript reproduces Overlap.
const DefaultScript = `result := (a & b) != 0`

// Script evaluates a tengo program with the integer globals `a` and `b` and
// reads the boolean global `result`. Answers are memoised per pair, so the
// program must be pure.
type Script struct {
	compiled *tengo.Compiled
	cache    map[[2]int]bool
}

func NewScript(src string) (*Script, error) {
	script := tengo.NewScript([]byte(src))
	_ = script.Add("a", 0)
	_ = script.Add("b", 0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("flags: compile script: %w", err)
	}
	s := &Script{compiled: compiled, cache: make(map[[2]int]bool)}
	if _, err := s.eval(0, 0); err != nil {
		return nil, err
	}
	// globals only hold values after a run
	if !compiled.IsDefined("result") {
		return nil, ErrScriptResult
	}
	return s, nil
}

// Collides runs the script. A failing run is logged and counted as a collision.
func (s *Script) Collides(a, b int) bool {
	key := [2]int{a, b}
	if v, ok := s.cache[key]; ok {
		return v
	}
	v, err := s.eval(a, b)
	if err != nil {
		log.Printf("flags: script a=%d b=%d: %v", a, b, err)
		return true
	}
	s.cache[key] = v
	return v
}

func (s *Script) eval(a, b int) (bool, error) {
	if err := s.compiled.Set("a", a); err != nil {
		return false, fmt.Errorf("flags: set a: %w", err)
	}
	if err := s.compiled.Set("b", b); err != nil {
		return false, fmt.Errorf("flags: set b: %w", err)
	}
	if err := s.compiled.Run(); err != nil {
		return false, fmt.Errorf("flags: run script: %w", err)
	}
	return s.compiled.Get("result").Bool(), nil
}
