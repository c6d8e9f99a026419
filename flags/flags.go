// Package flags decides whether two collision flag sets collide. The meaning
// of individual bits belongs to the scene model; the pathfinder only asks the
// Predicate.
package flags

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrUnknownCategory = errors.New("flags: unknown category")
	ErrBadCategory     = errors.New("flags: invalid category")
)

// Predicate reports whether flag set a collides with flag set b.
type Predicate interface {
	Collides(a, b int) bool
}

// Func adapts a plain function to Predicate.
type Func func(a, b int) bool

func (f Func) Collides(a, b int) bool { return f(a, b) }

// Overlap collides whenever the two sets share a bit.
var Overlap Predicate = Func(func(a, b int) bool { return a&b != 0 })

// SelfColliding reports whether an element with mask would block itself.
func SelfColliding(p Predicate, mask int) bool {
	return p.Collides(mask, mask)
}

// Category names one bit and the categories it collides with.
type Category struct {
	Name         string   `yaml:"name"`
	Bit          int      `yaml:"bit"`
	CollidesWith []string `yaml:"collides_with"`
}

// Matrix is a symmetric category collision table over 32 bits.
type Matrix struct {
	names map[string]int
	rows  [32]uint32
}

func NewMatrix(categories []Category) (*Matrix, error) {
	m := &Matrix{names: make(map[string]int, len(categories))}
	used := uint32(0)
	for _, c := range categories {
		if c.Name == "" || c.Bit < 0 || c.Bit >= 32 {
			return nil, fmt.Errorf("%w: %q bit %d", ErrBadCategory, c.Name, c.Bit)
		}
		if _, dup := m.names[c.Name]; dup || used&(1<<c.Bit) != 0 {
			return nil, fmt.Errorf("%w: duplicate %q bit %d", ErrBadCategory, c.Name, c.Bit)
		}
		m.names[c.Name] = c.Bit
		used |= 1 << c.Bit
	}
	for _, c := range categories {
		for _, other := range c.CollidesWith {
			bit, ok := m.names[other]
			if !ok {
				return nil, fmt.Errorf("%w: %q (collides_with of %q)", ErrUnknownCategory, other, c.Name)
			}
			m.rows[c.Bit] |= 1 << bit
			m.rows[bit] |= 1 << c.Bit
		}
	}
	return m, nil
}

func (m *Matrix) Collides(a, b int) bool {
	for ua := uint32(a); ua != 0; ua &= ua - 1 {
		if m.rows[bits.TrailingZeros32(ua)]&uint32(b) != 0 {
			return true
		}
	}
	return false
}

// Bits turns category names into a mask.
func (m *Matrix) Bits(names ...string) (int, error) {
	mask := 0
	for _, name := range names {
		bit, ok := m.names[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		mask |= 1 << bit
	}
	return mask, nil
}
