package scene

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/gridpath/geom"
	"github.com/milk9111/gridpath/space"
)

var (
	ErrUnknownShape = errors.New("scene: unknown shape type")
	ErrBadShape     = errors.New("scene: invalid shape")
)

type Spec struct {
	Name    string      `yaml:"name"`
	Base    []TileSpec  `yaml:"base"`
	Tiles   []TileSpec  `yaml:"tiles"`
	Entries []EntrySpec `yaml:"entries"`
	Actors  []ActorSpec `yaml:"actors"`
	Probes  []ProbeSpec `yaml:"probes"`
}

// EntrySpec is static geometry. Its mask is Flags ORed with the bits of the
// named categories.
type EntrySpec struct {
	Name       string    `yaml:"name"`
	Flags      int       `yaml:"flags"`
	Categories []string  `yaml:"categories"`
	Shape      ShapeSpec `yaml:"shape"`
}

// TileSpec is a block of per-cell flags. Origin is the lower left cell and
// Rows are listed top row first, as they read in the file.
type TileSpec struct {
	Name   string  `yaml:"name"`
	Origin [2]int  `yaml:"origin"`
	Rows   [][]int `yaml:"rows"`
}

// Build turns the spec into a tile block.
func (s TileSpec) Build() (*space.Tiles, error) {
	if len(s.Rows) == 0 || len(s.Rows[0]) == 0 {
		return nil, fmt.Errorf("%w: no rows", space.ErrBadTiles)
	}
	w, h := len(s.Rows[0]), len(s.Rows)
	cells := make([]int, 0, w*h)
	for i := h - 1; i >= 0; i-- {
		if len(s.Rows[i]) != w {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", space.ErrBadTiles, i, len(s.Rows[i]), w)
		}
		cells = append(cells, s.Rows[i]...)
	}
	return space.NewTiles(s.Origin[0], s.Origin[1], w, h, cells)
}

// ActorSpec is a live actor. Shape is local and placed at Position.
type ActorSpec struct {
	Name       string    `yaml:"name"`
	Flags      int       `yaml:"flags"`
	Categories []string  `yaml:"categories"`
	Position   Vec       `yaml:"position"`
	Rotation   float64   `yaml:"rotation"`
	Shape      ShapeSpec `yaml:"shape"`
}

// ProbeSpec is a stored path query. Agent names an actor; without one a
// circle of Radius with Flags is used.
type ProbeSpec struct {
	Name       string   `yaml:"name"`
	Agent      string   `yaml:"agent"`
	Radius     float64  `yaml:"radius"`
	Flags      int      `yaml:"flags"`
	Categories []string `yaml:"categories"`
	From       Vec      `yaml:"from"`
	To         Vec      `yaml:"to"`
}

type ShapeSpec struct {
	Type   string      `yaml:"type"`
	At     Vec         `yaml:"at"`
	From   Vec         `yaml:"from"`
	To     Vec         `yaml:"to"`
	Center Vec         `yaml:"center"`
	Radius float64     `yaml:"radius"`
	Min    Vec         `yaml:"min"`
	Max    Vec         `yaml:"max"`
	Points []Vec       `yaml:"points"`
	Shapes []ShapeSpec `yaml:"shapes"`
}

// Vec is written as a two element sequence, [x, y].
type Vec cp.Vector

func (v *Vec) UnmarshalYAML(node *yaml.Node) error {
	var xy []float64
	if err := node.Decode(&xy); err != nil {
		return fmt.Errorf("scene: line %d: vector: %w", node.Line, err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("scene: line %d: vector needs 2 values, got %d", node.Line, len(xy))
	}
	*v = Vec{X: xy[0], Y: xy[1]}
	return nil
}

func (v Vec) MarshalYAML() (any, error) {
	return []float64{v.X, v.Y}, nil
}

func (v Vec) Vector() cp.Vector { return cp.Vector(v) }

// Build turns the spec into a shape.
func (s ShapeSpec) Build() (geom.Shape, error) {
	switch s.Type {
	case "point":
		return geom.NewPoint(s.At.Vector()), nil
	case "segment":
		return geom.NewSegment(s.From.Vector(), s.To.Vector()), nil
	case "circle":
		if s.Radius < 0 {
			return nil, fmt.Errorf("%w: circle radius %v", ErrBadShape, s.Radius)
		}
		return geom.NewCircle(s.Center.Vector(), s.Radius), nil
	case "capsule":
		if s.Radius < 0 {
			return nil, fmt.Errorf("%w: capsule radius %v", ErrBadShape, s.Radius)
		}
		return geom.NewCapsule(s.From.Vector(), s.To.Vector(), s.Radius), nil
	case "box":
		if s.Max.X < s.Min.X || s.Max.Y < s.Min.Y {
			return nil, fmt.Errorf("%w: box min %v max %v", ErrBadShape, s.Min, s.Max)
		}
		return geom.NewBox(cp.BB{L: s.Min.X, B: s.Min.Y, R: s.Max.X, T: s.Max.Y}), nil
	case "polygon":
		if len(s.Points) == 0 {
			return nil, fmt.Errorf("%w: polygon without points", ErrBadShape)
		}
		pts := make([]cp.Vector, len(s.Points))
		for i, p := range s.Points {
			pts[i] = p.Vector()
		}
		return geom.NewPolygon(pts...), nil
	case "compound":
		if len(s.Shapes) == 0 {
			return nil, fmt.Errorf("%w: compound without shapes", ErrBadShape)
		}
		children := make([]geom.Shape, 0, len(s.Shapes))
		for i, child := range s.Shapes {
			shape, err := child.Build()
			if err != nil {
				return nil, fmt.Errorf("compound child %d: %w", i, err)
			}
			children = append(children, shape)
		}
		return geom.NewCompound(children...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownShape, s.Type)
}
