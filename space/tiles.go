package space

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/gridpath/coord"
	"github.com/milk9111/gridpath/flags"
	"github.com/milk9111/gridpath/geom"
)

var (
	ErrBadTiles     = errors.New("space: tile block needs w*h flags")
	ErrEmptyTiles   = errors.New("space: tile block has no solid cells")
	ErrTilesOnActor = errors.New("space: tile blocks belong to the entries layer")
)

// Tiles is a rectangular block of per-cell flags whose lower left cell is
// (X, Y). Row r of the block is cell row Y+r. Zero cells are empty.
type Tiles struct {
	X, Y  int
	W, H  int
	flags []int
	mask  int
	shape geom.Shape
}

// NewTiles copies cells, which holds w*h flags row by row from the bottom.
func NewTiles(x, y, w, h int, cells []int) (*Tiles, error) {
	if w <= 0 || h <= 0 || len(cells) != w*h {
		return nil, fmt.Errorf("%w: %dx%d with %d values", ErrBadTiles, w, h, len(cells))
	}
	if !coord.InRange(x, y) || !coord.InRange(x+w-1, y+h-1) {
		return nil, fmt.Errorf("space: tile block at (%d, %d): %w", x, y, coord.ErrOutOfRange)
	}
	t := &Tiles{X: x, Y: y, W: w, H: h, flags: make([]int, len(cells))}
	copy(t.flags, cells)

	var boxes []geom.Shape
	t.Each(func(cx, cy, v int) bool {
		t.mask |= v
		boxes = append(boxes, geom.NewBox(cp.BB{
			L: float64(cx), B: float64(cy), R: float64(cx + 1), T: float64(cy + 1),
		}))
		return true
	})
	if len(boxes) == 0 {
		return nil, ErrEmptyTiles
	}
	t.shape = geom.NewCompound(boxes...)
	return t, nil
}

// At returns the flags of cell (x, y), or zero outside the block.
func (t *Tiles) At(x, y int) int {
	x, y = x-t.X, y-t.Y
	if x < 0 || y < 0 || x >= t.W || y >= t.H {
		return 0
	}
	return t.flags[y*t.W+x]
}

// Each visits the non-empty cells until fn returns false.
func (t *Tiles) Each(fn func(x, y, flags int) bool) {
	for i, v := range t.flags {
		if v == 0 {
			continue
		}
		if !fn(t.X+i%t.W, t.Y+i/t.W, v) {
			return
		}
	}
}

// Mask is the OR of every cell.
func (t *Tiles) Mask() int { return t.mask }

// Shape covers the non-empty cells.
func (t *Tiles) Shape() geom.Shape { return t.shape }

// Collides reports whether shape touches a cell whose flags collide with mask.
func (t *Tiles) Collides(shape geom.Shape, mask int, pred flags.Predicate) bool {
	hit := false
	t.Each(func(x, y, v int) bool {
		if !pred.Collides(mask, v) {
			return true
		}
		cellShape := geom.NewBox(cp.BB{L: float64(x), B: float64(y), R: float64(x + 1), T: float64(y + 1)})
		hit = geom.Intersects(shape, cellShape)
		return !hit
	})
	return hit
}

// AddTiles inserts a tile block as an entry. The element's shape covers the
// solid cells and its flags are the OR of them.
func (s *Space) AddTiles(t *Tiles) (Element, error) {
	if s.layer != LayerEntries {
		return Element{}, ErrTilesOnActor
	}
	if t == nil {
		return Element{}, ErrNilShape
	}
	e := Element{ID: s.nextID + 1, Shape: t.Shape(), Flags: t.Mask(), Tiles: t}
	if err := s.index(e); err != nil {
		return Element{}, err
	}
	s.nextID++
	s.elements.set(e)
	s.queue.Push(Event{Kind: EntryAdded, New: e})
	return e, nil
}

// Blocks reports whether e stops shape, which already touches e's shape, for
// an agent with mask. Tile blocks are tested cell by cell.
func (e Element) Blocks(shape geom.Shape, mask int, pred flags.Predicate) bool {
	if e.Tiles != nil {
		return e.Tiles.Collides(shape, mask, pred)
	}
	return pred.Collides(mask, e.Flags)
}
