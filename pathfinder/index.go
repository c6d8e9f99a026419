package pathfinder

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/gridpath/coord"
	"github.com/milk9111/gridpath/geom"
	"github.com/milk9111/gridpath/space"
)

// FlagView is read access to a flag map.
type FlagView interface {
	Get(x, y int) int
	Len() int
	Each(fn func(x, y, value int) bool)
}

func (p *Pathfinder) BaseFlags() FlagView     { return p.base }
func (p *Pathfinder) EntryFlags() FlagView    { return p.entryFlags }
func (p *Pathfinder) CombinedFlags() FlagView { return p.combinedFlags }

// SetBaseFlags replaces the base tile flags of one cell and rebuilds it.
func (p *Pathfinder) SetBaseFlags(x, y, value int) error {
	if err := p.base.Put(x, y, value); err != nil {
		return fmt.Errorf("pathfinder: base cell (%d, %d): %w", x, y, err)
	}
	entry, err := p.cellFlags(p.entries, x, y, 0)
	if err != nil {
		return err
	}
	entry |= value
	if err := p.entryFlags.Put(x, y, entry); err != nil {
		return err
	}
	actors, err := p.cellFlags(p.actors, x, y, 0)
	if err != nil {
		return err
	}
	return p.combinedFlags.Put(x, y, entry|actors)
}

// AddStaticEntry ORs the entry's flags into both maps. Tile blocks write each
// cell's own flags.
func (p *Pathfinder) AddStaticEntry(e space.Element) error {
	return p.eachContribution(e, func(x, y, mask int) error {
		if err := p.entryFlags.SetBits(x, y, mask); err != nil {
			return err
		}
		return p.combinedFlags.SetBits(x, y, mask)
	})
}

// RemoveStaticEntry recomputes every cell the entry claimed without it.
func (p *Pathfinder) RemoveStaticEntry(e space.Element) error {
	return p.eachContribution(e, func(x, y, _ int) error {
		return p.recompute(x, y, e.ID, 0)
	})
}

func (p *Pathfinder) UpdateStaticEntry(old, updated space.Element) error {
	if err := p.RemoveStaticEntry(old); err != nil {
		return err
	}
	return p.AddStaticEntry(updated)
}

// ActorAdded ORs the actor's flags into the combined map.
func (p *Pathfinder) ActorAdded(e space.Element) error {
	return p.eachClaimed(e.Shape, func(x, y int) error {
		return p.combinedFlags.SetBits(x, y, e.Flags)
	})
}

// ActorWillChange takes the actor's pre-change footprint out of the combined map.
func (p *Pathfinder) ActorWillChange(e space.Element) error {
	return p.ActorRemoved(e)
}

// ActorDidChange puts the actor's post-change footprint back.
func (p *Pathfinder) ActorDidChange(e space.Element) error {
	return p.ActorAdded(e)
}

func (p *Pathfinder) ActorRemoved(e space.Element) error {
	return p.eachClaimed(e.Shape, func(x, y int) error {
		return p.recompute(x, y, 0, e.ID)
	})
}

// Apply routes a space change event to the matching index operation.
func (p *Pathfinder) Apply(ev space.Event) error {
	switch ev.Kind {
	case space.EntryAdded:
		return p.AddStaticEntry(ev.New)
	case space.EntryUpdated:
		return p.UpdateStaticEntry(ev.Old, ev.New)
	case space.EntryRemoved:
		return p.RemoveStaticEntry(ev.Old)
	case space.ActorAdded:
		return p.ActorAdded(ev.New)
	case space.ActorWillChange:
		return p.ActorWillChange(ev.Old)
	case space.ActorDidChange:
		return p.ActorDidChange(ev.New)
	case space.ActorRemoved:
		return p.ActorRemoved(ev.Old)
	}
	return fmt.Errorf("pathfinder: unknown event kind %d", ev.Kind)
}

// ApplyAll applies events in order and stops at the first error.
func (p *Pathfinder) ApplyAll(events []space.Event) error {
	for _, ev := range events {
		if err := p.Apply(ev); err != nil {
			return fmt.Errorf("pathfinder: apply %s: %w", ev.Kind, err)
		}
	}
	return nil
}

// recompute rebuilds one cell from the base map and the layers, ignoring the element IDs
// skipEntry and skipActor.
func (p *Pathfinder) recompute(x, y, skipEntry, skipActor int) error {
	entry := 0
	if skipEntry == 0 {
		entry = p.entryFlags.Get(x, y)
	} else {
		var err error
		entry, err = p.cellFlags(p.entries, x, y, skipEntry)
		if err != nil {
			return err
		}
		entry |= p.base.Get(x, y)
		if err := p.entryFlags.Put(x, y, entry); err != nil {
			return err
		}
	}
	actors, err := p.cellFlags(p.actors, x, y, skipActor)
	if err != nil {
		return err
	}
	return p.combinedFlags.Put(x, y, entry|actors)
}

func (p *Pathfinder) cellFlags(layer Layer, x, y, skip int) (int, error) {
	mask := 0
	var claimErr error
	err := layer.Intersecting(cellBox(x, y, 0), func(e space.Element) bool {
		if e.ID == skip {
			return true
		}
		if e.Tiles != nil {
			mask |= e.Tiles.At(x, y)
			return true
		}
		ok, err := p.claims(e.Shape, x, y)
		if err != nil {
			claimErr = err
			return false
		}
		if ok {
			mask |= e.Flags
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("pathfinder: recompute (%d, %d): %w", x, y, err)
	}
	return mask, claimErr
}

// claims reports whether shape owns cell (x, y). A shape owns the cells whose
// inset square it intersects; a shape that owns none that way owns every cell
// it touches.
func (p *Pathfinder) claims(shape geom.Shape, x, y int) (bool, error) {
	if geom.Intersects(shape, cellBox(x, y, p.opts.Inset)) {
		return true, nil
	}
	if !geom.Intersects(shape, cellBox(x, y, 0)) {
		return false, nil
	}
	cells, err := p.footprint(shape)
	if err != nil {
		return false, err
	}
	for _, c := range cells {
		if c.x == x && c.y == y {
			return true, nil
		}
	}
	return false, nil
}

// eachContribution calls fn with every cell e writes into and the flags it
// writes there.
func (p *Pathfinder) eachContribution(e space.Element, fn func(x, y, mask int) error) error {
	if e.Tiles == nil {
		return p.eachClaimed(e.Shape, func(x, y int) error {
			return fn(x, y, e.Flags)
		})
	}
	var err error
	e.Tiles.Each(func(x, y, v int) bool {
		if ferr := fn(x, y, v); ferr != nil {
			err = fmt.Errorf("pathfinder: cell (%d, %d): %w", x, y, ferr)
			return false
		}
		return true
	})
	return err
}

func (p *Pathfinder) eachClaimed(shape geom.Shape, fn func(x, y int) error) error {
	cells, err := p.footprint(shape)
	if err != nil {
		return err
	}
	for _, c := range cells {
		if err := fn(c.x, c.y); err != nil {
			return fmt.Errorf("pathfinder: cell (%d, %d): %w", c.x, c.y, err)
		}
	}
	return nil
}

// footprint lists the cells shape claims.
func (p *Pathfinder) footprint(shape geom.Shape) ([]cell, error) {
	if shape == nil {
		return nil, ErrNilShape
	}
	bb := shape.Bounds()
	minX, minY := int(math.Floor(bb.L)), int(math.Floor(bb.B))
	maxX, maxY := int(math.Floor(bb.R)), int(math.Floor(bb.T))
	if !coord.InRange(minX, minY) || !coord.InRange(maxX, maxY) {
		return nil, fmt.Errorf("pathfinder: shape bounds %v: %w", bb, coord.ErrOutOfRange)
	}

	var cells []cell
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if geom.Intersects(shape, cellBox(x, y, p.opts.Inset)) {
				cells = append(cells, cell{x, y})
			}
		}
	}
	if len(cells) > 0 {
		return cells, nil
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if geom.Intersects(shape, cellBox(x, y, 0)) {
				cells = append(cells, cell{x, y})
			}
		}
	}
	return cells, nil
}

func cellBox(x, y int, inset float64) geom.Shape {
	return geom.NewBox(cp.BB{
		L: float64(x) + inset,
		B: float64(y) + inset,
		R: float64(x+1) - inset,
		T: float64(y+1) - inset,
	})
}
