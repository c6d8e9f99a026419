// Package pathfinder keeps per-cell collision flags for a scene's static
// entries and live actors and finds paths for agents of arbitrary shape.
//
// Two flag maps are maintained: entry flags hold the scene's base tile flags
// ORed with every static entry claiming a cell, combined flags additionally
// hold every actor. Callers keep
// them current by forwarding space change events through Apply, then query
// with FindPath. Nothing here is safe for concurrent use; mutations and
// queries must be serialized by the caller.
package pathfinder

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/gridpath/coord"
	"github.com/milk9111/gridpath/flags"
	"github.com/milk9111/gridpath/geom"
	"github.com/milk9111/gridpath/space"
)

const (
	DefaultInset    = 1e-4
	DefaultMaxNodes = 100000
)

var (
	ErrNilLayer     = errors.New("pathfinder: nil layer")
	ErrNilPredicate = errors.New("pathfinder: nil predicate")
	ErrNilShape     = errors.New("pathfinder: nil shape")
	ErrInvalidInset = errors.New("pathfinder: inset must be in [0, 0.5)")
)

// Layer is the part of a space the pathfinder reads.
type Layer interface {
	Get(id int) (space.Element, bool)
	Each(fn func(space.Element) bool)
	Intersecting(shape geom.Shape, fn func(space.Element) bool) error
}

type Options struct {
	// Capacity and LoadFactor size both flag maps.
	Capacity   int
	LoadFactor float64
	// Inset shrinks each cell before testing it against a shape, so geometry
	// that only touches a cell edge does not claim the cell.
	Inset float64
	// MaxNodes caps node expansions per search.
	MaxNodes int
	// Diagonal enables 8-neighbour moves.
	Diagonal bool
	Debug    bool
}

func DefaultOptions() Options {
	return Options{
		Capacity:   coord.DefaultCapacity,
		LoadFactor: coord.DefaultLoadFactor,
		Inset:      DefaultInset,
		MaxNodes:   DefaultMaxNodes,
		Diagonal:   true,
	}
}

type Pathfinder struct {
	entries Layer
	actors  Layer
	pred    flags.Predicate
	opts    Options

	base          *coord.IntMap
	entryFlags    *coord.IntMap
	combinedFlags *coord.IntMap
}

// New builds a pathfinder and seeds both flag maps from base, which may be
// nil, and the current contents of entries and actors. base is copied.
func New(entries, actors Layer, base *coord.IntMap, pred flags.Predicate, opts Options) (*Pathfinder, error) {
	if entries == nil || actors == nil {
		return nil, ErrNilLayer
	}
	if pred == nil {
		return nil, ErrNilPredicate
	}
	if opts.Inset < 0 || opts.Inset >= 0.5 || math.IsNaN(opts.Inset) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInset, opts.Inset)
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}

	var maps [3]*coord.IntMap
	for i, name := range []string{"base", "entry", "combined"} {
		m, err := coord.NewIntMap(opts.Capacity, opts.LoadFactor)
		if err != nil {
			return nil, fmt.Errorf("pathfinder: %s flags: %w", name, err)
		}
		maps[i] = m
	}
	p := &Pathfinder{
		entries:       entries,
		actors:        actors,
		pred:          pred,
		opts:          opts,
		base:          maps[0],
		entryFlags:    maps[1],
		combinedFlags: maps[2],
	}
	if base != nil {
		for _, m := range maps {
			if err := m.PutAll(base); err != nil {
				return nil, fmt.Errorf("pathfinder: seed base flags: %w", err)
			}
		}
	}
	if err := seed(entries, p.AddStaticEntry); err != nil {
		return nil, err
	}
	if err := seed(actors, p.ActorAdded); err != nil {
		return nil, err
	}
	return p, nil
}

func seed(layer Layer, add func(space.Element) error) error {
	var err error
	layer.Each(func(e space.Element) bool {
		if err = add(e); err != nil {
			err = fmt.Errorf("pathfinder: seed element %d: %w", e.ID, err)
			return false
		}
		return true
	})
	return err
}

// Agent is the moving body a path is planned for. Shape is in local
// coordinates and is placed at each waypoint with Rotation applied. ID is the
// agent's actor ID, or 0 when it is not in the actor layer.
type Agent struct {
	ID       int
	Shape    geom.Shape
	Rotation float64
	Flags    int
}

type Query struct {
	Agent Agent
	Start cp.Vector
	Goal  cp.Vector
	// Longest bounds the grid path length; zero means unbounded.
	Longest float64
	// Partial returns the best path towards an unreachable goal.
	Partial bool
	// Shortcut drops waypoints the agent can sweep past directly.
	Shortcut bool
	// ConsiderActors searches the combined map instead of the entry map.
	ConsiderActors bool
}

// FindPath returns the waypoints from q.Start towards q.Goal. A nil slice
// with a nil error means there is no path.
func (p *Pathfinder) FindPath(q Query) ([]cp.Vector, error) {
	if q.Agent.Shape == nil {
		return nil, ErrNilShape
	}
	if q.Start == q.Goal {
		return []cp.Vector{q.Start}, nil
	}

	hit, err := p.sweepCollides(q, q.Start, q.Goal)
	if err != nil {
		return nil, err
	}
	if !hit {
		p.debugf("direct sweep %v -> %v", q.Start, q.Goal)
		return []cp.Vector{q.Start, q.Goal}, nil
	}

	path, err := p.gridPath(q)
	if err != nil || path == nil {
		return nil, err
	}
	if q.Shortcut {
		return p.shortcut(q, path)
	}
	return path, nil
}

// EntryPath searches the entry map, ignoring actors.
func (p *Pathfinder) EntryPath(agent Agent, start, goal cp.Vector, longest float64, partial, shortcut bool) ([]cp.Vector, error) {
	return p.FindPath(Query{Agent: agent, Start: start, Goal: goal, Longest: longest, Partial: partial, Shortcut: shortcut})
}

// Path searches the combined map.
func (p *Pathfinder) Path(agent Agent, start, goal cp.Vector, longest float64, partial, shortcut bool) ([]cp.Vector, error) {
	return p.FindPath(Query{Agent: agent, Start: start, Goal: goal, Longest: longest, Partial: partial, Shortcut: shortcut, ConsiderActors: true})
}

func (p *Pathfinder) gridPath(q Query) (path []cp.Vector, err error) {
	grid := p.entryFlags
	if q.ConsiderActors {
		grid = p.combinedFlags
		if self, ok := p.selfFootprint(q.Agent); ok {
			if err := p.ActorRemoved(self); err != nil {
				return nil, err
			}
			defer func() {
				if rerr := p.ActorAdded(self); rerr != nil && err == nil {
					path, err = nil, rerr
				}
			}()
		}
	}

	local := q.Agent.Shape.Transform(geom.NewTransform(cp.Vector{}, q.Agent.Rotation)).Bounds()
	w := max(1, int(math.Ceil(geom.RectWidth(local))))
	h := max(1, int(math.Ceil(geom.RectHeight(local))))
	off := cp.Vector{X: float64(w%2) * 0.5, Y: float64(h%2) * 0.5}
	left, right := w/2, (w-1)/2
	bottom, top := h/2, (h-1)/2

	s := &search{
		blocked: func(x, y int) bool {
			for cy := y - bottom; cy <= y+top; cy++ {
				for cx := x - left; cx <= x+right; cx++ {
					if !coord.InRange(cx, cy) {
						return true
					}
					if v := grid.Get(cx, cy); v != 0 && p.pred.Collides(q.Agent.Flags, v) {
						return true
					}
				}
			}
			return false
		},
		longest:  q.Longest,
		maxNodes: p.opts.MaxNodes,
		diagonal: p.opts.Diagonal,
		partial:  q.Partial,
	}
	start := toCell(q.Start, off)
	goal := toCell(q.Goal, off)
	cells, reached, expanded := s.run(start, goal)
	p.debugf("grid search %dx%d %v -> %v: %d cells, reached=%t, expanded=%d", w, h, start, goal, len(cells), reached, expanded)
	if cells == nil {
		return nil, nil
	}

	path = make([]cp.Vector, len(cells))
	for i, c := range cells {
		path[i] = cp.Vector{X: float64(c.x) + off.X, Y: float64(c.y) + off.Y}
	}
	path[0] = q.Start
	if reached {
		if len(path) == 1 {
			path = append(path, q.Goal)
		} else {
			path[len(path)-1] = q.Goal
		}
	}
	return path, nil
}

// selfFootprint returns the agent's live actor when the flags that actor
// wrote into the combined map would block the agent's own search.
func (p *Pathfinder) selfFootprint(agent Agent) (space.Element, bool) {
	if agent.ID == 0 {
		return space.Element{}, false
	}
	self, ok := p.actors.Get(agent.ID)
	if !ok || !p.pred.Collides(agent.Flags, self.Flags) {
		return space.Element{}, false
	}
	return self, true
}

// shortcut greedily keeps the farthest waypoint reachable by a direct sweep.
// Neighbouring waypoints are always accepted.
func (p *Pathfinder) shortcut(q Query, path []cp.Vector) ([]cp.Vector, error) {
	if len(path) <= 2 {
		return path, nil
	}
	out := []cp.Vector{path[0]}
	for i := 0; i < len(path)-1; {
		j := len(path) - 1
		for ; j > i+1; j-- {
			hit, err := p.sweepCollides(q, path[i], path[j])
			if err != nil {
				return nil, err
			}
			if !hit {
				break
			}
		}
		out = append(out, path[j])
		i = j
	}
	p.debugf("shortcut %d -> %d waypoints", len(path), len(out))
	return out, nil
}

// sweepCollides moves the agent's shape from a to b and tests it against the
// entries, and the actors other than the agent when q considers actors.
func (p *Pathfinder) sweepCollides(q Query, a, b cp.Vector) (bool, error) {
	swept := q.Agent.Shape.Transform(geom.NewTransform(a, q.Agent.Rotation)).Sweep(b.Sub(a))
	if p.baseCollides(swept, q.Agent.Flags) {
		return true, nil
	}
	hit, err := p.layerCollides(p.entries, swept, q.Agent.Flags, 0)
	if err != nil || hit || !q.ConsiderActors {
		return hit, err
	}
	return p.layerCollides(p.actors, swept, q.Agent.Flags, q.Agent.ID)
}

// baseCollides tests shape against the base tile cells, walking whichever is
// smaller: the base map or the cells under shape's bounds.
func (p *Pathfinder) baseCollides(shape geom.Shape, mask int) bool {
	if p.base.Len() == 0 {
		return false
	}
	hit := func(x, y, v int) bool {
		return v != 0 && p.pred.Collides(mask, v) && geom.Intersects(shape, cellBox(x, y, 0))
	}
	bb := shape.Bounds()
	minX, minY := max(int(math.Floor(bb.L)), coord.MinCoord), max(int(math.Floor(bb.B)), coord.MinCoord)
	maxX, maxY := min(int(math.Floor(bb.R)), coord.MaxCoord), min(int(math.Floor(bb.T)), coord.MaxCoord)
	if area := (maxX - minX + 1) * (maxY - minY + 1); area > p.base.Len() {
		found := false
		p.base.Each(func(x, y, v int) bool {
			found = hit(x, y, v)
			return !found
		})
		return found
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if hit(x, y, p.base.Get(x, y)) {
				return true
			}
		}
	}
	return false
}

func (p *Pathfinder) layerCollides(layer Layer, shape geom.Shape, mask, skip int) (bool, error) {
	hit := false
	err := layer.Intersecting(shape, func(e space.Element) bool {
		if e.ID != skip && e.Blocks(shape, mask, p.pred) {
			hit = true
			return false
		}
		return true
	})
	if err != nil {
		return false, fmt.Errorf("pathfinder: sweep: %w", err)
	}
	return hit, nil
}

func (p *Pathfinder) debugf(format string, args ...any) {
	if p.opts.Debug {
		log.Printf("Pathfinder: "+format, args...)
	}
}

// toCell rounds half up, so x.5 always lands in the higher cell.
func toCell(v, off cp.Vector) cell {
	return cell{
		x: int(math.Floor(v.X - off.X + 0.5)),
		y: int(math.Floor(v.Y - off.Y + 0.5)),
	}
}
