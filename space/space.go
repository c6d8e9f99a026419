// Package space holds the scene's static entries and live actors and answers
// shape queries against them. It is the collaborator the pathfinder reads
// from: every mutation is reported as an Event on an optional queue so the
// owning simulation loop can forward it.
package space

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/gridpath/coord"
	"github.com/milk9111/gridpath/flags"
	"github.com/milk9111/gridpath/geom"
)

var (
	ErrUnknownElement = errors.New("space: unknown element")
	ErrNilShape       = errors.New("space: nil shape")
)

const DefaultBucketSize = 4.0

// Layer selects which events a Space emits.
type Layer uint8

const (
	LayerEntries Layer = iota
	LayerActors
)

// Element is a shape with collision flags. Actor shapes are stored in world
// coordinates. Tiles is set for tile block entries, whose flags vary per cell.
type Element struct {
	ID    int
	Shape geom.Shape
	Flags int
	Tiles *Tiles
}

type Options struct {
	BucketSize float64
	Capacity   int
	LoadFactor float64
}

func DefaultOptions() Options {
	return Options{
		BucketSize: DefaultBucketSize,
		Capacity:   coord.DefaultCapacity,
		LoadFactor: coord.DefaultLoadFactor,
	}
}

// Space indexes elements in a spatial hash of square buckets.
type Space struct {
	layer      Layer
	bucketSize float64
	elements   sparseSet
	buckets    *coord.MultiMap[int]
	nextID     int
	queue      *EventQueue
}

// New creates an empty space. queue may be nil.
func New(layer Layer, opts Options, queue *EventQueue) (*Space, error) {
	if opts.BucketSize <= 0 || math.IsInf(opts.BucketSize, 0) || math.IsNaN(opts.BucketSize) {
		opts.BucketSize = DefaultBucketSize
	}
	buckets, err := coord.NewMultiMap[int](opts.Capacity, opts.LoadFactor)
	if err != nil {
		return nil, fmt.Errorf("space: %w", err)
	}
	return &Space{
		layer:      layer,
		bucketSize: opts.BucketSize,
		buckets:    buckets,
		queue:      queue,
	}, nil
}

func (s *Space) Layer() Layer { return s.layer }

// Add inserts a new element and returns it with its assigned ID.
func (s *Space) Add(shape geom.Shape, mask int) (Element, error) {
	if shape == nil {
		return Element{}, ErrNilShape
	}
	e := Element{ID: s.nextID + 1, Shape: shape, Flags: mask}
	if err := s.index(e); err != nil {
		return Element{}, err
	}
	s.nextID++
	s.elements.set(e)

	kind := EntryAdded
	if s.layer == LayerActors {
		kind = ActorAdded
	}
	s.queue.Push(Event{Kind: kind, New: e})
	return e, nil
}

// Update replaces the shape and flags of an existing element. A tile block
// updated this way becomes a plain shape.
func (s *Space) Update(id int, shape geom.Shape, mask int) (Element, error) {
	if shape == nil {
		return Element{}, ErrNilShape
	}
	old, ok := s.elements.get(id)
	if !ok {
		return Element{}, fmt.Errorf("%w: %d", ErrUnknownElement, id)
	}
	e := Element{ID: id, Shape: shape, Flags: mask}
	s.unindex(old)
	if err := s.index(e); err != nil {
		// put the old footprint back so the space stays consistent
		if rerr := s.index(old); rerr != nil {
			return Element{}, fmt.Errorf("space: restore element %d: %w", id, errors.Join(err, rerr))
		}
		return Element{}, err
	}
	s.elements.set(e)

	if s.layer == LayerActors {
		s.queue.Push(Event{Kind: ActorWillChange, Old: old})
		s.queue.Push(Event{Kind: ActorDidChange, New: e})
	} else {
		s.queue.Push(Event{Kind: EntryUpdated, Old: old, New: e})
	}
	return e, nil
}

// Move is Update keeping the element's flags.
func (s *Space) Move(id int, shape geom.Shape) (Element, error) {
	old, ok := s.elements.get(id)
	if !ok {
		return Element{}, fmt.Errorf("%w: %d", ErrUnknownElement, id)
	}
	return s.Update(id, shape, old.Flags)
}

func (s *Space) Remove(id int) error {
	old, ok := s.elements.get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownElement, id)
	}
	s.unindex(old)
	s.elements.remove(id)

	kind := EntryRemoved
	if s.layer == LayerActors {
		kind = ActorRemoved
	}
	s.queue.Push(Event{Kind: kind, Old: old})
	return nil
}

func (s *Space) Get(id int) (Element, bool) {
	return s.elements.get(id)
}

func (s *Space) Len() int {
	return len(s.elements.dense)
}

// Each visits every element until fn returns false.
func (s *Space) Each(fn func(Element) bool) {
	for _, e := range s.elements.dense {
		if !fn(e) {
			return
		}
	}
}

// Intersecting calls fn once for every element whose shape intersects shape,
// stopping early when fn returns false. fn must not mutate the space.
func (s *Space) Intersecting(shape geom.Shape, fn func(Element) bool) error {
	if shape == nil {
		return nil
	}
	minX, minY, maxX, maxY := s.bucketRange(shape.Bounds())
	minX, minY = max(minX, coord.MinCoord), max(minY, coord.MinCoord)
	maxX, maxY = min(maxX, coord.MaxCoord), min(maxY, coord.MaxCoord)
	seen := make(map[int]struct{})
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			it := s.buckets.GetAll(x, y)
			for it.Next() {
				id := it.Value()
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				e, ok := s.elements.get(id)
				if !ok || !geom.Intersects(e.Shape, shape) {
					continue
				}
				if !fn(e) {
					return nil
				}
			}
			if err := it.Err(); err != nil {
				return fmt.Errorf("space: intersecting: %w", err)
			}
		}
	}
	return nil
}

// Collides reports whether shape touches an element, other than skip, whose
// flags collide with mask under pred.
func (s *Space) Collides(shape geom.Shape, mask int, pred flags.Predicate, skip int) (bool, error) {
	hit := false
	err := s.Intersecting(shape, func(e Element) bool {
		if e.ID != skip && e.Blocks(shape, mask, pred) {
			hit = true
			return false
		}
		return true
	})
	return hit, err
}

func (s *Space) bucketRange(bb cp.BB) (minX, minY, maxX, maxY int) {
	minX = int(math.Floor(bb.L / s.bucketSize))
	minY = int(math.Floor(bb.B / s.bucketSize))
	maxX = int(math.Floor(bb.R / s.bucketSize))
	maxY = int(math.Floor(bb.T / s.bucketSize))
	return
}

func (s *Space) index(e Element) error {
	minX, minY, maxX, maxY := s.bucketRange(e.Shape.Bounds())
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if err := s.buckets.Put(x, y, e.ID); err != nil {
				s.unindex(e)
				return fmt.Errorf("space: index element %d: %w", e.ID, err)
			}
		}
	}
	return nil
}

func (s *Space) unindex(e Element) {
	minX, minY, maxX, maxY := s.bucketRange(e.Shape.Bounds())
	minX, minY = max(minX, coord.MinCoord), max(minY, coord.MinCoord)
	maxX, maxY = min(maxX, coord.MaxCoord), min(maxY, coord.MaxCoord)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			s.buckets.Remove(x, y, e.ID)
		}
	}
}
