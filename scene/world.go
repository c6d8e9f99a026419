// Package scene builds entry and actor spaces from YAML scene files.
package scene

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/gridpath/coord"
	"github.com/milk9111/gridpath/flags"
	"github.com/milk9111/gridpath/geom"
	"github.com/milk9111/gridpath/pathfinder"
	"github.com/milk9111/gridpath/space"
)

var (
	ErrDuplicateName = errors.New("scene: duplicate name")
	ErrUnknownActor  = errors.New("scene: unknown actor")
	ErrUnknownEntry  = errors.New("scene: unknown entry")
	ErrNoCategories  = errors.New("scene: categories used without a category matrix")
)

// World is a built scene. Base holds the scene's fixed tile flags.
type World struct {
	Name    string
	Base    *coord.IntMap
	Entries *space.Space
	Actors  *space.Space
	Probes  []ProbeSpec

	entryIDs map[string]int
	actorIDs map[string]int
	bodies   map[int]body
	matrix   *flags.Matrix
}

// body is an actor's local shape and placement.
type body struct {
	shape    geom.Shape
	position cp.Vector
	rotation float64
}

// Build creates both spaces. matrix resolves category names and may be nil
// when the scene only uses numeric flags. Mutations are reported on queue,
// which may be nil.
func Build(spec *Spec, opts space.Options, matrix *flags.Matrix, queue *space.EventQueue) (*World, error) {
	entries, err := space.New(space.LayerEntries, opts, queue)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	actors, err := space.New(space.LayerActors, opts, queue)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	base, err := coord.NewIntMap(opts.Capacity, opts.LoadFactor)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	w := &World{
		Name:     spec.Name,
		Base:     base,
		Entries:  entries,
		Actors:   actors,
		Probes:   spec.Probes,
		entryIDs: make(map[string]int),
		actorIDs: make(map[string]int),
		bodies:   make(map[int]body),
		matrix:   matrix,
	}

	for i, ts := range spec.Base {
		if err := w.addBase(ts); err != nil {
			return nil, fmt.Errorf("scene %s: base %d: %w", spec.Name, i, err)
		}
	}
	for i, ts := range spec.Tiles {
		if err := w.addTiles(ts); err != nil {
			return nil, fmt.Errorf("scene %s: tiles %d %q: %w", spec.Name, i, ts.Name, err)
		}
	}
	for i, es := range spec.Entries {
		if err := w.addEntry(es); err != nil {
			return nil, fmt.Errorf("scene %s: entry %d %q: %w", spec.Name, i, es.Name, err)
		}
	}
	for i, as := range spec.Actors {
		if err := w.addActor(as); err != nil {
			return nil, fmt.Errorf("scene %s: actor %d %q: %w", spec.Name, i, as.Name, err)
		}
	}
	return w, nil
}

func (w *World) addBase(ts TileSpec) error {
	tiles, err := ts.Build()
	if err != nil {
		return err
	}
	tiles.Each(func(x, y, v int) bool {
		err = w.Base.SetBits(x, y, v)
		return err == nil
	})
	return err
}

func (w *World) addTiles(ts TileSpec) error {
	if _, dup := w.entryIDs[ts.Name]; dup && ts.Name != "" {
		return ErrDuplicateName
	}
	tiles, err := ts.Build()
	if err != nil {
		return err
	}
	e, err := w.Entries.AddTiles(tiles)
	if err != nil {
		return err
	}
	if ts.Name != "" {
		w.entryIDs[ts.Name] = e.ID
	}
	return nil
}

// RemoveEntry drops the named entry or tile block from the scene.
func (w *World) RemoveEntry(name string) error {
	id, ok := w.entryIDs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntry, name)
	}
	if err := w.Entries.Remove(id); err != nil {
		return err
	}
	delete(w.entryIDs, name)
	return nil
}

func (w *World) addEntry(es EntrySpec) error {
	if _, dup := w.entryIDs[es.Name]; dup && es.Name != "" {
		return ErrDuplicateName
	}
	mask, err := w.Mask(es.Flags, es.Categories)
	if err != nil {
		return err
	}
	shape, err := es.Shape.Build()
	if err != nil {
		return err
	}
	e, err := w.Entries.Add(shape, mask)
	if err != nil {
		return err
	}
	if es.Name != "" {
		w.entryIDs[es.Name] = e.ID
	}
	return nil
}

func (w *World) addActor(as ActorSpec) error {
	if _, dup := w.actorIDs[as.Name]; dup && as.Name != "" {
		return ErrDuplicateName
	}
	mask, err := w.Mask(as.Flags, as.Categories)
	if err != nil {
		return err
	}
	local, err := as.Shape.Build()
	if err != nil {
		return err
	}
	b := body{shape: local, position: as.Position.Vector(), rotation: as.Rotation}
	e, err := w.Actors.Add(b.world(), mask)
	if err != nil {
		return err
	}
	w.bodies[e.ID] = b
	if as.Name != "" {
		w.actorIDs[as.Name] = e.ID
	}
	return nil
}

func (b body) world() geom.Shape {
	return b.shape.Transform(geom.NewTransform(b.position, b.rotation))
}

// Mask ORs flags with the bits of the named categories.
func (w *World) Mask(mask int, categories []string) (int, error) {
	if len(categories) == 0 {
		return mask, nil
	}
	if w.matrix == nil {
		return 0, fmt.Errorf("%w: %v", ErrNoCategories, categories)
	}
	bits, err := w.matrix.Bits(categories...)
	if err != nil {
		return 0, err
	}
	return mask | bits, nil
}

func (w *World) EntryID(name string) (int, bool) {
	id, ok := w.entryIDs[name]
	return id, ok
}

func (w *World) ActorID(name string) (int, bool) {
	id, ok := w.actorIDs[name]
	return id, ok
}

// Agent describes the named actor as a path query agent, along with its
// current position.
func (w *World) Agent(name string) (pathfinder.Agent, cp.Vector, error) {
	id, ok := w.actorIDs[name]
	if !ok {
		return pathfinder.Agent{}, cp.Vector{}, fmt.Errorf("%w: %q", ErrUnknownActor, name)
	}
	e, _ := w.Actors.Get(id)
	b := w.bodies[id]
	return pathfinder.Agent{ID: id, Shape: b.shape, Rotation: b.rotation, Flags: e.Flags}, b.position, nil
}

// MoveActor places the named actor at position with rotation.
func (w *World) MoveActor(name string, position cp.Vector, rotation float64) error {
	id, ok := w.actorIDs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActor, name)
	}
	b := w.bodies[id]
	b.position, b.rotation = position, rotation
	if _, err := w.Actors.Move(id, b.world()); err != nil {
		return fmt.Errorf("scene: move %q: %w", name, err)
	}
	w.bodies[id] = b
	return nil
}

// RemoveActor drops the named actor from the scene.
func (w *World) RemoveActor(name string) error {
	id, ok := w.actorIDs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActor, name)
	}
	if err := w.Actors.Remove(id); err != nil {
		return err
	}
	delete(w.actorIDs, name)
	delete(w.bodies, id)
	return nil
}

// ProbeAgent resolves the agent a probe runs with.
func (w *World) ProbeAgent(p ProbeSpec) (pathfinder.Agent, error) {
	if p.Agent != "" {
		agent, _, err := w.Agent(p.Agent)
		return agent, err
	}
	mask, err := w.Mask(p.Flags, p.Categories)
	if err != nil {
		return pathfinder.Agent{}, err
	}
	radius := p.Radius
	if radius <= 0 {
		radius = 0.4
	}
	return pathfinder.Agent{Shape: geom.NewCircle(cp.Vector{}, radius), Flags: mask}, nil
}
