package geom

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(x, y float64) cp.Vector { return cp.Vector{X: x, Y: y} }

func unitBox(x, y float64) *Polygon {
	return NewBox(cp.BB{L: x, B: y, R: x + 1, T: y + 1})
}

func TestIntersectsPairs(t *testing.T) {
	cases := []struct {
		name string
		a, b Shape
		want bool
	}{
		{"point_point_same", NewPoint(v(1, 1)), NewPoint(v(1, 1)), true},
		{"point_point_apart", NewPoint(v(1, 1)), NewPoint(v(1, 2)), false},
		{"point_on_segment", NewPoint(v(1, 1)), NewSegment(v(0, 0), v(2, 2)), true},
		{"point_off_segment", NewPoint(v(1, 0)), NewSegment(v(0, 0), v(2, 2)), false},
		{"point_in_circle", NewPoint(v(0.5, 0)), NewCircle(v(0, 0), 1), true},
		{"point_on_circle_edge", NewPoint(v(1, 0)), NewCircle(v(0, 0), 1), true},
		{"point_outside_circle", NewPoint(v(1.1, 0)), NewCircle(v(0, 0), 1), false},
		{"point_in_capsule", NewPoint(v(2, 0.5)), NewCapsule(v(0, 0), v(4, 0), 0.6), true},
		{"point_outside_capsule", NewPoint(v(2, 0.7)), NewCapsule(v(0, 0), v(4, 0), 0.6), false},
		{"point_in_polygon", NewPoint(v(0.5, 0.5)), unitBox(0, 0), true},
		{"point_on_polygon_edge", NewPoint(v(1, 0.5)), unitBox(0, 0), true},
		{"point_outside_polygon", NewPoint(v(1.5, 0.5)), unitBox(0, 0), false},
		{"point_in_compound", NewPoint(v(5.5, 0.5)), NewCompound(unitBox(0, 0), unitBox(5, 0)), true},
		{"point_between_compound", NewPoint(v(3, 0.5)), NewCompound(unitBox(0, 0), unitBox(5, 0)), false},

		{"segment_cross", NewSegment(v(0, 0), v(2, 2)), NewSegment(v(0, 2), v(2, 0)), true},
		{"segment_touch_end", NewSegment(v(0, 0), v(1, 1)), NewSegment(v(1, 1), v(2, 0)), true},
		{"segment_collinear_overlap", NewSegment(v(0, 0), v(2, 0)), NewSegment(v(1, 0), v(3, 0)), true},
		{"segment_collinear_apart", NewSegment(v(0, 0), v(1, 0)), NewSegment(v(2, 0), v(3, 0)), false},
		{"segment_parallel", NewSegment(v(0, 0), v(2, 0)), NewSegment(v(0, 1), v(2, 1)), false},
		{"segment_circle", NewSegment(v(-2, 0.5), v(2, 0.5)), NewCircle(v(0, 0), 1), true},
		{"segment_circle_miss", NewSegment(v(-2, 1.5), v(2, 1.5)), NewCircle(v(0, 0), 1), false},
		{"segment_capsule", NewSegment(v(2, -2), v(2, 2)), NewCapsule(v(0, 0), v(4, 0), 0.5), true},
		{"segment_capsule_miss", NewSegment(v(5, -2), v(5, 2)), NewCapsule(v(0, 0), v(4, 0), 0.5), false},
		{"segment_through_polygon", NewSegment(v(-1, 0.5), v(2, 0.5)), unitBox(0, 0), true},
		{"segment_inside_polygon", NewSegment(v(0.2, 0.5), v(0.8, 0.5)), unitBox(0, 0), true},
		{"segment_miss_polygon", NewSegment(v(-1, 2), v(2, 2)), unitBox(0, 0), false},

		{"circle_circle", NewCircle(v(0, 0), 1), NewCircle(v(1.5, 0), 1), true},
		{"circle_circle_touch", NewCircle(v(0, 0), 1), NewCircle(v(2, 0), 1), true},
		{"circle_circle_apart", NewCircle(v(0, 0), 1), NewCircle(v(2.5, 0), 1), false},
		{"circle_capsule", NewCircle(v(2, 1), 0.6), NewCapsule(v(0, 0), v(4, 0), 0.5), true},
		{"circle_capsule_miss", NewCircle(v(2, 2), 0.6), NewCapsule(v(0, 0), v(4, 0), 0.5), false},
		{"circle_polygon_edge", NewCircle(v(1.3, 0.5), 0.4), unitBox(0, 0), true},
		{"circle_polygon_inside", NewCircle(v(0.5, 0.5), 0.1), unitBox(0, 0), true},
		{"circle_polygon_corner_miss", NewCircle(v(1.5, 1.5), 0.5), unitBox(0, 0), false},

		{"capsule_capsule", NewCapsule(v(0, 0), v(4, 0), 0.5), NewCapsule(v(2, 0.8), v(2, 3), 0.5), true},
		{"capsule_capsule_miss", NewCapsule(v(0, 0), v(4, 0), 0.5), NewCapsule(v(2, 1.2), v(2, 3), 0.1), false},
		{"capsule_polygon", NewCapsule(v(-2, 1.3), v(3, 1.3), 0.4), unitBox(0, 0), true},
		{"capsule_polygon_miss", NewCapsule(v(-2, 1.5), v(3, 1.5), 0.4), unitBox(0, 0), false},

		{"polygon_overlap", unitBox(0, 0), unitBox(0.5, 0.5), true},
		{"polygon_touch_edge", unitBox(0, 0), unitBox(1, 0), true},
		{"polygon_apart", unitBox(0, 0), unitBox(2, 0), false},
		{"polygon_contained", NewBox(cp.BB{L: 0, B: 0, R: 4, T: 4}), unitBox(1, 1), true},
		{"polygon_concave_notch", NewPolygon(v(0, 0), v(3, 0), v(3, 3), v(2, 3), v(2, 1), v(1, 1), v(1, 3), v(0, 3)), NewBox(cp.BB{L: 1.2, B: 1.5, R: 1.8, T: 2.5}), false},

		{"compound_compound", NewCompound(unitBox(0, 0)), NewCompound(NewCircle(v(1.2, 0.5), 0.3)), true},
		{"compound_empty", NewCompound(), unitBox(0, 0), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Intersects(c.a, c.b), "a vs b")
			assert.Equal(t, c.want, Intersects(c.b, c.a), "b vs a")
		})
	}
}

func TestIntersectsTableComplete(t *testing.T) {
	for a := Kind(0); a < kindCount; a++ {
		for b := Kind(0); b < kindCount; b++ {
			require.NotNil(t, intersectTable[a][b], "%s vs %s", a, b)
		}
	}
}

func TestShapesIntersectOwnBounds(t *testing.T) {
	shapes := []Shape{
		NewPoint(v(1, 2)),
		NewSegment(v(0, 0), v(5, 0)),
		NewSegment(v(0, 0), v(3, 4)),
		NewCircle(v(1, 1), 2),
		NewCapsule(v(0, 0), v(2, 2), 0.5),
		NewPolygon(v(0, 0), v(2, 0), v(1, 3)),
		NewCompound(NewCircle(v(0, 0), 1), NewPoint(v(5, 5))),
	}
	for _, s := range shapes {
		t.Run(s.Kind().String(), func(t *testing.T) {
			assert.True(t, Intersects(s, NewBox(s.Bounds())))
			assert.Equal(t, Inside, s.IntersectionType(s.Bounds()))
		})
	}
}

func TestDegeneratePolygons(t *testing.T) {
	empty := NewPolygon()
	single := NewPolygon(v(1, 1))
	pair := NewPolygon(v(0, 0), v(2, 0))

	assert.False(t, Intersects(empty, unitBox(0, 0)))
	assert.False(t, Intersects(empty, NewCircle(v(0, 0), 5)))
	assert.True(t, Intersects(single, unitBox(0.5, 0.5)))
	assert.True(t, Intersects(pair, NewSegment(v(1, -1), v(1, 1))))
	assert.False(t, Intersects(pair, NewPoint(v(1, 1))))
	assert.NotPanics(t, func() {
		_ = empty.Sweep(v(1, 1))
		_ = empty.Transform(NewTransform(v(1, 1), 1))
		_ = empty.IntersectionType(cp.BB{L: -1, B: -1, R: 1, T: 1})
	})
}

func TestTransform(t *testing.T) {
	seg := NewSegment(v(1, 0), v(2, 0))
	moved := seg.Transform(NewTransform(v(10, 10), math.Pi/2)).(*Segment)

	assert.InDelta(t, 10, moved.Start().X, 1e-9)
	assert.InDelta(t, 11, moved.Start().Y, 1e-9)
	assert.InDelta(t, 10, moved.End().X, 1e-9)
	assert.InDelta(t, 12, moved.End().Y, 1e-9)
	assert.Equal(t, KindSegment, moved.Kind())

	box := unitBox(0, 0).Transform(NewTransform(v(3, 0), 0))
	assert.Equal(t, cp.BB{L: 3, B: 0, R: 4, T: 1}, box.Bounds())

	c := NewCompound(NewCircle(v(0, 0), 1)).Transform(NewTransform(v(2, 2), 0))
	assert.Equal(t, cp.BB{L: 1, B: 1, R: 3, T: 3}, c.Bounds())
}

func TestSweep(t *testing.T) {
	wall := NewBox(cp.BB{L: 2, B: -1, R: 3, T: 1})
	d := v(5, 0)

	cases := []struct {
		name  string
		shape Shape
		kind  Kind
		hit   bool
	}{
		{"point", NewPoint(v(0, 0)), KindSegment, true},
		{"segment", NewSegment(v(0, 2), v(0, 3)), KindPolygon, false},
		{"segment_hit", NewSegment(v(0, 0.5), v(0, 3)), KindPolygon, true},
		{"circle", NewCircle(v(0, 1.5), 0.4), KindCapsule, false},
		{"circle_hit", NewCircle(v(0, 1.5), 0.6), KindCapsule, true},
		{"capsule", NewCapsule(v(0, 2), v(0, 3), 0.5), KindCompound, false},
		{"capsule_hit", NewCapsule(v(0, 2), v(0, 3), 1.1), KindCompound, true},
		{"polygon", unitBox(-1, 2), KindPolygon, false},
		{"polygon_hit", unitBox(-1, 0.5), KindPolygon, true},
		{"compound", NewCompound(NewPoint(v(0, 5)), NewCircle(v(0, -3), 0.5)), KindCompound, false},
		{"compound_hit", NewCompound(NewPoint(v(0, 5)), NewCircle(v(0, 0), 0.5)), KindCompound, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			swept := c.shape.Sweep(d)
			assert.Equal(t, c.kind, swept.Kind())
			assert.Equal(t, c.hit, Intersects(swept, wall))

			b := c.shape.Bounds()
			moved := c.shape.Transform(NewTransform(d, 0)).Bounds()
			assert.True(t, swept.Bounds().Contains(b.Merge(moved)), "swept bounds cover both ends")
		})
	}

	t.Run("zero_displacement", func(t *testing.T) {
		c := NewCircle(v(0, 0), 1)
		assert.Same(t, c, c.Sweep(cp.Vector{}))
	})
}

func TestIntersectionType(t *testing.T) {
	r := cp.BB{L: 0, B: 0, R: 4, T: 4}
	assert.Equal(t, Inside, NewCircle(v(2, 2), 1).IntersectionType(r))
	assert.Equal(t, Overlaps, NewCircle(v(4, 2), 1).IntersectionType(r))
	assert.Equal(t, Outside, NewCircle(v(7, 2), 1).IntersectionType(r))
	// bounds overlap the corner but the disc does not
	assert.Equal(t, Outside, NewCircle(v(4.9, 4.9), 1).IntersectionType(r))
}

func TestConvexHull(t *testing.T) {
	hull := ConvexHull(v(0, 0), v(2, 0), v(1, 1), v(2, 2), v(0, 2), v(1, 0))
	assert.Equal(t, []cp.Vector{v(0, 0), v(2, 0), v(2, 2), v(0, 2)}, hull)

	assert.Equal(t, []cp.Vector{v(0, 0), v(3, 0)}, ConvexHull(v(0, 0), v(1, 0), v(2, 0), v(3, 0)))
	assert.Equal(t, []cp.Vector{v(1, 1)}, ConvexHull(v(1, 1), v(1, 1)))
	assert.Empty(t, ConvexHull())
}
