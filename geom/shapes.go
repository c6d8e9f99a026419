package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Point is a single location.
type Point struct {
	p cp.Vector
}

func NewPoint(p cp.Vector) *Point {
	return &Point{p: p}
}

func (s *Point) Location() cp.Vector { return s.p }

func (s *Point) Kind() Kind { return KindPoint }

func (s *Point) Bounds() cp.BB {
	return cp.BB{L: s.p.X, B: s.p.Y, R: s.p.X, T: s.p.Y}
}

func (s *Point) Transform(t Transform) Shape {
	return NewPoint(t.Apply(s.p))
}

func (s *Point) Sweep(d cp.Vector) Shape {
	if d == (cp.Vector{}) {
		return s
	}
	return NewSegment(s.p, s.p.Add(d))
}

func (s *Point) IntersectionType(r cp.BB) IntersectionType { return classify(s, r) }

// Segment is a line segment between two points.
type Segment struct {
	a, b   cp.Vector
	bounds cp.BB
}

func NewSegment(a, b cp.Vector) *Segment {
	return &Segment{a: a, b: b, bounds: RectFromPoints(a, b)}
}

func (s *Segment) Start() cp.Vector { return s.a }
func (s *Segment) End() cp.Vector   { return s.b }

func (s *Segment) Kind() Kind    { return KindSegment }
func (s *Segment) Bounds() cp.BB { return s.bounds }

func (s *Segment) Transform(t Transform) Shape {
	return NewSegment(t.Apply(s.a), t.Apply(s.b))
}

func (s *Segment) Sweep(d cp.Vector) Shape {
	if d == (cp.Vector{}) {
		return s
	}
	return NewPolygon(ConvexHull(s.a, s.b, s.b.Add(d), s.a.Add(d))...)
}

func (s *Segment) IntersectionType(r cp.BB) IntersectionType { return classify(s, r) }

// Circle is a disc. Negative radii are treated as zero.
type Circle struct {
	c      cp.Vector
	r      float64
	bounds cp.BB
}

func NewCircle(center cp.Vector, radius float64) *Circle {
	radius = math.Max(radius, 0)
	return &Circle{c: center, r: radius, bounds: cp.NewBBForCircle(center, radius)}
}

func (s *Circle) Center() cp.Vector { return s.c }
func (s *Circle) Radius() float64   { return s.r }

func (s *Circle) Kind() Kind    { return KindCircle }
func (s *Circle) Bounds() cp.BB { return s.bounds }

func (s *Circle) Transform(t Transform) Shape {
	return NewCircle(t.Apply(s.c), s.r)
}

func (s *Circle) Sweep(d cp.Vector) Shape {
	if d == (cp.Vector{}) {
		return s
	}
	return NewCapsule(s.c, s.c.Add(d), s.r)
}

func (s *Circle) IntersectionType(r cp.BB) IntersectionType { return classify(s, r) }

// Capsule is every point within radius of a segment.
type Capsule struct {
	a, b   cp.Vector
	r      float64
	bounds cp.BB
}

func NewCapsule(a, b cp.Vector, radius float64) *Capsule {
	radius = math.Max(radius, 0)
	bb := RectFromPoints(a, b)
	bb.L -= radius
	bb.B -= radius
	bb.R += radius
	bb.T += radius
	return &Capsule{a: a, b: b, r: radius, bounds: bb}
}

func (s *Capsule) Start() cp.Vector { return s.a }
func (s *Capsule) End() cp.Vector   { return s.b }
func (s *Capsule) Radius() float64  { return s.r }

func (s *Capsule) Kind() Kind    { return KindCapsule }
func (s *Capsule) Bounds() cp.BB { return s.bounds }

func (s *Capsule) Transform(t Transform) Shape {
	return NewCapsule(t.Apply(s.a), t.Apply(s.b), s.r)
}

// Sweep returns the parallelogram spanned by the core segment at both ends of
// the motion plus a capsule along each of its edges, which together cover
// exactly the swept area.
func (s *Capsule) Sweep(d cp.Vector) Shape {
	if d == (cp.Vector{}) {
		return s
	}
	a2, b2 := s.a.Add(d), s.b.Add(d)
	return NewCompound(
		NewPolygon(ConvexHull(s.a, s.b, b2, a2)...),
		NewCapsule(s.a, s.b, s.r),
		NewCapsule(s.b, b2, s.r),
		NewCapsule(b2, a2, s.r),
		NewCapsule(a2, s.a, s.r),
	)
}

func (s *Capsule) IntersectionType(r cp.BB) IntersectionType { return classify(s, r) }

// Polygon is a simple polygon given by its vertices in order. Polygons with
// fewer than three vertices degrade to a point or segment.
type Polygon struct {
	verts  []cp.Vector
	bounds cp.BB
}

func NewPolygon(vertices ...cp.Vector) *Polygon {
	verts := make([]cp.Vector, len(vertices))
	copy(verts, vertices)
	return &Polygon{verts: verts, bounds: RectFromPoints(verts...)}
}

// NewBox returns the rectangle r as a four vertex polygon.
func NewBox(r cp.BB) *Polygon {
	return &Polygon{verts: RectCorners(r), bounds: r}
}

func (s *Polygon) VertexCount() int { return len(s.verts) }

func (s *Polygon) Vertex(i int) cp.Vector { return s.verts[i] }

func (s *Polygon) Vertices() []cp.Vector {
	out := make([]cp.Vector, len(s.verts))
	copy(out, s.verts)
	return out
}

func (s *Polygon) Kind() Kind    { return KindPolygon }
func (s *Polygon) Bounds() cp.BB { return s.bounds }

func (s *Polygon) Transform(t Transform) Shape {
	verts := make([]cp.Vector, len(s.verts))
	for i, v := range s.verts {
		verts[i] = t.Apply(v)
	}
	return &Polygon{verts: verts, bounds: RectFromPoints(verts...)}
}

// Sweep returns the convex hull of the polygon at both ends of the motion.
// For concave polygons the hull over-approximates the swept area.
func (s *Polygon) Sweep(d cp.Vector) Shape {
	if d == (cp.Vector{}) || len(s.verts) == 0 {
		return s
	}
	pts := make([]cp.Vector, 0, len(s.verts)*2)
	for _, v := range s.verts {
		pts = append(pts, v, v.Add(d))
	}
	return NewPolygon(ConvexHull(pts...)...)
}

func (s *Polygon) IntersectionType(r cp.BB) IntersectionType { return classify(s, r) }

// Compound is the union of its child shapes.
type Compound struct {
	shapes []Shape
	bounds cp.BB
}

func NewCompound(shapes ...Shape) *Compound {
	children := make([]Shape, 0, len(shapes))
	for _, s := range shapes {
		if s != nil {
			children = append(children, s)
		}
	}
	c := &Compound{shapes: children}
	for i, s := range children {
		if i == 0 {
			c.bounds = s.Bounds()
			continue
		}
		c.bounds = c.bounds.Merge(s.Bounds())
	}
	return c
}

func (s *Compound) ShapeCount() int { return len(s.shapes) }

func (s *Compound) Shape(i int) Shape { return s.shapes[i] }

func (s *Compound) Kind() Kind    { return KindCompound }
func (s *Compound) Bounds() cp.BB { return s.bounds }

func (s *Compound) Transform(t Transform) Shape {
	out := make([]Shape, len(s.shapes))
	for i, child := range s.shapes {
		out[i] = child.Transform(t)
	}
	return NewCompound(out...)
}

func (s *Compound) Sweep(d cp.Vector) Shape {
	if d == (cp.Vector{}) {
		return s
	}
	out := make([]Shape, len(s.shapes))
	for i, child := range s.shapes {
		out[i] = child.Sweep(d)
	}
	return NewCompound(out...)
}

func (s *Compound) IntersectionType(r cp.BB) IntersectionType { return classify(s, r) }
