package geom

import "github.com/jakecoffman/cp"

// epsilon is the contact tolerance. Shapes closer than this are treated as
// touching, and touching shapes intersect.
const epsilon = 1e-9

type intersectFunc func(a, b Shape) bool

// intersectTable holds one test per ordered pair of kinds.
var intersectTable [kindCount][kindCount]intersectFunc

// register installs fn for (ka, kb) and its mirror for (kb, ka).
func register[A, B Shape](ka, kb Kind, fn func(a A, b B) bool) {
	intersectTable[ka][kb] = func(a, b Shape) bool { return fn(a.(A), b.(B)) }
	if ka != kb {
		intersectTable[kb][ka] = func(a, b Shape) bool { return fn(b.(A), a.(B)) }
	}
}

func init() {
	register(KindPoint, KindPoint, pointPoint)
	register(KindPoint, KindSegment, pointSegment)
	register(KindPoint, KindCircle, pointCircle)
	register(KindPoint, KindCapsule, pointCapsule)
	register(KindPoint, KindPolygon, pointPolygon)

	register(KindSegment, KindSegment, segmentSegment)
	register(KindSegment, KindCircle, segmentCircle)
	register(KindSegment, KindCapsule, segmentCapsule)
	register(KindSegment, KindPolygon, segmentPolygon)

	register(KindCircle, KindCircle, circleCircle)
	register(KindCircle, KindCapsule, circleCapsule)
	register(KindCircle, KindPolygon, circlePolygon)

	register(KindCapsule, KindCapsule, capsuleCapsule)
	register(KindCapsule, KindPolygon, capsulePolygon)

	register(KindPolygon, KindPolygon, polygonPolygon)

	for k := Kind(0); k < kindCount; k++ {
		register(KindCompound, k, compoundShape)
	}
}

// Intersects reports whether a and b share at least one point.
func Intersects(a, b Shape) bool {
	if a == nil || b == nil {
		return false
	}
	if !a.Bounds().Intersects(b.Bounds()) {
		return false
	}
	return intersectTable[a.Kind()][b.Kind()](a, b)
}

func pointPoint(a, b *Point) bool {
	return a.p.Sub(b.p).LengthSq() <= epsilon*epsilon
}

func pointSegment(a *Point, b *Segment) bool {
	return pointSegmentDistSq(a.p, b.a, b.b) <= epsilon*epsilon
}

func pointCircle(a *Point, b *Circle) bool {
	return within(a.p.Sub(b.c).LengthSq(), b.r)
}

func pointCapsule(a *Point, b *Capsule) bool {
	return within(pointSegmentDistSq(a.p, b.a, b.b), b.r)
}

func pointPolygon(a *Point, b *Polygon) bool {
	return polygonContains(b.verts, a.p)
}

func segmentSegment(a, b *Segment) bool {
	return segmentsIntersect(a.a, a.b, b.a, b.b)
}

func segmentCircle(a *Segment, b *Circle) bool {
	return within(pointSegmentDistSq(b.c, a.a, a.b), b.r)
}

func segmentCapsule(a *Segment, b *Capsule) bool {
	return within(segmentDistSq(a.a, a.b, b.a, b.b), b.r)
}

func segmentPolygon(a *Segment, b *Polygon) bool {
	return polygonHitsSegment(b.verts, a.a, a.b)
}

func circleCircle(a, b *Circle) bool {
	return within(a.c.Sub(b.c).LengthSq(), a.r+b.r)
}

func circleCapsule(a *Circle, b *Capsule) bool {
	return within(pointSegmentDistSq(a.c, b.a, b.b), a.r+b.r)
}

func circlePolygon(a *Circle, b *Polygon) bool {
	if len(b.verts) == 0 {
		return false
	}
	if polygonContains(b.verts, a.c) {
		return true
	}
	return anyEdge(b.verts, func(e0, e1 cp.Vector) bool {
		return within(pointSegmentDistSq(a.c, e0, e1), a.r)
	})
}

func capsuleCapsule(a, b *Capsule) bool {
	return within(segmentDistSq(a.a, a.b, b.a, b.b), a.r+b.r)
}

func capsulePolygon(a *Capsule, b *Polygon) bool {
	if polygonHitsSegment(b.verts, a.a, a.b) {
		return true
	}
	return anyEdge(b.verts, func(e0, e1 cp.Vector) bool {
		return within(segmentDistSq(a.a, a.b, e0, e1), a.r)
	})
}

func polygonPolygon(a, b *Polygon) bool {
	if len(a.verts) == 0 || len(b.verts) == 0 {
		return false
	}
	crossed := anyEdge(a.verts, func(a0, a1 cp.Vector) bool {
		return anyEdge(b.verts, func(b0, b1 cp.Vector) bool {
			return segmentsIntersect(a0, a1, b0, b1)
		})
	})
	if crossed {
		return true
	}
	return polygonContains(b.verts, a.verts[0]) || polygonContains(a.verts, b.verts[0])
}

func compoundShape(a *Compound, b Shape) bool {
	for _, child := range a.shapes {
		if Intersects(child, b) {
			return true
		}
	}
	return false
}

func within(distSq, r float64) bool {
	r += epsilon
	return distSq <= r*r
}

func closestOnSegment(p, a, b cp.Vector) cp.Vector {
	ab := b.Sub(a)
	l := ab.LengthSq()
	if l == 0 {
		return a
	}
	t := p.Sub(a).Dot(ab) / l
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return a.Add(ab.Mult(t))
}

func pointSegmentDistSq(p, a, b cp.Vector) float64 {
	return p.Sub(closestOnSegment(p, a, b)).LengthSq()
}

func orient(a, b, c cp.Vector) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// segmentsIntersect handles proper crossings, touching endpoints and
// collinear overlap.
func segmentsIntersect(a1, a2, b1, b2 cp.Vector) bool {
	d1 := orient(b1, b2, a1)
	d2 := orient(b1, b2, a2)
	d3 := orient(a1, a2, b1)
	d4 := orient(a1, a2, b2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	const tol = epsilon * epsilon
	return pointSegmentDistSq(a1, b1, b2) <= tol ||
		pointSegmentDistSq(a2, b1, b2) <= tol ||
		pointSegmentDistSq(b1, a1, a2) <= tol ||
		pointSegmentDistSq(b2, a1, a2) <= tol
}

func segmentDistSq(a1, a2, b1, b2 cp.Vector) float64 {
	if segmentsIntersect(a1, a2, b1, b2) {
		return 0
	}
	d := pointSegmentDistSq(a1, b1, b2)
	d = min(d, pointSegmentDistSq(a2, b1, b2))
	d = min(d, pointSegmentDistSq(b1, a1, a2))
	return min(d, pointSegmentDistSq(b2, a1, a2))
}

// anyEdge calls fn for each closing edge of verts until it returns true. A
// single vertex yields one zero-length edge.
func anyEdge(verts []cp.Vector, fn func(a, b cp.Vector) bool) bool {
	n := len(verts)
	for i := 0; i < n; i++ {
		if fn(verts[i], verts[(i+1)%n]) {
			return true
		}
	}
	return false
}

// polygonContains is an even-odd test that also accepts points on an edge.
func polygonContains(verts []cp.Vector, p cp.Vector) bool {
	if len(verts) == 0 {
		return false
	}
	onEdge := anyEdge(verts, func(a, b cp.Vector) bool {
		return pointSegmentDistSq(p, a, b) <= epsilon*epsilon
	})
	if onEdge {
		return true
	}
	if len(verts) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(verts)-1; i < len(verts); j, i = i, i+1 {
		vi, vj := verts[i], verts[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) && p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
	}
	return inside
}

func polygonHitsSegment(verts []cp.Vector, a, b cp.Vector) bool {
	if len(verts) == 0 {
		return false
	}
	if polygonContains(verts, a) {
		return true
	}
	return anyEdge(verts, func(e0, e1 cp.Vector) bool {
		return segmentsIntersect(a, b, e0, e1)
	})
}
