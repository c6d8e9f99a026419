// Package geom implements the closed set of 2-D shapes used for collision
// queries: points, segments, circles, capsules, polygons and compounds.
//
// Shapes are immutable once built. Transform and Sweep return new shapes and
// every shape caches its bounds at construction. Vectors and bounds are the
// chipmunk types (cp.Vector, cp.BB) so shapes can be handed to a cp.Space
// without conversion.
package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Kind identifies a shape variant.
type Kind uint8

const (
	KindPoint Kind = iota
	KindSegment
	KindCircle
	KindCapsule
	KindPolygon
	KindCompound
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindSegment:
		return "segment"
	case KindCircle:
		return "circle"
	case KindCapsule:
		return "capsule"
	case KindPolygon:
		return "polygon"
	case KindCompound:
		return "compound"
	}
	return "unknown"
}

// IntersectionType classifies a shape against a rectangle.
type IntersectionType uint8

const (
	Outside IntersectionType = iota
	Overlaps
	Inside
)

func (t IntersectionType) String() string {
	switch t {
	case Outside:
		return "outside"
	case Overlaps:
		return "overlaps"
	case Inside:
		return "inside"
	}
	return "unknown"
}

// Shape is implemented by every variant in this package.
type Shape interface {
	Kind() Kind
	// Bounds returns the cached axis-aligned bounds.
	Bounds() cp.BB
	// Transform returns a copy rotated and then translated by t.
	Transform(t Transform) Shape
	// Sweep returns the area covered while moving the shape along d.
	Sweep(d cp.Vector) Shape
	IntersectionType(r cp.BB) IntersectionType
}

// Transform is a rigid 2-D transform: rotation (radians) followed by translation.
type Transform struct {
	Translation cp.Vector
	Rotation    float64
}

// Identity leaves shapes unchanged.
var Identity = Transform{}

func NewTransform(translation cp.Vector, rotation float64) Transform {
	return Transform{Translation: translation, Rotation: rotation}
}

// Apply transforms a single point.
func (t Transform) Apply(v cp.Vector) cp.Vector {
	if t.Rotation != 0 {
		v = v.Rotate(cp.ForAngle(t.Rotation))
	}
	return v.Add(t.Translation)
}

// RectFromPoints returns the smallest rectangle enclosing pts. An empty
// argument list yields the zero rectangle at the origin.
func RectFromPoints(pts ...cp.Vector) cp.BB {
	if len(pts) == 0 {
		return cp.BB{}
	}
	bb := cp.BB{L: pts[0].X, B: pts[0].Y, R: pts[0].X, T: pts[0].Y}
	for _, p := range pts[1:] {
		bb.L = math.Min(bb.L, p.X)
		bb.B = math.Min(bb.B, p.Y)
		bb.R = math.Max(bb.R, p.X)
		bb.T = math.Max(bb.T, p.Y)
	}
	return bb
}

func RectWidth(r cp.BB) float64 {
	return r.R - r.L
}

func RectHeight(r cp.BB) float64 {
	return r.T - r.B
}

// RectCorners returns the corners counter-clockwise from the lower left.
func RectCorners(r cp.BB) []cp.Vector {
	return []cp.Vector{
		{X: r.L, Y: r.B},
		{X: r.R, Y: r.B},
		{X: r.R, Y: r.T},
		{X: r.L, Y: r.T},
	}
}

func classify(s Shape, r cp.BB) IntersectionType {
	b := s.Bounds()
	if !r.Intersects(b) {
		return Outside
	}
	if r.Contains(b) {
		return Inside
	}
	if Intersects(s, NewBox(r)) {
		return Overlaps
	}
	return Outside
}
