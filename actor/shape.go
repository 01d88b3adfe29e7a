package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypeCapsule
	ShapeTypeConvex
	ShapeTypeScaled
	ShapeTypeTransformed
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeBox:
		return "box"
	case ShapeTypeCapsule:
		return "capsule"
	case ShapeTypeConvex:
		return "convex"
	case ShapeTypeScaled:
		return "scaled"
	case ShapeTypeTransformed:
		return "transformed"
	}
	return "unknown"
}

// Shape is the only capability the narrow phase needs from a convex shape.
//
// Every shape is a core (a point, a segment, a polytope...) inflated by a margin.
// Support returns the furthest point of the core along direction, pushed out by
// margin along the normalized direction, together with the index of the core
// vertex it came from. The full surface is therefore Support(d, Margin()).
//
// direction is expressed in the shape's local space and does not need to be
// normalized. Support must be deterministic: ties are always broken the same way.
type Shape interface {
	Support(direction mgl64.Vec3, margin float64) (mgl64.Vec3, int)
	Margin() float64
	// Bounds returns the local space box enclosing the full (inflated) shape
	Bounds() AABB
	Type() ShapeType
}

// inflate pushes a core point out by margin along the normalized direction
func inflate(point, direction mgl64.Vec3, margin float64) mgl64.Vec3 {
	if margin == 0 {
		return point
	}
	lenSq := direction.LenSqr()
	if lenSq < 1e-300 {
		return point
	}
	return point.Add(direction.Mul(margin / math.Sqrt(lenSq)))
}

// Sphere represents a spherical collision shape: a point core inflated by Radius
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

func (s *Sphere) Support(direction mgl64.Vec3, margin float64) (mgl64.Vec3, int) {
	return inflate(s.Center, direction, margin), 0
}

func (s *Sphere) Margin() float64 {
	return s.Radius
}

func (s *Sphere) Bounds() AABB {
	return AABB{Min: s.Center, Max: s.Center}.Inflate(s.Radius)
}

func (s *Sphere) Type() ShapeType {
	return ShapeTypeSphere
}

// Box represents an axis aligned box collision shape, centered on Center.
// The box is defined by its half-extents (half-width, half-height, half-depth).
// Radius rounds the corners: the core is the box shrunk by Radius on every axis.
type Box struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
	Radius      float64
}

// NewBoxMinMax creates a sharp box spanning min to max
func NewBoxMinMax(min, max mgl64.Vec3) *Box {
	return &Box{
		Center:      min.Add(max).Mul(0.5),
		HalfExtents: max.Sub(min).Mul(0.5),
	}
}

func (b *Box) coreHalfExtents() mgl64.Vec3 {
	return mgl64.Vec3{
		math.Max(b.HalfExtents.X()-b.Radius, 0),
		math.Max(b.HalfExtents.Y()-b.Radius, 0),
		math.Max(b.HalfExtents.Z()-b.Radius, 0),
	}
}

// Support picks the core corner by direction signs. The vertex index packs the
// chosen signs: bit 0 for +X, bit 1 for +Y, bit 2 for +Z.
func (b *Box) Support(direction mgl64.Vec3, margin float64) (mgl64.Vec3, int) {
	half := b.coreHalfExtents()
	hx, hy, hz := half.X(), half.Y(), half.Z()
	index := 7

	if direction.X() < 0 {
		hx = -hx
		index &^= 1
	}
	if direction.Y() < 0 {
		hy = -hy
		index &^= 2
	}
	if direction.Z() < 0 {
		hz = -hz
		index &^= 4
	}

	corner := b.Center.Add(mgl64.Vec3{hx, hy, hz})
	return inflate(corner, direction, margin), index
}

func (b *Box) Margin() float64 {
	return b.Radius
}

func (b *Box) Bounds() AABB {
	return AABB{Min: b.Center.Sub(b.HalfExtents), Max: b.Center.Add(b.HalfExtents)}
}

func (b *Box) Type() ShapeType {
	return ShapeTypeBox
}

// Capsule is a segment core from A to B inflated by Radius
type Capsule struct {
	A, B   mgl64.Vec3
	Radius float64
}

// Support returns A (index 0) unless the direction strictly favors B (index 1)
func (c *Capsule) Support(direction mgl64.Vec3, margin float64) (mgl64.Vec3, int) {
	if direction.Dot(c.B.Sub(c.A)) > 0 {
		return inflate(c.B, direction, margin), 1
	}
	return inflate(c.A, direction, margin), 0
}

func (c *Capsule) Margin() float64 {
	return c.Radius
}

func (c *Capsule) Bounds() AABB {
	min := mgl64.Vec3{math.Min(c.A.X(), c.B.X()), math.Min(c.A.Y(), c.B.Y()), math.Min(c.A.Z(), c.B.Z())}
	max := mgl64.Vec3{math.Max(c.A.X(), c.B.X()), math.Max(c.A.Y(), c.B.Y()), math.Max(c.A.Z(), c.B.Z())}
	return AABB{Min: min, Max: max}.Inflate(c.Radius)
}

func (c *Capsule) Type() ShapeType {
	return ShapeTypeCapsule
}
