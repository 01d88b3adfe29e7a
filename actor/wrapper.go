package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Scaled applies a per-axis scale to an inner shape.
//
// With a uniform scale the inner core and margin are both scaled, so a scaled
// sphere keeps a point core. A non-uniform scale turns a rounded core into an
// ellipsoid-like shape that has no margin, so the inner margin is folded into
// the core and Margin() reports 0.
type Scaled struct {
	Inner Shape
	Scale mgl64.Vec3
}

func (s *Scaled) uniform() bool {
	x := math.Abs(s.Scale.X())
	return x == math.Abs(s.Scale.Y()) && x == math.Abs(s.Scale.Z())
}

func (s *Scaled) Support(direction mgl64.Vec3, margin float64) (mgl64.Vec3, int) {
	// support(S*X, d) = S * support(X, S*d) for a diagonal S
	innerDirection := mgl64.Vec3{
		direction.X() * s.Scale.X(),
		direction.Y() * s.Scale.Y(),
		direction.Z() * s.Scale.Z(),
	}

	innerMargin := 0.0
	if !s.uniform() {
		innerMargin = s.Inner.Margin()
	}

	p, index := s.Inner.Support(innerDirection, innerMargin)
	scaled := mgl64.Vec3{p.X() * s.Scale.X(), p.Y() * s.Scale.Y(), p.Z() * s.Scale.Z()}

	return inflate(scaled, direction, margin), index
}

func (s *Scaled) Margin() float64 {
	if s.uniform() {
		return s.Inner.Margin() * math.Abs(s.Scale.X())
	}
	return 0
}

func (s *Scaled) Bounds() AABB {
	return s.Inner.Bounds().Scale(s.Scale)
}

func (s *Scaled) Type() ShapeType {
	return ShapeTypeScaled
}

// Transformed places an inner shape with a rigid transform
type Transformed struct {
	Inner     Shape
	Transform Transform
}

func (t *Transformed) Support(direction mgl64.Vec3, margin float64) (mgl64.Vec3, int) {
	local := t.Transform.InverseRotateVector(direction)
	p, index := t.Inner.Support(local, margin)

	return t.Transform.TransformPoint(p), index
}

func (t *Transformed) Margin() float64 {
	return t.Inner.Margin()
}

func (t *Transformed) Bounds() AABB {
	return t.Inner.Bounds().Transform(t.Transform)
}

func (t *Transformed) Type() ShapeType {
	return ShapeTypeTransformed
}
