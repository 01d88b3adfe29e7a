package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid transform: a rotation followed by a translation.
// A zero Rotation is read as the identity so literal transforms with only a
// Position stay usable.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates a transform from a position and a (normalized) rotation
func NewTransform(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	return Transform{
		Position: position,
		Rotation: rotation.Normalize(),
	}
}

// IdentityTransform creates an identity transform
func IdentityTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// Translation creates a transform that only translates
func Translation(position mgl64.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl64.QuatIdent()}
}

func (t Transform) rotation() mgl64.Quat {
	if t.Rotation.W == 0 && t.Rotation.V.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	return t.Rotation
}

// RotateVector rotates a direction from local space to the parent space
func (t Transform) RotateVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Rotate(v)
}

// InverseRotateVector rotates a direction from the parent space to local space
func (t Transform) InverseRotateVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Conjugate().Rotate(v)
}

// TransformPoint maps a local point to the parent space
func (t Transform) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Rotate(p).Add(t.Position)
}

// InverseTransformPoint maps a parent space point to local space
func (t Transform) InverseTransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Conjugate().Rotate(p.Sub(t.Position))
}

// Mul composes two transforms: the result applies other first, then t.
func (t Transform) Mul(other Transform) Transform {
	return Transform{
		Position: t.TransformPoint(other.Position),
		Rotation: t.rotation().Mul(other.rotation()).Normalize(),
	}
}

// Inverse returns the transform mapping parent space back to local space
func (t Transform) Inverse() Transform {
	inv := t.rotation().Conjugate()
	return Transform{
		Position: inv.Rotate(t.Position.Mul(-1)),
		Rotation: inv,
	}
}

// Relative expresses other in the local space of t, e.g. the B-to-A transform
// of two shapes placed in world space is a.Relative(b).
func (t Transform) Relative(other Transform) Transform {
	return t.Inverse().Mul(other)
}

// IsValid reports whether the transform holds finite values and a usable rotation
func (t Transform) IsValid() bool {
	for _, f := range [7]float64{
		t.Position[0], t.Position[1], t.Position[2],
		t.Rotation.W, t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2],
	} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
