package narrowphase

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Pair is two shapes placed in world space that may be in contact.
// ID identifies the pair across calls: search caches and contact events are keyed by it.
type Pair struct {
	ID         uuid.UUID
	A, B       actor.Shape
	TransformA actor.Transform
	TransformB actor.Transform
}

// NewPair creates a pair with a fresh, time ordered ID
func NewPair(a actor.Shape, transformA actor.Transform, b actor.Shape, transformB actor.Transform) Pair {
	return Pair{
		ID:         uuid.Must(uuid.NewV7()),
		A:          a,
		B:          b,
		TransformA: transformA,
		TransformB: transformB,
	}
}

// Validate reports why the pair cannot be queried
func (p Pair) Validate() error {
	if p.A == nil {
		return errors.Wrapf(ErrNilShape, "pair %s: shape A", p.ID)
	}
	if p.B == nil {
		return errors.Wrapf(ErrNilShape, "pair %s: shape B", p.ID)
	}
	if !p.TransformA.IsValid() {
		return errors.Wrapf(ErrInvalidTransform, "pair %s: transform A %v", p.ID, p.TransformA)
	}
	if !p.TransformB.IsValid() {
		return errors.Wrapf(ErrInvalidTransform, "pair %s: transform B %v", p.ID, p.TransformB)
	}
	return nil
}

// bToA places B in A's local space
func (p Pair) bToA() actor.Transform {
	return p.TransformA.Relative(p.TransformB)
}

// worldBounds returns the world space boxes of both shapes, B grown by thickness
func (p Pair) worldBounds(thickness float64) (actor.AABB, actor.AABB) {
	boundsA := p.A.Bounds().Transform(p.TransformA)
	boundsB := p.B.Bounds().Transform(p.TransformB).Inflate(thickness)
	return boundsA, boundsB
}
