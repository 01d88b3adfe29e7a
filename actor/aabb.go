package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Inflate grows the box by margin on every side
func (a AABB) Inflate(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Corners returns the 8 corners of the box
func (a AABB) Corners() [8]mgl64.Vec3 {
	return [8]mgl64.Vec3{
		{a.Min.X(), a.Min.Y(), a.Min.Z()},
		{a.Max.X(), a.Min.Y(), a.Min.Z()},
		{a.Min.X(), a.Max.Y(), a.Min.Z()},
		{a.Max.X(), a.Max.Y(), a.Min.Z()},
		{a.Min.X(), a.Min.Y(), a.Max.Z()},
		{a.Max.X(), a.Min.Y(), a.Max.Z()},
		{a.Min.X(), a.Max.Y(), a.Max.Z()},
		{a.Max.X(), a.Max.Y(), a.Max.Z()},
	}
}

// Transform returns the box enclosing a after applying the transform
func (a AABB) Transform(transform Transform) AABB {
	corners := a.Corners()

	first := transform.TransformPoint(corners[0])
	min := first
	max := first

	for i := 1; i < 8; i++ {
		corner := transform.TransformPoint(corners[i])

		min[0] = math.Min(min[0], corner[0])
		min[1] = math.Min(min[1], corner[1])
		min[2] = math.Min(min[2], corner[2])

		max[0] = math.Max(max[0], corner[0])
		max[1] = math.Max(max[1], corner[1])
		max[2] = math.Max(max[2], corner[2])
	}

	return AABB{Min: min, Max: max}
}

// Scale returns the box enclosing a after a per-axis scale. Negative factors
// swap the bounds on that axis.
func (a AABB) Scale(scale mgl64.Vec3) AABB {
	var out AABB
	for i := 0; i < 3; i++ {
		lo := a.Min[i] * scale[i]
		hi := a.Max[i] * scale[i]
		out.Min[i] = math.Min(lo, hi)
		out.Max[i] = math.Max(lo, hi)
	}
	return out
}
