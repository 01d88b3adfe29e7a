package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Convex is the convex hull of Vertices, optionally rounded by Radius.
// The vertices are used as-is: they do not need to be hull vertices, interior
// points are simply never returned by Support.
type Convex struct {
	Vertices []mgl64.Vec3
	Radius   float64
}

// Support scans the vertices for the largest projection. The first vertex wins ties.
func (c *Convex) Support(direction mgl64.Vec3, margin float64) (mgl64.Vec3, int) {
	if len(c.Vertices) == 0 {
		return mgl64.Vec3{}, -1
	}

	best := 0
	bestDot := c.Vertices[0].Dot(direction)
	for i := 1; i < len(c.Vertices); i++ {
		if d := c.Vertices[i].Dot(direction); d > bestDot {
			best = i
			bestDot = d
		}
	}

	return inflate(c.Vertices[best], direction, margin), best
}

func (c *Convex) Margin() float64 {
	return c.Radius
}

func (c *Convex) Bounds() AABB {
	if len(c.Vertices) == 0 {
		return AABB{}
	}

	min := c.Vertices[0]
	max := c.Vertices[0]
	for _, v := range c.Vertices[1:] {
		min[0] = math.Min(min[0], v[0])
		min[1] = math.Min(min[1], v[1])
		min[2] = math.Min(min[2], v[2])

		max[0] = math.Max(max[0], v[0])
		max[1] = math.Max(max[1], v[1])
		max[2] = math.Max(max[2], v[2])
	}

	return AABB{Min: min, Max: max}.Inflate(c.Radius)
}

func (c *Convex) Type() ShapeType {
	return ShapeTypeConvex
}
