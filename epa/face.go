package epa

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle of the polytope, referencing its vertices by index
type Face struct {
	Vertices [3]int
	Normal   mgl64.Vec3 // Unit normal pointing out of the polytope
	Distance float64    // Signed distance from the origin to the face plane
}

// EdgeEntry represents an edge with occurrence counting for boundary detection.
// An edge is a boundary (horizon) edge if it appears exactly once (Count == 1).
// Edges are normalized so A < B for consistent deduplication.
type EdgeEntry struct {
	A, B  int
	Count int
}

// projectOrigin returns the barycentric coordinates, over the face vertices, of
// the projection of the origin on the face plane. Coordinates are clamped to the
// triangle so that they stay usable when the origin sits slightly outside.
func projectOrigin(p0, p1, p2, normal mgl64.Vec3, distance float64) [3]float64 {
	p := normal.Mul(distance)

	v0 := p1.Sub(p0)
	v1 := p2.Sub(p0)
	v2 := p.Sub(p0)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-300 {
		return [3]float64{1, 0, 0}
	}

	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	u := 1 - v - w

	weights := [3]float64{math.Max(u, 0), math.Max(v, 0), math.Max(w, 0)}
	sum := weights[0] + weights[1] + weights[2]
	if sum <= 0 {
		return [3]float64{1, 0, 0}
	}

	return [3]float64{weights[0] / sum, weights[1] / sum, weights[2] / sum}
}

// perpendicular returns a unit vector orthogonal to direction, built against the
// axis on which direction has its smallest component (X first on ties).
func perpendicular(direction mgl64.Vec3) mgl64.Vec3 {
	ax, ay, az := math.Abs(direction.X()), math.Abs(direction.Y()), math.Abs(direction.Z())

	axis := mgl64.Vec3{1, 0, 0}
	if ay < ax && ay <= az {
		axis = mgl64.Vec3{0, 1, 0}
	} else if az < ax && az < ay {
		axis = mgl64.Vec3{0, 0, 1}
	}

	return direction.Cross(axis).Normalize()
}

// canonicalNormal picks a fixed sign for a normal whose sign carries no meaning
// (flat Minkowski differences): Z positive first, then Y, then X.
func canonicalNormal(normal mgl64.Vec3) mgl64.Vec3 {
	for _, axis := range [3]int{2, 1, 0} {
		if math.Abs(normal[axis]) > NormalSnapThreshold {
			if normal[axis] < 0 {
				return normal.Mul(-1)
			}
			return normal
		}
	}
	return normal
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly zero.
//
// Components with absolute value < NormalSnapThreshold are set to 0, then the
// vector is renormalized.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	clamped := normal
	for i := 0; i < 3; i++ {
		if math.Abs(clamped[i]) < NormalSnapThreshold {
			clamped[i] = 0
		}
	}

	length := clamped.Len()
	if length < NormalSnapThreshold {
		return normal
	}

	return clamped.Mul(1.0 / length)
}
