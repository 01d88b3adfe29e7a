// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) distance algorithm.
//
// GJK works on the Minkowski difference C = A - B of two convex shapes. It builds a
// simplex of support points of C that converges toward the point of C closest to
// the origin. That point is the separation vector between the two shapes, and when
// C contains the origin the shapes overlap.
//
// The loop runs on the shapes' CORES (see actor.Shape): margins are added back by
// the queries built on top of it, which keeps rounded shapes (spheres, capsules)
// exact and fast.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
//   - Ericson: "Real-Time Collision Detection" (2004), closest point on triangle
package gjk

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations bounds the core loop. Polyhedral cores converge in a handful
	// of iterations; smooth cores (non-uniformly scaled spheres) converge linearly.
	// Hitting the cap sets Result.Exhausted and still returns the best estimate.
	MaxIterations = 64

	// RelativeTolerance stops the loop once a new support point improves the
	// squared distance by less than this fraction.
	RelativeTolerance = 1e-6

	// DefaultEpsilon is the core distance at or below which two cores are treated
	// as touching, i.e. overlapping.
	DefaultEpsilon = 1e-8
)

// Status is the terminal state of the core loop
type Status int

const (
	// StatusSeparated means the cores are apart: Distance, ClosestA/B and Normal are valid
	StatusSeparated Status = iota
	// StatusOverlapping means the Minkowski difference contains the origin
	StatusOverlapping
)

func (s Status) String() string {
	if s == StatusOverlapping {
		return "overlapping"
	}
	return "separated"
}

// SearchCache carries the last separation vector of a persistent pair so that the
// next query can start from it. It only affects convergence speed: a zero value
// is always valid, and it can be dropped at any time.
type SearchCache struct {
	Direction mgl64.Vec3
}

// InitialDir returns the cached direction, or fallback when the cache is empty
func (c SearchCache) InitialDir(fallback mgl64.Vec3) mgl64.Vec3 {
	if c.Direction.LenSqr() > 0 {
		return c.Direction
	}
	return fallback
}

// Result is the outcome of the core loop, expressed in A's space
type Result struct {
	Status Status
	// Distance between the two cores, 0 when overlapping
	Distance float64
	// ClosestA and ClosestB are the closest points of each core
	ClosestA mgl64.Vec3
	ClosestB mgl64.Vec3
	// Normal points from A toward B. Zero when overlapping.
	Normal mgl64.Vec3
	// VertexA and VertexB are the vertex indices contributing the most to the closest points
	VertexA    int
	VertexB    int
	Iterations int
	// Exhausted is set when MaxIterations was reached before convergence
	Exhausted bool

	// Terminal simplex, handed to EPA when the cores overlap
	Points      [4]SupportPoint
	Simplex     Simplex
	Barycentric [4]float64
}

// Cache returns the search cache to reuse for the next query on the same pair
func (r *Result) Cache() SearchCache {
	return SearchCache{Direction: r.ClosestA.Sub(r.ClosestB)}
}

// MinkowskiSupport computes a support point of the core Minkowski difference A - B.
//
// direction is in A's space. B is placed in A's space by bToA, so the direction is
// rotated into B's local space before querying it and the result is brought back.
//
// Returns:
//
//	Support point: furthestPoint(A, direction) - furthestPoint(B, -direction)
func MinkowskiSupport(a, b actor.Shape, bToA actor.Transform, direction mgl64.Vec3) SupportPoint {
	supportA, vertexA := a.Support(direction, 0)

	localDirection := bToA.InverseRotateVector(direction.Mul(-1))
	localB, vertexB := b.Support(localDirection, 0)
	supportB := bToA.TransformPoint(localB)

	return SupportPoint{
		V:       supportA.Sub(supportB),
		A:       supportA,
		B:       supportB,
		VertexA: vertexA,
		VertexB: vertexB,
	}
}

// Distance runs the core loop between the cores of a and b.
//
// initialDir is a guess of the separation vector (A's core minus B's core), for
// instance a previous SearchCache direction. A zero direction is replaced by +X.
// epsilon is the core distance at or below which the cores count as touching.
func Distance(a, b actor.Shape, bToA actor.Transform, initialDir mgl64.Vec3, epsilon float64) Result {
	return distance(a, b, bToA, initialDir, epsilon, math.Inf(1))
}

// distance is the core loop. It stops early, reporting a separated result, once
// the lower bound on the distance proves it larger than limit.
func distance(a, b actor.Shape, bToA actor.Transform, initialDir mgl64.Vec3, epsilon float64, limit float64) Result {
	var result Result
	var points [4]mgl64.Vec3

	v := initialDir
	if v.LenSqr() < 1e-24 {
		v = mgl64.Vec3{1, 0, 0}
	}

	// Initializing: one support point against the initial direction
	support := MinkowskiSupport(a, b, bToA, v.Mul(-1))
	result.Points[0] = support
	points[0] = support.V
	result.Simplex = NewSimplex(0)
	result.Barycentric[0] = 1
	v = support.V

	result.Status = StatusSeparated
	converged := false

	for result.Iterations < MaxIterations {
		result.Iterations++

		distSq := v.LenSqr()
		if distSq <= epsilon*epsilon {
			result.Status = StatusOverlapping
			converged = true
			break
		}

		support = MinkowskiSupport(a, b, bToA, v.Mul(-1))
		vw := v.Dot(support.V)

		// Separating axis: every point of C is at least vw/|v| away along v
		if vw > 0 && vw*vw > limit*limit*distSq {
			converged = true
			break
		}

		// No progress toward the origin: v is the closest point
		if distSq-vw <= RelativeTolerance*distSq {
			converged = true
			break
		}

		previous, previousWeights := result.Simplex, result.Barycentric

		slot := result.Simplex.FreeIndex()
		result.Points[slot] = support
		points[slot] = support.V
		result.Simplex.Idxs[result.Simplex.NumVerts] = slot
		result.Simplex.NumVerts++

		closest := Reduce(&points, &result.Simplex, &result.Barycentric)

		if result.Simplex.NumVerts == 4 {
			// Origin inside the tetrahedron
			v = closest
			result.Status = StatusOverlapping
			converged = true
			break
		}

		if closest.LenSqr() >= distSq {
			// Numerical stall: the reduced simplex is no closer, keep the previous one
			result.Simplex, result.Barycentric = previous, previousWeights
			converged = true
			break
		}

		v = closest
	}

	result.Exhausted = !converged
	result.ClosestA, result.ClosestB = result.closestPoints()
	result.VertexA, result.VertexB = result.dominantVertices()

	if result.Status == StatusSeparated {
		result.Distance = v.Len()
		if result.Distance <= epsilon {
			result.Status = StatusOverlapping
		} else {
			result.Normal = v.Mul(-1 / result.Distance)
		}
	}
	if result.Status == StatusOverlapping {
		result.Distance = 0
		result.Normal = mgl64.Vec3{}
	}

	return result
}

// closestPoints back-substitutes the barycentric coordinates onto each core
func (r *Result) closestPoints() (mgl64.Vec3, mgl64.Vec3) {
	var closestA, closestB mgl64.Vec3
	for i := 0; i < r.Simplex.NumVerts; i++ {
		idx := r.Simplex.Idxs[i]
		weight := r.Barycentric[idx]
		closestA = closestA.Add(r.Points[idx].A.Mul(weight))
		closestB = closestB.Add(r.Points[idx].B.Mul(weight))
	}
	return closestA, closestB
}

// dominantVertices returns the vertex indices of the simplex point with the
// largest weight. The first point wins ties.
func (r *Result) dominantVertices() (int, int) {
	best := r.Simplex.Idxs[0]
	for i := 1; i < r.Simplex.NumVerts; i++ {
		idx := r.Simplex.Idxs[i]
		if r.Barycentric[idx] > r.Barycentric[best] {
			best = idx
		}
	}
	return r.Points[best].VertexA, r.Points[best].VertexB
}

// Intersects reports whether the inflated shapes overlap or lie within thickness
// of each other: core distance <= marginA + marginB + thickness.
//
// The result is monotonic in thickness. It is safe to call concurrently on
// independent shapes.
func Intersects(a, b actor.Shape, bToA actor.Transform, thickness float64, initialDir mgl64.Vec3) bool {
	inflation := a.Margin() + b.Margin() + thickness
	if inflation < 0 {
		inflation = 0
	}

	result := distance(a, b, bToA, initialDir, DefaultEpsilon, inflation)
	if result.Status == StatusOverlapping {
		return true
	}

	return result.Distance <= inflation
}

// DistanceResult describes two separated shapes, margins included
type DistanceResult struct {
	Distance float64
	// ClosestA and ClosestB lie on the inflated surfaces, in A's space
	ClosestA mgl64.Vec3
	ClosestB mgl64.Vec3
	// Normal is unit length and points from A toward B
	Normal  mgl64.Vec3
	VertexA int
	VertexB int
	Cache   SearchCache
}

// ComputeDistance returns the separation between the inflated shapes.
// ok is false when the shapes touch or overlap, in which case only Cache is set.
func ComputeDistance(a, b actor.Shape, bToA actor.Transform, initialDir mgl64.Vec3) (DistanceResult, bool) {
	result := Distance(a, b, bToA, initialDir, DefaultEpsilon)
	out := DistanceResult{Cache: result.Cache()}

	if result.Status == StatusOverlapping {
		return out, false
	}

	marginA := a.Margin()
	marginB := b.Margin()
	separation := result.Distance - marginA - marginB
	if separation <= 0 {
		return out, false
	}

	out.Distance = separation
	out.Normal = result.Normal
	out.ClosestA = result.ClosestA.Add(result.Normal.Mul(marginA))
	out.ClosestB = result.ClosestB.Sub(result.Normal.Mul(marginB))
	out.VertexA = result.VertexA
	out.VertexB = result.VertexB

	return out, true
}
