// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA is run after GJK finds that the cores of two shapes overlap, to determine:
//   - Penetration depth (how far the cores overlap)
//   - Contact normal (direction to separate the shapes)
//   - Contact points (the deepest point of each core)
//
// The algorithm expands a polytope (starting from GJK's final simplex) inside the
// Minkowski difference C = A - B until it finds the face of C closest to the
// origin, which gives the Minimum Translation Vector to separate the shapes.
//
// Penetration and SignedPenetration combine GJK and EPA with the shape margins to
// report the depth of the full rounded shapes.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EPAMaxIterations limits polytope expansion. Polyhedral shapes converge in a
	// few iterations; rounded or scaled cores may reach the cap, in which case the
	// best face found so far is returned with Exhausted set.
	EPAMaxIterations = 64

	// EPAEpsilon is the relative convergence tolerance: EPA stops once the support
	// point along the closest face normal improves its distance by less than
	// EPAEpsilon * max(1, distance).
	EPAEpsilon = 1e-6

	// MaxVertices bounds the polytope size. MaxFaces follows from Euler's formula
	// for a closed triangulated polytope (F = 2V - 4).
	MaxVertices = 128
	MaxFaces    = 2 * MaxVertices

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	// This helps with numerical stability and axis-aligned contacts.
	NormalSnapThreshold = 1e-8

	// DegenerateTolerance is the distance, relative to the size of C, under which
	// a new support point is considered to add no dimension to the polytope.
	DegenerateTolerance = 1e-9
)

// Result is the penetration of the two CORES, in A's space
type Result struct {
	// Depth is the core penetration depth. It can be slightly negative when the
	// origin lies on the boundary of C.
	Depth float64
	// Normal is unit length, points from A toward B, and is A's outward normal
	// at the contact. Moving B by Depth along Normal separates the cores.
	Normal mgl64.Vec3
	// ClosestA and ClosestB are the deepest core points: ClosestA - ClosestB = Normal * Depth
	ClosestA   mgl64.Vec3
	ClosestB   mgl64.Vec3
	VertexA    int
	VertexB    int
	Iterations int
	// Exhausted is set when the expansion stopped on EPAMaxIterations or on the
	// polytope capacity before converging.
	Exhausted bool
	// Degenerate is set when C is flat (a point, a segment or a polygon), in which
	// case the depth is 0 and the normal is chosen deterministically.
	Degenerate bool
}

// EPA computes the core penetration of a and b from the terminal simplex of an
// overlapping GJK query.
//
// The simplex may have any number of points: a tetrahedron is first rebuilt
// around it with extra support queries. When that fails because C has no volume,
// a degenerate result is returned:
//   - point: normal (0, 0, 1)
//   - segment: a normal perpendicular to it
//   - polygon: the polygon plane normal
func EPA(a, b actor.Shape, bToA actor.Transform, simplex *gjk.Result) Result {
	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	defer polytopeBuilderPool.Put(builder)
	builder.Reset()

	for i := 0; i < simplex.Simplex.NumVerts; i++ {
		point := simplex.Points[simplex.Simplex.Idxs[i]]
		if !builder.hasVertex(point.V) {
			builder.addVertex(point)
		}
	}
	if builder.numVertices == 0 {
		builder.addVertex(gjk.MinkowskiSupport(a, b, bToA, mgl64.Vec3{1, 0, 0}))
	}

	if degenerate, ok := buildTetrahedron(builder, a, b, bToA, simplex); !ok {
		return degenerate
	}

	builder.BuildInitialFaces()

	var result Result
	converged := false

	for result.Iterations < EPAMaxIterations {
		result.Iterations++

		closestFace := &builder.faces[builder.FindClosestFaceIndex()]
		iterations := result.Iterations
		result = builder.contactFromFace(closestFace)
		result.Iterations = iterations

		support := gjk.MinkowskiSupport(a, b, bToA, closestFace.Normal)
		upper := support.V.Dot(closestFace.Normal)

		if upper-closestFace.Distance <= EPAEpsilon*math.Max(1, math.Abs(upper)) {
			converged = true
			break
		}

		// The support point is already a vertex: the polytope cannot grow further
		if builder.hasVertex(support.V) {
			converged = true
			break
		}

		expanded, full := builder.AddPointAndRebuildFaces(support)
		if !expanded {
			// A point that sees no face means numerical convergence
			converged = !full
			break
		}
	}

	result.Exhausted = !converged
	return result
}

// buildTetrahedron completes the polytope vertices to a non-flat tetrahedron.
// It returns ok = false, with the degenerate result to report, when C is flat.
func buildTetrahedron(builder *PolytopeBuilder, a, b actor.Shape, bToA actor.Transform, simplex *gjk.Result) (Result, bool) {
	support := func(direction mgl64.Vec3) gjk.SupportPoint {
		return gjk.MinkowskiSupport(a, b, bToA, direction)
	}

	// Flat simplices drop their newest point, as the GJK reductions do
	if builder.numVertices == 4 && flatTetrahedron(builder) {
		builder.numVertices = 3
	}
	if builder.numVertices == 3 && flatTriangle(builder) {
		builder.numVertices = 2
	}
	if builder.numVertices == 2 && builder.vertices[0].V == builder.vertices[1].V {
		builder.numVertices = 1
	}

	tolerance := func() float64 {
		return DegenerateTolerance * builder.scale()
	}

	// One point: search along the direction toward the origin, then the axes
	if builder.numVertices == 1 {
		p0 := builder.vertices[0].V
		directions := [7]mgl64.Vec3{
			p0.Mul(-1),
			{1, 0, 0}, {-1, 0, 0},
			{0, 1, 0}, {0, -1, 0},
			{0, 0, 1}, {0, 0, -1},
		}
		for _, direction := range directions {
			if direction.LenSqr() == 0 {
				continue
			}
			point := support(direction)
			if point.V.Sub(p0).Len() > tolerance() {
				builder.addVertex(point)
				break
			}
		}
		if builder.numVertices == 1 {
			return degenerateResult(simplex, mgl64.Vec3{0, 0, 1}), false
		}
	}

	// Two points: search perpendicular to the segment
	if builder.numVertices == 2 {
		p0 := builder.vertices[0].V
		axis := builder.vertices[1].V.Sub(p0)
		axisDir := axis.Normalize()

		perp1 := perpendicular(axisDir)
		perp2 := axisDir.Cross(perp1)
		var directions [5]mgl64.Vec3
		count := 0

		// Prefer the side of the segment where the origin lies
		toOrigin := p0.Mul(-1)
		toOrigin = toOrigin.Sub(axisDir.Mul(toOrigin.Dot(axisDir)))
		if toOrigin.Len() > tolerance() {
			directions[count] = toOrigin
			count++
		}
		for _, direction := range [4]mgl64.Vec3{perp1, perp1.Mul(-1), perp2, perp2.Mul(-1)} {
			directions[count] = direction
			count++
		}

		for _, direction := range directions[:count] {
			point := support(direction)
			offset := point.V.Sub(p0)
			if offset.Sub(axisDir.Mul(offset.Dot(axisDir))).Len() > tolerance() {
				builder.addVertex(point)
				break
			}
		}
		if builder.numVertices == 2 {
			return degenerateResult(simplex, canonicalNormal(perpendicular(axisDir))), false
		}
	}

	// Three points: search along the triangle normal, origin side first
	if builder.numVertices == 3 {
		p0 := builder.vertices[0].V
		normal := triangleNormal(builder).Normalize()

		directions := [2]mgl64.Vec3{normal, normal.Mul(-1)}
		if normal.Dot(p0) > 0 {
			directions[0], directions[1] = directions[1], directions[0]
		}

		for _, direction := range directions {
			point := support(direction)
			if math.Abs(point.V.Sub(p0).Dot(normal)) > tolerance() {
				builder.addVertex(point)
				break
			}
		}
		if builder.numVertices == 3 {
			return degenerateResult(simplex, canonicalNormal(snapNormalToAxis(normal))), false
		}
	}

	return Result{}, true
}

func triangleNormal(builder *PolytopeBuilder) mgl64.Vec3 {
	p0 := builder.vertices[0].V
	return builder.vertices[1].V.Sub(p0).Cross(builder.vertices[2].V.Sub(p0))
}

func flatTriangle(builder *PolytopeBuilder) bool {
	p0 := builder.vertices[0].V
	ab := builder.vertices[1].V.Sub(p0)
	ac := builder.vertices[2].V.Sub(p0)
	return ab.Cross(ac).LenSqr() <= gjk.DegenerateTolerance*ab.LenSqr()*ac.LenSqr()
}

func flatTetrahedron(builder *PolytopeBuilder) bool {
	p0 := builder.vertices[0].V
	ab := builder.vertices[1].V.Sub(p0)
	ac := builder.vertices[2].V.Sub(p0)
	ad := builder.vertices[3].V.Sub(p0)
	volume := ab.Dot(ac.Cross(ad))
	return volume*volume <= gjk.DegenerateTolerance*ab.LenSqr()*ac.LenSqr()*ad.LenSqr()
}

// degenerateResult reports a zero core depth along normal, with the GJK closest
// points which coincide up to epsilon.
func degenerateResult(simplex *gjk.Result, normal mgl64.Vec3) Result {
	return Result{
		Depth:      0,
		Normal:     normal,
		ClosestA:   simplex.ClosestA,
		ClosestB:   simplex.ClosestB,
		VertexA:    simplex.VertexA,
		VertexB:    simplex.VertexB,
		Degenerate: true,
	}
}

// Contact is the penetration of the full shapes, margins included, in A's space
type Contact struct {
	// Penetration is the overlap depth of the inflated shapes. Negative when they are apart.
	Penetration float64
	// ClosestA lies on A's inflated surface, ClosestB on B's.
	ClosestA mgl64.Vec3
	ClosestB mgl64.Vec3
	// Normal is unit length and points from A toward B.
	Normal  mgl64.Vec3
	VertexA int
	VertexB int
	// Exhausted is set when GJK or EPA stopped on an iteration or capacity limit
	Exhausted bool
	// Degenerate is set when the core penetration came from a flat Minkowski difference
	Degenerate bool
	Cache      gjk.SearchCache
}

// SignedPenetration computes the penetration of a and b, inflated by their
// margins plus thicknessA and thicknessB.
//
// When the cores are apart, the result comes from GJK alone: the penetration is
// the margins minus the core distance, which is negative for separated shapes.
// When the cores overlap (core distance <= epsilon), EPA computes the core depth
// and the margins are added on top.
func SignedPenetration(a, b actor.Shape, bToA actor.Transform, thicknessA, thicknessB float64, initialDir mgl64.Vec3, epsilon float64) Contact {
	if epsilon <= 0 {
		epsilon = gjk.DefaultEpsilon
	}

	marginA := a.Margin() + thicknessA
	marginB := b.Margin() + thicknessB

	simplex := gjk.Distance(a, b, bToA, initialDir, epsilon)
	cache := simplex.Cache()

	if simplex.Status == gjk.StatusSeparated {
		normal := simplex.Normal
		return Contact{
			Penetration: marginA + marginB - simplex.Distance,
			ClosestA:    simplex.ClosestA.Add(normal.Mul(marginA)),
			ClosestB:    simplex.ClosestB.Sub(normal.Mul(marginB)),
			Normal:      normal,
			VertexA:     simplex.VertexA,
			VertexB:     simplex.VertexB,
			Exhausted:   simplex.Exhausted,
			Cache:       cache,
		}
	}

	core := EPA(a, b, bToA, &simplex)
	normal := core.Normal

	return Contact{
		Penetration: core.Depth + marginA + marginB,
		ClosestA:    core.ClosestA.Add(normal.Mul(marginA)),
		ClosestB:    core.ClosestB.Sub(normal.Mul(marginB)),
		Normal:      normal,
		VertexA:     core.VertexA,
		VertexB:     core.VertexB,
		Exhausted:   simplex.Exhausted || core.Exhausted,
		Degenerate:  core.Degenerate,
		Cache:       cache,
	}
}

// Penetration is SignedPenetration restricted to touching or overlapping shapes:
// ok is false when the inflated shapes are apart.
func Penetration(a, b actor.Shape, bToA actor.Transform, thicknessA, thicknessB float64, initialDir mgl64.Vec3, epsilon float64) (Contact, bool) {
	contact := SignedPenetration(a, b, bToA, thicknessA, thicknessB, initialDir, epsilon)
	if contact.Penetration < 0 {
		return contact, false
	}
	return contact, true
}
