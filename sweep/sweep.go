// Package sweep casts a convex shape along a straight line against another one.
//
// The cast uses conservative advancement: at every step the GJK separation s and
// normal n bound how far B can travel along the direction before touching A, so
// the time is advanced by s / closing speed until the separation falls under
// Tolerance. Each step is a Newton step on the separation function, which makes
// grazing hits converge in a few iterations.
package sweep

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/epa"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations bounds the advancement steps
	MaxIterations = 64

	// Tolerance is the separation under which the shapes are reported as touching
	Tolerance = 1e-5

	// minClosingSpeed is the approach speed (along the unit direction) below which
	// B is considered to move parallel to, or away from, A.
	minClosingSpeed = 1e-12

	// lengthSlack allows hits landing within rounding noise past Length
	lengthSlack = 1e-9
)

// Request describes B travelling in A's space.
type Request struct {
	// BToA places B relative to A at time 0
	BToA actor.Transform
	// Direction of travel, in A's space. It is normalized by Raycast.
	Direction mgl64.Vec3
	// Length is the distance travelled along the normalized Direction
	Length float64
	// Thickness inflates B, on top of both margins
	Thickness float64
	// InitialDir seeds the first GJK query (see gjk.SearchCache)
	InitialDir mgl64.Vec3
	// ComputeMTD asks for the penetration of shapes that overlap at time 0
	ComputeMTD bool
}

// Result of a sweep. All positions and normals are in A's space.
type Result struct {
	Hit bool
	// Time is the distance travelled at the first contact, in [0, Length].
	// For an initial overlap with ComputeMTD it is minus the penetration depth.
	Time float64
	// Position is the contact point on A's surface
	Position mgl64.Vec3
	// Normal is unit length and points from A toward B
	Normal mgl64.Vec3
	// InitialOverlap is set when the shapes already overlap at time 0. Without
	// ComputeMTD, Time is 0 and Position/Normal are left zero.
	InitialOverlap bool
	Iterations     int
	// Exhausted is set when MaxIterations was reached: the sweep is reported as a miss
	Exhausted bool
	Cache     gjk.SearchCache
}

// Raycast sweeps b from req.BToA along req.Direction for req.Length and returns
// the first time of impact with a.
//
// A zero Direction or a negative Length returns an empty Result.
func Raycast(a, b actor.Shape, req Request) Result {
	var result Result

	if req.Length < 0 || req.Direction.LenSqr() < 1e-24 {
		return result
	}
	direction := req.Direction.Normalize()

	marginA := a.Margin()
	inflation := marginA + b.Margin() + req.Thickness

	current := req.BToA
	initialDir := req.InitialDir
	time := 0.0
	var lastNormal mgl64.Vec3

	for result.Iterations < MaxIterations {
		result.Iterations++

		simplex := gjk.Distance(a, b, current, initialDir, gjk.DefaultEpsilon)
		if cache := simplex.Cache(); cache.Direction.LenSqr() > 0 {
			initialDir = cache.Direction
			result.Cache = cache
		}

		overlapping := simplex.Status == gjk.StatusOverlapping
		separation := simplex.Distance - inflation

		if time == 0 && (overlapping || separation < 0) {
			return initialOverlap(a, b, req, result)
		}

		if overlapping || separation <= Tolerance {
			normal := simplex.Normal
			if overlapping {
				normal = lastNormal
			}

			result.Hit = true
			result.Time = time
			result.Normal = normal
			result.Position = simplex.ClosestA.Add(normal.Mul(marginA))
			return result
		}

		normal := simplex.Normal
		lastNormal = normal

		closing := -direction.Dot(normal)
		if closing <= minClosingSpeed {
			return miss(result)
		}

		time += separation / closing
		if time > req.Length+lengthSlack*max(1, req.Length) {
			return miss(result)
		}

		current.Position = req.BToA.Position.Add(direction.Mul(time))
	}

	result.Exhausted = true
	return miss(result)
}

// initialOverlap reports shapes that already overlap at time 0
func initialOverlap(a, b actor.Shape, req Request, result Result) Result {
	result.Hit = true
	result.InitialOverlap = true

	if !req.ComputeMTD {
		return result
	}

	contact := epa.SignedPenetration(a, b, req.BToA, 0, req.Thickness, result.Cache.Direction, gjk.DefaultEpsilon)
	result.Time = -contact.Penetration
	result.Normal = contact.Normal
	result.Position = contact.ClosestA
	if contact.Cache.Direction.LenSqr() > 0 {
		result.Cache = contact.Cache
	}

	return result
}

func miss(result Result) Result {
	result.Hit = false
	result.Time = 0
	result.Position = mgl64.Vec3{}
	result.Normal = mgl64.Vec3{}
	return result
}
