package gjk

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// minNormalFloat is the smallest positive normal float64. Segments shorter than
	// this (squared) collapse to a point; anything longer is still a valid segment.
	minNormalFloat = 2.2250738585072014e-308

	// DegenerateTolerance is the relative threshold under which a triangle is treated
	// as collinear (|ab x ac|^2 <= tol*|ab|^2*|ac|^2) and a tetrahedron as coplanar.
	DegenerateTolerance = 1e-12
)

// SupportPoint is a vertex of the Minkowski difference A - B, in A's space.
// A and B are the core support points on each shape that produced V.
type SupportPoint struct {
	V       mgl64.Vec3
	A       mgl64.Vec3
	B       mgl64.Vec3
	VertexA int
	VertexB int
}

// Simplex lists which of up to 4 points are currently in use.
// Idxs holds indices into a caller-held point array, oldest first. Reductions keep
// the relative order of the surviving indices, so identities stay stable.
type Simplex struct {
	Idxs     [4]int
	NumVerts int
}

// NewSimplex creates a simplex over the given point indices
func NewSimplex(idxs ...int) Simplex {
	var s Simplex
	for i, idx := range idxs {
		s.Idxs[i] = idx
	}
	s.NumVerts = len(idxs)
	return s
}

// Reset empties the simplex
func (s *Simplex) Reset() {
	s.NumVerts = 0
}

// Contains reports whether the point index is part of the simplex
func (s *Simplex) Contains(idx int) bool {
	for i := 0; i < s.NumVerts; i++ {
		if s.Idxs[i] == idx {
			return true
		}
	}
	return false
}

// FreeIndex returns the lowest point index not used by the simplex
func (s *Simplex) FreeIndex() int {
	for idx := 0; idx < 4; idx++ {
		if !s.Contains(idx) {
			return idx
		}
	}
	return -1
}

func (s *Simplex) keep(idxs ...int) {
	for i, idx := range idxs {
		s.Idxs[i] = idx
	}
	s.NumVerts = len(idxs)
}

// Reduce finds the point of the simplex closest to the origin and shrinks the
// simplex to the smallest feature containing it.
//
// Barycentric coordinates are written by ORIGINAL point index: after the call,
// barycentric[s.Idxs[i]] for i < s.NumVerts are non-negative and sum to 1.
// Every other entry is zero.
func Reduce(points *[4]mgl64.Vec3, simplex *Simplex, barycentric *[4]float64) mgl64.Vec3 {
	switch simplex.NumVerts {
	case 1:
		*barycentric = [4]float64{}
		barycentric[simplex.Idxs[0]] = 1
		return points[simplex.Idxs[0]]
	case 2:
		return ReduceLine(points, simplex, barycentric)
	case 3:
		return ReduceTriangle(points, simplex, barycentric)
	case 4:
		return ReduceTetrahedron(points, simplex, barycentric)
	}
	*barycentric = [4]float64{}
	return mgl64.Vec3{}
}

// ReduceLine handles the segment X0 X1 (Idxs[0], Idxs[1]).
//
// Regions:
//   - behind X0 (or coincident points): keep X0
//   - past X1, or a segment too short to project on: keep X1
//   - between: keep both, weights from the projection ratio
func ReduceLine(points *[4]mgl64.Vec3, simplex *Simplex, barycentric *[4]float64) mgl64.Vec3 {
	*barycentric = [4]float64{}

	i0, i1 := simplex.Idxs[0], simplex.Idxs[1]
	x0, x1 := points[i0], points[i1]

	segment := x1.Sub(x0)
	dot := -x0.Dot(segment)
	if dot <= 0 {
		simplex.keep(i0)
		barycentric[i0] = 1
		return x0
	}

	lenSq := segment.LenSqr()
	if lenSq <= dot || lenSq <= minNormalFloat {
		simplex.keep(i1)
		barycentric[i1] = 1
		return x1
	}

	ratio := clamp01(dot / lenSq)
	simplex.keep(i0, i1)
	barycentric[i0] = 1 - ratio
	barycentric[i1] = ratio

	return x0.Add(segment.Mul(ratio))
}

// ReduceTriangle handles the triangle A B C (Idxs[0..2]) with Voronoi region tests.
//
// Regions, tested in order so that ties go to the lower index:
//   - vertices A, B, C
//   - edges AB, AC, BC
//   - the face
//
// A collinear or zero-area triangle drops its newest point (C) and falls back to
// the segment AB.
func ReduceTriangle(points *[4]mgl64.Vec3, simplex *Simplex, barycentric *[4]float64) mgl64.Vec3 {
	*barycentric = [4]float64{}

	i0, i1, i2 := simplex.Idxs[0], simplex.Idxs[1], simplex.Idxs[2]
	a, b, c := points[i0], points[i1], points[i2]

	ab := b.Sub(a)
	ac := c.Sub(a)
	normal := ab.Cross(ac)

	if normal.LenSqr() <= DegenerateTolerance*ab.LenSqr()*ac.LenSqr() {
		simplex.keep(i0, i1)
		return ReduceLine(points, simplex, barycentric)
	}

	// Vertex region A
	ap := a.Mul(-1)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		simplex.keep(i0)
		barycentric[i0] = 1
		return a
	}

	// Vertex region B
	bp := b.Mul(-1)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		simplex.keep(i1)
		barycentric[i1] = 1
		return b
	}

	// Edge region AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		simplex.keep(i0, i1)
		barycentric[i0] = 1 - v
		barycentric[i1] = v
		return a.Add(ab.Mul(v))
	}

	// Vertex region C
	cp := c.Mul(-1)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		simplex.keep(i2)
		barycentric[i2] = 1
		return c
	}

	// Edge region AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		simplex.keep(i0, i2)
		barycentric[i0] = 1 - w
		barycentric[i2] = w
		return a.Add(ac.Mul(w))
	}

	// Edge region BC
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		simplex.keep(i1, i2)
		barycentric[i1] = 1 - w
		barycentric[i2] = w
		return b.Add(c.Sub(b).Mul(w))
	}

	// Face region
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	simplex.keep(i0, i1, i2)
	barycentric[i0] = 1 - v - w
	barycentric[i1] = v
	barycentric[i2] = w

	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

// tetrahedronFaces lists, by simplex slot, each face and the vertex opposite to it.
// The order fixes the tie-break between equally close faces.
var tetrahedronFaces = [4]struct {
	face     [3]int
	opposite int
}{
	{[3]int{0, 1, 2}, 3},
	{[3]int{0, 1, 3}, 2},
	{[3]int{0, 2, 3}, 1},
	{[3]int{1, 2, 3}, 0},
}

// ReduceTetrahedron handles the tetrahedron A B C D (Idxs[0..3]).
//
// Each face whose plane separates the origin from the opposite vertex is reduced
// with the triangle rules, and the closest candidate wins (first face on ties).
// Testing every separating face, rather than stopping at the first, is what
// resolves wide-angle tetrahedra where an edge looks closer than the real face.
// No separating face means the origin is inside: all 4 vertices are kept.
//
// A coplanar tetrahedron drops its newest point (D) and falls back to the triangle ABC.
func ReduceTetrahedron(points *[4]mgl64.Vec3, simplex *Simplex, barycentric *[4]float64) mgl64.Vec3 {
	idxs := simplex.Idxs
	a, b, c, d := points[idxs[0]], points[idxs[1]], points[idxs[2]], points[idxs[3]]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	volume := ab.Dot(ac.Cross(ad))

	if volume*volume <= DegenerateTolerance*ab.LenSqr()*ac.LenSqr()*ad.LenSqr() {
		simplex.keep(idxs[0], idxs[1], idxs[2])
		return ReduceTriangle(points, simplex, barycentric)
	}

	found := false
	var bestDistSq float64
	var bestPoint mgl64.Vec3
	var bestSimplex Simplex
	var bestBarycentric [4]float64

	for _, f := range tetrahedronFaces {
		p0 := points[idxs[f.face[0]]]
		p1 := points[idxs[f.face[1]]]
		p2 := points[idxs[f.face[2]]]
		opposite := points[idxs[f.opposite]]

		normal := p1.Sub(p0).Cross(p2.Sub(p0))
		signOrigin := normal.Dot(p0.Mul(-1))
		signOpposite := normal.Dot(opposite.Sub(p0))
		if signOrigin*signOpposite >= 0 {
			continue
		}

		candidate := NewSimplex(idxs[f.face[0]], idxs[f.face[1]], idxs[f.face[2]])
		var candidateBarycentric [4]float64
		point := ReduceTriangle(points, &candidate, &candidateBarycentric)

		distSq := point.LenSqr()
		if !found || distSq < bestDistSq {
			found = true
			bestDistSq = distSq
			bestPoint = point
			bestSimplex = candidate
			bestBarycentric = candidateBarycentric
		}
	}

	if found {
		*simplex = bestSimplex
		*barycentric = bestBarycentric
		return bestPoint
	}

	// The origin is inside: barycentrics are the signed sub-volume ratios
	origin := mgl64.Vec3{}
	inv := 1 / volume
	*barycentric = [4]float64{}
	barycentric[idxs[0]] = signedVolume(origin, b, c, d) * inv
	barycentric[idxs[1]] = signedVolume(a, origin, c, d) * inv
	barycentric[idxs[2]] = signedVolume(a, b, origin, d) * inv
	barycentric[idxs[3]] = signedVolume(a, b, c, origin) * inv

	return origin
}

func signedVolume(a, b, c, d mgl64.Vec3) float64 {
	return b.Sub(a).Dot(c.Sub(a).Cross(d.Sub(a)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
