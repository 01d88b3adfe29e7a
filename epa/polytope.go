package epa

import (
	"math"
	"sync"

	"github.com/akmonengine/narrowphase/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// PolytopeBuilder holds the polytope being expanded, in fixed-size buffers.
// Faces reference vertices by index so that the horizon edges are found by exact
// index comparison instead of floating-point equality.
type PolytopeBuilder struct {
	vertices    [MaxVertices]gjk.SupportPoint
	numVertices int

	faces    [MaxFaces]Face
	numFaces int

	// Normalized edges (A < B) of the faces visible from the new point
	edges    [MaxFaces * 3]EdgeEntry
	numEdges int

	visible    [MaxFaces]int
	numVisible int

	// Fixed point strictly inside the polytope: every face is oriented away from it
	interior mgl64.Vec3
}

// polytopeBuilderPool is the single sync.Pool for PolytopeBuilder instances.
// The builder is large, so expansions reuse it instead of allocating.
var polytopeBuilderPool = sync.Pool{
	New: func() interface{} {
		return &PolytopeBuilder{}
	},
}

// Reset prepares the builder for reuse
func (b *PolytopeBuilder) Reset() {
	b.numVertices = 0
	b.numFaces = 0
	b.numEdges = 0
	b.numVisible = 0
	b.interior = mgl64.Vec3{}
}

// addVertex appends a support point and returns its index, or -1 once full
func (b *PolytopeBuilder) addVertex(point gjk.SupportPoint) int {
	if b.numVertices == MaxVertices {
		return -1
	}
	b.vertices[b.numVertices] = point
	b.numVertices++
	return b.numVertices - 1
}

// hasVertex reports whether the exact point is already part of the polytope
func (b *PolytopeBuilder) hasVertex(point mgl64.Vec3) bool {
	for i := 0; i < b.numVertices; i++ {
		if b.vertices[i].V == point {
			return true
		}
	}
	return false
}

// BuildInitialFaces creates the 4 faces of the tetrahedron held in vertices[0..3].
// The interior point is the tetrahedron centroid, which stays inside the polytope
// for the whole expansion since the polytope only grows.
func (b *PolytopeBuilder) BuildInitialFaces() {
	p0, p1, p2, p3 := b.vertices[0].V, b.vertices[1].V, b.vertices[2].V, b.vertices[3].V
	b.interior = p0.Add(p1).Add(p2).Add(p3).Mul(0.25)

	b.numFaces = 0
	b.appendFace(0, 1, 2)
	b.appendFace(0, 1, 3)
	b.appendFace(0, 2, 3)
	b.appendFace(1, 2, 3)
}

// appendFace creates a face and stores it. It returns false once the buffer is full.
func (b *PolytopeBuilder) appendFace(i0, i1, i2 int) bool {
	if b.numFaces == MaxFaces {
		return false
	}
	b.faces[b.numFaces] = b.createFaceOutward(i0, i1, i2)
	b.numFaces++
	return true
}

// createFaceOutward creates a face whose normal points away from the interior point.
//
// The distance is kept signed: a face whose plane passes on the far side of the
// origin (origin touching or slightly outside the polytope) gets a negative
// distance rather than a flipped normal, so the normal always stays outward.
func (b *PolytopeBuilder) createFaceOutward(i0, i1, i2 int) Face {
	p0 := b.vertices[i0].V
	p1 := b.vertices[i1].V
	p2 := b.vertices[i2].V

	normal := p1.Sub(p0).Cross(p2.Sub(p0))
	length := normal.Len()
	if length < 1e-300 {
		// Zero-area sliver: orient it from the interior point through its centroid
		normal = p0.Add(p1).Add(p2).Mul(1.0 / 3.0).Sub(b.interior)
		length = normal.Len()
		if length < 1e-300 {
			normal = mgl64.Vec3{0, 0, 1}
			length = 1
		}
	}
	normal = normal.Mul(1.0 / length)

	if normal.Dot(p0.Sub(b.interior)) < 0 {
		normal = normal.Mul(-1)
		i1, i2 = i2, i1
	}

	normal = snapNormalToAxis(normal)

	return Face{
		Vertices: [3]int{i0, i1, i2},
		Normal:   normal,
		Distance: p0.Dot(normal),
	}
}

// FindClosestFaceIndex returns the index of the face with the smallest signed
// distance. The first face wins ties. Returns -1 if no faces exist.
func (b *PolytopeBuilder) FindClosestFaceIndex() int {
	if b.numFaces == 0 {
		return -1
	}

	closestIndex := 0
	minDistance := b.faces[0].Distance

	for i := 1; i < b.numFaces; i++ {
		if b.faces[i].Distance < minDistance {
			closestIndex = i
			minDistance = b.faces[i].Distance
		}
	}

	return closestIndex
}

// findVisibleFaces marks the faces whose plane has the support point strictly in front
func (b *PolytopeBuilder) findVisibleFaces(support mgl64.Vec3) {
	b.numVisible = 0

	for i := 0; i < b.numFaces; i++ {
		face := &b.faces[i]
		toSupport := support.Sub(b.vertices[face.Vertices[0]].V)

		if toSupport.Dot(face.Normal) > 0 {
			b.visible[b.numVisible] = i
			b.numVisible++
		}
	}
}

// findBoundaryEdges counts every edge of the visible faces. Edges shared by two
// visible faces are internal (Count == 2); the others form the horizon.
func (b *PolytopeBuilder) findBoundaryEdges() {
	b.numEdges = 0

	for i := 0; i < b.numVisible; i++ {
		face := &b.faces[b.visible[i]]

		for j := 0; j < 3; j++ {
			edgeA, edgeB := face.Vertices[j], face.Vertices[(j+1)%3]
			if edgeA > edgeB {
				edgeA, edgeB = edgeB, edgeA
			}

			if idx := b.findEdgeIndex(edgeA, edgeB); idx >= 0 {
				b.edges[idx].Count++
				continue
			}

			b.edges[b.numEdges] = EdgeEntry{A: edgeA, B: edgeB, Count: 1}
			b.numEdges++
		}
	}
}

func (b *PolytopeBuilder) findEdgeIndex(edgeA, edgeB int) int {
	for i := 0; i < b.numEdges; i++ {
		if b.edges[i].A == edgeA && b.edges[i].B == edgeB {
			return i
		}
	}
	return -1
}

// removeVisibleFaces removes the visible faces with the swap-with-last pattern.
// visible is filled in ascending order, so walking it backwards never moves a
// face that still has to be removed.
func (b *PolytopeBuilder) removeVisibleFaces() {
	for i := b.numVisible - 1; i >= 0; i-- {
		idx := b.visible[i]
		b.faces[idx] = b.faces[b.numFaces-1]
		b.numFaces--
	}
	b.numVisible = 0
}

// AddPointAndRebuildFaces expands the polytope with a new support point:
//  1. Finds the faces visible from the point
//  2. Collects the horizon edges of the visible region
//  3. Removes the visible faces
//  4. Connects every horizon edge to the new point
//
// The polytope is left untouched, and expanded is false, when the point sees no
// face or when a buffer would overflow (full).
func (b *PolytopeBuilder) AddPointAndRebuildFaces(support gjk.SupportPoint) (expanded bool, full bool) {
	b.findVisibleFaces(support.V)
	if b.numVisible == 0 {
		return false, false
	}

	b.findBoundaryEdges()

	horizon := 0
	for i := 0; i < b.numEdges; i++ {
		if b.edges[i].Count == 1 {
			horizon++
		}
	}
	if b.numVertices == MaxVertices || b.numFaces-b.numVisible+horizon > MaxFaces {
		return false, true
	}

	index := b.addVertex(support)
	b.removeVisibleFaces()

	for i := 0; i < b.numEdges; i++ {
		edge := &b.edges[i]
		if edge.Count != 1 {
			continue
		}
		b.appendFace(edge.A, edge.B, index)
	}

	return true, false
}

// contactFromFace projects the origin on a face and interpolates the core points
// of A and B with the resulting barycentric coordinates.
func (b *PolytopeBuilder) contactFromFace(face *Face) Result {
	v0 := &b.vertices[face.Vertices[0]]
	v1 := &b.vertices[face.Vertices[1]]
	v2 := &b.vertices[face.Vertices[2]]

	weights := projectOrigin(v0.V, v1.V, v2.V, face.Normal, face.Distance)

	closestA := v0.A.Mul(weights[0]).Add(v1.A.Mul(weights[1])).Add(v2.A.Mul(weights[2]))
	closestB := v0.B.Mul(weights[0]).Add(v1.B.Mul(weights[1])).Add(v2.B.Mul(weights[2]))

	dominant := v0
	best := weights[0]
	if weights[1] > best {
		dominant, best = v1, weights[1]
	}
	if weights[2] > best {
		dominant = v2
	}

	return Result{
		Depth:    face.Distance,
		Normal:   face.Normal,
		ClosestA: closestA,
		ClosestB: closestB,
		VertexA:  dominant.VertexA,
		VertexB:  dominant.VertexB,
	}
}

// scale is the largest absolute coordinate among the vertices, at least 1
func (b *PolytopeBuilder) scale() float64 {
	s := 1.0
	for i := 0; i < b.numVertices; i++ {
		v := b.vertices[i].V
		s = math.Max(s, math.Max(math.Abs(v[0]), math.Max(math.Abs(v[1]), math.Abs(v[2]))))
	}
	return s
}
