package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Helper functions
func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

type supportCase struct {
	name      string
	direction mgl64.Vec3
	margin    float64
	point     mgl64.Vec3
	index     int
}

func runSupport(t *testing.T, shape Shape, tests []supportCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, index := shape.Support(tt.direction, tt.margin)
			if !vec3Equal(point, tt.point, 1e-9) {
				t.Errorf("Support(%v, %v) = %v, want %v", tt.direction, tt.margin, point, tt.point)
			}
			if index != tt.index {
				t.Errorf("Support(%v, %v) index = %d, want %d", tt.direction, tt.margin, index, tt.index)
			}
		})
	}
}

// ========== SUPPORT ==========

func TestSphereSupport(t *testing.T) {
	sphere := &Sphere{Center: mgl64.Vec3{1, 2, 3}, Radius: 0.5}

	runSupport(t, sphere, []supportCase{
		{"core only", mgl64.Vec3{0, 0, 2}, 0, mgl64.Vec3{1, 2, 3}, 0},
		{"full surface", mgl64.Vec3{0, 0, 2}, 0.5, mgl64.Vec3{1, 2, 3.5}, 0},
		{"diagonal", mgl64.Vec3{1, 1, 0}, math.Sqrt2, mgl64.Vec3{2, 3, 3}, 0},
		{"zero direction keeps the core", mgl64.Vec3{}, 0.5, mgl64.Vec3{1, 2, 3}, 0},
	})
}

func TestBoxSupport(t *testing.T) {
	t.Run("sharp", func(t *testing.T) {
		box := &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}

		runSupport(t, box, []supportCase{
			{"all positive", mgl64.Vec3{1, 1, 1}, 0, mgl64.Vec3{1, 2, 3}, 7},
			{"all negative", mgl64.Vec3{-1, -1, -1}, 0, mgl64.Vec3{-1, -2, -3}, 0},
			{"mixed", mgl64.Vec3{1, -1, 1}, 0, mgl64.Vec3{1, -2, 3}, 5},
			{"zero components pick the positive side", mgl64.Vec3{-1, 0, 0}, 0, mgl64.Vec3{-1, 2, 3}, 6},
		})
	})

	t.Run("rounded", func(t *testing.T) {
		box := &Box{Center: mgl64.Vec3{10, 0, 0}, HalfExtents: mgl64.Vec3{1, 2, 3}, Radius: 0.5}

		if box.Margin() != 0.5 {
			t.Errorf("Margin() = %v, want 0.5", box.Margin())
		}

		runSupport(t, box, []supportCase{
			{"core corner", mgl64.Vec3{1, -1, 1}, 0, mgl64.Vec3{10.5, -1.5, 2.5}, 5},
			{"face keeps the full extent", mgl64.Vec3{1, 1e-9, 1e-9}, 0.5, mgl64.Vec3{11, 1.5, 2.5}, 7},
		})
	})

	t.Run("radius larger than the box", func(t *testing.T) {
		box := &Box{HalfExtents: mgl64.Vec3{1, 1, 1}, Radius: 2}

		point, _ := box.Support(mgl64.Vec3{1, 1, 1}, 0)
		if point != (mgl64.Vec3{}) {
			t.Errorf("Support() = %v, want the core collapsed to the center", point)
		}
	})
}

func TestNewBoxMinMax(t *testing.T) {
	box := NewBoxMinMax(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{3, 6, 9})

	if box.Center != (mgl64.Vec3{2, 4, 6}) {
		t.Errorf("Center = %v, want (2, 4, 6)", box.Center)
	}
	if box.HalfExtents != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("HalfExtents = %v, want (1, 2, 3)", box.HalfExtents)
	}
	if box.Margin() != 0 {
		t.Errorf("Margin() = %v, want 0", box.Margin())
	}

	bounds := box.Bounds()
	if bounds.Min != (mgl64.Vec3{1, 2, 3}) || bounds.Max != (mgl64.Vec3{3, 6, 9}) {
		t.Errorf("Bounds() = %v, want the min/max it was built from", bounds)
	}
}

func TestCapsuleSupport(t *testing.T) {
	capsule := &Capsule{A: mgl64.Vec3{0, 0, -1}, B: mgl64.Vec3{0, 0, 1}, Radius: 0.5}

	runSupport(t, capsule, []supportCase{
		{"towards B", mgl64.Vec3{0, 0, 1}, 0, mgl64.Vec3{0, 0, 1}, 1},
		{"towards A", mgl64.Vec3{0, 0, -1}, 0.5, mgl64.Vec3{0, 0, -1.5}, 0},
		{"perpendicular tie keeps A", mgl64.Vec3{1, 0, 0}, 0.5, mgl64.Vec3{0.5, 0, -1}, 0},
		{"slanted", mgl64.Vec3{3, 0, 4}, 0.5, mgl64.Vec3{0.3, 0, 1.4}, 1},
	})
}

func TestConvexSupport(t *testing.T) {
	convex := &Convex{
		Vertices: []mgl64.Vec3{
			{0, 0, 0},
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
			{0.1, 0.1, 0.1},
		},
		Radius: 0.25,
	}

	runSupport(t, convex, []supportCase{
		{"single vertex", mgl64.Vec3{-1, -1, -1}, 0, mgl64.Vec3{0, 0, 0}, 0},
		{"tie keeps the first vertex", mgl64.Vec3{1, 1, 0}, 0, mgl64.Vec3{1, 0, 0}, 1},
		{"interior point is never returned", mgl64.Vec3{1, 1, 1}, 0, mgl64.Vec3{1, 0, 0}, 1},
		{"rounded", mgl64.Vec3{0, 0, 2}, 0.25, mgl64.Vec3{0, 0, 1.25}, 3},
	})

	t.Run("empty", func(t *testing.T) {
		point, index := (&Convex{}).Support(mgl64.Vec3{1, 0, 0}, 0)
		if point != (mgl64.Vec3{}) || index != -1 {
			t.Errorf("Support() = %v, %d, want the origin and -1", point, index)
		}
	})

	bounds := convex.Bounds()
	if bounds.Min != (mgl64.Vec3{-0.25, -0.25, -0.25}) || bounds.Max != (mgl64.Vec3{1.25, 1.25, 1.25}) {
		t.Errorf("Bounds() = %v", bounds)
	}
}

func TestScaledSupport(t *testing.T) {
	t.Run("uniform scale keeps a point core", func(t *testing.T) {
		scaled := &Scaled{Inner: &Sphere{Radius: 1}, Scale: mgl64.Vec3{2, 2, 2}}

		if scaled.Margin() != 2 {
			t.Errorf("Margin() = %v, want 2", scaled.Margin())
		}
		runSupport(t, scaled, []supportCase{
			{"core", mgl64.Vec3{1, 0, 0}, 0, mgl64.Vec3{0, 0, 0}, 0},
			{"surface", mgl64.Vec3{1, 0, 0}, 2, mgl64.Vec3{2, 0, 0}, 0},
		})
	})

	t.Run("mirrored uniform scale", func(t *testing.T) {
		scaled := &Scaled{Inner: &Sphere{Radius: 1}, Scale: mgl64.Vec3{-2, -2, -2}}
		if scaled.Margin() != 2 {
			t.Errorf("Margin() = %v, want 2", scaled.Margin())
		}
	})

	t.Run("non-uniform scale folds the margin into the core", func(t *testing.T) {
		scaled := &Scaled{Inner: &Sphere{Radius: 1}, Scale: mgl64.Vec3{2, 1, 1}}

		if scaled.Margin() != 0 {
			t.Errorf("Margin() = %v, want 0", scaled.Margin())
		}
		runSupport(t, scaled, []supportCase{
			{"long axis", mgl64.Vec3{1, 0, 0}, 0, mgl64.Vec3{2, 0, 0}, 0},
			{"short axis", mgl64.Vec3{0, 1, 0}, 0, mgl64.Vec3{0, 1, 0}, 0},
		})
	})

	t.Run("box with a mirrored axis", func(t *testing.T) {
		scaled := &Scaled{Inner: &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, Scale: mgl64.Vec3{2, -1, 1}}

		// The inner box is queried along (2, -1, 1): corner (1, -1, 1)
		runSupport(t, scaled, []supportCase{
			{"corner", mgl64.Vec3{1, 1, 1}, 0, mgl64.Vec3{2, 1, 1}, 5},
		})

		bounds := scaled.Bounds()
		if bounds.Min != (mgl64.Vec3{-2, -1, -1}) || bounds.Max != (mgl64.Vec3{2, 1, 1}) {
			t.Errorf("Bounds() = %v", bounds)
		}
	})
}

func TestTransformedSupport(t *testing.T) {
	transformed := &Transformed{
		Inner:     &Box{HalfExtents: mgl64.Vec3{1, 2, 3}, Radius: 0.25},
		Transform: NewTransform(mgl64.Vec3{10, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})),
	}

	if transformed.Margin() != 0.25 {
		t.Errorf("Margin() = %v, want the inner margin", transformed.Margin())
	}

	// (1, 0.1, 0.1) is (0.1, -1, 0.1) locally: core corner (0.75, -1.75, 2.75)
	runSupport(t, transformed, []supportCase{
		{"core corner", mgl64.Vec3{1, 0.1, 0.1}, 0, mgl64.Vec3{11.75, 0.75, 2.75}, 5},
	})

	bounds := transformed.Bounds()
	if !vec3Equal(bounds.Min, mgl64.Vec3{8, -1, -3}, 1e-9) || !vec3Equal(bounds.Max, mgl64.Vec3{12, 1, 3}, 1e-9) {
		t.Errorf("Bounds() = %v, want (8, -1, -3) to (12, 1, 3)", bounds)
	}
}

// ========== CONSISTENCY ==========

func TestShapeSupportWithinBounds(t *testing.T) {
	shapes := []Shape{
		&Sphere{Center: mgl64.Vec3{1, -2, 0}, Radius: 0.7},
		&Box{Center: mgl64.Vec3{0, 1, 0}, HalfExtents: mgl64.Vec3{1, 2, 0.5}, Radius: 0.1},
		&Capsule{A: mgl64.Vec3{-1, 0, 0}, B: mgl64.Vec3{1, 2, 3}, Radius: 0.3},
		&Convex{Vertices: []mgl64.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}, {0, 0, 2}}, Radius: 0.2},
		&Scaled{Inner: &Capsule{A: mgl64.Vec3{0, 0, -1}, B: mgl64.Vec3{0, 0, 1}, Radius: 0.5}, Scale: mgl64.Vec3{1, 3, 0.5}},
		&Transformed{
			Inner:     &Box{HalfExtents: mgl64.Vec3{1, 2, 3}, Radius: 0.2},
			Transform: NewTransform(mgl64.Vec3{0, 5, 0}, mgl64.QuatRotate(0.6, mgl64.Vec3{1, 1, 0}.Normalize())),
		},
	}

	var directions []mgl64.Vec3
	for _, x := range []float64{-1, -0.3, 0, 0.5, 1} {
		for _, y := range []float64{-1, 0, 0.7} {
			for _, z := range []float64{-0.2, 0, 1} {
				if x != 0 || y != 0 || z != 0 {
					directions = append(directions, mgl64.Vec3{x, y, z})
				}
			}
		}
	}

	for _, shape := range shapes {
		t.Run(shape.Type().String(), func(t *testing.T) {
			bounds := shape.Bounds().Inflate(1e-9)

			for _, d := range directions {
				point, _ := shape.Support(d, shape.Margin())
				if !bounds.ContainsPoint(point) {
					t.Errorf("Support(%v) = %v lies outside Bounds() %v", d, point, bounds)
				}

				// The support point maximizes the projection: a second query
				// along the same direction scaled up must agree.
				again, _ := shape.Support(d.Mul(3), shape.Margin())
				if !vec3Equal(point, again, 1e-9) {
					t.Errorf("Support(%v) = %v depends on the direction length (%v)", d, point, again)
				}
			}
		})
	}
}

func TestShapeTypeString(t *testing.T) {
	tests := []struct {
		shapeType ShapeType
		want      string
	}{
		{ShapeTypeSphere, "sphere"},
		{ShapeTypeBox, "box"},
		{ShapeTypeCapsule, "capsule"},
		{ShapeTypeConvex, "convex"},
		{ShapeTypeScaled, "scaled"},
		{ShapeTypeTransformed, "transformed"},
		{ShapeType(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.shapeType.String(); got != tt.want {
			t.Errorf("ShapeType(%d).String() = %q, want %q", tt.shapeType, got, tt.want)
		}
	}
}
