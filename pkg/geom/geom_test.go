package geom

import (
	"math"
	"testing"

	"github.com/taigrr/decal/pkg/math3d"
)

func TestAABBBasics(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -2, -3), math3d.V3(1, 2, 3))

	center := box.Center()
	if center.X != 0 || center.Y != 0 || center.Z != 0 {
		t.Errorf("center = %v, want (0, 0, 0)", center)
	}

	size := box.Size()
	if size.X != 2 || size.Y != 4 || size.Z != 6 {
		t.Errorf("size = %v, want (2, 4, 6)", size)
	}

	ext := box.Extents()
	if ext.X != 1 || ext.Y != 2 || ext.Z != 3 {
		t.Errorf("extents = %v, want (1, 2, 3)", ext)
	}
}

func TestFromCenterSize(t *testing.T) {
	box := FromCenterSize(math3d.V3(1, 1, 1), math3d.V3(2, 0, -4))
	if box.Min != math3d.V3(0, 1, -1) || box.Max != math3d.V3(2, 1, 3) {
		t.Errorf("got %v", box)
	}
}

func TestAABBExpand(t *testing.T) {
	box := NewAABB(math3d.V3(0, 0, 0), math3d.V3(1, 2, 0)).Expand(0.5)
	if box.Min != math3d.V3(-0.5, -0.5, -0.5) || box.Max != math3d.V3(1.5, 2.5, 0.5) {
		t.Errorf("expanded = %v, want (-0.5,-0.5,-0.5)-(1.5,2.5,0.5)", box)
	}
}

func TestAABBIntersects(t *testing.T) {
	box := NewAABB(math3d.V3(0, 0, 0), math3d.V3(1, 1, 1))

	tests := []struct {
		name  string
		other AABB
		want  bool
	}{
		{"overlap", NewAABB(math3d.V3(0.5, 0.5, 0.5), math3d.V3(2, 2, 2)), true},
		{"inside", NewAABB(math3d.V3(0.2, 0.2, 0.2), math3d.V3(0.3, 0.3, 0.3)), true},
		{"touching face", NewAABB(math3d.V3(1, 0, 0), math3d.V3(2, 1, 1)), true},
		{"flat on top", NewAABB(math3d.V3(0, 1, 0), math3d.V3(1, 1, 1)), true},
		{"separate X", NewAABB(math3d.V3(1.1, 0, 0), math3d.V3(2, 1, 1)), false},
		{"separate Z", NewAABB(math3d.V3(0, 0, -3), math3d.V3(1, 1, -0.1)), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := box.Intersects(tc.other); got != tc.want {
				t.Errorf("Intersects = %v, want %v", got, tc.want)
			}
			if got := tc.other.Intersects(box); got != tc.want {
				t.Errorf("Intersects (swapped) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	t.Run("translation", func(t *testing.T) {
		transformed := box.Transform(math3d.Translate(math3d.V3(10, 20, 30)))
		if transformed.Min != math3d.V3(9, 19, 29) || transformed.Max != math3d.V3(11, 21, 31) {
			t.Errorf("translated = %v", transformed)
		}
	})

	t.Run("rotation", func(t *testing.T) {
		transformed := box.Transform(math3d.RotateY(math.Pi / 4))
		want := math.Sqrt2
		if math.Abs(transformed.Max.X-want) > 1e-9 || math.Abs(transformed.Max.Z-want) > 1e-9 {
			t.Errorf("rotated max = %v, want (%v, 1, %v)", transformed.Max, want, want)
		}
	})
}

func TestPlaneDistanceToPoint(t *testing.T) {
	plane := NewPlane(math3d.V3(0, 0, 1), math3d.V3(0, 0, 2))

	tests := []struct {
		name  string
		point math3d.Vec3
		want  float64
	}{
		{"on plane", math3d.V3(3, 4, 2), 0},
		{"in front", math3d.V3(0, 0, 5), 3},
		{"behind", math3d.V3(0, 0, -1), -3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := plane.DistanceToPoint(tc.point); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if l := plane.Normal.Len(); math.Abs(l-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", l)
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

func pointPos(p math3d.Vec3) math3d.Vec3 { return p }

func pointLerp(a, b math3d.Vec3, t float64) math3d.Vec3 { return a.Lerp(b, t) }

func TestClipPolygon(t *testing.T) {
	tri := []math3d.Vec3{
		math3d.V3(-1, 0, 0),
		math3d.V3(1, 0, 0),
		math3d.V3(0, 2, 0),
	}

	t.Run("fully inside", func(t *testing.T) {
		pl := NewPlane(math3d.V3(0, 1, 0), math3d.V3(0, -1, 0))
		got := ClipPolygon(tri, pl, pointPos, pointLerp, nil)
		if len(got) != 3 {
			t.Errorf("got %d vertices, want 3", len(got))
		}
	})

	t.Run("fully outside", func(t *testing.T) {
		pl := NewPlane(math3d.V3(0, 1, 0), math3d.V3(0, 3, 0))
		got := ClipPolygon(tri, pl, pointPos, pointLerp, nil)
		if len(got) != 0 {
			t.Errorf("got %d vertices, want 0", len(got))
		}
	})

	t.Run("cut through", func(t *testing.T) {
		// Keep y >= 1: the apex survives plus two edge intersections
		pl := NewPlane(math3d.V3(0, 1, 0), math3d.V3(0, 1, 0))
		got := ClipPolygon(tri, pl, pointPos, pointLerp, nil)
		if len(got) != 3 {
			t.Fatalf("got %d vertices, want 3", len(got))
		}
		for _, p := range got {
			if p.Y < 1-1e-9 {
				t.Errorf("vertex %v below clip plane", p)
			}
		}
	})
}

func TestClipPolygonTinyCrossing(t *testing.T) {
	// The edge from a to b straddles x = 0 by 1e-13 on each side; its
	// intersection is dropped instead of dividing by a vanishing difference.
	poly := []math3d.Vec3{
		math3d.V3(1e-13, 0, 0),
		math3d.V3(-1e-13, 1, 0),
		math3d.V3(1, 0.5, 0),
	}
	pl := NewPlane(math3d.V3(1, 0, 0), math3d.Zero3())

	got := ClipPolygon(poly, pl, pointPos, pointLerp, nil)
	if len(got) != 3 {
		t.Fatalf("got %d vertices, want 3", len(got))
	}
	for _, p := range got {
		if !p.IsFinite() {
			t.Errorf("vertex %v is not finite", p)
		}
		if p.X < -1e-12 {
			t.Errorf("vertex %v behind clip plane", p)
		}
	}
}

func TestClipConvexUnitCube(t *testing.T) {
	// A large triangle in the z=0 plane covering the whole cube cross-section
	tri := []math3d.Vec3{
		math3d.V3(-10, -10, 0),
		math3d.V3(10, -10, 0),
		math3d.V3(0, 10, 0),
	}
	planes := UnitCubePlanes(0.5)
	got := ClipConvex(tri, planes[:], pointPos, pointLerp, nil, nil)

	if len(got) != 4 {
		t.Fatalf("got %d vertices, want the 4 square corners", len(got))
	}
	for _, p := range got {
		if math.Abs(p.X) > 0.5+1e-9 || math.Abs(p.Y) > 0.5+1e-9 || p.Z != 0 {
			t.Errorf("vertex %v outside unit cube", p)
		}
	}
}

func TestFanTriangulate(t *testing.T) {
	var tris [][3]int
	FanTriangulate(5, func(a, b, c int) {
		tris = append(tris, [3]int{a, b, c})
	})
	want := [][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}
	if len(tris) != len(want) {
		t.Fatalf("got %d triangles, want %d", len(tris), len(want))
	}
	for i := range want {
		if tris[i] != want[i] {
			t.Errorf("triangle %d = %v, want %v", i, tris[i], want[i])
		}
	}

	FanTriangulate(2, func(a, b, c int) {
		t.Error("degenerate polygon must not emit triangles")
	})
}
