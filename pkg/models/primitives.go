package models

import (
	"github.com/taigrr/decal/pkg/math3d"
)

// NewQuad creates a unit square in the XY plane centred at the origin,
// facing +Z, split into two counter-clockwise triangles.
func NewQuad(name string) *Mesh {
	m := NewMesh(name)
	n := math3d.Back()
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(-0.5, -0.5, 0), Normal: n, UV: math3d.V2(0, 0)},
		{Position: math3d.V3(0.5, -0.5, 0), Normal: n, UV: math3d.V2(1, 0)},
		{Position: math3d.V3(0.5, 0.5, 0), Normal: n, UV: math3d.V2(1, 1)},
		{Position: math3d.V3(-0.5, 0.5, 0), Normal: n, UV: math3d.V2(0, 1)},
	}
	m.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: -1},
		{V: [3]int{0, 2, 3}, Material: -1},
	}
	m.CalculateBounds()
	return m
}

// NewBox creates an axis-aligned unit cube centred at the origin with flat
// per-face normals (24 vertices, 12 triangles).
func NewBox(name string) *Mesh {
	m := NewMesh(name)

	// Each face: normal plus the two in-plane axes (u x v = normal)
	faces := []struct{ n, u, v math3d.Vec3 }{
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	}

	for _, f := range faces {
		base := len(m.Vertices)
		center := f.n.Scale(0.5)
		for _, c := range [4][2]float64{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}} {
			pos := center.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1]))
			m.Vertices = append(m.Vertices, MeshVertex{
				Position: pos,
				Normal:   f.n,
				UV:       math3d.V2(c[0]+0.5, c[1]+0.5),
			})
		}
		m.Faces = append(m.Faces,
			Face{V: [3]int{base, base + 1, base + 2}, Material: -1},
			Face{V: [3]int{base, base + 2, base + 3}, Material: -1},
		)
	}

	m.CalculateBounds()
	return m
}
