package decal

import "github.com/taigrr/decal/pkg/math3d"

// Mesh is the combined decal geometry of one projector, in world space.
// Indices are triangle triples into Positions. A nil *Mesh means the
// projector has no geometry to show.
type Mesh struct {
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	UVs       []math3d.Vec2
	Indices   []int
}

// Empty reports whether the mesh has no vertices. It is safe on nil.
func (m *Mesh) Empty() bool {
	return m == nil || len(m.Positions) == 0
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// ToLocal returns a copy of the mesh in the projector's local space, for
// consumers that parent the mesh to the projector. It returns nil when the
// mesh is empty or the projector scale is degenerate.
func (m *Mesh) ToLocal(p *Projector) *Mesh {
	if m.Empty() {
		return nil
	}
	toLocal, ok := p.WorldToLocal()
	if !ok {
		return nil
	}
	normalMat := p.LocalToWorld()
	out := &Mesh{
		Positions: make([]math3d.Vec3, len(m.Positions)),
		Normals:   make([]math3d.Vec3, len(m.Normals)),
		UVs:       append([]math3d.Vec2(nil), m.UVs...),
		Indices:   append([]int(nil), m.Indices...),
	}
	for i, pos := range m.Positions {
		out.Positions[i] = toLocal.MulVec3(pos)
	}
	for i, n := range m.Normals {
		out.Normals[i] = normalMat.MulNormal(n)
	}
	return out
}

// Assemble concatenates fragments into one mesh, rebasing each fragment's
// indices by the number of vertices before it. It returns nil when the
// fragments hold no vertices.
func Assemble(fragments []*Fragment) *Mesh {
	var verts, indices int
	for _, f := range fragments {
		if f == nil {
			continue
		}
		verts += len(f.Vertices)
		indices += len(f.Indices)
	}
	if verts == 0 {
		return nil
	}

	m := &Mesh{
		Positions: make([]math3d.Vec3, 0, verts),
		Normals:   make([]math3d.Vec3, 0, verts),
		UVs:       make([]math3d.Vec2, 0, verts),
		Indices:   make([]int, 0, indices),
	}
	for _, f := range fragments {
		if f == nil {
			continue
		}
		base := len(m.Positions)
		for _, v := range f.Vertices {
			m.Positions = append(m.Positions, v.Position)
			m.Normals = append(m.Normals, v.Normal)
			m.UVs = append(m.UVs, v.UV)
		}
		for _, i := range f.Indices {
			m.Indices = append(m.Indices, base+i)
		}
	}
	return m
}
