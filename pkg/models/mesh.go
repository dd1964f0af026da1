// Package models provides triangle meshes and glTF loading for the scene
// geometry decals are projected onto.
package models

import (
	"image"

	"github.com/taigrr/decal/pkg/geom"
	"github.com/taigrr/decal/pkg/math3d"
)

// Mesh is an indexed triangle mesh in object space.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	bounds geom.AABB
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face is a counter-clockwise triangle.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material represents a PBR material from glTF. A decal projector also holds
// one: a projector without a material never produces a mesh.
type Material struct {
	Name       string
	BaseColor  [4]float64  // RGBA in 0-1 range
	Metallic   float64     // 0 = dielectric, 1 = metal
	Roughness  float64     // 0 = smooth, 1 = rough
	BaseMap    image.Image // Optional base color texture
	HasTexture bool
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds recomputes the object-space bounds. Call it after editing
// Vertices directly.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.bounds = geom.AABB{}
		return
	}
	lo, hi := m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	m.bounds = geom.NewAABB(lo, hi)
}

// Bounds returns the object-space axis-aligned bounding box.
func (m *Mesh) Bounds() geom.AABB {
	return m.bounds
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceNormal returns the unnormalized geometric normal of face i. Its length
// is twice the triangle area.
func (m *Mesh) FaceNormal(i int) math3d.Vec3 {
	f := m.Faces[i].V
	p0 := m.Vertices[f[0]].Position
	return m.Vertices[f[1]].Position.Sub(p0).Cross(m.Vertices[f[2]].Position.Sub(p0))
}

// CalculateNormals replaces the vertex normals with geometric ones. Smooth
// normals are area weighted across shared vertices; otherwise the last face
// touching a vertex wins.
func (m *Mesh) CalculateNormals(smooth bool) {
	if smooth {
		for i := range m.Vertices {
			m.Vertices[i].Normal = math3d.Vec3{}
		}
	}
	for i, f := range m.Faces {
		n := m.FaceNormal(i)
		if !smooth {
			n = n.Normalize()
		}
		for _, vi := range f.V {
			if smooth {
				m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(n)
			} else {
				m.Vertices[vi].Normal = n
			}
		}
	}
	if smooth {
		for i := range m.Vertices {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
		}
	}
}

// Transform bakes mat into the vertices.
// Normals use the inverse transpose so they survive non-uniform scale.
func (m *Mesh) Transform(mat math3d.Mat4) {
	inv := mat.Inverse()
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = inv.MulNormal(m.Vertices[i].Normal)
	}
	m.CalculateBounds()
}

// Append copies the vertices, faces and materials of other into m, rebasing
// vertex and material indices.
func (m *Mesh) Append(other *Mesh) {
	base := len(m.Vertices)
	matBase := len(m.Materials)
	m.Vertices = append(m.Vertices, other.Vertices...)
	m.Materials = append(m.Materials, other.Materials...)
	for _, f := range other.Faces {
		f.V = [3]int{f.V[0] + base, f.V[1] + base, f.V[2] + base}
		if f.Material >= 0 {
			f.Material += matBase
		}
		m.Faces = append(m.Faces, f)
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh. Material images are shared.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = append([]MeshVertex(nil), m.Vertices...)
	c.Faces = append([]Face(nil), m.Faces...)
	c.Materials = append([]Material(nil), m.Materials...)
	return &c
}

// GetVertex returns the position, normal, and UV for vertex i.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetFaceMaterial returns the material index for face i, or -1.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i, or nil when i is out of
// range.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}
