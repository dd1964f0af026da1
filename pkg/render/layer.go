package render

import (
	"sync/atomic"

	"github.com/taigrr/decal/pkg/decal"
	"github.com/taigrr/decal/pkg/math3d"
)

// Layer holds the current decal mesh of one projector. It implements
// decal.Target: a rebuild replaces the mesh in one atomic store, so a frame
// being drawn concurrently sees either the old mesh or the new one.
type Layer struct {
	Texture *Texture

	mesh    atomic.Pointer[decal.Mesh]
	version atomic.Uint64
}

var _ decal.Target = (*Layer)(nil)

// NewLayer creates an empty layer drawn with tex.
func NewLayer(tex *Texture) *Layer {
	return &Layer{Texture: tex}
}

// SetDecalMesh publishes a new mesh. The slices are retained, not copied.
func (l *Layer) SetDecalMesh(positions, normals []math3d.Vec3, uvs []math3d.Vec2, indices []int) {
	l.mesh.Store(&decal.Mesh{
		Positions: positions,
		Normals:   normals,
		UVs:       uvs,
		Indices:   indices,
	})
	l.version.Add(1)
}

// ClearDecalMesh removes the current mesh.
func (l *Layer) ClearDecalMesh() {
	l.mesh.Store(nil)
	l.version.Add(1)
}

// Mesh returns the current mesh, or nil.
func (l *Layer) Mesh() *decal.Mesh {
	return l.mesh.Load()
}

// Version increases on every update, letting a renderer skip unchanged
// frames.
func (l *Layer) Version() uint64 {
	return l.version.Load()
}

// Draw renders the layer with r.
func (l *Layer) Draw(r *Rasterizer, lightDir math3d.Vec3) {
	r.DrawDecal(l.Mesh(), l.Texture, lightDir)
}
