package scene

import (
	"github.com/taigrr/decal/pkg/geom"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/models"
)

// Object is the Renderable stored by Scene.
//
// Objects are mutated through Scene methods so the spatial index stays in
// sync. They must not be mutated while a decal rebuild reads them.
type Object struct {
	name         string
	mesh         *models.Mesh
	layer        int
	enabled      bool
	hasProjector bool

	localToWorld math3d.Mat4
	worldToLocal math3d.Mat4
	bounds       geom.AABB

	seq uint64 // insertion order, assigned by Scene.Add
}

// NewObject creates an enabled object on layer 0 placed by transform.
func NewObject(name string, mesh *models.Mesh, transform math3d.Mat4) *Object {
	o := &Object{
		name:    name,
		mesh:    mesh,
		enabled: true,
	}
	o.setTransform(transform)
	return o
}

// WithLayer sets the render layer and returns the object for chaining.
// Call before adding the object to a Scene.
func (o *Object) WithLayer(layer int) *Object {
	o.layer = layer
	return o
}

// WithProjector marks the object as carrying a decal projector.
// Call before adding the object to a Scene.
func (o *Object) WithProjector() *Object {
	o.hasProjector = true
	return o
}

func (o *Object) setTransform(m math3d.Mat4) {
	o.localToWorld = m
	o.worldToLocal = m.Inverse()
	if o.mesh != nil && o.mesh.VertexCount() > 0 {
		o.bounds = o.mesh.Bounds().Transform(m)
	} else {
		p := m.Translation()
		o.bounds = geom.NewAABB(p, p)
	}
}

// Name returns the object name.
func (o *Object) Name() string { return o.name }

// Enabled reports whether the object is rendered.
func (o *Object) Enabled() bool { return o.enabled }

// Layer returns the render layer.
func (o *Object) Layer() int { return o.layer }

// WorldBounds returns the world-space bounds of the transformed mesh.
func (o *Object) WorldBounds() geom.AABB { return o.bounds }

// HasProjector reports whether the object carries a decal projector.
func (o *Object) HasProjector() bool { return o.hasProjector }

// LocalToWorld returns the object's world matrix.
func (o *Object) LocalToWorld() math3d.Mat4 { return o.localToWorld }

// WorldToLocal returns the inverse of the world matrix.
func (o *Object) WorldToLocal() math3d.Mat4 { return o.worldToLocal }

// Geometry returns the object-space mesh.
func (o *Object) Geometry() *models.Mesh { return o.mesh }
