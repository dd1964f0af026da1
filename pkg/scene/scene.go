// Package scene holds the renderable objects decals are projected onto and
// answers bounding-volume queries against them.
package scene

import (
	"github.com/taigrr/decal/pkg/geom"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/models"
)

// Renderable is a scene object that can receive decals.
type Renderable interface {
	Name() string
	Enabled() bool
	Layer() int
	WorldBounds() geom.AABB
	// HasProjector reports whether the object itself projects a decal.
	// Projectors never receive decals.
	HasProjector() bool
	LocalToWorld() math3d.Mat4
	WorldToLocal() math3d.Mat4
	// Geometry returns the object-space triangles.
	Geometry() *models.Mesh
}

// Query finds renderables whose world bounds intersect a box.
// Implementations must return results in a stable order and must never
// return nil entries, including interfaces holding a nil pointer.
type Query interface {
	FindIntersecting(box geom.AABB, mask LayerMask) []Renderable
}

// QueryFunc adapts a function to the Query interface.
type QueryFunc func(box geom.AABB, mask LayerMask) []Renderable

// FindIntersecting calls f.
func (f QueryFunc) FindIntersecting(box geom.AABB, mask LayerMask) []Renderable {
	return f(box, mask)
}

// List is a Query over a fixed slice, tested by brute force in slice order.
type List []Renderable

// FindIntersecting returns every enabled object in the list whose layer
// matches and whose bounds overlap box.
func (l List) FindIntersecting(box geom.AABB, mask LayerMask) []Renderable {
	var out []Renderable
	for _, r := range l {
		if r.Enabled() && mask.Contains(r.Layer()) && r.WorldBounds().Intersects(box) {
			out = append(out, r)
		}
	}
	return out
}

// LayerMask selects render layers.
//
// A negative mask matches every layer. Otherwise the two low bits are
// reserved for built-in layers and skipped: the mask shifted right by two is
// ANDed with the layer value.
type LayerMask int32

// AllLayers matches every layer.
const AllLayers LayerMask = -1

// Contains reports whether the mask selects layer.
func (m LayerMask) Contains(layer int) bool {
	if m < 0 {
		return true
	}
	return (int(m)>>2)&layer != 0
}
