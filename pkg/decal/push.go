package decal

import "github.com/taigrr/decal/pkg/math3d"

// Push moves every vertex of f by distance along the world-space facing axis.
// The offset is applied in world space so the gap does not depend on the
// projector's scale.
func Push(f *Fragment, facing math3d.Vec3, distance float64) {
	if f == nil || distance == 0 {
		return
	}
	off := facing.Normalize().Scale(distance)
	for i := range f.Vertices {
		f.Vertices[i].Position = f.Vertices[i].Position.Add(off)
	}
}
