package decal

import (
	"github.com/taigrr/decal/pkg/geom"
	"github.com/taigrr/decal/pkg/math3d"
)

// Bounds returns the world-space axis-aligned box enclosing the projector's
// oriented unit box. A zero scale component collapses that dimension.
func Bounds(t math3d.Transform) geom.AABB {
	half := t.Scale.Abs().Scale(0.5)
	cube := geom.NewAABB(half.Negate(), half)
	return cube.TransformOriented(t.TransformDirection, t.Position)
}
