package decal

import "github.com/taigrr/decal/pkg/math3d"

// ProjectUV maps a projector-local position to texture coordinates.
// Local X and Y in [-0.5, 0.5] map linearly to [0, 1]; drift past the box
// edges is clamped.
func ProjectUV(local math3d.Vec3) math3d.Vec2 {
	return math3d.V2(local.X+0.5, local.Y+0.5).Clamp01()
}
