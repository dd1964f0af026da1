// Package geom provides the bounding volumes, planes and convex polygon
// clipping shared by the decal pipeline and the preview renderer.
package geom

import (
	"github.com/taigrr/decal/pkg/math3d"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// FromCenterSize creates an AABB centred at center with the given full size.
// Negative size components are treated as their absolute value.
func FromCenterSize(center, size math3d.Vec3) AABB {
	half := size.Abs().Scale(0.5)
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// FromPoints returns the smallest AABB containing all points.
// An empty slice yields the zero box.
func FromPoints(points []math3d.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	b := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Extents returns half the dimensions (extents from center).
func (b AABB) Extents() math3d.Vec3 {
	return b.Size().Scale(0.5)
}

// Corners returns the 8 corners of the box.
func (b AABB) Corners() [8]math3d.Vec3 {
	return [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

// Transform returns an AABB that bounds the original AABB after transformation.
// This computes a new AABB that contains all 8 transformed corners.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := b.Corners()
	for i := range corners {
		corners[i] = m.MulVec3(corners[i])
	}
	return FromPoints(corners[:])
}

// TransformOriented bounds the box after rotating its corners as directions
// (translation ignored) and recentres the result on center.
func (b AABB) TransformOriented(rotate func(math3d.Vec3) math3d.Vec3, center math3d.Vec3) AABB {
	corners := b.Corners()
	for i := range corners {
		corners[i] = rotate(corners[i])
	}
	rotated := FromPoints(corners[:])
	return FromCenterSize(center, rotated.Size())
}

// ContainsPoint returns true if the point is inside the AABB.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether two boxes overlap. Touching faces count as
// overlapping, so flat boxes still intersect what they rest on.
func (b AABB) Intersects(o AABB) bool {
	return b.Max.X >= o.Min.X && b.Min.X <= o.Max.X &&
		b.Max.Y >= o.Min.Y && b.Min.Y <= o.Max.Y &&
		b.Max.Z >= o.Min.Z && b.Min.Z <= o.Max.Z
}

// Expand returns the box grown by d on every side.
func (b AABB) Expand(d float64) AABB {
	v := math3d.V3(d, d, d)
	return AABB{Min: b.Min.Sub(v), Max: b.Max.Add(v)}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}
