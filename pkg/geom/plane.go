package geom

import (
	"github.com/taigrr/decal/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// NewPlane builds the plane through point with the given normal.
func NewPlane(normal, point math3d.Vec3) Plane {
	return Plane{Normal: normal, D: -normal.Dot(point)}
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// UnitCubePlanes returns the six planes of the cube [-h, h]^3 with normals
// pointing inward, ordered -X, +X, -Y, +Y, -Z, +Z.
func UnitCubePlanes(h float64) [6]Plane {
	return [6]Plane{
		{Normal: math3d.V3(1, 0, 0), D: h},
		{Normal: math3d.V3(-1, 0, 0), D: h},
		{Normal: math3d.V3(0, 1, 0), D: h},
		{Normal: math3d.V3(0, -1, 0), D: h},
		{Normal: math3d.V3(0, 0, 1), D: h},
		{Normal: math3d.V3(0, 0, -1), D: h},
	}
}
