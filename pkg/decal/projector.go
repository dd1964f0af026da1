// Package decal projects flat images onto scene geometry.
//
// A Projector is an oriented box. Every scene triangle inside the box that
// faces the projector is clipped to it, given UVs from its position across
// the box and pushed slightly toward the projector. The clipped pieces of all
// affected objects are merged into one Mesh.
//
// The box spans [-0.5, 0.5] on every axis of the projector's local space and
// projects along local -Z. U follows local X and V follows local Y.
package decal

import (
	"image"

	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/models"
	"github.com/taigrr/decal/pkg/scene"
)

// Projector defaults.
const (
	DefaultMaxAngle     = 90.0
	DefaultPushDistance = 0.009
)

// Projector defines where and how a decal is applied.
type Projector struct {
	// Transform places the unit box in the world. Scale sets the decal size
	// (X, Y) and projection depth (Z).
	Transform math3d.Transform

	// MaxAngle is the largest angle, in degrees, between a surface normal and
	// the facing axis that still receives the decal.
	MaxAngle float64

	// PushDistance offsets the decal surface toward the projector, in world
	// units.
	PushDistance float64

	AffectedLayers scene.LayerMask

	// Material and Sprite must both be set for a build to produce geometry.
	Material *models.Material
	Sprite   image.Image
}

// NewProjector returns a projector at the origin with default settings and
// no material.
func NewProjector() *Projector {
	return &Projector{
		Transform:      math3d.NewTransform(),
		MaxAngle:       DefaultMaxAngle,
		PushDistance:   DefaultPushDistance,
		AffectedLayers: scene.AllLayers,
	}
}

// Ready reports whether the projector has everything it needs to build.
func (p *Projector) Ready() bool {
	return p.Material != nil && p.Sprite != nil
}

// Facing returns the world-space unit axis pointing from the projected
// surface back toward the projector (local +Z).
func (p *Projector) Facing() math3d.Vec3 {
	return p.Transform.TransformDirection(math3d.Back()).Normalize()
}

// WorldToLocal maps world space into the projector's unit box.
// ok is false when the scale is degenerate.
func (p *Projector) WorldToLocal() (math3d.Mat4, bool) {
	return p.Transform.InverseMatrix()
}

// LocalToWorld maps the unit box into world space.
func (p *Projector) LocalToWorld() math3d.Mat4 {
	return p.Transform.Matrix()
}
