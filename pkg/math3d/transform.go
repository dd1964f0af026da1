package math3d

import "math"

// Transform is a translation, rotation and non-uniform scale composed as
// T * R * S.
type Transform struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{
		Rotation: QuatIdentity(),
		Scale:    V3(1, 1, 1),
	}
}

// Matrix returns the local-to-world matrix.
func (t Transform) Matrix() Mat4 {
	return Translate(t.Position).Mul(t.Rotation.Normalize().Mat4()).Mul(Scale(t.Scale))
}

// InverseMatrix returns the world-to-local matrix, built from the inverted
// components. ok is false when any scale component is (nearly) zero, in which
// case the transform cannot be inverted.
func (t Transform) InverseMatrix() (m Mat4, ok bool) {
	if t.Degenerate() {
		return Identity(), false
	}
	invScale := Scale(V3(1/t.Scale.X, 1/t.Scale.Y, 1/t.Scale.Z))
	invRotate := t.Rotation.Normalize().Conjugate().Mat4()
	invTranslate := Translate(t.Position.Negate())
	return invScale.Mul(invRotate).Mul(invTranslate), true
}

// Degenerate reports whether any scale component is too small to invert.
func (t Transform) Degenerate() bool {
	const eps = 1e-12
	return math.Abs(t.Scale.X) < eps || math.Abs(t.Scale.Y) < eps || math.Abs(t.Scale.Z) < eps
}

// TransformDirection rotates v by the transform's rotation only.
// Scale and translation are ignored.
func (t Transform) TransformDirection(v Vec3) Vec3 {
	return t.Rotation.Normalize().Rotate(v)
}

// Equal reports exact equality of all components.
func (t Transform) Equal(o Transform) bool {
	return t.Position == o.Position && t.Rotation == o.Rotation && t.Scale == o.Scale
}
