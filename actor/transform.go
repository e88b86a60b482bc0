package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform is the pose of a ball, as handed to renderers
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates a transform at position with no rotation
func NewTransform(position mgl64.Vec3) Transform {
	return Transform{
		Position: position,
		Rotation: mgl64.QuatIdent(),
	}
}

// Rotate turns the transform by angle radians around axis, applied after the current rotation
func (t *Transform) Rotate(angle float64, axis mgl64.Vec3) {
	if angle == 0 {
		return
	}
	rot := mgl64.QuatRotate(angle, Normalize(axis))
	t.Rotation = rot.Mul(t.Rotation).Normalize()
}
