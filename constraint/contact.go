package constraint

import (
	"math"

	"github.com/akmonengine/billiard/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ContactObject is a participant of a collision episode: a ball, or the
// slate or cushion as a whole. It accumulates the contact accelerations
// and remembers the velocities the episode started with.
type ContactObject struct {
	Kind Kind
	Ball *actor.Ball // nil unless Kind is KindBall

	Acceleration        mgl64.Vec3
	AngularAcceleration mgl64.Vec3

	InitialVelocity        mgl64.Vec3
	InitialAngularVelocity mgl64.Vec3
}

func NewBallObject(b *actor.Ball) *ContactObject {
	return &ContactObject{
		Kind:                   KindBall,
		Ball:                   b,
		InitialVelocity:        b.Velocity,
		InitialAngularVelocity: b.AngularVelocity,
	}
}

// NewStaticObject returns the participant standing for the slate or the cushions
func NewStaticObject(kind Kind) *ContactObject {
	return &ContactObject{Kind: kind}
}

// ContactPoint is a contact between a ball (Object1) and another participant
type ContactPoint struct {
	Object1 *ContactObject
	Object2 *ContactObject

	Position mgl64.Vec3
	Normal   mgl64.Vec3 // unit, from Object1 towards Object2
	Depth    float64    // positive when interpenetrating
}

func NewContactPoint(object1, object2 *ContactObject, position, normal mgl64.Vec3) *ContactPoint {
	return &ContactPoint{
		Object1:  object1,
		Object2:  object2,
		Position: position,
		Normal:   normal,
	}
}

// RelativeVelocity returns the velocity of Object1 relative to Object2 at
// the contact, and its normal and tangential components
func (c *ContactPoint) RelativeVelocity() (v, vn, vt mgl64.Vec3) {
	v = c.Object1.Ball.SurfaceVelocity(c.Normal)
	if c.Object2.Kind == KindBall {
		v = v.Sub(c.Object2.Ball.SurfaceVelocity(c.Normal.Mul(-1)))
	}
	vn = actor.Project(v, c.Normal)
	vt = v.Sub(vn)

	return v, vn, vt
}

// DepthDerivative is the closing speed along the normal
func (c *ContactPoint) DepthDerivative() float64 {
	d := c.Normal.Dot(c.Object1.Ball.Velocity)
	if c.Object2.Kind == KindBall {
		d -= c.Normal.Dot(c.Object2.Ball.Velocity)
	}
	return d
}

// applyForces applies dir to Object1 at the contact and the opposite force to Object2 if it is a ball
func (c *ContactPoint) applyForces(dir mgl64.Vec3) {
	linear, angular := c.Object1.Ball.ForceResponse(c.Position, dir)
	c.Object1.Acceleration = c.Object1.Acceleration.Add(linear)
	c.Object1.AngularAcceleration = c.Object1.AngularAcceleration.Add(angular)

	if c.Object2.Kind == KindBall {
		linear, angular = c.Object2.Ball.ForceResponse(c.Position, dir)
		c.Object2.Acceleration = c.Object2.Acceleration.Sub(linear)
		c.Object2.AngularAcceleration = c.Object2.AngularAcceleration.Sub(angular)
	}
}

// computeForces applies the spring force along the normal and the kinetic friction
func (c *ContactPoint) computeForces(params Params) {
	if c.Depth <= 0 {
		return
	}

	_, vn, vt := c.RelativeVelocity()
	kind := c.Object2.Kind

	// While compressing the spring is elastic, unloading loses energy
	factor := 1.0
	if vn.Dot(c.Normal) <= 0 {
		cor := params.Restitution(kind)
		factor = cor * cor
	}
	force := params.Hardness(kind) * c.Depth * math.Sqrt(c.Depth) * factor

	c.applyForces(c.Normal.Mul(-force))
	c.applyForces(actor.Normalize(vt).Mul(-params.Friction(kind) * force))
}
