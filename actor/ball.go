package actor

import (
	"fmt"
	"math"

	"github.com/akmonengine/billiard/table"
	"github.com/go-gl/mathgl/mgl64"
)

// Ball is a solid sphere moving on the table
type Ball struct {
	ID   int
	Name string

	Transform Transform

	// Linear motion
	Velocity     mgl64.Vec3 // m/s
	Acceleration mgl64.Vec3 // recomputed at every integration step

	// Angular motion
	AngularVelocity     mgl64.Vec3 // rad/s
	AngularAcceleration mgl64.Vec3

	Radius  float64
	Mass    float64
	Inertia float64 // 2/5·m·r² for a solid sphere

	// Latched while the ball rests on the bed: z, vz and az are pinned
	ContinuingSlateContact bool
	// A stopped ball has no velocity and is skipped by AdvanceTime
	IsStopped bool

	Params Params
	Table  *table.Table
}

// NewBall creates the ball id at its default position on tbl
func NewBall(id int, tbl *table.Table, params Params) *Ball {
	b := &Ball{
		ID:      id,
		Name:    BallName(id),
		Radius:  params.Radius,
		Mass:    params.Mass,
		Inertia: 2.0 / 5.0 * params.Mass * params.Radius * params.Radius,
		Params:  params,
		Table:   tbl,
	}
	b.Reset()

	return b
}

// BallName returns the name a ball is known by in diagrams and events
func BallName(id int) string {
	return fmt.Sprintf("ball_%d", id)
}

// Reset puts the ball back at its default position with no motion
func (b *Ball) Reset() {
	b.Transform = NewTransform(b.Table.DefaultBallPosition(b.ID))
	b.Velocity = mgl64.Vec3{}
	b.Acceleration = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
	b.AngularAcceleration = mgl64.Vec3{}
	b.ContinuingSlateContact = false
	b.IsStopped = false
}

// Stop zeroes every motion and excludes the ball from integration
func (b *Ball) Stop() {
	b.Velocity = mgl64.Vec3{}
	b.Acceleration = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
	b.AngularAcceleration = mgl64.Vec3{}
	b.IsStopped = true
}

// Strike sets the ball in motion with the given linear and angular velocity
func (b *Ball) Strike(velocity, angularVelocity mgl64.Vec3) {
	b.Velocity = velocity
	b.AngularVelocity = angularVelocity
	b.ContinuingSlateContact = false
	b.IsStopped = false
}

// ForceResponse returns the linear and angular acceleration produced by
// the force dir applied at pos
func (b *Ball) ForceResponse(pos, dir mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	torque := pos.Sub(b.Transform.Position).Cross(dir)
	return dir.Mul(1.0 / b.Mass), torque.Mul(1.0 / b.Inertia)
}

// ApplyForce accumulates the force dir applied at pos into the accelerations
func (b *Ball) ApplyForce(pos, dir mgl64.Vec3) {
	linear, angular := b.ForceResponse(pos, dir)
	b.Acceleration = b.Acceleration.Add(linear)
	b.AngularAcceleration = b.AngularAcceleration.Add(angular)
}

// SurfaceVelocity returns the velocity of the point of the ball surface in direction n
func (b *Ball) SurfaceVelocity(n mgl64.Vec3) mgl64.Vec3 {
	return b.Velocity.Add(b.AngularVelocity.Cross(n).Mul(b.Radius))
}

// SlateDistance is the distance from the center of the ball to the bed
func (b *Ball) SlateDistance() float64 {
	p := b.Transform.Position
	return b.Table.ClosestSlatePoint(p).Sub(p).Len()
}

// ComputeAcceleration evaluates gravity and, when the ball touches the bed,
// sliding friction, spin decay and rolling resistance
func (b *Ball) ComputeAcceleration() {
	slateDistance := b.SlateDistance()
	b.Acceleration = mgl64.Vec3{}
	b.AngularAcceleration = mgl64.Vec3{}

	p := b.Transform.Position
	weight := b.Mass * b.Params.Gravity

	b.ApplyForce(p, mgl64.Vec3{0, 0, -weight})

	if slateDistance < b.Radius+Epsilon {
		// The contact point leans forward with the rolling resistance
		vu := Normalize(b.Velocity)
		c := 7.0 / 5.0 * b.Params.FrictionRoll * b.Radius
		cp := SetLength(mgl64.Vec3{c * vu.X(), c * vu.Y(), -b.Radius}, b.Radius)
		contact := p.Add(cp)

		// Sliding friction
		slip := b.Velocity.Add(b.AngularVelocity.Cross(cp))
		slip = Normalize(slip.Sub(Project(slip, cp)))
		b.ApplyForce(contact, slip.Mul(-b.Params.FrictionKinetic*weight))

		// Spin decay
		spin := Project(b.AngularVelocity, cp)
		b.AngularAcceleration = b.AngularAcceleration.Sub(SetLength(spin, b.Params.SpinDeceleration))

		// Rolling resistance, with the bed reaction
		s := b.Params.FrictionRoll * weight
		b.ApplyForce(contact, mgl64.Vec3{-vu.X() * s, -vu.Y() * s, weight})
	}

	if b.ContinuingSlateContact {
		b.enforceContinuingSlateContact()
	}
}

func (b *Ball) enforceContinuingSlateContact() {
	b.Acceleration[2] = 0
	b.Velocity[2] = 0
	b.Transform.Position[2] = b.Radius
	b.ContinuingSlateContact = true
}

// IntegrateEuler advances the ball by dt with the forward Euler method
func (b *Ball) IntegrateEuler(dt float64) {
	b.ComputeAcceleration()

	b.Transform.Position = b.Transform.Position.Add(b.Velocity.Mul(dt))
	b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt))

	b.Transform.Rotate(dt*b.AngularVelocity.Len(), b.AngularVelocity)
	b.AngularVelocity = b.AngularVelocity.Add(b.AngularAcceleration.Mul(dt))
}

// IntegrateHeun advances the ball by dt with Heun's method: a full Euler
// step, then a correction by the average of the start and end derivatives
func (b *Ball) IntegrateHeun(dt float64) {
	b.ComputeAcceleration()

	v1 := b.Velocity
	a1 := b.Acceleration
	w1 := b.AngularVelocity
	dw1 := b.AngularAcceleration

	b.Transform.Position = b.Transform.Position.Add(b.Velocity.Mul(dt))
	b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt))
	b.AngularVelocity = b.AngularVelocity.Add(b.AngularAcceleration.Mul(dt))

	b.ComputeAcceleration()

	b.Transform.Position = b.Transform.Position.Add(b.Velocity.Sub(v1).Mul(0.5 * dt))
	b.Velocity = b.Velocity.Add(b.Acceleration.Sub(a1).Mul(0.5 * dt))

	w := b.AngularVelocity.Add(w1).Mul(0.5)
	b.Transform.Rotate(dt*w.Len(), w)
	b.AngularVelocity = b.AngularVelocity.Add(b.AngularAcceleration.Sub(dw1).Mul(0.5 * dt))
}

func (b *Ball) integrate(dt float64) {
	switch b.Params.Integrator {
	case IntegratorEuler:
		b.IntegrateEuler(dt)
	default:
		b.IntegrateHeun(dt)
	}
}

// AdvanceTime integrates the ball over dt, then updates the bed latch and
// stops the ball once it rests without noticeable motion
func (b *Ball) AdvanceTime(dt float64) {
	if b.IsStopped {
		return
	}

	for dt >= Epsilon {
		s := dt
		b.integrate(s)
		dt -= s

		slateDistance := b.SlateDistance()
		resting := slateDistance < b.Radius+SlateTolerance
		if slateDistance > b.Radius+SlateTolerance {
			b.ContinuingSlateContact = false
		}
		if !b.ContinuingSlateContact && resting && math.Abs(b.Velocity.Z()) < LatchSpeed {
			b.enforceContinuingSlateContact()
		}
		if resting && b.Velocity.Len()+b.Radius*b.AngularVelocity.Len() < StopSpeed {
			b.Stop()
		}
	}
}

// OutOfBounds reports whether the ball fell through a pocket or left the table
func (b *Ball) OutOfBounds() bool {
	p := b.Transform.Position
	if p.Z() < -(b.Table.FloorDepth() - b.Radius) {
		return true
	}

	rail := b.Table.OuterRail()
	return math.Abs(p.X()) > rail.X()+b.Radius || math.Abs(p.Y()) > rail.Y()+b.Radius
}

// Energy returns the kinetic energy of the ball
func (b *Ball) Energy() float64 {
	return (b.Mass*b.Velocity.LenSqr() + b.Inertia*b.AngularVelocity.LenSqr()) / 2
}

// AABB returns the bounding box of the ball
func (b *Ball) AABB() table.AABB {
	return table.SphereAABB(b.Transform.Position, b.Radius)
}

// Clone returns an independent copy sharing the same table
func (b *Ball) Clone() *Ball {
	clone := *b
	return &clone
}

// TransformSnapshot returns the pose to hand to a renderer
func (b *Ball) TransformSnapshot() Transform {
	return b.Transform
}

// Serialize returns the persisted state of the ball
func (b *Ball) Serialize() BallState {
	state := BallState{
		Name:     b.Name,
		Position: NewVec3State(b.Transform.Position),
	}
	if b.Velocity.Len() > SerializeSpeed {
		v := NewVec3State(b.Velocity)
		state.Velocity = &v
	}
	return state
}

// Load resets the ball, then restores its position and velocity from state
func (b *Ball) Load(state BallState) {
	b.Reset()
	b.Transform.Position = state.Position.Vec3()
	if state.Velocity != nil {
		b.Velocity = state.Velocity.Vec3()
	}
}
