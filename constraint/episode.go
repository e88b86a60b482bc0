package constraint

import (
	"math"

	"github.com/akmonengine/billiard/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Resolution summarizes a resolved collision episode
type Resolution struct {
	Participants []string
	Iterations   int
	Impulse      float64 // root sum square of m·Δv and j·Δw over the balls
	Forced       bool    // the iteration cap ended the episode
}

// Episode is a group of touching participants whose contact forces are
// integrated together until every contact separates
type Episode struct {
	Objects []*ContactObject
	Points  []*ContactPoint
	Params  Params

	Iterations int
	IsResolved bool
	Forced     bool
	Impulse    float64

	finished bool
}

func NewEpisode(objects []*ContactObject, points []*ContactPoint, params Params) *Episode {
	return &Episode{
		Objects: objects,
		Points:  points,
		Params:  params,
	}
}

// ComputeAcceleration accumulates the contact forces of every compressed contact
func (e *Episode) ComputeAcceleration() {
	for _, o := range e.Objects {
		o.Acceleration = mgl64.Vec3{}
		o.AngularAcceleration = mgl64.Vec3{}
	}
	for _, c := range e.Points {
		c.computeForces(e.Params)
	}
}

// Integrate advances the ball velocities, then the contact depths, by dt
func (e *Episode) Integrate(dt float64) {
	for _, o := range e.Objects {
		if o.Kind != KindBall {
			continue
		}
		o.Ball.Velocity = o.Ball.Velocity.Add(o.Acceleration.Mul(dt))
		o.Ball.AngularVelocity = o.Ball.AngularVelocity.Add(o.AngularAcceleration.Mul(dt))
	}
	for _, c := range e.Points {
		c.Depth += dt * c.DepthDerivative()
	}
}

// UpdateIsResolved reports whether every contact has separated, or the iteration cap is reached
func (e *Episode) UpdateIsResolved() bool {
	if e.IsResolved {
		return true
	}

	for _, c := range e.Points {
		if c.Depth > actor.Epsilon || c.DepthDerivative() > actor.Epsilon {
			if e.Iterations >= e.Params.MaxIter {
				e.Forced = true
				e.IsResolved = true
			}
			return e.IsResolved
		}
	}

	e.IsResolved = true
	return true
}

// ResolveStep runs at most maxSteps iterations and finishes the episode once resolved
func (e *Episode) ResolveStep(maxSteps int) bool {
	if e.IsResolved {
		return true
	}

	end := e.Iterations + maxSteps
	for e.Iterations < end && !e.IsResolved {
		e.Iterations++
		e.ComputeAcceleration()
		e.Integrate(e.Params.TimeStep)
		e.UpdateIsResolved()
	}

	if e.IsResolved {
		e.Finish()
	}
	return e.IsResolved
}

// Resolve runs the episode to completion
func (e *Episode) Resolve() Resolution {
	for !e.ResolveStep(max(e.Params.MaxIter, 1)) {
	}
	return e.Resolution()
}

// Finish releases the balls from the bed latch and the stopped state, and
// computes the total impulse of the episode
func (e *Episode) Finish() {
	if e.finished {
		return
	}
	e.finished = true

	sum := 0.0
	for _, o := range e.Objects {
		if o.Kind != KindBall {
			continue
		}
		b := o.Ball
		b.ContinuingSlateContact = false
		b.IsStopped = false

		dv := b.Velocity.Sub(o.InitialVelocity).Mul(b.Mass)
		dw := b.AngularVelocity.Sub(o.InitialAngularVelocity).Mul(b.Inertia)
		sum += dv.LenSqr() + dw.LenSqr()
	}
	e.Impulse = math.Sqrt(sum)
}

// Participants returns the names of the balls in the episode
func (e *Episode) Participants() []string {
	names := make([]string, 0, len(e.Objects))
	for _, o := range e.Objects {
		if o.Kind == KindBall {
			names = append(names, o.Ball.Name)
		}
	}
	return names
}

func (e *Episode) Resolution() Resolution {
	return Resolution{
		Participants: e.Participants(),
		Iterations:   e.Iterations,
		Impulse:      e.Impulse,
		Forced:       e.Forced,
	}
}
