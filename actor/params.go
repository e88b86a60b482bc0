package actor

import (
	"fmt"
	"strings"
)

const (
	Epsilon = 1.0e-9
	// SlateTolerance is the gap above the bed within which a ball counts as resting on it
	SlateTolerance = 1.0e-3
	// LatchSpeed is the vertical speed under which a resting ball is latched to the bed
	LatchSpeed = 0.1
	// StopSpeed is the |v| + r|w| threshold under which a resting ball stops
	StopSpeed = 1.0e-2
	// SerializeSpeed is the speed under which the velocity is left out of a BallState
	SerializeSpeed = 0.01
)

// Integrator selects the time integration scheme of a ball
type Integrator int

const (
	IntegratorHeun Integrator = iota
	IntegratorEuler
)

func (i Integrator) String() string {
	switch i {
	case IntegratorHeun:
		return "heun"
	case IntegratorEuler:
		return "euler"
	}
	return fmt.Sprintf("Integrator(%d)", int(i))
}

// ParseIntegrator returns the integrator named s
func ParseIntegrator(s string) (Integrator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "heun":
		return IntegratorHeun, nil
	case "euler":
		return IntegratorEuler, nil
	}
	return IntegratorHeun, fmt.Errorf("unknown integrator %q", s)
}

// Params holds the physical constants of a ball and its contact with the bed
type Params struct {
	Gravity          float64 `yaml:"gravity"`           // m/s²
	FrictionKinetic  float64 `yaml:"friction_kinetic"`  // sliding friction on the cloth
	FrictionRoll     float64 `yaml:"friction_roll"`     // rolling resistance
	SpinDeceleration float64 `yaml:"spin_deceleration"` // rad/s²
	Radius           float64 `yaml:"radius"`            // m
	Mass             float64 `yaml:"mass"`              // kg

	Integrator Integrator `yaml:"-"`
}

func DefaultParams() Params {
	return Params{
		Gravity:          9.81,
		FrictionKinetic:  0.2,
		FrictionRoll:     0.01,
		SpinDeceleration: 10,
		Radius:           0.028575,
		Mass:             0.163,
		Integrator:       IntegratorHeun,
	}
}
