package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/akmonengine/billiard/actor"
	"github.com/akmonengine/billiard/constraint"
	"gopkg.in/yaml.v3"
)

// Physics holds the tunable constants of the simulation.
// Keys missing from a physics file keep their default value.
type Physics struct {
	Ball       actor.Params      `yaml:"ball"`
	Contact    constraint.Params `yaml:"contact"`
	Integrator string            `yaml:"integrator"`
}

func DefaultPhysics() Physics {
	return Physics{
		Ball:       actor.DefaultParams(),
		Contact:    constraint.DefaultParams(),
		Integrator: actor.IntegratorHeun.String(),
	}
}

// LoadPhysics reads the physics file at path, or returns the defaults when path is empty
func LoadPhysics(path string) (Physics, error) {
	if path == "" {
		return DefaultPhysics(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Physics{}, fmt.Errorf("open physics file: %w", err)
	}
	defer f.Close()

	p, err := DecodePhysics(f)
	if err != nil {
		return Physics{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// DecodePhysics decodes a YAML physics document over the defaults and validates it
func DecodePhysics(r io.Reader) (Physics, error) {
	p := DefaultPhysics()

	if err := yaml.NewDecoder(r).Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Physics{}, fmt.Errorf("decode physics: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Physics{}, err
	}

	return p, nil
}

func (p Physics) Validate() error {
	if _, err := actor.ParseIntegrator(p.Integrator); err != nil {
		return err
	}
	if p.Ball.Gravity < 0 || p.Ball.FrictionKinetic < 0 || p.Ball.FrictionRoll < 0 || p.Ball.SpinDeceleration < 0 {
		return fmt.Errorf("ball constants must not be negative: %+v", p.Ball)
	}
	if p.Ball.Radius <= 0 || p.Ball.Mass <= 0 {
		return fmt.Errorf("ball radius and mass must be positive, got %v and %v", p.Ball.Radius, p.Ball.Mass)
	}
	return p.Contact.Validate()
}

// BallParams returns the ball constants with the selected integrator
func (p Physics) BallParams() actor.Params {
	params := p.Ball
	params.Integrator, _ = actor.ParseIntegrator(p.Integrator)
	return params
}
