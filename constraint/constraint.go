package constraint

import "fmt"

// Kind tells what a contact participant is
type Kind uint8

const (
	KindBall Kind = iota
	KindSlate
	KindCushion
)

func (k Kind) String() string {
	switch k {
	case KindBall:
		return "ball"
	case KindSlate:
		return "slate"
	case KindCushion:
		return "cushion"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Params holds the contact model constants, per kind of the second participant
type Params struct {
	CORBall    float64 `yaml:"cor_ball"`
	CORCushion float64 `yaml:"cor_cushion"`
	CORSlate   float64 `yaml:"cor_slate"`

	FrictionBallBall    float64 `yaml:"friction_ball_ball"`
	FrictionBallCushion float64 `yaml:"friction_ball_cushion"`
	FrictionBallSlate   float64 `yaml:"friction_ball_slate"`

	HardnessBall    float64 `yaml:"hardness_ball"`
	HardnessCushion float64 `yaml:"hardness_cushion"`
	HardnessSlate   float64 `yaml:"hardness_slate"`

	// Fixed step of the contact integration, in the solver's own time
	TimeStep float64 `yaml:"time_step"`
	// Iteration cap; reaching it forces the episode to an end
	MaxIter int `yaml:"max_iter"`
}

func DefaultParams() Params {
	return Params{
		CORBall:    0.85,
		CORCushion: 0.8,
		CORSlate:   0.5,

		FrictionBallBall:    0.1,
		FrictionBallCushion: 0.2,
		FrictionBallSlate:   0.2,

		HardnessBall:    1,
		HardnessCushion: 1,
		HardnessSlate:   1,

		TimeStep: 0.02,
		MaxIter:  10000,
	}
}

// Validate rejects parameters the solver cannot run with
func (p Params) Validate() error {
	if p.TimeStep <= 0 {
		return fmt.Errorf("contact time step must be positive, got %v", p.TimeStep)
	}
	if p.MaxIter <= 0 {
		return fmt.Errorf("contact iteration cap must be positive, got %d", p.MaxIter)
	}
	return nil
}

// Restitution returns the coefficient of restitution against a participant of the given kind
func (p Params) Restitution(kind Kind) float64 {
	switch kind {
	case KindBall:
		return p.CORBall
	case KindCushion:
		return p.CORCushion
	default:
		return p.CORSlate
	}
}

// Friction returns the kinetic friction coefficient against a participant of the given kind
func (p Params) Friction(kind Kind) float64 {
	switch kind {
	case KindBall:
		return p.FrictionBallBall
	case KindCushion:
		return p.FrictionBallCushion
	default:
		return p.FrictionBallSlate
	}
}

// Hardness returns the spring constant against a participant of the given kind
func (p Params) Hardness(kind Kind) float64 {
	switch kind {
	case KindBall:
		return p.HardnessBall
	case KindCushion:
		return p.HardnessCushion
	default:
		return p.HardnessSlate
	}
}
