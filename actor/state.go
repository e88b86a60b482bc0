package actor

import "github.com/go-gl/mathgl/mgl64"

// Vec3State is the persisted form of a vector
type Vec3State struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func NewVec3State(v mgl64.Vec3) Vec3State {
	return Vec3State{X: v.X(), Y: v.Y(), Z: v.Z()}
}

func (s Vec3State) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{s.X, s.Y, s.Z}
}

// BallState is the persisted form of a ball in a diagram. The velocity is
// left out when the ball is nearly still.
type BallState struct {
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"`
	Position Vec3State  `json:"p" yaml:"p"`
	Velocity *Vec3State `json:"v,omitempty" yaml:"v,omitempty"`
}
