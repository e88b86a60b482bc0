package server

import (
	"context"
	"sync"
	"time"

	"github.com/akmonengine/billiard"
	"github.com/akmonengine/billiard/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Session owns a world and serializes every access to it. The world only
// advances from Run, or from Tick in tests.
type Session struct {
	mu       sync.Mutex
	world    *billiard.World
	tickRate int
}

func NewSession(world *billiard.World, tickRate int) *Session {
	if tickRate <= 0 {
		tickRate = 60
	}
	return &Session{world: world, tickRate: tickRate}
}

// Run ticks the world at the session tick rate until ctx is done
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.tickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Tick advances the world by wallDt seconds of wall clock
func (s *Session) Tick(wallDt float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Tick(wallDt)
}

func (s *Session) Diagram() map[string]actor.BallState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Diagram()
}

func (s *Session) LoadDiagram(diagram map[string]actor.BallState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.LoadDiagram(diagram)
}

func (s *Session) SetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world.Speed = speed
}

func (s *Session) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Speed
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world.ResetBalls()
}

// Shot strikes the named ball
func (s *Session) Shot(name string, velocity, angularVelocity mgl64.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ball, err := s.world.Ball(name)
	if err != nil {
		return err
	}
	ball.Strike(velocity, angularVelocity)
	return nil
}

func (s *Session) Energy() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Energy()
}

func (s *Session) Stats() billiard.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Stats
}
