package billiard

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/akmonengine/billiard/actor"
	"github.com/akmonengine/billiard/constraint"
	"github.com/akmonengine/billiard/table"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_WORKERS = 1
	// Physics substep, in simulated seconds
	DEFAULT_SUBSTEP = 0.001
	// Wall clock catch-up bound, in seconds
	DEFAULT_MAX_LAG = 0.1
	// Substep budget of a single tick
	DEFAULT_MAX_SUBSTEPS = 2000

	// Speed slider range
	SLIDER_MAX = 8
)

var ErrUnknownBall = errors.New("unknown ball")

// SceneSync receives the ball poses at the end of every tick
type SceneSync interface {
	Sync(transforms []actor.Transform)
}

// Stats counts what the world did since it was created
type Stats struct {
	Ticks              int
	Substeps           int
	Episodes           int
	ForcedConvergences int
	Resets             int
	LastImpulse        float64
}

type World struct {
	Table *table.Table
	// List of all balls, ordered by id
	Balls []*actor.Ball

	// Simulated seconds per wall second, 0 pauses
	Speed       float64
	Substep     float64
	MaxLag      float64
	MaxSubsteps int
	Workers     int
	// Broad phase between balls; nil compares every pair
	SpatialGrid *SpatialGrid
	Solver      constraint.Params

	Events   Events
	Stats    Stats
	Renderer SceneSync
	Logger   *log.Logger

	ballParams actor.Params
	// Simulated time owed to the clock
	lag float64
}

type Option func(w *World)

func WithSpeed(speed float64) Option {
	return func(w *World) { w.Speed = speed }
}

func WithWorkers(workers int) Option {
	return func(w *World) { w.Workers = workers }
}

func WithSubstep(substep float64) Option {
	return func(w *World) { w.Substep = substep }
}

func WithBallParams(params actor.Params) Option {
	return func(w *World) { w.ballParams = params }
}

func WithSolver(params constraint.Params) Option {
	return func(w *World) { w.Solver = params }
}

func WithSpatialGrid(grid *SpatialGrid) Option {
	return func(w *World) { w.SpatialGrid = grid }
}

func WithRenderer(renderer SceneSync) Option {
	return func(w *World) { w.Renderer = renderer }
}

func WithLogger(logger *log.Logger) Option {
	return func(w *World) { w.Logger = logger }
}

// NewWorld creates n balls parked at their default position on tbl
func NewWorld(tbl *table.Table, n int, opts ...Option) *World {
	w := &World{
		Table:       tbl,
		Speed:       1,
		Substep:     DEFAULT_SUBSTEP,
		MaxLag:      DEFAULT_MAX_LAG,
		MaxSubsteps: DEFAULT_MAX_SUBSTEPS,
		Workers:     DEFAULT_WORKERS,
		Solver:      constraint.DefaultParams(),
		Events:      NewEvents(),
		Logger:      log.New(io.Discard, "", 0),
		ballParams:  actor.DefaultParams(),
	}
	w.ballParams.Radius = tbl.Specs.BallRadius
	w.ballParams.Mass = tbl.Specs.BallMass
	w.SpatialGrid = DefaultSpatialGrid(w.ballParams.Radius)

	for _, opt := range opts {
		opt(w)
	}

	w.Balls = make([]*actor.Ball, n)
	for i := range w.Balls {
		w.Balls[i] = actor.NewBall(i, tbl, w.ballParams)
		w.Balls[i].Stop()
	}

	return w
}

// Tick advances the simulation by wallDt seconds of wall clock and returns the number of substeps run
func (w *World) Tick(wallDt float64) int {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)

	steps := 0
	if w.Speed > 0 && wallDt > 0 && w.Substep > 0 {
		w.lag = math.Min(w.lag+wallDt*w.Speed, w.MaxLag*w.Speed)

		for w.lag >= w.Substep {
			if w.MaxSubsteps > 0 && steps >= w.MaxSubsteps {
				w.Logger.Printf("tick budget of %d substeps exhausted, dropping %.4fs of simulated time", w.MaxSubsteps, w.lag)
				w.lag = 0
				break
			}
			w.Step(w.Substep)
			w.lag -= w.Substep
			steps++
		}
	} else {
		// Paused: the clock follows the wall
		w.lag = 0
	}

	w.StopOutOfBoundBalls()
	w.Events.processMotionEvents(w.Balls)
	w.Events.flush()

	if w.Renderer != nil {
		w.Renderer.Sync(w.Transforms())
	}
	w.Stats.Ticks++

	return steps
}

// Step runs one substep: every ball advances, then at most one collision episode is resolved
func (w *World) Step(h float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)

	task(w.Workers, w.Balls, func(ball *actor.Ball) {
		ball.AdvanceTime(h)
	})
	w.HandleCollisions()

	w.Stats.Substeps++
}

// HandleCollisions resolves the episode of the first ball found in an approaching contact
func (w *World) HandleCollisions() bool {
	trigger, ok := DetectCollision(w.SpatialGrid, w.Table, w.Balls)
	if !ok {
		return false
	}

	episode := newEpisode(w.SpatialGrid, w.Table, w.Balls, trigger, w.Solver, w.Workers)
	res := episode.Resolve()

	w.Stats.Episodes++
	w.Stats.LastImpulse = res.Impulse
	if res.Forced {
		w.Stats.ForcedConvergences++
		w.Logger.Printf("collision of %v forced to an end after %d iterations", res.Participants, res.Iterations)
	}
	w.Events.emit(newCollisionEvent(res))

	return true
}

// StopOutOfBoundBalls parks every ball that left the table
func (w *World) StopOutOfBoundBalls() {
	for _, ball := range w.Balls {
		if !ball.OutOfBounds() {
			continue
		}
		// Already parked
		if ball.IsStopped && ball.Transform.Position == w.Table.DefaultBallPosition(ball.ID) {
			continue
		}

		ball.Reset()
		ball.Stop()
		w.Stats.Resets++
		w.Events.emit(BallResetEvent{Ball: ball})
	}
}

// ResetBalls parks every ball
func (w *World) ResetBalls() {
	for _, ball := range w.Balls {
		ball.Reset()
		ball.Stop()
	}
	w.lag = 0
	w.Events.forget()
}

// Energy returns the total kinetic energy of the balls
func (w *World) Energy() float64 {
	e := 0.0
	for _, ball := range w.Balls {
		e += ball.Energy()
	}
	return e
}

// Transforms returns the pose of every ball, in ball order
func (w *World) Transforms() []actor.Transform {
	transforms := make([]actor.Transform, len(w.Balls))
	for i, ball := range w.Balls {
		transforms[i] = ball.TransformSnapshot()
	}
	return transforms
}

// Ball returns the ball named name
func (w *World) Ball(name string) (*actor.Ball, error) {
	for _, ball := range w.Balls {
		if ball.Name == name {
			return ball, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBall, name)
}

// Diagram returns the persisted state of every ball, by name
func (w *World) Diagram() map[string]actor.BallState {
	diagram := make(map[string]actor.BallState, len(w.Balls))
	for _, ball := range w.Balls {
		diagram[ball.Name] = ball.Serialize()
	}
	return diagram
}

func finiteVec3(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// LoadDiagram restores the balls of the diagram and parks the others.
// Nothing changes when the diagram names an unknown ball.
func (w *World) LoadDiagram(diagram map[string]actor.BallState) error {
	for name, state := range diagram {
		if _, err := w.Ball(name); err != nil {
			return err
		}
		if !finiteVec3(state.Position.Vec3()) || (state.Velocity != nil && !finiteVec3(state.Velocity.Vec3())) {
			return fmt.Errorf("ball %q has a non finite position or velocity", name)
		}
	}

	for _, ball := range w.Balls {
		state, ok := diagram[ball.Name]
		if !ok {
			ball.Reset()
			ball.Stop()
			continue
		}
		ball.Load(state)
	}
	w.lag = 0
	w.Events.forget()

	return nil
}

// SpeedFromSlider maps a slider value in [-SLIDER_MAX, SLIDER_MAX] to a
// simulation speed; the minimum pauses
func SpeedFromSlider(value float64) float64 {
	if value <= -SLIDER_MAX {
		return 0
	}
	return math.Exp(6 * value / SLIDER_MAX)
}
