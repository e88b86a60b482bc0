package main

import (
	"fmt"
	"math"

	"github.com/akmonengine/billiard"
	"github.com/akmonengine/billiard/actor"
	"github.com/akmonengine/billiard/table"
	"github.com/go-gl/mathgl/mgl64"
)

// ConsoleRenderer prints the number of balls still moving once per simulated second
type ConsoleRenderer struct {
	world *billiard.World
	frame int
}

func (r *ConsoleRenderer) Sync(transforms []actor.Transform) {
	r.frame++
	if r.frame%60 != 0 {
		return
	}

	moving := 0
	for _, b := range r.world.Balls {
		if !b.IsStopped {
			moving++
		}
	}
	fmt.Printf("⏱️  t=%2ds  moving=%2d  energy=%.4f J\n", r.frame/60, moving, r.world.Energy())
}

// SetupRack racks 15 balls on the foot spot and puts the cue ball on the head spot
func SetupRack(w *billiard.World) *actor.Ball {
	tbl := w.Table
	r := tbl.Specs.BallRadius
	footSpot := tbl.Specs.TableLength / 4
	gap := 1e-4

	k := 1
	for row := 0; row < 5; row++ {
		for i := 0; i <= row; i++ {
			b := w.Balls[k]
			x := footSpot + float64(row)*(2*r+gap)*math.Sqrt(3)/2
			y := (float64(i) - float64(row)/2) * (2*r + gap)
			b.Transform.Position = mgl64.Vec3{x, y, r}
			b.IsStopped = false
			k++
		}
	}

	cue := w.Balls[0]
	cue.Transform.Position = mgl64.Vec3{-footSpot, 0.01, r}
	return cue
}

func main() {
	tbl := table.Standard()
	world := billiard.NewWorld(tbl, 16, billiard.WithWorkers(4))
	renderer := &ConsoleRenderer{world: world}
	world.Renderer = renderer

	world.Events.Subscribe(billiard.COLLISION_RESOLVED, func(event billiard.Event) {
		c := event.(billiard.CollisionEvent)
		if c.Impulse > 0.1 {
			fmt.Printf("💥 %v: impulse %.3f N·s in %d iterations\n", c.Participants, c.Impulse, c.Iterations)
		}
	})
	world.Events.Subscribe(billiard.BALL_RESET, func(event billiard.Event) {
		fmt.Printf("🕳️  %s is off the table\n", event.(billiard.BallResetEvent).Ball.Name)
	})

	cue := SetupRack(world)
	cue.Strike(mgl64.Vec3{8, 0, 0}, mgl64.Vec3{})
	fmt.Printf("🎱 Break at %.1f m/s\n", cue.Velocity.Len())

	// 60 frames per second until everything rests or 20 seconds pass
	for i := 0; i < 20*60; i++ {
		world.Tick(1.0 / 60.0)

		resting := true
		for _, b := range world.Balls {
			if !b.IsStopped {
				resting = false
				break
			}
		}
		if resting {
			break
		}
	}

	fmt.Printf("✅ %d episodes, %d forced, %d balls off the table after %d ticks\n",
		world.Stats.Episodes, world.Stats.ForcedConvergences, world.Stats.Resets, world.Stats.Ticks)
	for name, state := range world.Diagram() {
		fmt.Printf("   %s at (%.3f, %.3f)\n", name, state.Position.X, state.Position.Y)
	}
}
