package billiard

import (
	"math"

	"github.com/akmonengine/billiard/actor"
	"github.com/akmonengine/billiard/table"
	"github.com/go-gl/mathgl/mgl64"
)

var standardTable = table.Standard()

// newBallAt creates a ball resting on the bed at (x, y)
func newBallAt(id int, x, y float64) *actor.Ball {
	b := actor.NewBall(id, standardTable, actor.DefaultParams())
	b.Transform.Position = mgl64.Vec3{x, y, b.Radius}
	return b
}

// rolling returns the angular velocity of a ball rolling without slipping at v
func rolling(v mgl64.Vec3, radius float64) mgl64.Vec3 {
	return mgl64.Vec3{-v.Y() / radius, v.X() / radius, 0}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func vec3AlmostEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return almostEqual(a.X(), b.X(), tolerance) &&
		almostEqual(a.Y(), b.Y(), tolerance) &&
		almostEqual(a.Z(), b.Z(), tolerance)
}
