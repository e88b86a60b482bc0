package billiard

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/billiard/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// Collision Info Tests
// =============================================================================

func TestBallBallCollisionInfo(t *testing.T) {
	r := actor.DefaultParams().Radius

	tests := []struct {
		name        string
		distance    float64
		v1, v2      mgl64.Vec3
		expectHit   bool
		expectSpeed float64
	}{
		{"approaching", 2*r + 1e-10, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, true, 1},
		{"both approaching", 2*r + 1e-10, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{-0.5, 0, 0}, true, 1},
		{"separating", 2*r + 1e-10, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{}, false, 0},
		{"grazing", 2*r + 1e-10, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, false, 0},
		{"apart", 2*r + 1e-3, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b1 := newBallAt(0, 0, 0)
			b2 := newBallAt(1, tt.distance, 0)
			b1.Velocity = tt.v1
			b2.Velocity = tt.v2

			info := BallBallCollisionInfo(b1, b2)
			if (info != nil) != tt.expectHit {
				t.Fatalf("collision = %v, want %v", info != nil, tt.expectHit)
			}
			if info == nil {
				return
			}
			if !vec3AlmostEqual(info.Normal, mgl64.Vec3{1, 0, 0}, 1e-12) {
				t.Errorf("Normal = %v, want (1, 0, 0)", info.Normal)
			}
			if !almostEqual(info.NormalVelocity.X(), tt.expectSpeed, 1e-12) {
				t.Errorf("NormalVelocity = %v, want %v along x", info.NormalVelocity, tt.expectSpeed)
			}
		})
	}
}

func TestBallBallCollisionInfo_SpinCounts(t *testing.T) {
	r := actor.DefaultParams().Radius
	b1 := newBallAt(0, 0, 0)
	b2 := newBallAt(1, 2*r+1e-10, 0)

	// Pure spin about z moves the contact point sideways only
	b1.AngularVelocity = mgl64.Vec3{0, 0, 50}
	if info := BallBallCollisionInfo(b1, b2); info != nil {
		t.Errorf("side spin alone should not approach, got %+v", info)
	}

	b1.Velocity = mgl64.Vec3{0.2, 0.1, 0}
	info := BallBallCollisionInfo(b1, b2)
	if info == nil {
		t.Fatal("expected an approaching contact")
	}
	if info.TangentVelocity.Len() < 1e-3 {
		t.Errorf("TangentVelocity = %v, expected the spin and the y motion", info.TangentVelocity)
	}
}

func TestBallStaticCollisionInfo(t *testing.T) {
	b := newBallAt(0, 0, 0)
	slate := mgl64.Vec3{0, 0, 0}

	b.Velocity = mgl64.Vec3{0, 0, -1}
	if BallStaticCollisionInfo(b, slate) == nil {
		t.Error("falling ball on the bed should collide")
	}

	b.Velocity = mgl64.Vec3{0, 0, 1}
	if BallStaticCollisionInfo(b, slate) != nil {
		t.Error("rising ball should not collide")
	}

	// Rolling without slipping: the contact point is still
	b.Velocity = mgl64.Vec3{1, 0, 0}
	b.AngularVelocity = rolling(b.Velocity, b.Radius)
	if info := BallStaticCollisionInfo(b, slate); info != nil {
		t.Errorf("rolling ball should not collide with the bed, got %+v", info)
	}

	b.Transform.Position[2] = 2 * b.Radius
	b.Velocity = mgl64.Vec3{0, 0, -1}
	if BallStaticCollisionInfo(b, slate) != nil {
		t.Error("airborne ball should not collide")
	}
}

// =============================================================================
// Detection Tests
// =============================================================================

func TestDetectSlateCollision_StoppedBall(t *testing.T) {
	b := newBallAt(0, 0, 0)
	b.Velocity = mgl64.Vec3{0, 0, -1}
	if !DetectSlateCollision(b, standardTable) {
		t.Fatal("falling ball should hit the slate")
	}

	b.IsStopped = true
	if DetectSlateCollision(b, standardTable) {
		t.Error("stopped ball should be skipped")
	}
}

func TestDetectCushionCollision(t *testing.T) {
	r := actor.DefaultParams().Radius
	h := standardTable.Specs.CushionNoseHeight - r
	nose := standardTable.Specs.TableLength / 2

	// Resting against the nose of the short cushion
	b := newBallAt(0, nose-math.Sqrt(r*r-h*h), 0)
	b.Velocity = mgl64.Vec3{1, 0, 0}
	if !DetectCushionCollision(b, standardTable) {
		t.Error("ball against the nose moving into the cushion should collide")
	}

	b.Velocity = mgl64.Vec3{-1, 0, 0}
	if DetectCushionCollision(b, standardTable) {
		t.Error("ball leaving the cushion should not collide")
	}

	center := newBallAt(1, 0, 0)
	center.Velocity = mgl64.Vec3{1, 0, 0}
	if DetectCushionCollision(center, standardTable) {
		t.Error("ball in the middle of the table should not reach a cushion")
	}
}

func TestDetectCollisionForBall(t *testing.T) {
	r := actor.DefaultParams().Radius
	b1 := newBallAt(0, 0, 0)
	b2 := newBallAt(1, 2*r+1e-10, 0)
	balls := []*actor.Ball{b1, b2}

	if DetectCollisionForBall(b1, standardTable, balls) {
		t.Error("balls at rest should not collide")
	}

	b2.Velocity = mgl64.Vec3{-1, 0, 0}
	b2.AngularVelocity = rolling(b2.Velocity, r)
	if !DetectCollisionForBall(b1, standardTable, balls) {
		t.Error("ball_1 rolling into ball_0 should be detected from ball_0")
	}
}

func TestDetectCollision_Order(t *testing.T) {
	r := actor.DefaultParams().Radius

	parked := actor.NewBall(0, standardTable, actor.DefaultParams())
	parked.Stop()
	b1 := newBallAt(1, 0, 0)
	b2 := newBallAt(2, 2*r+1e-10, 0)
	b1.Velocity = mgl64.Vec3{1, 0, 0}
	b1.AngularVelocity = rolling(b1.Velocity, r)
	balls := []*actor.Ball{parked, b1, b2}

	for _, grid := range []*SpatialGrid{nil, DefaultSpatialGrid(r)} {
		k, ok := DetectCollision(grid, standardTable, balls)
		if !ok || k != 1 {
			t.Errorf("DetectCollision(grid=%v) = (%d, %v), want (1, true)", grid != nil, k, ok)
		}
	}

	b1.Velocity = mgl64.Vec3{}
	b1.AngularVelocity = mgl64.Vec3{}
	if k, ok := DetectCollision(nil, standardTable, balls); ok {
		t.Errorf("DetectCollision() = %d, expected nothing at rest", k)
	}
}

func TestDetectCollision_GridMatchesBruteForce(t *testing.T) {
	r := actor.DefaultParams().Radius
	rng := rand.New(rand.NewSource(42))
	grid := DefaultSpatialGrid(r)

	for trial := 0; trial < 200; trial++ {
		balls := make([]*actor.Ball, 16)
		for i := range balls {
			// Packed in a small area so that contacts are frequent
			b := newBallAt(i, rng.Float64()*0.3, rng.Float64()*0.3)
			b.Velocity = mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, 0}
			b.AngularVelocity = rolling(b.Velocity, r)
			balls[i] = b
		}

		k1, ok1 := DetectCollision(nil, standardTable, balls)
		k2, ok2 := DetectCollision(grid, standardTable, balls)
		if k1 != k2 || ok1 != ok2 {
			t.Fatalf("trial %d: brute force = (%d, %v), grid = (%d, %v)", trial, k1, ok1, k2, ok2)
		}
	}
}
