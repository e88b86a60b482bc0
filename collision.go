package billiard

import (
	"github.com/akmonengine/billiard/actor"
	"github.com/akmonengine/billiard/table"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionInfo describes the relative motion at an approaching contact
type CollisionInfo struct {
	// Unit direction from the ball towards the other body
	Normal          mgl64.Vec3
	NormalVelocity  mgl64.Vec3
	TangentVelocity mgl64.Vec3
}

func newCollisionInfo(n, v mgl64.Vec3) *CollisionInfo {
	vn := actor.Project(v, n)
	// Only approaching contacts collide
	if vn.Dot(n) <= actor.Epsilon {
		return nil
	}
	return &CollisionInfo{
		Normal:          n,
		NormalVelocity:  vn,
		TangentVelocity: v.Sub(vn),
	}
}

// BallBallCollisionInfo returns nil unless the balls touch and their surfaces approach each other
func BallBallCollisionInfo(b1, b2 *actor.Ball) *CollisionInfo {
	if !touching(b1, b2) {
		return nil
	}

	n := actor.Normalize(b2.Transform.Position.Sub(b1.Transform.Position))
	v := b1.SurfaceVelocity(n).Sub(b2.SurfaceVelocity(n.Mul(-1)))

	return newCollisionInfo(n, v)
}

// BallStaticCollisionInfo returns nil unless the ball touches point and moves towards it
func BallStaticCollisionInfo(b *actor.Ball, point mgl64.Vec3) *CollisionInfo {
	if !touchingStatic(b, point) {
		return nil
	}

	n := actor.Normalize(point.Sub(b.Transform.Position))
	return newCollisionInfo(n, b.SurfaceVelocity(n))
}

func DetectSlateCollision(b *actor.Ball, tbl *table.Table) bool {
	if b.IsStopped {
		return false
	}
	return BallStaticCollisionInfo(b, tbl.ClosestSlatePoint(b.Transform.Position)) != nil
}

func DetectCushionCollision(b *actor.Ball, tbl *table.Table) bool {
	if b.IsStopped {
		return false
	}
	// Well inside the cushion noses
	if tbl.InsideNoses(b.Transform.Position, b.Radius) {
		return false
	}
	return BallStaticCollisionInfo(b, tbl.ClosestCushionPoint(b.Transform.Position)) != nil
}

// DetectCollisionForBall reports whether b is in an approaching contact with
// another ball, the slate or the cushions
func DetectCollisionForBall(b *actor.Ball, tbl *table.Table, balls []*actor.Ball) bool {
	for _, other := range balls {
		if other == b {
			continue
		}
		if BallBallCollisionInfo(b, other) != nil {
			return true
		}
	}
	return DetectSlateCollision(b, tbl) || DetectCushionCollision(b, tbl)
}

// DetectCollision returns the index of the first ball found in an approaching
// contact. Balls are scanned in order, each against the following balls, then
// the slate, then the cushions. A nil grid compares every pair of balls.
func DetectCollision(grid *SpatialGrid, tbl *table.Table, balls []*actor.Ball) (int, bool) {
	if grid != nil {
		grid.Build(balls)
	}

	for k1, b1 := range balls {
		if grid != nil {
			for _, k2 := range grid.Neighbors(k1, balls) {
				if BallBallCollisionInfo(b1, balls[k2]) != nil {
					return k1, true
				}
			}
		} else {
			for _, b2 := range balls[k1+1:] {
				if BallBallCollisionInfo(b1, b2) != nil {
					return k1, true
				}
			}
		}

		if DetectSlateCollision(b1, tbl) || DetectCushionCollision(b1, tbl) {
			return k1, true
		}
	}

	return -1, false
}

// touching reports whether the surfaces of two balls are within Epsilon
func touching(b1, b2 *actor.Ball) bool {
	return b1.Transform.Position.Sub(b2.Transform.Position).Len()-b1.Radius-b2.Radius < actor.Epsilon
}

// touchingStatic reports whether the surface of b is within Epsilon of point
func touchingStatic(b *actor.Ball, point mgl64.Vec3) bool {
	return b.Transform.Position.Sub(point).Len()-b.Radius < actor.Epsilon
}
