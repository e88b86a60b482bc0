package table

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ClosestSlatePoint finds the point of the bed closest to p. The bed is the
// rail box with the six pocket fall discs cut out of it, so a ball hanging
// over a pocket mouth is resolved against the pocket lip.
func (t *Table) ClosestSlatePoint(p mgl64.Vec3) mgl64.Vec3 {
	box := t.RailBox

	// 1) Clamp to the box
	cp := mgl64.Vec2{
		mgl64.Clamp(p.X(), -box.X(), box.X()),
		mgl64.Clamp(p.Y(), -box.Y(), box.Y()),
	}

	// 2) Push out of the pocket fall circles
	for _, pocket := range t.Pockets {
		offset := cp.Sub(pocket.Center)
		dist := offset.Len()
		if dist >= pocket.Radius {
			continue
		}
		if dist == 0 {
			// Dead center over the pocket: fall back towards the middle of the table
			offset = pocket.Center.Mul(-1)
			dist = offset.Len()
			if dist == 0 {
				continue
			}
		}
		cp = pocket.Center.Add(offset.Mul(pocket.Radius / dist))
	}

	// 3) Still on the bed
	if math.Abs(cp.X()) <= box.X() && math.Abs(cp.Y()) <= box.Y() {
		return mgl64.Vec3{cp.X(), cp.Y(), 0}
	}

	// 4) Pushed off the bed: the nearest corner where a fall circle meets the box edge
	p2 := mgl64.Vec2{p.X(), p.Y()}
	closest := t.FallCorners[0]
	best := math.Inf(1)
	for _, corner := range t.FallCorners {
		if dist := p2.Sub(corner).Len(); dist < best {
			best = dist
			closest = corner
		}
	}

	return mgl64.Vec3{closest.X(), closest.Y(), 0}
}
