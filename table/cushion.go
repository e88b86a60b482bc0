package table

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ClosestPointOnTriangle returns the point of triangle abc closest to p.
// Voronoi regions are tested in order: vertices, edges, then the interior.
func ClosestPointOnTriangle(p, a, b, c mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)

	// Vertex a
	ap := p.Sub(a)
	abAp := ab.Dot(ap)
	acAp := ac.Dot(ap)
	if abAp <= 0 && acAp <= 0 {
		return a
	}

	// Vertex b
	bp := p.Sub(b)
	abBp := ab.Dot(bp)
	acBp := ac.Dot(bp)
	if abBp >= 0 && acBp <= abBp {
		return b
	}

	// Vertex c
	cp := p.Sub(c)
	abCp := ab.Dot(cp)
	acCp := ac.Dot(cp)
	if acCp >= 0 && abCp <= acCp {
		return c
	}

	// Edge ab
	lambdaC := abAp*acBp - abBp*acAp
	if lambdaC <= 0 && abAp >= 0 && abBp <= 0 {
		v := abAp / (abAp - abBp)
		return a.Add(ab.Mul(v))
	}

	// Edge ac
	lambdaB := abCp*acAp - abAp*acCp
	if lambdaB <= 0 && acAp >= 0 && acCp <= 0 {
		v := acAp / (acAp - acCp)
		return a.Add(ac.Mul(v))
	}

	// Edge bc
	lambdaA := abBp*acCp - abCp*acBp
	if lambdaA <= 0 && acBp >= abBp && abCp >= acCp {
		v := (acBp - abBp) / ((acBp - abBp) + (abCp - acCp))
		return b.Add(c.Sub(b).Mul(v))
	}

	// Interior
	sum := lambdaA + lambdaB + lambdaC
	if sum == 0 || math.IsNaN(sum) {
		// degenerate triangle
		return a
	}
	return a.Mul(lambdaA / sum).Add(b.Mul(lambdaB / sum)).Add(c.Mul(lambdaC / sum))
}

// ClosestCushionPoint returns the point of the cushion mesh closest to p
func (t *Table) ClosestCushionPoint(p mgl64.Vec3) mgl64.Vec3 {
	if t.cushionGrid != nil {
		if point, ok := t.cushionGrid.closest(p, t.Cushions); ok {
			return point
		}
	}
	return t.closestCushionPointLinear(p)
}

func (t *Table) closestCushionPointLinear(p mgl64.Vec3) mgl64.Vec3 {
	var closest mgl64.Vec3
	best := math.Inf(1)
	for _, tri := range t.Cushions {
		point := ClosestPointOnTriangle(p, tri.A, tri.B, tri.C)
		if dist := p.Sub(point).Len(); dist < best {
			best = dist
			closest = point
		}
	}
	return closest
}
