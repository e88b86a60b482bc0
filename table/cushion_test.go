package table

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestClosestPointOnTriangle(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{1, 0, 0}
	c := mgl64.Vec3{0, 1, 0}

	tests := []struct {
		name string
		p    mgl64.Vec3
		want mgl64.Vec3
	}{
		{"Vertex a", mgl64.Vec3{-1, -1, 1}, a},
		{"Vertex b", mgl64.Vec3{2, -0.5, 0}, b},
		{"Vertex c", mgl64.Vec3{-0.5, 2, 0}, c},
		{"Edge ab", mgl64.Vec3{0.5, -1, 3}, mgl64.Vec3{0.5, 0, 0}},
		{"Edge ac", mgl64.Vec3{-1, 0.5, 0}, mgl64.Vec3{0, 0.5, 0}},
		{"Edge bc", mgl64.Vec3{1, 1, 0}, mgl64.Vec3{0.5, 0.5, 0}},
		{"Edge bc off center", mgl64.Vec3{1, 0.5, -2}, mgl64.Vec3{0.75, 0.25, 0}},
		{"Interior", mgl64.Vec3{0.25, 0.25, 2}, mgl64.Vec3{0.25, 0.25, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClosestPointOnTriangle(tt.p, a, b, c)
			if !vec3AlmostEqual(got, tt.want, 1e-12) {
				t.Errorf("ClosestPointOnTriangle(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestClosestPointOnTriangle_Degenerate(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	got := ClosestPointOnTriangle(mgl64.Vec3{0.3, 0.3, 0.3}, a, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0})
	for _, v := range got {
		if math.IsNaN(v) {
			t.Fatalf("degenerate triangle produced NaN: %v", got)
		}
	}
}

func TestClosestCushionPoint_GridMatchesLinearScan(t *testing.T) {
	tbl := Standard()

	for _, z := range []float64{0, tbl.Specs.BallRadius, 0.05} {
		for x := -1.45; x <= 1.45; x += 0.05 {
			for y := -0.8; y <= 0.8; y += 0.05 {
				p := mgl64.Vec3{x, y, z}
				grid := tbl.ClosestCushionPoint(p)
				linear := tbl.closestCushionPointLinear(p)

				if dg, dl := p.Sub(grid).Len(), p.Sub(linear).Len(); !almostEqual(dg, dl, 1e-12) {
					t.Fatalf("at %v grid distance %v differs from linear %v", p, dg, dl)
				}
			}
		}
	}
}

func TestClosestCushionPoint_FarAway(t *testing.T) {
	tbl := Standard()

	p := mgl64.Vec3{50, -30, 2}
	if got, want := tbl.ClosestCushionPoint(p), tbl.closestCushionPointLinear(p); !vec3AlmostEqual(got, want, 1e-12) {
		t.Errorf("ClosestCushionPoint(%v) = %v, want %v", p, got, want)
	}
}

func TestClosestCushionPoint_TouchingBall(t *testing.T) {
	tbl := Standard()
	r := tbl.Specs.BallRadius

	// The nose is above the center of a ball resting against the long cushion
	h := tbl.Specs.CushionNoseHeight - r
	p := mgl64.Vec3{0.5, tbl.Specs.TableLength/4 - math.Sqrt(r*r-h*h), r}
	got := tbl.ClosestCushionPoint(p)
	if d := p.Sub(got).Len(); d > r+1e-9 {
		t.Errorf("Ball against the cushion is %v from it, want at most %v", d, r)
	}
	if got.Y() < tbl.Specs.TableLength/4-1e-9 {
		t.Errorf("Contact %v is in front of the nose line", got)
	}
}
