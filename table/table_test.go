package table

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// Standard Table Tests
// =============================================================================

func TestStandard_Dimensions(t *testing.T) {
	tbl := Standard()

	if !almostEqual(tbl.Specs.BallRadius, 0.028575, 1e-12) {
		t.Errorf("BallRadius = %v, want 0.028575", tbl.Specs.BallRadius)
	}
	if !almostEqual(tbl.Specs.TableLength, 2.54, 1e-12) {
		t.Errorf("TableLength = %v, want 2.54", tbl.Specs.TableLength)
	}
	want := mgl64.Vec3{1.27 + 0.0508, 0.635 + 0.0508, tbl.Specs.RailHeight}
	if !vec3AlmostEqual(tbl.RailBox, want, 1e-12) {
		t.Errorf("RailBox = %v, want %v", tbl.RailBox, want)
	}
	// The rail stands slightly above the cushion nose
	if tbl.Specs.RailHeight <= tbl.Specs.CushionNoseHeight || tbl.Specs.RailHeight > 2*tbl.Specs.BallRadius {
		t.Errorf("RailHeight = %v is not between nose height %v and ball diameter", tbl.Specs.RailHeight, tbl.Specs.CushionNoseHeight)
	}
	if len(tbl.Cushions) != 48 {
		t.Errorf("Expected 48 cushion triangles, got %d", len(tbl.Cushions))
	}
}

func TestStandard_FallCornersOnCirclesAndBox(t *testing.T) {
	tbl := Standard()

	for k, corner := range tbl.FallCorners {
		pocket := tbl.Pockets[k/2]
		if d := corner.Sub(pocket.Center).Len(); !almostEqual(d, pocket.Radius, 1e-9) {
			t.Errorf("corner %d at %v is %v from pocket %d center, want radius %v", k, corner, d, k/2+1, pocket.Radius)
		}

		onX := almostEqual(math.Abs(corner.X()), tbl.RailBox.X(), 1e-9)
		onY := almostEqual(math.Abs(corner.Y()), tbl.RailBox.Y(), 1e-9)
		if !onX && !onY {
			t.Errorf("corner %d at %v is not on the rail box edge", k, corner)
		}
	}
}

func TestStandard_PocketsAreSymmetric(t *testing.T) {
	tbl := Standard()

	pairs := [][2]int{{0, 5}, {2, 3}, {1, 4}}
	for _, pair := range pairs {
		a, b := tbl.Pockets[pair[0]].Center, tbl.Pockets[pair[1]].Center
		if !almostEqual(a.X(), b.X(), 1e-12) || !almostEqual(a.Y(), -b.Y(), 1e-12) {
			t.Errorf("pockets %d and %d are not mirrored: %v, %v", pair[0]+1, pair[1]+1, a, b)
		}
	}
	if !almostEqual(tbl.Pockets[0].Center.X(), -tbl.Pockets[2].Center.X(), 1e-12) {
		t.Errorf("corner pockets 1 and 3 are not mirrored: %v, %v", tbl.Pockets[0].Center, tbl.Pockets[2].Center)
	}
}

func TestBuild_RejectsPocketsMissingTheRails(t *testing.T) {
	design := StandardDesign()
	// Fall discs too small to reach the rail box
	design.CornerPocketRadius = 0.001
	design.SidePocketRadius = 0.001

	_, err := Build(design)
	if !errors.Is(err, ErrMalformedGeometry) {
		t.Errorf("Expected ErrMalformedGeometry, got %v", err)
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestNew_Validation(t *testing.T) {
	std := Standard()

	tests := []struct {
		name   string
		modify func(specs *Specs, box *mgl64.Vec3, pockets *[PocketCount]Pocket, cushions *[]Triangle)
	}{
		{
			name: "Empty cushion mesh",
			modify: func(_ *Specs, _ *mgl64.Vec3, _ *[PocketCount]Pocket, cushions *[]Triangle) {
				*cushions = nil
			},
		},
		{
			name: "Negative ball radius",
			modify: func(specs *Specs, _ *mgl64.Vec3, _ *[PocketCount]Pocket, _ *[]Triangle) {
				specs.BallRadius = -1
			},
		},
		{
			name: "Zero rail box",
			modify: func(_ *Specs, box *mgl64.Vec3, _ *[PocketCount]Pocket, _ *[]Triangle) {
				*box = mgl64.Vec3{0, 0, 0}
			},
		},
		{
			name: "NaN pocket center",
			modify: func(_ *Specs, _ *mgl64.Vec3, pockets *[PocketCount]Pocket, _ *[]Triangle) {
				pockets[3].Center = mgl64.Vec2{math.NaN(), 0}
			},
		},
		{
			name: "Infinite cushion vertex",
			modify: func(_ *Specs, _ *mgl64.Vec3, _ *[PocketCount]Pocket, cushions *[]Triangle) {
				(*cushions)[7].B = mgl64.Vec3{0, math.Inf(1), 0}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := std.Specs
			box := std.RailBox
			pockets := std.Pockets
			cushions := append([]Triangle(nil), std.Cushions...)
			tt.modify(&specs, &box, &pockets, &cushions)

			tbl, err := New(specs, box, pockets, std.FallCorners, cushions)
			if !errors.Is(err, ErrMalformedGeometry) {
				t.Errorf("Expected ErrMalformedGeometry, got %v", err)
			}
			if tbl != nil {
				t.Errorf("Expected nil table on error")
			}
		})
	}
}

func TestDefaultBallPosition(t *testing.T) {
	tbl := Standard()

	for id := range 16 {
		p := tbl.DefaultBallPosition(id)
		want := mgl64.Vec3{-1.0 + 0.1*float64(id), 0.86, tbl.Specs.BallRadius}
		if !vec3AlmostEqual(p, want, 1e-12) {
			t.Errorf("DefaultBallPosition(%d) = %v, want %v", id, p, want)
		}
	}
}

func TestInsideNoses(t *testing.T) {
	tbl := Standard()
	r := tbl.Specs.BallRadius

	tests := []struct {
		name string
		p    mgl64.Vec3
		want bool
	}{
		{"Center", mgl64.Vec3{0, 0, r}, true},
		{"Near long cushion", mgl64.Vec3{0.5, 0.635 - r/2, r}, false},
		{"Near short cushion", mgl64.Vec3{1.27 - r/2, 0, r}, false},
		{"Just clear", mgl64.Vec3{1.27 - 2*r, 0.635 - 2*r, r}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tbl.InsideNoses(tt.p, r); got != tt.want {
				t.Errorf("InsideNoses(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

// Helper function to compare floats with epsilon tolerance
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// Helper function to compare Vec3 with epsilon tolerance
func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}
