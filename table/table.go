package table

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	PocketCount     = 6
	FallCornerCount = 12
)

// Parking row used as the default position of balls that are not in play.
const (
	parkingX0      = -1.0
	parkingSpacing = 0.1
	parkingY       = 0.86
)

var ErrMalformedGeometry = errors.New("malformed table geometry")

// Specs holds the table measurements the physics needs, in SI units
type Specs struct {
	TableLength       float64 `yaml:"TABLE_LENGTH" json:"TABLE_LENGTH"`
	RailWidth         float64 `yaml:"TABLE_RAIL_WIDTH" json:"TABLE_RAIL_WIDTH"`
	RailHeight        float64 `yaml:"TABLE_RAIL_HEIGHT" json:"TABLE_RAIL_HEIGHT"`
	CasingHeight      float64 `yaml:"TABLE_CASING_HEIGHT" json:"TABLE_CASING_HEIGHT"`
	CushionWidth      float64 `yaml:"CUSHION_WIDTH" json:"CUSHION_WIDTH"`
	CushionNoseHeight float64 `yaml:"CUSHION_NOSE_HEIGHT" json:"CUSHION_NOSE_HEIGHT"`
	BallRadius        float64 `yaml:"BALL_RADIUS" json:"BALL_RADIUS"`
	BallMass          float64 `yaml:"BALL_MASS" json:"BALL_MASS"`
}

// Pocket is the disc cut out of the bed; a ball over it is falling
type Pocket struct {
	Center mgl64.Vec2
	Radius float64
}

type Triangle struct {
	A, B, C mgl64.Vec3
}

// AABB returns the bounding box of the triangle
func (t Triangle) AABB() AABB {
	aabb := AABB{Min: t.A, Max: t.A}
	return aabb.Extend(t.B).Extend(t.C)
}

// Table is the static playing environment. It is immutable once built and
// can be shared by every ball and by the collision code without locking.
type Table struct {
	Specs Specs
	// Half extents of the bed, from cushion back to cushion back, and the rail height
	RailBox     mgl64.Vec3
	Pockets     [PocketCount]Pocket
	FallCorners [FallCornerCount]mgl64.Vec2
	Cushions    []Triangle

	cushionGrid *triangleGrid
}

// New builds a table and validates it. The cushion slice is copied.
func New(specs Specs, railBox mgl64.Vec3, pockets [PocketCount]Pocket, corners [FallCornerCount]mgl64.Vec2, cushions []Triangle) (*Table, error) {
	t := &Table{
		Specs:       specs,
		RailBox:     railBox,
		Pockets:     pockets,
		FallCorners: corners,
		Cushions:    append([]Triangle(nil), cushions...),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.cushionGrid = newTriangleGrid(t.Cushions, cushionCellSize(specs))

	return t, nil
}

// Validate checks the static payload before any simulation runs
func (t *Table) Validate() error {
	if len(t.Cushions) == 0 {
		return fmt.Errorf("%w: empty cushion mesh", ErrMalformedGeometry)
	}

	dims := map[string]float64{
		"TABLE_LENGTH":        t.Specs.TableLength,
		"TABLE_RAIL_WIDTH":    t.Specs.RailWidth,
		"TABLE_CASING_HEIGHT": t.Specs.CasingHeight,
		"BALL_RADIUS":         t.Specs.BallRadius,
		"BALL_MASS":           t.Specs.BallMass,
		"railbox.x":           t.RailBox.X(),
		"railbox.y":           t.RailBox.Y(),
	}
	for name, value := range dims {
		if !finite(value) || value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrMalformedGeometry, name, value)
		}
	}

	for k, pocket := range t.Pockets {
		if !finite(pocket.Center.X()) || !finite(pocket.Center.Y()) || !finite(pocket.Radius) || pocket.Radius <= 0 {
			return fmt.Errorf("%w: pocket %d has invalid center %v or radius %v", ErrMalformedGeometry, k+1, pocket.Center, pocket.Radius)
		}
	}
	for k, corner := range t.FallCorners {
		if !finite(corner.X()) || !finite(corner.Y()) {
			return fmt.Errorf("%w: pocket fall corner %d is not finite", ErrMalformedGeometry, k)
		}
	}
	for k, tri := range t.Cushions {
		for _, v := range [3]mgl64.Vec3{tri.A, tri.B, tri.C} {
			if !finite(v.X()) || !finite(v.Y()) || !finite(v.Z()) {
				return fmt.Errorf("%w: cushion triangle %d is not finite", ErrMalformedGeometry, k)
			}
		}
	}

	return nil
}

// DefaultBallPosition returns the parking spot of a ball outside the playing area
func (t *Table) DefaultBallPosition(id int) mgl64.Vec3 {
	return mgl64.Vec3{parkingX0 + parkingSpacing*float64(id), parkingY, t.Specs.BallRadius}
}

// OuterRail returns the horizontal half extents of the table up to the outer edge of the rails
func (t *Table) OuterRail() mgl64.Vec2 {
	return mgl64.Vec2{
		t.Specs.TableLength/2 + t.Specs.RailWidth,
		t.Specs.TableLength/4 + t.Specs.RailWidth,
	}
}

// FloorDepth is how far below the bed a ball may fall before it is considered gone
func (t *Table) FloorDepth() float64 {
	return t.Specs.CasingHeight - t.Specs.RailHeight
}

// InsideNoses reports whether a sphere at p stays strictly within the cushion
// nose lines, where no cushion contact is possible
func (t *Table) InsideNoses(p mgl64.Vec3, radius float64) bool {
	return math.Abs(p.X())+radius < t.Specs.TableLength/2 && math.Abs(p.Y())+radius < t.Specs.TableLength/4
}

func cushionCellSize(specs Specs) float64 {
	if specs.TableLength > 0 {
		return specs.TableLength / 16
	}
	return 0.1
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
