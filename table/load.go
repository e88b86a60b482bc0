package table

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Payload is the serialized static table: measurements, rail box, pocket fall
// discs, fall corners and the cushion mesh. JSON documents decode as well,
// being valid YAML.
type Payload struct {
	Specs       Specs           `yaml:"specs" json:"specs"`
	RailBox     []float64       `yaml:"railbox" json:"railbox"`
	Pockets     []PocketPayload `yaml:"pockets" json:"pockets"`
	FallCorners [][]float64     `yaml:"pocket_fall_corners" json:"pocket_fall_corners"`
	Cushions    [][][]float64   `yaml:"cushions" json:"cushions"`
}

type PocketPayload struct {
	Center []float64 `yaml:"center" json:"center"`
	Radius float64   `yaml:"radius" json:"radius"`
}

// Load decodes a table payload and validates it
func Load(r io.Reader) (*Table, error) {
	var payload Payload
	if err := yaml.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}
	return payload.Table()
}

// LoadFile reads a table payload from path
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Table converts the payload into a validated table
func (p Payload) Table() (*Table, error) {
	if len(p.RailBox) != 3 {
		return nil, fmt.Errorf("%w: railbox needs 3 values, got %d", ErrMalformedGeometry, len(p.RailBox))
	}
	if len(p.Pockets) != PocketCount {
		return nil, fmt.Errorf("%w: expected %d pockets, got %d", ErrMalformedGeometry, PocketCount, len(p.Pockets))
	}
	if len(p.FallCorners) != FallCornerCount {
		return nil, fmt.Errorf("%w: expected %d pocket fall corners, got %d", ErrMalformedGeometry, FallCornerCount, len(p.FallCorners))
	}

	var pockets [PocketCount]Pocket
	for k, pocket := range p.Pockets {
		if len(pocket.Center) != 2 {
			return nil, fmt.Errorf("%w: pocket %d center needs 2 values", ErrMalformedGeometry, k+1)
		}
		pockets[k] = Pocket{Center: mgl64.Vec2{pocket.Center[0], pocket.Center[1]}, Radius: pocket.Radius}
	}

	var corners [FallCornerCount]mgl64.Vec2
	for k, corner := range p.FallCorners {
		if len(corner) != 2 {
			return nil, fmt.Errorf("%w: pocket fall corner %d needs 2 values", ErrMalformedGeometry, k)
		}
		corners[k] = mgl64.Vec2{corner[0], corner[1]}
	}

	cushions := make([]Triangle, len(p.Cushions))
	for k, tri := range p.Cushions {
		if len(tri) != 3 {
			return nil, fmt.Errorf("%w: cushion triangle %d needs 3 vertices", ErrMalformedGeometry, k)
		}
		var vertices [3]mgl64.Vec3
		for i, v := range tri {
			if len(v) != 3 {
				return nil, fmt.Errorf("%w: cushion triangle %d vertex %d needs 3 values", ErrMalformedGeometry, k, i)
			}
			vertices[i] = mgl64.Vec3{v[0], v[1], v[2]}
		}
		cushions[k] = Triangle{vertices[0], vertices[1], vertices[2]}
	}

	railBox := mgl64.Vec3{p.RailBox[0], p.RailBox[1], p.RailBox[2]}
	return New(p.Specs, railBox, pockets, corners, cushions)
}

// Payload returns the serializable form of the table
func (t *Table) Payload() Payload {
	p := Payload{
		Specs:       t.Specs,
		RailBox:     []float64{t.RailBox.X(), t.RailBox.Y(), t.RailBox.Z()},
		Pockets:     make([]PocketPayload, 0, PocketCount),
		FallCorners: make([][]float64, 0, FallCornerCount),
		Cushions:    make([][][]float64, 0, len(t.Cushions)),
	}
	for _, pocket := range t.Pockets {
		p.Pockets = append(p.Pockets, PocketPayload{
			Center: []float64{pocket.Center.X(), pocket.Center.Y()},
			Radius: pocket.Radius,
		})
	}
	for _, corner := range t.FallCorners {
		p.FallCorners = append(p.FallCorners, []float64{corner.X(), corner.Y()})
	}
	for _, tri := range t.Cushions {
		p.Cushions = append(p.Cushions, [][]float64{
			{tri.A.X(), tri.A.Y(), tri.A.Z()},
			{tri.B.X(), tri.B.Y(), tri.B.Z()},
			{tri.C.X(), tri.C.Y(), tri.C.Z()},
		})
	}
	return p
}

// Encode writes the table payload as YAML
func (t *Table) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t.Payload()); err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	return enc.Close()
}
