package table

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	Inch   = 0.0254
	Degree = math.Pi / 180.0
)

// Design holds the measurements a table is generated from.
// Pockets and cushions are named as seen from above:
//
//	1 A 2 B 3
//	F - - - C
//	6 E 5 D 4
type Design struct {
	BallRadius float64
	BallMass   float64

	TableLength  float64 // nose to nose; the width is half of it
	RailWidth    float64
	CasingHeight float64

	CushionWidth       float64
	CushionNoseHeight  float64
	RubberBaseLength   float64
	RubberSideLength   float64
	RubberProfileAngle float64

	CornerPocketMouth  float64
	CornerPocketAngle  float64 // horizontal cut angle between nose line and jaw
	CornerPocketShelf  float64
	CornerPocketRadius float64

	SidePocketMouth  float64
	SidePocketAngle  float64
	SidePocketShelf  float64
	SidePocketRadius float64
}

// StandardDesign returns WPA measurements of a 9-foot table
func StandardDesign() Design {
	r := 0.5 * 2.25 * Inch
	return Design{
		BallRadius: r,
		BallMass:   0.163,

		TableLength:  100.0 * Inch,
		RailWidth:    7.0 * Inch,
		CasingHeight: 10.0 * Inch,

		CushionWidth:       2.0 * Inch,
		CushionNoseHeight:  2 * 0.635 * r,
		RubberBaseLength:   (1.0 + 3.0/16.0) * Inch,
		RubberSideLength:   (1.0 + 1.0/8.0) * Inch,
		RubberProfileAngle: 23.0 * Degree,

		CornerPocketMouth:  4.625 * Inch,
		CornerPocketAngle:  142.0 * Degree,
		CornerPocketShelf:  1.5 * Inch,
		CornerPocketRadius: 3.25 * Inch,

		SidePocketMouth:  (4.625 + 0.5) * Inch,
		SidePocketAngle:  104.0 * Degree,
		SidePocketShelf:  0.1875 * Inch,
		SidePocketRadius: 3.25 * Inch,
	}
}

// Standard returns the WPA 9-foot table
func Standard() *Table {
	t, err := Build(StandardDesign())
	if err != nil {
		panic(err)
	}
	return t
}

// NoseAngle is the angle at the cushion nose between the rubber base points
func (d Design) NoseAngle() float64 {
	return 2.0 * math.Asin(0.5*d.RubberBaseLength/d.RubberSideLength)
}

// BedAngle is the angle between the cushion face and the bed
func (d Design) BedAngle() float64 {
	return d.NoseAngle()/2.0 + d.RubberProfileAngle
}

// RailHeight is the height of the rail top above the bed
func (d Design) RailHeight() float64 {
	slope := d.NoseAngle()/2.0 - d.RubberProfileAngle
	return d.CushionNoseHeight + d.RubberSideLength*math.Sin(slope)
}

// Build generates the table geometry: pocket fall discs, fall corners and the cushion mesh
func Build(d Design) (*Table, error) {
	w := d.TableLength
	cm := d.CornerPocketMouth / math.Sqrt2
	sm := d.SidePocketMouth / 2

	specs := Specs{
		TableLength:       w,
		RailWidth:         d.RailWidth,
		RailHeight:        d.RailHeight(),
		CasingHeight:      d.CasingHeight,
		CushionWidth:      d.CushionWidth,
		CushionNoseHeight: d.CushionNoseHeight,
		BallRadius:        d.BallRadius,
		BallMass:          d.BallMass,
	}
	railBox := mgl64.Vec3{w/2 + d.CushionWidth, w/4 + d.CushionWidth, specs.RailHeight}

	// Cushion noses at the pocket mouths
	noses := map[string]mgl64.Vec2{
		"A1": {cm - w/2, w / 4},
		"A2": {-sm, w / 4},
		"B2": {sm, w / 4},
		"B3": {w/2 - cm, w / 4},
		"C3": {w / 2, w/4 - cm},
		"C4": {w / 2, cm - w/4},
		"D4": {w/2 - cm, -w / 4},
		"D5": {sm, -w / 4},
		"E5": {-sm, -w / 4},
		"E6": {cm - w/2, -w / 4},
		"F6": {-w / 2, cm - w/4},
		"F1": {-w / 2, w/4 - cm},
	}

	mouth := func(a, b string) mgl64.Vec2 {
		return noses[a].Add(noses[b]).Mul(0.5)
	}
	dc := d.CornerPocketRadius + d.CornerPocketShelf
	ds := d.SidePocketRadius + d.SidePocketShelf
	diagonal := 1 / math.Sqrt2

	var pockets [PocketCount]Pocket
	pockets[0] = Pocket{mouth("A1", "F1").Add(mgl64.Vec2{-diagonal, diagonal}.Mul(dc)), d.CornerPocketRadius}
	pockets[1] = Pocket{mouth("A2", "B2").Add(mgl64.Vec2{0, ds}), d.SidePocketRadius}
	pockets[2] = Pocket{mouth("B3", "C3").Add(mgl64.Vec2{diagonal, diagonal}.Mul(dc)), d.CornerPocketRadius}
	pockets[3] = Pocket{mouth("C4", "D4").Add(mgl64.Vec2{diagonal, -diagonal}.Mul(dc)), d.CornerPocketRadius}
	pockets[4] = Pocket{mouth("D5", "E5").Add(mgl64.Vec2{0, -ds}), d.SidePocketRadius}
	pockets[5] = Pocket{mouth("E6", "F6").Add(mgl64.Vec2{-diagonal, -diagonal}.Mul(dc)), d.CornerPocketRadius}

	corners, err := fallCorners(pockets, railBox)
	if err != nil {
		return nil, err
	}

	cushions := make([]Triangle, 0, 48)
	for _, c := range []struct {
		start, end string
		outward    mgl64.Vec2
		startAngle float64
		endAngle   float64
	}{
		{"A1", "A2", mgl64.Vec2{0, 1}, d.CornerPocketAngle, d.SidePocketAngle},
		{"B2", "B3", mgl64.Vec2{0, 1}, d.SidePocketAngle, d.CornerPocketAngle},
		{"C3", "C4", mgl64.Vec2{1, 0}, d.CornerPocketAngle, d.CornerPocketAngle},
		{"D4", "D5", mgl64.Vec2{0, -1}, d.CornerPocketAngle, d.SidePocketAngle},
		{"E5", "E6", mgl64.Vec2{0, -1}, d.SidePocketAngle, d.CornerPocketAngle},
		{"F6", "F1", mgl64.Vec2{-1, 0}, d.CornerPocketAngle, d.CornerPocketAngle},
	} {
		cushions = append(cushions, cushionMesh(d, specs.RailHeight, noses[c.start], noses[c.end], c.outward, c.startAngle, c.endAngle)...)
	}

	return New(specs, railBox, pockets, corners, cushions)
}

// fallCorners intersects every pocket fall circle with the rail box edges
func fallCorners(pockets [PocketCount]Pocket, box mgl64.Vec3) ([FallCornerCount]mgl64.Vec2, error) {
	var corners [FallCornerCount]mgl64.Vec2

	boxCorners := [4]mgl64.Vec2{
		{-box.X(), box.Y()},
		{box.X(), box.Y()},
		{box.X(), -box.Y()},
		{-box.X(), -box.Y()},
	}

	found := make([]mgl64.Vec2, 0, FallCornerCount)
	for _, pocket := range pockets {
		for k := range boxCorners {
			found = append(found, circleSegmentIntersections(pocket.Center, pocket.Radius, boxCorners[k], boxCorners[(k+1)%4])...)
		}
	}
	if len(found) != FallCornerCount {
		return corners, fmt.Errorf("%w: found %d pocket fall corners instead of %d", ErrMalformedGeometry, len(found), FallCornerCount)
	}
	copy(corners[:], found)

	return corners, nil
}

func circleSegmentIntersections(center mgl64.Vec2, radius float64, p0, p1 mgl64.Vec2) []mgl64.Vec2 {
	d := p1.Sub(p0)
	f := p0.Sub(center)

	a := d.Dot(d)
	b := 2 * f.Dot(d)
	c := f.Dot(f) - radius*radius

	disc := b*b - 4*a*c
	if a == 0 || disc < 0 {
		return nil
	}

	sq := math.Sqrt(disc)
	ts := []float64{(-b - sq) / (2 * a)}
	if disc > 0 {
		ts = append(ts, (-b+sq)/(2*a))
	}

	var points []mgl64.Vec2
	for _, t := range ts {
		if t >= 0 && t <= 1 {
			points = append(points, p0.Add(d.Mul(t)))
		}
	}
	return points
}

// cushionMesh triangulates one cushion: the face under the nose, the top
// towards the rail and the two jaws cut at the pocket angles
func cushionMesh(d Design, railHeight float64, start, end, outward mgl64.Vec2, startAngle, endAngle float64) []Triangle {
	along := end.Sub(start).Normalize()

	// Cross section as (depth behind the nose line, height)
	under := mgl64.Vec2{d.CushionNoseHeight / math.Tan(d.BedAngle()), 0}
	profile := [4]mgl64.Vec2{
		under,
		{0, d.CushionNoseHeight},
		{d.CushionWidth, railHeight},
		{d.CushionWidth, 0},
	}

	// The jaws lean towards the pocket by -cot(angle) per unit of depth
	startLean := -1 / math.Tan(startAngle)
	endLean := -1 / math.Tan(endAngle)

	point := func(nose, dir mgl64.Vec2, lean float64, section mgl64.Vec2) mgl64.Vec3 {
		p := nose.Add(outward.Mul(section.X())).Add(dir.Mul(section.X() * lean))
		return mgl64.Vec3{p.X(), p.Y(), section.Y()}
	}

	var s, e [4]mgl64.Vec3
	for i, section := range profile {
		s[i] = point(start, along.Mul(-1), startLean, section)
		e[i] = point(end, along, endLean, section)
	}

	const u, n, t, b = 0, 1, 2, 3
	return []Triangle{
		// under the nose
		{s[u], s[n], e[n]},
		{s[u], e[n], e[u]},
		// top
		{s[n], s[t], e[t]},
		{s[n], e[t], e[n]},
		// jaws
		{s[u], s[n], s[t]},
		{s[u], s[t], s[b]},
		{e[u], e[n], e[t]},
		{e[u], e[t], e[b]},
	}
}
