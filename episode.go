package billiard

import (
	"github.com/akmonengine/billiard/actor"
	"github.com/akmonengine/billiard/constraint"
	"github.com/akmonengine/billiard/table"
)

// NewEpisode gathers the balls transitively touching balls[trigger], with
// the slate and cushions they touch, into a collision episode. A nil grid
// compares every pair of balls.
func NewEpisode(grid *SpatialGrid, tbl *table.Table, balls []*actor.Ball, trigger int, params constraint.Params) *constraint.Episode {
	return newEpisode(grid, tbl, balls, trigger, params, DEFAULT_WORKERS)
}

func newEpisode(grid *SpatialGrid, tbl *table.Table, balls []*actor.Ball, trigger int, params constraint.Params, workers int) *constraint.Episode {
	graph := buildTouchingGraph(grid, balls, workers)
	component := graph.connectedComponent(trigger)

	objects := make([]*constraint.ContactObject, 0, len(component)+2)
	points := make([]*constraint.ContactPoint, 0, len(component)*3)

	byIndex := make(map[int]*constraint.ContactObject, len(component))
	for _, k := range component {
		o := constraint.NewBallObject(balls[k])
		byIndex[k] = o
		objects = append(objects, o)
	}

	// Static participants are shared by every ball touching them
	var slate, cushion *constraint.ContactObject
	staticObject := func(kind constraint.Kind) *constraint.ContactObject {
		ref := &slate
		if kind == constraint.KindCushion {
			ref = &cushion
		}
		if *ref == nil {
			*ref = constraint.NewStaticObject(kind)
			objects = append(objects, *ref)
		}
		return *ref
	}

	for i, k1 := range component {
		b1 := balls[k1]
		p1 := b1.Transform.Position

		for _, k2 := range component[i+1:] {
			if !graph.hasEdge(k1, k2) {
				continue
			}
			b2 := balls[k2]
			p2 := b2.Transform.Position

			// Centers weighted by the opposite radii
			position := p1.Mul(b2.Radius).Add(p2.Mul(b1.Radius)).Mul(1 / (b1.Radius + b2.Radius))
			normal := actor.Normalize(p2.Sub(p1))
			points = append(points, constraint.NewContactPoint(byIndex[k1], byIndex[k2], position, normal))
		}

		if point := tbl.ClosestCushionPoint(p1); touchingStatic(b1, point) {
			points = append(points, constraint.NewContactPoint(byIndex[k1], staticObject(constraint.KindCushion), point, actor.Normalize(point.Sub(p1))))
		}
		if point := tbl.ClosestSlatePoint(p1); touchingStatic(b1, point) {
			points = append(points, constraint.NewContactPoint(byIndex[k1], staticObject(constraint.KindSlate), point, actor.Normalize(point.Sub(p1))))
		}
	}

	return constraint.NewEpisode(objects, points, params)
}

// buildTouchingGraph links every pair of balls whose surfaces are within Epsilon
func buildTouchingGraph(grid *SpatialGrid, balls []*actor.Ball, workers int) *touchingGraph {
	graph := newTouchingGraph()

	if grid == nil {
		for k1 := range balls {
			for k2 := k1 + 1; k2 < len(balls); k2++ {
				if touching(balls[k1], balls[k2]) {
					graph.addEdge(k1, k2)
				}
			}
		}
		return graph
	}

	grid.Build(balls)
	if workers > 1 {
		for pair := range grid.FindPairsParallel(balls, workers) {
			if touching(balls[pair.A], balls[pair.B]) {
				graph.addEdge(pair.A, pair.B)
			}
		}
		return graph
	}
	for _, pair := range grid.FindPairs(balls) {
		if touching(balls[pair.A], balls[pair.B]) {
			graph.addEdge(pair.A, pair.B)
		}
	}

	return graph
}
