package table

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// cellKey - horizontal coordinates of a grid cell
type cellKey struct {
	X, Y int
}

type cell struct {
	triangles []int
}

// triangleGrid is a hashed uniform grid over the horizontal plane holding
// cushion triangles by their AABB. Queries search rings of cells around the
// query point and stop as soon as no unvisited cell can hold a closer point.
type triangleGrid struct {
	cellSize float64
	cells    []cell
	cellMask int

	// occupied cell bounds
	min, max cellKey
}

func newTriangleGrid(triangles []Triangle, cellSize float64) *triangleGrid {
	numCells := nextPowerOfTwo(len(triangles) * 4)
	g := &triangleGrid{
		cellSize: cellSize,
		cells:    make([]cell, numCells),
		cellMask: numCells - 1,
		min:      cellKey{math.MaxInt, math.MaxInt},
		max:      cellKey{math.MinInt, math.MinInt},
	}

	for i, tri := range triangles {
		aabb := tri.AABB()
		minCell := g.worldToCell(aabb.Min)
		maxCell := g.worldToCell(aabb.Max)

		g.min = cellKey{min(g.min.X, minCell.X), min(g.min.Y, minCell.Y)}
		g.max = cellKey{max(g.max.X, maxCell.X), max(g.max.Y, maxCell.Y)}

		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				idx := g.hashCell(cellKey{x, y})
				g.cells[idx].triangles = append(g.cells[idx].triangles, i)
			}
		}
	}

	return g
}

// closest returns the closest point on the indexed triangles, or false when
// the query cannot be answered by the grid
func (g *triangleGrid) closest(p mgl64.Vec3, triangles []Triangle) (mgl64.Vec3, bool) {
	if len(triangles) == 0 || !finite(p.X()) || !finite(p.Y()) || !finite(p.Z()) {
		return mgl64.Vec3{}, false
	}
	if math.Abs(p.X()) > 1e6 || math.Abs(p.Y()) > 1e6 {
		return mgl64.Vec3{}, false
	}

	c := g.worldToCell(p)
	seen := make([]bool, len(triangles))

	var closest mgl64.Vec3
	best := math.Inf(1)
	found := false

	// Rings closer than the occupied bounds are empty
	startRing := max(g.min.X-c.X, c.X-g.max.X, g.min.Y-c.Y, c.Y-g.max.Y, 0)
	lastRing := max(abs(c.X-g.min.X), abs(c.X-g.max.X), abs(c.Y-g.min.Y), abs(c.Y-g.max.Y))

	for k := startRing; k <= lastRing; k++ {
		xMin, xMax := max(c.X-k, g.min.X), min(c.X+k, g.max.X)
		yMin, yMax := max(c.Y-k, g.min.Y), min(c.Y+k, g.max.Y)

		for x := xMin; x <= xMax; x++ {
			for y := yMin; y <= yMax; y++ {
				if max(abs(x-c.X), abs(y-c.Y)) != k {
					continue
				}
				for _, i := range g.cells[g.hashCell(cellKey{x, y})].triangles {
					if seen[i] {
						continue
					}
					seen[i] = true

					tri := triangles[i]
					point := ClosestPointOnTriangle(p, tri.A, tri.B, tri.C)
					if dist := p.Sub(point).Len(); dist < best {
						best = dist
						closest = point
						found = true
					}
				}
			}
		}

		// Every triangle not seen yet is at least k cells away horizontally
		if found && best <= float64(k)*g.cellSize {
			return closest, true
		}
	}

	return closest, found
}

// worldToCell - converts a world position into horizontal cell coordinates
func (g *triangleGrid) worldToCell(pos mgl64.Vec3) cellKey {
	return cellKey{
		X: int(math.Floor(pos.X() / g.cellSize)),
		Y: int(math.Floor(pos.Y() / g.cellSize)),
	}
}

func (g *triangleGrid) hashCell(key cellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663)
	return h & g.cellMask
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
