package billiard

import (
	"math"
	"sort"
	"sync"

	"github.com/akmonengine/billiard/actor"
	"github.com/akmonengine/billiard/table"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - coordinates of a cell in 3D space
type CellKey struct {
	X, Y, Z int
}

// Cell - indices of the balls overlapping a cell
type Cell struct {
	ballIndices []int
}

// Pair - two balls close enough to be touching, A < B
type Pair struct {
	A, B int
}

// SpatialGrid - uniform hashed grid used as broad phase between balls
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid - creates a grid of numCells hashed cells of size cellSize
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].ballIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// DefaultSpatialGrid - a grid sized for balls of the given radius
func DefaultSpatialGrid(radius float64) *SpatialGrid {
	return NewSpatialGrid(4*radius, 256)
}

// nextPowerOfTwo - rounds up to the next power of two
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

// broadAABB - the box of a ball, grown so that touching balls always overlap
func broadAABB(ball *actor.Ball) table.AABB {
	return ball.AABB().Expand(actor.Epsilon)
}

// Insert - adds a ball to every cell its box overlaps
func (sg *SpatialGrid) Insert(ballIndex int, ball *actor.Ball) {
	aabb := broadAABB(ball)
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				sg.cells[cellIdx].ballIndices = append(sg.cells[cellIdx].ballIndices, ballIndex)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].ballIndices = sg.cells[i].ballIndices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].ballIndices) > 1 {
			sort.Ints(sg.cells[i].ballIndices)
		}
	}
}

// Build - fills the grid with the current positions of the balls
func (sg *SpatialGrid) Build(balls []*actor.Ball) {
	sg.Clear()
	for i, ball := range balls {
		sg.Insert(i, ball)
	}
	sg.SortCells()
}

// Neighbors - indices greater than ballIdx of the balls whose boxes overlap
// the box of ballIdx, in ascending order
func (sg *SpatialGrid) Neighbors(ballIdx int, balls []*actor.Ball) []int {
	seen := make(map[int]bool)
	neighbors := sg.visit(ballIdx, balls, seen, nil)
	sort.Ints(neighbors)

	return neighbors
}

// FindPairs - sequential version
func (sg *SpatialGrid) FindPairs(balls []*actor.Ball) []Pair {
	pairs := make([]Pair, 0, len(balls)/2)

	seen := make(map[int]bool)
	for ballIdx := range balls {
		clear(seen)
		for _, otherIdx := range sg.visit(ballIdx, balls, seen, nil) {
			pairs = append(pairs, Pair{A: ballIdx, B: otherIdx})
		}
	}

	return pairs
}

// FindPairsParallel - parallel version, pairs come out in no particular order
func (sg *SpatialGrid) FindPairsParallel(balls []*actor.Ball, numWorkers int) <-chan Pair {
	var wg sync.WaitGroup
	pairsChan := make(chan Pair, numWorkers*10)

	ballsPerWorker := len(balls) / numWorkers
	if ballsPerWorker == 0 {
		ballsPerWorker = 1
	}

	for w := 0; w < numWorkers; w++ {
		startIdx := w * ballsPerWorker
		endIdx := startIdx + ballsPerWorker
		if w == numWorkers-1 {
			endIdx = len(balls)
		}
		if startIdx >= len(balls) {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			seen := make(map[int]bool)
			for ballIdx := start; ballIdx < end; ballIdx++ {
				clear(seen)
				for _, otherIdx := range sg.visit(ballIdx, balls, seen, nil) {
					pairsChan <- Pair{A: ballIdx, B: otherIdx}
				}
			}
		}(startIdx, endIdx)
	}

	go func() {
		wg.Wait()
		close(pairsChan)
	}()

	return pairsChan
}

// visit - appends to out the balls after ballIdx sharing a cell with it and overlapping its box
func (sg *SpatialGrid) visit(ballIdx int, balls []*actor.Ball, seen map[int]bool, out []int) []int {
	aabb := broadAABB(balls[ballIdx])
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})

				for _, otherIdx := range sg.cells[cellIdx].ballIndices {
					// Deterministic order, each pair once
					if otherIdx <= ballIdx || seen[otherIdx] {
						continue
					}
					seen[otherIdx] = true

					if aabb.Overlaps(broadAABB(balls[otherIdx])) {
						out = append(out, otherIdx)
					}
				}
			}
		}
	}

	return out
}

// worldToCell - converts a world position into cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - hashes a cell to an index in the array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
