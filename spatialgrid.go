package hedra

import (
	"math"
	"sort"
	"sync"

	"github.com/akmonengine/hedra/actor"
	"github.com/akmonengine/hedra/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey is the integer coordinate of a grid cell.
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the actors whose box touches it.
type Cell struct {
	actorIndices []int
}

// Pair is two actors whose boxes overlap, ActorA being the one added first.
type Pair struct {
	ActorA *actor.Actor
	ActorB *actor.Actor
}

// SpatialGrid is a uniform grid hashed into a fixed number of cells. Distinct
// cells may share a bucket, so every candidate is checked against its box.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// NewSpatialGrid creates a grid of cubic cells. numCells is rounded up to a
// power of two.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].actorIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
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

// Insert adds the actor index to every cell its box touches.
func (sg *SpatialGrid) Insert(actorIndex int, box geom.AABB) {
	sg.forEachCell(box, func(cellIdx int) {
		sg.cells[cellIdx].actorIndices = append(sg.cells[cellIdx].actorIndices, actorIndex)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].actorIndices = sg.cells[i].actorIndices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].actorIndices) > 1 {
			sort.Ints(sg.cells[i].actorIndices)
		}
	}
}

// cellCount returns how many cells the box spans, saturating at math.MaxInt.
func (sg *SpatialGrid) cellCount(box geom.AABB) int {
	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)
	count := 1
	for _, span := range []int{maxCell.X - minCell.X + 1, maxCell.Y - minCell.Y + 1, maxCell.Z - minCell.Z + 1} {
		if span <= 0 {
			return 0
		}
		if count > math.MaxInt/span {
			return math.MaxInt
		}
		count *= span
	}
	return count
}

// forEachCell calls fn with the bucket of every cell the box spans. A box
// spanning more cells than there are buckets visits every bucket once.
func (sg *SpatialGrid) forEachCell(box geom.AABB, fn func(cellIdx int)) {
	if box.IsEmpty() {
		return
	}
	if sg.cellCount(box) >= len(sg.cells) {
		for i := range sg.cells {
			fn(i)
		}
		return
	}

	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

// Query calls fn once with the index of every inserted actor whose bucket the
// box touches. Candidates still need an exact box test.
func (sg *SpatialGrid) Query(box geom.AABB, fn func(actorIndex int)) {
	seen := make(map[int]struct{})
	sg.forEachCell(box, func(cellIdx int) {
		for _, i := range sg.cells[cellIdx].actorIndices {
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			fn(i)
		}
	})
}

// FindPairs returns every pair of overlapping boxes, skipping static-static
// pairs, in a deterministic order.
func (sg *SpatialGrid) FindPairs(actors []*actor.Actor) []Pair {
	pairs := make([]Pair, 0, len(actors)/2)
	seen := make([]bool, len(actors))
	for actorIdx := range actors {
		clear(seen)
		sg.pairsOf(actors, actorIdx, seen, func(p Pair) {
			pairs = append(pairs, p)
		})
	}
	return pairs
}

// FindPairsParallel splits FindPairs across workers and streams the pairs.
// The channel is closed once every worker is done.
func (sg *SpatialGrid) FindPairsParallel(actors []*actor.Actor, numWorkers int) <-chan Pair {
	var wg sync.WaitGroup
	numWorkers = max(1, numWorkers)
	pairsChan := make(chan Pair, numWorkers*10)

	actorsPerWorker := max(1, len(actors)/numWorkers)
	for w := 0; w < numWorkers; w++ {
		startIdx := w * actorsPerWorker
		endIdx := startIdx + actorsPerWorker
		if w == numWorkers-1 {
			endIdx = len(actors)
		}
		if startIdx >= len(actors) {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			seen := make([]bool, len(actors))
			for actorIdx := start; actorIdx < end; actorIdx++ {
				clear(seen)
				sg.pairsOf(actors, actorIdx, seen, func(p Pair) {
					pairsChan <- p
				})
			}
		}(startIdx, endIdx)
	}

	go func() {
		wg.Wait()
		close(pairsChan)
	}()

	return pairsChan
}

// pairsOf emits the pairs of actorIdx with higher indices sharing a bucket.
func (sg *SpatialGrid) pairsOf(actors []*actor.Actor, actorIdx int, seen []bool, emit func(Pair)) {
	actorA := actors[actorIdx]
	boxA := actorA.Shape.GetAABB()

	sg.forEachCell(boxA, func(cellIdx int) {
		for _, otherIdx := range sg.cells[cellIdx].actorIndices {
			if otherIdx <= actorIdx || seen[otherIdx] {
				continue
			}
			seen[otherIdx] = true

			actorB := actors[otherIdx]
			if actorA.BodyType == actor.BodyTypeStatic && actorB.BodyType == actor.BodyTypeStatic {
				continue
			}
			if boxA.Overlaps(actorB.Shape.GetAABB()) {
				emit(Pair{ActorA: actorA, ActorB: actorB})
			}
		}
	})
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
