package hedra

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/hedra/actor"
	"github.com/akmonengine/hedra/geom"
	"github.com/go-gl/mathgl/mgl64"
)

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origin", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positive", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negative", mgl64.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"fractional", mgl64.Vec3{0.5, 0.5, 0.5}, CellKey{0, 0, 0}},
		{"large", mgl64.Vec3{100.7, -200.3, 50.1}, CellKey{100, -201, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.worldToCell(tt.position)
			if result != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, result, tt.expected)
			}
		})
	}

	t.Run("cell size", func(t *testing.T) {
		grid := NewSpatialGrid(2.5, 16)
		if result := grid.worldToCell(mgl64.Vec3{5, -0.1, 7.4}); result != (CellKey{2, -1, 2}) {
			t.Errorf("worldToCell = %v, want {2 -1 2}", result)
		}
	})
}

func TestHashCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16) // mask = 15

	tests := []struct {
		name     string
		key      CellKey
		expected int
	}{
		{"origin", CellKey{0, 0, 0}, 0},
		{"simple", CellKey{1, 2, 3}, 6},
		{"negative", CellKey{-1, -2, -3}, 10},
		{"large", CellKey{100, 200, 300}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.hashCell(tt.key)
			if result < 0 || result >= len(grid.cells) {
				t.Errorf("hashCell(%v) = %d, out of range [0, %d)", tt.key, result, len(grid.cells))
			}
			if result != tt.expected {
				t.Errorf("hashCell(%v) = %d, want %d", tt.key, result, tt.expected)
			}
		})
	}
}

func TestHashCellDistribution(t *testing.T) {
	grid := NewSpatialGrid(1.0, 1024)

	cellCounts := make(map[int]int)
	for x := -20; x <= 20; x++ {
		for y := -20; y <= 20; y++ {
			for z := -20; z <= 20; z++ {
				cellCounts[grid.hashCell(CellKey{x, y, z})]++
			}
		}
	}

	// 41^3 keys over 1024 buckets: most buckets must be used
	if len(cellCounts) < 900 {
		t.Errorf("only %d of 1024 buckets used", len(cellCounts))
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n, expected int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {64, 64}, {65, 128}, {1000, 1024},
	}
	for _, tt := range tests {
		if result := nextPowerOfTwo(tt.n); result != tt.expected {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.n, result, tt.expected)
		}
	}
}

func TestCellCount(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)

	tests := []struct {
		name     string
		box      geom.AABB
		expected int
	}{
		{"point", geom.NewAABB(mgl64.Vec3{0.5, 0.5, 0.5}), 1},
		{"two cells", geom.NewAABB(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{1.5, 0.5, 0.5}), 2},
		{"cube", geom.NewAABB(mgl64.Vec3{-0.5, -0.5, -0.5}, mgl64.Vec3{0.5, 0.5, 0.5}), 8},
		{"saturated", geom.NewAABB(mgl64.Vec3{-1e7, -1e7, -1e7}, mgl64.Vec3{1e7, 1e7, 1e7}), math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := grid.cellCount(tt.box); result != tt.expected {
				t.Errorf("cellCount = %d, want %d", result, tt.expected)
			}
		})
	}
}

func TestSpatialGridQuery(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)
	grid.Insert(0, geom.NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}))
	grid.Insert(1, geom.NewAABB(mgl64.Vec3{10, 10, 10}, mgl64.Vec3{10.5, 10.5, 10.5}))
	grid.Insert(2, geom.NewAABB(mgl64.Vec3{-3, -3, -3}, mgl64.Vec3{3, 3, 3}))
	grid.Insert(3, geom.EmptyAABB())

	query := func(box geom.AABB) map[int]int {
		calls := make(map[int]int)
		grid.Query(box, func(actorIndex int) {
			calls[actorIndex]++
		})
		return calls
	}

	calls := query(geom.NewAABB(mgl64.Vec3{0.1, 0.1, 0.1}, mgl64.Vec3{0.2, 0.2, 0.2}))
	if calls[0] != 1 || calls[2] != 1 {
		t.Errorf("calls = %v, want 0 and 2 once", calls)
	}

	// A box over every bucket sees every inserted index exactly once
	calls = query(geom.NewAABB(mgl64.Vec3{-50, -50, -50}, mgl64.Vec3{50, 50, 50}))
	if len(calls) != 3 {
		t.Errorf("calls = %v, want 3 indices", calls)
	}
	for i, n := range calls {
		if n != 1 {
			t.Errorf("index %d visited %d times", i, n)
		}
	}

	if calls := query(geom.EmptyAABB()); len(calls) != 0 {
		t.Errorf("empty box visited %v", calls)
	}

	grid.Clear()
	if calls := query(geom.NewAABB(mgl64.Vec3{-50, -50, -50}, mgl64.Vec3{50, 50, 50})); len(calls) != 0 {
		t.Errorf("cleared grid visited %v", calls)
	}
}

func TestFindPairs(t *testing.T) {
	tests := []struct {
		name     string
		actors   []*actor.Actor
		expected [][2]int
	}{
		{
			"row",
			[]*actor.Actor{
				createCube(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent(), actor.BodyTypeDynamic),
				createCube(mgl64.Vec3{0.8, 0, 0}, mgl64.QuatIdent(), actor.BodyTypeDynamic),
				createCube(mgl64.Vec3{1.6, 0, 0}, mgl64.QuatIdent(), actor.BodyTypeDynamic),
			},
			[][2]int{{0, 1}, {1, 2}},
		},
		{
			"static pair skipped",
			[]*actor.Actor{
				createCube(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent(), actor.BodyTypeStatic),
				createCube(mgl64.Vec3{0.8, 0, 0}, mgl64.QuatIdent(), actor.BodyTypeStatic),
				createCube(mgl64.Vec3{0.4, 0, 0}, mgl64.QuatIdent(), actor.BodyTypeDynamic),
			},
			[][2]int{{0, 2}, {1, 2}},
		},
		{
			"far apart",
			[]*actor.Actor{
				createCube(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent(), actor.BodyTypeDynamic),
				createCube(mgl64.Vec3{0, 5, 0}, mgl64.QuatIdent(), actor.BodyTypeDynamic),
			},
			[][2]int{},
		},
		{
			"touching boxes",
			[]*actor.Actor{
				createCube(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent(), actor.BodyTypeDynamic),
				createCube(mgl64.Vec3{0, 0, 1}, mgl64.QuatIdent(), actor.BodyTypeDynamic),
			},
			[][2]int{{0, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, a := range tt.actors {
				a.ID = i
			}
			grid := NewSpatialGrid(1.0, 64)
			for i, a := range tt.actors {
				grid.Insert(i, a.Shape.GetAABB())
			}
			grid.SortCells()

			if got := sortedPairIDs(grid.FindPairs(tt.actors)); !equalIDs(got, tt.expected) {
				t.Errorf("pairs = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFindPairsParallel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	actors := make([]*actor.Actor, 60)
	for i := range actors {
		position := mgl64.Vec3{rng.Float64() * 6, rng.Float64() * 6, rng.Float64() * 6}
		bodyType := actor.BodyTypeDynamic
		if i%3 == 0 {
			bodyType = actor.BodyTypeStatic
		}
		actors[i] = createCube(position, mgl64.QuatIdent(), bodyType)
		actors[i].ID = i
	}

	grid := NewSpatialGrid(1.5, 32)
	for i, a := range actors {
		grid.Insert(i, a.Shape.GetAABB())
	}
	grid.SortCells()

	// Brute force over every pair of boxes
	expected := make([][2]int, 0)
	for i := range actors {
		for j := i + 1; j < len(actors); j++ {
			if actors[i].BodyType == actor.BodyTypeStatic && actors[j].BodyType == actor.BodyTypeStatic {
				continue
			}
			if actors[i].Shape.GetAABB().Overlaps(actors[j].Shape.GetAABB()) {
				expected = append(expected, [2]int{i, j})
			}
		}
	}
	if len(expected) == 0 {
		t.Fatal("no overlapping boxes generated")
	}

	if got := sortedPairIDs(grid.FindPairs(actors)); !equalIDs(got, expected) {
		t.Errorf("FindPairs = %v, want %v", got, expected)
	}

	for _, workers := range []int{0, 1, 2, 7, 100} {
		pairs := make([]Pair, 0)
		for p := range grid.FindPairsParallel(actors, workers) {
			pairs = append(pairs, p)
		}
		if got := sortedPairIDs(pairs); !equalIDs(got, expected) {
			t.Errorf("workers=%d: %d pairs, want %d", workers, len(got), len(expected))
		}
	}
}
