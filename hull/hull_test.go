package hull

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/hedra/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Helper functions
func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func cubePoints() []mgl64.Vec3 {
	var points []mgl64.Vec3
	for i := 0; i < 8; i++ {
		points = append(points, mgl64.Vec3{float64(i & 1), float64(i >> 1 & 1), float64(i >> 2 & 1)})
	}
	return points
}

func spherePoints(count int, seed int64) []mgl64.Vec3 {
	rng := rand.New(rand.NewSource(seed))
	points := make([]mgl64.Vec3, count)
	for i := range points {
		p := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		points[i] = p.Normalize().Mul(0.5 + rng.Float64())
	}
	return points
}

// checkClosed verifies every directed edge has its reverse in another face and
// that the mesh is a triangulated sphere.
func checkClosed(t *testing.T, h *Hull) {
	t.Helper()
	edges := map[[2]int]int{}
	for i, tri := range h.Faces() {
		for j := 0; j < 3; j++ {
			key := [2]int{tri[j], tri[(j+1)%3]}
			if _, dup := edges[key]; dup {
				t.Fatalf("edge %v used twice", key)
			}
			edges[key] = i
		}
	}
	for key, i := range edges {
		other, ok := edges[[2]int{key[1], key[0]}]
		if !ok || other == i {
			t.Fatalf("edge %v of face %d has no twin", key, i)
		}
	}
	if got, want := len(h.Faces()), 2*h.VertexCount()-4; got != want {
		t.Errorf("face count = %d, want %d for %d vertices", got, want, h.VertexCount())
	}
	for i, tri := range h.Faces() {
		for j, next := range h.adjacency[i] {
			n := h.Faces()[next]
			if !containsEdge(n, tri[(j+1)%3], tri[j]) {
				t.Errorf("adjacency %d of face %d does not share the edge", j, i)
			}
		}
	}
}

func containsEdge(tri [3]int, a, b int) bool {
	for j := 0; j < 3; j++ {
		if tri[j] == a && tri[(j+1)%3] == b {
			return true
		}
	}
	return false
}

// checkContains verifies every point lies behind every face plane.
func checkContains(t *testing.T, h *Hull, points []mgl64.Vec3) {
	t.Helper()
	tol := 1e-9 * h.Diagonal()
	for i := range h.Faces() {
		plane := h.Plane(i)
		for _, p := range points {
			if d := plane.Evaluate(p); d > tol {
				t.Fatalf("point %v is %g in front of face %d", p, d, i)
			}
		}
	}
}

func TestNewCube(t *testing.T) {
	points := cubePoints()
	points = append(points, mgl64.Vec3{0.5, 0.5, 0.5})
	points = append(points, cubePoints()...)

	h := New(geom.FromVec3(points), DefaultConfig())
	if h.IsEmpty() {
		t.Fatal("cube hull is empty")
	}
	if h.VertexCount() != 8 {
		t.Errorf("VertexCount() = %d, want 8", h.VertexCount())
	}
	if len(h.Faces()) != 12 {
		t.Errorf("len(Faces()) = %d, want 12", len(h.Faces()))
	}
	checkClosed(t, h)
	checkContains(t, h, points)

	volume, area := h.CalculateVolumeAndSurfaceArea()
	if !floatEqual(volume, 1, 1e-12) {
		t.Errorf("volume = %v, want 1", volume)
	}
	if !floatEqual(area, 6, 1e-12) {
		t.Errorf("area = %v, want 6", area)
	}
	if !floatEqual(h.Diagonal(), math.Sqrt(3), 1e-12) {
		t.Errorf("Diagonal() = %v, want sqrt(3)", h.Diagonal())
	}
}

func TestNewRandomCloud(t *testing.T) {
	points := spherePoints(500, 1)
	h := New(geom.FromVec3(points), DefaultConfig())
	if h.IsEmpty() {
		t.Fatal("hull is empty")
	}
	checkClosed(t, h)
	checkContains(t, h, points)

	input := map[mgl64.Vec3]bool{}
	for _, p := range points {
		input[p] = true
	}
	for _, v := range h.Vertices() {
		if !input[v] {
			t.Errorf("hull vertex %v is not an input point", v)
		}
	}

	// every vertex must be extreme: removing it changes the hull
	for i, v := range h.Vertices() {
		var others []mgl64.Vec3
		for j, w := range h.Vertices() {
			if j != i {
				others = append(others, w)
			}
		}
		smaller := New(geom.FromVec3(others), DefaultConfig())
		inside := true
		for f := range smaller.Faces() {
			if smaller.Plane(f).Evaluate(v) > 1e-9 {
				inside = false
				break
			}
		}
		if inside {
			t.Errorf("vertex %d is not extreme", i)
		}
		if i >= 20 {
			break
		}
	}

	volume, area := h.CalculateVolumeAndSurfaceArea()
	if volume <= 0 || volume > 4*math.Pi*1.5*1.5*1.5/3 {
		t.Errorf("volume = %v out of range", volume)
	}
	if area <= 0 {
		t.Errorf("area = %v, want positive", area)
	}
}

func TestNewDegenerate(t *testing.T) {
	var grid []mgl64.Vec3
	for i := 0; i < 25; i++ {
		grid = append(grid, mgl64.Vec3{float64(i % 5), float64(i / 5), 2})
	}
	tests := []struct {
		name   string
		points []mgl64.Vec3
	}{
		{"no points", nil},
		{"three points", []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}},
		{"same point", []mgl64.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}}},
		{"collinear", []mgl64.Vec3{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {3, 3, 3}, {4, 4, 4}}},
		{"coplanar", grid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(geom.FromVec3(tt.points), DefaultConfig())
			if !h.IsEmpty() {
				t.Fatalf("expected an empty hull, got %d faces", len(h.Faces()))
			}
			if h.VertexCount() != 0 {
				t.Errorf("VertexCount() = %d, want 0", h.VertexCount())
			}
			volume, area := h.CalculateVolumeAndSurfaceArea()
			if volume != 0 || area != 0 {
				t.Errorf("volume, area = %v, %v, want 0, 0", volume, area)
			}
			if got := h.RayCast(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{5, 5, 5}, nil); got != NoHit {
				t.Errorf("RayCast() = %v, want NoHit", got)
			}
			if got := h.RayCastBruteForce(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{5, 5, 5}); got != NoHit {
				t.Errorf("RayCastBruteForce() = %v, want NoHit", got)
			}
		})
	}
}

func TestMaxVertexCount(t *testing.T) {
	points := spherePoints(200, 2)
	h := New(geom.FromVec3(points), Config{DistTol: 1e-9, MaxVertexCount: 6})
	if h.IsEmpty() {
		t.Fatal("hull is empty")
	}
	if n := h.VertexCount(); n < 4 || n > 6 {
		t.Errorf("VertexCount() = %d, want between 4 and 6", n)
	}
	checkClosed(t, h)
}

func TestDistTol(t *testing.T) {
	// a bump well under the tolerance on the top face of the cube is ignored
	points := append(cubePoints(), mgl64.Vec3{0.5, 0.5, 1 + 1e-6})
	h := New(geom.FromVec3(points), Config{DistTol: 1e-3})
	if h.VertexCount() != 8 {
		t.Errorf("VertexCount() = %d, want 8", h.VertexCount())
	}
	if !floatEqual(h.Tolerance(), 1e-3*h.Diagonal(), 1e-15) {
		t.Errorf("Tolerance() = %v", h.Tolerance())
	}

	h = New(geom.FromVec3(points), DefaultConfig())
	if h.VertexCount() != 9 {
		t.Errorf("VertexCount() = %d, want 9", h.VertexCount())
	}
}

func TestSupport(t *testing.T) {
	points := spherePoints(300, 3)
	h := New(geom.FromVec3(points), DefaultConfig())

	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 50; i++ {
		dir := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		best := math.Inf(-1)
		for _, p := range points {
			best = math.Max(best, dir.Dot(p))
		}
		if got := dir.Dot(h.Support(dir)); !floatEqual(got, best, 1e-12) {
			t.Errorf("support along %v = %v, want %v", dir, got, best)
		}
	}
}

func TestSeedDirections(t *testing.T) {
	if len(seedDirections) != 32 {
		t.Fatalf("len(seedDirections) = %d, want 32", len(seedDirections))
	}
	for i, d := range seedDirections {
		if !floatEqual(d.Len(), 1, 1e-12) {
			t.Errorf("direction %d is not unit length", i)
		}
		for j := 0; j < i; j++ {
			if d.ApproxEqual(seedDirections[j]) {
				t.Errorf("directions %d and %d are equal", i, j)
			}
		}
	}
}

func TestPointTree(t *testing.T) {
	points := spherePoints(100, 5)
	tree := newPointTree(points)
	dir := mgl64.Vec3{0.3, -0.2, 0.9}

	used := map[int]bool{}
	for k := 0; k < len(points); k++ {
		want, best := -1, math.Inf(-1)
		for i, p := range points {
			if !used[i] && dir.Dot(p) > best {
				want, best = i, dir.Dot(p)
			}
		}
		got, ok := tree.support(dir)
		if !ok || got != want {
			t.Fatalf("step %d: support = %d, %v, want %d", k, got, ok, want)
		}
		tree.remove(got)
		used[got] = true
	}
	if _, ok := tree.support(dir); ok {
		t.Error("support found a point after every point was removed")
	}
	if tree.root != -1 {
		t.Errorf("root = %d after every leaf was detached", tree.root)
	}

	if _, ok := newPointTree(nil).support(dir); ok {
		t.Error("support on an empty tree")
	}
}
