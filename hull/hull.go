// Package hull builds the convex hull of a point cloud incrementally.
//
// Construction sorts and deduplicates the input, seeds a tetrahedron, then grows
// it one point at a time: the furthest remaining point in front of a boundary
// face is added, every face it sees is removed, and the hole is closed by a fan
// of new faces around the horizon. Orientation decisions use an adaptive
// predicate which falls back to exact arithmetic when floating point cannot
// decide.
//
// Degenerate input (fewer than four distinct points, or points that are all
// collinear or coplanar) produces an empty hull; every query on an empty hull
// is a no-op.
package hull

import (
	"math"
	"sort"

	"github.com/akmonengine/hedra/geom"
	list "github.com/bahlo/generic-list-go"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Config controls hull construction.
type Config struct {
	// DistTol is the distance, relative to the bounding box diagonal, a point must
	// stand in front of a face to be added to the hull.
	DistTol float64 `mapstructure:"dist_tol"`
	// MaxVertexCount caps the number of points added to the hull. Zero means no cap.
	MaxVertexCount int `mapstructure:"max_vertex_count"`
}

// DefaultConfig returns an uncapped configuration with a tolerance close to
// the floating point resolution.
func DefaultConfig() Config {
	return Config{DistTol: 1e-9}
}

const (
	seedDistanceFactor = 1e-4
	seedVolumeFactor   = 1e-6
)

// face is one hull triangle. twin[i] is the face across the edge v[i] -> v[i+1].
type face struct {
	v      [3]int
	twin   [3]int
	normal mgl64.Vec3
	alive  bool
	mark   uint32
	elem   *list.Element[int]
}

// Hull is a closed triangle mesh wrapping a point cloud, with outward facing
// triangles.
type Hull struct {
	points []mgl64.Vec3
	tree   *pointTree
	faces  []face
	free   []int
	work   *list.List[int]
	stamp  uint32

	diag float64
	tol  float64

	vertices  []mgl64.Vec3
	triangles [][3]int
	planes    []geom.Plane
	adjacency [][3]int
}

// New builds the hull of the points of verts.
func New(verts geom.VertexArray, cfg Config) *Hull {
	h := &Hull{work: list.New[int]()}

	h.points = uniquePoints(verts.Points())
	if len(h.points) < 4 {
		glog.V(2).Infof("hull: %d distinct points, nothing to build", len(h.points))
		return h
	}

	h.diag = geom.NewAABB(h.points...).Diagonal()
	if h.diag == 0 {
		return h
	}
	h.tol = math.Abs(cfg.DistTol) * h.diag
	h.tree = newPointTree(h.points)

	if !h.seed() {
		glog.V(1).Infof("hull: %d points are degenerate, no hull built", len(h.points))
		h.faces = nil
		return h
	}
	h.grow(cfg.MaxVertexCount)
	h.compact()

	glog.V(1).Infof("hull: %d points -> %d vertices, %d faces", len(h.points), len(h.vertices), len(h.triangles))
	return h
}

// uniquePoints sorts points lexicographically and drops exact duplicates.
func uniquePoints(points []mgl64.Vec3) []mgl64.Vec3 {
	sort.Slice(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	unique := points[:0]
	for i, p := range points {
		if i == 0 || p != unique[len(unique)-1] {
			unique = append(unique, p)
		}
	}
	return unique
}

var seedDirections = makeSeedDirections()

// makeSeedDirections returns the face centers of an octahedron subdivided once,
// projected on the unit sphere.
func makeSeedDirections() []mgl64.Vec3 {
	axes := [6]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {-1, 0, 0}, {0, -1, 0}, {0, 0, -1}}
	octants := [8][3]int{
		{0, 1, 2}, {1, 3, 2}, {3, 4, 2}, {4, 0, 2},
		{1, 0, 5}, {3, 1, 5}, {4, 3, 5}, {0, 4, 5},
	}
	directions := make([]mgl64.Vec3, 0, 32)
	for _, o := range octants {
		a, b, c := axes[o[0]], axes[o[1]], axes[o[2]]
		ab := a.Add(b).Normalize()
		bc := b.Add(c).Normalize()
		ca := c.Add(a).Normalize()
		for _, tri := range [4][3]mgl64.Vec3{{a, ab, ca}, {ab, b, bc}, {ca, bc, c}, {ab, bc, ca}} {
			directions = append(directions, tri[0].Add(tri[1]).Add(tri[2]).Normalize())
		}
	}
	return directions
}

// seed picks four affinely independent points and builds the first tetrahedron.
func (h *Hull) seed() bool {
	diag2 := h.diag * h.diag

	i0, _ := h.tree.support(seedDirections[0])
	p0 := h.points[i0]

	i1 := -1
	for _, dir := range seedDirections {
		i, _ := h.tree.support(dir)
		if h.points[i].Sub(p0).LenSqr() > seedDistanceFactor*diag2 {
			i1 = i
			break
		}
	}
	if i1 < 0 {
		return false
	}
	e1 := h.points[i1].Sub(p0)

	crossOf := func(i int) float64 {
		return h.points[i].Sub(p0).Cross(e1).LenSqr()
	}
	i2 := -1
	for _, dir := range seedDirections {
		i, _ := h.tree.support(dir)
		if crossOf(i) > seedDistanceFactor*diag2*diag2 {
			i2 = i
			break
		}
	}
	if i2 < 0 {
		i2 = h.exhaustive(crossOf, seedDistanceFactor*diag2*diag2)
	}
	if i2 < 0 {
		return false
	}

	p1, p2 := h.points[i1], h.points[i2]
	normal := e1.Cross(p2.Sub(p0))
	volumeOf := func(i int) float64 {
		return math.Abs(TetrahedrumVolume(p0, p1, p2, h.points[i]))
	}
	minVolume := seedVolumeFactor * diag2 * h.diag
	i3 := -1
	for _, dir := range []mgl64.Vec3{normal, normal.Mul(-1)} {
		if i, ok := h.tree.support(dir); ok && volumeOf(i) > minVolume {
			i3 = i
			break
		}
	}
	if i3 < 0 {
		i3 = h.exhaustive(volumeOf, minVolume)
	}
	if i3 < 0 {
		return false
	}

	if TetrahedrumVolume(p0, p1, p2, h.points[i3]) > 0 {
		i0, i1 = i1, i0
	}
	for _, i := range []int{i0, i1, i2, i3} {
		h.tree.remove(i)
	}

	f0 := h.newFace(i0, i1, i2)
	f1 := h.newFace(i0, i2, i3)
	f2 := h.newFace(i0, i3, i1)
	f3 := h.newFace(i1, i3, i2)
	h.faces[f0].twin = [3]int{f2, f3, f1}
	h.faces[f1].twin = [3]int{f0, f3, f2}
	h.faces[f2].twin = [3]int{f1, f3, f0}
	h.faces[f3].twin = [3]int{f2, f1, f0}
	return true
}

// exhaustive returns the point with the largest score above threshold, or -1.
func (h *Hull) exhaustive(score func(i int) float64, threshold float64) int {
	best, bestScore := -1, threshold
	for i := range h.points {
		if s := score(i); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

func (h *Hull) newFace(a, b, c int) int {
	f := face{
		v:     [3]int{a, b, c},
		twin:  [3]int{-1, -1, -1},
		alive: true,
	}
	n := geom.TriangleNormal(h.points[a], h.points[b], h.points[c])
	if n.LenSqr() > 0 {
		f.normal = n.Normalize()
	}

	var id int
	if k := len(h.free); k > 0 {
		id = h.free[k-1]
		h.free = h.free[:k-1]
		h.faces[id] = f
	} else {
		id = len(h.faces)
		h.faces = append(h.faces, f)
	}
	h.faces[id].elem = h.work.PushBack(id)
	return id
}

func (h *Hull) deleteFace(id int) {
	f := &h.faces[id]
	if f.elem != nil {
		h.work.Remove(f.elem)
		f.elem = nil
	}
	f.alive = false
	h.free = append(h.free, id)
}

// grow adds the furthest point in front of each worklist face until no face
// can be pushed further out.
func (h *Hull) grow(maxVertexCount int) {
	count := 4
	for h.work.Len() > 0 {
		if maxVertexCount > 0 && count >= maxVertexCount {
			break
		}
		elem := h.work.Front()
		id := elem.Value
		f := &h.faces[id]

		i, ok := h.tree.support(f.normal)
		a, b, c := h.points[f.v[0]], h.points[f.v[1]], h.points[f.v[2]]
		if !ok || f.normal.Dot(h.points[i].Sub(a)) <= h.tol || !inFront(a, b, c, h.points[i]) {
			h.work.Remove(elem)
			f.elem = nil
			continue
		}

		h.addPoint(id, i)
		h.tree.remove(i)
		count++
	}
	glog.V(2).Infof("hull: growth stopped after %d points", count)
}

type horizonEdge struct {
	from, to int
	outer    int
}

// addPoint removes every face visible from point p, starting at the visible
// face start, and closes the hole with a fan of faces around p.
func (h *Hull) addPoint(start, p int) {
	h.stamp++
	point := h.points[p]

	visible := []int{start}
	h.faces[start].mark = h.stamp
	var horizon []horizonEdge
	for k := 0; k < len(visible); k++ {
		f := h.faces[visible[k]]
		for j := 0; j < 3; j++ {
			g := f.twin[j]
			if h.faces[g].mark == h.stamp {
				continue
			}
			gf := &h.faces[g]
			if inFront(h.points[gf.v[0]], h.points[gf.v[1]], h.points[gf.v[2]], point) {
				gf.mark = h.stamp
				visible = append(visible, g)
				continue
			}
			horizon = append(horizon, horizonEdge{from: f.v[j], to: f.v[(j+1)%3], outer: g})
		}
	}

	for _, f := range visible {
		h.deleteFace(f)
	}

	byStart := make(map[int]int, len(horizon))
	created := make([]int, len(horizon))
	for k, e := range horizon {
		id := h.newFace(e.from, e.to, p)
		created[k] = id
		byStart[e.from] = id

		outer := &h.faces[e.outer]
		for j := 0; j < 3; j++ {
			if outer.v[j] == e.to && outer.v[(j+1)%3] == e.from {
				outer.twin[j] = id
			}
		}
		h.faces[id].twin[0] = e.outer
	}

	// edge 1 (to -> p) faces edge 2 (p -> to) of the fan face starting at to
	for _, id := range created {
		f := &h.faces[id]
		next, ok := byStart[f.v[1]]
		assertf(ok, "hull: horizon is not closed at vertex %d", f.v[1])
		f.twin[1] = next
		h.faces[next].twin[2] = id
	}
}

func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(errors.Errorf(format, args...))
	}
}

// compact gathers the alive faces into the output arrays, renumbering the
// referenced points densely.
func (h *Hull) compact() {
	remap := make(map[int]int)
	for id := range h.faces {
		f := &h.faces[id]
		if !f.alive {
			continue
		}
		var tri [3]int
		for j, v := range f.v {
			n, ok := remap[v]
			if !ok {
				n = len(h.vertices)
				remap[v] = n
				h.vertices = append(h.vertices, h.points[v])
			}
			tri[j] = n
		}
		h.triangles = append(h.triangles, tri)
		h.planes = append(h.planes, geom.NewPlane(f.normal, h.points[f.v[0]]))
	}

	neighbours := make(map[[2]int]int, 3*len(h.triangles))
	for i, tri := range h.triangles {
		for j := 0; j < 3; j++ {
			neighbours[[2]int{tri[j], tri[(j+1)%3]}] = i
		}
	}
	h.adjacency = make([][3]int, len(h.triangles))
	for i, tri := range h.triangles {
		for j := 0; j < 3; j++ {
			h.adjacency[i][j] = neighbours[[2]int{tri[(j+1)%3], tri[j]}]
		}
	}

	h.faces, h.free, h.tree = nil, nil, nil
	h.work.Init()
}

// IsEmpty reports whether construction failed on degenerate input.
func (h *Hull) IsEmpty() bool {
	return len(h.triangles) == 0
}

// VertexCount returns the number of points on the hull.
func (h *Hull) VertexCount() int {
	return len(h.vertices)
}

// Vertices returns the hull points. Faces index into this slice.
func (h *Hull) Vertices() []mgl64.Vec3 {
	return h.vertices
}

// Faces returns the outward facing hull triangles.
func (h *Hull) Faces() [][3]int {
	return h.triangles
}

// Diagonal returns the bounding box diagonal of the input points.
func (h *Hull) Diagonal() float64 {
	return h.diag
}

// Tolerance returns the absolute distance tolerance used during construction.
func (h *Hull) Tolerance() float64 {
	return h.tol
}

// Plane returns the outward unit plane of face i.
func (h *Hull) Plane(i int) geom.Plane {
	return h.planes[i]
}

// CalculateVolumeAndSurfaceArea sums the enclosed volume and the face areas.
func (h *Hull) CalculateVolumeAndSurfaceArea() (volume, area float64) {
	for _, tri := range h.triangles {
		a, b, c := h.vertices[tri[0]], h.vertices[tri[1]], h.vertices[tri[2]]
		area += geom.TriangleNormal(a, b, c).Len() * 0.5
		volume += a.Dot(b.Cross(c)) / 6
	}
	assertf(volume >= -h.tol*h.diag*h.diag, "hull: negative volume %g", volume)
	return volume, area
}

// Support returns the hull vertex furthest along dir.
func (h *Hull) Support(dir mgl64.Vec3) mgl64.Vec3 {
	var best mgl64.Vec3
	bestDot := math.Inf(-1)
	for _, v := range h.vertices {
		if d := v.Dot(dir); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}
