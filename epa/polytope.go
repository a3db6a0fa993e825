package epa

import (
	"sort"
	"sync"

	"github.com/akmonengine/hedra/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// face is one triangle of the polytope, its normal pointing away from the origin.
type face struct {
	points   [3]mgl64.Vec3
	normal   mgl64.Vec3
	distance float64
}

// edge is a polytope edge, normalized so that a < b lexicographically, with
// the number of visible faces using it.
type edge struct {
	a, b  mgl64.Vec3
	count int
}

// polytope keeps its buffers between runs through polytopePool.
type polytope struct {
	faces   []face
	edges   []edge
	visible []int
}

var polytopePool = sync.Pool{
	New: func() interface{} {
		return &polytope{
			faces:   make([]face, 0, 16),
			edges:   make([]edge, 0, 16),
			visible: make([]int, 0, 8),
		}
	},
}

func (p *polytope) reset() {
	p.faces = p.faces[:0]
	p.edges = p.edges[:0]
	p.visible = p.visible[:0]
}

// buildInitialFaces creates the 4 faces of the GJK tetrahedron, dropping the
// ones through the origin unless fewer than 3 would be left.
func (p *polytope) buildInitialFaces(simplex *gjk.Simplex) {
	p0, p1, p2, p3 := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]

	candidates := [4]face{
		newFace(p0, p1, p2, p3),
		newFace(p0, p2, p3, p1),
		newFace(p0, p3, p1, p2),
		newFace(p1, p3, p2, p0),
	}

	for _, f := range candidates {
		if f.distance >= MinFaceDistance {
			p.faces = append(p.faces, f)
		}
	}
	if len(p.faces) < 3 {
		p.faces = append(p.faces[:0], candidates[:]...)
	}
}

// newFace builds the face (a, b, c) with its normal turned away from the
// inner point and from the origin.
func newFace(a, b, c, inner mgl64.Vec3) face {
	f := face{points: [3]mgl64.Vec3{a, b, c}}

	normal := b.Sub(a).Cross(c.Sub(a))
	length := normal.Len()
	if length < 1e-8 {
		f.normal = mgl64.Vec3{0, 1, 0}
		f.distance = MinFaceDistance
		return f
	}
	normal = normal.Mul(1 / length)

	if normal.Dot(inner.Sub(a)) > 0 {
		normal = normal.Mul(-1)
	}
	distance := a.Dot(normal)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
	}

	f.normal = snapNormalToAxis(normal)
	f.distance = max(distance, MinFaceDistance)
	return f
}

func (p *polytope) closestFaceIndex() int {
	closest := 0
	for i := 1; i < len(p.faces); i++ {
		if p.faces[i].distance < p.faces[closest].distance {
			closest = i
		}
	}
	return closest
}

// removeFace drops face i, swapping the last face into its slot.
func (p *polytope) removeFace(i int) {
	last := len(p.faces) - 1
	p.faces[i] = p.faces[last]
	p.faces = p.faces[:last]
}

// centroid averages the face corners. Shared corners are counted once per
// face, the result still lies inside the polytope.
func (p *polytope) centroid() mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, f := range p.faces {
		sum = sum.Add(f.points[0]).Add(f.points[1]).Add(f.points[2])
	}
	return sum.Mul(1 / float64(3*len(p.faces)))
}

// addPoint expands the polytope to support: every face it sees is removed and
// the horizon left behind is closed by a fan around support.
func (p *polytope) addPoint(support mgl64.Vec3, closestIndex int) {
	centroid := p.centroid()

	p.visible = p.visible[:0]
	for i, f := range p.faces {
		if support.Sub(f.points[0]).Dot(f.normal) > 0 {
			p.visible = append(p.visible, i)
		}
	}
	// Never remove every face
	if len(p.visible) >= len(p.faces) || len(p.visible) == 0 {
		p.visible = append(p.visible[:0], closestIndex)
	}

	p.findHorizon()

	// Remove from the end so the swapped faces stay valid
	sort.Sort(sort.Reverse(sort.IntSlice(p.visible)))
	for _, i := range p.visible {
		p.removeFace(i)
	}

	for _, e := range p.edges {
		if e.count == 1 {
			p.faces = append(p.faces, newFace(e.a, e.b, support, centroid))
		}
	}
	if len(p.faces) == 0 {
		p.faces = append(p.faces, face{
			points:   [3]mgl64.Vec3{support, support, support},
			normal:   mgl64.Vec3{0, 1, 0},
			distance: MinFaceDistance,
		})
	}
}

// findHorizon counts the edges of the visible faces. Horizon edges are used by
// a single visible face.
func (p *polytope) findHorizon() {
	p.edges = p.edges[:0]
	for _, i := range p.visible {
		f := p.faces[i]
		for j := 0; j < 3; j++ {
			a, b := f.points[j], f.points[(j+1)%3]
			if compareVec3(a, b) > 0 {
				a, b = b, a
			}
			if k := p.findEdge(a, b); k >= 0 {
				p.edges[k].count++
			} else {
				p.edges = append(p.edges, edge{a: a, b: b, count: 1})
			}
		}
	}
}

// findEdge runs a linear search, the horizon rarely holds more than a few dozen edges.
func (p *polytope) findEdge(a, b mgl64.Vec3) int {
	for i, e := range p.edges {
		if e.a == a && e.b == b {
			return i
		}
	}
	return -1
}

// compareVec3 orders vectors lexicographically.
func compareVec3(a, b mgl64.Vec3) int {
	for i := 0; i < 3; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
