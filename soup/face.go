package soup

import (
	"math"

	"github.com/akmonengine/hedra/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// NoHit is returned by ray callbacks and queries when nothing is hit.
const NoHit = 1.2

// Face is a read-only view of one face record.
type Face struct {
	soup   *Soup
	record []int32
}

func (s *Soup) face(leaf TreeNode) Face {
	return Face{soup: s, record: s.indices[leaf.Offset() : leaf.Offset()+leaf.Count()]}
}

// VertexCount returns the number of polygon vertices.
func (f Face) VertexCount() int {
	return (len(f.record) - 2) / 2
}

// Index returns the vertex index of corner i.
func (f Face) Index(i int) int {
	return int(f.record[i])
}

// Indices returns the vertex indices of the polygon.
func (f Face) Indices() []int {
	indices := make([]int, f.VertexCount())
	for i := range indices {
		indices[i] = int(f.record[i])
	}
	return indices
}

// Vertex returns the position of corner i.
func (f Face) Vertex(i int) mgl64.Vec3 {
	return f.soup.points[f.record[i]]
}

// Normal returns the unit face normal, zero for a degenerate face.
func (f Face) Normal() mgl64.Vec3 {
	return f.soup.points[f.record[f.VertexCount()]]
}

// Size returns the longest edge of the face projected on its plane.
func (f Face) Size() float64 {
	return float64(math.Float32frombits(uint32(f.record[len(f.record)-1])))
}

// Bounds returns the box of the face vertices.
func (f Face) Bounds() geom.AABB {
	box := geom.EmptyAABB()
	for i, n := 0, f.VertexCount(); i < n; i++ {
		box = box.Extend(f.Vertex(i))
	}
	return box
}

// RayHit returns the parameter in [0, maxParam] where the segment p0-p1 crosses
// the polygon, from either side, or NoHit.
func (f Face) RayHit(p0, p1 mgl64.Vec3, maxParam float64) float64 {
	normal := f.Normal()
	if normal.LenSqr() == 0 {
		return NoHit
	}
	origin := f.Vertex(0)
	d0 := normal.Dot(p0.Sub(origin))
	d1 := normal.Dot(p1.Sub(origin))
	if d0 == d1 || (d0 > 0 && d1 > 0) || (d0 < 0 && d1 < 0) {
		return NoHit
	}
	t := d0 / (d0 - d1)
	if t < 0 || t > maxParam {
		return NoHit
	}
	if !f.contains(p0.Add(p1.Sub(p0).Mul(t)), normal) {
		return NoHit
	}
	return t
}

// contains runs an even-odd crossing test on the plane most facing normal.
func (f Face) contains(q, normal mgl64.Vec3) bool {
	drop := 0
	for i := 1; i < 3; i++ {
		if math.Abs(normal[i]) > math.Abs(normal[drop]) {
			drop = i
		}
	}
	u, v := (drop+1)%3, (drop+2)%3

	inside := false
	n := f.VertexCount()
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := f.Vertex(i), f.Vertex(j)
		if (a[v] > q[v]) != (b[v] > q[v]) {
			x := a[u] + (q[v]-a[v])*(b[u]-a[u])/(b[v]-a[v])
			if q[u] < x {
				inside = !inside
			}
		}
	}
	return inside
}
