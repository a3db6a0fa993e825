package mesh

import (
	"github.com/akmonengine/hedra/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"
)

// coplanarDot is the smallest normal dot product for two faces to be merged.
const coplanarDot = 0.9999

// ConvexPartition rebuilds the real faces as convex polygons. Every face is first
// triangulated, then the diagonals between coplanar neighbours are removed greedily
// as long as the merged polygon stays convex and simple. What remains are the
// diagonals some concave corner needs.
//
// It returns the rings Triangulate could not finish.
func (p *Polyhedra) ConvexPartition(verts geom.VertexArray) [][]int {
	leftovers := p.Triangulate(verts)

	merged := 0
	for {
		var candidates []EdgeID
		p.ForEachEdge(func(id EdgeID) bool {
			e := &p.edges[id]
			if e.key.Origin() < e.key.Destination() && e.Face > 0 && p.edges[e.Twin].Face > 0 {
				candidates = append(candidates, id)
			}
			return true
		})

		changed := false
		for _, id := range candidates {
			if p.IsAlive(id) && p.canRemoveDiagonal(id, verts) {
				p.DeleteEdge(id)
				merged++
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	glog.V(2).Infof("mesh: convex partition removed %d diagonals", merged)
	return leftovers
}

// canRemoveDiagonal reports whether deleting id merges two distinct coplanar faces
// into one convex polygon without repeated vertices.
func (p *Polyhedra) canRemoveDiagonal(id EdgeID, verts geom.VertexArray) bool {
	twin := p.edges[id].Twin
	if p.edges[id].Face <= 0 || p.edges[twin].Face <= 0 || p.sameCycle(id, twin) {
		return false
	}

	n0 := p.FaceNormal(id, verts)
	n1 := p.FaceNormal(twin, verts)
	if n0.LenSqr() < 1e-30 || n1.LenSqr() < 1e-30 {
		return false
	}
	n0 = n0.Normalize()
	if n0.Dot(n1.Normalize()) < coplanarDot {
		return false
	}

	// merged ring: the face of id from its destination, then the face of twin
	var ring []int
	for e := p.edges[id].Next; e != id; e = p.edges[e].Next {
		ring = append(ring, p.edges[e].Vertex)
	}
	for e := p.edges[twin].Next; e != twin; e = p.edges[e].Next {
		ring = append(ring, p.edges[e].Vertex)
	}

	seen := make(map[int]struct{}, len(ring))
	for _, v := range ring {
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
	}
	return isConvexRing(ring, n0, verts)
}

func (p *Polyhedra) sameCycle(a, b EdgeID) bool {
	found := false
	p.walkFace(a, func(e EdgeID) {
		if e == b {
			found = true
		}
	})
	return found
}

// isConvexRing checks every corner turns along normal, allowing flat corners.
func isConvexRing(ring []int, normal mgl64.Vec3, verts geom.VertexArray) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a := verts.At(ring[(i+n-1)%n])
		b := verts.At(ring[i])
		c := verts.At(ring[(i+1)%n])
		d0, d1 := b.Sub(a), c.Sub(b)
		if d0.Cross(d1).Dot(normal) < -convexTurnEpsilon*d0.Len()*d1.Len() {
			return false
		}
	}
	return true
}
