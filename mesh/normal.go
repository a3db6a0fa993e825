package mesh

import (
	"github.com/akmonengine/hedra/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// FaceNormal returns the area weighted normal of the face holding id: the sum of
// the fan cross products around its first vertex. Its length is twice the polygon
// area for planar faces, and it stays meaningful for non planar or concave rings.
func (p *Polyhedra) FaceNormal(id EdgeID, verts geom.VertexArray) mgl64.Vec3 {
	e0 := p.Edge(id)
	p0 := verts.At(e0.Vertex)

	e1 := e0.Next
	d1 := verts.At(p.edges[e1].Vertex).Sub(p0)

	var normal mgl64.Vec3
	for e2 := p.edges[e1].Next; e2 != id; e2 = p.edges[e2].Next {
		d2 := verts.At(p.edges[e2].Vertex).Sub(p0)
		normal = normal.Add(d1.Cross(d2))
		d1 = d2
	}
	return normal
}

// DeleteDegenerateFaces removes every real face whose area is below minArea.
// It returns the number of faces removed.
func (p *Polyhedra) DeleteDegenerateFaces(verts geom.VertexArray, minArea float64) int {
	var degenerate []EdgeID
	threshold := 4 * minArea * minArea
	p.ForEachFace(func(id EdgeID) bool {
		n := p.FaceNormal(id, verts)
		if n.Dot(n) < threshold {
			degenerate = append(degenerate, id)
		}
		return true
	})

	removed := 0
	for _, id := range degenerate {
		if p.IsAlive(id) && p.edges[id].Face > 0 {
			p.DeleteFace(id)
			removed++
		}
	}
	return removed
}
