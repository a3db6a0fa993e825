package mesh

import (
	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/pathfind"
)

// edgeGraph walks the mesh edges, weighted by their length.
type edgeGraph struct {
	mesh  *Polyhedra
	verts geom.VertexArray
}

func (g edgeGraph) Neighbors(v int, visit func(int, float64)) {
	p := g.verts.At(v)
	g.mesh.forEachVertexEdge(v, func(id EdgeID) bool {
		next := g.mesh.edges[id].key.Destination()
		visit(next, g.verts.At(next).Sub(p).Len())
		return true
	})
}

func (g edgeGraph) Heuristic(from, goal int) float64 {
	return g.verts.At(goal).Sub(g.verts.At(from)).Len()
}

// ShortestPath returns the shortest chain of vertices joining from to to along
// mesh edges, both ends included, and its length. ok is false when the two
// vertices are not connected.
func (p *Polyhedra) ShortestPath(verts geom.VertexArray, from, to int) (path []int, length float64, ok bool) {
	if p.FindVertexEdge(from) == NilEdge || p.FindVertexEdge(to) == NilEdge {
		return nil, 0, false
	}
	return pathfind.Find[int](edgeGraph{mesh: p, verts: verts}, from, to)
}
