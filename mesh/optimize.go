package mesh

import (
	"math"

	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/pqueue"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"
)

// OptimizeConfig tunes the edge collapse simplifier.
type OptimizeConfig struct {
	// Tolerance is the largest distance a vertex may move away from the planes
	// around it when it is merged into a neighbour.
	Tolerance float64 `mapstructure:"tolerance"`
	// MinAspectRatio rejects collapses producing triangles below this quality.
	MinAspectRatio float64 `mapstructure:"min_aspect_ratio"`
	// MinNormalDot rejects collapses rotating a surviving triangle further than this.
	MinNormalDot float64 `mapstructure:"min_normal_dot"`
}

// DefaultOptimizeConfig returns the settings used by Optimize.
func DefaultOptimizeConfig() OptimizeConfig {
	return OptimizeConfig{
		Tolerance:      1e-3,
		MinAspectRatio: 0.05,
		MinNormalDot:   0.2,
	}
}

type collapseCandidate struct {
	edge EdgeID
	key  EdgeKey
}

// Optimize simplifies the mesh with tolerance as the geometric error bound and
// the default quality limits. It returns the number of collapsed edges.
func (p *Polyhedra) Optimize(verts geom.VertexArray, tolerance float64) int {
	cfg := DefaultOptimizeConfig()
	cfg.Tolerance = tolerance
	return p.OptimizeWith(verts, cfg)
}

// OptimizeWith runs a greedy edge collapse pass. Non triangular faces are
// triangulated first.
//
// Each vertex accumulates a quadric from the planes of its faces, plus one plane
// per boundary edge standing perpendicular to the surface so open borders resist
// shrinking. Collapsing a into b is allowed when the quadric of a measured at b
// stays below Tolerance², and is scored by the worst triangle quality left
// around b. The best candidates are collapsed first; every popped candidate is
// scored again since earlier collapses may have invalidated it.
func (p *Polyhedra) OptimizeWith(verts geom.VertexArray, cfg OptimizeConfig) int {
	p.Triangulate(verts)

	quadrics := p.vertexQuadrics(verts)
	maxError := cfg.Tolerance * cfg.Tolerance

	queue := pqueue.NewMax[collapseCandidate](p.GetEdgeCount())
	enqueue := func(id EdgeID) {
		if p.edges[id].Face <= 0 && p.edges[p.edges[id].Twin].Face <= 0 {
			return
		}
		if p.collapseError(id, quadrics, verts) >= maxError {
			return
		}
		if cost := p.collapseCost(id, verts, cfg); cost >= 0 {
			queue.Push(collapseCandidate{edge: id, key: p.edges[id].key}, cost)
		}
	}
	p.ForEachEdge(func(id EdgeID) bool {
		enqueue(id)
		return true
	})

	collapsed := 0
	for queue.Len() > 0 {
		candidate, cost, _ := queue.Pop()
		id := candidate.edge
		if !p.IsAlive(id) || p.edges[id].key != candidate.key {
			continue
		}
		if p.collapseError(id, quadrics, verts) >= maxError {
			continue
		}
		current := p.collapseCost(id, verts, cfg)
		if current < 0 {
			continue
		}
		if math.Abs(current-cost) > 1e-12 {
			queue.Push(candidate, current)
			continue
		}

		a := p.edges[id].Vertex
		b := p.edges[id].key.Destination()
		p.collapse(id)
		quadrics[b] = quadrics[b].Add(quadrics[a])
		collapsed++

		var ring []EdgeID
		p.forEachVertexEdge(b, func(e EdgeID) bool {
			ring = append(ring, e, p.edges[e].Twin)
			return true
		})
		for _, e := range ring {
			enqueue(e)
		}
	}

	glog.V(1).Infof("mesh: optimize collapsed %d edges, %d faces left", collapsed, p.GetFaceCount())
	return collapsed
}

// vertexQuadrics sums the squared distance forms of the planes around every vertex.
func (p *Polyhedra) vertexQuadrics(verts geom.VertexArray) []mgl64.Mat4 {
	quadrics := make([]mgl64.Mat4, p.GetLastVertexIndex())

	p.ForEachFace(func(id EdgeID) bool {
		normal := p.FaceNormal(id, verts)
		if normal.LenSqr() < 1e-30 {
			return true
		}
		plane := geom.NewPlane(normal.Normalize(), verts.At(p.edges[id].Vertex)).Vec4()
		q := plane.OuterProd4(plane)
		p.walkFace(id, func(e EdgeID) {
			v := p.edges[e].Vertex
			quadrics[v] = quadrics[v].Add(q)
		})
		return true
	})

	// loop planes: through each boundary edge, perpendicular to its real face
	p.ForEachEdge(func(id EdgeID) bool {
		e := &p.edges[id]
		if e.Face != OpenFace {
			return true
		}
		inner := e.Twin
		if p.edges[inner].Face <= 0 {
			return true
		}
		v0 := p.edges[inner].Vertex
		v1 := e.Vertex
		normal := p.FaceNormal(inner, verts)
		dir := verts.At(v1).Sub(verts.At(v0))
		side := dir.Cross(normal)
		if side.LenSqr() < 1e-30 {
			return true
		}
		plane := geom.NewPlane(side.Normalize(), verts.At(v0)).Vec4()
		q := plane.OuterProd4(plane)
		quadrics[v0] = quadrics[v0].Add(q)
		quadrics[v1] = quadrics[v1].Add(q)
		return true
	})

	return quadrics
}

// collapseError evaluates the quadric of the origin of id at its destination.
func (p *Polyhedra) collapseError(id EdgeID, quadrics []mgl64.Mat4, verts geom.VertexArray) float64 {
	a := p.edges[id].Vertex
	b := verts.At(p.edges[id].key.Destination())
	x := mgl64.Vec4{b[0], b[1], b[2], 1}
	return x.Dot(quadrics[a].Mul4x1(x))
}

func (p *Polyhedra) isBoundaryVertex(v int) bool {
	boundary := false
	p.forEachVertexEdge(v, func(e EdgeID) bool {
		if p.edges[e].Face == OpenFace || p.edges[p.edges[e].Twin].Face == OpenFace {
			boundary = true
		}
		return !boundary
	})
	return boundary
}

// apex returns the vertex opposite to the half-edge id in its triangle.
func (p *Polyhedra) apex(id EdgeID) int {
	return p.edges[p.edges[id].Prev].Vertex
}

// collapseCost scores merging the origin a of id into its destination b: the
// lowest aspect ratio among the triangles around a that survive the collapse.
// It returns -1 when the collapse would break the mesh.
func (p *Polyhedra) collapseCost(id EdgeID, verts geom.VertexArray, cfg OptimizeConfig) float64 {
	twin := p.edges[id].Twin
	eReal := p.edges[id].Face > 0
	tReal := p.edges[twin].Face > 0
	if !eReal && !tReal {
		return -1
	}
	if (eReal && !p.isTriangle(id)) || (tReal && !p.isTriangle(twin)) {
		return -1
	}

	a := p.edges[id].Vertex
	b := p.edges[id].key.Destination()
	c, d := -1, -1
	if eReal {
		c = p.apex(id)
		if p.bothOuterOpen(id) {
			return -1
		}
	}
	if tReal {
		d = p.apex(twin)
		if p.bothOuterOpen(twin) {
			return -1
		}
	}
	if c == d && c >= 0 {
		return -1
	}
	if eReal && tReal && p.isBoundaryVertex(a) {
		return -1
	}

	// link condition: a and b may only share the apexes of the removed triangles
	linked := false
	p.forEachVertexEdge(a, func(e EdgeID) bool {
		x := p.edges[e].key.Destination()
		if x != b && x != c && x != d && p.FindEdge(b, x) != NilEdge {
			linked = true
		}
		return !linked
	})
	if linked {
		return -1
	}

	pa := verts.At(a)
	pb := verts.At(b)
	cost := math.MaxFloat64
	faces := 0
	invalid := false
	p.forEachVertexEdge(a, func(e EdgeID) bool {
		if p.edges[e].Face <= 0 || e == id || (tReal && e == p.edges[twin].Next) {
			return true
		}
		y := p.edges[e].key.Destination()
		z := p.apex(e)
		if y == b || z == b || !p.isTriangle(e) {
			invalid = true
			return false
		}
		py, pz := verts.At(y), verts.At(z)

		before := geom.TriangleNormal(pa, py, pz)
		after := geom.TriangleNormal(pb, py, pz)
		if before.LenSqr() < 1e-30 || after.LenSqr() < 1e-30 ||
			before.Normalize().Dot(after.Normalize()) < cfg.MinNormalDot {
			invalid = true
			return false
		}
		ratio := geom.AspectRatio(pb, py, pz)
		if ratio < cfg.MinAspectRatio {
			invalid = true
			return false
		}
		cost = math.Min(cost, ratio)
		faces++
		return true
	})
	if invalid || faces == 0 {
		return -1
	}
	return cost
}

// bothOuterOpen reports whether the two other edges of the triangle holding id
// border the open region.
func (p *Polyhedra) bothOuterOpen(id EdgeID) bool {
	next := p.edges[id].Next
	prev := p.edges[id].Prev
	return p.edges[p.edges[next].Twin].Face == OpenFace && p.edges[p.edges[prev].Twin].Face == OpenFace
}

// collapse merges the origin a of id into its destination b. The triangles on
// both sides of the edge disappear and their outer edges are paired up; an open
// side is spliced out of its boundary loop instead.
func (p *Polyhedra) collapse(id EdgeID) {
	twin := p.edges[id].Twin
	a := p.edges[id].Vertex
	b := p.edges[id].key.Destination()

	removed := []EdgeID{id, twin}
	for _, side := range []EdgeID{id, twin} {
		if p.edges[side].Face > 0 {
			removed = append(removed, p.edges[side].Next, p.edges[side].Prev)
		}
	}
	isRemoved := func(e EdgeID) bool {
		for _, r := range removed {
			if r == e {
				return true
			}
		}
		return false
	}

	var leaving, entering []EdgeID
	p.forEachVertexEdge(a, func(e EdgeID) bool {
		if !isRemoved(e) {
			leaving = append(leaving, e)
		}
		if t := p.edges[e].Twin; !isRemoved(t) {
			entering = append(entering, t)
		}
		return true
	})

	for _, e := range removed {
		p.removeKey(e)
	}
	for _, e := range leaving {
		p.removeKey(e)
	}
	for _, e := range entering {
		p.removeKey(e)
	}

	for _, side := range []EdgeID{id, twin} {
		s := p.edges[side]
		if s.Face > 0 {
			outerNext := p.edges[s.Next].Twin
			outerPrev := p.edges[s.Prev].Twin
			p.edges[outerNext].Twin = outerPrev
			p.edges[outerPrev].Twin = outerNext
		} else {
			p.link(s.Prev, s.Next)
		}
	}

	for _, e := range leaving {
		p.edges[e].Vertex = b
		ok := p.insertKey(e, NewEdgeKey(b, p.edges[e].key.Destination()))
		assertf(ok, "mesh: collapse of %d into %d duplicates edge %d->%d", a, b, b, p.edges[e].key.Destination())
	}
	for _, e := range entering {
		ok := p.insertKey(e, NewEdgeKey(p.edges[e].Vertex, b))
		assertf(ok, "mesh: collapse of %d into %d duplicates edge %d->%d", a, b, p.edges[e].Vertex, b)
	}
	for _, e := range removed {
		p.freeEdge(e)
	}
}
