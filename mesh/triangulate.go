package mesh

import (
	"math"

	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/pqueue"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"
)

// convexTurnEpsilon is the relative turn below which a corner counts as flat or reflex.
const convexTurnEpsilon = 1e-10

// Triangulate ear-clips every real face with more than three edges. Ears keep the
// face tag and user data of the face they were cut from.
//
// Faces the ear picker cannot finish, typically near degenerate or self overlapping
// rings, are removed from the mesh. Their remaining vertex rings are returned.
func (p *Polyhedra) Triangulate(verts geom.VertexArray) [][]int {
	var polygons []EdgeID
	p.ForEachFace(func(id EdgeID) bool {
		if !p.isTriangle(id) {
			polygons = append(polygons, id)
		}
		return true
	})

	var leftovers [][]int
	for _, start := range polygons {
		if rest, ok := p.triangulateFace(start, verts); !ok {
			leftovers = append(leftovers, p.FaceVertices(rest))
			p.DeleteFace(rest)
		}
	}

	if len(leftovers) > 0 {
		glog.Warningf("mesh: triangulation left %d of %d faces unfinished", len(leftovers), len(polygons))
	}
	glog.V(2).Infof("mesh: triangulated %d polygons", len(polygons)-len(leftovers))
	return leftovers
}

// triangulateFace clips ears off the face holding start until a triangle remains.
// On failure it returns an edge of the unfinished remainder.
func (p *Polyhedra) triangulateFace(start EdgeID, verts geom.VertexArray) (EdgeID, bool) {
	normal := p.FaceNormal(start, verts)
	if normal.LenSqr() < 1e-30 {
		return start, false
	}
	normal = normal.Normalize()

	current := start
	for !p.isTriangle(current) {
		tip := p.FindEarTip(current, normal, verts)
		if tip == NilEdge {
			return current, false
		}
		current = p.clipEar(tip)
	}
	return current, true
}

// FindEarTip returns the half-edge leaving the best ear tip of the face holding id,
// or NilEdge when no corner forms a valid ear.
//
// A corner (prev, tip, next) is an ear when it turns the same way as normal, no other
// vertex of the ring lies inside or on the triangle, and the diagonal next-prev does
// not already exist. Candidates are tried sharpest first.
func (p *Polyhedra) FindEarTip(id EdgeID, normal mgl64.Vec3, verts geom.VertexArray) EdgeID {
	var ring []EdgeID
	p.walkFace(id, func(e EdgeID) {
		ring = append(ring, e)
	})

	candidates := pqueue.NewMax[EdgeID](len(ring))
	for _, e := range ring {
		prev := verts.At(p.edges[p.edges[e].Prev].Vertex)
		tip := verts.At(p.edges[e].Vertex)
		next := verts.At(p.edges[p.edges[e].Next].Vertex)

		d0 := tip.Sub(prev)
		d1 := next.Sub(tip)
		l0, l1 := d0.Len(), d1.Len()
		if l0 < 1e-30 || l1 < 1e-30 {
			continue
		}
		if d0.Cross(d1).Dot(normal) <= convexTurnEpsilon*l0*l1 {
			continue
		}
		// cosine of the interior angle at tip: larger is sharper
		cos := prev.Sub(tip).Dot(d1) / (l0 * l1)
		candidates.Push(e, cos)
	}

	for candidates.Len() > 0 {
		e, _, _ := candidates.Pop()
		if p.isEar(e, ring, normal, verts) {
			return e
		}
	}
	return NilEdge
}

func (p *Polyhedra) isEar(tip EdgeID, ring []EdgeID, normal mgl64.Vec3, verts geom.VertexArray) bool {
	iv := p.edges[tip].Vertex
	ip := p.edges[p.edges[tip].Prev].Vertex
	in := p.edges[p.edges[tip].Next].Vertex
	if ip == in || p.FindEdge(in, ip) != NilEdge || p.FindEdge(ip, in) != NilEdge {
		return false
	}

	a, b, c := verts.At(ip), verts.At(iv), verts.At(in)
	for _, e := range ring {
		w := p.edges[e].Vertex
		if w == ip || w == iv || w == in {
			continue
		}
		q := verts.At(w)
		if sideOf(a, b, q, normal) >= 0 && sideOf(b, c, q, normal) >= 0 && sideOf(c, a, q, normal) >= 0 {
			return false
		}
	}
	return true
}

// sideOf is positive when q lies on the inner side of the directed edge a-b,
// seen against normal.
func sideOf(a, b, q, normal mgl64.Vec3) float64 {
	s := b.Sub(a).Cross(q.Sub(a)).Dot(normal)
	if math.Abs(s) < 1e-14*b.Sub(a).LenSqr() {
		return 0
	}
	return s
}

// clipEar cuts the triangle (prev, tip, next) off the face holding tip by inserting
// the diagonal pair next->prev / prev->next. It returns the diagonal that stays on
// the remaining face.
func (p *Polyhedra) clipEar(tip EdgeID) EdgeID {
	ep := p.edges[tip].Prev
	en := p.edges[tip].Next
	epp := p.edges[ep].Prev

	prev := p.edges[ep].Vertex
	next := p.edges[en].Vertex
	face := p.edges[tip].Face
	userData := p.edges[tip].UserData

	diagonal := p.newEdge(next, prev, face, userData)
	rest := p.newEdge(prev, next, face, userData)
	assertf(diagonal != NilEdge && rest != NilEdge, "mesh: ear diagonal %d-%d already exists", prev, next)
	p.edges[diagonal].Twin = rest
	p.edges[rest].Twin = diagonal

	p.link(tip, diagonal)
	p.link(diagonal, ep)

	p.link(epp, rest)
	p.link(rest, en)

	return rest
}
