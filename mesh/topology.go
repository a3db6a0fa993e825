package mesh

// DeleteEdge removes id and its twin, splicing their neighbours together on both
// sides. When the two sides belonged to different faces, the merged cycle takes the
// face tag of id, or OpenFace if either side was open.
//
// The caller must not delete the last edge of a face it intends to keep.
func (p *Polyhedra) DeleteEdge(id EdgeID) {
	assertf(p.IsAlive(id), "mesh: DeleteEdge on invalid edge %d", id)
	e := p.edges[id]
	twinID := e.Twin
	assertf(p.IsAlive(twinID), "mesh: DeleteEdge on edge %d without twin", id)
	t := p.edges[twinID]

	if e.Next != twinID {
		p.edges[e.Next].Prev = t.Prev
		p.edges[t.Prev].Next = e.Next
	}
	if t.Next != id {
		p.edges[t.Next].Prev = e.Prev
		p.edges[e.Prev].Next = t.Next
	}

	p.removeKey(id)
	p.removeKey(twinID)
	p.freeEdge(id)
	p.freeEdge(twinID)

	if e.Face != t.Face {
		face := e.Face
		if t.Face == OpenFace {
			face = OpenFace
		}
		for _, start := range []EdgeID{e.Prev, t.Prev} {
			if start != id && start != twinID && p.IsAlive(start) {
				p.retagFace(start, face)
			}
		}
	}
}

func (p *Polyhedra) retagFace(start EdgeID, face int) {
	p.walkFace(start, func(id EdgeID) {
		p.edges[id].Face = face
	})
}

// DeleteFace opens the face holding id: every edge of the ring becomes a boundary
// edge, and edges whose twin is already open are removed entirely, merging the
// face into the surrounding open region.
func (p *Polyhedra) DeleteFace(id EdgeID) {
	assertf(p.IsAlive(id), "mesh: DeleteFace on invalid edge %d", id)

	var ring []EdgeID
	p.walkFace(id, func(e EdgeID) {
		ring = append(ring, e)
	})
	for _, e := range ring {
		p.edges[e].Face = OpenFace
	}
	for _, e := range ring {
		if !p.IsAlive(e) {
			continue
		}
		if twin := p.edges[e].Twin; twin == NilEdge || p.edges[twin].Face == OpenFace {
			if twin == NilEdge {
				p.unlinkDangling(e)
				continue
			}
			p.DeleteEdge(e)
		}
	}
}

// unlinkDangling drops a half-edge that never received a twin.
func (p *Polyhedra) unlinkDangling(id EdgeID) {
	e := p.edges[id]
	if e.Next != NilEdge && e.Next != id {
		p.edges[e.Next].Prev = e.Prev
	}
	if e.Prev != NilEdge && e.Prev != id {
		p.edges[e.Prev].Next = e.Next
	}
	p.removeKey(id)
	p.freeEdge(id)
}

// SplitEdge inserts vertex v in the middle of id and its twin. id keeps its origin
// and now ends at v; the returned edge runs from v to the old destination. Both
// face cycles and face tags are preserved.
func (p *Polyhedra) SplitEdge(v int, id EdgeID) EdgeID {
	assertf(p.IsAlive(id), "mesh: SplitEdge on invalid edge %d", id)
	twinID := p.edges[id].Twin
	assertf(p.IsAlive(twinID), "mesh: SplitEdge on edge %d without twin", id)

	a := p.edges[id].Vertex
	b := p.edges[twinID].Vertex
	assertf(v != a && v != b, "mesh: SplitEdge vertex %d is an endpoint of %d->%d", v, a, b)
	assertf(p.FindEdge(v, b) == NilEdge && p.FindEdge(b, v) == NilEdge &&
		p.FindEdge(a, v) == NilEdge && p.FindEdge(v, a) == NilEdge,
		"mesh: SplitEdge vertex %d already connected to %d->%d", v, a, b)

	p.removeKey(id)
	p.removeKey(twinID)
	p.insertKey(id, NewEdgeKey(a, v))
	p.insertKey(twinID, NewEdgeKey(v, a))

	// v -> b on the side of id
	e1 := p.newEdge(v, b, p.edges[id].Face, p.edges[id].UserData)
	// b -> v on the side of the twin
	t1 := p.newEdge(b, v, p.edges[twinID].Face, p.edges[twinID].UserData)

	next := p.edges[id].Next
	p.edges[e1].Next = next
	p.edges[e1].Prev = id
	p.edges[next].Prev = e1
	p.edges[id].Next = e1

	prev := p.edges[twinID].Prev
	p.edges[prev].Next = t1
	p.edges[t1].Prev = prev
	p.edges[t1].Next = twinID
	p.edges[twinID].Prev = t1
	p.edges[twinID].Vertex = v

	p.edges[e1].Twin = t1
	p.edges[t1].Twin = e1

	return e1
}

func (p *Polyhedra) isTriangle(id EdgeID) bool {
	e := p.edges[id]
	return p.edges[p.edges[e.Next].Next].Next == id
}

// FlipEdge swaps the diagonal shared by two triangles. It returns false, without
// touching the mesh, when either side is not a real triangle or when the new
// diagonal already exists.
func (p *Polyhedra) FlipEdge(id EdgeID) bool {
	assertf(p.IsAlive(id), "mesh: FlipEdge on invalid edge %d", id)
	twinID := p.edges[id].Twin
	if !p.IsAlive(twinID) {
		return false
	}
	if p.edges[id].Face <= 0 || p.edges[twinID].Face <= 0 {
		return false
	}
	if !p.isTriangle(id) || !p.isTriangle(twinID) {
		return false
	}

	// id: a->b in (a, b, c); twin: b->a in (b, a, d)
	en, ep := p.edges[id].Next, p.edges[id].Prev
	tn, tp := p.edges[twinID].Next, p.edges[twinID].Prev
	c := p.edges[ep].Vertex
	d := p.edges[tp].Vertex
	if c == d || p.FindEdge(c, d) != NilEdge || p.FindEdge(d, c) != NilEdge {
		return false
	}

	faceA := p.edges[id].Face
	faceB := p.edges[twinID].Face

	p.removeKey(id)
	p.removeKey(twinID)
	p.insertKey(id, NewEdgeKey(d, c))
	p.insertKey(twinID, NewEdgeKey(c, d))
	p.edges[id].Vertex = d
	p.edges[twinID].Vertex = c

	// (a, d, c): tn -> id -> ep
	p.link(tn, id)
	p.link(id, ep)
	p.link(ep, tn)
	p.edges[tn].Face = faceA

	// (b, c, d): en -> twin -> tp
	p.link(en, twinID)
	p.link(twinID, tp)
	p.link(tp, en)
	p.edges[en].Face = faceB

	return true
}

func (p *Polyhedra) link(from, to EdgeID) {
	p.edges[from].Next = to
	p.edges[to].Prev = from
}
