// Package mesh implements Polyhedra, a half-edge mesh over an external vertex array.
//
// The mesh stores only vertex indices. Half-edges live in an arena and are addressed
// by EdgeID handles; next/prev/twin links are handles too, so deleting an edge only
// returns its slot to a free list. Directed edges are additionally indexed by their
// (origin, destination) EdgeKey in an ordered B-tree, which gives O(log N) FindEdge
// and contiguous iteration over the edges leaving a vertex.
//
// Construction is a three phase protocol:
//
//	p := mesh.New()
//	p.BeginFace()
//	p.AddFace([]int{0, 1, 2}, nil)
//	p.AddFace([]int{0, 2, 3}, nil)
//	p.EndFace()
//
// EndFace pairs every half-edge with its opposite one, synthesizing open boundary
// edges (Face == OpenFace) where no opposite face exists. After EndFace every edge
// has a twin.
//
// A Polyhedra is not safe for concurrent use.
package mesh

import (
	"fmt"

	"github.com/google/btree"
	"github.com/pkg/errors"
)

// EdgeID is a stable handle to a half-edge of a Polyhedra.
type EdgeID int32

// NilEdge is the null handle returned by failed lookups and insertions.
const NilEdge EdgeID = -1

// OpenFace is the face tag of boundary half-edges.
const OpenFace = -1

// HalfEdge is one directed step around a face boundary.
type HalfEdge struct {
	// Vertex is the origin of the edge, an index into the caller's vertex array.
	Vertex int
	// Face is a positive face tag, or OpenFace on a boundary.
	Face     int
	UserData uint64

	Next EdgeID
	Prev EdgeID
	Twin EdgeID

	key   EdgeKey
	mark  uint32
	alive bool
}

type buildState uint8

const (
	stateUninitialized buildState = iota
	stateAccepting
	stateFinalized
)

type edgeEntry struct {
	key  EdgeKey
	edge EdgeID
}

func lessEntry(a, b edgeEntry) bool {
	return a.key < b.key
}

// Polyhedra is a half-edge mesh.
type Polyhedra struct {
	edges []HalfEdge
	free  []EdgeID
	tree  *btree.BTreeG[edgeEntry]

	state        buildState
	faceSequence int
	markStamp    uint32
}

// New returns an empty mesh.
func New() *Polyhedra {
	return &Polyhedra{
		tree: btree.NewG[edgeEntry](32, lessEntry),
	}
}

func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(errors.Errorf(format, args...))
	}
}

// Edge returns the half-edge behind a handle. The pointer is only valid until the
// next call that inserts edges.
func (p *Polyhedra) Edge(id EdgeID) *HalfEdge {
	assertf(p.IsAlive(id), "mesh: invalid edge handle %d", id)
	return &p.edges[id]
}

// IsAlive reports whether id refers to a live half-edge.
func (p *Polyhedra) IsAlive(id EdgeID) bool {
	return id >= 0 && int(id) < len(p.edges) && p.edges[id].alive
}

// Key returns the (origin, destination) key of a live half-edge.
func (p *Polyhedra) Key(id EdgeID) EdgeKey {
	return p.Edge(id).key
}

// Destination returns the vertex a half-edge points to.
func (p *Polyhedra) Destination(id EdgeID) int {
	return p.Edge(id).key.Destination()
}

// IncLRU starts a new traversal epoch and returns its stamp. Edges whose mark is
// below the stamp count as unvisited.
func (p *Polyhedra) IncLRU() uint32 {
	p.markStamp++
	return p.markStamp
}

func (p *Polyhedra) allocEdge(vertex, face int, userData uint64) EdgeID {
	e := HalfEdge{
		Vertex:   vertex,
		Face:     face,
		UserData: userData,
		Next:     NilEdge,
		Prev:     NilEdge,
		Twin:     NilEdge,
		alive:    true,
	}
	if n := len(p.free); n > 0 {
		id := p.free[n-1]
		p.free = p.free[:n-1]
		p.edges[id] = e
		return id
	}
	p.edges = append(p.edges, e)
	return EdgeID(len(p.edges) - 1)
}

func (p *Polyhedra) freeEdge(id EdgeID) {
	p.edges[id] = HalfEdge{Next: NilEdge, Prev: NilEdge, Twin: NilEdge}
	p.free = append(p.free, id)
}

func (p *Polyhedra) insertKey(id EdgeID, key EdgeKey) bool {
	if p.tree.Has(edgeEntry{key: key}) {
		return false
	}
	p.edges[id].key = key
	p.tree.ReplaceOrInsert(edgeEntry{key: key, edge: id})
	return true
}

func (p *Polyhedra) removeKey(id EdgeID) {
	p.tree.Delete(edgeEntry{key: p.edges[id].key})
}

// newEdge allocates a half-edge keyed v0 -> v1. It returns NilEdge if the key is taken.
func (p *Polyhedra) newEdge(v0, v1, face int, userData uint64) EdgeID {
	if p.tree.Has(edgeEntry{key: NewEdgeKey(v0, v1)}) {
		return NilEdge
	}
	id := p.allocEdge(v0, face, userData)
	p.insertKey(id, NewEdgeKey(v0, v1))
	return id
}

// BeginFace opens a face insertion bracket.
func (p *Polyhedra) BeginFace() {
	p.state = stateAccepting
}

// AddFace inserts one polygon, given as a ring of vertex indices, and returns its
// first half-edge. userData, when long enough, tags each edge of the ring.
//
// It returns NilEdge and leaves the mesh untouched when the ring has fewer than
// three vertices, two consecutive equal indices, a repeated directed or reversed
// edge, or an edge whose directed key already exists in the mesh.
func (p *Polyhedra) AddFace(indices []int, userData []uint64) EdgeID {
	assertf(p.state == stateAccepting, "mesh: AddFace called outside BeginFace/EndFace")

	n := len(indices)
	if n < 3 {
		return NilEdge
	}

	keys := make(map[EdgeKey]struct{}, n)
	for i := 0; i < n; i++ {
		v0, v1 := indices[i], indices[(i+1)%n]
		if v0 == v1 || v0 < 0 || v1 < 0 {
			return NilEdge
		}
		key := NewEdgeKey(v0, v1)
		if _, dup := keys[key]; dup {
			return NilEdge
		}
		if _, dup := keys[key.Reverse()]; dup {
			return NilEdge
		}
		if p.tree.Has(edgeEntry{key: key}) {
			return NilEdge
		}
		keys[key] = struct{}{}
	}

	p.faceSequence++
	face := p.faceSequence

	first, prev := NilEdge, NilEdge
	for i := 0; i < n; i++ {
		var data uint64
		if i < len(userData) {
			data = userData[i]
		}
		id := p.newEdge(indices[i], indices[(i+1)%n], face, data)
		if prev == NilEdge {
			first = id
		} else {
			p.edges[prev].Next = id
			p.edges[id].Prev = prev
		}
		prev = id
	}
	p.edges[prev].Next = first
	p.edges[first].Prev = prev

	return first
}

// EndFace closes the insertion bracket: it pairs twins and synthesizes open
// boundary edges, stitched into their own next/prev cycles.
func (p *Polyhedra) EndFace() {
	p.state = stateFinalized

	var unpaired []EdgeID
	for i := range p.edges {
		id := EdgeID(i)
		e := &p.edges[i]
		if !e.alive || e.Twin != NilEdge {
			continue
		}
		twin := p.FindEdge(e.key.Destination(), e.key.Origin())
		if twin != NilEdge && p.edges[twin].Twin == NilEdge {
			e.Twin = twin
			p.edges[twin].Twin = id
			continue
		}
		unpaired = append(unpaired, id)
	}

	open := make([]EdgeID, 0, len(unpaired))
	for _, id := range unpaired {
		key := p.edges[id].key
		b := p.newEdge(key.Destination(), key.Origin(), OpenFace, p.edges[id].UserData)
		assertf(b != NilEdge, "mesh: boundary edge %d->%d already exists", key.Destination(), key.Origin())
		p.edges[b].Twin = id
		p.edges[id].Twin = b
		open = append(open, b)
	}

	limit := len(p.edges)
	for _, b := range open {
		// b ends at the origin of its twin; its successor is the open edge leaving there.
		c := p.edges[b].Twin
		for steps := 0; ; steps++ {
			assertf(steps <= limit, "mesh: boundary loop around vertex %d does not close", p.edges[c].Vertex)
			c = p.edges[p.edges[c].Prev].Twin
			if p.edges[c].Face == OpenFace {
				break
			}
		}
		p.edges[b].Next = c
		p.edges[c].Prev = b
	}
}

// AddHalfEdge inserts a single unlinked half-edge v0 -> v1. It returns NilEdge when
// v0 == v1 or the directed key already exists.
func (p *Polyhedra) AddHalfEdge(v0, v1 int) EdgeID {
	if v0 == v1 || v0 < 0 || v1 < 0 {
		return NilEdge
	}
	if p.state == stateUninitialized {
		p.state = stateFinalized
	}
	p.faceSequence++
	return p.newEdge(v0, v1, p.faceSequence, 0)
}

// FindEdge returns the half-edge v0 -> v1, or NilEdge.
func (p *Polyhedra) FindEdge(v0, v1 int) EdgeID {
	entry, ok := p.tree.Get(edgeEntry{key: NewEdgeKey(v0, v1)})
	if !ok {
		return NilEdge
	}
	return entry.edge
}

// FindVertexEdge returns any half-edge leaving v, or NilEdge.
func (p *Polyhedra) FindVertexEdge(v int) EdgeID {
	found := NilEdge
	p.tree.AscendGreaterOrEqual(edgeEntry{key: NewEdgeKey(v, 0)}, func(entry edgeEntry) bool {
		if entry.key.Origin() == v {
			found = entry.edge
		}
		return false
	})
	return found
}

// forEachVertexEdge visits every half-edge leaving v, in destination order.
func (p *Polyhedra) forEachVertexEdge(v int, visit func(id EdgeID) bool) {
	p.tree.AscendRange(edgeEntry{key: NewEdgeKey(v, 0)}, edgeEntry{key: NewEdgeKey(v+1, 0)}, func(entry edgeEntry) bool {
		return visit(entry.edge)
	})
}

// ForEachEdge visits every live half-edge in key order until visit returns false.
func (p *Polyhedra) ForEachEdge(visit func(id EdgeID) bool) {
	p.tree.Ascend(func(entry edgeEntry) bool {
		return visit(entry.edge)
	})
}

// ForEachFace visits one half-edge of every real face until visit returns false.
// visit must not mutate the mesh.
func (p *Polyhedra) ForEachFace(visit func(id EdgeID) bool) {
	stamp := p.IncLRU()
	for i := range p.edges {
		e := &p.edges[i]
		if !e.alive || e.mark == stamp || e.Face <= 0 {
			continue
		}
		p.markCycle(EdgeID(i), stamp)
		if !visit(EdgeID(i)) {
			return
		}
	}
}

func (p *Polyhedra) markCycle(start EdgeID, stamp uint32) {
	id := start
	for {
		p.edges[id].mark = stamp
		id = p.edges[id].Next
		if id == start || id == NilEdge {
			return
		}
	}
}

// FaceVertices returns the vertex ring of the face holding id.
func (p *Polyhedra) FaceVertices(id EdgeID) []int {
	var ring []int
	p.walkFace(id, func(e EdgeID) {
		ring = append(ring, p.edges[e].Vertex)
	})
	return ring
}

// FaceEdgeCount returns the number of half-edges around the face holding id.
func (p *Polyhedra) FaceEdgeCount(id EdgeID) int {
	count := 0
	p.walkFace(id, func(EdgeID) { count++ })
	return count
}

func (p *Polyhedra) walkFace(start EdgeID, visit func(id EdgeID)) {
	assertf(p.IsAlive(start), "mesh: invalid edge handle %d", start)
	limit := len(p.edges)
	id := start
	for steps := 0; ; steps++ {
		assertf(steps <= limit, "mesh: face cycle from edge %d does not close", start)
		visit(id)
		id = p.edges[id].Next
		if id == start {
			return
		}
	}
}

// Faces returns the vertex rings of every real face.
func (p *Polyhedra) Faces() [][]int {
	var faces [][]int
	p.ForEachFace(func(id EdgeID) bool {
		faces = append(faces, p.FaceVertices(id))
		return true
	})
	return faces
}

// GetFaceCount returns the number of real faces.
func (p *Polyhedra) GetFaceCount() int {
	count := 0
	p.ForEachFace(func(EdgeID) bool {
		count++
		return true
	})
	return count
}

// GetEdgeCount returns the number of live half-edges.
func (p *Polyhedra) GetEdgeCount() int {
	return p.tree.Len()
}

// GetLastVertexIndex returns one past the largest vertex index used by the mesh.
func (p *Polyhedra) GetLastVertexIndex() int {
	last := 0
	p.tree.Ascend(func(entry edgeEntry) bool {
		last = max(last, entry.key.Origin()+1, entry.key.Destination()+1)
		return true
	})
	return last
}

// Validate checks the mesh invariants: live twins pointing back, closed next/prev
// cycles sharing one face tag, and a key index matching the live edges.
func (p *Polyhedra) Validate() error {
	live := 0
	for i := range p.edges {
		e := &p.edges[i]
		if !e.alive {
			continue
		}
		live++
		id := EdgeID(i)

		if !p.IsAlive(e.Twin) {
			return errors.Errorf("edge %d (%d->%d) has no twin", id, e.key.Origin(), e.key.Destination())
		}
		twin := &p.edges[e.Twin]
		if twin.Twin != id {
			return errors.Errorf("edge %d twin %d does not point back", id, e.Twin)
		}
		if twin.Vertex != e.key.Destination() || twin.key != e.key.Reverse() {
			return errors.Errorf("edge %d twin %d has mismatched endpoints", id, e.Twin)
		}
		if e.Vertex != e.key.Origin() {
			return errors.Errorf("edge %d origin %d does not match key %d->%d", id, e.Vertex, e.key.Origin(), e.key.Destination())
		}
		if !p.IsAlive(e.Next) || !p.IsAlive(e.Prev) {
			return errors.Errorf("edge %d has dangling next/prev links", id)
		}
		if p.edges[e.Next].Prev != id || p.edges[e.Prev].Next != id {
			return errors.Errorf("edge %d next/prev links are not symmetric", id)
		}
		if p.edges[e.Next].Vertex != e.key.Destination() {
			return errors.Errorf("edge %d next does not start at its destination", id)
		}
		if err := p.validateCycle(id); err != nil {
			return err
		}
		if entry, ok := p.tree.Get(edgeEntry{key: e.key}); !ok || entry.edge != id {
			return errors.Errorf("edge %d is not indexed under its key", id)
		}
	}
	if live != p.tree.Len() {
		return errors.Errorf("key index holds %d entries for %d live edges", p.tree.Len(), live)
	}
	return nil
}

func (p *Polyhedra) validateCycle(start EdgeID) error {
	face := p.edges[start].Face
	id := start
	for steps := 0; steps <= len(p.edges); steps++ {
		if p.edges[id].Face != face {
			return errors.Errorf("face cycle from edge %d mixes face tags %d and %d", start, face, p.edges[id].Face)
		}
		id = p.edges[id].Next
		if id == start {
			return nil
		}
	}
	return errors.Errorf("face cycle from edge %d does not close", start)
}

func (p *Polyhedra) String() string {
	return fmt.Sprintf("Polyhedra{faces: %d, halfEdges: %d}", p.GetFaceCount(), p.GetEdgeCount())
}
