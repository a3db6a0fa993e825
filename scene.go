// Package hedra places convex hulls and static polygon meshes in a scene and
// answers box, ray and overlap queries over them.
package hedra

import (
	"sort"

	"github.com/akmonengine/hedra/actor"
	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/hull"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"
)

const DEFAULT_WORKERS = 1

type Scene struct {
	// List of all actors in the scene, in insertion order
	Actors      []*actor.Actor
	SpatialGrid *SpatialGrid
	Workers     int

	Events Events

	nextID int
	// dirty is set when the grid no longer matches the actor boxes.
	dirty bool
}

// NewScene creates an empty scene over a grid of numCells cubic cells.
func NewScene(cellSize float64, numCells int, workers int) *Scene {
	return &Scene{
		SpatialGrid: NewSpatialGrid(cellSize, numCells),
		Workers:     max(DEFAULT_WORKERS, workers),
		Events:      NewEvents(),
	}
}

// AddActor adds an actor to the scene and assigns its ID
func (s *Scene) AddActor(a *actor.Actor) {
	a.ID = s.nextID
	s.nextID++
	s.Actors = append(s.Actors, a)
	s.dirty = true
}

// RemoveActor removes an actor from the scene. Its active pairs are dropped
// without exit events.
func (s *Scene) RemoveActor(a *actor.Actor) {
	k := -1
	for i, b := range s.Actors {
		if b == a {
			k = i
			break
		}
	}

	if k != -1 {
		s.Actors = append(s.Actors[:k], s.Actors[k+1:]...)
		s.dirty = true
	}
	s.Events.forget(a)
}

// MoveActor sets the transform of an actor of the scene.
func (s *Scene) MoveActor(a *actor.Actor, transform actor.Transform) {
	a.SetTransform(transform)
	s.dirty = true
}

func (s *Scene) refresh() {
	if !s.dirty {
		return
	}
	s.SpatialGrid.Clear()
	for i, a := range s.Actors {
		s.SpatialGrid.Insert(i, a.Shape.GetAABB())
	}
	s.SpatialGrid.SortCells()
	s.dirty = false
}

// FindOverlaps returns every pair of overlapping actors, ordered by actor
// IDs, then sends the enter, stay and exit events of this update.
func (s *Scene) FindOverlaps() []Pair {
	s.Workers = max(DEFAULT_WORKERS, s.Workers)

	// Phase 1: Broad phase, boxes sharing a cell
	// Phase 2: Narrow phase, GJK on the shapes
	pairs := NarrowPhase(BroadPhase(s.SpatialGrid, s.Actors, s.Workers), s.Workers)
	s.dirty = false

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].ActorA.ID != pairs[j].ActorA.ID {
			return pairs[i].ActorA.ID < pairs[j].ActorA.ID
		}
		return pairs[i].ActorB.ID < pairs[j].ActorB.ID
	})

	s.Events.recordOverlaps(pairs)
	s.Events.flush()

	glog.V(2).Infof("scene: %d actors, %d overlapping pairs", len(s.Actors), len(pairs))
	return pairs
}

// QueryBox calls visit with every actor whose world box overlaps box, in
// insertion order, until visit returns false.
func (s *Scene) QueryBox(box geom.AABB, visit func(a *actor.Actor) bool) {
	s.refresh()

	indices := make([]int, 0)
	s.SpatialGrid.Query(box, func(actorIndex int) {
		if s.Actors[actorIndex].Shape.GetAABB().Overlaps(box) {
			indices = append(indices, actorIndex)
		}
	})
	sort.Ints(indices)

	for _, i := range indices {
		if !visit(s.Actors[i]) {
			return
		}
	}
}

// RayCast returns the first actor crossed by the segment p0-p1 and the hit
// parameter in [0, 1]. ok is false when nothing is hit.
func (s *Scene) RayCast(p0, p1 mgl64.Vec3) (hit *actor.Actor, t float64, ok bool) {
	t = actor.NoHit
	for _, a := range s.Actors {
		if param := a.RayCast(p0, p1); param < t {
			hit, t = a, param
		}
	}
	return hit, t, hit != nil
}

// BuildHulls builds one hull per point cloud on a pool of workers. Every hull
// is still built by a single goroutine.
func BuildHulls(clouds []geom.VertexArray, cfg hull.Config, workers int) []*hull.Hull {
	hulls := make([]*hull.Hull, len(clouds))
	task(workers, clouds, func(i int, cloud geom.VertexArray) {
		hulls[i] = hull.New(cloud, cfg)
	})
	return hulls
}
