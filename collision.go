package hedra

import (
	"sync"

	"github.com/akmonengine/hedra/actor"
	"github.com/akmonengine/hedra/epa"
	"github.com/akmonengine/hedra/gjk"
	"github.com/akmonengine/hedra/soup"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"
)

// BroadPhase rebuilds the grid from the actor boxes and streams the pairs of
// overlapping boxes.
func BroadPhase(spatialGrid *SpatialGrid, actors []*actor.Actor, workersCount int) <-chan Pair {
	spatialGrid.Clear()
	for i, a := range actors {
		spatialGrid.Insert(i, a.Shape.GetAABB())
	}
	spatialGrid.SortCells()

	return spatialGrid.FindPairsParallel(actors, workersCount)
}

// NarrowPhase keeps the pairs whose shapes really overlap. Pairs are tested by
// workersCount goroutines; the result order is not deterministic.
func NarrowPhase(pairs <-chan Pair, workersCount int) []Pair {
	overlapping := make(chan Pair, workersCount)

	go func() {
		var wg sync.WaitGroup
		defer close(overlapping)

		for range max(1, workersCount) {
			wg.Add(1)
			go func() {
				defer wg.Done()

				simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
				defer gjk.SimplexPool.Put(simplex)
				for p := range pairs {
					if Overlaps(p.ActorA, p.ActorB, simplex) {
						overlapping <- p
					}
				}
			}()
		}
		wg.Wait()
	}()

	result := make([]Pair, 0)
	for p := range overlapping {
		result = append(result, p)
	}
	return result
}

// Overlaps tests two actors. A static mesh paired with any other shape is
// tested face by face against the faces under the other actor's box; two
// meshes, or two hulls, are compared through their convex support mappings.
func Overlaps(a, b *actor.Actor, simplex *gjk.Simplex) bool {
	meshA, aIsMesh := a.Shape.(*actor.StaticMesh)
	meshB, bIsMesh := b.Shape.(*actor.StaticMesh)

	switch {
	case aIsMesh && !bIsMesh:
		return meshOverlaps(a, meshA, b, simplex)
	case bIsMesh && !aIsMesh:
		return meshOverlaps(b, meshB, a, simplex)
	}
	simplex.Reset()
	return gjk.GJK(a, b, simplex)
}

func meshOverlaps(meshActor *actor.Actor, mesh *actor.StaticMesh, other *actor.Actor, simplex *gjk.Simplex) bool {
	hit := false
	forFacesUnder(meshActor, mesh, other, func(face worldFace) soup.Status {
		simplex.Reset()
		if gjk.GJK(face, other, simplex) {
			hit = true
			return soup.Stop
		}
		return soup.Continue
	})
	return hit
}

// forFacesUnder visits the mesh faces whose box overlaps the box of other.
func forFacesUnder(meshActor *actor.Actor, mesh *actor.StaticMesh, other *actor.Actor, visit func(worldFace) soup.Status) {
	transform := meshActor.Transform
	localBox := other.Shape.GetAABB().Transform(transform.InverseRotation, transform.ToLocal(mgl64.Vec3{}))

	mesh.Soup.ForAllSectors(localBox, func(f soup.Face) soup.Status {
		return visit(worldFace{face: f, transform: transform})
	})
}

// Penetration returns the unit normal pointing from a toward b and the depth b
// must move along it to stop overlapping a. Against a static mesh, the deepest
// overlapping face wins. ok is false when the actors do not overlap.
func Penetration(a, b *actor.Actor) (normal mgl64.Vec3, depth float64, ok bool) {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)

	meshA, aIsMesh := a.Shape.(*actor.StaticMesh)
	meshB, bIsMesh := b.Shape.(*actor.StaticMesh)

	switch {
	case aIsMesh && !bIsMesh:
		forFacesUnder(a, meshA, b, func(face worldFace) soup.Status {
			if n, d, hit := penetration(face, b, simplex); hit && (!ok || d > depth) {
				normal, depth, ok = n, d, true
			}
			return soup.Continue
		})
		return normal, depth, ok
	case bIsMesh && !aIsMesh:
		forFacesUnder(b, meshB, a, func(face worldFace) soup.Status {
			if n, d, hit := penetration(a, face, simplex); hit && (!ok || d > depth) {
				normal, depth, ok = n, d, true
			}
			return soup.Continue
		})
		return normal, depth, ok
	}
	return penetration(a, b, simplex)
}

func penetration(a, b gjk.Convex, simplex *gjk.Simplex) (mgl64.Vec3, float64, bool) {
	simplex.Reset()
	if !gjk.GJK(a, b, simplex) {
		return mgl64.Vec3{}, 0, false
	}
	normal, depth, err := epa.Penetration(a, b, simplex)
	if err != nil {
		glog.V(2).Infof("scene: %v", err)
		return mgl64.Vec3{}, 0, false
	}
	return normal, depth, true
}

// worldFace is a soup face placed by its mesh actor transform.
type worldFace struct {
	face      soup.Face
	transform actor.Transform
}

func (w worldFace) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	local := w.transform.InverseRotation.Rotate(direction)
	best := w.face.Vertex(0)
	bestDot := best.Dot(local)
	for i, n := 1, w.face.VertexCount(); i < n; i++ {
		if v := w.face.Vertex(i); v.Dot(local) > bestDot {
			best, bestDot = v, v.Dot(local)
		}
	}
	return w.transform.ToWorld(best)
}

func (w worldFace) Center() mgl64.Vec3 {
	var c mgl64.Vec3
	n := w.face.VertexCount()
	for i := 0; i < n; i++ {
		c = c.Add(w.face.Vertex(i))
	}
	return w.transform.ToWorld(c.Mul(1 / float64(n)))
}
