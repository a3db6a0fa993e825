package main

import (
	"fmt"

	"github.com/akmonengine/hedra"
	"github.com/akmonengine/hedra/actor"
	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/hull"
	"github.com/akmonengine/hedra/soup"
	"github.com/go-gl/mathgl/mgl64"
)

// boxCloud returns the corners of a box of the given half extents
func boxCloud(halfExtents mgl64.Vec3) geom.VertexArray {
	points := make([]mgl64.Vec3, 0, 8)
	for i := 0; i < 8; i++ {
		p := halfExtents.Mul(-1)
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				p[axis] = halfExtents[axis]
			}
		}
		points = append(points, p)
	}
	return geom.FromVec3(points)
}

// SetupScene creates a ground quad at z=0 and a tilted cube above it
func SetupScene() (*hedra.Scene, *actor.Actor, *actor.Actor) {
	scene := hedra.NewScene(2.0, 1024, 2)

	b := soup.NewBuilder(geom.FromVec3([]mgl64.Vec3{
		{-10, -10, 0}, {10, -10, 0}, {10, 10, 0}, {-10, 10, 0},
	}))
	b.AddFace(0, 1, 2, 3)
	ground := actor.NewActor(actor.NewTransform(), actor.NewStaticMesh(soup.Create(b, soup.Config{})), actor.BodyTypeStatic)
	scene.AddActor(ground)

	h := hull.New(boxCloud(mgl64.Vec3{1.5, 1.5, 1.5}), hull.DefaultConfig())
	cube := actor.NewActor(
		actor.NewTransformAt(mgl64.Vec3{-5, 5, 5}, mgl64.QuatRotate(mgl64.DegToRad(30), mgl64.Vec3{1, 0, 0})),
		actor.NewConvexHull(h),
		actor.BodyTypeDynamic,
	)
	scene.AddActor(cube)

	return scene, ground, cube
}

// DropCube lowers the cube into the ground and lifts it back, reporting every
// overlap change
func DropCube() {
	scene, _, cube := SetupScene()

	scene.Events.Subscribe(hedra.OVERLAP_ENTER, func(event hedra.Event) {
		e := event.(hedra.OverlapEnterEvent)
		fmt.Printf("  enter: actors %d and %d\n", e.ActorA.ID, e.ActorB.ID)
	})
	scene.Events.Subscribe(hedra.OVERLAP_EXIT, func(event hedra.Event) {
		e := event.(hedra.OverlapExitEvent)
		fmt.Printf("  exit: actors %d and %d\n", e.ActorA.ID, e.ActorB.ID)
	})

	// Lowest point of the cube, where the ray below it hits the ground
	if hit, t, ok := scene.RayCast(cube.Transform.Position, cube.Transform.Position.Sub(mgl64.Vec3{0, 0, 10})); ok {
		fmt.Printf("ground below the cube: actor %d at %.3f\n", hit.ID, 10*t)
	}

	const steps = 12
	const dz = 0.5
	for step := 0; step < steps; step++ {
		transform := cube.Transform
		if step < steps/2 {
			transform.Position = transform.Position.Sub(mgl64.Vec3{0, 0, dz})
		} else {
			transform.Position = transform.Position.Add(mgl64.Vec3{0, 0, dz})
		}
		scene.MoveActor(cube, transform)

		fmt.Printf("step %d: cube at z=%.2f\n", step+1, cube.Transform.Position.Z())
		for _, pair := range scene.FindOverlaps() {
			normal, depth, ok := hedra.Penetration(pair.ActorA, pair.ActorB)
			if ok {
				fmt.Printf("  penetration %.4f along %v\n", depth, normal)
			}
		}
	}

	visited := 0
	scene.QueryBox(geom.NewAABB(mgl64.Vec3{-20, -20, -1}, mgl64.Vec3{20, 20, 20}), func(a *actor.Actor) bool {
		visited++
		return true
	})
	fmt.Printf("actors in the query box: %d\n", visited)
}

func main() {
	DropCube()
}
