package actor

import (
	"math"
	"testing"

	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/hull"
	"github.com/akmonengine/hedra/soup"
	"github.com/go-gl/mathgl/mgl64"
)

// Test helpers

func boxHull(halfExtents mgl64.Vec3) *hull.Hull {
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
	return hull.New(geom.FromVec3(points), hull.DefaultConfig())
}

// quadSoup is a 2x2 square in the z=0 plane.
func quadSoup() *soup.Soup {
	b := soup.NewBuilder(geom.FromVec3([]mgl64.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}))
	b.AddFace(0, 1, 2, 3)
	return soup.Create(b, soup.Config{})
}

func vec3Equal(a, b mgl64.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-9)
}

func TestTransform(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		transform := NewTransform()
		p := mgl64.Vec3{1, 2, 3}
		if !vec3Equal(transform.ToWorld(p), p) || !vec3Equal(transform.ToLocal(p), p) {
			t.Errorf("identity transform moved %v", p)
		}
	})

	tests := []struct {
		name      string
		transform Transform
		local     mgl64.Vec3
		world     mgl64.Vec3
	}{
		{"translation", NewTransformAt(mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent()), mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 2, 3}},
		{"rotation", NewTransformAt(mgl64.Vec3{}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})), mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}},
		{"rotation then translation", NewTransformAt(mgl64.Vec3{0, 0, 5}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})), mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 6}},
		{"unnormalized rotation", NewTransformAt(mgl64.Vec3{}, mgl64.Quat{W: 2}), mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if world := tt.transform.ToWorld(tt.local); !vec3Equal(world, tt.world) {
				t.Errorf("ToWorld(%v) = %v, want %v", tt.local, world, tt.world)
			}
			if local := tt.transform.ToLocal(tt.world); !vec3Equal(local, tt.local) {
				t.Errorf("ToLocal(%v) = %v, want %v", tt.world, local, tt.local)
			}
		})
	}
}

func TestConvexHullShape(t *testing.T) {
	shape := NewConvexHull(boxHull(mgl64.Vec3{1, 0.5, 0.25}))
	if shape.Type() != ShapeTypeConvexHull {
		t.Errorf("Type() = %v, want ShapeTypeConvexHull", shape.Type())
	}

	shape.ComputeAABB(NewTransformAt(mgl64.Vec3{10, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})))
	box := shape.GetAABB()
	if !vec3Equal(box.Min, mgl64.Vec3{9.5, -1, -0.25}) || !vec3Equal(box.Max, mgl64.Vec3{10.5, 1, 0.25}) {
		t.Errorf("AABB = %v", box)
	}

	if support := shape.Support(mgl64.Vec3{1, 1, 1}); support != (mgl64.Vec3{1, 0.5, 0.25}) {
		t.Errorf("Support = %v, want (1, 0.5, 0.25)", support)
	}

	tests := []struct {
		name     string
		p0, p1   mgl64.Vec3
		expected float64
	}{
		{"through", mgl64.Vec3{-3, 0, 0}, mgl64.Vec3{3, 0.1, 0.1}, 1.0 / 3},
		{"from inside", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{3, 0, 0}, 0},
		{"stops short", mgl64.Vec3{-3, 0, 0}, mgl64.Vec3{-2, 0, 0}, NoHit},
		{"misses", mgl64.Vec3{-3, 2, 0}, mgl64.Vec3{3, 2, 0}, NoHit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := shape.RayCast(tt.p0, tt.p1); math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("RayCast = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestStaticMeshShape(t *testing.T) {
	shape := NewStaticMesh(quadSoup())
	if shape.Type() != ShapeTypeStaticMesh {
		t.Errorf("Type() = %v, want ShapeTypeStaticMesh", shape.Type())
	}

	shape.ComputeAABB(NewTransformAt(mgl64.Vec3{0, 0, 2}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})))
	box := shape.GetAABB()
	if !vec3Equal(box.Min, mgl64.Vec3{-1, 0, 1}) || !vec3Equal(box.Max, mgl64.Vec3{1, 0, 3}) {
		t.Errorf("AABB = %v", box)
	}

	if support := shape.Support(mgl64.Vec3{1, 2, 0}); support != (mgl64.Vec3{1, 1, 0}) {
		t.Errorf("Support = %v, want (1, 1, 0)", support)
	}

	if result := shape.RayCast(mgl64.Vec3{0.5, 0.5, 1}, mgl64.Vec3{0.5, 0.5, -3}); math.Abs(result-0.25) > 1e-12 {
		t.Errorf("RayCast = %v, want 0.25", result)
	}
	if result := shape.RayCast(mgl64.Vec3{3, 0, 1}, mgl64.Vec3{3, 0, -1}); result != NoHit {
		t.Errorf("RayCast = %v, want NoHit", result)
	}
}

func TestNewActor(t *testing.T) {
	transform := NewTransformAt(mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent())
	a := NewActor(transform, NewConvexHull(boxHull(mgl64.Vec3{1, 1, 1})), BodyTypeStatic)

	if a.BodyType != BodyTypeStatic {
		t.Errorf("BodyType = %v, want BodyTypeStatic", a.BodyType)
	}
	if a.Center() != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("Center() = %v", a.Center())
	}
	if box := a.Shape.GetAABB(); box.Min != (mgl64.Vec3{0, 1, 2}) || box.Max != (mgl64.Vec3{2, 3, 4}) {
		t.Errorf("AABB = %v, want the box moved to the actor", box)
	}

	a.SetTransform(NewTransformAt(mgl64.Vec3{-5, 0, 0}, mgl64.QuatIdent()))
	if box := a.Shape.GetAABB(); box.Min != (mgl64.Vec3{-6, -1, -1}) || box.Max != (mgl64.Vec3{-4, 1, 1}) {
		t.Errorf("AABB = %v after SetTransform", box)
	}
}

func TestActorSupportWorld(t *testing.T) {
	rotation := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	a := NewActor(NewTransformAt(mgl64.Vec3{0, 0, 10}, rotation), NewConvexHull(boxHull(mgl64.Vec3{2, 1, 1})), BodyTypeDynamic)

	// The long local x axis now lies along world y
	tests := []struct {
		direction mgl64.Vec3
		expected  float64
	}{
		{mgl64.Vec3{0, 1, 0}, 2},
		{mgl64.Vec3{1, 0, 0}, 1},
		{mgl64.Vec3{0, 0, 1}, 11},
		{mgl64.Vec3{0, 0, -1}, -9},
	}
	for _, tt := range tests {
		support := a.SupportWorld(tt.direction)
		if d := support.Dot(tt.direction); math.Abs(d-tt.expected) > 1e-9 {
			t.Errorf("SupportWorld(%v) = %v, projection %v, want %v", tt.direction, support, d, tt.expected)
		}
	}
}

func TestActorRayCast(t *testing.T) {
	rotation := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	wall := NewActor(NewTransformAt(mgl64.Vec3{4, 0, 0}, rotation), NewStaticMesh(quadSoup()), BodyTypeStatic)
	cube := NewActor(NewTransformAt(mgl64.Vec3{0, 0, 4}, mgl64.QuatIdent()), NewConvexHull(boxHull(mgl64.Vec3{1, 1, 1})), BodyTypeDynamic)

	tests := []struct {
		name     string
		actor    *Actor
		p0, p1   mgl64.Vec3
		expected float64
	}{
		{"wall hit", wall, mgl64.Vec3{0, 0.5, 0.5}, mgl64.Vec3{8, 0.5, 0.5}, 0.5},
		{"wall missed beside", wall, mgl64.Vec3{0, 3, 0}, mgl64.Vec3{8, 3, 0}, NoHit},
		{"cube hit", cube, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 8}, 3.0 / 8},
		{"cube missed", cube, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{8, 0, 0}, NoHit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.actor.RayCast(tt.p0, tt.p1); math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("RayCast = %v, want %v", result, tt.expected)
			}
		})
	}
}
