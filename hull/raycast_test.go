package hull

import (
	"math/rand"
	"testing"

	"github.com/akmonengine/hedra/geom"
	"github.com/go-gl/mathgl/mgl64"
)

func TestRayCastCube(t *testing.T) {
	h := New(geom.FromVec3(cubePoints()), DefaultConfig())

	tests := []struct {
		name     string
		p0, p1   mgl64.Vec3
		expected float64
	}{
		{"enters bottom face", mgl64.Vec3{0.5, 0.5, -1}, mgl64.Vec3{0.5, 0.5, 2}, 1.0 / 3},
		{"enters side face", mgl64.Vec3{3, 0.25, 0.75}, mgl64.Vec3{-1, 0.25, 0.75}, 0.5},
		{"starts inside", mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{3, 3, 3}, 0},
		{"stops short", mgl64.Vec3{0.5, 0.5, -2}, mgl64.Vec3{0.5, 0.5, -1}, NoHit},
		{"points away", mgl64.Vec3{0.5, 0.5, -1}, mgl64.Vec3{0.5, 0.5, -2}, NoHit},
		{"passes beside", mgl64.Vec3{2, 2, -1}, mgl64.Vec3{2, 2, 2}, NoHit},
		{"crosses a corner region", mgl64.Vec3{-1, -1, 0.5}, mgl64.Vec3{1, 1, 0.5}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.RayCastBruteForce(tt.p0, tt.p1); !floatEqual(got, tt.expected, 1e-12) {
				t.Errorf("RayCastBruteForce() = %v, want %v", got, tt.expected)
			}
			for start := range h.Faces() {
				guess := start
				if got := h.RayCast(tt.p0, tt.p1, &guess); !floatEqual(got, tt.expected, 1e-12) {
					t.Errorf("RayCast() from face %d = %v, want %v", start, got, tt.expected)
				}
			}
			if got := h.RayCast(tt.p0, tt.p1, nil); !floatEqual(got, tt.expected, 1e-12) {
				t.Errorf("RayCast(nil guess) = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRayCastMatchesBruteForce(t *testing.T) {
	h := New(geom.FromVec3(spherePoints(400, 6)), DefaultConfig())
	rng := rand.New(rand.NewSource(7))
	randomPoint := func(scale float64) mgl64.Vec3 {
		return mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Mul(scale)
	}

	guess := 0
	for i := 0; i < 500; i++ {
		p0 := randomPoint(3)
		p1 := randomPoint(0.5)
		want := h.RayCastBruteForce(p0, p1)
		got := h.RayCast(p0, p1, &guess)
		if !floatEqual(got, want, 1e-6) {
			t.Fatalf("ray %d: RayCast() = %v, RayCastBruteForce() = %v", i, got, want)
		}
		if guess < 0 || guess >= len(h.Faces()) {
			t.Fatalf("ray %d: guess %d out of range", i, guess)
		}
	}
}

func TestRayCastGuessIsHitFace(t *testing.T) {
	h := New(geom.FromVec3(spherePoints(200, 8)), DefaultConfig())
	p0, p1 := mgl64.Vec3{5, 0.1, 0.05}, mgl64.Vec3{0, 0.1, 0.05}

	guess := -1
	param := h.RayCast(p0, p1, &guess)
	if param == NoHit {
		t.Fatal("ray through the middle missed")
	}
	hit := p0.Add(p1.Sub(p0).Mul(param))
	if d := h.Plane(guess).Evaluate(hit); !floatEqual(d, 0, 1e-9) {
		t.Errorf("hit point is %g away from the plane of face %d", d, guess)
	}
}
