package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is defined by the equation Normal·p + D = 0.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// NewPlane builds a plane through point with the given normal. The normal is kept as is.
func NewPlane(normal, point mgl64.Vec3) Plane {
	return Plane{Normal: normal, D: -normal.Dot(point)}
}

// Evaluate returns the signed, normal-scaled distance of p to the plane.
func (p Plane) Evaluate(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Normalized returns the plane scaled to a unit normal. A degenerate plane is returned unchanged.
func (p Plane) Normalized() Plane {
	l := p.Normal.Len()
	if l < 1e-30 {
		return p
	}
	inv := 1.0 / l
	return Plane{Normal: p.Normal.Mul(inv), D: p.D * inv}
}

// Vec4 returns the plane as homogeneous coefficients (a, b, c, d).
func (p Plane) Vec4() mgl64.Vec4 {
	return mgl64.Vec4{p.Normal[0], p.Normal[1], p.Normal[2], p.D}
}

// TriangleNormal returns the unnormalized normal (b-a)×(c-a), twice the triangle area in length.
func TriangleNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// AspectRatio returns a quality measure of a triangle in [0, 1]:
// 1 for an equilateral triangle, 0 for a degenerate one.
func AspectRatio(a, b, c mgl64.Vec3) float64 {
	area2 := TriangleNormal(a, b, c).Len()
	sum := b.Sub(a).LenSqr() + c.Sub(b).LenSqr() + a.Sub(c).LenSqr()
	if sum < 1e-30 {
		return 0
	}
	// 2*sqrt(3)*area2 == 4*sqrt(3)*area
	return 2 * math.Sqrt(3) * area2 / sum
}
