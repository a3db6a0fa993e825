package hull

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// orientErrBound bounds the rounding error of the floating point orient3d
// determinant relative to its permanent (Shewchuk, "Adaptive Precision
// Floating-Point Arithmetic and Fast Robust Geometric Predicates").
var orientErrBound = func() float64 {
	epsilon := math.Ldexp(1, -53)
	return (7 + 56*epsilon) * epsilon
}()

// orient3d returns the sign of det[a-d, b-d, c-d]: negative when d lies on the
// side of the plane abc that (b-a)×(c-a) points to, positive on the other side,
// zero when the four points are coplanar.
//
// The determinant is evaluated in floating point first. When its magnitude does
// not clear the error bound, it is evaluated again exactly; exact reports which
// path produced the answer.
func orient3d(a, b, c, d mgl64.Vec3) (sign int, exact bool) {
	adx, ady, adz := a[0]-d[0], a[1]-d[1], a[2]-d[2]
	bdx, bdy, bdz := b[0]-d[0], b[1]-d[1], b[2]-d[2]
	cdx, cdy, cdz := c[0]-d[0], c[1]-d[1], c[2]-d[2]

	bdxcdy, cdxbdy := bdx*cdy, cdx*bdy
	cdxady, adxcdy := cdx*ady, adx*cdy
	adxbdy, bdxady := adx*bdy, bdx*ady

	det := adz*(bdxcdy-cdxbdy) + bdz*(cdxady-adxcdy) + cdz*(adxbdy-bdxady)
	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*math.Abs(adz) +
		(math.Abs(cdxady)+math.Abs(adxcdy))*math.Abs(bdz) +
		(math.Abs(adxbdy)+math.Abs(bdxady))*math.Abs(cdz)

	bound := orientErrBound * permanent
	if det > bound {
		return 1, false
	}
	if -det > bound {
		return -1, false
	}
	return orient3dExact(a, b, c, d), true
}

// orient3dExact evaluates the orientation determinant with arbitrary precision.
func orient3dExact(a, b, c, d mgl64.Vec3) int {
	pd := precise(d)
	ad := precise(a).Sub(pd)
	bd := precise(b).Sub(pd)
	cd := precise(c).Sub(pd)
	return ad.Dot(bd.Cross(cd)).Sign()
}

func precise(v mgl64.Vec3) r3.PreciseVector {
	return r3.PreciseVectorFromVector(r3.Vector{X: v[0], Y: v[1], Z: v[2]})
}

// inFront reports whether p lies strictly on the outer side of the triangle abc,
// whose outward normal is (b-a)×(c-a).
func inFront(a, b, c, p mgl64.Vec3) bool {
	sign, _ := orient3d(a, b, c, p)
	return sign < 0
}

// TetrahedrumVolume returns the signed volume of the tetrahedron p0 p1 p2 p3:
// positive when p3 lies on the side (p1-p0)×(p2-p0) points to.
func TetrahedrumVolume(p0, p1, p2, p3 mgl64.Vec3) float64 {
	return p1.Sub(p0).Dot(p2.Sub(p0).Cross(p3.Sub(p0))) / 6
}
