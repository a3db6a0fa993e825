// Package gjk tests two convex shapes for overlap with the Gilbert-Johnson-Keerthi
// algorithm.
//
// The shapes overlap when their Minkowski difference A - B holds the origin. The
// search grows a simplex of support points of that difference towards the
// origin, keeping only the feature closest to it after each step, until the
// simplex encloses the origin or a support point proves the origin is out of
// reach.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Convex is a world space support mapping.
type Convex interface {
	// SupportWorld returns the point of the shape furthest along direction.
	SupportWorld(direction mgl64.Vec3) mgl64.Vec3
	// Center returns any point inside the shape; it seeds the search direction.
	Center() mgl64.Vec3
}

// Simplex holds 1 to 4 points of the Minkowski difference, the most recent last.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) set(points ...mgl64.Vec3) {
	s.Count = copy(s.Points[:], points)
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

const (
	maxIterations = 32
	degenerate    = 1e-10
)

// MinkowskiSupport returns the support point of A - B along direction.
func MinkowskiSupport(a, b Convex, direction mgl64.Vec3) mgl64.Vec3 {
	return a.SupportWorld(direction).Sub(b.SupportWorld(direction.Mul(-1)))
}

// GJK reports whether a and b overlap. simplex is scratch space; on overlap it
// usually ends as a tetrahedron around the origin.
func GJK(a, b Convex, simplex *Simplex) bool {
	direction := b.Center().Sub(a.Center())
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.set(MinkowskiSupport(a, b, direction))
	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < 1e-16 {
		return true
	}

	for i := 0; i < maxIterations; i++ {
		p := MinkowskiSupport(a, b, direction)
		if p.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = p
		simplex.Count++
		if containsOrigin(simplex, &direction) {
			return true
		}
		if direction.LenSqr() < 1e-16 {
			return true
		}
	}
	return false
}

// containsOrigin reduces the simplex to its feature closest to the origin and
// points direction from that feature to the origin. Only a tetrahedron can
// contain the origin.
func containsOrigin(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

// line handles the segment [b, a], a being the newest point.
func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b := simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < degenerate {
		simplex.set(a)
		*direction = ao
		return ao.LenSqr() < degenerate
	}
	if ab.Dot(ao) <= 0 {
		simplex.set(a)
		*direction = ao
		return false
	}

	perp := ab.Cross(ao).Cross(ab)
	if perp.LenSqr() < degenerate {
		// origin on the segment
		return true
	}
	*direction = perp
	return false
}

// triangle handles [c, b, a], a being the newest point.
func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c := simplex.Points[2], simplex.Points[1], simplex.Points[0]
	ab, ac := b.Sub(a), c.Sub(a)
	ao := a.Mul(-1)
	abc := ab.Cross(ac)

	if abc.LenSqr() < degenerate {
		simplex.set(b, a)
		return line(simplex, direction)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		simplex.set(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}
	if abc.Cross(ac).Dot(ao) > 0 {
		simplex.set(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		// keep the winding so abc faces the origin
		simplex.set(b, c, a)
		*direction = abc.Mul(-1)
	}
	return false
}

// tetrahedron handles [d, c, b, a], a being the newest point. Each face normal
// is flipped away from the opposite vertex before testing the origin.
func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c, d := simplex.Points[3], simplex.Points[2], simplex.Points[1], simplex.Points[0]
	ab, ac, ad := b.Sub(a), c.Sub(a), d.Sub(a)
	ao := a.Mul(-1)

	outward := func(n, opposite mgl64.Vec3) mgl64.Vec3 {
		if n.Dot(opposite) > 0 {
			return n.Mul(-1)
		}
		return n
	}
	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	if abc.LenSqr() < degenerate || acd.LenSqr() < degenerate || adb.LenSqr() < degenerate {
		simplex.set(c, b, a)
		return triangle(simplex, direction)
	}

	switch {
	case abc.Dot(ao) > 0:
		simplex.set(c, b, a)
	case acd.Dot(ao) > 0:
		simplex.set(d, c, a)
	case adb.Dot(ao) > 0:
		simplex.set(b, d, a)
	default:
		return true
	}
	return triangle(simplex, direction)
}
