// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA is run after GJK reports an overlap, to find the minimum translation
// vector: the shortest move of the second shape that separates the two.
//
// The algorithm expands a polytope (starting from GJK's final simplex) toward
// the boundary of the Minkowski difference A - B. The face of that boundary
// closest to the origin gives the direction and length of the translation.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"math"

	"github.com/akmonengine/hedra/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const (
	// MaxIterations limits polytope expansion.
	MaxIterations = 32

	// ConvergenceTolerance is the smallest distance gain of a new support
	// point that keeps the expansion going.
	ConvergenceTolerance = 0.001

	// MinFaceDistance is the distance below which a face is considered to
	// hold the origin and is skipped.
	MinFaceDistance = 0.0001

	// NormalSnapThreshold clamps nearly-zero normal components to exactly zero.
	NormalSnapThreshold = 1e-8

	// DegeneratePenetrationEstimate is the depth reported when GJK ended on a
	// single point.
	DegeneratePenetrationEstimate = 0.01
)

// Penetration returns the unit normal pointing from a toward b and the depth
// b must move along it to stop overlapping a. simplex is the final simplex of
// a GJK call that reported an overlap.
func Penetration(a, b gjk.Convex, simplex *gjk.Simplex) (normal mgl64.Vec3, depth float64, err error) {
	if simplex.Count < 4 {
		normal, depth = degenerate(a, b, simplex)
		return normal, depth, nil
	}

	builder := polytopePool.Get().(*polytope)
	defer polytopePool.Put(builder)
	builder.reset()

	builder.buildInitialFaces(simplex)

	for i := 0; i < MaxIterations; i++ {
		if len(builder.faces) == 0 {
			break
		}

		closestIndex := builder.closestFaceIndex()
		closest := builder.faces[closestIndex]

		if closest.distance < MinFaceDistance {
			builder.removeFace(closestIndex)
			continue
		}

		support := gjk.MinkowskiSupport(a, b, closest.normal)
		if support.Dot(closest.normal)-closest.distance < ConvergenceTolerance {
			return closest.normal, closest.distance, nil
		}

		builder.addPoint(support, closestIndex)
	}

	return normal, 0, errors.Errorf("epa: no convergence after %d iterations", MaxIterations)
}

// degenerate estimates the translation when GJK could not build a full
// tetrahedron: from the simplex point closest to the origin, or from the
// shape centers for a single point.
func degenerate(a, b gjk.Convex, simplex *gjk.Simplex) (mgl64.Vec3, float64) {
	if simplex.Count >= 2 {
		p := simplex.Points[0]
		if q := simplex.Points[1]; q.Len() < p.Len() {
			p = q
		}
		if length := p.Len(); length > NormalSnapThreshold {
			return snapNormalToAxis(p.Mul(1 / length)), length
		}
	}

	normal := b.Center().Sub(a.Center())
	if length := normal.Len(); length < NormalSnapThreshold {
		normal = mgl64.Vec3{0, 1, 0}
	} else {
		normal = normal.Mul(1 / length)
	}
	return normal, DegeneratePenetrationEstimate
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly
// zero, then renormalizes it.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		if math.Abs(normal[i]) < NormalSnapThreshold {
			normal[i] = 0
		}
	}

	length := normal.Len()
	if length <= 1e-8 {
		return mgl64.Vec3{0, 1, 0}
	}
	return normal.Mul(1 / length)
}
