package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any Extend call will overwrite.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// NewAABB returns the smallest box holding all the given points.
func NewAABB(points ...mgl64.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.Extend(p)
	}
	return box
}

// IsEmpty reports whether the box holds no point at all.
func (a AABB) IsEmpty() bool {
	return a.Min[0] > a.Max[0] || a.Min[1] > a.Max[1] || a.Min[2] > a.Max[2]
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Extend grows the box so it holds p.
func (a AABB) Extend(p mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], p[i])
		a.Max[i] = math.Max(a.Max[i], p[i])
	}
	return a
}

// Union returns the smallest box holding both boxes.
func (a AABB) Union(other AABB) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], other.Min[i])
		a.Max[i] = math.Max(a.Max[i], other.Max[i])
	}
	return a
}

// Center returns the middle point of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Size returns the full extent of the box on each axis.
func (a AABB) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// Diagonal returns the length of the box diagonal.
func (a AABB) Diagonal() float64 {
	if a.IsEmpty() {
		return 0
	}
	return a.Size().Len()
}

// Surface returns the box surface area. Used as the fitness measure of tree nodes.
func (a AABB) Surface() float64 {
	s := a.Size()
	return 2 * (s[0]*s[1] + s[1]*s[2] + s[2]*s[0])
}

// SupportCorner returns the box corner furthest along direction.
func (a AABB) SupportCorner(direction mgl64.Vec3) mgl64.Vec3 {
	var corner mgl64.Vec3
	for i := 0; i < 3; i++ {
		if direction[i] < 0 {
			corner[i] = a.Min[i]
		} else {
			corner[i] = a.Max[i]
		}
	}
	return corner
}

// SegmentOverlaps reports whether the segment p0 + t*(p1-p0), t in [0, maxParam],
// touches the box (slab test).
func (a AABB) SegmentOverlaps(p0, p1 mgl64.Vec3, maxParam float64) bool {
	dir := p1.Sub(p0)
	tMin, tMax := 0.0, maxParam

	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if p0[i] < a.Min[i] || p0[i] > a.Max[i] {
				return false
			}
			continue
		}
		inv := 1.0 / dir[i]
		t0 := (a.Min[i] - p0[i]) * inv
		t1 := (a.Max[i] - p0[i]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math.Max(tMin, t0)
		tMax = math.Min(tMax, t1)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Transform returns the world box of a local box moved by rotation then translation.
func (a AABB) Transform(rotation mgl64.Quat, position mgl64.Vec3) AABB {
	if a.IsEmpty() {
		return a
	}
	box := EmptyAABB()
	for i := 0; i < 8; i++ {
		corner := mgl64.Vec3{a.Min[0], a.Min[1], a.Min[2]}
		if i&1 != 0 {
			corner[0] = a.Max[0]
		}
		if i&2 != 0 {
			corner[1] = a.Max[1]
		}
		if i&4 != 0 {
			corner[2] = a.Max[2]
		}
		box = box.Extend(rotation.Rotate(corner).Add(position))
	}
	return box
}
