package actor

import (
	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/hull"
	"github.com/akmonengine/hedra/soup"
	"github.com/go-gl/mathgl/mgl64"
)

// NoHit is the ray parameter reported by shapes for a missed segment.
const NoHit = 1.2

// ShapeType represents the type of shape
type ShapeType int

const (
	ShapeTypeConvexHull ShapeType = iota
	ShapeTypeStaticMesh
)

// ShapeInterface is the interface that all shapes must implement. Support and
// RayCast work in the shape's local space.
type ShapeInterface interface {
	Type() ShapeType
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform)
	GetAABB() geom.AABB
	Support(direction mgl64.Vec3) mgl64.Vec3
	// RayCast returns the parameter in [0, 1] where the segment p0-p1 first
	// touches the shape, or NoHit.
	RayCast(p0, p1 mgl64.Vec3) float64
}

// ConvexHull is a closed convex shape built from a point cloud.
type ConvexHull struct {
	Hull  *hull.Hull
	local geom.AABB
	aabb  geom.AABB
	// guess is the last face hit, the starting face of the next cast.
	guess int
}

// NewConvexHull wraps a non-empty hull.
func NewConvexHull(h *hull.Hull) *ConvexHull {
	return &ConvexHull{Hull: h, local: geom.NewAABB(h.Vertices()...)}
}

func (c *ConvexHull) Type() ShapeType {
	return ShapeTypeConvexHull
}

func (c *ConvexHull) ComputeAABB(transform Transform) {
	c.aabb = c.local.Transform(transform.Rotation, transform.Position)
}

func (c *ConvexHull) GetAABB() geom.AABB {
	return c.aabb
}

func (c *ConvexHull) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return c.Hull.Support(direction)
}

// RayCast is not safe for concurrent use: it remembers the last face hit.
func (c *ConvexHull) RayCast(p0, p1 mgl64.Vec3) float64 {
	t := c.Hull.RayCast(p0, p1, &c.guess)
	if t > 1 {
		return NoHit
	}
	return t
}

// StaticMesh is an arbitrary polygon mesh indexed by a soup. Its support
// mapping is the one of its convex hull.
type StaticMesh struct {
	Soup *soup.Soup
	aabb geom.AABB
}

func NewStaticMesh(s *soup.Soup) *StaticMesh {
	return &StaticMesh{Soup: s}
}

func (m *StaticMesh) Type() ShapeType {
	return ShapeTypeStaticMesh
}

func (m *StaticMesh) ComputeAABB(transform Transform) {
	m.aabb = m.Soup.GetAABB().Transform(transform.Rotation, transform.Position)
}

func (m *StaticMesh) GetAABB() geom.AABB {
	return m.aabb
}

func (m *StaticMesh) Support(direction mgl64.Vec3) mgl64.Vec3 {
	v, _ := m.Soup.ForAllSectorsSupportVertex(direction)
	return v
}

func (m *StaticMesh) RayCast(p0, p1 mgl64.Vec3) float64 {
	_, t, ok := m.Soup.RayCast(p0, p1)
	if !ok {
		return NoHit
	}
	return t
}
