// Package actor holds the objects placed in a scene: a shape and a transform.
package actor

import "github.com/go-gl/mathgl/mgl64"

// BodyType represents the type of actor
type BodyType int

const (
	// BodyTypeDynamic actors may move between updates
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic actors never move. Two static actors are never paired.
	BodyTypeStatic
)

// Actor is a shape placed in the world.
type Actor struct {
	// ID is assigned by the scene and orders pairs deterministically.
	ID        int
	Transform Transform
	BodyType  BodyType
	Shape     ShapeInterface
}

// NewActor creates an actor and computes its world box.
func NewActor(transform Transform, shape ShapeInterface, bodyType BodyType) *Actor {
	a := &Actor{
		Transform: transform,
		Shape:     shape,
		BodyType:  bodyType,
	}
	a.Shape.ComputeAABB(a.Transform)
	return a
}

// SetTransform moves the actor and refreshes its world box.
func (a *Actor) SetTransform(transform Transform) {
	a.Transform = transform
	a.Shape.ComputeAABB(a.Transform)
}

// Center returns the world position of the actor origin.
func (a *Actor) Center() mgl64.Vec3 {
	return a.Transform.Position
}

// SupportWorld returns the world point of the shape furthest along direction.
func (a *Actor) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	localDirection := a.Transform.InverseRotation.Rotate(direction)
	return a.Transform.ToWorld(a.Shape.Support(localDirection))
}

// RayCast casts the world segment p0-p1 against the shape. Rigid transforms
// keep the segment parameter, so the local answer is returned as is.
func (a *Actor) RayCast(p0, p1 mgl64.Vec3) float64 {
	if !a.Shape.GetAABB().SegmentOverlaps(p0, p1, 1) {
		return NoHit
	}
	return a.Shape.RayCast(a.Transform.ToLocal(p0), a.Transform.ToLocal(p1))
}
