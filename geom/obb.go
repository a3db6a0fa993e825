package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrientedBox is a box with its own basis. Orientation columns are the box axes
// in world space, Extents are half sizes along those axes.
type OrientedBox struct {
	Center      mgl64.Vec3
	Extents     mgl64.Vec3
	Orientation mgl64.Mat3
}

// Volume returns the full box volume.
func (o OrientedBox) Volume() float64 {
	return 8 * o.Extents[0] * o.Extents[1] * o.Extents[2]
}

// ContainsPoint reports whether p lies inside the box, with tolerance tol on each axis.
func (o OrientedBox) ContainsPoint(p mgl64.Vec3, tol float64) bool {
	local := o.Orientation.Transpose().Mul3x1(p.Sub(o.Center))
	for i := 0; i < 3; i++ {
		if math.Abs(local[i]) > o.Extents[i]+tol {
			return false
		}
	}
	return true
}

// FitOrientedBox returns the box with the given orientation enclosing points.
func FitOrientedBox(points []mgl64.Vec3, orientation mgl64.Mat3) OrientedBox {
	inverse := orientation.Transpose()
	box := EmptyAABB()
	for _, p := range points {
		box = box.Extend(inverse.Mul3x1(p))
	}
	if box.IsEmpty() {
		return OrientedBox{Orientation: orientation}
	}
	return OrientedBox{
		Center:      orientation.Mul3x1(box.Center()),
		Extents:     box.Size().Mul(0.5),
		Orientation: orientation,
	}
}
