// Package geom holds the vector plumbing shared by the mesh, soup and hull packages:
// flat vertex buffers with a stride, bounding boxes, planes and oriented boxes.
package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// VertexArray is a caller-owned flat coordinate buffer. Vertex i starts at
// Data[i*Stride]; only the first three components are read.
type VertexArray struct {
	Data   []float64
	Stride int
}

// NewVertexArray wraps a flat buffer. Stride is counted in float64 elements and must be >= 3.
func NewVertexArray(data []float64, stride int) VertexArray {
	if stride < 3 {
		panic(fmt.Sprintf("geom: vertex stride %d is smaller than 3", stride))
	}
	return VertexArray{Data: data, Stride: stride}
}

// FromVec3 packs a slice of points into a VertexArray with stride 3.
func FromVec3(points []mgl64.Vec3) VertexArray {
	data := make([]float64, 0, len(points)*3)
	for _, p := range points {
		data = append(data, p[0], p[1], p[2])
	}
	return VertexArray{Data: data, Stride: 3}
}

// Len returns the number of complete vertices in the buffer.
func (v VertexArray) Len() int {
	if v.Stride == 0 || len(v.Data) < 3 {
		return 0
	}
	return (len(v.Data)-3)/v.Stride + 1
}

// At returns vertex i.
func (v VertexArray) At(i int) mgl64.Vec3 {
	base := i * v.Stride
	return mgl64.Vec3{v.Data[base], v.Data[base+1], v.Data[base+2]}
}

// Points copies the buffer out as a slice of vectors.
func (v VertexArray) Points() []mgl64.Vec3 {
	n := v.Len()
	points := make([]mgl64.Vec3, n)
	for i := 0; i < n; i++ {
		points[i] = v.At(i)
	}
	return points
}

// Bounds returns the box holding every vertex of the buffer.
func (v VertexArray) Bounds() AABB {
	box := EmptyAABB()
	for i, n := 0, v.Len(); i < n; i++ {
		box = box.Extend(v.At(i))
	}
	return box
}
