package soup

import (
	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/mesh"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// MaxFaceVertices is the largest polygon a soup leaf can hold: a face record
// takes 2n+2 index slots and a leaf counts at most 63 of them.
const MaxFaceVertices = (maxLeafCount - 2) / 2

// Builder collects the vertices and polygons of a soup before Create.
type Builder struct {
	vertices []mgl64.Vec3
	faces    [][]int
}

// NewBuilder returns a builder over a copy of verts.
func NewBuilder(verts geom.VertexArray) *Builder {
	return &Builder{vertices: verts.Points()}
}

// NewBuilderFromPolyhedra exports every real face of a finalized mesh. Faces
// over MaxFaceVertices vertices are split into a fan of smaller polygons.
func NewBuilderFromPolyhedra(p *mesh.Polyhedra, verts geom.VertexArray) *Builder {
	b := NewBuilder(verts)
	for _, ring := range p.Faces() {
		for len(ring) > MaxFaceVertices {
			b.AddFace(ring[:MaxFaceVertices]...)
			rest := make([]int, 0, len(ring)-MaxFaceVertices+2)
			rest = append(rest, ring[0])
			rest = append(rest, ring[MaxFaceVertices-1:]...)
			ring = rest
		}
		b.AddFace(ring...)
	}
	return b
}

// AddVertex appends a vertex and returns its index.
func (b *Builder) AddVertex(v mgl64.Vec3) int {
	b.vertices = append(b.vertices, v)
	return len(b.vertices) - 1
}

// AddFace appends a polygon given by vertex indices. It panics when the
// polygon has fewer than 3 or more than MaxFaceVertices vertices.
func (b *Builder) AddFace(indices ...int) {
	if len(indices) < 3 || len(indices) > MaxFaceVertices {
		panic(errors.Errorf("soup: face with %d vertices, want 3 to %d", len(indices), MaxFaceVertices))
	}
	b.faces = append(b.faces, append([]int(nil), indices...))
}

// FaceCount returns the number of polygons added so far.
func (b *Builder) FaceCount() int {
	return len(b.faces)
}
