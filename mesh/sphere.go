package mesh

import (
	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/hull"
	"github.com/go-gl/mathgl/mgl64"
)

// CalculateSphere returns a tight oriented bounding box of the mesh vertices.
//
// The candidate set is reduced to its convex hull when the vertices span a
// volume. Rotations of pitch, yaw and roll from 0 to 80 degrees in 10 degree
// steps are applied on top of basis (identity when nil), and the orientation
// giving the smallest box volume wins.
func (p *Polyhedra) CalculateSphere(verts geom.VertexArray, basis *mgl64.Mat3) geom.OrientedBox {
	orientation := mgl64.Ident3()
	if basis != nil {
		orientation = *basis
	}

	var points []mgl64.Vec3
	seen := make(map[int]struct{})
	p.ForEachEdge(func(id EdgeID) bool {
		v := p.edges[id].Vertex
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			points = append(points, verts.At(v))
		}
		return true
	})
	if len(points) == 0 {
		return geom.OrientedBox{Orientation: orientation}
	}

	if h := hull.New(geom.FromVec3(points), hull.DefaultConfig()); !h.IsEmpty() {
		points = h.Vertices()
	}

	best := geom.FitOrientedBox(points, orientation)
	for pitch := 0.0; pitch < 90; pitch += 10 {
		rx := mgl64.Rotate3DX(mgl64.DegToRad(pitch))
		for yaw := 0.0; yaw < 90; yaw += 10 {
			ry := mgl64.Rotate3DY(mgl64.DegToRad(yaw))
			for roll := 0.0; roll < 90; roll += 10 {
				rz := mgl64.Rotate3DZ(mgl64.DegToRad(roll))
				box := geom.FitOrientedBox(points, orientation.Mul3(rx.Mul3(ry).Mul3(rz)))
				if box.Volume() < best.Volume()*(1-1e-9) {
					best = box
				}
			}
		}
	}
	return best
}
