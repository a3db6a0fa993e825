package soup

import (
	"math"

	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/pqueue"
	"github.com/go-gl/mathgl/mgl64"
)

// Status tells a traversal whether to go on.
type Status int

const (
	Continue Status = iota
	Stop
)

func (s *Soup) rootChildren() []TreeNode {
	root := s.nodes[0]
	stack := make([]TreeNode, 0, 64)
	for _, child := range []TreeNode{root.Front, root.Back} {
		if !child.IsEmpty() {
			stack = append(stack, child)
		}
	}
	return stack
}

// ForAllSectors calls visit with every face whose box overlaps box, until visit
// returns Stop.
func (s *Soup) ForAllSectors(box geom.AABB, visit func(Face) Status) {
	if s.IsEmpty() || !s.GetAABB().Overlaps(box) {
		return
	}

	stack := s.rootChildren()
	for len(stack) > 0 {
		child := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if child.IsLeaf() {
			face := s.face(child)
			if face.Bounds().Overlaps(box) && visit(face) == Stop {
				return
			}
			continue
		}

		node := s.nodes[child.Index()]
		if !s.nodeBox(node).Overlaps(box) {
			continue
		}
		stack = append(stack, node.Front, node.Back)
	}
}

// ForAllSectorsRayHit casts the segment p0-p1. hit is called for every face
// whose box the remaining segment crosses, with the best parameter found so
// far; it returns the face's hit parameter or NoHit. Every improvement shrinks
// the segment for the rest of the traversal. The smallest parameter is
// returned, or NoHit.
func (s *Soup) ForAllSectorsRayHit(p0, p1 mgl64.Vec3, hit func(face Face, maxParam float64) float64) float64 {
	if s.IsEmpty() {
		return NoHit
	}

	maxParam := 1.0
	found := false
	if !s.GetAABB().SegmentOverlaps(p0, p1, maxParam) {
		return NoHit
	}

	stack := s.rootChildren()
	for len(stack) > 0 {
		child := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if child.IsLeaf() {
			face := s.face(child)
			if !face.Bounds().SegmentOverlaps(p0, p1, maxParam) {
				continue
			}
			if t := hit(face, maxParam); t <= maxParam {
				maxParam = t
				found = true
			}
			continue
		}

		node := s.nodes[child.Index()]
		if s.nodeBox(node).SegmentOverlaps(p0, p1, maxParam) {
			stack = append(stack, node.Front, node.Back)
		}
	}

	if !found {
		return NoHit
	}
	return maxParam
}

// RayCast returns the first face crossed by the segment p0-p1 and its hit
// parameter. ok is false when nothing is hit.
func (s *Soup) RayCast(p0, p1 mgl64.Vec3) (face Face, t float64, ok bool) {
	t = s.ForAllSectorsRayHit(p0, p1, func(f Face, maxParam float64) float64 {
		hit := f.RayHit(p0, p1, maxParam)
		if hit <= maxParam {
			face = f
		}
		return hit
	})
	return face, t, t <= 1
}

// ForAllSectorsSupportVertex returns the vertex furthest along dir. Subtrees are
// visited by decreasing box bound and skipped once their bound cannot beat the
// best vertex found. ok is false on an empty soup.
func (s *Soup) ForAllSectorsSupportVertex(dir mgl64.Vec3) (vertex mgl64.Vec3, ok bool) {
	if s.IsEmpty() {
		return vertex, false
	}

	best := math.Inf(-1)
	open := pqueue.NewMax[TreeNode](64)
	for _, child := range s.rootChildren() {
		open.Push(child, s.bound(child, dir))
	}
	for open.Len() > 0 {
		child, bound, _ := open.Pop()
		if ok && bound <= best {
			break
		}

		if child.IsLeaf() {
			face := s.face(child)
			for i, n := 0, face.VertexCount(); i < n; i++ {
				v := face.Vertex(i)
				if d := dir.Dot(v); d > best {
					vertex, best, ok = v, d, true
				}
			}
			continue
		}

		node := s.nodes[child.Index()]
		for _, c := range []TreeNode{node.Back, node.Front} {
			if b := s.bound(c, dir); !ok || b > best {
				open.Push(c, b)
			}
		}
	}
	return vertex, ok
}

// bound is the largest projection on dir of the box of a child slot.
func (s *Soup) bound(child TreeNode, dir mgl64.Vec3) float64 {
	var box geom.AABB
	if child.IsLeaf() {
		box = s.face(child).Bounds()
	} else {
		box = s.nodeBox(s.nodes[child.Index()])
	}
	return dir.Dot(box.SupportCorner(dir))
}
