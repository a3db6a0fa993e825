package hull

import (
	"math"

	"github.com/akmonengine/hedra/geom"
	"github.com/go-gl/mathgl/mgl64"
)

const clumpSize = 8

type pointNode struct {
	box    geom.AABB
	parent int32
	left   int32
	right  int32
	// clump holds the candidate points of a leaf.
	clump []int32
}

func (n *pointNode) isLeaf() bool {
	return n.left < 0
}

// pointTree answers extreme point queries over the candidate points. Consumed
// points are dropped from their clump on the next visit, and an emptied leaf is
// spliced out of the tree.
type pointTree struct {
	points []mgl64.Vec3
	used   []bool
	nodes  []pointNode
	root   int32
}

func newPointTree(points []mgl64.Vec3) *pointTree {
	t := &pointTree{
		points: points,
		used:   make([]bool, len(points)),
		nodes:  make([]pointNode, 0, 2*len(points)/clumpSize+1),
		root:   -1,
	}
	if len(points) == 0 {
		return t
	}
	indices := make([]int32, len(points))
	for i := range indices {
		indices[i] = int32(i)
	}
	t.root = t.build(indices, -1)
	return t
}

func (t *pointTree) build(indices []int32, parent int32) int32 {
	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, pointNode{parent: parent, left: -1, right: -1})

	box := geom.EmptyAABB()
	var mean, variance mgl64.Vec3
	for _, i := range indices {
		p := t.points[i]
		box = box.Extend(p)
		mean = mean.Add(p)
		variance = variance.Add(mgl64.Vec3{p[0] * p[0], p[1] * p[1], p[2] * p[2]})
	}
	t.nodes[id].box = box

	if len(indices) <= clumpSize {
		t.nodes[id].clump = indices
		return id
	}

	n := float64(len(indices))
	mean = mean.Mul(1 / n)
	variance = variance.Mul(1 / n).Sub(mgl64.Vec3{mean[0] * mean[0], mean[1] * mean[1], mean[2] * mean[2]})
	axis := 0
	for i := 1; i < 3; i++ {
		if variance[i] > variance[axis] {
			axis = i
		}
	}

	split := partition(indices, t.points, axis, mean[axis])
	if split == 0 || split == len(indices) {
		split = len(indices) / 2
	}

	left := t.build(indices[:split], id)
	right := t.build(indices[split:], id)
	t.nodes[id].left = left
	t.nodes[id].right = right
	return id
}

// partition reorders indices so points below value on axis come first and
// returns the count of those.
func partition(indices []int32, points []mgl64.Vec3, axis int, value float64) int {
	i, j := 0, len(indices)-1
	for i <= j {
		if points[indices[i]][axis] < value {
			i++
			continue
		}
		if points[indices[j]][axis] >= value {
			j--
			continue
		}
		indices[i], indices[j] = indices[j], indices[i]
		i++
		j--
	}
	return i
}

// remove retires point i from future queries.
func (t *pointTree) remove(i int) {
	t.used[i] = true
}

// support returns the unused point furthest along dir. ok is false once every
// point has been consumed.
func (t *pointTree) support(dir mgl64.Vec3) (index int, ok bool) {
	if t.root < 0 {
		return -1, false
	}

	best := -1
	bestDot := math.Inf(-1)
	stack := []int32{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &t.nodes[id]
		if best >= 0 && dir.Dot(node.box.SupportCorner(dir)) <= bestDot {
			continue
		}

		if node.isLeaf() {
			clump := node.clump[:0]
			for _, i := range node.clump {
				if t.used[i] {
					continue
				}
				clump = append(clump, i)
				if d := dir.Dot(t.points[i]); d > bestDot {
					best, bestDot = int(i), d
				}
			}
			node.clump = clump
			if len(clump) == 0 {
				t.detach(id)
			}
			continue
		}

		left, right := node.left, node.right
		dl := dir.Dot(t.nodes[left].box.SupportCorner(dir))
		dr := dir.Dot(t.nodes[right].box.SupportCorner(dir))
		if dl > dr {
			stack = append(stack, right, left)
		} else {
			stack = append(stack, left, right)
		}
	}
	return best, best >= 0
}

// detach splices an empty leaf out of the tree: its sibling takes the place of
// their parent.
func (t *pointTree) detach(leaf int32) {
	parent := t.nodes[leaf].parent
	if parent < 0 {
		t.root = -1
		return
	}

	sibling := t.nodes[parent].left
	if sibling == leaf {
		sibling = t.nodes[parent].right
	}
	grand := t.nodes[parent].parent
	t.nodes[sibling].parent = grand

	switch {
	case grand < 0:
		t.root = sibling
	case t.nodes[grand].left == parent:
		t.nodes[grand].left = sibling
	default:
		t.nodes[grand].right = sibling
	}

	t.nodes[parent].left, t.nodes[parent].right = -1, -1
	t.nodes[leaf].parent = -1
}
