// Package soup implements a static bounding volume tree over polygon faces.
//
// A Soup is built once from a Builder and then queried: box overlap, segment
// casts and extreme vertex lookups. All data lives in three flat arrays: points
// (vertices, then face normals, then node box corners), face records and nodes.
//
// Each leaf of the tree holds exactly one face. A child slot is a TreeNode word:
// either a leaf (offset and length of a face record) or the index of an inner
// node. The root is node 0.
package soup

import (
	"math"

	"github.com/akmonengine/hedra/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	leafFlag     = 1 << 31
	countBits    = 6
	offsetBits   = 31 - countBits
	maxLeafCount = 1<<countBits - 1
	offsetMask   = 1<<offsetBits - 1
)

// TreeNode is a packed child slot. Zero means no child, since the root can never
// be a child.
type TreeNode uint32

// LeafNode packs a face record of count index entries starting at offset.
func LeafNode(offset, count int) TreeNode {
	if count <= 0 || count > maxLeafCount || offset < 0 || offset > offsetMask {
		panic(errors.Errorf("soup: leaf record %d+%d does not fit the node encoding", offset, count))
	}
	return TreeNode(leafFlag | uint32(count)<<offsetBits | uint32(offset))
}

// IsLeaf reports whether the slot points to a face record.
func (n TreeNode) IsLeaf() bool {
	return n&leafFlag != 0
}

// IsEmpty reports whether the slot holds no child.
func (n TreeNode) IsEmpty() bool {
	return n == 0
}

// Count returns the length of a leaf face record.
func (n TreeNode) Count() int {
	return int(n>>offsetBits) & maxLeafCount
}

// Offset returns the start of a leaf face record.
func (n TreeNode) Offset() int {
	return int(n & offsetMask)
}

// Index returns the node index of an inner child.
func (n TreeNode) Index() int {
	return int(n)
}

// Node is one inner node of the tree. MinIndex and MaxIndex address the box
// corners in the point array.
type Node struct {
	MinIndex int32
	MaxIndex int32
	Back     TreeNode
	Front    TreeNode
}

// Config controls tree construction.
type Config struct {
	// Optimize enables the tree rotation pass minimizing total box surface.
	Optimize bool `mapstructure:"optimize"`
}

// Soup is the built face tree.
type Soup struct {
	points  []mgl64.Vec3
	indices []int32
	nodes   []Node
}

type buildNode struct {
	box    geom.AABB
	parent int
	left   int
	right  int
	face   int
}

func (n *buildNode) isLeaf() bool {
	return n.left < 0
}

type treeBuilder struct {
	nodes []buildNode
	boxes []geom.AABB
}

// Create builds the tree over the faces of b. A builder without faces gives an
// empty soup.
func Create(b *Builder, cfg Config) *Soup {
	s := &Soup{}
	if len(b.faces) == 0 {
		return s
	}

	s.points = make([]mgl64.Vec3, 0, len(b.vertices)+len(b.faces)+4*len(b.faces))
	s.points = append(s.points, b.vertices...)

	records := make([]TreeNode, len(b.faces))
	tb := &treeBuilder{boxes: make([]geom.AABB, len(b.faces))}
	for i, ring := range b.faces {
		records[i] = s.addRecord(ring)
		tb.boxes[i] = s.face(records[i]).Bounds()
	}

	faces := make([]int, len(b.faces))
	for i := range faces {
		faces[i] = i
	}
	root := tb.build(faces, -1)
	depth := tb.depth(root)
	if cfg.Optimize {
		tb.improveTotalFitness(root, depth)
	}

	s.nodes = make([]Node, 0, len(b.faces))
	if tb.nodes[root].isLeaf() {
		s.nodes = append(s.nodes, Node{Back: records[tb.nodes[root].face]})
		s.setBox(0, tb.nodes[root].box)
	} else {
		s.flatten(tb, root, records)
	}

	glog.V(1).Infof("soup: %d faces, %d nodes, depth %d", len(b.faces), len(s.nodes), depth)
	return s
}

// addRecord appends the face record of ring: vertex indices, the normal index,
// one edge normal slot per edge and the face size.
func (s *Soup) addRecord(ring []int) TreeNode {
	n := len(ring)
	offset := len(s.indices)

	var normal mgl64.Vec3
	p0 := s.points[ring[0]]
	for i := 1; i+1 < n; i++ {
		normal = normal.Add(geom.TriangleNormal(p0, s.points[ring[i]], s.points[ring[i+1]]))
	}
	if normal.LenSqr() > 1e-30 {
		normal = normal.Normalize()
	}
	normalIndex := int32(len(s.points))
	s.points = append(s.points, normal)

	size := 0.0
	for i := 0; i < n; i++ {
		s.indices = append(s.indices, int32(ring[i]))
		edge := s.points[ring[(i+1)%n]].Sub(s.points[ring[i]])
		size = math.Max(size, edge.Sub(normal.Mul(edge.Dot(normal))).Len())
	}
	s.indices = append(s.indices, normalIndex)
	for i := 0; i < n; i++ {
		s.indices = append(s.indices, normalIndex)
	}
	s.indices = append(s.indices, int32(math.Float32bits(float32(size))))

	return LeafNode(offset, 2*n+2)
}

func (tb *treeBuilder) newNode(parent int) int {
	tb.nodes = append(tb.nodes, buildNode{parent: parent, left: -1, right: -1, face: -1})
	return len(tb.nodes) - 1
}

// build splits faces at the mean of the box centers along the axis of largest
// variance, recursively.
func (tb *treeBuilder) build(faces []int, parent int) int {
	id := tb.newNode(parent)
	if len(faces) == 1 {
		tb.nodes[id].face = faces[0]
		tb.nodes[id].box = tb.boxes[faces[0]]
		return id
	}

	box := geom.EmptyAABB()
	var mean, square mgl64.Vec3
	for _, f := range faces {
		box = box.Union(tb.boxes[f])
		c := tb.boxes[f].Center()
		mean = mean.Add(c)
		square = square.Add(mgl64.Vec3{c[0] * c[0], c[1] * c[1], c[2] * c[2]})
	}
	tb.nodes[id].box = box

	n := float64(len(faces))
	mean = mean.Mul(1 / n)
	axis := 0
	best := math.Inf(-1)
	for i := 0; i < 3; i++ {
		if variance := square[i]/n - mean[i]*mean[i]; variance > best {
			axis, best = i, variance
		}
	}

	i, j := 0, len(faces)-1
	for i <= j {
		if tb.boxes[faces[i]].Center()[axis] < mean[axis] {
			i++
		} else if tb.boxes[faces[j]].Center()[axis] >= mean[axis] {
			j--
		} else {
			faces[i], faces[j] = faces[j], faces[i]
			i++
			j--
		}
	}
	if i == 0 || i == len(faces) {
		i = len(faces) / 2
	}

	left := tb.build(faces[:i], id)
	right := tb.build(faces[i:], id)
	tb.nodes[id].left = left
	tb.nodes[id].right = right
	return id
}

func (tb *treeBuilder) depth(root int) int {
	type item struct{ node, depth int }
	deepest := 0
	stack := []item{{root, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		deepest = max(deepest, it.depth)
		if n := tb.nodes[it.node]; !n.isLeaf() {
			stack = append(stack, item{n.left, it.depth + 1}, item{n.right, it.depth + 1})
		}
	}
	return deepest
}

// totalFitness is the summed surface of every inner box.
func (tb *treeBuilder) totalFitness() float64 {
	total := 0.0
	for i := range tb.nodes {
		if !tb.nodes[i].isLeaf() {
			total += tb.nodes[i].box.Surface()
		}
	}
	return total
}

// improveTotalFitness rotates nodes with their parent's other child whenever the
// exchange shrinks the node's box. It runs at most 2*depth passes and stops as
// soon as a pass does not lower the total surface.
func (tb *treeBuilder) improveTotalFitness(root, depth int) {
	fitness := tb.totalFitness()
	for pass := 0; pass < 2*depth; pass++ {
		rotations := 0
		for id := range tb.nodes {
			if id != root && !tb.nodes[id].isLeaf() && tb.rotate(id) {
				rotations++
			}
		}
		next := tb.totalFitness()
		glog.V(2).Infof("soup: fitness pass %d, %d rotations, surface %g", pass, rotations, next)
		if rotations == 0 || next >= fitness {
			return
		}
		fitness = next
	}
}

// rotate swaps one child of id with the sibling of id when that makes the box
// of id smaller. Boxes above id are unchanged by the swap.
func (tb *treeBuilder) rotate(id int) bool {
	node := &tb.nodes[id]
	parent := &tb.nodes[node.parent]
	sibling := parent.left
	if sibling == id {
		sibling = parent.right
	}

	current := node.box.Surface()
	for _, child := range []int{node.left, node.right} {
		other := node.left
		if other == child {
			other = node.right
		}
		box := tb.nodes[sibling].box.Union(tb.nodes[other].box)
		if box.Surface() >= current*(1-1e-12) {
			continue
		}

		if parent.left == sibling {
			parent.left = child
		} else {
			parent.right = child
		}
		if node.left == child {
			node.left = sibling
		} else {
			node.right = sibling
		}
		tb.nodes[child].parent = node.parent
		tb.nodes[sibling].parent = id
		node.box = box
		return true
	}
	return false
}

// flatten writes the inner nodes of the build tree in preorder, so the root
// lands at index 0.
func (s *Soup) flatten(tb *treeBuilder, id int, records []TreeNode) TreeNode {
	index := len(s.nodes)
	s.nodes = append(s.nodes, Node{})
	s.setBox(index, tb.nodes[id].box)

	child := func(c int) TreeNode {
		if tb.nodes[c].isLeaf() {
			return records[tb.nodes[c].face]
		}
		return s.flatten(tb, c, records)
	}
	back := child(tb.nodes[id].left)
	front := child(tb.nodes[id].right)
	s.nodes[index].Back = back
	s.nodes[index].Front = front
	return TreeNode(index)
}

func (s *Soup) setBox(index int, box geom.AABB) {
	s.nodes[index].MinIndex = int32(len(s.points))
	s.nodes[index].MaxIndex = int32(len(s.points) + 1)
	s.points = append(s.points, box.Min, box.Max)
}

// IsEmpty reports whether the soup holds no face.
func (s *Soup) IsEmpty() bool {
	return len(s.nodes) == 0
}

// Root returns the root node. ok is false on an empty soup.
func (s *Soup) Root() (Node, bool) {
	if s.IsEmpty() {
		return Node{}, false
	}
	return s.nodes[0], true
}

// NodeCount returns the number of inner nodes.
func (s *Soup) NodeCount() int {
	return len(s.nodes)
}

// IndexCount returns the length of the face record array.
func (s *Soup) IndexCount() int {
	return len(s.indices)
}

// PointCount returns the length of the point array.
func (s *Soup) PointCount() int {
	return len(s.points)
}

func (s *Soup) nodeBox(n Node) geom.AABB {
	return geom.AABB{Min: s.points[n.MinIndex], Max: s.points[n.MaxIndex]}
}

// GetAABB returns the root box, or an empty box on an empty soup.
func (s *Soup) GetAABB() geom.AABB {
	if s.IsEmpty() {
		return geom.EmptyAABB()
	}
	return s.nodeBox(s.nodes[0])
}
