package soup

import (
	"encoding/binary"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Serialize writes the soup as three little-endian uint32 counts (points,
// indices, nodes) followed by the raw arrays. The layout is not versioned: only
// Deserialize from this package can read it back.
func (s *Soup) Serialize(w io.Writer) error {
	header := [3]uint32{uint32(len(s.points)), uint32(len(s.indices)), uint32(len(s.nodes))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return errors.Wrap(err, "soup: writing header")
	}
	if err := binary.Write(w, binary.LittleEndian, s.points); err != nil {
		return errors.Wrap(err, "soup: writing points")
	}
	if err := binary.Write(w, binary.LittleEndian, s.indices); err != nil {
		return errors.Wrap(err, "soup: writing face records")
	}
	if err := binary.Write(w, binary.LittleEndian, s.nodes); err != nil {
		return errors.Wrap(err, "soup: writing nodes")
	}
	return nil
}

// maxSerializedCount guards allocations against corrupt headers.
const maxSerializedCount = 1 << 28

// Deserialize reads a soup written by Serialize.
func Deserialize(r io.Reader) (*Soup, error) {
	var header [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "soup: reading header")
	}
	for _, count := range header {
		if count > maxSerializedCount {
			return nil, errors.Errorf("soup: corrupt header %v", header)
		}
	}

	s := &Soup{
		points:  make([]mgl64.Vec3, header[0]),
		indices: make([]int32, header[1]),
		nodes:   make([]Node, header[2]),
	}
	if err := binary.Read(r, binary.LittleEndian, s.points); err != nil {
		return nil, errors.Wrapf(err, "soup: reading %d points", header[0])
	}
	if err := binary.Read(r, binary.LittleEndian, s.indices); err != nil {
		return nil, errors.Wrapf(err, "soup: reading %d face records", header[1])
	}
	if err := binary.Read(r, binary.LittleEndian, s.nodes); err != nil {
		return nil, errors.Wrapf(err, "soup: reading %d nodes", header[2])
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

// check verifies every reference of the node array stays in bounds.
func (s *Soup) check() error {
	for i, n := range s.nodes {
		if int(n.MinIndex) >= len(s.points) || int(n.MaxIndex) >= len(s.points) || n.MinIndex < 0 || n.MaxIndex < 0 {
			return errors.Errorf("soup: node %d box out of range", i)
		}
		for _, child := range []TreeNode{n.Back, n.Front} {
			switch {
			case child.IsEmpty():
			case child.IsLeaf():
				if child.Count() < 8 || child.Offset()+child.Count() > len(s.indices) {
					return errors.Errorf("soup: node %d leaf record out of range", i)
				}
				face := s.face(child)
				for j := 0; j <= face.VertexCount(); j++ {
					if v := face.record[j]; v < 0 || int(v) >= len(s.points) {
						return errors.Errorf("soup: node %d face references point %d", i, v)
					}
				}
			case child.Index() <= i || child.Index() >= len(s.nodes):
				return errors.Errorf("soup: node %d child %d out of range", i, child.Index())
			}
		}
	}
	return nil
}
