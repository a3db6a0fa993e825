package mesh

// EdgeKey packs a directed vertex pair into one ordered 64-bit key: origin in
// the high half, destination in the low half. Keys sort by origin first, so all
// edges leaving a vertex are contiguous in the edge map.
type EdgeKey uint64

// NewEdgeKey returns the key of the directed edge v0 -> v1.
func NewEdgeKey(v0, v1 int) EdgeKey {
	return EdgeKey(uint64(uint32(v0))<<32 | uint64(uint32(v1)))
}

// Origin returns the first vertex of the pair.
func (k EdgeKey) Origin() int {
	return int(uint32(k >> 32))
}

// Destination returns the second vertex of the pair.
func (k EdgeKey) Destination() int {
	return int(uint32(k))
}

// Reverse returns the key of the opposite directed edge.
func (k EdgeKey) Reverse() EdgeKey {
	return NewEdgeKey(k.Destination(), k.Origin())
}
