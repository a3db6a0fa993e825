// Package pqueue implements a keyed binary heap used by the mesh simplifier, the
// triangulator ear picker, A* search and the convex hull ray caster.
//
// A Heap is either max-first or min-first depending on its constructor. Ties are
// popped in an unspecified order.
package pqueue

import "container/heap"

type entry[T any] struct {
	value T
	key   float64
}

type entries[T any] struct {
	items []entry[T]
	max   bool
}

func (e *entries[T]) Len() int {
	return len(e.items)
}

func (e *entries[T]) Less(i, j int) bool {
	if e.max {
		return e.items[i].key > e.items[j].key
	}
	return e.items[i].key < e.items[j].key
}

func (e *entries[T]) Swap(i, j int) {
	e.items[i], e.items[j] = e.items[j], e.items[i]
}

func (e *entries[T]) Push(x interface{}) {
	e.items = append(e.items, x.(entry[T]))
}

func (e *entries[T]) Pop() interface{} {
	old := e.items
	x := old[len(old)-1]
	e.items = old[:len(old)-1]
	return x
}

// Heap is a priority queue of values ordered by a float64 key.
type Heap[T any] struct {
	data entries[T]
}

// NewMax returns a heap popping the largest key first.
func NewMax[T any](capacity int) *Heap[T] {
	return &Heap[T]{data: entries[T]{items: make([]entry[T], 0, capacity), max: true}}
}

// NewMin returns a heap popping the smallest key first.
func NewMin[T any](capacity int) *Heap[T] {
	return &Heap[T]{data: entries[T]{items: make([]entry[T], 0, capacity)}}
}

// Push inserts value with the given key.
func (h *Heap[T]) Push(value T, key float64) {
	heap.Push(&h.data, entry[T]{value: value, key: key})
}

// Pop removes and returns the best entry. ok is false on an empty heap.
func (h *Heap[T]) Pop() (value T, key float64, ok bool) {
	if len(h.data.items) == 0 {
		return value, 0, false
	}
	e := heap.Pop(&h.data).(entry[T])
	return e.value, e.key, true
}

// Peek returns the best entry without removing it.
func (h *Heap[T]) Peek() (value T, key float64, ok bool) {
	if len(h.data.items) == 0 {
		return value, 0, false
	}
	e := h.data.items[0]
	return e.value, e.key, true
}

// Len returns the number of queued entries.
func (h *Heap[T]) Len() int {
	return len(h.data.items)
}

// Reset empties the heap, keeping its storage.
func (h *Heap[T]) Reset() {
	h.data.items = h.data.items[:0]
}
