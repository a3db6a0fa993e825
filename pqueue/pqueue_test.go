package pqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapOrdering(t *testing.T) {
	tests := []struct {
		name     string
		heap     *Heap[string]
		expected []string
	}{
		{"max first", NewMax[string](4), []string{"d", "c", "b", "a"}},
		{"min first", NewMin[string](0), []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.heap.Push("c", 3)
			tt.heap.Push("a", 1)
			tt.heap.Push("d", 4)
			tt.heap.Push("b", 2)
			require.Equal(t, 4, tt.heap.Len())

			peeked, _, ok := tt.heap.Peek()
			require.True(t, ok)
			assert.Equal(t, tt.expected[0], peeked)

			var got []string
			for tt.heap.Len() > 0 {
				v, _, ok := tt.heap.Pop()
				require.True(t, ok)
				got = append(got, v)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestHeapEmpty(t *testing.T) {
	h := NewMax[int](0)
	_, _, ok := h.Pop()
	assert.False(t, ok)
	_, _, ok = h.Peek()
	assert.False(t, ok)

	h.Push(7, 1.5)
	h.Reset()
	assert.Equal(t, 0, h.Len())
}

func TestHeapKeysReturned(t *testing.T) {
	h := NewMin[int](8)
	for i := 10; i > 0; i-- {
		h.Push(i, float64(i)*0.5)
	}
	prev := -1.0
	for h.Len() > 0 {
		v, key, _ := h.Pop()
		assert.Equal(t, float64(v)*0.5, key)
		assert.GreaterOrEqual(t, key, prev)
		prev = key
	}
}
