package pathfind

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cell struct{ x, y int }

// grid is a 2D four-connected grid with blocked cells.
type grid struct {
	width, height int
	blocked       map[cell]bool
}

func (g grid) Neighbors(c cell, visit func(cell, float64)) {
	for _, d := range []cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		n := cell{c.x + d.x, c.y + d.y}
		if n.x < 0 || n.y < 0 || n.x >= g.width || n.y >= g.height || g.blocked[n] {
			continue
		}
		visit(n, 1)
	}
}

func (g grid) Heuristic(a, b cell) float64 {
	return math.Abs(float64(a.x-b.x)) + math.Abs(float64(a.y-b.y))
}

func TestFind(t *testing.T) {
	tests := []struct {
		name      string
		blocked   []cell
		goal      cell
		cost      float64
		reachable bool
	}{
		{"straight line", nil, cell{4, 0}, 4, true},
		{"around a wall", []cell{{2, 0}, {2, 1}, {2, 2}, {2, 3}}, cell{4, 0}, 12, true},
		{"walled off", []cell{{2, 0}, {2, 1}, {2, 2}, {2, 3}, {2, 4}}, cell{4, 0}, 0, false},
		{"start is goal", nil, cell{0, 0}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := grid{width: 5, height: 5, blocked: map[cell]bool{}}
			for _, b := range tt.blocked {
				g.blocked[b] = true
			}

			path, cost, ok := Find[cell](g, cell{0, 0}, tt.goal)
			require.Equal(t, tt.reachable, ok)
			if !ok {
				assert.Nil(t, path)
				return
			}
			assert.Equal(t, tt.cost, cost)
			assert.Equal(t, cell{0, 0}, path[0])
			assert.Equal(t, tt.goal, path[len(path)-1])
			assert.Len(t, path, int(tt.cost)+1)
			for i := 1; i < len(path); i++ {
				assert.Equal(t, 1.0, g.Heuristic(path[i-1], path[i]), "path steps must be adjacent")
			}
		})
	}
}
