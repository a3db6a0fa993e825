// Package pathfind implements A* search over any graph exposing its neighbours
// and an admissible distance estimate.
package pathfind

import (
	"github.com/akmonengine/hedra/pqueue"
)

// Graph is the search space. Neighbors calls visit once per outgoing link with
// its non-negative cost. Heuristic must never overestimate the remaining cost.
type Graph[N comparable] interface {
	Neighbors(node N, visit func(next N, cost float64))
	Heuristic(from, goal N) float64
}

type record[N comparable] struct {
	parent N
	cost   float64
	closed bool
	root   bool
}

// Find returns the cheapest path from start to goal, both included, and its cost.
// ok is false when goal cannot be reached.
func Find[N comparable](g Graph[N], start, goal N) (path []N, cost float64, ok bool) {
	records := map[N]*record[N]{start: {cost: 0, root: true}}
	open := pqueue.NewMin[N](64)
	open.Push(start, g.Heuristic(start, goal))

	for open.Len() > 0 {
		node, _, _ := open.Pop()
		current := records[node]
		if current.closed {
			continue
		}
		current.closed = true

		if node == goal {
			return buildPath(records, goal), current.cost, true
		}

		g.Neighbors(node, func(next N, step float64) {
			newCost := current.cost + step
			r, seen := records[next]
			if seen && (r.closed || r.cost <= newCost) {
				return
			}
			if !seen {
				r = &record[N]{}
				records[next] = r
			}
			r.parent = node
			r.cost = newCost
			open.Push(next, newCost+g.Heuristic(next, goal))
		})
	}

	return nil, 0, false
}

func buildPath[N comparable](records map[N]*record[N], goal N) []N {
	var path []N
	node := goal
	for {
		path = append(path, node)
		r := records[node]
		if r.root {
			break
		}
		node = r.parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
