package hull

import (
	"math"

	"github.com/akmonengine/hedra/pqueue"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"
)

// NoHit is returned by the ray casts when the segment misses the hull.
const NoHit = 1.2

// tieTolerance is the entry parameter gap below which two adjacent faces can no
// longer be ordered by the hill climb.
const tieTolerance = 1e-12

// RayCastBruteForce clips the segment p0-p1 against every face plane and returns
// the parameter in [0, 1] where it enters the hull, 0 when p0 is inside, or NoHit.
func (h *Hull) RayCastBruteForce(p0, p1 mgl64.Vec3) float64 {
	t, _ := h.sweep(p0, p1)
	return t
}

// sweep is RayCastBruteForce that also returns the entry face, -1 when p0 is
// inside or the segment misses.
func (h *Hull) sweep(p0, p1 mgl64.Vec3) (float64, int) {
	if h.IsEmpty() {
		return NoHit, -1
	}

	enter, leave := 0.0, 1.0
	face := -1
	for i, plane := range h.planes {
		d0 := plane.Evaluate(p0)
		d1 := plane.Evaluate(p1)
		if d0 > 0 {
			if d1 >= 0 {
				return NoHit, -1
			}
			if t := d0 / (d0 - d1); t > enter {
				enter, face = t, i
			}
		} else if d1 > 0 {
			leave = math.Min(leave, d0/(d0-d1))
		}
		if enter > leave {
			return NoHit, -1
		}
	}
	return enter, face
}

// fallback runs the sweep for RayCast and reports the entry face through guess.
func (h *Hull) fallback(p0, p1 mgl64.Vec3, guess *int) float64 {
	t, face := h.sweep(p0, p1)
	if guess != nil && face >= 0 {
		*guess = face
	}
	return t
}

// entry returns the parameter where the segment crosses face i from its outer
// side, or -Inf when p0 is not in front of the face. ok is false when the
// segment starts in front of the face and never reaches it, a certain miss.
func (h *Hull) entry(i int, p0, p1 mgl64.Vec3) (t float64, ok bool) {
	d0 := h.planes[i].Evaluate(p0)
	if d0 <= 0 {
		return math.Inf(-1), true
	}
	d1 := h.planes[i].Evaluate(p1)
	if d1 >= d0 {
		return 0, false
	}
	return d0 / (d0 - d1), true
}

// RayCast returns the same result as RayCastBruteForce, walking face adjacency
// from a starting face towards the face with the largest entry parameter.
//
// guess, when not nil, selects the starting face and receives the face that
// was hit, so consecutive similar rays start next to their answer. The walk
// falls back to the brute force sweep when adjacent faces tie or when the hit
// point cannot be confirmed on the face found.
func (h *Hull) RayCast(p0, p1 mgl64.Vec3, guess *int) float64 {
	if h.IsEmpty() {
		return NoHit
	}

	start := 0
	if guess != nil && *guess >= 0 && *guess < len(h.triangles) {
		start = *guess
	}

	t, ok := h.entry(start, p0, p1)
	if !ok {
		return NoHit
	}

	best, bestT := start, t
	visited := map[int]struct{}{start: {}}
	open := pqueue.NewMax[int](8)
	open.Push(start, t)
	for open.Len() > 0 {
		current, currentT, _ := open.Pop()
		if currentT < bestT {
			continue
		}
		for _, next := range h.adjacency[current] {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}

			nextT, ok := h.entry(next, p0, p1)
			if !ok {
				return NoHit
			}
			if math.IsInf(currentT, -1) && math.IsInf(nextT, -1) {
				open.Push(next, nextT)
				continue
			}
			if math.Abs(nextT-currentT) <= tieTolerance {
				glog.V(2).Infof("hull: ray cast tie between faces %d and %d, sweeping all faces", current, next)
				return h.fallback(p0, p1, guess)
			}
			if nextT > currentT {
				open.Push(next, nextT)
				if nextT > bestT {
					best, bestT = next, nextT
				}
			}
		}
	}

	if math.IsInf(bestT, -1) || !h.onFace(best, p0, p1, bestT) {
		return h.fallback(p0, p1, guess)
	}
	if guess != nil {
		*guess = best
	}
	if bestT > 1 {
		return NoHit
	}
	return bestT
}

// onFace checks that the segment point at t lies on triangle i.
func (h *Hull) onFace(i int, p0, p1 mgl64.Vec3, t float64) bool {
	q := p0.Add(p1.Sub(p0).Mul(t))
	tri := h.triangles[i]
	normal := h.planes[i].Normal
	tol := h.tol + tieTolerance*h.diag
	for j := 0; j < 3; j++ {
		a := h.vertices[tri[j]]
		b := h.vertices[tri[(j+1)%3]]
		edge := b.Sub(a)
		length := edge.Len()
		if length == 0 {
			return false
		}
		if edge.Cross(q.Sub(a)).Dot(normal)/length < -tol {
			return false
		}
	}
	return true
}
