package pathfinder

import (
	"container/heap"
	"math"
)

type cell struct {
	x int
	y int
}

type step struct {
	dx, dy int
	cost   float64
}

var (
	orthogonalSteps = []step{{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1}}
	diagonalSteps   = []step{
		{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1},
		{1, 1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {1, -1, math.Sqrt2}, {-1, -1, math.Sqrt2},
	}
)

// search is one A* run over an unbounded grid.
type search struct {
	blocked  func(x, y int) bool
	longest  float64
	maxNodes int
	diagonal bool
	partial  bool

	memo map[cell]bool
}

type node struct {
	cell
	g      float64
	h      float64
	parent *node
	closed bool
}

// run returns the cells from start towards goal and whether goal was reached.
// A partial result ends at the closed node nearest the goal; a search that
// never left the start cell returns nil.
func (s *search) run(start, goal cell) ([]cell, bool, int) {
	s.memo = make(map[cell]bool, 64)
	if s.isBlocked(start) {
		return nil, false, 0
	}
	if start == goal {
		return []cell{start}, true, 0
	}
	if !s.partial && s.isBlocked(goal) {
		return nil, false, 0
	}

	steps := orthogonalSteps
	if s.diagonal {
		steps = diagonalSteps
	}

	first := &node{cell: start, h: s.heuristic(start, goal)}
	nodes := map[cell]*node{start: first}
	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &openItem{n: first, f: first.h})

	best := first
	expanded := 0
	for open.Len() > 0 {
		item := heap.Pop(open).(*openItem)
		cur := item.n
		if cur.closed || item.g > cur.g {
			continue
		}
		if cur.cell == goal {
			return trace(cur), true, expanded
		}
		cur.closed = true
		if cur.h < best.h || (cur.h == best.h && cur.g < best.g) {
			best = cur
		}
		expanded++
		if s.maxNodes > 0 && expanded >= s.maxNodes {
			break
		}

		for _, d := range steps {
			n := cell{x: cur.x + d.dx, y: cur.y + d.dy}
			if s.isBlocked(n) {
				continue
			}
			// no corner cutting
			if d.dx != 0 && d.dy != 0 &&
				(s.isBlocked(cell{x: cur.x + d.dx, y: cur.y}) || s.isBlocked(cell{x: cur.x, y: cur.y + d.dy})) {
				continue
			}
			g := cur.g + d.cost
			if s.longest > 0 && g > s.longest+1e-9 {
				continue
			}
			next, seen := nodes[n]
			if seen && (next.closed || g >= next.g) {
				continue
			}
			if !seen {
				next = &node{cell: n, h: s.heuristic(n, goal)}
				nodes[n] = next
			}
			next.g = g
			next.parent = cur
			heap.Push(open, &openItem{n: next, f: g + next.h, g: g})
		}
	}

	if !s.partial || best == first {
		return nil, false, expanded
	}
	return trace(best), false, expanded
}

func (s *search) isBlocked(c cell) bool {
	if v, ok := s.memo[c]; ok {
		return v
	}
	v := s.blocked(c.x, c.y)
	s.memo[c] = v
	return v
}

// heuristic is octile distance with diagonal moves, Manhattan without.
func (s *search) heuristic(a, b cell) float64 {
	dx := math.Abs(float64(a.x - b.x))
	dy := math.Abs(float64(a.y - b.y))
	if !s.diagonal {
		return dx + dy
	}
	return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
}

func trace(n *node) []cell {
	path := make([]cell, 0, 32)
	for ; n != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type openItem struct {
	n     *node
	f     float64
	g     float64
	index int
}

type openSet []*openItem

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].n.h < o[j].n.h
}
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}
