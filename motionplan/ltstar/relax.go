package ltstar

import "math"

// relaxOutcome is the result of setVertex.
type relaxOutcome int

const (
	// the optimistic parent is visible.
	relaxKept relaxOutcome = iota
	// the node was attached to its best visible closed neighbour.
	relaxRewired
	// no visible parent exists; the node must not be expanded.
	relaxFailed
)

// setVertex checks the optimistic parent of s and, when the corridor to it is blocked, attaches s to
// the closed neighbour minimising g(n)+|n-s| among those with a free corridor. Ties keep the first
// neighbour in enumeration order.
func (sr *search) setVertex(s handle) relaxOutcome {
	n := sr.arena.get(s)
	center, parent := n.center, n.parent
	if parent != noParent && sr.corridor.Free(sr.arena.get(parent).center, center) {
		return relaxKept
	}

	best, bestG := noParent, math.Inf(1)
	for _, nc := range sr.neighbors(s) {
		ch, ok := sr.closed[nc]
		if !ok {
			continue
		}
		cand := sr.arena.get(ch).g + nc.Distance(center)
		if cand >= bestG {
			continue
		}
		if sr.corridor.Free(nc, center) {
			best, bestG = ch, cand
		}
	}
	if best == noParent {
		return relaxFailed
	}

	n = sr.arena.get(s)
	n.parent, n.g = best, bestG
	return relaxRewired
}

// updateVertex offers n the parent of s. The grandparent link is taken on trust; setVertex checks it
// when n is popped.
func (sr *search) updateVertex(s, n handle) {
	ps := sr.arena.get(s).parent
	p := sr.arena.get(ps)
	nn := sr.arena.get(n)
	cand := p.g + p.center.Distance(nn.center)
	if cand >= nn.g {
		return
	}
	sr.open.remove(n)
	nn.parent, nn.g, nn.state = ps, cand, nodeOpen
	sr.open.insert(n, cand+nn.h)
}
