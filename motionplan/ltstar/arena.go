package ltstar

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// handle addresses a node in the arena.
type handle int32

const noParent handle = -1

type nodeState uint8

const (
	nodeNew = nodeState(iota)
	nodeOpen
	nodeClosed
)

type node struct {
	center r3.Vector
	size   float64
	g, h   float64
	parent handle
	state  nodeState

	neighbors       []r3.Vector
	neighborsLoaded bool
}

// arena owns every node created during one search. Nodes refer to each other by handle only, so
// the whole graph is released with the arena.
type arena struct {
	nodes    []node
	byCenter map[r3.Vector]handle
}

func newArena() *arena {
	return &arena{byCenter: map[r3.Vector]handle{}}
}

// add creates a node with infinite cost and no parent.
func (a *arena) add(center r3.Vector, size, h float64) handle {
	id := handle(len(a.nodes))
	a.nodes = append(a.nodes, node{
		center: center,
		size:   size,
		g:      math.Inf(1),
		h:      h,
		parent: noParent,
	})
	a.byCenter[center] = id
	return id
}

// get returns the node for h. The pointer is invalidated by the next add.
func (a *arena) get(h handle) *node {
	return &a.nodes[h]
}

func (a *arena) lookup(center r3.Vector) (handle, bool) {
	h, ok := a.byCenter[center]
	return h, ok
}

func (a *arena) len() int {
	return len(a.nodes)
}

// checkAcyclic verifies that every closed node except root reaches root by following parents
// without revisiting a node.
func (a *arena) checkAcyclic(root handle) error {
	for i := range a.nodes {
		h := handle(i)
		if h == root || a.nodes[h].state != nodeClosed {
			continue
		}
		seen := map[handle]struct{}{}
		for cur := h; cur != root; cur = a.nodes[cur].parent {
			if cur == noParent {
				return errors.Errorf("closed node %v does not reach the start", a.nodes[h].center)
			}
			if _, ok := seen[cur]; ok {
				return errors.Errorf("parent cycle through %v", a.nodes[cur].center)
			}
			seen[cur] = struct{}{}
		}
	}
	if root != noParent && a.nodes[root].parent != root {
		return errors.New("start node is not its own parent")
	}
	return nil
}
