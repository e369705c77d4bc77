package octree

import (
	"math"

	"github.com/golang/geo/r3"
)

// EnumerateNeighbors returns the centres of the free leaves touching the cube of the given side
// centred on center, faces, edges and corners included. The shell of finest cells around the cube is
// sampled in x, y, z order and each leaf is reported once, in the order it was first met, so the
// result is deterministic for a given tree.
func (octree *Octree) EnumerateNeighbors(center r3.Vector, size float64) []r3.Vector {
	m := int64(math.Round(size / octree.resolution))
	if m < 1 {
		m = 1
	}
	inset := (float64(m) - 1) / 2 * octree.resolution
	base := octree.keyOf(center.Sub(r3.Vector{X: inset, Y: inset, Z: inset}))

	octree.mu.RLock()
	defer octree.mu.RUnlock()

	type leafID struct {
		corner key
		depth  int
	}
	seen := make(map[leafID]struct{})
	var out []r3.Vector
	for dx := int64(-1); dx <= m; dx++ {
		for dy := int64(-1); dy <= m; dy++ {
			for dz := int64(-1); dz <= m; dz++ {
				if dx >= 0 && dx < m && dy >= 0 && dy < m && dz >= 0 && dz < m {
					continue
				}
				k := key{base.x + dx, base.y + dy, base.z + dz}
				n, depth := octree.lookup(k)
				if n == nil || n.state != Free {
					continue
				}
				id := leafID{corner: octree.leafCorner(k, depth), depth: depth}
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, octree.centerOf(k, depth))
			}
		}
	}
	return out
}

func (octree *Octree) leafCorner(k key, depth int) key {
	mask := ^((int64(1) << (octree.depth - depth)) - 1)
	return key{k.x & mask, k.y & mask, k.z & mask}
}
