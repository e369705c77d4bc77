package octree

import (
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/aerialnav/ltstar/logging"
	"github.com/aerialnav/ltstar/spatialmath"
)

// node is either a leaf carrying an occupancy state or an internal node with eight children. A nil
// child is unknown space.
type node struct {
	children [8]*node
	leaf     bool
	state    Occupancy
}

// key addresses a cell at the finest depth, counted from the minimum corner of the root cube.
type key struct {
	x, y, z int64
}

// Octree is a sparse occupancy octree. The root cube has side resolution*2^depth and is centred on
// center; depth 0 is the root and depth TreeDepth() holds cells of side resolution.
// All methods are safe for concurrent use.
type Octree struct {
	mu         sync.RWMutex
	logger     logging.Logger
	root       *node
	center     r3.Vector
	rootMin    r3.Vector
	resolution float64
	depth      int
	sides      []float64
}

// New creates an empty (fully unknown) octree.
func New(center r3.Vector, resolution float64, depth int, logger logging.Logger) (*Octree, error) {
	if resolution <= 0 {
		return nil, errors.Errorf("invalid resolution (%.3f) for octree", resolution)
	}
	if depth < 1 || depth > maxTreeDepth {
		return nil, errors.Errorf("invalid depth (%d) for octree, must be in [1, %d]", depth, maxTreeDepth)
	}
	if logger == nil {
		logger = logging.NewBlankLogger("octree")
	}

	sides := make([]float64, depth+1)
	for d := range sides {
		sides[d] = math.Ldexp(resolution, depth-d)
	}
	half := sides[0] / 2

	return &Octree{
		logger:     logger,
		center:     center,
		rootMin:    center.Sub(r3.Vector{X: half, Y: half, Z: half}),
		resolution: resolution,
		depth:      depth,
		sides:      sides,
	}, nil
}

// Resolution is the side of the finest cells.
func (octree *Octree) Resolution() float64 {
	return octree.resolution
}

// TreeDepth is the depth of the finest cells.
func (octree *Octree) TreeDepth() int {
	return octree.depth
}

// SideAt returns the side of a cell at the given depth.
func (octree *Octree) SideAt(depth int) float64 {
	return octree.sides[octree.clampDepth(depth)]
}

// Bounds returns the minimum and maximum corners of the root cube.
func (octree *Octree) Bounds() (r3.Vector, r3.Vector) {
	s := octree.sides[0]
	return octree.rootMin, octree.rootMin.Add(r3.Vector{X: s, Y: s, Z: s})
}

// Occupancy returns the state of the leaf containing p.
func (octree *Octree) Occupancy(p r3.Vector) Occupancy {
	octree.mu.RLock()
	defer octree.mu.RUnlock()
	return octree.stateAt(octree.keyOf(p))
}

// IsExplored reports whether p lies in a known (free or occupied) leaf.
func (octree *Octree) IsExplored(p r3.Vector) bool {
	return octree.Occupancy(p) != Unknown
}

// VoxelDepth returns the depth of the leaf containing p, or TreeDepth() when p is unknown.
func (octree *Octree) VoxelDepth(p r3.Vector) int {
	octree.mu.RLock()
	defer octree.mu.RUnlock()
	n, d := octree.lookup(octree.keyOf(p))
	if n == nil {
		return octree.depth
	}
	return d
}

// VoxelCenter returns the centre of the cell at the given depth containing p.
func (octree *Octree) VoxelCenter(p r3.Vector, depth int) r3.Vector {
	return octree.centerOf(octree.keyOf(p), octree.clampDepth(depth))
}

// Insert sets the state of the cell at depth containing p. Inserting Unknown clears the cell.
func (octree *Octree) Insert(p r3.Vector, state Occupancy, depth int) error {
	k := octree.keyOf(p)
	if !octree.inRange(k) {
		return errors.Errorf("point %v is outside the bounds of this octree", p)
	}
	if depth < 0 || depth > octree.depth {
		return errors.Errorf("invalid insertion depth %d", depth)
	}

	octree.mu.Lock()
	defer octree.mu.Unlock()
	octree.root = octree.set(octree.root, k, 0, depth, state)
	return nil
}

// FillBox sets every finest cell whose centre lies inside the closed box [lo, hi] to state. Cubes no
// coarser than minDepth that are fully covered become single leaves, so minDepth 0 stores the box
// with the fewest leaves and minDepth TreeDepth() stores it cell by cell.
func (octree *Octree) FillBox(lo, hi r3.Vector, state Occupancy, minDepth int) error {
	if lo.X > hi.X || lo.Y > hi.Y || lo.Z > hi.Z {
		return errors.Errorf("invalid box, min %v exceeds max %v", lo, hi)
	}
	minDepth = octree.clampDepth(minDepth)

	first := func(v, o float64) int64 { return int64(math.Ceil((v-o)/octree.resolution - 0.5)) }
	last := func(v, o float64) int64 { return int64(math.Floor((v-o)/octree.resolution - 0.5)) }
	kb := keyBox{
		lo: key{first(lo.X, octree.rootMin.X), first(lo.Y, octree.rootMin.Y), first(lo.Z, octree.rootMin.Z)},
		hi: key{last(hi.X, octree.rootMin.X), last(hi.Y, octree.rootMin.Y), last(hi.Z, octree.rootMin.Z)},
	}
	kb = kb.clip(int64(1) << octree.depth)
	if kb.empty() {
		octree.logger.Debugw("box does not cover any cell", "min", lo, "max", hi)
		return nil
	}

	octree.mu.Lock()
	defer octree.mu.Unlock()
	octree.root = octree.fill(octree.root, key{}, 0, kb, state, minDepth)
	octree.logger.Debugw("filled box", "min", lo, "max", hi, "state", state, "min_depth", minDepth)
	return nil
}

// Prune collapses every internal node whose eight children are leaves of the same state.
func (octree *Octree) Prune() {
	octree.mu.Lock()
	defer octree.mu.Unlock()
	octree.root = prune(octree.root)
}

// NumLeaves returns the number of known leaves.
func (octree *Octree) NumLeaves() int {
	count := 0
	octree.Leaves(func(r3.Vector, float64, Occupancy) bool {
		count++
		return true
	})
	return count
}

// Leaves calls fn for each known leaf in a fixed order until fn returns false.
func (octree *Octree) Leaves(fn func(center r3.Vector, side float64, state Occupancy) bool) {
	octree.mu.RLock()
	defer octree.mu.RUnlock()
	octree.walk(octree.root, key{}, 0, fn)
}

func (octree *Octree) walk(n *node, corner key, level int, fn func(r3.Vector, float64, Occupancy) bool) bool {
	if n == nil {
		return true
	}
	if n.leaf {
		return fn(octree.centerOf(corner, level), octree.sides[level], n.state)
	}
	half := int64(1) << (octree.depth - level - 1)
	for i, child := range n.children {
		if !octree.walk(child, corner.child(i, half), level+1, fn) {
			return false
		}
	}
	return true
}

func (octree *Octree) clampDepth(depth int) int {
	switch {
	case depth < 0:
		return 0
	case depth > octree.depth:
		return octree.depth
	default:
		return depth
	}
}

func (octree *Octree) keyOf(p r3.Vector) key {
	x, y, z := spatialmath.GridKey(p, octree.rootMin, octree.resolution)
	return key{x, y, z}
}

func (octree *Octree) inRange(k key) bool {
	limit := int64(1) << octree.depth
	return k.x >= 0 && k.y >= 0 && k.z >= 0 && k.x < limit && k.y < limit && k.z < limit
}

// centerOf returns the centre of the cell at depth that contains the finest cell k. Every centre the
// tree hands out goes through here so equal cells always produce bit-identical coordinates.
func (octree *Octree) centerOf(k key, depth int) r3.Vector {
	fine := r3.Vector{
		X: octree.rootMin.X + (float64(k.x)+0.5)*octree.resolution,
		Y: octree.rootMin.Y + (float64(k.y)+0.5)*octree.resolution,
		Z: octree.rootMin.Z + (float64(k.z)+0.5)*octree.resolution,
	}
	return spatialmath.GridCenter(fine, octree.rootMin, octree.sides[depth])
}

func (octree *Octree) childIndex(k key, level int) int {
	shift := uint(octree.depth - level - 1)
	return int((k.x>>shift)&1) | int((k.y>>shift)&1)<<1 | int((k.z>>shift)&1)<<2
}

// lookup returns the leaf containing k and its depth, or nil and the depth at which unknown space
// was reached.
func (octree *Octree) lookup(k key) (*node, int) {
	if !octree.inRange(k) {
		return nil, 0
	}
	n := octree.root
	for level := 0; n != nil; level++ {
		if n.leaf {
			return n, level
		}
		if level == octree.depth {
			return nil, level
		}
		n = n.children[octree.childIndex(k, level)]
		if n == nil {
			return nil, level + 1
		}
	}
	return nil, 0
}

func (octree *Octree) stateAt(k key) Occupancy {
	n, _ := octree.lookup(k)
	if n == nil {
		return Unknown
	}
	return n.state
}

func (octree *Octree) set(n *node, k key, level, target int, state Occupancy) *node {
	if level == target {
		return newLeaf(state)
	}
	n = expand(n)
	i := octree.childIndex(k, level)
	n.children[i] = octree.set(n.children[i], k, level+1, target, state)
	return collapseEmpty(n)
}

func (octree *Octree) fill(n *node, corner key, level int, kb keyBox, state Occupancy, minDepth int) *node {
	span := int64(1) << (octree.depth - level)
	cell := keyBox{lo: corner, hi: key{corner.x + span - 1, corner.y + span - 1, corner.z + span - 1}}
	if !kb.intersects(cell) {
		return n
	}
	if kb.contains(cell) && level >= minDepth {
		return newLeaf(state)
	}
	n = expand(n)
	half := span / 2
	for i := range n.children {
		n.children[i] = octree.fill(n.children[i], corner.child(i, half), level+1, kb, state, minDepth)
	}
	return collapseEmpty(n)
}

func newLeaf(state Occupancy) *node {
	if state == Unknown {
		return nil
	}
	return &node{leaf: true, state: state}
}

// expand turns nil into an empty internal node and splits a leaf into eight copies of itself.
func expand(n *node) *node {
	switch {
	case n == nil:
		return &node{}
	case n.leaf:
		split := &node{}
		for i := range split.children {
			split.children[i] = &node{leaf: true, state: n.state}
		}
		return split
	default:
		return n
	}
}

func collapseEmpty(n *node) *node {
	for _, child := range n.children {
		if child != nil {
			return n
		}
	}
	return nil
}

func prune(n *node) *node {
	if n == nil || n.leaf {
		return n
	}
	for i, child := range n.children {
		n.children[i] = prune(child)
	}
	first := n.children[0]
	if first == nil || !first.leaf {
		return n
	}
	for _, child := range n.children[1:] {
		if child == nil || !child.leaf || child.state != first.state {
			return n
		}
	}
	return &node{leaf: true, state: first.state}
}

func (k key) child(i int, half int64) key {
	c := k
	if i&1 != 0 {
		c.x += half
	}
	if i&2 != 0 {
		c.y += half
	}
	if i&4 != 0 {
		c.z += half
	}
	return c
}

type keyBox struct {
	lo, hi key
}

func (kb keyBox) empty() bool {
	return kb.lo.x > kb.hi.x || kb.lo.y > kb.hi.y || kb.lo.z > kb.hi.z
}

func (kb keyBox) clip(limit int64) keyBox {
	clamp := func(v int64) int64 {
		if v < 0 {
			return 0
		}
		if v >= limit {
			return limit - 1
		}
		return v
	}
	lo, hi := kb.lo, kb.hi
	if hi.x < 0 || hi.y < 0 || hi.z < 0 || lo.x >= limit || lo.y >= limit || lo.z >= limit {
		return keyBox{lo: key{1, 1, 1}, hi: key{0, 0, 0}}
	}
	return keyBox{
		lo: key{clamp(lo.x), clamp(lo.y), clamp(lo.z)},
		hi: key{clamp(hi.x), clamp(hi.y), clamp(hi.z)},
	}
}

func (kb keyBox) intersects(o keyBox) bool {
	return kb.lo.x <= o.hi.x && o.lo.x <= kb.hi.x &&
		kb.lo.y <= o.hi.y && o.lo.y <= kb.hi.y &&
		kb.lo.z <= o.hi.z && o.lo.z <= kb.hi.z
}

func (kb keyBox) contains(o keyBox) bool {
	return kb.lo.x <= o.lo.x && o.hi.x <= kb.hi.x &&
		kb.lo.y <= o.lo.y && o.hi.y <= kb.hi.y &&
		kb.lo.z <= o.lo.z && o.hi.z <= kb.hi.z
}
