package octree

import (
	"github.com/golang/geo/r3"
)

// CastRay walks the finest cells along the ray from origin in direction for maxRange and reports
// whether it hits something. Occupied cells always stop the ray; unknown cells (including anything
// outside the tree) stop it unless ignoreUnknown is set. The origin and end cells are included.
func (octree *Octree) CastRay(origin, direction r3.Vector, maxRange float64, ignoreUnknown bool) bool {
	end := origin
	if n := direction.Norm(); n > 0 && maxRange > 0 {
		end = origin.Add(direction.Mul(maxRange / n))
	}

	octree.mu.RLock()
	defer octree.mu.RUnlock()

	it := newLineIterator(octree.keyOf(origin), octree.keyOf(end))
	for it.next() {
		switch octree.stateAt(it.current) {
		case Occupied:
			return true
		case Unknown:
			if !ignoreUnknown {
				return true
			}
		case Free:
		}
	}
	return false
}

// lineIterator steps through the cells of a 3D Bresenham line between two keys, both inclusive.
type lineIterator struct {
	current, target key
	delta, step     key
	errA, errB      int64
	dominant        int
	started         bool
}

func newLineIterator(from, to key) *lineIterator {
	it := &lineIterator{
		current: from,
		target:  to,
		delta:   key{abs64(to.x - from.x), abs64(to.y - from.y), abs64(to.z - from.z)},
		step:    key{sign64(to.x - from.x), sign64(to.y - from.y), sign64(to.z - from.z)},
	}

	d := it.delta
	switch {
	case d.x >= d.y && d.x >= d.z:
		it.dominant = 0
		it.errA, it.errB = d.x/2, d.x/2
	case d.y >= d.x && d.y >= d.z:
		it.dominant = 1
		it.errA, it.errB = d.y/2, d.y/2
	default:
		it.dominant = 2
		it.errA, it.errB = d.z/2, d.z/2
	}
	return it
}

func (it *lineIterator) next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.current == it.target {
		return false
	}

	c, d, s := &it.current, it.delta, it.step
	switch it.dominant {
	case 0:
		c.x += s.x
		if it.errA += d.y; it.errA >= d.x {
			c.y += s.y
			it.errA -= d.x
		}
		if it.errB += d.z; it.errB >= d.x {
			c.z += s.z
			it.errB -= d.x
		}
	case 1:
		c.y += s.y
		if it.errA += d.x; it.errA >= d.y {
			c.x += s.x
			it.errA -= d.y
		}
		if it.errB += d.z; it.errB >= d.y {
			c.z += s.z
			it.errB -= d.y
		}
	default:
		c.z += s.z
		if it.errA += d.x; it.errA >= d.z {
			c.x += s.x
			it.errA -= d.z
		}
		if it.errB += d.y; it.errB >= d.z {
			c.y += s.y
			it.errB -= d.z
		}
	}
	return true
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign64(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
