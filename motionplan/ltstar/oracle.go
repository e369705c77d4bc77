package ltstar

import (
	"github.com/golang/geo/r3"

	"github.com/aerialnav/ltstar/octree"
)

// Oracle answers the spatial queries the search needs. Implementations must allow concurrent
// readers; *octree.Octree is the reference implementation.
type Oracle interface {
	// IsExplored reports whether p lies in known (free or occupied) space.
	IsExplored(p r3.Vector) bool
	Occupancy(p r3.Vector) octree.Occupancy
	// CastRay reports whether a ray from origin along direction hits an obstacle within maxRange.
	// Unknown space counts as a hit unless ignoreUnknown is set.
	CastRay(origin, direction r3.Vector, maxRange float64, ignoreUnknown bool) bool
	// VoxelDepth is the depth of the voxel containing p, TreeDepth() being the finest.
	VoxelDepth(p r3.Vector) int
	VoxelCenter(p r3.Vector, depth int) r3.Vector
	TreeDepth() int
	Resolution() float64
	// EnumerateNeighbors returns the centres of free voxels touching the cube of the given side
	// around center, in a deterministic order and without duplicates.
	EnumerateNeighbors(center r3.Vector, size float64) []r3.Vector
}
