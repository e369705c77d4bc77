package ltstar

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// voxelTable maps oracle depths to voxel sides.
type voxelTable struct {
	resolution float64
	sides      []float64
}

func newVoxelTable(oracle Oracle) voxelTable {
	depth := oracle.TreeDepth()
	t := voxelTable{resolution: oracle.Resolution(), sides: make([]float64, depth+1)}
	for d := range t.sides {
		t.sides[d] = math.Ldexp(t.resolution, depth-d)
	}
	return t
}

func (t voxelTable) side(depth int) float64 {
	if depth < 0 {
		depth = 0
	}
	if depth >= len(t.sides) {
		depth = len(t.sides) - 1
	}
	return t.sides[depth]
}

// snap returns the centre and side of the voxel containing p.
func snap(oracle Oracle, table voxelTable, p r3.Vector) (r3.Vector, float64, error) {
	if !oracle.IsExplored(p) {
		return r3.Vector{}, 0, errors.Wrapf(ErrInputUnexplored, "point %v", p)
	}
	depth := oracle.VoxelDepth(p)
	return oracle.VoxelCenter(p, depth), table.side(depth), nil
}

// sameVoxel compares two voxel centres at half the finest resolution.
func (t voxelTable) sameVoxel(a, b r3.Vector) bool {
	return a.Distance(b) <= t.resolution/2
}
