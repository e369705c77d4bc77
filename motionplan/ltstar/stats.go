package ltstar

import (
	"sort"
	"time"

	"golang.org/x/exp/maps"
)

// Stats counts the work done by one search.
type Stats struct {
	Iterations int
	// VoxelSizes counts popped nodes by voxel side.
	VoxelSizes         map[float64]int
	CorridorChecks     int
	ObstacleHits       int
	RelaxationFailures int
	Elapsed            time.Duration
}

func newStats() Stats {
	return Stats{VoxelSizes: map[float64]int{}}
}

// SortedVoxelSizes returns the distinct voxel sides seen, smallest first.
func (s Stats) SortedVoxelSizes() []float64 {
	sizes := maps.Keys(s.VoxelSizes)
	sort.Float64s(sizes)
	return sizes
}
