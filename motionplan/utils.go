package motionplan

import (
	"github.com/golang/geo/r3"

	"github.com/aerialnav/ltstar/logging"
	"github.com/aerialnav/ltstar/spatialmath"
)

// pathDistance is the length flown from start along path. The leg from start to the first
// waypoint counts when the path begins at the start voxel centre instead of start itself.
func pathDistance(start r3.Vector, path []r3.Vector) float64 {
	if len(path) == 0 {
		return 0
	}
	total := spatialmath.PathLength(path)
	if !spatialmath.ApproxEqual(start, path[0]) {
		total += start.Distance(path[0])
	}
	return total
}

// qualityCheck warns when a path claims to be shorter than the straight line between its endpoints,
// which means the path does not connect them. It returns false in that case.
func qualityCheck(logger logging.Logger, start, goal r3.Vector, path []r3.Vector) bool {
	straight := start.Distance(goal)
	total := pathDistance(start, path)
	if straight <= total+1e-6 {
		return true
	}
	logger.Warnw("straight line distance is larger than generated path distance",
		"start", start, "goal", goal, "straight", straight, "generated", total, "path", path)
	return false
}
