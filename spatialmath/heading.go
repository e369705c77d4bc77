package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
)

// Yaw returns the heading in radians of travel from a to b, measured in the XY plane from +X towards
// +Y. Pure vertical (or no) motion has a yaw of 0.
func Yaw(from, to r3.Vector) float64 {
	dx, dy := to.X-from.X, to.Y-from.Y
	if math.Hypot(dx, dy) < floatEpsilon {
		return 0
	}
	return math.Atan2(dy, dx)
}

// PathLength is the sum of the euclidean lengths of consecutive segments.
func PathLength(path []r3.Vector) float64 {
	if len(path) < 2 {
		return 0
	}
	segs := make([]float64, len(path)-1)
	for i := 1; i < len(path); i++ {
		segs[i-1] = path[i].Sub(path[i-1]).Norm()
	}
	return floats.Sum(segs)
}
