package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats/scalar"
)

const floatEpsilon = 1e-6

// GridCenter returns the centre of the axis aligned cell of the given side that contains p, for a
// grid whose cell corners sit on origin + k*side.
func GridCenter(p, origin r3.Vector, side float64) r3.Vector {
	snap := func(v, o float64) float64 {
		return (math.Floor((v-o)/side)+0.5)*side + o
	}
	return r3.Vector{X: snap(p.X, origin.X), Y: snap(p.Y, origin.Y), Z: snap(p.Z, origin.Z)}
}

// GridKey returns the integer cell index of p on the grid described by origin and side.
func GridKey(p, origin r3.Vector, side float64) (int64, int64, int64) {
	return int64(math.Floor((p.X - origin.X) / side)),
		int64(math.Floor((p.Y - origin.Y) / side)),
		int64(math.Floor((p.Z - origin.Z) / side))
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if all elements are within epsilon of each other.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, epsilon) &&
		scalar.EqualWithinAbs(a.Y, b.Y, epsilon) &&
		scalar.EqualWithinAbs(a.Z, b.Z, epsilon)
}

// ApproxEqual reports whether two points match within a micrometre.
func ApproxEqual(a, b r3.Vector) bool {
	return R3VectorAlmostEqual(a, b, floatEpsilon)
}
