package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestGridCenter(t *testing.T) {
	origin := r3.Vector{X: -0.25, Y: -0.25, Z: -0.25}

	t.Run("finest cells centre on multiples of the resolution", func(t *testing.T) {
		test.That(t, GridCenter(r3.Vector{X: 0.1, Y: -0.2, Z: 0.24}, origin, 0.5), test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 0})
		test.That(t, GridCenter(r3.Vector{X: 10, Y: 0, Z: 0}, origin, 0.5), test.ShouldResemble, r3.Vector{X: 10, Y: 0, Z: 0})
		test.That(t, GridCenter(r3.Vector{X: 0.26, Y: 0, Z: 0}, origin, 0.5), test.ShouldResemble, r3.Vector{X: 0.5, Y: 0, Z: 0})
	})

	t.Run("coarser cells", func(t *testing.T) {
		c := GridCenter(r3.Vector{X: 0.3, Y: 0.3, Z: 0.3}, r3.Vector{}, 2)
		test.That(t, c, test.ShouldResemble, r3.Vector{X: 1, Y: 1, Z: 1})
		c = GridCenter(r3.Vector{X: -0.1, Y: 3.9, Z: 4}, r3.Vector{}, 2)
		test.That(t, c, test.ShouldResemble, r3.Vector{X: -1, Y: 3, Z: 5})
	})

	t.Run("keys", func(t *testing.T) {
		x, y, z := GridKey(r3.Vector{X: -0.3, Y: 0, Z: 0.76}, origin, 0.5)
		test.That(t, x, test.ShouldEqual, int64(-1))
		test.That(t, y, test.ShouldEqual, int64(0))
		test.That(t, z, test.ShouldEqual, int64(2))
	})
}

func TestApproxEqual(t *testing.T) {
	a := r3.Vector{X: 1, Y: 2, Z: 3}
	test.That(t, ApproxEqual(a, r3.Vector{X: 1, Y: 2, Z: 3 + 1e-9}), test.ShouldBeTrue)
	test.That(t, ApproxEqual(a, r3.Vector{X: 1, Y: 2.01, Z: 3}), test.ShouldBeFalse)
	test.That(t, R3VectorAlmostEqual(a, r3.Vector{X: 1.05, Y: 2, Z: 3}, 0.1), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(a, r3.Vector{X: 1, Y: 2, Z: 3.2}, 0.1), test.ShouldBeFalse)
	test.That(t, R3VectorAlmostEqual(r3.Vector{X: -1e-7, Y: 0, Z: 0}, r3.Vector{}, floatEpsilon), test.ShouldBeTrue)
}

func TestYaw(t *testing.T) {
	test.That(t, Yaw(r3.Vector{}, r3.Vector{X: 1}), test.ShouldAlmostEqual, 0)
	test.That(t, Yaw(r3.Vector{}, r3.Vector{Y: 1}), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, Yaw(r3.Vector{}, r3.Vector{X: -1}), test.ShouldAlmostEqual, math.Pi)
	test.That(t, Yaw(r3.Vector{}, r3.Vector{X: 1, Y: -1, Z: 4}), test.ShouldAlmostEqual, -math.Pi/4)
	test.That(t, Yaw(r3.Vector{X: 1, Y: 1, Z: 0}, r3.Vector{X: 1, Y: 1, Z: 5}), test.ShouldEqual, 0)
}

func TestPathLength(t *testing.T) {
	test.That(t, PathLength(nil), test.ShouldEqual, 0)
	test.That(t, PathLength([]r3.Vector{{X: 1, Y: 1, Z: 1}}), test.ShouldEqual, 0)
	path := []r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 3, Y: 4, Z: 0}, {X: 3, Y: 4, Z: 2}}
	test.That(t, PathLength(path), test.ShouldAlmostEqual, 7)
}
