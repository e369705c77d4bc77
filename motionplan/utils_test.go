package motionplan

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/aerialnav/ltstar/logging"
)

func TestPathDistance(t *testing.T) {
	path := []r3.Vector{{}, {X: 3, Y: 4}, {X: 3, Y: 4, Z: 2}}
	test.That(t, pathDistance(r3.Vector{}, path), test.ShouldAlmostEqual, 7.)
	test.That(t, pathDistance(r3.Vector{Z: -1}, path), test.ShouldAlmostEqual, 8.)
	test.That(t, pathDistance(r3.Vector{}, nil), test.ShouldEqual, 0.)
}

func TestQualityCheck(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	start, goal := r3.Vector{}, r3.Vector{X: 10}

	test.That(t, qualityCheck(logger, start, goal, []r3.Vector{start, goal}), test.ShouldBeTrue)
	test.That(t, qualityCheck(logger, start, goal, []r3.Vector{start, {X: 5, Z: 3}, goal}), test.ShouldBeTrue)
	test.That(t, logs.Len(), test.ShouldEqual, 0)

	test.That(t, qualityCheck(logger, start, goal, []r3.Vector{start, {X: 5}}), test.ShouldBeFalse)
	test.That(t, logs.FilterMessage("straight line distance is larger than generated path distance").Len(), test.ShouldEqual, 1)
}
