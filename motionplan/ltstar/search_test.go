package ltstar

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"golang.org/x/sync/errgroup"

	"github.com/aerialnav/ltstar/logging"
)

const testMargin = 0.5

func plan(t *testing.T, oracle Oracle, start, goal r3.Vector, opts ...Option) (*Result, error) {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewTestLogger(t))}, opts...)
	return Search(context.Background(), oracle, Input{
		Start:        start,
		Goal:         goal,
		SafetyMargin: testMargin,
		Budget:       time.Minute,
	}, opts...)
}

// runSearch drives a search by hand so the test can inspect its arena afterwards.
func runSearch(t *testing.T, oracle Oracle, in Input, opts ...Option) (*search, []r3.Vector, error) {
	t.Helper()
	o := newOptions(append([]Option{WithLogger(logging.NewTestLogger(t))}, opts...)...)
	sr := newSearch(oracle, in.Goal, o)
	path, err := sr.run(context.Background(), in, o.clock.Now().Add(in.Budget))
	return sr, path, err
}

func assertCorridorsFree(t *testing.T, oracle Oracle, path []r3.Vector, goal r3.Vector) {
	t.Helper()
	checker, err := NewCorridorChecker(oracle, testMargin, DefaultRingPoints)
	test.That(t, err, test.ShouldBeNil)
	checker.SetGoal(goal, -1)
	for i := 1; i < len(path); i++ {
		test.That(t, checker.Free(path[i-1], path[i]), test.ShouldBeTrue)
	}
}

func TestSearchEmptyMap(t *testing.T) {
	tree := emptyScene(t)
	start, goal := r3.Vector{}, r3.Vector{X: 10}

	res, err := plan(t, tree, start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Path, test.ShouldResemble, []r3.Vector{start, goal})
	test.That(t, res.Stats.Iterations, test.ShouldBeGreaterThan, 0)
	test.That(t, res.Stats.CorridorChecks, test.ShouldBeGreaterThan, 0)
	test.That(t, res.Stats.ObstacleHits, test.ShouldEqual, 0)
	test.That(t, res.Stats.RelaxationFailures, test.ShouldEqual, 0)
	test.That(t, res.Stats.SortedVoxelSizes(), test.ShouldResemble, []float64{0.5})
	test.That(t, res.Stats.VoxelSizes[0.5], test.ShouldEqual, res.Stats.Iterations)
}

func TestSearchOffCentreEndpoints(t *testing.T) {
	tree := emptyScene(t)
	start, goal := r3.Vector{X: 0.2, Y: 0.1}, r3.Vector{X: 9.9, Z: -0.2}

	res, err := plan(t, tree, start, goal)
	test.That(t, err, test.ShouldBeNil)
	// the exact goal is appended, the start is left at its voxel centre since it is close and visible
	test.That(t, res.Path[0], test.ShouldResemble, r3.Vector{})
	test.That(t, res.Path[len(res.Path)-1], test.ShouldResemble, goal)
	test.That(t, len(res.Path), test.ShouldEqual, 3)
}

func TestSearchSameVoxel(t *testing.T) {
	tree := emptyScene(t)
	start, goal := r3.Vector{X: 0.1, Z: 0.1}, r3.Vector{X: -0.1, Y: 0.2}

	res, err := plan(t, tree, start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Path, test.ShouldResemble, []r3.Vector{start, goal})
	test.That(t, res.Stats.Iterations, test.ShouldEqual, 0)
}

func TestSearchUnexplored(t *testing.T) {
	tree := emptyScene(t)

	res, err := plan(t, tree, r3.Vector{}, r3.Vector{X: 20})
	test.That(t, errors.Is(err, ErrInputUnexplored), test.ShouldBeTrue)
	test.That(t, res.Path, test.ShouldBeEmpty)
	test.That(t, res.Stats.Iterations, test.ShouldEqual, 0)

	res, err = plan(t, tree, r3.Vector{Z: 5}, r3.Vector{X: 5})
	test.That(t, errors.Is(err, ErrInputUnexplored), test.ShouldBeTrue)
	test.That(t, res.Path, test.ShouldBeEmpty)
}

func TestSearchInvalidMargin(t *testing.T) {
	tree := emptyScene(t)
	_, err := Search(context.Background(), tree, Input{Goal: r3.Vector{X: 10}, Budget: time.Second})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "safety margin")

	_, err = plan(t, tree, r3.Vector{}, r3.Vector{X: 10}, WithRingPoints(5))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSearchWallWithGap(t *testing.T) {
	tree := wallScene(t, true)
	start, goal := r3.Vector{}, r3.Vector{X: 10}

	sr, path, err := runSearch(t, tree, Input{Start: start, Goal: goal, SafetyMargin: testMargin, Budget: time.Minute})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(path), test.ShouldBeGreaterThan, 2)
	test.That(t, path[0], test.ShouldResemble, start)
	test.That(t, path[len(path)-1], test.ShouldResemble, goal)
	assertCorridorsFree(t, tree, path, goal)

	z, crossed := crossingZ(path, 5)
	test.That(t, crossed, test.ShouldBeTrue)
	test.That(t, z, test.ShouldBeBetween, 3.25, 6.75)

	test.That(t, sr.arena.checkAcyclic(sr.start), test.ShouldBeNil)
	for center, h := range sr.closed {
		n := sr.arena.get(h)
		test.That(t, n.center, test.ShouldResemble, center)
		test.That(t, n.parent, test.ShouldNotEqual, noParent)
	}
	test.That(t, sr.corridor.Hits(), test.ShouldBeGreaterThan, 0)
}

func TestSearchNoPath(t *testing.T) {
	tree := wallScene(t, false)

	res, err := plan(t, tree, r3.Vector{}, r3.Vector{X: 10})
	test.That(t, errors.Is(err, ErrNoPathFound), test.ShouldBeTrue)
	test.That(t, res.Path, test.ShouldBeEmpty)
	test.That(t, res.Stats.Iterations, test.ShouldBeGreaterThan, 0)
	test.That(t, res.Stats.ObstacleHits, test.ShouldBeGreaterThan, 0)
}

func TestSearchVariableResolution(t *testing.T) {
	tree := windowScene(t)
	start, goal := r3.Vector{X: 2, Y: 7.5, Z: 7.5}, r3.Vector{X: 14, Y: 7.5, Z: 7.5}

	res, err := plan(t, tree, start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Path[0], test.ShouldResemble, r3.Vector{X: 4, Y: 4, Z: 4})
	test.That(t, res.Path[len(res.Path)-1], test.ShouldResemble, goal)
	test.That(t, len(res.Path), test.ShouldBeGreaterThanOrEqualTo, 3)
	test.That(t, len(res.Stats.VoxelSizes), test.ShouldBeGreaterThan, 1)
	assertCorridorsFree(t, tree, res.Path, goal)

	z, crossed := crossingZ(res.Path, 10.5)
	test.That(t, crossed, test.ShouldBeTrue)
	test.That(t, z, test.ShouldBeBetween, 5.5, 9.5)
}

func TestSearchDeterministic(t *testing.T) {
	tree := wallScene(t, true)
	first, err := plan(t, tree, r3.Vector{}, r3.Vector{X: 10})
	test.That(t, err, test.ShouldBeNil)
	second, err := plan(t, tree, r3.Vector{}, r3.Vector{X: 10})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, second.Path, test.ShouldResemble, first.Path)
	test.That(t, second.Stats.Iterations, test.ShouldEqual, first.Stats.Iterations)
	test.That(t, second.Stats.CorridorChecks, test.ShouldEqual, first.Stats.CorridorChecks)
	test.That(t, second.Stats.ObstacleHits, test.ShouldEqual, first.Stats.ObstacleHits)
}

func TestSearchConcurrentRequests(t *testing.T) {
	tree := wallScene(t, true)
	reference, err := plan(t, tree, r3.Vector{}, r3.Vector{X: 10})
	test.That(t, err, test.ShouldBeNil)

	results := make([]*Result, 4)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			res, err := Search(context.Background(), tree, Input{
				Start:        r3.Vector{},
				Goal:         r3.Vector{X: 10},
				SafetyMargin: testMargin,
				Budget:       time.Minute,
			})
			results[i] = res
			return err
		})
	}
	test.That(t, g.Wait(), test.ShouldBeNil)
	for _, res := range results {
		test.That(t, res.Path, test.ShouldResemble, reference.Path)
	}
}

func TestSearchClosedCostsNeverDecrease(t *testing.T) {
	tree := wallScene(t, true)
	seen := map[handle]float64{}
	var sr *search
	hook := func(int) {
		for _, h := range sr.closed {
			g := sr.arena.get(h).g
			if prev, ok := seen[h]; ok {
				test.That(t, g, test.ShouldBeGreaterThanOrEqualTo, prev)
			}
			seen[h] = g
		}
	}

	o := newOptions(WithLogger(logging.NewTestLogger(t)), withIterationHook(hook))
	in := Input{Goal: r3.Vector{X: 10}, SafetyMargin: testMargin, Budget: time.Minute}
	sr = newSearch(tree, in.Goal, o)
	_, err := sr.run(context.Background(), in, o.clock.Now().Add(in.Budget))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(seen), test.ShouldBeGreaterThan, 0)
}

func TestSearchTimeouts(t *testing.T) {
	tree := wallScene(t, true)

	t.Run("zero budget", func(t *testing.T) {
		for _, budget := range []time.Duration{0, -time.Second} {
			res, err := Search(context.Background(), tree, Input{
				Goal:         r3.Vector{X: 10},
				SafetyMargin: testMargin,
				Budget:       budget,
			}, WithClock(clock.NewMock()))
			test.That(t, errors.Is(err, ErrSearchTimeout), test.ShouldBeTrue)
			test.That(t, res.Path, test.ShouldBeEmpty)
			test.That(t, res.Stats.Iterations, test.ShouldEqual, 0)
		}
	})

	t.Run("budget spent mid search", func(t *testing.T) {
		mock := clock.NewMock()
		res, err := Search(context.Background(), tree, Input{
			Goal:         r3.Vector{X: 10},
			SafetyMargin: testMargin,
			Budget:       3 * time.Second,
		}, WithClock(mock), withIterationHook(func(int) { mock.Add(time.Second) }))
		test.That(t, errors.Is(err, ErrSearchTimeout), test.ShouldBeTrue)
		test.That(t, res.Stats.Iterations, test.ShouldEqual, 3)
		test.That(t, res.Stats.Elapsed, test.ShouldEqual, 3*time.Second)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := Search(ctx, tree, Input{Goal: r3.Vector{X: 10}, SafetyMargin: testMargin, Budget: time.Minute})
		test.That(t, errors.Is(err, ErrSearchTimeout), test.ShouldBeTrue)
		test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
		test.That(t, res.Stats.Iterations, test.ShouldEqual, 0)
	})
}
