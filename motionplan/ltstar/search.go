package ltstar

import (
	"context"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"

	"github.com/aerialnav/ltstar/spatialmath"
)

// Input is a single planning query.
type Input struct {
	Start, Goal  r3.Vector
	SafetyMargin float64
	// Budget is the wall clock time the search may run. Zero or less fails before the first
	// iteration.
	Budget time.Duration
}

// Result is the outcome of a search. Path runs from start to goal and is empty on failure, except
// for ErrPathExtractionCycle where it holds the truncated chain.
type Result struct {
	Path  []r3.Vector
	Stats Stats
}

// search holds the state of one request. Everything in it is dropped when Search returns.
type search struct {
	opts     *options
	oracle   Oracle
	table    voxelTable
	corridor *CorridorChecker
	arena    *arena
	open     *openSet
	closed   map[r3.Vector]handle
	stats    Stats
	start    handle
	goal     r3.Vector
}

// Search runs Lazy Theta* from in.Start to in.Goal. The returned Result is never nil and carries
// statistics even when an error is returned.
func Search(ctx context.Context, oracle Oracle, in Input, opts ...Option) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "lazyThetaSearch")
	defer span.End()

	o := newOptions(opts...)
	began := o.clock.Now()

	sr := newSearch(oracle, in.Goal, o)
	path, err := sr.run(ctx, in, began.Add(in.Budget))

	res := &Result{Path: path, Stats: sr.stats}
	if sr.corridor != nil {
		res.Stats.CorridorChecks = sr.corridor.Checks()
		res.Stats.ObstacleHits = sr.corridor.Hits()
	}
	res.Stats.Elapsed = o.clock.Since(began)
	span.AddAttributes(
		trace.Int64Attribute("iterations", int64(res.Stats.Iterations)),
		trace.Int64Attribute("corridor_checks", int64(res.Stats.CorridorChecks)),
	)
	if err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
	}
	return res, err
}

func newSearch(oracle Oracle, goal r3.Vector, o *options) *search {
	return &search{
		opts:   o,
		oracle: oracle,
		table:  newVoxelTable(oracle),
		arena:  newArena(),
		open:   newOpenSet(),
		closed: map[r3.Vector]handle{},
		stats:  newStats(),
		start:  noParent,
		goal:   goal,
	}
}

func (sr *search) run(ctx context.Context, in Input, deadline time.Time) ([]r3.Vector, error) {
	logger := sr.opts.logger
	var err error
	sr.corridor, err = NewCorridorChecker(sr.oracle, in.SafetyMargin, sr.opts.ringPoints)
	if err != nil {
		return nil, err
	}

	if !sr.oracle.IsExplored(in.Start) || !sr.oracle.IsExplored(in.Goal) {
		logger.Warnw("start or goal is unexplored", "start", in.Start, "goal", in.Goal)
		return nil, errors.Wrapf(ErrInputUnexplored, "start %v goal %v", in.Start, in.Goal)
	}
	startC, startSize, err := snap(sr.oracle, sr.table, in.Start)
	if err != nil {
		return nil, err
	}
	goalC, _, err := snap(sr.oracle, sr.table, in.Goal)
	if err != nil {
		return nil, err
	}
	sr.corridor.SetGoal(goalC, sr.opts.unknownGoalRadius)

	if sr.table.sameVoxel(startC, goalC) {
		logger.Debugw("start and goal share a voxel", "start", in.Start, "goal", in.Goal)
		return []r3.Vector{in.Start, in.Goal}, nil
	}

	sr.start = sr.arena.add(startC, startSize, startC.Distance(in.Goal))
	startNode := sr.arena.get(sr.start)
	startNode.g, startNode.parent, startNode.state = 0, sr.start, nodeOpen
	sr.open.insert(sr.start, startNode.h)

	solution := noParent
	for sr.open.Len() > 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Warnw("search cancelled", "iterations", sr.stats.Iterations, "start", in.Start, "goal", in.Goal)
			return nil, multierr.Combine(ErrSearchTimeout, ctxErr)
		}
		if !sr.opts.clock.Now().Before(deadline) {
			logger.Warnw("search ran out of time",
				"iterations", sr.stats.Iterations, "budget", in.Budget, "start", in.Start, "goal", in.Goal)
			return nil, errors.Wrapf(ErrSearchTimeout, "after %d iterations", sr.stats.Iterations)
		}

		s := sr.open.pop()
		sr.stats.Iterations++
		sr.stats.VoxelSizes[sr.arena.get(s).size]++

		expand, err := sr.relax(s, in)
		if err != nil {
			return nil, err
		}
		if expand {
			if sr.table.sameVoxel(sr.arena.get(s).center, goalC) {
				solution = s
				break
			}
			sr.expand(s)
		}

		if sr.opts.iterationHook != nil {
			sr.opts.iterationHook(sr.stats.Iterations)
		}
	}

	if solution == noParent {
		logger.Warnw("open set exhausted", "iterations", sr.stats.Iterations, "start", in.Start, "goal", in.Goal)
		return nil, errors.Wrapf(ErrNoPathFound, "after %d iterations", sr.stats.Iterations)
	}
	return sr.finish(solution, in)
}

// relax runs setVertex on every popped node except the start and applies the relaxation policy.
// It reports whether s may be expanded.
func (sr *search) relax(s handle, in Input) (bool, error) {
	if s == sr.start {
		return true, nil
	}
	if sr.setVertex(s) != relaxFailed {
		return true, nil
	}

	sr.stats.RelaxationFailures++
	n := sr.arena.get(s)
	parentCenter := r3.Vector{}
	if n.parent != noParent {
		parentCenter = sr.arena.get(n.parent).center
	}
	sr.opts.logger.Errorw("relaxation failed",
		"node", n.center, "parent", parentCenter, "start", in.Start, "goal", in.Goal, "policy", sr.opts.relaxation)
	if sr.opts.relaxation == RelaxationAbort {
		return false, errors.Wrapf(ErrRelaxationFailure, "node %v", n.center)
	}
	n.g, n.parent, n.state = math.Inf(1), noParent, nodeNew
	return false, nil
}

// expand closes s and offers its parent to every neighbour reachable through a free corridor.
func (sr *search) expand(s handle) {
	n := sr.arena.get(s)
	n.state = nodeClosed
	sr.closed[n.center] = s
	center := n.center

	for _, nc := range sr.neighbors(s) {
		if _, ok := sr.closed[nc]; ok {
			continue
		}
		if !sr.corridor.Free(center, nc) {
			continue
		}
		nh, ok := sr.arena.lookup(nc)
		if !ok {
			nh = sr.arena.add(nc, sr.table.side(sr.oracle.VoxelDepth(nc)), nc.Distance(sr.goal))
		}
		sr.updateVertex(s, nh)
	}
}

// neighbors returns the free neighbours of s, asking the oracle once per node.
func (sr *search) neighbors(s handle) []r3.Vector {
	n := sr.arena.get(s)
	if !n.neighborsLoaded {
		n.neighbors = sr.oracle.EnumerateNeighbors(n.center, n.size)
		n.neighborsLoaded = true
	}
	return n.neighbors
}

// finish extracts the path and splices in the exact endpoints.
func (sr *search) finish(solution handle, in Input) ([]r3.Vector, error) {
	logger := sr.opts.logger
	path, err := sr.arena.extractPath(sr.start, solution, sr.opts.maxPathHops)
	if err != nil {
		logger.Errorw("path extraction failed", "error", err.Error(), "start", in.Start, "goal", in.Goal)
		return path, err
	}

	if !spatialmath.ApproxEqual(in.Goal, path[len(path)-1]) {
		path = append(path, in.Goal)
	}
	startC := path[0]
	if in.Start.Distance(startC) > sr.table.resolution/2 && !sr.corridor.Free(in.Start, startC) {
		path = append([]r3.Vector{in.Start}, path...)
	}

	if len(path) < 2 {
		logger.Errorw("search produced a degenerate path", "path", path, "start", in.Start, "goal", in.Goal)
		return nil, errors.Wrapf(ErrDegeneratePath, "%d waypoints", len(path))
	}
	logger.Debugw("path found", "waypoints", len(path), "iterations", sr.stats.Iterations)
	return path, nil
}
