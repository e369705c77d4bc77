// Package motionplan answers waypoint requests for aerial vehicles. Each request runs a Lazy Theta*
// search (package ltstar) over a shared occupancy oracle, and the resulting path is turned into a
// reply with headings. A summary of every request can be sent to a diagnostics sink.
package motionplan

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/aerialnav/ltstar/logging"
	"github.com/aerialnav/ltstar/motionplan/diagnostics"
	"github.com/aerialnav/ltstar/motionplan/ltstar"
)

// Planner serves planning requests against one oracle. It holds no per-request state, so Plan may be
// called from many goroutines as long as the oracle allows concurrent readers.
type Planner struct {
	oracle     ltstar.Oracle
	logger     logging.Logger
	opts       *plannerOptions
	searchOpts []ltstar.Option
}

// NewPlanner returns a planner over oracle.
func NewPlanner(oracle ltstar.Oracle, logger logging.Logger, opts ...PlannerOption) *Planner {
	o := newPlannerOptions(opts...)
	searchOpts := []ltstar.Option{
		ltstar.WithLogger(logger.Sublogger("ltstar")),
		ltstar.WithClock(o.clock),
		ltstar.WithRingPoints(o.ringPoints),
	}
	return &Planner{
		oracle:     oracle,
		logger:     logger,
		opts:       o,
		searchOpts: append(searchOpts, o.search...),
	}
}

// Plan answers req. The reply is never nil; on failure it reports Success false with no waypoints
// and the error says why. Requests without an ID get a fresh one.
func (p *Planner) Plan(ctx context.Context, req Request) (*Reply, error) {
	ctx, span := trace.StartSpan(ctx, "planWaypoints")
	defer span.End()

	req = p.withDefaults(req)
	span.AddAttributes(trace.StringAttribute("request_id", req.RequestID))
	reply := &Reply{RequestID: req.RequestID}

	if err := req.validate(); err != nil {
		p.logger.Warnw("rejecting request", "request_id", req.RequestID, "error", err.Error())
		p.record(ctx, req, nil, err)
		return reply, err
	}

	res, err := ltstar.Search(ctx, p.oracle, ltstar.Input{
		Start:        req.Start,
		Goal:         req.Goal,
		SafetyMargin: req.margin(),
		Budget:       req.budget(),
	}, p.searchOpts...)
	p.record(ctx, req, res, err)
	if err != nil {
		p.logger.Infow("no path",
			"request_id", req.RequestID,
			"start", req.Start,
			"goal", req.Goal,
			"straight_distance", req.Start.Distance(req.Goal),
			"error", err.Error())
		return reply, err
	}

	qualityCheck(p.logger, req.Start, req.Goal, res.Path)
	reply.Success = true
	reply.Waypoints = assignYaw(res.Path, p.opts.yaw)
	reply.WaypointAmount = len(reply.Waypoints)
	p.logger.Debugw("planned", "request_id", req.RequestID, "waypoints", reply.WaypointAmount,
		"iterations", res.Stats.Iterations, "elapsed", res.Stats.Elapsed, "voxel_sizes", res.Stats.SortedVoxelSizes())
	return reply, nil
}

// PlanBatch plans every request concurrently, bounded by the batch limit. Replies keep the order of
// reqs. The error combines every failed request's error.
func (p *Planner) PlanBatch(ctx context.Context, reqs []Request) ([]*Reply, error) {
	ctx, span := trace.StartSpan(ctx, "planBatch")
	defer span.End()

	replies := make([]*Reply, len(reqs))
	errs := make([]error, len(reqs))

	var g errgroup.Group
	g.SetLimit(p.opts.batchLimit)
	for i, req := range reqs {
		g.Go(func() error {
			reply, err := p.Plan(ctx, req)
			replies[i] = reply
			if err != nil {
				errs[i] = errors.Wrapf(err, "request %s", reply.RequestID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return replies, err
	}
	return replies, multierr.Combine(errs...)
}

// CorridorFree reports whether a vehicle keeping margin of clearance can fly straight from a to b.
// Unknown space counts as blocked.
func (p *Planner) CorridorFree(a, b r3.Vector, margin float64) (bool, error) {
	if !finite(a) || !finite(b) {
		return false, errors.Wrapf(ErrInvalidRequest, "non-finite endpoint, %v to %v", a, b)
	}
	checker, err := ltstar.NewCorridorChecker(p.oracle, margin, p.opts.ringPoints)
	if err != nil {
		return false, errors.Wrap(ErrInvalidRequest, err.Error())
	}
	return checker.Free(a, b), nil
}

func (p *Planner) withDefaults(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.SafetyMargin == nil && p.opts.defaultMargin > 0 {
		req.SafetyMargin = lo.ToPtr(p.opts.defaultMargin)
	}
	if req.MaxTimeSecs == nil && p.opts.defaultMaxTimeSecs > 0 {
		req.MaxTimeSecs = lo.ToPtr(p.opts.defaultMaxTimeSecs)
	}
	return req
}

// record hands a summary of one request to the diagnostics sink, if any. Sink failures are logged
// and do not fail the request.
func (p *Planner) record(ctx context.Context, req Request, res *ltstar.Result, planErr error) {
	if p.opts.sink == nil {
		return
	}
	rec := diagnostics.Record{
		Time:             p.opts.clock.Now(),
		RequestID:        req.RequestID,
		Dataset:          p.opts.dataset,
		Start:            req.Start,
		Goal:             req.Goal,
		SafetyMargin:     req.margin(),
		MaxTimeSecs:      req.maxTimeSecs(),
		StraightDistance: req.Start.Distance(req.Goal),
		Success:          planErr == nil,
		ErrorKind:        ErrorKind(planErr),
	}
	if res != nil {
		rec.Elapsed = res.Stats.Elapsed
		rec.Iterations = res.Stats.Iterations
		rec.ObstacleHits = res.Stats.ObstacleHits
		rec.CorridorChecks = res.Stats.CorridorChecks
		if planErr == nil {
			rec.Waypoints = len(res.Path)
			rec.PathDistance = pathDistance(req.Start, res.Path)
		}
	}
	if free, err := p.CorridorFree(req.Start, req.Goal, req.margin()); err == nil {
		rec.StraightFree = free
	}

	if err := p.opts.sink.Write(ctx, rec); err != nil {
		p.logger.Warnw("failed to write diagnostics", "request_id", req.RequestID, "error", err.Error())
	}
}
