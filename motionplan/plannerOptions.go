package motionplan

import (
	"runtime"

	"github.com/benbjohnson/clock"

	"github.com/aerialnav/ltstar/motionplan/diagnostics"
	"github.com/aerialnav/ltstar/motionplan/ltstar"
)

type plannerOptions struct {
	yaw        YawMode
	ringPoints int
	clock      clock.Clock
	sink       diagnostics.Sink
	dataset    string
	batchLimit int
	search     []ltstar.Option

	// applied to requests that leave the field nil
	defaultMargin      float64
	defaultMaxTimeSecs int
}

func newPlannerOptions(opts ...PlannerOption) *plannerOptions {
	o := &plannerOptions{
		yaw:        YawHeading,
		ringPoints: ltstar.DefaultRingPoints,
		clock:      clock.New(),
		batchLimit: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PlannerOption configures a Planner.
type PlannerOption func(*plannerOptions)

// WithYawMode selects how reply waypoints get their yaw.
func WithYawMode(mode YawMode) PlannerOption {
	return func(o *plannerOptions) { o.yaw = mode }
}

// WithRingPoints sets the corridor ring size for searches and corridor queries.
func WithRingPoints(n int) PlannerOption {
	return func(o *plannerOptions) { o.ringPoints = n }
}

// WithClock sets the clock for search budgets and record timestamps.
func WithClock(c clock.Clock) PlannerOption {
	return func(o *plannerOptions) { o.clock = c }
}

// WithDiagnostics sends one record per request to sink. dataset labels the records.
func WithDiagnostics(sink diagnostics.Sink, dataset string) PlannerOption {
	return func(o *plannerOptions) { o.sink, o.dataset = sink, dataset }
}

// WithBatchLimit bounds how many requests PlanBatch runs at once.
func WithBatchLimit(n int) PlannerOption {
	return func(o *plannerOptions) { o.batchLimit = n }
}

// WithSearchOptions passes extra options to every search.
func WithSearchOptions(opts ...ltstar.Option) PlannerOption {
	return func(o *plannerOptions) { o.search = append(o.search, opts...) }
}

// WithRequestDefaults fills in the safety margin and time budget of requests that leave them nil.
// An explicit value, zero included, is never replaced. Zero defaults leave requests untouched.
func WithRequestDefaults(margin float64, maxTimeSecs int) PlannerOption {
	return func(o *plannerOptions) { o.defaultMargin, o.defaultMaxTimeSecs = margin, maxTimeSecs }
}
