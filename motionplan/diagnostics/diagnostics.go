// Package diagnostics records one summary per planning request so that planner behaviour can be
// compared across maps and parameter sets.
package diagnostics

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"

	"github.com/aerialnav/ltstar/logging"
)

// Record summarises a single planning request.
type Record struct {
	Time      time.Time
	RequestID string
	Dataset   string

	Start        r3.Vector
	Goal         r3.Vector
	SafetyMargin float64
	MaxTimeSecs  int

	Elapsed time.Duration
	// StraightDistance is |goal - start|, PathDistance the length flown along the returned waypoints
	// beginning at the requested start.
	StraightDistance float64
	PathDistance     float64
	// StraightFree reports whether the straight corridor from start to goal is clear.
	StraightFree bool

	Iterations     int
	ObstacleHits   int
	CorridorChecks int
	Waypoints      int

	Success   bool
	ErrorKind string
}

// A Sink stores records. Implementations must be safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// formatPoint renders a point the way records are stored as text.
func formatPoint(p r3.Vector) string {
	return fmt.Sprintf("(%.2f_%.2f_%.2f)", p.X, p.Y, p.Z)
}

type logSink struct {
	logger logging.Logger
}

// NewLogSink returns a sink that writes every record as a structured info line.
func NewLogSink(logger logging.Logger) Sink {
	return &logSink{logger: logger}
}

func (s *logSink) Write(ctx context.Context, rec Record) error {
	s.logger.Infow("planning request",
		"request_id", rec.RequestID,
		"dataset", rec.Dataset,
		"start", formatPoint(rec.Start),
		"goal", formatPoint(rec.Goal),
		"safety_margin", rec.SafetyMargin,
		"max_time_secs", rec.MaxTimeSecs,
		"elapsed", rec.Elapsed,
		"straight_distance", rec.StraightDistance,
		"path_distance", rec.PathDistance,
		"straight_free", rec.StraightFree,
		"iterations", rec.Iterations,
		"obstacle_hits", rec.ObstacleHits,
		"corridor_checks", rec.CorridorChecks,
		"waypoints", rec.Waypoints,
		"success", rec.Success,
		"error", rec.ErrorKind,
	)
	return nil
}

func (s *logSink) Close() error {
	return nil
}

// MultiSink writes every record to each of its sinks. Errors from all sinks are combined.
type MultiSink []Sink

// Write implements Sink.
func (m MultiSink) Write(ctx context.Context, rec Record) error {
	var err error
	for _, s := range m {
		err = multierr.Combine(err, s.Write(ctx, rec))
	}
	return err
}

// Close implements Sink.
func (m MultiSink) Close() error {
	var err error
	for _, s := range m {
		err = multierr.Combine(err, s.Close())
	}
	return err
}
