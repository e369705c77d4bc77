package diagnostics

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

var csvHeader = []string{
	"time", "request_id", "dataset", "start", "goal", "safety_margin", "max_time_secs",
	"elapsed_ms", "straight_distance", "path_distance", "straight_free",
	"iterations", "obstacle_hits", "corridor_checks", "waypoints", "success", "error",
}

// CSVSink appends records to a CSV file, writing a header when the file is new.
type CSVSink struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// NewCSVSink opens path for appending, creating it if needed.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, errors.Wrapf(err, "opening diagnostics csv %q", path)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(multiClose(err, f), "stat diagnostics csv")
	}

	s := &CSVSink{f: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := s.writeRow(csvHeader); err != nil {
			return nil, multiClose(err, f)
		}
	}
	return s, nil
}

// Write implements Sink.
func (s *CSVSink) Write(ctx context.Context, rec Record) error {
	return s.writeRow([]string{
		rec.Time.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		rec.RequestID,
		rec.Dataset,
		formatPoint(rec.Start),
		formatPoint(rec.Goal),
		formatFloat(rec.SafetyMargin),
		strconv.Itoa(rec.MaxTimeSecs),
		strconv.FormatInt(rec.Elapsed.Milliseconds(), 10),
		formatFloat(rec.StraightDistance),
		formatFloat(rec.PathDistance),
		strconv.FormatBool(rec.StraightFree),
		strconv.Itoa(rec.Iterations),
		strconv.Itoa(rec.ObstacleHits),
		strconv.Itoa(rec.CorridorChecks),
		strconv.Itoa(rec.Waypoints),
		strconv.FormatBool(rec.Success),
		rec.ErrorKind,
	})
}

func (s *CSVSink) writeRow(row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	return multiClose(s.w.Error(), s.f)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
