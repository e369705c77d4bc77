package diagnostics

import (
	"context"
	"database/sql"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	// registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS plan_requests (
		request_id        TEXT,
		dataset           TEXT,
		start_x           DOUBLE,
		start_y           DOUBLE,
		start_z           DOUBLE,
		goal_x            DOUBLE,
		goal_y            DOUBLE,
		goal_z            DOUBLE,
		safety_margin     DOUBLE,
		max_time_secs     BIGINT,
		elapsed_ms        BIGINT,
		straight_distance DOUBLE,
		path_distance     DOUBLE,
		straight_free     BOOLEAN,
		iterations        BIGINT,
		obstacle_hits     BIGINT,
		corridor_checks   BIGINT,
		waypoints         BIGINT,
		success           BOOLEAN,
		error_kind        TEXT,
		timestamp         TIMESTAMP
	);
`

// SQLiteSink stores records in the plan_requests table of a SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database at path. Use ":memory:" for a throwaway store.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening diagnostics database %q", path)
	}
	// a single connection keeps ":memory:" databases shared between writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(multiClose(err, db), "creating diagnostics schema")
	}
	return &SQLiteSink{db: db}, nil
}

// Write implements Sink.
func (s *SQLiteSink) Write(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plan_requests (
			request_id, dataset, start_x, start_y, start_z, goal_x, goal_y, goal_z,
			safety_margin, max_time_secs, elapsed_ms, straight_distance, path_distance,
			straight_free, iterations, obstacle_hits, corridor_checks, waypoints, success,
			error_kind, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Dataset, rec.Start.X, rec.Start.Y, rec.Start.Z, rec.Goal.X, rec.Goal.Y, rec.Goal.Z,
		rec.SafetyMargin, rec.MaxTimeSecs, rec.Elapsed.Milliseconds(), rec.StraightDistance, rec.PathDistance,
		rec.StraightFree, rec.Iterations, rec.ObstacleHits, rec.CorridorChecks, rec.Waypoints, rec.Success,
		rec.ErrorKind, rec.Time.UTC(),
	)
	return errors.Wrap(err, "inserting diagnostics record")
}

// Summary aggregates the stored records.
type Summary struct {
	Requests       int
	Successes      int
	MeanIterations float64
}

// Summarize returns totals over every stored record, optionally restricted to one dataset.
func (s *SQLiteSink) Summarize(ctx context.Context, dataset string) (Summary, error) {
	var (
		sum  Summary
		mean sql.NullFloat64
		succ sql.NullInt64
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(CASE WHEN success THEN 1 ELSE 0 END), AVG(iterations)
		 FROM plan_requests WHERE ? = '' OR dataset = ?`, dataset, dataset)
	if err := row.Scan(&sum.Requests, &succ, &mean); err != nil {
		return Summary{}, errors.Wrap(err, "summarizing diagnostics")
	}
	sum.Successes = int(succ.Int64)
	sum.MeanIterations = mean.Float64
	return sum, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func multiClose(err error, c io.Closer) error {
	return multierr.Combine(err, c.Close())
}
