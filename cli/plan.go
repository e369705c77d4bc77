package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/a8m/envsubst"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/aerialnav/ltstar/motionplan"
	"github.com/aerialnav/ltstar/motionplan/diagnostics"
)

// PlanAction plans one request and prints the reply.
func PlanAction(c *cli.Context) (err error) {
	start, goal, err := endpoints(c.String(flagStart), c.String(flagGoal))
	if err != nil {
		return err
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, e.Close())
	}()

	reply, planErr := e.planner.Plan(c.Context, requestFromFlags(c, start, goal))

	if c.Bool(flagJSON) {
		out, err := json.MarshalIndent(reply, "", "  ")
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", out)
		return planErr
	}

	if planErr != nil {
		printf(c.App.Writer, "request %s: no path", reply.RequestID)
		return planErr
	}
	printf(c.App.Writer, "request %s: %d waypoints", reply.RequestID, reply.WaypointAmount)
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Position", "Yaw"})
	for i, wp := range reply.Waypoints {
		t.AppendRow(table.Row{i, formatPoint(wp.Position), fmt.Sprintf("%.3f", wp.Yaw)})
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

// collectSink keeps records in memory so a batch can be summarized.
type collectSink struct {
	mu      sync.Mutex
	records map[string]diagnostics.Record
}

func (s *collectSink) Write(ctx context.Context, rec diagnostics.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.RequestID] = rec
	return nil
}

func (s *collectSink) Close() error {
	return nil
}

// BatchAction plans every request of a JSON file and prints a per request table and a summary.
func BatchAction(c *cli.Context) (err error) {
	buf, err := envsubst.ReadFile(c.Path(flagRequests))
	if err != nil {
		return err
	}
	var reqs []motionplan.Request
	if err := json.NewDecoder(bytes.NewReader(buf)).Decode(&reqs); err != nil {
		return errors.Wrapf(err, "reading requests from %q", c.Path(flagRequests))
	}
	if len(reqs) == 0 {
		return errors.New("no requests to plan")
	}
	seen := map[string]bool{}
	for _, req := range reqs {
		if req.RequestID == "" {
			continue
		}
		if seen[req.RequestID] {
			return errors.Errorf("duplicate request id %q in %q", req.RequestID, c.Path(flagRequests))
		}
		seen[req.RequestID] = true
	}

	collected := &collectSink{records: map[string]diagnostics.Record{}}
	e, err := newEnv(c, collected)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, e.Close())
	}()

	replies, planErr := e.planner.PlanBatch(c.Context, reqs)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Request", "Success", "Waypoints", "Iterations", "Elapsed (ms)", "Path (m)", "Straight (m)", "Error"})
	var elapsed, iterations []float64
	for _, reply := range replies {
		rec := collected.records[reply.RequestID]
		t.AppendRow(table.Row{
			reply.RequestID, reply.Success, reply.WaypointAmount, rec.Iterations, rec.Elapsed.Milliseconds(),
			fmt.Sprintf("%.2f", rec.PathDistance), fmt.Sprintf("%.2f", rec.StraightDistance), rec.ErrorKind,
		})
		elapsed = append(elapsed, float64(rec.Elapsed.Microseconds())/1000)
		iterations = append(iterations, float64(rec.Iterations))
	}
	printf(c.App.Writer, "%s", t.Render())

	successes := lo.CountBy(replies, func(reply *motionplan.Reply) bool { return reply.Success })
	summary, err := summarize(elapsed, iterations)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%d/%d succeeded, elapsed ms mean %.2f p50 %.2f p95 %.2f, mean iterations %.1f",
		successes, len(replies), summary.meanMs, summary.p50Ms, summary.p95Ms, summary.meanIterations)

	if store := findSQLiteSink(e.sink); store != nil {
		dataset := e.cfg.Diagnostics.Dataset
		stored, err := store.Summarize(c.Context, dataset)
		if err != nil {
			return multierr.Combine(planErr, err)
		}
		printf(c.App.Writer, "dataset %q: %d stored, %d succeeded, mean iterations %.1f",
			dataset, stored.Requests, stored.Successes, stored.MeanIterations)
	}
	return planErr
}

func findSQLiteSink(sink diagnostics.Sink) *diagnostics.SQLiteSink {
	switch s := sink.(type) {
	case *diagnostics.SQLiteSink:
		return s
	case diagnostics.MultiSink:
		for _, inner := range s {
			if found := findSQLiteSink(inner); found != nil {
				return found
			}
		}
	}
	return nil
}

type batchSummary struct {
	meanMs, p50Ms, p95Ms float64
	meanIterations       float64
}

func summarize(elapsedMs, iterations []float64) (batchSummary, error) {
	var (
		s    batchSummary
		errs [4]error
	)
	s.meanMs, errs[0] = stats.Mean(elapsedMs)
	s.p50Ms, errs[1] = stats.Percentile(elapsedMs, 50)
	s.p95Ms, errs[2] = stats.Percentile(elapsedMs, 95)
	s.meanIterations, errs[3] = stats.Mean(iterations)
	return s, multierr.Combine(errs[:]...)
}
