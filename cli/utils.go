package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/aerialnav/ltstar/motionplan"
)

// parsePoint reads a point written as "x,y,z".
func parsePoint(raw string) (r3.Vector, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return r3.Vector{}, errors.Errorf("point %q must be written as X,Y,Z", raw)
	}
	var coords [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return r3.Vector{}, errors.Wrapf(err, "point %q", raw)
		}
		coords[i] = v
	}
	return r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

func endpoints(start, goal string) (r3.Vector, r3.Vector, error) {
	s, err := parsePoint(start)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, errors.Wrap(err, "bad start")
	}
	g, err := parsePoint(goal)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, errors.Wrap(err, "bad goal")
	}
	return s, g, nil
}

// requestFromFlags builds a request between start and goal. The margin and budget are only set when
// their flags are given, so an explicit 0 stays 0 and an unset flag takes the configured default.
func requestFromFlags(c *cli.Context, start, goal r3.Vector) motionplan.Request {
	req := motionplan.Request{Start: start, Goal: goal, RequestID: c.String(flagRequestID)}
	if c.IsSet(flagMargin) {
		req.SafetyMargin = lo.ToPtr(c.Float64(flagMargin))
	}
	if c.IsSet(flagMaxTime) {
		req.MaxTimeSecs = lo.ToPtr(c.Int(flagMaxTime))
	}
	return req
}

func formatPoint(p r3.Vector) string {
	return fmt.Sprintf("%.2f, %.2f, %.2f", p.X, p.Y, p.Z)
}

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}
