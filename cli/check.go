package cli

import (
	"encoding/json"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
)

// CheckAction reports whether the straight corridor between start and goal is free.
func CheckAction(c *cli.Context) (err error) {
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

	margin := e.cfg.Planner.DefaultSafetyMargin
	if c.IsSet(flagMargin) {
		margin = c.Float64(flagMargin)
	}
	free, err := e.planner.CorridorFree(start, goal, margin)
	if err != nil {
		return err
	}

	if c.Bool(flagJSON) {
		out, err := json.Marshal(map[string]bool{"free": free})
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", out)
		return nil
	}
	if free {
		printf(c.App.Writer, "corridor %s -> %s is free", formatPoint(start), formatPoint(goal))
	} else {
		printf(c.App.Writer, "corridor %s -> %s is blocked", formatPoint(start), formatPoint(goal))
	}
	return nil
}
