// Package cli contains all business logic needed by the ltstar CLI.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	flagConfig    = "config"
	flagScene     = "scene"
	flagDebug     = "debug"
	flagStart     = "start"
	flagGoal      = "goal"
	flagMargin    = "margin"
	flagMaxTime   = "max-time"
	flagRequestID = "request-id"
	flagJSON      = "json"
	flagRequests  = "requests"
	flagOutput    = "output"
	flagSliceY    = "slice-y"
)

var endpointFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     flagStart,
		Required: true,
		Usage:    "start position as `X,Y,Z`",
	},
	&cli.StringFlag{
		Name:     flagGoal,
		Required: true,
		Usage:    "goal position as `X,Y,Z`",
	},
	&cli.Float64Flag{
		Name:  flagMargin,
		Usage: "safety margin in metres, the configured default when unset",
	},
}

var app = &cli.App{
	Name:            "ltstar",
	Usage:           "plan collision free waypoints through an occupancy map",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.StringFlag{
			Name:    flagScene,
			Aliases: []string{"s"},
			Usage:   "load the occupancy map from `FILE`, overriding the configured scene",
		},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:  "plan",
			Usage: "plan a single request",
			Flags: append([]cli.Flag{
				&cli.IntFlag{
					Name:  flagMaxTime,
					Usage: "search budget in seconds, the configured default when unset",
				},
				&cli.StringFlag{
					Name:  flagRequestID,
					Usage: "request id, generated when empty",
				},
				&cli.BoolFlag{
					Name:  flagJSON,
					Usage: "print the reply as JSON",
				},
			}, endpointFlags...),
			Action: PlanAction,
		},
		{
			Name:      "batch",
			Usage:     "plan every request in a JSON file concurrently and summarize",
			UsageText: "ltstar batch --requests <FILE>",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     flagRequests,
					Required: true,
					Usage:    "JSON array of requests",
				},
			},
			Action: BatchAction,
		},
		{
			Name:  "check",
			Usage: "report whether the straight corridor between two points is free",
			Flags: append([]cli.Flag{
				&cli.BoolFlag{
					Name:  flagJSON,
					Usage: "print the result as JSON",
				},
			}, endpointFlags...),
			Action: CheckAction,
		},
		{
			Name:  "plot",
			Usage: "draw a side view of the map, optionally with a planned path",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     flagOutput,
					Required: true,
					Usage:    "PNG file to write",
				},
				&cli.Float64Flag{
					Name:  flagSliceY,
					Usage: "draw occupied voxels crossing the plane at this Y",
				},
				&cli.StringFlag{
					Name:  flagStart,
					Usage: "start position as `X,Y,Z`",
				},
				&cli.StringFlag{
					Name:  flagGoal,
					Usage: "goal position as `X,Y,Z`",
				},
				&cli.Float64Flag{
					Name:  flagMargin,
					Usage: "safety margin in metres, the configured default when unset",
				},
				&cli.IntFlag{
					Name:  flagMaxTime,
					Usage: "search budget in seconds, the configured default when unset",
				},
			},
			Action: PlotAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
