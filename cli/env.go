package cli

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/aerialnav/ltstar/config"
	"github.com/aerialnav/ltstar/logging"
	"github.com/aerialnav/ltstar/motionplan"
	"github.com/aerialnav/ltstar/motionplan/diagnostics"
	"github.com/aerialnav/ltstar/octree"
)

// env is everything a command needs: the config, the map and a planner over it.
type env struct {
	cfg     *config.Config
	tree    *octree.Octree
	logger  logging.Logger
	planner *motionplan.Planner
	sink    diagnostics.Sink
}

// newEnv loads the config and scene named by the global flags. extra sinks receive diagnostics
// alongside the configured ones.
func newEnv(c *cli.Context, extra ...diagnostics.Sink) (*env, error) {
	logger := logging.NewLogger("ltstar")

	var (
		cfg *config.Config
		err error
	)
	if path := c.String(flagConfig); path != "" {
		cfg, err = config.Read(path, logger)
	} else {
		cfg, err = config.FromReader("", strings.NewReader("{}"), logger)
	}
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.LogLevel)
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	}

	scenePath := c.String(flagScene)
	if scenePath == "" {
		scenePath = cfg.ScenePath()
	}
	if scenePath == "" {
		return nil, errors.Errorf("no scene given, pass --%s or set \"scene\" in the config", flagScene)
	}
	scene, err := octree.ReadScene(scenePath)
	if err != nil {
		return nil, err
	}
	tree, err := scene.Build(logger.Sublogger("octree"))
	if err != nil {
		return nil, errors.Wrapf(err, "building scene %q", scenePath)
	}

	sink, err := cfg.Diagnostics.Open(logger)
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		sinks := diagnostics.MultiSink(extra)
		if sink != nil {
			sinks = append(sinks, sink)
		}
		sink = sinks
	}

	return &env{
		cfg:     cfg,
		tree:    tree,
		logger:  logger,
		planner: motionplan.NewPlanner(tree, logger.Sublogger("planner"), cfg.PlannerOptions(sink)...),
		sink:    sink,
	}, nil
}

func (e *env) Close() error {
	var err error
	if e.sink != nil {
		err = e.sink.Close()
	}
	return multierr.Combine(err, e.logger.Sync())
}
