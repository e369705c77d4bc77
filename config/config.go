// Package config defines the planner configuration file.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/aerialnav/ltstar/logging"
	"github.com/aerialnav/ltstar/motionplan"
	"github.com/aerialnav/ltstar/motionplan/diagnostics"
	"github.com/aerialnav/ltstar/motionplan/ltstar"
)

// A Config describes how to run the planner.
type Config struct {
	ConfigFilePath string `json:"-"`

	// Scene is the occupancy map to plan in. Relative paths are resolved against the config file.
	Scene       string            `json:"scene,omitempty"`
	Planner     PlannerConfig     `json:"planner"`
	Diagnostics DiagnosticsConfig `json:"diagnostics"`
	LogLevel    logging.Level     `json:"log_level"`
}

// Ensure applies defaults and validates the config.
func (c *Config) Ensure() error {
	c.Planner.applyDefaults()
	return c.Validate("")
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if err := c.Planner.Validate(joinPath(path, "planner")); err != nil {
		return err
	}
	return c.Diagnostics.Validate(joinPath(path, "diagnostics"))
}

// ScenePath returns the scene path resolved against the config file location.
func (c *Config) ScenePath() string {
	if c.Scene == "" || filepath.IsAbs(c.Scene) || c.ConfigFilePath == "" {
		return c.Scene
	}
	return filepath.Join(filepath.Dir(c.ConfigFilePath), c.Scene)
}

// PlannerConfig holds the search and reply settings.
type PlannerConfig struct {
	RingPoints       int                     `json:"ring_points,omitempty"`
	MaxPathHops      int                     `json:"max_path_hops,omitempty"`
	RelaxationPolicy ltstar.RelaxationPolicy `json:"relaxation_policy"`
	YawMode          motionplan.YawMode      `json:"yaw_mode"`
	// UnknownGoalRadius is how close to the goal unknown space stops blocking line of sight.
	// Omitted means half the safety margin.
	UnknownGoalRadius *float64 `json:"unknown_goal_radius,omitempty"`
	BatchLimit        int      `json:"batch_limit,omitempty"`

	DefaultSafetyMargin float64 `json:"default_safety_margin,omitempty"`
	DefaultMaxTimeSecs  int     `json:"default_max_time_secs,omitempty"`
}

func (pc *PlannerConfig) applyDefaults() {
	if pc.RingPoints == 0 {
		pc.RingPoints = ltstar.DefaultRingPoints
	}
	if pc.MaxPathHops == 0 {
		pc.MaxPathHops = ltstar.DefaultMaxPathHops
	}
}

// Validate ensures all parts of the config are valid.
func (pc *PlannerConfig) Validate(path string) error {
	if pc.RingPoints < 4 || pc.RingPoints%2 != 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("ring_points must be even and at least 4, got %d", pc.RingPoints))
	}
	if pc.MaxPathHops < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("max_path_hops must be positive, got %d", pc.MaxPathHops))
	}
	if pc.DefaultSafetyMargin < 0 {
		return utils.NewConfigValidationError(path, errors.New("default_safety_margin cannot be negative"))
	}
	if pc.DefaultMaxTimeSecs < 0 {
		return utils.NewConfigValidationError(path, errors.New("default_max_time_secs cannot be negative"))
	}
	if pc.BatchLimit < 0 {
		return utils.NewConfigValidationError(path, errors.New("batch_limit cannot be negative"))
	}
	return nil
}

// SearchOptions converts the config to search options.
func (pc *PlannerConfig) SearchOptions() []ltstar.Option {
	opts := []ltstar.Option{
		ltstar.WithMaxPathHops(pc.MaxPathHops),
		ltstar.WithRelaxationPolicy(pc.RelaxationPolicy),
	}
	if pc.UnknownGoalRadius != nil {
		opts = append(opts, ltstar.WithUnknownGoalRadius(*pc.UnknownGoalRadius))
	}
	return opts
}

// DiagnosticsConfig selects where per-request records go. All outputs are optional.
type DiagnosticsConfig struct {
	Dataset    string `json:"dataset,omitempty"`
	Log        bool   `json:"log,omitempty"`
	CSVPath    string `json:"csv_path,omitempty"`
	SQLitePath string `json:"sqlite_path,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (dc *DiagnosticsConfig) Validate(path string) error {
	if dc.CSVPath != "" && strings.ToLower(filepath.Ext(dc.CSVPath)) != ".csv" {
		return utils.NewConfigValidationError(path, errors.Errorf("csv_path %q must have a .csv extension", dc.CSVPath))
	}
	if (dc.CSVPath != "" || dc.SQLitePath != "") && dc.Dataset == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "dataset")
	}
	return nil
}

// Open creates the configured sinks. It returns nil when no output is configured.
func (dc *DiagnosticsConfig) Open(logger logging.Logger) (diagnostics.Sink, error) {
	var sinks diagnostics.MultiSink
	fail := func(err error) (diagnostics.Sink, error) {
		return nil, multierr.Combine(err, sinks.Close())
	}
	if dc.Log {
		sinks = append(sinks, diagnostics.NewLogSink(logger.Sublogger("diagnostics")))
	}
	if dc.CSVPath != "" {
		s, err := diagnostics.NewCSVSink(dc.CSVPath)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	if dc.SQLitePath != "" {
		s, err := diagnostics.NewSQLiteSink(dc.SQLitePath)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

// PlannerOptions converts the config to planner options. sink may be nil.
func (c *Config) PlannerOptions(sink diagnostics.Sink) []motionplan.PlannerOption {
	opts := []motionplan.PlannerOption{
		motionplan.WithRingPoints(c.Planner.RingPoints),
		motionplan.WithYawMode(c.Planner.YawMode),
		motionplan.WithRequestDefaults(c.Planner.DefaultSafetyMargin, c.Planner.DefaultMaxTimeSecs),
		motionplan.WithSearchOptions(c.Planner.SearchOptions()...),
	}
	if c.Planner.BatchLimit > 0 {
		opts = append(opts, motionplan.WithBatchLimit(c.Planner.BatchLimit))
	}
	if sink != nil {
		opts = append(opts, motionplan.WithDiagnostics(sink, c.Diagnostics.Dataset))
	}
	return opts
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return fmt.Sprintf("%s.%s", path, field)
}
