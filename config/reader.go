package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"github.com/aerialnav/ltstar/logging"
)

// Read reads a config from the given file. Environment variables in the file are expanded.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := Config{
		ConfigFilePath: originalPath,
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	if err := cfg.Ensure(); err != nil {
		return nil, errors.Wrapf(err, "failed to process Config")
	}
	logger.Debugw("read config", "path", originalPath, "planner", cfg.Planner, "diagnostics", cfg.Diagnostics)
	return &cfg, nil
}
