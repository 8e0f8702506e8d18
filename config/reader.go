package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"github.com/milou/vrtracker/logging"
)

// Read reads a config from the given file, substituting environment variables first.
func Read(ctx context.Context, filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(ctx context.Context, originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
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
	if len(cfg.Log) > 0 {
		logger.CDebugw(ctx, "applying log patterns", "count", len(cfg.Log))
	}
	return &cfg, nil
}

// Default returns the config used when no file is given.
func Default() (*Config, error) {
	var cfg Config
	if err := cfg.Ensure(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyLogConfig re-levels registered loggers according to the config's log patterns.
func (c *Config) ApplyLogConfig(logger logging.Logger) error {
	return logging.UpdateLoggerConfig(c.Log, logger)
}
