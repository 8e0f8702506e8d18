package report

import (
	"context"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/tracking"
)

func init() {
	RegisterSink("log", resource.Registration[Sink, *LogConfig]{
		Constructor: func(ctx context.Context, conf resource.Config, logger logging.Logger) (Sink, error) {
			native, err := resource.NativeConfig[*LogConfig](conf)
			if err != nil {
				return nil, err
			}
			return NewLogSink(logger.Sublogger("readings"), native)
		},
	})
}

// LogConfig configures the log sink.
type LogConfig struct {
	// Level is the level readings are logged at. Defaults to info.
	Level string `json:"level"`
}

// Validate ensures all parts of the config are valid.
func (cfg *LogConfig) Validate(path string) error {
	if cfg.Level == "" {
		return nil
	}
	_, err := logging.LevelFromString(cfg.Level)
	return err
}

type logSink struct {
	logger logging.Logger
	level  logging.Level
}

// NewLogSink returns a sink writing one structured log entry per reading.
func NewLogSink(logger logging.Logger, cfg *LogConfig) (Sink, error) {
	level := logging.INFO
	if cfg != nil && cfg.Level != "" {
		var err error
		if level, err = logging.LevelFromString(cfg.Level); err != nil {
			return nil, err
		}
	}
	return &logSink{logger: logger, level: level}, nil
}

func (s *logSink) Report(ctx context.Context, reading tracking.DeviceReading) error {
	p, q := reading.Position, reading.Orientation
	keysAndValues := []interface{}{
		"frame", reading.Frame,
		"index", reading.Index,
		"class", reading.Class.String(),
		"position", []float64{p.X, p.Y, p.Z},
		"rotation", []float64{q.Imag, q.Jmag, q.Kmag, q.Real},
	}
	s.logger.CLogw(ctx, s.level, DeviceName(reading), keysAndValues...)
	return nil
}

func (s *logSink) Close(ctx context.Context) error {
	return s.logger.Desugar().Sync()
}
