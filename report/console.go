package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/tracking"
)

func init() {
	RegisterSink("console", resource.Registration[Sink, *ConsoleConfig]{
		Constructor: func(ctx context.Context, conf resource.Config, logger logging.Logger) (Sink, error) {
			native, err := resource.NativeConfig[*ConsoleConfig](conf)
			if err != nil {
				return nil, err
			}
			w, err := outputWriter(native.Output)
			if err != nil {
				return nil, err
			}
			return NewConsoleSink(w, native), nil
		},
	})
}

// ConsoleConfig configures the console sink.
type ConsoleConfig struct {
	// Output is stdout or stderr.
	Output string `json:"output"`
	// Color is auto, always or never. auto colors labels when the output is a terminal.
	Color     string `json:"color"`
	Precision int    `json:"precision"`
}

// Validate ensures all parts of the config are valid.
func (cfg *ConsoleConfig) Validate(path string) error {
	switch cfg.Color {
	case "", "auto", "always", "never":
	default:
		return errors.Errorf("%s: unknown color mode %q", path, cfg.Color)
	}
	if cfg.Precision < 0 || cfg.Precision > 17 {
		return errors.Errorf("%s: precision must be between 0 and 17, got %d", path, cfg.Precision)
	}
	_, err := outputWriter(cfg.Output)
	return errors.Wrap(err, path)
}

// consoleSink prints two lines per reading:
//
//	Controller 3 Position: x = 0.1, y = 1.2, z = -0.3
//	Controller 3 Rotation: x = 0, y = 0.707107, z = 0, w = 0.707107
type consoleSink struct {
	mu        sync.Mutex
	w         io.Writer
	precision int
	colors    map[tracking.DeviceClass]*color.Color
}

// NewConsoleSink returns a sink printing human readable readings to w.
func NewConsoleSink(w io.Writer, cfg *ConsoleConfig) Sink {
	if cfg == nil {
		cfg = &ConsoleConfig{}
	}
	colors := map[tracking.DeviceClass]*color.Color{
		tracking.ClassHMD:               color.New(color.FgCyan, color.Bold),
		tracking.ClassController:        color.New(color.FgGreen, color.Bold),
		tracking.ClassGenericTracker:    color.New(color.FgYellow, color.Bold),
		tracking.ClassTrackingReference: color.New(color.FgMagenta),
		tracking.ClassDisplayRedirect:   color.New(color.FgBlue),
	}
	for _, c := range colors {
		switch cfg.Color {
		case "always":
			c.EnableColor()
		case "never":
			c.DisableColor()
		}
	}
	return &consoleSink{w: w, precision: cfg.Precision, colors: colors}
}

func (s *consoleSink) label(reading tracking.DeviceReading) string {
	name := DeviceName(reading)
	if c, ok := s.colors[reading.Class]; ok {
		return c.Sprint(name)
	}
	return name
}

func (s *consoleSink) Report(ctx context.Context, reading tracking.DeviceReading) error {
	label := s.label(reading)
	p, q := reading.Position, reading.Orientation
	f := func(v float64) string { return FormatFloat(v, s.precision) }

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "%s Position: x = %s, y = %s, z = %s\n%s Rotation: x = %s, y = %s, z = %s, w = %s\n",
		label, f(p.X), f(p.Y), f(p.Z),
		label, f(q.Imag), f(q.Jmag), f(q.Kmag), f(q.Real))
	return err
}

func (s *consoleSink) Close(ctx context.Context) error {
	return nil
}
