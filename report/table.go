package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/tracking"
)

func init() {
	RegisterSink("table", resource.Registration[Sink, *TableConfig]{
		Constructor: func(ctx context.Context, conf resource.Config, logger logging.Logger) (Sink, error) {
			native, err := resource.NativeConfig[*TableConfig](conf)
			if err != nil {
				return nil, err
			}
			w, err := outputWriter(native.Output)
			if err != nil {
				return nil, err
			}
			return NewTableSink(w, native), nil
		},
	})
}

var tableStyles = map[string]table.Style{
	"":        table.StyleLight,
	"light":   table.StyleLight,
	"rounded": table.StyleRounded,
	"double":  table.StyleDouble,
	"ascii":   table.StyleDefault,
}

// TableConfig configures the table sink.
type TableConfig struct {
	Output    string `json:"output"`
	Style     string `json:"style"`
	Precision int    `json:"precision"`
}

// Validate ensures all parts of the config are valid.
func (cfg *TableConfig) Validate(path string) error {
	if _, ok := tableStyles[cfg.Style]; !ok {
		return errors.Errorf("%s: unknown table style %q", path, cfg.Style)
	}
	_, err := outputWriter(cfg.Output)
	return errors.Wrap(err, path)
}

// tableSink buffers the readings of one frame and renders them as a single table when the frame
// ends. A reading from a later frame or Close also flushes what is pending.
type tableSink struct {
	mu        sync.Mutex
	w         io.Writer
	style     table.Style
	precision int

	frame   uint64
	pending []tracking.DeviceReading
}

// NewTableSink returns a sink rendering one table per frame to w.
func NewTableSink(w io.Writer, cfg *TableConfig) Sink {
	if cfg == nil {
		cfg = &TableConfig{}
	}
	return &tableSink{w: w, style: tableStyles[cfg.Style], precision: cfg.Precision}
}

func (s *tableSink) Report(ctx context.Context, reading tracking.DeviceReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if len(s.pending) > 0 && reading.Frame != s.frame {
		err = s.flushLocked()
	}
	s.frame = reading.Frame
	s.pending = append(s.pending, reading)
	return err
}

func (s *tableSink) flushLocked() error {
	if len(s.pending) == 0 {
		return nil
	}
	f := func(v float64) string { return FormatFloat(v, s.precision) }

	t := table.NewWriter()
	t.SetStyle(s.style)
	t.SetTitle(fmt.Sprintf("Frame %d (%s)", s.frame, s.pending[0].CapturedAt.Format("15:04:05.000")))
	t.AppendHeader(table.Row{"Device", "X", "Y", "Z", "QX", "QY", "QZ", "QW"})
	for _, r := range s.pending {
		p, q := r.Position, r.Orientation
		t.AppendRow(table.Row{DeviceName(r), f(p.X), f(p.Y), f(p.Z), f(q.Imag), f(q.Jmag), f(q.Kmag), f(q.Real)})
	}
	s.pending = s.pending[:0]

	_, err := fmt.Fprintln(s.w, t.Render())
	return err
}

func (s *tableSink) FrameEnd(ctx context.Context, frame uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame != frame {
		return nil
	}
	return s.flushLocked()
}

func (s *tableSink) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}
