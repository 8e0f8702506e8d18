// Package tracker implements the polling loop: fetch the pose table from a tracking provider,
// decode every valid slot, and hand readings of reported device classes to their handlers.
package tracker

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/report"
	"github.com/milou/vrtracker/spatialmath"
	"github.com/milou/vrtracker/tracking"
	"github.com/milou/vrtracker/utils"
)

// DefaultInterval is the wait between two polls.
const DefaultInterval = time.Second

// A Handler consumes the readings of one device class.
type Handler interface {
	Handle(ctx context.Context, reading tracking.DeviceReading) error
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(ctx context.Context, reading tracking.DeviceReading) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, reading tracking.DeviceReading) error {
	return f(ctx, reading)
}

// Params configures a Tracker.
type Params struct {
	Provider tracking.Provider
	Sink     report.Sink
	Origin   tracking.Origin

	// Interval defaults to DefaultInterval. Zero is only allowed with ZeroInterval set.
	Interval     time.Duration
	ZeroInterval bool

	// Classes are the device classes reported to Sink. Defaults to
	// tracking.DefaultReportedClasses.
	Classes []tracking.DeviceClass

	// Clock defaults to the wall clock.
	Clock  clock.Clock
	Logger logging.Logger
}

// FrameStats summarizes one poll.
type FrameStats struct {
	Frame      uint64
	Slots      int
	Valid      int
	Reported   int
	Ignored    int
	SinkErrors int
}

// Tracker polls a provider at a fixed interval. It is not safe for concurrent use; Run owns it
// for its whole lifetime.
type Tracker struct {
	provider tracking.Provider
	sink     report.Sink
	origin   tracking.Origin
	interval time.Duration
	clock    clock.Clock
	logger   logging.Logger

	handlers map[tracking.DeviceClass]Handler
	frame    uint64

	fetchLatencies []float64
}

// New returns a Tracker for the given params.
func New(params Params) (*Tracker, error) {
	if params.Provider == nil {
		return nil, errors.New("tracker requires a provider")
	}
	if params.Sink == nil {
		return nil, errors.New("tracker requires a sink")
	}
	if params.Interval < 0 {
		return nil, errors.Errorf("interval must be non-negative, got %s", params.Interval)
	}
	interval := params.Interval
	if interval == 0 && !params.ZeroInterval {
		interval = DefaultInterval
	}
	clk := params.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = logging.NewLogger("tracker")
	}
	classes := params.Classes
	if len(classes) == 0 {
		classes = tracking.DefaultReportedClasses
	}

	t := &Tracker{
		provider: params.Provider,
		sink:     params.Sink,
		origin:   params.Origin,
		interval: interval,
		clock:    clk,
		logger:   logger,
		handlers: make(map[tracking.DeviceClass]Handler, len(classes)),
	}
	sinkHandler := HandlerFunc(t.sink.Report)
	for _, class := range classes {
		if class == tracking.ClassOther || !class.Known() {
			return nil, errors.Errorf("device class %q cannot be reported", class)
		}
		t.handlers[class] = sinkHandler
	}
	return t, nil
}

// Handle sets the handler for a device class, replacing the sink for that class. A nil
// handler stops the class from being reported.
func (t *Tracker) Handle(class tracking.DeviceClass, handler Handler) {
	if handler == nil {
		delete(t.handlers, class)
		return
	}
	t.handlers[class] = handler
}

// Step runs one poll. A failed fetch is returned and no slot is visited. Once the poses are
// fetched, the frame runs to completion even if ctx is cancelled. Handler failures are logged and
// counted and do not stop the remaining slots. The sink is told when the frame ends.
func (t *Tracker) Step(ctx context.Context) (FrameStats, error) {
	t.frame++
	stats := FrameStats{Frame: t.frame}

	fetchStart := t.clock.Now()
	stopSlowLogger := utils.SlowLogger(ctx, t.clock, "still waiting for device poses", "frame", stats.Frame, t.logger)
	table, err := t.provider.DevicePoses(ctx, t.origin)
	stopSlowLogger()
	if err != nil {
		return stats, errors.Wrapf(err, "failed to fetch poses for frame %d", stats.Frame)
	}
	t.recordFetchLatency(t.clock.Since(fetchStart))
	stats.Slots = len(table)
	capturedAt := t.clock.Now()
	frameCtx := context.WithoutCancel(ctx)

	for index, slot := range table {
		if !slot.Valid {
			continue
		}
		stats.Valid++

		class := t.provider.DeviceClass(frameCtx, index)
		handler, ok := t.handlers[class]
		if !ok {
			stats.Ignored++
			continue
		}

		position, orientation := spatialmath.DecodePose(slot.Transform)
		reading := tracking.DeviceReading{
			Index:       index,
			Class:       class,
			Position:    position,
			Orientation: orientation,
			Frame:       stats.Frame,
			CapturedAt:  capturedAt,
		}
		if err := handler.Handle(frameCtx, reading); err != nil {
			stats.SinkErrors++
			t.logger.CWarnw(frameCtx, "failed to report device reading",
				"frame", stats.Frame, "index", index, "class", class.String(), "error", err)
			continue
		}
		stats.Reported++
	}
	if err := report.EndFrame(frameCtx, t.sink, stats.Frame); err != nil {
		stats.SinkErrors++
		t.logger.CWarnw(frameCtx, "failed to end frame", "frame", stats.Frame, "error", err)
	}
	return stats, nil
}

// Run polls until ctx is done, then closes the provider and the sink. Cancellation is observed
// while waiting between polls and during a fetch, so a frame whose poses were fetched is always
// fully reported. Run returns nil
// when stopped by ctx.
func (t *Tracker) Run(ctx context.Context) (err error) {
	defer func() {
		//nolint:contextcheck
		err = multierr.Combine(err, t.close(context.Background()))
	}()

	t.logger.CInfow(ctx, "tracking started",
		"interval", t.interval.String(), "origin", t.origin.String(), "slots", t.provider.MaxDeviceCount())
	for {
		if ctx.Err() != nil {
			break
		}

		stats, err := t.Step(ctx)
		if err != nil {
			t.logger.CWarnw(ctx, "skipping frame", "error", err)
		} else {
			t.logger.CDebugw(ctx, "frame done",
				"frame", stats.Frame, "valid", stats.Valid, "reported", stats.Reported, "ignored", stats.Ignored)
		}

		timer := t.clock.Timer(t.interval)
		if !goutils.SelectContextOrWaitChan(ctx, timer.C) {
			timer.Stop()
			break
		}
	}
	latency, latencyErr := t.FetchLatency()
	if latencyErr != nil {
		t.logger.CWarnw(ctx, "failed to summarize fetch latency", "error", latencyErr)
	}
	t.logger.CInfow(ctx, "tracking stopped", "frames", t.frame,
		"fetch_mean", latency.Mean.String(), "fetch_p95", latency.P95.String(), "fetch_max", latency.Max.String())
	return nil
}

func (t *Tracker) close(ctx context.Context) error {
	return multierr.Combine(
		errors.Wrap(t.provider.Close(ctx), "failed to close provider"),
		errors.Wrap(t.sink.Close(ctx), "failed to close sink"),
	)
}
