package report

import (
	"context"

	"go.uber.org/multierr"

	"github.com/milou/vrtracker/tracking"
)

type multiSink []Sink

// NewMultiSink returns a sink reporting to every given sink in order. A failing sink does not
// stop the others; all errors are combined.
func NewMultiSink(sinks ...Sink) Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return multiSink(sinks)
}

func (ms multiSink) Report(ctx context.Context, reading tracking.DeviceReading) error {
	var err error
	for _, s := range ms {
		err = multierr.Combine(err, s.Report(ctx, reading))
	}
	return err
}

func (ms multiSink) FrameEnd(ctx context.Context, frame uint64) error {
	var err error
	for _, s := range ms {
		err = multierr.Combine(err, EndFrame(ctx, s, frame))
	}
	return err
}

func (ms multiSink) Close(ctx context.Context) error {
	var err error
	for _, s := range ms {
		err = multierr.Combine(err, s.Close(ctx))
	}
	return err
}

type closer interface {
	Close() error
}

// multiCloseErr closes c and combines its error with err.
func multiCloseErr(err error, c closer) error {
	return multierr.Combine(err, c.Close())
}
