package inject

import (
	"context"

	"github.com/milou/vrtracker/report"
	"github.com/milou/vrtracker/tracking"
)

// Sink is an injected report sink.
type Sink struct {
	report.Sink
	ReportFunc   func(ctx context.Context, reading tracking.DeviceReading) error
	FrameEndFunc func(ctx context.Context, frame uint64) error
	CloseFunc    func(ctx context.Context) error
}

// Report calls the injected Report or the real version.
func (s *Sink) Report(ctx context.Context, reading tracking.DeviceReading) error {
	if s.ReportFunc == nil {
		return s.Sink.Report(ctx, reading)
	}
	return s.ReportFunc(ctx, reading)
}

// FrameEnd calls the injected FrameEnd or the real version.
func (s *Sink) FrameEnd(ctx context.Context, frame uint64) error {
	if s.FrameEndFunc == nil {
		if s.Sink == nil {
			return nil
		}
		return report.EndFrame(ctx, s.Sink, frame)
	}
	return s.FrameEndFunc(ctx, frame)
}

// Close calls the injected Close or the real version.
func (s *Sink) Close(ctx context.Context) error {
	if s.CloseFunc == nil {
		if s.Sink == nil {
			return nil
		}
		return s.Sink.Close(ctx)
	}
	return s.CloseFunc(ctx)
}
