// Package report contains the destinations that decoded device readings are written to.
package report

import (
	"context"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/tracking"
)

// A Sink receives every reported device reading.
type Sink interface {
	Report(ctx context.Context, reading tracking.DeviceReading) error
	Close(ctx context.Context) error
}

// A FrameEnder is a Sink that buffers the readings of a frame until told the frame is complete.
type FrameEnder interface {
	FrameEnd(ctx context.Context, frame uint64) error
}

// EndFrame tells sink that frame is complete if sink is a FrameEnder.
func EndFrame(ctx context.Context, sink Sink, frame uint64) error {
	if fe, ok := sink.(FrameEnder); ok {
		return fe.FrameEnd(ctx, frame)
	}
	return nil
}

var registry = resource.NewRegistry[Sink]("sink")

// RegisterSink registers a sink type with its constructor.
func RegisterSink[ConfigT any](typeName string, reg resource.Registration[Sink, ConfigT]) {
	resource.Register(registry, typeName, reg)
}

// RegisteredSinks returns the registered sink type names.
func RegisteredSinks() []string {
	return registry.Types()
}

// ConvertConfig converts and validates the attributes of a sink config in place.
func ConvertConfig(conf *resource.Config, path string) error {
	return registry.Convert(conf, path)
}

// NewSink constructs the sink described by conf.
func NewSink(ctx context.Context, conf resource.Config, logger logging.Logger) (Sink, error) {
	return registry.New(ctx, conf, logger)
}
