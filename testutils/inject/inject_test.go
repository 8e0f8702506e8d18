package inject

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/milou/vrtracker/report"
	"github.com/milou/vrtracker/tracking"
)

func TestCloseWithoutReal(t *testing.T) {
	ctx := context.Background()
	test.That(t, (&Provider{}).Close(ctx), test.ShouldBeNil)
	test.That(t, (&Sink{}).Close(ctx), test.ShouldBeNil)
	test.That(t, (&Sink{}).FrameEnd(ctx, 1), test.ShouldBeNil)

	sink := &Sink{CloseFunc: func(ctx context.Context) error { return errors.New("busy") }}
	test.That(t, sink.Close(ctx), test.ShouldBeError, errors.New("busy"))
}

func TestSinkForwardsToReal(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	sink := &Sink{Sink: report.NewTableSink(&buf, &report.TableConfig{Style: "ascii"})}

	test.That(t, sink.Report(ctx, tracking.DeviceReading{Class: tracking.ClassHMD, Frame: 4}), test.ShouldBeNil)
	test.That(t, buf.Len(), test.ShouldEqual, 0)
	test.That(t, sink.FrameEnd(ctx, 4), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, "Frame 4")
	test.That(t, sink.Close(ctx), test.ShouldBeNil)
}
