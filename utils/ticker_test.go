package utils

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap/zaptest/observer"
	"go.viam.com/test"

	"github.com/milou/vrtracker/logging"
)

func waitForLogs(t *testing.T, logs *observer.ObservedLogs, msg string, n int) {
	t.Helper()
	for i := 0; i < 500 && logs.FilterMessage(msg).Len() < n; i++ {
		time.Sleep(2 * time.Millisecond)
	}
	test.That(t, logs.FilterMessage(msg).Len(), test.ShouldEqual, n)
}

func TestSlowLogger(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	clk := clock.NewMock()

	stop := SlowLogger(context.Background(), clk, "still waiting", "frame", uint64(7), logger)
	clk.Add(time.Second)
	test.That(t, logs.FilterMessage("still waiting").Len(), test.ShouldEqual, 0)

	clk.Add(time.Second)
	waitForLogs(t, logs, "still waiting", 1)
	fields := logs.FilterMessage("still waiting").All()[0].ContextMap()
	test.That(t, fields["frame"], test.ShouldEqual, uint64(7))
	test.That(t, fields["time_elapsed"], test.ShouldEqual, "2s")

	clk.Add(3 * time.Second)
	waitForLogs(t, logs, "still waiting", 2)

	stop()
	clk.Add(time.Minute)
	time.Sleep(10 * time.Millisecond)
	test.That(t, logs.FilterMessage("still waiting").Len(), test.ShouldEqual, 2)
}

func TestSlowLoggerContextDone(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	clk := clock.NewMock()
	ctx, cancel := context.WithCancel(context.Background())

	stop := SlowLogger(ctx, clk, "still waiting", "frame", 1, logger)
	defer stop()
	cancel()
	time.Sleep(10 * time.Millisecond)
	clk.Add(time.Minute)
	time.Sleep(10 * time.Millisecond)
	test.That(t, logs.FilterMessage("still waiting").Len(), test.ShouldEqual, 0)
}

func TestGuard(t *testing.T) {
	var cleanups int
	func() {
		guard := NewGuard(func() { cleanups++ })
		defer guard.OnFail()
	}()
	test.That(t, cleanups, test.ShouldEqual, 1)

	func() {
		guard := NewGuard(func() { cleanups++ })
		defer guard.OnFail()
		guard.Success()
	}()
	test.That(t, cleanups, test.ShouldEqual, 1)
}

func TestEnvTrue(t *testing.T) {
	t.Setenv(DebugEnvVar, "yes")
	test.That(t, EnvTrue(DebugEnvVar), test.ShouldBeTrue)
	t.Setenv(DebugEnvVar, "no")
	test.That(t, EnvTrue(DebugEnvVar), test.ShouldBeFalse)
	t.Setenv(DebugEnvVar, "")
	test.That(t, EnvTrue(DebugEnvVar), test.ShouldBeFalse)

	logger, logs := logging.NewObservedTestLogger(t)
	t.Setenv(ConfigEnvVar, "/etc/vrtracker.json")
	LogEnvVariables("environment", logger)
	entries := logs.FilterMessage("environment").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].ContextMap()["environment"], test.ShouldContain, "VRTRACKER_CONFIG=/etc/vrtracker.json")
}
