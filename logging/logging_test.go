package logging

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"go.viam.com/test"
)

func newObservedLogger(name string, level Level) (*impl, *registry, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := newRegistry()
	return newImpl(name, level, reg, core), reg, logs
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newImpl("vrtracker", INFO, newRegistry(), newConsoleCore(&buf))

	logger.Sublogger("tracker").Infow("tracking started", "interval", "1s", "slots", 64)
	logger.Debugw("hidden")
	test.That(t, logger.Sync(), test.ShouldBeNil)

	line := strings.TrimSpace(buf.String())
	test.That(t, strings.Count(line, "\n"), test.ShouldEqual, 0)
	fields := strings.Split(line, "\t")
	test.That(t, fields, test.ShouldHaveLength, 6)
	test.That(t, fields[0], test.ShouldEndWith, "Z")
	test.That(t, fields[1], test.ShouldEqual, "INFO")
	test.That(t, fields[2], test.ShouldEqual, "vrtracker.tracker")
	test.That(t, fields[3], test.ShouldStartWith, "logging/logging_test.go:")
	test.That(t, fields[4], test.ShouldEqual, "tracking started")
	test.That(t, fields[5], test.ShouldEqual, `{"interval": "1s", "slots": 64}`)
}

func TestLevelFiltering(t *testing.T) {
	logger, _, logs := newObservedLogger("vrtracker", WARN)
	ctx := context.Background()

	logger.Infow("dropped")
	logger.CInfow(ctx, "dropped")
	logger.Warnw("kept")
	logger.CErrorw(ctx, "kept")
	logger.CLogw(ctx, DEBUG, "dropped")
	logger.CLogw(ctx, ERROR, "kept")
	test.That(t, logs.FilterMessage("dropped").Len(), test.ShouldEqual, 0)
	test.That(t, logs.FilterMessage("kept").Len(), test.ShouldEqual, 3)

	logger.SetLevel(DEBUG)
	logger.Debugw("now kept")
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, logger.Level(), test.ShouldEqual, zapcore.DebugLevel)
	test.That(t, logs.FilterMessage("now kept").Len(), test.ShouldEqual, 1)
}

func TestDebugModeContext(t *testing.T) {
	logger, _, logs := newObservedLogger("vrtracker", ERROR)
	ctx := EnableDebugMode(context.Background())
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	test.That(t, IsDebugMode(context.Background()), test.ShouldBeFalse)

	logger.CDebugw(ctx, "frame done", "frame", 3)
	logger.CWarnw(context.Background(), "skipping frame")
	test.That(t, logs.Len(), test.ShouldEqual, 1)

	entry := logs.All()[0]
	test.That(t, entry.Message, test.ShouldEqual, "frame done")
	test.That(t, entry.LoggerName, test.ShouldEqual, "vrtracker")
	test.That(t, filepath.Base(entry.Caller.File), test.ShouldEqual, "logging_test.go")
}

func TestSublogger(t *testing.T) {
	root, reg, logs := newObservedLogger("vrtracker", INFO)
	sub := root.Sublogger("sink")
	test.That(t, root.Sublogger("sink"), test.ShouldEqual, sub)
	test.That(t, sub.Sublogger("readings").(*impl).name, test.ShouldEqual, "vrtracker.sink.readings")

	_, ok := reg.lookup("vrtracker")
	test.That(t, ok, test.ShouldBeTrue)
	_, ok = reg.lookup("vrtracker.sink.readings")
	test.That(t, ok, test.ShouldBeTrue)
	_, ok = globalRegistry.lookup("vrtracker.sink.readings")
	test.That(t, ok, test.ShouldBeFalse)

	sub.Infow("Headset", "index", 0)
	fromSink := logs.Filter(func(entry observer.LoggedEntry) bool { return entry.LoggerName == "vrtracker.sink" })
	test.That(t, fromSink.Len(), test.ShouldEqual, 1)

	// unnamed test loggers are not registered, their subloggers are
	testLogger := NewTestLogger(t)
	testLogger.Sublogger("provider").Infow("simulated tracking runtime started")
	_, ok = testLogger.(*impl).registry.lookup("provider")
	test.That(t, ok, test.ShouldBeTrue)
	_, ok = testLogger.(*impl).registry.lookup("")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestUpdateLoggerConfig(t *testing.T) {
	root, reg, _ := newObservedLogger("vrtracker", INFO)
	tracker := root.Sublogger("tracker")

	t.Run("patterns reach the root", func(t *testing.T) {
		test.That(t, UpdateLoggerConfig([]LoggerPatternConfig{
			{Pattern: "vrtracker", Level: "error"},
			{Pattern: "vrtracker.*", Level: "warn"},
		}, root), test.ShouldBeNil)
		test.That(t, root.GetLevel(), test.ShouldEqual, ERROR)
		test.That(t, tracker.GetLevel(), test.ShouldEqual, WARN)
	})

	t.Run("last match wins", func(t *testing.T) {
		test.That(t, reg.update([]LoggerPatternConfig{
			{Pattern: "*", Level: "warn"},
			{Pattern: "vrtracker.tracker", Level: "debug"},
		}), test.ShouldBeNil)
		test.That(t, root.GetLevel(), test.ShouldEqual, WARN)
		test.That(t, tracker.GetLevel(), test.ShouldEqual, DEBUG)
	})

	t.Run("patterns apply to later loggers", func(t *testing.T) {
		test.That(t, root.Sublogger("config").GetLevel(), test.ShouldEqual, WARN)
	})

	t.Run("unmatched loggers keep their own level", func(t *testing.T) {
		root.SetLevel(DEBUG)
		test.That(t, root.GetLevel(), test.ShouldEqual, WARN)

		test.That(t, reg.update(nil), test.ShouldBeNil)
		test.That(t, root.GetLevel(), test.ShouldEqual, DEBUG)
		test.That(t, tracker.GetLevel(), test.ShouldEqual, INFO)
		test.That(t, root.Sublogger("sink").GetLevel(), test.ShouldEqual, DEBUG)

		test.That(t, reg.update([]LoggerPatternConfig{{Pattern: "vrtracker.sink", Level: "error"}}), test.ShouldBeNil)
		test.That(t, root.GetLevel(), test.ShouldEqual, DEBUG)
		test.That(t, root.Sublogger("sink").GetLevel(), test.ShouldEqual, ERROR)
	})

	t.Run("invalid patterns change nothing", func(t *testing.T) {
		err := reg.update([]LoggerPatternConfig{
			{Pattern: "vrtracker", Level: "error"},
			{Pattern: "vrtracker..sink", Level: "error"},
		})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "invalid logger pattern")
		test.That(t, root.GetLevel(), test.ShouldEqual, DEBUG)
	})
}

func TestLoggerPatternConfig(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		valid   bool
	}{
		{"vrtracker", true},
		{"vrtracker.tracker", true},
		{"vrtracker.*", true},
		{"*.sink", true},
		{"*", true},
		{"config-watcher_2", true},
		{"", false},
		{"vrtracker.", false},
		{".tracker", false},
		{"vrtracker..sink", false},
		{"vr tracker", false},
		{"vrtracker.sink*", false},
		{"-vrtracker", false},
	} {
		t.Run(tc.pattern, func(t *testing.T) {
			err := LoggerPatternConfig{Pattern: tc.pattern, Level: "info"}.Validate()
			if tc.valid {
				test.That(t, err, test.ShouldBeNil)
			} else {
				test.That(t, err, test.ShouldNotBeNil)
			}
		})
	}

	rule, err := LoggerPatternConfig{Pattern: "vrtracker.*.readings", Level: "debug"}.rule()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rule.level, test.ShouldEqual, DEBUG)
	test.That(t, rule.name.MatchString("vrtracker.sink.readings"), test.ShouldBeTrue)
	test.That(t, rule.name.MatchString("vrtracker.sink.log.readings"), test.ShouldBeTrue)
	test.That(t, rule.name.MatchString("vrtracker.readings"), test.ShouldBeFalse)
	test.That(t, rule.name.MatchString("vrtrackerXsinkXreadings"), test.ShouldBeFalse)

	err = LoggerPatternConfig{Pattern: "vrtracker", Level: "loud"}.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown log level")
}

func TestLevelFromString(t *testing.T) {
	for input, expected := range map[string]Level{
		"debug": DEBUG,
		"INFO":  INFO,
		"Warn":  WARN,
		"error": ERROR,
	} {
		level, err := LevelFromString(input)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, expected)
	}
	for _, input := range []string{"fatal", "panic", "verbose"} {
		_, err := LevelFromString(input)
		test.That(t, err, test.ShouldNotBeNil)
	}
	test.That(t, DEBUG.String(), test.ShouldEqual, "DEBUG")
	test.That(t, ERROR.AsZap(), test.ShouldEqual, zapcore.ErrorLevel)
}
