// Package logging provides the tracker's leveled loggers. Every logger is a zap sugared logger
// whose level can change at runtime, either directly or through name patterns from the config
// file.
package logging

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	goutils "go.viam.com/utils"
)

// Logger is a zap compatible logger with a mutable level.
type Logger interface {
	goutils.ZapCompatibleLogger

	// The C* variants log regardless of level when ctx has debug mode enabled.
	CDebugw(ctx context.Context, msg string, keysAndValues ...interface{})
	CInfow(ctx context.Context, msg string, keysAndValues ...interface{})
	CWarnw(ctx context.Context, msg string, keysAndValues ...interface{})
	CErrorw(ctx context.Context, msg string, keysAndValues ...interface{})
	CLogw(ctx context.Context, level Level, msg string, keysAndValues ...interface{})

	SetLevel(level Level)
	GetLevel() Level
	Sublogger(subname string) Logger
}

// NewLogger returns a logger writing Info+ entries to stdout in UTC. It is registered under
// name, as are its subloggers, so configured level patterns apply to all of them. Asking twice
// for the same name returns the same logger.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, globalRegistry, newConsoleCore(os.Stdout))
}

// NewTestLogger returns a Debug+ logger writing to tb.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also records every entry for assertions. Each
// test logger has its own registry.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	observed, logs := observer.New(zapcore.DebugLevel)
	testCore := zaptest.NewLogger(tb, zaptest.Level(zapcore.DebugLevel)).Core()
	return newImpl("", DEBUG, newRegistry(), zapcore.NewTee(testCore, observed)), logs
}

// UpdateLoggerConfig applies level patterns to every logger in the same tree as logger, that is
// every logger sharing its registry. Loggers no pattern matches return to their own level.
func UpdateLoggerConfig(logConfig []LoggerPatternConfig, logger Logger) error {
	reg := globalRegistry
	if imp, ok := logger.(*impl); ok {
		reg = imp.registry
	}
	return reg.update(logConfig)
}
