package logging

import (
	"context"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	*zap.SugaredLogger
	// ctxLogger skips one more caller frame for the C* methods. forced also ignores the level,
	// for contexts in debug mode.
	ctxLogger *zap.SugaredLogger
	forced    *zap.SugaredLogger

	name string
	core zapcore.Core
	// level is what the logger filters on. base is what it returns to when no pattern matches.
	level    zap.AtomicLevel
	base     *atomic.Int32
	registry *registry
}

func newImpl(name string, base Level, reg *registry, core zapcore.Core) *impl {
	imp := &impl{
		name:     name,
		core:     core,
		level:    zap.NewAtomicLevelAt(base.AsZap()),
		base:     atomic.NewInt32(int32(base)),
		registry: reg,
	}
	leveled := zap.New(&leveledCore{Core: core, level: imp.level}, zap.AddCaller()).Named(name)
	imp.SugaredLogger = leveled.Sugar()
	imp.ctxLogger = leveled.WithOptions(zap.AddCallerSkip(1)).Sugar()
	imp.forced = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Named(name).Sugar()
	if name == "" {
		return imp
	}
	return reg.getOrRegister(name, imp)
}

// Sublogger returns the logger named "<name>.<subname>". A new sublogger starts at the parent's
// own level and then takes any matching configured pattern.
func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return newImpl(name, Level(imp.base.Load()), imp.registry, imp.core)
}

// SetLevel sets the logger's own level. Configured patterns still override it until they no
// longer match.
func (imp *impl) SetLevel(level Level) {
	imp.base.Store(int32(level))
	imp.registry.relevel(imp)
}

func (imp *impl) GetLevel() Level {
	return Level(imp.level.Level())
}

func (imp *impl) logger(ctx context.Context) *zap.SugaredLogger {
	if IsDebugMode(ctx) {
		return imp.forced
	}
	return imp.ctxLogger
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.logger(ctx).Debugw(msg, keysAndValues...)
}

func (imp *impl) CInfow(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.logger(ctx).Infow(msg, keysAndValues...)
}

func (imp *impl) CWarnw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.logger(ctx).Warnw(msg, keysAndValues...)
}

func (imp *impl) CErrorw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.logger(ctx).Errorw(msg, keysAndValues...)
}

func (imp *impl) CLogw(ctx context.Context, level Level, msg string, keysAndValues ...interface{}) {
	imp.logger(ctx).Logw(level.AsZap(), msg, keysAndValues...)
}

// leveledCore filters a shared core by one logger's level.
type leveledCore struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c *leveledCore) Enabled(level zapcore.Level) bool {
	return c.level.Enabled(level)
}

func (c *leveledCore) Level() zapcore.Level {
	return c.level.Level()
}

func (c *leveledCore) With(fields []zapcore.Field) zapcore.Core {
	return &leveledCore{Core: c.Core.With(fields), level: c.level}
}

func (c *leveledCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return checked
	}
	return c.Core.Check(entry, checked)
}
