package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Level is a log level. The zero value is INFO.
type Level int8

// Levels, in increasing severity.
const (
	DEBUG = Level(zapcore.DebugLevel)
	INFO  = Level(zapcore.InfoLevel)
	WARN  = Level(zapcore.WarnLevel)
	ERROR = Level(zapcore.ErrorLevel)
)

// AsZap converts the Level to a zapcore.Level.
func (level Level) AsZap() zapcore.Level {
	return zapcore.Level(level)
}

func (level Level) String() string {
	return level.AsZap().CapitalString()
}

// LevelFromString parses one of debug, info, warn or error, ignoring case.
func LevelFromString(inp string) (Level, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(strings.ToLower(inp))); err != nil ||
		zapLevel < zapcore.DebugLevel || zapLevel > zapcore.ErrorLevel {
		return INFO, errors.Errorf("unknown log level: %q", inp)
	}
	return Level(zapLevel), nil
}
