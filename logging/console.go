package logging

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleWriter hides the Sync of an *os.File. Syncing a terminal or pipe fails, and console
// writes are not buffered.
type consoleWriter struct {
	io.Writer
}

func newConsoleCore(w io.Writer) zapcore.Core {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		zapcore.ISO8601TimeEncoder(t.UTC(), enc)
	}
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(consoleWriter{w})),
		zapcore.DebugLevel,
	)
}
