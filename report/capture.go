package report

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	goutils "go.viam.com/utils"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/tracking"
)

func init() {
	RegisterSink("capture", resource.Registration[Sink, *CaptureConfig]{
		Constructor: func(ctx context.Context, conf resource.Config, logger logging.Logger) (Sink, error) {
			native, err := resource.NativeConfig[*CaptureConfig](conf)
			if err != nil {
				return nil, err
			}
			return NewCaptureSink(native, logger)
		},
	})
}

// CaptureConfig configures the capture sink.
type CaptureConfig struct {
	Path string `json:"path"`
	// MaxSizeMB is the size a capture file may grow to before it is rotated. Defaults to 100.
	MaxSizeMB  int  `json:"max_size_mb"`
	MaxBackups int  `json:"max_backups"`
	Compress   bool `json:"compress"`
	// Session tags every line. Defaults to a random UUID.
	Session string `json:"session"`
}

// Validate ensures all parts of the config are valid.
func (cfg *CaptureConfig) Validate(path string) error {
	if cfg.Path == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "path")
	}
	return nil
}

// CaptureRecord is one line of a capture file.
type CaptureRecord struct {
	Session    string    `json:"session"`
	Frame      uint64    `json:"frame"`
	CapturedAt time.Time `json:"captured_at"`
	Index      int       `json:"index"`
	Class      string    `json:"class"`
	Position   struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"position"`
	Rotation struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
		W float64 `json:"w"`
	} `json:"rotation"`
}

// NewCaptureRecord flattens a reading into a capture line.
func NewCaptureRecord(session string, reading tracking.DeviceReading) CaptureRecord {
	rec := CaptureRecord{
		Session:    session,
		Frame:      reading.Frame,
		CapturedAt: reading.CapturedAt,
		Index:      reading.Index,
		Class:      reading.Class.String(),
	}
	rec.Position.X, rec.Position.Y, rec.Position.Z = reading.Position.X, reading.Position.Y, reading.Position.Z
	q := reading.Orientation
	rec.Rotation.X, rec.Rotation.Y, rec.Rotation.Z, rec.Rotation.W = q.Imag, q.Jmag, q.Kmag, q.Real
	return rec
}

// captureSink appends one JSON object per reading to a size rotated file.
type captureSink struct {
	mu      sync.Mutex
	session string
	out     io.WriteCloser
	enc     *json.Encoder
}

// NewCaptureSink opens a capture file as described by cfg.
func NewCaptureSink(cfg *CaptureConfig, logger logging.Logger) (Sink, error) {
	if err := cfg.Validate("capture"); err != nil {
		return nil, err
	}
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	out := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	session := cfg.Session
	if session == "" {
		session = uuid.NewString()
	}
	logger.Infow("capturing readings", "path", cfg.Path, "session", session)
	return newCaptureSink(session, out), nil
}

func newCaptureSink(session string, out io.WriteCloser) *captureSink {
	return &captureSink{session: session, out: out, enc: json.NewEncoder(out)}
}

func (s *captureSink) Report(ctx context.Context, reading tracking.DeviceReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(NewCaptureRecord(s.session, reading))
}

func (s *captureSink) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Close()
}
