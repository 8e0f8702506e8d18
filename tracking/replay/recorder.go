package replay

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/tracking"
)

// Recorder is a provider that writes every table fetched from the wrapped provider as a
// recording line. Only valid slots are written.
type Recorder struct {
	tracking.Provider

	mu     sync.Mutex
	out    io.WriteCloser
	enc    *json.Encoder
	frame  uint64
	logger logging.Logger
}

// NewRecorder records the tables of inner to a new file at path.
func NewRecorder(inner tracking.Provider, path string, logger logging.Logger) (*Recorder, error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create recording")
	}
	logger.Infow("recording tracking session", "path", path)
	return NewRecorderWriter(inner, f, logger), nil
}

// NewRecorderWriter records the tables of inner to out.
func NewRecorderWriter(inner tracking.Provider, out io.WriteCloser, logger logging.Logger) *Recorder {
	return &Recorder{Provider: inner, out: out, enc: json.NewEncoder(out), logger: logger}
}

// DevicePoses fetches from the wrapped provider and records the result. A failure to record is
// logged and does not fail the fetch.
func (r *Recorder) DevicePoses(ctx context.Context, origin tracking.Origin) (tracking.PoseTable, error) {
	table, err := r.Provider.DevicePoses(ctx, origin)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame++
	frame := Frame{Frame: r.frame, Devices: []Device{}}
	for index, slot := range table {
		if !slot.Valid {
			continue
		}
		frame.Devices = append(frame.Devices, Device{
			Index:     index,
			Class:     r.Provider.DeviceClass(ctx, index),
			Valid:     true,
			Transform: slot.Transform,
		})
	}
	if err := r.enc.Encode(frame); err != nil {
		r.logger.CWarnw(ctx, "failed to record frame", "frame", r.frame, "error", err)
	}
	return table, nil
}

// Close closes the wrapped provider and the recording.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return multierr.Combine(r.Provider.Close(ctx), r.out.Close())
}
