package replay

import (
	"context"
	"os"
	"sync"

	goutils "go.viam.com/utils"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/tracking"
)

func init() {
	tracking.RegisterProvider("replay", resource.Registration[tracking.Provider, *Config]{
		Constructor: func(ctx context.Context, conf resource.Config, logger logging.Logger) (tracking.Provider, error) {
			native, err := resource.NativeConfig[*Config](conf)
			if err != nil {
				return nil, err
			}
			return NewProvider(native, logger)
		},
	})
}

// Config configures the replay provider.
type Config struct {
	Path       string `json:"path"`
	Loop       bool   `json:"loop"`
	MaxDevices int    `json:"max_devices"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Path == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "path")
	}
	if cfg.MaxDevices < 0 {
		return goutils.NewConfigValidationError(path, errNegativeMaxDevices)
	}
	return nil
}

// Provider replays a recording one frame per poll. The origin requested by the caller is
// ignored since a recording already holds poses in the origin they were captured in.
type Provider struct {
	mu     sync.Mutex
	logger logging.Logger

	frames     []Frame
	loop       bool
	maxDevices int
	next       int
	ended      bool
	classes    map[int]tracking.DeviceClass
	closed     bool
}

// NewProvider loads the recording at cfg.Path.
func NewProvider(cfg *Config, logger logging.Logger) (*Provider, error) {
	if err := cfg.Validate("replay"); err != nil {
		return nil, tracking.NewInitErrorf(tracking.InitErrorInvalidConfig, "%s", err.Error())
	}
	//nolint:gosec
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, tracking.NewInitErrorf(tracking.InitErrorFileNotFound, "%s: %v", tracking.InitErrorFileNotFound.Description(), err)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	frames, err := ReadFrames(f)
	if err != nil {
		return nil, tracking.NewInitErrorf(tracking.InitErrorInvalidConfig, "malformed recording %s: %v", cfg.Path, err)
	}
	return newProvider(frames, cfg.Loop, cfg.MaxDevices, logger)
}

func newProvider(frames []Frame, loop bool, maxDevices int, logger logging.Logger) (*Provider, error) {
	if maxDevices == 0 {
		maxDevices = tracking.MaxTrackedDevices
	}
	for _, frame := range frames {
		for _, dev := range frame.Devices {
			if dev.Index < 0 || dev.Index >= maxDevices {
				return nil, tracking.NewInitErrorf(tracking.InitErrorInvalidConfig,
					"recorded frame %d has device index %d outside [0, %d)", frame.Frame, dev.Index, maxDevices)
			}
		}
	}
	logger.Infow("replaying recording", "frames", len(frames), "loop", loop)
	return &Provider{
		logger:     logger,
		frames:     frames,
		loop:       loop,
		maxDevices: maxDevices,
		classes:    map[int]tracking.DeviceClass{},
	}, nil
}

// MaxDeviceCount returns the slot count of replayed tables.
func (p *Provider) MaxDeviceCount() int {
	return p.maxDevices
}

// DevicePoses returns the next recorded frame. Once the recording is exhausted, and looping is
// off, every slot is invalid.
func (p *Provider) DevicePoses(ctx context.Context, origin tracking.Origin) (tracking.PoseTable, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errNotRunning
	}

	table := tracking.NewPoseTable(p.maxDevices)
	clear(p.classes)
	if p.next >= len(p.frames) {
		if !p.loop || len(p.frames) == 0 {
			if !p.ended {
				p.ended = true
				p.logger.CInfow(ctx, "recording ended", "frames", len(p.frames))
			}
			return table, nil
		}
		p.next = 0
	}

	frame := p.frames[p.next]
	p.next++
	for _, dev := range frame.Devices {
		p.classes[dev.Index] = dev.Class
		table[dev.Index] = tracking.DevicePose{Valid: dev.Valid, Transform: dev.Transform}
	}
	return table, nil
}

// DeviceClass returns the class recorded for the slot in the frame last returned by DevicePoses.
// Slots absent from that frame are ClassOther.
func (p *Provider) DeviceClass(ctx context.Context, index int) tracking.DeviceClass {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.classes[index]
}

// Close stops the replay.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
