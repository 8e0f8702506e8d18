// Package fake implements a simulated tracking runtime. Devices spin about an axis and may orbit
// their base position, both driven by a clock, so the poses change from frame to frame.
package fake

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/spatialmath"
	"github.com/milou/vrtracker/tracking"
	"github.com/milou/vrtracker/utils"
)

// DefaultSeatedHeight is how far the seated origin sits above the standing origin.
const DefaultSeatedHeight = 1.2

func init() {
	tracking.RegisterProvider("fake", resource.Registration[tracking.Provider, *Config]{
		Constructor: func(ctx context.Context, conf resource.Config, logger logging.Logger) (tracking.Provider, error) {
			native, err := resource.NativeConfig[*Config](conf)
			if err != nil {
				return nil, err
			}
			return NewProvider(native, clock.New(), logger)
		},
	})
}

// DeviceConfig describes one simulated device.
type DeviceConfig struct {
	Index    int                  `json:"index"`
	Class    tracking.DeviceClass `json:"class"`
	Position []float64            `json:"position"`
	// Axis is the spin axis. Defaults to +Y (up).
	Axis           []float64 `json:"axis"`
	RateDegsPerSec float64   `json:"rate_degs_per_sec"`
	// OrbitRadius moves the device on a horizontal circle around Position at the spin rate.
	OrbitRadius float64 `json:"orbit_radius"`
	// DropoutEvery makes every n-th frame report an invalid pose for this device.
	DropoutEvery int `json:"dropout_every"`
}

// Config configures the fake provider.
type Config struct {
	MaxDevices   int            `json:"max_devices"`
	Devices      []DeviceConfig `json:"devices"`
	SeatedHeight *float64       `json:"seated_height"`

	// FailInit makes construction fail with this init error code.
	FailInit int `json:"fail_init"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	maxDevices := cfg.maxDevices()
	if maxDevices <= 0 {
		return errors.Errorf("%s: max_devices must be positive, got %d", path, maxDevices)
	}
	seen := map[int]bool{}
	for i, dev := range cfg.Devices {
		if dev.Index < 0 || dev.Index >= maxDevices {
			return errors.Errorf("%s.devices.%d: index %d out of range [0, %d)", path, i, dev.Index, maxDevices)
		}
		if seen[dev.Index] {
			return errors.Errorf("%s.devices.%d: duplicate index %d", path, i, dev.Index)
		}
		seen[dev.Index] = true
		if dev.Position != nil && len(dev.Position) != 3 {
			return errors.Errorf("%s.devices.%d: position needs 3 elements, got %d", path, i, len(dev.Position))
		}
		if dev.Axis != nil && len(dev.Axis) != 3 {
			return errors.Errorf("%s.devices.%d: axis needs 3 elements, got %d", path, i, len(dev.Axis))
		}
		if dev.DropoutEvery < 0 {
			return errors.Errorf("%s.devices.%d: dropout_every must be non-negative", path, i)
		}
	}
	return nil
}

func (cfg *Config) maxDevices() int {
	if cfg.MaxDevices == 0 {
		return tracking.MaxTrackedDevices
	}
	return cfg.MaxDevices
}

// DefaultDevices is a headset, two controllers waved in small circles and a base station.
func DefaultDevices() []DeviceConfig {
	return []DeviceConfig{
		{Index: 0, Class: tracking.ClassHMD, Position: []float64{0, 1.7, 0}, RateDegsPerSec: 15},
		{Index: 1, Class: tracking.ClassController, Position: []float64{-0.3, 1.1, -0.3}, RateDegsPerSec: 45, OrbitRadius: 0.1},
		{Index: 2, Class: tracking.ClassController, Position: []float64{0.3, 1.1, -0.3}, RateDegsPerSec: -45, OrbitRadius: 0.1},
		{Index: 3, Class: tracking.ClassTrackingReference, Position: []float64{2, 2.2, 2}},
	}
}

type device struct {
	class        tracking.DeviceClass
	base         r3.Vector
	axis         r3.Vector
	rate         float64 // radians per second
	orbitRadius  float64
	dropoutEvery int
}

// Provider is a simulated tracking runtime.
type Provider struct {
	mu     sync.Mutex
	clock  clock.Clock
	start  time.Time
	logger logging.Logger

	maxDevices   int
	seatedHeight float64
	devices      map[int]device
	frame        uint64
	closed       bool
}

// NewProvider returns a simulated runtime whose motion is driven by clk.
func NewProvider(cfg *Config, clk clock.Clock, logger logging.Logger) (*Provider, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.FailInit != 0 {
		return nil, tracking.NewInitError(tracking.InitErrorCode(cfg.FailInit))
	}
	if err := cfg.Validate("fake"); err != nil {
		return nil, tracking.NewInitErrorf(tracking.InitErrorInvalidConfig, "%s", err.Error())
	}

	devConfigs := cfg.Devices
	if len(devConfigs) == 0 {
		devConfigs = DefaultDevices()
	}
	seatedHeight := DefaultSeatedHeight
	if cfg.SeatedHeight != nil {
		seatedHeight = *cfg.SeatedHeight
	}

	p := &Provider{
		clock:        clk,
		start:        clk.Now(),
		logger:       logger,
		maxDevices:   cfg.maxDevices(),
		seatedHeight: seatedHeight,
		devices:      make(map[int]device, len(devConfigs)),
	}
	for _, dc := range devConfigs {
		dev := device{
			class:        dc.Class,
			axis:         r3.Vector{Y: 1},
			rate:         utils.DegToRad(dc.RateDegsPerSec),
			orbitRadius:  dc.OrbitRadius,
			dropoutEvery: dc.DropoutEvery,
		}
		if dc.Position != nil {
			dev.base = r3.Vector{X: dc.Position[0], Y: dc.Position[1], Z: dc.Position[2]}
		}
		if dc.Axis != nil {
			dev.axis = r3.Vector{X: dc.Axis[0], Y: dc.Axis[1], Z: dc.Axis[2]}
		}
		p.devices[dc.Index] = dev
	}
	logger.Infow("simulated tracking runtime started", "devices", len(p.devices), "slots", p.maxDevices)
	return p, nil
}

// MaxDeviceCount returns the configured slot count.
func (p *Provider) MaxDeviceCount() int {
	return p.maxDevices
}

// DevicePoses returns the simulated poses at the current clock time.
func (p *Provider) DevicePoses(ctx context.Context, origin tracking.Origin) (tracking.PoseTable, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errors.New("tracking runtime is shut down")
	}
	p.frame++
	elapsed := p.clock.Since(p.start).Seconds()

	table := tracking.NewPoseTable(p.maxDevices)
	for index, dev := range p.devices {
		if dev.dropoutEvery > 0 && p.frame%uint64(dev.dropoutEvery) == 0 {
			continue
		}
		m := dev.transformAt(elapsed)
		if origin == tracking.OriginSeated {
			m[1][3] -= p.seatedHeight
		}
		table[index] = tracking.DevicePose{Valid: true, Transform: m}
	}
	return table, nil
}

// DeviceClass returns the class of a configured device and ClassOther for empty slots.
func (p *Provider) DeviceClass(ctx context.Context, index int) tracking.DeviceClass {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dev, ok := p.devices[index]; ok {
		return dev.class
	}
	return tracking.ClassOther
}

// Close shuts down the simulated runtime.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// transformAt composes translate(base) * rotate(axis, rate*t) * translate(radius, 0, 0) as
// homogeneous 4x4 matrices.
func (dev device) transformAt(elapsed float64) spatialmath.AffineTransform {
	theta := math.Mod(dev.rate*elapsed, 2*math.Pi)
	rot := spatialmath.R3ToR4(dev.axis, theta).RotationMatrix()

	base := homogeneous(nil, dev.base)
	spin := homogeneous(rot, r3.Vector{})
	orbit := homogeneous(nil, r3.Vector{X: dev.orbitRadius})

	var world mat.Dense
	world.Product(base, spin, orbit)

	var m spatialmath.AffineTransform
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			m[row][col] = world.At(row, col)
		}
	}
	return m
}

func homogeneous(rot *spatialmath.RotationMatrix, translation r3.Vector) *mat.Dense {
	h := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if rot == nil {
				if i == j {
					h.Set(i, j, 1)
				}
				continue
			}
			h.Set(i, j, rot.At(i, j))
		}
	}
	h.Set(0, 3, translation.X)
	h.Set(1, 3, translation.Y)
	h.Set(2, 3, translation.Z)
	h.Set(3, 3, 1)
	return h
}
