// Package inject provides structs whose methods call injected functions, falling back to an
// embedded implementation when a function is not set.
package inject

import (
	"context"

	"github.com/milou/vrtracker/tracking"
)

// Provider is an injected tracking provider.
type Provider struct {
	tracking.Provider
	MaxDeviceCountFunc func() int
	DevicePosesFunc    func(ctx context.Context, origin tracking.Origin) (tracking.PoseTable, error)
	DeviceClassFunc    func(ctx context.Context, index int) tracking.DeviceClass
	CloseFunc          func(ctx context.Context) error
}

// MaxDeviceCount calls the injected MaxDeviceCount or the real version.
func (p *Provider) MaxDeviceCount() int {
	if p.MaxDeviceCountFunc == nil {
		return p.Provider.MaxDeviceCount()
	}
	return p.MaxDeviceCountFunc()
}

// DevicePoses calls the injected DevicePoses or the real version.
func (p *Provider) DevicePoses(ctx context.Context, origin tracking.Origin) (tracking.PoseTable, error) {
	if p.DevicePosesFunc == nil {
		return p.Provider.DevicePoses(ctx, origin)
	}
	return p.DevicePosesFunc(ctx, origin)
}

// DeviceClass calls the injected DeviceClass or the real version.
func (p *Provider) DeviceClass(ctx context.Context, index int) tracking.DeviceClass {
	if p.DeviceClassFunc == nil {
		return p.Provider.DeviceClass(ctx, index)
	}
	return p.DeviceClassFunc(ctx, index)
}

// Close calls the injected Close or the real version.
func (p *Provider) Close(ctx context.Context) error {
	if p.CloseFunc == nil {
		if p.Provider == nil {
			return nil
		}
		return p.Provider.Close(ctx)
	}
	return p.CloseFunc(ctx)
}
