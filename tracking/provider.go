package tracking

import (
	"context"

	"github.com/pkg/errors"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
)

// A Provider is a running tracking runtime.
type Provider interface {
	// MaxDeviceCount is the number of slots in every table returned by DevicePoses.
	MaxDeviceCount() int

	// DevicePoses returns a freshly allocated pose table relative to origin.
	DevicePoses(ctx context.Context, origin Origin) (PoseTable, error)

	// DeviceClass returns the class of the device in slot index.
	DeviceClass(ctx context.Context, index int) DeviceClass

	// Close shuts down the runtime.
	Close(ctx context.Context) error
}

// A Constructor starts a tracking runtime from its config. Failures should be returned as an
// *InitError.
type Constructor = resource.Create[Provider]

var registry = resource.NewRegistry[Provider]("provider")

// RegisterProvider registers a provider type with its constructor.
func RegisterProvider[ConfigT any](typeName string, reg resource.Registration[Provider, ConfigT]) {
	resource.Register(registry, typeName, reg)
}

// DeregisterProvider removes a registered provider type.
func DeregisterProvider(typeName string) {
	registry.Deregister(typeName)
}

// RegisteredProviders returns the registered provider type names.
func RegisteredProviders() []string {
	return registry.Types()
}

// ConvertConfig converts and validates the attributes of a provider config in place.
func ConvertConfig(conf *resource.Config, path string) error {
	return registry.Convert(conf, path)
}

// NewProvider starts the provider described by conf. Every failure is returned as an
// *InitError so that callers can surface the runtime's description verbatim.
func NewProvider(ctx context.Context, conf resource.Config, logger logging.Logger) (Provider, error) {
	if _, ok := registry.Lookup(conf.Type); !ok {
		return nil, NewInitErrorf(InitErrorUnknownProvider,
			"%s: %q (registered: %v)", InitErrorUnknownProvider.Description(), conf.Type, registry.Types())
	}
	if err := registry.Convert(&conf, "provider"); err != nil {
		return nil, NewInitErrorf(InitErrorInvalidConfig, "%s: %v", InitErrorInvalidConfig.Description(), err)
	}
	reg, _ := registry.Lookup(conf.Type)
	prov, err := reg.Constructor(ctx, conf, logger)
	if err != nil {
		var initErr *InitError
		if errors.As(err, &initErr) {
			return nil, initErr
		}
		return nil, &InitError{Code: InitErrorUnknown, Description: err.Error()}
	}
	return prov, nil
}
