package resource

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/utils"
)

type (
	// A Create creates a resource from a given config.
	Create[ResourceT any] func(ctx context.Context, conf Config, logger logging.Logger) (ResourceT, error)

	// An AttributeMapConverter converts an attribute map into a native config type for a resource.
	AttributeMapConverter[ConfigT any] func(attributes utils.AttributeMap) (ConfigT, error)
)

// A Registration stores construction info for a resource. A constructor is mandatory.
type Registration[ResourceT any, ConfigT any] struct {
	Constructor Create[ResourceT]

	// AttributeMapConverter is used to convert raw attributes to the resource's native config.
	AttributeMapConverter AttributeMapConverter[ConfigT]

	configType reflect.Type
}

// ConfigReflectType returns the reflective native config type.
func (r Registration[ResourceT, ConfigT]) ConfigReflectType() reflect.Type {
	return r.configType
}

// NoNativeConfig is used by registrations that take no attributes.
type NoNativeConfig struct{}

// A Registry maps type names to registrations for one kind of resource, e.g. providers or sinks.
type Registry[ResourceT any] struct {
	api string

	mu   sync.RWMutex
	regs map[string]Registration[ResourceT, any]
}

// NewRegistry returns an empty registry. The api name is only used in errors.
func NewRegistry[ResourceT any](api string) *Registry[ResourceT] {
	return &Registry[ResourceT]{api: api, regs: map[string]Registration[ResourceT, any]{}}
}

// Register registers a type name and its construction info. It panics on duplicate names and
// nil constructors since both are programming errors caught at init time.
func Register[ResourceT any, ConfigT any](r *Registry[ResourceT], typeName string, reg Registration[ResourceT, ConfigT]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, old := r.regs[typeName]; old {
		panic(errors.Errorf("trying to register two %s types with the same name: %q", r.api, typeName))
	}
	if reg.Constructor == nil {
		panic(errors.Errorf("cannot register a nil constructor for %s type %q", r.api, typeName))
	}
	var zero ConfigT
	zeroT := reflect.TypeOf(zero)
	if reg.AttributeMapConverter == nil && zeroT != nil && zeroT != reflect.TypeOf(NoNativeConfig{}) {
		// provide one for free
		reg.AttributeMapConverter = utils.TransformAttributeMap[ConfigT]
	}
	reg.configType = zeroT
	r.regs[typeName] = makeGenericRegistration(reg)
}

// makeGenericRegistration erases the native config type so that registrations of different
// config types share one map.
func makeGenericRegistration[ResourceT any, ConfigT any](typed Registration[ResourceT, ConfigT]) Registration[ResourceT, any] {
	reg := Registration[ResourceT, any]{
		Constructor: typed.Constructor,
		configType:  typed.configType,
	}
	if typed.AttributeMapConverter != nil {
		reg.AttributeMapConverter = func(attributes utils.AttributeMap) (any, error) {
			return typed.AttributeMapConverter(attributes)
		}
	}
	return reg
}

// Deregister removes a previously registered type.
func (r *Registry[ResourceT]) Deregister(typeName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.regs, typeName)
}

// Lookup looks up a registration by type name.
func (r *Registry[ResourceT]) Lookup(typeName string) (Registration[ResourceT, any], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regs[typeName]
	return reg, ok
}

// Types returns the registered type names in sorted order.
func (r *Registry[ResourceT]) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.regs)
	sort.Strings(names)
	return names
}

// Convert looks up the registration for conf and fills in conf.ConvertedAttributes, then
// validates the result. path prefixes validation errors.
func (r *Registry[ResourceT]) Convert(conf *Config, path string) error {
	reg, ok := r.Lookup(conf.Type)
	if !ok {
		if conf.Type == "" {
			return conf.Validate(path)
		}
		return r.unknownTypeError(conf.Type)
	}
	if reg.AttributeMapConverter != nil && conf.ConvertedAttributes == nil {
		converted, err := reg.AttributeMapConverter(conf.Attributes)
		if err != nil {
			return errors.Wrapf(err, "error converting attributes for %s %q", r.api, conf.Type)
		}
		conf.ConvertedAttributes = converted
	}
	return conf.Validate(path)
}

// New converts and validates conf then constructs the resource it describes.
func (r *Registry[ResourceT]) New(ctx context.Context, conf Config, logger logging.Logger) (ResourceT, error) {
	var zero ResourceT
	if err := r.Convert(&conf, r.api); err != nil {
		return zero, err
	}
	reg, _ := r.Lookup(conf.Type)
	return reg.Constructor(ctx, conf, logger)
}

func (r *Registry[ResourceT]) unknownTypeError(typeName string) error {
	return errors.Errorf("unknown %s type %q (registered: %s)", r.api, typeName, fmt.Sprint(r.Types()))
}
