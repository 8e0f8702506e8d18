// Package resource holds the pieces shared by every pluggable part of the tracker: the typed
// config entry read from a config file and a registry of named constructors.
package resource

import (
	"fmt"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/milou/vrtracker/utils"
)

// A Config describes one configured provider or sink.
type Config struct {
	Type       string             `json:"type"`
	Attributes utils.AttributeMap `json:"attributes,omitempty"`

	// ConvertedAttributes holds the registration's native form of Attributes once the config has
	// been converted by a registry.
	ConvertedAttributes interface{} `json:"-"`
}

// A ConfigValidator validates a native attribute type.
type ConfigValidator interface {
	Validate(path string) error
}

// NativeConfig returns the converted attributes of conf as T. It fails when conf was converted
// by a registration of another type, or not converted at all.
func NativeConfig[T any](conf Config) (T, error) {
	native, ok := conf.ConvertedAttributes.(T)
	if !ok {
		var zero T
		return zero, errors.Wrapf(utils.NewUnexpectedTypeError[T](conf.ConvertedAttributes),
			"%q attributes were not converted", conf.Type)
	}
	return native, nil
}

// Validate ensures the config names a type and that its converted attributes, if any, are valid.
func (conf *Config) Validate(path string) error {
	if conf.Type == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "type")
	}
	if validator, ok := conf.ConvertedAttributes.(ConfigValidator); ok {
		return validator.Validate(fmt.Sprintf("%s.attributes", path))
	}
	return nil
}

func (conf Config) String() string {
	return fmt.Sprintf("%s %v", conf.Type, map[string]interface{}(conf.Attributes))
}
