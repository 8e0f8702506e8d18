// Package config defines the tracker configuration file and how it is read and validated.
package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.viam.com/utils"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/report"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/tracking"
)

const (
	// DefaultProviderType is used when the config names no provider.
	DefaultProviderType = "fake"
	// DefaultSinkType is used when the config names no sinks.
	DefaultSinkType = "console"
)

// Config describes how the tracker polls and where readings go.
type Config struct {
	ConfigFilePath string `json:"-"`

	Provider      resource.Config               `json:"provider"`
	Origin        tracking.Origin               `json:"origin"`
	Interval      string                        `json:"interval,omitempty"`
	ReportClasses []tracking.DeviceClass        `json:"report_classes,omitempty"`
	Sinks         []resource.Config             `json:"sinks,omitempty"`
	Log           []logging.LoggerPatternConfig `json:"log,omitempty"`

	interval time.Duration
}

// Ensure fills in defaults and validates every section. Provider and sink attributes are
// converted into their registered native configs.
func (c *Config) Ensure() error {
	if c.Provider.Type == "" {
		c.Provider.Type = DefaultProviderType
	}
	if err := tracking.ConvertConfig(&c.Provider, "provider"); err != nil {
		return err
	}

	if c.Interval != "" {
		interval, err := time.ParseDuration(c.Interval)
		if err != nil {
			return utils.NewConfigValidationError("interval", err)
		}
		if interval <= 0 {
			return utils.NewConfigValidationError("interval", errors.Errorf("must be positive, got %s", interval))
		}
		c.interval = interval
	}

	for idx, class := range c.ReportClasses {
		if class == tracking.ClassOther || !class.Known() {
			return utils.NewConfigValidationError(
				fmt.Sprintf("%s.%d", "report_classes", idx),
				errors.Errorf("device class %q cannot be reported", class))
		}
	}
	c.ReportClasses = lo.Uniq(c.ReportClasses)

	if len(c.Sinks) == 0 {
		c.Sinks = []resource.Config{{Type: DefaultSinkType}}
	}
	for idx := 0; idx < len(c.Sinks); idx++ {
		if err := report.ConvertConfig(&c.Sinks[idx], fmt.Sprintf("%s.%d", "sinks", idx)); err != nil {
			return err
		}
	}

	for idx, lpc := range c.Log {
		path := fmt.Sprintf("%s.%d", "log", idx)
		if lpc.Pattern == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "pattern")
		}
		if err := lpc.Validate(); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}

	return nil
}

// PollInterval returns the configured interval, or zero when unset. Only valid after Ensure.
func (c *Config) PollInterval() time.Duration {
	return c.interval
}

// SetPollInterval overrides the interval, e.g. from a command line flag.
func (c *Config) SetPollInterval(interval time.Duration) {
	c.interval = interval
	c.Interval = interval.String()
}
