package replay

import "github.com/pkg/errors"

var (
	errNotRunning         = errors.New("replay is closed")
	errNegativeMaxDevices = errors.New("max_devices must be non-negative")
)
