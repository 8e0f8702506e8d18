// Package tracking defines the interface to a motion-tracking runtime: the per-frame pose table
// it reports, the classes of devices it tracks, and a registry of runtime implementations.
package tracking

import (
	"strings"

	"github.com/pkg/errors"
)

// DeviceClass is the kind of a tracked device. The numbering follows OpenVR's
// ETrackedDeviceClass so recorded sessions stay comparable.
type DeviceClass int

const (
	// ClassOther is any device the tracker does not report, including empty slots.
	ClassOther DeviceClass = iota
	// ClassHMD is a head mounted display.
	ClassHMD
	// ClassController is a hand controller.
	ClassController
	// ClassGenericTracker is a puck style tracker attached to a body or prop.
	ClassGenericTracker
	// ClassTrackingReference is a base station or camera.
	ClassTrackingReference
	// ClassDisplayRedirect is an accessory that mirrors the display.
	ClassDisplayRedirect
)

var classNames = map[DeviceClass]string{
	ClassOther:             "other",
	ClassHMD:               "hmd",
	ClassController:        "controller",
	ClassGenericTracker:    "generic_tracker",
	ClassTrackingReference: "tracking_reference",
	ClassDisplayRedirect:   "display_redirect",
}

// DefaultReportedClasses are the classes reported when no other set is configured.
var DefaultReportedClasses = []DeviceClass{ClassHMD, ClassController, ClassGenericTracker}

func (c DeviceClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return classNames[ClassOther]
}

// Label is the human readable name of the class as printed in reports.
func (c DeviceClass) Label() string {
	switch c {
	case ClassHMD:
		return "Headset"
	case ClassController:
		return "Controller"
	case ClassGenericTracker:
		return "Generic Tracker"
	case ClassTrackingReference:
		return "Base Station"
	case ClassDisplayRedirect:
		return "Display Redirect"
	case ClassOther:
		fallthrough
	default:
		return "Other"
	}
}

// Known reports whether c is one of the defined classes.
func (c DeviceClass) Known() bool {
	_, ok := classNames[c]
	return ok
}

// ParseDeviceClass parses a class name as produced by String. Parsing is case-insensitive and
// accepts spaces or dashes in place of underscores.
func ParseDeviceClass(s string) (DeviceClass, error) {
	norm := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	for class, name := range classNames {
		if name == norm {
			return class, nil
		}
	}
	switch norm {
	case "headset":
		return ClassHMD, nil
	case "tracker":
		return ClassGenericTracker, nil
	case "base_station", "lighthouse":
		return ClassTrackingReference, nil
	}
	return ClassOther, errors.Errorf("unknown device class %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c DeviceClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *DeviceClass) UnmarshalText(text []byte) error {
	parsed, err := ParseDeviceClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
