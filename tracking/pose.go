package tracking

import (
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/milou/vrtracker/spatialmath"
)

// MaxTrackedDevices is the slot count of an OpenVR pose table.
const MaxTrackedDevices = 64

// DevicePose is one slot of a pose table. The device index is the slot index.
type DevicePose struct {
	Valid     bool
	Transform spatialmath.AffineTransform
}

// PoseTable holds one slot per possible device index for a single frame.
type PoseTable []DevicePose

// NewPoseTable returns a table of n invalid slots.
func NewPoseTable(n int) PoseTable {
	return make(PoseTable, n)
}

// ValidCount returns the number of slots holding a valid pose.
func (t PoseTable) ValidCount() int {
	n := 0
	for _, slot := range t {
		if slot.Valid {
			n++
		}
	}
	return n
}

// DeviceReading is the decoded pose of one reported device in one frame.
type DeviceReading struct {
	Index       int
	Class       DeviceClass
	Position    r3.Vector
	Orientation quat.Number
	Frame       uint64
	CapturedAt  time.Time
}
