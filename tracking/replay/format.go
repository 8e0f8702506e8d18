// Package replay plays back recorded tracking sessions and records live ones.
//
// A recording is a JSON-lines file with one frame per line:
//
//	{"frame":1,"devices":[{"index":0,"class":"hmd","valid":true,"transform":[[1,0,0,0],[0,1,0,1.7],[0,0,1,0]]}]}
//
// Slots not listed in a frame are invalid in that frame.
package replay

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/milou/vrtracker/spatialmath"
	"github.com/milou/vrtracker/tracking"
)

// Frame is one line of a recording.
type Frame struct {
	Frame   uint64   `json:"frame"`
	Devices []Device `json:"devices"`
}

// Device is one recorded slot.
type Device struct {
	Index     int                         `json:"index"`
	Class     tracking.DeviceClass        `json:"class"`
	Valid     bool                        `json:"valid"`
	Transform spatialmath.AffineTransform `json:"transform"`
}

// ReadFrames reads every frame of a recording. Blank lines are skipped.
func ReadFrames(r io.Reader) ([]Frame, error) {
	var frames []Frame
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(scanner.Bytes(), &frame); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}
