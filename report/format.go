package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/milou/vrtracker/tracking"
)

// DefaultPrecision is the number of significant digits printed for each component, matching the
// default precision of C++ iostreams.
const DefaultPrecision = 6

// FormatFloat prints v with at most precision significant digits and no trailing zeros.
func FormatFloat(v float64, precision int) string {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	return strconv.FormatFloat(v, 'g', precision, 64)
}

// DeviceName names the device of a reading the way it is printed: the headset by its label
// alone and every other device by label and index, e.g. "Controller 3".
func DeviceName(reading tracking.DeviceReading) string {
	if reading.Class == tracking.ClassHMD {
		return reading.Class.Label()
	}
	return fmt.Sprintf("%s %d", reading.Class.Label(), reading.Index)
}

// outputWriter resolves an output attribute to a writer.
func outputWriter(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	return nil, errors.Errorf("unknown output %q, expected stdout or stderr", output)
}
