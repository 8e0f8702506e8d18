package tracking

import (
	"strings"

	"github.com/pkg/errors"
)

// Origin is the tracking universe that poses are reported relative to.
type Origin int

const (
	// OriginStanding reports poses relative to the calibrated standing play area floor.
	OriginStanding Origin = iota
	// OriginSeated reports poses relative to the seated zero pose.
	OriginSeated
	// OriginRaw reports uncalibrated poses straight from the runtime.
	OriginRaw
)

func (o Origin) String() string {
	switch o {
	case OriginSeated:
		return "seated"
	case OriginRaw:
		return "raw"
	case OriginStanding:
		fallthrough
	default:
		return "standing"
	}
}

// ParseOrigin parses an origin name. The empty string is the standing origin.
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standing":
		return OriginStanding, nil
	case "seated":
		return OriginSeated, nil
	case "raw", "uncalibrated":
		return OriginRaw, nil
	}
	return OriginStanding, errors.Errorf("unknown tracking origin %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Origin) UnmarshalText(text []byte) error {
	parsed, err := ParseOrigin(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
