package tracking

import (
	"fmt"

	"github.com/pkg/errors"
)

// InitErrorCode identifies why a tracking runtime failed to start. Values that exist in OpenVR's
// EVRInitError share its numbers.
type InitErrorCode int

// Known init error codes.
const (
	InitErrorNone                 InitErrorCode = 0
	InitErrorUnknown              InitErrorCode = 1
	InitErrorInvalidConfig        InitErrorCode = 2
	InitErrorFileNotFound         InitErrorCode = 3
	InitErrorUnknownProvider      InitErrorCode = 4
	InitErrorInstallationNotFound InitErrorCode = 100
	InitErrorHmdNotFound          InitErrorCode = 108
	InitErrorNotInitialized       InitErrorCode = 119
)

var initErrorDescriptions = map[InitErrorCode]string{
	InitErrorNone:                 "No Error (0)",
	InitErrorUnknown:              "Unknown Error (1)",
	InitErrorInvalidConfig:        "Invalid Configuration (2)",
	InitErrorFileNotFound:         "File Not Found (3)",
	InitErrorUnknownProvider:      "Unknown Tracking Provider (4)",
	InitErrorInstallationNotFound: "Installation Not Found (100)",
	InitErrorHmdNotFound:          "Hmd Not Found (108)",
	InitErrorNotInitialized:       "Not Initialized (119)",
}

// Description returns the English description of the code.
func (c InitErrorCode) Description() string {
	if desc, ok := initErrorDescriptions[c]; ok {
		return desc
	}
	return fmt.Sprintf("Unknown Error (%d)", int(c))
}

// InitError is returned when a tracking runtime cannot be started. Error returns the
// description verbatim.
type InitError struct {
	Code        InitErrorCode
	Description string
}

// NewInitError returns an InitError whose description is the code's description.
func NewInitError(code InitErrorCode) *InitError {
	return &InitError{Code: code, Description: code.Description()}
}

// NewInitErrorf returns an InitError with a formatted description.
func NewInitErrorf(code InitErrorCode, format string, args ...interface{}) *InitError {
	return &InitError{Code: code, Description: fmt.Sprintf(format, args...)}
}

func (e *InitError) Error() string {
	return e.Description
}

// IsInitError reports whether err is or wraps an InitError.
func IsInitError(err error) bool {
	var initErr *InitError
	return errors.As(err, &initErr)
}
