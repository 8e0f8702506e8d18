package utils

import (
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/milou/vrtracker/logging"
)

const (
	// EnvVarPrefix is the prefix for all tracker environment variables.
	EnvVarPrefix = "VRTRACKER_"

	// ConfigEnvVar names a config file to read when none is given on the command line.
	ConfigEnvVar = "VRTRACKER_CONFIG"

	// DebugEnvVar enables debug logging when set to one of EnvTrueValues.
	DebugEnvVar = "VRTRACKER_DEBUG"
)

// EnvTrueValues contains strings that we interpret as boolean true in env vars.
var EnvTrueValues = []string{"true", "yes", "1", "TRUE", "YES"}

// EnvTrue reports whether the named env variable holds one of EnvTrueValues.
func EnvTrue(name string) bool {
	return slices.Contains(EnvTrueValues, os.Getenv(name))
}

// LogEnvVariables logs every tracker environment variable at debug level.
func LogEnvVariables(msg string, logger logging.Logger) {
	var env []string
	for _, v := range os.Environ() {
		if strings.HasPrefix(v, EnvVarPrefix) {
			env = append(env, v)
		}
	}
	if len(env) != 0 {
		sort.Strings(env)
		logger.Debugw(msg, "environment", env)
	}
}
