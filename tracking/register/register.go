// Package register registers all tracking providers.
package register

import (
	// register providers.
	_ "github.com/milou/vrtracker/tracking/fake"
	_ "github.com/milou/vrtracker/tracking/replay"
)
