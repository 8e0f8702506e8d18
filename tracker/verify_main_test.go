package tracker

import (
	"testing"

	"github.com/milou/vrtracker/testutils"
)

func TestMain(m *testing.M) {
	testutils.VerifyTestMain(m)
}
