package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/milou/vrtracker/config"
	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/tracking"
)

func TestWatcher(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	path := filepath.Join(t.TempDir(), "vrtracker.json")
	test.That(t, os.WriteFile(path, []byte(`{"origin": "standing"}`), 0o600), test.ShouldBeNil)

	watcher, err := config.NewWatcher(context.Background(), path, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, watcher.Close(), test.ShouldBeNil)
	}()

	// unrelated files in the same directory are ignored
	test.That(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte(`{}`), 0o600), test.ShouldBeNil)

	test.That(t, os.WriteFile(path, []byte(`{"origin": "seated"}`), 0o600), test.ShouldBeNil)
	select {
	case cfg := <-watcher.Config():
		test.That(t, cfg.Origin, test.ShouldEqual, tracking.OriginSeated)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config change")
	}

	test.That(t, os.WriteFile(path, []byte(`{"origin": `), 0o600), test.ShouldBeNil)
	for i := 0; i < 500 && logs.FilterMessage("ignoring invalid config change").Len() == 0; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	test.That(t, logs.FilterMessage("ignoring invalid config change").Len(), test.ShouldBeGreaterThan, 0)
	select {
	case cfg := <-watcher.Config():
		t.Fatalf("unexpected config %+v", cfg)
	default:
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := config.NewWatcher(context.Background(), filepath.Join(t.TempDir(), "nope", "vrtracker.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to watch")
}

func TestRequiresRestart(t *testing.T) {
	logger := logging.NewTestLogger(t)
	read := func(input string) *config.Config {
		cfg, err := config.FromReader(context.Background(), "", strings.NewReader(input), logger)
		test.That(t, err, test.ShouldBeNil)
		return cfg
	}

	base := read(`{"sinks": [{"type": "console", "attributes": {"precision": 3}}]}`)
	test.That(t, base.RequiresRestart(read(`{"sinks": [{"type": "console", "attributes": {"precision": 3}}]}`)),
		test.ShouldBeFalse)
	test.That(t, base.RequiresRestart(read(
		`{"sinks": [{"type": "console", "attributes": {"precision": 3}}], "log": [{"pattern": "a", "level": "debug"}]}`)),
		test.ShouldBeFalse)
	test.That(t, base.RequiresRestart(read(`{"sinks": [{"type": "console", "attributes": {"precision": 4}}]}`)),
		test.ShouldBeTrue)
	test.That(t, base.RequiresRestart(read(
		`{"sinks": [{"type": "console", "attributes": {"precision": 3}}], "interval": "2s"}`)),
		test.ShouldBeTrue)
}
