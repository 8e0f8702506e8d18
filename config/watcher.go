package config

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
)

// DefaultWatchDebounce is how long a file must be quiet before it is re-read.
const DefaultWatchDebounce = 250 * time.Millisecond

// A Watcher reports a freshly read Config whenever its file changes. Invalid edits are logged
// and skipped.
type Watcher interface {
	Config() <-chan *Config
	Close() error
}

type fsConfigWatcher struct {
	path     string
	fsWatch  *fsnotify.Watcher
	debounce func(f func())
	configCh chan *Config
	logger   logging.Logger

	cancelCtx               context.Context
	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

// NewWatcher watches the config file at path. The directory is watched rather than the file so
// that editors which replace the file on save are still seen.
func NewWatcher(ctx context.Context, path string, logger logging.Logger) (Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create config watcher")
	}
	if err := fsWatch.Add(filepath.Dir(absPath)); err != nil {
		utils.UncheckedError(fsWatch.Close())
		return nil, errors.Wrapf(err, "failed to watch %s", path)
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	w := &fsConfigWatcher{
		path:      absPath,
		fsWatch:   fsWatch,
		debounce:  debounce.New(DefaultWatchDebounce),
		configCh:  make(chan *Config),
		logger:    logger,
		cancelCtx: cancelCtx,
		cancel:    cancel,
	}
	w.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(w.watch, w.activeBackgroundWorkers.Done)
	return w, nil
}

func (w *fsConfigWatcher) watch() {
	for {
		select {
		case <-w.cancelCtx.Done():
			return
		case event, ok := <-w.fsWatch.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			w.debounce(w.reload)
		case err, ok := <-w.fsWatch.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("config watcher error", "error", err)
		}
	}
}

func (w *fsConfigWatcher) reload() {
	if w.cancelCtx.Err() != nil {
		return
	}
	cfg, err := Read(w.cancelCtx, w.path, w.logger)
	if err != nil {
		w.logger.Warnw("ignoring invalid config change", "path", w.path, "error", err)
		return
	}
	select {
	case <-w.cancelCtx.Done():
	case w.configCh <- cfg:
	}
}

func (w *fsConfigWatcher) Config() <-chan *Config {
	return w.configCh
}

func (w *fsConfigWatcher) Close() error {
	w.cancel()
	err := w.fsWatch.Close()
	w.activeBackgroundWorkers.Wait()
	return err
}

// RequiresRestart reports whether moving from c to other changes anything beyond the log
// patterns. Only log patterns are applied while running.
func (c *Config) RequiresRestart(other *Config) bool {
	strip := func(cfg *Config) Config {
		stripped := *cfg
		stripped.ConfigFilePath = ""
		stripped.Log = nil
		stripped.Provider.ConvertedAttributes = nil
		stripped.Sinks = make([]resource.Config, len(cfg.Sinks))
		for i, sink := range cfg.Sinks {
			sink.ConvertedAttributes = nil
			stripped.Sinks[i] = sink
		}
		return stripped
	}
	return !reflect.DeepEqual(strip(c), strip(other))
}
