// Package main polls a VR tracking runtime and reports the pose of every tracked device.
package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/milou/vrtracker/config"
	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/report"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/tracker"
	"github.com/milou/vrtracker/tracking"
	_ "github.com/milou/vrtracker/tracking/register"
	"github.com/milou/vrtracker/tracking/replay"
	"github.com/milou/vrtracker/utils"
)

var logger = logging.NewLogger("vrtracker")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,usage=path to a JSON config file (default $VRTRACKER_CONFIG)"`
	Provider   string `flag:"provider,usage=tracking provider type"`
	Interval   int    `flag:"interval,usage=poll interval in milliseconds"`
	Origin     string `flag:"origin,usage=tracking origin (standing|seated|raw)"`
	Record     string `flag:"record,usage=also write a replay recording to this path"`
	Debug      bool   `flag:"debug,usage=enable debug logging"`
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.Debug || utils.EnvTrue(utils.DebugEnvVar) {
		logger.SetLevel(logging.DEBUG)
		ctx = logging.EnableDebugMode(ctx)
	}
	utils.LogEnvVariables("tracker environment", logger)

	fileCfg, cfg, err := loadConfig(ctx, argsParsed, logger)
	if err != nil {
		return err
	}
	if err := cfg.ApplyLogConfig(logger); err != nil {
		return err
	}
	logger.CDebugw(ctx, "starting tracker",
		"provider", cfg.Provider.Type, "origin", cfg.Origin, "interval", cfg.PollInterval())

	provider, err := tracking.NewProvider(ctx, cfg.Provider, logger.Sublogger("provider"))
	if err != nil {
		return errors.Errorf("unable to initialize tracking runtime: %s", err)
	}
	providerGuard := utils.NewGuard(func() {
		goutils.UncheckedError(provider.Close(ctx))
	})
	defer providerGuard.OnFail()

	if argsParsed.Record != "" {
		rec, err := replay.NewRecorder(provider, argsParsed.Record, logger.Sublogger("recorder"))
		if err != nil {
			return err
		}
		provider = rec
	}

	sink, err := newSinks(ctx, cfg.Sinks, logger.Sublogger("sink"))
	if err != nil {
		return err
	}
	sinkGuard := utils.NewGuard(func() {
		goutils.UncheckedError(sink.Close(ctx))
	})
	defer sinkGuard.OnFail()

	t, err := tracker.New(tracker.Params{
		Provider: provider,
		Sink:     sink,
		Origin:   cfg.Origin,
		Interval: cfg.PollInterval(),
		Classes:  cfg.ReportClasses,
		Logger:   logger.Sublogger("tracker"),
	})
	if err != nil {
		return err
	}
	if cfg.ConfigFilePath != "" {
		watcher, err := config.NewWatcher(ctx, cfg.ConfigFilePath, logger.Sublogger("config"))
		if err != nil {
			return err
		}
		watchCtx, cancelWatch := context.WithCancel(ctx)
		watchDone := make(chan struct{})
		goutils.ManagedGo(func() {
			watchConfig(watchCtx, fileCfg, watcher, logger)
		}, func() { close(watchDone) })
		defer func() {
			cancelWatch()
			<-watchDone
			goutils.UncheckedError(watcher.Close())
		}()
	}

	// Run owns closing the provider and the sink from here on.
	providerGuard.Success()
	sinkGuard.Success()

	goutils.ContextMainReadyFunc(ctx)()
	return t.Run(ctx)
}

// watchConfig applies log pattern changes from the config file while the tracker runs. Other
// changes are compared against the file as it was read at startup, before command line
// overrides, and only reported.
func watchConfig(ctx context.Context, fromFile *config.Config, watcher config.Watcher, logger logging.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case next := <-watcher.Config():
			if fromFile.RequiresRestart(next) {
				logger.CWarnw(ctx, "config changed; restart to apply changes other than log levels",
					"path", next.ConfigFilePath)
			}
			if err := next.ApplyLogConfig(logger); err != nil {
				logger.CWarnw(ctx, "failed to apply log configuration", "error", err)
				continue
			}
			logger.CInfow(ctx, "applied log configuration", "path", next.ConfigFilePath, "patterns", len(next.Log))
		}
	}
}

// loadConfig reads the config file, if any, and returns it along with a copy that has the
// command line overrides applied.
func loadConfig(ctx context.Context, argsParsed Arguments, logger logging.Logger) (*config.Config, *config.Config, error) {
	configFile := argsParsed.ConfigFile
	if configFile == "" {
		configFile = os.Getenv(utils.ConfigEnvVar)
	}
	var fileCfg *config.Config
	var err error
	if configFile == "" {
		fileCfg, err = config.Default()
	} else {
		fileCfg, err = config.Read(ctx, configFile, logger)
	}
	if err != nil {
		return nil, nil, err
	}

	cfg := *fileCfg

	if argsParsed.Provider != "" && argsParsed.Provider != cfg.Provider.Type {
		cfg.Provider = resource.Config{Type: argsParsed.Provider}
	}
	if argsParsed.Origin != "" {
		origin, err := tracking.ParseOrigin(argsParsed.Origin)
		if err != nil {
			return nil, nil, err
		}
		cfg.Origin = origin
	}
	switch {
	case argsParsed.Interval < 0:
		return nil, nil, errors.Errorf("interval must be positive, got %dms", argsParsed.Interval)
	case argsParsed.Interval > 0:
		cfg.SetPollInterval(time.Duration(argsParsed.Interval) * time.Millisecond)
	}
	return fileCfg, &cfg, nil
}

// newSinks builds every configured sink, closing those already built if one fails.
func newSinks(ctx context.Context, confs []resource.Config, logger logging.Logger) (report.Sink, error) {
	sinks := make([]report.Sink, 0, len(confs))
	for _, conf := range confs {
		sink, err := report.NewSink(ctx, conf, logger)
		if err != nil {
			for _, built := range sinks {
				err = multierr.Combine(err, built.Close(ctx))
			}
			return nil, errors.Wrapf(err, "failed to create %s sink", conf.Type)
		}
		sinks = append(sinks, sink)
	}
	return report.NewMultiSink(sinks...), nil
}
