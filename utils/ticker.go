package utils

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/milou/vrtracker/logging"
)

// SlowLogger starts a goroutine that warns every few seconds until the returned func is called
// or the context is done. The first warning comes after two seconds.
func SlowLogger(
	ctx context.Context, clk clock.Clock, msg, fieldName string, fieldVal interface{}, logger logging.Logger,
) func() {
	slowTicker := clk.Ticker(2 * time.Second)
	firstTick := true

	ctxWithCancel, cancel := context.WithCancel(ctx)
	startTime := clk.Now()
	go func() {
		for {
			select {
			case <-slowTicker.C:
				elapsed := clk.Since(startTime).Round(time.Second).String()
				logger.CWarnw(ctx, msg, fieldName, fieldVal, "time_elapsed", elapsed)
				if firstTick {
					slowTicker.Reset(3 * time.Second)
					firstTick = false
				} else {
					slowTicker.Reset(5 * time.Second)
				}
			case <-ctxWithCancel.Done():
				return
			}
		}
	}()
	return func() { slowTicker.Stop(); cancel() }
}
