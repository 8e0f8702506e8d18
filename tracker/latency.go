package tracker

import (
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/multierr"
)

// maxLatencySamples bounds how many fetch latencies are kept.
const maxLatencySamples = 4096

// LatencySummary describes how long the provider took to return pose tables.
type LatencySummary struct {
	Samples int
	Mean    time.Duration
	Median  time.Duration
	P95     time.Duration
	Max     time.Duration
}

func (t *Tracker) recordFetchLatency(d time.Duration) {
	if len(t.fetchLatencies) == maxLatencySamples {
		copy(t.fetchLatencies, t.fetchLatencies[1:])
		t.fetchLatencies = t.fetchLatencies[:maxLatencySamples-1]
	}
	t.fetchLatencies = append(t.fetchLatencies, float64(d))
}

// FetchLatency summarizes the most recent successful fetches. It is zero before the first one.
func (t *Tracker) FetchLatency() (LatencySummary, error) {
	data := stats.Float64Data(t.fetchLatencies)
	if data.Len() == 0 {
		return LatencySummary{}, nil
	}
	mean, errMean := stats.Mean(data)
	median, errMedian := stats.Median(data)
	p95, errP95 := stats.Percentile(data, 95)
	maxLatency, errMax := stats.Max(data)
	if err := multierr.Combine(errMean, errMedian, errP95, errMax); err != nil {
		return LatencySummary{}, err
	}
	return LatencySummary{
		Samples: data.Len(),
		Mean:    time.Duration(mean),
		Median:  time.Duration(median),
		P95:     time.Duration(p95),
		Max:     time.Duration(maxLatency),
	}, nil
}
