package shortlist

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/shortlist/retention"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems;
// PrometheusCollector is a ready-made implementation.
type MetricsCollector interface {
	// RecordSearch is called once per Search with its summary.
	// err is nil if the search stopped normally.
	RecordSearch(sum Summary, err error)

	// RecordOffer is called after each candidate offered by Search.
	RecordOffer(outcome retention.Outcome)

	// RecordRescore is called after each Rescore.
	RecordRescore(res retention.RescoreResult)

	// RecordBatch is called after each RunAll call.
	// count is the number of requests, failed the number that returned an error.
	RecordBatch(count, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(Summary, error)           {}
func (NoopMetricsCollector) RecordOffer(retention.Outcome)         {}
func (NoopMetricsCollector) RecordRescore(retention.RescoreResult) {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	TuplesTotal      atomic.Int64
	OfferCount       atomic.Int64
	OfferRetained    atomic.Int64
	OfferRejected    atomic.Int64
	OfferOverBudget  atomic.Int64
	Evictions        atomic.Int64
	RescoreCount     atomic.Int64
	Rescored         atomic.Int64
	BatchCount       atomic.Int64
	BatchRequests    atomic.Int64
	BatchFailed      atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(sum Summary, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(sum.Duration.Nanoseconds())
	b.TuplesTotal.Add(int64(sum.Tuples))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordOffer implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOffer(outcome retention.Outcome) {
	b.OfferCount.Add(1)
	switch outcome {
	case retention.OutcomeInserted:
		b.OfferRetained.Add(1)
	case retention.OutcomeReplaced:
		b.OfferRetained.Add(1)
		b.Evictions.Add(1)
	case retention.OutcomeOverBudget:
		b.OfferOverBudget.Add(1)
	default:
		b.OfferRejected.Add(1)
	}
}

// RecordRescore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRescore(res retention.RescoreResult) {
	b.RescoreCount.Add(1)
	b.Rescored.Add(int64(res.Rescored))
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchRequests.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:     b.SearchCount.Load(),
		SearchErrors:    b.SearchErrors.Load(),
		SearchAvgNanos:  b.getAvgSearchNanos(),
		TuplesTotal:     b.TuplesTotal.Load(),
		OfferCount:      b.OfferCount.Load(),
		OfferRetained:   b.OfferRetained.Load(),
		OfferRejected:   b.OfferRejected.Load(),
		OfferOverBudget: b.OfferOverBudget.Load(),
		Evictions:       b.Evictions.Load(),
		RescoreCount:    b.RescoreCount.Load(),
		Rescored:        b.Rescored.Load(),
		BatchCount:      b.BatchCount.Load(),
		BatchRequests:   b.BatchRequests.Load(),
		BatchFailed:     b.BatchFailed.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount     int64
	SearchErrors    int64
	SearchAvgNanos  int64
	TuplesTotal     int64
	OfferCount      int64
	OfferRetained   int64
	OfferRejected   int64
	OfferOverBudget int64
	Evictions       int64
	RescoreCount    int64
	Rescored        int64
	BatchCount      int64
	BatchRequests   int64
	BatchFailed     int64
}
