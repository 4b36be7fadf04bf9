package shortlist

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/shortlist/retention"
)

// Metric names exported by PrometheusCollector.
const (
	MetricSearchesTotal  = "shortlist_searches_total"
	MetricSearchDuration = "shortlist_search_duration_seconds"
	MetricTuplesTotal    = "shortlist_tuples_total"
	MetricOffersTotal    = "shortlist_offers_total"
	MetricRescoredTotal  = "shortlist_rescored_total"
	MetricBatchesTotal   = "shortlist_batches_total"
	MetricBatchFailures  = "shortlist_batch_failed_requests_total"
	MetricBatchDuration  = "shortlist_batch_duration_seconds"
	statusOK             = "ok"
	statusError          = "error"
)

// PrometheusCollector is a MetricsCollector backed by Prometheus collectors.
// The collectors are not registered; call Register.
// All methods are safe for concurrent use.
type PrometheusCollector struct {
	searches       *prometheus.CounterVec
	searchDuration prometheus.Histogram
	tuples         prometheus.Counter
	offers         *prometheus.CounterVec
	rescored       prometheus.Counter
	batches        prometheus.Counter
	batchFailures  prometheus.Counter
	batchDuration  prometheus.Histogram
}

// NewPrometheusCollector creates the collectors.
func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricSearchesTotal,
			Help: "Searches by stop reason and status",
		}, []string{"reason", "status"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricSearchDuration,
			Help:    "Search wall time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		tuples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricTuplesTotal,
			Help: "Tuples pulled from generators",
		}),
		offers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricOffersTotal,
			Help: "Candidates offered to retention sets by outcome",
		}, []string{"outcome"}),
		rescored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRescoredTotal,
			Help: "Retained items whose score changed on rescoring",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricBatchesTotal,
			Help: "RunAll calls",
		}),
		batchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricBatchFailures,
			Help: "Requests that failed inside RunAll",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricBatchDuration,
			Help:    "RunAll wall time in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Register registers all collectors with reg.
func (p *PrometheusCollector) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		p.searches,
		p.searchDuration,
		p.tuples,
		p.offers,
		p.rescored,
		p.batches,
		p.batchFailures,
		p.batchDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordSearch implements MetricsCollector.
func (p *PrometheusCollector) RecordSearch(sum Summary, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}
	p.searches.WithLabelValues(sum.Reason.String(), status).Inc()
	p.searchDuration.Observe(sum.Duration.Seconds())
	p.tuples.Add(float64(sum.Tuples))
}

// RecordOffer implements MetricsCollector.
func (p *PrometheusCollector) RecordOffer(outcome retention.Outcome) {
	p.offers.WithLabelValues(outcome.String()).Inc()
}

// RecordRescore implements MetricsCollector.
func (p *PrometheusCollector) RecordRescore(res retention.RescoreResult) {
	p.rescored.Add(float64(res.Rescored))
}

// RecordBatch implements MetricsCollector.
func (p *PrometheusCollector) RecordBatch(_, failed int, duration time.Duration) {
	p.batches.Inc()
	p.batchFailures.Add(float64(failed))
	p.batchDuration.Observe(duration.Seconds())
}
