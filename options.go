package shortlist

import (
	"log/slog"

	"github.com/google/uuid"
)

type options struct {
	requestID        string
	maxOffers        int
	noProgressLimit  int
	budget           *Budget
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Search, Rescore and RunAll.
type Option func(*options)

// WithRequestID tags logs, metrics and the Summary with id.
// By default a random UUID is used.
func WithRequestID(id string) Option {
	return func(o *options) {
		o.requestID = id
	}
}

// WithMaxOffers stops a search after n offers. n <= 0 means no limit.
func WithMaxOffers(n int) Option {
	return func(o *options) {
		o.maxOffers = n
	}
}

// WithNoProgressLimit stops a search after n consecutive offers that left the
// set unchanged. n <= 0 means no limit.
//
// Generators enumerate in non-decreasing rank order, so a long run of
// rejections usually means the remaining tuples are worse than what is kept.
func WithNoProgressLimit(n int) Option {
	return func(o *options) {
		o.noProgressLimit = n
	}
}

// WithBudget paces offers with b and, for RunAll, bounds the number of
// concurrently running requests by b's worker slots.
func WithBudget(b *Budget) Option {
	return func(o *options) {
		o.budget = b
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &shortlist.BasicMetricsCollector{}
//	sum, err := shortlist.Search(ctx, gen, producer, set, shortlist.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("offers: %d, evictions: %d\n", stats.OfferCount, stats.Evictions)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.requestID == "" {
		o.requestID = uuid.NewString()
	}
	return o
}
