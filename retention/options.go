package retention

import (
	"log/slog"
	"sync"
)

type options struct {
	logger       *slog.Logger
	mu           *sync.Mutex
	accountant   MemoryAccountant
	itemBytes    int64
	rejectMemory int
}

// Option configures a Set.
type Option func(*options)

// WithLogger sets the logger used for debug events. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSynchronized guards every public method with one mutex.
func WithSynchronized() Option {
	return func(o *options) {
		o.mu = &sync.Mutex{}
	}
}

// WithMemoryAccountant charges itemBytes against acc for every retained item.
// Offers that cannot be charged return OutcomeOverBudget.
func WithMemoryAccountant(acc MemoryAccountant, itemBytes int64) Option {
	return func(o *options) {
		o.accountant = acc
		o.itemBytes = itemBytes
	}
}

// WithRejectMemory sets how many recently rejected candidates are remembered
// for RescoreIfAffected. Defaults to the capacity; 0 disables it.
func WithRejectMemory(n int) Option {
	return func(o *options) {
		o.rejectMemory = max(n, 0)
	}
}
