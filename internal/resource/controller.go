package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for charged memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxWorkers is the maximum number of requests evaluated concurrently.
	// If 0, defaults to 1.
	MaxWorkers int64

	// OffersPerSec paces candidate offers. If 0, unlimited.
	OffersPerSec float64

	// OfferBurst is the token bucket size for offers. Defaults to OffersPerSec.
	OfferBurst int
}

// Controller manages the resources of one request or of a whole process.
// All methods are safe for concurrent use.
type Controller struct {
	cfg    Config
	parent *Controller

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	workers *semaphore.Weighted

	// Offers
	offerLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.OffersPerSec > 0 {
		burst := cfg.OfferBurst
		if burst <= 0 {
			burst = max(int(cfg.OffersPerSec), 1)
		}
		c.offerLimiter = rate.NewLimiter(rate.Limit(cfg.OffersPerSec), burst)
	}

	return c
}

// Child returns a controller whose memory charges also count against c.
// Workers and offer pacing are independent of the parent.
func (c *Controller) Child(cfg Config) *Controller {
	child := NewController(cfg)
	child.parent = c
	return child
}

// AcquireMemory attempts to reserve memory on c and all of its ancestors.
// Returns ErrMemoryLimitExceeded if any limit would be exceeded; nothing is
// reserved in that case.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}
	if err := c.parent.AcquireMemory(bytes); err != nil {
		if c.memSem != nil {
			c.memSem.Release(bytes)
		}
		return err
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory on c and all of its ancestors.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
	c.parent.ReleaseMemory(bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireWorker reserves a worker slot, blocking until one is free.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workers.Acquire(ctx, 1)
}

// TryAcquireWorker attempts to reserve a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.workers.TryAcquire(1)
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workers.Release(1)
}

// MaxWorkers returns the number of worker slots.
func (c *Controller) MaxWorkers() int64 {
	if c == nil {
		return 1
	}
	return c.cfg.MaxWorkers
}

// WaitOffer blocks until the next offer is allowed.
func (c *Controller) WaitOffer(ctx context.Context) error {
	if c == nil || c.offerLimiter == nil {
		return nil
	}
	return c.offerLimiter.Wait(ctx)
}

// AllowOffer reports whether an offer may happen now, consuming a token if so.
func (c *Controller) AllowOffer() bool {
	if c == nil || c.offerLimiter == nil {
		return true
	}
	return c.offerLimiter.AllowN(time.Now(), 1)
}
