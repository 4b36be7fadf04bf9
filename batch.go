package shortlist

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/shortlist/retention"
)

// Request is one independent unit of work for RunAll.
type Request interface {
	Run(ctx context.Context) (Summary, error)
}

// RequestFunc adapts a function to Request.
type RequestFunc func(ctx context.Context) (Summary, error)

// Run implements Request.
func (f RequestFunc) Run(ctx context.Context) (Summary, error) { return f(ctx) }

// NewRequest binds the arguments of Search into a Request. Each request must
// own its source, producer state and set.
func NewRequest[K comparable, C retention.Candidate[K]](src TupleSource, p Producer[K, C], set *retention.Set[K, C], optFns ...Option) Request {
	return RequestFunc(func(ctx context.Context) (Summary, error) {
		return Search(ctx, src, p, set, optFns...)
	})
}

// RunAll runs reqs concurrently and returns their summaries in input order.
// With WithBudget, at most the budget's worker count run at once. The first
// error cancels the context passed to the remaining requests and is returned.
func RunAll(ctx context.Context, reqs []Request, optFns ...Option) ([]Summary, error) {
	o := applyOptions(optFns)
	logger := o.logger.WithRequest(o.requestID)
	start := time.Now()

	out := make([]Summary, len(reqs))
	errs := make([]error, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			if err := o.budget.AcquireWorker(gctx); err != nil {
				errs[i] = err
				return err
			}
			defer o.budget.ReleaseWorker()

			sum, err := req.Run(gctx)
			out[i] = sum
			if err != nil {
				errs[i] = err
				return fmt.Errorf("request %d: %w", i, err)
			}
			return nil
		})
	}
	err := g.Wait()

	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	o.metricsCollector.RecordBatch(len(reqs), failed, time.Since(start))
	logger.LogBatch(ctx, len(reqs), failed)

	return out, err
}
