package shortlist

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/shortlist/internal/contract"
	"github.com/hupe1980/shortlist/retention"
)

// TupleSource yields index tuples, best first. *generator.Generator
// implements it.
type TupleSource interface {
	Next() ([]int, bool)
}

// Producer turns an index tuple into a candidate. ok=false skips the tuple
// (for example an invalid combination); a non-nil error aborts the search.
type Producer[K comparable, C retention.Candidate[K]] interface {
	Produce(ctx context.Context, tuple []int) (c C, ok bool, err error)
}

// ProducerFunc adapts a function to Producer.
type ProducerFunc[K comparable, C retention.Candidate[K]] func(ctx context.Context, tuple []int) (C, bool, error)

// Produce implements Producer.
func (f ProducerFunc[K, C]) Produce(ctx context.Context, tuple []int) (C, bool, error) {
	return f(ctx, tuple)
}

// StopReason tells why a search ended.
type StopReason uint8

const (
	// StopExhausted means the tuple source ran dry.
	StopExhausted StopReason = iota
	// StopMaxOffers means the offer limit was reached.
	StopMaxOffers
	// StopNoProgress means too many consecutive offers changed nothing.
	StopNoProgress
	// StopCanceled means the context was done.
	StopCanceled
	// StopFailed means the producer failed or a contract was violated.
	StopFailed
)

func (r StopReason) String() string {
	switch r {
	case StopExhausted:
		return "exhausted"
	case StopMaxOffers:
		return "max-offers"
	case StopNoProgress:
		return "no-progress"
	case StopCanceled:
		return "canceled"
	case StopFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Summary describes a finished search.
type Summary struct {
	RequestID  string
	Reason     StopReason
	Tuples     int // tuples pulled from the source
	Skipped    int // tuples the producer declined
	Duplicates int // candidates whose key was already retained
	Rank       int // rank reached, when the source reports one
	Retained   int
	Stats      retention.Stats
	Duration   time.Duration
}

type ranked interface {
	Rank() int
}

// Search pulls tuples from src, turns them into candidates with p and offers
// them to set until src is exhausted, ctx is done or a configured limit is
// reached. Candidates whose key is already retained are skipped.
//
// A contract violation raised by set (for example another goroutine
// retaining the same key between the duplicate check and the offer) aborts
// this search with a *ContractViolationError instead of crashing the
// process. Any other panic propagates.
func Search[K comparable, C retention.Candidate[K]](ctx context.Context, src TupleSource, p Producer[K, C], set *retention.Set[K, C], optFns ...Option) (sum Summary, err error) {
	o := applyOptions(optFns)
	sum.RequestID = o.requestID

	if src == nil || p == nil || set == nil {
		return sum, ErrNilArgument
	}
	if set.Width() == 0 {
		return sum, ErrNoAppraisers
	}

	logger := o.logger.WithRequest(o.requestID).WithCapacity(set.Cap())
	start := time.Now()
	base := set.Stats().Offers

	defer func() {
		if r := recover(); r != nil {
			err = &ContractViolationError{RequestID: o.requestID, cause: contract.Recover(r)}
			sum.Reason = StopFailed
		}
		if rs, ok := src.(ranked); ok {
			sum.Rank = rs.Rank()
		}
		sum.Stats = set.Stats()
		sum.Retained = set.Len()
		sum.Duration = time.Since(start)
		o.metricsCollector.RecordSearch(sum, err)
		logger.LogSearch(ctx, sum, err)
	}()

	for {
		if err := ctx.Err(); err != nil {
			sum.Reason = StopCanceled
			return sum, err
		}

		stats := set.Stats()
		if o.maxOffers > 0 && stats.Offers-base >= o.maxOffers {
			sum.Reason = StopMaxOffers
			return sum, nil
		}
		if o.noProgressLimit > 0 && stats.NoProgress >= o.noProgressLimit {
			sum.Reason = StopNoProgress
			return sum, nil
		}

		tuple, ok := src.Next()
		if !ok {
			sum.Reason = StopExhausted
			return sum, nil
		}
		sum.Tuples++

		c, ok, perr := p.Produce(ctx, tuple)
		if perr != nil {
			sum.Reason = StopFailed
			return sum, &ProducerError{Tuple: tuple, cause: perr}
		}
		if !ok {
			sum.Skipped++
			continue
		}
		if set.Contains(c.Key()) {
			sum.Duplicates++
			continue
		}

		if err := o.budget.WaitOffer(ctx); err != nil {
			sum.Reason = StopCanceled
			return sum, fmt.Errorf("offer pacing: %w", err)
		}

		o.metricsCollector.RecordOffer(set.Offer(c))
	}
}

// Rescore re-judges keys after appraiser a changed its mind, see
// retention.Set.RescoreIfAffected. A contract violation is returned as a
// *ContractViolationError.
func Rescore[K comparable, C retention.Candidate[K]](ctx context.Context, set *retention.Set[K, C], a retention.Appraiser[C], keys []K, optFns ...Option) (res retention.RescoreResult, err error) {
	o := applyOptions(optFns)
	if set == nil || a == nil {
		return res, ErrNilArgument
	}

	defer func() {
		if r := recover(); r != nil {
			err = &ContractViolationError{RequestID: o.requestID, cause: contract.Recover(r)}
			return
		}
		o.metricsCollector.RecordRescore(res)
		o.logger.WithRequest(o.requestID).LogRescore(ctx, a.ID(), res)
	}()

	return set.RescoreIfAffected(a, keys...), nil
}
