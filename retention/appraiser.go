package retention

import "github.com/hupe1980/shortlist/score"

// Candidate is anything with a stable identity.
type Candidate[K comparable] interface {
	Key() K
}

// Appraiser judges candidates. ID must be unique within a Set.
type Appraiser[C any] interface {
	ID() string
	Evaluate(c C) score.Verdict
}

// Observer is implemented by appraisers that track the composition of the
// retained set. Retained and Evicted are called after the set has changed.
type Observer[C any] interface {
	Retained(c C)
	Evicted(c C)
}

// Reappraiser is implemented by observers whose verdict depends on the
// retained set. Reevaluate judges a retained c with its own contribution
// to that state left out, as if c were offered again.
type Reappraiser[C any] interface {
	Reevaluate(c C) score.Verdict
}

// MemoryAccountant is the per-request memory budget the set charges for
// every retained item.
type MemoryAccountant interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Outcome is the result of offering a candidate.
type Outcome uint8

const (
	// OutcomeRejected means the candidate did not outrank the minimum.
	OutcomeRejected Outcome = iota
	// OutcomeInserted means the candidate was added without eviction.
	OutcomeInserted
	// OutcomeReplaced means the candidate was added and the minimum evicted.
	OutcomeReplaced
	// OutcomeOverBudget means the memory accountant refused the insertion.
	OutcomeOverBudget
)

// Retained reports whether the candidate is now part of the set.
func (o Outcome) Retained() bool {
	return o == OutcomeInserted || o == OutcomeReplaced
}

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeInserted:
		return "inserted"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeOverBudget:
		return "over-budget"
	default:
		return "unknown"
	}
}

// Stats are the counters of a Set.
type Stats struct {
	Offers     int // total Offer and OfferLocked calls
	Inserted   int
	Replaced   int
	Rejected   int // includes over-budget refusals
	Evictions  int
	NoProgress int // consecutive offers that left the set unchanged
	Rescored   int // retained items whose score changed on rescoring
	Reoffered  int // rejected candidates offered again on rescoring
}
