package appraiser

import "github.com/hupe1980/shortlist/score"

// Quota limits how many retained candidates share a class, e.g. the same
// outbound schedule.
//
// Candidates of a class that is already at its limit are WantToRemove, with
// a minor rank that gets worse the further the class is over the limit.
// Candidates of an unrepresented class are NiceToHave; others are Ignore.
type Quota[C any] struct {
	id      string
	classOf func(C) string
	limit   int
	counts  map[string]int
}

// NewQuota returns a quota appraiser allowing limit retained items per class.
func NewQuota[C any](id string, limit int, classOf func(C) string) *Quota[C] {
	return &Quota[C]{id: id, classOf: classOf, limit: max(limit, 1), counts: make(map[string]int)}
}

// ID implements retention.Appraiser.
func (a *Quota[C]) ID() string { return a.id }

// Evaluate implements retention.Appraiser.
func (a *Quota[C]) Evaluate(c C) score.Verdict {
	return a.judge(a.counts[a.classOf(c)])
}

// Reevaluate implements retention.Reappraiser. c itself is not counted.
func (a *Quota[C]) Reevaluate(c C) score.Verdict {
	return a.judge(max(a.counts[a.classOf(c)]-1, 0))
}

func (a *Quota[C]) judge(n int) score.Verdict {
	switch {
	case n >= a.limit:
		return score.Remove(a.limit - n - 1)
	case n == 0:
		return score.Nice(0)
	default:
		return score.Verdict{}
	}
}

// Retained implements retention.Observer.
func (a *Quota[C]) Retained(c C) { a.counts[a.classOf(c)]++ }

// Evicted implements retention.Observer.
func (a *Quota[C]) Evicted(c C) {
	class := a.classOf(c)
	if a.counts[class] <= 1 {
		delete(a.counts, class)
		return
	}
	a.counts[class]--
}

// Count returns the number of retained items of class.
func (a *Quota[C]) Count(class string) int { return a.counts[class] }
