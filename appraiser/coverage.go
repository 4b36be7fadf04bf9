package appraiser

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/shortlist/score"
)

// Coverage wants every element of a universe (flights, carriers, ...) to be
// covered by at least one retained candidate.
//
// A candidate covering at least one uncovered element is MustHave with the
// number of newly covered elements as minor rank; anything else is Ignore.
type Coverage[C any] struct {
	id       string
	elements func(C) []uint32
	covered  *roaring.Bitmap
	counts   map[uint32]int
}

// NewCoverage returns a coverage appraiser. elements lists the element ids
// a candidate covers.
func NewCoverage[C any](id string, elements func(C) []uint32) *Coverage[C] {
	return &Coverage[C]{
		id:       id,
		elements: elements,
		covered:  roaring.New(),
		counts:   make(map[uint32]int),
	}
}

// ID implements retention.Appraiser.
func (a *Coverage[C]) ID() string { return a.id }

// Evaluate implements retention.Appraiser.
func (a *Coverage[C]) Evaluate(c C) score.Verdict {
	fresh := a.own(c)
	fresh.AndNot(a.covered)
	if n := fresh.GetCardinality(); n > 0 {
		return score.Must(int(n))
	}
	return score.Verdict{}
}

// Reevaluate implements retention.Reappraiser. Elements covered by c alone
// count as fresh.
func (a *Coverage[C]) Reevaluate(c C) score.Verdict {
	n := 0
	for it := a.own(c).Iterator(); it.HasNext(); {
		if a.counts[it.Next()] <= 1 {
			n++
		}
	}
	if n > 0 {
		return score.Must(n)
	}
	return score.Verdict{}
}

// Retained implements retention.Observer.
func (a *Coverage[C]) Retained(c C) {
	for it := a.own(c).Iterator(); it.HasNext(); {
		e := it.Next()
		a.counts[e]++
		a.covered.Add(e)
	}
}

// Evicted implements retention.Observer.
func (a *Coverage[C]) Evicted(c C) {
	for it := a.own(c).Iterator(); it.HasNext(); {
		e := it.Next()
		switch n := a.counts[e]; {
		case n > 1:
			a.counts[e] = n - 1
		case n == 1:
			delete(a.counts, e)
			a.covered.Remove(e)
		}
	}
}

// own returns the distinct elements c covers.
func (a *Coverage[C]) own(c C) *roaring.Bitmap {
	return roaring.BitmapOf(a.elements(c)...)
}

// Covered reports whether element e is covered.
func (a *Coverage[C]) Covered(e uint32) bool { return a.covered.Contains(e) }

// CoveredCount returns the number of covered elements.
func (a *Coverage[C]) CoveredCount() int { return int(a.covered.GetCardinality()) }

// Missing returns the elements of universe that are not covered, ascending.
func (a *Coverage[C]) Missing(universe []uint32) []uint32 {
	m := roaring.BitmapOf(universe...)
	m.AndNot(a.covered)
	return m.ToArray()
}

// Complete reports whether every element of universe is covered.
func (a *Coverage[C]) Complete(universe []uint32) bool {
	for _, e := range universe {
		if !a.covered.Contains(e) {
			return false
		}
	}
	return true
}
