package score

import (
	"maps"

	"github.com/hupe1980/shortlist/internal/contract"
)

// Ledger records, per item, the last verdict of every appraiser.
type Ledger[K comparable] struct {
	entries map[K]map[string]Verdict
}

// NewLedger returns an empty ledger.
func NewLedger[K comparable]() *Ledger[K] {
	return &Ledger[K]{entries: make(map[K]map[string]Verdict)}
}

// Set records v as appraiser's verdict for item and reports whether it
// differs from the previous one.
func (l *Ledger[K]) Set(item K, appraiser string, v Verdict) bool {
	if appraiser == "" {
		contract.Fail("score.Ledger.Set", ErrEmptyAppraiserID)
	}
	m, ok := l.entries[item]
	if !ok {
		m = make(map[string]Verdict)
		l.entries[item] = m
	}
	old, had := m[appraiser]
	m[appraiser] = v
	return !had || old != v
}

// Verdict returns appraiser's last verdict for item.
func (l *Ledger[K]) Verdict(item K, appraiser string) (Verdict, bool) {
	v, ok := l.entries[item][appraiser]
	return v, ok
}

// Verdicts returns a copy of all verdicts recorded for item.
// Panics if item has none.
func (l *Ledger[K]) Verdicts(item K) map[string]Verdict {
	m, ok := l.Lookup(item)
	if !ok {
		contract.Failf("score.Ledger.Verdicts", ErrNoVerdicts, "item %v", item)
	}
	return m
}

// Lookup is the non-panicking form of Verdicts.
func (l *Ledger[K]) Lookup(item K) (map[string]Verdict, bool) {
	m, ok := l.entries[item]
	if !ok || len(m) == 0 {
		return nil, false
	}
	return maps.Clone(m), true
}

// Forget drops everything recorded for item.
func (l *Ledger[K]) Forget(item K) { delete(l.entries, item) }

// Len returns the number of items with recorded verdicts.
func (l *Ledger[K]) Len() int { return len(l.entries) }
