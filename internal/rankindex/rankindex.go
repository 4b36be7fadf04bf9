// Package rankindex maps appraiser priorities to dense ranks.
package rankindex

import (
	"errors"
	"slices"

	"github.com/hupe1980/shortlist/internal/contract"
)

// ErrUnknownPriority is raised when ranking a priority that was never inserted.
var ErrUnknownPriority = errors.New("priority not registered")

// Index is a dense-rank lookup over a set of distinct priorities.
//
// Rank(p) is the number of distinct inserted priorities strictly less than p.
// The zero value is ready to use.
type Index struct {
	sorted []int // distinct, ascending
}

// Insert adds p. Inserting an existing priority is a no-op.
func (x *Index) Insert(p int) {
	i, found := slices.BinarySearch(x.sorted, p)
	if found {
		return
	}
	x.sorted = slices.Insert(x.sorted, i, p)
}

// Lookup returns the dense rank of p and whether p is present.
func (x *Index) Lookup(p int) (int, bool) {
	return slices.BinarySearch(x.sorted, p)
}

// Rank returns the dense rank of p. Panics if p was never inserted.
func (x *Index) Rank(p int) int {
	r, ok := x.Lookup(p)
	if !ok {
		contract.Failf("rankindex.Rank", ErrUnknownPriority, "priority %d", p)
	}
	return r
}

// Len returns the number of distinct priorities.
func (x *Index) Len() int { return len(x.sorted) }

// Priorities returns the distinct priorities in ascending order.
func (x *Index) Priorities() []int {
	return slices.Clone(x.sorted)
}

// Contains reports whether p was inserted.
func (x *Index) Contains(p int) bool {
	_, ok := x.Lookup(p)
	return ok
}
