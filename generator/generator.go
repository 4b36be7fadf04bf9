// Package generator enumerates multi-dimensional index tuples in
// non-decreasing rank order, where the rank of a tuple is the sum of its
// indices.
//
// Each dimension is either finite (indices 0..length-1) or unbounded. Within
// one rank, outer dimensions advance lexicographically and the innermost
// dimension takes whatever rank is left:
//
//	g := generator.New(2)
//	g.SetDimensionLength(0, 3)
//	// (0,0) (0,1) (1,0) (0,2) (1,1) (2,0) (0,3) ...
//
// A generator with an unbounded dimension never runs out on its own; bound
// it with WithRankLimit or stop pulling.
package generator

import (
	"errors"
	"iter"
	"slices"

	"github.com/hupe1980/shortlist/internal/contract"
)

var (
	// ErrInvalidWidth is raised when the width is not positive.
	ErrInvalidWidth = errors.New("generator width must be positive")
	// ErrZeroLengthDimension is raised when a dimension is given length 0.
	ErrZeroLengthDimension = errors.New("zero-length dimension")
	// ErrDimensionOutOfRange is raised for a dimension index outside [0, width).
	ErrDimensionOutOfRange = errors.New("dimension out of range")
	// ErrStarted is raised when reconfiguring a generator that already emitted.
	ErrStarted = errors.New("generator already started")
)

// unbounded marks a dimension without an upper index.
const unbounded = -1

// Option configures a Generator.
type Option func(*Generator)

// WithRankLimit stops the enumeration after every tuple of rank r was emitted.
func WithRankLimit(r int) Option {
	return func(g *Generator) {
		g.rankLimit = r
	}
}

// WithLengths sets the length of the leading dimensions.
func WithLengths(lengths ...int) Option {
	return func(g *Generator) {
		for i, l := range lengths {
			g.SetDimensionLength(i, l)
		}
	}
}

// Generator is a stateful tuple enumerator. It is not safe for concurrent use.
type Generator struct {
	limits    []int // highest valid index per dimension, or unbounded
	tail      []int // tail[i] = sum of limits[i:], or unbounded
	idx       []int
	prefix    []int
	rank      int
	rankLimit int
	emitted   int
	started   bool
	done      bool
}

// New returns a generator over width dimensions, all unbounded.
func New(width int, opts ...Option) *Generator {
	if width < 1 {
		contract.Failf("generator.New", ErrInvalidWidth, "width %d", width)
	}
	g := &Generator{
		limits:    make([]int, width),
		tail:      make([]int, width+1),
		idx:       make([]int, width),
		prefix:    make([]int, width),
		rankLimit: unbounded,
	}
	for i := range g.limits {
		g.limits[i] = unbounded
	}
	g.updateTail()
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Width returns the number of dimensions.
func (g *Generator) Width() int { return len(g.limits) }

// SetDimensionLength makes dimension i finite with indices 0..length-1.
// Panics if length is not positive, i is out of range or the generator has
// started.
func (g *Generator) SetDimensionLength(i, length int) {
	const op = "generator.SetDimensionLength"
	g.checkConfigurable(op, i)
	if length < 1 {
		contract.Failf(op, ErrZeroLengthDimension, "dimension %d length %d", i, length)
	}
	g.limits[i] = length - 1
	g.updateTail()
}

// SetUnbounded removes the upper bound of dimension i.
func (g *Generator) SetUnbounded(i int) {
	g.checkConfigurable("generator.SetUnbounded", i)
	g.limits[i] = unbounded
	g.updateTail()
}

// MaxRank returns the highest rank that will be emitted, or -1 when the
// enumeration is unbounded.
func (g *Generator) MaxRank() int {
	switch {
	case g.tail[0] == unbounded:
		return g.rankLimit
	case g.rankLimit == unbounded:
		return g.tail[0]
	default:
		return min(g.tail[0], g.rankLimit)
	}
}

// Rank returns the rank of the last emitted tuple.
func (g *Generator) Rank() int { return g.rank }

// Emitted returns the number of tuples returned so far.
func (g *Generator) Emitted() int { return g.emitted }

// Exhausted reports whether Next will return no more tuples.
func (g *Generator) Exhausted() bool { return g.done }

// Next returns the next tuple, or false once the space is exhausted.
// The returned slice is owned by the caller.
func (g *Generator) Next() ([]int, bool) {
	if g.done {
		return nil, false
	}
	if !g.started {
		g.started = true
		if !g.startRank(0) {
			return nil, false
		}
	} else if !g.advance() && !g.startRank(g.rank+1) {
		return nil, false
	}
	g.emitted++
	return slices.Clone(g.idx), true
}

// All yields the remaining tuples.
func (g *Generator) All() iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		for {
			t, ok := g.Next()
			if !ok || !yield(t) {
				return
			}
		}
	}
}

// Reset rewinds the enumeration. Dimension lengths are kept and may be
// changed again.
func (g *Generator) Reset() {
	clear(g.idx)
	g.rank, g.emitted = 0, 0
	g.started, g.done = false, false
}

func (g *Generator) checkConfigurable(op string, i int) {
	if i < 0 || i >= len(g.limits) {
		contract.Failf(op, ErrDimensionOutOfRange, "dimension %d of %d", i, len(g.limits))
	}
	if g.started {
		contract.Fail(op, ErrStarted)
	}
}

func (g *Generator) updateTail() {
	w := len(g.limits)
	g.tail[w] = 0
	for i := w - 1; i >= 0; i-- {
		if g.limits[i] == unbounded || g.tail[i+1] == unbounded {
			g.tail[i] = unbounded
			continue
		}
		g.tail[i] = g.limits[i] + g.tail[i+1]
	}
}

// startRank positions on the first tuple of rank r.
func (g *Generator) startRank(r int) bool {
	if limit := g.MaxRank(); limit != unbounded && r > limit {
		g.done = true
		return false
	}
	g.rank = r
	g.fill(0, r)
	return true
}

// fill sets dimensions from..width-1 to the lexicographically smallest
// assignment summing to remaining.
func (g *Generator) fill(from, remaining int) {
	last := len(g.idx) - 1
	for i := from; i < last; i++ {
		lo := 0
		if inner := g.tail[i+1]; inner != unbounded && remaining > inner {
			lo = remaining - inner
		}
		g.idx[i] = lo
		remaining -= lo
	}
	g.idx[last] = remaining
}

// advance moves to the next tuple of the current rank.
func (g *Generator) advance() bool {
	last := len(g.idx) - 1
	remaining := g.rank
	prefix := g.prefix // prefix[i] = rank left for dimensions i..
	for i := 0; i <= last; i++ {
		prefix[i] = remaining
		remaining -= g.idx[i]
	}
	for i := last - 1; i >= 0; i-- {
		hi := prefix[i]
		if l := g.limits[i]; l != unbounded && l < hi {
			hi = l
		}
		if g.idx[i] < hi {
			g.idx[i]++
			g.fill(i+1, prefix[i]-g.idx[i])
			return true
		}
	}
	return false
}
