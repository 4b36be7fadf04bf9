package score

import (
	"iter"

	"github.com/hupe1980/shortlist/internal/contract"
	"github.com/hupe1980/shortlist/internal/rankindex"
)

// Combiner accumulates verdicts into a CompositeScore.
//
// Register every appraiser priority first, then for each item call Begin,
// Add once per verdict and Result. The width of every produced score equals
// the number of distinct registered priorities.
type Combiner struct {
	index  rankindex.Index
	acc    CompositeScore
	frozen bool
}

// NewCombiner returns a Combiner with the given priorities registered.
func NewCombiner(priorities ...Priority) *Combiner {
	c := &Combiner{}
	for _, p := range priorities {
		c.Register(p)
	}
	return c
}

// Register adds an appraiser priority. Panics after Freeze.
func (c *Combiner) Register(p Priority) {
	if c.frozen {
		contract.Failf("score.Combiner.Register", ErrRegistrationClosed, "priority %d", p)
	}
	c.index.Insert(p)
}

// Freeze forbids further registration. Scores produced afterwards all share
// one shape.
func (c *Combiner) Freeze() { c.frozen = true }

// Frozen reports whether Freeze was called.
func (c *Combiner) Frozen() bool { return c.frozen }

// Width returns the number of distinct registered priorities.
func (c *Combiner) Width() int { return c.index.Len() }

// Priorities returns the distinct registered priorities in ascending order.
func (c *Combiner) Priorities() []Priority { return c.index.Priorities() }

// Column returns the column a priority contributes to.
// Panics if p is not registered.
func (c *Combiner) Column(p Priority) int {
	return c.index.Len() - 1 - c.index.Rank(p)
}

// Begin resets the accumulator to zero at the current width.
func (c *Combiner) Begin() {
	w := c.index.Len()
	if c.acc.width != w || c.acc.cells == nil {
		c.acc = NewCompositeScore(w)
		return
	}
	clear(c.acc.cells)
}

// Add projects v and adds it to the column of priority p.
func (c *Combiner) Add(p Priority, v Verdict) {
	col := c.Column(p)
	if c.acc.width != c.index.Len() {
		contract.Failf("score.Combiner.Add", ErrShapeMismatch,
			"accumulator width %d, registered %d", c.acc.width, c.index.Len())
	}
	c.acc.add(col, v.Vector())
}

// Result returns a copy of the accumulated score.
func (c *Combiner) Result() CompositeScore {
	if c.acc.cells == nil {
		return NewCompositeScore(c.index.Len())
	}
	return c.acc.Clone()
}

// Combine scores a whole set of (priority, verdict) pairs in one go.
func (c *Combiner) Combine(verdicts iter.Seq2[Priority, Verdict]) CompositeScore {
	c.Begin()
	for p, v := range verdicts {
		c.Add(p, v)
	}
	return c.Result()
}
