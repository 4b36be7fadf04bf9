package appraiser

import "github.com/hupe1980/shortlist/score"

// Func adapts fn to the retention.Appraiser interface.
func Func[C any](id string, fn func(C) score.Verdict) *FuncAppraiser[C] {
	return &FuncAppraiser[C]{id: id, fn: fn}
}

// FuncAppraiser is a stateless appraiser backed by a function.
type FuncAppraiser[C any] struct {
	id string
	fn func(C) score.Verdict
}

// ID implements retention.Appraiser.
func (f *FuncAppraiser[C]) ID() string { return f.id }

// Evaluate implements retention.Appraiser.
func (f *FuncAppraiser[C]) Evaluate(c C) score.Verdict { return f.fn(c) }
