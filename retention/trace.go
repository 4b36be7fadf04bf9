package retention

import "github.com/hupe1980/shortlist/score"

// AppraiserVerdict is one appraiser's last verdict on a retained item.
type AppraiserVerdict struct {
	Appraiser string         `json:"appraiser"`
	Priority  score.Priority `json:"priority"`
	Verdict   score.Verdict  `json:"verdict"`
}

// TraceEntry is the diagnostic view of one retained item. The layout of
// Matrix follows CompositeScore and is not a stable format.
type TraceEntry[K comparable] struct {
	Key      K                    `json:"key"`
	Locked   bool                 `json:"locked"`
	Score    score.CompositeScore `json:"-"`
	Matrix   [score.Rows][]int    `json:"matrix"`
	Verdicts []AppraiserVerdict   `json:"verdicts"`
}

// Trace returns the retained items from best to worst together with every
// appraiser's last verdict and the derived composite score.
func (s *Set[K, C]) Trace() []TraceEntry[K] {
	defer s.lock()()

	out := make([]TraceEntry[K], 0, s.heap.Len())
	for k, sc := range s.heap.Ordered() {
		verdicts, _ := s.ledger.Lookup(k)
		e := TraceEntry[K]{
			Key:      k,
			Locked:   s.heap.Locked(k),
			Score:    sc,
			Matrix:   sc.Matrix(),
			Verdicts: make([]AppraiserVerdict, 0, len(s.appraisers)),
		}
		for _, r := range s.appraisers {
			id := r.appraiser.ID()
			e.Verdicts = append(e.Verdicts, AppraiserVerdict{Appraiser: id, Priority: r.priority, Verdict: verdicts[id]})
		}
		out = append(out, e)
	}
	return out
}
