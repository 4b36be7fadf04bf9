package retention

import (
	"github.com/hupe1980/shortlist/internal/contract"
	"github.com/hupe1980/shortlist/score"
)

// RescoreResult summarizes a RescoreIfAffected call.
type RescoreResult struct {
	Rescored  int // retained items whose score changed
	Reoffered int // remembered rejections offered again
	Retained  int // re-offered candidates that made it into the set
}

// RescoreIfAffected re-judges keys after appraiser a's internal state
// changed.
//
// Retained keys are evaluated by a only, through Reevaluate when a is a
// Reappraiser; the composite score is rebuilt from the ledger and the heap
// is updated if the score moved. Keys that were
// recently rejected are offered again through the normal admission path and
// may evict the minimum. Other keys are ignored. When a's verdicts are
// unchanged the set is left exactly as it was.
//
// Panics if a is not registered.
func (s *Set[K, C]) RescoreIfAffected(a Appraiser[C], keys ...K) RescoreResult {
	defer s.lock()()

	idx, ok := s.byID[a.ID()]
	if !ok {
		contract.Failf("retention.RescoreIfAffected", ErrUnknownAppraiser, "%q", a.ID())
	}
	id := s.appraisers[idx].appraiser.ID()
	evaluate := a.Evaluate
	if r, ok := a.(Reappraiser[C]); ok {
		evaluate = r.Reevaluate
	}

	var res RescoreResult
	for _, key := range keys {
		if c, retained := s.items[key]; retained {
			if !s.ledger.Set(key, id, evaluate(c)) {
				continue
			}
			if s.heap.Update(key, s.rescore(key)) {
				res.Rescored++
			}
			continue
		}

		c, remembered := s.rejects.take(key)
		if !remembered {
			continue
		}
		res.Reoffered++
		if s.offer(c, false).Retained() {
			res.Retained++
		}
	}

	s.stats.Rescored += res.Rescored
	s.stats.Reoffered += res.Reoffered
	if res.Rescored > 0 || res.Reoffered > 0 {
		s.opts.logger.Debug("rescored", "appraiser", id, "keys", len(keys),
			"rescored", res.Rescored, "reoffered", res.Reoffered, "retained", res.Retained)
	}
	return res
}

// rescore rebuilds the composite score of a retained key from the ledger.
func (s *Set[K, C]) rescore(key K) score.CompositeScore {
	verdicts := s.ledger.Verdicts(key)
	return s.combine(func(i int) score.Verdict {
		return verdicts[s.appraisers[i].appraiser.ID()]
	})
}
