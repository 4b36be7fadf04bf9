// Package retention implements a bounded multi-criteria retention set.
//
// A Set keeps at most Cap candidates. Every offered candidate is judged by all
// registered appraisers; their verdicts are combined into a
// score.CompositeScore that honors appraiser priority, and the candidate is
// retained when there is room or when it strictly outranks the current
// minimum, which is then evicted.
//
//	set, _ := retention.New[string, Itinerary](50)
//	set.AddAppraiser(carrierCoverage, 20)
//	set.AddAppraiser(fewerStops, 10)
//
//	for it := range candidates {
//	    switch set.Offer(it) {
//	    case retention.OutcomeRejected:
//	        // no progress
//	    }
//	}
//	for it := range set.Items() {
//	    // best first
//	}
//
// Candidates offered with OfferLocked, or locked later with Lock, are never
// evicted until unlocked.
//
// # Re-scoring
//
// Appraisers may be stateful. When an appraiser's state advances it can ask
// for RescoreIfAffected: retained items are re-judged by that appraiser only
// and their score is rebuilt from the ledger of every other appraiser's last
// verdict; recently rejected candidates are offered again.
//
// # Concurrency
//
// A Set is meant to be owned by one goroutine (one request). WithSynchronized
// guards the whole public surface with a single mutex when sharing is needed.
package retention
