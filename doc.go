// Package shortlist selects the best K candidates out of a combinatorial
// space without enumerating it.
//
// A request pairs a generator that yields index tuples in non-decreasing
// combined-rank order with a bounded retention set that judges every
// candidate through prioritized appraisers and keeps the top K:
//
//	gen := generator.New(2, generator.WithLengths(len(outbound), len(inbound)))
//	set, _ := retention.New[string, Trip](20)
//	set.AddAppraiser(appraiser.NewCoverage("flights", flightsOf), 30)
//	set.AddAppraiser(appraiser.Func("price", priceVerdict), 10)
//
//	sum, err := shortlist.Search(ctx, gen, producer, set,
//	    shortlist.WithNoProgressLimit(5000),
//	    shortlist.WithMetricsCollector(metrics),
//	)
//	for trip := range set.Items() {
//	    // best first
//	}
//
// # Packages
//
//   - generator: the tuple enumerator
//   - retention: the bounded retention set
//   - score: verdicts, composite scores and the ledger of verdicts
//   - appraiser: built-in appraisers (coverage, quota, CEL expressions)
//   - trace: encoded diagnostic reports of a retention set
//
// # Concurrency
//
// A request (generator, producer, set) is single-threaded; independent
// requests run in parallel with RunAll. A Budget bounds memory, workers and
// offer rate across requests.
//
// # Errors
//
// Misuse of the API (duplicate keys, unknown priorities, registering
// appraisers after the first offer) panics with an error that wraps a
// package sentinel. Search and Rescore recover such panics and return a
// *ContractViolationError, so a bad request cannot take down its neighbors.
package shortlist
