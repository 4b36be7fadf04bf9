// Package score holds the value types and bookkeeping used to turn the
// verdicts of several prioritized appraisers into one comparable score.
//
// A Verdict is one appraiser's opinion of one candidate. A Combiner projects
// every verdict to a VerdictVector and accumulates it into the column of a
// CompositeScore that belongs to the appraiser's priority group. Higher
// priorities occupy more significant columns, so CompositeScore.Compare is a
// plain lexicographic comparison.
//
// A Ledger remembers the last verdict of every appraiser per candidate so a
// CompositeScore can be rebuilt when a single appraiser changes its mind.
package score
