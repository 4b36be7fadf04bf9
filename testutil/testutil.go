package testutil

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/shortlist/score"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Zipf returns a Zipf-distributed value in [0, n) with exponent s > 0.
// Small values are much more likely than large ones.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 1 {
		return 0
	}
	var norm float64
	for i := 1; i <= n; i++ {
		norm += 1 / math.Pow(float64(i), s)
	}
	u := r.rand.Float64() * norm
	for i := 1; i <= n; i++ {
		u -= 1 / math.Pow(float64(i), s)
		if u <= 0 {
			return i - 1
		}
	}
	return n - 1
}

// Perm returns a random permutation of [0, n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Verdict returns a random verdict with a minor rank in [-9, 9].
func (r *RNG) Verdict() score.Verdict {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat := score.Category(r.rand.Intn(4) - 1)
	return score.Verdict{Category: cat, Minor: r.rand.Intn(19) - 9}
}

// Option is one choice within a catalog dimension.
type Option struct {
	Cost     int
	Stops    int
	Class    string
	Elements []uint32
}

// Candidate is a combination of one option per dimension.
type Candidate struct {
	ID       string
	Tuple    []int
	Cost     int
	Stops    int
	Classes  []string
	Elements []uint32
}

// Key returns the candidate identity.
func (c Candidate) Key() string { return c.ID }

// Attributes exposes the candidate to expression appraisers.
func (c Candidate) Attributes() map[string]any {
	return map[string]any{
		"cost":    c.Cost,
		"stops":   c.Stops,
		"classes": c.Classes,
		"rank":    sum(c.Tuple),
	}
}

// Catalog is a synthetic combinatorial space. Options within a dimension are
// sorted by ascending cost, so index order is preference order.
type Catalog struct {
	Dims [][]Option
}

// Catalog builds a catalog of width dimensions with 1..maxLen options each.
// Elements are drawn from [0, 4*maxLen) so candidates overlap in coverage.
func (r *RNG) Catalog(width, maxLen int) *Catalog {
	classes := []string{"a", "b", "c"}
	cat := &Catalog{Dims: make([][]Option, width)}
	for d := range cat.Dims {
		n := 1 + r.Intn(maxLen)
		opts := make([]Option, n)
		for i := range opts {
			opts[i] = Option{
				Cost:     r.Intn(100),
				Stops:    r.Intn(3),
				Class:    classes[r.Intn(len(classes))],
				Elements: []uint32{uint32(r.Intn(4 * maxLen)), uint32(r.Intn(4 * maxLen))},
			}
		}
		sort.SliceStable(opts, func(i, j int) bool { return opts[i].Cost < opts[j].Cost })
		cat.Dims[d] = opts
	}
	return cat
}

// Width returns the number of dimensions.
func (c *Catalog) Width() int { return len(c.Dims) }

// Lengths returns the number of options per dimension.
func (c *Catalog) Lengths() []int {
	out := make([]int, len(c.Dims))
	for i, d := range c.Dims {
		out[i] = len(d)
	}
	return out
}

// Candidate combines the options selected by tuple.
func (c *Catalog) Candidate(tuple []int) Candidate {
	parts := make([]string, len(tuple))
	cand := Candidate{Tuple: slices.Clone(tuple)}
	for d, i := range tuple {
		o := c.Dims[d][i]
		parts[d] = fmt.Sprint(i)
		cand.Cost += o.Cost
		cand.Stops += o.Stops
		cand.Classes = append(cand.Classes, o.Class)
		cand.Elements = append(cand.Elements, o.Elements...)
	}
	cand.ID = strings.Join(parts, "-")
	return cand
}

// Produce implements shortlist.Producer. Tuples outside the catalog are
// skipped.
func (c *Catalog) Produce(_ context.Context, tuple []int) (Candidate, bool, error) {
	if len(tuple) != len(c.Dims) {
		return Candidate{}, false, fmt.Errorf("tuple width %d, catalog width %d", len(tuple), len(c.Dims))
	}
	for d, i := range tuple {
		if i < 0 || i >= len(c.Dims[d]) {
			return Candidate{}, false, nil
		}
	}
	return c.Candidate(tuple), true, nil
}

// All returns every candidate in lexicographic tuple order.
func (c *Catalog) All() []Candidate {
	var out []Candidate
	tuple := make([]int, len(c.Dims))
	var walk func(d int)
	walk = func(d int) {
		if d == len(c.Dims) {
			out = append(out, c.Candidate(tuple))
			return
		}
		for i := range c.Dims[d] {
			tuple[d] = i
			walk(d + 1)
		}
	}
	walk(0)
	return out
}

// ExactTopK returns the keys of the k best candidates, best first, by
// exhaustive sorting. Equal scores keep input order, earlier first.
func ExactTopK[K comparable, C interface{ Key() K }](cands []C, k int, scoreOf func(C) score.CompositeScore) []K {
	type scored struct {
		key K
		s   score.CompositeScore
	}
	all := make([]scored, len(cands))
	for i, c := range cands {
		all[i] = scored{key: c.Key(), s: scoreOf(c)}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[j].s.Less(all[i].s) })

	out := make([]K, 0, min(k, len(all)))
	for i := 0; i < len(all) && i < k; i++ {
		out = append(out, all[i].key)
	}
	return out
}

// Overlap returns the fraction of want found in got.
func Overlap[K comparable](want, got []K) float64 {
	if len(want) == 0 {
		return 1
	}
	set := make(map[K]struct{}, len(got))
	for _, k := range got {
		set[k] = struct{}{}
	}
	hits := 0
	for _, k := range want {
		if _, ok := set[k]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}
