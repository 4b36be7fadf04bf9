// Package testutil provides testing utilities for shortlist.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG, synthetic multi-dimensional catalogs that
// produce candidates, and brute-force reference selections.
//
// # Synthetic Catalogs
//
//	rng := testutil.NewRNG(seed)
//	cat := rng.Catalog(3, 8)          // 3 dimensions, up to 8 options each
//	gen := generator.New(cat.Width(), generator.WithLengths(cat.Lengths()...))
//	c, _, _ := cat.Produce(ctx, []int{0, 2, 1})
//
// # Reference Selection
//
//	want := testutil.ExactTopK[string](cat.All(), k, scoreOf)
//	overlap := testutil.Overlap(want, got)
package testutil
