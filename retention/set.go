package retention

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/hupe1980/shortlist/internal/contract"
	"github.com/hupe1980/shortlist/internal/conv"
	"github.com/hupe1980/shortlist/internal/queue"
	"github.com/hupe1980/shortlist/score"
)

type registered[C any] struct {
	appraiser Appraiser[C]
	priority  score.Priority
	observer  Observer[C] // nil unless the appraiser implements Observer
}

// Set is a bounded best-K container of candidates.
type Set[K comparable, C Candidate[K]] struct {
	capacity   int
	appraisers []registered[C]
	byID       map[string]int
	combiner   *score.Combiner
	ledger     *score.Ledger[K]
	heap       *queue.Heap[K]
	items      map[K]C
	rejects    *rejects[K, C]
	stats      Stats
	opts       options
}

// New returns an empty Set holding at most capacity candidates.
func New[K comparable, C Candidate[K]](capacity int, optFns ...Option) (*Set[K, C], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if _, err := conv.IntToInt32(capacity + 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCapacity, err)
	}

	opts := options{
		logger:       slog.New(slog.DiscardHandler),
		rejectMemory: -1,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.rejectMemory < 0 {
		opts.rejectMemory = capacity
	}

	return &Set[K, C]{
		capacity: capacity,
		byID:     make(map[string]int),
		combiner: score.NewCombiner(),
		ledger:   score.NewLedger[K](),
		heap:     queue.New[K](capacity + 1),
		items:    make(map[K]C, capacity+1),
		rejects:  newRejects[K, C](opts.rejectMemory),
		opts:     opts,
	}, nil
}

func (s *Set[K, C]) lock() func() {
	if s.opts.mu == nil {
		return func() {}
	}
	s.opts.mu.Lock()
	return s.opts.mu.Unlock
}

// AddAppraiser registers a with the given priority. Registration is only
// allowed before the first offer.
func (s *Set[K, C]) AddAppraiser(a Appraiser[C], priority score.Priority) {
	defer s.lock()()

	if a == nil {
		contract.Fail("retention.AddAppraiser", ErrNilAppraiser)
	}
	id := a.ID()
	if _, dup := s.byID[id]; dup {
		contract.Failf("retention.AddAppraiser", ErrDuplicateAppraiser, "%q", id)
	}
	s.combiner.Register(priority)

	r := registered[C]{appraiser: a, priority: priority}
	if o, ok := a.(Observer[C]); ok {
		r.observer = o
	}
	s.byID[id] = len(s.appraisers)
	s.appraisers = append(s.appraisers, r)

	s.opts.logger.Debug("appraiser registered", "appraiser", id, "priority", priority, "width", s.combiner.Width())
}

// Cap returns the configured capacity.
func (s *Set[K, C]) Cap() int { return s.capacity }

// Len returns the number of retained candidates.
func (s *Set[K, C]) Len() int {
	defer s.lock()()
	return s.heap.Len()
}

// Width returns the width of every composite score this set produces.
func (s *Set[K, C]) Width() int {
	defer s.lock()()
	return s.combiner.Width()
}

// Contains reports whether key is retained.
func (s *Set[K, C]) Contains(key K) bool {
	defer s.lock()()
	return s.heap.Contains(key)
}

// Get returns the retained candidate for key.
func (s *Set[K, C]) Get(key K) (C, bool) {
	defer s.lock()()
	c, ok := s.items[key]
	return c, ok
}

// Score returns the composite score of a retained key.
func (s *Set[K, C]) Score(key K) (score.CompositeScore, bool) {
	defer s.lock()()
	return s.heap.Score(key)
}

// Min returns the retained candidate that would be evicted next.
func (s *Set[K, C]) Min() (C, score.CompositeScore, bool) {
	defer s.lock()()
	k, sc, ok := s.heap.Min()
	if !ok {
		var zero C
		return zero, sc, false
	}
	return s.items[k], sc, true
}

// Stats returns a snapshot of the counters.
func (s *Set[K, C]) Stats() Stats {
	defer s.lock()()
	return s.stats
}

// Offer judges c and retains it if there is room or if it strictly outranks
// the current minimum. Panics if c's key is already retained.
func (s *Set[K, C]) Offer(c C) Outcome {
	defer s.lock()()
	return s.offer(c, false)
}

// OfferLocked retains c unconditionally and locks it against eviction. When
// the set is full the lowest unlocked item is evicted. Panics if c's key is
// already retained or if every retained item is locked.
func (s *Set[K, C]) OfferLocked(c C) Outcome {
	defer s.lock()()
	return s.offer(c, true)
}

// Lock exempts a retained key from eviction. Panics if key is not retained.
func (s *Set[K, C]) Lock(key K) {
	defer s.lock()()
	s.heap.SetLocked(key, true)
}

// Unlock makes a retained key evictable again. Panics if key is not retained.
func (s *Set[K, C]) Unlock(key K) {
	defer s.lock()()
	s.heap.SetLocked(key, false)
}

// Locked reports whether key is retained and locked.
func (s *Set[K, C]) Locked(key K) bool {
	defer s.lock()()
	return s.heap.Locked(key)
}

// Remove drops a retained key, locked or not, and reports whether it was present.
func (s *Set[K, C]) Remove(key K) bool {
	defer s.lock()()
	c, ok := s.items[key]
	if !ok {
		return false
	}
	s.drop(key)
	s.notifyEvicted(c)
	return true
}

// Items yields the retained candidates from best to worst. The set must not
// be mutated during iteration unless it is synchronized.
func (s *Set[K, C]) Items() iter.Seq[C] {
	return func(yield func(C) bool) {
		for _, c := range s.snapshot() {
			if !yield(c) {
				return
			}
		}
	}
}

// Keys returns the retained keys from best to worst.
func (s *Set[K, C]) Keys() []K {
	defer s.lock()()
	keys := make([]K, 0, s.heap.Len())
	for k := range s.heap.Ordered() {
		keys = append(keys, k)
	}
	return keys
}

// Release returns every charged byte to the memory accountant. The set is
// empty afterwards.
func (s *Set[K, C]) Release() {
	defer s.lock()()
	for _, k := range s.heap.Keys() {
		s.drop(k)
	}
}

func (s *Set[K, C]) snapshot() []C {
	defer s.lock()()
	out := make([]C, 0, s.heap.Len())
	for k := range s.heap.Ordered() {
		out = append(out, s.items[k])
	}
	return out
}

func (s *Set[K, C]) offer(c C, locked bool) Outcome {
	const op = "retention.Offer"

	key := c.Key()
	if s.heap.Contains(key) {
		contract.Failf(op, ErrDuplicateKey, "key %v", key)
	}
	s.combiner.Freeze()

	verdicts := make([]score.Verdict, len(s.appraisers))
	for i, r := range s.appraisers {
		verdicts[i] = r.appraiser.Evaluate(c)
	}
	sc := s.combine(func(i int) score.Verdict { return verdicts[i] })

	var (
		victim  K
		evict   bool
		outcome = OutcomeInserted
	)
	if s.heap.Len() >= s.capacity {
		minKey, minScore, ok := s.heap.Min()
		switch {
		case !ok && locked:
			contract.Failf("retention.OfferLocked", ErrLockOverflow, "capacity %d", s.capacity)
		case !ok, !locked && sc.Compare(minScore) <= 0:
			s.stats.Offers++
			return s.reject(key, c, OutcomeRejected)
		}
		victim, evict, outcome = minKey, true, OutcomeReplaced
	}
	s.stats.Offers++

	if !evict && s.opts.accountant != nil {
		if err := s.opts.accountant.AcquireMemory(s.opts.itemBytes); err != nil {
			s.opts.logger.Debug("offer over budget", "key", key, "error", err)
			return s.reject(key, c, OutcomeOverBudget)
		}
	}

	var evicted C
	if evict {
		evicted = s.items[victim]
		s.removeEntry(victim)
		s.stats.Evictions++
	}
	s.heap.Add(key, sc)
	if locked {
		s.heap.SetLocked(key, true)
	}
	s.items[key] = c
	for i, r := range s.appraisers {
		s.ledger.Set(key, r.appraiser.ID(), verdicts[i])
	}
	s.rejects.forget(key)

	if evict {
		s.stats.Replaced++
		s.opts.logger.Debug("candidate evicted", "evicted", victim, "by", key, "score", sc.String())
		s.notifyEvicted(evicted)
	} else {
		s.stats.Inserted++
	}
	s.stats.NoProgress = 0
	s.notifyRetained(c)

	return outcome
}

func (s *Set[K, C]) reject(key K, c C, outcome Outcome) Outcome {
	s.stats.Rejected++
	s.stats.NoProgress++
	s.rejects.put(key, c)
	return outcome
}

// combine builds a composite score from one verdict per registered appraiser.
func (s *Set[K, C]) combine(verdict func(i int) score.Verdict) score.CompositeScore {
	s.combiner.Begin()
	for i, r := range s.appraisers {
		s.combiner.Add(r.priority, verdict(i))
	}
	return s.combiner.Result()
}

// removeEntry forgets key without releasing memory; the slot is reused.
func (s *Set[K, C]) removeEntry(key K) {
	s.heap.Remove(key)
	delete(s.items, key)
	s.ledger.Forget(key)
}

func (s *Set[K, C]) drop(key K) {
	s.removeEntry(key)
	if s.opts.accountant != nil {
		s.opts.accountant.ReleaseMemory(s.opts.itemBytes)
	}
}

func (s *Set[K, C]) notifyRetained(c C) {
	for _, r := range s.appraisers {
		if r.observer != nil {
			r.observer.Retained(c)
		}
	}
}

func (s *Set[K, C]) notifyEvicted(c C) {
	for _, r := range s.appraisers {
		if r.observer != nil {
			r.observer.Evicted(c)
		}
	}
}
