package retention

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/shortlist/score"
	"github.com/hupe1980/shortlist/testutil"
)

type item struct {
	id    string
	class string
}

func (i item) Key() string { return i.id }

// table is an appraiser with a fixed verdict per key.
type table struct {
	name     string
	verdicts map[string]score.Verdict
}

func (t *table) ID() string { return t.name }

func (t *table) Evaluate(c item) score.Verdict { return t.verdicts[c.id] }

// counter tracks the composition of the set like a diversity appraiser.
type counter struct {
	retained map[string]int
	evicted  []string
}

func (c *counter) ID() string { return "counter" }

func (c *counter) Evaluate(item) score.Verdict { return score.Verdict{} }

func (c *counter) Retained(it item) { c.retained[it.class]++ }

func (c *counter) Evicted(it item) {
	c.retained[it.class]--
	c.evicted = append(c.evicted, it.id)
}

type budget struct {
	limit, used int64
}

func (b *budget) AcquireMemory(n int64) error {
	if b.used+n > b.limit {
		return errors.New("over limit")
	}
	b.used += n
	return nil
}

func (b *budget) ReleaseMemory(n int64) { b.used -= n }

func requireViolation(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, target), "got %v", err)
	}()
	fn()
}

func keys(s *Set[string, item]) []string {
	var out []string
	for it := range s.Items() {
		out = append(out, it.id)
	}
	return out
}

func TestNew_InvalidCapacity(t *testing.T) {
	_, err := New[string, item](0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = New[string, item](math.MaxInt32)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestSet_WorkedExample(t *testing.T) {
	a := &table{name: "a", verdicts: map[string]score.Verdict{
		"x": score.Must(0), "y": score.Nice(0), "z": score.Must(5),
	}}
	b := &table{name: "b", verdicts: map[string]score.Verdict{
		"x": score.Must(0), "z": score.Must(5),
	}}

	s, err := New[string, item](2)
	require.NoError(t, err)
	s.AddAppraiser(a, 10)
	s.AddAppraiser(b, 20)

	assert.Equal(t, OutcomeInserted, s.Offer(item{id: "x"}))
	assert.Equal(t, OutcomeInserted, s.Offer(item{id: "y"}))
	assert.Equal(t, OutcomeReplaced, s.Offer(item{id: "z"}))

	assert.Equal(t, []string{"z", "x"}, keys(s))
	assert.False(t, s.Contains("y"))

	st := s.Stats()
	assert.Equal(t, 3, st.Offers)
	assert.Equal(t, 1, st.Evictions)
	assert.Equal(t, 0, st.NoProgress)
}

func TestSet_RejectsWhenNotStrictlyBetter(t *testing.T) {
	a := &table{name: "a", verdicts: map[string]score.Verdict{
		"x": score.Must(0), "y": score.Nice(0), "tie": score.Nice(0), "worse": score.Remove(0),
	}}
	s, _ := New[string, item](2)
	s.AddAppraiser(a, 1)

	s.Offer(item{id: "x"})
	s.Offer(item{id: "y"})

	assert.Equal(t, OutcomeRejected, s.Offer(item{id: "tie"}))
	assert.Equal(t, OutcomeRejected, s.Offer(item{id: "worse"}))
	assert.Equal(t, []string{"x", "y"}, keys(s))

	st := s.Stats()
	assert.Equal(t, 2, st.NoProgress)
	assert.Equal(t, 2, st.Rejected)
	assert.Equal(t, 4, st.Offers)
}

func TestSet_Violations(t *testing.T) {
	a := &table{name: "a"}

	t.Run("duplicate key", func(t *testing.T) {
		s, _ := New[string, item](2)
		s.AddAppraiser(a, 1)
		s.Offer(item{id: "x"})
		requireViolation(t, ErrDuplicateKey, func() { s.Offer(item{id: "x"}) })
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, 1, s.Stats().Offers)
	})

	t.Run("registration after offer", func(t *testing.T) {
		s, _ := New[string, item](2)
		s.AddAppraiser(a, 1)
		s.Offer(item{id: "x"})
		requireViolation(t, ErrRegistrationClosed, func() { s.AddAppraiser(&table{name: "b"}, 2) })
		assert.Equal(t, 1, s.Width())
	})

	t.Run("duplicate appraiser", func(t *testing.T) {
		s, _ := New[string, item](2)
		s.AddAppraiser(a, 1)
		requireViolation(t, ErrDuplicateAppraiser, func() { s.AddAppraiser(&table{name: "a"}, 3) })
	})

	t.Run("nil appraiser", func(t *testing.T) {
		s, _ := New[string, item](2)
		requireViolation(t, ErrNilAppraiser, func() { s.AddAppraiser(nil, 3) })
	})

	t.Run("unknown appraiser on rescore", func(t *testing.T) {
		s, _ := New[string, item](2)
		s.AddAppraiser(a, 1)
		requireViolation(t, ErrUnknownAppraiser, func() { s.RescoreIfAffected(&table{name: "zz"}, "x") })
	})

	t.Run("lock unknown key", func(t *testing.T) {
		s, _ := New[string, item](2)
		requireViolation(t, ErrUnknownKey, func() { s.Lock("x") })
	})
}

func TestSet_Locking(t *testing.T) {
	a := &table{name: "a", verdicts: map[string]score.Verdict{
		"direct": score.Remove(0), "x": score.Nice(0), "y": score.Must(0), "z": score.Must(1),
	}}
	s, _ := New[string, item](2)
	s.AddAppraiser(a, 1)

	assert.Equal(t, OutcomeInserted, s.OfferLocked(item{id: "direct"}))
	assert.Equal(t, OutcomeInserted, s.Offer(item{id: "x"}))
	assert.True(t, s.Locked("direct"))

	// y beats x; direct is worse than both but locked.
	assert.Equal(t, OutcomeReplaced, s.Offer(item{id: "y"}))
	assert.Equal(t, []string{"y", "direct"}, keys(s))

	assert.Equal(t, OutcomeReplaced, s.OfferLocked(item{id: "z"}), "locked offers evict the lowest unlocked item")
	assert.Equal(t, []string{"z", "direct"}, keys(s))

	requireViolation(t, ErrLockOverflow, func() { s.OfferLocked(item{id: "w"}) })
	assert.Equal(t, OutcomeRejected, s.Offer(item{id: "x"}), "nothing is evictable")

	s.Unlock("direct")
	assert.Equal(t, OutcomeReplaced, s.Offer(item{id: "x"}))
	assert.Equal(t, []string{"z", "x"}, keys(s))
}

func TestSet_Observers(t *testing.T) {
	a := &table{name: "a", verdicts: map[string]score.Verdict{"b": score.Must(0)}}
	c := &counter{retained: map[string]int{}}

	s, _ := New[string, item](1)
	s.AddAppraiser(a, 2)
	s.AddAppraiser(c, 1)

	s.Offer(item{id: "a", class: "AA"})
	s.Offer(item{id: "b", class: "BB"})

	assert.Equal(t, map[string]int{"AA": 0, "BB": 1}, c.retained)
	assert.Equal(t, []string{"a"}, c.evicted)

	assert.True(t, s.Remove("b"))
	assert.False(t, s.Remove("b"))
	assert.Equal(t, 0, c.retained["BB"])
}

func TestSet_RescoreIfAffected(t *testing.T) {
	a := &table{name: "a", verdicts: map[string]score.Verdict{
		"x": score.Must(0), "y": score.Must(0), "z": score.Nice(0),
	}}
	b := &table{name: "b", verdicts: map[string]score.Verdict{}}

	s, _ := New[string, item](2)
	s.AddAppraiser(a, 20)
	s.AddAppraiser(b, 10)

	s.Offer(item{id: "x"})
	s.Offer(item{id: "y"})
	assert.Equal(t, OutcomeRejected, s.Offer(item{id: "z"}))
	assert.Equal(t, []string{"x", "y"}, keys(s))

	t.Run("no change is a no-op", func(t *testing.T) {
		before := s.Trace()
		res := s.RescoreIfAffected(b, "x", "y")
		assert.Equal(t, RescoreResult{}, res)
		assert.Equal(t, before, s.Trace())
	})

	t.Run("lower priority change reorders", func(t *testing.T) {
		b.verdicts["y"] = score.Nice(0)
		res := s.RescoreIfAffected(b, "x", "y", "unknown")
		assert.Equal(t, 1, res.Rescored)
		assert.Equal(t, []string{"y", "x"}, keys(s))

		v, ok := s.ledger.Verdict("y", "a")
		require.True(t, ok)
		assert.Equal(t, score.Must(0), v, "other appraisers are not asked again")
	})

	t.Run("rejected candidate is re-offered", func(t *testing.T) {
		a.verdicts["x"] = score.Remove(0)
		res := s.RescoreIfAffected(a, "x")
		assert.Equal(t, 1, res.Rescored)

		res = s.RescoreIfAffected(a, "z")
		assert.Equal(t, RescoreResult{Reoffered: 1, Retained: 1}, res)
		assert.Equal(t, []string{"y", "z"}, keys(s))
		assert.Equal(t, 1, s.Stats().Reoffered)
	})
}

func TestSet_RejectMemoryBound(t *testing.T) {
	a := &table{name: "a", verdicts: map[string]score.Verdict{"keep": score.Must(0)}}
	s, _ := New[string, item](1, WithRejectMemory(2))
	s.AddAppraiser(a, 1)

	s.Offer(item{id: "keep"})
	for _, id := range []string{"r1", "r2", "r3"} {
		s.Offer(item{id: id})
	}
	assert.Equal(t, 2, s.rejects.len())

	a.verdicts["r1"] = score.Must(9)
	a.verdicts["r3"] = score.Must(9)
	assert.Equal(t, 0, s.RescoreIfAffected(a, "r1").Reoffered, "oldest rejection was forgotten")
	assert.Equal(t, 1, s.RescoreIfAffected(a, "r3").Retained)
}

func TestSet_MemoryAccountant(t *testing.T) {
	a := &table{name: "a", verdicts: map[string]score.Verdict{"c": score.Must(0)}}
	b := &budget{limit: 200}
	s, _ := New[string, item](3, WithMemoryAccountant(b, 100))
	s.AddAppraiser(a, 1)

	assert.Equal(t, OutcomeInserted, s.Offer(item{id: "a"}))
	assert.Equal(t, OutcomeInserted, s.Offer(item{id: "b"}))
	assert.Equal(t, OutcomeOverBudget, s.Offer(item{id: "x"}))
	assert.Equal(t, int64(200), b.used)
	assert.Equal(t, 1, s.Stats().NoProgress)

	s.Remove("a")
	assert.Equal(t, int64(100), b.used)

	s.Release()
	assert.Equal(t, int64(0), b.used)
	assert.Equal(t, 0, s.Len())
}

func TestSet_Trace(t *testing.T) {
	a := &table{name: "a", verdicts: map[string]score.Verdict{"x": score.Must(2)}}
	b := &table{name: "b", verdicts: map[string]score.Verdict{"x": score.Nice(0)}}
	s, _ := New[string, item](2)
	s.AddAppraiser(a, 5)
	s.AddAppraiser(b, 1)
	s.OfferLocked(item{id: "x"})

	tr := s.Trace()
	require.Len(t, tr, 1)
	assert.Equal(t, "x", tr[0].Key)
	assert.True(t, tr[0].Locked)
	assert.Equal(t, []int{1, 0}, tr[0].Matrix[score.RowMust])
	assert.Equal(t, []int{0, 1}, tr[0].Matrix[score.RowNice])
	assert.Equal(t, []AppraiserVerdict{
		{Appraiser: "a", Priority: 5, Verdict: score.Must(2)},
		{Appraiser: "b", Priority: 1, Verdict: score.Nice(0)},
	}, tr[0].Verdicts)
}

func TestSet_Invariants(t *testing.T) {
	rng := testutil.NewRNG(3)
	categories := []score.Category{score.WantToRemove, score.Ignore, score.NiceToHave, score.MustHave}
	random := func() score.Verdict {
		return score.Verdict{Category: categories[rng.Intn(len(categories))], Minor: rng.Intn(5)}
	}

	a := &table{name: "a", verdicts: map[string]score.Verdict{}}
	b := &table{name: "b", verdicts: map[string]score.Verdict{}}
	const capacity = 8
	s, _ := New[string, item](capacity)
	s.AddAppraiser(a, 3)
	s.AddAppraiser(b, 3)
	s.AddAppraiser(&counter{retained: map[string]int{}}, 7)

	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("c%d", rng.Intn(300))
		a.verdicts[id], b.verdicts[id] = random(), random()

		switch {
		case s.Contains(id):
			s.RescoreIfAffected(a, id)
		case rng.Intn(50) == 0 && s.Len() > 0:
			k := s.Keys()[rng.Intn(s.Len())]
			if s.Locked(k) {
				s.Unlock(k)
			} else {
				s.Lock(k)
			}
		default:
			minItem, minScore, hasMin := s.Min()
			full := s.Len() == capacity
			out := s.Offer(item{id: id})
			if full && hasMin && out == OutcomeReplaced {
				assert.False(t, s.Contains(minItem.id), "minimum must be evicted")
				sc, _ := s.Score(id)
				assert.Equal(t, 1, sc.Compare(minScore))
			}
		}

		require.LessOrEqual(t, s.Len(), capacity)
		require.NoError(t, s.heap.Check())
		for _, k := range s.Keys() {
			sc, ok := s.Score(k)
			require.True(t, ok)
			require.Equal(t, 2, sc.Width())
		}
	}
}

func TestSet_Synchronized(t *testing.T) {
	a := &table{name: "a", verdicts: map[string]score.Verdict{}}
	for i := 0; i < 400; i++ {
		a.verdicts[fmt.Sprint(i)] = score.Must(i % 17)
	}
	s, _ := New[string, item](10, WithSynchronized())
	s.AddAppraiser(a, 1)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < 400; i += 4 {
				s.Offer(item{id: fmt.Sprint(i)})
				_ = s.Len()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 10, s.Len())
	assert.Equal(t, 400, s.Stats().Offers)
	for it := range s.Items() {
		sc, _ := s.Score(it.id)
		assert.GreaterOrEqual(t, sc.At(score.RowMinor, 0), 15)
	}
}
