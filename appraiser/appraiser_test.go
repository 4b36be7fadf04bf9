package appraiser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/shortlist/retention"
	"github.com/hupe1980/shortlist/score"
)

type option struct {
	id       string
	flights  []uint32
	schedule string
	stops    int
	carrier  string
}

func (o option) Key() string { return o.id }

func (o option) Attributes() map[string]any {
	return map[string]any{"stops": o.stops, "carrier": o.carrier}
}

func flights(o option) []uint32 { return o.flights }

func schedule(o option) string { return o.schedule }

var (
	_ retention.Appraiser[option]   = (*Coverage[option])(nil)
	_ retention.Observer[option]    = (*Coverage[option])(nil)
	_ retention.Observer[option]    = (*Quota[option])(nil)
	_ retention.Reappraiser[option] = (*Coverage[option])(nil)
	_ retention.Reappraiser[option] = (*Quota[option])(nil)
	_ retention.Appraiser[option]   = (*Expression[option])(nil)
	_ retention.Appraiser[option]   = (*FuncAppraiser[option])(nil)
)

func TestFunc(t *testing.T) {
	a := Func("stops", func(o option) score.Verdict { return score.Nice(-o.stops) })
	assert.Equal(t, "stops", a.ID())
	assert.Equal(t, score.Nice(-2), a.Evaluate(option{stops: 2}))
}

func TestCoverage(t *testing.T) {
	a := NewCoverage("flights", flights)

	o1 := option{id: "1", flights: []uint32{1, 2}}
	o2 := option{id: "2", flights: []uint32{2, 3, 4}}

	assert.Equal(t, score.Must(2), a.Evaluate(o1))
	a.Retained(o1)
	assert.Equal(t, score.Must(2), a.Evaluate(o2))
	assert.Equal(t, score.Verdict{}, a.Evaluate(option{flights: []uint32{1}}))
	a.Retained(o2)

	assert.Equal(t, 4, a.CoveredCount())
	assert.True(t, a.Complete([]uint32{1, 2, 3, 4}))
	assert.Equal(t, []uint32{5}, a.Missing([]uint32{1, 3, 5}))

	a.Evicted(o1)
	assert.False(t, a.Covered(1))
	assert.True(t, a.Covered(2), "still covered by o2")
	assert.Equal(t, score.Must(1), a.Evaluate(o1))
}

func TestQuota(t *testing.T) {
	a := NewQuota("schedule", 2, schedule)
	x := option{schedule: "AM"}

	assert.Equal(t, score.Nice(0), a.Evaluate(x))
	a.Retained(x)
	assert.Equal(t, score.Verdict{}, a.Evaluate(x))
	a.Retained(x)
	assert.Equal(t, score.Remove(-1), a.Evaluate(x))
	a.Retained(x)
	assert.Equal(t, score.Remove(-2), a.Evaluate(x))

	a.Evicted(x)
	a.Evicted(x)
	a.Evicted(x)
	assert.Equal(t, 0, a.Count("AM"))
	a.Evicted(x)
	assert.Equal(t, 0, a.Count("AM"))
}

func TestExpression(t *testing.T) {
	a, err := NewExpression[option]("nonstop", ExpressionConfig{
		When:  `candidate.stops == 0`,
		Then:  score.MustHave,
		Minor: `candidate.carrier == "LH" ? 1 : 0`,
	})
	require.NoError(t, err)

	assert.Equal(t, score.Must(1), a.Evaluate(option{carrier: "LH"}))
	assert.Equal(t, score.Must(0), a.Evaluate(option{carrier: "UA"}))
	assert.Equal(t, score.Verdict{}, a.Evaluate(option{stops: 1}))
	assert.Equal(t, int64(0), a.Errors())
}

func TestExpression_Errors(t *testing.T) {
	_, err := NewExpression[option]("bad", ExpressionConfig{When: `candidate.stops ==`})
	assert.ErrorIs(t, err, ErrInvalidExpression)

	_, err = NewExpression[option]("empty", ExpressionConfig{})
	assert.ErrorIs(t, err, ErrInvalidExpression)

	a, err := NewExpression[option]("missing", ExpressionConfig{
		When: `candidate.alliance == "star"`,
		Then: score.NiceToHave,
		Else: score.Remove(0),
	})
	require.NoError(t, err)
	assert.Equal(t, score.Remove(0), a.Evaluate(option{}))
	assert.Equal(t, int64(1), a.Errors())
}

func TestCoverage_DrivesRetention(t *testing.T) {
	cov := NewCoverage("flights", flights)
	quota := NewQuota("schedule", 1, schedule)

	set, err := retention.New[string, option](2)
	require.NoError(t, err)
	set.AddAppraiser(cov, 20)
	set.AddAppraiser(quota, 10)

	assert.Equal(t, retention.OutcomeInserted, set.Offer(option{id: "a", flights: []uint32{1}, schedule: "s1"}))
	assert.Equal(t, retention.OutcomeInserted, set.Offer(option{id: "b", flights: []uint32{1}, schedule: "s1"}))
	// c covers a new flight: it must replace the redundant b.
	assert.Equal(t, retention.OutcomeReplaced, set.Offer(option{id: "c", flights: []uint32{2}, schedule: "s2"}))

	assert.True(t, set.Contains("a"))
	assert.True(t, set.Contains("c"))
	assert.True(t, cov.Complete([]uint32{1, 2}))
	assert.Equal(t, 1, quota.Count("s1"))
}

func TestReevaluate_ExcludesSelf(t *testing.T) {
	cov := NewCoverage("flights", flights)
	a := option{id: "a", flights: []uint32{1, 2, 2}}
	b := option{id: "b", flights: []uint32{2, 3}}

	assert.Equal(t, score.Must(2), cov.Evaluate(a))
	cov.Retained(a)
	assert.Equal(t, score.Must(2), cov.Reevaluate(a))
	cov.Retained(b)
	assert.Equal(t, score.Must(1), cov.Reevaluate(a), "flight 2 is shared with b")
	assert.Equal(t, score.Must(1), cov.Reevaluate(b))
	cov.Evicted(a)
	assert.False(t, cov.Covered(1))
	assert.True(t, cov.Covered(2))

	quota := NewQuota("schedule", 1, schedule)
	x := option{schedule: "AM"}
	quota.Retained(x)
	assert.Equal(t, score.Nice(0), quota.Reevaluate(x))
	quota.Retained(x)
	assert.Equal(t, score.Verdict{}, quota.Reevaluate(x))
	assert.Equal(t, score.Remove(-1), quota.Evaluate(x))
}

func TestRescoreIfAffected_RetainedKeepScores(t *testing.T) {
	quota := NewQuota("carrier", 1, func(o option) string { return o.carrier })
	cov := NewCoverage("flights", flights)

	set, err := retention.New[string, option](3)
	require.NoError(t, err)
	set.AddAppraiser(quota, 20)
	set.AddAppraiser(cov, 10)

	require.True(t, set.Offer(option{id: "a", carrier: "LH", flights: []uint32{1}}).Retained())
	require.True(t, set.Offer(option{id: "b", carrier: "BA", flights: []uint32{2}}).Retained())

	before := map[string]string{}
	for _, k := range set.Keys() {
		sc, ok := set.Score(k)
		require.True(t, ok)
		before[k] = sc.String()
	}

	assert.Equal(t, 0, set.RescoreIfAffected(quota, "a", "b").Rescored)
	assert.Equal(t, 0, set.RescoreIfAffected(cov, "a", "b").Rescored)

	for k, want := range before {
		sc, ok := set.Score(k)
		require.True(t, ok)
		assert.Equal(t, want, sc.String(), k)
	}
}
