package score

import (
	"errors"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireViolation(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %T is not an error", r)
		assert.True(t, errors.Is(err, target), "got %v", err)
	}()
	fn()
}

func TestVerdict_Vector(t *testing.T) {
	tests := []struct {
		name string
		v    Verdict
		want VerdictVector
	}{
		{"zero", Verdict{}, VerdictVector{0, 0, 0}},
		{"ignore drops minor", Verdict{Category: Ignore, Minor: 9}, VerdictVector{0, 0, 0}},
		{"must", Must(3), VerdictVector{1, 0, 3}},
		{"nice", Nice(-2), VerdictVector{0, 1, -2}},
		{"remove", Remove(1), VerdictVector{-1, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Vector())
		})
	}
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "ignore", Verdict{}.String())
	assert.Equal(t, "must-have(5)", Must(5).String())
	assert.Equal(t, "category(7)", Category(7).String())
}

func TestCombiner_HigherPriorityDominates(t *testing.T) {
	c := NewCombiner(10, 20)
	require.Equal(t, 2, c.Width())
	assert.Equal(t, 0, c.Column(20))
	assert.Equal(t, 1, c.Column(10))

	// Low priority must-have vs. high priority nice-to-have.
	c.Begin()
	c.Add(10, Must(0))
	lowMust := c.Result()

	c.Begin()
	c.Add(20, Nice(0))
	highNice := c.Result()

	assert.True(t, lowMust.Less(highNice))
	assert.Equal(t, "[0 1 0|0 0 0]", highNice.String())
	assert.Equal(t, "[0 0 0|1 0 0]", lowMust.String())
}

func TestCombiner_SharedPrioritySums(t *testing.T) {
	c := NewCombiner(5, 5, 1)
	require.Equal(t, 2, c.Width())

	c.Begin()
	c.Add(5, Must(2))
	c.Add(5, Nice(3))
	c.Add(1, Remove(0))
	s := c.Result()

	assert.Equal(t, VerdictVector{1, 1, 5}, s.Column(0))
	assert.Equal(t, VerdictVector{-1, 0, 0}, s.Column(1))
}

func TestCombiner_BeginResets(t *testing.T) {
	c := NewCombiner(1)
	c.Begin()
	c.Add(1, Must(7))
	first := c.Result()

	c.Begin()
	second := c.Result()

	assert.Equal(t, VerdictVector{1, 0, 7}, first.Column(0), "result must not alias the accumulator")
	assert.Equal(t, VerdictVector{}, second.Column(0))
}

func TestCombiner_Combine(t *testing.T) {
	c := NewCombiner(1, 2)
	s := c.Combine(maps.All(map[Priority]Verdict{1: Nice(1), 2: Must(0)}))
	assert.Equal(t, VerdictVector{1, 0, 0}, s.Column(0))
	assert.Equal(t, VerdictVector{0, 1, 1}, s.Column(1))
}

func TestCombiner_Violations(t *testing.T) {
	t.Run("unknown priority", func(t *testing.T) {
		c := NewCombiner(1)
		c.Begin()
		requireViolation(t, ErrUnknownPriority, func() { c.Add(2, Must(0)) })
	})

	t.Run("register after freeze", func(t *testing.T) {
		c := NewCombiner(1)
		c.Freeze()
		requireViolation(t, ErrRegistrationClosed, func() { c.Register(2) })
	})

	t.Run("register between begin and add", func(t *testing.T) {
		c := NewCombiner(1)
		c.Begin()
		c.Register(2)
		requireViolation(t, ErrShapeMismatch, func() { c.Add(1, Must(0)) })
	})
}

func TestCompositeScore_Compare(t *testing.T) {
	c := NewCombiner(1, 2)
	score := func(hi, lo Verdict) CompositeScore {
		c.Begin()
		c.Add(2, hi)
		c.Add(1, lo)
		return c.Result()
	}

	assert.Equal(t, 0, score(Must(1), Nice(0)).Compare(score(Must(1), Nice(0))))
	assert.Equal(t, 1, score(Must(1), Verdict{}).Compare(score(Must(0), Must(9))))
	assert.Equal(t, -1, score(Remove(0), Must(0)).Compare(score(Verdict{}, Remove(0))))
	assert.Equal(t, 1, score(Nice(0), Verdict{}).Compare(score(Verdict{}, Must(100))))
	assert.True(t, score(Must(0), Must(0)).Equal(score(Must(0), Must(0))))
}

func TestCompositeScore_ShapeMismatchPanics(t *testing.T) {
	a := NewCompositeScore(1)
	b := NewCompositeScore(2)
	requireViolation(t, ErrShapeMismatch, func() { a.Compare(b) })
	assert.False(t, a.Equal(b))
}

func TestCompositeScore_Matrix(t *testing.T) {
	c := NewCombiner(1, 2)
	c.Begin()
	c.Add(2, Must(4))
	c.Add(1, Nice(-1))
	m := c.Result().Matrix()

	assert.Equal(t, []int{1, 0}, m[RowMust])
	assert.Equal(t, []int{0, 1}, m[RowNice])
	assert.Equal(t, []int{4, -1}, m[RowMinor])
}

func TestLedger(t *testing.T) {
	l := NewLedger[string]()

	assert.True(t, l.Set("x", "a", Must(0)))
	assert.False(t, l.Set("x", "a", Must(0)), "unchanged verdict")
	assert.True(t, l.Set("x", "a", Must(1)))
	assert.True(t, l.Set("x", "b", Nice(0)))

	got := l.Verdicts("x")
	assert.Equal(t, map[string]Verdict{"a": Must(1), "b": Nice(0)}, got)

	got["a"] = Remove(0)
	v, ok := l.Verdict("x", "a")
	require.True(t, ok)
	assert.Equal(t, Must(1), v, "Verdicts must return a copy")

	l.Forget("x")
	assert.Equal(t, 0, l.Len())
	_, ok = l.Lookup("x")
	assert.False(t, ok)

	requireViolation(t, ErrNoVerdicts, func() { l.Verdicts("x") })
	requireViolation(t, ErrEmptyAppraiserID, func() { l.Set("y", "", Must(0)) })
}

func TestParseCategory(t *testing.T) {
	for _, c := range []Category{WantToRemove, Ignore, NiceToHave, MustHave} {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := ParseCategory("must")
	require.NoError(t, err)
	assert.Equal(t, MustHave, got)

	_, err = ParseCategory("maybe")
	assert.Error(t, err)
}
