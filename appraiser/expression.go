package appraiser

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/cel-go/cel"

	"github.com/hupe1980/shortlist/score"
)

// ErrInvalidExpression is returned when an expression does not compile.
var ErrInvalidExpression = errors.New("invalid expression")

// Attributed exposes the attributes an Expression can refer to.
type Attributed interface {
	Attributes() map[string]any
}

// ExpressionConfig declares an Expression appraiser.
type ExpressionConfig struct {
	// When is a boolean CEL expression over the variable "candidate".
	When string
	// Then is the category returned when When holds.
	Then score.Category
	// Minor is an optional integer CEL expression for the minor rank.
	Minor string
	// Else is the verdict when When does not hold. Defaults to Ignore.
	Else score.Verdict
}

// Expression judges candidates with CEL expressions.
//
// Evaluation errors (e.g. a missing attribute) count as "does not hold" and
// are counted in Errors.
type Expression[C Attributed] struct {
	id     string
	cfg    ExpressionConfig
	when   cel.Program
	minor  cel.Program
	errors atomic.Int64
}

// NewExpression compiles cfg into an appraiser.
func NewExpression[C Attributed](id string, cfg ExpressionConfig) (*Expression[C], error) {
	env, err := cel.NewEnv(cel.Variable("candidate", cel.DynType))
	if err != nil {
		return nil, err
	}

	e := &Expression[C]{id: id, cfg: cfg}
	if e.when, err = compile(env, cfg.When); err != nil {
		return nil, fmt.Errorf("%s: when: %w", id, err)
	}
	if cfg.Minor != "" {
		if e.minor, err = compile(env, cfg.Minor); err != nil {
			return nil, fmt.Errorf("%s: minor: %w", id, err)
		}
	}
	return e, nil
}

func compile(env *cel.Env, expr string) (cel.Program, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidExpression)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, issues.Err())
	}
	return env.Program(ast)
}

// ID implements retention.Appraiser.
func (e *Expression[C]) ID() string { return e.id }

// Evaluate implements retention.Appraiser.
func (e *Expression[C]) Evaluate(c C) score.Verdict {
	input := map[string]any{"candidate": c.Attributes()}

	out, _, err := e.when.Eval(input)
	if err != nil {
		e.errors.Add(1)
		return e.cfg.Else
	}
	if holds, ok := out.Value().(bool); !ok || !holds {
		if !ok {
			e.errors.Add(1)
		}
		return e.cfg.Else
	}

	v := score.Verdict{Category: e.cfg.Then}
	if e.minor == nil {
		return v
	}
	out, _, err = e.minor.Eval(input)
	if err != nil {
		e.errors.Add(1)
		return v
	}
	switch n := out.Value().(type) {
	case int64:
		v.Minor = int(n)
	case uint64:
		v.Minor = int(n)
	case float64:
		v.Minor = int(n)
	default:
		e.errors.Add(1)
	}
	return v
}

// Errors returns the number of failed evaluations.
func (e *Expression[C]) Errors() int64 { return e.errors.Load() }
