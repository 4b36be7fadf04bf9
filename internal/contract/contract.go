// Package contract reports programmer errors in collaborator code.
//
// A contract violation is never an expected outcome: it means the calling
// pipeline is misconfigured. Violations panic with a *Violation so that the
// recovered value still matches the sentinel through errors.Is.
package contract

import (
	"errors"
	"fmt"
)

// Violation is the panic value raised on contract violations.
type Violation struct {
	Op  string
	Err error
}

func (v *Violation) Error() string {
	return fmt.Sprintf("contract violation in %s: %v", v.Op, v.Err)
}

func (v *Violation) Unwrap() error { return v.Err }

// Fail panics with a Violation for op wrapping err.
func Fail(op string, err error) {
	panic(&Violation{Op: op, Err: err})
}

// Failf panics with a Violation whose error wraps sentinel with a formatted detail.
func Failf(op string, sentinel error, format string, args ...any) {
	panic(&Violation{Op: op, Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))})
}

// Recover converts a recovered panic value into an error when it is a Violation.
// Any other panic value is re-raised.
func Recover(r any) error {
	if r == nil {
		return nil
	}
	if err, ok := r.(error); ok {
		var v *Violation
		if errors.As(err, &v) {
			return v
		}
	}
	panic(r)
}
