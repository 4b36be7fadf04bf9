package shortlist

import (
	"errors"
	"fmt"

	"github.com/hupe1980/shortlist/retention"
)

var (
	// ErrInvalidCapacity is returned when the retention capacity is not positive.
	ErrInvalidCapacity = retention.ErrInvalidCapacity

	// ErrNoAppraisers is returned when a search runs against a set without appraisers.
	ErrNoAppraisers = errors.New("no appraisers registered")

	// ErrNilArgument is returned when Search gets a nil source, producer or set.
	ErrNilArgument = errors.New("nil argument")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")
)

// ContractViolationError reports API misuse detected while a request was
// running, for example offering a key that is already retained. The request
// is aborted; other requests are unaffected.
//
// The violated condition can be matched with errors.Is against the sentinels
// of the retention, score and generator packages.
type ContractViolationError struct {
	RequestID string
	cause     error
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("request %s: contract violation: %v", e.RequestID, e.cause)
}

func (e *ContractViolationError) Unwrap() error { return e.cause }

// ProducerError reports that the candidate producer failed for a tuple.
//
// The original underlying error can be accessed via errors.Unwrap.
type ProducerError struct {
	Tuple []int
	cause error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("produce %v: %v", e.Tuple, e.cause)
}

func (e *ProducerError) Unwrap() error { return e.cause }
