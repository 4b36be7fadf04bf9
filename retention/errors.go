package retention

import (
	"errors"

	"github.com/hupe1980/shortlist/internal/queue"
	"github.com/hupe1980/shortlist/score"
)

var (
	// ErrInvalidCapacity is returned when the capacity is not positive.
	ErrInvalidCapacity = errors.New("retention: capacity must be positive")

	// ErrDuplicateKey is raised when offering a key that is already retained.
	ErrDuplicateKey = queue.ErrDuplicateKey

	// ErrUnknownKey is raised when locking a key that is not retained.
	ErrUnknownKey = queue.ErrUnknownKey

	// ErrRegistrationClosed is raised by AddAppraiser after the first offer.
	ErrRegistrationClosed = score.ErrRegistrationClosed

	// ErrDuplicateAppraiser is raised when two appraisers share an ID.
	ErrDuplicateAppraiser = errors.New("duplicate appraiser id")

	// ErrUnknownAppraiser is raised when rescoring for an unregistered appraiser.
	ErrUnknownAppraiser = errors.New("unknown appraiser")

	// ErrNilAppraiser is raised when registering a nil appraiser.
	ErrNilAppraiser = errors.New("nil appraiser")

	// ErrLockOverflow is raised when a locked candidate arrives while every
	// retained item is locked.
	ErrLockOverflow = errors.New("every retained item is locked")
)
