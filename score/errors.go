package score

import (
	"errors"

	"github.com/hupe1980/shortlist/internal/rankindex"
)

var (
	// ErrUnknownPriority is raised when a verdict arrives for a priority that
	// was never registered.
	ErrUnknownPriority = rankindex.ErrUnknownPriority

	// ErrShapeMismatch is raised when two composite scores of different width
	// meet.
	ErrShapeMismatch = errors.New("composite score shape mismatch")

	// ErrRegistrationClosed is raised when a priority is registered after
	// scoring started.
	ErrRegistrationClosed = errors.New("appraiser registration closed")

	// ErrEmptyAppraiserID is raised when a ledger entry has no appraiser identity.
	ErrEmptyAppraiserID = errors.New("empty appraiser id")

	// ErrNoVerdicts is raised when the ledger holds nothing for an item.
	ErrNoVerdicts = errors.New("no verdicts recorded")
)
