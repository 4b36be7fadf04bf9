package shortlist

import "github.com/hupe1980/shortlist/internal/resource"

// Budget bounds the resources of one request or of a whole process: charged
// memory, concurrently running requests and offer rate. A Budget satisfies
// retention.MemoryAccountant. The nil *Budget is unlimited.
type Budget = resource.Controller

// BudgetConfig holds the limits of a Budget.
type BudgetConfig = resource.Config

// ErrMemoryLimitExceeded is returned by Budget.AcquireMemory.
var ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

// NewBudget creates a Budget. Use Budget.Child to give each request its own
// limit that also counts against the parent.
func NewBudget(cfg BudgetConfig) *Budget {
	return resource.NewController(cfg)
}
