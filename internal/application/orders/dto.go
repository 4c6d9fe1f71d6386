package orders

import (
	"time"

	"github.com/shopbridge/backend/internal/domain/order"
)

// ImportOptions control one invocation of the import guard.
type ImportOptions struct {
	// CreatedAfter is the requested start of the order window. Nil defaults
	// to 24 hours before now. Values older than the 7-day ceiling are
	// clamped, never honored.
	CreatedAfter *time.Time
	// DryRun requests decision logic only, no remote mutation.
	DryRun bool
	// Confirm must be true for any real mutation. Its absence forces a dry
	// run regardless of DryRun.
	Confirm bool
}

// ImportError describes one order that failed to import.
type ImportError struct {
	MarketplaceOrderID string `json:"marketplace_order_id"`
	Message            string `json:"message"`
}

// ImportWarning describes one order skipped as a duplicate, or a batch-level
// safety correction (window clamp, cap reached).
type ImportWarning struct {
	MarketplaceOrderID string            `json:"marketplace_order_id,omitempty"`
	Reason             order.MatchReason `json:"reason,omitempty"`
	MatchedEntityID    string            `json:"matched_entity_id,omitempty"`
	Detail             string            `json:"detail,omitempty"`
}

// ImportResult is the aggregate outcome of one import sweep. Per-order
// failures are collected here, not raised: callers inspect counts.
type ImportResult struct {
	// DryRun reports the mode the guard actually ran in, after the confirm
	// gate was applied.
	DryRun bool `json:"dry_run"`
	// EffectiveCreatedAfter is the window start actually used.
	EffectiveCreatedAfter time.Time `json:"effective_created_after"`

	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`

	Errors   []ImportError   `json:"errors"`
	Warnings []ImportWarning `json:"warnings"`
}
