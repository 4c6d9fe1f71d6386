package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncLogEntry
// ---------------------------------------------------------------------------

// Direction indicates which way a sync attempt moved state.
type Direction string

const (
	// DirectionStorefrontToMarketplace: storefront -> marketplace.
	DirectionStorefrontToMarketplace Direction = "a_to_b"
	// DirectionMarketplaceToStorefront: marketplace -> storefront.
	DirectionMarketplaceToStorefront Direction = "b_to_a"
)

// EntityType is the kind of entity a sync attempt touched.
type EntityType string

const (
	EntityTypeOrder     EntityType = "order"
	EntityTypeInventory EntityType = "inventory"
	EntityTypeProduct   EntityType = "product"
)

// Outcome is the result of a sync attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Entry is one append-only audit record. One entry is written per meaningful
// state-changing attempt, success or failure. Entries are never written per
// read, and
// are never mutated or deleted in normal operation.
type Entry struct {
	ID         uuid.UUID
	Direction  Direction
	EntityType EntityType
	EntityID   string
	Outcome    Outcome
	Detail     string
	CreatedAt  time.Time
}

// NewEntry builds an audit entry stamped with the current time.
func NewEntry(direction Direction, entityType EntityType, entityID string, outcome Outcome, detail string) *Entry {
	return &Entry{
		ID:         uuid.New(),
		Direction:  direction,
		EntityType: entityType,
		EntityID:   entityID,
		Outcome:    outcome,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
}

// ---------------------------------------------------------------------------
// Repository Interface
// ---------------------------------------------------------------------------

// Filter narrows audit log queries.
type Filter struct {
	Direction  *Direction
	EntityType *EntityType
	EntityID   string
	Outcome    *Outcome
	Since      *time.Time
	Page       int
	PageSize   int
}

// LogRepository persists audit entries. Append and read only.
type LogRepository interface {
	// Append writes one entry.
	Append(ctx context.Context, entry *Entry) error

	// Find returns entries matching the filter, newest first.
	Find(ctx context.Context, filter Filter) ([]Entry, error)

	// Count counts entries matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)
}
