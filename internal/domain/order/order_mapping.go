package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	ErrMappingNotFound      = errors.New("order: mapping not found")
	ErrMappingAlreadyExists = errors.New("order: marketplace order already mapped")
	ErrInvalidOrderID       = errors.New("order: invalid marketplace order id")
)

// ---------------------------------------------------------------------------
// Mapping Entity
// ---------------------------------------------------------------------------

// Mapping links one marketplace order to the storefront order created from
// it. The marketplace order id is globally unique in this table and is the
// primary dedup key for the import guard: a row is written before or
// immediately after the remote order is created, never reconstructed later.
type Mapping struct {
	// ID is the surrogate identifier.
	ID uuid.UUID
	// MarketplaceOrderID is the order id on the marketplace (unique).
	MarketplaceOrderID string
	// StorefrontOrderID is the created storefront order id.
	StorefrontOrderID string
	// StorefrontOrderName is the storefront's display name (e.g. "#1042").
	StorefrontOrderName string
	// Status records how the mapping came to exist.
	Status MappingStatus
	// SyncedAt is when the import happened.
	SyncedAt time.Time
	// CreatedAt is when this row was written.
	CreatedAt time.Time
}

// MappingStatus records the provenance of an order mapping.
type MappingStatus string

const (
	// MappingStatusImported means the guard created the storefront order.
	MappingStatusImported MappingStatus = "imported"
	// MappingStatusLinked means an existing storefront order was discovered
	// (tag or fuzzy match) and linked without creating anything.
	MappingStatusLinked MappingStatus = "linked"
)

// NewMapping creates a mapping for a freshly imported order.
func NewMapping(marketplaceOrderID, storefrontOrderID, storefrontOrderName string, status MappingStatus) (*Mapping, error) {
	if marketplaceOrderID == "" {
		return nil, ErrInvalidOrderID
	}
	now := time.Now()
	return &Mapping{
		ID:                  uuid.New(),
		MarketplaceOrderID:  marketplaceOrderID,
		StorefrontOrderID:   storefrontOrderID,
		StorefrontOrderName: storefrontOrderName,
		Status:              status,
		SyncedAt:            now,
		CreatedAt:           now,
	}, nil
}

// ---------------------------------------------------------------------------
// Repository Interface
// ---------------------------------------------------------------------------

// MappingRepository persists order mappings. Read-heavy: every import sweep
// performs one lookup per remote order before anything else.
type MappingRepository interface {
	// FindByMarketplaceOrderID finds a mapping by marketplace order id.
	// Returns ErrMappingNotFound when absent.
	FindByMarketplaceOrderID(ctx context.Context, marketplaceOrderID string) (*Mapping, error)

	// ExistsByMarketplaceOrderID is the cheap dedup check.
	ExistsByMarketplaceOrderID(ctx context.Context, marketplaceOrderID string) (bool, error)

	// Save inserts a mapping. Returns ErrMappingAlreadyExists on a unique
	// violation for the marketplace order id (lost race with another run).
	Save(ctx context.Context, mapping *Mapping) error

	// FindRecent returns the most recently synced mappings.
	FindRecent(ctx context.Context, limit int) ([]Mapping, error)
}
