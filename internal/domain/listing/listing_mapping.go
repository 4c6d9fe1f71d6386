package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	ErrMappingNotFound      = errors.New("listing: mapping not found")
	ErrMappingAlreadyActive = errors.New("listing: product already has an active mapping")
	ErrInvalidProductID     = errors.New("listing: invalid storefront product id")
	ErrInvalidSKU           = errors.New("listing: invalid SKU")
	ErrIllegalTransition    = errors.New("listing: illegal status transition")
	ErrListingIDRequired    = errors.New("listing: listing id required for this transition")
)

// ---------------------------------------------------------------------------
// Status state machine
// ---------------------------------------------------------------------------

// Status is the lifecycle state of a marketplace listing mapping.
type Status string

const (
	// StatusPending means the mapping exists but the listing has not been
	// created on the marketplace yet.
	StatusPending Status = "pending"
	// StatusActive means the listing is published with quantity > 0.
	StatusActive Status = "active"
	// StatusEnded means the listing was withdrawn and quantity forced to 0.
	StatusEnded Status = "ended"
	// StatusInactive means the mapping was manually disabled.
	StatusInactive Status = "inactive"
	// StatusError records a sync failure needing operator attention.
	StatusError Status = "error"
)

// IsValid returns true if the status is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusEnded, StatusInactive, StatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// transitions is the allowed-transition table. Illegal moves (e.g. ended
// directly to pending) are rejected by construction rather than by scattered
// status checks at call sites.
var transitions = map[Status][]Status{
	StatusPending:  {StatusActive, StatusError, StatusInactive},
	StatusActive:   {StatusEnded, StatusError, StatusInactive},
	StatusEnded:    {StatusActive, StatusInactive, StatusError},
	StatusInactive: {StatusPending, StatusActive},
	StatusError:    {StatusPending, StatusActive, StatusEnded, StatusInactive},
}

// CanTransition reports whether moving from s to target is legal.
func (s Status) CanTransition(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Mapping Entity
// ---------------------------------------------------------------------------

// Mapping links one storefront product/SKU to one marketplace listing and
// tracks the listing's lifecycle. Status is mutated only through the
// transition methods below (or explicit manual linking in tooling).
type Mapping struct {
	// ID is the surrogate identifier of this mapping.
	ID uuid.UUID
	// ProductID is the storefront product id.
	ProductID string
	// SKU is the marketplace inventory-item key, the join key between the
	// storefront variant and the marketplace inventory item.
	SKU string
	// ListingID is the marketplace listing id. Empty until first listed.
	ListingID string
	// OfferID is the marketplace offer backing the listing.
	OfferID string
	// Status is the lifecycle state.
	Status Status
	// Price is the last known listing price.
	Price decimal.Decimal
	// Currency is the ISO currency code of Price.
	Currency string
	// Denormalized storefront fields for display in the admin UI.
	ProductTitle    string
	StorefrontPrice decimal.Decimal
	// LastError holds the most recent sync failure detail.
	LastError string
	// Timestamps.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMapping creates a mapping in pending state for a product/SKU pair.
func NewMapping(productID, sku string) (*Mapping, error) {
	if productID == "" {
		return nil, ErrInvalidProductID
	}
	if sku == "" {
		return nil, ErrInvalidSKU
	}
	now := time.Now()
	return &Mapping{
		ID:        uuid.New(),
		ProductID: productID,
		SKU:       sku,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// transitionTo applies a checked status transition.
func (m *Mapping) transitionTo(target Status) error {
	if !m.Status.CanTransition(target) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.Status, target)
	}
	m.Status = target
	m.UpdatedAt = time.Now()
	return nil
}

// MarkListed records a successful first listing: pending -> active.
func (m *Mapping) MarkListed(offerID, listingID string, price decimal.Decimal) error {
	if listingID == "" {
		return ErrListingIDRequired
	}
	if err := m.transitionTo(StatusActive); err != nil {
		return err
	}
	m.OfferID = offerID
	m.ListingID = listingID
	m.Price = price
	m.LastError = ""
	return nil
}

// End records a withdrawn listing: active -> ended. The listing id is kept so
// a later relist can try to republish the same offer.
func (m *Mapping) End() error {
	if err := m.transitionTo(StatusEnded); err != nil {
		return err
	}
	m.LastError = ""
	return nil
}

// Relist records a successful restock: ended -> active. listingID may differ
// from the previous one when the offer had to be recreated; this is the only
// path by which a mapping's listing id changes.
func (m *Mapping) Relist(listingID string) error {
	if listingID == "" {
		return ErrListingIDRequired
	}
	if err := m.transitionTo(StatusActive); err != nil {
		return err
	}
	m.ListingID = listingID
	m.LastError = ""
	return nil
}

// RelistWithNewOffer records a restock where the original offer was gone
// remotely and a replacement offer had to be created: ended -> active with
// both ids replaced.
func (m *Mapping) RelistWithNewOffer(offerID, listingID string) error {
	if offerID == "" || listingID == "" {
		return ErrListingIDRequired
	}
	if err := m.transitionTo(StatusActive); err != nil {
		return err
	}
	m.OfferID = offerID
	m.ListingID = listingID
	m.LastError = ""
	return nil
}

// RecordError moves the mapping to error state with failure detail.
func (m *Mapping) RecordError(detail string) error {
	if err := m.transitionTo(StatusError); err != nil {
		return err
	}
	m.LastError = detail
	return nil
}

// Deactivate disables the mapping without touching the remote listing.
func (m *Mapping) Deactivate() error {
	return m.transitionTo(StatusInactive)
}

// RefreshStorefrontSnapshot updates the denormalized display fields.
func (m *Mapping) RefreshStorefrontSnapshot(title string, price decimal.Decimal) {
	m.ProductTitle = title
	m.StorefrontPrice = price
	m.UpdatedAt = time.Now()
}

// ---------------------------------------------------------------------------
// Repository Interfaces
// ---------------------------------------------------------------------------

// MappingReader defines read access to listing mappings.
type MappingReader interface {
	// FindByID finds a mapping by its surrogate id.
	FindByID(ctx context.Context, id uuid.UUID) (*Mapping, error)

	// FindBySKU finds the mapping for a marketplace SKU.
	FindBySKU(ctx context.Context, sku string) (*Mapping, error)

	// FindByProductID finds mappings for a storefront product.
	FindByProductID(ctx context.Context, productID string) ([]Mapping, error)

	// FindActiveByProductID finds the single active mapping for a product,
	// if any. At most one active mapping per product is an invariant.
	FindActiveByProductID(ctx context.Context, productID string) (*Mapping, error)
}

// MappingFinder defines search access to listing mappings.
type MappingFinder interface {
	// FindByStatus returns all mappings in the given status, oldest first.
	FindByStatus(ctx context.Context, status Status) ([]Mapping, error)

	// CountByStatus counts mappings per status.
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// MappingWriter defines write access to listing mappings.
type MappingWriter interface {
	// Save creates or updates a mapping.
	Save(ctx context.Context, mapping *Mapping) error

	// Delete removes a mapping. Used only by explicit cleanup tooling.
	Delete(ctx context.Context, id uuid.UUID) error
}

// MappingRepository is the full persistence interface for listing mappings.
type MappingRepository interface {
	MappingReader
	MappingFinder
	MappingWriter
}
