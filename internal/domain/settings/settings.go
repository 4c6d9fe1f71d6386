package settings

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a setting key has never been written.
	ErrNotFound = errors.New("settings: not found")
)

// Well-known setting keys read by the orchestrator.
const (
	// KeyOrderImportEnabled gates the scheduled order import sweep.
	KeyOrderImportEnabled = "sync.order_import_enabled"
	// KeyInventorySyncEnabled gates the scheduled inventory reconciliation.
	KeyInventorySyncEnabled = "sync.inventory_sync_enabled"
	// KeyAutoPublishNoPhotos is the global override allowing auto-publish
	// when the product has no existing photos.
	KeyAutoPublishNoPhotos = "drafts.auto_publish_when_no_photos"
)

// AutoPublishSetting is the per-product-type auto-publish policy flag.
// Read by the draft staging workflow's policy evaluator; written only
// through the settings API.
type AutoPublishSetting struct {
	// ProductType is the storefront product type this flag applies to.
	ProductType string
	// Enabled allows drafts for products of this type to bypass review when
	// the product has no existing live content.
	Enabled bool
}

// Repository persists orchestrator flags and auto-publish policies.
type Repository interface {
	// GetBool reads a boolean flag; returns the fallback when unset.
	GetBool(ctx context.Context, key string, fallback bool) (bool, error)

	// SetBool writes a boolean flag.
	SetBool(ctx context.Context, key string, value bool) error

	// GetAutoPublish reads the auto-publish policy for a product type.
	// Returns ErrNotFound when no policy has been written for the type.
	GetAutoPublish(ctx context.Context, productType string) (*AutoPublishSetting, error)

	// SetAutoPublish writes the auto-publish policy for a product type.
	SetAutoPublish(ctx context.Context, setting *AutoPublishSetting) error

	// ListAutoPublish returns all per-type policies.
	ListAutoPublish(ctx context.Context) ([]AutoPublishSetting, error)
}
