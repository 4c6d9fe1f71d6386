package platform

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// Port interfaces
// ---------------------------------------------------------------------------
// Defined in the domain layer following Ports & Adapters; the HTTP clients in
// internal/infrastructure/{shopify,ebay} are the concrete adapters. The sync
// core only ever talks to these interfaces, which keeps the state machines
// testable with mocks.

// Storefront is the port to the merchant's canonical storefront (Shopify).
type Storefront interface {
	// CreateOrder creates an order on the storefront. The adapter suppresses
	// payment/fulfillment notifications on every order it creates.
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*StorefrontOrder, error)

	// SearchOrdersByTag returns orders carrying the given tag.
	SearchOrdersByTag(ctx context.Context, tag string) ([]StorefrontOrder, error)

	// SearchOrdersByDateRange returns orders created within [from, to].
	SearchOrdersByDateRange(ctx context.Context, from, to time.Time) ([]StorefrontOrder, error)

	// GetProduct fetches product detail including images and publish state.
	GetProduct(ctx context.Context, productID string) (*StorefrontProduct, error)

	// GetVariantQuantity returns the storefront inventory quantity for a SKU.
	// May be negative when the storefront has oversold.
	GetVariantQuantity(ctx context.Context, sku string) (int, error)

	// UpdateProductContent updates title and/or description. Empty strings
	// leave the corresponding field untouched.
	UpdateProductContent(ctx context.Context, productID, title, description string) error

	// ListProductImages returns the product's images in display order.
	ListProductImages(ctx context.Context, productID string) ([]ProductImage, error)

	// DeleteProductImage removes one image from the product.
	DeleteProductImage(ctx context.Context, productID, imageID string) error

	// UploadProductImage appends an image by URL. Position ordering is not
	// guaranteed by the API, which is why approvals delete-then-upload.
	UploadProductImage(ctx context.Context, productID, imageURL string) (*ProductImage, error)

	// PublishProduct flips the product to its publicly visible state.
	PublishProduct(ctx context.Context, productID string) error
}

// Marketplace is the port to the external marketplace (eBay).
type Marketplace interface {
	// FetchOrders returns marketplace orders created at or after the given
	// time, in the order the marketplace API returned them.
	FetchOrders(ctx context.Context, createdAfter time.Time) ([]MarketplaceOrder, error)

	// GetInventoryItem fetches the inventory record for a SKU.
	// Returns ErrInventoryNotFound if the SKU does not exist remotely.
	GetInventoryItem(ctx context.Context, sku string) (*InventoryItem, error)

	// SetInventoryQuantity writes the available quantity for a SKU.
	// Returns ErrZeroQuantityRejected when the marketplace refuses qty 0.
	SetInventoryQuantity(ctx context.Context, sku string, quantity int) error

	// GetOffersBySKU returns all offers bound to a SKU.
	GetOffersBySKU(ctx context.Context, sku string) ([]Offer, error)

	// WithdrawOffer ends a live listing without deleting the inventory item.
	// Returns ErrOfferAlreadyWithdrawn if the offer is not currently live.
	WithdrawOffer(ctx context.Context, offerID string) error

	// PublishOffer publishes an offer and returns the resulting listing id.
	PublishOffer(ctx context.Context, offerID string) (string, error)

	// CreateOffer creates a new offer and returns its offer id.
	CreateOffer(ctx context.Context, req *CreateOfferRequest) (string, error)

	// GetBusinessPolicies returns the merchant's stored policy ids.
	GetBusinessPolicies(ctx context.Context) (*BusinessPolicies, error)
}

// TokenProvider supplies a currently-valid bearer token for a platform.
// Acquisition and refresh are outside the sync core.
type TokenProvider interface {
	// Token returns a bearer token valid at call time.
	Token(ctx context.Context) (string, error)
}
