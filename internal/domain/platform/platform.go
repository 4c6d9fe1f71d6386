package platform

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Platform Errors
// ---------------------------------------------------------------------------

var (
	// Transport / configuration errors
	ErrNotConfigured   = errors.New("platform: credentials not configured")
	ErrTokenMissing    = errors.New("platform: no valid access token")
	ErrRequestFailed   = errors.New("platform: request failed")
	ErrInvalidResponse = errors.New("platform: invalid response")
	ErrRateLimited     = errors.New("platform: rate limited")

	// Entity errors
	ErrNotFound          = errors.New("platform: entity not found")
	ErrInventoryNotFound = errors.New("platform: inventory item not found")
	ErrOfferNotFound     = errors.New("platform: offer not found")

	// Idempotent-conflict errors. The desired end state was already reached
	// by another actor; callers treat these as success.
	ErrOfferAlreadyWithdrawn = errors.New("platform: offer already withdrawn")
	ErrOrderAlreadyExists    = errors.New("platform: order already exists")

	// ErrZeroQuantityRejected is returned when the marketplace refuses a
	// quantity-zero write on an inventory item. After a successful withdrawal
	// this is cosmetic: the listing is no longer live either way.
	ErrZeroQuantityRejected = errors.New("platform: zero quantity rejected")
)

// IsIdempotentConflict reports whether err indicates the requested mutation
// had already happened (e.g. withdrawing an unpublished offer). Such errors
// are logged at a lower severity and treated as success.
func IsIdempotentConflict(err error) bool {
	return errors.Is(err, ErrOfferAlreadyWithdrawn) || errors.Is(err, ErrOrderAlreadyExists)
}

// ---------------------------------------------------------------------------
// PlatformCode
// ---------------------------------------------------------------------------

// Code identifies one of the two synchronized platforms.
type Code string

const (
	// CodeShopify is the merchant's canonical storefront ("Platform A").
	CodeShopify Code = "SHOPIFY"
	// CodeEbay is the external marketplace ("Platform B").
	CodeEbay Code = "EBAY"
)

// IsValid returns true if the code is one of the known platforms.
func (c Code) IsValid() bool {
	return c == CodeShopify || c == CodeEbay
}

// String returns the string representation of the code.
func (c Code) String() string {
	return string(c)
}

// ---------------------------------------------------------------------------
// Marketplace value objects (eBay side)
// ---------------------------------------------------------------------------

// OfferStatus is the publication status of a marketplace offer.
type OfferStatus string

const (
	OfferStatusPublished   OfferStatus = "PUBLISHED"
	OfferStatusUnpublished OfferStatus = "UNPUBLISHED"
)

// IsPublished returns true if the offer is currently live.
func (s OfferStatus) IsPublished() bool {
	return s == OfferStatusPublished
}

// MarketplaceOrder is a parsed, validated order from the marketplace.
// Raw API payloads are converted into this shape at the client boundary so
// the import guard never sees loosely-typed maps.
type MarketplaceOrder struct {
	// OrderID is the marketplace's order identifier (globally unique there).
	OrderID string
	// CreatedAt is when the buyer placed the order on the marketplace.
	CreatedAt time.Time
	// BuyerHandle is the buyer's marketplace username.
	BuyerHandle string
	// Total is what the buyer paid, including shipping.
	Total decimal.Decimal
	// Currency is the ISO currency code of Total.
	Currency string
	// ShippingCost is the shipping portion of Total.
	ShippingCost decimal.Decimal
	// Items are the purchased line items.
	Items []MarketplaceLineItem
	// ShipTo is the delivery address.
	ShipTo Address
	// PaymentStatus is the marketplace's payment state string (e.g. "PAID").
	PaymentStatus string
}

// MarketplaceLineItem is one purchased line on a marketplace order.
type MarketplaceLineItem struct {
	SKU       string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Address is a shipping address passed through between platforms field by
// field; no normalization is attempted.
type Address struct {
	FullName    string
	Line1       string
	Line2       string
	City        string
	Region      string
	PostalCode  string
	CountryCode string
	Phone       string
}

// InventoryItem is the marketplace's inventory record for a SKU.
type InventoryItem struct {
	SKU      string
	Quantity int
	Title    string
}

// Offer binds a SKU, price and policies to a (potential) live listing.
type Offer struct {
	OfferID    string
	SKU        string
	ListingID  string
	Status     OfferStatus
	Price      decimal.Decimal
	Currency   string
	CategoryID string
}

// BusinessPolicies are the merchant's stored marketplace policy ids, required
// when creating a brand-new offer.
type BusinessPolicies struct {
	FulfillmentPolicyID string
	PaymentPolicyID     string
	ReturnPolicyID      string
}

// CreateOfferRequest describes a new offer to create on the marketplace.
type CreateOfferRequest struct {
	SKU        string
	Quantity   int
	Price      decimal.Decimal
	Currency   string
	CategoryID string
	Policies   BusinessPolicies
}

// ---------------------------------------------------------------------------
// Storefront value objects (Shopify side)
// ---------------------------------------------------------------------------

// StorefrontOrder is a summary of an order on the storefront, as returned by
// order search. It carries the fields the duplicate matcher inspects.
type StorefrontOrder struct {
	ID         string
	Name       string
	CreatedAt  time.Time
	TotalPrice decimal.Decimal
	Currency   string
	Tags       []string
	Note       string
}

// HasTag reports whether the order carries the given tag.
func (o *StorefrontOrder) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CreateOrderRequest describes an order to create on the storefront.
// Payment and fulfillment notifications are always suppressed by the client
// so imported orders never trigger duplicate customer emails.
type CreateOrderRequest struct {
	// SourceTag marks the order as imported (e.g. "ebay-order-<id>").
	SourceTag string
	// Note is free text recorded on the order (carries the buyer handle).
	Note string
	// ShipTo is the delivery address.
	ShipTo Address
	// FirstName and LastName are the buyer name split on the first space.
	FirstName string
	LastName  string
	// Items are the order lines, mapped 1:1 from the marketplace order.
	Items []OrderLineInput
	// ShippingCost becomes a single shipping line on the order.
	ShippingCost decimal.Decimal
	// Currency is the ISO currency code.
	Currency string
}

// OrderLineInput is one line of a storefront order to create.
type OrderLineInput struct {
	SKU       string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// StorefrontProduct is the storefront's product detail record.
type StorefrontProduct struct {
	ID          string
	Title       string
	Description string
	ProductType string
	Published   bool
	Images      []ProductImage
}

// HasDescription returns true if the product has a non-empty description.
func (p *StorefrontProduct) HasDescription() bool {
	return p.Description != ""
}

// HasImages returns true if the product has at least one image.
func (p *StorefrontProduct) HasImages() bool {
	return len(p.Images) > 0
}

// ProductImage is one image attached to a storefront product.
type ProductImage struct {
	ID       string
	URL      string
	Position int
}
