package ebay

// ---------------------------------------------------------------------------
// Fulfillment API payloads
// ---------------------------------------------------------------------------

// FulfillmentOrder is one order from the Sell Fulfillment API, limited to
// the fields the import guard consumes.
type FulfillmentOrder struct {
	OrderID             string               `json:"orderId"`
	CreationDate        string               `json:"creationDate"`
	OrderPaymentStatus  string               `json:"orderPaymentStatus"`
	Buyer               Buyer                `json:"buyer"`
	PricingSummary      PricingSummary       `json:"pricingSummary"`
	LineItems           []FulfillmentLine    `json:"lineItems"`
	FulfillmentStartIns []FulfillmentStartIn `json:"fulfillmentStartInstructions"`
}

// Buyer identifies the purchasing account.
type Buyer struct {
	Username string `json:"username"`
}

// Amount is eBay's money shape: a decimal string plus currency.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// PricingSummary totals one order.
type PricingSummary struct {
	Total        Amount `json:"total"`
	DeliveryCost Amount `json:"deliveryCost"`
}

// FulfillmentLine is one purchased line item.
type FulfillmentLine struct {
	LineItemID string `json:"lineItemId"`
	SKU        string `json:"sku"`
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	LineItemCost Amount `json:"lineItemCost"`
}

// FulfillmentStartIn carries the shipping step with the ship-to contact.
type FulfillmentStartIn struct {
	ShippingStep ShippingStep `json:"shippingStep"`
}

// ShippingStep wraps the ship-to contact.
type ShippingStep struct {
	ShipTo ShipTo `json:"shipTo"`
}

// ShipTo is the recipient contact and address.
type ShipTo struct {
	FullName       string         `json:"fullName"`
	ContactAddress ContactAddress `json:"contactAddress"`
	PrimaryPhone   *Phone         `json:"primaryPhone,omitempty"`
}

// Phone is a bare phone number.
type Phone struct {
	PhoneNumber string `json:"phoneNumber"`
}

// ContactAddress is the recipient street address.
type ContactAddress struct {
	AddressLine1    string `json:"addressLine1"`
	AddressLine2    string `json:"addressLine2"`
	City            string `json:"city"`
	StateOrProvince string `json:"stateOrProvince"`
	PostalCode      string `json:"postalCode"`
	CountryCode     string `json:"countryCode"`
}

type ordersResponse struct {
	Orders []FulfillmentOrder `json:"orders"`
	Total  int                `json:"total"`
	Next   string             `json:"next"`
}

// ---------------------------------------------------------------------------
// Inventory API payloads
// ---------------------------------------------------------------------------

// InventoryItem is the Sell Inventory API item record.
type InventoryItem struct {
	SKU          string        `json:"sku"`
	Availability *Availability `json:"availability,omitempty"`
	Product      *ItemProduct  `json:"product,omitempty"`
}

// Availability nests the ship-to-location quantity.
type Availability struct {
	ShipToLocationAvailability ShipToLocationAvailability `json:"shipToLocationAvailability"`
}

// ShipToLocationAvailability carries the sellable quantity.
type ShipToLocationAvailability struct {
	Quantity int `json:"quantity"`
}

// ItemProduct is the item's catalog data.
type ItemProduct struct {
	Title string `json:"title"`
}

// Offer is the Sell Inventory API offer record.
type Offer struct {
	OfferID      string        `json:"offerId"`
	SKU          string        `json:"sku"`
	Status       string        `json:"status"`
	CategoryID   string        `json:"categoryId"`
	ListingID    string        `json:"listingId,omitempty"`
	Listing      *OfferListing `json:"listing,omitempty"`
	PricingSummary *OfferPricing `json:"pricingSummary,omitempty"`
	ListingPolicies *ListingPolicies `json:"listingPolicies,omitempty"`
	AvailableQuantity int        `json:"availableQuantity"`
	MarketplaceID string       `json:"marketplaceId"`
	Format        string       `json:"format,omitempty"`
}

// OfferListing nests the live listing id on published offers.
type OfferListing struct {
	ListingID string `json:"listingId"`
}

// OfferPricing carries the offer price.
type OfferPricing struct {
	Price Amount `json:"price"`
}

// ListingPolicies are the merchant policy ids bound to an offer.
type ListingPolicies struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId"`
	PaymentPolicyID     string `json:"paymentPolicyId"`
	ReturnPolicyID      string `json:"returnPolicyId"`
}

type offersResponse struct {
	Offers []Offer `json:"offers"`
	Total  int     `json:"total"`
}

type publishResponse struct {
	ListingID string `json:"listingId"`
}

type createOfferResponse struct {
	OfferID string `json:"offerId"`
}

// bulkUpdateRequest is the bulk_update_price_quantity payload.
type bulkUpdateRequest struct {
	Requests []bulkUpdateEntry `json:"requests"`
}

type bulkUpdateEntry struct {
	SKU              string             `json:"sku"`
	ShipToLocationAvailability *ShipToLocationAvailability `json:"shipToLocationAvailability,omitempty"`
}

// ---------------------------------------------------------------------------
// Account API payloads
// ---------------------------------------------------------------------------

type fulfillmentPoliciesResponse struct {
	FulfillmentPolicies []policyEntry `json:"fulfillmentPolicies"`
}

type paymentPoliciesResponse struct {
	PaymentPolicies []policyEntry `json:"paymentPolicies"`
}

type returnPoliciesResponse struct {
	ReturnPolicies []policyEntry `json:"returnPolicies"`
}

type policyEntry struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId,omitempty"`
	PaymentPolicyID     string `json:"paymentPolicyId,omitempty"`
	ReturnPolicyID      string `json:"returnPolicyId,omitempty"`
	Name                string `json:"name"`
}

// ---------------------------------------------------------------------------
// Error envelope
// ---------------------------------------------------------------------------

// APIError is one entry in eBay's error envelope.
type APIError struct {
	ErrorID  int    `json:"errorId"`
	Domain   string `json:"domain"`
	Message  string `json:"message"`
	LongMessage string `json:"longMessage,omitempty"`
}

type errorEnvelope struct {
	Errors []APIError `json:"errors"`
}

// Known error ids the sync core maps to idempotent conflicts.
const (
	// errOfferNotAvailable: withdrawing an offer that is not published.
	errOfferNotAvailable = 25713
	// errInvalidQuantity: a zero-quantity write the marketplace refuses.
	errInvalidQuantity = 25002
)
