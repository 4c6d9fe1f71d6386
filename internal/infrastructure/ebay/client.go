package ebay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopbridge/backend/internal/domain/platform"
)

// maxResponseSize is the maximum allowed response size from the Sell APIs (10MB)
const maxResponseSize = 10 * 1024 * 1024

// creationDateFilter is the fulfillment API's order filter format.
const creationDateFilter = "creationdate:[%s..]"

// Client implements the marketplace port against the eBay Sell APIs
// (Fulfillment, Inventory and Account).
type Client struct {
	config     *Config
	tokens     platform.TokenProvider
	httpClient *http.Client
}

// NewClient creates an eBay client. Tokens are resolved per request so the
// provider can rotate them underneath.
func NewClient(config *Config, tokens platform.TokenProvider) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if tokens == nil {
		return nil, fmt.Errorf("%w: ebay token provider", platform.ErrNotConfigured)
	}
	return &Client{
		config: config,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// Order operations
// ---------------------------------------------------------------------------

// FetchOrders returns orders created after the given instant, oldest first as
// the API returns them.
func (c *Client) FetchOrders(ctx context.Context, createdAfter time.Time) ([]platform.MarketplaceOrder, error) {
	q := url.Values{}
	q.Set("filter", fmt.Sprintf(creationDateFilter, createdAfter.UTC().Format("2006-01-02T15:04:05.000Z")))
	q.Set("limit", "200")

	var resp ordersResponse
	if err := c.doJSON(ctx, http.MethodGet, "/sell/fulfillment/v1/order?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	orders := make([]platform.MarketplaceOrder, 0, len(resp.Orders))
	for i := range resp.Orders {
		orders = append(orders, convertOrder(&resp.Orders[i]))
	}
	return orders, nil
}

// ---------------------------------------------------------------------------
// Inventory operations
// ---------------------------------------------------------------------------

// GetInventoryItem fetches the inventory record for a SKU.
func (c *Client) GetInventoryItem(ctx context.Context, sku string) (*platform.InventoryItem, error) {
	var item InventoryItem
	err := c.doJSON(ctx, http.MethodGet, "/sell/inventory/v1/inventory_item/"+url.PathEscape(sku), nil, &item)
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", platform.ErrInventoryNotFound, sku)
		}
		return nil, err
	}

	result := &platform.InventoryItem{SKU: item.SKU}
	if result.SKU == "" {
		result.SKU = sku
	}
	if item.Availability != nil {
		result.Quantity = item.Availability.ShipToLocationAvailability.Quantity
	}
	if item.Product != nil {
		result.Title = item.Product.Title
	}
	return result, nil
}

// SetInventoryQuantity writes the sellable quantity for a SKU via the bulk
// price/quantity endpoint.
func (c *Client) SetInventoryQuantity(ctx context.Context, sku string, quantity int) error {
	payload := bulkUpdateRequest{Requests: []bulkUpdateEntry{{
		SKU:                        sku,
		ShipToLocationAvailability: &ShipToLocationAvailability{Quantity: quantity},
	}}}
	return c.doJSON(ctx, http.MethodPost, "/sell/inventory/v1/bulk_update_price_quantity", payload, nil)
}

// GetOffersBySKU returns the offers bound to a SKU.
func (c *Client) GetOffersBySKU(ctx context.Context, sku string) ([]platform.Offer, error) {
	q := url.Values{}
	q.Set("sku", sku)
	q.Set("marketplace_id", c.config.MarketplaceID)

	var resp offersResponse
	if err := c.doJSON(ctx, http.MethodGet, "/sell/inventory/v1/offer?"+q.Encode(), nil, &resp); err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			// No offers for this SKU is an empty result, not a failure.
			return []platform.Offer{}, nil
		}
		return nil, err
	}

	offers := make([]platform.Offer, 0, len(resp.Offers))
	for i := range resp.Offers {
		offers = append(offers, convertOffer(&resp.Offers[i]))
	}
	return offers, nil
}

// WithdrawOffer ends the live listing behind an offer. Withdrawing an offer
// that is not published maps to ErrOfferAlreadyWithdrawn.
func (c *Client) WithdrawOffer(ctx context.Context, offerID string) error {
	return c.doJSON(ctx, http.MethodPost, "/sell/inventory/v1/offer/"+url.PathEscape(offerID)+"/withdraw", nil, nil)
}

// PublishOffer publishes an offer and returns the resulting listing id.
func (c *Client) PublishOffer(ctx context.Context, offerID string) (string, error) {
	var resp publishResponse
	err := c.doJSON(ctx, http.MethodPost, "/sell/inventory/v1/offer/"+url.PathEscape(offerID)+"/publish", nil, &resp)
	if err != nil {
		return "", err
	}
	if resp.ListingID == "" {
		return "", fmt.Errorf("ebay: publish returned no listing id for offer %s", offerID)
	}
	return resp.ListingID, nil
}

// CreateOffer creates a new fixed-price offer and returns its id.
func (c *Client) CreateOffer(ctx context.Context, req *platform.CreateOfferRequest) (string, error) {
	payload := Offer{
		SKU:               req.SKU,
		MarketplaceID:     c.config.MarketplaceID,
		Format:            "FIXED_PRICE",
		CategoryID:        req.CategoryID,
		AvailableQuantity: req.Quantity,
		PricingSummary: &OfferPricing{Price: Amount{
			Value:    req.Price.StringFixed(2),
			Currency: req.Currency,
		}},
		ListingPolicies: &ListingPolicies{
			FulfillmentPolicyID: req.Policies.FulfillmentPolicyID,
			PaymentPolicyID:     req.Policies.PaymentPolicyID,
			ReturnPolicyID:      req.Policies.ReturnPolicyID,
		},
	}

	var resp createOfferResponse
	if err := c.doJSON(ctx, http.MethodPost, "/sell/inventory/v1/offer", payload, &resp); err != nil {
		return "", err
	}
	if resp.OfferID == "" {
		return "", fmt.Errorf("ebay: create offer returned no offer id")
	}
	return resp.OfferID, nil
}

// GetBusinessPolicies reads the merchant's first fulfillment, payment and
// return policy for the configured marketplace.
func (c *Client) GetBusinessPolicies(ctx context.Context) (*platform.BusinessPolicies, error) {
	q := "?marketplace_id=" + url.QueryEscape(c.config.MarketplaceID)

	var fulfillment fulfillmentPoliciesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/sell/account/v1/fulfillment_policy"+q, nil, &fulfillment); err != nil {
		return nil, err
	}
	var payment paymentPoliciesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/sell/account/v1/payment_policy"+q, nil, &payment); err != nil {
		return nil, err
	}
	var returns returnPoliciesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/sell/account/v1/return_policy"+q, nil, &returns); err != nil {
		return nil, err
	}
	if len(fulfillment.FulfillmentPolicies) == 0 || len(payment.PaymentPolicies) == 0 || len(returns.ReturnPolicies) == 0 {
		return nil, fmt.Errorf("%w: merchant business policies", platform.ErrNotConfigured)
	}

	return &platform.BusinessPolicies{
		FulfillmentPolicyID: fulfillment.FulfillmentPolicies[0].FulfillmentPolicyID,
		PaymentPolicyID:     payment.PaymentPolicies[0].PaymentPolicyID,
		ReturnPolicyID:      returns.ReturnPolicies[0].ReturnPolicyID,
	}, nil
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// doJSON performs one Sell API request with a fresh bearer token. A nil out
// skips decoding.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", platform.ErrNotConfigured, err)
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("ebay: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("ebay: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Language", "en-US")
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.config.MarketplaceID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ebay: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("ebay: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return mapError(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("ebay: parse response: %w", err)
	}
	return nil
}

// mapError converts the Sell API error envelope into the typed errors the
// sync core branches on.
func mapError(status int, body []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		switch first.ErrorID {
		case errOfferNotAvailable:
			return fmt.Errorf("%w: %s", platform.ErrOfferAlreadyWithdrawn, first.Message)
		case errInvalidQuantity:
			return fmt.Errorf("%w: %s", platform.ErrZeroQuantityRejected, first.Message)
		}
		if status == http.StatusNotFound {
			return fmt.Errorf("%w: %s", platform.ErrNotFound, first.Message)
		}
		return fmt.Errorf("ebay: HTTP %d: %d %s", status, first.ErrorID, first.Message)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: HTTP 404", platform.ErrNotFound)
	}
	return fmt.Errorf("ebay: HTTP %d: %s", status, string(body))
}

// convertOrder maps a fulfillment order onto the boundary type.
func convertOrder(o *FulfillmentOrder) platform.MarketplaceOrder {
	order := platform.MarketplaceOrder{
		OrderID:       o.OrderID,
		BuyerHandle:   o.Buyer.Username,
		Total:         parseAmount(o.PricingSummary.Total),
		Currency:      o.PricingSummary.Total.Currency,
		ShippingCost:  parseAmount(o.PricingSummary.DeliveryCost),
		PaymentStatus: o.OrderPaymentStatus,
	}
	if t, err := time.Parse(time.RFC3339, o.CreationDate); err == nil {
		order.CreatedAt = t
	}

	for _, li := range o.LineItems {
		order.Items = append(order.Items, platform.MarketplaceLineItem{
			SKU:       li.SKU,
			Title:     li.Title,
			Quantity:  li.Quantity,
			UnitPrice: parseAmount(li.LineItemCost),
		})
	}

	if len(o.FulfillmentStartIns) > 0 {
		shipTo := o.FulfillmentStartIns[0].ShippingStep.ShipTo
		order.ShipTo = platform.Address{
			FullName:    shipTo.FullName,
			Line1:       shipTo.ContactAddress.AddressLine1,
			Line2:       shipTo.ContactAddress.AddressLine2,
			City:        shipTo.ContactAddress.City,
			Region:      shipTo.ContactAddress.StateOrProvince,
			PostalCode:  shipTo.ContactAddress.PostalCode,
			CountryCode: shipTo.ContactAddress.CountryCode,
		}
		if shipTo.PrimaryPhone != nil {
			order.ShipTo.Phone = shipTo.PrimaryPhone.PhoneNumber
		}
	}
	return order
}

// convertOffer maps an inventory offer onto the boundary type.
func convertOffer(o *Offer) platform.Offer {
	offer := platform.Offer{
		OfferID:    o.OfferID,
		SKU:        o.SKU,
		ListingID:  o.ListingID,
		CategoryID: o.CategoryID,
	}
	if o.Listing != nil && offer.ListingID == "" {
		offer.ListingID = o.Listing.ListingID
	}
	if o.Status == "PUBLISHED" {
		offer.Status = platform.OfferStatusPublished
	} else {
		offer.Status = platform.OfferStatusUnpublished
	}
	if o.PricingSummary != nil {
		offer.Price = parseAmount(o.PricingSummary.Price)
		offer.Currency = o.PricingSummary.Price.Currency
	}
	return offer
}

func parseAmount(a Amount) decimal.Decimal {
	d, err := decimal.NewFromString(a.Value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Ensure Client implements the marketplace port
var _ platform.Marketplace = (*Client)(nil)
