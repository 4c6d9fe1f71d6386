package ebay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbridge/backend/internal/domain/platform"
)

// staticTokens is a token provider returning a fixed bearer token.
type staticTokens string

func (t staticTokens) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	config := NewConfig()
	config.BaseURL = server.URL
	client, err := NewClient(config, staticTokens("tok-123"))
	require.NoError(t, err)
	return client, server
}

func writeErrors(w http.ResponseWriter, status int, errs ...APIError) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{Errors: errs})
}

// ---------------------------------------------------------------------------
// Config tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	config := &Config{}
	require.NoError(t, config.Validate())
	assert.Equal(t, ProductionAPIURL, config.BaseURL)
	assert.Equal(t, DefaultMarketplaceID, config.MarketplaceID)
	assert.True(t, config.TimeoutSeconds > 0)

	sandbox := &Config{IsSandbox: true}
	require.NoError(t, sandbox.Validate())
	assert.Equal(t, SandboxAPIURL, sandbox.BaseURL)

	blank := &Config{MarketplaceID: "   "}
	assert.ErrorIs(t, blank.Validate(), ErrConfigMissingMarketplace)
}

func TestNewClient_RequiresTokenProvider(t *testing.T) {
	_, err := NewClient(NewConfig(), nil)
	assert.ErrorIs(t, err, platform.ErrNotConfigured)
}

// ---------------------------------------------------------------------------
// Order tests
// ---------------------------------------------------------------------------

func TestClient_FetchOrders(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sell/fulfillment/v1/order", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Query().Get("filter"), "creationdate:[")

		json.NewEncoder(w).Encode(ordersResponse{
			Total: 1,
			Orders: []FulfillmentOrder{{
				OrderID:            "B-1001",
				CreationDate:       "2026-03-20T10:00:00.000Z",
				OrderPaymentStatus: "PAID",
				Buyer:              Buyer{Username: "vintage_hunter_88"},
				PricingSummary: PricingSummary{
					Total:        Amount{Value: "49.99", Currency: "USD"},
					DeliveryCost: Amount{Value: "4.99", Currency: "USD"},
				},
				LineItems: []FulfillmentLine{{
					LineItemID:   "li-1",
					SKU:          "SKU-001",
					Title:        "Vintage Camera",
					Quantity:     1,
					LineItemCost: Amount{Value: "45.00", Currency: "USD"},
				}},
				FulfillmentStartIns: []FulfillmentStartIn{{
					ShippingStep: ShippingStep{ShipTo: ShipTo{
						FullName: "Jamie Lee",
						ContactAddress: ContactAddress{
							AddressLine1:    "1 Main St",
							City:            "Portland",
							StateOrProvince: "OR",
							PostalCode:      "97201",
							CountryCode:     "US",
						},
					}},
				}},
			}},
		})
	})
	defer server.Close()

	orders, err := client.FetchOrders(context.Background(), mustParseTime(t, "2026-03-19T10:00:00Z"))
	require.NoError(t, err)

	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, "B-1001", o.OrderID)
	assert.Equal(t, "vintage_hunter_88", o.BuyerHandle)
	assert.True(t, o.Total.Equal(decimal.NewFromFloat(49.99)))
	assert.True(t, o.ShippingCost.Equal(decimal.NewFromFloat(4.99)))
	assert.Equal(t, "PAID", o.PaymentStatus)
	assert.Equal(t, "Jamie Lee", o.ShipTo.FullName)
	assert.Equal(t, "OR", o.ShipTo.Region)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "SKU-001", o.Items[0].SKU)
	assert.Equal(t, 2026, o.CreatedAt.Year())
}

// ---------------------------------------------------------------------------
// Inventory tests
// ---------------------------------------------------------------------------

func TestClient_GetInventoryItem(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sell/inventory/v1/inventory_item/SKU-001", r.URL.Path)
		json.NewEncoder(w).Encode(InventoryItem{
			SKU: "SKU-001",
			Availability: &Availability{
				ShipToLocationAvailability: ShipToLocationAvailability{Quantity: 5},
			},
			Product: &ItemProduct{Title: "Vintage Camera"},
		})
	})
	defer server.Close()

	item, err := client.GetInventoryItem(context.Background(), "SKU-001")
	require.NoError(t, err)

	assert.Equal(t, "SKU-001", item.SKU)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, "Vintage Camera", item.Title)
}

func TestClient_GetInventoryItem_NotFound(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeErrors(w, http.StatusNotFound, APIError{ErrorID: 25710, Message: "resource not found"})
	})
	defer server.Close()

	_, err := client.GetInventoryItem(context.Background(), "SKU-404")
	assert.ErrorIs(t, err, platform.ErrInventoryNotFound)
}

func TestClient_SetInventoryQuantity(t *testing.T) {
	var captured bulkUpdateRequest
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sell/inventory/v1/bulk_update_price_quantity", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	})
	defer server.Close()

	require.NoError(t, client.SetInventoryQuantity(context.Background(), "SKU-001", 7))
	require.Len(t, captured.Requests, 1)
	assert.Equal(t, "SKU-001", captured.Requests[0].SKU)
	assert.Equal(t, 7, captured.Requests[0].ShipToLocationAvailability.Quantity)
}

func TestClient_SetInventoryQuantity_ZeroRejected(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeErrors(w, http.StatusBadRequest, APIError{ErrorID: errInvalidQuantity, Message: "Invalid value for quantity"})
	})
	defer server.Close()

	err := client.SetInventoryQuantity(context.Background(), "SKU-001", 0)
	assert.ErrorIs(t, err, platform.ErrZeroQuantityRejected)
}

// ---------------------------------------------------------------------------
// Offer tests
// ---------------------------------------------------------------------------

func TestClient_GetOffersBySKU(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SKU-001", r.URL.Query().Get("sku"))
		assert.Equal(t, "EBAY_US", r.URL.Query().Get("marketplace_id"))
		json.NewEncoder(w).Encode(offersResponse{
			Total: 1,
			Offers: []Offer{{
				OfferID:    "off-1",
				SKU:        "SKU-001",
				Status:     "PUBLISHED",
				CategoryID: "cat-9",
				Listing:    &OfferListing{ListingID: "lst-1"},
				PricingSummary: &OfferPricing{
					Price: Amount{Value: "19.99", Currency: "USD"},
				},
			}},
		})
	})
	defer server.Close()

	offers, err := client.GetOffersBySKU(context.Background(), "SKU-001")
	require.NoError(t, err)

	require.Len(t, offers, 1)
	assert.Equal(t, "off-1", offers[0].OfferID)
	assert.Equal(t, "lst-1", offers[0].ListingID)
	assert.True(t, offers[0].Status.IsPublished())
	assert.True(t, offers[0].Price.Equal(decimal.NewFromFloat(19.99)))
}

func TestClient_GetOffersBySKU_NoneIsEmptyNotError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeErrors(w, http.StatusNotFound, APIError{ErrorID: 25710, Message: "no offers"})
	})
	defer server.Close()

	offers, err := client.GetOffersBySKU(context.Background(), "SKU-NEW")
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestClient_WithdrawOffer_AlreadyWithdrawn(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sell/inventory/v1/offer/off-1/withdraw", r.URL.Path)
		writeErrors(w, http.StatusBadRequest, APIError{ErrorID: errOfferNotAvailable, Message: "offer is not available"})
	})
	defer server.Close()

	err := client.WithdrawOffer(context.Background(), "off-1")
	assert.ErrorIs(t, err, platform.ErrOfferAlreadyWithdrawn)
	assert.True(t, platform.IsIdempotentConflict(err))
}

func TestClient_PublishOffer(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sell/inventory/v1/offer/off-1/publish", r.URL.Path)
		json.NewEncoder(w).Encode(publishResponse{ListingID: "lst-77"})
	})
	defer server.Close()

	listingID, err := client.PublishOffer(context.Background(), "off-1")
	require.NoError(t, err)
	assert.Equal(t, "lst-77", listingID)
}

func TestClient_CreateOffer(t *testing.T) {
	var captured Offer
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(createOfferResponse{OfferID: "off-9"})
	})
	defer server.Close()

	offerID, err := client.CreateOffer(context.Background(), &platform.CreateOfferRequest{
		SKU:        "SKU-001",
		Quantity:   3,
		Price:      decimal.NewFromFloat(19.99),
		Currency:   "USD",
		CategoryID: "cat-9",
		Policies: platform.BusinessPolicies{
			FulfillmentPolicyID: "fp-1",
			PaymentPolicyID:     "pp-1",
			ReturnPolicyID:      "rp-1",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "off-9", offerID)
	assert.Equal(t, "FIXED_PRICE", captured.Format)
	assert.Equal(t, "EBAY_US", captured.MarketplaceID)
	assert.Equal(t, 3, captured.AvailableQuantity)
	assert.Equal(t, "19.99", captured.PricingSummary.Price.Value)
	assert.Equal(t, "fp-1", captured.ListingPolicies.FulfillmentPolicyID)
}

func TestClient_GetBusinessPolicies(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sell/account/v1/fulfillment_policy":
			json.NewEncoder(w).Encode(fulfillmentPoliciesResponse{
				FulfillmentPolicies: []policyEntry{{FulfillmentPolicyID: "fp-1", Name: "Standard"}},
			})
		case "/sell/account/v1/payment_policy":
			json.NewEncoder(w).Encode(paymentPoliciesResponse{
				PaymentPolicies: []policyEntry{{PaymentPolicyID: "pp-1", Name: "Managed"}},
			})
		case "/sell/account/v1/return_policy":
			json.NewEncoder(w).Encode(returnPoliciesResponse{
				ReturnPolicies: []policyEntry{{ReturnPolicyID: "rp-1", Name: "30 days"}},
			})
		default:
			http.NotFound(w, r)
		}
	})
	defer server.Close()

	policies, err := client.GetBusinessPolicies(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fp-1", policies.FulfillmentPolicyID)
	assert.Equal(t, "pp-1", policies.PaymentPolicyID)
	assert.Equal(t, "rp-1", policies.ReturnPolicyID)
}

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}
