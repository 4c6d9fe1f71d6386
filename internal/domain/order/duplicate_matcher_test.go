package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shopbridge/backend/internal/domain/platform"
)

func testRemoteOrder() *platform.MarketplaceOrder {
	return &platform.MarketplaceOrder{
		OrderID:     "B-1001",
		CreatedAt:   time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		BuyerHandle: "vintage_hunter_88",
		Total:       decimal.NewFromFloat(49.99),
		Currency:    "USD",
	}
}

func TestFuzzyMatcher_TaggedOrderWithinWindow(t *testing.T) {
	m := NewFuzzyMatcher(DefaultFuzzyMatchConfig(), "ebay")
	remote := testRemoteOrder()

	candidate := &platform.StorefrontOrder{
		ID:         "so-1",
		CreatedAt:  remote.CreatedAt.Add(6 * time.Hour),
		TotalPrice: decimal.NewFromFloat(49.99),
		Tags:       []string{"ebay-import"},
	}
	assert.True(t, m.Matches(remote, candidate))
}

func TestFuzzyMatcher_BuyerHandleInNote(t *testing.T) {
	m := NewFuzzyMatcher(DefaultFuzzyMatchConfig(), "ebay")
	remote := testRemoteOrder()

	candidate := &platform.StorefrontOrder{
		CreatedAt:  remote.CreatedAt.Add(-3 * time.Hour),
		TotalPrice: decimal.NewFromFloat(50.00), // within one cent
		Note:       "Imported for buyer Vintage_Hunter_88 via manual entry",
	}
	assert.True(t, m.Matches(remote, candidate))
}

func TestFuzzyMatcher_OutsideWindow(t *testing.T) {
	m := NewFuzzyMatcher(DefaultFuzzyMatchConfig(), "ebay")
	remote := testRemoteOrder()

	candidate := &platform.StorefrontOrder{
		CreatedAt:  remote.CreatedAt.Add(25 * time.Hour),
		TotalPrice: decimal.NewFromFloat(49.99),
		Tags:       []string{"ebay-import"},
	}
	assert.False(t, m.Matches(remote, candidate))
}

func TestFuzzyMatcher_AmountTooFar(t *testing.T) {
	m := NewFuzzyMatcher(DefaultFuzzyMatchConfig(), "ebay")
	remote := testRemoteOrder()

	candidate := &platform.StorefrontOrder{
		CreatedAt:  remote.CreatedAt,
		TotalPrice: decimal.NewFromFloat(49.97), // two cents off
		Tags:       []string{"ebay-import"},
	}
	assert.False(t, m.Matches(remote, candidate))
}

func TestFuzzyMatcher_NoProvenanceSignals(t *testing.T) {
	m := NewFuzzyMatcher(DefaultFuzzyMatchConfig(), "ebay")
	remote := testRemoteOrder()

	// Same time and amount but neither tag nor buyer handle: a coincidental
	// storefront sale must never be treated as a duplicate.
	candidate := &platform.StorefrontOrder{
		CreatedAt:  remote.CreatedAt,
		TotalPrice: decimal.NewFromFloat(49.99),
		Note:       "walk-in customer",
	}
	assert.False(t, m.Matches(remote, candidate))
}

func TestFuzzyMatcher_EmptyBuyerHandleNeverMatchesNote(t *testing.T) {
	m := NewFuzzyMatcher(DefaultFuzzyMatchConfig(), "ebay")
	remote := testRemoteOrder()
	remote.BuyerHandle = ""

	candidate := &platform.StorefrontOrder{
		CreatedAt:  remote.CreatedAt,
		TotalPrice: decimal.NewFromFloat(49.99),
		Note:       "anything at all",
	}
	assert.False(t, m.Matches(remote, candidate))
}

func TestNewMapping_Validation(t *testing.T) {
	_, err := NewMapping("", "so-1", "#1001", MappingStatusImported)
	assert.ErrorIs(t, err, ErrInvalidOrderID)

	m, err := NewMapping("B-1001", "so-1", "#1001", MappingStatusImported)
	assert.NoError(t, err)
	assert.Equal(t, "B-1001", m.MarketplaceOrderID)
	assert.Equal(t, MappingStatusImported, m.Status)
	assert.False(t, m.SyncedAt.IsZero())
}
