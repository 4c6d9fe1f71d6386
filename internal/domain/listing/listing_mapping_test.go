package listing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMapping(t *testing.T) {
	m, err := NewMapping("prod-1", "SKU-001")
	require.NoError(t, err)
	assert.Equal(t, "prod-1", m.ProductID)
	assert.Equal(t, "SKU-001", m.SKU)
	assert.Equal(t, StatusPending, m.Status)
	assert.Empty(t, m.ListingID)
	assert.NotEqual(t, m.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestNewMapping_Validation(t *testing.T) {
	_, err := NewMapping("", "SKU-001")
	assert.ErrorIs(t, err, ErrInvalidProductID)

	_, err = NewMapping("prod-1", "")
	assert.ErrorIs(t, err, ErrInvalidSKU)
}

func TestStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusActive, true},
		{StatusActive, StatusEnded, true},
		{StatusEnded, StatusActive, true},
		{StatusEnded, StatusPending, false},
		{StatusActive, StatusPending, false},
		{StatusPending, StatusEnded, false},
		{StatusInactive, StatusActive, true},
		{StatusError, StatusEnded, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestMapping_MarkListed(t *testing.T) {
	m, _ := NewMapping("prod-1", "SKU-001")
	price := decimal.NewFromFloat(19.99)

	err := m.MarkListed("offer-1", "listing-1", price)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, m.Status)
	assert.Equal(t, "listing-1", m.ListingID)
	assert.Equal(t, "offer-1", m.OfferID)
	assert.True(t, price.Equal(m.Price))
}

func TestMapping_MarkListed_RequiresListingID(t *testing.T) {
	m, _ := NewMapping("prod-1", "SKU-001")
	err := m.MarkListed("offer-1", "", decimal.Zero)
	assert.ErrorIs(t, err, ErrListingIDRequired)
	assert.Equal(t, StatusPending, m.Status)
}

func TestMapping_EndAndRelist(t *testing.T) {
	m, _ := NewMapping("prod-1", "SKU-001")
	require.NoError(t, m.MarkListed("offer-1", "listing-1", decimal.NewFromInt(10)))

	require.NoError(t, m.End())
	assert.Equal(t, StatusEnded, m.Status)
	// Listing id is kept for later republish attempts.
	assert.Equal(t, "listing-1", m.ListingID)

	require.NoError(t, m.Relist("listing-2"))
	assert.Equal(t, StatusActive, m.Status)
	assert.Equal(t, "listing-2", m.ListingID)
}

func TestMapping_End_FromPendingIsIllegal(t *testing.T) {
	m, _ := NewMapping("prod-1", "SKU-001")
	err := m.End()
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StatusPending, m.Status)
}

func TestMapping_RecordError(t *testing.T) {
	m, _ := NewMapping("prod-1", "SKU-001")
	require.NoError(t, m.MarkListed("offer-1", "listing-1", decimal.NewFromInt(10)))

	require.NoError(t, m.RecordError("publish failed: 500"))
	assert.Equal(t, StatusError, m.Status)
	assert.Equal(t, "publish failed: 500", m.LastError)

	// Error state can recover to active.
	require.NoError(t, m.Relist("listing-1"))
	assert.Equal(t, StatusActive, m.Status)
	assert.Empty(t, m.LastError)
}

func TestMapping_Deactivate(t *testing.T) {
	m, _ := NewMapping("prod-1", "SKU-001")
	require.NoError(t, m.Deactivate())
	assert.Equal(t, StatusInactive, m.Status)
}
