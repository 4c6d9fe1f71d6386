package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbridge/backend/internal/domain/listing"
	"github.com/shopspring/decimal"
)

// ListingMappingModel is the persistence model for the listing.Mapping entity.
type ListingMappingModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID       string          `gorm:"type:varchar(64);not null;index:idx_listing_mapping_product"`
	SKU             string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_listing_mapping_sku"`
	ListingID       string          `gorm:"type:varchar(64);index:idx_listing_mapping_listing"`
	OfferID         string          `gorm:"type:varchar(64)"`
	Status          listing.Status  `gorm:"type:varchar(20);not null;default:'pending';index:idx_listing_mapping_status"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency        string          `gorm:"type:varchar(3)"`
	ProductTitle    string          `gorm:"type:varchar(255)"`
	StorefrontPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LastError       string          `gorm:"type:text"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ListingMappingModel) TableName() string {
	return "listing_mappings"
}

// ToDomain converts the persistence model to a domain listing.Mapping.
func (m *ListingMappingModel) ToDomain() *listing.Mapping {
	return &listing.Mapping{
		ID:              m.ID,
		ProductID:       m.ProductID,
		SKU:             m.SKU,
		ListingID:       m.ListingID,
		OfferID:         m.OfferID,
		Status:          m.Status,
		Price:           m.Price,
		Currency:        m.Currency,
		ProductTitle:    m.ProductTitle,
		StorefrontPrice: m.StorefrontPrice,
		LastError:       m.LastError,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain listing.Mapping.
func (m *ListingMappingModel) FromDomain(lm *listing.Mapping) {
	m.ID = lm.ID
	m.ProductID = lm.ProductID
	m.SKU = lm.SKU
	m.ListingID = lm.ListingID
	m.OfferID = lm.OfferID
	m.Status = lm.Status
	m.Price = lm.Price
	m.Currency = lm.Currency
	m.ProductTitle = lm.ProductTitle
	m.StorefrontPrice = lm.StorefrontPrice
	m.LastError = lm.LastError
	m.CreatedAt = lm.CreatedAt
	m.UpdatedAt = lm.UpdatedAt
}

// ListingMappingModelFromDomain creates a new persistence model from a domain listing.Mapping.
func ListingMappingModelFromDomain(lm *listing.Mapping) *ListingMappingModel {
	m := &ListingMappingModel{}
	m.FromDomain(lm)
	return m
}
