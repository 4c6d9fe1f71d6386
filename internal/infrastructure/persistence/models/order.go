package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbridge/backend/internal/domain/order"
)

// OrderMappingModel is the persistence model for the order.Mapping entity.
// The marketplace order id carries a unique index: the database is the last
// line of defense against double import when two sweeps race.
type OrderMappingModel struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primary_key"`
	MarketplaceOrderID  string              `gorm:"type:varchar(64);not null;uniqueIndex:idx_order_mapping_marketplace"`
	StorefrontOrderID   string              `gorm:"type:varchar(64);not null;index:idx_order_mapping_storefront"`
	StorefrontOrderName string              `gorm:"type:varchar(64)"`
	Status              order.MappingStatus `gorm:"type:varchar(20);not null"`
	SyncedAt            time.Time           `gorm:"not null;index:idx_order_mapping_synced"`
	CreatedAt           time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderMappingModel) TableName() string {
	return "order_mappings"
}

// ToDomain converts the persistence model to a domain order.Mapping.
func (m *OrderMappingModel) ToDomain() *order.Mapping {
	return &order.Mapping{
		ID:                  m.ID,
		MarketplaceOrderID:  m.MarketplaceOrderID,
		StorefrontOrderID:   m.StorefrontOrderID,
		StorefrontOrderName: m.StorefrontOrderName,
		Status:              m.Status,
		SyncedAt:            m.SyncedAt,
		CreatedAt:           m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain order.Mapping.
func (m *OrderMappingModel) FromDomain(om *order.Mapping) {
	m.ID = om.ID
	m.MarketplaceOrderID = om.MarketplaceOrderID
	m.StorefrontOrderID = om.StorefrontOrderID
	m.StorefrontOrderName = om.StorefrontOrderName
	m.Status = om.Status
	m.SyncedAt = om.SyncedAt
	m.CreatedAt = om.CreatedAt
}

// OrderMappingModelFromDomain creates a new persistence model from a domain order.Mapping.
func OrderMappingModelFromDomain(om *order.Mapping) *OrderMappingModel {
	m := &OrderMappingModel{}
	m.FromDomain(om)
	return m
}
