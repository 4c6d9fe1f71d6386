package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/shopbridge/backend/internal/domain/order"
	"github.com/shopbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderMappingRepository implements order.MappingRepository using GORM
type GormOrderMappingRepository struct {
	db *gorm.DB
}

// NewGormOrderMappingRepository creates a new GormOrderMappingRepository
func NewGormOrderMappingRepository(db *gorm.DB) *GormOrderMappingRepository {
	return &GormOrderMappingRepository{db: db}
}

// FindByMarketplaceOrderID finds a mapping by marketplace order id
func (r *GormOrderMappingRepository) FindByMarketplaceOrderID(ctx context.Context, marketplaceOrderID string) (*order.Mapping, error) {
	var model models.OrderMappingModel
	if err := r.db.WithContext(ctx).
		First(&model, "marketplace_order_id = ?", marketplaceOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByMarketplaceOrderID checks if a mapping exists for a marketplace order
func (r *GormOrderMappingRepository) ExistsByMarketplaceOrderID(ctx context.Context, marketplaceOrderID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderMappingModel{}).
		Where("marketplace_order_id = ?", marketplaceOrderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a mapping. A unique violation on the marketplace order id is
// translated to order.ErrMappingAlreadyExists so callers can treat a lost
// race with another import run as an ordinary duplicate.
func (r *GormOrderMappingRepository) Save(ctx context.Context, mapping *order.Mapping) error {
	model := models.OrderMappingModelFromDomain(mapping)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return order.ErrMappingAlreadyExists
		}
		return err
	}
	return nil
}

// FindRecent returns the most recently synced mappings
func (r *GormOrderMappingRepository) FindRecent(ctx context.Context, limit int) ([]order.Mapping, error) {
	if limit <= 0 {
		limit = 50
	}

	var mappingModels []models.OrderMappingModel
	if err := r.db.WithContext(ctx).
		Order("synced_at DESC").
		Limit(limit).
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]order.Mapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// isUniqueViolation reports whether err is a unique-constraint violation.
// Matches both GORM's translated error and the raw Postgres message.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "SQLSTATE 23505")
}

// Ensure GormOrderMappingRepository implements order.MappingRepository
var _ order.MappingRepository = (*GormOrderMappingRepository)(nil)
