package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopbridge/backend/internal/domain/listing"
	"github.com/shopbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormListingMappingRepository implements listing.MappingRepository using GORM
type GormListingMappingRepository struct {
	db *gorm.DB
}

// NewGormListingMappingRepository creates a new GormListingMappingRepository
func NewGormListingMappingRepository(db *gorm.DB) *GormListingMappingRepository {
	return &GormListingMappingRepository{db: db}
}

// ---------------------------------------------------------------------------
// MappingReader implementation
// ---------------------------------------------------------------------------

// FindByID finds a mapping by its ID
func (r *GormListingMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Mapping, error) {
	var model models.ListingMappingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, listing.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySKU finds the mapping for a marketplace SKU
func (r *GormListingMappingRepository) FindBySKU(ctx context.Context, sku string) (*listing.Mapping, error) {
	var model models.ListingMappingModel
	if err := r.db.WithContext(ctx).First(&model, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, listing.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProductID finds all mappings for a storefront product
func (r *GormListingMappingRepository) FindByProductID(ctx context.Context, productID string) ([]listing.Mapping, error) {
	var mappingModels []models.ListingMappingModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]listing.Mapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// FindActiveByProductID finds the single active mapping for a product
func (r *GormListingMappingRepository) FindActiveByProductID(ctx context.Context, productID string) (*listing.Mapping, error) {
	var model models.ListingMappingModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, listing.StatusActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, listing.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ---------------------------------------------------------------------------
// MappingFinder implementation
// ---------------------------------------------------------------------------

// FindByStatus returns all mappings in the given status, oldest first
func (r *GormListingMappingRepository) FindByStatus(ctx context.Context, status listing.Status) ([]listing.Mapping, error) {
	var mappingModels []models.ListingMappingModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]listing.Mapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// CountByStatus counts mappings per status
func (r *GormListingMappingRepository) CountByStatus(ctx context.Context) (map[listing.Status]int64, error) {
	type statusCount struct {
		Status listing.Status
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.ListingMappingModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[listing.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ---------------------------------------------------------------------------
// MappingWriter implementation
// ---------------------------------------------------------------------------

// Save creates or updates a mapping
func (r *GormListingMappingRepository) Save(ctx context.Context, mapping *listing.Mapping) error {
	model := models.ListingMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a mapping
func (r *GormListingMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ListingMappingModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return listing.ErrMappingNotFound
	}
	return nil
}

// Ensure GormListingMappingRepository implements listing.MappingRepository
var _ listing.MappingRepository = (*GormListingMappingRepository)(nil)
