package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopbridge/backend/internal/domain/draft"
	"github.com/shopbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDraftRepository implements draft.Repository using GORM
type GormDraftRepository struct {
	db *gorm.DB
}

// NewGormDraftRepository creates a new GormDraftRepository
func NewGormDraftRepository(db *gorm.DB) *GormDraftRepository {
	return &GormDraftRepository{db: db}
}

// FindByID finds a draft by its ID
func (r *GormDraftRepository) FindByID(ctx context.Context, id uuid.UUID) (*draft.Draft, error) {
	var model models.DraftModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, draft.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPendingByProductID returns the product's pending draft, if any
func (r *GormDraftRepository) FindPendingByProductID(ctx context.Context, productID string) (*draft.Draft, error) {
	var model models.DraftModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, draft.StatusPending).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, draft.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns drafts matching the filter, newest first
func (r *GormDraftRepository) FindAll(ctx context.Context, filter draft.Filter) ([]draft.Draft, error) {
	var draftModels []models.DraftModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DraftModel{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Order("created_at DESC").Find(&draftModels).Error; err != nil {
		return nil, err
	}

	drafts := make([]draft.Draft, len(draftModels))
	for i, model := range draftModels {
		drafts[i] = *model.ToDomain()
	}
	return drafts, nil
}

// Count counts drafts matching the filter
func (r *GormDraftRepository) Count(ctx context.Context, filter draft.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DraftModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a draft
func (r *GormDraftRepository) Save(ctx context.Context, d *draft.Draft) error {
	model := models.DraftModelFromDomain(d)
	return r.db.WithContext(ctx).Save(model).Error
}

// applyFilter applies filter options to the query
func (r *GormDraftRepository) applyFilter(query *gorm.DB, filter draft.Filter) *gorm.DB {
	if filter.Status != nil && filter.Status.IsValid() {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// Ensure GormDraftRepository implements draft.Repository
var _ draft.Repository = (*GormDraftRepository)(nil)
