package persistence

import (
	"context"

	"github.com/shopbridge/backend/internal/domain/audit"
	"github.com/shopbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSyncLogRepository implements audit.LogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append writes one audit entry
func (r *GormSyncLogRepository) Append(ctx context.Context, entry *audit.Entry) error {
	model := models.SyncLogEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// Find returns entries matching the filter, newest first
func (r *GormSyncLogRepository) Find(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	var entryModels []models.SyncLogEntryModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SyncLogEntryModel{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Order("created_at DESC").Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]audit.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Count counts entries matching the filter
func (r *GormSyncLogRepository) Count(ctx context.Context, filter audit.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SyncLogEntryModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormSyncLogRepository) applyFilter(query *gorm.DB, filter audit.Filter) *gorm.DB {
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.EntityType != nil {
		query = query.Where("entity_type = ?", *filter.EntityType)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Outcome != nil {
		query = query.Where("outcome = ?", *filter.Outcome)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	return query
}

// Ensure GormSyncLogRepository implements audit.LogRepository
var _ audit.LogRepository = (*GormSyncLogRepository)(nil)
