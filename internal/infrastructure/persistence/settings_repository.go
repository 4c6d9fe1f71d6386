package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/shopbridge/backend/internal/domain/settings"
	"github.com/shopbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// GetBool reads a boolean flag; returns the fallback when unset
func (r *GormSettingsRepository) GetBool(ctx context.Context, key string, fallback bool) (bool, error) {
	var model models.SettingModel
	if err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return fallback, err
	}
	return model.Value, nil
}

// SetBool writes a boolean flag
func (r *GormSettingsRepository) SetBool(ctx context.Context, key string, value bool) error {
	model := models.SettingModel{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model).Error
}

// GetAutoPublish reads the auto-publish policy for a product type
func (r *GormSettingsRepository) GetAutoPublish(ctx context.Context, productType string) (*settings.AutoPublishSetting, error) {
	var model models.AutoPublishSettingModel
	if err := r.db.WithContext(ctx).First(&model, "product_type = ?", productType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, settings.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SetAutoPublish writes the auto-publish policy for a product type
func (r *GormSettingsRepository) SetAutoPublish(ctx context.Context, setting *settings.AutoPublishSetting) error {
	var model models.AutoPublishSettingModel
	model.FromDomain(setting)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
		}).
		Create(&model).Error
}

// ListAutoPublish returns all per-type policies
func (r *GormSettingsRepository) ListAutoPublish(ctx context.Context) ([]settings.AutoPublishSetting, error) {
	var settingModels []models.AutoPublishSettingModel
	if err := r.db.WithContext(ctx).
		Order("product_type ASC").
		Find(&settingModels).Error; err != nil {
		return nil, err
	}

	result := make([]settings.AutoPublishSetting, len(settingModels))
	for i, model := range settingModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// Ensure GormSettingsRepository implements settings.Repository
var _ settings.Repository = (*GormSettingsRepository)(nil)
