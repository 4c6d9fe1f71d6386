package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopbridge/backend/internal/domain/webhook"
	"github.com/shopbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormWebhookEventRepository implements webhook.Repository using GORM
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewGormWebhookEventRepository creates a new GormWebhookEventRepository
func NewGormWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// FindByID finds an event by its ID
func (r *GormWebhookEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*webhook.Event, error) {
	var model models.WebhookEventModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, webhook.ErrEventNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPending returns pending events oldest first
func (r *GormWebhookEventRepository) FindPending(ctx context.Context, limit int) ([]webhook.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	var eventModels []models.WebhookEventModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", webhook.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&eventModels).Error; err != nil {
		return nil, err
	}

	events := make([]webhook.Event, len(eventModels))
	for i, model := range eventModels {
		events[i] = *model.ToDomain()
	}
	return events, nil
}

// Save creates or updates an event row
func (r *GormWebhookEventRepository) Save(ctx context.Context, event *webhook.Event) error {
	model := models.WebhookEventModelFromDomain(event)
	return r.db.WithContext(ctx).Save(model).Error
}

// CountByStatus counts events per processing state
func (r *GormWebhookEventRepository) CountByStatus(ctx context.Context) (map[webhook.Status]int64, error) {
	type statusCount struct {
		Status webhook.Status
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.WebhookEventModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[webhook.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Ensure GormWebhookEventRepository implements webhook.Repository
var _ webhook.Repository = (*GormWebhookEventRepository)(nil)
