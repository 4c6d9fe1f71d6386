package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbridge/backend/internal/domain/webhook"
)

// WebhookEventModel is the persistence model for the webhook.Event record.
// The raw payload is stored verbatim so failed events can be replayed.
type WebhookEventModel struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key"`
	Source      string         `gorm:"type:varchar(20);not null;index:idx_webhook_event_source"`
	Topic       string         `gorm:"type:varchar(100);not null"`
	EntityID    string         `gorm:"type:varchar(64);index:idx_webhook_event_entity"`
	Payload     []byte         `gorm:"type:jsonb;not null"`
	Status      webhook.Status `gorm:"type:varchar(20);not null;default:'pending';index:idx_webhook_event_status"`
	Attempts    int            `gorm:"not null;default:0"`
	LastError   string         `gorm:"type:text"`
	ProcessedAt *time.Time
	CreatedAt   time.Time `gorm:"not null;index:idx_webhook_event_created"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WebhookEventModel) TableName() string {
	return "webhook_events"
}

// ToDomain converts the persistence model to a domain webhook.Event.
func (m *WebhookEventModel) ToDomain() *webhook.Event {
	return &webhook.Event{
		ID:          m.ID,
		Source:      m.Source,
		Topic:       m.Topic,
		EntityID:    m.EntityID,
		Payload:     m.Payload,
		Status:      m.Status,
		Attempts:    m.Attempts,
		LastError:   m.LastError,
		ProcessedAt: m.ProcessedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain webhook.Event.
func (m *WebhookEventModel) FromDomain(e *webhook.Event) {
	m.ID = e.ID
	m.Source = e.Source
	m.Topic = e.Topic
	m.EntityID = e.EntityID
	m.Payload = e.Payload
	m.Status = e.Status
	m.Attempts = e.Attempts
	m.LastError = e.LastError
	m.ProcessedAt = e.ProcessedAt
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// WebhookEventModelFromDomain creates a new persistence model from a domain webhook.Event.
func WebhookEventModelFromDomain(e *webhook.Event) *WebhookEventModel {
	m := &WebhookEventModel{}
	m.FromDomain(e)
	return m
}
