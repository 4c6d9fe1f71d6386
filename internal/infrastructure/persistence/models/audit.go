package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbridge/backend/internal/domain/audit"
)

// SyncLogEntryModel is the persistence model for the audit.Entry record.
// Rows are append-only.
type SyncLogEntryModel struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key"`
	Direction  audit.Direction  `gorm:"type:varchar(10);not null;index:idx_sync_log_direction"`
	EntityType audit.EntityType `gorm:"type:varchar(20);not null;index:idx_sync_log_entity,priority:1"`
	EntityID   string           `gorm:"type:varchar(64);index:idx_sync_log_entity,priority:2"`
	Outcome    audit.Outcome    `gorm:"type:varchar(10);not null;index:idx_sync_log_outcome"`
	Detail     string           `gorm:"type:text"`
	CreatedAt  time.Time        `gorm:"not null;index:idx_sync_log_created"`
}

// TableName returns the table name for GORM
func (SyncLogEntryModel) TableName() string {
	return "sync_log_entries"
}

// ToDomain converts the persistence model to a domain audit.Entry.
func (m *SyncLogEntryModel) ToDomain() *audit.Entry {
	return &audit.Entry{
		ID:         m.ID,
		Direction:  m.Direction,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Outcome:    m.Outcome,
		Detail:     m.Detail,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain audit.Entry.
func (m *SyncLogEntryModel) FromDomain(e *audit.Entry) {
	m.ID = e.ID
	m.Direction = e.Direction
	m.EntityType = e.EntityType
	m.EntityID = e.EntityID
	m.Outcome = e.Outcome
	m.Detail = e.Detail
	m.CreatedAt = e.CreatedAt
}

// SyncLogEntryModelFromDomain creates a new persistence model from a domain audit.Entry.
func SyncLogEntryModelFromDomain(e *audit.Entry) *SyncLogEntryModel {
	m := &SyncLogEntryModel{}
	m.FromDomain(e)
	return m
}
