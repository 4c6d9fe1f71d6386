package models

import (
	"time"

	"github.com/shopbridge/backend/internal/domain/settings"
)

// SettingModel is the persistence model for named boolean flags. The key is
// the primary key; flags are few and read far more often than written.
type SettingModel struct {
	Key       string    `gorm:"type:varchar(100);primary_key"`
	Value     bool      `gorm:"not null;default:false"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}

// AutoPublishSettingModel is the persistence model for the per-product-type
// auto-publish policy.
type AutoPublishSettingModel struct {
	ProductType string    `gorm:"type:varchar(100);primary_key"`
	Enabled     bool      `gorm:"not null;default:false"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AutoPublishSettingModel) TableName() string {
	return "auto_publish_settings"
}

// ToDomain converts the persistence model to a domain settings.AutoPublishSetting.
func (m *AutoPublishSettingModel) ToDomain() *settings.AutoPublishSetting {
	return &settings.AutoPublishSetting{
		ProductType: m.ProductType,
		Enabled:     m.Enabled,
	}
}

// FromDomain populates the persistence model from a domain settings.AutoPublishSetting.
func (m *AutoPublishSettingModel) FromDomain(s *settings.AutoPublishSetting) {
	m.ProductType = s.ProductType
	m.Enabled = s.Enabled
	m.UpdatedAt = time.Now()
}
