package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopbridge/backend/internal/domain/draft"
)

// DraftModel is the persistence model for the draft.Draft entity. Image and
// tag lists and the original-content snapshot are stored as JSONB.
type DraftModel struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key"`
	ProductID     string       `gorm:"type:varchar(64);not null;index:idx_draft_product"`
	Title         *string      `gorm:"type:varchar(255)"`
	Description   *string      `gorm:"type:text"`
	ImagesJSON    string       `gorm:"type:jsonb;column:images"`
	TagsJSON      string       `gorm:"type:jsonb;column:tags"`
	OriginalJSON  string       `gorm:"type:jsonb;column:original"`
	Status        draft.Status `gorm:"type:varchar(20);not null;default:'pending';index:idx_draft_status"`
	AutoPublished bool         `gorm:"not null;default:false"`
	ReviewedBy    string       `gorm:"type:varchar(100)"`
	ReviewedAt    *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DraftModel) TableName() string {
	return "drafts"
}

// ToDomain converts the persistence model to a domain draft.Draft.
func (m *DraftModel) ToDomain() *draft.Draft {
	d := &draft.Draft{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Title:         m.Title,
		Description:   m.Description,
		Images:        decodeStringSlice(m.ImagesJSON),
		Tags:          decodeStringSlice(m.TagsJSON),
		Status:        m.Status,
		AutoPublished: m.AutoPublished,
		ReviewedBy:    m.ReviewedBy,
		ReviewedAt:    m.ReviewedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}

	if m.OriginalJSON != "" {
		var snapshot draft.Snapshot
		if err := json.Unmarshal([]byte(m.OriginalJSON), &snapshot); err == nil {
			d.Original = snapshot
		}
	}

	return d
}

// FromDomain populates the persistence model from a domain draft.Draft.
func (m *DraftModel) FromDomain(d *draft.Draft) {
	m.ID = d.ID
	m.ProductID = d.ProductID
	m.Title = d.Title
	m.Description = d.Description
	m.ImagesJSON = encodeStringSlice(d.Images)
	m.TagsJSON = encodeStringSlice(d.Tags)
	m.Status = d.Status
	m.AutoPublished = d.AutoPublished
	m.ReviewedBy = d.ReviewedBy
	m.ReviewedAt = d.ReviewedAt
	m.CreatedAt = d.CreatedAt
	m.UpdatedAt = d.UpdatedAt

	if jsonBytes, err := json.Marshal(d.Original); err == nil {
		m.OriginalJSON = string(jsonBytes)
	}
}

// DraftModelFromDomain creates a new persistence model from a domain draft.Draft.
func DraftModelFromDomain(d *draft.Draft) *DraftModel {
	m := &DraftModel{}
	m.FromDomain(d)
	return m
}

func encodeStringSlice(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	jsonBytes, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(jsonBytes)
}

func decodeStringSlice(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}
	return values
}
