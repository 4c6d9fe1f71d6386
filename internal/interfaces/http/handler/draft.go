package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopbridge/backend/internal/application/drafts"
	"github.com/shopbridge/backend/internal/domain/draft"
	"github.com/shopbridge/backend/internal/interfaces/http/dto"
)

// DraftService stages, reviews, and publishes content drafts.
type DraftService interface {
	CreateOrUpdateDraft(ctx context.Context, productID string, proposal draft.Proposal) (*drafts.CreateResult, error)
	GetDraft(ctx context.Context, draftID uuid.UUID) (*draft.Draft, error)
	ListDrafts(ctx context.Context, filter draft.Filter) (*drafts.ListResult, error)
	ApproveDraft(ctx context.Context, draftID uuid.UUID, opts drafts.ApproveOptions) (*drafts.ApproveResult, error)
	RejectDraft(ctx context.Context, draftID uuid.UUID, reviewer string) error
}

// DraftHandler handles draft staging and review API endpoints
type DraftHandler struct {
	BaseHandler
	service DraftService
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(service DraftService) *DraftHandler {
	return &DraftHandler{service: service}
}

// RegisterRoutes registers draft routes on the given group
func (h *DraftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/drafts")
	group.POST("", h.Stage)
	group.GET("", h.List)
	group.GET("/:id", h.GetByID)
	group.POST("/:id/approve", h.Approve)
	group.POST("/:id/reject", h.Reject)
}

// DraftResponse is the API representation of a draft
type DraftResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	Title         *string          `json:"title,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Images        []string         `json:"images,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	Original      *SnapshotPayload `json:"original,omitempty"`
	Status        string           `json:"status"`
	AutoPublished bool             `json:"auto_published"`
	ReviewedBy    string           `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func toDraftResponse(d *draft.Draft) DraftResponse {
	resp := DraftResponse{
		ID:            d.ID.String(),
		ProductID:     d.ProductID,
		Title:         d.Title,
		Description:   d.Description,
		Images:        d.Images,
		Tags:          d.Tags,
		Status:        string(d.Status),
		AutoPublished: d.AutoPublished,
		ReviewedBy:    d.ReviewedBy,
		ReviewedAt:    d.ReviewedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.Original.Title != "" || d.Original.Description != "" || len(d.Original.Images) > 0 || d.Original.ProductType != "" {
		resp.Original = &SnapshotPayload{
			Title:       d.Original.Title,
			Description: d.Original.Description,
			Images:      d.Original.Images,
			ProductType: d.Original.ProductType,
		}
	}
	return resp
}

// SnapshotPayload is the live storefront content observed by the proposer
type SnapshotPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	ProductType string   `json:"product_type" binding:"max=100"`
}

// StageDraftRequest represents a request to stage a content proposal.
// A pending draft for the same product absorbs the proposal field by field.
type StageDraftRequest struct {
	ProductID   string           `json:"product_id" binding:"required,max=64"`
	Title       *string          `json:"title" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	Images      []string         `json:"images" binding:"omitempty,dive,url"`
	Tags        []string         `json:"tags" binding:"omitempty,dive,max=50"`
	Snapshot    *SnapshotPayload `json:"snapshot"`
}

// Stage stages a content proposal as a draft, merging into the product's
// pending draft when one exists
func (h *DraftHandler) Stage(c *gin.Context) {
	var req StageDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	proposal := draft.Proposal{
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
		Tags:        req.Tags,
	}
	if req.Snapshot != nil {
		proposal.Snapshot = &draft.Snapshot{
			Title:       req.Snapshot.Title,
			Description: req.Snapshot.Description,
			Images:      req.Snapshot.Images,
			ProductType: req.Snapshot.ProductType,
		}
	}

	result, err := h.service.CreateOrUpdateDraft(c.Request.Context(), req.ProductID, proposal)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Merged {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// ListDraftsRequest represents draft list query parameters
type ListDraftsRequest struct {
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=pending approved partial rejected"`
}

// List returns drafts matching the filter, newest first
func (h *DraftHandler) List(c *gin.Context) {
	var req ListDraftsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := draft.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Status != "" {
		s := draft.Status(req.Status)
		filter.Status = &s
	}

	result, err := h.service.ListDrafts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	data := make([]DraftResponse, 0, len(result.Data))
	for i := range result.Data {
		data = append(data, toDraftResponse(&result.Data[i]))
	}
	h.SuccessWithMeta(c, data, result.Total, req.Page, req.PageSize)
}

// GetByID returns a single draft
func (h *DraftHandler) GetByID(c *gin.Context) {
	id, ok := h.bindDraftID(c)
	if !ok {
		return
	}

	d, err := h.service.GetDraft(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDraftResponse(d))
}

// ApproveDraftRequest represents a request to push a draft live
type ApproveDraftRequest struct {
	Photos      bool   `json:"photos"`
	Description bool   `json:"description"`
	Publish     bool   `json:"publish"`
	Reviewer    string `json:"reviewer" binding:"max=100"`
}

// Approve pushes the selected draft content live and records the reviewer
func (h *DraftHandler) Approve(c *gin.Context) {
	id, ok := h.bindDraftID(c)
	if !ok {
		return
	}

	var req ApproveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ApproveDraft(c.Request.Context(), id, drafts.ApproveOptions{
		Photos:      req.Photos,
		Description: req.Description,
		Publish:     req.Publish,
		Reviewer:    req.Reviewer,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RejectDraftRequest represents a request to discard a draft
type RejectDraftRequest struct {
	Reviewer string `json:"reviewer" binding:"max=100"`
}

// Reject discards a pending draft without touching the storefront
func (h *DraftHandler) Reject(c *gin.Context) {
	id, ok := h.bindDraftID(c)
	if !ok {
		return
	}

	var req RejectDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.service.RejectDraft(c.Request.Context(), id, req.Reviewer); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"draft_id": id, "status": draft.StatusRejected})
}

func (h *DraftHandler) bindDraftID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid draft ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid draft ID")
		return uuid.Nil, false
	}
	return id, true
}
