package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopbridge/backend/internal/application/listings"
	"github.com/shopbridge/backend/internal/application/orders"
	"github.com/shopbridge/backend/internal/domain/audit"
)

// OrderImportService runs marketplace order import sweeps.
type OrderImportService interface {
	ImportOrders(ctx context.Context, opts orders.ImportOptions) (*orders.ImportResult, error)
}

// InventoryService reconciles marketplace listings against target stock.
type InventoryService interface {
	ReconcileInventory(ctx context.Context, sku string, targetQuantity int, opts listings.ReconcileOptions) (*listings.ReconcileResult, error)
	ReconcileAllActive(ctx context.Context, opts listings.ReconcileOptions) (*listings.BatchResult, error)
}

// SyncHandler exposes the order import and inventory reconciliation
// operations, plus the sync audit trail.
type SyncHandler struct {
	BaseHandler
	importer   OrderImportService
	reconciler InventoryService
	logs       audit.LogRepository
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(importer OrderImportService, reconciler InventoryService, logs audit.LogRepository) *SyncHandler {
	return &SyncHandler{
		importer:   importer,
		reconciler: reconciler,
		logs:       logs,
	}
}

// RegisterRoutes registers sync routes on the given group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	sync.POST("/orders/import", h.ImportOrders)
	sync.POST("/inventory/reconcile", h.ReconcileInventory)
	sync.POST("/inventory/reconcile-all", h.ReconcileAll)
	sync.GET("/logs", h.ListLogs)
}

// ImportOrdersRequest represents a request to run an order import sweep.
// Without confirm the sweep runs as a dry run regardless of dry_run.
type ImportOrdersRequest struct {
	CreatedAfter *time.Time `json:"created_after"`
	DryRun       bool       `json:"dry_run"`
	Confirm      bool       `json:"confirm"`
}

// ImportOrders runs one marketplace order import sweep
func (h *SyncHandler) ImportOrders(c *gin.Context) {
	var req ImportOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.importer.ImportOrders(c.Request.Context(), orders.ImportOptions{
		CreatedAfter: req.CreatedAfter,
		DryRun:       req.DryRun,
		Confirm:      req.Confirm,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReconcileInventoryRequest represents a request to reconcile one SKU
type ReconcileInventoryRequest struct {
	SKU      string `json:"sku" binding:"required,max=100"`
	Quantity int    `json:"quantity"`
	DryRun   bool   `json:"dry_run"`
}

// ReconcileInventory reconciles a single SKU toward a target quantity
func (h *SyncHandler) ReconcileInventory(c *gin.Context) {
	var req ReconcileInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reconciler.ReconcileInventory(c.Request.Context(), req.SKU, req.Quantity,
		listings.ReconcileOptions{DryRun: req.DryRun})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReconcileAllRequest represents a request to sweep all active mappings
type ReconcileAllRequest struct {
	DryRun bool `json:"dry_run"`
}

// ReconcileAll sweeps every active listing mapping
func (h *SyncHandler) ReconcileAll(c *gin.Context) {
	var req ReconcileAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reconciler.ReconcileAllActive(c.Request.Context(),
		listings.ReconcileOptions{DryRun: req.DryRun})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListLogsRequest represents sync log query parameters
type ListLogsRequest struct {
	Page       int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Direction  string `form:"direction" binding:"omitempty,oneof=a_to_b b_to_a"`
	EntityType string `form:"entity_type" binding:"omitempty,oneof=order inventory product"`
	EntityID   string `form:"entity_id" binding:"omitempty,max=100"`
	Outcome    string `form:"outcome" binding:"omitempty,oneof=success failed"`
}

// ListLogs returns the sync audit trail, newest first
func (h *SyncHandler) ListLogs(c *gin.Context) {
	var req ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := audit.Filter{
		EntityID: req.EntityID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Direction != "" {
		d := audit.Direction(req.Direction)
		filter.Direction = &d
	}
	if req.EntityType != "" {
		t := audit.EntityType(req.EntityType)
		filter.EntityType = &t
	}
	if req.Outcome != "" {
		o := audit.Outcome(req.Outcome)
		filter.Outcome = &o
	}

	entries, err := h.logs.Find(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.logs.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, req.Page, req.PageSize)
}
