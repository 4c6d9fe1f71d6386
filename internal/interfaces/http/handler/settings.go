package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/shopbridge/backend/internal/domain/settings"
)

// wellKnownFlags are the boolean flags the settings API exposes. Other keys
// are rejected so typos cannot silently create dead flags.
var wellKnownFlags = map[string]bool{
	settings.KeyOrderImportEnabled:   true,
	settings.KeyInventorySyncEnabled: true,
	settings.KeyAutoPublishNoPhotos:  true,
}

// SettingsHandler handles orchestrator flag and auto-publish policy endpoints
type SettingsHandler struct {
	BaseHandler
	repo settings.Repository
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(repo settings.Repository) *SettingsHandler {
	return &SettingsHandler{repo: repo}
}

// RegisterRoutes registers settings routes on the given group
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/settings")
	group.GET("/flags", h.GetFlags)
	group.PUT("/flags", h.SetFlag)
	group.GET("/auto-publish", h.ListAutoPublish)
	group.PUT("/auto-publish/:type", h.SetAutoPublish)
}

// FlagsResponse carries the orchestrator flags keyed by setting name
type FlagsResponse struct {
	Flags map[string]bool `json:"flags"`
}

// GetFlags returns all well-known orchestrator flags. Unset flags read as
// false, matching how the scheduler treats them.
func (h *SettingsHandler) GetFlags(c *gin.Context) {
	flags := make(map[string]bool, len(wellKnownFlags))
	for key := range wellKnownFlags {
		value, err := h.repo.GetBool(c.Request.Context(), key, false)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		flags[key] = value
	}
	h.Success(c, FlagsResponse{Flags: flags})
}

// SetFlagRequest represents a request to write one orchestrator flag
type SetFlagRequest struct {
	Key   string `json:"key" binding:"required,max=100"`
	Value bool   `json:"value"`
}

// SetFlag writes one well-known orchestrator flag
func (h *SettingsHandler) SetFlag(c *gin.Context) {
	var req SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if !wellKnownFlags[req.Key] {
		h.BadRequest(c, "Unknown setting key: "+req.Key)
		return
	}

	if err := h.repo.SetBool(c.Request.Context(), req.Key, req.Value); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"key": req.Key, "value": req.Value})
}

// AutoPublishResponse is one per-product-type auto-publish policy
type AutoPublishResponse struct {
	ProductType string `json:"product_type"`
	Enabled     bool   `json:"enabled"`
}

// ListAutoPublish returns all per-product-type auto-publish policies
func (h *SettingsHandler) ListAutoPublish(c *gin.Context) {
	policies, err := h.repo.ListAutoPublish(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]AutoPublishResponse, 0, len(policies))
	for _, p := range policies {
		resp = append(resp, AutoPublishResponse{ProductType: p.ProductType, Enabled: p.Enabled})
	}
	h.Success(c, resp)
}

// SetAutoPublishRequest represents a request to set one product type's policy
type SetAutoPublishRequest struct {
	Enabled bool `json:"enabled"`
}

// SetAutoPublish writes the auto-publish policy for one product type
func (h *SettingsHandler) SetAutoPublish(c *gin.Context) {
	productType := c.Param("type")
	if productType == "" || len(productType) > 100 {
		h.BadRequest(c, "Invalid product type")
		return
	}

	var req SetAutoPublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	setting := &settings.AutoPublishSetting{
		ProductType: productType,
		Enabled:     req.Enabled,
	}
	if err := h.repo.SetAutoPublish(c.Request.Context(), setting); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AutoPublishResponse{ProductType: productType, Enabled: req.Enabled})
}
