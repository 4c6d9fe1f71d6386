package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbridge/backend/internal/domain/settings"
	"github.com/shopbridge/backend/internal/interfaces/http/dto"
)

type memorySettingsRepository struct {
	flags    map[string]bool
	policies map[string]bool
}

func newMemorySettingsRepository() *memorySettingsRepository {
	return &memorySettingsRepository{
		flags:    make(map[string]bool),
		policies: make(map[string]bool),
	}
}

var _ settings.Repository = (*memorySettingsRepository)(nil)

func (r *memorySettingsRepository) GetBool(_ context.Context, key string, fallback bool) (bool, error) {
	if v, ok := r.flags[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (r *memorySettingsRepository) SetBool(_ context.Context, key string, value bool) error {
	r.flags[key] = value
	return nil
}

func (r *memorySettingsRepository) GetAutoPublish(_ context.Context, productType string) (*settings.AutoPublishSetting, error) {
	enabled, ok := r.policies[productType]
	if !ok {
		return nil, settings.ErrNotFound
	}
	return &settings.AutoPublishSetting{ProductType: productType, Enabled: enabled}, nil
}

func (r *memorySettingsRepository) SetAutoPublish(_ context.Context, setting *settings.AutoPublishSetting) error {
	r.policies[setting.ProductType] = setting.Enabled
	return nil
}

func (r *memorySettingsRepository) ListAutoPublish(_ context.Context) ([]settings.AutoPublishSetting, error) {
	types := make([]string, 0, len(r.policies))
	for t := range r.policies {
		types = append(types, t)
	}
	sort.Strings(types)
	out := make([]settings.AutoPublishSetting, 0, len(types))
	for _, t := range types {
		out = append(out, settings.AutoPublishSetting{ProductType: t, Enabled: r.policies[t]})
	}
	return out, nil
}

func newSettingsTestServer(repo settings.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewSettingsHandler(repo)
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestSettingsHandler_GetFlags_DefaultsToFalse(t *testing.T) {
	engine := newSettingsTestServer(newMemorySettingsRepository())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/settings/flags", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	flags := data["flags"].(map[string]interface{})
	assert.Equal(t, false, flags[settings.KeyOrderImportEnabled])
	assert.Equal(t, false, flags[settings.KeyInventorySyncEnabled])
	assert.Equal(t, false, flags[settings.KeyAutoPublishNoPhotos])
}

func TestSettingsHandler_SetFlag_RoundTrip(t *testing.T) {
	repo := newMemorySettingsRepository()
	engine := newSettingsTestServer(repo)

	w := putJSON(t, engine, "/api/v1/settings/flags", SetFlagRequest{
		Key:   settings.KeyOrderImportEnabled,
		Value: true,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, repo.flags[settings.KeyOrderImportEnabled])
}

func TestSettingsHandler_SetFlag_RejectsUnknownKey(t *testing.T) {
	engine := newSettingsTestServer(newMemorySettingsRepository())

	w := putJSON(t, engine, "/api/v1/settings/flags", SetFlagRequest{
		Key:   "sync.order_import_enabld",
		Value: true,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsHandler_AutoPublish_RoundTrip(t *testing.T) {
	repo := newMemorySettingsRepository()
	engine := newSettingsTestServer(repo)

	w := putJSON(t, engine, "/api/v1/settings/auto-publish/gadget", SetAutoPublishRequest{Enabled: true})
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/settings/auto-publish", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	policies := resp.Data.([]interface{})
	require.Len(t, policies, 1)
	policy := policies[0].(map[string]interface{})
	assert.Equal(t, "gadget", policy["product_type"])
	assert.Equal(t, true, policy["enabled"])
}
