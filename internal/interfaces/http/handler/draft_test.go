package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbridge/backend/internal/application/drafts"
	"github.com/shopbridge/backend/internal/domain/draft"
	"github.com/shopbridge/backend/internal/interfaces/http/dto"
)

type fakeDraftService struct {
	lastProductID string
	lastProposal  draft.Proposal
	lastApprove   drafts.ApproveOptions
	lastReviewer  string

	createResult  *drafts.CreateResult
	getResult     *draft.Draft
	listResult    *drafts.ListResult
	approveResult *drafts.ApproveResult
	err           error
}

func (f *fakeDraftService) CreateOrUpdateDraft(_ context.Context, productID string, proposal draft.Proposal) (*drafts.CreateResult, error) {
	f.lastProductID = productID
	f.lastProposal = proposal
	if f.err != nil {
		return nil, f.err
	}
	return f.createResult, nil
}

func (f *fakeDraftService) GetDraft(_ context.Context, _ uuid.UUID) (*draft.Draft, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.getResult, nil
}

func (f *fakeDraftService) ListDrafts(_ context.Context, _ draft.Filter) (*drafts.ListResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listResult, nil
}

func (f *fakeDraftService) ApproveDraft(_ context.Context, _ uuid.UUID, opts drafts.ApproveOptions) (*drafts.ApproveResult, error) {
	f.lastApprove = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.approveResult, nil
}

func (f *fakeDraftService) RejectDraft(_ context.Context, _ uuid.UUID, reviewer string) error {
	f.lastReviewer = reviewer
	return f.err
}

func newDraftTestServer(service *fakeDraftService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewDraftHandler(service)
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestDraftHandler_Stage_CreatesNewDraft(t *testing.T) {
	service := &fakeDraftService{
		createResult: &drafts.CreateResult{DraftID: uuid.New(), Merged: false},
	}
	engine := newDraftTestServer(service)

	title := "Vintage Camera"
	w := postJSON(t, engine, "/api/v1/drafts", StageDraftRequest{
		ProductID: "prod-1",
		Title:     &title,
		Images:    []string{"https://cdn.example.com/1.jpg"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "prod-1", service.lastProductID)
	require.NotNil(t, service.lastProposal.Title)
	assert.Equal(t, "Vintage Camera", *service.lastProposal.Title)
}

func TestDraftHandler_Stage_MergesIntoPending(t *testing.T) {
	service := &fakeDraftService{
		createResult: &drafts.CreateResult{DraftID: uuid.New(), Merged: true},
	}
	engine := newDraftTestServer(service)

	w := postJSON(t, engine, "/api/v1/drafts", StageDraftRequest{
		ProductID: "prod-1",
		Tags:      []string{"camera"},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["merged"])
}

func TestDraftHandler_Stage_CarriesSnapshot(t *testing.T) {
	service := &fakeDraftService{
		createResult: &drafts.CreateResult{DraftID: uuid.New()},
	}
	engine := newDraftTestServer(service)

	w := postJSON(t, engine, "/api/v1/drafts", StageDraftRequest{
		ProductID: "prod-2",
		Snapshot: &SnapshotPayload{
			Description: "existing copy",
			ProductType: "gadget",
		},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, service.lastProposal.Snapshot)
	assert.Equal(t, "gadget", service.lastProposal.Snapshot.ProductType)
	assert.True(t, service.lastProposal.Snapshot.HasExistingContent())
}

func TestDraftHandler_Stage_RequiresProductID(t *testing.T) {
	engine := newDraftTestServer(&fakeDraftService{})

	w := postJSON(t, engine, "/api/v1/drafts", StageDraftRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDraftHandler_GetByID_NotFound(t *testing.T) {
	service := &fakeDraftService{err: draft.ErrNotFound}
	engine := newDraftTestServer(service)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/drafts/"+uuid.NewString(), nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestDraftHandler_GetByID_InvalidID(t *testing.T) {
	engine := newDraftTestServer(&fakeDraftService{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/drafts/not-a-uuid", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDraftHandler_List_FiltersByStatus(t *testing.T) {
	service := &fakeDraftService{
		listResult: &drafts.ListResult{
			Data:  []draft.Draft{{ProductID: "prod-1", Status: draft.StatusPending}},
			Total: 1,
		},
	}
	engine := newDraftTestServer(service)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/drafts?status=pending", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestDraftHandler_List_RejectsUnknownStatus(t *testing.T) {
	engine := newDraftTestServer(&fakeDraftService{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/drafts?status=draft", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDraftHandler_Approve(t *testing.T) {
	id := uuid.New()
	service := &fakeDraftService{
		approveResult: &drafts.ApproveResult{
			DraftID:   id,
			Success:   true,
			Status:    draft.StatusApproved,
			Published: true,
		},
	}
	engine := newDraftTestServer(service)

	w := postJSON(t, engine, "/api/v1/drafts/"+id.String()+"/approve", ApproveDraftRequest{
		Photos:      true,
		Description: true,
		Publish:     true,
		Reviewer:    "ops@example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, service.lastApprove.Photos)
	assert.True(t, service.lastApprove.Publish)
	assert.Equal(t, "ops@example.com", service.lastApprove.Reviewer)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, string(draft.StatusApproved), data["status"])
}

func TestDraftHandler_Approve_TerminalDraft(t *testing.T) {
	service := &fakeDraftService{err: draft.ErrTerminalState}
	engine := newDraftTestServer(service)

	w := postJSON(t, engine, "/api/v1/drafts/"+uuid.NewString()+"/approve", ApproveDraftRequest{})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
}

func TestDraftHandler_Reject(t *testing.T) {
	service := &fakeDraftService{}
	engine := newDraftTestServer(service)

	w := postJSON(t, engine, "/api/v1/drafts/"+uuid.NewString()+"/reject", RejectDraftRequest{
		Reviewer: "ops@example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops@example.com", service.lastReviewer)
}
