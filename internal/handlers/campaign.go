package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/models"
)

type CampaignService interface {
	CreateCampaign(ctx context.Context, req *models.CampaignRequest) (*models.Campaign, error)
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	ListCampaignsWithOwners(ctx context.Context) ([]models.CampaignWithOwner, error)
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	ListUserCampaigns(ctx context.Context, userID string) ([]models.Campaign, error)
	UpdateCampaign(ctx context.Context, id string, req *models.CampaignRequest) (*models.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	ListStatuses(ctx context.Context) ([]models.CampaignStatus, error)
	ListCategories(ctx context.Context) ([]models.CampaignCategory, error)
}

// CampaignHandler handles HTTP requests for campaigns and their lookups
type CampaignHandler struct {
	service CampaignService
	log     *zap.Logger
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(service CampaignService, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{service: service, log: log}
}

// CreateCampaign handles POST /api/campaigns
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req models.CampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := h.service.CreateCampaign(r.Context(), &req)
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to create campaign")
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

// GetCampaigns handles GET /api/campaigns
func (h *CampaignHandler) GetCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.ListCampaigns(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to fetch campaigns")
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// GetCampaignsByUsers handles GET /api/campaigns-by-users
func (h *CampaignHandler) GetCampaignsByUsers(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.ListCampaignsWithOwners(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to fetch campaigns")
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// GetCampaign handles GET /api/campaigns/{id} and
// GET /api/campaigns/{id}/donation/{donation_id}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.service.GetCampaign(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to fetch campaign")
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// GetUserCampaigns handles GET /api/user/{id}/campaigns
func (h *CampaignHandler) GetUserCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.ListUserCampaigns(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to fetch campaigns")
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// UpdateCampaign handles PUT /api/campaigns/{id}
func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req models.CampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := h.service.UpdateCampaign(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to update campaign")
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// DeleteCampaign handles DELETE /api/campaigns/{id}
func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCampaign(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeAppError(w, r, h.log, err, "Failed to delete campaign")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Campaign deleted successfully"})
}

// GetStatuses handles GET /api/campaign-statuses
func (h *CampaignHandler) GetStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.service.ListStatuses(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to fetch campaign statuses")
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

// GetCategories handles GET /api/campaign-categories
func (h *CampaignHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to fetch campaign categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
