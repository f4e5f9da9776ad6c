package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/apperr"
	"github.com/crowdfund/crowdfund-gobackend/internal/logger"
	"github.com/crowdfund/crowdfund-gobackend/internal/models"
)

type DonationService interface {
	CreateDonation(ctx context.Context, req *models.DonationRequest) (*models.Donation, error)
	CancelDonation(ctx context.Context, id string, overrides map[string]interface{}) (*models.Donation, error)
	DeleteDonation(ctx context.Context, id string) (*models.Donation, error)
	ListCampaignDonations(ctx context.Context, campaignID string) ([]models.Donation, error)
	ListUserDonations(ctx context.Context, userID string) ([]models.UserDonation, error)
	ListDonations(ctx context.Context) ([]models.Donation, error)
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
}

type DonationHandler struct {
	service DonationService
	log     *zap.Logger
}

func NewDonationHandler(service DonationService, log *zap.Logger) *DonationHandler {
	return &DonationHandler{service: service, log: log}
}

// donationStatus narrows apperr.Status for the donation routes: a missing
// record is 404 and every other failure is 500.
func donationStatus(err error) int {
	if status := apperr.Status(err); status == http.StatusNotFound {
		return status
	}
	return http.StatusInternalServerError
}

// fail writes the error response. The service has already logged the cause.
func (h *DonationHandler) fail(w http.ResponseWriter, err error, fallback string) {
	writeError(w, donationStatus(err), apperr.Message(err, fallback))
}

// CreateDonation handles POST /api/campaigns/{id}/donation
func (h *DonationHandler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var req models.DonationRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.For(r.Context(), h.log).Warn("Invalid donation body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CampaignID == "" {
		req.CampaignID = mux.Vars(r)["id"]
	}

	donation, err := h.service.CreateDonation(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create donation")
		return
	}
	writeJSON(w, http.StatusOK, donation)
}

// CancelDonation handles PUT /api/user/donations/{donation_id}/cancel
func (h *DonationHandler) CancelDonation(w http.ResponseWriter, r *http.Request) {
	var overrides map[string]interface{}
	if err := decodeJSON(r, &overrides); err != nil && !errors.Is(err, errEmptyBody) {
		logger.For(r.Context(), h.log).Warn("Invalid cancel body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	donation, err := h.service.CancelDonation(r.Context(), mux.Vars(r)["donation_id"], overrides)
	if err != nil {
		h.fail(w, err, "Failed to update donation")
		return
	}
	writeJSON(w, http.StatusOK, donation)
}

// DeleteDonation handles DELETE /api/donations/{id}
func (h *DonationHandler) DeleteDonation(w http.ResponseWriter, r *http.Request) {
	donation, err := h.service.DeleteDonation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err, "Failed to delete donation")
		return
	}
	writeJSON(w, http.StatusOK, donation)
}

// GetCampaignDonations handles GET /api/campaigns/{id}/donations
func (h *DonationHandler) GetCampaignDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.ListCampaignDonations(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err, "Failed to fetch donations")
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

// GetUserDonations handles GET /api/user/donations/{user_id}
func (h *DonationHandler) GetUserDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.ListUserDonations(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		h.fail(w, err, "Failed to fetch donations")
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

// GetDonations handles GET /api/donations
func (h *DonationHandler) GetDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.ListDonations(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to fetch donations")
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

// GetDonation handles GET /api/donations/{id}
func (h *DonationHandler) GetDonation(w http.ResponseWriter, r *http.Request) {
	donation, err := h.service.GetDonation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err, "Failed to fetch donation")
		return
	}
	writeJSON(w, http.StatusOK, donation)
}
