package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/apperr"
	"github.com/crowdfund/crowdfund-gobackend/internal/logger"
	"github.com/crowdfund/crowdfund-gobackend/internal/middleware"
	"github.com/crowdfund/crowdfund-gobackend/internal/models"
)

type PaymentDetailsService interface {
	ListUserPayments(ctx context.Context, userID string) (*models.PaymentDetails, error)
}

type PaymentDetailsHandler struct {
	service PaymentDetailsService
	log     *zap.Logger
}

func NewPaymentDetailsHandler(service PaymentDetailsService, log *zap.Logger) *PaymentDetailsHandler {
	return &PaymentDetailsHandler{service: service, log: log}
}

// GetUserPaymentDetails handles GET /api/user/payment-details/{user_id}.
// Users can only read their own record.
func (h *PaymentDetailsHandler) GetUserPaymentDetails(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if caller, ok := middleware.UserID(r.Context()); !ok || caller != userID {
		logger.For(r.Context(), h.log).Warn("Payment details requested for another user",
			zap.String("user_id", userID), zap.String("caller", caller))
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	details, err := h.service.ListUserPayments(r.Context(), userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			writeError(w, http.StatusNotFound, apperr.Message(err, "Payment details not found"))
			return
		}
		logger.For(r.Context(), h.log).Error("Failed to fetch payment details", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch payment details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}
