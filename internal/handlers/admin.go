package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/models"
)

type AdminService interface {
	CreateAdmin(ctx context.Context, req *models.AdminRequest) (*models.Admin, error)
	AdminList(ctx context.Context) ([]models.Admin, error)
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	UpdateAdmin(ctx context.Context, id string, req *models.AdminRequest) (*models.Admin, error)
	Login(ctx context.Context, email, password string) (*models.Admin, error)
}

type AdminHandler struct {
	service AdminService
	tokens  TokenIssuer
	log     *zap.Logger
}

func NewAdminHandler(service AdminService, tokens TokenIssuer, log *zap.Logger) *AdminHandler {
	return &AdminHandler{service: service, tokens: tokens, log: log}
}

// GetAdmins handles GET /api/admin
func (h *AdminHandler) GetAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.AdminList(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to fetch admins")
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

// AddAdmin handles POST /api/admin
func (h *AdminHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.service.CreateAdmin(r.Context(), &req)
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to create admin")
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

// GetAdmin handles GET /api/admin/{id}
func (h *AdminHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.service.GetAdmin(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to fetch admin")
		return
	}
	writeJSON(w, http.StatusOK, models.Profile{
		UserID: admin.ID,
		Name:   admin.Name,
		Email:  admin.Email,
		Role:   models.RoleAdmin,
	})
}

// UpdateAdmin handles PUT /api/admin/{id}
func (h *AdminHandler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.service.UpdateAdmin(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to update admin")
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to log in")
		return
	}
	token, err := h.tokens.Generate(admin.ID.Hex(), models.RoleAdmin, admin.Email, admin.Name, "")
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to log in")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
