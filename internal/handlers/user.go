package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/models"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UserList(ctx context.Context) ([]models.UserWithRole, error)
	UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Generate(userID, role, email, name, phone string) (string, error)
}

type UserHandler struct {
	service UserService
	tokens  TokenIssuer
	log     *zap.Logger
}

func NewUserHandler(service UserService, tokens TokenIssuer, log *zap.Logger) *UserHandler {
	return &UserHandler{service: service, tokens: tokens, log: log}
}

func userProfile(u *models.User) models.Profile {
	return models.Profile{UserID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: models.RoleUser}
}

// Register handles POST /api/users and POST /api/user/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.service.Register(r.Context(), &req); err != nil {
		writeAppError(w, r, h.log, err, "Failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User added successfully"})
}

// Login handles POST /api/user/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to log in")
		return
	}

	token, err := h.tokens.Generate(user.ID.Hex(), models.RoleUser, user.Email, user.Name, user.Phone)
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to log in")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetUsers handles GET /api/users
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.UserList(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, userProfile(user))
}

// UpdateUser handles PUT /api/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeAppError(w, r, h.log, err, "Failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, userProfile(user))
}

// DeleteUser handles DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeAppError(w, r, h.log, err, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
