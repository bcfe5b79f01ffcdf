package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/dancingpony/internal/auth"
	"github.com/BradenHooton/dancingpony/internal/models"
	pkgauth "github.com/BradenHooton/dancingpony/pkg/auth"
	pkghttp "github.com/BradenHooton/dancingpony/pkg/http"
	pkglogger "github.com/BradenHooton/dancingpony/pkg/logger"
)

// UserService defines the interface for user business logic
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
}

// UserHandler handles registration and the current-user endpoint
type UserHandler struct {
	service  UserService
	audit    *pkglogger.AuditLogger
	ipConfig *pkghttp.IPConfig
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, audit *pkglogger.AuditLogger, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service:  service,
		audit:    audit,
		ipConfig: ipConfig,
		logger:   logger,
	}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	CreatedAt   string `json:"created_at"`
}

func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Register creates an account
//
// @Summary Register a new user
// @Accept json
// @Param request body RegisterRequest true "Registration request"
// @Produce json
// @Success 201 {object} UserResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 409 {object} pkghttp.ErrorResponse
// @Router /register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	req.Email = auth.NormalizeIdentity(req.Email)
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteValidationError(w, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		var pve *pkgauth.PasswordValidationError
		switch {
		case errors.As(err, &pve):
			pkghttp.WriteValidationError(w, pve.Error())
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A user with this email already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid registration request")
		default:
			h.logger.Error("registration failed", slog.Any("error", err))
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	if h.audit != nil {
		h.audit.LogAccountAction("user_registered", user.ID, pkghttp.ExtractClientIP(r, h.ipConfig), nil)
	}
	pkghttp.WriteJSON(w, http.StatusCreated, userModelToResponse(user))
}

// Me returns the authenticated user
//
// @Summary Current user
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}
