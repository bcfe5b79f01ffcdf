package handlers

import (
	"log/slog"
	"net/http"

	"github.com/BradenHooton/dancingpony/internal/auth"
	pkghttp "github.com/BradenHooton/dancingpony/pkg/http"
)

// AuthHandler exchanges Basic credentials for a bearer token
type AuthHandler struct {
	guard  auth.CredentialAuthenticator
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(guard auth.CredentialAuthenticator, tokens *auth.TokenManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		guard:  guard,
		tokens: tokens,
		logger: logger,
	}
}

// TokenResponse is returned by POST /auth/token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Token issues an access token. The credentials pass through the login
// guard, so failed attempts here count toward the lockout.
//
// @Summary Issue access token
// @Security BasicAuth
// @Produce json
// @Success 200 {object} TokenResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 403 {object} pkghttp.ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.BasicLogin(w, r, h.guard, h.logger)
	if !ok {
		return
	}

	token, err := h.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		h.logger.Error("failed to issue access token", slog.String("user_id", user.ID), slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.tokens.AccessTokenExpiry().Seconds()),
	})
}
