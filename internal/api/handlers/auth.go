package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/optaimi/pulse/internal/api/dto"
	"github.com/optaimi/pulse/internal/api/middleware"
	"github.com/optaimi/pulse/internal/auth"
	"github.com/optaimi/pulse/internal/config"
	"github.com/optaimi/pulse/internal/domain/user"
	"github.com/optaimi/pulse/internal/pkg/errors"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/pkg/utils"
	"github.com/optaimi/pulse/internal/pkg/validator"
	"github.com/optaimi/pulse/internal/services"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	users     *services.UserService
	config    *config.Config
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *services.UserService, cfg *config.Config, log *logger.Logger, val *validator.Validator) *AuthHandler {
	return &AuthHandler{
		users:     users,
		config:    cfg,
		logger:    log,
		validator: val,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	u, tokens, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "Failed to register user")
		return
	}

	h.setAuthCookies(w, tokens)
	utils.WriteSuccess(w, http.StatusCreated, authResponse(u, tokens))
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	u, tokens, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"email": req.Email,
		}).Warn("Authentication failed")
		writeServiceError(w, err, "Failed to log in")
		return
	}

	h.setAuthCookies(w, tokens)
	utils.WriteSuccess(w, http.StatusOK, authResponse(u, tokens))
}

// Logout clears the auth cookies
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			HttpOnly: true,
			Path:     "/",
			MaxAge:   -1,
		})
	}
	utils.WriteSuccess(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Not authenticated"))
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to load user")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, tokens auth.TokenPair) {
	secure := h.config.Server.Environment == "production"
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    tokens.AccessToken,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(h.config.Auth.AccessTokenExpiry.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    tokens.RefreshToken,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(h.config.Auth.RefreshTokenExpiry.Seconds()),
	})
}

func authResponse(u *user.User, tokens auth.TokenPair) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User: dto.UserDTO{
			ID:        u.ID,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
		},
	}
}
