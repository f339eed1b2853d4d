package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/optaimi/pulse/internal/api/dto"
	"github.com/optaimi/pulse/internal/api/middleware"
	"github.com/optaimi/pulse/internal/domain/settings"
	"github.com/optaimi/pulse/internal/pkg/errors"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/pkg/utils"
	"github.com/optaimi/pulse/internal/pkg/validator"
	"github.com/optaimi/pulse/internal/services"
)

// SettingsHandler handles user settings requests
type SettingsHandler struct {
	service   *services.SettingsService
	logger    *logger.Logger
	validator *validator.Validator
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(service *services.SettingsService, log *logger.Logger, val *validator.Validator) *SettingsHandler {
	return &SettingsHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// Get returns the caller's settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Not authenticated"))
		return
	}

	stored, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to load settings")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, stored)
}

// Update stores the caller's settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Not authenticated"))
		return
	}

	var req dto.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	updated := &settings.Settings{Currency: req.Currency}
	if req.QuietHours != nil {
		updated.QuietHours = &settings.QuietHours{
			Start: req.QuietHours.Start,
			End:   req.QuietHours.End,
		}
	}

	stored, err := h.service.Update(r.Context(), userID, updated)
	if err != nil {
		writeServiceError(w, err, "Failed to save settings")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, stored)
}
