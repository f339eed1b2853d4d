package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/optaimi/pulse/internal/api/dto"
	"github.com/optaimi/pulse/internal/api/middleware"
	"github.com/optaimi/pulse/internal/domain/alert"
	"github.com/optaimi/pulse/internal/domain/metric"
	"github.com/optaimi/pulse/internal/pkg/errors"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/pkg/utils"
	"github.com/optaimi/pulse/internal/pkg/validator"
)

// AlertHandler handles alert rule requests
type AlertHandler struct {
	service   alert.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(service alert.Service, log *logger.Logger, val *validator.Validator) *AlertHandler {
	return &AlertHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// Create handles alert rule creation
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Not authenticated"))
		return
	}

	var req dto.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	rule := &alert.Rule{
		UserID:    userID,
		Kind:      alert.Kind(req.Type),
		Model:     req.Model,
		Threshold: req.Threshold,
		Window:    metric.Window(req.Window),
		Cadence:   alert.Cadence(req.Cadence),
		Active:    true,
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if _, err := h.service.Create(r.Context(), rule); err != nil {
		writeServiceError(w, err, "Failed to create alert")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, rule)
}

// List handles alert rule listing
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Not authenticated"))
		return
	}

	filter := alert.Filter{
		Kind:       alert.Kind(r.URL.Query().Get("type")),
		Model:      r.URL.Query().Get("model"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}

	rules, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, err, "Failed to list alerts")
		return
	}
	if rules == nil {
		rules = []*alert.Rule{}
	}

	utils.WriteSuccess(w, http.StatusOK, rules)
}

// Get handles a single alert rule fetch
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Not authenticated"))
		return
	}

	id, err := alertID(r)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid alert ID"))
		return
	}

	rule, err := h.service.GetByID(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err, "Failed to get alert")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, rule)
}

// Update handles partial alert rule updates
func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Not authenticated"))
		return
	}

	id, err := alertID(r)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid alert ID"))
		return
	}

	var updates dto.UpdateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	rule, err := h.service.Update(r.Context(), userID, id, updates)
	if err != nil {
		writeServiceError(w, err, "Failed to update alert")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, rule)
}

// Delete handles alert rule deletion
func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Not authenticated"))
		return
	}

	id, err := alertID(r)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid alert ID"))
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err, "Failed to delete alert")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Test handles ad-hoc rule evaluation without dispatch or audit
func (h *AlertHandler) Test(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		utils.WriteError(w, errors.Unauthorized("Not authenticated"))
		return
	}

	var req dto.TestAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	result, err := h.service.Test(r.Context(), alert.Draft{
		Kind:      alert.Kind(req.Type),
		Model:     req.Model,
		Threshold: req.Threshold,
		Window:    metric.Window(req.Window),
	})
	if err != nil {
		writeServiceError(w, err, "Failed to evaluate alert")
		return
	}

	resp := dto.TestAlertResponse{Triggered: result != nil}
	if result != nil {
		resp.Evaluation = result
	}

	utils.WriteSuccess(w, http.StatusOK, resp)
}

func alertID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
