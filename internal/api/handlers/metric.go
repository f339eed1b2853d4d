package handlers

import (
	"net/http"

	"github.com/optaimi/pulse/internal/api/middleware"
	"github.com/optaimi/pulse/internal/domain/metric"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/pkg/utils"
	"github.com/optaimi/pulse/internal/services"
)

// MetricHandler handles metric history and probe requests
type MetricHandler struct {
	service *services.MetricService
	logger  *logger.Logger
}

// NewMetricHandler creates a new metric handler
func NewMetricHandler(service *services.MetricService, log *logger.Logger) *MetricHandler {
	return &MetricHandler{
		service: service,
		logger:  log,
	}
}

// History returns recent samples, optionally filtered by model, with costs
// in the caller's display currency
func (h *MetricHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	model := r.URL.Query().Get("model")
	window := metric.Window(r.URL.Query().Get("range"))

	history, err := h.service.History(r.Context(), userID, model, window)
	if err != nil {
		writeServiceError(w, err, "Failed to load history")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, history)
}

// Models lists the model identifiers with recent samples
func (h *MetricHandler) Models(w http.ResponseWriter, r *http.Request) {
	models, err := h.service.Models(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to list models")
		return
	}
	if models == nil {
		models = []string{}
	}

	utils.WriteSuccess(w, http.StatusOK, models)
}

// RunTest runs one probe pass against every configured provider and returns
// the fresh samples
func (h *MetricHandler) RunTest(w http.ResponseWriter, r *http.Request) {
	samples, err := h.service.RunProbes(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to run probes")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, samples)
}
