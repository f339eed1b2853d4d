package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/optaimi/pulse/internal/pkg/errors"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/pkg/utils"
	"github.com/optaimi/pulse/internal/scheduler"
)

// SchedulerHandler exposes the evaluation run trigger for external cron
type SchedulerHandler struct {
	runner    *scheduler.Runner
	cronToken string
	logger    *logger.Logger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(runner *scheduler.Runner, cronToken string, log *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{
		runner:    runner,
		cronToken: cronToken,
		logger:    log,
	}
}

// Run executes one alert evaluation pass. The caller must present the
// configured cron token; with no token configured the endpoint is disabled.
func (h *SchedulerHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.cronToken == "" {
		utils.WriteError(w, errors.Forbidden("Scheduler endpoint is not configured"))
		return
	}

	token := r.Header.Get("X-Cron-Token")
	if token == "" {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.cronToken)) != 1 {
		h.logger.Warn("Scheduler run rejected: bad cron token")
		utils.WriteError(w, errors.Unauthorized("Invalid cron token"))
		return
	}

	sum, err := h.runner.Run(r.Context())
	if err != nil {
		writeServiceError(w, err, "Evaluation run failed")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, sum)
}
