package handlers

import (
	"net/http"

	"github.com/optaimi/pulse/internal/pkg/errors"
	"github.com/optaimi/pulse/internal/pkg/utils"
)

// writeServiceError maps a service error onto the response, preserving the
// status of AppErrors and hiding everything else behind a 500
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.Internal(fallback, err))
}
