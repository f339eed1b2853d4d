package utils

import (
	"encoding/json"
	"net/http"

	"github.com/optaimi/pulse/internal/pkg/errors"
)

// SuccessResponse is the envelope for every successful API reply. Data is
// omitted for replies that only need an acknowledgement.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the envelope for every failed API reply
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code alongside the message
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON encodes data as the response body with the given status
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes data in the success envelope
func WriteSuccess(w http.ResponseWriter, status int, data interface{}) error {
	return WriteJSON(w, status, SuccessResponse{Success: true, Data: data})
}

// WriteSuccessWithMessage writes data in the success envelope with a
// human-readable message
func WriteSuccessWithMessage(w http.ResponseWriter, status int, message string, data interface{}) error {
	return WriteJSON(w, status, SuccessResponse{Success: true, Message: message, Data: data})
}

// WriteError writes an AppError in the error envelope, using the error's
// own HTTP status
func WriteError(w http.ResponseWriter, err *errors.AppError) error {
	return WriteErrorDetail(w, err.StatusCode, ErrorDetail{
		Code:    err.Code,
		Message: err.Message,
		Details: err.Details,
	})
}

// WriteErrorMessage writes a bare code and message in the error envelope
func WriteErrorMessage(w http.ResponseWriter, status int, code, message string) error {
	return WriteErrorDetail(w, status, ErrorDetail{Code: code, Message: message})
}

// WriteErrorDetail writes a fully-formed error detail in the error envelope
func WriteErrorDetail(w http.ResponseWriter, status int, detail ErrorDetail) error {
	return WriteJSON(w, status, ErrorResponse{Success: false, Error: detail})
}
