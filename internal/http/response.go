package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
)

// listResponse is the envelope returned by the list endpoint.
type listResponse struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message"`
	Total        int64              `json:"total"`
	Page         int                `json:"page"`
	Limit        int                `json:"limit"`
	Transactions []core.Transaction `json:"transactions"`
}

// itemResponse is the envelope returned by create and update.
type itemResponse struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	Transaction core.Transaction `json:"transaction"`
}

// errorResponse is the envelope for every failure, with per-field
// details attached for validation errors.
type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []core.FieldError `json:"errors,omitempty"`
}

// statusResponse acknowledges operations that return no entity.
type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

func writeValidationError(w http.ResponseWriter, verr *core.ValidationError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Success: false,
		Message: "invalid transaction data",
		Errors:  verr.Fields,
	})
}
