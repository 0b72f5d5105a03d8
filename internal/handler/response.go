package handler

// RESPONSE HELPERS:
// Every success body is either an entity, a list, or an Ack:
//   {"status_code": 201, "transaction": "Successful"}
// Every error body has the same shape, whatever the status:
//   {"error": "not_found", "message": "task not found with id 7"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/task-manager/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Offending request field, when known
}

// Ack acknowledges a write. The created or changed entity is not echoed back.
type Ack struct {
	StatusCode  int    `json:"status_code"`
	Transaction string `json:"transaction"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must go out before the body; once Encode writes,
// later header changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeAck(w http.ResponseWriter, status int, transaction string) {
	writeJSON(w, status, Ack{StatusCode: status, Transaction: transaction})
}

// writeError maps a domain error to its HTTP status and sends it.
//
//	apperror.ErrValidation → 400
//	apperror.ErrNotFound   → 404
//	anything else          → 500, logged, details withheld
//
// errors.As walks the wrap chain, so a service error like
// fmt.Errorf("updating task: %w", apperror.NotFound(...)) still maps to 404
// and the client sees only the AppError's message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	// The raw error may carry SQL or file paths: log it, don't send it.
	logger.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
