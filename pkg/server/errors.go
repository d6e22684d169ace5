package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formset/pkg/formset"
)

const (
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeCSRFFailed         = "CSRF_FAILED"
	ErrCodeGroupNotFound      = "GROUP_NOT_FOUND"
	ErrCodeLimitReached       = "LIMIT_REACHED"
	ErrCodeLookupFailed       = "LOOKUP_FAILED"
	ErrCodeInvalidTemplate    = "INVALID_TEMPLATE"
	ErrCodeInvalidManagement  = "INVALID_MANAGEMENT_FORM"
)

// WriteError writes a JSON ErrorResponse carrying the request id.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code, message string, retryable bool, details map[string]any) {

	requestID, _ := r.Context().Value(contextKeyRequestID).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	respondJSON(w, statusCode, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// formsetError maps manager errors to a status code and error code.
func formsetError(err error) (int, string) {
	var lookup *formset.LookupError
	switch {
	case errors.Is(err, formset.ErrGroupNotFound):
		return http.StatusNotFound, ErrCodeGroupNotFound
	case errors.Is(err, formset.ErrLimitReached):
		return http.StatusConflict, ErrCodeLimitReached
	case errors.As(err, &lookup):
		return http.StatusUnprocessableEntity, ErrCodeLookupFailed
	case errors.Is(err, formset.ErrInvalidTemplate):
		return http.StatusUnprocessableEntity, ErrCodeInvalidTemplate
	case errors.Is(err, formset.ErrManagementForm):
		return http.StatusBadRequest, ErrCodeInvalidManagement
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// respondJSON encodes before writing headers so encoding failures still
// produce a clean 500.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		slog.Error("json encoding failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("response write failed", "error", err)
	}
}
