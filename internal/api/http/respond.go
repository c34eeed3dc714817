package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/logger"
)

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the domain error taxonomy onto HTTP status codes. Anything
// outside the taxonomy is an opaque internal error.
func writeError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("Internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "INTERNAL",
			Code:    "INTERNAL_ERROR",
			Message: "an internal error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case domain.KindUnauthenticated:
		status = http.StatusUnauthorized
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindInvalidState:
		status = http.StatusUnprocessableEntity
	case domain.KindValidation:
		status = http.StatusBadRequest
	}

	writeJSON(w, status, errorResponse{
		Error:   de.Kind.String(),
		Code:    de.Code,
		Message: de.Message,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, domain.Validation("INVALID_BODY", "request body is not valid JSON"))
		return false
	}
	return true
}
