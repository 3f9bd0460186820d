package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud-agent/internal/domain/entity"
)

const (
	errorCodeInvalidRequest = "invalid_request"
	errorCodeNotFound       = "not_found"
	errorCodeConflict       = "conflict"
	errorCodeProvider       = "provider_error"
	errorCodeInternal       = "internal_error"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

func writeMappedError(w http.ResponseWriter, err error) {
	status, code := mapError(err)
	writeError(w, status, code, err.Error())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiErrorResponse{
		Error: apiError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return invalidRequestError("request body is required")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return invalidRequestError(fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit))
		}
		if errors.Is(err, io.EOF) {
			return invalidRequestError("request body is required")
		}
		return invalidRequestError(fmt.Sprintf("invalid JSON body: %v", err))
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return invalidRequestError("request body must contain exactly one JSON object")
	}

	return nil
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest, errorCodeInvalidRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound, errorCodeNotFound
	case errors.Is(err, entity.ErrConflict):
		return http.StatusConflict, errorCodeConflict
	case errors.Is(err, entity.ErrProvider):
		return http.StatusBadGateway, errorCodeProvider
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorCodeProvider
	default:
		return http.StatusInternalServerError, errorCodeInternal
	}
}

func invalidRequestError(message string) error {
	return fmt.Errorf("%w: %s", entity.ErrInvalidInput, message)
}
