package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/omsapp/tag-server/internal/errors"
	"github.com/omsapp/tag-server/internal/store"
)

// APIError renders a failure in the response envelope.
// It implements huma.StatusError.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status   int
	Status   string `json:"status" enum:"ERROR" doc:"Always ERROR"`
	Title    string `json:"title" doc:"HTTP status text"`
	Message  string `json:"message" doc:"Human-readable error message"`
	Code     string `json:"code" doc:"Machine-readable error code"`
	Response any    `json:"response,omitempty" doc:"Error details, such as the validation field map"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

func newAPIError(status int, code domainerrors.Code, message string, details any) *APIError {
	return &APIError{
		status:   status,
		Status:   StatusError,
		Title:    http.StatusText(status),
		Message:  message,
		Code:     string(code),
		Response: details,
	}
}

// RegisterErrorHandler configures huma to render domain errors in the
// envelope. Schema validation failures from huma report as 400.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return newAPIError(domainErr.HTTPStatus(), domainErr.Code, domainErr.Message, domainErr.Details)
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) && storeErr.HTTPCode() == http.StatusNotFound {
				return newAPIError(http.StatusNotFound, domainerrors.CodeNotFound, storeErr.Message, nil)
			}
		}

		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		var details []*huma.ErrorDetail
		for _, err := range errs {
			var detailer huma.ErrorDetailer
			if errors.As(err, &detailer) {
				details = append(details, detailer.ErrorDetail())
			}
		}

		var response any
		if len(details) > 0 {
			response = details
		}
		return newAPIError(status, domainerrors.CodeForStatus(status), message, response)
	}
}

// fail converts a service error into a huma.StatusError and logs
// server-side failures.
func (s *Server) fail(ctx context.Context, err error) error {
	var se huma.StatusError
	if !errors.As(err, &se) {
		se = huma.NewError(http.StatusInternalServerError, "Internal server error", err)
	}

	if se.GetStatus() >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"request_id", middleware.GetReqID(ctx),
			"error", err,
		)
	}
	return se
}
