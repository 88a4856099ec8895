// Package http provides the JSON API over the inventory services.
//
// This file implements a small builder for JSON responses and the mapping
// from service errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"jard/internal/core"
	applog "jard/internal/log"
	"jard/internal/remote"
	"jard/internal/report"
	"jard/internal/services"
)

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.payload = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	body, err := json.Marshal(b.payload)
	if err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(ErrorBody{Error: message})
}

// ValidationError creates a 422 response listing the offending fields.
func ValidationError(message string, fields map[string]string) *ResponseBuilder {
	return NewResponse().
		Status(http.StatusUnprocessableEntity).
		JSON(ErrorBody{Error: message, Fields: fields})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, report.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrOffline), errors.Is(err, remote.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrRemoteSync):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrSheetsDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError logs err and writes the matching error response. Server side
// failures are reported without their internal detail.
func ServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := applog.FromContext(r.Context())
	msg := err.Error()
	switch {
	case status >= 500 && status != http.StatusServiceUnavailable && status != http.StatusNotImplemented:
		logger.ErrorContext(r.Context(), "Request failed", applog.FieldError, err, applog.FieldStatusCode, status)
		if status == http.StatusInternalServerError {
			msg = "internal error"
			if errors.Is(err, services.ErrLocalWrite) {
				msg = "could not save locally"
			}
		}
	default:
		logger.WarnContext(r.Context(), "Request rejected", applog.FieldError, err, applog.FieldStatusCode, status)
	}
	ErrorResponse(status, msg).Write(w)
}
