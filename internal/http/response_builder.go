// Package http provides the JSON API server and its handlers.
//
// This file implements a small fluent builder for JSON responses and the
// mapping from domain errors to HTTP status codes.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"familybudget/internal/amqp"
	"familybudget/internal/core"
	"familybudget/internal/export"
	"familybudget/internal/gateway"
	"familybudget/internal/report"
	"familybudget/internal/services"
)

// JSONResponseBuilder provides a fluent API for building responses.
type JSONResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
	err        error
}

// errorBody is the payload of every non-2xx JSON response.
type errorBody struct {
	Error string `json:"error"`
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the response body.
func (b *JSONResponseBuilder) JSON(v interface{}) *JSONResponseBuilder {
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body, b.err = json.Marshal(v)
	return b
}

// Attachment sets a downloadable body.
func (b *JSONResponseBuilder) Attachment(name, contentType string, data []byte) *JSONResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.headers["Content-Disposition"] = `attachment; filename="` + name + `"`
	b.headers["Content-Length"] = strconv.Itoa(len(data))
	b.body = data
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		b = ErrorResponse(http.StatusInternalServerError, "failed to encode response")
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).JSON(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError creates a 405 response listing the allowed methods.
func MethodNotAllowedError(allowedMethods, message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, message).Header("Allow", allowedMethods)
}

var validationErrors = []error{
	core.ErrInvalidDay,
	core.ErrInvalidMonth,
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrNegativeAmount,
	core.ErrEmptyTitle,
	core.ErrTitleTooLong,
	core.ErrUnknownCategory,
	core.ErrInvalidThreshold,
	core.ErrInvalidMonthKey,
}

var badRequestErrors = []error{
	errBadRequest,
	core.ErrEmptyOwner,
	report.ErrInvalidPeriod,
	export.ErrUnknownFormat,
	export.ErrUnknownSheets,
}

// statusFor maps an error returned by the services to an HTTP status.
func statusFor(err error) int {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrDuplicateGoal):
		return http.StatusConflict
	case errors.Is(err, gateway.ErrReadOnly):
		return http.StatusMethodNotAllowed
	case errors.Is(err, services.ErrAsyncUnavailable), errors.Is(err, amqp.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// ErrorFor builds the error response for err. Store failures are reported
// without their underlying detail.
func ErrorFor(err error) *JSONResponseBuilder {
	status := statusFor(err)
	switch status {
	case http.StatusBadGateway:
		return ErrorResponse(status, "backing store unavailable")
	case http.StatusGatewayTimeout:
		return ErrorResponse(status, "backing store timed out")
	case http.StatusMethodNotAllowed:
		return MethodNotAllowedError(http.MethodGet, err.Error())
	default:
		return ErrorResponse(status, err.Error())
	}
}
