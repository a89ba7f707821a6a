// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses.
// Every response uses the same envelope: {"data": ...} on success and
// {"error": {"code": ..., "message": ...}} on failure.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes returned in the error envelope.
const (
	CodeBadRequest       = "bad_request"
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeConflict         = "conflict"
	CodeEmptyPeriod      = "empty_period"
	CodeValidation       = "validation_failed"
	CodeRateLimited      = "rate_limited"
	CodeResetFailed      = "reset_failed"
	CodeInternal         = "internal_error"
)

type envelope struct {
	Data  any          `json:"data,omitempty"`
	Meta  *PageMeta    `json:"meta,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PageMeta describes the page returned by a listing endpoint.
type PageMeta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       envelope
	noBody     bool
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

// Data sets the payload wrapped in the "data" member.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.body.Data = v
	return b
}

// Page attaches pagination metadata.
func (b *JSONResponseBuilder) Page(meta PageMeta) *JSONResponseBuilder {
	b.body.Meta = &meta
	return b
}

// Error replaces the payload with an error envelope.
func (b *JSONResponseBuilder) Error(code, message string) *JSONResponseBuilder {
	b.body.Data = nil
	b.body.Error = &errorDetail{Code: code, Message: message}
	return b
}

// Empty sends the status line and headers only.
func (b *JSONResponseBuilder) Empty() *JSONResponseBuilder {
	b.noBody = true
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.noBody {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"internal error"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Error(code, message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeBadRequest, message)
}

// UnauthorizedError creates a 401 error response.
func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, CodeUnauthorized, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, CodeValidation, message)
}

// ConflictError creates a 409 Conflict error response.
func ConflictError(code, message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, code, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(code, message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, code, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, message)
}

// TooManyRequestsError creates a 429 error response.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, please try again later")
}
