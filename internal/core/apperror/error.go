// Package apperror defines the errors use cases return. Each carries a stable
// code for API clients and the HTTP status it maps to; the cause stays
// server-side.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to API clients.
const (
	CodeInternal           = "INTERNAL_ERROR"
	CodeInvariantViolation = "INVARIANT_VIOLATION"

	CodeInvalidArgument       = "INVALID_ARGUMENT"
	CodeInsufficientInventory = "INSUFFICIENT_INVENTORY"
	CodeInsufficientBlocked   = "INSUFFICIENT_BLOCKED"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"

	CodeInvalidState = "INVALID_STATE"
	CodeConflict     = "CONFLICT"
	CodeIdempotency  = "IDEMPOTENCY_CONFLICT"
)

// AppError is a classified failure.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail sets one response detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 2)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error and returns e.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func NewInvalidArgument(message string) *AppError {
	return newError(CodeInvalidArgument, http.StatusBadRequest, message)
}

func NewUnauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

func NewForbidden(message string) *AppError {
	return newError(CodeForbidden, http.StatusForbidden, message)
}

func NewConflict(message string) *AppError {
	return newError(CodeConflict, http.StatusConflict, message)
}

func NewNotFound(entity string, id any) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, entity+" not found").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewDuplicate is a Conflict naming the unique field that collided.
func NewDuplicate(entity, field, value string) *AppError {
	return NewConflict(fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// NewInvalidState rejects an operation the document's status does not allow.
func NewInvalidState(entity, status, operation string) *AppError {
	msg := fmt.Sprintf("cannot %s %s in status %s", operation, entity, status)
	return newError(CodeInvalidState, http.StatusConflict, msg).
		WithDetail("entity", entity).
		WithDetail("status", status).
		WithDetail("operation", operation)
}

// NewInsufficientInventory reports available stock below the requested
// quantity. Quantities are in base units.
func NewInsufficientInventory(materialID string, requested, available int64) *AppError {
	return shortfall(CodeInsufficientInventory, "Insufficient inventory", materialID, requested, available)
}

// NewInsufficientBlocked reports reserved stock below a dispatch quantity.
func NewInsufficientBlocked(materialID string, requested, blocked int64) *AppError {
	return shortfall(CodeInsufficientBlocked, "Insufficient blocked inventory", materialID, requested, blocked)
}

func shortfall(code, message, materialID string, requested, available int64) *AppError {
	return newError(code, http.StatusUnprocessableEntity, message).
		WithDetail("material_id", materialID).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

// NewInvariantViolation marks a consistency bug. Clients see a generic 500;
// the formatted cause is only logged.
func NewInvariantViolation(format string, args ...any) *AppError {
	return newError(CodeInvariantViolation, http.StatusInternalServerError, "Internal consistency violation").
		WithCause(fmt.Errorf(format, args...))
}

func NewInternal(err error) *AppError {
	return newError(CodeInternal, http.StatusInternalServerError, "Internal server error").WithCause(err)
}

// NewIdempotencyConflict rejects a retry while the first attempt is running.
func NewIdempotencyConflict(key string) *AppError {
	return newError(CodeIdempotency, http.StatusConflict, "Operation already in progress or completed").
		WithDetail("idempotency_key", key)
}

// NewIdempotencyMismatch rejects a key reused for a different request.
func NewIdempotencyMismatch(key string) *AppError {
	return newError(CodeIdempotency, http.StatusConflict, "Idempotency key mismatch").
		WithDetail("idempotency_key", key)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus maps any error to a status; unclassified errors are 500.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }
