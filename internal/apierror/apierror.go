// Package apierror provides the standardized error envelope for the API plus
// the typed domain errors shared by services and handlers. All errors returned
// to clients go through this package so that internal details (stack traces,
// SQL errors) never leak.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}

// ── Domain error taxonomy ────────────────────────────────────────────────────

// InvalidInputError rejects a request before any write happens.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

func InvalidInput(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError aborts the surrounding operation; inside a transaction it
// rolls the whole transaction back.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NotFound(entity string, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError aborts the entire sale transaction. Every prior
// write of the attempt is rolled back.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available=%s requested=%s",
		e.ProductID, e.Available, e.Requested)
}

// ConflictError signals a state conflict (e.g. a cash session already open).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflict(msg string) *ConflictError { return &ConflictError{Msg: msg} }

// FiscalError covers authentication failures, transport errors and
// authority-side rejections. It is raised only after the sale has committed
// and never rolls the sale back.
type FiscalError struct {
	Stage string // "auth" | "transport" | "rejected"
	Err   error
}

func (e *FiscalError) Error() string {
	return fmt.Sprintf("fiscal authority %s error: %v", e.Stage, e.Err)
}

func (e *FiscalError) Unwrap() error { return e.Err }

func Fiscal(stage string, err error) *FiscalError {
	return &FiscalError{Stage: stage, Err: err}
}

// ErrCashSessionClosed is the precondition failure returned before a sale is
// even attempted.
var ErrCashSessionClosed = errors.New("cash session closed: open a session to operate")

// Status maps a domain error to the HTTP status the handlers respond with.
func Status(err error) int {
	var (
		invalid  *InvalidInputError
		notFound *NotFoundError
		stock    *InsufficientStockError
		conflict *ConflictError
		fiscal   *FiscalError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.Is(err, ErrCashSessionClosed):
		return http.StatusForbidden
	case errors.As(err, &stock), errors.As(err, &fiscal):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
