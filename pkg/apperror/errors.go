package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet (WAL) ----

func ErrInvalidAmount() *AppError {
	return New("WAL_001", "Amount must be a positive integer in minor units", http.StatusBadRequest)
}

// ErrInsufficientBalance carries the shortfall so the UI can render how
// much is missing. availableBalance is the spendable balance at the time
// of the check, totalRequired is requested amount plus fee.
func ErrInsufficientBalance(availableBalance, totalRequired int64) *AppError {
	return New("WAL_002",
		fmt.Sprintf("Insufficient balance: available %d, required %d (shortfall %d)",
			availableBalance, totalRequired, totalRequired-availableBalance),
		http.StatusUnprocessableEntity)
}

func ErrUnsupportedCurrency(currency string) *AppError {
	return New("WAL_003", fmt.Sprintf("Unsupported currency: %s", currency), http.StatusBadRequest)
}

// ---- Withdrawal Lifecycle (WDR) ----

// ErrBelowMinimum reports a requested amount under the policy floor.
func ErrBelowMinimum(requested, minimum int64) *AppError {
	return New("WDR_001",
		fmt.Sprintf("Requested amount %d is below the minimum withdrawal of %d", requested, minimum),
		http.StatusUnprocessableEntity)
}

func ErrInvalidTransition(current string) *AppError {
	return New("WDR_002",
		fmt.Sprintf("Withdrawal request is %s; only pending requests can be decided", current),
		http.StatusConflict)
}

func ErrNotSettleable() *AppError {
	return New("WDR_003", "Sale transaction is not completed or has a non-positive amount", http.StatusUnprocessableEntity)
}

// ---- Generic (PAY) ----

func ErrNotFound(entity string) *AppError {
	return New("PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authentication & Authorization (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_005", "Insufficient privileges for this operation", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("WAL_001", message, http.StatusBadRequest)
}
