// Package errors provides custom error types for the stockroom API.
// All service-layer errors should use AppError so that responses stay
// consistent and never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same code, so that copies made by
// Wrap and WithMessage still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "You must be authenticated to access this route.", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrNotStaff           = &AppError{Code: "NOT_STAFF", Message: "You do not have permission to access this route.", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer   = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrDuplicateRequest = &AppError{Code: "DUPLICATE_REQUEST", Message: "A request with this idempotency key was already processed", StatusCode: http.StatusConflict}
	ErrInvalidDate      = &AppError{Code: "INVALID_DATE", Message: "Invalid date format. Use YYYY-MM-DD.", StatusCode: http.StatusBadRequest}
	ErrInvalidDateRange = &AppError{Code: "INVALID_DATE_RANGE", Message: "End date must be greater than or equal to start date.", StatusCode: http.StatusBadRequest}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "A user with this username already exists", StatusCode: http.StatusConflict}
)

// Stock errors.
var (
	ErrItemNotFound    = &AppError{Code: "ITEM_NOT_FOUND", Message: "Item does not exist.", StatusCode: http.StatusNotFound}
	ErrStockNotFound   = &AppError{Code: "STOCK_NOT_FOUND", Message: "Stock not found", StatusCode: http.StatusNotFound}
	ErrDuplicateStock  = &AppError{Code: "DUPLICATE_STOCK", Message: "An item with this name and price already exists", StatusCode: http.StatusConflict}
	ErrPriceRequired   = &AppError{Code: "PRICE_REQUIRED", Message: "price must be provided for this sale.", StatusCode: http.StatusBadRequest}
	ErrOutOfStock      = &AppError{Code: "OUT_OF_STOCK", Message: "This item is currently out of stock.", StatusCode: http.StatusBadRequest}
	ErrQuantityTooHigh = &AppError{Code: "QUANTITY_TOO_HIGH", Message: "Quantity is too high.", StatusCode: http.StatusBadRequest}
	ErrStockMissing    = &AppError{Code: "STOCK_MISSING", Message: "The item this sale was recorded against no longer exists", StatusCode: http.StatusInternalServerError}
)

// Sale errors.
var (
	ErrSaleNotFound = &AppError{Code: "SALE_NOT_FOUND", Message: "Sale not found", StatusCode: http.StatusNotFound}
)
