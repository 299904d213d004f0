package apperror

import (
	"errors"
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

// ---- Top-up charges (TOPUP) ----

// ErrInsufficientAmount is raised when a requested top-up is below the
// minimum chargeable amount. Recoverable by the caller; the amount must change.
func ErrInsufficientAmount(minAmount int64) *AppError {
	return New("TOPUP_001", fmt.Sprintf("Top-up amount must be at least %d", minAmount), http.StatusBadRequest)
}

func ErrNoPaymentMethod() *AppError {
	return New("TOPUP_002", "No payment method available", http.StatusUnprocessableEntity)
}

func ErrPaymentMethodExpired() *AppError {
	return New("TOPUP_003", "Payment method has expired", http.StatusUnprocessableEntity)
}

func ErrCardDeclined(message string, err error) *AppError {
	return Wrap("TOPUP_004", message, http.StatusPaymentRequired, err)
}

func ErrGatewayFailure(err error) *AppError {
	return Wrap("TOPUP_005", fmt.Sprintf("Stripe error: %v", err), http.StatusBadGateway, err)
}

// ---- Payment method lifecycle (CARD) ----

func ErrAttachmentFailed(err error) *AppError {
	return Wrap("CARD_001", "Unable to attach payment method", http.StatusUnprocessableEntity, err)
}

func ErrTokenInUse() *AppError {
	return New("CARD_002", "Payment method belongs to another customer", http.StatusConflict)
}

func ErrDetachmentFailed(err error) *AppError {
	return Wrap("CARD_003", "Unable to detach payment method", http.StatusBadGateway, err)
}

func ErrMethodNotFound() *AppError {
	return New("CARD_004", "Payment method not found", http.StatusNotFound)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrSellerSuspended() *AppError {
	return New("AUTH_004", "Seller account is suspended", http.StatusForbidden)
}

func ErrInvalidSignature() *AppError {
	return New("AUTH_005", "Invalid request signature", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New("AUTH_006", "Request timestamp expired", http.StatusForbidden)
}

func ErrNonceUsed() *AppError {
	return New("AUTH_007", "Nonce has already been used", http.StatusForbidden)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Generic (PAY / SYS) ----

func ErrNotFound(entity string) *AppError {
	return New("PAY_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- Classification helpers ----

// IsChargeError reports whether err is any of the charge-failure family:
// no payment method, expired method, card decline, or gateway failure.
func IsChargeError(err error) bool {
	code := CodeOf(err)
	switch code {
	case "TOPUP_002", "TOPUP_003", "TOPUP_004", "TOPUP_005":
		return true
	}
	return false
}

// IsInsufficientAmount reports whether err is the below-minimum-amount error.
func IsInsufficientAmount(err error) bool {
	return CodeOf(err) == "TOPUP_001"
}

// CodeOf extracts the AppError code from err, or "" if err is not an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
