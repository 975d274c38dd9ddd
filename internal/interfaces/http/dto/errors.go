package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeInvalidToken = "INVALID_TOKEN"
)

// Resource error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeInvalidState  = "INVALID_STATE"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes. Business
// rejections that carry actionable detail (shortfalls, exhausted vouchers) map
// to 422 so clients can distinguish them from malformed requests.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	"INVALID_INPUT":            http.StatusBadRequest,
	"INVALID_AMOUNT":           http.StatusBadRequest,
	"INVALID_USER":             http.StatusBadRequest,
	"INVALID_TRANSACTION_TYPE": http.StatusBadRequest,
	"VALIDATION_ERROR":         http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeInvalidToken: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeAlreadyExists:   http.StatusConflict,
	ErrCodeInvalidState:    http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ALREADY_REDEEMED":     http.StatusConflict,

	"INSUFFICIENT_BALANCE":  http.StatusUnprocessableEntity,
	"INSUFFICIENT_CREDITS":  http.StatusUnprocessableEntity,
	"UNKNOWN_WORKFLOW_TYPE": http.StatusUnprocessableEntity,
	"VOUCHER_INACTIVE":      http.StatusUnprocessableEntity,
	"VOUCHER_EXPIRED":       http.StatusUnprocessableEntity,
	"VOUCHER_EXHAUSTED":     http.StatusUnprocessableEntity,

	// Voucher code lookups read like resource lookups to the client
	"INVALID_CODE":    http.StatusNotFound,
	"INVALID_PACKAGE": http.StatusBadRequest,

	"GATEWAY_ERROR":     http.StatusBadGateway,
	"INVALID_SIGNATURE": http.StatusBadRequest,

	"REQUEST_TOO_LARGE": http.StatusRequestEntityTooLarge,
	"RATE_LIMITED":      http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
