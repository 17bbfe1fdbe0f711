package dto

import "net/http"

// Transport-level error codes (domain codes pass through unchanged)
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeClosed       = "OUTSIDE_BUSINESS_HOURS"
)

// ErrorCodeHTTPStatus maps domain and transport error codes to HTTP status
// codes. Input problems map to 400, state and business-rule violations to
// 422, conflicts to 409. Unknown codes fall back to 500.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	// Auth
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,

	// Resources
	ErrCodeNotFound:          http.StatusNotFound,
	"LINE_NOT_FOUND":         http.StatusNotFound,
	"ALREADY_EXISTS":         http.StatusConflict,
	"DUPLICATE_PRODUCT_CODE": http.StatusConflict,
	"DUPLICATE_USERNAME":     http.StatusConflict,
	"CONCURRENCY_CONFLICT":   http.StatusConflict,

	// Business rules -> 422 Unprocessable Entity
	"EMPTY_ORDER":            http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":     http.StatusUnprocessableEntity,
	"INVALID_TRANSITION":     http.StatusUnprocessableEntity,
	"MISSING_DELIVERY_DATE":  http.StatusUnprocessableEntity,
	"OVERDUE_UNPAID_BALANCE": http.StatusUnprocessableEntity,
	"ORDER_NOT_FULLY_PAID":   http.StatusUnprocessableEntity,
	"DUPLICATE_PRODUCT":      http.StatusUnprocessableEntity,
	"CLIENT_INACTIVE":        http.StatusUnprocessableEntity,
	"PRODUCT_INACTIVE":       http.StatusUnprocessableEntity,
	"NO_CHANGE":              http.StatusUnprocessableEntity,
	ErrCodeClosed:            http.StatusUnprocessableEntity,

	// Input problems -> 400 Bad Request
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_QUANTITY":       http.StatusBadRequest,
	"INVALID_PRICE":          http.StatusBadRequest,
	"INVALID_PERIOD":         http.StatusBadRequest,
	"INVALID_CLIENT":         http.StatusBadRequest,
	"INVALID_CLIENT_NAME":    http.StatusBadRequest,
	"INVALID_PRODUCT":        http.StatusBadRequest,
	"INVALID_PRODUCT_CODE":   http.StatusBadRequest,
	"INVALID_PRODUCT_NAME":   http.StatusBadRequest,
	"INVALID_UNIT":           http.StatusBadRequest,
	"INVALID_REASON":         http.StatusBadRequest,
	"INVALID_DIRECTION":      http.StatusBadRequest,
	"INVALID_DELIVERY_TYPE":  http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": http.StatusBadRequest,
	"INVALID_ORDER_NUMBER":   http.StatusBadRequest,
	"INVALID_SALE_NUMBER":    http.StatusBadRequest,
	"INVALID_SOURCE_ORDER":   http.StatusBadRequest,
	"INVALID_SALESPERSON":    http.StatusBadRequest,
	"INVALID_USERNAME":       http.StatusBadRequest,
	"INVALID_PASSWORD":       http.StatusBadRequest,
	"INVALID_ROLE":           http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
