package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed fall back to the prefix rules in GetHTTPStatus.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,

	"NOT_FOUND":      http.StatusNotFound,
	"LINE_NOT_FOUND": http.StatusNotFound,

	"ALREADY_EXISTS":      http.StatusConflict,
	"INTEGRITY_CONFLICT":  http.StatusConflict,
	"CONCURRENCY_TIMEOUT": http.StatusConflict,
	"PRODUCT_IN_USE":      http.StatusConflict,
	"CATEGORY_IN_USE":     http.StatusConflict,

	"INVALID_TRANSITION": http.StatusUnprocessableEntity,
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"LAST_LINE":          http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for a domain error code.
// INVALID_* codes not explicitly listed are treated as input validation
// failures; anything else unknown is a business rule violation.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
