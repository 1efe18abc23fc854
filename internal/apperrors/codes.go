package apperrors

import "net/http"

// ErrorCode classifies a failure for callers and the HTTP edge.
type ErrorCode string

const (
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrConflict         ErrorCode = "CONFLICT"
	ErrInvalidOperation ErrorCode = "INVALID_OPERATION"
	ErrInvalidState     ErrorCode = "INVALID_STATE"
	ErrOutOfRange       ErrorCode = "OUT_OF_RANGE"
	ErrUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrBadRequest       ErrorCode = "BAD_REQUEST"
	ErrStorage          ErrorCode = "STORAGE_ERROR"
)

// statusCodeMap maps ErrorCode to HTTP status code.
var statusCodeMap = map[ErrorCode]int{
	ErrNotFound:         http.StatusNotFound,
	ErrConflict:         http.StatusConflict,
	ErrInvalidOperation: http.StatusUnprocessableEntity,
	ErrInvalidState:     http.StatusConflict,
	ErrOutOfRange:       http.StatusUnprocessableEntity,
	ErrUnauthorized:     http.StatusUnauthorized,
	ErrBadRequest:       http.StatusBadRequest,
	ErrStorage:          http.StatusInternalServerError,
}

// StatusCode returns the HTTP status code for this error code.
func (e ErrorCode) StatusCode() int {
	if code, ok := statusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
