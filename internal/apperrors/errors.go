package apperrors

import (
	"errors"
	"fmt"
)

// APIError is the structured failure surfaced by every core operation.
// Every rejection carries the operation's name and the offending id so the
// calling layer can render a specific message.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// WithDetails adds additional context to an error.
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// NotFound creates a NOT_FOUND error for a missing entity or edge.
func NotFound(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

// Conflict creates a CONFLICT error for a duplicate edge or pending request.
func Conflict(message string) *APIError {
	return &APIError{
		Code:    ErrConflict,
		Message: message,
	}
}

// InvalidOperation creates an INVALID_OPERATION error, used for
// self-referential relationship writes.
func InvalidOperation(message string) *APIError {
	return &APIError{
		Code:    ErrInvalidOperation,
		Message: message,
	}
}

// InvalidState creates an INVALID_STATE error, used when a poll is
// inactive or past its end time.
func InvalidState(message string) *APIError {
	return &APIError{
		Code:    ErrInvalidState,
		Message: message,
	}
}

// OutOfRange creates an OUT_OF_RANGE error for a bad poll option index.
func OutOfRange(message string) *APIError {
	return &APIError{
		Code:    ErrOutOfRange,
		Message: message,
	}
}

// BadRequest creates a BAD_REQUEST error.
func BadRequest(message string) *APIError {
	return &APIError{
		Code:    ErrBadRequest,
		Message: message,
	}
}

// Unauthorized creates an UNAUTHORIZED error.
func Unauthorized(message string) *APIError {
	return &APIError{
		Code:    ErrUnauthorized,
		Message: message,
	}
}

// Storage wraps a store-layer failure. Constraint violations and
// connectivity errors propagate unchanged inside it; the core never
// retries.
func Storage(op string, err error) *APIError {
	return &APIError{
		Code:    ErrStorage,
		Message: fmt.Sprintf("%s failed", op),
		Err:     err,
	}
}

// CodeOf extracts the ErrorCode from err, or ErrStorage for plain errors.
func CodeOf(err error) ErrorCode {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ErrStorage
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
