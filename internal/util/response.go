package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tangle-social/backend/internal/apperrors"
	"github.com/tangle-social/backend/internal/logger"
	"go.uber.org/zap"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// RespondWithError maps a core error to its HTTP status and sends the
// structured body. Storage errors are logged with their cause and
// returned as a generic 500.
func RespondWithError(c *gin.Context, err error) {
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apperrors.Storage("request", err)
	}

	status := apiErr.Code.StatusCode()
	if status >= http.StatusInternalServerError {
		logger.Error("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.Error(apiErr.Err),
		)
	}

	c.JSON(status, ErrorResponse{
		Code:    string(apiErr.Code),
		Message: apiErr.Message,
		Details: apiErr.Details,
	})
}

// RespondBadRequest sends a 400 with the standard body.
func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    string(apperrors.ErrBadRequest),
		Message: message,
	})
}
