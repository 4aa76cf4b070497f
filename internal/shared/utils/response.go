package utils

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/errors"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorInfo represents error information in API response
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse sends a successful response with custom status code
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// OKResponse sends a 200 response with data
func OKResponse(c *gin.Context, data interface{}) {
	SuccessResponse(c, http.StatusOK, "", data)
}

// ErrorResponse sends an error response with a message
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Type:    string(statusFromCode(statusCode)),
			Message: message,
		},
	})
}

// ErrorResponseWithError maps domain and application errors to HTTP responses.
// Unknown errors surface as 503 so callers can distinguish a transient
// datastore failure from a definitive negative decision.
func ErrorResponseWithError(c *gin.Context, err error) {
	if appErr := errors.GetAppError(err); appErr != nil {
		c.JSON(appErr.Code, APIResponse{
			Success: false,
			Error: &ErrorInfo{
				Type:    string(appErr.Type),
				Message: appErr.Message,
				Details: appErr.Details,
			},
		})
		return
	}

	switch {
	case stderrors.Is(err, account.ErrAccountNotFound):
		ErrorResponse(c, http.StatusNotFound, "account not found")
	case stderrors.Is(err, tier.ErrUnknownFeature):
		ErrorResponse(c, http.StatusBadRequest, "unknown feature")
	case stderrors.Is(err, tier.ErrUsageLimitExceeded):
		ErrorResponse(c, http.StatusConflict, "usage limit exceeded")
	default:
		ErrorResponse(c, http.StatusServiceUnavailable, "service temporarily unavailable")
	}
}

func statusFromCode(code int) errors.ErrorType {
	switch code {
	case http.StatusBadRequest:
		return errors.ErrorTypeBadRequest
	case http.StatusNotFound:
		return errors.ErrorTypeNotFound
	case http.StatusConflict:
		return errors.ErrorTypeConflict
	case http.StatusForbidden:
		return errors.ErrorTypeForbidden
	case http.StatusServiceUnavailable:
		return errors.ErrorTypeUnavailable
	case http.StatusUnauthorized:
		return "unauthorized"
	default:
		return errors.ErrorTypeInternal
	}
}
