package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"teamspace/internal/apperr"
)

// Error codes returned to clients.
const (
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeConflict           = "ERR_CONFLICT"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeTooManyRequests    = "ERR_TOO_MANY_REQUESTS"

	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
	ErrCodeUserDisabled       = "ERR_USER_DISABLED"
	ErrCodeUserNotFound       = "ERR_USER_NOT_FOUND"
)

// APIError is the uniform error response body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse writes a uniform error response.
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, ErrCodeForbidden, message)
}

// NotFound writes a 404 response.
func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

// InternalError writes a 500 response.
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// InvalidPayload writes a 400 response for unparseable request bodies.
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// RespondError translates a service error into the HTTP status table:
// NotFound 404, Conflict 409, Validation 400, PermissionDenied 403.
// Anything else is an infrastructure fault: logged internally and
// replaced with a generic message so raw store errors never leak.
func RespondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case apperr.KindConflict:
		ErrorResponse(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case apperr.KindValidation:
		ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
	case apperr.KindPermissionDenied:
		ErrorResponse(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("unhandled service error")
		InternalError(c, "internal server error")
	}
}
