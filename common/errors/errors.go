package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/Company-KERL/Kerl-backend/common/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error represents an application error. Message is shown to clients; Err
// is the underlying cause and is only logged.
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind: same status code and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message, nil)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message, nil)
}

func InsufficientStock(productName string) *Error {
	return New(http.StatusBadRequest, "Insufficient stock for product: "+productName, nil)
}

// External wraps a failure of a third-party service such as the payment
// processor.
func External(message string, err error) *Error {
	return New(http.StatusInternalServerError, message, err)
}

func Internal(message string, err error) *Error {
	return New(http.StatusInternalServerError, message, err)
}

// Common error values
var (
	ErrUnauthorized       = Unauthorized("Unauthorized")
	ErrInvalidToken       = Unauthorized("Invalid token")
	ErrInvalidCredentials = Unauthorized("Invalid credentials")
	ErrInternalServer     = Internal("Internal server error", nil)
)

// From converts any error into an *Error, treating unknown errors as
// internal failures.
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(ErrInternalServer.Message, err)
}

// ErrorMiddleware renders the last error attached to the gin context as
// {"message": ...}. Server errors are logged with their cause.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := From(c.Errors.Last().Err)
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error(c, appErr.Message, appErr.Err,
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
		}

		c.AbortWithStatusJSON(appErr.Code, gin.H{"message": appErr.Message})
	}
}
