package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "expensely/internal/errors"
	"expensely/internal/logger"
)

// ErrorBody is the JSON shape of every non-2xx response.
func ErrorBody(err *apperrors.AppError) gin.H {
	return gin.H{
		"statusCode": err.StatusCode,
		"code":       err.Code,
		"message":    err.Message,
	}
}

// Resolve maps err to the AppError that should be shown to the client,
// logging internal causes. Unknown errors become ErrInternalServer.
func Resolve(c *gin.Context, err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		return appErr
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	return apperrors.ErrInternalServer
}

func abortWithError(c *gin.Context, err error) {
	appErr := Resolve(c, err)
	c.AbortWithStatusJSON(appErr.StatusCode, ErrorBody(appErr))
}

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into consistent JSON error responses. AppErrors are returned with
// their code and message; unexpected errors are logged and return a generic
// internal error to avoid leaking details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := Resolve(c, c.Errors.Last().Err)
		c.JSON(appErr.StatusCode, ErrorBody(appErr))
	}
}
