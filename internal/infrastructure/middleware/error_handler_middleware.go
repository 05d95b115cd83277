package middleware

import (
	"net/http"

	"rtcdiag/pkg/errors"
	"rtcdiag/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware turns the last error attached to the gin context into
// a structured JSON response. Analysis errors are mapped to their AppError.
func ErrorHandlerMiddleware(log *zap.Logger) gin.HandlerFunc {
	cl := logger.NewContextLogger(log)
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := errors.FromAnalysisError(err)

		fields := []zap.Field{
			zap.String("code", string(appErr.Code)),
			zap.Int("status", appErr.HTTPStatus),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		}
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			cl.LogError(c.Request.Context(), err, "request failed", fields...)
		} else {
			cl.LogWarn(c.Request.Context(), "request rejected", append(fields, zap.Error(err))...)
		}

		body := gin.H{
			"error":   string(appErr.Code),
			"message": appErr.Message,
		}
		if len(appErr.Context) > 0 {
			body["details"] = appErr.Context
		}
		if appErr.Cause != nil && appErr.HTTPStatus < http.StatusInternalServerError {
			body["cause"] = appErr.Cause.Error()
		}
		c.JSON(appErr.HTTPStatus, body)
	}
}

// RecoveryMiddleware recovers from panics and returns proper error responses
func RecoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	cl := logger.NewContextLogger(log)
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				cl.WithContext(c.Request.Context()).Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   string(errors.ErrCodeInternal),
					"message": "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
