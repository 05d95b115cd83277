package middleware

import (
	"rtcdiag/pkg/logger"
	"rtcdiag/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware propagates a client supplied X-Request-ID when it is a
// UUID and generates one otherwise. The id is echoed in the response and
// stored in the request context for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if validation.ValidateRequestID(id) != nil {
			id = uuid.New().String()
		}

		c.Header(RequestIDHeader, id)
		c.Set("request_id", id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
