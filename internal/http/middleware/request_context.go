package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/urbantwin/citytwin-backend/internal/pkg/ctxutil"
)

// AttachRequestContext assigns every request a trace and request id, echoing
// the request id back so clients can correlate failures with logs.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		td := &ctxutil.TraceData{
			TraceID:   uuid.NewString(),
			RequestID: requestID,
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Next()
	}
}
