package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appctx "github.com/harpreet-2146/FM-demo-sub001/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace assigns correlation ids to the request. Ids sent by the client are
// kept and echoed back so retries can be matched up in the logs.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := appctx.Trace{
			RequestID: headerOrNew(c, HeaderRequestID),
			TraceID:   headerOrNew(c, HeaderTraceID),
		}
		c.Request = c.Request.WithContext(appctx.WithTrace(c.Request.Context(), t))
		c.Set("request_id", t.RequestID)
		c.Set("trace_id", t.TraceID)
		c.Header(HeaderRequestID, t.RequestID)
		c.Header(HeaderTraceID, t.TraceID)

		c.Next()
	}
}

func headerOrNew(c *gin.Context, name string) string {
	if v := c.GetHeader(name); v != "" {
		return v
	}
	return uuid.NewString()
}
