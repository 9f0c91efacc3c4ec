package ctxmanage

import (
	"github.com/gin-gonic/gin"
)

// Key is a custom type to avoid collisions in the request context.
type Key string

// TraceIdKey is the context key under which the middleware stores
// the per-request trace id.
const TraceIdKey Key = "1"

// GetTraceIdOfRequest returns the trace id set by the logging middleware.
// Returns "unknown" if the middleware did not run for this request.
func GetTraceIdOfRequest(c *gin.Context) string {
	ctx := c.Request.Context()
	traceId, ok := ctx.Value(TraceIdKey).(string)
	if !ok {
		return "unknown"
	}
	return traceId
}
