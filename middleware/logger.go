package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/Arihant25/Treasure-Trove/pkg/ctxmanage"
	"github.com/Arihant25/Treasure-Trove/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Logger assigns a trace id to every request and logs the request once it
// finishes, with its status and latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := uuid.NewString()

		ctx := context.WithValue(c.Request.Context(), ctxmanage.TraceIdKey, traceId)
		c.Request = c.Request.WithContext(ctx)

		slog.Info("request started", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.Method, c.Request.Method), slog.String(logkey.URL, c.Request.URL.Path))

		start := time.Now()
		c.Next()

		slog.Info("request finished", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.Method, c.Request.Method), slog.String(logkey.URL, c.Request.URL.Path),
			slog.Int("Status Code", c.Writer.Status()), slog.Int64("Duration ms", time.Since(start).Milliseconds()))
	}
}
