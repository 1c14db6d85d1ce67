package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/researchtrack-backend/internal/platform/ctxutil"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

// quietPaths are probed often and only logged when they fail.
var quietPaths = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// RequestLogger writes one access line per request, leveled by status.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if quietPaths[route] && status < 400 {
			return
		}
		if route == "" {
			route = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		ctx := c.Request.Context()
		if td := ctxutil.GetTraceData(ctx); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if userID := ctxutil.UserID(ctx); userID != "" {
			fields = append(fields, "user_id", userID)
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, "errors", errs.String())
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
