package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"account-core/internal/utils"
)

// InjectTrace tags every request with a trace id. The id is stored in the gin context,
// the request context and the X-Trace-Id response header.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := utils.GenerateTraceId()
		c.Set(utils.TraceIdKey.String(), traceId)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), utils.TraceIdKey, traceId))
		c.Header("X-Trace-Id", traceId)
		c.Next()
	}
}
