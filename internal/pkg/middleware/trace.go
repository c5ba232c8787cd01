package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxTraceID gin.Context 中保存追踪 ID 的键
const CtxTraceID = "traceID"

// TraceMiddleware 添加请求追踪ID，上游已带 X-Trace-ID 时沿用
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Set(CtxTraceID, traceID)
		c.Header("X-Trace-ID", traceID)

		c.Next()
	}
}

// GetTraceID 读取当前请求的追踪 ID
func GetTraceID(c *gin.Context) string {
	return c.GetString(CtxTraceID)
}
