package middleware

import (
	"fmt"
	"net/http"
	"time"

	"anonboard/pkg/logger"
	"anonboard/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 固定窗口计数：首次计数时设置过期时间，返回窗口内当前次数
var throttleScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// UserThrottle 按用户限制写操作频率，需在 AuthMiddleware 之后使用
// Redis 不可用时放行，只记录日志
func UserThrottle(rdb *redis.Client, action string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if rdb == nil || limit <= 0 || userID == "" {
			c.Next()
			return
		}

		bucket := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("throttle:%s:%s:%d", action, userID, bucket)
		n, err := throttleScript.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int()
		if err != nil {
			logger.Log.Warn("throttle check failed", zap.String("action", action), zap.Error(err))
			c.Next()
			return
		}

		if n > limit {
			response.Error(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many "+action+" requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
