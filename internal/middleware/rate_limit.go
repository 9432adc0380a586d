// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"fmt"
	"net/http"
	"support-bot-go/internal/config"
	"support-bot-go/internal/model"
	"support-bot-go/pkg/log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimitMiddleware 基于 Redis 固定窗口计数器对单个用户限流。
// 此中间件必须在 AuthMiddleware 之后使用（按用户 ID 计数）。
// Redis 不可用时放行请求：限流是保护手段，不应成为单点故障。
func RateLimitMiddleware(rdb *redis.Client, cfg config.RateLimitConfig) gin.HandlerFunc {
	window := time.Duration(cfg.WindowSeconds) * time.Second
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "无法获取用户信息"})
			return
		}
		currentUser, ok := user.(*model.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "用户数据类型错误"})
			return
		}

		key := fmt.Sprintf("ratelimit:chat:%d", currentUser.ID)
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Warnf("限流计数器异常，放行请求, userID: %d, err: %v", currentUser.ID, err)
			c.Next()
			return
		}
		if count == 1 {
			// 窗口内第一次请求，设置过期时间
			_ = rdb.Expire(c.Request.Context(), key, window).Err()
		}

		if count > int64(cfg.Requests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "Rate limit exceeded. Please wait before sending more messages.",
			})
			return
		}

		c.Next()
	}
}
