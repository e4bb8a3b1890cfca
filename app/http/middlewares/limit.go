// Package middlewares Gin 中间件
package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"market/pkg/app"
	"market/pkg/limiter"
	"market/pkg/logger"
	"market/pkg/response"
)

// LimitIP 全局限流中间件，针对 IP 进行限流
//
// limit 格式:
//   - 5 reqs/second: "5-S"
//   - 10 reqs/minute: "10-M"
//   - 1000 reqs/hour: "1000-H"
//   - 2000 reqs/day: "2000-D"
func LimitIP(limit string) gin.HandlerFunc {
	if app.IsTesting() {
		limit = "1000000-H"
	}

	return func(c *gin.Context) {
		key := limiter.GetKeyIP(c)
		if ok := limitHandler(c, key, limit); !ok {
			return
		}
		c.Next()
	}
}

// LimitPerRoute 针对单个路由限流，按路由+IP 计数
func LimitPerRoute(limit string) gin.HandlerFunc {
	if app.IsTesting() {
		limit = "1000000-H"
	}

	return func(c *gin.Context) {
		c.Set("limiter-once", false)

		key := limiter.GetKeyRouteWithIP(c)
		if ok := limitHandler(c, key, limit); !ok {
			return
		}
		c.Next()
	}
}

func limitHandler(c *gin.Context, key string, limit string) bool {
	rate, err := limiter.CheckRate(c, key, limit)
	if err != nil {
		logger.LogIf(err)
		response.Abort500(c)
		return false
	}

	c.Header("X-RateLimit-Limit", cast.ToString(rate.Limit))
	c.Header("X-RateLimit-Remaining", cast.ToString(rate.Remaining))
	c.Header("X-RateLimit-Reset", cast.ToString(rate.Reset))

	if rate.Reached {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"message": "请求太频繁，请稍后再试",
		})
		return false
	}
	return true
}
