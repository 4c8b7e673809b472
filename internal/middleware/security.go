package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/webnav/internal/service"
)

// SecurityGate 登录相关接口的防护闸：先查封禁，再查频率
func SecurityGate(security *service.SecurityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if security.IsIPBanned(ip) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "您的 IP 已被临时封禁，请稍后再试"})
			c.Abort()
			return
		}

		if !security.CheckRateLimit(ip) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Security 基础安全响应头
func Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// CORS 跨域支持
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
