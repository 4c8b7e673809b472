package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie 管理员会话 Cookie 名
const SessionCookie = "admin_session"

// CreateSession 签发管理员会话 Cookie
// 令牌是随机值，服务端不保存；校验只看 Cookie 是否存在（沿用原有行为）
func CreateSession(c *gin.Context, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, newSessionID(), maxAge, "/", "", secure, true)
}

// VerifySession 校验会话是否有效（即 Cookie 是否存在且非空）
func VerifySession(c *gin.Context) bool {
	token, err := c.Cookie(SessionCookie)
	return err == nil && token != ""
}

// DestroySession 清除会话 Cookie
func DestroySession(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}

func newSessionID() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// RequireAdmin 管理后台接口的会话校验中间件
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !VerifySession(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SyncClaims 自动化任务令牌的 JWT 声明
type SyncClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateSyncToken 签发批量同步用的自动化令牌（供 cron 调用同步接口）
func GenerateSyncToken(secret string, expiry time.Duration) (string, error) {
	claims := &SyncClaims{
		Scope: "favicon-sync",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// RequireAdminOrToken 会话或 Bearer 令牌二选一
// 同步接口既能从后台页面触发，也能由定时任务携带令牌调用
func RequireAdminOrToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if VerifySession(c) {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			token, err := jwt.ParseWithClaims(tokenString, &SyncClaims{}, func(token *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err == nil && token.Valid {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		c.Abort()
	}
}
