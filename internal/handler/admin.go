package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/webnav/internal/middleware"
	"github.com/user/webnav/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// ==================== 管理后台：认证 ====================

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 管理员登录
// 封禁与频率检查由路由上的 SecurityGate 完成，这里只做凭证校验
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		utils.BadRequest(c, "请填写用户名和密码")
		return
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Config.AdminUsername)) == 1
	passwordOK := bcrypt.CompareHashAndPassword(h.Config.AdminPasswordHash, []byte(req.Password)) == nil

	if !usernameOK || !passwordOK {
		h.Security.RecordLoginFailure(c.ClientIP())
		utils.Unauthorized(c, "用户名或密码错误")
		return
	}

	middleware.CreateSession(c, h.Config.SessionMaxAge, h.Config.IsProduction())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout 管理员登出
func (h *Handler) Logout(c *gin.Context) {
	middleware.DestroySession(c, h.Config.IsProduction())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CheckAuth 会话状态检查
func (h *Handler) CheckAuth(c *gin.Context) {
	if !middleware.VerifySession(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// SyncToken 签发批量同步用的自动化令牌
func (h *Handler) SyncToken(c *gin.Context) {
	token, err := middleware.GenerateSyncToken(h.Config.AppSecret, 30*24*time.Hour)
	if err != nil {
		utils.InternalServerError(c, "令牌签发失败")
		return
	}
	utils.Success(c, gin.H{
		"token":      token,
		"expires_in": int64((30 * 24 * time.Hour).Seconds()),
	})
}

// ==================== 管理后台：图标 ====================

// FaviconStats 图标解析统计
func (h *Handler) FaviconStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Favicon.Stats())
}

// FaviconStatsAction 统计操作，目前只支持清零
func (h *Handler) FaviconStatsAction(c *gin.Context) {
	var req struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Action != "reset" {
		utils.BadRequest(c, "无效的操作")
		return
	}

	h.Favicon.ResetStats()
	c.JSON(http.StatusOK, gin.H{"message": "统计已清零"})
}

// FaviconSyncRequest 批量同步请求
type FaviconSyncRequest struct {
	All       bool `json:"all"`
	BatchSize int  `json:"batchSize"`
}

// FaviconSync 批量同步网站图标
func (h *Handler) FaviconSync(c *gin.Context) {
	var req FaviconSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 空请求体按默认参数处理
		req = FaviconSyncRequest{}
	}

	result, err := h.Favicon.SyncIcons(c.Request.Context(), req.All, req.BatchSize)
	if err != nil {
		utils.InternalServerError(c, "同步失败: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// WebsiteMeta 抓取目标网址的元信息，预填新增表单
func (h *Handler) WebsiteMeta(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		utils.BadRequest(c, "URL 不能为空")
		return
	}

	meta, err := h.Meta.Fetch(c.Request.Context(), rawURL)
	if err != nil {
		utils.BadRequest(c, "抓取失败: "+err.Error())
		return
	}
	utils.Success(c, meta)
}
