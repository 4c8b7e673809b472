package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/webnav/internal/handler"
	"github.com/user/webnav/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 公开接口 ====================
	api := r.Group("/api")
	{
		api.GET("/websites", h.ListWebsites)
		api.GET("/websites/hot", h.HotWebsites)
		api.GET("/websites/featured", h.FeaturedWebsites)
		api.POST("/websites/:id/click", h.RecordClick)
		api.GET("/categories", h.ListCategories)
		api.GET("/favicon", h.FaviconProxy)
	}

	// ==================== 认证接口（带封禁与频率防护）====================
	auth := r.Group("/api/admin")
	auth.Use(middleware.SecurityGate(h.Security))
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/check-auth", h.CheckAuth)
	}

	// ==================== 管理后台（需要会话）====================
	admin := r.Group("/api/admin")
	admin.Use(middleware.RequireAdmin())
	{
		// 分类管理
		admin.GET("/categories", h.AdminListCategories)
		admin.POST("/categories", h.AdminCreateCategory)
		admin.GET("/categories/:id", h.AdminGetCategory)
		admin.PUT("/categories/:id", h.AdminUpdateCategory)
		admin.DELETE("/categories/:id", h.AdminDeleteCategory)
		admin.POST("/categories/reorder", h.AdminReorderCategories)

		// 网站管理
		admin.GET("/websites", h.AdminListWebsites)
		admin.POST("/websites", h.AdminCreateWebsite)
		admin.GET("/websites/:id", h.AdminGetWebsite)
		admin.PUT("/websites/:id", h.AdminUpdateWebsite)
		admin.DELETE("/websites/:id", h.AdminDeleteWebsite)
		admin.POST("/websites/reorder", h.AdminReorderWebsites)
		admin.GET("/websites/meta", h.WebsiteMeta)

		// 批量导入导出
		admin.POST("/import", h.AdminImport)
		admin.GET("/export", h.AdminExport)

		// 图标统计与自动化令牌
		admin.GET("/favicon-stats", h.FaviconStats)
		admin.POST("/favicon-stats", h.FaviconStatsAction)
		admin.POST("/sync-token", h.SyncToken)
	}

	// 批量同步：后台会话或自动化令牌均可调用
	sync := r.Group("/api/admin")
	sync.Use(middleware.RequireAdminOrToken(h.Config.AppSecret))
	{
		sync.POST("/favicon-sync", h.FaviconSync)
	}
}
