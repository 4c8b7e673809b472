package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/webnav/internal/model"
	"github.com/user/webnav/internal/repository"
	"github.com/user/webnav/internal/service"
	"github.com/user/webnav/internal/utils"
)

// ==================== 公开接口 ====================

// ListWebsites 网站列表，支持分类、推荐、搜索过滤
func (h *Handler) ListWebsites(c *gin.Context) {
	filter := repository.WebsiteFilter{
		CategorySlug: c.Query("category"),
		FeaturedOnly: c.Query("featured") == "true",
		Search:       c.Query("search"),
		SortBy:       c.DefaultQuery("sortBy", "clickCount"),
	}

	// 搜索请求走缓存，相同关键词 5 分钟内不重复查库
	cacheKey := ""
	if filter.Search != "" {
		cacheKey = filter.Search + "|" + filter.CategorySlug + "|" + filter.SortBy
		if cached, found := h.searchCache.Get(cacheKey); found {
			utils.Success(c, cached)
			return
		}
	}

	websites, err := h.Repos.Website.List(filter)
	if err != nil {
		utils.InternalServerError(c, "获取网站列表失败")
		return
	}

	if cacheKey != "" {
		h.searchCache.Set(cacheKey, websites)
	}
	utils.Success(c, websites)
}

// HotWebsites 热门网站（按点击量）
func (h *Handler) HotWebsites(c *gin.Context) {
	websites, err := h.Repos.Website.Hot(10)
	if err != nil {
		utils.InternalServerError(c, "获取热门网站失败")
		return
	}
	utils.Success(c, websites)
}

// FeaturedWebsites 推荐位网站
func (h *Handler) FeaturedWebsites(c *gin.Context) {
	websites, err := h.Repos.Website.Featured(8)
	if err != nil {
		utils.InternalServerError(c, "获取推荐网站失败")
		return
	}
	utils.Success(c, websites)
}

// ListCategories 前台分类列表（含可见网站数量）
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Repos.Category.ListVisible()
	if err != nil {
		utils.InternalServerError(c, "获取分类列表失败")
		return
	}

	// 分类数据要求实时，禁用客户端缓存
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	utils.Success(c, categories)
}

// RecordClick 记录点击并累加计数
func (h *Handler) RecordClick(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	website, err := h.Repos.Website.FindByID(uint(id))
	if err != nil {
		utils.InternalServerError(c, "查询网站失败")
		return
	}
	if website == nil {
		utils.NotFound(c, "网站不存在")
		return
	}

	click := &model.Click{
		WebsiteID: website.ID,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Referrer:  c.GetHeader("Referer"),
	}
	if err := h.Repos.Click.Create(click); err != nil {
		utils.InternalServerError(c, "记录点击失败")
		return
	}

	if err := h.Repos.Website.IncrementClick(website.ID); err != nil {
		utils.InternalServerError(c, "更新点击计数失败")
		return
	}

	utils.Success(c, nil)
}

// FaviconProxy 图标代理：302 跳转到解析出的图标或占位图
func (h *Handler) FaviconProxy(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		utils.BadRequest(c, "URL 不能为空")
		return
	}

	domain, err := service.ExtractDomain(rawURL)
	if err != nil {
		utils.BadRequest(c, "网址格式不正确")
		return
	}

	icon := h.Favicon.IconForDomain(c.Request.Context(), domain)
	c.Redirect(http.StatusFound, icon)
}
