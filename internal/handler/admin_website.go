package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/webnav/internal/model"
	"github.com/user/webnav/internal/repository"
	"github.com/user/webnav/internal/utils"
)

// ==================== 管理后台：网站 ====================

// TagList 标签字段，前端可能传数组也可能传逗号分隔的字符串
type TagList []string

// UnmarshalJSON 兼容 ["a","b"] 与 "a,b" 两种格式
func (t *TagList) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		*t = asList
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return err
	}
	if asString == "" {
		*t = nil
		return nil
	}
	*t = strings.Split(asString, ",")
	return nil
}

// WebsiteRequest 网站创建/更新请求
type WebsiteRequest struct {
	Title       string  `json:"title" binding:"required"`
	Url         string  `json:"url" binding:"required,url"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	Tags        TagList `json:"tags"`
	IsFeatured  bool    `json:"is_featured"`
	IsShow      *bool   `json:"is_show"`
	Sort        int     `json:"sort"`
}

// AdminListWebsites 后台网站列表
func (h *Handler) AdminListWebsites(c *gin.Context) {
	websites, err := h.Repos.Website.ListAdmin()
	if err != nil {
		utils.InternalServerError(c, "获取网站列表失败")
		return
	}
	utils.Success(c, websites)
}

// AdminCreateWebsite 创建网站
// 没有显式指定图标时立即返回，由 FaviconService 异步补全
func (h *Handler) AdminCreateWebsite(c *gin.Context) {
	var req WebsiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "名称、网址和分类不能为空，且网址格式需正确")
		return
	}

	category, err := h.Repos.Category.FindByID(req.CategoryID)
	if err != nil {
		utils.InternalServerError(c, "查询分类失败")
		return
	}
	if category == nil {
		utils.BadRequest(c, "分类不存在")
		return
	}

	website := &model.Website{
		Title:       req.Title,
		Url:         req.Url,
		Description: req.Description,
		Icon:        req.Icon,
		CategoryID:  req.CategoryID,
		IsFeatured:  req.IsFeatured,
		IsShow:      true,
		Sort:        req.Sort,
	}
	website.SetTags(req.Tags)
	if req.IsShow != nil {
		website.IsShow = *req.IsShow
	}

	if err := h.Repos.Website.Create(website); err != nil {
		utils.InternalServerError(c, "创建失败: "+err.Error())
		return
	}

	if website.Icon == "" {
		h.Favicon.ResolveWebsiteAsync(website.ID, website.Url)
	}
	utils.Success(c, website)
}

// AdminGetWebsite 网站详情
func (h *Handler) AdminGetWebsite(c *gin.Context) {
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
	utils.Success(c, website)
}

// AdminUpdateWebsite 更新网站
func (h *Handler) AdminUpdateWebsite(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	existing, err := h.Repos.Website.FindByID(uint(id))
	if err != nil {
		utils.InternalServerError(c, "查询网站失败")
		return
	}
	if existing == nil {
		utils.NotFound(c, "网站不存在")
		return
	}

	var req WebsiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "名称、网址和分类不能为空，且网址格式需正确")
		return
	}

	category, err := h.Repos.Category.FindByID(req.CategoryID)
	if err != nil {
		utils.InternalServerError(c, "查询分类失败")
		return
	}
	if category == nil {
		utils.BadRequest(c, "分类不存在")
		return
	}

	existing.Title = req.Title
	existing.Url = req.Url
	existing.Description = req.Description
	existing.Icon = req.Icon
	existing.CategoryID = req.CategoryID
	existing.IsFeatured = req.IsFeatured
	existing.Sort = req.Sort
	existing.SetTags(req.Tags)
	if req.IsShow != nil {
		existing.IsShow = *req.IsShow
	}

	if err := h.Repos.Website.Update(existing); err != nil {
		utils.InternalServerError(c, "更新失败")
		return
	}

	if existing.Icon == "" {
		h.Favicon.ResolveWebsiteAsync(existing.ID, existing.Url)
	}
	utils.Success(c, existing)
}

// AdminDeleteWebsite 删除网站
func (h *Handler) AdminDeleteWebsite(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	if err := h.Repos.Website.Delete(uint(id)); err != nil {
		utils.InternalServerError(c, "删除失败")
		return
	}
	utils.Success(c, nil)
}

// AdminReorderWebsites 批量调整网站排序
func (h *Handler) AdminReorderWebsites(c *gin.Context) {
	var orders []repository.SortOrder
	if err := c.ShouldBindJSON(&orders); err != nil || len(orders) == 0 {
		utils.BadRequest(c, "排序数据不能为空")
		return
	}

	if err := h.Repos.Website.Reorder(orders); err != nil {
		utils.InternalServerError(c, "排序更新失败")
		return
	}
	utils.Success(c, nil)
}
