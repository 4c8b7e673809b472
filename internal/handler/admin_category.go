package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/webnav/internal/model"
	"github.com/user/webnav/internal/repository"
	"github.com/user/webnav/internal/utils"
)

// ==================== 管理后台：分类 ====================

// CategoryRequest 分类创建/更新请求
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Sort        int    `json:"sort"`
	IsShow      *bool  `json:"is_show"`
}

// AdminListCategories 后台分类列表
func (h *Handler) AdminListCategories(c *gin.Context) {
	categories, err := h.Repos.Category.ListAll()
	if err != nil {
		utils.InternalServerError(c, "获取分类列表失败")
		return
	}
	utils.Success(c, categories)
}

// AdminCreateCategory 创建分类
func (h *Handler) AdminCreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "名称和标识不能为空")
		return
	}

	existing, err := h.Repos.Category.FindBySlug(req.Slug)
	if err != nil {
		utils.InternalServerError(c, "查询分类失败")
		return
	}
	if existing != nil {
		utils.BadRequest(c, "该标识已被使用")
		return
	}

	category := &model.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Sort:        req.Sort,
		IsShow:      true,
	}
	if req.IsShow != nil {
		category.IsShow = *req.IsShow
	}

	if err := h.Repos.Category.Create(category); err != nil {
		utils.InternalServerError(c, "创建失败: "+err.Error())
		return
	}
	utils.Success(c, category)
}

// AdminGetCategory 分类详情
func (h *Handler) AdminGetCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	category, err := h.Repos.Category.FindByID(uint(id))
	if err != nil {
		utils.InternalServerError(c, "查询分类失败")
		return
	}
	if category == nil {
		utils.NotFound(c, "分类不存在")
		return
	}
	utils.Success(c, category)
}

// AdminUpdateCategory 更新分类
func (h *Handler) AdminUpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	existing, err := h.Repos.Category.FindByID(uint(id))
	if err != nil {
		utils.InternalServerError(c, "查询分类失败")
		return
	}
	if existing == nil {
		utils.NotFound(c, "分类不存在")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "名称和标识不能为空")
		return
	}

	// 新标识不能与其他分类冲突
	taken, err := h.Repos.Category.SlugExists(req.Slug, existing.ID)
	if err != nil {
		utils.InternalServerError(c, "查询分类失败")
		return
	}
	if taken {
		utils.BadRequest(c, "该标识已被其他分类使用")
		return
	}

	existing.Name = req.Name
	existing.Slug = req.Slug
	existing.Description = req.Description
	existing.Color = req.Color
	existing.Icon = req.Icon
	existing.Sort = req.Sort
	if req.IsShow != nil {
		existing.IsShow = *req.IsShow
	}

	if err := h.Repos.Category.Update(existing); err != nil {
		utils.InternalServerError(c, "更新失败")
		return
	}
	utils.Success(c, existing)
}

// AdminDeleteCategory 删除分类，分类下仍有网站时拒绝
func (h *Handler) AdminDeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	category, err := h.Repos.Category.FindByID(uint(id))
	if err != nil {
		utils.InternalServerError(c, "查询分类失败")
		return
	}
	if category == nil {
		utils.NotFound(c, "分类不存在")
		return
	}

	if err := h.Repos.Category.Delete(uint(id)); err != nil {
		if errors.Is(err, repository.ErrCategoryNotEmpty) {
			utils.BadRequest(c, err.Error())
			return
		}
		utils.InternalServerError(c, "删除失败")
		return
	}
	utils.Success(c, nil)
}

// AdminReorderCategories 批量调整分类排序
func (h *Handler) AdminReorderCategories(c *gin.Context) {
	var orders []repository.SortOrder
	if err := c.ShouldBindJSON(&orders); err != nil || len(orders) == 0 {
		utils.BadRequest(c, "排序数据不能为空")
		return
	}

	if err := h.Repos.Category.Reorder(orders); err != nil {
		utils.InternalServerError(c, "排序更新失败")
		return
	}
	utils.Success(c, nil)
}
