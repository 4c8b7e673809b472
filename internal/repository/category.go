package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/user/webnav/internal/model"
	"gorm.io/gorm"
)

// ErrCategoryNotEmpty 分类下仍有网站时禁止删除
var ErrCategoryNotEmpty = errors.New("分类下仍有网站")

// CategoryRepository 分类仓库
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create 创建分类
func (r *CategoryRepository) Create(category *model.Category) error {
	category.CreatedAt = time.Now()
	return r.db.Create(category).Error
}

// Update 更新分类
func (r *CategoryRepository) Update(category *model.Category) error {
	return r.db.Model(&model.Category{}).Where("id = ?", category.ID).
		Select("name", "slug", "description", "color", "icon", "sort", "is_show").
		Updates(category).Error
}

// Delete 删除分类，分类下仍有网站时拒绝
func (r *CategoryRepository) Delete(id uint) error {
	count, err := r.CountWebsites(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: 该分类下有 %d 个网站，请先删除网站或将其移动到其他分类", ErrCategoryNotEmpty, count)
	}
	return r.db.Delete(&model.Category{}, id).Error
}

// FindByID 根据 ID 查找分类
func (r *CategoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	err := r.db.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindBySlug 根据 Slug 查找分类
func (r *CategoryRepository) FindBySlug(slug string) (*model.Category, error) {
	var category model.Category
	err := r.db.Where("slug = ?", slug).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// SlugExists 检查 Slug 是否已被其他分类占用
func (r *CategoryRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Category{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

// CountWebsites 统计分类下的网站数量
func (r *CategoryRepository) CountWebsites(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Website{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

// ListAll 后台列出所有分类（含网站数量）
func (r *CategoryRepository) ListAll() ([]*model.Category, error) {
	return r.list(false)
}

// ListVisible 前台列出可见分类（只统计可见网站）
func (r *CategoryRepository) ListVisible() ([]*model.Category, error) {
	return r.list(true)
}

func (r *CategoryRepository) list(visibleOnly bool) ([]*model.Category, error) {
	var categories []*model.Category
	query := r.db.Order("sort ASC, id ASC")
	if visibleOnly {
		query = query.Where("is_show = ?", true)
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}

	for _, category := range categories {
		countQuery := r.db.Model(&model.Website{}).Where("category_id = ?", category.ID)
		if visibleOnly {
			countQuery = countQuery.Where("is_show = ?", true)
		}
		if err := countQuery.Count(&category.WebsiteCount).Error; err != nil {
			return nil, err
		}
	}
	return categories, nil
}

// FindFirst 取排序最靠前的分类（导入时的兜底分类）
func (r *CategoryRepository) FindFirst() (*model.Category, error) {
	var category model.Category
	err := r.db.Order("sort ASC, id ASC").First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Reorder 批量更新排序
func (r *CategoryRepository) Reorder(orders []SortOrder) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			if err := tx.Model(&model.Category{}).Where("id = ?", o.ID).
				Update("sort", o.Sort).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SortOrder 排序项
type SortOrder struct {
	ID   uint `json:"id" binding:"required"`
	Sort int  `json:"sort"`
}
