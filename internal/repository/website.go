package repository

import (
	"errors"
	"time"

	"github.com/user/webnav/internal/model"
	"gorm.io/gorm"
)

// WebsiteRepository 网站仓库
type WebsiteRepository struct {
	db *gorm.DB
}

// NewWebsiteRepository 创建网站仓库
func NewWebsiteRepository(db *gorm.DB) *WebsiteRepository {
	return &WebsiteRepository{db: db}
}

// WebsiteFilter 前台列表过滤条件
type WebsiteFilter struct {
	CategorySlug string
	FeaturedOnly bool
	Search       string
	SortBy       string // clickCount（默认）| createdAt
	Limit        int
	Offset       int
}

// Create 创建网站
func (r *WebsiteRepository) Create(website *model.Website) error {
	website.CreatedAt = time.Now()
	website.ClickCount = 0
	return r.db.Create(website).Error
}

// Update 更新网站
func (r *WebsiteRepository) Update(website *model.Website) error {
	return r.db.Model(&model.Website{}).Where("id = ?", website.ID).
		Select("title", "url", "description", "icon", "category_id", "tags",
			"is_featured", "is_show", "sort").
		Updates(website).Error
}

// Delete 删除网站
func (r *WebsiteRepository) Delete(id uint) error {
	return r.db.Delete(&model.Website{}, id).Error
}

// FindByID 根据 ID 查找网站
func (r *WebsiteRepository) FindByID(id uint) (*model.Website, error) {
	var website model.Website
	err := r.db.Preload("Category").First(&website, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &website, nil
}

// List 前台列表（带过滤、排序、分页）
func (r *WebsiteRepository) List(filter WebsiteFilter) ([]*model.Website, error) {
	query := r.db.Model(&model.Website{}).Preload("Category").Where("websites.is_show = ?", true)

	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = websites.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.FeaturedOnly {
		query = query.Where("websites.is_featured = ?", true)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("websites.title ILIKE ? OR websites.description ILIKE ? OR websites.tags ILIKE ?",
			like, like, like)
	}

	if filter.SortBy == "createdAt" {
		query = query.Order("websites.created_at DESC")
	} else {
		query = query.Order("websites.click_count DESC").Order("websites.sort ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var websites []*model.Website
	if err := query.Find(&websites).Error; err != nil {
		return nil, err
	}
	return websites, nil
}

// ListAdmin 后台列出所有网站（按创建时间倒序）
func (r *WebsiteRepository) ListAdmin() ([]*model.Website, error) {
	var websites []*model.Website
	err := r.db.Preload("Category").Order("created_at DESC").Find(&websites).Error
	if err != nil {
		return nil, err
	}
	return websites, nil
}

// Hot 点击量最高的可见网站
func (r *WebsiteRepository) Hot(limit int) ([]*model.Website, error) {
	var websites []*model.Website
	err := r.db.Preload("Category").
		Where("is_show = ? AND click_count > 0", true).
		Order("click_count DESC").
		Limit(limit).
		Find(&websites).Error
	if err != nil {
		return nil, err
	}
	return websites, nil
}

// Featured 推荐位网站
func (r *WebsiteRepository) Featured(limit int) ([]*model.Website, error) {
	var websites []*model.Website
	err := r.db.Preload("Category").
		Where("is_show = ? AND is_featured = ?", true, true).
		Order("sort ASC").
		Limit(limit).
		Find(&websites).Error
	if err != nil {
		return nil, err
	}
	return websites, nil
}

// IncrementClick 点击计数 +1
func (r *WebsiteRepository) IncrementClick(id uint) error {
	return r.db.Model(&model.Website{}).Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
}

// UpdateIcon 覆盖写入图标（批量同步 all 模式使用）
func (r *WebsiteRepository) UpdateIcon(id uint, icon string) error {
	return r.db.Model(&model.Website{}).Where("id = ?", id).
		Update("icon", icon).Error
}

// UpdateIconIfEmpty 仅在图标为空时写入（解析结果只写一次）
func (r *WebsiteRepository) UpdateIconIfEmpty(id uint, icon string) error {
	return r.db.Model(&model.Website{}).
		Where("id = ? AND (icon IS NULL OR icon = '')", id).
		Update("icon", icon).Error
}

// UpdateIconByDomain 给同域名下所有没有图标的网站补图标
func (r *WebsiteRepository) UpdateIconByDomain(domain, icon string) error {
	return r.db.Model(&model.Website{}).
		Where("url LIKE ? AND (icon IS NULL OR icon = '')", "%"+domain+"%").
		Update("icon", icon).Error
}

// FindIconByDomain 查找该域名下任意已有的图标
func (r *WebsiteRepository) FindIconByDomain(domain string) (string, error) {
	var website model.Website
	err := r.db.Select("icon").
		Where("url LIKE ? AND icon <> ''", "%"+domain+"%").
		First(&website).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return website.Icon, nil
}

// ListForIconSync 图标批量同步的候选网站
// all 为 true 时取所有网站，否则只取没有图标的
func (r *WebsiteRepository) ListForIconSync(all bool, limit int) ([]*model.Website, error) {
	query := r.db.Select("id", "url", "icon")
	if !all {
		query = query.Where("icon IS NULL OR icon = ''")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var websites []*model.Website
	if err := query.Find(&websites).Error; err != nil {
		return nil, err
	}
	return websites, nil
}

// Reorder 批量更新排序
func (r *WebsiteRepository) Reorder(orders []SortOrder) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			if err := tx.Model(&model.Website{}).Where("id = ?", o.ID).
				Update("sort", o.Sort).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
