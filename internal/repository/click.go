package repository

import (
	"time"

	"github.com/user/webnav/internal/model"
	"gorm.io/gorm"
)

// ClickRepository 点击日志仓库，只写不改
type ClickRepository struct {
	db *gorm.DB
}

// NewClickRepository 创建点击日志仓库
func NewClickRepository(db *gorm.DB) *ClickRepository {
	return &ClickRepository{db: db}
}

// Create 记录一次点击
func (r *ClickRepository) Create(click *model.Click) error {
	click.CreatedAt = time.Now()
	return r.db.Create(click).Error
}
