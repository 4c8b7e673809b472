package model

import (
	"strings"
	"time"
)

// Category 网站分类
type Category struct {
	ID          uint      `json:"id" db:"id" gorm:"primaryKey"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug" gorm:"unique"` // URL 标识，唯一
	Description string    `json:"description" db:"description"`
	Color       string    `json:"color" db:"color"` // 前端展示用的主题色
	Icon        string    `json:"icon" db:"icon"`
	Sort        int       `json:"sort" db:"sort"`
	IsShow      bool      `json:"is_show" db:"is_show"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	WebsiteCount int64 `json:"website_count" db:"-" gorm:"-"` // 关联查询时填充
}

// Website 收录的网站
type Website struct {
	ID          uint      `json:"id" db:"id" gorm:"primaryKey"`
	Title       string    `json:"title" db:"title"`
	Url         string    `json:"url" db:"url"`
	Description string    `json:"description" db:"description"`
	Icon        string    `json:"icon" db:"icon"` // 为空时由 FaviconService 异步补全
	CategoryID  uint      `json:"category_id" db:"category_id" gorm:"index"`
	Tags        string    `json:"tags" db:"tags"` // 逗号分隔存储
	IsFeatured  bool      `json:"is_featured" db:"is_featured"`
	IsShow      bool      `json:"is_show" db:"is_show"`
	Sort        int       `json:"sort" db:"sort"`
	ClickCount  int       `json:"click_count" db:"click_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// GetTags 获取标签切片
func (w *Website) GetTags() []string {
	if w.Tags == "" {
		return nil
	}
	res := []string{}
	parts := strings.Split(w.Tags, ",")
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			res = append(res, s)
		}
	}
	return res
}

// SetTags 以逗号拼接方式写入标签
func (w *Website) SetTags(tags []string) {
	cleaned := []string{}
	for _, t := range tags {
		if s := strings.TrimSpace(t); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	w.Tags = strings.Join(cleaned, ",")
}

// Click 点击日志，只追加不修改
type Click struct {
	ID        uint      `json:"id" db:"id" gorm:"primaryKey"`
	WebsiteID uint      `json:"website_id" db:"website_id" gorm:"index"`
	IP        string    `json:"ip" db:"ip"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	Referrer  string    `json:"referrer" db:"referrer"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WebsiteMeta 抓取到的网页元信息（后台表单预填）
type WebsiteMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IconUrl     string `json:"icon_url"` // 页面声明的 <link rel="icon">，可能为空
}
