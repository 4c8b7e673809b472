package handler

import (
	"time"

	"github.com/user/webnav/internal/config"
	"github.com/user/webnav/internal/model"
	"github.com/user/webnav/internal/repository"
	"github.com/user/webnav/internal/service"
	"github.com/user/webnav/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Repos    *repository.Repositories
	Config   *config.Config
	Favicon  *service.FaviconService
	Security *service.SecurityService
	Meta     *service.MetaService

	// 搜索结果缓存，减少重复模糊查询
	searchCache *utils.TTLCache[[]*model.Website]
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	var websiteRepo *repository.WebsiteRepository
	if repos != nil {
		websiteRepo = repos.Website
	}

	return &Handler{
		Repos:       repos,
		Config:      cfg,
		Favicon:     service.NewFaviconService(websiteRepo),
		Security:    service.NewSecurityService(cfg.RateLimitPerMin),
		Meta:        service.NewMetaService(10 * time.Second),
		searchCache: utils.NewTTLCache[[]*model.Website](500, 5*time.Minute),
	}
}
