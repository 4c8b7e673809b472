package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/user/webnav/internal/repository"
	"golang.org/x/sync/singleflight"
)

// PlaceholderIcon 默认占位图标（内联 SVG 问号）
// 解析彻底失败时返回给前端，同时写入缓存避免同一域名在 TTL 内反复探测
const PlaceholderIcon = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' width='128' height='128' viewBox='0 0 128 128'%3E%3Crect width='128' height='128' fill='%23e5e7eb' rx='24'/%3E%3Ctext x='50%25' y='50%25' text-anchor='middle' dy='.3em' font-family='Arial, sans-serif' font-size='48' fill='%236b7280'%3E?%3C/text%3E%3C/svg%3E"

// 约定俗成的图标路径，按优先级依次探测
var defaultProbePaths = []string{
	"/favicon.ico",
	"/favicon.png",
	"/apple-touch-icon.png",
	"/apple-touch-icon-precomposed.png",
	"/android-chrome-192x192.png",
	"/android-chrome-512x512.png",
	"/mstile-150x150.png",
}

// 第三方图标 API 兜底，%s 为域名
var defaultIconAPIs = []string{
	"https://www.google.com/s2/favicons?domain=%s&sz=128",
	"https://icons.duckduckgo.com/ip3/%s.ico",
	"https://favicon.yandex.net/favicon/%s",
}

const faviconUserAgent = "Mozilla/5.0 (compatible; FaviconFetcher/1.0)"

// FaviconStats 解析统计快照
type FaviconStats struct {
	TotalRequests      int64     `json:"totalRequests"`
	SuccessfulRequests int64     `json:"successfulRequests"`
	FailedRequests     int64     `json:"failedRequests"`
	CacheHits          int64     `json:"cacheHits"`
	CacheMisses        int64     `json:"cacheMisses"`
	SuccessRate        string    `json:"successRate"`
	CacheHitRate       string    `json:"cacheHitRate"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

// SyncItem 批量同步单条结果
type SyncItem struct {
	ID      uint   `json:"id"`
	Url     string `json:"url"`
	Icon    string `json:"icon"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SyncResult 批量同步汇总
type SyncResult struct {
	Message string     `json:"message"`
	Total   int        `json:"total"`
	Updated int        `json:"updated"`
	Results []SyncItem `json:"results"`
}

// FaviconService 网站图标解析服务
// 缓存、统计都在进程内存里，重启即丢，单实例够用
type FaviconService struct {
	websites *repository.WebsiteRepository
	client   *http.Client
	cache    *gocache.Cache
	sf       singleflight.Group

	// 测试时可替换
	scheme       string
	probePaths   []string
	iconAPIs     []string
	probeTimeout time.Duration

	mu                 sync.Mutex
	totalRequests      int64
	successfulRequests int64
	failedRequests     int64
	cacheHits          int64
	cacheMisses        int64
	lastUpdated        time.Time
}

// NewFaviconService 创建图标解析服务，websites 仅用于落库，可为 nil
func NewFaviconService(websites *repository.WebsiteRepository) *FaviconService {
	return &FaviconService{
		websites: websites,
		// 单次探测靠 context 超时控制，客户端默认跟随重定向
		client:       &http.Client{},
		cache:        gocache.New(24*time.Hour, time.Hour),
		scheme:       "https",
		probePaths:   defaultProbePaths,
		iconAPIs:     defaultIconAPIs,
		probeTimeout: 3 * time.Second,
		lastUpdated:  time.Now(),
	}
}

// Resolve 解析域名的图标地址
// 返回 ok=false 表示没有可用图标，调用方应使用占位图
func (s *FaviconService) Resolve(ctx context.Context, domain string) (string, bool) {
	if icon, found := s.cached(domain); found {
		s.record(icon != PlaceholderIcon, true)
		if icon == PlaceholderIcon {
			return "", false
		}
		return icon, true
	}
	return s.resolveAndCache(ctx, domain)
}

// IconForDomain 图标代理接口的完整查找链：缓存 → 数据库 → 远程探测 → 占位图
// 始终返回一个可重定向的地址
func (s *FaviconService) IconForDomain(ctx context.Context, domain string) string {
	if icon, found := s.cached(domain); found {
		s.record(icon != PlaceholderIcon, true)
		return icon
	}

	// 库里同域名网站已有图标时直接复用
	if s.websites != nil {
		icon, err := s.websites.FindIconByDomain(domain)
		if err != nil {
			log.Printf("[FaviconService] 查询域名图标失败 %s: %v", domain, err)
		}
		if icon != "" {
			s.cache.Set(domain, icon, gocache.DefaultExpiration)
			s.record(true, false)
			return icon
		}
	}

	icon, ok := s.resolveAndCache(ctx, domain)
	if !ok {
		return PlaceholderIcon
	}

	// 异步补全同域名下还没有图标的网站，不阻塞重定向
	if s.websites != nil {
		go func() {
			if err := s.websites.UpdateIconByDomain(domain, icon); err != nil {
				log.Printf("[FaviconService] 批量回填域名图标失败 %s: %v", domain, err)
			}
		}()
	}
	return icon
}

// ResolveWebsiteAsync 网站创建/编辑后异步补图标，不阻塞请求
func (s *FaviconService) ResolveWebsiteAsync(websiteID uint, rawURL string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		domain, err := ExtractDomain(rawURL)
		if err != nil {
			return
		}

		icon, ok := s.Resolve(ctx, domain)
		if !ok || s.websites == nil {
			return
		}

		// 只在仍为空时写入，不覆盖管理员手动设置的图标
		if err := s.websites.UpdateIconIfEmpty(websiteID, icon); err != nil {
			log.Printf("[FaviconService] 回写网站图标失败 id=%d: %v", websiteID, err)
		}
	}()
}

// SyncIcons 批量同步网站图标
// all 为 true 时重新解析所有网站，否则只处理没有图标的
func (s *FaviconService) SyncIcons(ctx context.Context, all bool, batchSize int) (*SyncResult, error) {
	if s.websites == nil {
		return nil, fmt.Errorf("未配置网站仓库")
	}
	if batchSize <= 0 {
		batchSize = 10
	}

	websites, err := s.websites.ListForIconSync(all, batchSize)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		Total:   len(websites),
		Results: make([]SyncItem, 0, len(websites)),
	}

	// 逐个处理，避免对目标站点和图标 API 突发大量请求
	for _, website := range websites {
		item := SyncItem{ID: website.ID, Url: website.Url}

		domain, err := ExtractDomain(website.Url)
		if err != nil {
			item.Error = "网址格式不正确"
			result.Results = append(result.Results, item)
			continue
		}

		icon, ok := s.Resolve(ctx, domain)
		if !ok {
			item.Error = "未找到图标"
			result.Results = append(result.Results, item)
			continue
		}

		if all {
			err = s.websites.UpdateIcon(website.ID, icon)
		} else {
			err = s.websites.UpdateIconIfEmpty(website.ID, icon)
		}
		if err != nil {
			item.Error = err.Error()
			result.Results = append(result.Results, item)
			continue
		}

		item.Icon = icon
		item.Success = true
		result.Updated++
		result.Results = append(result.Results, item)
	}

	result.Message = fmt.Sprintf("已更新 %d / %d 个网站", result.Updated, result.Total)
	return result, nil
}

// Stats 读取统计快照
func (s *FaviconService) Stats() FaviconStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := FaviconStats{
		TotalRequests:      s.totalRequests,
		SuccessfulRequests: s.successfulRequests,
		FailedRequests:     s.failedRequests,
		CacheHits:          s.cacheHits,
		CacheMisses:        s.cacheMisses,
		SuccessRate:        "0.00%",
		CacheHitRate:       "0.00%",
		LastUpdated:        s.lastUpdated,
	}
	if s.totalRequests > 0 {
		stats.SuccessRate = fmt.Sprintf("%.2f%%", float64(s.successfulRequests)/float64(s.totalRequests)*100)
		stats.CacheHitRate = fmt.Sprintf("%.2f%%", float64(s.cacheHits)/float64(s.totalRequests)*100)
	}
	return stats
}

// ResetStats 清零统计
func (s *FaviconService) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRequests = 0
	s.successfulRequests = 0
	s.failedRequests = 0
	s.cacheHits = 0
	s.cacheMisses = 0
	s.lastUpdated = time.Now()
}

func (s *FaviconService) cached(domain string) (string, bool) {
	if v, found := s.cache.Get(domain); found {
		return v.(string), true
	}
	return "", false
}

func (s *FaviconService) resolveAndCache(ctx context.Context, domain string) (string, bool) {
	// 并发解析同一域名时只探测一次
	v, _, _ := s.sf.Do(domain, func() (interface{}, error) {
		if icon := s.probeConventional(ctx, domain); icon != "" {
			return icon, nil
		}
		return s.probeIconAPIs(ctx, domain), nil
	})

	icon := v.(string)
	if icon == "" {
		// 调用方取消（如浏览器中断加载）不代表域名没有图标，
		// 不写占位缓存，留给下一次请求重新探测
		if ctx.Err() != nil {
			s.record(false, false)
			return "", false
		}
		// 真正的解析失败才缓存，TTL 内不再探测
		s.cache.Set(domain, PlaceholderIcon, gocache.DefaultExpiration)
		s.record(false, false)
		return "", false
	}

	s.cache.Set(domain, icon, gocache.DefaultExpiration)
	s.record(true, false)
	return icon, true
}

// probeConventional 依次探测约定路径，第一个返回 2xx 且为图片的胜出
func (s *FaviconService) probeConventional(ctx context.Context, domain string) string {
	for _, path := range s.probePaths {
		target := s.scheme + "://" + domain + path
		if icon := s.probeOne(ctx, target, true); icon != "" {
			return icon
		}
	}
	return ""
}

// probeIconAPIs 第三方图标 API 兜底，2xx 即接受
func (s *FaviconService) probeIconAPIs(ctx context.Context, domain string) string {
	for _, pattern := range s.iconAPIs {
		target := fmt.Sprintf(pattern, domain)
		if icon := s.probeOne(ctx, target, false); icon != "" {
			return icon
		}
	}
	return ""
}

// probeOne 单次探测，失败一律返回空串让调用方尝试下一个候选
func (s *FaviconService) probeOne(ctx context.Context, target string, requireImage bool) string {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, "GET", target, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", faviconUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}
	if requireImage && !strings.Contains(resp.Header.Get("Content-Type"), "image") {
		return ""
	}

	// 跟随重定向后的最终地址
	return resp.Request.URL.String()
}

func (s *FaviconService) record(success, cacheHit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRequests++
	if success {
		s.successfulRequests++
	} else {
		s.failedRequests++
	}
	if cacheHit {
		s.cacheHits++
	} else {
		s.cacheMisses++
	}
	s.lastUpdated = time.Now()
}

// ExtractDomain 从网址提取域名，去掉 www. 前缀
func ExtractDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("不支持的协议: %s", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("网址缺少域名")
	}
	return strings.TrimPrefix(host, "www."), nil
}
