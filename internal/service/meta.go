package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/webnav/internal/model"
	"github.com/user/webnav/internal/utils"
)

// MetaService 抓取网页元信息，供后台新增网站时预填表单
type MetaService struct {
	client *utils.HTTPClient
}

// NewMetaService 创建元信息抓取服务
func NewMetaService(timeout time.Duration) *MetaService {
	return &MetaService{
		client: utils.NewHTTPClient(timeout),
	}
}

// Fetch 抓取页面标题、描述和声明的图标
func (s *MetaService) Fetch(ctx context.Context, rawURL string) (*model.WebsiteMeta, error) {
	base, err := url.Parse(rawURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("网址格式不正确")
	}

	resp, err := s.client.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("请求返回状态码: %d", resp.StatusCode)
	}

	body, err := utils.DecodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("解析页面失败: %w", err)
	}

	meta := &model.WebsiteMeta{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	// 描述优先取 og:description
	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		meta.Description = strings.TrimSpace(desc)
	}
	if meta.Description == "" {
		if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			meta.Description = strings.TrimSpace(desc)
		}
	}

	// 页面声明的图标，相对路径补全成绝对地址
	doc.Find(`link[rel~="icon"], link[rel="shortcut icon"], link[rel="apple-touch-icon"]`).
		EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, ok := sel.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return true
			}
			if iconURL, err := base.Parse(strings.TrimSpace(href)); err == nil {
				meta.IconUrl = iconURL.String()
				return false
			}
			return true
		})

	return meta, nil
}
