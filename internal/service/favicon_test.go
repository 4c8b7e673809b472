package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestService 返回一个指向测试服务器的解析服务
// scheme 改为 http，图标 API 也指向本地，避免真实外网请求
func newTestService(apiPattern string) *FaviconService {
	s := NewFaviconService(nil)
	s.scheme = "http"
	s.probeTimeout = 2 * time.Second
	if apiPattern != "" {
		s.iconAPIs = []string{apiPattern}
	} else {
		s.iconAPIs = nil
	}
	return s
}

func testDomain(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	return u.Host
}

func TestResolveConventionalPathFirstWins(t *testing.T) {
	var hits []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		switch r.URL.Path {
		case "/favicon.ico":
			http.NotFound(w, r)
		case "/favicon.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	s := newTestService("")
	domain := testDomain(t, ts)

	icon, ok := s.Resolve(context.Background(), domain)
	require.True(t, ok)
	assert.Equal(t, ts.URL+"/favicon.png", icon)

	// /favicon.ico 在前但 404，命中 /favicon.png 后不再探测后续路径
	assert.Equal(t, []string{"/favicon.ico", "/favicon.png"}, hits)
}

func TestResolveRejectsNonImageContentType(t *testing.T) {
	// 所有约定路径都返回 HTML（常见于把 404 重写到首页的站点）
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not found</html>"))
	}))
	defer ts.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("icon"))
	}))
	defer api.Close()

	s := newTestService(api.URL + "/ip3/%s.ico")
	domain := testDomain(t, ts)

	icon, ok := s.Resolve(context.Background(), domain)
	require.True(t, ok)

	// 约定路径全被拒，落到图标 API；API 不校验 Content-Type
	assert.Contains(t, icon, api.URL)
}

func TestResolveFollowsRedirect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/favicon.ico":
			http.Redirect(w, r, "/real-icon.png", http.StatusMovedPermanently)
		case "/real-icon.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	s := newTestService("")
	domain := testDomain(t, ts)

	icon, ok := s.Resolve(context.Background(), domain)
	require.True(t, ok)
	// 记录的是重定向后的最终地址
	assert.Equal(t, ts.URL+"/real-icon.png", icon)
}

func TestResolveFailureCachedAsPlaceholder(t *testing.T) {
	var requests int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	s := newTestService(ts.URL + "/api/%s")
	domain := testDomain(t, ts)

	_, ok := s.Resolve(context.Background(), domain)
	require.False(t, ok)

	probed := atomic.LoadInt64(&requests)
	assert.Equal(t, int64(len(s.probePaths)+1), probed)

	// 失败结果也缓存，TTL 内不再发起任何探测
	_, ok = s.Resolve(context.Background(), domain)
	assert.False(t, ok)
	assert.Equal(t, probed, atomic.LoadInt64(&requests))
}

func TestResolveCancelledContextNotCached(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/x-icon")
		w.Write([]byte("icon"))
	}))
	defer ts.Close()

	s := newTestService("")
	domain := testDomain(t, ts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := s.Resolve(ctx, domain)
	require.False(t, ok)

	// 取消导致的失败不写占位缓存，健康域名下一次请求照常解析
	icon, ok := s.Resolve(context.Background(), domain)
	require.True(t, ok)
	assert.Equal(t, ts.URL+"/favicon.ico", icon)
}

func TestResolveStats(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/x-icon")
		w.Write([]byte("icon"))
	}))
	defer ts.Close()

	s := newTestService("")
	domain := testDomain(t, ts)

	// 第一次未命中缓存，第二次命中
	_, ok := s.Resolve(context.Background(), domain)
	require.True(t, ok)
	_, ok = s.Resolve(context.Background(), domain)
	require.True(t, ok)

	stats := s.Stats()
	assert.Equal(t, int64(2), stats.TotalRequests)
	assert.Equal(t, int64(2), stats.SuccessfulRequests)
	assert.Equal(t, int64(0), stats.FailedRequests)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
	assert.Equal(t, "100.00%", stats.SuccessRate)
	assert.Equal(t, "50.00%", stats.CacheHitRate)

	s.ResetStats()
	stats = s.Stats()
	assert.Equal(t, int64(0), stats.TotalRequests)
	assert.Equal(t, "0.00%", stats.SuccessRate)
	assert.Equal(t, "0.00%", stats.CacheHitRate)
}

func TestIconForDomainReturnsPlaceholderOnFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	s := newTestService("")
	domain := testDomain(t, ts)

	icon := s.IconForDomain(context.Background(), domain)
	assert.Equal(t, PlaceholderIcon, icon)

	// 占位结果同样缓存
	icon = s.IconForDomain(context.Background(), domain)
	assert.Equal(t, PlaceholderIcon, icon)

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.CacheHits)
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		want    string
		wantErr bool
	}{
		{name: "https 带 www", rawURL: "https://www.example.com/path", want: "example.com"},
		{name: "http 带端口", rawURL: "http://example.com:8080", want: "example.com"},
		{name: "子域名保留", rawURL: "https://docs.example.com", want: "docs.example.com"},
		{name: "非 http 协议", rawURL: "ftp://example.com", wantErr: true},
		{name: "缺少协议", rawURL: "example.com", wantErr: true},
		{name: "空字符串", rawURL: "", wantErr: true},
		{name: "javascript 伪协议", rawURL: "javascript:alert(1)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractDomain(tt.rawURL)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
