package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
<title> 示例站点 </title>
<meta name="description" content="备选描述">
<meta property="og:description" content="OG 描述优先">
<link rel="shortcut icon" href="/static/favicon.ico">
</head>
<body></body>
</html>`))
	}))
	defer ts.Close()

	s := NewMetaService(5 * time.Second)
	meta, err := s.Fetch(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "示例站点", meta.Title)
	assert.Equal(t, "OG 描述优先", meta.Description)
	// 相对路径补全成绝对地址
	assert.Equal(t, ts.URL+"/static/favicon.ico", meta.IconUrl)
}

func TestMetaFetchFallbackDescription(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
<title>无 OG</title>
<meta name="description" content="普通描述">
</head></html>`))
	}))
	defer ts.Close()

	s := NewMetaService(5 * time.Second)
	meta, err := s.Fetch(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "普通描述", meta.Description)
	assert.Empty(t, meta.IconUrl)
}

func TestMetaFetchRejectsInvalidURL(t *testing.T) {
	s := NewMetaService(time.Second)

	_, err := s.Fetch(context.Background(), "not-a-url")
	assert.Error(t, err)

	_, err = s.Fetch(context.Background(), "ftp://example.com")
	assert.Error(t, err)
}

func TestMetaFetchNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer ts.Close()

	s := NewMetaService(time.Second)
	_, err := s.Fetch(context.Background(), ts.URL)
	assert.Error(t, err)
}
