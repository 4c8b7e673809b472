package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/webnav/internal/model"
	"github.com/user/webnav/internal/repository"
	"github.com/user/webnav/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Category{}, &model.Website{}, &model.Click{}))
	return repository.NewRepositories(db)
}

func TestAdminDeleteCategoryRejectsNonEmpty(t *testing.T) {
	repos := newTestRepos(t)
	h := NewHandler(repos, testConfig(t))
	r := gin.New()
	r.DELETE("/categories/:id", h.AdminDeleteCategory)

	category := &model.Category{Name: "开发工具", Slug: "dev-tools", IsShow: true}
	require.NoError(t, repos.Category.Create(category))
	website := &model.Website{Title: "站点", Url: "https://example.com", CategoryID: category.ID, IsShow: true}
	require.NoError(t, repos.Website.Create(website))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", fmt.Sprintf("/categories/%d", category.ID), nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 错误消息带上网站数量
	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "1 个网站")

	// 网站删掉后分类可以删除
	require.NoError(t, repos.Website.Delete(website.ID))

	w = httptest.NewRecorder()
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/categories/%d", category.ID), nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminDeleteCategoryNotFound(t *testing.T) {
	h := NewHandler(newTestRepos(t), testConfig(t))
	r := gin.New()
	r.DELETE("/categories/:id", h.AdminDeleteCategory)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/categories/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/categories/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
