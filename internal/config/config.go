package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// Config 应用配置
type Config struct {
	Env               string
	AppSecret         string
	DatabaseURL       string
	Port              string
	SiteName          string
	SiteUrl           string
	AdminUsername     string
	AdminPasswordHash []byte // 启动时对 ADMIN_PASSWORD 做 bcrypt 哈希，登录时恒定时间比较
	RateLimitPerMin   int    // 每 IP 每分钟最大请求数（生产环境收紧）
	SessionMaxAge     int    // Session Cookie 有效期（秒）
}

// Load 加载配置
func Load() *Config {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "webnav")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	// 兼容原部署使用的 NODE_ENV
	env := getEnv("APP_ENV", getEnv("NODE_ENV", "development"))

	appSecret := getEnv("APP_SECRET", "your-secret-key-change-in-production")
	if env == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	adminPassword := getEnv("ADMIN_PASSWORD", "admin123")
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("管理员密码哈希失败: %v", err)
	}

	// 本地开发环境放宽频率限制，避免调试时频繁 429
	rateLimit := 1000
	if env == "production" {
		rateLimit = 10
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rateLimit = n
		}
	}

	return &Config{
		Env:               env,
		AppSecret:         appSecret,
		DatabaseURL:       dbURL,
		Port:              getEnv("PORT", "5006"),
		SiteName:          getEnv("SITE_NAME", "WebNav"),
		SiteUrl:           getEnv("SITE_URL", "http://localhost:5006"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: passwordHash,
		RateLimitPerMin:   rateLimit,
		SessionMaxAge:     86400 * 7, // 7 天
	}
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
