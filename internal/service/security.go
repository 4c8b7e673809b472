package service

import (
	"log"
	"sync"
	"time"
)

const (
	// MaxLoginAttempts 触发封禁的连续失败次数
	MaxLoginAttempts = 5
	// BanDuration 封禁时长
	BanDuration = 30 * time.Minute
	// LoginAttemptWindow 失败计数的滚动窗口
	LoginAttemptWindow = 30 * time.Minute
	// RateLimitWindow 频率限制窗口
	RateLimitWindow = time.Minute
	// sweepInterval 过期数据清理间隔
	sweepInterval = 30 * time.Second
)

type loginAttempt struct {
	count       int
	lastAttempt time.Time
}

type requestWindow struct {
	count       int
	windowStart time.Time
}

// SecurityService 登录防护：IP 频率限制 + 失败封禁
// 纯内存实现，不跨实例、不落盘，重启即清零
type SecurityService struct {
	mu            sync.Mutex
	loginAttempts map[string]*loginAttempt
	bannedIPs     map[string]time.Time // IP -> 解封时间
	requestCounts map[string]*requestWindow
	limitPerMin   int

	stopCh chan struct{}
}

// NewSecurityService 创建防护服务，limitPerMin 为每 IP 每分钟最大请求数
func NewSecurityService(limitPerMin int) *SecurityService {
	return &SecurityService{
		loginAttempts: make(map[string]*loginAttempt),
		bannedIPs:     make(map[string]time.Time),
		requestCounts: make(map[string]*requestWindow),
		limitPerMin:   limitPerMin,
		stopCh:        make(chan struct{}),
	}
}

// IsIPBanned 检查 IP 是否在封禁期内，过期自动解封并清空失败计数
func (s *SecurityService) IsIPBanned(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	banUntil, ok := s.bannedIPs[ip]
	if !ok {
		return false
	}

	if !time.Now().Before(banUntil) {
		delete(s.bannedIPs, ip)
		delete(s.loginAttempts, ip)
		return false
	}
	return true
}

// RecordLoginFailure 记录一次登录失败，窗口内累计到阈值即封禁
func (s *SecurityService) RecordLoginFailure(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	attempt, ok := s.loginAttempts[ip]
	if !ok || now.Sub(attempt.lastAttempt) > LoginAttemptWindow {
		// 首次失败或超出窗口，重新计数
		s.loginAttempts[ip] = &loginAttempt{count: 1, lastAttempt: now}
		attempt = s.loginAttempts[ip]
	} else {
		attempt.count++
		attempt.lastAttempt = now
	}

	if attempt.count >= MaxLoginAttempts {
		s.bannedIPs[ip] = now.Add(BanDuration)
		log.Printf("[SecurityService] IP %s 登录失败 %d 次，封禁至 %s",
			ip, attempt.count, s.bannedIPs[ip].Format(time.RFC3339))
	}
}

// CheckRateLimit 固定窗口频率限制，窗口在首次超时请求时惰性重置
func (s *SecurityService) CheckRateLimit(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	window, ok := s.requestCounts[ip]
	if !ok || now.Sub(window.windowStart) > RateLimitWindow {
		s.requestCounts[ip] = &requestWindow{count: 1, windowStart: now}
		return true
	}

	if window.count >= s.limitPerMin {
		return false
	}
	window.count++
	return true
}

// Start 启动后台清理，定期清除过期的窗口与失败记录，防止内存无限增长
func (s *SecurityService) Start() {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop 停止后台清理
func (s *SecurityService) Stop() {
	close(s.stopCh)
}

func (s *SecurityService) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for ip, window := range s.requestCounts {
		if now.Sub(window.windowStart) > RateLimitWindow {
			delete(s.requestCounts, ip)
		}
	}
	for ip, attempt := range s.loginAttempts {
		if now.Sub(attempt.lastAttempt) > LoginAttemptWindow {
			delete(s.loginAttempts, ip)
		}
	}
	for ip, banUntil := range s.bannedIPs {
		if !now.Before(banUntil) {
			delete(s.bannedIPs, ip)
		}
	}
}
