package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginFailureBanAfterThreshold(t *testing.T) {
	s := NewSecurityService(10)
	ip := "203.0.113.1"

	for i := 0; i < MaxLoginAttempts-1; i++ {
		s.RecordLoginFailure(ip)
		assert.False(t, s.IsIPBanned(ip), "第 %d 次失败不应触发封禁", i+1)
	}

	s.RecordLoginFailure(ip)
	assert.True(t, s.IsIPBanned(ip))
}

func TestLoginFailureWindowReset(t *testing.T) {
	s := NewSecurityService(10)
	ip := "203.0.113.2"

	for i := 0; i < MaxLoginAttempts-1; i++ {
		s.RecordLoginFailure(ip)
	}

	// 把最后一次失败改到窗口之外，下一次失败应重新从 1 计数
	s.mu.Lock()
	s.loginAttempts[ip].lastAttempt = time.Now().Add(-LoginAttemptWindow - time.Minute)
	s.mu.Unlock()

	s.RecordLoginFailure(ip)
	assert.False(t, s.IsIPBanned(ip))

	s.mu.Lock()
	count := s.loginAttempts[ip].count
	s.mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestBanExpiryClearsAttempts(t *testing.T) {
	s := NewSecurityService(10)
	ip := "203.0.113.3"

	for i := 0; i < MaxLoginAttempts; i++ {
		s.RecordLoginFailure(ip)
	}
	require.True(t, s.IsIPBanned(ip))

	// 封禁过期后自动解封，同时清空失败计数
	s.mu.Lock()
	s.bannedIPs[ip] = time.Now().Add(-time.Second)
	s.mu.Unlock()

	assert.False(t, s.IsIPBanned(ip))

	s.mu.Lock()
	_, hasAttempts := s.loginAttempts[ip]
	_, hasBan := s.bannedIPs[ip]
	s.mu.Unlock()
	assert.False(t, hasAttempts)
	assert.False(t, hasBan)
}

func TestRateLimitFixedWindow(t *testing.T) {
	limit := 5
	s := NewSecurityService(limit)
	ip := "203.0.113.4"

	for i := 0; i < limit; i++ {
		assert.True(t, s.CheckRateLimit(ip), "第 %d 个请求应放行", i+1)
	}
	assert.False(t, s.CheckRateLimit(ip), "超过限额的请求应被拒绝")

	// 其他 IP 不受影响
	assert.True(t, s.CheckRateLimit("203.0.113.5"))
}

func TestRateLimitWindowLazyReset(t *testing.T) {
	limit := 3
	s := NewSecurityService(limit)
	ip := "203.0.113.6"

	for i := 0; i < limit; i++ {
		require.True(t, s.CheckRateLimit(ip))
	}
	require.False(t, s.CheckRateLimit(ip))

	// 窗口起点改到一分钟前，下一个请求触发惰性重置
	s.mu.Lock()
	s.requestCounts[ip].windowStart = time.Now().Add(-RateLimitWindow - time.Second)
	s.mu.Unlock()

	assert.True(t, s.CheckRateLimit(ip))
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	s := NewSecurityService(10)

	s.CheckRateLimit("203.0.113.7")
	s.RecordLoginFailure("203.0.113.8")

	s.mu.Lock()
	s.requestCounts["203.0.113.7"].windowStart = time.Now().Add(-2 * RateLimitWindow)
	s.loginAttempts["203.0.113.8"].lastAttempt = time.Now().Add(-2 * LoginAttemptWindow)
	s.bannedIPs["203.0.113.9"] = time.Now().Add(-time.Second)
	s.mu.Unlock()

	s.sweep()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.requestCounts)
	assert.Empty(t, s.loginAttempts)
	assert.Empty(t, s.bannedIPs)
}
