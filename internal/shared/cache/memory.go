package cache

import (
	"context"
	"sync"
	"time"

	"hiring-portal/internal/shared/model"
)

// ============================================================================
// MemoryCache - 进程内 Cache 实现（开发与测试）
// ============================================================================

// MemoryCache 基于 map 的 Cache 实现，仅适用于单实例部署
type MemoryCache struct {
	mu     sync.Mutex
	codes  map[string]model.PhoneCode
	tokens map[string]model.EmailToken
	now    func() time.Time
}

// NewMemoryCache 创建 MemoryCache 实例
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		codes:  make(map[string]model.PhoneCode),
		tokens: make(map[string]model.EmailToken),
		now:    time.Now,
	}
}

// Close 关闭缓存
func (c *MemoryCache) Close() error {
	return nil
}

// PhoneCodeCache 方法

func (c *MemoryCache) SetPhoneCode(ctx context.Context, code *model.PhoneCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[code.UserID] = *code
	return nil
}

func (c *MemoryCache) GetPhoneCode(ctx context.Context, userID string) (*model.PhoneCode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code, ok := c.codes[userID]
	if !ok {
		return nil, nil
	}
	if c.now().After(code.ExpiresAt.Add(PhoneCodeGrace)) {
		delete(c.codes, userID)
		return nil, nil
	}
	return &code, nil
}

func (c *MemoryCache) IncrPhoneCodeAttempts(ctx context.Context, userID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code, ok := c.codes[userID]
	if !ok {
		return 0, nil
	}
	code.Attempts++
	c.codes[userID] = code
	return code.Attempts, nil
}

func (c *MemoryCache) DeletePhoneCode(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.codes, userID)
	return nil
}

// EmailTokenCache 方法

func (c *MemoryCache) SetEmailToken(ctx context.Context, token *model.EmailToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[token.TokenHash] = *token
	return nil
}

func (c *MemoryCache) TakeEmailToken(ctx context.Context, tokenHash string) (*model.EmailToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token, ok := c.tokens[tokenHash]
	if !ok {
		return nil, nil
	}
	delete(c.tokens, tokenHash)
	if c.now().After(token.ExpiresAt) {
		return nil, nil
	}
	return &token, nil
}

// 确保 MemoryCache 实现了 Cache 接口
var _ Cache = (*MemoryCache)(nil)
