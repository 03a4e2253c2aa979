// Package cache 缓存层抽象接口
//
// 保存验证流程的临时状态（短信验证码、邮箱验证令牌），当前由 Redis 实现，
// 开发与测试使用内存实现。
package cache

import (
	"context"

	"hiring-portal/internal/shared/model"
)

// ============================================================================
// 缓存接口定义
// ============================================================================

// PhoneCodeCache 短信验证码缓存接口
//
// 每个用户至多一条未完成的验证码，新写入覆盖旧值。
// 不存在时 Get 返回 (nil, nil)；过期判断由调用方依据 ExpiresAt 完成。
type PhoneCodeCache interface {
	SetPhoneCode(ctx context.Context, code *model.PhoneCode) error
	GetPhoneCode(ctx context.Context, userID string) (*model.PhoneCode, error)
	// IncrPhoneCodeAttempts 原子递增错误次数，返回递增后的值；记录不存在时返回 0
	IncrPhoneCodeAttempts(ctx context.Context, userID string) (int, error)
	DeletePhoneCode(ctx context.Context, userID string) error
}

// EmailTokenCache 邮箱验证令牌缓存接口（以令牌哈希为键）
type EmailTokenCache interface {
	SetEmailToken(ctx context.Context, token *model.EmailToken) error
	// TakeEmailToken 读取并删除令牌（一次性），不存在或已过期返回 (nil, nil)
	TakeEmailToken(ctx context.Context, tokenHash string) (*model.EmailToken, error)
}

// ============================================================================
// 组合接口
// ============================================================================

// Cache 缓存组合接口
type Cache interface {
	PhoneCodeCache
	EmailTokenCache
	Close() error
}
