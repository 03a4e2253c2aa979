// Package redis PhoneCode 缓存操作
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"hiring-portal/internal/shared/cache"
	"hiring-portal/internal/shared/model"
)

// SetPhoneCode 写入验证码，覆盖该用户已有的验证码
func (s *Store) SetPhoneCode(ctx context.Context, code *model.PhoneCode) error {
	key := cache.KeyPhoneCode + code.UserID

	data := map[string]interface{}{
		"user_id":    code.UserID,
		"phone":      code.Phone,
		"code_hash":  code.CodeHash,
		"attempts":   code.Attempts,
		"issued_at":  code.IssuedAt.UTC().Format(time.RFC3339Nano),
		"expires_at": code.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}

	ttl := time.Until(code.ExpiresAt) + cache.PhoneCodeGrace
	if ttl <= 0 {
		ttl = cache.PhoneCodeGrace
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, data)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set phone code: %w", err)
	}
	return nil
}

// GetPhoneCode 获取用户当前的验证码
func (s *Store) GetPhoneCode(ctx context.Context, userID string) (*model.PhoneCode, error) {
	result, err := s.client.HGetAll(ctx, cache.KeyPhoneCode+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get phone code: %w", err)
	}
	if len(result) == 0 {
		return nil, nil
	}
	return parsePhoneCode(result), nil
}

// incrAttemptsScript key 存在时才递增，避免生成没有 TTL 的残缺 Hash
var incrAttemptsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
return redis.call("HINCRBY", KEYS[1], "attempts", 1)
`)

// IncrPhoneCodeAttempts 原子递增错误次数，验证码不存在时返回 0
func (s *Store) IncrPhoneCodeAttempts(ctx context.Context, userID string) (int, error) {
	n, err := incrAttemptsScript.Run(ctx, s.client, []string{cache.KeyPhoneCode + userID}).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	return n, nil
}

// DeletePhoneCode 删除验证码
func (s *Store) DeletePhoneCode(ctx context.Context, userID string) error {
	return s.client.Del(ctx, cache.KeyPhoneCode+userID).Err()
}

func parsePhoneCode(data map[string]string) *model.PhoneCode {
	code := &model.PhoneCode{
		UserID:   data["user_id"],
		Phone:    data["phone"],
		CodeHash: data["code_hash"],
	}
	if n, err := strconv.Atoi(data["attempts"]); err == nil {
		code.Attempts = n
	}
	if t, err := time.Parse(time.RFC3339Nano, data["issued_at"]); err == nil {
		code.IssuedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, data["expires_at"]); err == nil {
		code.ExpiresAt = t
	}
	return code
}
