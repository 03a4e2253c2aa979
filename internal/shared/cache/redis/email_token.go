// Package redis EmailToken 缓存操作
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hiring-portal/internal/shared/cache"
	"hiring-portal/internal/shared/model"
)

// SetEmailToken 保存令牌，TTL 与 ExpiresAt 对齐
func (s *Store) SetEmailToken(ctx context.Context, token *model.EmailToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("email token already expired")
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, cache.KeyEmailToken+token.TokenHash, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set email token: %w", err)
	}
	return nil
}

// TakeEmailToken 使用 GETDEL 保证令牌只能被消费一次
func (s *Store) TakeEmailToken(ctx context.Context, tokenHash string) (*model.EmailToken, error) {
	data, err := s.client.GetDel(ctx, cache.KeyEmailToken+tokenHash).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take email token: %w", err)
	}

	var token model.EmailToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode email token: %w", err)
	}
	if time.Now().After(token.ExpiresAt) {
		return nil, nil
	}
	return &token, nil
}
