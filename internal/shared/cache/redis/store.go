// Package redis 验证状态的 Redis 实现
//
// 短信验证码以 Hash 保存（phone_code:{user_id}），邮箱令牌以 JSON 保存
// （email_token:{hash}），两者都依赖 key TTL 自动清理。
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// connectTimeout 启动时连通性检查的超时
const connectTimeout = 5 * time.Second

// Store 实现 cache.Cache
type Store struct {
	client *redis.Client
}

// NewStoreFromURL 解析 redis:// URL 并确认可连通
func NewStoreFromURL(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}

	log.Printf("[cache.redis] Connected to %s db=%d", opts.Addr, opts.DB)
	return &Store{client: client}, nil
}

// Close 关闭连接
func (s *Store) Close() error {
	return s.client.Close()
}

// Client 底层客户端，测试用于清库与检查 key
func (s *Store) Client() *redis.Client {
	return s.client
}
