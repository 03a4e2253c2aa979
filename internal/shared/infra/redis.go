package infra

import (
	"log"

	"hiring-portal/internal/config"
	"hiring-portal/internal/shared/cache"
	cacheredis "hiring-portal/internal/shared/cache/redis"
)

// OpenCache RedisURL 为空时使用进程内缓存（仅适用于单实例部署）
func OpenCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.RedisURL == "" {
		log.Printf("[infra] Redis not configured, using in-memory verification cache")
		return cache.NewMemoryCache(), nil
	}
	store, err := cacheredis.NewStoreFromURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return store, nil
}
