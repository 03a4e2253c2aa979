// Package infra 基础设施聚合层
//
// 按配置初始化并持有进程级依赖：
//   - Storage：持久化存储（MongoDB / PostgreSQL / SQLite）
//   - Cache：验证码与验证令牌缓存（Redis，未配置时使用进程内实现）
//   - Blobs：简历对象存储（MinIO，未配置时使用进程内实现）
//   - Sender：短信/邮件中继（未配置时只写日志）
package infra

import (
	"context"
	"fmt"
	"log"

	"hiring-portal/internal/config"
	"hiring-portal/internal/shared/cache"
	"hiring-portal/internal/shared/notify"
	"hiring-portal/internal/shared/objstore"
	"hiring-portal/internal/shared/storage"
)

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	Storage storage.PersistentStore
	Cache   cache.Cache
	Blobs   objstore.BlobStore
	Sender  notify.Sender
}

// New 按配置初始化全部基础设施，任一环节失败时关闭已建立的连接
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	i := &Infrastructure{}

	store, err := OpenStorage(cfg)
	if err != nil {
		return nil, err
	}
	i.Storage = store

	c, err := OpenCache(cfg)
	if err != nil {
		i.Close()
		return nil, err
	}
	i.Cache = c

	blobs, err := OpenBlobs(ctx, cfg)
	if err != nil {
		i.Close()
		return nil, err
	}
	i.Blobs = blobs

	i.Sender = NewSender(cfg)
	return i, nil
}

// OpenBlobs 创建对象存储；未配置 endpoint 时在非生产环境退回内存实现
func OpenBlobs(ctx context.Context, cfg *config.Config) (objstore.BlobStore, error) {
	if cfg.MinIO.Endpoint == "" {
		if cfg.Env == config.EnvProduction {
			return nil, fmt.Errorf("minio endpoint is required in production")
		}
		log.Printf("[infra] WARNING: MinIO not configured, resumes are kept in memory")
		return objstore.NewMemory(), nil
	}

	client, err := objstore.NewClient(cfg.MinIO)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Upstream.Timeout)
	defer cancel()
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	log.Printf("[infra] MinIO ready at %s", cfg.MinIO.Endpoint)
	return client, nil
}

// NewSender 配置了中继地址时通过 HTTP 投递，否则只写日志
func NewSender(cfg *config.Config) notify.Sender {
	if cfg.Notify.RelayURL == "" {
		log.Printf("[infra] Notification relay not configured, codes and emails are logged only")
		return notify.LogSender{}
	}
	return notify.NewRelayClient(cfg.Notify.RelayURL, cfg.Notify.RelayToken, cfg.Upstream.Timeout)
}

// Close 关闭所有基础设施连接
func (i *Infrastructure) Close() error {
	var lastErr error

	if i.Storage != nil {
		if err := i.Storage.Close(); err != nil {
			lastErr = err
		}
	}

	if i.Cache != nil {
		if err := i.Cache.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
