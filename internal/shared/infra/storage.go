package infra

import (
	"fmt"
	"log"
	"strings"

	"hiring-portal/internal/config"
	"hiring-portal/internal/shared/storage"
	"hiring-portal/internal/shared/storage/driver/postgres"
	"hiring-portal/internal/shared/storage/driver/sqlite"
	"hiring-portal/internal/shared/storage/mongostore"
	"hiring-portal/internal/shared/storage/repository"
)

// OpenStorage 按驱动类型打开持久化存储，SQL 驱动会自动建表
func OpenStorage(cfg *config.Config) (storage.PersistentStore, error) {
	switch cfg.DatabaseDriver {
	case "mongodb":
		store, err := mongostore.NewStore(cfg.DatabaseURL, cfg.DatabaseDBName)
		if err != nil {
			return nil, err
		}
		return store, nil

	case "postgres":
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		dialect := postgres.NewDialect()
		if err := dialect.AutoMigrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		log.Printf("[infra] Connected to PostgreSQL")
		return repository.NewStore(db, dialect), nil

	case "sqlite":
		dsn := sqliteDSN(cfg.DatabaseURL)
		db, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		dialect := sqlite.NewDialect()
		if err := dialect.AutoMigrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite migrate: %w", err)
		}
		log.Printf("[infra] Opened SQLite %s", dsn)
		return repository.NewStore(db, dialect), nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// sqliteDSN 去掉 "sqlite:" / "sqlite://" 前缀
func sqliteDSN(url string) string {
	if rest, ok := strings.CutPrefix(url, "sqlite://"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(url, "sqlite:"); ok {
		return rest
	}
	return url
}
