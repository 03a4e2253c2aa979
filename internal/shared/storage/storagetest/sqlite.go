// Package storagetest 测试辅助：基于 SQLite 内存库的 PersistentStore
package storagetest

import (
	"context"
	"testing"
	"time"

	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/storage/driver/sqlite"
	"hiring-portal/internal/shared/storage/repository"
)

// NewSQLite 创建已迁移的内存库，测试结束自动关闭
func NewSQLite(t testing.TB) *repository.Store {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	dialect := sqlite.NewDialect()
	if err := dialect.AutoMigrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

// SeedUser 写入一个测试用户；招聘方自动带上组织名
func SeedUser(t testing.TB, store *repository.Store, id string, role model.UserRole) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	u := &model.User{
		ID:           id,
		Name:         "User " + id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if role == model.UserRoleRecruiter {
		u.Organization = "Org " + id
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}
