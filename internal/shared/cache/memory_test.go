package cache

import (
	"context"
	"testing"
	"time"

	"hiring-portal/internal/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCachePhoneCode(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	got, err := c.GetPhoneCode(ctx, "usr-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.SetPhoneCode(ctx, &model.PhoneCode{UserID: "usr-1", CodeHash: "h", ExpiresAt: now.Add(5 * time.Minute)}))

	n, err := c.IncrPhoneCodeAttempts(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// 过期但仍在保留期内，可读到以便判定为过期
	now = now.Add(6 * time.Minute)
	got, err = c.GetPhoneCode(ctx, "usr-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Expired(now))
	assert.Equal(t, 1, got.Attempts)

	// 超出保留期后被清除
	now = now.Add(PhoneCodeGrace)
	got, err = c.GetPhoneCode(ctx, "usr-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err = c.IncrPhoneCodeAttempts(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryCacheEmailToken(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetEmailToken(ctx, &model.EmailToken{TokenHash: "t1", UserID: "usr-1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, c.SetEmailToken(ctx, &model.EmailToken{TokenHash: "t2", UserID: "usr-2", ExpiresAt: now.Add(time.Hour)}))

	tok, err := c.TakeEmailToken(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "usr-1", tok.UserID)

	// 一次性
	tok, err = c.TakeEmailToken(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, tok)

	// 过期
	now = now.Add(2 * time.Hour)
	tok, err = c.TakeEmailToken(ctx, "t2")
	require.NoError(t, err)
	assert.Nil(t, tok)
}
