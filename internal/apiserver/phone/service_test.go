package phone

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/cache"
	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/notify"
	"hiring-portal/internal/shared/storage/repository"
	"hiring-portal/internal/shared/storage/storagetest"
	"hiring-portal/pkg/logging"
)

type testEnv struct {
	svc    *Service
	store  *repository.Store
	codes  *cache.MemoryCache
	sender *notify.Recorder
	actor  *auth.Actor
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	store := storagetest.NewSQLite(t)
	codes := cache.NewMemoryCache()
	sender := &notify.Recorder{}
	actor := auth.ActorFromUser(storagetest.SeedUser(t, store, "usr-1", model.UserRoleSeeker))
	return &testEnv{
		svc:    NewService(store, codes, sender, cfg, logging.Discard()),
		store:  store,
		codes:  codes,
		sender: sender,
		actor:  actor,
	}
}

func (e *testEnv) user(t *testing.T) *model.User {
	t.Helper()
	u, err := e.store.GetUserByID(context.Background(), e.actor.ID)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestHandshake(t *testing.T) {
	e := newTestEnv(t, Config{})
	ctx := context.Background()

	issued, err := e.svc.RequestCode(ctx, e.actor, "0812-345-6789")
	require.NoError(t, err)
	assert.Equal(t, "628123456789", issued.Phone)
	require.Len(t, e.sender.Codes, 1)
	assert.Equal(t, "628123456789", e.sender.Codes[0].Phone)
	code := e.sender.LastCode()
	assert.Len(t, code, 6)

	stored, err := e.codes.GetPhoneCode(ctx, e.actor.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, code, stored.CodeHash)

	err = e.svc.ConfirmCode(ctx, e.actor, wrongCode(code))
	assert.True(t, apperr.Is(err, apperr.KindInvalidCode))
	assert.False(t, e.user(t).PhoneVerified)

	require.NoError(t, e.svc.ConfirmCode(ctx, e.actor, code))
	u := e.user(t)
	assert.True(t, u.PhoneVerified)
	assert.Equal(t, "628123456789", u.VerifiedPhone)
	assert.NotNil(t, u.PhoneVerifiedAt)

	// 验证码已清除
	err = e.svc.ConfirmCode(ctx, e.actor, code)
	assert.True(t, apperr.Is(err, apperr.KindInvalidCode))
}

func TestConfirmWithoutCode(t *testing.T) {
	e := newTestEnv(t, Config{})
	err := e.svc.ConfirmCode(context.Background(), e.actor, "123456")
	assert.True(t, apperr.Is(err, apperr.KindInvalidCode))
}

func TestConfirmExpired(t *testing.T) {
	e := newTestEnv(t, Config{CodeTTL: time.Minute})
	ctx := context.Background()

	_, err := e.svc.RequestCode(ctx, e.actor, "081234567890")
	require.NoError(t, err)

	later := time.Now().Add(2 * time.Minute)
	e.svc.now = func() time.Time { return later }
	err = e.svc.ConfirmCode(ctx, e.actor, e.sender.LastCode())
	assert.True(t, apperr.Is(err, apperr.KindExpired))
	assert.False(t, e.user(t).PhoneVerified)
}

func TestNewCodeReplacesPrevious(t *testing.T) {
	e := newTestEnv(t, Config{})
	ctx := context.Background()

	_, err := e.svc.RequestCode(ctx, e.actor, "081234567890")
	require.NoError(t, err)
	first := e.sender.LastCode()

	_, err = e.svc.RequestCode(ctx, e.actor, "081234567891")
	require.NoError(t, err)
	second := e.sender.LastCode()

	if first != second {
		err = e.svc.ConfirmCode(ctx, e.actor, first)
		assert.True(t, apperr.Is(err, apperr.KindInvalidCode))
	}
	require.NoError(t, e.svc.ConfirmCode(ctx, e.actor, second))
	assert.Equal(t, "6281234567891", e.user(t).VerifiedPhone)
}

func TestMaxAttemptsDiscardsCode(t *testing.T) {
	e := newTestEnv(t, Config{MaxAttempts: 3})
	ctx := context.Background()

	_, err := e.svc.RequestCode(ctx, e.actor, "081234567890")
	require.NoError(t, err)
	code := e.sender.LastCode()

	for i := 0; i < 3; i++ {
		err := e.svc.ConfirmCode(ctx, e.actor, wrongCode(code))
		assert.True(t, apperr.Is(err, apperr.KindInvalidCode))
	}

	stored, err := e.codes.GetPhoneCode(ctx, e.actor.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	err = e.svc.ConfirmCode(ctx, e.actor, code)
	assert.True(t, apperr.Is(err, apperr.KindInvalidCode))
	assert.False(t, e.user(t).PhoneVerified)
}

func TestDeliveryFailureKeepsState(t *testing.T) {
	e := newTestEnv(t, Config{})
	ctx := context.Background()

	_, err := e.svc.RequestCode(ctx, e.actor, "081234567890")
	require.NoError(t, err)
	code := e.sender.LastCode()

	e.sender.Err = errors.New("relay unreachable")
	_, err = e.svc.RequestCode(ctx, e.actor, "081234567891")
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	// 旧验证码仍然有效
	require.NoError(t, e.svc.ConfirmCode(ctx, e.actor, code))
	assert.Equal(t, "6281234567890", e.user(t).VerifiedPhone)
}

func TestRequestRateLimited(t *testing.T) {
	e := newTestEnv(t, Config{RequestInterval: time.Minute, RequestBurst: 1})
	ctx := context.Background()

	_, err := e.svc.RequestCode(ctx, e.actor, "081234567890")
	require.NoError(t, err)

	_, err = e.svc.RequestCode(ctx, e.actor, "081234567890")
	assert.True(t, apperr.Is(err, apperr.KindRateLimited))
	assert.Len(t, e.sender.Codes, 1)

	later := time.Now().Add(2 * time.Minute)
	e.svc.now = func() time.Time { return later }
	_, err = e.svc.RequestCode(ctx, e.actor, "081234567890")
	assert.NoError(t, err)
}

func TestDeliveryFailureReturnsRateToken(t *testing.T) {
	e := newTestEnv(t, Config{RequestInterval: time.Minute, RequestBurst: 1})
	ctx := context.Background()

	e.sender.Err = errors.New("relay unreachable")
	_, err := e.svc.RequestCode(ctx, e.actor, "081234567890")
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	// 立即重试不应被限流
	e.sender.Err = nil
	_, err = e.svc.RequestCode(ctx, e.actor, "081234567890")
	require.NoError(t, err)
	assert.Len(t, e.sender.Codes, 1)

	_, err = e.svc.RequestCode(ctx, e.actor, "081234567890")
	assert.True(t, apperr.Is(err, apperr.KindRateLimited))
}

func TestRequiresAuthentication(t *testing.T) {
	e := newTestEnv(t, Config{})
	_, err := e.svc.RequestCode(context.Background(), nil, "081234567890")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	err = e.svc.ConfirmCode(context.Background(), nil, "123456")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}
