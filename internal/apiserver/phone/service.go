// Package phone 手机号验证握手：下发验证码并确认
package phone

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/cache"
	"hiring-portal/internal/shared/metrics"
	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/notify"
	"hiring-portal/pkg/logging"
)

// UserStore 验证成功后写回用户
type UserStore interface {
	MarkPhoneVerified(ctx context.Context, id, phone string, at time.Time) error
}

// Config 验证码策略
type Config struct {
	CountryCode     string
	CodeTTL         time.Duration
	MaxAttempts     int
	RequestInterval time.Duration
	RequestBurst    int
	UpstreamTimeout time.Duration
}

// Issued 已下发验证码的公开信息
type Issued struct {
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service 手机号验证服务
type Service struct {
	users   UserStore
	codes   cache.PhoneCodeCache
	sender  notify.Sender
	cfg     Config
	limiter *limiter
	logger  *logging.Logger
	now     func() time.Time
}

// NewService 创建手机号验证服务
func NewService(users UserStore, codes cache.PhoneCodeCache, sender notify.Sender, cfg Config, logger *logging.Logger) *Service {
	if cfg.CountryCode == "" {
		cfg.CountryCode = "62"
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 5 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 10 * time.Second
	}
	return &Service{
		users:   users,
		codes:   codes,
		sender:  sender,
		cfg:     cfg,
		limiter: newLimiter(cfg.RequestInterval, cfg.RequestBurst),
		logger:  logger,
		now:     time.Now,
	}
}

// RequestCode 下发 6 位验证码
//
// 先投递再保存，投递失败不改变任何状态，也不占用限流额度；新验证码覆盖旧验证码。
func (s *Service) RequestCode(ctx context.Context, actor *auth.Actor, rawPhone string) (*Issued, error) {
	actor, err := auth.Authorize(actor)
	if err != nil {
		return nil, err
	}

	phone, err := Normalize(rawPhone, s.cfg.CountryCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	release, ok := s.limiter.reserve(actor.ID, now)
	if !ok {
		metrics.VerificationEvents.WithLabelValues("phone", "rate_limited").Inc()
		return nil, apperr.RateLimited("verification code requested too often, try again later")
	}

	code, err := generateCode()
	if err != nil {
		return nil, apperr.Internal(err, "generate verification code")
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	start := time.Now()
	err = s.sender.SendCode(sendCtx, phone, code)
	cancel()
	metrics.ObserveUpstream("notify_sms", start, err)
	if err != nil {
		// 投递失败不消耗申请额度
		release()
		metrics.VerificationEvents.WithLabelValues("phone", "send_failed").Inc()
		return nil, apperr.Upstream(err, "failed to deliver verification code")
	}

	pc := &model.PhoneCode{
		UserID:    actor.ID,
		Phone:     phone,
		CodeHash:  hashCode(actor.ID, code),
		IssuedAt:  now.UTC(),
		ExpiresAt: now.Add(s.cfg.CodeTTL).UTC(),
	}
	if err := s.codes.SetPhoneCode(ctx, pc); err != nil {
		return nil, apperr.Internal(err, "store verification code")
	}

	metrics.VerificationEvents.WithLabelValues("phone", "code_sent").Inc()
	s.logger.Event(ctx, "phone code issued", slog.String("phone", mask(phone)))
	return &Issued{Phone: phone, ExpiresAt: pc.ExpiresAt}, nil
}

// ConfirmCode 校验验证码
//
// 无验证码与验证码错误返回相同的 InvalidCode；过期返回 Expired。
// 错误次数达到上限后验证码作废。
func (s *Service) ConfirmCode(ctx context.Context, actor *auth.Actor, submitted string) error {
	actor, err := auth.Authorize(actor)
	if err != nil {
		return err
	}

	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return apperr.Validation("code is required")
	}

	pc, err := s.codes.GetPhoneCode(ctx, actor.ID)
	if err != nil {
		return apperr.Internal(err, "load verification code")
	}
	if pc == nil {
		return s.invalid()
	}

	now := s.now()
	if pc.Expired(now) {
		metrics.VerificationEvents.WithLabelValues("phone", "expired").Inc()
		return apperr.Expired("verification code has expired, request a new one")
	}
	if pc.Attempts >= s.cfg.MaxAttempts {
		s.discard(ctx, actor.ID)
		return s.invalid()
	}

	if subtle.ConstantTimeCompare([]byte(pc.CodeHash), []byte(hashCode(actor.ID, submitted))) != 1 {
		attempts, err := s.codes.IncrPhoneCodeAttempts(ctx, actor.ID)
		if err != nil {
			return apperr.Internal(err, "record failed attempt")
		}
		if attempts >= s.cfg.MaxAttempts {
			metrics.VerificationEvents.WithLabelValues("phone", "locked").Inc()
			s.discard(ctx, actor.ID)
		}
		return s.invalid()
	}

	if err := s.users.MarkPhoneVerified(ctx, actor.ID, pc.Phone, now.UTC()); err != nil {
		return apperr.Internal(err, "mark phone verified")
	}
	s.discard(ctx, actor.ID)

	metrics.VerificationEvents.WithLabelValues("phone", "verified").Inc()
	s.logger.Event(ctx, "phone verified", slog.String("phone", mask(pc.Phone)))
	return nil
}

func (s *Service) invalid() error {
	metrics.VerificationEvents.WithLabelValues("phone", "invalid_code").Inc()
	return apperr.InvalidCode("invalid verification code")
}

func (s *Service) discard(ctx context.Context, userID string) {
	if err := s.codes.DeletePhoneCode(ctx, userID); err != nil {
		log.Printf("[phone] Failed to delete code for %s: %v", userID, err)
	}
}

// generateCode 生成 6 位数字验证码
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// hashCode 以用户 ID 加盐，缓存中不保存明文
func hashCode(userID, code string) string {
	sum := sha256.Sum256([]byte(userID + ":" + code))
	return hex.EncodeToString(sum[:])
}

// mask 日志中只保留号码末四位
func mask(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
