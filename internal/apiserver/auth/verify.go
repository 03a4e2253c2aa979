package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"hiring-portal/internal/apiserver/respond"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/cache"
	"hiring-portal/internal/shared/metrics"
	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/notify"
	"hiring-portal/pkg/logging"
)

// EmailVerifierConfig 邮箱验证配置
type EmailVerifierConfig struct {
	TokenTTL        time.Duration
	VerifyURL       string // 链接前缀，令牌以 ?token= 追加
	UpstreamTimeout time.Duration
}

// EmailVerifier 邮箱验证：签发一次性令牌并通过邮件下发
type EmailVerifier struct {
	store  UserStore
	tokens cache.EmailTokenCache
	sender notify.Sender
	cfg    EmailVerifierConfig
	logger *logging.Logger
	now    func() time.Time
}

// NewEmailVerifier 创建邮箱验证服务
func NewEmailVerifier(store UserStore, tokens cache.EmailTokenCache, sender notify.Sender, cfg EmailVerifierConfig, logger *logging.Logger) *EmailVerifier {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 10 * time.Second
	}
	return &EmailVerifier{store: store, tokens: tokens, sender: sender, cfg: cfg, logger: logger, now: time.Now}
}

// RequestEmailVerification 为当前用户签发验证令牌
// 先投递邮件再保存令牌，投递失败不留下可用令牌
func (v *EmailVerifier) RequestEmailVerification(ctx context.Context, actor *Actor) error {
	actor, err := Authorize(actor)
	if err != nil {
		return err
	}
	if actor.EmailVerified {
		return apperr.Conflict("email already verified")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return apperr.Internal(err, "generate token")
	}
	token := hex.EncodeToString(raw)

	msg := notify.Email{
		To:      actor.Email,
		Subject: "Verify your email address",
		Body:    fmt.Sprintf("Open the link below to verify your email address:\n%s", v.link(token)),
	}

	sendCtx, cancel := context.WithTimeout(ctx, v.cfg.UpstreamTimeout)
	defer cancel()
	start := time.Now()
	err = v.sender.SendEmail(sendCtx, msg)
	metrics.ObserveUpstream("email_relay", start, err)
	if err != nil {
		metrics.VerificationEvents.WithLabelValues("email", "send_failed").Inc()
		return apperr.Upstream(err, "send verification email")
	}

	if err := v.tokens.SetEmailToken(ctx, &model.EmailToken{
		TokenHash: hashToken(token),
		UserID:    actor.ID,
		Email:     actor.Email,
		ExpiresAt: v.now().Add(v.cfg.TokenTTL),
	}); err != nil {
		return apperr.Internal(err, "store email token")
	}

	metrics.VerificationEvents.WithLabelValues("email", "issued").Inc()
	v.logger.Event(ctx, "email verification issued", slog.String("user_id", actor.ID))
	return nil
}

// ConfirmEmail 消费令牌并标记邮箱已验证
func (v *EmailVerifier) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Validation("token is required")
	}

	rec, err := v.tokens.TakeEmailToken(ctx, hashToken(token))
	if err != nil {
		return apperr.Internal(err, "load email token")
	}
	if rec == nil || v.now().After(rec.ExpiresAt) {
		metrics.VerificationEvents.WithLabelValues("email", "invalid").Inc()
		return apperr.InvalidCode("invalid or expired token")
	}

	// 令牌签发后邮箱被修改则作废
	user, err := v.store.GetUserByID(ctx, rec.UserID)
	if err != nil {
		return apperr.Internal(err, "lookup user")
	}
	if user == nil || user.Email != rec.Email {
		return apperr.InvalidCode("invalid or expired token")
	}

	if err := v.store.MarkEmailVerified(ctx, rec.UserID); err != nil {
		return apperr.Internal(err, "mark email verified")
	}

	metrics.VerificationEvents.WithLabelValues("email", "verified").Inc()
	v.logger.Event(ctx, "email verified", slog.String("user_id", rec.UserID))
	return nil
}

func (v *EmailVerifier) link(token string) string {
	if v.cfg.VerifyURL == "" {
		return token
	}
	return v.cfg.VerifyURL + "?token=" + url.QueryEscape(token)
}

// hashToken 令牌只以 SHA-256 摘要形式落盘
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ============================================================================
// Handlers
// ============================================================================

type confirmEmailRequest struct {
	Token string `json:"token"`
}

// RequestEmailVerification 申请邮箱验证邮件
func (h *Handler) RequestEmailVerification(w http.ResponseWriter, r *http.Request) {
	if err := h.verifier.RequestEmailVerification(r.Context(), ActorFrom(r.Context())); err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, map[string]string{"message": "verification email sent"})
}

// ConfirmEmail 提交邮箱验证令牌
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req confirmEmailRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.AppError(w, r, err)
		return
	}
	if err := h.verifier.ConfirmEmail(r.Context(), req.Token); err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}
