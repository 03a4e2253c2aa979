// Package server 路由配置与 HTTP 基础设施
//
// 将各领域包的路由挂到同一个 ServeMux，并按顺序套上中间件：
//   - CORS（最外层，预检请求直接返回）
//   - 请求 ID 与访问日志
//   - JWT 认证（解析 Actor）
//   - Prometheus HTTP 指标
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"hiring-portal/internal/apiserver/application"
	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/apiserver/job"
	"hiring-portal/internal/apiserver/phone"
	"hiring-portal/internal/apiserver/profile"
	"hiring-portal/internal/apiserver/respond"
	"hiring-portal/internal/config"
	"hiring-portal/internal/shared/cache"
	"hiring-portal/internal/shared/notify"
	"hiring-portal/internal/shared/objstore"
	"hiring-portal/internal/shared/storage"
	"hiring-portal/pkg/logging"
)

// Deps 组装路由所需的外部依赖
type Deps struct {
	Store    storage.PersistentStore
	Cache    cache.Cache
	Blobs    objstore.BlobStore
	Sender   notify.Sender
	Config   *config.Config
	Logger   *logging.Logger
	Registry prometheus.Registerer // 为空时使用默认 Registry
}

// Handler API 入口，持有各领域服务
type Handler struct {
	cfg     *config.Config
	authCfg auth.Config
	store   storage.PersistentStore
	logger  *logging.Logger
	metrics *Metrics

	jobs         *job.Service
	applications *application.Service
	phones       *phone.Service
	profiles     *profile.Service
	emails       *auth.EmailVerifier
}

// NewHandler 根据配置创建各领域服务
func NewHandler(d Deps) *Handler {
	cfg := d.Config
	logger := d.Logger
	if logger == nil {
		logger = logging.Default("api-server")
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	authCfg := auth.ParseConfig(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	resumes := objstore.NewResumeStore(d.Blobs, cfg.Upload, cfg.Upstream.Timeout)

	return &Handler{
		cfg:     cfg,
		authCfg: authCfg,
		store:   d.Store,
		logger:  logger,
		metrics: NewMetrics("hiring_portal", reg),

		jobs:         job.NewService(d.Store, logger.Named("job")),
		applications: application.NewService(d.Store, resumes, logger.Named("application")),
		profiles:     profile.NewService(d.Store, resumes, logger.Named("profile")),
		phones: phone.NewService(d.Store, d.Cache, d.Sender, phone.Config{
			CountryCode:     cfg.Verification.CountryCode,
			CodeTTL:         cfg.Verification.CodeTTL,
			MaxAttempts:     cfg.Verification.MaxAttempts,
			RequestInterval: cfg.Verification.RequestInterval,
			RequestBurst:    cfg.Verification.RequestBurst,
			UpstreamTimeout: cfg.Upstream.Timeout,
		}, logger.Named("phone")),
		emails: auth.NewEmailVerifier(d.Store, d.Cache, d.Sender, auth.EmailVerifierConfig{
			TokenTTL:        cfg.Verification.EmailTokenTTL,
			VerifyURL:       cfg.Verification.EmailVerifyURL,
			UpstreamTimeout: cfg.Upstream.Timeout,
		}, logger.Named("email")),
	}
}

// StartReconciler 启动申请计数对账任务
func (h *Handler) StartReconciler(ctx context.Context) {
	h.jobs.StartReconciler(ctx, h.cfg.Reconcile.Interval)
}

// Router 返回配置好的 HTTP 路由
//
// 身份:
//   - POST /api/v1/auth/register | login | refresh
//   - GET  /api/v1/auth/me
//   - PUT  /api/v1/auth/password
//   - POST /api/v1/auth/email/verification | email/verify
//
// 个人资料:
//   - GET|PUT /api/v1/profile
//   - PUT     /api/v1/profile/resume
//
// 职位:
//   - GET   /api/v1/jobs             - 在招职位（公开）
//   - GET   /api/v1/jobs/mine        - 我发布的职位
//   - POST  /api/v1/jobs             - 发布职位
//   - PATCH /api/v1/jobs/{id}/status - 上线/下线
//
// 申请:
//   - POST|GET /api/v1/jobs/{id}/applications
//   - GET      /api/v1/applications/mine
//   - PATCH    /api/v1/applications/{id}/status
//
// 手机验证:
//   - POST /api/v1/phone/code
//   - POST /api/v1/phone/verify
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", MetricsHandler())

	auth.NewHandler(h.store, h.authCfg, h.emails).RegisterRoutes(mux)
	profile.NewHandler(h.profiles, h.cfg.Upload.MaxResumeBytes).RegisterRoutes(mux)
	job.NewHandler(h.jobs).RegisterRoutes(mux)
	application.NewHandler(h.applications, h.cfg.Upload.MaxResumeBytes).RegisterRoutes(mux)
	phone.NewHandler(h.phones).RegisterRoutes(mux)

	var handler http.Handler = h.metrics.MetricsMiddleware(mux)
	handler = auth.Middleware(h.authCfg, h.store)(handler)
	handler = requestLogMiddleware(h.logger.Named("http"))(handler)
	return corsMiddleware(h.cfg.CORSOrigins)(handler)
}

// Health 健康检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"driver": h.cfg.DatabaseDriver,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
