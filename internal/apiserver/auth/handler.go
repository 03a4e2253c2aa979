package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"hiring-portal/internal/apiserver/respond"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/storage"
)

// UserStore 认证所需的用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id string) error
}

// Handler 认证 HTTP 处理器
type Handler struct {
	store    UserStore
	cfg      Config
	verifier *EmailVerifier
}

// NewHandler 创建认证处理器；verifier 为 nil 时不注册邮箱验证路由
func NewHandler(store UserStore, cfg Config, verifier *EmailVerifier) *Handler {
	return &Handler{store: store, cfg: cfg, verifier: verifier}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/register", h.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.Refresh)
	mux.HandleFunc("GET /api/v1/auth/me", h.Me)
	mux.HandleFunc("PUT /api/v1/auth/password", h.ChangePassword)
	if h.verifier != nil {
		mux.HandleFunc("POST /api/v1/auth/email/verification", h.RequestEmailVerification)
		mux.HandleFunc("POST /api/v1/auth/email/verify", h.ConfirmEmail)
	}
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	Organization string `json:"organization"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type authResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
}

const minPasswordLen = 8

// ============================================================================
// Handlers
// ============================================================================

// Register 用户注册
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.AppError(w, r, err)
		return
	}

	user, err := h.register(r.Context(), req)
	if err != nil {
		respond.AppError(w, r, err)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respond.AppError(w, r, err)
		return
	}

	log.Printf("[auth] User registered: %s (%s, role=%s)", user.Email, user.ID, user.Role)
	respond.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) register(ctx context.Context, req registerRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	email := model.NormalizeEmail(req.Email)
	role := model.UserRole(strings.ToLower(strings.TrimSpace(req.Role)))
	org := strings.TrimSpace(req.Organization)

	if name == "" || email == "" || req.Password == "" || role == "" {
		return nil, apperr.Validation("name, email, password and role are required")
	}
	if !isValidEmail(email) {
		return nil, apperr.Validation("invalid email format")
	}
	if len(req.Password) < minPasswordLen {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLen)
	}
	if !role.Valid() {
		return nil, apperr.Validation("role must be seeker or recruiter")
	}
	if role == model.UserRoleRecruiter && org == "" {
		return nil, apperr.Validation("organization is required for recruiters")
	}
	if role == model.UserRoleSeeker {
		org = ""
	}

	existing, err := h.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err, "lookup user")
	}
	if existing != nil {
		return nil, apperr.Conflict("email already registered")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           generateID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Organization: org,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.CreateUser(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal(err, "create user")
	}
	return user, nil
}

// Login 用户登录
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.AppError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.AppError(w, r, apperr.Validation("email and password are required"))
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		respond.AppError(w, r, apperr.Internal(err, "lookup user"))
		return
	}
	// 邮箱不存在与密码错误返回相同结果
	if user == nil || !CheckPassword(req.Password, user.PasswordHash) {
		respond.AppError(w, r, apperr.Unauthenticated("invalid email or password"))
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respond.AppError(w, r, err)
		return
	}

	log.Printf("[auth] User logged in: %s", user.ID)
	respond.JSON(w, http.StatusOK, resp)
}

// Refresh 刷新访问令牌
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.AppError(w, r, err)
		return
	}
	if req.RefreshToken == "" {
		respond.AppError(w, r, apperr.Validation("refresh_token is required"))
		return
	}

	claims, err := ParseToken(h.cfg, req.RefreshToken)
	if err != nil || claims.Type != tokenTypeRefresh {
		respond.AppError(w, r, apperr.Unauthenticated("invalid refresh token"))
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.Subject)
	if err != nil {
		respond.AppError(w, r, apperr.Internal(err, "lookup user"))
		return
	}
	if user == nil {
		respond.AppError(w, r, apperr.Unauthenticated("invalid refresh token"))
		return
	}

	accessToken, err := GenerateAccessToken(h.cfg, user.ID, user.Email, user.Role)
	if err != nil {
		respond.AppError(w, r, apperr.Internal(err, "sign token"))
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"access_token": accessToken,
	})
}

// Me 获取当前用户信息
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := Authorize(ActorFrom(r.Context()))
	if err != nil {
		respond.AppError(w, r, err)
		return
	}

	user, err := h.store.GetUserByID(r.Context(), actor.ID)
	if err != nil {
		respond.AppError(w, r, apperr.Internal(err, "lookup user"))
		return
	}
	if user == nil {
		respond.AppError(w, r, apperr.NotFound("user not found"))
		return
	}

	respond.JSON(w, http.StatusOK, user)
}

// ChangePassword 修改密码
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, err := Authorize(ActorFrom(r.Context()))
	if err != nil {
		respond.AppError(w, r, err)
		return
	}

	var req changePasswordRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.AppError(w, r, err)
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		respond.AppError(w, r, apperr.Validation("old_password and new_password are required"))
		return
	}
	if len(req.NewPassword) < minPasswordLen {
		respond.AppError(w, r, apperr.Validation("new password must be at least %d characters", minPasswordLen))
		return
	}

	user, err := h.store.GetUserByID(r.Context(), actor.ID)
	if err != nil {
		respond.AppError(w, r, apperr.Internal(err, "lookup user"))
		return
	}
	if user == nil {
		respond.AppError(w, r, apperr.NotFound("user not found"))
		return
	}
	if !CheckPassword(req.OldPassword, user.PasswordHash) {
		respond.AppError(w, r, apperr.Validation("incorrect old password"))
		return
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		respond.AppError(w, r, apperr.Internal(err, "hash password"))
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		respond.AppError(w, r, apperr.Internal(err, "update password"))
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// ============================================================================
// 工具函数
// ============================================================================

func (h *Handler) issueTokens(user *model.User) (*authResponse, error) {
	accessToken, err := GenerateAccessToken(h.cfg, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Internal(err, "sign access token")
	}
	refreshToken, err := GenerateRefreshToken(h.cfg, user.ID)
	if err != nil {
		return nil, apperr.Internal(err, "sign refresh token")
	}
	return &authResponse{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func generateID() string {
	return "usr-" + uuid.NewString()
}
