package profile

import (
	"net/http"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/apiserver/respond"
)

// Handler 个人资料 HTTP 处理器
type Handler struct {
	svc            *Service
	maxResumeBytes int64
}

// NewHandler 创建处理器
func NewHandler(svc *Service, maxResumeBytes int64) *Handler {
	return &Handler{svc: svc, maxResumeBytes: maxResumeBytes}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/profile", h.Get)
	mux.HandleFunc("PUT /api/v1/profile", h.Update)
	mux.HandleFunc("PUT /api/v1/profile/resume", h.ReplaceResume)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Get(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := respond.Decode(r, &in); err != nil {
		respond.AppError(w, r, err)
		return
	}
	user, err := h.svc.Update(r.Context(), auth.ActorFrom(r.Context()), in)
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *Handler) ReplaceResume(w http.ResponseWriter, r *http.Request) {
	if err := respond.ParseMultipart(w, r, h.maxResumeBytes); err != nil {
		respond.AppError(w, r, err)
		return
	}
	upload, closeFile, err := respond.FormFile(r, "resume")
	defer closeFile()
	if err != nil {
		respond.AppError(w, r, err)
		return
	}

	user, err := h.svc.ReplaceResume(r.Context(), auth.ActorFrom(r.Context()), upload)
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
