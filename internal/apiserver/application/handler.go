package application

import (
	"encoding/json"
	"net/http"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/apiserver/respond"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/model"
)

// Handler 申请领域 HTTP 处理器
type Handler struct {
	svc            *Service
	maxResumeBytes int64
}

// NewHandler 创建申请处理器
func NewHandler(svc *Service, maxResumeBytes int64) *Handler {
	return &Handler{svc: svc, maxResumeBytes: maxResumeBytes}
}

// RegisterRoutes 注册申请相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/jobs/{id}/applications", h.Submit)
	mux.HandleFunc("GET /api/v1/jobs/{id}/applications", h.ListForJob)
	mux.HandleFunc("GET /api/v1/applications/mine", h.ListForApplicant)
	mux.HandleFunc("PATCH /api/v1/applications/{id}/status", h.UpdateStatus)
}

// Submit multipart 表单：resume 文件 + answers（JSON 数组）
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := respond.ParseMultipart(w, r, h.maxResumeBytes); err != nil {
		respond.AppError(w, r, err)
		return
	}

	var answers []model.Answer
	if raw := r.FormValue("answers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &answers); err != nil {
			respond.AppError(w, r, apperr.Validation("answers must be a JSON array"))
			return
		}
	}

	resume, closeFile, err := respond.FormFile(r, "resume")
	defer closeFile()
	if err != nil {
		respond.AppError(w, r, err)
		return
	}

	app, err := h.svc.Submit(r.Context(), auth.ActorFrom(r.Context()), r.PathValue("id"), answers, resume)
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, app)
}

func (h *Handler) ListForJob(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.ListForJob(r.Context(), auth.ActorFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{"applications": apps, "count": len(apps)})
}

func (h *Handler) ListForApplicant(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.ListForApplicant(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{"applications": apps, "count": len(apps)})
}

type updateStatusRequest struct {
	Status model.ApplicationStatus `json:"status"`
	Notes  *string                 `json:"notes,omitempty"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.AppError(w, r, err)
		return
	}
	app, err := h.svc.UpdateStatus(r.Context(), auth.ActorFrom(r.Context()), r.PathValue("id"), req.Status, req.Notes)
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, app)
}
