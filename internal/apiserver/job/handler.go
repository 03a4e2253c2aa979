package job

import (
	"net/http"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/apiserver/respond"
)

// Handler 职位领域 HTTP 处理器
type Handler struct {
	svc *Service
}

// NewHandler 创建职位处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册职位相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/jobs", h.ListActive)
	mux.HandleFunc("GET /api/v1/jobs/mine", h.ListOwned)
	mux.HandleFunc("POST /api/v1/jobs", h.Create)
	mux.HandleFunc("PATCH /api/v1/jobs/{id}/status", h.ToggleStatus)
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListActive(r.Context())
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs, "count": len(jobs)})
}

func (h *Handler) ListOwned(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListOwned(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs, "count": len(jobs)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := respond.Decode(r, &in); err != nil {
		respond.AppError(w, r, err)
		return
	}
	job, err := h.svc.Create(r.Context(), auth.ActorFrom(r.Context()), in)
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, job)
}

func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.ToggleStatus(r.Context(), auth.ActorFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, job)
}
