package phone

import (
	"net/http"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/apiserver/respond"
)

// Handler 手机号验证 HTTP 处理器
type Handler struct {
	svc *Service
}

// NewHandler 创建处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/phone/code", h.RequestCode)
	mux.HandleFunc("POST /api/v1/phone/verify", h.ConfirmCode)
}

type requestCodeRequest struct {
	Phone string `json:"phone"`
}

func (h *Handler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.AppError(w, r, err)
		return
	}
	issued, err := h.svc.RequestCode(r.Context(), auth.ActorFrom(r.Context()), req.Phone)
	if err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, issued)
}

type confirmCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) ConfirmCode(w http.ResponseWriter, r *http.Request) {
	var req confirmCodeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.AppError(w, r, err)
		return
	}
	if err := h.svc.ConfirmCode(r.Context(), auth.ActorFrom(r.Context()), req.Code); err != nil {
		respond.AppError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{"phone_verified": true})
}
