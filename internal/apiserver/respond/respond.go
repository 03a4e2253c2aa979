// Package respond HTTP 响应辅助函数
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"hiring-portal/internal/shared/apperr"
)

// JSON 写入 JSON 响应
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorBody 错误响应体
type ErrorBody struct {
	Error string      `json:"error"`
	Code  apperr.Kind `json:"code,omitempty"`
}

// Error 写入错误响应
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// AppError 将业务错误翻译为 HTTP 响应，内部错误只记录日志不外泄
func AppError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= 500 {
		log.Printf("[http] %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	JSON(w, status, ErrorBody{Error: apperr.PublicMessage(err), Code: kind})
}

// Decode 解析 JSON 请求体，失败时返回 Validation 错误
func Decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}
