// Package apperr 定义业务层错误分类
//
// 领域服务只返回带 Kind 的错误，由 HTTP 边界层统一翻译为状态码。
// 存储层的哨兵错误（storage.ErrNotFound 等）在服务层转换为这里的分类。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
type Kind string

const (
	KindUnauthenticated   Kind = "unauthenticated"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation_error"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindUpstream          Kind = "upstream_error"
	KindExpired           Kind = "expired"
	KindInvalidCode       Kind = "invalid_code"
	KindRateLimited       Kind = "rate_limited"
	KindInternal          Kind = "internal"
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string // 可安全返回给调用方的描述
	Err     error  // 底层原因，仅用于日志
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建指定分类的错误
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, "%s", msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, "%s", msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, "%s", msg) }
func Conflict(msg string) *Error        { return New(KindConflict, "%s", msg) }
func Expired(msg string) *Error         { return New(KindExpired, "%s", msg) }
func InvalidCode(msg string) *Error     { return New(KindInvalidCode, "%s", msg) }
func RateLimited(msg string) *Error     { return New(KindRateLimited, "%s", msg) }

// Validation 输入校验失败
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// InvalidTransition 非法状态迁移
func InvalidTransition(format string, args ...any) *Error {
	return New(KindInvalidTransition, format, args...)
}

// Upstream 外部协作方（对象存储、消息中继）失败
func Upstream(err error, msg string) *Error {
	return Wrap(KindUpstream, err, msg)
}

// Internal 内部错误（存储故障等）
func Internal(err error, msg string) *Error {
	return Wrap(KindInternal, err, msg)
}

// KindOf 返回错误分类，非 *Error 视为 internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is 判断错误是否属于指定分类
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus 分类对应的 HTTP 状态码
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindInvalidCode:
		return http.StatusBadRequest
	case KindConflict, KindInvalidTransition:
		return http.StatusConflict
	case KindExpired:
		return http.StatusGone
	case KindUpstream:
		return http.StatusBadGateway
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage 返回可暴露给调用方的消息，内部错误统一隐藏
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal error"
	}
	if e.Kind == KindUpstream {
		return "upstream service unavailable"
	}
	return e.Message
}
