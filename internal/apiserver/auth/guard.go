package auth

import (
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/model"
)

// Requirement 授权条件；返回 nil 表示满足
type Requirement func(a *Actor) error

// Authenticated 要求已登录
func Authenticated() Requirement {
	return func(a *Actor) error {
		if a == nil || a.ID == "" {
			return apperr.Unauthenticated("authentication required")
		}
		return nil
	}
}

// RequireRole 要求持有指定角色
func RequireRole(role model.UserRole) Requirement {
	return func(a *Actor) error {
		if a.Role != role {
			return apperr.Forbidden(string(role) + " role required")
		}
		return nil
	}
}

// RequireOwner 要求资源的归属字段等于操作者 ID
// ownerID 必须取自存储中的记录，不能取自请求参数
func RequireOwner(ownerID string) Requirement {
	return func(a *Actor) error {
		if ownerID == "" || ownerID != a.ID {
			return apperr.Forbidden("not the owner of this resource")
		}
		return nil
	}
}

// Authorize 依次检查全部条件，总是先检查登录状态
func Authorize(a *Actor, reqs ...Requirement) (*Actor, error) {
	if err := Authenticated()(a); err != nil {
		return nil, err
	}
	for _, req := range reqs {
		if err := req(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Conceal 将 Forbidden 改写为 NotFound，避免泄露他人资源是否存在
func Conceal(err error, msg string) error {
	if apperr.Is(err, apperr.KindForbidden) {
		return apperr.NotFound(msg)
	}
	return err
}
